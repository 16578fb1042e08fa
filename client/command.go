package client

import (
	"fmt"
	"sync/atomic"
)

// tagGenerator produces unique command tags. The original client this one
// is descended from hardcoded every command's tag to "a001"; this
// generator fixes that by counting atomically, so two commands issued in
// a session never collide even though only one is ever in flight at a
// time.
type tagGenerator struct {
	counter atomic.Uint32
	prefix  string
}

func newTagGenerator(prefix string) *tagGenerator {
	return &tagGenerator{prefix: prefix}
}

// Next returns the next unique tag, formatted like the original's single
// hardcoded tag ("a001", "a002", ...) so logs stay readable even after
// thousands of commands.
func (g *tagGenerator) Next() string {
	n := g.counter.Add(1)
	return fmt.Sprintf("%s%03d", g.prefix, n)
}
