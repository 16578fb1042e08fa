package wire

import (
	"bufio"
	"io"
)

// Reader is a byte-oriented reader with exactly one byte of lookahead
// pushback. A recursive-descent IMAP lexer routinely needs to peek one
// character to decide which production it is in before committing to
// reading it, so every lexical routine in Lexer is built on this primitive
// rather than on bufio.Reader.Peek directly.
type Reader struct {
	br         *bufio.Reader
	pending    byte
	hasPending bool
}

// NewReader wraps r. If r is already a *bufio.Reader it is used directly.
func NewReader(r io.Reader) *Reader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReaderSize(r, 4096)
	}
	return &Reader{br: br}
}

// ReadByte returns the pushed-back byte if there is one, otherwise the
// next byte from the underlying stream.
func (r *Reader) ReadByte() (byte, error) {
	if r.hasPending {
		r.hasPending = false
		return r.pending, nil
	}
	return r.br.ReadByte()
}

// UnreadByte pushes b back so that the next ReadByte or PeekByte returns
// it. A second call to UnreadByte before an intervening ReadByte replaces
// the pushed-back byte rather than stacking it — the reader holds at most
// one byte of lookahead, by design.
func (r *Reader) UnreadByte(b byte) {
	r.pending = b
	r.hasPending = true
}

// PeekByte returns the next byte without consuming it.
func (r *Reader) PeekByte() (byte, error) {
	if r.hasPending {
		return r.pending, nil
	}
	b, err := r.br.ReadByte()
	if err != nil {
		return 0, err
	}
	r.pending = b
	r.hasPending = true
	return b, nil
}

// ReadFull reads exactly len(p) bytes into p, consuming the pushed-back
// byte first if there is one.
func (r *Reader) ReadFull(p []byte) error {
	n := 0
	if r.hasPending && len(p) > 0 {
		p[0] = r.pending
		r.hasPending = false
		n = 1
	}
	if n == len(p) {
		return nil
	}
	_, err := io.ReadFull(r.br, p[n:])
	return err
}

// Discard skips n bytes.
func (r *Reader) Discard(n int64) error {
	if n <= 0 {
		return nil
	}
	if r.hasPending {
		r.hasPending = false
		n--
	}
	if n <= 0 {
		return nil
	}
	_, err := io.CopyN(io.Discard, r.br, n)
	return err
}

// LimitedReader returns an io.Reader that reads exactly n bytes from r,
// starting with the pushed-back byte if one is pending.
func (r *Reader) LimitedReader(n int64) io.Reader {
	if r.hasPending && n > 0 {
		r.hasPending = false
		return io.MultiReader(bytesReader(r.pending), io.LimitReader(r.br, n-1))
	}
	return io.LimitReader(r.br, n)
}

type bytesReaderType struct {
	b    byte
	done bool
}

func bytesReader(b byte) io.Reader {
	return &bytesReaderType{b: b}
}

func (b *bytesReaderType) Read(p []byte) (int, error) {
	if b.done || len(p) == 0 {
		return 0, io.EOF
	}
	p[0] = b.b
	b.done = true
	return 1, nil
}
