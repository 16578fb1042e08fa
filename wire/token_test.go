package wire

import "testing"

func TestReadTokenString(t *testing.T) {
	l := newLexer(`"hello"`)
	tok, err := l.ReadToken()
	if err != nil {
		t.Fatalf("ReadToken() error = %v", err)
	}
	if tok.IsList {
		t.Fatal("ReadToken() IsList = true, want false")
	}
	if tok.Str != "hello" {
		t.Fatalf("ReadToken() Str = %q, want %q", tok.Str, "hello")
	}
}

func TestReadTokenNilString(t *testing.T) {
	l := newLexer("NIL")
	tok, err := l.ReadToken()
	if err != nil {
		t.Fatalf("ReadToken() error = %v", err)
	}
	if tok.IsList || tok.Str != "" {
		t.Fatalf("ReadToken() on NIL = %+v, want empty non-list token", tok)
	}
}

func TestReadTokenList(t *testing.T) {
	l := newLexer(`(\Seen \Answered)`)
	tok, err := l.ReadToken()
	if err != nil {
		t.Fatalf("ReadToken() error = %v", err)
	}
	if !tok.IsList {
		t.Fatal("ReadToken() IsList = false, want true")
	}
	want := []string{`\Seen`, `\Answered`}
	if len(tok.List) != len(want) {
		t.Fatalf("ReadToken() List = %v, want %v", tok.List, want)
	}
	for i := range want {
		if tok.List[i] != want[i] {
			t.Errorf("ReadToken() List[%d] = %q, want %q", i, tok.List[i], want[i])
		}
	}
}

func TestReadTokens(t *testing.T) {
	l := newLexer("FOO (BAR BAZ) \"qux\"\r\n")
	toks, err := l.ReadTokens()
	if err != nil {
		t.Fatalf("ReadTokens() error = %v", err)
	}
	if len(toks) != 3 {
		t.Fatalf("ReadTokens() returned %d tokens, want 3", len(toks))
	}
	if toks[0].IsList || toks[0].Str != "FOO" {
		t.Errorf("ReadTokens()[0] = %+v, want plain FOO", toks[0])
	}
	if !toks[1].IsList || len(toks[1].List) != 2 {
		t.Errorf("ReadTokens()[1] = %+v, want list of 2", toks[1])
	}
	if toks[2].IsList || toks[2].Str != "qux" {
		t.Errorf("ReadTokens()[2] = %+v, want plain qux", toks[2])
	}
}
