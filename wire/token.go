package wire

import imap "github.com/kestrelmail/imap"

// Token is an alias for imap.Token. The type itself lives in the root
// package (see imap.Token's doc comment for why); this package keeps the
// short name since every reader in this file, and nearly every caller,
// spells it "wire.Token".
type Token = imap.Token

// ReadToken reads a single field: a list if the next byte is "(",
// otherwise a string. Deliberately distinct from Lexer.ReadFieldsFlat,
// which flattens nested lists — ReadToken preserves the list/string
// distinction for callers (like the generic response decoder) that need
// to tell the two apart, rather than silently merging them.
func (l *Lexer) ReadToken() (Token, error) {
	b, err := l.PeekByte()
	if err != nil {
		return Token{}, err
	}
	if b == '(' {
		items, err := l.ReadFieldsFlat()
		if err != nil {
			return Token{}, err
		}
		return Token{IsList: true, List: items}, nil
	}
	s, ok, err := l.ReadNString()
	if err != nil {
		return Token{}, err
	}
	if !ok {
		return Token{Str: ""}, nil
	}
	return Token{Str: s}, nil
}

// ReadTokens reads space-separated tokens until CRLF.
func (l *Lexer) ReadTokens() ([]Token, error) {
	var tokens []Token
	for {
		b, err := l.PeekByte()
		if err != nil {
			return nil, err
		}
		if b == '\r' {
			if err := l.ReadCRLF(); err != nil {
				return nil, err
			}
			return tokens, nil
		}
		if len(tokens) > 0 {
			if err := l.ReadSP(); err != nil {
				return nil, err
			}
		}
		tok, err := l.ReadToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
	}
}
