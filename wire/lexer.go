package wire

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	imap "github.com/kestrelmail/imap"
)

// Lexer performs the context-sensitive lexical analysis IMAP's grammar
// requires: whether "]" terminates an atom depends on whether the lexer
// is currently inside a bracketed response code, and bracket nesting
// depth affects which characters are legal in an unquoted atom.
type Lexer struct {
	r *Reader

	// bracketDepth counts "[" seen inside an atom but not yet closed by a
	// matching "]". At depth zero, space and ")" end an atom and "(",
	// "{", and the double quote are rejected; deeper than that, an atom
	// may contain all of them freely.
	bracketDepth int
	inRespCode   bool

	// MaxLiteralSize, if non-zero, rejects literals larger than this
	// many bytes before reading their payload.
	MaxLiteralSize int64
}

// NewLexer creates a Lexer reading from r.
func NewLexer(r io.Reader) *Lexer {
	return &Lexer{r: NewReader(r)}
}

// EnterRespCode marks the lexer as being inside a bracketed response
// code, so that ReadAtom treats "]" as a terminator rather than an atom
// character.
func (l *Lexer) EnterRespCode() { l.inRespCode = true }

// ExitRespCode clears the response-code context.
func (l *Lexer) ExitRespCode() { l.inRespCode = false; l.bracketDepth = 0 }

// PeekByte returns the next byte without consuming it.
func (l *Lexer) PeekByte() (byte, error) {
	return l.r.PeekByte()
}

// ExpectByte consumes the next byte and errors if it doesn't match want.
func (l *Lexer) ExpectByte(want byte) error {
	b, err := l.r.ReadByte()
	if err != nil {
		return err
	}
	if b != want {
		return &imap.ProtocolError{Expected: fmt.Sprintf("%q", want), Got: fmt.Sprintf("%q", b)}
	}
	return nil
}

// ReadSP reads a single space character.
func (l *Lexer) ReadSP() error {
	return l.ExpectByte(' ')
}

// ReadCRLF reads a CRLF line terminator.
func (l *Lexer) ReadCRLF() error {
	b1, err := l.r.ReadByte()
	if err != nil {
		return err
	}
	b2, err := l.r.ReadByte()
	if err != nil {
		return err
	}
	if b1 != '\r' || b2 != '\n' {
		return &imap.ProtocolError{Expected: "CRLF", Got: fmt.Sprintf("%q%q", b1, b2)}
	}
	return nil
}

// ReadAtom reads an atom: a run of one or more non-special characters.
// Outside a response code's brackets (bracketDepth 0), "(", "{", and """
// may never appear in an atom and are a hard error rather than a
// terminator; CR/LF always terminate; space and ")" terminate only at
// bracket depth zero. "[" opens a level of bracket nesting and "]"
// closes one; a "]" seen at depth zero either terminates the atom (if
// the lexer is inside a response code) or is a stray-bracket error.
func (l *Lexer) ReadAtom() (string, error) {
	var buf bytes.Buffer
	for {
		b, err := l.r.PeekByte()
		if err != nil {
			if err == io.EOF && buf.Len() > 0 {
				return buf.String(), nil
			}
			return "", err
		}

		if l.bracketDepth == 0 && (b == '(' || b == '{' || b == '"') {
			return "", &imap.ProtocolError{Expected: "atom", Got: fmt.Sprintf("forbidden character %q", b)}
		}
		if b == '\r' || b == '\n' {
			break
		}
		if l.bracketDepth == 0 && (b == ' ' || b == ')') {
			break
		}
		if b == ']' {
			if l.bracketDepth == 0 {
				if l.inRespCode {
					break
				}
				return "", &imap.ProtocolError{Expected: "atom", Got: "stray ']' outside a response code"}
			}
			l.bracketDepth--
		}
		if b == '[' {
			l.bracketDepth++
		}

		ch, _ := l.r.ReadByte()
		buf.WriteByte(ch)
	}
	if buf.Len() == 0 {
		b, _ := l.r.PeekByte()
		return "", &imap.ProtocolError{Expected: "atom", Got: fmt.Sprintf("%q", b)}
	}
	return buf.String(), nil
}

// ReadQuotedString reads a "-delimited string, unescaping \" and \\.
func (l *Lexer) ReadQuotedString() (string, error) {
	if err := l.ExpectByte('"'); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	for {
		ch, err := l.r.ReadByte()
		if err != nil {
			return "", err
		}
		switch ch {
		case '"':
			return buf.String(), nil
		case '\\':
			escaped, err := l.r.ReadByte()
			if err != nil {
				return "", err
			}
			buf.WriteByte(escaped)
		case '\r', '\n':
			return "", &imap.ProtocolError{Expected: "quoted-string", Got: "bare CR/LF"}
		default:
			buf.WriteByte(ch)
		}
	}
}

// LiteralHeader is the parsed form of a literal's size header: {n} or
// {n+}.
type LiteralHeader struct {
	Size    int64
	NonSync bool
}

// ReadLiteralHeader reads a literal size header, stopping right after its
// terminating CRLF; the literal's payload still needs to be consumed by
// the caller via ReadLiteralData.
func (l *Lexer) ReadLiteralHeader() (*LiteralHeader, error) {
	if err := l.ExpectByte('{'); err != nil {
		return nil, err
	}
	var digits bytes.Buffer
	hdr := &LiteralHeader{}
	for {
		ch, err := l.r.ReadByte()
		if err != nil {
			return nil, err
		}
		switch {
		case ch == '+':
			hdr.NonSync = true
		case ch == '}':
			goto closed
		case ch >= '0' && ch <= '9':
			digits.WriteByte(ch)
		default:
			return nil, &imap.ProtocolError{Expected: "literal size", Got: fmt.Sprintf("%q", ch)}
		}
	}
closed:
	size, err := strconv.ParseInt(digits.String(), 10, 64)
	if err != nil {
		return nil, &imap.ProtocolError{Expected: "literal size", Got: digits.String()}
	}
	hdr.Size = size
	if l.MaxLiteralSize > 0 && size > l.MaxLiteralSize {
		return nil, fmt.Errorf("imap: literal of %d bytes exceeds configured maximum of %d", size, l.MaxLiteralSize)
	}
	if err := l.ReadCRLF(); err != nil {
		return nil, fmt.Errorf("imap: literal header: %w", err)
	}
	return hdr, nil
}

// ReadLiteralData returns a reader over exactly size bytes of literal
// payload. The caller must fully consume it before making further lexer
// calls.
func (l *Lexer) ReadLiteralData(size int64) io.Reader {
	return l.r.LimitedReader(size)
}

// ReadString reads a quoted string, a literal, or (falling back) an atom,
// whichever the next byte indicates.
func (l *Lexer) ReadString() (string, error) {
	b, err := l.r.PeekByte()
	if err != nil {
		return "", err
	}
	switch b {
	case '"':
		return l.ReadQuotedString()
	case '{':
		hdr, err := l.ReadLiteralHeader()
		if err != nil {
			return "", err
		}
		data := make([]byte, hdr.Size)
		if err := readFull(l.ReadLiteralData(hdr.Size), data); err != nil {
			return "", err
		}
		return string(data), nil
	default:
		return l.ReadAtom()
	}
}

func readFull(r io.Reader, buf []byte) error {
	_, err := io.ReadFull(r, buf)
	return err
}

// ReadAString reads an astring (atom or string), per RFC 3501 section 9.
func (l *Lexer) ReadAString() (string, error) {
	return l.ReadString()
}

// ReadNString reads an nstring: NIL, or a string. ok is false for NIL.
func (l *Lexer) ReadNString() (s string, ok bool, err error) {
	b, err := l.r.PeekByte()
	if err != nil {
		return "", false, err
	}
	if b == 'N' || b == 'n' {
		atom, err := l.ReadAtom()
		if err != nil {
			return "", false, err
		}
		if strings.EqualFold(atom, "NIL") {
			return "", false, nil
		}
		return atom, true, nil
	}
	s, err = l.ReadString()
	if err != nil {
		return "", false, err
	}
	return s, true, nil
}

// ReadNumber reads an unsigned 32-bit decimal number.
func (l *Lexer) ReadNumber() (uint32, error) {
	atom, err := l.ReadAtom()
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(atom, 10, 32)
	if err != nil {
		return 0, &imap.ProtocolError{Expected: "number", Got: atom}
	}
	return uint32(n), nil
}

// ReadNumber64 reads an unsigned 64-bit decimal number.
func (l *Lexer) ReadNumber64() (uint64, error) {
	atom, err := l.ReadAtom()
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(atom, 10, 64)
	if err != nil {
		return 0, &imap.ProtocolError{Expected: "number", Got: atom}
	}
	return n, nil
}

// ReadList reads a parenthesized list, calling fn once per element. fn is
// responsible for consuming exactly one element each time it is called.
func (l *Lexer) ReadList(fn func() error) error {
	if err := l.ExpectByte('('); err != nil {
		return err
	}
	first := true
	for {
		b, err := l.r.PeekByte()
		if err != nil {
			return err
		}
		if b == ')' {
			_, _ = l.r.ReadByte()
			return nil
		}
		if !first {
			if err := l.ReadSP(); err != nil {
				return err
			}
		}
		if err := fn(); err != nil {
			return err
		}
		first = false
	}
}

// ReadFieldsFlat reads a parenthesized list of astrings, flattening any
// nested list by one level into the same flat slice. This is the form
// LIST/LSUB and FLAGS responses use, where the grammar never nests more
// than one level deep and callers only want the leaves.
func (l *Lexer) ReadFieldsFlat() ([]string, error) {
	var fields []string
	err := l.ReadList(func() error {
		b, err := l.r.PeekByte()
		if err != nil {
			return err
		}
		if b == '(' {
			nested, err := l.ReadFieldsFlat()
			if err != nil {
				return err
			}
			fields = append(fields, nested...)
			return nil
		}
		s, err := l.ReadString()
		if err != nil {
			return err
		}
		fields = append(fields, s)
		return nil
	})
	return fields, err
}

// DiscardLine discards up to and including the next LF, used to recover
// after a response the decoder declines to parse in full.
func (l *Lexer) DiscardLine() error {
	for {
		b, err := l.r.ReadByte()
		if err != nil {
			return err
		}
		if b == '\n' {
			return nil
		}
	}
}

// NeedsQuoting reports whether s cannot be sent as a bare atom and must
// be quoted or sent as a literal.
func NeedsQuoting(s string) bool {
	if s == "" {
		return true
	}
	for i := 0; i < len(s); i++ {
		if !isPlainAtomChar(s[i]) {
			return true
		}
	}
	return false
}

// NeedsLiteral reports whether s contains bytes that cannot appear even
// in a quoted string and must be sent as a literal.
func NeedsLiteral(s string) bool {
	for i := 0; i < len(s); i++ {
		b := s[i]
		if b == '\r' || b == '\n' || b == 0 {
			return true
		}
		if b > 0x7e {
			return true
		}
	}
	return false
}

func isPlainAtomChar(b byte) bool {
	if b < 0x20 || b > 0x7e {
		return false
	}
	switch b {
	case '(', ')', '{', ' ', '%', '*', '"', '\\', ']':
		return false
	}
	return true
}
