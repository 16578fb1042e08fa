package wire

import (
	"fmt"
	"strings"

	imap "github.com/kestrelmail/imap"
)

// Response is the decoded form of a single line of server output: a
// continuation request, a status response (tagged or untagged), or an
// untagged data response.
type Response interface {
	isResponse()
}

// ContinuationRequest is a "+ ..." line, sent by the server when it wants
// more data before it will process the rest of a command (a literal's
// payload, or a SASL challenge).
type ContinuationRequest struct {
	Text string
}

func (ContinuationRequest) isResponse() {}

// StatusResponse is a tagged or untagged OK/NO/BAD/BYE/PREAUTH response.
// Tag is "" for untagged status responses (including the greeting).
type StatusResponse struct {
	Tag string
	*imap.StatusResponse
}

func (StatusResponse) isResponse() {}

// DataResponse is an untagged response carrying data: "* <name> <fields>"
// or "* <num> <name> <fields>".
type DataResponse struct {
	Name   string
	Num    uint32
	HasNum bool
	Fields []Token
}

func (DataResponse) isResponse() {}

// ReadResponse decodes one complete response line.
func ReadResponse(l *Lexer) (Response, error) {
	b, err := l.PeekByte()
	if err != nil {
		return nil, err
	}

	switch b {
	case '+':
		_, _ = readRawByte(l)
		if nb, err := l.PeekByte(); err == nil && nb == ' ' {
			_, _ = readRawByte(l)
		}
		text, err := readToCRLF(l)
		if err != nil {
			return nil, err
		}
		return ContinuationRequest{Text: text}, nil
	case '*':
		_, _ = readRawByte(l)
		if err := l.ReadSP(); err != nil {
			return nil, err
		}
		return readUntagged(l)
	default:
		tag, err := l.ReadAtom()
		if err != nil {
			return nil, err
		}
		if err := l.ReadSP(); err != nil {
			return nil, err
		}
		sr, err := readStatus(l)
		if err != nil {
			return nil, err
		}
		return StatusResponse{Tag: tag, StatusResponse: sr}, nil
	}
}

func readRawByte(l *Lexer) (byte, error) {
	return l.r.ReadByte()
}

// readToCRLF reads raw text (no token structure) up to and including the
// terminating CRLF, returning the text without the CRLF.
func readToCRLF(l *Lexer) (string, error) {
	var sb strings.Builder
	for {
		b, err := l.r.ReadByte()
		if err != nil {
			return "", err
		}
		if b == '\r' {
			nxt, err := l.r.ReadByte()
			if err != nil {
				return "", err
			}
			if nxt != '\n' {
				return "", &imap.ProtocolError{Expected: "LF after CR", Got: fmt.Sprintf("%q", nxt)}
			}
			return sb.String(), nil
		}
		sb.WriteByte(b)
	}
}

// readUntagged decodes the part of an untagged response after "* ":
// either a status word (OK/NO/BAD/BYE/PREAUTH), a numbered data response
// ("<n> EXISTS"), or a named data response ("CAPABILITY ...", "LIST ...").
func readUntagged(l *Lexer) (Response, error) {
	b, err := l.PeekByte()
	if err != nil {
		return nil, err
	}

	if isDigit(b) {
		num, err := l.ReadNumber()
		if err != nil {
			return nil, err
		}
		if err := l.ReadSP(); err != nil {
			return nil, err
		}
		name, err := l.ReadAtom()
		if err != nil {
			return nil, err
		}
		fields, err := readRemainingFields(l)
		if err != nil {
			return nil, err
		}
		return DataResponse{Name: strings.ToUpper(name), Num: num, HasNum: true, Fields: fields}, nil
	}

	name, err := l.ReadAtom()
	if err != nil {
		return nil, err
	}
	upper := strings.ToUpper(name)
	switch upper {
	case "OK", "NO", "BAD", "BYE", "PREAUTH":
		sr, err := readStatusBody(l, imap.StatusResponseType(upper))
		if err != nil {
			return nil, err
		}
		return StatusResponse{StatusResponse: sr}, nil
	}

	fields, err := readRemainingFields(l)
	if err != nil {
		return nil, err
	}
	return DataResponse{Name: upper, Fields: fields}, nil
}

// ReadNamedResponse reads "* NUM NAME fields" the way the grammar
// actually lays it out (number before name) but hands callers a
// DataResponse with Name already in field [0]'s conventional place
// dropped: the RFC grammar for responses like "* 172 EXISTS" places the
// numeric argument first and the response name second, the reverse of
// every other untagged response ("* NAME fields"). ReadResponse already
// normalizes this — by the time a DataResponse reaches the caller, Name
// holds the response name and Num/HasNum hold the leading number — so
// callers never need to special-case the flipped wire order themselves.
func ReadNamedResponse(l *Lexer) (DataResponse, error) {
	resp, err := ReadResponse(l)
	if err != nil {
		return DataResponse{}, err
	}
	dr, ok := resp.(DataResponse)
	if !ok {
		return DataResponse{}, &imap.ProtocolError{Expected: "data response", Got: fmt.Sprintf("%T", resp)}
	}
	return dr, nil
}

func readRemainingFields(l *Lexer) ([]Token, error) {
	var fields []Token
	for {
		b, err := l.PeekByte()
		if err != nil {
			return nil, err
		}
		if b == '\r' {
			if err := l.ReadCRLF(); err != nil {
				return nil, err
			}
			return fields, nil
		}
		if err := l.ReadSP(); err != nil {
			return nil, err
		}
		tok, err := l.ReadToken()
		if err != nil {
			return nil, err
		}
		fields = append(fields, tok)
	}
}

// readStatus reads a status response's type word followed by its body:
// used for tagged responses, where the type word hasn't been consumed
// yet.
func readStatus(l *Lexer) (*imap.StatusResponse, error) {
	word, err := l.ReadAtom()
	if err != nil {
		return nil, err
	}
	upper := strings.ToUpper(word)
	switch upper {
	case "OK", "NO", "BAD", "BYE", "PREAUTH":
		return readStatusBody(l, imap.StatusResponseType(upper))
	default:
		return nil, &imap.ProtocolError{Expected: "status response type", Got: word}
	}
}

// readStatusBody reads the optional "[CODE ...]" and trailing human text
// that follow a status type word, up to the terminating CRLF.
func readStatusBody(l *Lexer, typ imap.StatusResponseType) (*imap.StatusResponse, error) {
	sr := &imap.StatusResponse{Type: typ}

	b, err := l.PeekByte()
	if err != nil {
		return nil, err
	}
	if b == ' ' {
		_, _ = l.r.ReadByte()
		b, err = l.PeekByte()
		if err != nil {
			return nil, err
		}
		if b == '[' {
			_, _ = l.r.ReadByte()
			code, args, err := readRespCode(l)
			if err != nil {
				return nil, err
			}
			sr.Code = code
			sr.Arguments = args
			if err := l.ExpectByte(']'); err != nil {
				return nil, err
			}
			nb2, err := l.PeekByte()
			if err == nil && nb2 == ' ' {
				_, _ = l.r.ReadByte()
			}
		}
		text, err := readToCRLF(l)
		if err != nil {
			return nil, err
		}
		sr.Text = text
		return sr, nil
	}

	if err := l.ReadCRLF(); err != nil {
		return nil, err
	}
	return sr, nil
}

// readRespCode reads a response code's body — the part between "[" (already
// consumed by the caller) and its closing "]" (left for the caller to
// consume) — as a name followed by a token per field, the same grammar
// every other response's fields use rather than a raw text scan. The
// first field must be a non-empty, non-numeric atom; it's uppercased and
// returned as the code, with the rest of the fields returned as its
// arguments.
func readRespCode(l *Lexer) (imap.ResponseCode, []Token, error) {
	l.EnterRespCode()
	fields, err := readRespCodeFields(l)
	l.ExitRespCode()
	if err != nil {
		return "", nil, err
	}
	if len(fields) == 0 {
		return "", nil, &imap.ProtocolError{Expected: "response code", Got: "empty"}
	}
	first := fields[0]
	if first.IsList || first.Str == "" || isAllDigits(first.Str) {
		return "", nil, &imap.ProtocolError{Expected: "response code name", Got: first.String()}
	}
	return imap.ResponseCode(strings.ToUpper(first.Str)), fields[1:], nil
}

// readRespCodeFields reads the space-separated tokens of a response
// code's body, stopping (without consuming) at the closing "]".
func readRespCodeFields(l *Lexer) ([]Token, error) {
	var fields []Token
	for {
		b, err := l.PeekByte()
		if err != nil {
			return nil, err
		}
		if b == ']' {
			return fields, nil
		}
		if len(fields) > 0 {
			if err := l.ReadSP(); err != nil {
				return nil, err
			}
		}
		tok, err := l.ReadToken()
		if err != nil {
			return nil, err
		}
		fields = append(fields, tok)
	}
}

func isAllDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
