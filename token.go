package imap

import "strings"

// Token is one element of a response's argument list: either a bare
// string (atom, quoted string, literal, or NIL rendered as ""), or a
// parenthesized list of strings one level deep. IMAP's response grammar
// never requires more than one level of list nesting to be visible to a
// generic decoder — deeper structure (BODYSTRUCTURE, ENVELOPE) is always
// parsed by a command-specific reader built on top of these primitives,
// not by the generic token reader itself.
//
// Token lives in this package rather than wire, where it's read, so that
// StatusResponse.Arguments can hold a slice of them without wire (which
// already imports this package for StatusResponseType/ResponseCode)
// importing back.
type Token struct {
	IsList bool
	Str    string
	List   []string
}

// String renders the token in roughly wire form, for logs and errors.
func (t Token) String() string {
	if t.IsList {
		return "(" + strings.Join(t.List, " ") + ")"
	}
	return t.Str
}
