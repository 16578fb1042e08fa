package client

import (
	"strings"

	imap "github.com/kestrelmail/imap"
	"github.com/kestrelmail/imap/wire"
)

// listHandler collects the "* LIST ..." or "* LSUB ..." responses a
// LIST/LSUB command produces into a slice of imap.MailboxInfo, decoding
// each reported name back out of modified UTF-7.
type listHandler struct {
	name    string // "LIST" or "LSUB"
	entries []imap.MailboxInfo
	err     error
}

func (h *listHandler) Handle(resp wire.DataResponse) error {
	if resp.Name != h.name {
		return nil
	}

	info, err := parseMailboxListResponse(resp)
	if err != nil {
		h.err = err
		return err
	}
	h.entries = append(h.entries, info)
	return nil
}

// parseMailboxListResponse decodes the three fields of a list response:
// a parenthesized list of attributes, a quoted-string or NIL delimiter,
// and the mailbox name (RFC 3501 section 7.2.2).
func parseMailboxListResponse(resp wire.DataResponse) (imap.MailboxInfo, error) {
	if len(resp.Fields) < 3 {
		return imap.MailboxInfo{}, &imap.ProtocolError{
			Expected: "at least 3 fields (attrs, delimiter, name)",
			Got:      strings.Join(fieldStrings(resp.Fields), " "),
		}
	}

	var info imap.MailboxInfo

	attrsTok := resp.Fields[0]
	if attrsTok.IsList {
		info.Attrs = make([]imap.MailboxAttr, len(attrsTok.List))
		for i, a := range attrsTok.List {
			info.Attrs[i] = imap.MailboxAttr(a)
		}
	}

	delimTok := resp.Fields[1]
	if delimTok.Str != "" {
		r := []rune(delimTok.Str)
		if len(r) != 1 {
			return imap.MailboxInfo{}, &imap.ProtocolError{Expected: "single-character delimiter", Got: delimTok.Str}
		}
		info.Delim = r[0]
	}

	nameTok := resp.Fields[2]
	name, err := wire.DecodeMailboxName(nameTok.Str)
	if err != nil {
		return imap.MailboxInfo{}, err
	}
	info.Name = name

	return info, nil
}

func fieldStrings(fields []wire.Token) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		if f.IsList {
			out[i] = "(" + strings.Join(f.List, " ") + ")"
		} else {
			out[i] = f.Str
		}
	}
	return out
}

// List returns the mailboxes matching pattern under reference (RFC 3501
// section 6.3.8). An empty pattern requests only the hierarchy delimiter
// and the root name.
func (c *Client) List(reference, pattern string) ([]imap.MailboxInfo, error) {
	return c.list(imap.CommandList, reference, pattern)
}

// Lsub returns the subscribed mailboxes matching pattern under
// reference (RFC 3501 section 6.3.9).
func (c *Client) Lsub(reference, pattern string) ([]imap.MailboxInfo, error) {
	return c.list(imap.CommandLsub, reference, pattern)
}

func (c *Client) list(command, reference, pattern string) ([]imap.MailboxInfo, error) {
	if err := c.requireState(imap.ConnStateAuthenticated, imap.ConnStateSelected); err != nil {
		return nil, err
	}

	handler := &listHandler{name: strings.ToUpper(command)}
	parts := []commandPart{mailboxNamePart(reference), listPatternPart(pattern)}

	_, err := c.execute(command, parts, handler)
	if err != nil {
		return nil, err
	}
	if handler.err != nil {
		return nil, handler.err
	}
	return handler.entries, nil
}

// listPatternPart encodes a LIST/LSUB mailbox pattern. Patterns may
// contain the wildcards '%' and '*', which modified UTF-7 leaves
// untouched, so the same astring encoding mailbox names use applies
// here unchanged.
func listPatternPart(pattern string) commandPart {
	return mailboxNamePart(pattern)
}
