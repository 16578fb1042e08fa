package client

import (
	imap "github.com/kestrelmail/imap"
	"github.com/kestrelmail/imap/wire"
)

// selectHandler accumulates the untagged responses SELECT/EXAMINE
// produce (FLAGS, EXISTS, RECENT, and the OK response codes) into an
// imap.MailboxStatus. It's a Handler so it plugs into the same Execute
// loop every other command uses, rather than SELECT getting a bespoke
// response-reading path.
type selectHandler struct {
	status *imap.MailboxStatus
}

func (h *selectHandler) Handle(resp wire.DataResponse) error {
	switch resp.Name {
	case "FLAGS":
		h.status.Flags = tokensToFlags(resp.Fields)
	case "EXISTS":
		h.status.NumMessages = resp.Num
	case "RECENT":
		h.status.NumRecent = resp.Num
	}
	return nil
}

// HandleStatus applies the UIDNEXT/UIDVALIDITY/UNSEEN/PERMANENTFLAGS/
// READ-ONLY/READ-WRITE response codes a server reports on the untagged
// "* OK [...]" lines that precede SELECT/EXAMINE's tagged completion.
func (h *selectHandler) HandleStatus(sr *imap.StatusResponse) error {
	applySelectResponseCode(h.status, sr)
	return nil
}

func tokensToFlags(fields []wire.Token) []imap.Flag {
	if len(fields) != 1 || !fields[0].IsList {
		return nil
	}
	flags := make([]imap.Flag, len(fields[0].List))
	for i, s := range fields[0].List {
		flags[i] = imap.Flag(s)
	}
	return flags
}

// Select opens mailbox in read-write mode (RFC 3501 section 6.3.1).
func (c *Client) Select(mailbox string) (*imap.MailboxStatus, error) {
	return c.selectOrExamine(imap.CommandSelect, mailbox)
}

// Examine opens mailbox in read-only mode (RFC 3501 section 6.3.2).
func (c *Client) Examine(mailbox string) (*imap.MailboxStatus, error) {
	return c.selectOrExamine(imap.CommandExamine, mailbox)
}

func (c *Client) selectOrExamine(command, mailbox string) (*imap.MailboxStatus, error) {
	if err := c.requireState(imap.ConnStateAuthenticated, imap.ConnStateSelected); err != nil {
		return nil, err
	}

	status := &imap.MailboxStatus{Name: mailbox, ReadOnly: command == imap.CommandExamine}
	handler := &selectHandler{status: status}

	parts := []commandPart{mailboxNamePart(mailbox)}
	sr, err := c.execute(command, parts, handler)
	if err != nil {
		return nil, err
	}

	applySelectResponseCode(status, sr)

	if err := c.transition(imap.ConnStateSelected); err != nil {
		return nil, err
	}
	return status, nil
}

func applySelectResponseCode(status *imap.MailboxStatus, sr *imap.StatusResponse) {
	if sr == nil {
		return
	}
	switch sr.Code {
	case imap.ResponseCodeUIDNext:
		status.UIDNext = argNumber(sr.Arguments)
	case imap.ResponseCodeUIDValidity:
		status.UIDValidity = argNumber(sr.Arguments)
	case imap.ResponseCodeUnseen:
		status.FirstUnseen = argNumber(sr.Arguments)
	case imap.ResponseCodePermanentFlags:
		status.PermanentFlags = argFlags(sr.Arguments)
	case imap.ResponseCodeReadOnly:
		status.ReadOnly = true
	case imap.ResponseCodeReadWrite:
		status.ReadOnly = false
	}
}

// argNumber reads a response code's first argument as a number, the way
// UIDNEXT/UIDVALIDITY/UNSEEN carry their value. An argument that's
// missing or not a bare number yields 0 rather than an error: a response
// code a client can't fully parse shouldn't fail the whole command.
func argNumber(args []imap.Token) uint32 {
	if len(args) == 0 || args[0].IsList {
		return 0
	}
	return parseUint32(args[0].Str)
}

// argFlags reads a response code's first argument as a parenthesized
// flag list, the way PERMANENTFLAGS carries its value.
func argFlags(args []imap.Token) []imap.Flag {
	if len(args) == 0 || !args[0].IsList {
		return nil
	}
	flags := make([]imap.Flag, len(args[0].List))
	for i, s := range args[0].List {
		flags[i] = imap.Flag(s)
	}
	return flags
}
