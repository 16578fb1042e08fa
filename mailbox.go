package imap

// MailboxStatus is the mailbox state reported by a SELECT or EXAMINE
// command, accumulated from the untagged responses that precede the
// tagged status (RFC 3501 section 6.3.1).
type MailboxStatus struct {
	// Name is the mailbox name as given to SELECT/EXAMINE.
	Name string
	// Flags is the list of flags defined in the mailbox.
	Flags []Flag
	// PermanentFlags is the list of flags the client can change
	// permanently, from the PERMANENTFLAGS response code.
	PermanentFlags []Flag
	// NumMessages is the number of messages in the mailbox (EXISTS).
	NumMessages uint32
	// NumRecent is the number of messages with the \Recent flag (RECENT).
	NumRecent uint32
	// UIDNext is the predicted next UID, from the UIDNEXT response code.
	UIDNext uint32
	// UIDValidity is the UID validity value, from the UIDVALIDITY
	// response code.
	UIDValidity uint32
	// FirstUnseen is the sequence number of the first unseen message,
	// from the UNSEEN response code. Zero if absent.
	FirstUnseen uint32
	// ReadOnly is true if the mailbox was opened read-only, either
	// because EXAMINE was used or because the server downgraded a
	// SELECT via the READ-ONLY response code.
	ReadOnly bool
}

// MailboxInfo is a single LIST or LSUB response (RFC 3501 section 7.2.2
// and 7.2.3).
type MailboxInfo struct {
	// Attrs is the list of mailbox name attributes.
	Attrs []MailboxAttr
	// Delim is the hierarchy delimiter, or 0 if the server reported NIL.
	Delim rune
	// Name is the mailbox name, decoded from modified UTF-7.
	Name string
}

// HasAttr returns true if the mailbox was reported with the given
// attribute.
func (m *MailboxInfo) HasAttr(attr MailboxAttr) bool {
	for _, a := range m.Attrs {
		if a == attr {
			return true
		}
	}
	return false
}
