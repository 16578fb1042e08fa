package wire

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kestrelmail/imap/wire/utf7"
)

// Command is a single IMAP command line: "TAG SP NAME (SP ARG)* CRLF".
// Unlike the generic token reader on the decode side, Command does not
// try to be a universal encoder for every IMAP data type — each command
// builder in the client package is responsible for quoting its own
// arguments (mailbox names, strings with special characters) before
// they reach here, the same way the original implementation this client
// is modeled on left quoting to each command constructor rather than to
// a shared encoder.
type Command struct {
	Tag  string
	Name string
	Args []string
}

// Serialise writes the command line to w and flushes it.
func (c *Command) Serialise(w io.Writer) error {
	bw, ok := w.(*bufio.Writer)
	if !ok {
		bw = bufio.NewWriter(w)
	}
	if _, err := bw.WriteString(c.Tag); err != nil {
		return err
	}
	if err := bw.WriteByte(' '); err != nil {
		return err
	}
	if _, err := bw.WriteString(c.Name); err != nil {
		return err
	}
	for _, arg := range c.Args {
		if err := bw.WriteByte(' '); err != nil {
			return err
		}
		if _, err := bw.WriteString(arg); err != nil {
			return err
		}
	}
	if _, err := bw.WriteString("\r\n"); err != nil {
		return err
	}
	return bw.Flush()
}

// String renders the command line without a trailing CRLF, for logging.
func (c *Command) String() string {
	var sb strings.Builder
	sb.WriteString(c.Tag)
	sb.WriteByte(' ')
	sb.WriteString(c.Name)
	for _, arg := range c.Args {
		sb.WriteByte(' ')
		sb.WriteString(arg)
	}
	return sb.String()
}

// QuoteString renders s as a quoted string, escaping '"' and '\'.
func QuoteString(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		if s[i] == '"' || s[i] == '\\' {
			sb.WriteByte('\\')
		}
		sb.WriteByte(s[i])
	}
	sb.WriteByte('"')
	return sb.String()
}

// EncodeAString renders s as an astring argument: a bare atom if
// possible, otherwise a quoted string, otherwise (if it contains bytes
// that can't appear in a quoted string at all) a synchronizing literal.
// Literal arguments can't be expressed as a single string: in that case
// only the "{n}" header is returned, and IsLiteralArg tells the caller
// it must wait for a continuation request before writing the payload.
func EncodeAString(s string) string {
	if NeedsLiteral(s) {
		return fmt.Sprintf("{%d}", len(s))
	}
	if NeedsQuoting(s) {
		return QuoteString(s)
	}
	return s
}

// IsLiteralArg reports whether EncodeAString(s) produced a literal header
// rather than an inline argument, meaning the caller must write s's bytes
// as the literal payload after the server's continuation request.
func IsLiteralArg(s string) bool {
	return NeedsLiteral(s)
}

// LiteralHeaderFor formats the literal size header for s, e.g. "{12}".
func LiteralHeaderFor(s string) string {
	return "{" + strconv.Itoa(len(s)) + "}"
}

// EncodeMailboxName renders a mailbox name argument: INBOX, in any letter
// case, is rendered as the bare atom "INBOX" (RFC 3501 section 5.1), anything else is
// first transcoded to modified UTF-7 (RFC 3501 section 5.1.3) and then
// sent as an astring.
func EncodeMailboxName(name string) string {
	if strings.EqualFold(name, "INBOX") {
		return "INBOX"
	}
	return EncodeAString(utf7.EncodeMailboxName(name))
}

// DecodeMailboxName reverses the wire encoding a server used for a
// mailbox name, converting it back from modified UTF-7.
func DecodeMailboxName(wireName string) (string, error) {
	if strings.EqualFold(wireName, "INBOX") {
		return wireName, nil
	}
	return utf7.DecodeMailboxName(wireName)
}
