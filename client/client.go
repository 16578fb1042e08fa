// Package client implements a synchronous IMAP4rev1 client: one command
// is in flight on the connection at a time, and Execute blocks until
// that command's tagged status response arrives.
package client

import (
	"bufio"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	imap "github.com/kestrelmail/imap"
	"github.com/kestrelmail/imap/state"
	"github.com/kestrelmail/imap/wire"
	"github.com/kestrelmail/imap/wire/utf7"
)

// Handler receives the untagged data responses produced while a command
// is executing. CAPABILITY data responses are handled by the client
// itself and never reach a Handler; everything else — "* LIST ...",
// "* 4 EXISTS", and so on — is handed to whichever Handler the in-flight
// command registered. Untagged status responses (OK/NO/BAD/BYE/PREAUTH)
// are not passed to Handle; they reach the handler only through
// HandleStatus, when it also implements StatusHandler.
type Handler interface {
	Handle(resp wire.DataResponse) error
}

// HandlerFunc adapts a plain function to a Handler.
type HandlerFunc func(resp wire.DataResponse) error

// Handle calls f.
func (f HandlerFunc) Handle(resp wire.DataResponse) error { return f(resp) }

// StatusHandler is an optional extension to Handler for commands that
// need to inspect untagged status responses arriving while they're in
// flight, not just untagged data responses. SELECT is the motivating
// case: a server reports UIDNEXT, UIDVALIDITY, UNSEEN, and
// PERMANENTFLAGS as response codes on untagged "* OK [...]" lines, not
// on the final tagged completion (RFC 3501 section 6.3.1).
type StatusHandler interface {
	HandleStatus(sr *imap.StatusResponse) error
}

// commandPart is one argument of a command line: either inline text
// (already quoted/atom-encoded by the caller) or a literal payload that
// must wait for the server's continuation request before its bytes are
// written.
type commandPart struct {
	text    string
	literal []byte
}

func textPart(s string) commandPart { return commandPart{text: s} }

func literalPart(raw string) commandPart {
	return commandPart{text: fmt.Sprintf("{%d}", len(raw)), literal: []byte(raw)}
}

// astringPart builds the correct commandPart for an astring argument,
// choosing inline quoting or a literal the way wire.EncodeAString does.
func astringPart(s string) commandPart {
	if wire.NeedsLiteral(s) {
		return literalPart(s)
	}
	return textPart(wire.EncodeAString(s))
}

// mailboxNamePart builds the commandPart for a mailbox-name argument:
// INBOX, in any letter case, is sent as the bare atom "INBOX"; anything else is
// transcoded to modified UTF-7 and then sent as an astring, with a real
// literal handshake if the encoded name needs one. wire.EncodeMailboxName
// can't be used directly here since it collapses the literal case down
// to just the "{n}" header string, losing the payload bytes a
// commandPart needs to carry.
func mailboxNamePart(name string) commandPart {
	if strings.EqualFold(name, "INBOX") {
		return textPart("INBOX")
	}
	return astringPart(utf7.EncodeMailboxName(name))
}

// Client is a single IMAP4rev1 connection.
type Client struct {
	conn    net.Conn
	bw      *bufio.Writer
	lex     *wire.Lexer
	options *Options
	tags    *tagGenerator
	machine *state.Machine

	mu   sync.Mutex // serializes Execute: one command in flight at a time
	caps *imap.CapabilitySet

	closeMu sync.Mutex // guards closed; separate from mu so Close never waits for a command
	closed  bool
	lastErr error
}

// New wraps an already-connected net.Conn, reads the server greeting,
// and returns a Client ready to send commands.
func New(conn net.Conn, opts ...Option) (*Client, error) {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	lex := wire.NewLexer(conn)
	lex.MaxLiteralSize = options.MaxLiteralSize

	c := &Client{
		conn:    conn,
		bw:      bufio.NewWriter(conn),
		lex:     lex,
		options: options,
		tags:    newTagGenerator("a"),
		machine: state.New(imap.ConnStateConnecting),
		caps:    imap.NewCapabilitySet(),
	}

	if err := c.readGreeting(); err != nil {
		return nil, err
	}

	return c, nil
}

// Dial connects to addr over plain TCP and performs the handshake. Real
// deployments should prefer DialTLS; Dial exists for servers reached
// through an already-encrypted tunnel.
func Dial(ctx context.Context, addr string, opts ...Option) (*Client, error) {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(options)
	}
	d := net.Dialer{Timeout: options.DialTimeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("imap: dial: %w", err)
	}
	return New(conn, opts...)
}

// DialTLS connects to addr over TLS and performs the handshake.
func DialTLS(ctx context.Context, addr string, opts ...Option) (*Client, error) {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(options)
	}
	d := net.Dialer{Timeout: options.DialTimeout}
	tlsConfig := options.TLSConfig
	if tlsConfig == nil {
		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			host = addr
		}
		tlsConfig = &tls.Config{ServerName: host, MinVersion: tls.VersionTLS12}
	}
	conn, err := tls.DialWithDialer(&d, "tcp", addr, tlsConfig)
	if err != nil {
		return nil, fmt.Errorf("imap: dial TLS: %w", err)
	}
	return New(conn, opts...)
}

func (c *Client) readGreeting() error {
	resp, err := wire.ReadResponse(c.lex)
	if err != nil {
		return fmt.Errorf("imap: reading greeting: %w", err)
	}
	sr, ok := resp.(wire.StatusResponse)
	if !ok || sr.Tag != "" {
		return fmt.Errorf("imap: unexpected greeting: %T", resp)
	}

	c.options.Logger.Debug("greeting", "status", sr.Type, "text", sr.Text)

	var target imap.ConnState
	switch sr.Type {
	case imap.StatusOK:
		target = imap.ConnStateNotAuthenticated
	case imap.StatusPREAUTH:
		target = imap.ConnStateAuthenticated
	case imap.StatusBYE:
		return &imap.CommandError{StatusResponse: sr.StatusResponse}
	default:
		return &imap.ProtocolError{Expected: "OK, PREAUTH, or BYE greeting", Got: string(sr.Type)}
	}
	if err := c.machine.Transition(target); err != nil {
		return err
	}

	c.applyCapabilityCode(sr.StatusResponse)
	return nil
}

// State returns the current connection state.
func (c *Client) State() imap.ConnState {
	return c.machine.State()
}

// Capabilities returns the capability set most recently advertised by
// the server, whether from the greeting, a CAPABILITY command, or a
// response code piggybacked on another command's status.
func (c *Client) Capabilities() *imap.CapabilitySet {
	return c.caps
}

// LastError returns the error that ended the session (a transport
// failure, an unexpected continuation request, or an error returned by a
// command's handler), or nil if the session is still usable.
func (c *Client) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// requireState is called by each command builder before sending its
// command, so a command forbidden in the current state (e.g. LOGIN after
// the client is already authenticated) fails locally instead of round
// tripping to the server.
func (c *Client) requireState(allowed ...imap.ConnState) error {
	return c.machine.RequireState(allowed...)
}

// transition is called by a command builder once its tagged status
// response confirms the command succeeded.
func (c *Client) transition(target imap.ConnState) error {
	return c.machine.Transition(target)
}

// Close closes the underlying connection. Any Execute blocked on a read
// unblocks with a transport error.
func (c *Client) Close() error {
	c.closeMu.Lock()
	if c.closed {
		c.closeMu.Unlock()
		return nil
	}
	c.closed = true
	c.closeMu.Unlock()
	return c.conn.Close()
}

// Execute sends the command name with args, each written to the wire as
// given (quoting and encoding them is the caller's job), and blocks until
// the command's tagged status response arrives. Untagged responses
// received meanwhile are passed to handler, which may be nil. A NO or BAD
// completion is returned together with an *imap.CommandError.
func (c *Client) Execute(name string, args []string, handler Handler) (*imap.StatusResponse, error) {
	parts := make([]commandPart, len(args))
	for i, a := range args {
		parts[i] = textPart(a)
	}
	return c.execute(name, parts, handler)
}

// execute sends one command and drives the read loop until the matching
// tagged status response arrives. It is the single choke point every
// public command (Login, Select, List, ...) funnels through, which is
// what makes "one command at a time" an enforced invariant rather than a
// convention: Execute holds c.mu for its entire duration, so a second
// goroutine calling it blocks until the first command's tagged response
// has been read.
func (c *Client) execute(name string, parts []commandPart, handler Handler) (*imap.StatusResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.lastErr != nil {
		return nil, c.lastErr
	}

	tag := c.tags.Next()

	if c.options.WriteTimeout > 0 {
		_ = c.conn.SetWriteDeadline(time.Now().Add(c.options.WriteTimeout))
	}
	if err := c.writeCommand(tag, name, parts); err != nil {
		c.lastErr = err
		return nil, err
	}

	if c.options.ReadTimeout > 0 {
		_ = c.conn.SetReadDeadline(time.Now().Add(c.options.ReadTimeout))
	}

	for {
		resp, err := wire.ReadResponse(c.lex)
		if err != nil {
			c.lastErr = fmt.Errorf("imap: reading response to %s: %w", tag, err)
			return nil, c.lastErr
		}

		switch v := resp.(type) {
		case wire.ContinuationRequest:
			c.options.Logger.Debug("recv", "continuation", v.Text)
			// A continuation outside of a literal handshake means the
			// server is asking for something this client doesn't speak
			// (e.g. a SASL challenge); nothing more to send, so treat it
			// as a protocol error rather than hanging forever.
			c.lastErr = fmt.Errorf("imap: unexpected continuation request: %s", v.Text)
			return nil, c.lastErr

		case wire.StatusResponse:
			if v.Tag == tag {
				c.options.Logger.Debug("recv", "tag", tag, "status", v.Type)
				c.applyCapabilityCode(v.StatusResponse)
				if v.Type == imap.StatusNO || v.Type == imap.StatusBAD {
					return v.StatusResponse, &imap.CommandError{StatusResponse: v.StatusResponse}
				}
				return v.StatusResponse, nil
			}
			c.options.Logger.Debug("recv", "untagged-status", v.Type, "text", v.Text)
			c.applyCapabilityCode(v.StatusResponse)
			if v.Type == imap.StatusBYE && c.machine.CanTransition(imap.ConnStateLogout) {
				_ = c.machine.Transition(imap.ConnStateLogout)
			}
			if sh, ok := handler.(StatusHandler); ok {
				if err := sh.HandleStatus(v.StatusResponse); err != nil {
					c.lastErr = err
					return nil, err
				}
			}

		case wire.DataResponse:
			c.options.Logger.Debug("recv", "data", v.Name, "num", v.Num, "hasNum", v.HasNum, "fields", humanize.Comma(int64(len(v.Fields))))
			if v.Name == "CAPABILITY" {
				c.replaceCapabilities(v.Fields)
				continue
			}
			if handler != nil {
				if err := handler.Handle(v); err != nil {
					c.lastErr = err
					return nil, err
				}
			}
		}
	}
}

// writeCommand writes "TAG SP NAME" followed by each part, issuing
// continuation requests for literal parts and writing their payloads
// once the server asks for them, before finally writing CRLF.
func (c *Client) writeCommand(tag, name string, parts []commandPart) error {
	var logLine strings.Builder
	logLine.WriteString(tag)
	logLine.WriteByte(' ')
	logLine.WriteString(name)

	if _, err := c.bw.WriteString(tag); err != nil {
		return err
	}
	if err := c.bw.WriteByte(' '); err != nil {
		return err
	}
	if _, err := c.bw.WriteString(name); err != nil {
		return err
	}

	for _, part := range parts {
		if err := c.bw.WriteByte(' '); err != nil {
			return err
		}
		if _, err := c.bw.WriteString(part.text); err != nil {
			return err
		}
		logLine.WriteByte(' ')
		logLine.WriteString(part.text)

		if part.literal == nil {
			continue
		}

		if _, err := c.bw.WriteString("\r\n"); err != nil {
			return err
		}
		if err := c.bw.Flush(); err != nil {
			return err
		}

		resp, err := wire.ReadResponse(c.lex)
		if err != nil {
			return fmt.Errorf("imap: waiting for continuation: %w", err)
		}
		if _, ok := resp.(wire.ContinuationRequest); !ok {
			return fmt.Errorf("imap: expected continuation request for literal, got %T", resp)
		}

		c.options.Logger.Debug("send", "literal-bytes", humanize.Bytes(uint64(len(part.literal))))
		lw := wire.NewLiteralWriter(c.bw, int64(len(part.literal)))
		if _, err := lw.Write(part.literal); err != nil {
			return err
		}
		if lw.Remaining() != 0 {
			return fmt.Errorf("imap: literal write incomplete: %d bytes remaining", lw.Remaining())
		}
	}

	if _, err := c.bw.WriteString("\r\n"); err != nil {
		return err
	}

	c.options.Logger.Debug("send", "line", logLine.String())
	return c.bw.Flush()
}

// applyCapabilityCode updates the cached capability set if sr carries a
// CAPABILITY response code.
func (c *Client) applyCapabilityCode(sr *imap.StatusResponse) {
	if sr == nil || sr.Code != imap.ResponseCodeCapability {
		return
	}
	caps := make([]imap.Cap, 0, len(sr.Arguments))
	for _, arg := range sr.Arguments {
		if !arg.IsList {
			caps = append(caps, imap.Cap(arg.Str))
		}
	}
	c.caps.Replace(caps)
}

func (c *Client) replaceCapabilities(fields []wire.Token) {
	caps := make([]imap.Cap, 0, len(fields))
	for _, f := range fields {
		if !f.IsList {
			caps = append(caps, imap.Cap(f.Str))
		}
	}
	c.caps.Replace(caps)
}

// parseUint32 is a small helper shared by the command builders that read
// numeric response-code arguments (UIDNEXT, UIDVALIDITY, UNSEEN).
func parseUint32(s string) uint32 {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0
	}
	return uint32(n)
}
