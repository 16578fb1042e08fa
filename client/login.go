package client

import (
	imap "github.com/kestrelmail/imap"
)

// Login authenticates with a plaintext username and password (RFC 3501
// section 6.2.3). It is only valid in the not-authenticated state; the
// server's capability list should be checked for LOGINDISABLED before
// calling it over an unencrypted connection.
func (c *Client) Login(username, password string) error {
	if err := c.requireState(imap.ConnStateNotAuthenticated); err != nil {
		return err
	}

	parts := []commandPart{astringPart(username), astringPart(password)}
	_, err := c.execute(imap.CommandLogin, parts, nil)
	if err != nil {
		return err
	}

	return c.transition(imap.ConnStateAuthenticated)
}

// Logout sends LOGOUT and transitions to the logout state once the
// server acknowledges it. The connection should be closed afterward;
// Logout does not close it itself, since the caller may still want to
// read any trailing untagged BYE trace.
func (c *Client) Logout() error {
	_, err := c.execute(imap.CommandLogout, nil, nil)
	// The server always sends an untagged BYE before the tagged OK for
	// LOGOUT, which already drives the state machine to Logout inside
	// execute's read loop — but transition defensively in case a
	// nonconformant server omits it.
	if c.State() != imap.ConnStateLogout {
		_ = c.transition(imap.ConnStateLogout)
	}
	return err
}

// NOOP sends the NOOP command. It does nothing on its own but is a
// convenient way to let the server flush any pending untagged data
// (EXISTS/EXPUNGE, in servers that implement more than this client
// does) through handler.
func (c *Client) NOOP(handler Handler) error {
	_, err := c.execute(imap.CommandNoop, nil, handler)
	return err
}

// Capability sends the CAPABILITY command and returns the refreshed
// capability set.
func (c *Client) Capability() (*imap.CapabilitySet, error) {
	_, err := c.execute(imap.CommandCapability, nil, nil)
	if err != nil {
		return nil, err
	}
	return c.caps, nil
}
