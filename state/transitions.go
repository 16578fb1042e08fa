package state

import (
	imap "github.com/kestrelmail/imap"
)

// DefaultTransitions returns the RFC 3501 section 3 state transition
// rules for the commands this client implements.
//
// The allowed transitions are:
//   - Connecting -> NotAuthenticated (greeting type OK)
//   - Connecting -> Authenticated (greeting type PREAUTH)
//   - Connecting -> Logout (greeting type BYE)
//   - NotAuthenticated -> Authenticated (via LOGIN)
//   - NotAuthenticated -> Logout (via LOGOUT)
//   - Authenticated -> Selected (via SELECT/EXAMINE)
//   - Authenticated -> Logout (via LOGOUT)
//   - Selected -> Authenticated (not reachable without CLOSE/UNSELECT,
//     which this client doesn't implement, but kept for re-SELECT)
//   - Selected -> Selected (via SELECT/EXAMINE of another mailbox)
//   - Selected -> Logout (via LOGOUT)
func DefaultTransitions() map[imap.ConnState][]imap.ConnState {
	return map[imap.ConnState][]imap.ConnState{
		imap.ConnStateConnecting: {
			imap.ConnStateNotAuthenticated,
			imap.ConnStateAuthenticated,
			imap.ConnStateLogout,
		},
		imap.ConnStateNotAuthenticated: {
			imap.ConnStateAuthenticated,
			imap.ConnStateLogout,
		},
		imap.ConnStateAuthenticated: {
			imap.ConnStateSelected,
			imap.ConnStateLogout,
		},
		imap.ConnStateSelected: {
			imap.ConnStateAuthenticated,
			imap.ConnStateSelected,
			imap.ConnStateLogout,
		},
	}
}

// CommandAllowedStates returns the states in which a command is allowed.
func CommandAllowedStates(cmd string) []imap.ConnState {
	switch cmd {
	case imap.CommandCapability, imap.CommandNoop, imap.CommandLogout:
		return []imap.ConnState{
			imap.ConnStateNotAuthenticated,
			imap.ConnStateAuthenticated,
			imap.ConnStateSelected,
		}
	case imap.CommandLogin:
		return []imap.ConnState{
			imap.ConnStateNotAuthenticated,
		}
	case imap.CommandSelect, imap.CommandExamine, imap.CommandList, imap.CommandLsub:
		return []imap.ConnState{
			imap.ConnStateAuthenticated,
			imap.ConnStateSelected,
		}
	default:
		return nil
	}
}
