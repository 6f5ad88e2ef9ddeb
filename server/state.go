// Package server implements the server-side IRC engine: a single
// goroutine owns the connection table, nickname index, and channel
// table, processing inbound ircmsg.Message values one at a time per
// spec.md section 4.5. Grounded on horgh/catbox's local_user.go (per-
// command handler shapes), local_client.go (pre-registration handling),
// and local_server.go (non-blocking send and broadcast-to-watchers
// patterns), generalized onto this project's typed codec and ISUPPORT
// store instead of hardcoded numeric strings.
package server

import (
	"time"

	"github.com/tsavola/ircd/capability"
	"github.com/tsavola/ircd/isupport"
)

// Info describes this server's own identity, replacing the TS6
// SID/hopcount fields the teacher's server.go carried (server-to-server
// linking is out of scope here).
type Info struct {
	Name        string
	Description string
	Created     time.Time
}

// Member is one user's membership record in one channel: their prefix
// modes (e.g. operator, voice) live here rather than on the User, since
// they are per-channel.
type Member struct {
	User   *User
	Modes  map[byte]bool // membership mode letters currently set, e.g. 'o', 'v'
}

// HighestPrefix returns the display symbol for the member's most
// privileged current membership mode, or 0 if they have none.
func (m *Member) HighestPrefix(store *isupport.Store) byte {
	for _, p := range store.Prefixes {
		if m.Modes[p.Mode] {
			return p.Symbol
		}
	}
	return 0
}

// Channel is one channel's state: membership, topic, list modes (e.g.
// bans), and scalar settings (key, limit). Expanded from channel.go's
// bare Members map per spec.md section 3's Channel data model.
type Channel struct {
	Name    string
	Topic   string
	TopicBy string
	TopicAt time.Time
	Created time.Time

	Members map[string]*Member // canonical nick -> member

	Modes map[byte]bool      // D-group flags currently on, e.g. 'n', 's'
	Lists map[byte][]string  // A-group modes: mode letter -> list of masks (bans, exceptions, invites)
	Key   string             // B-group "k" value, "" if unset
	Limit int                // C-group "l" value, 0 if unset
}

// NewChannel returns an empty channel record.
func NewChannel(name string) *Channel {
	return &Channel{
		Name:    name,
		Created: time.Now(),
		Members: map[string]*Member{},
		Modes:   map[byte]bool{},
		Lists:   map[byte][]string{},
	}
}

// IsSecret reports the 's' channel mode. No handler consults it: WHOIS
// lists a user's channels whether or not they are secret, and there is no
// LIST command.
func (c *Channel) IsSecret() bool { return c.Modes['s'] }

// Status returns the RPL_NAMREPLY visibility symbol for the channel:
// "@" secret, "*" private, "=" public.
func (c *Channel) Status() string {
	switch {
	case c.Modes['s']:
		return "@"
	case c.Modes['p']:
		return "*"
	default:
		return "="
	}
}

// RegistrationState is a connection's place in the registration state
// machine described in spec.md section 4.4/4.5.
type RegistrationState int

const (
	StateConnecting RegistrationState = iota
	StateNegotiatingCaps
	StateRegistered
	StateClosed
)

// User is one connected, possibly not-yet-registered client as seen by
// the server engine.
type User struct {
	Conn Connection

	Nick    string
	User    string
	Realname string
	Host    string
	Away    string

	Caps *capability.Registry

	State RegistrationState

	IsOperator bool

	Channels map[string]bool // canonical channel name -> member

	LastActivity time.Time
	PingSent     bool

	// PendingNick/PendingUser buffer NICK/USER received before
	// registration is possible, mirroring local_client.go's
	// PreRegDisplayNick/PreRegUser fields.
	PendingNick string
	PendingUser bool
}

// NewUser returns a freshly-accepted, unregistered connection's state.
func NewUser(conn Connection) *User {
	return &User{
		Conn:     conn,
		Caps:     capability.NewRegistry(),
		State:    StateConnecting,
		Channels: map[string]bool{},
	}
}

// ReadyToRegister reports whether enough of NICK/USER/CAP has completed
// for the server to send the welcome sequence.
func (u *User) ReadyToRegister() bool {
	return u.PendingNick != "" && u.PendingUser && !u.Caps.IsNegotiating()
}
