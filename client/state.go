package client

import (
	"github.com/tsavola/ircd/capability"
	"github.com/tsavola/ircd/isupport"
)

// RegistrationState mirrors spec.md section 4.4's client-side state
// machine.
type RegistrationState int

const (
	StateConnecting RegistrationState = iota
	StateNegotiatingCaps
	StateRegistered
	StateClosed
)

// Me is the engine's own view of its registered identity, updated by the
// handlers watching RPL_WELCOME and NICK the way Travis-Britz-irc's
// clientState middleware does.
type Me struct {
	Nick string
	User string
	Host string
}

// Channel is the engine's local mirror of one joined channel's state.
type Channel struct {
	Name    string
	Topic   string
	Members map[string]byte // nick as received (not case-folded) -> prefix symbol, 0 if none
}

// State is everything the client engine tracks about its session.
type State struct {
	Me         Me
	Channels   map[string]*Channel
	ISupport   *isupport.Store
	Caps       *capability.Registry
	Status     RegistrationState
}

func newState() State {
	return State{
		Channels: map[string]*Channel{},
		ISupport: isupport.NewStore(),
		Caps:     capability.NewRegistry(),
	}
}
