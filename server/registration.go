package server

import (
	"github.com/tsavola/ircd/capability"
	"github.com/tsavola/ircd/ircmsg"
)

// handleCap implements the server side of CAP negotiation (spec.md
// section 4.3): LS/LIST answer from the fixed set of capabilities this
// server knows about, REQ is all-or-nothing, and END unblocks
// registration if NICK/USER have already arrived.
func (s *Server) handleCap(u *User, c ircmsg.Cap) {
	switch c.Subcommand {
	case "LS", "LIST":
		offered := map[string]string{
			capability.MessageTags: "",
			capability.ServerTime:  "",
			capability.EchoMessage: "",
			capability.AwayNotify:  "",
			capability.CapNotify:   "",
		}
		u.Caps.Offer(offered)
		names := make([]string, 0, len(offered))
		for name := range offered {
			names = append(names, name)
		}
		s.send(u, &ircmsg.Message{
			Prefix:  &ircmsg.Prefix{Name: s.Info.Name},
			Command: ircmsg.Cap{Subcommand: "LS", Caps: names},
		})
	case "REQ":
		ok, acked, nacked := u.Caps.Request(c.Caps)
		sub := "ACK"
		caps := acked
		if !ok {
			sub = "NAK"
			caps = nacked
		}
		s.send(u, &ircmsg.Message{
			Prefix:  &ircmsg.Prefix{Name: s.Info.Name},
			Command: ircmsg.Cap{Subcommand: sub, Caps: caps},
		})
	case "END":
		u.Caps.End()
		s.maybeCompleteRegistration(u)
	}
}

// handlePass accepts PASS pre-registration. This server has no global
// connection password today; it's accepted and ignored so clients that
// always send PASS aren't rejected.
func (s *Server) handlePass(u *User, p ircmsg.Pass) {
	_ = u
	_ = p
}

func (s *Server) handleNickPreReg(u *User, nick string) bool {
	key := canonical(nick)
	if existing, ok := s.nicks[key]; ok && existing != u {
		s.send(u, s.numeric(u, "433", nick, "Nickname is already in use"))
		return false
	}
	if u.Nick != "" {
		delete(s.nicks, canonical(u.Nick))
	}
	u.PendingNick = nick
	u.Nick = nick
	s.nicks[key] = u
	return true
}

func (s *Server) handleUserCommand(u *User, uc ircmsg.User) {
	if u.State == StateRegistered {
		return
	}
	u.User = uc.User
	u.Realname = uc.Realname
	u.PendingUser = true
	s.maybeCompleteRegistration(u)
}

// maybeCompleteRegistration completes registration once NICK, USER, and
// CAP negotiation (if any) have all finished, sending the welcome burst.
func (s *Server) maybeCompleteRegistration(u *User) {
	if u.State == StateRegistered || !u.ReadyToRegister() {
		return
	}
	if reason, banned := s.Bans.Match(u.User, u.Host); banned {
		s.send(u, &ircmsg.Message{Command: ircmsg.ErrorMsg{Reason: "Closing Link: (" + reason + ")"}})
		s.onDisconnect(u, reason)
		return
	}
	u.State = StateRegistered
	for _, msg := range s.welcomeSequence(u) {
		s.send(u, msg)
	}
}
