package server

import (
	"strconv"

	"github.com/tsavola/ircd/ircmsg"
)

// isupportChunkSize is how many ISUPPORT tokens go on one 005 line before
// starting a new one; real servers chunk to stay well under the 512-byte
// line budget even with long NETWORK/CHANMODES values.
const isupportChunkSize = 13

// numeric builds a server-prefixed ircmsg.Message carrying a generic
// Numeric reply, mirroring local_user.go's numeric-construction helpers
// but driven by this project's typed codec instead of raw string
// building.
func (s *Server) numeric(u *User, code string, params ...string) *ircmsg.Message {
	full := append([]string{displayNick(u)}, params...)
	return &ircmsg.Message{
		Prefix:  &ircmsg.Prefix{Name: s.Info.Name},
		Command: ircmsg.Numeric{Code: code, Params: full},
	}
}

func displayNick(u *User) string {
	if u.Nick != "" {
		return u.Nick
	}
	return "*"
}

// welcomeSequence builds the 001-005 (plus LUSERS/MOTD) reply burst sent
// immediately after registration completes.
func (s *Server) welcomeSequence(u *User) []*ircmsg.Message {
	var msgs []*ircmsg.Message

	msgs = append(msgs, &ircmsg.Message{
		Prefix: &ircmsg.Prefix{Name: s.Info.Name},
		Command: ircmsg.Welcome{
			Nick: u.Nick,
			Text: "Welcome to the " + s.Info.Name + " network, " + u.Nick + "!" + u.User + "@" + u.Host,
		},
	})

	msgs = append(msgs, s.numeric(u, "002", "Your host is "+s.Info.Name+", running ircd"))
	msgs = append(msgs, s.numeric(u, "003", "This server was created "+s.Info.Created.Format("Mon Jan 2 2006 at 15:04:05 MST")))
	msgs = append(msgs, s.numeric(u, "004", s.Info.Name, "ircd-1", "ao", s.ISupport.ChanModes.D))

	tokens := s.ISupport.Tokens()
	for i := 0; i < len(tokens); i += isupportChunkSize {
		end := i + isupportChunkSize
		if end > len(tokens) {
			end = len(tokens)
		}
		msgs = append(msgs, &ircmsg.Message{
			Prefix: &ircmsg.Prefix{Name: s.Info.Name},
			Command: ircmsg.ISupport{
				Nick:   u.Nick,
				Tokens: tokens[i:end],
				Text:   "are supported by this server",
			},
		})
	}

	msgs = append(msgs, s.lusersMessages(u)...)
	msgs = append(msgs, s.motdMessages(u)...)

	return msgs
}

// lusersMessages builds the 251-255 LUSERS burst, grounded on
// local_user.go's lusersCommand.
func (s *Server) lusersMessages(u *User) []*ircmsg.Message {
	total := len(s.users)
	opers := 0
	for _, other := range s.users {
		if other.IsOperator {
			opers++
		}
	}
	return []*ircmsg.Message{
		s.numeric(u, "251", "There are "+strconv.Itoa(total)+" users on 1 server"),
		s.numeric(u, "252", strconv.Itoa(opers), "operator(s) online"),
		s.numeric(u, "254", strconv.Itoa(len(s.channels)), "channels formed"),
		s.numeric(u, "255", "I have "+strconv.Itoa(total)+" clients and 1 server"),
	}
}

// motdMessages builds the 375/372/376 MOTD burst, or 422 if no MOTD file
// is configured, grounded on local_user.go's motdCommand.
func (s *Server) motdMessages(u *User) []*ircmsg.Message {
	if len(s.motd) == 0 {
		return []*ircmsg.Message{s.numeric(u, "422", "MOTD File is missing")}
	}
	msgs := []*ircmsg.Message{s.numeric(u, "375", "- "+s.Info.Name+" Message of the day -")}
	for _, line := range s.motd {
		msgs = append(msgs, s.numeric(u, "372", "- "+line))
	}
	msgs = append(msgs, s.numeric(u, "376", "End of MOTD command"))
	return msgs
}
