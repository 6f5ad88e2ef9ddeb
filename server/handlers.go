package server

import (
	"strconv"
	"strings"

	"github.com/tsavola/ircd/capability"
	"github.com/tsavola/ircd/ircmsg"
)

// dispatch routes one parsed message to its handler. Every bespoke
// Command variant a client may send has a case; the server-to-client
// numeric variants (Welcome, ISupport, NamReply, WhoisChannels) and
// ircmsg.Numeric (the generic fallback) fall to the default and are
// answered with ERR_UNKNOWNCOMMAND.
func (s *Server) dispatch(u *User, msg *ircmsg.Message) {
	switch cmd := msg.Command.(type) {
	case ircmsg.Cap:
		s.handleCap(u, cmd)
	case ircmsg.Pass:
		s.handlePass(u, cmd)
	case ircmsg.Nick:
		s.handleNick(u, cmd)
	case ircmsg.User:
		s.handleUserCommand(u, cmd)
	case ircmsg.Oper:
		s.handleOper(u, cmd)
	case ircmsg.Ping:
		s.send(u, &ircmsg.Message{Prefix: &ircmsg.Prefix{Name: s.Info.Name}, Command: ircmsg.Pong{Token: cmd.Token}})
	case ircmsg.Pong:
		// Nothing to do: onLine already cleared PingSent/LastActivity.
	case ircmsg.Quit:
		s.onDisconnect(u, quitReason(cmd.Reason))
	case ircmsg.Join:
		s.handleJoin(u, cmd)
	case ircmsg.Part:
		s.handlePart(u, cmd)
	case ircmsg.Kick:
		s.handleKick(u, cmd)
	case ircmsg.Mode:
		s.handleMode(u, cmd)
	case ircmsg.Topic:
		s.handleTopic(u, cmd)
	case ircmsg.Privmsg:
		s.handleMessage(u, msg.Tags, cmd.Target, cmd.Text, cmd.CTCP, false)
	case ircmsg.Notice:
		s.handleMessage(u, msg.Tags, cmd.Target, cmd.Text, cmd.CTCP, true)
	case ircmsg.Away:
		s.handleAway(u, cmd)
	case ircmsg.Kill:
		s.handleKill(u, cmd)
	case ircmsg.Who:
		s.handleWho(u, cmd)
	case ircmsg.Whois:
		s.handleWhois(u, cmd)
	case ircmsg.Lusers:
		for _, m := range s.lusersMessages(u) {
			s.send(u, m)
		}
	case ircmsg.Motd:
		for _, m := range s.motdMessages(u) {
			s.send(u, m)
		}
	case ircmsg.Links:
		s.handleLinks(u, cmd)
	case ircmsg.KLine:
		s.handleKLine(u, cmd)
	case ircmsg.UnKLine:
		s.handleUnKLine(u, cmd)
	case ircmsg.ErrorMsg:
		s.onDisconnect(u, "Error received from client")
	default:
		s.send(u, s.numeric(u, "421", msg.RawCommand(), "Unknown command"))
	}
}

// rejectDCCSend enforces the configured dcc-ports range (server/config.go)
// against a CTCP DCC SEND offer's advertised port, matching how ircds that
// sit behind a firewall constrain the range a client may advertise for an
// out-of-band transfer. A zero range (the default) means no restriction.
func (s *Server) rejectDCCSend(ctcp *ircmsg.CTCP) (reason string, blocked bool) {
	if ctcp == nil || ctcp.Command != "DCC" || s.Config.DCCPortLo == 0 {
		return "", false
	}
	if len(ctcp.Args) < 4 || !strings.EqualFold(ctcp.Args[0], "SEND") {
		return "", false
	}
	port, err := strconv.Atoi(ctcp.Args[3])
	if err != nil {
		return "", false
	}
	if port < s.Config.DCCPortLo || port > s.Config.DCCPortHi {
		return "DCC SEND port is outside the allowed range", true
	}
	return "", false
}

// clientOnlyTags keeps only the client-only ("+"-prefixed) tags a client
// attached to an outgoing PRIVMSG/NOTICE, per the message-tags spec: a
// server forwards a client's own client-only tags to other clients but
// must not let a client inject any other tag (e.g. a forged "time" or
// "account") into a relayed message.
func clientOnlyTags(in ircmsg.Tags) ircmsg.Tags {
	if len(in) == 0 {
		return nil
	}
	var out ircmsg.Tags
	for k, v := range in {
		if !strings.HasPrefix(k, "+") {
			continue
		}
		if out == nil {
			out = ircmsg.Tags{}
		}
		out[k] = v
	}
	return out
}

func quitReason(reason string) string {
	if reason == "" {
		return "Client Quit"
	}
	return "Quit: " + reason
}

func (s *Server) handleNick(u *User, cmd ircmsg.Nick) {
	if u.State != StateRegistered {
		s.handleNickPreReg(u, cmd.Nickname)
		s.maybeCompleteRegistration(u)
		return
	}
	if !s.handleNickPreReg(u, cmd.Nickname) {
		return
	}
	change := &ircmsg.Message{
		Prefix:  &ircmsg.Prefix{Name: cmd.Nickname, User: u.User, Host: u.Host},
		Command: ircmsg.Nick{Nickname: cmd.Nickname},
	}
	notified := map[*User]bool{u: true}
	for chName := range u.Channels {
		ch := s.channels[chName]
		if ch == nil {
			continue
		}
		for _, m := range ch.Members {
			if !notified[m.User] {
				s.send(m.User, change)
				notified[m.User] = true
			}
		}
	}
	s.send(u, change)
}

func (s *Server) handleOper(u *User, cmd ircmsg.Oper) {
	for _, oper := range s.Config.Opers {
		if oper.Name == cmd.Name && checkBcrypt(oper.PasswordHash, cmd.Password) {
			u.IsOperator = true
			s.send(u, s.numeric(u, "381", "You are now an IRC operator"))
			return
		}
	}
	s.send(u, s.numeric(u, "464", "Password incorrect"))
}

func (s *Server) handleJoin(u *User, cmd ircmsg.Join) {
	if len(cmd.Channels) == 1 && cmd.Channels[0] == "0" {
		for chName := range u.Channels {
			s.partChannel(u, chName, "")
		}
		return
	}
	for i, name := range cmd.Channels {
		key := ""
		if i < len(cmd.Keys) {
			key = cmd.Keys[i]
		}
		s.joinChannel(u, name, key)
	}
}

func (s *Server) joinChannel(u *User, name, key string) {
	if !strings.ContainsRune(s.ISupport.ChanTypes, rune(name[0])) {
		s.send(u, s.numeric(u, "403", name, "No such channel"))
		return
	}
	ck := canonical(name)
	ch, exists := s.channels[ck]
	if !exists {
		ch = NewChannel(name)
		s.channels[ck] = ch
	}
	if ch.Key != "" && ch.Key != key {
		s.send(u, s.numeric(u, "475", name, "Cannot join channel (+k)"))
		return
	}
	if ch.Limit > 0 && len(ch.Members) >= ch.Limit {
		s.send(u, s.numeric(u, "471", name, "Cannot join channel (+l)"))
		return
	}

	member := &Member{User: u, Modes: map[byte]bool{}}
	if len(ch.Members) == 0 {
		member.Modes['o'] = true // first joiner gets channel operator
	}
	ch.Members[canonical(u.Nick)] = member
	u.Channels[ck] = true

	joinMsg := &ircmsg.Message{
		Prefix:  &ircmsg.Prefix{Name: u.Nick, User: u.User, Host: u.Host},
		Command: ircmsg.Join{Channels: []string{name}},
	}
	s.broadcastToChannel(ch, joinMsg, nil)

	if ch.Topic != "" {
		s.send(u, s.numeric(u, "332", name, ch.Topic))
	} else {
		s.send(u, s.numeric(u, "331", name, "No topic is set"))
	}

	var nicks []string
	for _, m := range ch.Members {
		prefix := ""
		if sym := m.HighestPrefix(s.ISupport); sym != 0 {
			prefix = string(sym)
		}
		nicks = append(nicks, prefix+m.User.Nick)
	}
	s.send(u, s.numeric(u, "353", ch.Status(), name, strings.Join(nicks, " ")))
	s.send(u, s.numeric(u, "366", name, "End of NAMES list"))
}

func (s *Server) handlePart(u *User, cmd ircmsg.Part) {
	for _, name := range cmd.Channels {
		s.partChannel(u, canonical(name), cmd.Reason)
	}
}

func (s *Server) partChannel(u *User, chKey, reason string) {
	ch := s.channels[chKey]
	if ch == nil || !ch.Members[canonical(u.Nick)].exists() {
		s.send(u, s.numeric(u, "442", chKey, "You're not on that channel"))
		return
	}
	partMsg := &ircmsg.Message{
		Prefix:  &ircmsg.Prefix{Name: u.Nick, User: u.User, Host: u.Host},
		Command: ircmsg.Part{Channels: []string{ch.Name}, Reason: reason},
	}
	s.broadcastToChannel(ch, partMsg, nil)
	delete(ch.Members, canonical(u.Nick))
	delete(u.Channels, chKey)
	if len(ch.Members) == 0 {
		delete(s.channels, chKey)
	}
}

func (m *Member) exists() bool { return m != nil }

func (s *Server) handleKick(u *User, cmd ircmsg.Kick) {
	ch := s.channels[canonical(cmd.Channel)]
	if ch == nil {
		s.send(u, s.numeric(u, "403", cmd.Channel, "No such channel"))
		return
	}
	kicker := ch.Members[canonical(u.Nick)]
	if kicker == nil || !kicker.Modes['o'] {
		s.send(u, s.numeric(u, "482", cmd.Channel, "You're not channel operator"))
		return
	}
	target := ch.Members[canonical(cmd.Nick)]
	if target == nil {
		s.send(u, s.numeric(u, "441", cmd.Nick, cmd.Channel, "They aren't on that channel"))
		return
	}
	kickMsg := &ircmsg.Message{
		Prefix:  &ircmsg.Prefix{Name: u.Nick, User: u.User, Host: u.Host},
		Command: ircmsg.Kick{Channel: ch.Name, Nick: cmd.Nick, Reason: cmd.Reason},
	}
	s.broadcastToChannel(ch, kickMsg, nil)
	delete(ch.Members, canonical(cmd.Nick))
	delete(target.User.Channels, canonical(cmd.Channel))
}

func (s *Server) handleMode(u *User, cmd ircmsg.Mode) {
	if strings.ContainsRune(s.ISupport.ChanTypes, rune(cmd.Target[0])) {
		s.handleChannelMode(u, cmd)
		return
	}
	s.handleUserMode(u, cmd)
}

func (s *Server) handleChannelMode(u *User, cmd ircmsg.Mode) {
	ch := s.channels[canonical(cmd.Target)]
	if ch == nil {
		s.send(u, s.numeric(u, "403", cmd.Target, "No such channel"))
		return
	}
	if cmd.Modestring == "" {
		s.send(u, s.numeric(u, "324", ch.Name, renderCurrentModes(ch)))
		return
	}
	member := ch.Members[canonical(u.Nick)]
	if member == nil || !member.Modes['o'] {
		s.send(u, s.numeric(u, "482", ch.Name, "You're not channel operator"))
		return
	}
	changes, unknown := applyChannelModes(ch, s.ISupport, cmd.Modestring, cmd.Arguments)
	if unknown {
		s.Log.Printf("unknown mode character in %q for %s", cmd.Modestring, ch.Name)
	}
	if len(changes) == 0 {
		return
	}
	modestring, args := modestringFor(changes)
	out := &ircmsg.Message{
		Prefix:  &ircmsg.Prefix{Name: u.Nick, User: u.User, Host: u.Host},
		Command: ircmsg.Mode{Target: ch.Name, Modestring: modestring, Arguments: args},
	}
	s.broadcastToChannel(ch, out, nil)
}

func renderCurrentModes(ch *Channel) string {
	var b strings.Builder
	b.WriteByte('+')
	for mode, on := range ch.Modes {
		if on {
			b.WriteByte(mode)
		}
	}
	return b.String()
}

func (s *Server) handleUserMode(u *User, cmd ircmsg.Mode) {
	if canonical(cmd.Target) != canonical(u.Nick) {
		s.send(u, s.numeric(u, "502", "Cannot change mode for other users"))
		return
	}
	s.send(u, s.numeric(u, "221", "+"))
}

func (s *Server) handleTopic(u *User, cmd ircmsg.Topic) {
	ch := s.channels[canonical(cmd.Channel)]
	if ch == nil {
		s.send(u, s.numeric(u, "403", cmd.Channel, "No such channel"))
		return
	}
	if cmd.Text == nil {
		if ch.Topic == "" {
			s.send(u, s.numeric(u, "331", ch.Name, "No topic is set"))
		} else {
			s.send(u, s.numeric(u, "332", ch.Name, ch.Topic))
		}
		return
	}
	if ch.Members[canonical(u.Nick)] == nil {
		s.send(u, s.numeric(u, "442", cmd.Channel, "You're not on that channel"))
		return
	}
	ch.Topic = *cmd.Text
	ch.TopicBy = u.Nick
	out := &ircmsg.Message{
		Prefix:  &ircmsg.Prefix{Name: u.Nick, User: u.User, Host: u.Host},
		Command: ircmsg.Topic{Channel: ch.Name, Text: cmd.Text},
	}
	s.broadcastToChannel(ch, out, nil)
}

func (s *Server) handleMessage(u *User, inTags ircmsg.Tags, target, text string, ctcp *ircmsg.CTCP, isNotice bool) {
	if reason, blocked := s.rejectDCCSend(ctcp); blocked {
		s.send(u, &ircmsg.Message{
			Prefix:  &ircmsg.Prefix{Name: s.Info.Name},
			Command: ircmsg.Notice{Target: u.Nick, Text: reason},
		})
		return
	}

	var out *ircmsg.Message
	prefix := &ircmsg.Prefix{Name: u.Nick, User: u.User, Host: u.Host}
	if isNotice {
		out = &ircmsg.Message{Prefix: prefix, Command: ircmsg.Notice{Target: target, Text: text}}
	} else {
		out = &ircmsg.Message{Prefix: prefix, Command: ircmsg.Privmsg{Target: target, Text: text}}
	}
	out.Tags = clientOnlyTags(inTags)

	if strings.ContainsRune(s.ISupport.ChanTypes, rune(target[0])) {
		ch := s.channels[canonical(target)]
		if ch == nil {
			if !isNotice {
				s.send(u, s.numeric(u, "403", target, "No such channel"))
			}
			return
		}
		s.broadcastToChannel(ch, out, u)
		if u.Caps.Has(capability.EchoMessage) {
			s.send(u, out)
		}
		return
	}

	recipient := s.nicks[canonical(target)]
	if recipient == nil {
		if !isNotice {
			s.send(u, s.numeric(u, "401", target, "No such nick/channel"))
		}
		return
	}
	s.send(recipient, out)
	if recipient.Away != "" && !isNotice {
		s.send(u, s.numeric(u, "301", recipient.Nick, recipient.Away))
	}
	if u.Caps.Has(capability.EchoMessage) {
		s.send(u, out)
	}
}

func (s *Server) handleAway(u *User, cmd ircmsg.Away) {
	u.Away = cmd.Message
	if u.Away == "" {
		s.send(u, s.numeric(u, "305", "You are no longer marked as being away"))
	} else {
		s.send(u, s.numeric(u, "306", "You have been marked as being away"))
	}
	if !u.Caps.Has(capability.AwayNotify) {
		return
	}
	notified := map[*User]bool{}
	for chName := range u.Channels {
		ch := s.channels[chName]
		if ch == nil {
			continue
		}
		for _, m := range ch.Members {
			if m.User == u || notified[m.User] || !m.User.Caps.Has(capability.AwayNotify) {
				continue
			}
			s.send(m.User, &ircmsg.Message{
				Prefix:  &ircmsg.Prefix{Name: u.Nick, User: u.User, Host: u.Host},
				Command: ircmsg.Away{Message: u.Away},
			})
			notified[m.User] = true
		}
	}
}

func (s *Server) handleKill(u *User, cmd ircmsg.Kill) {
	if !u.IsOperator {
		s.send(u, s.numeric(u, "481", "Permission Denied- You're not an IRC operator"))
		return
	}
	target := s.nicks[canonical(cmd.Nick)]
	if target == nil {
		s.send(u, s.numeric(u, "401", cmd.Nick, "No such nick/channel"))
		return
	}
	s.send(target, &ircmsg.Message{Command: ircmsg.ErrorMsg{Reason: "Closing Link: (Killed by " + u.Nick + " (" + cmd.Reason + "))"}})
	s.onDisconnect(target, "Killed by "+u.Nick+" ("+cmd.Reason+")")
}

func (s *Server) handleWho(u *User, cmd ircmsg.Who) {
	ch := s.channels[canonical(cmd.Mask)]
	if ch != nil {
		for _, m := range ch.Members {
			s.send(u, s.numeric(u, "352", ch.Name, m.User.User, m.User.Host, s.Info.Name, m.User.Nick, "H", "0 "+m.User.Realname))
		}
	}
	s.send(u, s.numeric(u, "315", cmd.Mask, "End of WHO list"))
}

func (s *Server) handleWhois(u *User, cmd ircmsg.Whois) {
	target := s.nicks[canonical(cmd.Nick)]
	if target == nil {
		s.send(u, s.numeric(u, "401", cmd.Nick, "No such nick/channel"))
		return
	}
	s.send(u, s.numeric(u, "311", target.Nick, target.User, target.Host, "*", target.Realname))
	var chans []string
	for chName := range target.Channels {
		if ch := s.channels[chName]; ch != nil {
			chans = append(chans, ch.Name)
		}
	}
	if len(chans) > 0 {
		s.send(u, &ircmsg.Message{
			Prefix:  &ircmsg.Prefix{Name: s.Info.Name},
			Command: ircmsg.WhoisChannels{Nick: u.Nick, Target: target.Nick, Channels: chans},
		})
	}
	s.send(u, s.numeric(u, "312", target.Nick, s.Info.Name, s.Info.Description))
	if target.Away != "" {
		s.send(u, s.numeric(u, "301", target.Nick, target.Away))
	}
	if target.IsOperator {
		s.send(u, s.numeric(u, "313", target.Nick, "is an IRC operator"))
	}
	s.send(u, s.numeric(u, "318", target.Nick, "End of WHOIS list"))
}

func (s *Server) handleLinks(u *User, cmd ircmsg.Links) {
	s.send(u, s.numeric(u, "364", s.Info.Name, s.Info.Name, "0 "+s.Info.Description))
	s.send(u, s.numeric(u, "365", cmd.Mask, "End of LINKS list"))
}

func (s *Server) handleKLine(u *User, cmd ircmsg.KLine) {
	if !u.IsOperator {
		s.send(u, s.numeric(u, "481", "Permission Denied- You're not an IRC operator"))
		return
	}
	s.Bans.Add(cmd.Mask, cmd.Reason)
	s.send(u, &ircmsg.Message{
		Prefix:  &ircmsg.Prefix{Name: s.Info.Name},
		Command: ircmsg.Notice{Target: u.Nick, Text: "Added K-Line for [" + cmd.Mask + "]"},
	})
}

func (s *Server) handleUnKLine(u *User, cmd ircmsg.UnKLine) {
	if !u.IsOperator {
		s.send(u, s.numeric(u, "481", "Permission Denied- You're not an IRC operator"))
		return
	}
	if s.Bans.Remove(cmd.Mask) {
		s.send(u, &ircmsg.Message{
			Prefix:  &ircmsg.Prefix{Name: s.Info.Name},
			Command: ircmsg.Notice{Target: u.Nick, Text: "K-Line for [" + cmd.Mask + "] removed"},
		})
	}
}
