package client

import "github.com/tsavola/ircd/ircmsg"

// SendPrivmsg sends a PRIVMSG to target.
func (e *Engine) SendPrivmsg(target, text string) {
	e.offer(&ircmsg.Message{Command: ircmsg.Privmsg{Target: target, Text: text}})
}

// SendNotice sends a NOTICE to target.
func (e *Engine) SendNotice(target, text string) {
	e.offer(&ircmsg.Message{Command: ircmsg.Notice{Target: target, Text: text}})
}

// SendJoin joins one or more channels, optionally with matching keys.
func (e *Engine) SendJoin(channels []string, keys []string) {
	e.offer(&ircmsg.Message{Command: ircmsg.Join{Channels: channels, Keys: keys}})
}

// SendPart leaves one or more channels.
func (e *Engine) SendPart(channels []string, reason string) {
	e.offer(&ircmsg.Message{Command: ircmsg.Part{Channels: channels, Reason: reason}})
}

// SendNick requests a nickname change.
func (e *Engine) SendNick(nick string) {
	e.offer(&ircmsg.Message{Command: ircmsg.Nick{Nickname: nick}})
}

// SendTopic reads (text == nil) or sets a channel's topic.
func (e *Engine) SendTopic(channel string, text *string) {
	e.offer(&ircmsg.Message{Command: ircmsg.Topic{Channel: channel, Text: text}})
}

// SendMode issues a MODE command.
func (e *Engine) SendMode(target, modestring string, args []string) {
	e.offer(&ircmsg.Message{Command: ircmsg.Mode{Target: target, Modestring: modestring, Arguments: args}})
}

// SendCTCP sends a CTCP request wrapped in a PRIVMSG.
func (e *Engine) SendCTCP(target, command string, args []string) {
	text := ircmsg.WrapCTCP(&ircmsg.CTCP{Command: command, Args: args})
	e.offer(&ircmsg.Message{Command: ircmsg.Privmsg{Target: target, Text: text}})
}

// SendCTCPReply answers a CTCP request wrapped in a NOTICE, per the CTCP
// convention that replies travel as NOTICE rather than PRIVMSG so they
// can never themselves trigger another reply.
func (e *Engine) SendCTCPReply(target, command string, args []string) {
	text := ircmsg.WrapCTCP(&ircmsg.CTCP{Command: command, Args: args})
	e.offer(&ircmsg.Message{Command: ircmsg.Notice{Target: target, Text: text}})
}
