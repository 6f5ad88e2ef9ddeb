package ircmsg

import (
	"strings"

	"github.com/pkg/errors"
)

// Marshal renders a Message back to a wire line (without CRLF). It
// returns an error if the rendered line would exceed the length budget
// Parse enforces on the way in, preserving the round-trip law: for any
// Message m built from a successful Parse, Marshal(m) parses back to an
// equivalent Message. The four sentinel variants carry the original line
// verbatim in Raw, so they marshal back to it rather than erroring.
func Marshal(m *Message) (string, error) {
	switch v := m.Command.(type) {
	case Unsupported:
		return v.Raw, nil
	case ParseError:
		return v.Raw, nil
	case TooLong:
		return v.Raw, nil
	case NotEnoughParameters:
		return v.Raw, nil
	}

	verb, params, forceTrailingColon, err := toWire(m.Command)
	if err != nil {
		return "", err
	}

	tagPart := marshalTags(m.Tags)
	var b strings.Builder
	b.WriteString(tagPart)
	if m.Prefix != nil {
		b.WriteByte(':')
		b.WriteString(m.Prefix.String())
		b.WriteByte(' ')
	}
	b.WriteString(verb)

	for i, p := range params {
		last := i == len(params)-1
		needsTrailing := last && (forceTrailingColon || p == "" || strings.ContainsAny(p, " :") || strings.HasPrefix(p, ":"))
		b.WriteByte(' ')
		if needsTrailing {
			b.WriteByte(':')
		}
		b.WriteString(p)
	}

	line := b.String()
	if len(tagPart) > MaxTagBytes || len(line)-len(tagPart) > maxBodyBytes {
		return "", errors.Errorf("ircmsg: marshalled line exceeds the %d-byte tag or %d-byte body limit", MaxTagBytes, maxBodyBytes)
	}
	return line, nil
}

// toWire is the inverse of buildCommand/buildNumeric: given a Command, it
// returns the wire verb, the ordered parameter list, and whether the last
// parameter must be colon-prefixed unconditionally (true only for the
// free-text variants where that's the canonical form regardless of
// content) that Parse would need to reconstruct an equivalent value. The
// four sentinel variants are handled directly by Marshal and never reach
// here.
func toWire(c Command) (string, []string, bool, error) {
	switch v := c.(type) {
	case Cap:
		params := []string{v.Subcommand}
		if len(v.Caps) > 0 {
			params = append(params, strings.Join(v.Caps, " "))
		}
		return "CAP", params, false, nil
	case Pass:
		return "PASS", []string{v.Password}, false, nil
	case Nick:
		return "NICK", []string{v.Nickname}, false, nil
	case User:
		return "USER", []string{v.User, v.Mode, "*", v.Realname}, false, nil
	case Oper:
		return "OPER", []string{v.Name, v.Password}, false, nil
	case Ping:
		return "PING", []string{v.Token}, false, nil
	case Pong:
		return "PONG", []string{v.Token}, false, nil
	case Quit:
		return "QUIT", optionalTail(v.Reason), false, nil
	case ErrorMsg:
		return "ERROR", []string{v.Reason}, false, nil
	case Join:
		params := []string{strings.Join(v.Channels, ",")}
		if len(v.Keys) > 0 {
			params = append(params, strings.Join(v.Keys, ","))
		}
		return "JOIN", params, false, nil
	case Part:
		return "PART", append([]string{strings.Join(v.Channels, ",")}, optionalTail(v.Reason)...), false, nil
	case Kick:
		return "KICK", append([]string{v.Channel, v.Nick}, optionalTail(v.Reason)...), false, nil
	case Mode:
		params := []string{v.Target}
		if v.Modestring != "" {
			params = append(params, v.Modestring)
		}
		params = append(params, v.Arguments...)
		return "MODE", params, false, nil
	case Topic:
		params := []string{v.Channel}
		if v.Text != nil {
			params = append(params, *v.Text)
		}
		return "TOPIC", params, false, nil
	case Privmsg:
		return "PRIVMSG", []string{v.Target, v.Text}, true, nil
	case Notice:
		return "NOTICE", []string{v.Target, v.Text}, true, nil
	case Away:
		return "AWAY", optionalTail(v.Message), false, nil
	case Kill:
		return "KILL", append([]string{v.Nick}, optionalTail(v.Reason)...), false, nil
	case Welcome:
		return "001", []string{v.Nick, v.Text}, false, nil
	case ISupport:
		// The trailing "are supported by this server" text is fixed
		// regardless of how many tokens this chunk carries; see DESIGN.md.
		params := append([]string{v.Nick}, v.Tokens...)
		params = append(params, "are supported by this server")
		return "005", params, false, nil
	case NamReply:
		return "353", []string{v.Nick, v.Symbol, v.Channel, strings.Join(v.Nicks, " ")}, false, nil
	case WhoisChannels:
		return "319", []string{v.Nick, v.Target, strings.Join(v.Channels, " ")}, false, nil
	case Who:
		return "WHO", optionalTail(v.Mask), false, nil
	case Whois:
		return "WHOIS", []string{v.Nick}, false, nil
	case Lusers:
		return "LUSERS", nil, false, nil
	case Motd:
		return "MOTD", nil, false, nil
	case Links:
		return "LINKS", optionalTail(v.Mask), false, nil
	case KLine:
		return "KLINE", append([]string{v.Mask}, optionalTail(v.Reason)...), false, nil
	case UnKLine:
		return "UNKLINE", []string{v.Mask}, false, nil
	case Numeric:
		return v.Code, v.Params, false, nil
	default:
		return "", nil, false, errors.Errorf("ircmsg: unknown command type %T", c)
	}
}

func optionalTail(s string) []string {
	if s == "" {
		return nil
	}
	return []string{s}
}
