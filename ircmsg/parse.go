package ircmsg

import "strings"

// maxBodyBytes is the exact IRCv3 cap on everything after the tag
// section, not counting CRLF (Parse already works on lines with their
// CRLF stripped): 510, the traditional 512-byte line minus the 2 CRLF
// bytes. MaxBodyBytes above is the looser, CRLF-inclusive figure used
// for the coarse up-front sanity check.
const maxBodyBytes = MaxBodyBytes - 2

// Parse turns a single raw wire line (without its trailing CRLF) into a
// Message. Parse never returns a nil Message and never panics: a line
// that is too long, grammatically malformed, for an unknown command, or
// missing required parameters still yields a Message, just one whose
// Command is one of the four sentinel variants.
func Parse(line string) *Message {
	if len(line) > maxLineBytes {
		return &Message{Command: TooLong{Raw: line}}
	}

	body := line
	if strings.HasPrefix(line, "@") {
		tagEnd := len(line)
		if sp := strings.IndexByte(line, ' '); sp >= 0 {
			tagEnd = sp + 1
		}
		if tagEnd > MaxTagBytes {
			return &Message{Command: TooLong{Raw: line}}
		}
		body = line[tagEnd:]
	}
	if len(body) > maxBodyBytes {
		return &Message{Command: TooLong{Raw: line}}
	}
	if hasDisallowedControlByte(body) {
		return &Message{Command: Unsupported{Reason: "message is malformed", Raw: line}}
	}

	raw := scan(line)
	if raw.command == "" {
		return &Message{
			Tags:    raw.tags,
			Prefix:  raw.prefix,
			Command: Unsupported{Reason: "message is malformed", Raw: line},
		}
	}

	cmd := buildCommand(raw.command, raw.params, line)
	if cmd == nil {
		cmd = NotEnoughParameters{Command: raw.command, Raw: line}
	}

	return &Message{
		Tags:    raw.tags,
		Prefix:  raw.prefix,
		Command: cmd,
	}
}

// hasDisallowedControlByte reports whether s contains a byte the wire
// grammar never allows in a command or parameter: NUL, TAB, CR, LF, or
// any other C0 control byte except the CTCP delimiter 0x01, which frames
// a CTCP request or reply inside a PRIVMSG/NOTICE payload. Apart from
// that delimiter, space (0x20) is the only byte below 0x21 that is legal.
func hasDisallowedControlByte(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 && s[i] != ctcpDelim {
			return true
		}
	}
	return false
}

// buildCommand dispatches to the bespoke extraction plan for verb, or
// falls back to the generic Numeric/Unsupported handling. It returns nil
// to signal "recognized command, not enough parameters" so Parse can wrap
// that in NotEnoughParameters with the original line text attached.
func buildCommand(verb string, params []string, line string) Command {
	if plan, ok := plans[verb]; ok {
		return plan(newReader(params))
	}
	if isNumeric(verb) {
		return buildNumeric(verb, params)
	}
	return Unsupported{Command: verb, Reason: "unknown command", Raw: line}
}

func isCapSubcommand(s string) bool {
	switch s {
	case "LS", "LIST", "REQ", "ACK", "NAK", "NEW", "DEL", "END":
		return true
	}
	return false
}

func isNumeric(verb string) bool {
	if len(verb) != 3 {
		return false
	}
	for _, c := range verb {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func buildNumeric(code string, params []string) Command {
	switch code {
	case "001":
		r := newReader(params)
		nick, ok := r.required()
		if !ok {
			return nil
		}
		return Welcome{Nick: nick, Text: r.greedyOptional()}
	case "005":
		r := newReader(params)
		nick, ok := r.required()
		if !ok {
			return nil
		}
		text, _ := r.hoist()
		return ISupport{Nick: nick, Tokens: r.params[r.pos:], Text: text}
	case "353":
		r := newReader(params)
		nick, ok := r.required()
		if !ok {
			return nil
		}
		symbol, ok := r.required()
		if !ok {
			return nil
		}
		channel, ok := r.required()
		if !ok {
			return nil
		}
		names := strings.Fields(r.greedyOptional())
		return NamReply{Nick: nick, Symbol: symbol, Channel: channel, Nicks: names}
	case "319":
		r := newReader(params)
		nick, ok := r.required()
		if !ok {
			return nil
		}
		target, ok := r.required()
		if !ok {
			return nil
		}
		return WhoisChannels{Nick: nick, Target: target, Channels: strings.Fields(r.greedyOptional())}
	default:
		return Numeric{Code: code, Params: params}
	}
}

// plans holds the parameter-extraction plan for every non-numeric bespoke
// variant. Each entry is a small, declarative composition of the
// extractors in params.go; a nil return means "not enough parameters".
var plans = map[string]func(*reader) Command{
	"CAP": func(r *reader) Command {
		sub, ok := r.required()
		if !ok {
			return nil
		}
		sub = strings.ToUpper(sub)
		if !isCapSubcommand(sub) {
			// This was a target parameter (a server addresses CAP replies
			// to the client's nick or "*" before registration); the real
			// subcommand is the next token.
			sub, ok = r.required()
			if !ok {
				return nil
			}
			sub = strings.ToUpper(sub)
		}
		c := Cap{Subcommand: sub}
		switch sub {
		case "LS", "LIST":
			// Optional "*" more-marker arrives as its own parameter ahead
			// of the capability list in some servers' LS chunking.
			if star, ok := r.conditional(func(s string) bool { return s == "*" }); ok {
				_ = star
				c.More = true
			}
			c.Caps = strings.Fields(r.greedyOptional())
		case "ACK", "NAK", "NEW", "DEL", "REQ":
			c.Caps = strings.Fields(r.greedyOptional())
		case "END":
		}
		return c
	},
	"PASS": func(r *reader) Command {
		pw, ok := r.required()
		if !ok {
			return nil
		}
		return Pass{Password: pw}
	},
	"NICK": func(r *reader) Command {
		nick, ok := r.required()
		if !ok {
			return nil
		}
		return Nick{Nickname: nick}
	},
	"USER": func(r *reader) Command {
		user, ok := r.required()
		if !ok {
			return nil
		}
		mode, ok := r.required()
		if !ok {
			return nil
		}
		r.discard() // unused historical "unused" parameter
		real := r.greedyOptional()
		return User{User: user, Mode: mode, Realname: real}
	},
	"OPER": func(r *reader) Command {
		name, ok := r.required()
		if !ok {
			return nil
		}
		pw, ok := r.required()
		if !ok {
			return nil
		}
		return Oper{Name: name, Password: pw}
	},
	"PING": func(r *reader) Command {
		tok, ok := r.required()
		if !ok {
			return nil
		}
		return Ping{Token: tok}
	},
	"PONG": func(r *reader) Command {
		tok, ok := r.required()
		if !ok {
			return nil
		}
		return Pong{Token: tok}
	},
	"QUIT": func(r *reader) Command {
		return Quit{Reason: r.greedyOptional()}
	},
	"ERROR": func(r *reader) Command {
		return ErrorMsg{Reason: r.greedyOptional()}
	},
	"JOIN": func(r *reader) Command {
		if chans, ok := r.conditional(func(s string) bool { return s == "0" }); ok {
			return Join{Channels: []string{chans}}
		}
		chans, ok := r.splitRequired(",")
		if !ok {
			return nil
		}
		keys, _ := r.splitRequired(",")
		return Join{Channels: chans, Keys: keys}
	},
	"PART": func(r *reader) Command {
		chans, ok := r.splitRequired(",")
		if !ok {
			return nil
		}
		return Part{Channels: chans, Reason: r.greedyOptional()}
	},
	"KICK": func(r *reader) Command {
		ch, ok := r.required()
		if !ok {
			return nil
		}
		nick, ok := r.required()
		if !ok {
			return nil
		}
		return Kick{Channel: ch, Nick: nick, Reason: r.greedyOptional()}
	},
	"MODE": func(r *reader) Command {
		target, ok := r.required()
		if !ok {
			return nil
		}
		modestring, _ := r.optional()
		args, _ := r.greedyRequiredSlice()
		return Mode{Target: target, Modestring: modestring, Arguments: args}
	},
	"TOPIC": func(r *reader) Command {
		ch, ok := r.required()
		if !ok {
			return nil
		}
		if r.left() == 0 {
			return Topic{Channel: ch}
		}
		text := r.greedyOptional()
		return Topic{Channel: ch, Text: &text}
	},
	"PRIVMSG": func(r *reader) Command {
		target, ok := r.required()
		if !ok {
			return nil
		}
		text, ok := r.required()
		if !ok {
			return nil
		}
		return Privmsg{Target: target, Text: text, CTCP: extractCTCP(text)}
	},
	"NOTICE": func(r *reader) Command {
		target, ok := r.required()
		if !ok {
			return nil
		}
		text, ok := r.required()
		if !ok {
			return nil
		}
		ctcp := extractCTCP(text)
		if ctcp != nil {
			ctcp.IsReply = true
		}
		return Notice{Target: target, Text: text, CTCP: ctcp}
	},
	"AWAY": func(r *reader) Command {
		return Away{Message: r.greedyOptional()}
	},
	"KILL": func(r *reader) Command {
		nick, ok := r.required()
		if !ok {
			return nil
		}
		return Kill{Nick: nick, Reason: r.greedyOptional()}
	},
	"WHO": func(r *reader) Command {
		return Who{Mask: r.greedyOptional()}
	},
	"WHOIS": func(r *reader) Command {
		// Some clients send "WHOIS server nick"; the nick we care about is
		// always the last parameter.
		nick, ok := r.hoist()
		if !ok {
			return nil
		}
		return Whois{Nick: nick}
	},
	"LUSERS": func(r *reader) Command {
		return Lusers{}
	},
	"MOTD": func(r *reader) Command {
		return Motd{}
	},
	"LINKS": func(r *reader) Command {
		return Links{Mask: r.greedyOptional()}
	},
	"KLINE": func(r *reader) Command {
		mask, ok := r.required()
		if !ok {
			return nil
		}
		return KLine{Mask: mask, Reason: r.greedyOptional()}
	},
	"UNKLINE": func(r *reader) Command {
		mask, ok := r.required()
		if !ok {
			return nil
		}
		return UnKLine{Mask: mask}
	},
}
