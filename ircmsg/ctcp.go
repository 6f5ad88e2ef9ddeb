package ircmsg

import "strings"

const ctcpDelim = '\x01'

// extractCTCP lifts a CTCP request/reply out of a PRIVMSG/NOTICE payload.
// It returns nil if text isn't CTCP-wrapped (doesn't start and end with
// \x01).
func extractCTCP(text string) *CTCP {
	if len(text) < 2 || text[0] != ctcpDelim {
		return nil
	}
	end := strings.IndexByte(text[1:], ctcpDelim)
	if end < 0 {
		return nil
	}
	body := text[1 : end+1]
	if body == "" {
		return nil
	}

	command, rest, hasRest := strings.Cut(body, " ")
	command = strings.ToUpper(command)

	var args []string
	if hasRest {
		if command == "DCC" {
			args = tokenizeDCC(rest)
		} else {
			args = strings.Fields(rest)
		}
	}
	return &CTCP{Command: command, Args: args}
}

// WrapCTCP re-wraps a CTCP command and its arguments into a PRIVMSG/NOTICE
// payload.
func WrapCTCP(c *CTCP) string {
	var b strings.Builder
	b.WriteByte(ctcpDelim)
	b.WriteString(c.Command)
	for _, a := range c.Args {
		b.WriteByte(' ')
		b.WriteString(a)
	}
	b.WriteByte(ctcpDelim)
	return b.String()
}

// tokenizeDCC splits a DCC sub-command's argument string on spaces while
// treating a double-quoted span as one token, so "DCC SEND \"my file.txt\"
// ..." yields the filename with its embedded space intact rather than
// being split into two tokens.
func tokenizeDCC(s string) []string {
	var tokens []string
	i := 0
	for i < len(s) {
		for i < len(s) && s[i] == ' ' {
			i++
		}
		if i >= len(s) {
			break
		}
		if s[i] == '"' {
			j := i + 1
			for j < len(s) && s[j] != '"' {
				j++
			}
			tokens = append(tokens, s[i+1:j])
			if j < len(s) {
				j++
			}
			i = j
			continue
		}
		j := i
		for j < len(s) && s[j] != ' ' {
			j++
		}
		tokens = append(tokens, s[i:j])
		i = j
	}
	return tokens
}
