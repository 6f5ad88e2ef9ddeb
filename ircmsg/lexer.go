package ircmsg

import "strings"

// rawLine is the result of the first, grammar-only pass over a line:
// split into tags/prefix/command/params without any command-specific
// interpretation. This mirrors the imperative, byte-index style of
// horgh/irc's decode.go rather than a channel-driven state-function
// lexer: the grammar here is small enough that a direct scan reads more
// plainly than a generator.
type rawLine struct {
	tags    Tags
	prefix  *Prefix
	command string
	params  []string
}

// scan splits line (without its trailing CRLF) into its grammar
// components. It never fails: a malformed line just yields an empty or
// partial rawLine, and the caller (Parse) decides whether that's an
// Unsupported or a usable NotEnoughParameters.
func scan(line string) rawLine {
	var out rawLine

	if strings.HasPrefix(line, "@") {
		sp := strings.IndexByte(line, ' ')
		if sp < 0 {
			out.tags = parseTags(line[1:])
			return out
		}
		out.tags = parseTags(line[1:sp])
		line = strings.TrimLeft(line[sp+1:], " ")
	}

	if strings.HasPrefix(line, ":") {
		sp := strings.IndexByte(line, ' ')
		if sp < 0 {
			out.prefix = parsePrefix(line[1:])
			return out
		}
		out.prefix = parsePrefix(line[1:sp])
		line = strings.TrimLeft(line[sp+1:], " ")
	}

	if line == "" {
		return out
	}

	// Split off the trailing ":"-prefixed parameter, if any, before
	// tokenizing the rest on spaces.
	var trailing *string
	if idx := strings.Index(line, " :"); idx >= 0 {
		t := line[idx+2:]
		trailing = &t
		line = line[:idx]
	} else if strings.HasPrefix(line, ":") {
		t := line[1:]
		trailing = &t
		line = ""
	}

	fields := splitSpaces(line)
	if len(fields) > 0 {
		out.command = strings.ToUpper(fields[0])
		out.params = fields[1:]
	} else if trailing != nil {
		// A bare ":trailing" line with no command token is malformed;
		// leave command empty so Parse reports Unsupported.
	}

	if trailing != nil {
		out.params = append(out.params, *trailing)
	}

	return out
}

// splitSpaces tokenizes s on runs of the literal ASCII space (0x20),
// unlike strings.Fields, which also splits on tab and other Unicode
// whitespace that the wire grammar treats as ordinary (disallowed,
// rather than separator) bytes.
func splitSpaces(s string) []string {
	var out []string
	start := -1
	for i := 0; i < len(s); i++ {
		if s[i] == ' ' {
			if start >= 0 {
				out = append(out, s[start:i])
				start = -1
			}
		} else if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, s[start:])
	}
	return out
}
