package ircmsg

import "strings"

// Tags is the set of IRCv3 message tags attached to a line. A key carries
// its wire-format leading "+" when the tag was sent as client-only; see
// server.clientOnlyTags for the one place that distinction matters.
type Tags map[string]string

func (t Tags) clone() Tags {
	if t == nil {
		return nil
	}
	out := make(Tags, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

var tagEscapes = map[byte]byte{
	':':  ';',
	's':  ' ',
	'\\': '\\',
	'r':  '\r',
	'n':  '\n',
}

var tagUnescapes = map[byte]string{
	';':  `\:`,
	' ':  `\s`,
	'\\': `\\`,
	'\r': `\r`,
	'\n': `\n`,
}

// unescapeTagValue reverses the backslash escaping defined by IRCv3's
// message-tags spec. A backslash followed by a character with no defined
// escape is dropped and the character kept; a trailing lone backslash is
// kept as a literal backslash.
func unescapeTagValue(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i == len(s)-1 {
			b.WriteByte(c)
			continue
		}
		next := s[i+1]
		if repl, ok := tagEscapes[next]; ok {
			b.WriteByte(repl)
			i++
			continue
		}
		// Unknown escape: drop the backslash, keep the next character.
		i++
		b.WriteByte(next)
	}
	return b.String()
}

// escapeTagValue applies the backslash escaping defined by IRCv3's
// message-tags spec, used when marshalling tags back onto the wire.
func escapeTagValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if repl, ok := tagUnescapes[c]; ok {
			b.WriteString(repl)
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// parseTags parses the body of an IRCv3 tag prefix (without the leading
// '@' and trailing space) into a Tags map.
func parseTags(body string) Tags {
	if body == "" {
		return nil
	}
	tags := make(Tags)
	for _, item := range strings.Split(body, ";") {
		if item == "" {
			continue
		}
		key, val, hasVal := strings.Cut(item, "=")
		if hasVal {
			tags[key] = unescapeTagValue(val)
		} else {
			tags[key] = ""
		}
	}
	return tags
}

// marshalTags renders tags in a deterministic (sorted) key order so that
// marshalling is stable across runs; the wire format does not require a
// particular order.
func marshalTags(tags Tags) string {
	if len(tags) == 0 {
		return ""
	}
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sortStrings(keys)

	var b strings.Builder
	b.WriteByte('@')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(k)
		if v := tags[k]; v != "" {
			b.WriteByte('=')
			b.WriteString(escapeTagValue(v))
		}
	}
	b.WriteByte(' ')
	return b.String()
}

// sortStrings avoids pulling in "sort" for a single call site; insertion
// sort is plenty for the handful of tags a real line carries.
func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
