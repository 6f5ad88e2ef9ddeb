// Package isupport implements the RPL_ISUPPORT (005) parameter store: the
// set of server-advertised capabilities and limits a client or server
// needs to interpret the rest of the protocol correctly (channel types,
// mode groupings, case mapping, prefixes, and so on).
package isupport

import (
	"strconv"
	"strings"
)

// Prefix pairs a channel membership mode letter with the status symbol a
// server displays for it, e.g. {Mode: 'o', Symbol: '@'}.
type Prefix struct {
	Mode   byte
	Symbol byte
}

// ChanModes classifies channel mode letters into the four RFC-defined
// argument-taking groups (see spec.md section 3/4.2).
type ChanModes struct {
	A string // list modes (e.g. "b" for ban): always take an argument
	B string // modes that always take an argument (e.g. "k")
	C string // modes that take an argument only when being set (e.g. "l")
	D string // modes that never take an argument (e.g. "n", "s")
}

// Store holds the accumulated server parameters negotiated via one or
// more RPL_ISUPPORT lines. NewStore returns one holding the RFC 1459
// defaults; the zero value holds none of them and has no set map, so
// Apply on it panics.
type Store struct {
	set map[string]bool // which keys have been explicitly seen, for set-once tracking

	CaseMapping string // "ascii", "rfc1459", or "rfc7613"; first value wins
	Network     string
	ChanTypes   string
	ChanModes   ChanModes
	Prefixes    []Prefix
	ChanLimit   map[byte]int // channel-type prefix -> max joined channels, 0 = unlimited
	MaxList     map[byte]int // mode letter -> max list entries
	Excepts     string       // ban-exception mode letter, "" if unsupported
	Invex       string       // invite-exception mode letter, "" if unsupported
	ExtBan      string       // raw EXTBAN value ("prefix,types"), "" if unsupported
	SafeList    bool
	Silence     int // max SILENCE entries, 0 = unsupported
	StatusMsg   string
	TargMax     map[string]int // command name -> max targets, -1 = unlimited
}

// NewStore returns a Store populated with the RFC 1459 defaults.
func NewStore() *Store {
	return &Store{
		set:         map[string]bool{},
		CaseMapping: "rfc1459",
		ChanTypes:   "#&",
		ChanModes:   ChanModes{A: "b", B: "k", C: "l", D: "imnpst"},
		Prefixes:    []Prefix{{Mode: 'o', Symbol: '@'}, {Mode: 'v', Symbol: '+'}},
		ChanLimit:   map[byte]int{},
		MaxList:     map[byte]int{},
		TargMax:     map[string]int{},
	}
}

// Apply processes one RPL_ISUPPORT token (e.g. "CHANTYPES=#" or
// "-EXTBAN"). A leading '-' disables the named parameter, reverting it to
// its default rather than merely clearing it, per spec.md section 4.2.
func (s *Store) Apply(token string) {
	if token == "" {
		return
	}
	if token[0] == '-' {
		s.disable(strings.ToUpper(token[1:]))
		return
	}

	key, value, hasValue := strings.Cut(token, "=")
	key = strings.ToUpper(key)

	switch key {
	case "CASEMAPPING":
		// First value wins; CASEMAPPING is set-once per spec.md section 4.2.
		if s.set["CASEMAPPING"] {
			return
		}
		s.CaseMapping = value
	case "NETWORK":
		s.Network = value
	case "CHANTYPES":
		s.ChanTypes = value
	case "CHANMODES":
		groups := strings.SplitN(value, ",", 4)
		for len(groups) < 4 {
			groups = append(groups, "")
		}
		s.ChanModes = ChanModes{A: groups[0], B: groups[1], C: groups[2], D: groups[3]}
	case "PREFIX":
		s.Prefixes = parsePrefixParam(value)
	case "CHANLIMIT":
		s.ChanLimit = parseByteIntMap(value)
	case "MAXLIST":
		s.MaxList = parseByteIntMap(value)
	case "EXCEPTS":
		if hasValue {
			s.Excepts = value
		} else {
			s.Excepts = "e"
		}
	case "INVEX":
		if hasValue {
			s.Invex = value
		} else {
			s.Invex = "I"
		}
	case "EXTBAN":
		s.ExtBan = value
	case "SAFELIST":
		s.SafeList = true
	case "SILENCE":
		n, _ := strconv.Atoi(value)
		if n == 0 && !hasValue {
			n = 15
		}
		s.Silence = n
	case "STATUSMSG":
		s.StatusMsg = value
	case "TARGMAX":
		s.TargMax = parseTargMax(value)
	}

	s.set[key] = true
}

// disable reverts key to its RFC 1459 default, as if it had never been
// negotiated, matching the behavior of a server that stops advertising a
// parameter it previously advertised.
func (s *Store) disable(key string) {
	def := NewStore()
	switch key {
	case "CASEMAPPING":
		s.CaseMapping = def.CaseMapping
	case "NETWORK":
		s.Network = def.Network
	case "CHANTYPES":
		s.ChanTypes = def.ChanTypes
	case "CHANMODES":
		s.ChanModes = def.ChanModes
	case "PREFIX":
		s.Prefixes = def.Prefixes
	case "CHANLIMIT":
		s.ChanLimit = def.ChanLimit
	case "MAXLIST":
		s.MaxList = def.MaxList
	case "EXCEPTS":
		s.Excepts = ""
	case "INVEX":
		s.Invex = ""
	case "EXTBAN":
		s.ExtBan = ""
	case "SAFELIST":
		s.SafeList = false
	case "SILENCE":
		s.Silence = 0
	case "STATUSMSG":
		s.StatusMsg = ""
	case "TARGMAX":
		s.TargMax = def.TargMax
	}
}

func parsePrefixParam(value string) []Prefix {
	// Format is "(ov)@+": parenthesized mode letters, then matching symbols.
	if !strings.HasPrefix(value, "(") {
		return nil
	}
	closeParen := strings.IndexByte(value, ')')
	if closeParen < 0 {
		return nil
	}
	modes := value[1:closeParen]
	symbols := value[closeParen+1:]
	n := len(modes)
	if len(symbols) < n {
		n = len(symbols)
	}
	out := make([]Prefix, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Prefix{Mode: modes[i], Symbol: symbols[i]})
	}
	return out
}

func parseByteIntMap(value string) map[byte]int {
	out := map[byte]int{}
	for _, part := range strings.Split(value, ",") {
		k, v, ok := strings.Cut(part, ":")
		if !ok || k == "" {
			continue
		}
		n, _ := strconv.Atoi(v)
		for i := 0; i < len(k); i++ {
			out[k[i]] = n
		}
	}
	return out
}

func parseTargMax(value string) map[string]int {
	out := map[string]int{}
	for _, part := range strings.Split(value, ",") {
		k, v, ok := strings.Cut(part, ":")
		if !ok || k == "" {
			continue
		}
		if v == "" {
			out[strings.ToUpper(k)] = -1
			continue
		}
		n, _ := strconv.Atoi(v)
		out[strings.ToUpper(k)] = n
	}
	return out
}

// PrefixSymbol returns the status symbol for a membership mode letter, and
// ok == false if the letter isn't a recognized prefix mode.
func (s *Store) PrefixSymbol(mode byte) (byte, bool) {
	for _, p := range s.Prefixes {
		if p.Mode == mode {
			return p.Symbol, true
		}
	}
	return 0, false
}

// ModeGroup classifies a channel mode letter into its A/B/C/D group, and
// ok == false if the letter isn't in CHANMODES or a membership prefix
// mode at all.
func (s *Store) ModeGroup(mode byte) (group byte, ok bool) {
	switch {
	case strings.IndexByte(s.ChanModes.A, mode) >= 0:
		return 'A', true
	case strings.IndexByte(s.ChanModes.B, mode) >= 0:
		return 'B', true
	case strings.IndexByte(s.ChanModes.C, mode) >= 0:
		return 'C', true
	case strings.IndexByte(s.ChanModes.D, mode) >= 0:
		return 'D', true
	}
	for _, p := range s.Prefixes {
		if p.Mode == mode {
			return 'B', true
		}
	}
	return 0, false
}

// Tokens renders the store back into RPL_ISUPPORT tokens, in a
// deterministic order, for use by the server engine's welcome sequence.
func (s *Store) Tokens() []string {
	var toks []string
	toks = append(toks, "CASEMAPPING="+s.CaseMapping)
	if s.Network != "" {
		toks = append(toks, "NETWORK="+s.Network)
	}
	toks = append(toks, "CHANTYPES="+s.ChanTypes)
	toks = append(toks, "CHANMODES="+strings.Join([]string{
		s.ChanModes.A, s.ChanModes.B, s.ChanModes.C, s.ChanModes.D,
	}, ","))
	if len(s.Prefixes) > 0 {
		var modes, symbols strings.Builder
		for _, p := range s.Prefixes {
			modes.WriteByte(p.Mode)
			symbols.WriteByte(p.Symbol)
		}
		toks = append(toks, "PREFIX=("+modes.String()+")"+symbols.String())
	}
	if len(s.ChanLimit) > 0 {
		toks = append(toks, "CHANLIMIT="+byteIntMapToken(s.ChanLimit))
	}
	if len(s.MaxList) > 0 {
		toks = append(toks, "MAXLIST="+byteIntMapToken(s.MaxList))
	}
	if s.Excepts != "" {
		toks = append(toks, "EXCEPTS="+s.Excepts)
	}
	if s.Invex != "" {
		toks = append(toks, "INVEX="+s.Invex)
	}
	if s.ExtBan != "" {
		toks = append(toks, "EXTBAN="+s.ExtBan)
	}
	if s.SafeList {
		toks = append(toks, "SAFELIST")
	}
	if s.Silence > 0 {
		toks = append(toks, "SILENCE="+strconv.Itoa(s.Silence))
	}
	if s.StatusMsg != "" {
		toks = append(toks, "STATUSMSG="+s.StatusMsg)
	}
	if len(s.TargMax) > 0 {
		toks = append(toks, "TARGMAX="+targMaxToken(s.TargMax))
	}
	return toks
}

// byteIntMapToken renders a mode-letter -> limit map back into its
// "letter:n,letter:n" token form; keys are sorted for deterministic
// output since map iteration order isn't.
func byteIntMapToken(m map[byte]int) string {
	keys := make([]byte, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, string(k)+":"+strconv.Itoa(m[k]))
	}
	return strings.Join(parts, ",")
}

// targMaxToken renders a command -> max-targets map back into its
// "CMD:n,CMD:" token form, where -1 (unlimited) renders as an empty value.
func targMaxToken(m map[string]int) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if m[k] < 0 {
			parts = append(parts, k+":")
			continue
		}
		parts = append(parts, k+":"+strconv.Itoa(m[k]))
	}
	return strings.Join(parts, ",")
}
