package ircmsg

// This file declares the closed set of bespoke typed variants chosen in
// SPEC_FULL.md section D: commands whose parameters have real internal
// structure an invariant or testable property depends on. Everything
// else round-trips through Numeric or Unsupported.

// Cap is the CAP command, covering all eight subcommands (LS, LIST, REQ,
// ACK, NAK, NEW, DEL, END share one shape on the wire).
type Cap struct {
	Subcommand string
	Caps       []string
	More       bool // true when LS/LIST reported a trailing "*" continuation marker
}

func (Cap) commandName() string { return "CAP" }

// Pass is the PASS command sent (by a client) or expected (by a server)
// before registration completes.
type Pass struct {
	Password string
}

func (Pass) commandName() string { return "PASS" }

// Nick sets or changes a nickname.
type Nick struct {
	Nickname string
}

func (Nick) commandName() string { return "NICK" }

// User supplies the registration USER parameters.
type User struct {
	User     string
	Mode     string
	Realname string
}

func (User) commandName() string { return "USER" }

// Oper requests operator privileges.
type Oper struct {
	Name     string
	Password string
}

func (Oper) commandName() string { return "OPER" }

// Ping is a keepalive probe; Token is echoed back in the matching Pong.
type Ping struct {
	Token string
}

func (Ping) commandName() string { return "PING" }

// Pong answers a Ping.
type Pong struct {
	Token string
}

func (Pong) commandName() string { return "PONG" }

// Quit announces voluntary disconnection.
type Quit struct {
	Reason string
}

func (Quit) commandName() string { return "QUIT" }

// ErrorMsg is the server's unilateral ERROR line, sent immediately before
// closing a connection.
type ErrorMsg struct {
	Reason string
}

func (ErrorMsg) commandName() string { return "ERROR" }

// Join requests membership in one or more channels, each with an optional
// key. Keys holds the comma-separated key list exactly as sent (nil when
// no key parameter was given); the parser does not pad or truncate it to
// len(Channels), so a channel past the end of Keys has no key.
type Join struct {
	Channels []string
	Keys     []string
}

func (Join) commandName() string { return "JOIN" }

// Part leaves one or more channels.
type Part struct {
	Channels []string
	Reason   string
}

func (Part) commandName() string { return "PART" }

// Kick removes a member from a channel.
type Kick struct {
	Channel string
	Nick    string
	Reason  string
}

func (Kick) commandName() string { return "KICK" }

// Mode reads or changes channel or user mode state. Modestring and
// Arguments are kept raw here; server/modes.go classifies each flag
// character against the ISUPPORT-driven A/B/C/D mode groups.
type Mode struct {
	Target     string
	Modestring string
	Arguments  []string
}

func (Mode) commandName() string { return "MODE" }

// Topic reads (Text == nil) or sets (Text != nil) a channel topic.
type Topic struct {
	Channel string
	Text    *string
}

func (Topic) commandName() string { return "TOPIC" }

// CTCP is a lifted CTCP request/reply extracted from a Privmsg/Notice
// payload wrapped in \x01 bytes. DCC SEND requests are further split into
// Args via a quote-aware tokenizer (see ctcp.go).
type CTCP struct {
	Command string
	Args    []string
	IsReply bool
}

// Privmsg sends a message to a channel or nick. CTCP is non-nil when Text
// was a CTCP-wrapped payload; Text then holds the original wrapped form.
type Privmsg struct {
	Target string
	Text   string
	CTCP   *CTCP
}

func (Privmsg) commandName() string { return "PRIVMSG" }

// Notice is like Privmsg but must never trigger an automatic reply.
type Notice struct {
	Target string
	Text   string
	CTCP   *CTCP
}

func (Notice) commandName() string { return "NOTICE" }

// Away sets (Message != "") or clears (Message == "") the away status.
type Away struct {
	Message string
}

func (Away) commandName() string { return "AWAY" }

// Kill forcibly disconnects a user (operator-only).
type Kill struct {
	Nick   string
	Reason string
}

func (Kill) commandName() string { return "KILL" }

// Welcome is RPL_WELCOME (001), the first reply after successful
// registration; Nick is hoisted out of Params[0] for convenience.
type Welcome struct {
	Nick string
	Text string
}

func (Welcome) commandName() string { return "001" }

// ISupport is RPL_ISUPPORT (005): a chunk of server-parameter tokens.
// A full negotiation is usually several of these in a row; isupport.Store
// accumulates across all of them.
type ISupport struct {
	Nick   string
	Tokens []string
	Text   string
}

func (ISupport) commandName() string { return "005" }

// NamReply is RPL_NAMREPLY (353): one line of a NAMES listing.
type NamReply struct {
	Nick    string
	Symbol  string // "=", "*", or "@" channel visibility marker
	Channel string
	Nicks   []string
}

func (NamReply) commandName() string { return "353" }

// WhoisChannels is RPL_WHOISCHANNELS (319): the channel list in a WHOIS
// reply, each entry optionally prefixed with a status symbol.
type WhoisChannels struct {
	Nick     string
	Target   string
	Channels []string
}

func (WhoisChannels) commandName() string { return "319" }

// Who requests a WHO listing matching mask.
type Who struct {
	Mask string
}

func (Who) commandName() string { return "WHO" }

// Whois requests WHOIS information about nick.
type Whois struct {
	Nick string
}

func (Whois) commandName() string { return "WHOIS" }

// Lusers requests the LUSERS burst.
type Lusers struct{}

func (Lusers) commandName() string { return "LUSERS" }

// Motd requests the message of the day.
type Motd struct{}

func (Motd) commandName() string { return "MOTD" }

// Links requests a LINKS listing matching mask.
type Links struct {
	Mask string
}

func (Links) commandName() string { return "LINKS" }

// KLine installs a local ban (operator-only).
type KLine struct {
	Mask   string
	Reason string
}

func (KLine) commandName() string { return "KLINE" }

// UnKLine lifts a local ban (operator-only).
type UnKLine struct {
	Mask string
}

func (UnKLine) commandName() string { return "UNKLINE" }

// Numeric is the generic fallback for every numeric reply not given a
// bespoke type above (see SPEC_FULL.md section D for the rationale).
type Numeric struct {
	Code   string
	Params []string
}

func (n Numeric) commandName() string { return n.Code }

// Unsupported is a line that never reached a recognized command: either
// its command token wasn't a known verb or numeric (Command holds that
// token), or the grammar failed before a command token could even be
// identified (Command is empty and Reason explains why).
type Unsupported struct {
	Command string
	Reason  string
	Raw     string
}

func (Unsupported) commandName() string { return "" }

// ParseError is a line that could not be parsed as a legal IRC line.
type ParseError struct {
	Raw    string
	Reason string
}

func (ParseError) commandName() string { return "" }

// TooLong is a line rejected outright because it exceeded the length
// budget before any field-level parsing was attempted.
type TooLong struct {
	Raw string
}

func (TooLong) commandName() string { return "" }

// NotEnoughParameters is a recognized command whose parameter list didn't
// satisfy its required extraction plan.
type NotEnoughParameters struct {
	Command string
	Raw     string
}

func (NotEnoughParameters) commandName() string { return "" }
