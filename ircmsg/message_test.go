package ircmsg

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParsePrefixAndTags(t *testing.T) {
	m := Parse("@id=234AB;time=2021-01-01T00:00:00.000Z :dan!d@localhost PRIVMSG #chan :Hey what's up!")
	require.Equal(t, "234AB", m.Tags["id"])
	require.Equal(t, "2021-01-01T00:00:00.000Z", m.Tags["time"])
	require.Equal(t, "dan", m.Prefix.Name)
	require.Equal(t, "d", m.Prefix.User)
	require.Equal(t, "localhost", m.Prefix.Host)

	priv, ok := m.Command.(Privmsg)
	require.True(t, ok)
	require.Equal(t, "#chan", priv.Target)
	require.Equal(t, "Hey what's up!", priv.Text)
}

func TestParseTagEscaping(t *testing.T) {
	m := Parse(`@note=a\sb\:c\\d :nick NOTICE #c :hi`)
	require.Equal(t, `a b;c\d`, m.Tags["note"])
}

func TestParseTagUnknownEscapeDropsBackslash(t *testing.T) {
	m := Parse(`@note=a\qb NICK x`)
	require.Equal(t, "aqb", m.Tags["note"])
}

func TestParseJoinWithKeys(t *testing.T) {
	m := Parse("JOIN #a,#b key1,key2")
	j, ok := m.Command.(Join)
	require.True(t, ok)
	require.Equal(t, []string{"#a", "#b"}, j.Channels)
	require.Equal(t, []string{"key1", "key2"}, j.Keys)
}

func TestParseJoinZero(t *testing.T) {
	m := Parse("JOIN 0")
	j, ok := m.Command.(Join)
	require.True(t, ok)
	require.Equal(t, []string{"0"}, j.Channels)
}

func TestParseModeWithArguments(t *testing.T) {
	m := Parse("MODE #chan +ov dan nick2")
	mo, ok := m.Command.(Mode)
	require.True(t, ok)
	require.Equal(t, "#chan", mo.Target)
	require.Equal(t, "+ov", mo.Modestring)
	require.Equal(t, []string{"dan", "nick2"}, mo.Arguments)
}

func TestParseTopicQuery(t *testing.T) {
	m := Parse("TOPIC #chan")
	to, ok := m.Command.(Topic)
	require.True(t, ok)
	require.Nil(t, to.Text)
}

func TestParseTopicSet(t *testing.T) {
	m := Parse("TOPIC #chan :new topic here")
	to, ok := m.Command.(Topic)
	require.True(t, ok)
	require.NotNil(t, to.Text)
	require.Equal(t, "new topic here", *to.Text)
}

func TestParseNotEnoughParameters(t *testing.T) {
	m := Parse("NICK")
	nep, ok := m.Command.(NotEnoughParameters)
	require.True(t, ok)
	require.Equal(t, "NICK", nep.Command)
}

func TestParseUnsupported(t *testing.T) {
	m := Parse("FROBNICATE a b c")
	_, ok := m.Command.(Unsupported)
	require.True(t, ok)
}

func TestParseTooLong(t *testing.T) {
	huge := "PRIVMSG #c :" + string(make([]byte, 9000))
	m := Parse(huge)
	_, ok := m.Command.(TooLong)
	require.True(t, ok)
}

func TestParseBodyAt510BytesParses(t *testing.T) {
	line := "PRIVMSG #c :" + strings.Repeat("a", 510-len("PRIVMSG #c :"))
	require.Len(t, line, 510)
	m := Parse(line)
	_, ok := m.Command.(Privmsg)
	require.True(t, ok)
}

func TestParseBodyAt511BytesIsTooLong(t *testing.T) {
	line := "PRIVMSG #c :" + strings.Repeat("a", 511-len("PRIVMSG #c :"))
	require.Len(t, line, 511)
	m := Parse(line)
	_, ok := m.Command.(TooLong)
	require.True(t, ok)
}

func TestParseTagSectionAt8191BytesParses(t *testing.T) {
	tagSection := "@" + strings.Repeat("x", 8189) + " " // '@' + value + ' ' == 8191
	require.Len(t, tagSection, MaxTagBytes)
	m := Parse(tagSection + "PRIVMSG #c :hi")
	_, ok := m.Command.(Privmsg)
	require.True(t, ok)
}

func TestParseTagSectionOverBudgetIsTooLong(t *testing.T) {
	tagSection := "@" + strings.Repeat("x", 8190) + " "
	require.Len(t, tagSection, MaxTagBytes+1)
	m := Parse(tagSection + "PRIVMSG #c :hi")
	_, ok := m.Command.(TooLong)
	require.True(t, ok)
}

func TestParseMalformedLinesAreUnsupportedNotParseError(t *testing.T) {
	for _, line := range []string{"", "@", ":", "@a=1 :"} {
		m := Parse(line)
		_, ok := m.Command.(Unsupported)
		require.Truef(t, ok, "expected Unsupported for %q, got %T", line, m.Command)
	}
}

func TestParseTabInBodyIsUnsupported(t *testing.T) {
	m := Parse("PRIVMSG\t#c :hi")
	_, ok := m.Command.(Unsupported)
	require.True(t, ok)
}

func TestParseEmbeddedNulIsUnsupported(t *testing.T) {
	m := Parse("PRIVMSG #c :hi\x00there")
	_, ok := m.Command.(Unsupported)
	require.True(t, ok)
}

func TestParseNumericFallback(t *testing.T) {
	m := Parse(":irc.example.org 372 nick :- Message of the day -")
	n, ok := m.Command.(Numeric)
	require.True(t, ok)
	require.Equal(t, "372", n.Code)
	require.Equal(t, []string{"nick", "- Message of the day -"}, n.Params)
}

func TestParseWelcomeAndISupport(t *testing.T) {
	w := Parse(":irc.example.org 001 dan :Welcome to the network, dan")
	wc, ok := w.Command.(Welcome)
	require.True(t, ok)
	require.Equal(t, "dan", wc.Nick)

	is := Parse(":irc.example.org 005 dan NICKLEN=30 CHANTYPES=# :are supported by this server")
	isp, ok := is.Command.(ISupport)
	require.True(t, ok)
	require.Equal(t, []string{"NICKLEN=30", "CHANTYPES=#"}, isp.Tokens)
}

func TestParseNamReply(t *testing.T) {
	m := Parse(":irc.example.org 353 dan = #chan :dan @op +voiced")
	n, ok := m.Command.(NamReply)
	require.True(t, ok)
	require.Equal(t, "#chan", n.Channel)
	require.Equal(t, []string{"dan", "@op", "+voiced"}, n.Nicks)
}

func TestCTCPLifting(t *testing.T) {
	m := Parse("PRIVMSG #chan :\x01VERSION\x01")
	p, ok := m.Command.(Privmsg)
	require.True(t, ok)
	require.NotNil(t, p.CTCP)
	require.Equal(t, "VERSION", p.CTCP.Command)
}

func TestCTCPDCCSendQuotedFilename(t *testing.T) {
	m := Parse("PRIVMSG dan :\x01DCC SEND \"my file.txt\" 3232235521 4000 1024\x01")
	p := m.Command.(Privmsg)
	require.Equal(t, "DCC", p.CTCP.Command)
	require.Equal(t, []string{"SEND", "my file.txt", "3232235521", "4000", "1024"}, p.CTCP.Args)
}
