package ircmsg

import (
	"testing"

	"github.com/kr/pretty"
	"github.com/stretchr/testify/require"
)

// roundtrip asserts that parsing, marshalling, and re-parsing a line
// yields the same Command value, which is the codec's central law: for
// any legally-parsed Message m, Parse(Marshal(m)) == m.
func roundtrip(t *testing.T, line string) *Message {
	t.Helper()
	m := Parse(line)
	out, err := Marshal(m)
	require.NoError(t, err)
	m2 := Parse(out)
	if diff := pretty.Diff(m.Command, m2.Command); len(diff) != 0 {
		t.Fatalf("round-trip mismatch for %q -> %q: %v", line, out, diff)
	}
	return m
}

func TestRoundTripPrivmsg(t *testing.T) {
	roundtrip(t, "PRIVMSG #chan :Hey what's up!")
}

func TestRoundTripJoinWithKeys(t *testing.T) {
	roundtrip(t, "JOIN #a,#b key1,key2")
}

func TestRoundTripModeWithArgs(t *testing.T) {
	roundtrip(t, "MODE #chan +ov dan nick2")
}

func TestRoundTripTopicSet(t *testing.T) {
	roundtrip(t, "TOPIC #chan :brand new topic")
}

func TestRoundTripQuitNoReason(t *testing.T) {
	roundtrip(t, "QUIT")
}

func TestRoundTripKickWithReason(t *testing.T) {
	roundtrip(t, "KICK #chan dan :being a nuisance")
}

func TestRoundTripTagsPreserved(t *testing.T) {
	m := roundtrip(t, "@time=2021-01-01T00:00:00.000Z PRIVMSG #chan :hi")
	require.Equal(t, "2021-01-01T00:00:00.000Z", m.Tags["time"])
}

func TestRoundTripNumericFallback(t *testing.T) {
	roundtrip(t, "372 nick :- line of the motd -")
}

func TestMarshalSentinelVariantsRoundTripToRaw(t *testing.T) {
	for _, c := range []Command{
		Unsupported{Raw: "X"},
		ParseError{Raw: "@a=1 :", Reason: "message is malformed"},
		TooLong{Raw: "PRIVMSG #chan :hi"},
		NotEnoughParameters{Command: "PRIVMSG", Raw: "PRIVMSG"},
	} {
		out, err := Marshal(&Message{Command: c})
		require.NoError(t, err)
		require.Equal(t, rawOf(c), out)
	}
}

func rawOf(c Command) string {
	switch v := c.(type) {
	case Unsupported:
		return v.Raw
	case ParseError:
		return v.Raw
	case TooLong:
		return v.Raw
	case NotEnoughParameters:
		return v.Raw
	}
	return ""
}
