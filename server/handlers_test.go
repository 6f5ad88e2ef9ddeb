package server

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tsavola/ircd/ircmsg"
)

func TestJoinCreatesChannelAndSendsNames(t *testing.T) {
	s := newTestServer()
	u, conn := s.testRegisterUser("dan", "dan")
	conn.lines = nil

	s.dispatch(u, &ircmsg.Message{Command: ircmsg.Join{Channels: []string{"#chan"}}})

	require.Contains(t, s.channels, "#chan")
	found353 := false
	for _, l := range conn.lines {
		if strings.Contains(l, "353") {
			found353 = true
		}
	}
	require.True(t, found353)
}

func TestPrivmsgToChannelReachesOtherMembers(t *testing.T) {
	s := newTestServer()
	u1, _ := s.testRegisterUser("dan", "dan")
	u2, conn2 := s.testRegisterUser("bob", "bob")

	s.dispatch(u1, &ircmsg.Message{Command: ircmsg.Join{Channels: []string{"#chan"}}})
	s.dispatch(u2, &ircmsg.Message{Command: ircmsg.Join{Channels: []string{"#chan"}}})
	conn2.lines = nil

	s.dispatch(u1, &ircmsg.Message{Command: ircmsg.Privmsg{Target: "#chan", Text: "hello"}})

	found := false
	for _, l := range conn2.lines {
		if strings.Contains(l, "PRIVMSG #chan :hello") {
			found = true
		}
	}
	require.True(t, found)
}

func TestPrivmsgToUnknownNickReplies401(t *testing.T) {
	s := newTestServer()
	u, conn := s.testRegisterUser("dan", "dan")
	conn.lines = nil

	s.dispatch(u, &ircmsg.Message{Command: ircmsg.Privmsg{Target: "ghost", Text: "hi"}})

	require.Len(t, conn.lines, 1)
	require.Contains(t, conn.lines[0], "401")
}

func TestTopicSetAndQuery(t *testing.T) {
	s := newTestServer()
	u, conn := s.testRegisterUser("dan", "dan")
	s.dispatch(u, &ircmsg.Message{Command: ircmsg.Join{Channels: []string{"#chan"}}})
	conn.lines = nil

	text := "new topic"
	s.dispatch(u, &ircmsg.Message{Command: ircmsg.Topic{Channel: "#chan", Text: &text}})
	require.Equal(t, "new topic", s.channels["#chan"].Topic)

	conn.lines = nil
	s.dispatch(u, &ircmsg.Message{Command: ircmsg.Topic{Channel: "#chan"}})
	found332 := false
	for _, l := range conn.lines {
		if strings.Contains(l, "332") {
			found332 = true
		}
	}
	require.True(t, found332)
}

func TestChannelModeBanAddedToList(t *testing.T) {
	s := newTestServer()
	u, _ := s.testRegisterUser("dan", "dan")
	s.dispatch(u, &ircmsg.Message{Command: ircmsg.Join{Channels: []string{"#chan"}}})

	s.dispatch(u, &ircmsg.Message{Command: ircmsg.Mode{
		Target:     "#chan",
		Modestring: "+b",
		Arguments:  []string{"*!*@evil.example"},
	}})

	ch := s.channels["#chan"]
	require.Contains(t, ch.Lists['b'], "*!*@evil.example")
}

func TestNonOperatorCannotChangeChannelMode(t *testing.T) {
	s := newTestServer()
	op, _ := s.testRegisterUser("dan", "dan")
	other, conn2 := s.testRegisterUser("bob", "bob")
	s.dispatch(op, &ircmsg.Message{Command: ircmsg.Join{Channels: []string{"#chan"}}})
	s.dispatch(other, &ircmsg.Message{Command: ircmsg.Join{Channels: []string{"#chan"}}})
	conn2.lines = nil

	s.dispatch(other, &ircmsg.Message{Command: ircmsg.Mode{
		Target:     "#chan",
		Modestring: "+s",
	}})

	found482 := false
	for _, l := range conn2.lines {
		if strings.Contains(l, "482") {
			found482 = true
		}
	}
	require.True(t, found482)
}

func TestPrivmsgForwardsOnlyClientOnlyTags(t *testing.T) {
	s := newTestServer()
	u1, _ := s.testRegisterUser("dan", "dan")
	u2, conn2 := s.testRegisterUser("bob", "bob")
	s.dispatch(u1, &ircmsg.Message{Command: ircmsg.Join{Channels: []string{"#chan"}}})
	s.dispatch(u2, &ircmsg.Message{Command: ircmsg.Join{Channels: []string{"#chan"}}})
	conn2.lines = nil

	s.dispatch(u1, &ircmsg.Message{
		Tags:    ircmsg.Tags{"+reply": "123", "time": "forged", "account": "forged"},
		Command: ircmsg.Privmsg{Target: "#chan", Text: "hi"},
	})

	require.Len(t, conn2.lines, 1)
	require.Contains(t, conn2.lines[0], "+reply=123")
	require.NotContains(t, conn2.lines[0], "forged")
}

func TestDCCSendOutsideConfiguredPortRangeRejected(t *testing.T) {
	s := newTestServer()
	s.Config.DCCPortLo = 50000
	s.Config.DCCPortHi = 50100
	u, conn := s.testRegisterUser("dan", "dan")
	conn.lines = nil

	text := "\x01DCC SEND file.txt 1.2.3.4 4000 1024\x01"
	s.dispatch(u, &ircmsg.Message{Command: ircmsg.Privmsg{Target: "bob", Text: text, CTCP: &ircmsg.CTCP{Command: "DCC", Args: []string{"SEND", "file.txt", "1.2.3.4", "4000", "1024"}}}})

	require.Len(t, conn.lines, 1)
	require.Contains(t, conn.lines[0], "outside the allowed range")
}

func TestKLineBlocksFutureRegistration(t *testing.T) {
	s := newTestServer()
	s.Bans.Add("dan@127.0.0.1", "testing")

	conn := newFakeConn("127.0.0.1")
	s.onAccept(conn)
	u := s.users[conn]
	s.dispatch(u, &ircmsg.Message{Command: ircmsg.Nick{Nickname: "dan"}})
	s.dispatch(u, &ircmsg.Message{Command: ircmsg.User{User: "dan", Mode: "0", Realname: "Dan"}})

	require.True(t, conn.closed)
}
