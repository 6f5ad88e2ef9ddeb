package client

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	sent    []string
	ingress []func(string)
}

func (c *fakeConn) Offer(line string) error {
	c.sent = append(c.sent, line)
	return nil
}
func (c *fakeConn) AddIngressHandler(fn func(line string)) { c.ingress = append(c.ingress, fn) }
func (c *fakeConn) AddShutdownHandler(fn func(err error))  {}
func (c *fakeConn) Start()                                 {}
func (c *fakeConn) Close() error                           { return nil }
func (c *fakeConn) CloseDeferred()                         {}

func (c *fakeConn) deliver(line string) {
	for _, fn := range c.ingress {
		fn(line)
	}
}

type recordingSink struct {
	connected bool
	messages  []string
	joins     []string
}

func (s *recordingSink) OnConnect()                                         { s.connected = true }
func (s *recordingSink) OnMessage(from, target, text string, notice bool) { s.messages = append(s.messages, text) }
func (s *recordingSink) OnJoin(nick, channel string)                       { s.joins = append(s.joins, channel) }
func (s *recordingSink) OnPart(nick, channel, reason string)               {}
func (s *recordingSink) OnQuit(nick, reason string)                        {}
func (s *recordingSink) OnTopic(channel, text string)                      {}
func (s *recordingSink) OnDisconnect(err error)                            {}

func newTestEngine() (*Engine, *fakeConn, *recordingSink) {
	sink := &recordingSink{}
	e := NewEngine("unused:0", "dan", "dan", "Dan", "", sink)
	e.guard.Bind()
	conn := &fakeConn{}
	e.conn = conn
	e.State.Status = StateNegotiatingCaps
	conn.AddIngressHandler(e.onLine)
	return e, conn, sink
}

func TestCapLSTriggersRequestThenEnd(t *testing.T) {
	e, conn, _ := newTestEngine()
	conn.deliver(":irc.example.org CAP * LS :message-tags server-time sasl")
	require.Len(t, conn.sent, 1)
	require.Contains(t, conn.sent[0], "CAP REQ")

	conn.deliver(":irc.example.org CAP dan ACK :message-tags server-time")
	require.Len(t, conn.sent, 2)
	require.Equal(t, "CAP END", conn.sent[1])
	require.True(t, e.State.Caps.Has("message-tags"))
}

func TestWelcomeMarksRegistered(t *testing.T) {
	e, conn, sink := newTestEngine()
	conn.deliver(":irc.example.org 001 dan :Welcome to the network, dan")
	require.Equal(t, StateRegistered, e.State.Status)
	require.True(t, sink.connected)
	require.Equal(t, "dan", e.State.Me.Nick)
}

func TestPrivmsgDeliveredToSink(t *testing.T) {
	_, conn, sink := newTestEngine()
	conn.deliver(":bob!b@host PRIVMSG dan :hey there")
	require.Equal(t, []string{"hey there"}, sink.messages)
}

func TestJoinTracksChannelMembership(t *testing.T) {
	e, conn, sink := newTestEngine()
	conn.deliver(":dan!d@host JOIN #chan")
	require.Contains(t, e.State.Channels, "#chan")
	require.Equal(t, []string{"#chan"}, sink.joins)
}

func TestPingAnsweredWithPong(t *testing.T) {
	_, conn, _ := newTestEngine()
	conn.deliver("PING :irc.example.org")
	require.Len(t, conn.sent, 1)
	require.Equal(t, "PONG irc.example.org", conn.sent[0])
}

func TestCTCPVersionRequestAnsweredOverNotice(t *testing.T) {
	_, conn, _ := newTestEngine()
	conn.deliver(":bob!b@host PRIVMSG dan :\x01VERSION\x01")
	require.Len(t, conn.sent, 1)
	require.Contains(t, conn.sent[0], "NOTICE bob")
	require.Contains(t, conn.sent[0], "\x01VERSION")
}
