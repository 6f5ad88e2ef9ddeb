package server

import (
	"github.com/tsavola/ircd/ircmsg"
)

// fakeConn is a Connection test double that records every offered line
// instead of writing to a socket, letting tests assert on the exact
// numerics/commands a handler sent.
type fakeConn struct {
	host   string
	closed bool
	lines  []string
}

func newFakeConn(host string) *fakeConn {
	return &fakeConn{host: host}
}

func (c *fakeConn) Offer(line string) error {
	c.lines = append(c.lines, line)
	return nil
}

func (c *fakeConn) AddIngressHandler(fn func(line string)) {}
func (c *fakeConn) AddShutdownHandler(fn func(err error))  {}
func (c *fakeConn) Start()                                 {}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

func (c *fakeConn) CloseDeferred() {
	c.closed = true
}

func (c *fakeConn) RemoteHost() string { return c.host }

// newTestServer returns a Server with a single listener-less config,
// suitable for driving dispatch() directly in tests without a real
// socket or the Run loop.
func newTestServer() *Server {
	s := New(&Config{
		ServerName:  "irc.test",
		Network:     "TestNet",
		PingEvery:   60,
		IdleTimeout: 300,
	})
	s.guard.Bind()
	return s
}

func mustCap(subcommand string) ircmsg.Cap {
	return ircmsg.Cap{Subcommand: subcommand}
}

func (s *Server) testRegisterUser(nick, user string) (*User, *fakeConn) {
	conn := newFakeConn("127.0.0.1")
	s.onAccept(conn)
	u := s.users[conn]
	s.dispatch(u, &ircmsg.Message{Command: ircmsg.Nick{Nickname: nick}})
	s.dispatch(u, &ircmsg.Message{Command: ircmsg.User{User: user, Mode: "0", Realname: "Test User"}})
	return u, conn
}
