package server

import (
	"log"
	"net"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/tsavola/ircd/capability"
	"github.com/tsavola/ircd/guard"
	"github.com/tsavola/ircd/ircmsg"
	"github.com/tsavola/ircd/isupport"
)

// Server is the single-goroutine server engine described in spec.md
// section 4.5: one goroutine owns the connection table, nickname index,
// and channel table, and every exported method that touches them asserts
// guard ownership first.
type Server struct {
	guard guard.Guard

	Info     Info
	ISupport *isupport.Store
	Config   *Config
	Bans     BanList

	motd []string

	users    map[Connection]*User
	nicks    map[string]*User // canonical nick -> user
	channels map[string]*Channel

	Log *log.Logger

	listeners []net.Listener

	// inbox is the single channel every connection's reader goroutine and
	// every periodic task funnels through; Run drains it on the one
	// goroutine that owns users/nicks/channels, so onLine and onDisconnect
	// never run concurrently with each other.
	inbox chan func()
}

// New constructs a server engine from its configuration. Run binds the
// calling goroutine as the owner; no other method may run before it.
func New(cfg *Config) *Server {
	store := isupport.NewStore()
	store.Apply("NETWORK=" + cfg.Network)
	store.Apply("CASEMAPPING=rfc1459")

	s := &Server{
		Info: Info{
			Name:    cfg.ServerName,
			Created: time.Now(),
		},
		ISupport: store,
		Config:   cfg,
		users:    map[Connection]*User{},
		nicks:    map[string]*User{},
		channels: map[string]*Channel{},
		Log:      log.New(os.Stderr, "ircd: ", log.LstdFlags),
		inbox:    make(chan func(), 256),
	}
	if cfg.MOTDFile != "" {
		s.motd = readMOTD(cfg.MOTDFile)
	}
	return s
}

func readMOTD(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var lines []string
	start := 0
	for i := 0; i < len(data); i++ {
		if data[i] == '\n' {
			lines = append(lines, string(data[start:i]))
			start = i + 1
		}
	}
	if start < len(data) {
		lines = append(lines, string(data[start:]))
	}
	return lines
}

// Run binds the calling goroutine as the engine's owner, starts a
// listener for each configured address, and blocks forever processing
// accepted connections and periodic housekeeping. Run is meant to be the
// body of the process's main goroutine (see cmd/ircd).
func (s *Server) Run() error {
	s.guard.Bind()

	for _, lc := range s.Config.Listeners {
		ln, err := net.Listen("tcp", lc.Address)
		if err != nil {
			return errors.Wrapf(err, "listen on %s", lc.Address)
		}
		s.listeners = append(s.listeners, ln)
		go s.acceptLoop(ln, lc.ProxyProtocol)
	}

	ticker := time.NewTicker(time.Duration(s.Config.PingEvery) * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.pingWatchdog()
		case job := <-s.inbox:
			job()
		}
	}
}

// acceptLoop runs in its own goroutine purely to call net.Listener.Accept,
// which blocks; newly accepted connections are registered by way of the
// inbox, same as every other piece of inbound traffic, so Accept never
// touches engine state directly.
func (s *Server) acceptLoop(ln net.Listener, proxyProtocol bool) {
	for {
		raw, err := ln.Accept()
		if err != nil {
			s.Log.Printf("accept error on %s: %s", ln.Addr(), err)
			return
		}
		conn := NewNetConnection(raw, proxyProtocol)
		s.inbox <- func() { s.onAccept(conn) }
	}
}

// onAccept wires a freshly-accepted connection's ingress and shutdown
// handlers and records it in the connection table. It always runs on the
// owning goroutine, reached via the inbox channel from acceptLoop.
func (s *Server) onAccept(conn Connection) {
	s.guard.Assert()
	u := NewUser(conn)
	u.Host = conn.RemoteHost()
	u.LastActivity = time.Now()
	s.users[conn] = u

	conn.AddIngressHandler(func(line string) {
		s.inbox <- func() { s.onLine(u, line) }
	})
	conn.AddShutdownHandler(func(err error) {
		s.inbox <- func() { s.onDisconnect(u, disconnectReason(err)) }
	})
	conn.Start()
}

func disconnectReason(err error) string {
	if err == nil {
		return "Connection closed"
	}
	return "Read error: " + err.Error()
}

// onLine is the engine's single entry point for inbound traffic: parse,
// then dispatch. It always runs on the owning goroutine -- ingress
// handlers registered in onAccept push a closure onto s.inbox rather than
// calling onLine directly, and Run is the only reader of that channel --
// so the guard assertion here is load-bearing, not documentation.
func (s *Server) onLine(u *User, line string) {
	s.guard.Assert()
	u.LastActivity = time.Now()
	u.PingSent = false

	msg := ircmsg.Parse(line)
	switch cmd := msg.Command.(type) {
	case ircmsg.TooLong:
		s.send(u, s.numeric(u, "417", "Input line was too long"))
		return
	case ircmsg.ParseError:
		return
	case ircmsg.NotEnoughParameters:
		s.send(u, s.numeric(u, "461", cmd.Command, "Not enough parameters"))
		return
	case ircmsg.Unsupported:
		if cmd.Command == "" {
			// Grammar failed before a command token was even found; there's
			// nothing nameable to put in ERR_UNKNOWNCOMMAND.
			return
		}
		s.send(u, s.numeric(u, "421", cmd.Command, "Unknown command"))
		return
	}

	s.dispatch(u, msg)
}

// send offers msg to u's connection, tagging it with the server-time tag
// if u has enabled that capability, per spec.md section 4.5's tag
// forwarding rules.
func (s *Server) send(u *User, msg *ircmsg.Message) {
	if u.Caps.Has(capability.ServerTime) {
		// Tag a copy: a broadcast passes the same msg on to recipients
		// that have not enabled server-time.
		tagged := *msg
		tagged.Tags = ircmsg.Tags{}
		for k, v := range msg.Tags {
			tagged.Tags[k] = v
		}
		tagged.Tags["time"] = time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
		msg = &tagged
	}
	line, err := ircmsg.Marshal(msg)
	if err != nil {
		s.Log.Printf("marshal error: %s", err)
		return
	}
	if err := u.Conn.Offer(line); err != nil {
		s.Log.Printf("write error to %s: %s", displayNick(u), err)
	}
}

// broadcastToChannel snapshots a channel's membership and sends msg to
// every member's connection, mirroring local_server.go's snapshot-then-
// broadcast pattern so that a handler disconnecting a member mid-loop
// (e.g. a KICK) can't corrupt the iteration.
func (s *Server) broadcastToChannel(ch *Channel, msg *ircmsg.Message, except *User) {
	members := make([]*User, 0, len(ch.Members))
	for _, m := range ch.Members {
		members = append(members, m.User)
	}
	for _, member := range members {
		if except != nil && member == except {
			continue
		}
		s.send(member, msg)
	}
}

// pingWatchdog sends a PING to any connection idle for more than half the
// configured idle timeout, and disconnects anyone who was already waiting
// on one and has stayed idle past the full timeout, grounded on
// local_server.go's periodic liveness checking.
func (s *Server) pingWatchdog() {
	s.guard.Assert()
	now := time.Now()
	idleTimeout := time.Duration(s.Config.IdleTimeout) * time.Second

	for _, u := range s.snapshotUsers() {
		idle := now.Sub(u.LastActivity)
		if u.PingSent && idle > idleTimeout {
			s.onDisconnect(u, "Ping timeout")
			continue
		}
		if idle > idleTimeout/2 && !u.PingSent {
			s.send(u, &ircmsg.Message{
				Prefix:  &ircmsg.Prefix{Name: s.Info.Name},
				Command: ircmsg.Ping{Token: s.Info.Name},
			})
			u.PingSent = true
		}
	}
}

func (s *Server) snapshotUsers() []*User {
	out := make([]*User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	return out
}

// onDisconnect removes u from every index it's part of, announcing a
// QUIT to anyone who shared a channel with them.
func (s *Server) onDisconnect(u *User, reason string) {
	s.guard.Assert()
	if u.State == StateClosed {
		return
	}
	u.State = StateClosed

	quit := &ircmsg.Message{
		Prefix:  &ircmsg.Prefix{Name: u.Nick, User: u.User, Host: u.Host},
		Command: ircmsg.Quit{Reason: reason},
	}
	notified := map[*User]bool{}
	for chName := range u.Channels {
		ch := s.channels[chName]
		if ch == nil {
			continue
		}
		for _, m := range ch.Members {
			if m.User != u && !notified[m.User] {
				s.send(m.User, quit)
				notified[m.User] = true
			}
		}
		delete(ch.Members, canonical(u.Nick))
		if len(ch.Members) == 0 {
			delete(s.channels, chName)
		}
	}

	if u.Nick != "" {
		delete(s.nicks, canonical(u.Nick))
	}
	delete(s.users, u.Conn)
	u.Conn.CloseDeferred()
}
