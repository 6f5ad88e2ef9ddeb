package server

import (
	"bufio"
	"net"
	"time"

	"github.com/pires/go-proxyproto"
	"github.com/pkg/errors"
)

// readTimeout bounds how long a single read may block (the read deadline
// is reset before every read) and, in Offer, how long a single write may
// block, matching net.go's deadline-per-operation style.
const readTimeout = 6 * time.Minute

// Connection is the external collaborator contract spec.md section 6
// describes: the engine offers outbound lines to it, registers ingress
// and shutdown handlers, and controls its lifecycle, without needing to
// know whether it's backed by a real socket, a PROXY-wrapped socket, or a
// test double.
type Connection interface {
	// Offer queues line for writing; implementations must not block the
	// caller's goroutine indefinitely.
	Offer(line string) error

	// AddIngressHandler registers fn to be called with each line read
	// from the peer.
	AddIngressHandler(fn func(line string))

	// AddShutdownHandler registers fn to be called once the connection is
	// closed, for any reason.
	AddShutdownHandler(fn func(err error))

	// Start begins the connection's read loop in its own goroutine.
	Start()

	// Close closes the connection immediately.
	Close() error

	// CloseDeferred queues remaining offered lines to flush, then closes.
	CloseDeferred()

	RemoteHost() string
}

// netConnection is a Connection backed by a real net.Conn, generalized
// from net.go's bufio.ReadWriter-over-net.Conn wrapping into the fuller
// lifecycle the Connection interface requires.
type netConnection struct {
	conn    net.Conn
	rw      *bufio.ReadWriter
	ingress []func(line string)
	shutdown []func(err error)
	closing bool
}

// NewNetConnection wraps a raw net.Conn, optionally expecting a PROXY
// protocol v1/v2 header first when proxyProtocol is true (mirroring
// soju's use of github.com/pires/go-proxyproto for listeners behind a
// load balancer).
func NewNetConnection(raw net.Conn, proxyProtocol bool) Connection {
	c := raw
	if proxyProtocol {
		c = proxyproto.NewConn(raw)
	}
	return &netConnection{
		conn: c,
		rw:   bufio.NewReadWriter(bufio.NewReader(c), bufio.NewWriter(c)),
	}
}

func (c *netConnection) Offer(line string) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(readTimeout))
	if _, err := c.rw.WriteString(line + "\r\n"); err != nil {
		return errors.Wrap(err, "write")
	}
	return c.rw.Flush()
}

func (c *netConnection) AddIngressHandler(fn func(line string)) {
	c.ingress = append(c.ingress, fn)
}

func (c *netConnection) AddShutdownHandler(fn func(err error)) {
	c.shutdown = append(c.shutdown, fn)
}

func (c *netConnection) Start() {
	go c.readLoop()
}

func (c *netConnection) readLoop() {
	var exitErr error
	for {
		_ = c.conn.SetReadDeadline(time.Now().Add(readTimeout))
		line, err := c.rw.ReadString('\n')
		if line != "" {
			for _, fn := range c.ingress {
				fn(trimCRLF(line))
			}
		}
		if err != nil {
			exitErr = err
			break
		}
	}
	c.fireShutdown(exitErr)
}

func (c *netConnection) fireShutdown(err error) {
	if c.closing {
		return
	}
	c.closing = true
	for _, fn := range c.shutdown {
		fn(err)
	}
}

func (c *netConnection) Close() error {
	return c.conn.Close()
}

func (c *netConnection) CloseDeferred() {
	_ = c.rw.Flush()
	_ = c.conn.Close()
}

func (c *netConnection) RemoteHost() string {
	host, _, err := net.SplitHostPort(c.conn.RemoteAddr().String())
	if err != nil {
		return c.conn.RemoteAddr().String()
	}
	return host
}

func trimCRLF(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}
