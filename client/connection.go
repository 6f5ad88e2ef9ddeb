// Package client implements the client-side IRC engine: connect and
// register against a server, track the resulting session state, and
// expose a small outgoing-command API plus a callback sink for incoming
// events. Grounded on Travis-Britz-irc/client.go's connect/registration/
// shutdown orchestration and local_client.go's registration handler
// dispatch shape.
package client

import (
	"bufio"
	"net"
	"time"

	"github.com/pkg/errors"
)

const dialTimeout = 15 * time.Second

// Connection is this package's half of the external Connection contract
// spec.md section 6 describes, specialized to the dialing (rather than
// accepting) direction a client takes.
type Connection interface {
	Offer(line string) error
	AddIngressHandler(fn func(line string))
	AddShutdownHandler(fn func(err error))
	Start()
	Close() error
	CloseDeferred()
}

type netConnection struct {
	conn     net.Conn
	rw       *bufio.ReadWriter
	ingress  []func(line string)
	shutdown []func(err error)
	closing  bool
}

// Dial connects to addr and returns a Connection ready to Start.
func Dial(addr string) (Connection, error) {
	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return nil, errors.Wrap(err, "dial")
	}
	return &netConnection{
		conn: conn,
		rw:   bufio.NewReadWriter(bufio.NewReader(conn), bufio.NewWriter(conn)),
	}, nil
}

func (c *netConnection) Offer(line string) error {
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
	if c.closing {
		return
	}
	c.closing = true
	for _, fn := range c.shutdown {
		fn(exitErr)
	}
}

func (c *netConnection) Close() error {
	return c.conn.Close()
}

func (c *netConnection) CloseDeferred() {
	_ = c.rw.Flush()
	_ = c.conn.Close()
}

func trimCRLF(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}
