// Package broker owns TCP sessions to individual brokers: one Connection
// per (host, port), dispatched by correlation id, per spec.md §4.3.
package broker

import (
	"bufio"
	"crypto/tls"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/streamworks-oss/clog/api"
	"github.com/streamworks-oss/clog/api/Metadata"
	"github.com/streamworks-oss/clog/api/Produce"
	"github.com/streamworks-oss/clog/errcode"
)

// Connection owns one TCP socket to one broker. It maintains a
// monotonically increasing correlation id and dispatches send calls
// synchronously: one request in flight at a time, matching the
// call-and-block style the core's single-goroutine produce path needs.
type Connection struct {
	Addr     string
	ClientId string
	// SocketTimeout bounds each round trip's read and write deadlines,
	// per spec.md §5: a broker that accepts the connection but never
	// writes back must not block send forever. Zero disables the
	// deadline, leaving the round trip unbounded.
	SocketTimeout time.Duration

	mu            sync.Mutex
	conn          net.Conn
	correlationId int32
	closed        bool
	dialedAt      time.Time
}

// Dial opens a TCP (or TLS, if tlsConfig is non-nil) connection to addr.
// dialTimeout bounds the handshake; socketTimeout is stored on the
// returned Connection and applied as a read/write deadline around every
// subsequent round trip.
func Dial(addr string, tlsConfig *tls.Config, dialTimeout, socketTimeout time.Duration) (*Connection, error) {
	var conn net.Conn
	var err error
	if tlsConfig != nil {
		d := &net.Dialer{Timeout: dialTimeout}
		conn, err = tls.DialWithDialer(d, "tcp", addr, tlsConfig)
	} else {
		conn, err = net.DialTimeout("tcp", addr, dialTimeout)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: dialing %s: %v", errcode.ErrConnectionError, addr, err)
	}
	return &Connection{Addr: addr, conn: conn, SocketTimeout: socketTimeout, dialedAt: time.Now()}, nil
}

// DialedAt reports when the underlying socket was opened, so a pool can
// enforce a connection TTL independent of the per-round-trip
// SocketTimeout.
func (c *Connection) DialedAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dialedAt
}

// setDeadline applies SocketTimeout to the underlying socket before a
// round trip. A failure to set it is treated like any other socket
// failure: the connection is no longer trustworthy for this call.
func (c *Connection) setDeadline() error {
	if c.SocketTimeout <= 0 {
		return nil
	}
	if err := c.conn.SetDeadline(time.Now().Add(c.SocketTimeout)); err != nil {
		return fmt.Errorf("%w: setting deadline on %s: %v", errcode.ErrConnectionError, c.Addr, err)
	}
	return nil
}

// Closed reports whether the connection has been closed, either by the
// caller or because a correlation id mismatch made the session untrusted.
func (c *Connection) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Close closes the underlying socket. It is safe to call more than once.
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}

func (c *Connection) nextCorrelationId() int32 {
	return atomic.AddInt32(&c.correlationId, 1)
}

// send writes the framed request and reads back the framed response,
// verifying the correlation id round-trips. Socket I/O failures fail with
// errcode.ErrConnectionError; a correlation id mismatch fails with
// errcode.ErrCorrupt and closes the connection, since the session can no
// longer be trusted to be in sync with the broker.
func (c *Connection) send(req *api.Request) (*api.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, fmt.Errorf("%w: connection to %s is closed", errcode.ErrConnectionError, c.Addr)
	}
	if err := c.setDeadline(); err != nil {
		return nil, err
	}
	req.CorrelationId = c.nextCorrelationId()
	req.ClientId = c.ClientId

	w := bufio.NewWriter(c.conn)
	if _, err := w.Write(req.Bytes()); err != nil {
		return nil, fmt.Errorf("%w: writing request to %s: %v", errcode.ErrConnectionError, c.Addr, err)
	}
	if err := w.Flush(); err != nil {
		return nil, fmt.Errorf("%w: flushing request to %s: %v", errcode.ErrConnectionError, c.Addr, err)
	}

	resp, err := api.ReadResponse(bufio.NewReader(c.conn))
	if err != nil {
		return nil, err
	}
	if resp.CorrelationId() != req.CorrelationId {
		c.closed = true
		c.conn.Close()
		return nil, fmt.Errorf("%w: correlation id mismatch on %s: sent %d, got %d",
			errcode.ErrCorrupt, c.Addr, req.CorrelationId, resp.CorrelationId())
	}
	return resp, nil
}

// Metadata issues a topic-metadata request and returns the decoded
// response.
func (c *Connection) Metadata(topics []string) (*Metadata.Response, error) {
	resp, err := c.send(Metadata.NewRequest(topics))
	if err != nil {
		return nil, err
	}
	out := &Metadata.Response{}
	if err := resp.Unmarshal(out); err != nil {
		return nil, err
	}
	return out, nil
}

// Produce issues a produce request covering topicData and returns the
// decoded response. When acks is 0 the broker sends no response body; the
// caller must not call Produce in that mode — Connection.ProduceNoAck
// exists for it.
func (c *Connection) Produce(acks int16, timeoutMs int32, topicData []Produce.TopicData) (*Produce.Response, error) {
	resp, err := c.send(Produce.NewRequest(acks, timeoutMs, topicData))
	if err != nil {
		return nil, err
	}
	out := &Produce.Response{}
	if err := resp.Unmarshal(out); err != nil {
		return nil, err
	}
	return out, nil
}

// ProduceNoAck issues a produce request with acks=0 and does not wait for
// or attempt to parse a response body, per spec.md §4.8 step 3.
func (c *Connection) ProduceNoAck(timeoutMs int32, topicData []Produce.TopicData) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return fmt.Errorf("%w: connection to %s is closed", errcode.ErrConnectionError, c.Addr)
	}
	if err := c.setDeadline(); err != nil {
		return err
	}
	req := Produce.NewRequest(0, timeoutMs, topicData)
	req.CorrelationId = c.nextCorrelationId()
	req.ClientId = c.ClientId
	w := bufio.NewWriter(c.conn)
	if _, err := w.Write(req.Bytes()); err != nil {
		return fmt.Errorf("%w: writing request to %s: %v", errcode.ErrConnectionError, c.Addr, err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("%w: flushing request to %s: %v", errcode.ErrConnectionError, c.Addr, err)
	}
	return nil
}
