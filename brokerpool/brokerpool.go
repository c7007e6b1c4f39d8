// Package brokerpool caches live broker.Connection instances keyed by
// (host, port), per spec.md §4.4. The pool never resolves node ids: the
// Cluster owns the node id → host/port mapping and calls Connect with an
// address it has already resolved.
package brokerpool

import (
	"crypto/tls"
	"sync"
	"time"

	"github.com/streamworks-oss/clog/broker"
)

// Pool is a lazy, unbounded cache of connections keyed by "host:port". It
// tolerates a cached connection being closed underneath it: Connect
// reconnects lazily on next use rather than handing back a dead
// connection, per spec.md §6's shared-resource note.
type Pool struct {
	ClientId  string
	TLSConfig *tls.Config
	// DialTimeout bounds the TCP (or TLS) handshake.
	DialTimeout time.Duration
	// SocketTimeout bounds the read/write deadline around each round
	// trip on connections this pool dials, per spec.md §6's
	// socket_timeout option.
	SocketTimeout time.Duration
	// ConnectionTTL, if non-zero, forces a cached connection older than
	// this to be closed and redialed on its next use rather than reused
	// indefinitely.
	ConnectionTTL time.Duration

	mu    sync.Mutex
	conns map[string]*broker.Connection
}

// Connect returns a live connection to addr, reusing a cached one if it is
// still open, not past ConnectionTTL, or opening (and caching) a new one
// otherwise. useTLS selects p.TLSConfig for the dial; callers that mix TLS
// and plain seeds pass it per address.
func (p *Pool) Connect(addr string, useTLS bool) (*broker.Connection, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conns == nil {
		p.conns = make(map[string]*broker.Connection)
	}
	if c, ok := p.conns[addr]; ok {
		if c.Closed() {
			delete(p.conns, addr)
		} else if p.ConnectionTTL > 0 && time.Since(c.DialedAt()) >= p.ConnectionTTL {
			c.Close()
			delete(p.conns, addr)
		} else {
			return c, nil
		}
	}
	dialTimeout := p.DialTimeout
	if dialTimeout == 0 {
		dialTimeout = 10 * time.Second
	}
	var tlsConfig *tls.Config
	if useTLS {
		tlsConfig = p.TLSConfig
		if tlsConfig == nil {
			tlsConfig = &tls.Config{}
		}
	}
	c, err := broker.Dial(addr, tlsConfig, dialTimeout, p.SocketTimeout)
	if err != nil {
		return nil, err
	}
	c.ClientId = p.ClientId
	p.conns[addr] = c
	return c, nil
}

// CloseAll disconnects every cached connection.
func (p *Pool) CloseAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for addr, c := range p.conns {
		c.Close()
		delete(p.conns, addr)
	}
}
