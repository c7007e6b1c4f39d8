package cluster

import (
	"time"

	"github.com/streamworks-oss/clog"
	"github.com/streamworks-oss/clog/brokerpool"
	"github.com/streamworks-oss/clog/seedaddr"
)

// Config holds everything New needs, built up via NewConfig and Option
// functions so callers don't have to construct a brokerpool.Pool by hand.
type Config struct {
	Seeds       []seedaddr.Addr
	ClientId    string
	DialTimeout time.Duration
	// SocketTimeout bounds the read/write deadline around each request
	// round trip, per spec.md §6's socket_timeout option — distinct from
	// DialTimeout, which only bounds the initial handshake.
	SocketTimeout time.Duration
	// ConnectionTTL, if non-zero, forces pooled connections to be
	// redialed once they exceed this age.
	ConnectionTTL time.Duration
	Logger        clog.Logger
	Instr         clog.Instrumenter
}

// Option configures a Config built by NewConfig.
type Option func(*Config)

// NewConfig builds a Config with spec.md §6's defaults, then applies opts
// in order.
func NewConfig(seeds []seedaddr.Addr, opts ...Option) Config {
	cfg := Config{
		Seeds:         seeds,
		ClientId:      "clog",
		DialTimeout:   clog.DialTimeout,
		SocketTimeout: clog.DialTimeout,
		ConnectionTTL: clog.ConnectionTTL,
		Logger:        clog.NopLogger,
		Instr:         clog.NopInstrumenter,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithClientId overrides the client id sent with every request.
func WithClientId(id string) Option {
	return func(c *Config) { c.ClientId = id }
}

// WithDialTimeout bounds how long establishing a broker connection may
// take.
func WithDialTimeout(d time.Duration) Option {
	return func(c *Config) { c.DialTimeout = d }
}

// WithSocketTimeout bounds how long a single request round trip may take
// once the connection is established. Exceeding it surfaces as
// errcode.ErrConnectionError, the same as any other socket failure.
func WithSocketTimeout(d time.Duration) Option {
	return func(c *Config) { c.SocketTimeout = d }
}

// WithConnectionTTL forces pooled connections to be redialed once they
// exceed this age. Zero (the default) disables the check.
func WithConnectionTTL(d time.Duration) Option {
	return func(c *Config) { c.ConnectionTTL = d }
}

// WithLogger injects a Logger other than the no-op default.
func WithLogger(l clog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// WithInstrumenter injects an Instrumenter other than the no-op default.
func WithInstrumenter(i clog.Instrumenter) Option {
	return func(c *Config) { c.Instr = i }
}

// NewFromConfig builds a Cluster and its BrokerPool from cfg.
func NewFromConfig(cfg Config) *Cluster {
	pool := &brokerpool.Pool{
		ClientId:      cfg.ClientId,
		DialTimeout:   cfg.DialTimeout,
		SocketTimeout: cfg.SocketTimeout,
		ConnectionTTL: cfg.ConnectionTTL,
	}
	c := New(cfg.Seeds, pool, cfg.ClientId)
	c.Logger = cfg.Logger
	c.Instr = cfg.Instr
	return c
}
