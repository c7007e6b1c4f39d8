package producer

import (
	"time"

	"github.com/streamworks-oss/clog/compression"
)

// Option configures a Config built by NewConfig.
type Option func(*Config)

// NewConfig builds a Config from the defaults implied by spec.md §6's
// examples and edge cases, then applies opts in order.
func NewConfig(opts ...Option) Config {
	cfg := Config{
		RequiredAcks:         1,
		AckTimeoutMs:         10000,
		MaxRetries:           3,
		RetryBackoff:         100 * time.Millisecond,
		MaxBufferSize:        10000,
		MaxBufferByteSize:    16 << 20,
		CompressionCodec:     compression.None,
		CompressionThreshold: 1,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithRequiredAcks sets how many replicas must acknowledge a produce
// request before the broker responds: 0 (fire-and-forget), 1 (leader
// only), or -1 (all in-sync replicas).
func WithRequiredAcks(acks int16) Option {
	return func(c *Config) { c.RequiredAcks = acks }
}

// WithAckTimeout sets the broker-side timeout for collecting the
// acknowledgments WithRequiredAcks requires.
func WithAckTimeout(ms int32) Option {
	return func(c *Config) { c.AckTimeoutMs = ms }
}

// WithMaxRetries bounds delivery attempts beyond the first.
func WithMaxRetries(n int) Option {
	return func(c *Config) { c.MaxRetries = n }
}

// WithRetryBackoff sets the pause between delivery attempts.
func WithRetryBackoff(d time.Duration) Option {
	return func(c *Config) { c.RetryBackoff = d }
}

// WithMaxBufferSize bounds the pending+buffered record count.
func WithMaxBufferSize(n int) Option {
	return func(c *Config) { c.MaxBufferSize = n }
}

// WithMaxBufferByteSize bounds the pending+buffered byte total.
func WithMaxBufferByteSize(n int) Option {
	return func(c *Config) { c.MaxBufferByteSize = n }
}

// WithCompression sets the codec and the minimum record count a batch
// must reach before it is compressed.
func WithCompression(codec compression.Codec, threshold int) Option {
	return func(c *Config) {
		c.CompressionCodec = codec
		c.CompressionThreshold = threshold
	}
}
