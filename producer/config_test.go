package producer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/streamworks-oss/clog/compression"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()
	assert.EqualValues(t, 1, cfg.RequiredAcks)
	assert.Equal(t, 10000, cfg.MaxBufferSize)
	assert.Equal(t, compression.None, cfg.CompressionCodec)
}

func TestNewConfigAppliesOptionsInOrder(t *testing.T) {
	cfg := NewConfig(
		WithRequiredAcks(-1),
		WithAckTimeout(5000),
		WithMaxRetries(7),
		WithRetryBackoff(2*time.Second),
		WithMaxBufferSize(1),
		WithMaxBufferByteSize(2),
		WithCompression(compression.Snappy, 10),
	)
	assert.EqualValues(t, -1, cfg.RequiredAcks)
	assert.EqualValues(t, 5000, cfg.AckTimeoutMs)
	assert.Equal(t, 7, cfg.MaxRetries)
	assert.Equal(t, 2*time.Second, cfg.RetryBackoff)
	assert.Equal(t, 1, cfg.MaxBufferSize)
	assert.Equal(t, 2, cfg.MaxBufferByteSize)
	assert.Equal(t, compression.Snappy, cfg.CompressionCodec)
	assert.Equal(t, 10, cfg.CompressionThreshold)
}
