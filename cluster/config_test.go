package cluster

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamworks-oss/clog"
	"github.com/streamworks-oss/clog/seedaddr"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig(nil)
	assert.Equal(t, "clog", cfg.ClientId)
	assert.Equal(t, clog.DialTimeout, cfg.DialTimeout)
}

func TestNewConfigAppliesOptions(t *testing.T) {
	cfg := NewConfig(nil,
		WithClientId("test-client"),
		WithDialTimeout(5*time.Second),
	)
	assert.Equal(t, "test-client", cfg.ClientId)
	assert.Equal(t, 5*time.Second, cfg.DialTimeout)
}

func TestNewFromConfigWiresSeedsAndClientId(t *testing.T) {
	seeds, err := seedaddr.ParseAll([]string{"kafka://localhost:9092"})
	require.NoError(t, err)

	c := NewFromConfig(NewConfig(seeds, WithClientId("test-client")))
	assert.Equal(t, "test-client", c.ClientId)
	assert.Len(t, c.Seeds, 1)
	assert.NotNil(t, c.Pool, "expected NewFromConfig to wire a BrokerPool")
}
