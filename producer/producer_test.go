package producer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamworks-oss/clog/cluster"
	"github.com/streamworks-oss/clog/errcode"
)

func newTestProducer(cfg Config) *Producer {
	c := cluster.New(nil, nil, "test")
	return New(c, cfg)
}

func TestProduceEnqueuesRecord(t *testing.T) {
	p := newTestProducer(Config{MaxBufferSize: 10, MaxBufferByteSize: 1000})
	require.NoError(t, p.Produce("t", []byte("v"), nil))
	assert.Equal(t, 1, p.BufferSize())
}

func TestProduceOverflowBySize(t *testing.T) {
	p := newTestProducer(Config{MaxBufferSize: 1, MaxBufferByteSize: 1000})
	require.NoError(t, p.Produce("t", []byte("v"), nil))
	err := p.Produce("t", []byte("v2"), nil)
	assert.True(t, errors.Is(err, errcode.ErrBufferOverflow))
	assert.Equal(t, 1, p.BufferSize(), "expected overflowing record to not be enqueued")
}

func TestProduceOverflowByByteSize(t *testing.T) {
	p := newTestProducer(Config{MaxBufferSize: 100, MaxBufferByteSize: 5})
	err := p.Produce("t", []byte("123456"), nil)
	assert.True(t, errors.Is(err, errcode.ErrBufferOverflow))
}

func TestProduceOverflowStillRegistersTargetTopic(t *testing.T) {
	p := newTestProducer(Config{MaxBufferSize: 0, MaxBufferByteSize: 1000})
	_ = p.Produce("overflowing-topic", []byte("v"), nil)
	assert.Contains(t, p.Cluster.TargetTopics(), "overflowing-topic")
}

func TestClearBufferDropsEverything(t *testing.T) {
	p := newTestProducer(Config{MaxBufferSize: 10, MaxBufferByteSize: 1000})
	p.Produce("t", []byte("v"), nil)
	p.ClearBuffer()
	assert.Equal(t, 0, p.BufferSize())
}

func TestDeliverMessagesNoOpWhenEmpty(t *testing.T) {
	p := newTestProducer(Config{MaxBufferSize: 10, MaxBufferByteSize: 1000})
	assert.NoError(t, p.DeliverMessages())
}

func TestDeliverMessagesFailsWhenClusterUnreachable(t *testing.T) {
	p := newTestProducer(Config{MaxBufferSize: 10, MaxBufferByteSize: 1000, MaxRetries: 0})
	p.Produce("t", []byte("v"), nil)
	err := p.DeliverMessages()
	var df *errcode.DeliveryFailed
	require.True(t, errors.As(err, &df))
	assert.Len(t, df.Undelivered, 1)
}
