// Package producer implements the public producer facade: enqueue records,
// then deliver them through a bounded-retry loop that assigns partitions,
// fans out to leaders, and reports a terminal DELIVERY_FAILED carrying
// whatever is left undelivered, per spec.md §4.9.
package producer

import (
	"time"

	"github.com/streamworks-oss/clog"
	"github.com/streamworks-oss/clog/buffer"
	"github.com/streamworks-oss/clog/cluster"
	"github.com/streamworks-oss/clog/compression"
	"github.com/streamworks-oss/clog/errcode"
	"github.com/streamworks-oss/clog/partitioner"
	"github.com/streamworks-oss/clog/produce"
	"github.com/streamworks-oss/clog/record"
)

// Config holds the producer options spec.md §6 names.
type Config struct {
	RequiredAcks         int16 // 0, 1, or -1 ("all")
	AckTimeoutMs         int32
	MaxRetries           int
	RetryBackoff         time.Duration
	MaxBufferSize        int
	MaxBufferByteSize    int
	CompressionCodec     compression.Codec
	CompressionThreshold int
}

// Producer is the public contract spec.md §4.9 describes: produce to
// enqueue, deliver_messages to run the delivery loop.
type Producer struct {
	Cluster     *cluster.Cluster
	Partitioner *partitioner.Partitioner
	Config      Config
	Logger      clog.Logger
	Instr       clog.Instrumenter

	pending *buffer.PendingQueue
	buf     *buffer.MessageBuffer
}

// New constructs a Producer over an already-configured Cluster.
func New(c *cluster.Cluster, cfg Config) *Producer {
	return &Producer{
		Cluster:     c,
		Partitioner: &partitioner.Partitioner{},
		Config:      cfg,
		Logger:      clog.NopLogger,
		Instr:       clog.NopInstrumenter,
		pending:     buffer.NewPendingQueue(),
		buf:         buffer.NewMessageBuffer(),
	}
}

// RecordOption customizes a record before it is enqueued.
type RecordOption func(*record.Record) *record.Record

// WithPartition pins the record to an explicit partition, bypassing the
// Partitioner entirely.
func WithPartition(p int32) RecordOption {
	return func(r *record.Record) *record.Record { return r.WithPartition(p) }
}

// WithPartitionKey steers Partitioner assignment without being transmitted
// on the wire.
func WithPartitionKey(k []byte) RecordOption {
	return func(r *record.Record) *record.Record { return r.WithPartitionKey(k) }
}

// WithCreateTime stamps the record with an explicit creation time.
func WithCreateTime(t time.Time) RecordOption {
	return func(r *record.Record) *record.Record { return r.WithCreateTime(t) }
}

// Produce enqueues one record for topic, failing with errcode.ErrBufferOverflow
// if the buffer already holds MaxBufferSize records or more, or if admitting
// the record would put the byte total at or over MaxBufferByteSize. On
// overflow the topic is still registered with the Cluster as a target
// topic, per spec.md §4.9.
func (p *Producer) Produce(topic string, value, key []byte, opts ...RecordOption) error {
	r := record.New(topic, value, key)
	for _, opt := range opts {
		r = opt(r)
	}
	p.Cluster.AddTargetTopics(topic)

	size := p.pending.Size() + p.buf.Size()
	byteSize := p.pending.ByteSize() + p.buf.ByteSize()
	if size >= p.Config.MaxBufferSize || byteSize+r.ByteSize() >= p.Config.MaxBufferByteSize {
		return errcode.ErrBufferOverflow
	}
	p.pending.Push(r)
	return nil
}

// BufferSize is the number of records across the pending queue and the
// message buffer.
func (p *Producer) BufferSize() int { return p.pending.Size() + p.buf.Size() }

// BufferByteSize is the byte total across the pending queue and the
// message buffer.
func (p *Producer) BufferByteSize() int { return p.pending.ByteSize() + p.buf.ByteSize() }

// ClearBuffer drops every enqueued and buffered record.
func (p *Producer) ClearBuffer() {
	p.pending = buffer.NewPendingQueue()
	p.buf = buffer.NewMessageBuffer()
}

// Shutdown closes the underlying cluster's broker connections.
func (p *Producer) Shutdown() {
	p.Cluster.Disconnect()
}

// DeliverMessages runs the delivery loop of spec.md §4.9: refresh
// metadata, assign partitions, execute one produce attempt, and retry up
// to Config.MaxRetries times with Config.RetryBackoff between attempts.
// It is a no-op if the buffer is empty, and otherwise returns only
// *errcode.DeliveryFailed.
func (p *Producer) DeliverMessages() error {
	if p.BufferSize() == 0 {
		return nil
	}

	attempt := 0
	for {
		attempt++
		if err := p.Cluster.RefreshMetadataIfNecessary(); err != nil {
			return p.deliveryFailed("failed to refresh metadata", err)
		}

		p.assignPartitions()

		op := &produce.Operation{
			Cluster:      p.Cluster,
			Compressor:   &compression.Compressor{Codec: p.Config.CompressionCodec, Threshold: p.Config.CompressionThreshold},
			RequiredAcks: p.Config.RequiredAcks,
			AckTimeoutMs: p.Config.AckTimeoutMs,
			Logger:       p.Logger,
			Instr:        p.Instr,
		}
		if err := op.Execute(p.buf); err != nil {
			return p.deliveryFailed("failed to send", err)
		}

		if p.Config.RequiredAcks == 0 {
			p.buf = buffer.NewMessageBuffer()
		}
		if p.BufferSize() == 0 {
			break
		}
		if attempt <= p.Config.MaxRetries {
			time.Sleep(p.Config.RetryBackoff)
			continue
		}
		break
	}

	if p.pending.Size() > 0 {
		p.Cluster.MarkAsStale()
		return p.deliveryFailed("failed to assign partitions", nil)
	}
	if p.buf.Size() > 0 {
		return p.deliveryFailed("failed to send", nil)
	}
	return nil
}

func (p *Producer) deliveryFailed(cause string, err error) *errcode.DeliveryFailed {
	undelivered := p.pending.Records()
	undelivered = append(undelivered, p.buf.Drain()...)
	p.pending.Replace(nil)
	out := make([]interface{}, len(undelivered))
	for i, r := range undelivered {
		out[i] = r
	}
	return &errcode.DeliveryFailed{Cause: cause, Err: err, Undelivered: out}
}

// assignPartitions drains the pending queue into the message buffer,
// applying the ordering rule of spec.md §4.9 step 3: once assignment fails
// for a topic in this pass, every subsequent record for that topic is
// deferred too, preserving per-topic order across retries.
func (p *Producer) assignPartitions() {
	records := p.pending.Records()
	failedTopics := make(map[string]bool)
	var failed []*record.Record

	for _, r := range records {
		topic := r.Topic()
		if failedTopics[topic] {
			failed = append(failed, r)
			continue
		}
		var partitionCount int32
		if !r.HasPartition() {
			parts, err := p.Cluster.PartitionsFor(topic)
			if err != nil {
				failedTopics[topic] = true
				failed = append(failed, r)
				continue
			}
			partitionCount = int32(len(parts))
		}
		assigned := r
		if !r.HasPartition() {
			assigned = r.WithPartition(p.Partitioner.PartitionFor(partitionCount, r))
		}
		p.buf.Append(topic, assigned.Partition(), assigned)
	}

	p.pending.Replace(failed)
	if len(failed) > 0 {
		p.Cluster.MarkAsStale()
	}
}
