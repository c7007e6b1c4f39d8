// Package buffer implements the two in-memory holding areas a Producer
// drains records through: PendingQueue (awaiting partition assignment) and
// MessageBuffer (assigned, awaiting a successful produce), per spec.md §3.
package buffer

import "github.com/streamworks-oss/clog/record"

// MessageBuffer is a two-level topic → partition → ordered record list.
// Per-(topic, partition) insertion order is preserved end-to-end: the only
// correctness-critical ordering property of the producer.
type MessageBuffer struct {
	topics map[string]map[int32][]*record.Record
}

// NewMessageBuffer returns an empty MessageBuffer.
func NewMessageBuffer() *MessageBuffer {
	return &MessageBuffer{topics: make(map[string]map[int32][]*record.Record)}
}

// Append adds r to the end of its (topic, partition) list.
func (b *MessageBuffer) Append(topic string, partition int32, r *record.Record) {
	if b.topics[topic] == nil {
		b.topics[topic] = make(map[int32][]*record.Record)
	}
	b.topics[topic][partition] = append(b.topics[topic][partition], r)
}

// List returns the records currently buffered for (topic, partition), in
// insertion order. The returned slice must not be mutated by the caller.
func (b *MessageBuffer) List(topic string, partition int32) []*record.Record {
	return b.topics[topic][partition]
}

// Partitions returns the set of (topic, partition) pairs with at least one
// buffered record.
type TopicPartition struct {
	Topic     string
	Partition int32
}

func (b *MessageBuffer) Partitions() []TopicPartition {
	var out []TopicPartition
	for topic, parts := range b.topics {
		for p, list := range parts {
			if len(list) == 0 {
				continue
			}
			out = append(out, TopicPartition{Topic: topic, Partition: p})
		}
	}
	return out
}

// Clear drops every record buffered for (topic, partition), per a
// successful (partial) produce acknowledgement.
func (b *MessageBuffer) Clear(topic string, partition int32) {
	if parts, ok := b.topics[topic]; ok {
		delete(parts, partition)
	}
}

// Size is the total number of buffered records across every partition.
func (b *MessageBuffer) Size() int {
	n := 0
	for _, parts := range b.topics {
		for _, list := range parts {
			n += len(list)
		}
	}
	return n
}

// ByteSize is the sum of ByteSize() across every buffered record.
func (b *MessageBuffer) ByteSize() int {
	n := 0
	for _, parts := range b.topics {
		for _, list := range parts {
			for _, r := range list {
				n += r.ByteSize()
			}
		}
	}
	return n
}

// Drain removes and returns every buffered record, clearing the buffer.
// Used to reconstruct the undelivered list for a terminal DELIVERY_FAILED.
func (b *MessageBuffer) Drain() []*record.Record {
	var out []*record.Record
	for _, parts := range b.topics {
		for _, list := range parts {
			out = append(out, list...)
		}
	}
	b.topics = make(map[string]map[int32][]*record.Record)
	return out
}

// PendingQueue is a FIFO of records awaiting partition assignment.
type PendingQueue struct {
	records []*record.Record
}

// NewPendingQueue returns an empty PendingQueue.
func NewPendingQueue() *PendingQueue {
	return &PendingQueue{}
}

// Push appends r to the end of the queue.
func (q *PendingQueue) Push(r *record.Record) {
	q.records = append(q.records, r)
}

// Records returns the queue's contents in FIFO order. The returned slice
// must not be mutated by the caller.
func (q *PendingQueue) Records() []*record.Record {
	return q.records
}

// Replace atomically substitutes the queue's contents with list, per
// spec.md §3 — used to hold the unassigned remainder after a partition-
// assignment pass.
func (q *PendingQueue) Replace(list []*record.Record) {
	q.records = list
}

// Size is the number of records in the queue.
func (q *PendingQueue) Size() int { return len(q.records) }

// ByteSize is the sum of ByteSize() across every queued record.
func (q *PendingQueue) ByteSize() int {
	n := 0
	for _, r := range q.records {
		n += r.ByteSize()
	}
	return n
}
