// Package record defines Record, the user-visible unit of production:
// immutable once constructed, carrying everything the Partitioner and
// MessageBuffer need before it is assigned to a partition and marshaled
// into a wire-format message set.
package record

import "time"

// Record is the user-visible unit passed to Producer.Produce. PartitionKey
// is never transmitted: it exists only to steer Partitioner assignment.
// Partition is -1 until assigned (either by the caller or by the
// Partitioner), per spec §3.
type Record struct {
	value        []byte
	key          []byte
	topic        string
	partition    int32
	partitionKey []byte
	createTime   time.Time
	hasCreate    bool
}

// Unassigned is the Partition value of a Record that has not yet been
// routed to a partition.
const Unassigned int32 = -1

// New constructs a Record for topic. Partition is Unassigned until the
// caller sets one explicitly with WithPartition, or the Partitioner
// assigns one during Producer.DeliverMessages.
func New(topic string, value, key []byte) *Record {
	return &Record{
		topic:     topic,
		value:     value,
		key:       key,
		partition: Unassigned,
	}
}

// WithPartition returns a copy of r pinned to an explicit partition. A
// Record so pinned is never re-routed by the Partitioner.
func (r *Record) WithPartition(p int32) *Record {
	c := *r
	c.partition = p
	return &c
}

// WithPartitionKey returns a copy of r carrying a partition key used only
// for Partitioner assignment; it is never transmitted on the wire.
func (r *Record) WithPartitionKey(k []byte) *Record {
	c := *r
	c.partitionKey = k
	return &c
}

// WithCreateTime returns a copy of r stamped with an explicit creation
// time. Records without one encode using the legacy (no-timestamp) wire
// format per spec §4.2.
func (r *Record) WithCreateTime(t time.Time) *Record {
	c := *r
	c.createTime = t
	c.hasCreate = true
	return &c
}

func (r *Record) Topic() string        { return r.topic }
func (r *Record) Value() []byte        { return r.value }
func (r *Record) Key() []byte          { return r.key }
func (r *Record) PartitionKey() []byte { return r.partitionKey }
func (r *Record) Partition() int32     { return r.partition }

// HasPartition reports whether the record has been routed to a partition
// already (explicitly, or by a prior Partitioner pass).
func (r *Record) HasPartition() bool { return r.partition != Unassigned }

// CreateTime returns the record's creation time and whether one was set.
func (r *Record) CreateTime() (time.Time, bool) { return r.createTime, r.hasCreate }

// ByteSize is len(key) + len(value), the unit MessageBuffer and PendingQueue
// account buffer_byte_size in, per spec §3.
func (r *Record) ByteSize() int {
	return len(r.key) + len(r.value)
}
