// Package partitioner maps a record to a partition index deterministically,
// per spec.md §4.6: an explicit partition always wins, otherwise the
// partition key or key is hashed, otherwise a partition is chosen at
// random and stuck to for that topic in this Partitioner (until
// ResetSticky) so that unkeyed records still batch densely per partition.
package partitioner

import (
	"hash/fnv"
	"math/rand"
	"sync"
	"time"

	"github.com/streamworks-oss/clog/record"
)

// Hasher computes a stable, non-negative 32-bit hash of key bytes. The
// default is FNV-1a, which is NOT broker-compatible; callers who need
// wire-compatible partitioning with a specific broker's hash (e.g.
// murmur2) must supply their own Hasher.
type Hasher func([]byte) uint32

func fnv1a(b []byte) uint32 {
	h := fnv.New32a()
	h.Write(b)
	return h.Sum32()
}

// Partitioner implements partition_for per spec.md §4.6. The zero value is
// usable and defaults to FNV-1a hashing.
type Partitioner struct {
	Hash Hasher

	mu     sync.Mutex
	sticky map[string]int32
	rng    *rand.Rand
}

func (p *Partitioner) hash() Hasher {
	if p.Hash != nil {
		return p.Hash
	}
	return fnv1a
}

// PartitionFor returns the partition index r should be routed to, given
// partitionCount partitions are available for r's topic.
func (p *Partitioner) PartitionFor(partitionCount int32, r *record.Record) int32 {
	if r.HasPartition() {
		return r.Partition()
	}
	if partitionCount <= 0 {
		return 0
	}
	if k := r.PartitionKey(); len(k) > 0 {
		return int32(p.hash()(k) % uint32(partitionCount))
	}
	if k := r.Key(); len(k) > 0 {
		return int32(p.hash()(k) % uint32(partitionCount))
	}
	return p.stickyRandom(r.Topic(), partitionCount)
}

// stickyRandom returns a uniformly chosen partition for topic, caching the
// choice so that subsequent unkeyed records for the same topic land in the
// same partition until ResetSticky is called or partitionCount no longer
// exceeds the cached choice, in which case a new one is drawn. This is the "may be
// cached per-topic to produce sticky batches" allowance in spec.md §4.6.
func (p *Partitioner) stickyRandom(topic string, partitionCount int32) int32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sticky == nil {
		p.sticky = make(map[string]int32)
	}
	if part, ok := p.sticky[topic]; ok && part < partitionCount {
		return part
	}
	if p.rng == nil {
		p.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	part := int32(p.rng.Intn(int(partitionCount)))
	p.sticky[topic] = part
	return part
}

// ResetSticky clears any cached per-topic random assignment, so a future
// unkeyed record is re-randomized. Callers invoke this after a topology
// change grows or shrinks a topic's partition count materially.
func (p *Partitioner) ResetSticky() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sticky = nil
}
