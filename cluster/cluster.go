// Package cluster implements the topology manager: seed-broker bootstrap,
// a cached metadata snapshot, leader lookup, and staleness tracking, per
// spec.md §4.5.
package cluster

import (
	"fmt"
	"sync"

	"github.com/streamworks-oss/clog"
	"github.com/streamworks-oss/clog/api/Metadata"
	"github.com/streamworks-oss/clog/broker"
	"github.com/streamworks-oss/clog/brokerpool"
	"github.com/streamworks-oss/clog/errcode"
	"github.com/streamworks-oss/clog/seedaddr"
)

// BrokerInfo describes one broker in the current topology snapshot.
type BrokerInfo struct {
	NodeId int32
	Host   string
	Port   int32
}

func (b BrokerInfo) addr() string {
	return fmt.Sprintf("%s:%d", b.Host, b.Port)
}

// PartitionInfo describes one partition's replication state in the
// current topology snapshot.
type PartitionInfo struct {
	Leader    int32
	Replicas  []int32
	Isr       []int32
	ErrorCode errcode.Code
}

// snapshot is an immutable topology view, rebuilt atomically from a single
// metadata response and never mutated entry-by-entry, per the Glossary.
type snapshot struct {
	brokers      map[int32]BrokerInfo
	partitions   map[string]map[int32]PartitionInfo
	topicErrors  map[string]errcode.Code
	controllerId int32
}

func emptySnapshot() *snapshot {
	return &snapshot{
		brokers:     make(map[int32]BrokerInfo),
		partitions:  make(map[string]map[int32]PartitionInfo),
		topicErrors: make(map[string]errcode.Code),
	}
}

// Cluster discovers brokers from seed addresses, caches per-topic
// partition metadata, tracks partition leadership, refreshes on staleness
// or error, and hands out connected broker endpoints, per spec.md §1 and
// §4.5.
type Cluster struct {
	Seeds    []seedaddr.Addr
	Pool     *brokerpool.Pool
	ClientId string
	Logger   clog.Logger
	Instr    clog.Instrumenter

	mu           sync.Mutex
	snap         *snapshot
	targetTopics map[string]bool
	dirty        bool
}

// New constructs a Cluster from already-parsed seed addresses. Use
// seedaddr.ParseAll to build seeds from configuration URIs.
func New(seeds []seedaddr.Addr, pool *brokerpool.Pool, clientId string) *Cluster {
	return &Cluster{
		Seeds:        seeds,
		Pool:         pool,
		ClientId:     clientId,
		Logger:       clog.NopLogger,
		Instr:        clog.NopInstrumenter,
		snap:         emptySnapshot(),
		targetTopics: make(map[string]bool),
		dirty:        true,
	}
}

// AddTargetTopics unions topics into the set of topics the caller intends
// to use, per spec.md §4.5.
func (c *Cluster) AddTargetTopics(topics ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range topics {
		c.targetTopics[t] = true
	}
}

// MarkAsStale flags the snapshot as needing a refresh on next use.
func (c *Cluster) MarkAsStale() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dirty = true
}

func (c *Cluster) needsRefresh() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dirty {
		return true
	}
	for t := range c.targetTopics {
		if _, ok := c.snap.partitions[t]; !ok {
			return true
		}
	}
	return false
}

// RefreshMetadataIfNecessary fetches fresh metadata when the snapshot is
// dirty or missing a target topic, per spec.md §4.5.
func (c *Cluster) RefreshMetadataIfNecessary() error {
	if !c.needsRefresh() {
		return nil
	}
	return c.refresh()
}

// TargetTopics returns the set of topics the caller has registered via
// AddTargetTopics, in no particular order.
func (c *Cluster) TargetTopics() []string {
	return c.topicsSnapshot()
}

// topicsSnapshot copies the target-topic set for use outside the lock.
func (c *Cluster) topicsSnapshot() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.targetTopics))
	for t := range c.targetTopics {
		out = append(out, t)
	}
	return out
}

// refresh implements the metadata fetch algorithm of spec.md §4.5: iterate
// seed brokers in order, first successful response wins and atomically
// replaces the snapshot.
func (c *Cluster) refresh() error {
	topics := c.topicsSnapshot()
	var lastErr error
	for _, seed := range c.Seeds {
		conn, err := c.Pool.Connect(seed.HostPort(), seed.UseTLS)
		if err != nil {
			c.Logger.Warnf("seed broker %s unreachable: %v", seed.HostPort(), err)
			lastErr = err
			continue
		}
		resp, err := conn.Metadata(topics)
		if err != nil {
			c.Logger.Warnf("metadata request to %s failed: %v", seed.HostPort(), err)
			lastErr = err
			continue
		}
		c.applySnapshot(resp)
		c.Instr.Emit("metadata_refreshed", map[string]interface{}{"seed": seed.HostPort(), "topics": len(topics)})
		return nil
	}
	return fmt.Errorf("%w: every seed broker failed: %v", errcode.ErrConnectionError, lastErr)
}

func (c *Cluster) applySnapshot(resp *Metadata.Response) {
	s := emptySnapshot()
	s.controllerId = resp.ControllerId
	for _, b := range resp.Brokers {
		s.brokers[b.NodeId] = BrokerInfo{NodeId: b.NodeId, Host: b.Host, Port: b.Port}
	}
	for _, t := range resp.TopicMetadata {
		s.topicErrors[t.Topic] = errcode.FromInt16(t.ErrorCode)
		parts := make(map[int32]PartitionInfo, len(t.PartitionMetadata))
		for _, p := range t.PartitionMetadata {
			parts[p.Partition] = PartitionInfo{
				Leader:    p.Leader,
				Replicas:  p.Replicas,
				Isr:       p.Isr,
				ErrorCode: errcode.FromInt16(p.ErrorCode),
			}
		}
		s.partitions[t.Topic] = parts
	}
	c.mu.Lock()
	c.snap = s
	c.dirty = false
	c.mu.Unlock()
}

// GetLeader resolves a connected BrokerConnection for the leader of
// (topic, partition). On a cache miss it refreshes metadata once and
// retries, per spec.md §4.5.
func (c *Cluster) GetLeader(topic string, partition int32) (*broker.Connection, error) {
	conn, err := c.resolveLeader(topic, partition)
	if err == nil {
		return conn, nil
	}
	if !errIsCacheMiss(err) {
		return nil, err
	}
	if refreshErr := c.refresh(); refreshErr != nil {
		return nil, refreshErr
	}
	return c.resolveLeader(topic, partition)
}

var errCacheMiss = fmt.Errorf("leader not cached")

func errIsCacheMiss(err error) bool { return err == errCacheMiss }

func (c *Cluster) resolveLeader(topic string, partition int32) (*broker.Connection, error) {
	c.mu.Lock()
	if code, ok := c.snap.topicErrors[topic]; ok && code != errcode.None {
		c.mu.Unlock()
		return nil, errcode.New(int16(code))
	}
	parts, ok := c.snap.partitions[topic]
	if !ok {
		c.mu.Unlock()
		return nil, errCacheMiss
	}
	info, ok := parts[partition]
	if !ok {
		c.mu.Unlock()
		return nil, errCacheMiss
	}
	// spec.md §4.5: per-partition error codes are inspected directly,
	// not inferred from the leader id. LEADER_NOT_AVAILABLE (5) is the
	// common case of a missing leader, but any other per-partition code
	// (NOT_LEADER_FOR_PARTITION, REPLICA_NOT_AVAILABLE, ...) must also
	// surface rather than be papered over by a non-negative leader id
	// that is actually stale.
	if info.ErrorCode != errcode.None {
		c.mu.Unlock()
		return nil, errcode.New(int16(info.ErrorCode))
	}
	if info.Leader < 0 {
		c.mu.Unlock()
		return nil, errcode.New(int16(errcode.LeaderNotAvailable))
	}
	b, ok := c.snap.brokers[info.Leader]
	c.mu.Unlock()
	if !ok {
		return nil, errCacheMiss
	}
	return c.Pool.Connect(b.addr(), c.seedUsesTLS())
}

// seedUsesTLS reports whether this cluster's seeds were configured for
// TLS, applied uniformly to broker-discovered addresses as well: a
// cluster's brokers share one security posture in practice.
func (c *Cluster) seedUsesTLS() bool {
	for _, s := range c.Seeds {
		if s.UseTLS {
			return true
		}
	}
	return false
}

// PartitionsFor returns the known partition ids for topic.
func (c *Cluster) PartitionsFor(topic string) ([]int32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if code, ok := c.snap.topicErrors[topic]; ok && code != errcode.None {
		return nil, errcode.New(int16(code))
	}
	parts, ok := c.snap.partitions[topic]
	if !ok {
		return nil, errCacheMiss
	}
	out := make([]int32, 0, len(parts))
	for p := range parts {
		out = append(out, p)
	}
	return out, nil
}

// Disconnect closes every pooled broker connection.
func (c *Cluster) Disconnect() {
	c.Pool.CloseAll()
}
