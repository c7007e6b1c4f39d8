package cluster

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamworks-oss/clog/errcode"
)

func testCluster() *Cluster {
	c := New(nil, nil, "test")
	return c
}

func withSnapshot(c *Cluster, f func(s *snapshot)) {
	c.mu.Lock()
	f(c.snap)
	c.mu.Unlock()
}

func TestLeaderNotAvailableSurfaced(t *testing.T) {
	c := testCluster()
	withSnapshot(c, func(s *snapshot) {
		s.partitions["t"] = map[int32]PartitionInfo{0: {Leader: -1}}
		s.brokers[1] = BrokerInfo{NodeId: 1, Host: "h", Port: 9092}
	})
	_, err := c.resolveLeader("t", 0)
	var e *errcode.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, errcode.LeaderNotAvailable, e.Code)
}

func TestPerPartitionErrorCodeSurfacedEvenWithNonNegativeLeader(t *testing.T) {
	c := testCluster()
	withSnapshot(c, func(s *snapshot) {
		s.partitions["t"] = map[int32]PartitionInfo{
			0: {Leader: 1, ErrorCode: errcode.NotLeaderForPartition},
		}
		s.brokers[1] = BrokerInfo{NodeId: 1, Host: "h", Port: 9092}
	})
	_, err := c.resolveLeader("t", 0)
	var e *errcode.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, errcode.NotLeaderForPartition, e.Code)
}

func TestInvalidTopicSurfaced(t *testing.T) {
	c := testCluster()
	withSnapshot(c, func(s *snapshot) {
		s.topicErrors["bad-topic"] = errcode.InvalidTopic
	})
	_, err := c.resolveLeader("bad-topic", 0)
	var e *errcode.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, errcode.InvalidTopic, e.Code)
}

func TestPartitionsForUnknownTopicIsCacheMiss(t *testing.T) {
	c := testCluster()
	_, err := c.PartitionsFor("unknown")
	assert.True(t, errIsCacheMiss(err))
}

func TestAddTargetTopicsUnions(t *testing.T) {
	c := testCluster()
	c.AddTargetTopics("a", "b")
	c.AddTargetTopics("b", "c")
	assert.ElementsMatch(t, []string{"a", "b", "c"}, c.topicsSnapshot())
}

func TestRefreshNeededWhenTargetTopicMissing(t *testing.T) {
	c := testCluster()
	c.dirty = false
	c.AddTargetTopics("t")
	assert.True(t, c.needsRefresh(), "expected refresh to be necessary when a target topic is absent from the snapshot")
}

func TestMarkAsStaleForcesRefresh(t *testing.T) {
	c := testCluster()
	c.dirty = false
	c.MarkAsStale()
	assert.True(t, c.needsRefresh(), "expected MarkAsStale to force a refresh")
}
