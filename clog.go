/*
Package clog is a client library for a distributed, partitioned, replicated
commit log. It speaks the broker's binary wire protocol directly over TCP and
maintains a model of the cluster's topology in order to route each request
to the correct broker.

Project Scope

The library focuses on the three subsystems that carry the hard engineering:
the cluster topology manager (package cluster), the batching produce
pipeline (packages buffer, produce, producer), and the wire codec and
record-set framing (packages wire, record, batch). Broker-side behavior,
transactional semantics, schema registries, and consumer group rebalance
bookkeeping are out of scope; see DESIGN.md for what was deliberately left
out and why.

Get Started

Construct a cluster.Cluster from a set of seed broker URIs, wrap it in a
producer.Producer, and call Produce followed by DeliverMessages.

Design Decisions

1. Synchronous, single connection per broker. Every BrokerConnection owns
one TCP socket and dispatches on correlation id; retries and fan-out across
brokers live one layer up, in ProduceOperation and Producer.

2. Topology snapshots are replaced atomically, never mutated in place, so a
caller either sees a complete old snapshot or a complete new one.

3. Per-partition failures are data, not control flow: a Produce response's
per-partition error codes are inspected and recorded against the buffer;
only cluster-wide failures (seed exhaustion, a failed delivery loop) become
Go errors at the Producer boundary.
*/
package clog

import (
	"time"

	"github.com/sirupsen/logrus"
)

// DialTimeout bounds how long a BrokerConnection will wait to establish a
// new TCP (or TLS) session.
var DialTimeout = 10 * time.Second

// ConnectionTTL bounds how long a BrokerConnection will keep a socket open
// before transparently reconnecting on the next call. Zero disables the
// check.
var ConnectionTTL time.Duration

// Logger is the leveled text-event collaborator named in spec §6. Anything
// satisfying this narrow interface can be injected; *logrus.Entry does, so
// callers wire in their own logrus configuration directly. Replacing it
// with NopLogger must not change observable behavior.
type Logger interface {
	Debugf(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...interface{}) {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}

// NopLogger discards every event. It is the default Logger for Cluster and
// Producer when none is supplied.
var NopLogger Logger = nopLogger{}

// StandardLogger adapts logrus's package-level logger to Logger.
func StandardLogger() Logger {
	return logrus.StandardLogger()
}

// Instrumenter is the named-event, key/value side-channel collaborator
// named in spec §6. Replacing it with NopInstrumenter must not change
// observable behavior.
type Instrumenter interface {
	Emit(event string, fields map[string]interface{})
}

type nopInstrumenter struct{}

func (nopInstrumenter) Emit(string, map[string]interface{}) {}

// NopInstrumenter discards every event. It is the default Instrumenter for
// Cluster and Producer when none is supplied.
var NopInstrumenter Instrumenter = nopInstrumenter{}
