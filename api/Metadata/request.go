// Package Metadata implements the topic-metadata request/response pair
// Cluster uses to discover brokers and partition leadership, per spec.md
// §4.5. Request/response shapes follow protocol version 1: no
// allow_auto_topic_creation flag, no per-broker rack or offline-replica
// fields, matching the old message-set era this client targets.
package Metadata

import (
	"github.com/streamworks-oss/clog/api"
)

// NewRequest builds a metadata request for topics. A nil or empty topics
// list requests metadata for every topic the broker knows about.
func NewRequest(topics []string) *api.Request {
	return &api.Request{
		ApiKey:     api.Metadata,
		ApiVersion: 1,
		Body: Request{
			Topics: topics,
		},
	}
}

type Request struct {
	Topics []string
}
