// Package Produce implements the produce request/response pair, version
// 0: acks | timeout | topic_data[](topic, data[](partition, record_set)),
// with record_set carrying an encoded batch.MessageSet (possibly a
// compressed wrapper record), per spec.md §4.2 and §4.8.
package Produce

import (
	"github.com/streamworks-oss/clog/api"
)

// NewRequest builds one produce request covering every (topic, partition)
// entry in topicData, destined for a single broker (the leader of all of
// them), per spec.md §4.8 step 2.
func NewRequest(acks int16, timeoutMs int32, topicData []TopicData) *api.Request {
	return &api.Request{
		ApiKey:     api.Produce,
		ApiVersion: 0,
		Body: Request{
			Acks:      acks,
			TimeoutMs: timeoutMs,
			TopicData: topicData,
		},
	}
}

type Request struct {
	Acks      int16 // 0: no response, 1: leader only, -1: all ISRs
	TimeoutMs int32
	TopicData []TopicData
}

type TopicData struct {
	Topic string
	Data  []Data
}

type Data struct {
	Partition int32
	RecordSet []byte
}
