package Produce

// Response is the decoded produce response, version 0: no throttle time,
// no log append/start time fields (those arrived in later versions the
// old message-set era this client targets does not need).
type Response struct {
	TopicResponses []TopicResponse
}

type TopicResponse struct {
	Topic              string
	PartitionResponses []PartitionResponse
}

type PartitionResponse struct {
	Partition  int32
	ErrorCode  int16
	BaseOffset int64
}
