// Package errcode defines the broker protocol error codes the core needs to
// interpret, and the Error type that carries one.
package errcode

import (
	"errors"
	"fmt"
)

// Code is a broker protocol error code, as carried in Metadata and Produce
// responses.
type Code int16

// Subset of the broker error code table the core maps, per the wire
// protocol's documented error codes. Unknown codes decode to Unknown.
const (
	None                          Code = 0
	UnknownTopicOrPartition      Code = 3
	LeaderNotAvailable           Code = 5
	NotLeaderForPartition        Code = 6
	RequestTimedOut              Code = 7
	ReplicaNotAvailable          Code = 9
	MessageSizeTooLarge          Code = 10
	InvalidTopic                 Code = 17
	RecordListTooLarge           Code = 18
	NotEnoughReplicas            Code = 19
	NotEnoughReplicasAfterAppend Code = 20
	Unknown                      Code = -1
)

var names = map[Code]string{
	None:                         "NONE",
	UnknownTopicOrPartition:      "UNKNOWN_TOPIC_OR_PARTITION",
	LeaderNotAvailable:           "LEADER_NOT_AVAILABLE",
	NotLeaderForPartition:        "NOT_LEADER_FOR_PARTITION",
	RequestTimedOut:              "REQUEST_TIMED_OUT",
	ReplicaNotAvailable:          "REPLICA_NOT_AVAILABLE",
	MessageSizeTooLarge:          "MESSAGE_SIZE_TOO_LARGE",
	InvalidTopic:                 "INVALID_TOPIC",
	RecordListTooLarge:           "RECORD_LIST_TOO_LARGE",
	NotEnoughReplicas:            "NOT_ENOUGH_REPLICAS",
	NotEnoughReplicasAfterAppend: "NOT_ENOUGH_REPLICAS_AFTER_APPEND",
	Unknown:                      "UNKNOWN_ERROR",
}

// retriable holds the codes the wire protocol documents as safe to retry
// after a metadata refresh.
var retriable = map[Code]bool{
	UnknownTopicOrPartition:      true,
	LeaderNotAvailable:           true,
	NotLeaderForPartition:        true,
	RequestTimedOut:              true,
	ReplicaNotAvailable:          true,
	NotEnoughReplicas:            true,
	NotEnoughReplicasAfterAppend: true,
}

// Name returns the error code's protocol name, or UNKNOWN_ERROR for codes
// not in the mapped subset.
func (c Code) Name() string {
	if n, ok := names[c]; ok {
		return n
	}
	return "UNKNOWN_ERROR"
}

// Retriable reports whether a client may reasonably retry after seeing this
// code, per the wire protocol's error code table.
func (c Code) Retriable() bool {
	return retriable[c]
}

// FromInt16 maps a raw wire error code to a Code, collapsing anything
// outside the mapped subset to Unknown rather than a code that would
// stringify misleadingly.
func FromInt16(v int16) Code {
	c := Code(v)
	if _, ok := names[c]; ok {
		return c
	}
	return Unknown
}

// Error wraps a protocol error Code so it satisfies the error interface.
// It is the type produced for every per-topic and per-partition protocol
// error the core surfaces (LEADER_NOT_AVAILABLE, INVALID_TOPIC, and so on).
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Code.Name(), e.Message)
	}
	return e.Code.Name()
}

// Is lets callers match with errors.Is(err, &errcode.Error{Code: ...}) by
// comparing codes rather than requiring pointer identity.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New constructs an *Error for a raw wire error code.
func New(code int16) *Error {
	return &Error{Code: FromInt16(code)}
}

// Sentinel errors for the client-side failure taxonomy that is not a
// protocol error code: framing/connection failures, and admission and
// delivery outcomes the Producer surfaces to callers.
var (
	// ErrConnectionError marks a TCP-level failure, including exhaustion of
	// every seed broker during a metadata fetch.
	ErrConnectionError = errors.New("connection error")
	// ErrCorrupt marks a frame parse failure, crc mismatch, or a
	// correlation id mismatch on a broker connection.
	ErrCorrupt = errors.New("corrupt response")
	// ErrTruncated marks a bounded read that ran short of a declared
	// length.
	ErrTruncated = errors.New("truncated")
	// ErrMessageTooLargeToRead marks a message-set byte region in which no
	// complete record fits.
	ErrMessageTooLargeToRead = errors.New("message too large to read")
	// ErrBufferOverflow marks a Producer.Produce admission refusal.
	ErrBufferOverflow = errors.New("buffer overflow")
	// ErrInvalidURI marks a seed broker URI with an unrecognized scheme.
	ErrInvalidURI = errors.New("invalid uri")
)

// DeliveryFailed is the terminal error Producer.DeliverMessages returns. It
// carries the cause and every record that was not written, in a form
// equivalent to re-enqueueing them.
type DeliveryFailed struct {
	Cause       string
	Err         error
	Undelivered []interface{}
}

func (e *DeliveryFailed) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("delivery failed: %s: %v (%d undelivered)", e.Cause, e.Err, len(e.Undelivered))
	}
	return fmt.Sprintf("delivery failed: %s (%d undelivered)", e.Cause, len(e.Undelivered))
}

func (e *DeliveryFailed) Unwrap() error { return e.Err }
