package api

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"reflect"

	"github.com/streamworks-oss/clog/errcode"
	"github.com/streamworks-oss/clog/wire"
)

// ReadResponse reads one framed protocol response from r: int32 size |
// int32 correlation_id | body, per spec.md §4.1.
func ReadResponse(r io.Reader) (*Response, error) {
	var size int32
	if err := binary.Read(r, binary.BigEndian, &size); err != nil {
		return nil, fmt.Errorf("%w: reading response size: %v", errcode.ErrConnectionError, err)
	}
	if size < 4 {
		return nil, fmt.Errorf("%w: response size %d too small to hold a correlation id", errcode.ErrCorrupt, size)
	}
	b := make([]byte, int(size))
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, fmt.Errorf("%w: reading response body: %v", errcode.ErrConnectionError, err)
	}
	return &Response{body: b}, nil
}

// Response is a framed protocol response with its correlation id still
// attached to the raw body.
type Response struct {
	body []byte
}

// CorrelationId returns the response's correlation id, for the caller to
// match against the request it sent.
func (r *Response) CorrelationId() int32 {
	return int32(binary.BigEndian.Uint32(r.body[:4]))
}

// Unmarshal decodes the response body (past the correlation id) into v.
func (r *Response) Unmarshal(v interface{}) error {
	return wire.StructRead(bytes.NewReader(r.body[4:]), reflect.ValueOf(v))
}

// Bytes returns the raw response body, past the correlation id.
func (r *Response) Bytes() []byte {
	return r.body[4:]
}
