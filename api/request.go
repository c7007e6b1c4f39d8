package api

import (
	"bytes"
	"encoding/binary"
	"reflect"

	"github.com/streamworks-oss/clog/wire"
)

// Request is a framed protocol request: size | api_key | api_version |
// correlation_id | nullable_string client_id | body, per spec.md §4.1.
// Field order matches the wire layout exactly, since Bytes walks it by
// reflection.
type Request struct {
	ApiKey        int16
	ApiVersion    int16
	CorrelationId int32
	ClientId      string
	Body          interface{}
}

// Bytes encodes the framed request ready to write to a broker connection.
// The size field covers everything after itself.
func (r *Request) Bytes() []byte {
	tmp := new(bytes.Buffer)
	wire.StructWrite(tmp, reflect.ValueOf(r))
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.BigEndian, int32(tmp.Len()))
	tmp.WriteTo(buf)
	return buf.Bytes()
}
