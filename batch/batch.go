// Package batch implements the message-set ("record batch") wire codec:
// encoding and decoding the length-prefixed sequence of records that makes
// up a produce or fetch payload, the compressed wrapper-record container,
// and the relative-offset rewriting rules a compressed batch requires on
// decode. This is the v0.9/v0.10-era message-set format (offset | size |
// crc | magic | attributes | [timestamp] | key | value), not the teacher's
// RecordBatch v2 varint format; see DESIGN.md.
package batch

import (
	"fmt"
	"hash/crc32"

	"github.com/streamworks-oss/clog/errcode"
	"github.com/streamworks-oss/clog/wire"
)

// Attribute bits. The low 3 bits of Attributes carry the compression codec
// id; 0 means no compression (an ordinary record, not a wrapper).
const (
	CodecNone   int8 = 0
	CodecGzip   int8 = 1
	CodecSnappy int8 = 2
	codecMask   int8 = 0x07
)

// Record is a single wire-format message-set entry. It is distinct from
// record.Record: this is the on-wire shape (an absolute offset, a magic
// byte, a crc), not the user-visible production unit.
type Record struct {
	Offset       int64
	Magic        int8 // 0: no timestamp, 1: timestamp present
	Attributes   int8
	Timestamp    int64
	HasTimestamp bool
	Key          []byte
	Value        []byte
}

// CompressionCodec returns the codec id carried in the low 3 bits of
// Attributes.
func (r *Record) CompressionCodec() int8 { return r.Attributes & codecMask }

// IsWrapper reports whether r is a compressed wrapper record (its Value is
// itself an encoded, compressed inner message set).
func (r *Record) IsWrapper() bool { return r.CompressionCodec() != CodecNone }

func (r *Record) body() []byte {
	w := wire.NewWriter()
	w.WriteInt8(r.Magic)
	w.WriteInt8(r.Attributes)
	if r.Magic >= 1 {
		w.WriteInt64(r.Timestamp)
	}
	w.WriteBytes(r.Key)
	w.WriteBytes(r.Value)
	return w.Bytes()
}

// Marshal encodes a single wire record: offset | message_size | crc |
// body, where body is magic|attributes|[timestamp]|key|value and
// message_size covers crc plus body.
func (r *Record) Marshal() []byte {
	body := r.body()
	crc := crc32.ChecksumIEEE(body)
	w := wire.NewWriter()
	w.WriteInt64(r.Offset)
	w.WriteInt32(int32(4 + len(body)))
	w.WriteInt32(int32(crc))
	w.Write(body)
	return w.Bytes()
}

// MessageSet is an ordered sequence of wire records sharing a
// topic/partition, per spec §3. It encodes as the concatenation of each
// record's Marshal output.
type MessageSet []*Record

// Marshal encodes every record in the set in order.
func (s MessageSet) Marshal() []byte {
	w := wire.NewWriter()
	for _, r := range s {
		w.Write(r.Marshal())
	}
	return w.Bytes()
}

const recordHeaderLen = 8 + 4 // offset + message_size

// decodeFlat reads wire records from b until exhausted, tolerating a
// truncated final record per spec §4.2. It does not interpret wrapper
// records or rewrite offsets; DecodeMessageSet layers that on top.
func decodeFlat(b []byte) (MessageSet, error) {
	region := b
	var out MessageSet
	for len(b) > 0 {
		if len(b) < recordHeaderLen {
			break // partial header: truncated tail, drop silently
		}
		r := wire.NewReader(b)
		offset, _ := r.ReadInt64()
		msgSize, err := r.ReadInt32()
		if err != nil || msgSize < 0 {
			break
		}
		if r.Len() < int(msgSize) {
			break // declared size exceeds what remains: truncated tail, drop
		}
		bodyBytes := b[recordHeaderLen : recordHeaderLen+int(msgSize)]
		body := wire.NewReader(bodyBytes)
		crc, err := body.ReadInt32()
		if err != nil {
			break
		}
		magic, err := body.ReadInt8()
		if err != nil {
			break
		}
		attrs, err := body.ReadInt8()
		if err != nil {
			break
		}
		rec := &Record{Offset: offset, Magic: magic, Attributes: attrs}
		if magic >= 1 {
			ts, err := body.ReadInt64()
			if err != nil {
				break
			}
			rec.Timestamp = ts
			rec.HasTimestamp = true
		}
		key, err := body.ReadBytes()
		if err != nil {
			break
		}
		value, err := body.ReadBytes()
		if err != nil {
			break
		}
		rec.Key = key
		rec.Value = value

		computed := crc32.ChecksumIEEE(bodyBytes[4:])
		if computed != uint32(crc) {
			return nil, fmt.Errorf("%w: record crc mismatch at offset %d", errcode.ErrCorrupt, offset)
		}

		out = append(out, rec)
		b = b[recordHeaderLen+int(msgSize):]
	}
	if len(out) == 0 && len(region) > 0 {
		return nil, errcode.ErrMessageTooLargeToRead
	}
	return out, nil
}

// Decompressor mirrors the Compressor's inverse: it decodes a wrapper
// record's compressed Value back into the inner message-set bytes.
type Decompressor interface {
	Decompress(codec int8, b []byte) ([]byte, error)
}

// DecodeMessageSet decodes a byte region into its records, expanding any
// compressed wrapper records and rewriting their inner offsets per spec
// §4.2's relative-offset rule. A truncated final record is silently
// dropped; a region with no complete record fails with
// errcode.ErrMessageTooLargeToRead.
func DecodeMessageSet(b []byte, d Decompressor) (MessageSet, error) {
	outer, err := decodeFlat(b)
	if err != nil {
		return nil, err
	}
	var out MessageSet
	for _, rec := range outer {
		if !rec.IsWrapper() {
			out = append(out, rec)
			continue
		}
		inner, err := expandWrapper(rec, d)
		if err != nil {
			return nil, err
		}
		out = append(out, inner...)
	}
	return out, nil
}

// expandWrapper decompresses a wrapper record's value into an inner
// message set and rewrites inner offsets relative to the wrapper's offset,
// per spec §4.2's three cases: dense, sparse (post-compaction), and
// legacy-absolute.
func expandWrapper(wrapperRec *Record, d Decompressor) (MessageSet, error) {
	raw, err := d.Decompress(wrapperRec.CompressionCodec(), wrapperRec.Value)
	if err != nil {
		return nil, fmt.Errorf("decompressing wrapper record at offset %d: %w", wrapperRec.Offset, err)
	}
	inner, err := decodeFlat(raw)
	if err != nil {
		return nil, fmt.Errorf("decoding inner message set: %w", err)
	}
	last := inner[len(inner)-1].Offset
	wrapperOffset := wrapperRec.Offset
	if last == wrapperOffset {
		// Legacy v0.9 format: inner offsets are already absolute. The
		// rewrite formula below is a no-op in this case anyway, but the
		// branch documents why nothing changes.
		return inner, nil
	}
	for _, r := range inner {
		r.Offset = wrapperOffset - (last - r.Offset)
	}
	return inner, nil
}
