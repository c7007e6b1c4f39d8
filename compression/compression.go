// Package compression wraps a batch.MessageSet in a compressed wrapper
// record once it meets a configured size threshold, and reverses the
// process on decode. Codec ids match spec §4.2's attribute-byte encoding:
// 0 none, 1 gzip, 2 snappy.
package compression

import (
	"bytes"
	"fmt"
	"io"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"

	"github.com/streamworks-oss/clog/batch"
)

// Codec identifies a compression scheme by its spec §4.2 attribute id.
type Codec int8

const (
	None   Codec = Codec(batch.CodecNone)
	Gzip   Codec = Codec(batch.CodecGzip)
	Snappy Codec = Codec(batch.CodecSnappy)
)

func (c Codec) String() string {
	switch c {
	case None:
		return "none"
	case Gzip:
		return "gzip"
	case Snappy:
		return "snappy"
	default:
		return fmt.Sprintf("codec(%d)", int8(c))
	}
}

// ParseCodec maps a configuration string to a Codec.
func ParseCodec(s string) (Codec, error) {
	switch s {
	case "", "none":
		return None, nil
	case "gzip":
		return Gzip, nil
	case "snappy":
		return Snappy, nil
	default:
		return None, fmt.Errorf("unknown compression codec %q", s)
	}
}

// Compressor wraps a MessageSet in a single outer wrapper record once it
// meets Threshold, per spec §4.7. Threshold is a record count; a
// zero-value Threshold means "compress any non-empty set" once Codec is
// not None.
type Compressor struct {
	Codec     Codec
	Threshold int
}

// Compress returns the original set unchanged if c.Codec is None or the
// set has fewer than c.Threshold records. Otherwise it returns a new
// MessageSet containing a single wrapper record whose value is the
// compressed encoding of s and whose offset is wrapperOffset (callers pass
// -1 when the offset is not yet known; the produce path passes the last
// inner record's relative offset. Wrapper offsets are rewritten by the
// broker on append, mirroring how inner offsets are relative until the
// broker assigns real ones).
func (c *Compressor) Compress(s batch.MessageSet, wrapperOffset int64) (batch.MessageSet, error) {
	if c.Codec == None || len(s) < c.Threshold {
		return s, nil
	}
	encoded := s.Marshal()
	compressed, err := compressBytes(c.Codec, encoded)
	if err != nil {
		return nil, fmt.Errorf("compressing message set with codec %s: %w", c.Codec, err)
	}
	wrapper := &batch.Record{
		Offset:     wrapperOffset,
		Magic:      s[len(s)-1].Magic,
		Attributes: int8(c.Codec),
		Value:      compressed,
	}
	if s[len(s)-1].HasTimestamp {
		wrapper.Timestamp = s[len(s)-1].Timestamp
		wrapper.HasTimestamp = true
	}
	return batch.MessageSet{wrapper}, nil
}

func compressBytes(c Codec, b []byte) ([]byte, error) {
	switch c {
	case Gzip:
		var buf bytes.Buffer
		gw := gzip.NewWriter(&buf)
		if _, err := gw.Write(b); err != nil {
			return nil, err
		}
		if err := gw.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case Snappy:
		return snappy.Encode(nil, b), nil
	default:
		return nil, fmt.Errorf("unsupported codec %s", c)
	}
}

// Decompress implements batch.Decompressor: it reverses compressBytes for
// the codec id carried in a wrapper record's attribute byte.
type Decompressor struct{}

func (Decompressor) Decompress(codec int8, b []byte) ([]byte, error) {
	switch Codec(codec) {
	case None:
		return b, nil
	case Gzip:
		gr, err := gzip.NewReader(bytes.NewReader(b))
		if err != nil {
			return nil, err
		}
		defer gr.Close()
		return io.ReadAll(gr)
	case Snappy:
		return snappy.Decode(nil, b)
	default:
		return nil, fmt.Errorf("unsupported codec %d", codec)
	}
}
