package compression

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamworks-oss/clog/batch"
)

func repetitiveSet(n int) batch.MessageSet {
	var s batch.MessageSet
	for i := 0; i < n; i++ {
		s = append(s, &batch.Record{
			Offset: int64(i),
			Value:  bytes.Repeat([]byte("abcdefgh"), 64),
		})
	}
	return s
}

func TestCompressBelowThresholdUnchanged(t *testing.T) {
	c := &Compressor{Codec: Snappy, Threshold: 3}
	s := repetitiveSet(2)
	out, err := c.Compress(s, -1)
	require.NoError(t, err)
	assert.Len(t, out, 2)
	assert.False(t, out[0].IsWrapper())
}

func TestCompressNoneCodecUnchanged(t *testing.T) {
	c := &Compressor{Codec: None, Threshold: 0}
	s := repetitiveSet(5)
	out, err := c.Compress(s, -1)
	require.NoError(t, err)
	assert.Len(t, out, 5)
}

func TestCompressRoundTripSnappy(t *testing.T) {
	c := &Compressor{Codec: Snappy, Threshold: 1}
	s := repetitiveSet(5)
	wrapped, err := c.Compress(s, 1000)
	require.NoError(t, err)
	require.Len(t, wrapped, 1)
	assert.True(t, wrapped[0].IsWrapper())

	encodedUncompressed := s.Marshal()
	encodedWrapped := wrapped.Marshal()
	assert.Less(t, len(encodedWrapped), len(encodedUncompressed))

	decoded, err := batch.DecodeMessageSet(encodedWrapped, Decompressor{})
	require.NoError(t, err)
	require.Len(t, decoded, 5)
	for i, r := range decoded {
		assert.Equal(t, s[i].Value, r.Value, "record %d value mismatch", i)
	}
}

func TestCompressRoundTripGzip(t *testing.T) {
	c := &Compressor{Codec: Gzip, Threshold: 1}
	s := repetitiveSet(5)
	wrapped, err := c.Compress(s, 1000)
	require.NoError(t, err)

	decoded, err := batch.DecodeMessageSet(wrapped.Marshal(), Decompressor{})
	require.NoError(t, err)
	assert.Len(t, decoded, 5)
}
