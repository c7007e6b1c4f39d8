// Package wire implements the primitive encoders and decoders for the
// broker binary protocol: big-endian fixed-width integers, length-prefixed
// byte strings and UTF-8 strings, length-prefixed arrays, and the
// reflection-based struct walker used to marshal request/response bodies.
// Bounded reads classify short reads as TRUNCATED and bad length fields as
// CORRUPT, per spec §4.1.
package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/streamworks-oss/clog/errcode"
)

var ord = binary.BigEndian

// Reader is a bounded decoder over a byte slice.
type Reader struct {
	b   []byte
	off int
}

// NewReader wraps b for bounded primitive reads.
func NewReader(b []byte) *Reader {
	return &Reader{b: b}
}

// Len returns the number of unread bytes.
func (r *Reader) Len() int { return len(r.b) - r.off }

func (r *Reader) take(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative length %d", errcode.ErrCorrupt, n)
	}
	if r.Len() < n {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", errcode.ErrTruncated, n, r.Len())
	}
	b := r.b[r.off : r.off+n]
	r.off += n
	return b, nil
}

// ReadInt8 reads a signed 8-bit big-endian integer.
func (r *Reader) ReadInt8() (int8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return int8(b[0]), nil
}

// ReadInt16 reads a signed 16-bit big-endian integer.
func (r *Reader) ReadInt16() (int16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return int16(ord.Uint16(b)), nil
}

// ReadInt32 reads a signed 32-bit big-endian integer.
func (r *Reader) ReadInt32() (int32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return int32(ord.Uint32(b)), nil
}

// ReadInt64 reads a signed 64-bit big-endian integer.
func (r *Reader) ReadInt64() (int64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return int64(ord.Uint64(b)), nil
}

// ReadBytes reads an int32-length-prefixed byte string. A length of -1
// means absent and returns (nil, nil).
func (r *Reader) ReadBytes() ([]byte, error) {
	n, err := r.ReadInt32()
	if err != nil {
		return nil, err
	}
	if n == -1 {
		return nil, nil
	}
	return r.take(int(n))
}

// ReadString reads an int16-length-prefixed UTF-8 string. A length of -1
// means absent and returns ("", nil).
func (r *Reader) ReadString() (string, error) {
	n, err := r.ReadInt16()
	if err != nil {
		return "", err
	}
	if n == -1 {
		return "", nil
	}
	b, err := r.take(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ReadArrayLen reads an int32 array count. -1 means a nil/absent array,
// reported via ok=false.
func (r *Reader) ReadArrayLen() (n int, ok bool, err error) {
	v, err := r.ReadInt32()
	if err != nil {
		return 0, false, err
	}
	if v == -1 {
		return 0, false, nil
	}
	return int(v), true, nil
}

// Writer accumulates a wire-format encoding.
type Writer struct {
	buf bytes.Buffer
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the accumulated encoding.
func (w *Writer) Bytes() []byte { return w.buf.Bytes() }

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return w.buf.Len() }

func (w *Writer) WriteInt8(v int8)   { w.buf.WriteByte(byte(v)) }
func (w *Writer) WriteInt16(v int16) { binary.Write(&w.buf, ord, v) }
func (w *Writer) WriteInt32(v int32) { binary.Write(&w.buf, ord, v) }
func (w *Writer) WriteInt64(v int64) { binary.Write(&w.buf, ord, v) }

// WriteBytes writes an int32-length-prefixed byte string. A nil slice is
// encoded as length -1.
func (w *Writer) WriteBytes(b []byte) {
	if b == nil {
		w.WriteInt32(-1)
		return
	}
	w.WriteInt32(int32(len(b)))
	w.buf.Write(b)
}

// WriteString writes an int16-length-prefixed UTF-8 string.
func (w *Writer) WriteString(s string) {
	w.WriteInt16(int16(len(s)))
	w.buf.WriteString(s)
}

// Write appends raw bytes verbatim.
func (w *Writer) Write(b []byte) { w.buf.Write(b) }

// StructWrite marshals a struct by reflection: every exported field is
// written in declaration order, recursing into nested structs, slices, and
// pointers. Fields tagged `wire:"omit"` are skipped. Used for
// request/response envelopes and the Metadata/Produce bodies; record-set
// framing itself is hand-coded in package batch.
func StructWrite(w io.Writer, val reflect.Value) error {
	switch val.Kind() {
	case reflect.Ptr, reflect.Interface:
		return StructWrite(w, val.Elem())
	case reflect.Struct:
		for i := 0; i < val.NumField(); i++ {
			f := val.Type().Field(i)
			if f.Name[0:1] == strings.ToLower(f.Name[0:1]) {
				continue
			}
			if f.Tag.Get("wire") == "omit" {
				continue
			}
			if err := StructWrite(w, val.Field(i)); err != nil {
				return err
			}
		}
		return nil
	case reflect.Slice:
		if val.IsNil() {
			return binary.Write(w, ord, int32(-1))
		}
		l := int32(val.Len())
		if err := binary.Write(w, ord, l); err != nil {
			return err
		}
		typ := val.Type().Elem()
		if typ.Kind() == reflect.Uint8 {
			_, err := w.Write(val.Bytes())
			return err
		}
		for i := 0; i < val.Len(); i++ {
			if err := StructWrite(w, val.Index(i)); err != nil {
				return err
			}
		}
		return nil
	case reflect.String:
		s := val.String()
		if err := binary.Write(w, ord, int16(len(s))); err != nil {
			return err
		}
		_, err := w.Write([]byte(s))
		return err
	case reflect.Int8:
		return binary.Write(w, ord, int8(val.Int()))
	case reflect.Int16:
		return binary.Write(w, ord, int16(val.Int()))
	case reflect.Int32:
		return binary.Write(w, ord, int32(val.Int()))
	case reflect.Int64:
		return binary.Write(w, ord, val.Int())
	case reflect.Bool:
		if val.Bool() {
			_, err := w.Write([]byte{1})
			return err
		}
		_, err := w.Write([]byte{0})
		return err
	}
	return nil
}

// StructRead is the decode counterpart of StructWrite. Short reads fail
// with errcode.ErrTruncated.
func StructRead(r io.Reader, val reflect.Value) error {
	switch val.Kind() {
	case reflect.Ptr, reflect.Interface:
		return StructRead(r, val.Elem())
	case reflect.Struct:
		for i := 0; i < val.NumField(); i++ {
			f := val.Type().Field(i)
			if f.Name[0:1] == strings.ToLower(f.Name[0:1]) {
				continue
			}
			if f.Tag.Get("wire") == "omit" {
				continue
			}
			if err := StructRead(r, val.Field(i)); err != nil {
				return err
			}
		}
		return nil
	case reflect.Slice:
		var n int32
		if err := binary.Read(r, ord, &n); err != nil {
			return fmt.Errorf("%w: array length: %v", errcode.ErrTruncated, err)
		}
		typ := val.Type().Elem()
		if typ.Kind() == reflect.Uint8 {
			if n == -1 {
				return nil
			}
			b := make([]byte, n)
			if _, err := io.ReadFull(r, b); err != nil {
				return fmt.Errorf("%w: []byte body: %v", errcode.ErrTruncated, err)
			}
			val.SetBytes(b)
			return nil
		}
		if n == -1 {
			return nil
		}
		val.Set(reflect.MakeSlice(val.Type(), 0, 0))
		for i := 0; i < int(n); i++ {
			el := reflect.New(typ).Elem()
			if err := StructRead(r, el); err != nil {
				return fmt.Errorf("array element %d: %w", i, err)
			}
			val.Set(reflect.Append(val, el))
		}
		return nil
	case reflect.String:
		var n int16
		if err := binary.Read(r, ord, &n); err != nil {
			return fmt.Errorf("%w: string length: %v", errcode.ErrTruncated, err)
		}
		if n < 0 {
			return nil
		}
		b := make([]byte, n)
		if _, err := io.ReadFull(r, b); err != nil {
			return fmt.Errorf("%w: string body: %v", errcode.ErrTruncated, err)
		}
		val.SetString(string(b))
		return nil
	case reflect.Int8:
		var i int8
		if err := binary.Read(r, ord, &i); err != nil {
			return fmt.Errorf("%w: int8: %v", errcode.ErrTruncated, err)
		}
		val.SetInt(int64(i))
		return nil
	case reflect.Int16:
		var i int16
		if err := binary.Read(r, ord, &i); err != nil {
			return fmt.Errorf("%w: int16: %v", errcode.ErrTruncated, err)
		}
		val.SetInt(int64(i))
		return nil
	case reflect.Int32:
		var i int32
		if err := binary.Read(r, ord, &i); err != nil {
			return fmt.Errorf("%w: int32: %v", errcode.ErrTruncated, err)
		}
		val.SetInt(int64(i))
		return nil
	case reflect.Int64:
		var i int64
		if err := binary.Read(r, ord, &i); err != nil {
			return fmt.Errorf("%w: int64: %v", errcode.ErrTruncated, err)
		}
		val.SetInt(i)
		return nil
	case reflect.Bool:
		b := make([]byte, 1)
		if _, err := io.ReadFull(r, b); err != nil {
			return fmt.Errorf("%w: bool: %v", errcode.ErrTruncated, err)
		}
		val.SetBool(b[0] != 0)
		return nil
	}
	return nil
}
