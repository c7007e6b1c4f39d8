package buffer

import (
	"testing"

	"github.com/streamworks-oss/clog/record"
)

func TestMessageBufferPreservesInsertionOrder(t *testing.T) {
	b := NewMessageBuffer()
	r1 := record.New("t", []byte("1"), nil)
	r2 := record.New("t", []byte("2"), nil)
	r3 := record.New("t", []byte("3"), nil)
	b.Append("t", 0, r1)
	b.Append("t", 0, r2)
	b.Append("t", 0, r3)
	list := b.List("t", 0)
	if len(list) != 3 || list[0] != r1 || list[1] != r2 || list[2] != r3 {
		t.Fatalf("insertion order not preserved: %v", list)
	}
}

func TestMessageBufferSizeAndByteSize(t *testing.T) {
	b := NewMessageBuffer()
	b.Append("t", 0, record.New("t", []byte("ab"), []byte("k")))
	b.Append("t", 1, record.New("t", []byte("cde"), nil))
	if b.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", b.Size())
	}
	if b.ByteSize() != 6 { // "ab"+"k" = 3, "cde" = 3
		t.Fatalf("ByteSize() = %d, want 6", b.ByteSize())
	}
}

func TestMessageBufferClearRemovesOnlyThatPartition(t *testing.T) {
	b := NewMessageBuffer()
	b.Append("t", 0, record.New("t", []byte("a"), nil))
	b.Append("t", 1, record.New("t", []byte("b"), nil))
	b.Clear("t", 0)
	if len(b.List("t", 0)) != 0 {
		t.Fatal("expected partition 0 cleared")
	}
	if len(b.List("t", 1)) != 1 {
		t.Fatal("expected partition 1 untouched")
	}
}

func TestMessageBufferDrainEmptiesBuffer(t *testing.T) {
	b := NewMessageBuffer()
	b.Append("t", 0, record.New("t", []byte("a"), nil))
	b.Append("t", 1, record.New("t", []byte("b"), nil))
	drained := b.Drain()
	if len(drained) != 2 {
		t.Fatalf("Drain() returned %d records, want 2", len(drained))
	}
	if b.Size() != 0 {
		t.Fatal("expected buffer empty after Drain")
	}
}

func TestPendingQueueFIFOOrder(t *testing.T) {
	q := NewPendingQueue()
	r1 := record.New("t", []byte("1"), nil)
	r2 := record.New("t", []byte("2"), nil)
	q.Push(r1)
	q.Push(r2)
	got := q.Records()
	if len(got) != 2 || got[0] != r1 || got[1] != r2 {
		t.Fatalf("unexpected order: %v", got)
	}
}

func TestPendingQueueReplace(t *testing.T) {
	q := NewPendingQueue()
	q.Push(record.New("t", []byte("a"), nil))
	q.Push(record.New("t", []byte("b"), nil))
	remainder := []*record.Record{record.New("t", []byte("c"), nil)}
	q.Replace(remainder)
	if q.Size() != 1 {
		t.Fatalf("Size() = %d, want 1", q.Size())
	}
}

func TestPendingQueueByteSize(t *testing.T) {
	q := NewPendingQueue()
	q.Push(record.New("t", []byte("ab"), []byte("c")))
	if q.ByteSize() != 3 {
		t.Fatalf("ByteSize() = %d, want 3", q.ByteSize())
	}
}
