package record

import (
	"testing"
	"time"
)

func TestByteSize(t *testing.T) {
	tests := []struct {
		r    *Record
		want int
	}{
		{New("t", []byte("m1"), nil), 2},
		{New("t", []byte("m1"), []byte("foo")), 5},
		{New("t", nil, nil), 0},
	}
	for _, tt := range tests {
		if got := tt.r.ByteSize(); got != tt.want {
			t.Fatalf("ByteSize() = %d, want %d", got, tt.want)
		}
	}
}

func TestUnassignedUntilRouted(t *testing.T) {
	r := New("t", []byte("v"), nil)
	if r.HasPartition() {
		t.Fatal("expected fresh record to be unassigned")
	}
	pinned := r.WithPartition(3)
	if !pinned.HasPartition() || pinned.Partition() != 3 {
		t.Fatalf("expected pinned partition 3, got %d", pinned.Partition())
	}
	if r.HasPartition() {
		t.Fatal("WithPartition must not mutate the receiver")
	}
}

func TestCreateTimeOptional(t *testing.T) {
	r := New("t", []byte("v"), nil)
	if _, ok := r.CreateTime(); ok {
		t.Fatal("expected no create time on a fresh record")
	}
	now := time.Now()
	stamped := r.WithCreateTime(now)
	got, ok := stamped.CreateTime()
	if !ok || !got.Equal(now) {
		t.Fatalf("CreateTime() = %v, %v; want %v, true", got, ok, now)
	}
}

func TestPartitionKeyNeverAffectsByteSize(t *testing.T) {
	r := New("t", []byte("v"), nil).WithPartitionKey([]byte("sharding-key"))
	if r.ByteSize() != 1 {
		t.Fatalf("ByteSize() = %d, want 1 (partition key must not count)", r.ByteSize())
	}
}
