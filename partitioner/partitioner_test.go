package partitioner

import (
	"testing"

	"github.com/streamworks-oss/clog/record"
)

func TestExplicitPartitionWins(t *testing.T) {
	p := &Partitioner{}
	r := record.New("t", []byte("v"), []byte("key")).WithPartition(7)
	if got := p.PartitionFor(10, r); got != 7 {
		t.Fatalf("PartitionFor() = %d, want 7", got)
	}
}

func TestPartitionKeyTakesPrecedenceOverKey(t *testing.T) {
	p := &Partitioner{Hash: func(b []byte) uint32 {
		if string(b) == "pk" {
			return 3
		}
		return 9
	}}
	r := record.New("t", []byte("v"), []byte("key")).WithPartitionKey([]byte("pk"))
	if got := p.PartitionFor(10, r); got != 3 {
		t.Fatalf("PartitionFor() = %d, want 3 (hash of partition key mod 10)", got)
	}
}

func TestKeyUsedWhenNoPartitionKey(t *testing.T) {
	p := &Partitioner{Hash: func(b []byte) uint32 { return 25 }}
	r := record.New("t", []byte("v"), []byte("key"))
	if got := p.PartitionFor(10, r); got != 5 {
		t.Fatalf("PartitionFor() = %d, want 5 (25 mod 10)", got)
	}
}

func TestHashIsDeterministic(t *testing.T) {
	p := &Partitioner{}
	r1 := record.New("t", nil, []byte("same-key"))
	r2 := record.New("t", nil, []byte("same-key"))
	if p.PartitionFor(16, r1) != p.PartitionFor(16, r2) {
		t.Fatal("expected identical keys to hash to the same partition")
	}
}

func TestUnkeyedRecordsStickyPerTopic(t *testing.T) {
	p := &Partitioner{}
	r1 := record.New("t", []byte("v1"), nil)
	r2 := record.New("t", []byte("v2"), nil)
	first := p.PartitionFor(8, r1)
	for i := 0; i < 20; i++ {
		if got := p.PartitionFor(8, r2); got != first {
			t.Fatalf("expected sticky partition %d, got %d on iteration %d", first, got, i)
		}
	}
}

func TestResetStickyRerandomizes(t *testing.T) {
	p := &Partitioner{}
	r := record.New("t", nil, nil)
	first := p.PartitionFor(8, r)
	p.ResetSticky()
	// After reset the cached choice is gone; a new call must still return
	// a valid partition index (it may coincide with the old one by chance).
	got := p.PartitionFor(8, r)
	if got < 0 || got >= 8 {
		t.Fatalf("PartitionFor() = %d, out of range [0,8)", got)
	}
	_ = first
}
