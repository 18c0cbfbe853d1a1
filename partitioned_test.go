package filters

import (
	"fmt"
	"testing"
)

func TestPartitionedBloomBasic(t *testing.T) {
	f, err := NewPartitionedBloomFilter(1000, 0.01, DefaultLoadFactor)
	if err != nil {
		t.Fatalf("NewPartitionedBloomFilter failed: %v", err)
	}

	for i := range 1000 {
		f.AddString(fmt.Sprintf("p-%d", i))
	}

	for i := range 1000 {
		if !f.HasString(fmt.Sprintf("p-%d", i)) {
			t.Fatalf("expected p-%d to be present", i)
		}
	}
}

func TestPartitionedBloomSliceSize(t *testing.T) {
	f, err := NewPartitionedBloomFilter(200, 0.02, DefaultLoadFactor)
	if err != nil {
		t.Fatalf("NewPartitionedBloomFilter failed: %v", err)
	}

	if f.K() == 0 {
		t.Fatal("expected K > 0")
	}
	if f.SliceSize() == 0 {
		t.Fatal("expected SliceSize > 0")
	}
	if f.M() != f.K()*f.SliceSize() {
		t.Errorf("expected M == K*SliceSize, got M=%d K=%d SliceSize=%d", f.M(), f.K(), f.SliceSize())
	}
}

func TestPartitionedBloomInvalidParams(t *testing.T) {
	if _, err := NewPartitionedBloomFilter(0, 0.01, DefaultLoadFactor); err == nil {
		t.Error("expected error for zero capacity")
	}
	if _, err := NewPartitionedBloomFilter(100, 0.01, 0); err == nil {
		t.Error("expected error for zero load factor")
	}
	if _, err := NewPartitionedBloomFilter(100, 0.01, 1.5); err == nil {
		t.Error("expected error for load factor > 1")
	}
}

func TestPartitionedBloomEqualAndClone(t *testing.T) {
	f, _ := NewPartitionedBloomFilter(300, 0.01, DefaultLoadFactor)
	f.AddString("one")
	f.AddString("two")

	clone := f.Clone()
	if !f.Equal(clone) {
		t.Error("expected clone to equal original")
	}

	clone.AddString("three")
	if f.Equal(clone) {
		t.Error("expected filters to diverge after mutating the clone")
	}
}
