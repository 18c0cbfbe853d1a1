package filters

import (
	"fmt"
	"testing"
)

func TestBloomFilterBasic(t *testing.T) {
	f, err := NewFromEstimates(1000, 0.01)
	if err != nil {
		t.Fatalf("NewFromEstimates failed: %v", err)
	}

	for i := 1; i <= 1000; i++ {
		f.AddString(fmt.Sprintf("%d", i))
	}

	if !f.HasString("500") {
		t.Error("expected 500 to be present")
	}

	if f.HasString("non-member-xyz") {
		t.Log("warning: false positive for 'non-member-xyz'")
	}

	if f.Rate() > 0.02 {
		t.Errorf("rate too high: got %.4f, want <= 0.02", f.Rate())
	}
}

func TestBloomFilterNoFalseNegatives(t *testing.T) {
	f, err := NewFromEstimates(500, 0.01)
	if err != nil {
		t.Fatalf("NewFromEstimates failed: %v", err)
	}

	for i := range 500 {
		item := fmt.Appendf(nil, "item-%d", i)
		f.Add(item)
		if !f.Has(item) {
			t.Fatalf("expected item-%d to be present immediately after Add", i)
		}
	}
}

func TestBloomFilterInvalidParams(t *testing.T) {
	if _, err := NewFromEstimates(0, 0.01); err == nil {
		t.Error("expected error for zero capacity")
	}
	if _, err := NewFromEstimates(10, 0); err == nil {
		t.Error("expected error for zero fpRate")
	}
	if _, err := NewFromEstimates(10, 1); err == nil {
		t.Error("expected error for fpRate == 1")
	}
	if _, err := NewBloomFilter(0, 4); err == nil {
		t.Error("expected error for m == 0")
	}
	if _, err := NewBloomFilter(100, 0); err == nil {
		t.Error("expected error for k == 0")
	}
}

func TestBloomFilterSeedSensitivity(t *testing.T) {
	a, _ := NewBloomFilter(2048, 8)
	b, _ := NewBloomFilter(2048, 8)
	b.SetSeed(a.Seed() + 1)

	for i := range 200 {
		item := fmt.Appendf(nil, "seeded-%d", i)
		a.Add(item)
		b.Add(item)
	}

	disagreements := 0
	for i := range 10000 {
		probe := fmt.Appendf(nil, "probe-%d", i)
		if a.Has(probe) != b.Has(probe) {
			disagreements++
		}
	}

	if disagreements == 0 {
		t.Error("expected seed change to produce at least one disagreement among probes")
	}
}

func TestBloomFilterEqualAndClone(t *testing.T) {
	f, _ := NewFromEstimates(100, 0.05)
	f.AddString("alpha")
	f.AddString("beta")

	clone := f.Clone()
	if !f.Equal(clone) {
		t.Error("expected clone to equal original")
	}

	clone.AddString("gamma")
	if f.Equal(clone) {
		t.Error("expected filters to diverge after mutating the clone")
	}
}

func TestFromIterable(t *testing.T) {
	items := [][]byte{[]byte("a"), []byte("b"), []byte("c")}
	f, err := FromIterable(items, 0.01)
	if err != nil {
		t.Fatalf("FromIterable failed: %v", err)
	}
	for _, item := range items {
		if !f.Has(item) {
			t.Errorf("expected %q to be present", item)
		}
	}
}
