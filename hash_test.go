package filters

import "testing"

func TestDistinctIndicesFromHashesCoversFullRange(t *testing.T) {
	// rng=5 starting from residue 0 is exactly the case the old quadratic
	// tweak (1, 1+4, 1+4+9, ... mod rng) could never fully cover: from
	// h_i = 0 it only ever reaches {0, 1, 4}, so asking for all 5 slots
	// forces a collision the old probe could not resolve. This must
	// terminate and return every residue in [0, 5).
	const rng = 5
	out, err := distinctIndicesFromHashes(0, 0, rng, rng)
	if err != nil {
		t.Fatalf("distinctIndicesFromHashes failed: %v", err)
	}

	seen := make(map[uint64]bool, rng)
	for _, idx := range out {
		if idx >= rng {
			t.Fatalf("index %d out of range [0, %d)", idx, rng)
		}
		if seen[idx] {
			t.Fatalf("index %d returned more than once", idx)
		}
		seen[idx] = true
	}
	if len(seen) != rng {
		t.Fatalf("expected all %d residues covered, got %d", rng, len(seen))
	}
}

func TestDistinctIndicesFromHashesHostileRanges(t *testing.T) {
	// These are exactly the ranges the maintainer flagged as unreachable
	// from a subset of residues under the old additive quadratic tweak.
	for _, rng := range []int{7, 31, 63} {
		out, err := distinctIndicesFromHashes(0, 0, rng, rng)
		if err != nil {
			t.Fatalf("rng=%d: distinctIndicesFromHashes failed: %v", rng, err)
		}
		seen := make(map[uint64]bool, rng)
		for _, idx := range out {
			seen[idx] = true
		}
		if len(seen) != rng {
			t.Fatalf("rng=%d: expected all %d residues covered, got %d", rng, rng, len(seen))
		}
	}
}

func TestDistinctIndicesFromHashesForcedCollision(t *testing.T) {
	// h2 = 0 forces every hash lane to start at the same candidate index,
	// so every lane after the first collides immediately and must be
	// resolved by the probe.
	const rng, k = 16, 16
	out, err := distinctIndicesFromHashes(3, 0, rng, k)
	if err != nil {
		t.Fatalf("distinctIndicesFromHashes failed: %v", err)
	}
	if len(out) != k {
		t.Fatalf("expected %d indices, got %d", k, len(out))
	}
	seen := make(map[uint64]bool, k)
	for _, idx := range out {
		seen[idx] = true
	}
	if len(seen) != k {
		t.Fatalf("expected %d distinct indices, got %d", k, len(seen))
	}
}

func TestDistinctIndicesInvalidParams(t *testing.T) {
	if _, err := distinctIndicesFromHashes(1, 2, 0, 1); err == nil {
		t.Error("expected error for non-positive range")
	}
	if _, err := distinctIndicesFromHashes(1, 2, 10, 0); err == nil {
		t.Error("expected error for non-positive k")
	}
	if _, err := distinctIndicesFromHashes(1, 2, 4, 5); err == nil {
		t.Error("expected error when k exceeds range")
	}
}

func TestIndexFromHashesDoubleHashing(t *testing.T) {
	h1, h2 := uint64(10), uint64(3)
	const rng = 100

	got := indexFromHashes(h1, h2, 4, rng)
	want := (h1 + 4*h2) % rng
	if got != want {
		t.Errorf("indexFromHashes(4) = %d, want %d", got, want)
	}
}
