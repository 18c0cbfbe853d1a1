package filters

import "github.com/zeebo/xxh3"

// hashTwice computes the two base hashes used by the double-hashing scheme:
// h1 is the xxh3 hash of data seeded by seed, h2 is the xxh3 hash of data
// seeded by seed+1. h1 and h2 disagree except on astronomically rare
// collisions.
func hashTwice(data []byte, seed uint64) (h1, h2 uint64) {
	h1 = xxh3.HashSeed(data, seed)
	h2 = xxh3.HashSeed(data, seed+1)
	return h1, h2
}

// hashTwiceString is hashTwice for string input, avoiding the []byte
// conversion allocation.
func hashTwiceString(s string, seed uint64) (h1, h2 uint64) {
	h1 = xxh3.HashStringSeed(s, seed)
	h2 = xxh3.HashStringSeed(s, seed+1)
	return h1, h2
}

// indexFromHashes reduces h1, h2 into [0, rng) for hash lane i via double
// hashing: h_i = h1 + i*h2 mod rng.
func indexFromHashes(h1, h2 uint64, i int, rng uint64) uint64 {
	return (h1 + uint64(i)*h2) % rng
}

// distinctIndices produces k pairwise-distinct indices in [0, rng) for
// data, derived from hashTwice(data, seed) by double hashing with a
// collision-triggered linear probe. Fails with ParameterError if k is not
// achievable (k <= 0, rng <= 0, or k > rng).
func distinctIndices(data []byte, rng int, k int, seed uint64) ([]uint64, error) {
	h1, h2 := hashTwice(data, seed)
	return distinctIndicesFromHashes(h1, h2, rng, k)
}

// distinctIndicesString is distinctIndices for string input.
func distinctIndicesString(s string, rng int, k int, seed uint64) ([]uint64, error) {
	h1, h2 := hashTwiceString(s, seed)
	return distinctIndicesFromHashes(h1, h2, rng, k)
}

// distinctIndicesFromHashes is the shared core of distinctIndices and
// distinctIndicesString, operating on already-computed base hashes. Index i
// starts at h1 + i*h2 mod rng; on a collision with an index already chosen
// for this call, linear probing (idx+1, idx+2, … mod rng) scans forward
// until a fresh slot is found. Unlike a quadratic or otherwise
// additive-step tweak — which only ever reaches the coset generated by its
// step size and can strand the probe cycling through a strict subset of
// residues forever — a stride of 1 is coprime with every rng, so the probe
// sequence visits all rng residues before repeating. Combined with
// k <= rng (checked below), this guarantees the loop terminates having
// found an unused slot.
func distinctIndicesFromHashes(h1, h2 uint64, rng int, k int) ([]uint64, error) {
	if rng <= 0 {
		return nil, &ParameterError{Msg: "distinctIndices: range must be positive"}
	}
	if k <= 0 {
		return nil, &ParameterError{Msg: "distinctIndices: k must be positive"}
	}
	if k > rng {
		return nil, &ParameterError{Msg: "distinctIndices: k exceeds range"}
	}

	r := uint64(rng)
	seen := make(map[uint64]struct{}, k)
	out := make([]uint64, k)

	for i := 0; i < k; i++ {
		idx := indexFromHashes(h1, h2, i, r)
		for {
			if _, taken := seen[idx]; !taken {
				break
			}
			idx = (idx + 1) % r
		}
		seen[idx] = struct{}{}
		out[i] = idx
	}

	return out, nil
}
