package filters

import "math"

// PartitionedBloomFilter is a Bloom variant that divides its bit array into
// k disjoint slices, one per hash lane, so every inserted element
// contributes exactly one set bit per slice. This gives every element a
// uniform false-positive contribution, unlike the Classic Bloom filter
// where heavily-reused bits can skew which elements are more likely to
// collide.
type PartitionedBloomFilter struct {
	slices     []*bitArray
	sliceSize  uint // m: bits per slice
	k          uint
	n          uint
	loadFactor float64
	seed       uint64
}

// DefaultLoadFactor is the slice fill fraction NewPartitionedBloomFilter
// targets when the caller doesn't have a specific one in mind.
const DefaultLoadFactor = 0.5

// NewPartitionedBloomFilter creates a partitioned Bloom filter sized for
// capacity elements at fpRate, with each slice sized to reach loadFactor
// occupancy once capacity elements have been inserted.
//
// k = ceil(log2(1/fpRate)); sliceSize = ceil(-k*capacity /
// ln(1 - loadFactor^(1/k))).
func NewPartitionedBloomFilter(capacity uint, fpRate float64, loadFactor float64) (*PartitionedBloomFilter, error) {
	if capacity < 1 {
		return nil, &ParameterError{Msg: "PartitionedBloomFilter: capacity must be at least 1"}
	}
	if fpRate <= 0 || fpRate >= 1 {
		return nil, &ParameterError{Msg: "PartitionedBloomFilter: fpRate must be in (0, 1)"}
	}
	if loadFactor <= 0 || loadFactor >= 1 {
		return nil, &ParameterError{Msg: "PartitionedBloomFilter: loadFactor must be in (0, 1)"}
	}

	k := uint(math.Ceil(math.Log2(1 / fpRate)))
	if k < 1 {
		k = 1
	}

	denom := math.Log(1 - math.Pow(loadFactor, 1/float64(k)))
	sliceSizeF := math.Ceil(-float64(k) * float64(capacity) / denom)
	sliceSize := uint(sliceSizeF)
	if sliceSize < 1 {
		sliceSize = 1
	}

	slices := make([]*bitArray, k)
	for i := range slices {
		slices[i] = newBitArray(sliceSize)
	}

	return &PartitionedBloomFilter{
		slices:     slices,
		sliceSize:  sliceSize,
		k:          k,
		loadFactor: loadFactor,
		seed:       DefaultSeed,
	}, nil
}

// Add inserts data, setting exactly one bit per slice.
func (f *PartitionedBloomFilter) Add(data []byte) {
	h1, h2 := hashTwice(data, f.seed)
	f.addHashed(h1, h2)
}

// AddString is Add for a string.
func (f *PartitionedBloomFilter) AddString(s string) {
	h1, h2 := hashTwiceString(s, f.seed)
	f.addHashed(h1, h2)
}

func (f *PartitionedBloomFilter) addHashed(h1, h2 uint64) {
	size := uint64(f.sliceSize)
	for i := uint(0); i < f.k; i++ {
		pos := indexFromHashes(h1, h2, int(i), size)
		f.slices[i].set(uint(pos))
	}
	f.n++
}

// Has reports whether data may be in the filter.
func (f *PartitionedBloomFilter) Has(data []byte) bool {
	h1, h2 := hashTwice(data, f.seed)
	return f.hasHashed(h1, h2)
}

// HasString is Has for a string.
func (f *PartitionedBloomFilter) HasString(s string) bool {
	h1, h2 := hashTwiceString(s, f.seed)
	return f.hasHashed(h1, h2)
}

func (f *PartitionedBloomFilter) hasHashed(h1, h2 uint64) bool {
	size := uint64(f.sliceSize)
	for i := uint(0); i < f.k; i++ {
		pos := indexFromHashes(h1, h2, int(i), size)
		if !f.slices[i].get(uint(pos)) {
			return false
		}
	}
	return true
}

// Rate returns the filter's current estimated false-positive rate, using
// the total bit array length M = k*sliceSize in the same formula as
// BloomFilter.Rate.
func (f *PartitionedBloomFilter) Rate() float64 {
	if f.n == 0 {
		return 0
	}
	kf := float64(f.k)
	m := float64(f.k * f.sliceSize)
	exp := -kf * float64(f.n) / m
	return math.Pow(1-math.Exp(exp), kf)
}

// K returns the number of slices (hash lanes).
func (f *PartitionedBloomFilter) K() uint { return f.k }

// SliceSize returns the bit length of a single slice.
func (f *PartitionedBloomFilter) SliceSize() uint { return f.sliceSize }

// M returns the total bit-array length across all slices.
func (f *PartitionedBloomFilter) M() uint { return f.k * f.sliceSize }

// Count returns the number of elements added so far.
func (f *PartitionedBloomFilter) Count() uint { return f.n }

// LoadFactor returns the configured target slice occupancy.
func (f *PartitionedBloomFilter) LoadFactor() float64 { return f.loadFactor }

// Seed returns the filter's current hash seed.
func (f *PartitionedBloomFilter) Seed() uint64 { return f.seed }

// SetSeed changes the hash seed used for subsequent operations.
func (f *PartitionedBloomFilter) SetSeed(seed uint64) { f.seed = seed }

// Equal reports whether f and other have identical parameters, seed, and
// slice contents.
func (f *PartitionedBloomFilter) Equal(other *PartitionedBloomFilter) bool {
	if other == nil {
		return false
	}
	if f.k != other.k || f.sliceSize != other.sliceSize || f.seed != other.seed {
		return false
	}
	for i := range f.slices {
		if !f.slices[i].equal(other.slices[i]) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of f.
func (f *PartitionedBloomFilter) Clone() *PartitionedBloomFilter {
	slices := make([]*bitArray, len(f.slices))
	for i, s := range f.slices {
		slices[i] = s.clone()
	}
	return &PartitionedBloomFilter{
		slices:     slices,
		sliceSize:  f.sliceSize,
		k:          f.k,
		n:          f.n,
		loadFactor: f.loadFactor,
		seed:       f.seed,
	}
}
