package filters

// CountingBloomFilter is a Bloom variant that replaces single bits with
// small saturating counters, so Add can be undone by a matching Remove.
// Counters saturate at 255 rather than wrapping; saturation is silent (it
// doesn't abort the Add) but makes the filter conservative — a later
// Remove of an element whose counters include a saturated cell may leave
// stale counts behind. Poll Saturated to detect this.
type CountingBloomFilter struct {
	counters  *counterArray
	m         uint
	k         uint
	n         uint
	saturated bool
	seed      uint64
}

// NewCountingBloomFilter creates a counting Bloom filter with an explicit
// counter-array length m and hash count k.
func NewCountingBloomFilter(m, k uint) (*CountingBloomFilter, error) {
	if m < 1 {
		return nil, &ParameterError{Msg: "CountingBloomFilter: m must be at least 1"}
	}
	if k < 1 {
		return nil, &ParameterError{Msg: "CountingBloomFilter: k must be at least 1"}
	}
	return &CountingBloomFilter{
		counters: newCounterArray(m),
		m:        m,
		k:        k,
		seed:     DefaultSeed,
	}, nil
}

// NewCountingBloomFromEstimates sizes a counting Bloom filter the same way
// NewFromEstimates sizes a Classic one.
func NewCountingBloomFromEstimates(capacity uint, fpRate float64) (*CountingBloomFilter, error) {
	if capacity < 1 {
		return nil, &ParameterError{Msg: "CountingBloomFilter: capacity must be at least 1"}
	}
	if fpRate <= 0 || fpRate >= 1 {
		return nil, &ParameterError{Msg: "CountingBloomFilter: fpRate must be in (0, 1)"}
	}
	m, k := bloomOptimalParams(capacity, fpRate)
	return NewCountingBloomFilter(m, k)
}

// Add inserts data, incrementing its k counters.
func (f *CountingBloomFilter) Add(data []byte) {
	idx := distinctIndicesUnchecked(data, f.m, f.k, f.seed)
	for _, pos := range idx {
		if f.counters.increment(uint(pos)) {
			f.saturated = true
		}
	}
	f.n++
}

// AddString is Add for a string.
func (f *CountingBloomFilter) AddString(s string) {
	idx := distinctIndicesStringUnchecked(s, f.m, f.k, f.seed)
	for _, pos := range idx {
		if f.counters.increment(uint(pos)) {
			f.saturated = true
		}
	}
	f.n++
}

// Remove decrements data's k counters, provided all of them are currently
// >= 1. Returns UnknownElementError and mutates nothing if any counter is
// already zero.
func (f *CountingBloomFilter) Remove(data []byte) error {
	idx := distinctIndicesUnchecked(data, f.m, f.k, f.seed)
	return f.remove(idx)
}

// RemoveString is Remove for a string.
func (f *CountingBloomFilter) RemoveString(s string) error {
	idx := distinctIndicesStringUnchecked(s, f.m, f.k, f.seed)
	return f.remove(idx)
}

func (f *CountingBloomFilter) remove(idx []uint64) error {
	for _, pos := range idx {
		if f.counters.get(uint(pos)) == 0 {
			return &UnknownElementError{Msg: "CountingBloomFilter: element not present"}
		}
	}
	for _, pos := range idx {
		f.counters.decrement(uint(pos))
	}
	if f.n > 0 {
		f.n--
	}
	return nil
}

// Has reports whether all of data's k counters are >= 1.
func (f *CountingBloomFilter) Has(data []byte) bool {
	idx := distinctIndicesUnchecked(data, f.m, f.k, f.seed)
	return f.has(idx)
}

// HasString is Has for a string.
func (f *CountingBloomFilter) HasString(s string) bool {
	idx := distinctIndicesStringUnchecked(s, f.m, f.k, f.seed)
	return f.has(idx)
}

func (f *CountingBloomFilter) has(idx []uint64) bool {
	for _, pos := range idx {
		if f.counters.get(uint(pos)) == 0 {
			return false
		}
	}
	return true
}

// Saturated reports whether any increment has ever been absorbed by a
// counter already at the saturation ceiling, making the filter's Remove
// behavior potentially conservative.
func (f *CountingBloomFilter) Saturated() bool { return f.saturated }

// M returns the counter-array length.
func (f *CountingBloomFilter) M() uint { return f.m }

// K returns the hash count.
func (f *CountingBloomFilter) K() uint { return f.k }

// Count returns the number of elements currently credited to the filter
// (adds minus successful removes).
func (f *CountingBloomFilter) Count() uint { return f.n }

// Seed returns the filter's current hash seed.
func (f *CountingBloomFilter) Seed() uint64 { return f.seed }

// SetSeed changes the hash seed used for subsequent operations.
func (f *CountingBloomFilter) SetSeed(seed uint64) { f.seed = seed }

// Clone returns a deep copy of f.
func (f *CountingBloomFilter) Clone() *CountingBloomFilter {
	return &CountingBloomFilter{
		counters:  f.counters.clone(),
		m:         f.m,
		k:         f.k,
		n:         f.n,
		saturated: f.saturated,
		seed:      f.seed,
	}
}

// distinctIndicesUnchecked computes k hash-derived positions in [0, m)
// without requiring pairwise distinctness — unlike distinctIndices
// (§hash.go), CountingBloomFilter's own counters don't need distinct
// positions: two hash lanes legitimately landing on the same counter just
// means that counter absorbs two increments, which is already how classic
// double-hashing collisions are handled in every Bloom variant.
func distinctIndicesUnchecked(data []byte, m, k uint, seed uint64) []uint64 {
	h1, h2 := hashTwice(data, seed)
	out := make([]uint64, k)
	for i := uint(0); i < k; i++ {
		out[i] = indexFromHashes(h1, h2, int(i), uint64(m))
	}
	return out
}

func distinctIndicesStringUnchecked(s string, m, k uint, seed uint64) []uint64 {
	h1, h2 := hashTwiceString(s, seed)
	out := make([]uint64, k)
	for i := uint(0); i < k; i++ {
		out[i] = indexFromHashes(h1, h2, int(i), uint64(m))
	}
	return out
}
