package filters

import "math"

// BloomFilter is the classic space-efficient probabilistic membership
// filter: Add never produces a false negative, Has may produce a false
// positive at a tunable rate, and there is no deletion.
//
// Bits are addressed by double hashing over the shared hash substrate
// (hashTwice, indexFromHashes): h_i = h1 + i*h2 mod m. Lanes may land on
// the same bit.
type BloomFilter struct {
	bits *bitArray
	m    uint
	k    uint
	n    uint
	seed uint64
}

// NewBloomFilter creates a Bloom filter with an explicit bit-array length m
// and hash count k.
func NewBloomFilter(m, k uint) (*BloomFilter, error) {
	if m < 1 {
		return nil, &ParameterError{Msg: "BloomFilter: m must be at least 1"}
	}
	if k < 1 {
		return nil, &ParameterError{Msg: "BloomFilter: k must be at least 1"}
	}
	return &BloomFilter{
		bits: newBitArray(m),
		m:    m,
		k:    k,
		seed: DefaultSeed,
	}, nil
}

// NewFromEstimates creates a Bloom filter sized for capacity expected
// elements at the given false-positive rate: m = ceil(-capacity*ln(rate) /
// ln(2)^2), k = ceil(m/capacity * ln(2)), both clamped to >= 1.
func NewFromEstimates(capacity uint, fpRate float64) (*BloomFilter, error) {
	if capacity < 1 {
		return nil, &ParameterError{Msg: "BloomFilter: capacity must be at least 1"}
	}
	if fpRate <= 0 || fpRate >= 1 {
		return nil, &ParameterError{Msg: "BloomFilter: fpRate must be in (0, 1)"}
	}

	m, k := bloomOptimalParams(capacity, fpRate)
	return NewBloomFilter(m, k)
}

// FromIterable creates a Bloom filter sized for len(items) elements at
// fpRate and inserts every item.
func FromIterable(items [][]byte, fpRate float64) (*BloomFilter, error) {
	f, err := NewFromEstimates(uint(len(items)), fpRate)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		f.Add(item)
	}
	return f, nil
}

func bloomOptimalParams(n uint, fpRate float64) (m, k uint) {
	mf := math.Ceil(-float64(n) * math.Log(fpRate) / ln2Squared)
	m = uint(mf)
	if m < 1 {
		m = 1
	}

	kf := math.Ceil(mf / float64(n) * math.Ln2)
	k = uint(kf)
	if k < 1 {
		k = 1
	}
	return m, k
}

// Add inserts data into the filter, setting its k bits.
func (f *BloomFilter) Add(data []byte) {
	h1, h2 := hashTwice(data, f.seed)
	f.addHashed(h1, h2)
}

// AddString is Add for a string, avoiding a []byte conversion.
func (f *BloomFilter) AddString(s string) {
	h1, h2 := hashTwiceString(s, f.seed)
	f.addHashed(h1, h2)
}

func (f *BloomFilter) addHashed(h1, h2 uint64) {
	m := uint64(f.m)
	for i := uint(0); i < f.k; i++ {
		f.bits.set(uint(indexFromHashes(h1, h2, int(i), m)))
	}
	f.n++
}

// Has reports whether data may be in the filter. false is definitive; true
// is subject to the filter's false-positive rate.
func (f *BloomFilter) Has(data []byte) bool {
	h1, h2 := hashTwice(data, f.seed)
	return f.hasHashed(h1, h2)
}

// HasString is Has for a string.
func (f *BloomFilter) HasString(s string) bool {
	h1, h2 := hashTwiceString(s, f.seed)
	return f.hasHashed(h1, h2)
}

func (f *BloomFilter) hasHashed(h1, h2 uint64) bool {
	m := uint64(f.m)
	for i := uint(0); i < f.k; i++ {
		if !f.bits.get(uint(indexFromHashes(h1, h2, int(i), m))) {
			return false
		}
	}
	return true
}

// Rate returns the filter's current estimated false-positive rate,
// (1 - e^(-k*n/m))^k.
func (f *BloomFilter) Rate() float64 {
	if f.n == 0 {
		return 0
	}
	kf := float64(f.k)
	exp := -kf * float64(f.n) / float64(f.m)
	return math.Pow(1-math.Exp(exp), kf)
}

// M returns the bit-array length.
func (f *BloomFilter) M() uint { return f.m }

// K returns the hash count.
func (f *BloomFilter) K() uint { return f.k }

// Count returns the number of elements added so far.
func (f *BloomFilter) Count() uint { return f.n }

// Seed returns the filter's current hash seed.
func (f *BloomFilter) Seed() uint64 { return f.seed }

// SetSeed changes the hash seed used for subsequent operations. Changing
// the seed does not rehash already-set bits.
func (f *BloomFilter) SetSeed(seed uint64) { f.seed = seed }

// Equal reports whether f and other have identical parameters, seed, and
// bit contents.
func (f *BloomFilter) Equal(other *BloomFilter) bool {
	if other == nil {
		return false
	}
	return f.m == other.m && f.k == other.k && f.seed == other.seed && f.bits.equal(other.bits)
}

// Clone returns a deep copy of f.
func (f *BloomFilter) Clone() *BloomFilter {
	return &BloomFilter{
		bits: f.bits.clone(),
		m:    f.m,
		k:    f.k,
		n:    f.n,
		seed: f.seed,
	}
}
