// Package filters provides probabilistic set and frequency data structures
// for approximate membership, frequency estimation, and set reconciliation
// over streams of opaque byte strings.
//
// # Structures
//
// Six data structures share a common xxh3-based hashing substrate:
//
// [BloomFilter] is the classic space-efficient membership filter: no false
// negatives, a tunable false-positive rate, no deletion.
//
// [PartitionedBloomFilter] is a Bloom variant that splits its bit array into
// k disjoint slices, one per hash lane, giving every element a uniform
// false-positive contribution instead of a shared, density-skewed array.
//
// [CountingBloomFilter] replaces single bits with small saturating counters,
// trading some space for support for [CountingBloomFilter.Remove].
//
// [CuckooFilter] stores compact fingerprints in two candidate buckets per
// element, supporting deletion with a bounded false-positive rate and an
// eviction loop borrowed from cuckoo hashing.
//
// [CountMinSketch] is a frequency table: a d*w matrix of counters that
// estimates how many times a key has been seen; with non-negative updates
// it never underestimates and overestimates by a bounded amount.
//
// [IBLT] (Invertible Bloom Lookup Table) encodes a set into XOR-accumulator
// cells that support pairwise subtraction and peel-decoding of the
// symmetric difference between two sets — the basis for set reconciliation.
//
// # Hashing
//
// All six structures hash elements with [github.com/zeebo/xxh3], seeded per
// instance (default seed 0x1234567890, see [DefaultSeed]). For the Bloom
// variants, the sketch and the IBLT, a single element yields two 64-bit
// values (h1, h2) and k indices are derived by double hashing,
// h_i = h1 + i*h2. Only the IBLT needs distinct indices: it applies a
// linear probe after a collision to salvage distinctness without a full
// re-hash, while the other structures let lanes coincide. [CuckooFilter]
// takes its fingerprint and primary bucket from a single seeded hash.
//
// # Concurrency
//
// None of the six core structures synchronize internally — concurrent use
// of the same instance from multiple goroutines is the caller's
// responsibility. [ConcurrentBloomFilter], [ConcurrentCountingBloomFilter],
// [ConcurrentCuckooFilter], and [ConcurrentCountMinSketch] are thin
// sync.RWMutex-guarded façades for callers that need thread safety without
// writing their own locking.
//
// # Serialization
//
// Every structure supports MarshalBinary paired with a package-level
// Unmarshal function, producing a self-describing record: a type tag, the
// seed, structural sizes, and the raw backing arrays. [Decode] dispatches
// on the tag byte for callers that don't know which of the six types
// they're decoding.
package filters

// DefaultSeed is the seed new structures use unless a caller overrides it
// via the structure's SetSeed method.
const DefaultSeed uint64 = 0x1234567890
