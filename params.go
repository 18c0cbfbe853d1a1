package filters

import "math"

// ln2Squared is ln(2)^2, used by the optimal bit-array sizing formula
// shared by BloomFilter and CountingBloomFilter.
const ln2Squared = math.Ln2 * math.Ln2
