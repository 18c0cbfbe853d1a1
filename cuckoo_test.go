package filters

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCuckooFilterAddHasRemove(t *testing.T) {
	f, err := NewCuckooFromEstimates(1000, 0.01)
	require.NoError(t, err)

	for i := range 800 {
		require.NoError(t, f.Add(fmt.Appendf(nil, "c-%d", i)))
	}

	for i := range 800 {
		require.True(t, f.Has(fmt.Appendf(nil, "c-%d", i)), "expected c-%d to be present", i)
	}

	require.NoError(t, f.Remove([]byte("c-0")))
	require.False(t, f.Has([]byte("c-0")))
}

func TestCuckooFilterRemoveNeverAdded(t *testing.T) {
	f, err := NewCuckooFilter(16, defaultBucketSlots, 8)
	require.NoError(t, err)

	err = f.Remove([]byte("ghost"))
	require.Error(t, err)
	require.ErrorIs(t, err, ErrUnknownElement)
}

func TestCuckooFilterCapacityExceeded(t *testing.T) {
	f, err := NewCuckooFilterWithKicks(4, 2, 8, 10)
	require.NoError(t, err)

	var capErr *CapacityExceededError
	inserted := 0
	for i := range 10000 {
		err := f.Add(fmt.Appendf(nil, "overflow-%d", i))
		if err != nil {
			require.ErrorAs(t, err, &capErr)
			break
		}
		inserted++
	}

	require.Greater(t, inserted, 0, "expected at least some insertions before capacity exhaustion")
}

func TestCuckooFilterVictimCachePreservesLastEviction(t *testing.T) {
	f, err := NewCuckooFilterWithKicks(2, 2, 8, 1)
	require.NoError(t, err)

	// Four slots in all, so the fifth Add at the latest exhausts the
	// one-kick budget and pushes a displaced fingerprint into the victim
	// cache.
	var tried [][]byte
	for i := range 8 {
		item := fmt.Appendf(nil, "vc-%d", i)
		tried = append(tried, item)
		if err := f.Add(item); err != nil {
			break
		}
	}

	for _, item := range tried {
		require.True(t, f.Has(item), "expected %s to remain findable after the eviction budget ran out", item)
	}
}

func TestCuckooFilterLoadFactor(t *testing.T) {
	f, err := NewCuckooFromEstimates(500, 0.02)
	require.NoError(t, err)

	require.Equal(t, float64(0), f.LoadFactor())

	f.Add([]byte("one"))
	require.Greater(t, f.LoadFactor(), float64(0))
}

func TestCuckooFilterInvalidParams(t *testing.T) {
	_, err := NewCuckooFilter(0, defaultBucketSlots, 8)
	require.Error(t, err)

	_, err = NewCuckooFilter(16, 0, 8)
	require.Error(t, err)

	_, err = NewCuckooFilter(16, defaultBucketSlots, 0)
	require.Error(t, err)
}
