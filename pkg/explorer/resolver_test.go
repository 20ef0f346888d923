package explorer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoResolverCoalescesConcurrentRequests(t *testing.T) {
	inner := &fakeResolver{
		graph: map[string][]string{"algebra": {"arithmetic"}},
		delay: 20 * time.Millisecond,
	}
	memo := NewMemoResolver(inner)

	var wg sync.WaitGroup
	results := make([][]string, 8)
	for i := 0; i < 8; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := memo.Resolve(context.Background(), "Algebra")
			assert.NoError(t, err)
			results[i] = got
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, inner.callCount("algebra"),
		"concurrent requests for one concept must coalesce")
	for _, got := range results {
		assert.Equal(t, []string{"arithmetic"}, got)
	}
	assert.Equal(t, 1, memo.CachedConcepts())
}

func TestMemoResolverDoesNotCacheFailures(t *testing.T) {
	inner := &fakeResolver{
		graph:    map[string][]string{"algebra": {"arithmetic"}},
		failures: map[string]error{"algebra": errors.New("oracle unavailable")},
	}
	memo := NewMemoResolver(inner)

	_, err := memo.Resolve(context.Background(), "algebra")
	require.Error(t, err)

	// Clear the failure; the next request should retry, not replay the error.
	inner.failures = nil
	got, err := memo.Resolve(context.Background(), "algebra")
	require.NoError(t, err)
	assert.Equal(t, []string{"arithmetic"}, got)
	assert.Equal(t, 2, inner.callCount("algebra"))
}

func TestCleanPrerequisites(t *testing.T) {
	got := cleanPrerequisites(
		[]string{" circle ", "Circle", "", "area of a circle", "distance"},
		"Area of a Circle",
	)
	assert.Equal(t, []string{"circle", "distance"}, got)
}
