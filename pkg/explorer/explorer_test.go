package explorer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/pedagogue/pkg/types"
)

// fakeClassifier answers from a fixed set of foundational concepts.
type fakeClassifier struct {
	foundations map[string]bool
	failures    map[string]error
	calls       atomic.Int64
}

func (f *fakeClassifier) IsFoundation(ctx context.Context, concept string) (bool, error) {
	f.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return false, err
	}
	key := types.NormalizeConcept(concept)
	if err, ok := f.failures[key]; ok {
		return false, err
	}
	return f.foundations[key], nil
}

// fakeResolver answers from a fixed prerequisite graph and counts calls per
// concept.
type fakeResolver struct {
	graph    map[string][]string
	failures map[string]error
	delay    time.Duration

	mu    sync.Mutex
	calls map[string]int
}

func (f *fakeResolver) Resolve(ctx context.Context, concept string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	key := types.NormalizeConcept(concept)

	f.mu.Lock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[key]++
	f.mu.Unlock()

	if err, ok := f.failures[key]; ok {
		return nil, err
	}
	return f.graph[key], nil
}

func (f *fakeResolver) callCount(concept string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[types.NormalizeConcept(concept)]
}

// circleWorld is the canonical test fixture: "area of a circle" decomposes
// into circle and multiplication, circle into point and distance.
func circleWorld() (*fakeClassifier, *fakeResolver) {
	classifier := &fakeClassifier{
		foundations: map[string]bool{
			"point":          true,
			"distance":       true,
			"multiplication": true,
		},
	}
	resolver := &fakeResolver{
		graph: map[string][]string{
			"area of a circle": {"circle", "multiplication"},
			"circle":           {"point", "distance"},
		},
	}
	return classifier, resolver
}

func findChild(t *testing.T, node *types.KnowledgeNode, concept string) *types.KnowledgeNode {
	t.Helper()
	for _, child := range node.Prerequisites {
		if child.Normalized() == types.NormalizeConcept(concept) {
			return child
		}
	}
	t.Fatalf("child %q not found under %q", concept, node.Concept)
	return nil
}

func TestExploreBuildsTree(t *testing.T) {
	classifier, resolver := circleWorld()
	e := New(classifier, resolver, nil, Options{MaxDepth: 5, Concurrency: 2})

	root, diags, err := e.Explore(context.Background(), "area of a circle")
	require.NoError(t, err)
	assert.Empty(t, diags)

	assert.Equal(t, "area of a circle", root.Concept)
	assert.Equal(t, 0, root.Depth)
	require.Len(t, root.Prerequisites, 2)

	// Discovery order is preserved.
	assert.Equal(t, "circle", root.Prerequisites[0].Concept)
	assert.Equal(t, "multiplication", root.Prerequisites[1].Concept)

	circle := root.Prerequisites[0]
	require.Len(t, circle.Prerequisites, 2)
	assert.Equal(t, types.LeafFoundation, findChild(t, circle, "point").LeafReason)
	assert.True(t, findChild(t, circle, "distance").IsFoundation)

	mult := root.Prerequisites[1]
	assert.True(t, mult.IsLeaf())
	assert.Equal(t, types.LeafFoundation, mult.LeafReason)

	assert.Equal(t, 5, root.Count())
}

func TestExploreDepthBound(t *testing.T) {
	// a -> b -> c -> d -> ... never foundational.
	classifier := &fakeClassifier{foundations: map[string]bool{}}
	resolver := &fakeResolver{graph: map[string][]string{
		"a": {"b"}, "b": {"c"}, "c": {"d"}, "d": {"e"}, "e": {"f"}, "f": {"g"},
	}}
	e := New(classifier, resolver, nil, Options{MaxDepth: 3, Concurrency: 1})

	root, _, err := e.Explore(context.Background(), "a")
	require.NoError(t, err)

	assert.Equal(t, 3, root.MaxDepth())
	deepest := root.Prerequisites[0].Prerequisites[0].Prerequisites[0]
	assert.Equal(t, "d", deepest.Concept)
	assert.True(t, deepest.IsLeaf())
	assert.Equal(t, types.LeafDepthTruncated, deepest.LeafReason)
	assert.False(t, deepest.IsFoundation, "depth truncation is not a foundation claim")
}

func TestExploreMemoizesSharedConcepts(t *testing.T) {
	// Both branches require "algebra"; the resolver must be asked once.
	classifier := &fakeClassifier{foundations: map[string]bool{
		"arithmetic": true, "symbols": true,
	}}
	resolver := &fakeResolver{graph: map[string][]string{
		"calculus": {"limits", "functions"},
		"limits":   {"Algebra"},
		"functions": {"algebra"},
		"algebra":  {"arithmetic", "symbols"},
	}}

	memo := NewMemoResolver(resolver)
	e := New(classifier, memo, nil, Options{MaxDepth: 5, Concurrency: 4})

	root, _, err := e.Explore(context.Background(), "calculus")
	require.NoError(t, err)

	assert.Equal(t, 1, resolver.callCount("algebra"),
		"normalized concept should be resolved exactly once")

	// The tree still materializes the shared concept in both branches.
	limits := findChild(t, root, "limits")
	functions := findChild(t, root, "functions")
	assert.Equal(t, "algebra", types.NormalizeConcept(limits.Prerequisites[0].Concept))
	assert.Equal(t, "algebra", types.NormalizeConcept(functions.Prerequisites[0].Concept))
}

func TestExploreBreaksCycles(t *testing.T) {
	classifier := &fakeClassifier{foundations: map[string]bool{}}
	resolver := &fakeResolver{graph: map[string][]string{
		"a": {"b"},
		"b": {"a"},
	}}
	e := New(classifier, resolver, nil, Options{MaxDepth: 10, Concurrency: 1})

	root, _, err := e.Explore(context.Background(), "a")
	require.NoError(t, err)

	b := root.Prerequisites[0]
	require.Len(t, b.Prerequisites, 1)
	cycleLeaf := b.Prerequisites[0]
	assert.Equal(t, "a", cycleLeaf.Concept)
	assert.True(t, cycleLeaf.IsLeaf())
	assert.Equal(t, types.LeafCycleBroken, cycleLeaf.LeafReason)
}

func TestExploreCycleOnlyOnCurrentPath(t *testing.T) {
	// "shared" appears in two sibling branches; that is repetition, not a
	// cycle, and both branches get the full subtree.
	classifier := &fakeClassifier{foundations: map[string]bool{"base": true}}
	resolver := &fakeResolver{graph: map[string][]string{
		"root":   {"left", "right"},
		"left":   {"shared"},
		"right":  {"shared"},
		"shared": {"base"},
	}}
	e := New(classifier, resolver, nil, Options{MaxDepth: 5, Concurrency: 2})

	root, _, err := e.Explore(context.Background(), "root")
	require.NoError(t, err)

	for _, branch := range root.Prerequisites {
		shared := branch.Prerequisites[0]
		assert.NotEqual(t, types.LeafCycleBroken, shared.LeafReason)
		require.Len(t, shared.Prerequisites, 1, "shared subtree expanded in branch %q", branch.Concept)
	}
}

func TestExploreDegradesFailedChild(t *testing.T) {
	classifier, resolver := circleWorld()
	classifier.failures = map[string]error{
		"circle": errors.New("oracle unavailable"),
	}
	e := New(classifier, resolver, nil, Options{MaxDepth: 5, Concurrency: 2})

	root, diags, err := e.Explore(context.Background(), "area of a circle")
	require.NoError(t, err, "child failure must not fail the run")

	circle := findChild(t, root, "circle")
	assert.True(t, circle.IsLeaf())
	assert.Equal(t, types.LeafFoundation, circle.LeafReason)

	require.Len(t, diags, 1)
	assert.Equal(t, types.StageClassify, diags[0].Stage)
	assert.Equal(t, "circle", diags[0].Concept)

	// The sibling is unaffected.
	mult := findChild(t, root, "multiplication")
	assert.Equal(t, types.LeafFoundation, mult.LeafReason)
}

func TestExploreRootFailureIsHard(t *testing.T) {
	classifier, resolver := circleWorld()
	resolver.failures = map[string]error{
		"area of a circle": errors.New("oracle unavailable"),
	}
	e := New(classifier, resolver, nil, Options{MaxDepth: 5, Concurrency: 2})

	root, _, err := e.Explore(context.Background(), "area of a circle")
	require.Error(t, err)
	assert.Nil(t, root)
}

func TestExploreNodeBudget(t *testing.T) {
	classifier := &fakeClassifier{foundations: map[string]bool{}}
	resolver := &fakeResolver{graph: map[string][]string{
		"a": {"b", "c"}, "b": {"d", "e"}, "c": {"f", "g"},
		"d": {"h"}, "e": {"h"}, "f": {"h"}, "g": {"h"},
	}}
	e := New(classifier, resolver, nil, Options{MaxDepth: 10, MaxNodes: 3, Concurrency: 1})

	root, _, err := e.Explore(context.Background(), "a")
	require.NoError(t, err)

	expanded, truncated := 0, 0
	root.Walk(func(n *types.KnowledgeNode) bool {
		if n.LeafReason == types.LeafDepthTruncated {
			truncated++
		} else {
			expanded++
		}
		return true
	})
	assert.LessOrEqual(t, expanded, 3, "expanded nodes must respect the budget")
	assert.Greater(t, truncated, 0, "budget exhaustion must surface as truncated leaves")
}

func TestExploreWallClockBudget(t *testing.T) {
	classifier := &fakeClassifier{foundations: map[string]bool{}}
	resolver := &fakeResolver{
		graph: map[string][]string{
			"a": {"b"}, "b": {"c"}, "c": {"d"}, "d": {"e"}, "e": {"f"},
		},
		delay: 30 * time.Millisecond,
	}
	e := New(classifier, resolver, nil, Options{
		MaxDepth:    10,
		Concurrency: 1,
		WallClock:   75 * time.Millisecond,
	})

	root, _, err := e.Explore(context.Background(), "a")
	require.NoError(t, err, "wall clock expiry yields a partial tree, not an error")

	assert.Less(t, root.MaxDepth(), 5, "deep levels should have been cut off")
	leaves := root.Leaves()
	require.NotEmpty(t, leaves)
	last := leaves[len(leaves)-1]
	assert.Equal(t, types.LeafDepthTruncated, last.LeafReason)
}

func TestExploreConcurrencyLimit(t *testing.T) {
	var current, peak int64
	classifier := &fakeClassifier{foundations: map[string]bool{}}

	graph := map[string][]string{
		"root": {"c1", "c2", "c3", "c4", "c5", "c6"},
	}
	resolver := &trackingResolver{
		inner:   &fakeResolver{graph: graph},
		current: &current,
		peak:    &peak,
	}

	e := New(classifier, resolver, nil, Options{MaxDepth: 2, Concurrency: 2})
	_, _, err := e.Explore(context.Background(), "root")
	require.NoError(t, err)

	assert.LessOrEqual(t, atomic.LoadInt64(&peak), int64(2),
		"sibling fan-out must respect the concurrency limit")
}

// trackingResolver records peak concurrent Resolve calls.
type trackingResolver struct {
	inner   PrerequisiteResolver
	current *int64
	peak    *int64
}

func (tr *trackingResolver) Resolve(ctx context.Context, concept string) ([]string, error) {
	n := atomic.AddInt64(tr.current, 1)
	for {
		p := atomic.LoadInt64(tr.peak)
		if n <= p || atomic.CompareAndSwapInt64(tr.peak, p, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	defer atomic.AddInt64(tr.current, -1)
	return tr.inner.Resolve(ctx, concept)
}
