package explorer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/soundprediction/pedagogue/pkg/types"
	"github.com/soundprediction/pedagogue/pkg/utils"
)

// DefaultMaxDepth bounds recursion when no depth limit is configured.
const DefaultMaxDepth = 5

// Options configures tree exploration limits.
type Options struct {
	// MaxDepth bounds recursion depth; the root is depth 0. Nodes at
	// MaxDepth become depth-truncated leaves.
	MaxDepth int
	// MaxNodes bounds the total node count of the tree. 0 means unlimited.
	MaxNodes int
	// Concurrency bounds sibling fan-out. 0 uses the process-wide default.
	Concurrency int
	// WallClock bounds total exploration time. 0 means unlimited. When the
	// budget runs out, pending subtrees become depth-truncated leaves.
	WallClock time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.Concurrency <= 0 {
		o.Concurrency = utils.GetSemaphoreLimit()
	}
	return o
}

// ConceptClassifier judges whether a concept is foundational.
type ConceptClassifier interface {
	IsFoundation(ctx context.Context, concept string) (bool, error)
}

// PrerequisiteResolver names the prerequisites of a concept.
type PrerequisiteResolver interface {
	Resolve(ctx context.Context, concept string) ([]string, error)
}

var (
	_ ConceptClassifier    = (*Classifier)(nil)
	_ PrerequisiteResolver = (*Resolver)(nil)
	_ PrerequisiteResolver = (*MemoResolver)(nil)
)

// Explorer builds knowledge trees by recursive prerequisite decomposition.
type Explorer struct {
	classifier ConceptClassifier
	resolver   PrerequisiteResolver
	logger     *slog.Logger
	opts       Options
}

// New creates an Explorer from a classifier and resolver.
func New(classifier ConceptClassifier, resolver PrerequisiteResolver, logger *slog.Logger, opts Options) *Explorer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Explorer{
		classifier: classifier,
		resolver:   resolver,
		logger:     logger,
		opts:       opts.withDefaults(),
	}
}

// exploreState carries the shared budget counter and diagnostics collector
// for one exploration run.
type exploreState struct {
	nodeCount atomic.Int64
	maxNodes  int64

	mu    sync.Mutex
	diags types.Diagnostics
}

// acquire claims budget for one more node.
func (st *exploreState) acquire() bool {
	n := st.nodeCount.Add(1)
	return st.maxNodes <= 0 || n <= st.maxNodes
}

func (st *exploreState) addDiagnostic(stage types.Stage, concept string, depth int, err error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.diags = append(st.diags, types.NewDiagnostic(stage, concept, depth, err))
}

// Explore builds the knowledge tree rooted at concept. A failure on the root
// itself is a hard error; failures below the root degrade the affected
// concept into a leaf and are reported in the returned diagnostics.
func (e *Explorer) Explore(ctx context.Context, concept string) (*types.KnowledgeNode, types.Diagnostics, error) {
	if e.opts.WallClock > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.WallClock)
		defer cancel()
	}

	st := &exploreState{maxNodes: int64(e.opts.MaxNodes)}

	start := time.Now()
	root, err := e.explore(ctx, st, concept, 0, nil)
	if err != nil {
		return nil, st.diags, fmt.Errorf("failed to explore root concept %q: %w", concept, err)
	}

	attrs := []any{
		"concept", concept,
		"nodes", root.Count(),
		"max_depth", root.MaxDepth(),
		"duration", time.Since(start).Round(time.Millisecond),
	}
	if m, ok := e.resolver.(*MemoResolver); ok {
		attrs = append(attrs, "distinct_resolved", m.CachedConcepts())
	}
	e.logger.Info("exploration complete", attrs...)

	return root, st.diags, nil
}

// explore recursively decomposes one concept. path holds the normalized
// concepts on the root-to-parent chain; a concept already on the path is a
// cycle and becomes a leaf.
func (e *Explorer) explore(ctx context.Context, st *exploreState, concept string, depth int, path []string) (*types.KnowledgeNode, error) {
	key := types.NormalizeConcept(concept)

	if slices.Contains(path, key) {
		e.logger.Debug("cycle broken", "concept", concept, "depth", depth)
		return types.NewLeaf(concept, depth, types.LeafCycleBroken), nil
	}

	// Budgets exhausted: the subtree is truncated, not failed.
	if ctx.Err() != nil || !st.acquire() {
		return types.NewLeaf(concept, depth, types.LeafDepthTruncated), nil
	}

	if depth >= e.opts.MaxDepth {
		return types.NewLeaf(concept, depth, types.LeafDepthTruncated), nil
	}

	ctx = context.WithValue(ctx, types.ContextKeyConcept, concept)

	isFoundation, err := e.classifier.IsFoundation(
		context.WithValue(ctx, types.ContextKeyStage, types.StageClassify), concept)
	if err != nil {
		if !isBudgetErr(err) {
			st.addDiagnostic(types.StageClassify, concept, depth, err)
		}
		return nil, fmt.Errorf("classification of %q failed: %w", concept, err)
	}

	if isFoundation {
		return types.NewLeaf(concept, depth, types.LeafFoundation), nil
	}

	prereqs, err := e.resolver.Resolve(
		context.WithValue(ctx, types.ContextKeyStage, types.StageResolve), concept)
	if err != nil {
		if !isBudgetErr(err) {
			st.addDiagnostic(types.StageResolve, concept, depth, err)
		}
		return nil, fmt.Errorf("prerequisite resolution of %q failed: %w", concept, err)
	}

	// Nothing left to learn first: the oracle considers it self-contained.
	if len(prereqs) == 0 {
		return types.NewLeaf(concept, depth, types.LeafFoundation), nil
	}

	node := types.NewKnowledgeNode(concept, depth)
	childPath := append(slices.Clone(path), key)

	fns := make([]func() (*types.KnowledgeNode, error), len(prereqs))
	for i, prereq := range prereqs {
		prereq := prereq
		fns[i] = func() (*types.KnowledgeNode, error) {
			child, err := e.explore(ctx, st, prereq, depth+1, childPath)
			if err != nil {
				if isBudgetErr(err) {
					return types.NewLeaf(prereq, depth+1, types.LeafDepthTruncated), nil
				}
				// Node-local failure: degrade to a leaf and keep building.
				e.logger.Warn("degrading failed concept to leaf",
					"concept", prereq, "depth", depth+1, "error", err)
				return types.NewLeaf(prereq, depth+1, types.LeafFoundation), nil
			}
			return child, nil
		}
	}

	results, errs := utils.ExecuteWithResults(ctx, e.opts.Concurrency, fns...)
	for i := range results {
		if errs[i] != nil {
			// The semaphore wait was cancelled before the child ran.
			node.Prerequisites = append(node.Prerequisites,
				types.NewLeaf(prereqs[i], depth+1, types.LeafDepthTruncated))
			continue
		}
		node.Prerequisites = append(node.Prerequisites, results[i])
	}

	return node, nil
}

// isBudgetErr reports whether an error is budget exhaustion rather than a
// genuine oracle failure.
func isBudgetErr(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
