package explorer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/soundprediction/pedagogue/pkg/nlp"
	"github.com/soundprediction/pedagogue/pkg/prompts"
	"github.com/soundprediction/pedagogue/pkg/types"
)

// MaxPrerequisites caps how many prerequisites a single concept expands into.
const MaxPrerequisites = 6

// Resolver names the essential prerequisites of a concept by asking the
// oracle. Wrap it in a MemoResolver to deduplicate calls across branches.
type Resolver struct {
	client nlp.Client
	logger *slog.Logger
}

// NewResolver creates a resolver backed by the given oracle client.
func NewResolver(client nlp.Client, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{client: client, logger: logger}
}

// Resolve returns the prerequisite concepts for a concept, at most
// MaxPrerequisites of them.
func (r *Resolver) Resolve(ctx context.Context, concept string) ([]string, error) {
	msgs := prompts.DiscoverPrerequisites(r.logger, concept)

	var resp prompts.PrerequisitesResponse
	if err := nlp.GenerateJSON(ctx, r.client, msgs, &resp); err != nil {
		return nil, fmt.Errorf("failed to resolve prerequisites for %q: %w", concept, err)
	}

	prereqs := cleanPrerequisites(resp.Prerequisites, concept)
	if len(prereqs) > MaxPrerequisites {
		prereqs = prereqs[:MaxPrerequisites]
	}

	r.logger.Debug("resolved prerequisites", "concept", concept, "count", len(prereqs))
	return prereqs, nil
}

// MemoResolver memoizes another resolver by normalized concept name.
// Concurrent requests for the same concept are coalesced into a single
// underlying call; failed resolutions are not cached, so a later request
// retries.
type MemoResolver struct {
	inner PrerequisiteResolver

	mu       sync.Mutex
	cache    map[string][]string
	inflight map[string]*inflightResolve
}

type inflightResolve struct {
	done    chan struct{}
	prereqs []string
	err     error
}

// NewMemoResolver wraps a resolver with memoization and request coalescing.
func NewMemoResolver(inner PrerequisiteResolver) *MemoResolver {
	return &MemoResolver{
		inner:    inner,
		cache:    make(map[string][]string),
		inflight: make(map[string]*inflightResolve),
	}
}

// Resolve implements PrerequisiteResolver.
func (m *MemoResolver) Resolve(ctx context.Context, concept string) ([]string, error) {
	key := types.NormalizeConcept(concept)

	m.mu.Lock()
	if cached, ok := m.cache[key]; ok {
		m.mu.Unlock()
		return cached, nil
	}
	if fl, ok := m.inflight[key]; ok {
		m.mu.Unlock()
		select {
		case <-fl.done:
			return fl.prereqs, fl.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	fl := &inflightResolve{done: make(chan struct{})}
	m.inflight[key] = fl
	m.mu.Unlock()

	prereqs, err := m.inner.Resolve(ctx, concept)

	m.mu.Lock()
	delete(m.inflight, key)
	if err == nil {
		m.cache[key] = prereqs
	}
	m.mu.Unlock()

	fl.prereqs = prereqs
	fl.err = err
	close(fl.done)

	return prereqs, err
}

// CachedConcepts returns how many distinct concepts have been resolved.
func (m *MemoResolver) CachedConcepts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.cache)
}

// cleanPrerequisites drops empty names, self-references, and duplicates
// while preserving the oracle's ordering.
func cleanPrerequisites(raw []string, concept string) []string {
	self := types.NormalizeConcept(concept)
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))

	for _, name := range raw {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			continue
		}
		key := types.NormalizeConcept(trimmed)
		if key == self {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}
