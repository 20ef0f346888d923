package enrich

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/pedagogue/pkg/nlp"
	"github.com/soundprediction/pedagogue/pkg/types"
)

var conceptRe = regexp.MustCompile(`Concept: (.+)`)

// scriptedOracle answers enrichment prompts with canned JSON keyed by the
// concept named in the prompt.
type scriptedOracle struct {
	mu       sync.Mutex
	requests []string
	fail     map[string]bool
	respond  func(concept string) string
}

func (o *scriptedOracle) Chat(ctx context.Context, messages []types.Message) (*types.Response, error) {
	user := messages[len(messages)-1].Content
	match := conceptRe.FindStringSubmatch(user)
	if match == nil {
		return nil, fmt.Errorf("no concept in prompt")
	}
	concept := match[1]

	o.mu.Lock()
	o.requests = append(o.requests, concept)
	o.mu.Unlock()

	if o.fail[concept] {
		return nil, fmt.Errorf("oracle unavailable")
	}
	return &types.Response{Content: o.respond(concept), Model: "scripted"}, nil
}

func (o *scriptedOracle) GetCapabilities() []nlp.TaskCapability {
	return []nlp.TaskCapability{nlp.TaskTextGeneration}
}

func (o *scriptedOracle) Close() error { return nil }

func (o *scriptedOracle) requestedConcepts() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.requests...)
}

func mathJSON(concept string) string {
	return fmt.Sprintf(`{
		"equations": ["$%s = 1$"],
		"definitions": {"x": "placeholder"},
		"interpretation": "meaning of %s",
		"examples": ["example for %s"],
		"typical_values": {"x": "1 unit"}
	}`, concept, concept, concept)
}

// circleTree builds the small fixture tree used across enrichment tests.
func circleTree() *types.KnowledgeNode {
	root := types.NewKnowledgeNode("area of a circle", 0)
	circle := types.NewKnowledgeNode("circle", 1)
	circle.Prerequisites = []*types.KnowledgeNode{
		types.NewLeaf("point", 2, types.LeafFoundation),
		types.NewLeaf("distance", 2, types.LeafFoundation),
	}
	root.Prerequisites = []*types.KnowledgeNode{
		circle,
		types.NewLeaf("multiplication", 1, types.LeafFoundation),
	}
	return root
}

func TestMathEnricherEnrichesAllNodes(t *testing.T) {
	oracle := &scriptedOracle{respond: mathJSON}
	enricher := NewMathEnricher(oracle, nil, 2)

	root := circleTree()
	diags := enricher.EnrichTree(context.Background(), root)
	assert.Empty(t, diags)

	root.Walk(func(n *types.KnowledgeNode) bool {
		assert.NotEmpty(t, n.Equations, "node %q should have equations", n.Concept)
		require.NotNil(t, n.VisualSpec, "node %q should have a visual spec", n.Concept)
		assert.Contains(t, n.VisualSpec.Interpretation, n.Concept)
		return true
	})

	assert.Len(t, oracle.requestedConcepts(), 5)
}

func TestMathEnricherSkipsEnrichedNodes(t *testing.T) {
	oracle := &scriptedOracle{respond: mathJSON}
	enricher := NewMathEnricher(oracle, nil, 2)

	root := circleTree()
	root.Prerequisites[0].Equations = []string{"$x^2 + y^2 = r^2$"}

	enricher.EnrichTree(context.Background(), root)

	assert.NotContains(t, oracle.requestedConcepts(), "circle",
		"already-enriched node must not be re-requested")
	assert.Equal(t, []string{"$x^2 + y^2 = r^2$"}, root.Prerequisites[0].Equations)
}

func TestMathEnricherFailureDegradesNodeOnly(t *testing.T) {
	oracle := &scriptedOracle{
		respond: mathJSON,
		fail:    map[string]bool{"circle": true},
	}
	enricher := NewMathEnricher(oracle, nil, 2)

	root := circleTree()
	diags := enricher.EnrichTree(context.Background(), root)

	require.Len(t, diags, 1)
	assert.Equal(t, types.StageEnrich, diags[0].Stage)
	assert.Equal(t, "circle", diags[0].Concept)

	// The failed node carries no equations but the rest of the tree does.
	assert.Empty(t, root.Prerequisites[0].Equations)
	assert.NotEmpty(t, root.Equations)
	assert.NotEmpty(t, root.Prerequisites[1].Equations)
}

func TestMathEnricherComplexityByFoundation(t *testing.T) {
	var prompts []string
	var mu sync.Mutex
	oracle := &scriptedOracle{respond: mathJSON}
	capture := &promptCapturingOracle{inner: oracle, prompts: &prompts, mu: &mu}
	enricher := NewMathEnricher(capture, nil, 1)

	root := types.NewKnowledgeNode("fourier transform", 0)
	root.Prerequisites = []*types.KnowledgeNode{
		types.NewLeaf("multiplication", 1, types.LeafFoundation),
	}
	enricher.EnrichTree(context.Background(), root)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, prompts, 2)
	joined := prompts[0] + "\n---\n" + prompts[1]
	assert.Contains(t, joined, "undergraduate/graduate level")
	assert.Contains(t, joined, "high school level")
}

type promptCapturingOracle struct {
	inner   nlp.Client
	prompts *[]string
	mu      *sync.Mutex
}

func (p *promptCapturingOracle) Chat(ctx context.Context, messages []types.Message) (*types.Response, error) {
	p.mu.Lock()
	*p.prompts = append(*p.prompts, messages[len(messages)-1].Content)
	p.mu.Unlock()
	return p.inner.Chat(ctx, messages)
}

func (p *promptCapturingOracle) GetCapabilities() []nlp.TaskCapability {
	return p.inner.GetCapabilities()
}

func (p *promptCapturingOracle) Close() error { return p.inner.Close() }
