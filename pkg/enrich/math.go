package enrich

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/soundprediction/pedagogue/pkg/nlp"
	"github.com/soundprediction/pedagogue/pkg/prompts"
	"github.com/soundprediction/pedagogue/pkg/types"
	"github.com/soundprediction/pedagogue/pkg/utils"
)

// MathEnricher attaches equations, symbol definitions, and interpretation to
// every node of a knowledge tree. Nodes are independent, so they are enriched
// in parallel under a concurrency bound.
type MathEnricher struct {
	client      nlp.Client
	logger      *slog.Logger
	concurrency int
}

// NewMathEnricher creates a math enricher backed by the given oracle client.
func NewMathEnricher(client nlp.Client, logger *slog.Logger, concurrency int) *MathEnricher {
	if logger == nil {
		logger = slog.Default()
	}
	if concurrency <= 0 {
		concurrency = utils.GetSemaphoreLimit()
	}
	return &MathEnricher{client: client, logger: logger, concurrency: concurrency}
}

// EnrichTree enriches every node of the tree in place. Nodes that already
// carry equations are left alone, so re-running after a partial failure only
// fills the gaps. Failures degrade the affected node and are reported as
// diagnostics.
func (m *MathEnricher) EnrichTree(ctx context.Context, root *types.KnowledgeNode) types.Diagnostics {
	var pending []*types.KnowledgeNode
	root.Walk(func(n *types.KnowledgeNode) bool {
		if len(n.Equations) == 0 {
			pending = append(pending, n)
		}
		return true
	})

	if len(pending) == 0 {
		return nil
	}

	start := time.Now()
	m.logger.Info("enriching mathematical content", "nodes", len(pending), "concurrency", m.concurrency)

	var mu sync.Mutex
	var diags types.Diagnostics

	pool := utils.NewWorkerPool(m.concurrency, func(ctx context.Context, node *types.KnowledgeNode) (struct{}, error) {
		if err := m.enrichNode(ctx, node); err != nil {
			mu.Lock()
			diags = append(diags, types.NewDiagnostic(types.StageEnrich, node.Concept, node.Depth, err))
			mu.Unlock()
			m.logger.Warn("mathematical enrichment failed", "concept", node.Concept, "error", err)
		}
		return struct{}{}, nil
	})
	pool.ProcessItems(ctx, pending)

	m.logger.Info("mathematical enrichment complete",
		"nodes", len(pending),
		"failed", len(diags),
		"duration", time.Since(start).Round(time.Millisecond))

	return diags
}

func (m *MathEnricher) enrichNode(ctx context.Context, node *types.KnowledgeNode) error {
	ctx = context.WithValue(ctx, types.ContextKeyStage, types.StageEnrich)
	ctx = context.WithValue(ctx, types.ContextKeyConcept, node.Concept)

	msgs := prompts.EnrichMath(m.logger, node.Concept, node.IsFoundation, node.Depth)

	var content prompts.MathContent
	if err := nlp.GenerateJSON(ctx, m.client, msgs, &content); err != nil {
		return err
	}

	node.Equations = content.Equations
	node.Definitions = content.Definitions

	if node.VisualSpec == nil {
		node.VisualSpec = &types.VisualSpec{}
	}
	node.VisualSpec.Interpretation = content.Interpretation
	node.VisualSpec.Examples = content.Examples
	node.VisualSpec.TypicalValues = content.TypicalValues

	return nil
}
