package pedagogue

import (
	"context"

	"github.com/soundprediction/pedagogue/pkg/compose"
	"github.com/soundprediction/pedagogue/pkg/enrich"
	"github.com/soundprediction/pedagogue/pkg/explorer"
	"github.com/soundprediction/pedagogue/pkg/types"
)

// This file defines focused interfaces for the pipeline stages. The Client
// is composed from these; consumers should depend on the smallest interface
// that meets their needs.

// RequestAnalyzer parses a free-text learning request into a target concept
// with domain and level metadata.
type RequestAnalyzer interface {
	Analyze(ctx context.Context, userInput string) (*types.Analysis, error)
}

// TreeExplorer builds a prerequisite knowledge tree for a concept. Failures
// below the root degrade the affected branch and are reported as
// diagnostics; a root failure is an error.
type TreeExplorer interface {
	Explore(ctx context.Context, concept string) (*types.KnowledgeNode, types.Diagnostics, error)
}

// TreeEnricher attaches mathematical content to every node of a tree in
// place.
type TreeEnricher interface {
	EnrichTree(ctx context.Context, root *types.KnowledgeNode) types.Diagnostics
}

// TreeDesigner attaches visual specifications to every node of a tree in
// place, parent before children.
type TreeDesigner interface {
	DesignTree(ctx context.Context, root *types.KnowledgeNode) types.Diagnostics
}

// NarrativeComposer linearizes an enriched tree into the final animation
// specification document.
type NarrativeComposer interface {
	Compose(ctx context.Context, root *types.KnowledgeNode) (*types.Narrative, types.Diagnostics, error)
}

// Generator is the full pipeline surface exposed by Client.
type Generator interface {
	Generate(ctx context.Context, input string) (*Result, error)
	GenerateWithOptions(ctx context.Context, input string, opts GenerateOptions) (*Result, error)
	Close() error
}

var (
	_ RequestAnalyzer   = (*explorer.Analyzer)(nil)
	_ TreeExplorer      = (*explorer.Explorer)(nil)
	_ TreeEnricher      = (*enrich.MathEnricher)(nil)
	_ TreeDesigner      = (*enrich.VisualDesigner)(nil)
	_ NarrativeComposer = (*compose.Composer)(nil)
	_ Generator         = (*Client)(nil)
)
