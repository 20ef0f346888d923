package explorer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/soundprediction/pedagogue/pkg/nlp"
	"github.com/soundprediction/pedagogue/pkg/prompts"
	"github.com/soundprediction/pedagogue/pkg/types"
)

// Analyzer extracts the core concept and metadata from a free-form request.
type Analyzer struct {
	client nlp.Client
	logger *slog.Logger
}

// NewAnalyzer creates an analyzer backed by the given oracle client.
func NewAnalyzer(client nlp.Client, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{client: client, logger: logger}
}

// Analyze parses user input into a target concept, domain, level, and goal.
// When the oracle call fails the raw input is used as the concept so the
// pipeline can still proceed.
func (a *Analyzer) Analyze(ctx context.Context, userInput string) (*types.Analysis, error) {
	trimmed := strings.TrimSpace(userInput)
	if trimmed == "" {
		return nil, fmt.Errorf("empty request")
	}

	msgs := prompts.AnalyzeRequest(a.logger, trimmed)

	var resp prompts.AnalysisResponse
	if err := nlp.GenerateJSON(ctx, a.client, msgs, &resp); err != nil {
		a.logger.Warn("request analysis failed, using raw input as concept", "error", err)
		return &types.Analysis{
			CoreConcept: trimmed,
			Domain:      "general",
			Level:       "intermediate",
			Goal:        fmt.Sprintf("Understand %s", trimmed),
		}, nil
	}

	if err := resp.Validate(); err != nil {
		a.logger.Warn("analysis missing core concept, using raw input", "error", err)
		resp.CoreConcept = trimmed
	}

	analysis := &types.Analysis{
		CoreConcept: resp.CoreConcept,
		Domain:      resp.Domain,
		Level:       resp.Level,
		Goal:        resp.Goal,
	}

	a.logger.Info("analyzed request",
		"concept", analysis.CoreConcept,
		"domain", analysis.Domain,
		"level", analysis.Level)

	return analysis, nil
}
