package explorer

import (
	"context"
	"log/slog"

	"github.com/soundprediction/pedagogue/pkg/nlp"
	"github.com/soundprediction/pedagogue/pkg/prompts"
)

// Classifier decides whether a concept is foundational, meaning a typical
// high school graduate would understand it without further explanation.
type Classifier struct {
	client nlp.Client
	logger *slog.Logger
}

// NewClassifier creates a classifier backed by the given oracle client.
func NewClassifier(client nlp.Client, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{client: client, logger: logger}
}

// IsFoundation asks the oracle for a yes/no judgment on the concept.
func (c *Classifier) IsFoundation(ctx context.Context, concept string) (bool, error) {
	msgs := prompts.ClassifyConcept(c.logger, concept)

	answer, err := nlp.GenerateBoolean(ctx, c.client, msgs)
	if err != nil {
		return false, err
	}

	c.logger.Debug("classified concept", "concept", concept, "is_foundation", answer)
	return answer, nil
}
