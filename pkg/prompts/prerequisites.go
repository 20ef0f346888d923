package prompts

import (
	"fmt"
	"log/slog"

	"github.com/soundprediction/pedagogue/pkg/types"
)

const prerequisitesSystemPrompt = `You are an expert educator and curriculum designer.

Your task is to identify the ESSENTIAL prerequisite concepts someone must
understand BEFORE they can grasp a given concept.

Rules:
1. Only list concepts that are NECESSARY for understanding (not just helpful)
2. Order from most to least important
3. Assume high school education as baseline (don't list truly basic things)
4. Focus on concepts that enable understanding, not just historical context
5. Be specific - prefer "special relativity" over "relativity"
6. Limit to 2-6 prerequisites maximum

Return ONLY a JSON array of concept names, nothing else.`

// DiscoverPrerequisites builds the prerequisite resolution prompt.
func DiscoverPrerequisites(logger *slog.Logger, concept string) []types.Message {
	userPrompt := fmt.Sprintf(`To understand %q, what are the 2-6 ESSENTIAL prerequisite concepts?

Return format: ["concept1", "concept2", "concept3"]`, concept)
	logPrompts(logger, prerequisitesSystemPrompt, userPrompt)
	return messages(prerequisitesSystemPrompt, userPrompt)
}
