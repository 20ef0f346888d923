package prompts

import (
	"fmt"
	"log/slog"

	"github.com/soundprediction/pedagogue/pkg/types"
)

const analyzeSystemPrompt = `You are an expert at analyzing educational requests and extracting key information.

Analyze the user's question and extract:
1. The MAIN concept they want to understand (be specific)
2. The scientific/mathematical domain
3. The appropriate complexity level
4. Their learning goal

Return ONLY valid JSON with these exact keys:
- core_concept
- domain
- level (must be: "beginner", "intermediate", or "advanced")
- goal`

// AnalyzeRequest builds the request-analysis prompt that extracts the core
// concept and metadata from free-form user input.
func AnalyzeRequest(logger *slog.Logger, userInput string) []types.Message {
	userPrompt := fmt.Sprintf(`User asked: %q

Return JSON analysis with: core_concept, domain, level, goal

Example:
{
  "core_concept": "quantum entanglement",
  "domain": "physics/quantum mechanics",
  "level": "intermediate",
  "goal": "Understand how entangled particles maintain correlation across distances"
}`, userInput)
	logPrompts(logger, analyzeSystemPrompt, userPrompt)
	return messages(analyzeSystemPrompt, userPrompt)
}
