package prompts

import (
	"fmt"
	"log/slog"

	"github.com/soundprediction/pedagogue/pkg/types"
)

const enrichMathSystemPrompt = `You are an expert mathematician and physicist who excels at
presenting mathematical concepts with perfect LaTeX notation.

Your task is to provide the key mathematical formulations for a concept,
formatted for use in Manim animations.

Important LaTeX guidelines:
- Use raw string format: r"$\frac{a}{b}$"
- Double backslashes for LaTeX commands
- Use proper LaTeX math mode delimiters
- Ensure all equations are syntactically correct
- Use MathTex-compatible notation

Return ONLY valid JSON with these exact keys:
- equations: List of LaTeX strings (2-5 key equations)
- definitions: Dict of variable/symbol definitions
- interpretation: Physical or mathematical meaning
- examples: List of worked examples (1-2)
- typical_values: Dict of typical magnitudes/values`

// EnrichMath builds the mathematical enrichment prompt for a concept.
// Foundational concepts get high-school-level treatment, everything else
// undergraduate/graduate.
func EnrichMath(logger *slog.Logger, concept string, isFoundation bool, depth int) []types.Message {
	complexity := "undergraduate/graduate level"
	if isFoundation {
		complexity = "high school level"
	}

	userPrompt := fmt.Sprintf(`Concept: %s
Complexity level: %s
Depth in knowledge tree: %d (0=advanced, higher=more foundational)

Provide the mathematical content for this concept suitable for a Manim animation.

Return JSON format:
{
  "equations": ["$equation1$", "$equation2$"],
  "definitions": {"symbol": "meaning"},
  "interpretation": "What this equation physically/mathematically means",
  "examples": ["Example 1 calculation", "Example 2 calculation"],
  "typical_values": {"quantity": "typical value with units"}
}

Example response for "Newton's Second Law":
{
  "equations": ["$\\vec{F} = m\\vec{a}$", "$F = ma \\text{ (1D form)}$"],
  "definitions": {
    "F": "Force (Newtons)",
    "m": "Mass (kilograms)",
    "a": "Acceleration (m/s²)"
  },
  "interpretation": "Force equals mass times acceleration - the acceleration of an object is directly proportional to the net force and inversely proportional to its mass",
  "examples": [
    "A 10 kg object with 20 N force: a = F/m = 20/10 = 2 m/s²",
    "A 2 kg object accelerating at 5 m/s²: F = ma = 2×5 = 10 N"
  ],
  "typical_values": {
    "Human mass": "50-100 kg",
    "Gravitational acceleration": "9.8 m/s²"
  }
}`, concept, complexity, depth)
	logPrompts(logger, enrichMathSystemPrompt, userPrompt)
	return messages(enrichMathSystemPrompt, userPrompt)
}
