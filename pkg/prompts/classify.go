package prompts

import (
	"fmt"
	"log/slog"

	"github.com/soundprediction/pedagogue/pkg/types"
)

const classifySystemPrompt = `You are an expert educator analyzing whether a concept is foundational.

A concept is foundational if a typical high school graduate would understand it
without further mathematical or scientific explanation.

Examples of foundational concepts:
- velocity, distance, time, acceleration
- force, mass, energy
- waves, frequency, wavelength
- numbers, addition, multiplication
- basic geometry (points, lines, angles)
- functions, graphs

Examples of non-foundational concepts:
- Lorentz transformations
- gauge theory
- differential geometry
- tensor calculus
- quantum operators
- Hilbert spaces`

// ClassifyConcept builds the yes/no foundational-concept judgment prompt.
func ClassifyConcept(logger *slog.Logger, concept string) []types.Message {
	userPrompt := fmt.Sprintf("Is %q a foundational concept?\n\nAnswer with ONLY \"yes\" or \"no\".", concept)
	logPrompts(logger, classifySystemPrompt, userPrompt)
	return messages(classifySystemPrompt, userPrompt)
}
