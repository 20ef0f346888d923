package prompts

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/soundprediction/pedagogue/pkg/types"
)

const narrativeSystemPrompt = `You are an expert educational animator who writes detailed,
LaTeX-rich prompts for Manim Community Edition animations.

Your narrative segments should:
1. Connect naturally to what was just explained
2. Introduce the new concept smoothly
3. Include ALL equations in proper LaTeX format (use double backslashes)
4. Specify exact visual elements, colors, positions
5. Describe animations and transitions precisely
6. Use enthusiastic, second-person teaching tone
7. Be 200-300 words of detailed Manim instructions

Critical: ALL LaTeX must use Manim-compatible syntax with double backslashes.

Format each segment as a complete scene description for Manim.`

// ComposeSegment builds the narrative segment prompt for one concept in the
// linearized progression.
func ComposeSegment(logger *slog.Logger, node *types.KnowledgeNode, segmentNumber, totalSegments int, previousConcepts []string, isFinal bool) []types.Message {
	previousStr := "None (this is the first concept)"
	if len(previousConcepts) > 0 {
		previousStr = strings.Join(previousConcepts, ", ")
	}

	finalNote := ""
	if isFinal {
		finalNote = "This is the FINAL segment - the target concept we're building toward!"
	}

	equations := "Define appropriate equations"
	if len(node.Equations) > 0 {
		if b, err := json.Marshal(node.Equations); err == nil {
			equations = string(b)
		}
	}
	definitions := "Define key variables"
	if len(node.Definitions) > 0 {
		if b, err := json.Marshal(node.Definitions); err == nil {
			definitions = string(b)
		}
	}

	var elements, colors, animations, layout string
	duration := 15
	if vs := node.VisualSpec; vs != nil {
		if b, err := json.Marshal(vs.Elements); err == nil {
			elements = string(b)
		}
		if b, err := json.Marshal(vs.Colors); err == nil {
			colors = string(b)
		}
		if b, err := json.Marshal(vs.Animations); err == nil {
			animations = string(b)
		}
		layout = vs.Layout
		if vs.DurationSeconds > 0 {
			duration = vs.DurationSeconds
		}
	}
	if layout == "" {
		layout = "Design appropriate layout"
	}

	userPrompt := fmt.Sprintf(`Write a 200-300 word narrative segment for a Manim animation.

Segment %d of %d
Concept: %s
Previous concepts covered: %s
%s

Mathematical content:
Equations: %s
Definitions: %s

Visual specification:
Elements: %s
Colors: %s
Animations: %s
Layout: %s
Duration: %d seconds

Write a detailed Manim animation segment that:
1. Starts by connecting to the previous concept (if any)
2. Introduces %s naturally
3. Displays the key equations with exact LaTeX notation
4. Specifies colors, positions, and timing
5. Describes each animation step clearly
6. Sets up for the next concept (if not final)

Use phrases like:
- "Begin by fading in..."
- "Next, display the equation..."
- "Transform the previous visualization into..."
- "Highlight in [COLOR] to emphasize..."
- "Camera zooms to show..."

Format: A single paragraph of 200-300 words with detailed Manim instructions.
Include all LaTeX equations with double backslashes.`,
		segmentNumber, totalSegments, node.Concept, previousStr, finalNote,
		equations, definitions,
		elements, colors, animations, layout, duration,
		node.Concept)

	logPrompts(logger, narrativeSystemPrompt, userPrompt)
	return messages(narrativeSystemPrompt, userPrompt)
}

// FallbackSegment builds a templated scene description for a concept whose
// narrative call failed. The document stays complete; the segment is just
// less tailored.
func FallbackSegment(node *types.KnowledgeNode, previousConcepts []string) string {
	var b strings.Builder

	if len(previousConcepts) > 0 {
		fmt.Fprintf(&b, "Building on %s, introduce %s. ", previousConcepts[len(previousConcepts)-1], node.Concept)
	} else {
		fmt.Fprintf(&b, "Begin by introducing %s. ", node.Concept)
	}

	fmt.Fprintf(&b, "Fade in a title reading %q. ", node.Concept)

	if len(node.Equations) > 0 {
		fmt.Fprintf(&b, "Display the key equations with MathTex: %s. ", strings.Join(node.Equations, " ; "))
	}
	if len(node.Definitions) > 0 {
		keys := make([]string, 0, len(node.Definitions))
		for k, v := range node.Definitions {
			keys = append(keys, fmt.Sprintf("%s (%s)", k, v))
		}
		fmt.Fprintf(&b, "Label each symbol as it appears: %s. ", strings.Join(keys, ", "))
	}
	if vs := node.VisualSpec; vs != nil && len(vs.Elements) > 0 {
		fmt.Fprintf(&b, "Show the visual elements: %s. ", strings.Join(vs.Elements, ", "))
	}

	b.WriteString("Hold the completed scene briefly, then transition smoothly to the next concept.")

	return b.String()
}
