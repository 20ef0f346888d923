package prompts

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/soundprediction/pedagogue/pkg/types"
)

const designVisualSystemPrompt = `You are an expert Manim animator and visual designer who creates
stunning mathematical and scientific visualizations.

Your task is to design the visual specification for a concept that will be
animated using Manim Community Edition.

Design principles:
1. Visual clarity - elements should be easy to understand
2. Color consistency - build on colors used in previous concepts
3. Smooth transitions - connect visually to what came before
4. Mathematical precision - accurately represent the concept
5. Pedagogical value - visualizations should aid understanding

For Manim-specific elements, consider:
- MathTex/Tex for equations
- NumberPlane/Axes for graphs
- 3D objects (Sphere, Surface, etc.) when appropriate
- VGroup for grouping related objects
- Arrows, Vectors, Dots for highlighting
- Color: BLUE, RED, GREEN, YELLOW, PURPLE, ORANGE, TEAL, GOLD, etc.

Return ONLY valid JSON with these exact keys:
- elements: List of visual objects to create
- colors: Dict mapping objects to Manim color names
- animations: List of Manim animation types (FadeIn, Transform, Create, Write, etc.)
- transitions: List of transition descriptions from previous concept
- camera_movement: Camera movement description (for 3D scenes)
- duration: Estimated duration in seconds (5-30)
- layout: Description of spatial arrangement`

// StyleContext carries the accumulated visual state a design call should
// build on: the parent concept's spec and the palette used so far.
type StyleContext struct {
	ParentConcept  string            `yaml:"parent_concept,omitempty"`
	ParentElements []string          `yaml:"parent_elements,omitempty"`
	Palette        map[string]string `yaml:"palette,omitempty"`
}

// DesignVisual builds the visual design prompt for a concept. The style
// context is rendered as YAML so the oracle can keep colors and elements
// consistent with what came before.
func DesignVisual(logger *slog.Logger, node *types.KnowledgeNode, style *StyleContext) ([]types.Message, error) {
	prereqs := make([]string, 0, len(node.Prerequisites))
	for _, p := range node.Prerequisites {
		prereqs = append(prereqs, p.Concept)
	}

	equations := "None yet"
	if len(node.Equations) > 0 {
		equations = strings.Join(node.Equations, " ; ")
	}
	prereqStr := "None"
	if len(prereqs) > 0 {
		prereqStr = strings.Join(prereqs, ", ")
	}

	previousContext := ""
	if style != nil && (style.ParentConcept != "" || len(style.Palette) > 0) {
		styleYAML, err := ToPromptYAML(style)
		if err != nil {
			return nil, fmt.Errorf("failed to render style context: %w", err)
		}
		previousContext = fmt.Sprintf("\nVisual state from previous concepts:\n%s", styleYAML)
	}

	userPrompt := fmt.Sprintf(`Concept: %s
Equations to visualize: %s
Prerequisite concepts: %s
Depth: %d (0=target concept, higher=more foundational)
Is foundation: %t
%s
Design a Manim animation segment for this concept.

Return JSON format:
{
  "elements": ["list", "of", "manim", "objects"],
  "colors": {"object_name": "MANIM_COLOR"},
  "animations": ["FadeIn", "Transform", "Write"],
  "transitions": ["description of how to transition from previous concept"],
  "camera_movement": "camera movement description or empty string",
  "duration": 15,
  "layout": "description of spatial layout"
}`, node.Concept, equations, prereqStr, node.Depth, node.IsFoundation, previousContext)

	logPrompts(logger, designVisualSystemPrompt, userPrompt)
	return messages(designVisualSystemPrompt, userPrompt), nil
}
