// Package compose linearizes an enriched knowledge tree into the long-form
// narrative document an animation generator consumes. Concepts are ordered
// foundation-first by post-order traversal, deduplicated by normalized name,
// and each gets an oracle-written scene segment with a templated fallback.
package compose

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/soundprediction/pedagogue/pkg/nlp"
	"github.com/soundprediction/pedagogue/pkg/prompts"
	"github.com/soundprediction/pedagogue/pkg/types"
)

// defaultSceneDuration is assumed for nodes without a designed duration.
const defaultSceneDuration = 15

// Composer assembles the final narrative document from an enriched tree.
type Composer struct {
	client nlp.Client
	logger *slog.Logger
}

// NewComposer creates a composer backed by the given oracle client.
func NewComposer(client nlp.Client, logger *slog.Logger) *Composer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Composer{client: client, logger: logger}
}

// Linearize flattens the tree into teaching order: every concept appears
// after all of its prerequisites, prerequisites are visited in discovery
// order, and a concept that occurs in several branches appears only once, at
// its first (deepest-first) position. The root is always last.
func Linearize(root *types.KnowledgeNode) []*types.KnowledgeNode {
	seen := make(map[string]bool)
	var ordered []*types.KnowledgeNode

	var visit func(node *types.KnowledgeNode)
	visit = func(node *types.KnowledgeNode) {
		key := node.Normalized()
		if seen[key] {
			return
		}
		seen[key] = true

		for _, prereq := range node.Prerequisites {
			visit(prereq)
		}
		ordered = append(ordered, node)
	}

	visit(root)
	return ordered
}

// Compose generates the narrative for an enriched tree. Segment failures
// degrade to a templated fallback and are reported as diagnostics; the
// document is always complete.
func (c *Composer) Compose(ctx context.Context, root *types.KnowledgeNode) (*types.Narrative, types.Diagnostics, error) {
	if root == nil {
		return nil, nil, fmt.Errorf("cannot compose narrative for empty tree")
	}

	ordered := Linearize(root)
	concepts := make([]string, len(ordered))
	for i, node := range ordered {
		concepts[i] = node.Concept
	}

	c.logger.Info("composing narrative",
		"target", root.Concept,
		"scenes", len(ordered))

	var diags types.Diagnostics
	segments := make([]string, len(ordered))
	totalDuration := 0

	for i, node := range ordered {
		if err := ctx.Err(); err != nil {
			return nil, diags, fmt.Errorf("narrative composition interrupted: %w", err)
		}

		previous := concepts[:i]
		isFinal := i == len(ordered)-1

		segment, err := c.generateSegment(ctx, node, i+1, len(ordered), previous, isFinal)
		if err != nil {
			diags = append(diags, types.NewDiagnostic(types.StageCompose, node.Concept, node.Depth, err))
			c.logger.Warn("segment generation failed, using fallback",
				"concept", node.Concept, "error", err)
			segment = prompts.FallbackSegment(node, previous)
		}

		node.Narrative = segment
		segments[i] = segment
		totalDuration += sceneDuration(node)
	}

	document := assembleDocument(root.Concept, ordered, segments, totalDuration)

	return &types.Narrative{
		TargetConcept: root.Concept,
		Document:      document,
		ConceptOrder:  concepts,
		TotalDuration: totalDuration,
		SceneCount:    len(ordered),
		GeneratedAt:   time.Now().UTC(),
	}, diags, nil
}

func (c *Composer) generateSegment(ctx context.Context, node *types.KnowledgeNode, segmentNumber, totalSegments int, previous []string, isFinal bool) (string, error) {
	ctx = context.WithValue(ctx, types.ContextKeyStage, types.StageCompose)
	ctx = context.WithValue(ctx, types.ContextKeyConcept, node.Concept)

	msgs := prompts.ComposeSegment(c.logger, node, segmentNumber, totalSegments, previous, isFinal)

	resp, err := c.client.Chat(ctx, msgs)
	if err != nil {
		return "", err
	}
	segment := strings.TrimSpace(nlp.RemoveThinkTags(resp.Content))
	if segment == "" {
		return "", nlp.NewEmptyResponseError("empty narrative segment")
	}
	return segment, nil
}

func sceneDuration(node *types.KnowledgeNode) int {
	if node.VisualSpec != nil && node.VisualSpec.DurationSeconds > 0 {
		return node.VisualSpec.DurationSeconds
	}
	return defaultSceneDuration
}

// assembleDocument stitches segments into the final markdown document with
// an overview header, per-scene timestamps, and closing generation notes.
func assembleDocument(target string, ordered []*types.KnowledgeNode, segments []string, totalDuration int) string {
	var b strings.Builder

	progression := make([]string, len(ordered))
	for i, node := range ordered {
		progression[i] = node.Concept
	}

	fmt.Fprintf(&b, `# Manim Animation: %s

## Overview
This animation builds %s from first principles through a carefully
constructed knowledge tree. Each concept is explained with mathematical rigor
and visual clarity, building from foundational ideas to advanced understanding.

**Total Concepts**: %d
**Progression**: %s
**Estimated Duration**: %d seconds (%d:%02d)

## Animation Requirements
- Use Manim Community Edition (manim)
- All LaTeX must be in raw strings: r"$\frac{a}{b}$"
- Use MathTex() for equations, Text() for labels
- Maintain color consistency throughout
- Ensure smooth transitions between scenes
- Include voiceover-friendly pacing (2-3 seconds per concept introduction)

## Scene Sequence

`, target, target, len(ordered), strings.Join(progression, " -> "), totalDuration, totalDuration/60, totalDuration%60)

	elapsed := 0
	for i, node := range ordered {
		duration := sceneDuration(node)
		start := elapsed
		end := elapsed + duration
		elapsed = end

		fmt.Fprintf(&b, `### Scene %d: %s
**Timestamp**: %d:%02d - %d:%02d

%s

---

`, i+1, node.Concept, start/60, start%60, end/60, end%60, segments[i])
	}

	fmt.Fprintf(&b, `## Final Notes

This animation is designed to be pedagogically sound and mathematically rigorous.
The progression from %s to %s ensures that viewers
have all necessary prerequisites before encountering advanced concepts.

All visual elements, colors, and transitions have been specified to maintain
consistency and clarity throughout the %d-second animation.

Generate complete, working Manim Community Edition Python code that implements
this scene sequence with all specified mathematical notation, visual elements,
colors, and animations.
`, progression[0], target, totalDuration)

	return b.String()
}
