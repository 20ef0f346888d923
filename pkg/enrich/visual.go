package enrich

import (
	"context"
	"log/slog"
	"maps"
	"time"

	"github.com/soundprediction/pedagogue/pkg/nlp"
	"github.com/soundprediction/pedagogue/pkg/prompts"
	"github.com/soundprediction/pedagogue/pkg/types"
)

// VisualDesigner attaches visual specifications to knowledge tree nodes.
// Unlike mathematical enrichment, visual design is order-dependent: each
// node's design builds on its parent's spec and on the palette accumulated
// across the whole walk, so the tree is processed depth-first with the parent
// designed before its children.
type VisualDesigner struct {
	client nlp.Client
	logger *slog.Logger

	palette map[string]string
}

// NewVisualDesigner creates a visual designer backed by the given oracle
// client.
func NewVisualDesigner(client nlp.Client, logger *slog.Logger) *VisualDesigner {
	if logger == nil {
		logger = slog.Default()
	}
	return &VisualDesigner{client: client, logger: logger}
}

// DesignTree designs every node of the tree in place, parent before
// children. Nodes that already carry visual elements are skipped but still
// contribute their colors to the running palette. Failures degrade the
// affected node and are reported as diagnostics; its children are still
// designed against the nearest designed ancestor.
func (d *VisualDesigner) DesignTree(ctx context.Context, root *types.KnowledgeNode) types.Diagnostics {
	d.palette = make(map[string]string)

	start := time.Now()
	d.logger.Info("designing visual specifications", "nodes", root.Count())

	var diags types.Diagnostics
	d.design(ctx, root, nil, &diags)

	d.logger.Info("visual design complete",
		"nodes", root.Count(),
		"failed", len(diags),
		"palette_colors", len(d.palette),
		"duration", time.Since(start).Round(time.Millisecond))

	return diags
}

// designedParent carries the nearest ancestor that has a visual spec.
type designedParent struct {
	concept  string
	elements []string
}

func (d *VisualDesigner) design(ctx context.Context, node *types.KnowledgeNode, parent *designedParent, diags *types.Diagnostics) {
	if !hasVisualElements(node) {
		if err := d.designNode(ctx, node, parent); err != nil {
			*diags = append(*diags, types.NewDiagnostic(types.StageDesign, node.Concept, node.Depth, err))
			d.logger.Warn("visual design failed", "concept", node.Concept, "error", err)
		}
	}

	// Record colors even for pre-designed nodes so later concepts stay
	// consistent with them.
	if node.VisualSpec != nil {
		maps.Copy(d.palette, node.VisualSpec.Colors)
	}

	next := parent
	if hasVisualElements(node) {
		next = &designedParent{concept: node.Concept, elements: node.VisualSpec.Elements}
	}

	for _, child := range node.Prerequisites {
		if ctx.Err() != nil {
			return
		}
		d.design(ctx, child, next, diags)
	}
}

func (d *VisualDesigner) designNode(ctx context.Context, node *types.KnowledgeNode, parent *designedParent) error {
	ctx = context.WithValue(ctx, types.ContextKeyStage, types.StageDesign)
	ctx = context.WithValue(ctx, types.ContextKeyConcept, node.Concept)

	var style *prompts.StyleContext
	if parent != nil || len(d.palette) > 0 {
		style = &prompts.StyleContext{Palette: maps.Clone(d.palette)}
		if parent != nil {
			style.ParentConcept = parent.concept
			style.ParentElements = parent.elements
		}
	}

	msgs, err := prompts.DesignVisual(d.logger, node, style)
	if err != nil {
		return err
	}

	var resp prompts.VisualSpecResponse
	if err := nlp.GenerateJSON(ctx, d.client, msgs, &resp); err != nil {
		return err
	}

	if node.VisualSpec == nil {
		node.VisualSpec = &types.VisualSpec{}
	}
	vs := node.VisualSpec
	vs.Elements = resp.Elements
	vs.Colors = resp.Colors
	vs.Animations = resp.Animations
	vs.Transitions = resp.Transitions
	vs.CameraMovement = resp.CameraMovement
	vs.Layout = resp.Layout
	vs.DurationSeconds = clampDuration(resp.Duration)

	return nil
}

func hasVisualElements(node *types.KnowledgeNode) bool {
	return node.VisualSpec != nil && len(node.VisualSpec.Elements) > 0
}

// clampDuration keeps per-scene durations in the 5-30 second range the
// design prompt asks for.
func clampDuration(seconds int) int {
	switch {
	case seconds <= 0:
		return 15
	case seconds < 5:
		return 5
	case seconds > 30:
		return 30
	default:
		return seconds
	}
}
