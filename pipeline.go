package pedagogue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/soundprediction/pedagogue/pkg/checkpoint"
	"github.com/soundprediction/pedagogue/pkg/types"
)

// ErrRootUnresolved is returned when the pipeline cannot decompose the
// target concept itself. Failures below the root degrade branches instead.
var ErrRootUnresolved = errors.New("could not resolve target concept")

// GenerateOptions controls a single pipeline run.
type GenerateOptions struct {
	// RunID identifies the run for telemetry and checkpointing. Empty
	// generates a fresh UUID.
	RunID string
	// Resume loads an existing checkpoint for RunID and skips the stages it
	// already completed. Requires checkpointing to be enabled.
	Resume bool
}

// Generate runs the full pipeline on a free-text learning request.
func (c *Client) Generate(ctx context.Context, input string) (*Result, error) {
	return c.GenerateWithOptions(ctx, input, GenerateOptions{})
}

// GenerateWithOptions runs the pipeline with explicit run options.
//
// The stages run in order: analyze, explore, enrich, design, compose. Each
// stage's degradations accumulate into the result's diagnostics; only an
// unusable root concept or a cancelled context aborts the run.
func (c *Client) GenerateWithOptions(ctx context.Context, input string, opts GenerateOptions) (*Result, error) {
	runID := opts.RunID
	if runID == "" {
		runID = uuid.New().String()
	}
	ctx = context.WithValue(ctx, types.ContextKeyRunID, runID)

	started := time.Now()
	c.logger.Info("starting generation", "run_id", runID, "input", input)

	cp, err := c.loadCheckpoint(ctx, runID, input, opts.Resume)
	if err != nil {
		return nil, err
	}

	var diags types.Diagnostics
	if cp != nil {
		diags = cp.Diagnostics
	}

	// Stage 1: analyze the request into a target concept.
	var analysis *types.Analysis
	if cp != nil && cp.Analysis != nil {
		analysis = cp.Analysis
	} else {
		analysis, err = c.analyzer.Analyze(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("analyzing request: %w", err)
		}
		c.saveCheckpoint(ctx, cp, checkpoint.StepAnalyzed, func(s *checkpoint.RunCheckpoint) {
			s.Analysis = analysis
		})
	}

	// Stage 2: explore the prerequisite tree.
	var tree *types.KnowledgeNode
	if cp != nil && cp.Tree != nil && stepAtLeast(cp.Step, checkpoint.StepExplored) {
		tree = cp.Tree
	} else {
		var exploreDiags types.Diagnostics
		tree, exploreDiags, err = c.explorer.Explore(ctx, analysis.CoreConcept)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrRootUnresolved, analysis.CoreConcept, err)
		}
		diags = append(diags, exploreDiags...)
		c.saveCheckpoint(ctx, cp, checkpoint.StepExplored, func(s *checkpoint.RunCheckpoint) {
			s.Tree = tree
			s.Diagnostics = diags
		})
	}

	// Stage 3: mathematical enrichment. Enrichment is idempotent, so a
	// resumed run re-enriches only nodes without equations.
	if cp == nil || !stepAtLeast(cp.Step, checkpoint.StepEnriched) {
		diags = append(diags, c.enricher.EnrichTree(ctx, tree)...)
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("enrichment interrupted: %w", err)
		}
		c.saveCheckpoint(ctx, cp, checkpoint.StepEnriched, func(s *checkpoint.RunCheckpoint) {
			s.Tree = tree
			s.Diagnostics = diags
		})
	}

	// Stage 4: visual design.
	if cp == nil || !stepAtLeast(cp.Step, checkpoint.StepDesigned) {
		diags = append(diags, c.designer.DesignTree(ctx, tree)...)
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("visual design interrupted: %w", err)
		}
		c.saveCheckpoint(ctx, cp, checkpoint.StepDesigned, func(s *checkpoint.RunCheckpoint) {
			s.Tree = tree
			s.Diagnostics = diags
		})
	}

	// Stage 5: narrative composition.
	narrative, composeDiags, err := c.composer.Compose(ctx, tree)
	if err != nil {
		return nil, fmt.Errorf("composing narrative: %w", err)
	}
	diags = append(diags, composeDiags...)

	c.saveCheckpoint(ctx, cp, checkpoint.StepCompleted, func(s *checkpoint.RunCheckpoint) {
		s.Tree = tree
		s.Narrative = narrative
		s.Diagnostics = diags
	})

	result := &Result{
		RunID:       runID,
		Input:       input,
		Analysis:    analysis,
		Tree:        tree,
		Narrative:   narrative,
		Diagnostics: diags,
		Duration:    time.Since(started),
	}

	c.logger.Info("narrative composed",
		"run_id", runID,
		"concept", analysis.CoreConcept,
		"scenes", narrative.SceneCount,
		"diagnostics", len(diags),
		"duration", result.Duration.Round(time.Millisecond))

	c.alertOnDegradation(result)

	return result, nil
}

// alertOnDegradation notifies operators when a run degraded more concepts
// than the configured threshold allows.
func (c *Client) alertOnDegradation(result *Result) {
	threshold := c.config.Alert.DiagnosticThreshold
	if c.alerter == nil || threshold <= 0 || len(result.Diagnostics) < threshold {
		return
	}

	subject := fmt.Sprintf("pedagogue run %s: %s", result.RunID, result.Diagnostics.Summary())
	var b []byte
	for _, d := range result.Diagnostics {
		b = fmt.Appendf(b, "[%s] %s (depth %d): %s\n", d.Stage, d.Concept, d.Depth, d.Err)
	}
	if err := c.alerter.Alert(subject, string(b)); err != nil {
		c.logger.Warn("degradation alert failed", "run_id", result.RunID, "error", err)
	}
}

// loadCheckpoint returns the checkpoint to run against, or nil when
// checkpointing is disabled.
func (c *Client) loadCheckpoint(ctx context.Context, runID, input string, resume bool) (*checkpoint.RunCheckpoint, error) {
	if c.checkpoints == nil {
		return nil, nil
	}

	if resume {
		cp, resumed, err := c.checkpoints.LoadOrCreate(ctx, runID, input)
		if err != nil {
			return nil, fmt.Errorf("loading checkpoint: %w", err)
		}
		if resumed {
			c.logger.Info("resuming from checkpoint", "run_id", runID, "progress", cp.GetProgress())
		}
		return cp, nil
	}

	cp := checkpoint.NewCheckpoint(runID, input)
	if err := c.checkpoints.Save(ctx, cp); err != nil {
		return nil, fmt.Errorf("creating checkpoint: %w", err)
	}
	return cp, nil
}

// saveCheckpoint applies update and persists the checkpoint at the given
// step. Checkpoint write failures are logged, never fatal.
func (c *Client) saveCheckpoint(ctx context.Context, cp *checkpoint.RunCheckpoint, step checkpoint.PipelineStep, update func(*checkpoint.RunCheckpoint)) {
	if c.checkpoints == nil || cp == nil {
		return
	}
	update(cp)
	if err := c.checkpoints.SaveWithStep(ctx, cp, step); err != nil {
		c.logger.Warn("checkpoint save failed", "run_id", cp.RunID, "step", step, "error", err)
		return
	}
	c.logger.Debug("checkpoint saved", "run_id", cp.RunID, "step", step)
}

// stepAtLeast reports whether reached is the same as or later than step in
// pipeline order.
func stepAtLeast(reached, step checkpoint.PipelineStep) bool {
	order := map[checkpoint.PipelineStep]int{
		checkpoint.StepInitial:   0,
		checkpoint.StepAnalyzed:  1,
		checkpoint.StepExplored:  2,
		checkpoint.StepEnriched:  3,
		checkpoint.StepDesigned:  4,
		checkpoint.StepCompleted: 5,
	}
	r, ok := order[reached]
	if !ok {
		return false
	}
	return r >= order[step]
}
