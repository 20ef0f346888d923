package checkpoint

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"
)

// NewCheckpoint creates a new checkpoint for a run at the initial step
func NewCheckpoint(runID, input string) *RunCheckpoint {
	now := time.Now()
	return &RunCheckpoint{
		RunID:         runID,
		Input:         input,
		Step:          StepInitial,
		CreatedAt:     now,
		LastUpdatedAt: now,
		AttemptCount:  0,
	}
}

// pipelineSteps lists the steps in execution order.
var pipelineSteps = []PipelineStep{
	StepInitial,
	StepAnalyzed,
	StepExplored,
	StepEnriched,
	StepDesigned,
	StepCompleted,
}

// CanRetry determines if a checkpoint should be retried based on attempt count and age
func (c *RunCheckpoint) CanRetry(maxAttempts int, maxAge time.Duration) bool {
	if c.AttemptCount >= maxAttempts {
		return false
	}

	age := time.Since(c.CreatedAt)
	if age > maxAge {
		return false
	}

	return true
}

// GetProgress returns a human-readable progress description
func (c *RunCheckpoint) GetProgress() string {
	currentIdx := -1
	for i, step := range pipelineSteps {
		if step == c.Step {
			currentIdx = i
			break
		}
	}

	if currentIdx == -1 {
		return "Unknown step"
	}

	percentage := (float64(currentIdx) / float64(len(pipelineSteps)-1)) * 100
	return fmt.Sprintf("%.0f%% (%s)", percentage, c.Step)
}

// IsRecoverable determines if an error at the current step is likely recoverable.
// Every stage after analysis is dominated by oracle calls, so transient
// failures there are worth retrying.
func (c *RunCheckpoint) IsRecoverable() bool {
	recoverableSteps := map[PipelineStep]bool{
		StepAnalyzed: true,
		StepExplored: true,
		StepEnriched: true,
		StepDesigned: true,
	}

	return recoverableSteps[c.Step]
}

// SaveWithStep is a helper that updates the step and saves in one operation
func (m *Manager) SaveWithStep(ctx context.Context, checkpoint *RunCheckpoint, step PipelineStep) error {
	checkpoint.Step = step
	return m.Save(ctx, checkpoint)
}

// SaveWithError is a helper that records an error and saves in one operation
func (m *Manager) SaveWithError(ctx context.Context, checkpoint *RunCheckpoint, err error) error {
	checkpoint.AttemptCount++
	checkpoint.LastError = err.Error()
	checkpoint.LastErrorStack = string(debug.Stack())
	return m.Save(ctx, checkpoint)
}

// LoadOrCreate loads an existing checkpoint or creates a new one
func (m *Manager) LoadOrCreate(ctx context.Context, runID, input string) (*RunCheckpoint, bool, error) {
	existing, err := m.Load(ctx, runID)
	if err != nil {
		return nil, false, err
	}

	if existing != nil {
		return existing, true, nil
	}

	checkpoint := NewCheckpoint(runID, input)
	if err := m.Save(ctx, checkpoint); err != nil {
		return nil, false, err
	}

	return checkpoint, false, nil
}

// GetNextStep returns the next step in the pipeline after the current step
func GetNextStep(current PipelineStep) (PipelineStep, error) {
	for i, step := range pipelineSteps {
		if step == current {
			if i == len(pipelineSteps)-1 {
				return "", fmt.Errorf("no step after %s", current)
			}
			return pipelineSteps[i+1], nil
		}
	}
	return "", fmt.Errorf("unknown current step: %s", current)
}

// Summary provides a human-readable summary of the checkpoint
func (c *RunCheckpoint) Summary() string {
	summary := fmt.Sprintf("Run: %s\n", c.RunID)
	summary += fmt.Sprintf("Input: %s\n", c.Input)
	summary += fmt.Sprintf("Progress: %s\n", c.GetProgress())
	summary += fmt.Sprintf("Created: %s\n", c.CreatedAt.Format(time.RFC3339))
	summary += fmt.Sprintf("Last Updated: %s\n", c.LastUpdatedAt.Format(time.RFC3339))
	summary += fmt.Sprintf("Attempts: %d\n", c.AttemptCount)

	if c.LastError != "" {
		summary += fmt.Sprintf("Last Error: %s\n", c.LastError)
	}

	if c.Analysis != nil {
		summary += fmt.Sprintf("Core Concept: %s\n", c.Analysis.CoreConcept)
	}

	if c.Tree != nil {
		summary += fmt.Sprintf("Tree Nodes: %d\n", c.Tree.Count())
		summary += fmt.Sprintf("Tree Depth: %d\n", c.Tree.MaxDepth())
	}

	if c.Narrative != nil {
		summary += fmt.Sprintf("Scenes: %d\n", c.Narrative.SceneCount)
	}

	if len(c.Diagnostics) > 0 {
		summary += fmt.Sprintf("Diagnostics: %d\n", len(c.Diagnostics))
	}

	return summary
}

// FindStalled returns checkpoints that haven't been updated recently
func (m *Manager) FindStalled(ctx context.Context, stalledDuration time.Duration) ([]*RunCheckpoint, error) {
	checkpoints, err := m.List(ctx)
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().Add(-stalledDuration)
	var stalled []*RunCheckpoint

	for _, checkpoint := range checkpoints {
		if checkpoint.Step != StepCompleted && checkpoint.LastUpdatedAt.Before(cutoff) {
			stalled = append(stalled, checkpoint)
		}
	}

	return stalled, nil
}

// FindFailed returns checkpoints that have exceeded max attempts
func (m *Manager) FindFailed(ctx context.Context, maxAttempts int) ([]*RunCheckpoint, error) {
	checkpoints, err := m.List(ctx)
	if err != nil {
		return nil, err
	}

	var failed []*RunCheckpoint
	for _, checkpoint := range checkpoints {
		if checkpoint.Step != StepCompleted && checkpoint.AttemptCount >= maxAttempts {
			failed = append(failed, checkpoint)
		}
	}

	return failed, nil
}

// Statistics summarizes the state of all checkpoints in the directory.
type Statistics struct {
	Total      int
	Completed  int
	InProgress int
	Failed     int
	Stalled    int
	ByStep     map[PipelineStep]int
}

func (m *Manager) GetStatistics(ctx context.Context, maxAttempts int, stalledDuration time.Duration) (*Statistics, error) {
	checkpoints, err := m.List(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Statistics{
		Total:  len(checkpoints),
		ByStep: make(map[PipelineStep]int),
	}

	cutoff := time.Now().Add(-stalledDuration)

	for _, checkpoint := range checkpoints {
		stats.ByStep[checkpoint.Step]++

		if checkpoint.Step == StepCompleted {
			stats.Completed++
		} else if checkpoint.AttemptCount >= maxAttempts {
			stats.Failed++
		} else if checkpoint.LastUpdatedAt.Before(cutoff) {
			stats.Stalled++
		} else {
			stats.InProgress++
		}
	}

	return stats, nil
}
