package checkpoint

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/pedagogue/pkg/types"
)

func TestManager(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "pedagogue-checkpoint-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	ctx := context.Background()

	t.Run("Create manager with custom directory", func(t *testing.T) {
		manager, err := NewManager(tmpDir)
		require.NoError(t, err)
		assert.Equal(t, tmpDir, manager.GetCheckpointDir())
	})

	t.Run("Create manager with default directory", func(t *testing.T) {
		manager, err := NewManager("")
		require.NoError(t, err)
		expectedDir := filepath.Join(os.TempDir(), "pedagogue-checkpoints")
		assert.Equal(t, expectedDir, manager.GetCheckpointDir())
	})

	t.Run("Save and load checkpoint", func(t *testing.T) {
		manager, err := NewManager(tmpDir)
		require.NoError(t, err)

		tree := types.NewKnowledgeNode("area of a circle", 0)
		tree.Prerequisites = []*types.KnowledgeNode{
			types.NewLeaf("circle", 1, types.LeafFoundation),
		}

		checkpoint := &RunCheckpoint{
			RunID:         "run-123",
			Input:         "explain the area of a circle",
			Step:          StepExplored,
			CreatedAt:     time.Now(),
			LastUpdatedAt: time.Now(),
			Analysis: &types.Analysis{
				CoreConcept: "area of a circle",
				Domain:      "geometry",
				Level:       "intermediate",
			},
			Tree: tree,
		}

		err = manager.Save(ctx, checkpoint)
		require.NoError(t, err)

		loaded, err := manager.Load(ctx, "run-123")
		require.NoError(t, err)
		require.NotNil(t, loaded)

		assert.Equal(t, checkpoint.RunID, loaded.RunID)
		assert.Equal(t, checkpoint.Input, loaded.Input)
		assert.Equal(t, checkpoint.Step, loaded.Step)
		assert.Equal(t, "area of a circle", loaded.Analysis.CoreConcept)
		require.NotNil(t, loaded.Tree)
		assert.Equal(t, 2, loaded.Tree.Count())
	})

	t.Run("Load non-existent checkpoint", func(t *testing.T) {
		manager, err := NewManager(tmpDir)
		require.NoError(t, err)

		loaded, err := manager.Load(ctx, "non-existent")
		require.NoError(t, err)
		assert.Nil(t, loaded)
	})

	t.Run("Delete checkpoint", func(t *testing.T) {
		manager, err := NewManager(tmpDir)
		require.NoError(t, err)

		checkpoint := NewCheckpoint("run-delete", "some concept")

		err = manager.Save(ctx, checkpoint)
		require.NoError(t, err)

		exists, err := manager.Exists(ctx, "run-delete")
		require.NoError(t, err)
		assert.True(t, exists)

		err = manager.Delete(ctx, "run-delete")
		require.NoError(t, err)

		exists, err = manager.Exists(ctx, "run-delete")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("Update step", func(t *testing.T) {
		manager, err := NewManager(tmpDir)
		require.NoError(t, err)

		checkpoint := NewCheckpoint("run-step", "some concept")
		err = manager.Save(ctx, checkpoint)
		require.NoError(t, err)

		err = manager.UpdateStep(ctx, "run-step", StepEnriched)
		require.NoError(t, err)

		loaded, err := manager.Load(ctx, "run-step")
		require.NoError(t, err)
		assert.Equal(t, StepEnriched, loaded.Step)
	})

	t.Run("Record error", func(t *testing.T) {
		manager, err := NewManager(tmpDir)
		require.NoError(t, err)

		checkpoint := NewCheckpoint("run-error", "some concept")
		err = manager.Save(ctx, checkpoint)
		require.NoError(t, err)

		err = manager.RecordError(ctx, "run-error", fmt.Errorf("oracle unavailable"), "stack")
		require.NoError(t, err)

		loaded, err := manager.Load(ctx, "run-error")
		require.NoError(t, err)
		assert.Equal(t, 1, loaded.AttemptCount)
		assert.Equal(t, "oracle unavailable", loaded.LastError)
	})

	t.Run("List checkpoints", func(t *testing.T) {
		listDir := filepath.Join(tmpDir, "list")
		manager, err := NewManager(listDir)
		require.NoError(t, err)

		for _, id := range []string{"run-a", "run-b"} {
			require.NoError(t, manager.Save(ctx, NewCheckpoint(id, "concept")))
		}

		checkpoints, err := manager.List(ctx)
		require.NoError(t, err)
		assert.Len(t, checkpoints, 2)
	})
}

func TestRunIDValidation(t *testing.T) {
	tmpDir := t.TempDir()
	manager, err := NewManager(tmpDir)
	require.NoError(t, err)

	ctx := context.Background()

	invalid := []string{
		"",
		"../escape",
		"a/b",
		`a\b`,
		"run\x00id",
		"..",
	}
	for _, id := range invalid {
		t.Run(fmt.Sprintf("rejects %q", id), func(t *testing.T) {
			_, err := manager.GetCheckpointPath(id)
			assert.ErrorIs(t, err, ErrInvalidRunID)

			_, err = manager.Load(ctx, id)
			assert.Error(t, err)
		})
	}

	t.Run("accepts uuid-like ids", func(t *testing.T) {
		path, err := manager.GetCheckpointPath("550e8400-e29b-41d4-a716-446655440000")
		require.NoError(t, err)
		assert.Contains(t, path, tmpDir)
	})
}

func TestAtomicSave(t *testing.T) {
	tmpDir := t.TempDir()
	manager, err := NewManager(tmpDir)
	require.NoError(t, err)

	ctx := context.Background()
	checkpoint := NewCheckpoint("run-atomic", "concept")
	require.NoError(t, manager.Save(ctx, checkpoint))

	// No .tmp leftovers after a successful save.
	entries, err := os.ReadDir(tmpDir)
	require.NoError(t, err)
	for _, entry := range entries {
		assert.NotEqual(t, ".tmp", filepath.Ext(entry.Name()))
	}

	// The on-disk file is valid JSON.
	path, err := manager.GetCheckpointPath("run-atomic")
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded RunCheckpoint
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "run-atomic", decoded.RunID)
}

func TestLoadOrCreate(t *testing.T) {
	tmpDir := t.TempDir()
	manager, err := NewManager(tmpDir)
	require.NoError(t, err)

	ctx := context.Background()

	cp, resumed, err := manager.LoadOrCreate(ctx, "run-loc", "fourier transform")
	require.NoError(t, err)
	assert.False(t, resumed)
	assert.Equal(t, StepInitial, cp.Step)

	cp.Step = StepAnalyzed
	require.NoError(t, manager.Save(ctx, cp))

	cp2, resumed, err := manager.LoadOrCreate(ctx, "run-loc", "fourier transform")
	require.NoError(t, err)
	assert.True(t, resumed)
	assert.Equal(t, StepAnalyzed, cp2.Step)
}

func TestStepHelpers(t *testing.T) {
	next, err := GetNextStep(StepInitial)
	require.NoError(t, err)
	assert.Equal(t, StepAnalyzed, next)

	next, err = GetNextStep(StepDesigned)
	require.NoError(t, err)
	assert.Equal(t, StepCompleted, next)

	_, err = GetNextStep(StepCompleted)
	assert.Error(t, err)

	_, err = GetNextStep(PipelineStep("bogus"))
	assert.Error(t, err)
}

func TestProgressAndRecoverability(t *testing.T) {
	cp := NewCheckpoint("run-progress", "concept")
	assert.Equal(t, "0% (initial)", cp.GetProgress())
	assert.False(t, cp.IsRecoverable())

	cp.Step = StepEnriched
	assert.Equal(t, "60% (enriched)", cp.GetProgress())
	assert.True(t, cp.IsRecoverable())

	cp.Step = StepCompleted
	assert.Equal(t, "100% (completed)", cp.GetProgress())
	assert.False(t, cp.IsRecoverable())
}

func TestCanRetry(t *testing.T) {
	cp := NewCheckpoint("run-retry", "concept")

	assert.True(t, cp.CanRetry(3, time.Hour))

	cp.AttemptCount = 3
	assert.False(t, cp.CanRetry(3, time.Hour))

	cp.AttemptCount = 0
	cp.CreatedAt = time.Now().Add(-2 * time.Hour)
	assert.False(t, cp.CanRetry(3, time.Hour))
}

func TestCleanOld(t *testing.T) {
	tmpDir := t.TempDir()
	manager, err := NewManager(tmpDir)
	require.NoError(t, err)

	ctx := context.Background()

	old := NewCheckpoint("run-old", "concept")
	require.NoError(t, manager.Save(ctx, old))

	// Backdate the saved file's LastUpdatedAt by rewriting it directly.
	old.LastUpdatedAt = time.Now().Add(-48 * time.Hour)
	data, err := json.MarshalIndent(old, "", "  ")
	require.NoError(t, err)
	path, err := manager.GetCheckpointPath("run-old")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))

	fresh := NewCheckpoint("run-fresh", "concept")
	require.NoError(t, manager.Save(ctx, fresh))

	removed, err := manager.CleanOld(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	exists, err := manager.Exists(ctx, "run-fresh")
	require.NoError(t, err)
	assert.True(t, exists)
}
