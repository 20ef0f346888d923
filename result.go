package pedagogue

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/soundprediction/pedagogue/pkg/types"
	"github.com/soundprediction/pedagogue/pkg/utils"
)

// Result is the full output of one pipeline run.
type Result struct {
	RunID       string               `json:"run_id"`
	Input       string               `json:"input"`
	Analysis    *types.Analysis      `json:"analysis"`
	Tree        *types.KnowledgeNode `json:"tree"`
	Narrative   *types.Narrative     `json:"narrative"`
	Diagnostics types.Diagnostics    `json:"diagnostics,omitempty"`
	Duration    time.Duration        `json:"duration_nanos"`
}

// SavedFiles lists the paths written by Save.
type SavedFiles struct {
	PromptPath string
	TreePath   string
	ResultPath string
}

// Save writes the result to dir as three files named after the target
// concept: the narrative document as plain text, the knowledge tree as
// JSON, and the full result as JSON.
func (r *Result) Save(dir string) (*SavedFiles, error) {
	if r.Narrative == nil {
		return nil, fmt.Errorf("result has no narrative to save")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	base := utils.SanitizeFilename(r.Narrative.TargetConcept)
	if base == "" {
		base = "animation"
	}

	files := &SavedFiles{
		PromptPath: filepath.Join(dir, base+"_prompt.txt"),
		TreePath:   filepath.Join(dir, base+"_tree.json"),
		ResultPath: filepath.Join(dir, base+"_result.json"),
	}

	if err := os.WriteFile(files.PromptPath, []byte(r.Narrative.Document), 0644); err != nil {
		return nil, fmt.Errorf("writing prompt: %w", err)
	}

	treeJSON, err := json.MarshalIndent(r.Tree, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling tree: %w", err)
	}
	if err := os.WriteFile(files.TreePath, treeJSON, 0644); err != nil {
		return nil, fmt.Errorf("writing tree: %w", err)
	}

	resultJSON, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	if err := os.WriteFile(files.ResultPath, resultJSON, 0644); err != nil {
		return nil, fmt.Errorf("writing result: %w", err)
	}

	return files, nil
}
