package types

import "time"

// Analysis is the parsed form of a user's free-text request: the concept the
// pipeline should target plus metadata used to calibrate prompts.
type Analysis struct {
	CoreConcept string `json:"core_concept"`
	Domain      string `json:"domain,omitempty"`
	Level       string `json:"level,omitempty"`
	Goal        string `json:"goal,omitempty"`
}

// Narrative is the linearized long-form animation specification produced by
// the composer. Document contains the full LaTeX-annotated text consumed by
// the external artifact generator; ConceptOrder is the machine-readable
// topological order it was assembled in.
type Narrative struct {
	TargetConcept string    `json:"target_concept"`
	Document      string    `json:"document"`
	ConceptOrder  []string  `json:"concept_order"`
	TotalDuration int       `json:"total_duration"`
	SceneCount    int       `json:"scene_count"`
	GeneratedAt   time.Time `json:"generated_at"`
}
