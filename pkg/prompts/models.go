package prompts

import (
	"encoding/json"
	"fmt"
)

// PrerequisitesResponse represents the prerequisite list returned by the
// oracle. Oracles are asked for a bare JSON array but some wrap it in an
// object; both shapes are accepted.
type PrerequisitesResponse struct {
	Prerequisites []string `json:"prerequisites"`
}

// UnmarshalJSON accepts either ["a", "b"] or {"prerequisites": ["a", "b"]}.
func (p *PrerequisitesResponse) UnmarshalJSON(data []byte) error {
	var bare []string
	if err := json.Unmarshal(data, &bare); err == nil {
		p.Prerequisites = bare
		return nil
	}

	var wrapped struct {
		Prerequisites []string `json:"prerequisites"`
		Concepts      []string `json:"concepts"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return fmt.Errorf("prerequisites must be a JSON array or an object with a prerequisites key: %w", err)
	}
	if wrapped.Prerequisites != nil {
		p.Prerequisites = wrapped.Prerequisites
		return nil
	}
	if wrapped.Concepts != nil {
		p.Prerequisites = wrapped.Concepts
		return nil
	}
	return fmt.Errorf("no prerequisite list found in response")
}

// MathContent represents the mathematical enrichment returned by the oracle.
type MathContent struct {
	Equations      []string          `json:"equations"`
	Definitions    map[string]string `json:"definitions"`
	Interpretation string            `json:"interpretation"`
	Examples       []string          `json:"examples"`
	TypicalValues  map[string]string `json:"typical_values"`
}

// VisualSpecResponse represents the visual design returned by the oracle.
type VisualSpecResponse struct {
	Elements       []string          `json:"elements"`
	Colors         map[string]string `json:"colors"`
	Animations     []string          `json:"animations"`
	Transitions    []string          `json:"transitions"`
	CameraMovement string            `json:"camera_movement"`
	Duration       int               `json:"duration"`
	Layout         string            `json:"layout"`
}

// AnalysisResponse represents the request analysis returned by the oracle.
type AnalysisResponse struct {
	CoreConcept string `json:"core_concept"`
	Domain      string `json:"domain"`
	Level       string `json:"level"`
	Goal        string `json:"goal"`
}

// Validate checks the analysis for the required core concept and normalizes
// the level to one of beginner/intermediate/advanced.
func (a *AnalysisResponse) Validate() error {
	if a.CoreConcept == "" {
		return fmt.Errorf("analysis is missing core_concept")
	}
	switch a.Level {
	case "beginner", "intermediate", "advanced":
	case "":
		a.Level = "intermediate"
	default:
		a.Level = "intermediate"
	}
	return nil
}
