package types

import (
	"fmt"
	"time"
)

// Stage identifies the pipeline stage a diagnostic originated from.
type Stage string

const (
	StageAnalyze  Stage = "analyze"
	StageClassify Stage = "classify"
	StageResolve  Stage = "resolve"
	StageEnrich   Stage = "enrich"
	StageDesign   Stage = "design"
	StageCompose  Stage = "compose"
)

// Diagnostic records a node-local failure that degraded a single concept
// without aborting the build.
type Diagnostic struct {
	Stage   Stage     `json:"stage"`
	Concept string    `json:"concept"`
	Depth   int       `json:"depth"`
	Err     string    `json:"error"`
	Time    time.Time `json:"time"`
}

// NewDiagnostic captures a soft error for later reporting.
func NewDiagnostic(stage Stage, concept string, depth int, err error) Diagnostic {
	d := Diagnostic{
		Stage:   stage,
		Concept: concept,
		Depth:   depth,
		Time:    time.Now(),
	}
	if err != nil {
		d.Err = err.Error()
	}
	return d
}

// Diagnostics is an ordered collection of soft errors from one run.
type Diagnostics []Diagnostic

// Concepts returns the distinct concepts that degraded, in first-seen order.
func (ds Diagnostics) Concepts() []string {
	seen := make(map[string]bool, len(ds))
	var concepts []string
	for _, d := range ds {
		key := NormalizeConcept(d.Concept)
		if !seen[key] {
			seen[key] = true
			concepts = append(concepts, d.Concept)
		}
	}
	return concepts
}

// Summary renders the caller-facing one-line report, or "" when clean.
func (ds Diagnostics) Summary() string {
	if len(ds) == 0 {
		return ""
	}
	n := len(ds.Concepts())
	if n == 1 {
		return "1 concept could not be fully resolved"
	}
	return fmt.Sprintf("%d concepts could not be fully resolved", n)
}
