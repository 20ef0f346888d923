package types

// contextKey is a private type for context values set by the pipeline and
// read by telemetry.
type contextKey string

const (
	// ContextKeyRunID carries the pipeline run identifier.
	ContextKeyRunID contextKey = "pedagogue_run_id"
	// ContextKeyStage carries the pipeline stage issuing an oracle call.
	ContextKeyStage contextKey = "pedagogue_stage"
	// ContextKeyConcept carries the concept an oracle call is about.
	ContextKeyConcept contextKey = "pedagogue_concept"
)
