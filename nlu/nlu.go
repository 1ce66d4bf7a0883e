// Package nlu defines the pluggable strategy interfaces for the pipeline
// roles: intent classification, parameter extraction, and text generation.
// Built-in defaults cover each role; hosts swap in their own implementations
// per engine instance. Strategies never mutate pipeline state directly, they
// only see an immutable Snapshot of it.
package nlu

import (
	"context"

	"github.com/radiantlogicinc/TalkEngine/command"
)

// HistoryEntry is one prior conversation turn. The engine passes history
// through to strategies without interpreting it.
type HistoryEntry struct {
	Role    string `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}

// ScoredCommand pairs a candidate command with its match score.
type ScoredCommand struct {
	Command string  `json:"command"`
	Score   float64 `json:"score"`
}

// Classification is a classifier's verdict for one query. Command is empty
// when no single command was resolved; Candidates lists every plausible
// command, best first, and feeds the clarification dialogue.
type Classification struct {
	Command    string
	Confidence float64
	Candidates []ScoredCommand
}

// ValidationRequest reports a parameter the extractor could not fill or
// could not fill unambiguously.
type ValidationRequest struct {
	Parameter    string
	Reason       string
	CurrentValue any
}

// Validation request reasons.
const (
	ReasonMissingRequired = "missing_required"
	ReasonInvalidFormat   = "invalid_format"
	ReasonAmbiguousValue  = "ambiguous_value"
)

// Snapshot is a read-only view of the pipeline state handed to strategies.
type Snapshot struct {
	Command    string
	Parameters map[string]any
	Artifact   any
	History    []HistoryEntry
}

// Classifier resolves a natural-language query to a catalog command.
type Classifier interface {
	Classify(ctx context.Context, query string, catalog *command.Catalog, history []HistoryEntry, excluded []string) (Classification, error)
}

// Extractor pulls parameter values for a command out of a query. It returns
// the values it extracted plus validation requests for anything missing or
// invalid per the schema.
type Extractor interface {
	Extract(ctx context.Context, query, cmd string, schema command.Schema, snap Snapshot) (map[string]any, []ValidationRequest, error)
}

// Generator produces the response text for a completed pipeline pass.
// Empty output is valid.
type Generator interface {
	Generate(ctx context.Context, cmd string, params map[string]any, artifact any, snap Snapshot) (string, error)
}
