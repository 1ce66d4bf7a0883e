package nlu

import (
	"context"
	"sort"

	"github.com/radiantlogicinc/TalkEngine/command"
)

// NoopExtractor is the default parameter extractor. It extracts nothing and
// requests no validation, leaving parameter capture to hosts that supply a
// real extractor.
type NoopExtractor struct{}

var _ Extractor = (*NoopExtractor)(nil)

// NewNoopExtractor creates the default extractor.
func NewNoopExtractor() *NoopExtractor {
	return &NoopExtractor{}
}

// Extract returns no values and no validation requests.
func (e *NoopExtractor) Extract(ctx context.Context, query, cmd string, schema command.Schema, snap Snapshot) (map[string]any, []ValidationRequest, error) {
	return nil, nil, nil
}

// SchemaExtractor extracts nothing from the query itself but requests
// validation for every required parameter the pipeline has not captured yet.
// Paired with the validation dialogue it collects required parameters one at
// a time.
type SchemaExtractor struct{}

var _ Extractor = (*SchemaExtractor)(nil)

// NewSchemaExtractor creates a schema-driven extractor.
func NewSchemaExtractor() *SchemaExtractor {
	return &SchemaExtractor{}
}

// Extract reports a missing_required request per absent required parameter,
// in name order.
func (e *SchemaExtractor) Extract(ctx context.Context, query, cmd string, schema command.Schema, snap Snapshot) (map[string]any, []ValidationRequest, error) {
	var missing []string
	for field, spec := range schema {
		if !spec.Required {
			continue
		}
		if _, ok := snap.Parameters[field]; ok {
			continue
		}
		missing = append(missing, field)
	}
	sort.Strings(missing)

	requests := make([]ValidationRequest, 0, len(missing))
	for _, field := range missing {
		requests = append(requests, ValidationRequest{
			Parameter: field,
			Reason:    ReasonMissingRequired,
		})
	}
	return nil, requests, nil
}
