package api

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/radiantlogicinc/TalkEngine/command"
	"github.com/radiantlogicinc/TalkEngine/nlu"
)

// Ensure Extractor implements nlu.Extractor.
var _ nlu.Extractor = (*Extractor)(nil)

func init() {
	nlu.RegisterExtractor(StrategyAPI, func(s nlu.Settings) (nlu.Extractor, error) {
		if s.APIKey == "" {
			return nil, fmt.Errorf("api extractor: API key is required")
		}
		var opts []Option
		if s.BaseURL != "" {
			opts = append(opts, WithBaseURL(s.BaseURL))
		}
		return NewExtractor(s.APIKey, s.Model, opts...), nil
	})
}

// Extractor pulls parameter values out of queries using the Anthropic API.
type Extractor struct {
	client *client
}

// NewExtractor creates a new API-based parameter extractor.
func NewExtractor(apiKey, model string, opts ...Option) *Extractor {
	return &Extractor{client: newClient(apiKey, model, opts...)}
}

// Extract asks the model for parameter values and for validation requests
// covering required parameters it could not fill.
func (e *Extractor) Extract(ctx context.Context, query, cmd string, schema command.Schema, snap nlu.Snapshot) (map[string]any, []nlu.ValidationRequest, error) {
	if len(schema) == 0 {
		return nil, nil, nil
	}

	text, err := e.client.complete(ctx, buildExtractPrompt(query, cmd, schema, snap))
	if err != nil {
		return nil, nil, err
	}

	var parsed struct {
		Parameters         map[string]any `json:"parameters"`
		ValidationRequests []struct {
			Parameter    string `json:"parameter"`
			Reason       string `json:"reason"`
			CurrentValue any    `json:"current_value"`
		} `json:"validation_requests"`
	}
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, nil, fmt.Errorf("parsing response JSON: %w", err)
	}

	// Only schema parameters come back; anything else the model invented
	// is dropped.
	values := make(map[string]any)
	for name, value := range parsed.Parameters {
		if _, ok := schema[name]; ok {
			values[name] = value
		}
	}

	var requests []nlu.ValidationRequest
	for _, req := range parsed.ValidationRequests {
		if _, ok := schema[req.Parameter]; !ok {
			continue
		}
		reason := req.Reason
		if reason == "" {
			reason = nlu.ReasonMissingRequired
		}
		requests = append(requests, nlu.ValidationRequest{
			Parameter:    req.Parameter,
			Reason:       reason,
			CurrentValue: req.CurrentValue,
		})
	}
	return values, requests, nil
}

func buildExtractPrompt(query, cmd string, schema command.Schema, snap nlu.Snapshot) string {
	names := make([]string, 0, len(schema))
	for name := range schema {
		names = append(names, name)
	}
	sort.Strings(names)

	var fields []string
	for _, name := range names {
		spec := schema[name]
		required := "optional"
		if spec.Required {
			required = "required"
		}
		fields = append(fields, fmt.Sprintf("- %s (%s, %s): %s", name, spec.Type, required, spec.Description))
	}

	var b strings.Builder
	fmt.Fprintf(&b, `Extract parameter values for the command %q from the user's message. Return JSON with:
- parameters: object mapping parameter names to extracted values
- validation_requests: array of {parameter, reason, current_value} objects for required parameters that are missing or unusable. Valid reasons: "missing_required", "invalid_format", "ambiguous_value"

Only include a parameter in the parameters object if the message actually supplies its value.

Parameters:
%s
`, cmd, strings.Join(fields, "\n"))

	if len(snap.Parameters) > 0 {
		known, _ := json.Marshal(snap.Parameters)
		fmt.Fprintf(&b, "\nValues already collected (do not request these again):\n%s\n", known)
	}

	fmt.Fprintf(&b, `
User message:
%s

Respond with only valid JSON, no other text.`, query)
	return b.String()
}
