package nlu

import (
	"context"
	"testing"

	"github.com/radiantlogicinc/TalkEngine/command"
)

func TestTemplateGenerator(t *testing.T) {
	g := NewTemplateGenerator()

	tests := []struct {
		name     string
		cmd      string
		params   map[string]any
		artifact any
		want     string
	}{
		{
			name:   "command with parameters",
			cmd:    "calculator.add",
			params: map[string]any{"b": 3, "a": 2},
			want:   "Intent: calculator.add, Parameters: a='2', b='3'",
		},
		{
			name: "command without parameters",
			cmd:  "search.web",
			want: "Intent: search.web, Parameters: (no parameters)",
		},
		{
			name: "unknown command",
			cmd:  UnknownCommand,
			want: "I'm sorry, I didn't understand that.",
		},
		{
			name: "unresolved command",
			cmd:  "",
			want: "I'm sorry, I didn't understand that.",
		},
		{
			name:     "command with artifact",
			cmd:      "calculator.add",
			params:   map[string]any{"a": 2},
			artifact: struct{ Sum int }{Sum: 5},
			want:     "Intent: calculator.add, Parameters: a='2', Code Result: {Sum:5}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := g.Generate(context.Background(), tt.cmd, tt.params, tt.artifact, Snapshot{})
			if err != nil {
				t.Fatalf("Generate() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Generate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNoopExtractor(t *testing.T) {
	e := NewNoopExtractor()
	values, requests, err := e.Extract(context.Background(), "add 2 and 3", "calculator.add", command.Schema{
		"a": {Type: command.TypeInt, Required: true},
	}, Snapshot{})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(values) != 0 {
		t.Errorf("values = %v, want none", values)
	}
	if len(requests) != 0 {
		t.Errorf("requests = %v, want none", requests)
	}
}

func TestSchemaExtractorRequestsMissingRequired(t *testing.T) {
	e := NewSchemaExtractor()
	schema := command.Schema{
		"b":        {Type: command.TypeInt, Required: true},
		"a":        {Type: command.TypeInt, Required: true},
		"optional": {Type: command.TypeString},
	}

	_, requests, err := e.Extract(context.Background(), "add", "calculator.add", schema, Snapshot{})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if len(requests) != 2 {
		t.Fatalf("requests = %d, want 2", len(requests))
	}
	if requests[0].Parameter != "a" || requests[1].Parameter != "b" {
		t.Errorf("request order = [%s %s], want [a b]", requests[0].Parameter, requests[1].Parameter)
	}
	if requests[0].Reason != ReasonMissingRequired {
		t.Errorf("Reason = %q, want %q", requests[0].Reason, ReasonMissingRequired)
	}
}

func TestSchemaExtractorSkipsCapturedParameters(t *testing.T) {
	e := NewSchemaExtractor()
	schema := command.Schema{
		"a": {Type: command.TypeInt, Required: true},
		"b": {Type: command.TypeInt, Required: true},
	}
	snap := Snapshot{Parameters: map[string]any{"a": 2}}

	_, requests, err := e.Extract(context.Background(), "add", "calculator.add", schema, snap)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if len(requests) != 1 {
		t.Fatalf("requests = %d, want 1", len(requests))
	}
	if requests[0].Parameter != "b" {
		t.Errorf("Parameter = %q, want b", requests[0].Parameter)
	}
}

func TestFactoryBuiltins(t *testing.T) {
	if _, err := NewClassifier(StrategyKeyword, Settings{}); err != nil {
		t.Errorf("NewClassifier(keyword) error = %v", err)
	}
	if _, err := NewExtractor(StrategyNoop, Settings{}); err != nil {
		t.Errorf("NewExtractor(noop) error = %v", err)
	}
	if _, err := NewExtractor(StrategySchema, Settings{}); err != nil {
		t.Errorf("NewExtractor(schema) error = %v", err)
	}
	if _, err := NewGenerator(StrategyTemplate, Settings{}); err != nil {
		t.Errorf("NewGenerator(template) error = %v", err)
	}
}

func TestFactoryUnknownStrategy(t *testing.T) {
	if _, err := NewClassifier("nope", Settings{}); err == nil {
		t.Error("NewClassifier(nope) error = nil, want error")
	}
	if _, err := NewExtractor("nope", Settings{}); err == nil {
		t.Error("NewExtractor(nope) error = nil, want error")
	}
	if _, err := NewGenerator("nope", Settings{}); err == nil {
		t.Error("NewGenerator(nope) error = nil, want error")
	}
}

func TestFactoryCustomRegistration(t *testing.T) {
	RegisterClassifier("custom-test", func(Settings) (Classifier, error) {
		return NewKeywordClassifier(), nil
	})

	c, err := NewClassifier("custom-test", Settings{})
	if err != nil {
		t.Fatalf("NewClassifier(custom-test) error = %v", err)
	}
	if c == nil {
		t.Error("NewClassifier(custom-test) = nil")
	}
}
