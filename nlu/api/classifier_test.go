package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/radiantlogicinc/TalkEngine/command"
	"github.com/radiantlogicinc/TalkEngine/nlu"
)

func testCatalog(t *testing.T) *command.Catalog {
	t.Helper()
	catalog, err := command.NewCatalog(command.Metadata{
		"calculator.add": {
			Description: "Add two numbers together",
			Parameters: command.Schema{
				"a": {Type: command.TypeInt, Required: true, Description: "first operand"},
				"b": {Type: command.TypeInt, Required: true, Description: "second operand"},
			},
		},
		"weather.get_forecast": {
			Description: "Get the weather forecast for a location",
			Parameters: command.Schema{
				"location": {Type: command.TypeString, Required: true, Description: "city name"},
			},
		},
	})
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}
	return catalog
}

func textResponse(text string) map[string]interface{} {
	return map[string]interface{}{
		"content": []map[string]interface{}{
			{"type": "text", "text": text},
		},
	}
}

func TestAPIClassifier_Classify(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Verify request
		if r.Header.Get("x-api-key") != "test-key" {
			t.Error("Missing API key header")
		}
		if r.Header.Get("anthropic-version") == "" {
			t.Error("Missing anthropic-version header")
		}

		json.NewEncoder(w).Encode(textResponse(
			`{"command": "calculator.add", "confidence": 0.93, "candidates": [{"command": "calculator.add", "score": 0.93}]}`,
		))
	}))
	defer server.Close()

	classifier := NewClassifier("test-key", "claude-sonnet-4-20250514", WithBaseURL(server.URL))

	cls, err := classifier.Classify(context.Background(), "add 2 and 3", testCatalog(t), nil, nil)
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if cls.Command != "calculator.add" {
		t.Errorf("Command = %q, want %q", cls.Command, "calculator.add")
	}
	if cls.Confidence < 0.9 {
		t.Errorf("Confidence = %f, want >= 0.9", cls.Confidence)
	}
	if len(cls.Candidates) != 1 {
		t.Errorf("Candidates = %v, want one entry", cls.Candidates)
	}
}

func TestAPIClassifier_Classify_FiltersExcluded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// A sloppy model ignores the exclusion.
		json.NewEncoder(w).Encode(textResponse(
			`{"command": "calculator.add", "confidence": 0.9, "candidates": [{"command": "calculator.add", "score": 0.9}, {"command": "weather.get_forecast", "score": 0.4}]}`,
		))
	}))
	defer server.Close()

	classifier := NewClassifier("test-key", "claude-sonnet-4-20250514", WithBaseURL(server.URL))

	cls, err := classifier.Classify(context.Background(), "add 2 and 3", testCatalog(t), nil, []string{"calculator.add"})
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if cls.Command != "" {
		t.Errorf("Command = %q, want empty for excluded command", cls.Command)
	}
	if len(cls.Candidates) != 1 || cls.Candidates[0].Command != "weather.get_forecast" {
		t.Errorf("Candidates = %v, want only weather.get_forecast", cls.Candidates)
	}
}

func TestAPIClassifier_Classify_AllExcluded(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	classifier := NewClassifier("test-key", "claude-sonnet-4-20250514", WithBaseURL(server.URL))

	cls, err := classifier.Classify(context.Background(), "add 2 and 3", testCatalog(t), nil,
		[]string{"calculator.add", "weather.get_forecast"})
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if cls.Command != "" || cls.Confidence != 0 {
		t.Errorf("Classify() = %+v, want zero classification", cls)
	}
	if called {
		t.Error("Classify() should not call the API with an empty catalog")
	}
}

func TestAPIClassifier_Classify_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "invalid request"}`))
	}))
	defer server.Close()

	classifier := NewClassifier("test-key", "claude-sonnet-4-20250514", WithBaseURL(server.URL))
	_, err := classifier.Classify(context.Background(), "test", testCatalog(t), nil, nil)
	if err == nil {
		t.Error("Classify() should error on non-200 status")
	}
}

func TestAPIClassifier_Classify_EmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response := map[string]interface{}{"content": []map[string]interface{}{}}
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	classifier := NewClassifier("test-key", "claude-sonnet-4-20250514", WithBaseURL(server.URL))
	_, err := classifier.Classify(context.Background(), "test", testCatalog(t), nil, nil)
	if err == nil {
		t.Error("Classify() should error on empty content")
	}
}

func TestAPIClassifier_Classify_MalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(textResponse("sorry, I cannot help with that"))
	}))
	defer server.Close()

	classifier := NewClassifier("test-key", "claude-sonnet-4-20250514", WithBaseURL(server.URL))
	_, err := classifier.Classify(context.Background(), "test", testCatalog(t), nil, nil)
	if err == nil {
		t.Error("Classify() should error on non-JSON reply")
	}
}

func TestFactoryRegistration(t *testing.T) {
	settings := nlu.Settings{APIKey: "test-key", Model: "claude-sonnet-4-20250514"}

	if _, err := nlu.NewClassifier(StrategyAPI, settings); err != nil {
		t.Errorf("NewClassifier(api) error = %v", err)
	}
	if _, err := nlu.NewExtractor(StrategyAPI, settings); err != nil {
		t.Errorf("NewExtractor(api) error = %v", err)
	}
	if _, err := nlu.NewGenerator(StrategyAPI, settings); err != nil {
		t.Errorf("NewGenerator(api) error = %v", err)
	}
}

func TestFactoryRequiresAPIKey(t *testing.T) {
	if _, err := nlu.NewClassifier(StrategyAPI, nlu.Settings{}); err == nil {
		t.Error("NewClassifier(api) should error without an API key")
	}
	if _, err := nlu.NewExtractor(StrategyAPI, nlu.Settings{}); err == nil {
		t.Error("NewExtractor(api) should error without an API key")
	}
	if _, err := nlu.NewGenerator(StrategyAPI, nlu.Settings{}); err == nil {
		t.Error("NewGenerator(api) should error without an API key")
	}
}
