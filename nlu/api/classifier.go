package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/radiantlogicinc/TalkEngine/command"
	"github.com/radiantlogicinc/TalkEngine/nlu"
)

// Ensure Classifier implements nlu.Classifier.
var _ nlu.Classifier = (*Classifier)(nil)

func init() {
	nlu.RegisterClassifier(StrategyAPI, func(s nlu.Settings) (nlu.Classifier, error) {
		if s.APIKey == "" {
			return nil, fmt.Errorf("api classifier: API key is required")
		}
		var opts []Option
		if s.BaseURL != "" {
			opts = append(opts, WithBaseURL(s.BaseURL))
		}
		return NewClassifier(s.APIKey, s.Model, opts...), nil
	})
}

// Classifier matches queries against the catalog using the Anthropic API.
type Classifier struct {
	client *client
}

// NewClassifier creates a new API-based intent classifier.
func NewClassifier(apiKey, model string, opts ...Option) *Classifier {
	return &Classifier{client: newClient(apiKey, model, opts...)}
}

// Classify asks the model for the best-matching command and its
// alternatives. Excluded commands are stripped from the prompt and
// filtered out of the reply.
func (c *Classifier) Classify(ctx context.Context, query string, catalog *command.Catalog, history []nlu.HistoryEntry, excluded []string) (nlu.Classification, error) {
	skip := make(map[string]bool, len(excluded))
	for _, name := range excluded {
		skip[name] = true
	}

	var commands []string
	for _, name := range catalog.Names() {
		if skip[name] {
			continue
		}
		def, _ := catalog.Get(name)
		commands = append(commands, fmt.Sprintf("- %s: %s", name, def.Description))
	}
	if len(commands) == 0 {
		return nlu.Classification{}, nil
	}

	text, err := c.client.complete(ctx, buildClassifyPrompt(query, commands, history))
	if err != nil {
		return nlu.Classification{}, err
	}

	var parsed struct {
		Command    string  `json:"command"`
		Confidence float64 `json:"confidence"`
		Candidates []struct {
			Command string  `json:"command"`
			Score   float64 `json:"score"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nlu.Classification{}, fmt.Errorf("parsing response JSON: %w", err)
	}

	cls := nlu.Classification{Confidence: parsed.Confidence}
	if !skip[parsed.Command] {
		cls.Command = parsed.Command
	}
	for _, cand := range parsed.Candidates {
		if skip[cand.Command] {
			continue
		}
		cls.Candidates = append(cls.Candidates, nlu.ScoredCommand{Command: cand.Command, Score: cand.Score})
	}
	return cls, nil
}

func buildClassifyPrompt(query string, commands []string, history []nlu.HistoryEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, `Classify the user's query against the available commands. Return JSON with:
- command: the single best matching command name, or "unknown" if none apply
- confidence: how confident you are in the match (0.0 to 1.0)
- candidates: array of {command, score} objects for every plausible match, best first

Available commands:
%s
`, strings.Join(commands, "\n"))

	if len(history) > 0 {
		b.WriteString("\nConversation so far:\n")
		for _, entry := range history {
			fmt.Fprintf(&b, "%s: %s\n", entry.Role, entry.Content)
		}
	}

	fmt.Fprintf(&b, `
User query:
%s

Respond with only valid JSON, no other text.`, query)
	return b.String()
}
