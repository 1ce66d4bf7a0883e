package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/radiantlogicinc/TalkEngine/nlu"
)

// Ensure Generator implements nlu.Generator.
var _ nlu.Generator = (*Generator)(nil)

func init() {
	nlu.RegisterGenerator(StrategyAPI, func(s nlu.Settings) (nlu.Generator, error) {
		if s.APIKey == "" {
			return nil, fmt.Errorf("api generator: API key is required")
		}
		var opts []Option
		if s.BaseURL != "" {
			opts = append(opts, WithBaseURL(s.BaseURL))
		}
		return NewGenerator(s.APIKey, s.Model, opts...), nil
	})
}

// Generator produces the final reply text using the Anthropic API.
type Generator struct {
	client *client
}

// NewGenerator creates a new API-based text generator.
func NewGenerator(apiKey, model string, opts ...Option) *Generator {
	return &Generator{client: newClient(apiKey, model, opts...)}
}

// Generate asks the model for a short user-facing reply. Unlike the other
// strategies the reply is plain text, not JSON.
func (g *Generator) Generate(ctx context.Context, cmd string, params map[string]any, artifact any, snap nlu.Snapshot) (string, error) {
	text, err := g.client.complete(ctx, buildGeneratePrompt(cmd, params, artifact, snap))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func buildGeneratePrompt(cmd string, params map[string]any, artifact any, snap nlu.Snapshot) string {
	var b strings.Builder
	b.WriteString("Write a short, friendly reply to the user summarizing what was understood and done.\n\n")

	if cmd == "" || cmd == nlu.UnknownCommand {
		b.WriteString("The request did not match any known command; apologize briefly and ask the user to rephrase.\n")
	} else {
		fmt.Fprintf(&b, "Command: %s\n", cmd)
		if len(params) > 0 {
			encoded, _ := json.Marshal(params)
			fmt.Fprintf(&b, "Parameters: %s\n", encoded)
		}
		if artifact != nil {
			encoded, err := json.Marshal(artifact)
			if err != nil {
				encoded = []byte(fmt.Sprintf("%+v", artifact))
			}
			fmt.Fprintf(&b, "Execution result: %s\n", encoded)
		}
	}

	if len(snap.History) > 0 {
		b.WriteString("\nConversation so far:\n")
		for _, entry := range snap.History {
			fmt.Fprintf(&b, "%s: %s\n", entry.Role, entry.Content)
		}
	}

	b.WriteString("\nRespond with only the reply text.")
	return b.String()
}
