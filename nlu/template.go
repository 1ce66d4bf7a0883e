package nlu

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// UnknownCommand is the command name the engine reports when no catalog
// command could be resolved for a query.
const UnknownCommand = "unknown"

// TemplateGenerator is the default text generator. It renders the resolved
// command and parameters as a flat summary line.
type TemplateGenerator struct{}

var _ Generator = (*TemplateGenerator)(nil)

// NewTemplateGenerator creates the default generator.
func NewTemplateGenerator() *TemplateGenerator {
	return &TemplateGenerator{}
}

// Generate renders "Intent: <cmd>, Parameters: k='v', ..." with parameters
// in name order, appending the artifact when one exists.
func (g *TemplateGenerator) Generate(ctx context.Context, cmd string, params map[string]any, artifact any, snap Snapshot) (string, error) {
	if cmd == "" || cmd == UnknownCommand {
		return "I'm sorry, I didn't understand that.", nil
	}

	paramStr := "(no parameters)"
	if len(params) > 0 {
		keys := make([]string, 0, len(params))
		for k := range params {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s='%v'", k, params[k]))
		}
		paramStr = strings.Join(parts, ", ")
	}

	text := fmt.Sprintf("Intent: %s, Parameters: %s", cmd, paramStr)
	if artifact != nil {
		text += fmt.Sprintf(", Code Result: %+v", artifact)
	}
	return text, nil
}
