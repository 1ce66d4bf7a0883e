package interaction

import (
	"fmt"
	"strings"
)

// ValidationHandler runs the parameter validation dialogue: it asks for a
// value for one parameter and takes the next reply as that value.
type ValidationHandler struct{}

var _ Handler = (*ValidationHandler)(nil)

// Prompt asks for the awaited parameter, naming the reason it is needed.
func (h *ValidationHandler) Prompt(p Payload) string {
	data, ok := p.(*ValidationData)
	if !ok {
		return "Sorry, I need more information. Could you please rephrase?"
	}
	if data.Prompt != "" {
		return data.Prompt
	}
	return fmt.Sprintf("What is the value for %s? (%s)", data.Parameter, data.Reason)
}

// HandleInput records the reply as the parameter's value and resumes the
// pipeline. Empty input re-prompts.
func (h *ValidationHandler) HandleInput(query string, p Payload) Outcome {
	data, ok := p.(*ValidationData)
	if !ok {
		return Outcome{Reply: "Error: invalid interaction data for validation.", ExitMode: true}
	}

	value := strings.TrimSpace(query)
	if value == "" {
		return Outcome{
			Reply: fmt.Sprintf("Please provide a value for %s.", data.Parameter),
		}
	}

	return Outcome{
		Reply: fmt.Sprintf("Okay, using '%s' for %s.", value, data.Parameter),
		Updates: []Update{
			SetParameter{Name: data.Parameter, Value: value},
		},
		ExitMode: true,
		Proceed:  true,
	}
}
