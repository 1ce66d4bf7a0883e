package interaction

import (
	"fmt"
	"strings"
)

// DefaultFeedbackPrompt asks the user to rate the response.
const DefaultFeedbackPrompt = "Was this response helpful? (yes/no/details)"

// feedbackSnippetLen caps how much of the response the prompt quotes back.
const feedbackSnippetLen = 200

// FeedbackHandler collects the user's verdict on a response. It never
// resumes the pipeline; negative feedback excludes the rated command so a
// rephrased query resolves differently.
type FeedbackHandler struct{}

var _ Handler = (*FeedbackHandler)(nil)

// Prompt quotes a snippet of the response and asks whether it helped.
func (h *FeedbackHandler) Prompt(p Payload) string {
	data, ok := p.(*FeedbackData)
	if !ok {
		return "Could I get your feedback on the previous response?"
	}

	question := data.Prompt
	if question == "" {
		question = DefaultFeedbackPrompt
	}

	snippet := data.Response
	if len(snippet) > feedbackSnippetLen {
		snippet = snippet[:feedbackSnippetLen] + "..."
	}
	return fmt.Sprintf("Regarding the response:\n---\n%s\n---\n%s", snippet, question)
}

// HandleInput acknowledges the feedback and closes the dialogue.
func (h *FeedbackHandler) HandleInput(query string, p Payload) Outcome {
	data, ok := p.(*FeedbackData)
	if !ok {
		return Outcome{Reply: "Error processing feedback.", ExitMode: true}
	}

	feedback := strings.ToLower(strings.TrimSpace(query))
	switch feedback {
	case "no", "incorrect", "wrong":
		out := Outcome{
			Reply:    "Thanks for letting me know. Can you provide more details on what was wrong?",
			ExitMode: true,
		}
		if data.Command != "" {
			out.Updates = []Update{ExcludeCommand{Command: data.Command}}
		}
		return out
	default:
		return Outcome{Reply: "Thanks for the feedback!", ExitMode: true}
	}
}
