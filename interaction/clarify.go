package interaction

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/radiantlogicinc/TalkEngine/command"
	"github.com/radiantlogicinc/TalkEngine/nlu"
)

// DefaultClarificationPrompt introduces the numbered candidate list.
const DefaultClarificationPrompt = "Please choose one of the following options:"

const confusedReply = "Sorry, I got confused. Could you please rephrase?"

// ClarificationHandler runs the command clarification dialogue. The user
// picks a candidate by number or restates one by name.
type ClarificationHandler struct{}

var _ Handler = (*ClarificationHandler)(nil)

// Prompt renders the clarification question with numbered options.
func (h *ClarificationHandler) Prompt(p Payload) string {
	data, ok := p.(*ClarificationData)
	if !ok {
		return confusedReply
	}

	intro := data.Prompt
	if intro == "" {
		intro = DefaultClarificationPrompt
	}

	var b strings.Builder
	b.WriteString(intro)
	for i, c := range data.Candidates {
		fmt.Fprintf(&b, "\n%d. %s", i+1, c.Command)
	}
	return b.String()
}

// HandleInput resolves the user's choice. A resolved choice exits the mode
// and resumes the pipeline immediately; anything unrecognized re-prompts.
func (h *ClarificationHandler) HandleInput(query string, p Payload) Outcome {
	data, ok := p.(*ClarificationData)
	if !ok {
		return Outcome{Reply: confusedReply, ExitMode: true}
	}

	chosen := ""
	input := strings.TrimSpace(query)

	if n, err := strconv.Atoi(input); err == nil {
		if n >= 1 && n <= len(data.Candidates) {
			chosen = data.Candidates[n-1].Command
		}
	} else {
		chosen = matchCandidate(input, data.Candidates)
	}

	if chosen == "" {
		return Outcome{
			Reply: "Sorry, I didn't understand that choice. Please try again.",
		}
	}

	return Outcome{
		Reply: fmt.Sprintf("Okay, proceeding with %s.", chosen),
		Updates: []Update{
			SetCommand{Command: chosen},
			SetConfidence{Value: 1.0},
		},
		ExitMode: true,
		Proceed:  true,
	}
}

// matchCandidate matches a restated command against the candidates by full
// name or any of its labels.
func matchCandidate(input string, candidates []nlu.ScoredCommand) string {
	lower := strings.ToLower(input)
	for _, c := range candidates {
		for _, label := range command.Labels(c.Command) {
			if lower == label {
				return c.Command
			}
		}
	}
	return ""
}
