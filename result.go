package talkengine

import "github.com/radiantlogicinc/TalkEngine/interaction"

// Hint tells the host what kind of input the next Run call expects.
type Hint string

const (
	// HintNewConversation means the pipeline completed and the next query
	// starts fresh.
	HintNewConversation Hint = "new_conversation"
	// HintAwaitingClarification means the next input answers a command
	// clarification prompt.
	HintAwaitingClarification Hint = "awaiting_clarification"
	// HintAwaitingValidation means the next input supplies a parameter value.
	HintAwaitingValidation Hint = "awaiting_validation"
	// HintAwaitingFeedback means the next input rates the response just given.
	HintAwaitingFeedback Hint = "awaiting_feedback"
)

// Result is the outcome of one Run call. Command is empty while a
// clarification or validation dialogue is open and "unknown" when no catalog
// command could be resolved. A Result is never mutated after it is returned.
type Result struct {
	Command    string                 `json:"command"`
	Parameters map[string]any         `json:"parameters"`
	Artifact   any                    `json:"artifact,omitempty"`
	Response   string                 `json:"response_text"`
	Log        []interaction.LogEntry `json:"interaction_log,omitempty"`
	Hint       Hint                   `json:"hint"`
}
