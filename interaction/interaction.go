// Package interaction implements the sub-dialogue layer of the pipeline:
// the interaction modes that suspend linear processing, the payload carried
// while a mode is open, and the handlers that interpret the user's replies.
package interaction

import "github.com/radiantlogicinc/TalkEngine/nlu"

// Mode identifies a suspended sub-dialogue state. While a mode is open the
// next query is routed to its handler instead of the linear pipeline.
type Mode string

const (
	ModeNone             Mode = ""
	ModeClarifying       Mode = "clarifying_intent"
	ModeValidating       Mode = "validating_parameter"
	ModeAwaitingFeedback Mode = "awaiting_feedback"
)

// String returns the mode's wire name, "idle" for ModeNone.
func (m Mode) String() string {
	if m == ModeNone {
		return "idle"
	}
	return string(m)
}

// Payload is the mode-specific data carried while a sub-dialogue is open.
// Exactly one variant is active at a time, tagged by the open Mode.
type Payload interface {
	isPayload()
}

// ClarificationData is the payload for ModeClarifying: the candidate
// commands the user is asked to choose between.
type ClarificationData struct {
	Candidates []nlu.ScoredCommand
	Prompt     string
}

// ValidationData is the payload for ModeValidating: the parameter awaiting
// a value from the user.
type ValidationData struct {
	Parameter    string
	Reason       string
	CurrentValue any
	Prompt       string
}

// FeedbackData is the payload for ModeAwaitingFeedback: the response the
// user is asked to rate.
type FeedbackData struct {
	Command  string
	Response string
	Artifact any
	Prompt   string
}

func (*ClarificationData) isPayload() {}
func (*ValidationData) isPayload()    {}
func (*FeedbackData) isPayload()      {}

// LogEntry records one interaction step: the prompt shown and the user's
// reply to it. Prompt-issuing steps have an empty Reply.
type LogEntry struct {
	Stage  string `json:"stage"`
	Prompt string `json:"prompt"`
	Reply  string `json:"reply"`
}
