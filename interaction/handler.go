package interaction

// Update is a typed context mutation returned by a handler. Handlers never
// touch pipeline state themselves; the engine applies updates so every
// transition stays centralized and auditable.
type Update interface {
	isUpdate()
}

// SetCommand resolves the pipeline's current command.
type SetCommand struct {
	Command string
}

// SetConfidence records the classification confidence for the current
// command.
type SetConfidence struct {
	Value float64
}

// SetParameter records a value for one parameter of the current command.
type SetParameter struct {
	Name  string
	Value any
}

// ExcludeCommand removes a command from consideration for the rest of the
// conversation.
type ExcludeCommand struct {
	Command string
}

func (SetCommand) isUpdate()     {}
func (SetConfidence) isUpdate()  {}
func (SetParameter) isUpdate()   {}
func (ExcludeCommand) isUpdate() {}

// Outcome is a handler's verdict on one user reply. ExitMode closes the
// sub-dialogue; Proceed additionally resumes the pipeline within the same
// call. Reply is the text shown to the user when the call ends here.
type Outcome struct {
	Reply    string
	Updates  []Update
	ExitMode bool
	Proceed  bool
}

// Handler interprets user input for one interaction mode.
type Handler interface {
	// Prompt renders the initial prompt for the mode's payload.
	Prompt(p Payload) string
	// HandleInput interprets a reply against the payload.
	HandleInput(query string, p Payload) Outcome
}

// NewHandlers returns the fixed handler lookup keyed by mode. Adding a mode
// means adding a payload variant and registering its handler here; the
// calling convention never changes.
func NewHandlers() map[Mode]Handler {
	return map[Mode]Handler{
		ModeClarifying:       &ClarificationHandler{},
		ModeValidating:       &ValidationHandler{},
		ModeAwaitingFeedback: &FeedbackHandler{},
	}
}
