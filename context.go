package talkengine

import (
	"sort"

	"github.com/radiantlogicinc/TalkEngine/interaction"
)

// pipelineContext is the orchestrator's per-instance mutable state. The
// engine owns it exclusively: strategies see immutable snapshots and
// interaction handlers return updates for the engine to apply. Mode and
// payload are the only fields meant to survive between calls; the
// conversation fields are cleared whenever a call starts from idle.
type pipelineContext struct {
	command    string
	parameters map[string]any
	artifact   any
	confidence float64

	// excluded accumulates commands removed from consideration, both from
	// per-call arguments and from handler updates. Cleared only by reset.
	excluded map[string]bool

	mode    interaction.Mode
	payload interaction.Payload

	// log collects the interaction steps of the current call; drained into
	// the Result at the end of every call.
	log []interaction.LogEntry
}

func newPipelineContext() *pipelineContext {
	return &pipelineContext{
		parameters: make(map[string]any),
		excluded:   make(map[string]bool),
	}
}

// beginConversation clears the per-conversation fields. Called only when no
// interaction is open, so suspended state is never lost.
func (c *pipelineContext) beginConversation() {
	c.command = ""
	c.parameters = make(map[string]any)
	c.artifact = nil
	c.confidence = 0
}

func (c *pipelineContext) appendLog(stage, prompt, reply string) {
	c.log = append(c.log, interaction.LogEntry{Stage: stage, Prompt: prompt, Reply: reply})
}

// drainLog returns the call's log entries and clears the buffer.
func (c *pipelineContext) drainLog() []interaction.LogEntry {
	out := c.log
	c.log = nil
	return out
}

// excludedList returns the excluded commands as a sorted slice.
func (c *pipelineContext) excludedList() []string {
	if len(c.excluded) == 0 {
		return nil
	}
	out := make([]string, 0, len(c.excluded))
	for name := range c.excluded {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// paramsCopy returns a copy of the current parameters for a Result.
func (c *pipelineContext) paramsCopy() map[string]any {
	out := make(map[string]any, len(c.parameters))
	for k, v := range c.parameters {
		out[k] = v
	}
	return out
}
