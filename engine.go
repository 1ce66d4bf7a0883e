// Package talkengine implements a single-turn NLU pipeline orchestrator.
// An Engine is configured once with a catalog of commands and optional
// strategy overrides, then processes one query per Run call: it classifies
// the intent, extracts parameters, optionally invokes the command's
// executable, and generates response text. At defined decision points the
// linear pipeline suspends into a short sub-dialogue (clarification,
// validation, feedback) that intercepts the next query before the pipeline
// resumes.
package talkengine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/radiantlogicinc/TalkEngine/command"
	"github.com/radiantlogicinc/TalkEngine/interaction"
	"github.com/radiantlogicinc/TalkEngine/internal/metrics"
	"github.com/radiantlogicinc/TalkEngine/nlu"
)

// Engine orchestrates the NLU pipeline for one conversation at a time. It
// is not safe for concurrent Run calls on the same instance; callers
// serialize, one query fully processed before the next begins.
type Engine struct {
	catalog    *command.Catalog
	history    []nlu.HistoryEntry
	classifier nlu.Classifier
	extractor  nlu.Extractor
	generator  nlu.Generator
	handlers   map[interaction.Mode]interaction.Handler

	pctx *pipelineContext

	logger           *zap.Logger
	clarifyThreshold float64
	feedback         bool
	trained          bool
}

// New validates the catalog and builds an engine. Strategy roles not
// overridden by options use the built-in defaults.
func New(meta command.Metadata, opts ...Option) (*Engine, error) {
	e := &Engine{}
	if err := e.configure(meta, opts); err != nil {
		return nil, err
	}
	return e, nil
}

// Reset re-initializes the engine with new configuration, discarding any
// open interaction. On failure the engine keeps its prior catalog,
// strategies, and context untouched.
func (e *Engine) Reset(meta command.Metadata, opts ...Option) error {
	if err := e.configure(meta, opts); err != nil {
		return err
	}
	e.logger.Info("engine reset", zap.Int("commands", e.catalog.Len()))
	return nil
}

// configure builds the catalog and strategy set. Engine fields are only
// written after every validation passes, so a failed reset preserves the
// prior valid state.
func (e *Engine) configure(meta command.Metadata, opts []Option) error {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}

	if s.clarifyThreshold < 0 || s.clarifyThreshold > 1 {
		return &ConfigurationError{Reason: fmt.Sprintf("clarify threshold %v out of range [0, 1]", s.clarifyThreshold)}
	}

	merged := make(command.Metadata, len(meta))
	for name, def := range meta {
		merged[name] = def
	}
	for name, exe := range s.executables {
		def, ok := merged[name]
		if !ok {
			return &ConfigurationError{Reason: fmt.Sprintf("executable override for unknown command %q", name)}
		}
		def.Executable = exe
		merged[name] = def
	}

	catalog, err := command.NewCatalog(merged)
	if err != nil {
		return &ConfigurationError{Reason: "invalid command metadata", Err: err}
	}

	classifier := s.classifier
	if s.classifierSet && classifier == nil {
		s.logger.Warn("invalid intent classifier override, using default")
	}
	if classifier == nil {
		classifier = nlu.NewKeywordClassifier()
	}

	extractor := s.extractor
	if s.extractorSet && extractor == nil {
		s.logger.Warn("invalid parameter extractor override, using default")
	}
	if extractor == nil {
		extractor = nlu.NewNoopExtractor()
	}

	generator := s.generator
	if s.generatorSet && generator == nil {
		s.logger.Warn("invalid text generator override, using default")
	}
	if generator == nil {
		generator = nlu.NewTemplateGenerator()
	}

	e.catalog = catalog
	e.history = append([]nlu.HistoryEntry(nil), s.history...)
	e.classifier = classifier
	e.extractor = extractor
	e.generator = generator
	e.handlers = interaction.NewHandlers()
	e.logger = s.logger
	e.clarifyThreshold = s.clarifyThreshold
	e.feedback = s.feedback
	e.trained = false
	e.pctx = newPipelineContext()

	return nil
}

// Train is a no-op hook reserved for strategies that need corpus-driven
// setup. It always succeeds.
func (e *Engine) Train() error {
	e.trained = true
	e.logger.Debug("train called")
	return nil
}

// Trained reports whether Train has been called since the last reset.
func (e *Engine) Trained() bool { return e.trained }

// InteractionMode reports the currently open sub-dialogue mode, ModeNone
// when the pipeline is idle.
func (e *Engine) InteractionMode() interaction.Mode { return e.pctx.mode }

// History returns the configured conversation history.
func (e *Engine) History() []nlu.HistoryEntry {
	return append([]nlu.HistoryEntry(nil), e.history...)
}

// Catalog returns the engine's validated command catalog.
func (e *Engine) Catalog() *command.Catalog { return e.catalog }

// pipeline stages, in execution order. Resuming after an interaction skips
// the stages whose output the handler already resolved.
type stage int

const (
	stageClassify stage = iota
	stageExtract
	stageExecute
)

// Run processes one natural-language query and returns the structured
// result. While an interaction mode is open the query is routed to that
// mode's handler instead of the pipeline; at most one automatic pipeline
// continuation happens per call. Excluded commands accumulate for the life
// of the configuration. ctx is passed through to strategies and executables
// opaquely; the orchestrator itself never blocks on it.
func (e *Engine) Run(ctx context.Context, query string, excluded ...string) (*Result, error) {
	if e.pctx == nil {
		return nil, &ConfigurationError{Reason: "engine not initialized"}
	}

	metrics.QueryProcessed()
	for _, name := range excluded {
		e.pctx.excluded[name] = true
	}

	if e.pctx.mode != interaction.ModeNone {
		return e.resumeInteraction(ctx, query), nil
	}

	e.pctx.beginConversation()
	return e.advance(ctx, query, stageClassify), nil
}

// resumeInteraction routes a query to the open mode's handler and applies
// its outcome: reply in place, close the dialogue, or close it and resume
// the pipeline within this call.
func (e *Engine) resumeInteraction(ctx context.Context, query string) *Result {
	mode := e.pctx.mode
	handler := e.handlers[mode]
	prompt := payloadPrompt(e.pctx.payload)

	out := handler.HandleInput(query, e.pctx.payload)
	e.applyUpdates(out.Updates)
	e.pctx.appendLog(string(mode), prompt, query)

	e.logger.Debug("interaction input handled",
		zap.String("mode", mode.String()),
		zap.Bool("exit", out.ExitMode),
		zap.Bool("proceed", out.Proceed))

	if !out.ExitMode {
		return &Result{
			Parameters: e.pctx.paramsCopy(),
			Response:   out.Reply,
			Hint:       hintFor(mode),
			Log:        e.pctx.drainLog(),
		}
	}

	e.pctx.mode = interaction.ModeNone
	e.pctx.payload = nil

	if !out.Proceed {
		name := e.pctx.command
		if name == "" {
			name = nlu.UnknownCommand
		}
		return &Result{
			Command:    name,
			Parameters: e.pctx.paramsCopy(),
			Artifact:   e.pctx.artifact,
			Response:   out.Reply,
			Hint:       HintNewConversation,
			Log:        e.pctx.drainLog(),
		}
	}

	return e.advance(ctx, query, e.resumeStage(mode))
}

// resumeStage decides where the pipeline picks up after a handler exits
// with proceed. A resolved clarification or validation supplies the current
// command, so classification is skipped and extraction re-runs to discover
// any still-missing parameters. Anything else restarts the pipeline.
func (e *Engine) resumeStage(mode interaction.Mode) stage {
	switch mode {
	case interaction.ModeClarifying, interaction.ModeValidating:
		if knownCommand(e.pctx.command) {
			return stageExtract
		}
	}
	return stageClassify
}

// knownCommand reports whether name refers to a resolved catalog command
// rather than the absent or unknown sentinel.
func knownCommand(name string) bool {
	return name != "" && name != nlu.UnknownCommand
}

// advance executes the linear pipeline from the given stage onward.
func (e *Engine) advance(ctx context.Context, query string, from stage) *Result {
	p := e.pctx

	if from <= stageClassify {
		cls := e.classify(ctx, query)
		if len(cls.Candidates) > 0 && (cls.Command == "" || cls.Confidence < e.clarifyThreshold) {
			return e.enterClarification(cls)
		}
		p.command = cls.Command
		p.confidence = cls.Confidence
	}

	if knownCommand(p.command) && from <= stageExtract {
		values, requests := e.extract(ctx, query)

		// Values already in context win: a parameter the user supplied
		// through validation is never overwritten by re-extraction.
		for k, v := range values {
			if _, exists := p.parameters[k]; !exists {
				p.parameters[k] = v
			}
		}

		// Requests for parameters the context already holds are satisfied.
		var pending []nlu.ValidationRequest
		for _, req := range requests {
			if _, exists := p.parameters[req.Parameter]; !exists {
				pending = append(pending, req)
			}
		}
		if len(pending) > 0 {
			return e.enterValidation(pending[0])
		}
	}

	if knownCommand(p.command) && from <= stageExecute {
		e.execute(ctx)
	}

	name := p.command
	if name == "" {
		name = nlu.UnknownCommand
	}
	if name == nlu.UnknownCommand {
		metrics.UnknownCommand()
	}

	response := e.generate(ctx, name)

	result := &Result{
		Command:    name,
		Parameters: p.paramsCopy(),
		Artifact:   p.artifact,
		Response:   response,
		Hint:       HintNewConversation,
	}

	if e.feedback && knownCommand(p.command) {
		e.enterFeedback(result)
	}

	result.Log = p.drainLog()
	return result
}

// classify calls the classifier, degrading to no command on failure.
func (e *Engine) classify(ctx context.Context, query string) nlu.Classification {
	cls, err := e.classifier.Classify(ctx, query, e.catalog, e.history, e.pctx.excludedList())
	if err != nil {
		serr := &StrategyError{Stage: nlu.RoleClassification, Err: err}
		e.logger.Error("intent classification failed", zap.Error(serr))
		metrics.StrategyFailed()
		return nlu.Classification{}
	}
	e.logger.Debug("intent classified",
		zap.String("command", cls.Command),
		zap.Float64("confidence", cls.Confidence),
		zap.Int("candidates", len(cls.Candidates)))
	return cls
}

// extract calls the extractor for the current command, degrading to no
// values and no requests on failure.
func (e *Engine) extract(ctx context.Context, query string) (map[string]any, []nlu.ValidationRequest) {
	def, ok := e.catalog.Get(e.pctx.command)
	if !ok {
		return nil, nil
	}

	values, requests, err := e.extractor.Extract(ctx, query, e.pctx.command, def.Parameters, e.snapshot())
	if err != nil {
		serr := &StrategyError{Stage: nlu.RoleExtraction, Err: err}
		e.logger.Error("parameter extraction failed",
			zap.String("command", e.pctx.command), zap.Error(serr))
		metrics.StrategyFailed()
		return nil, nil
	}
	return values, requests
}

// execute runs the current command's executable if one is declared. Every
// failure is recovered: the artifact stays nil and the pipeline continues
// to text generation.
func (e *Engine) execute(ctx context.Context) {
	name := e.pctx.command
	def, ok := e.catalog.Get(name)
	if !ok || def.Executable == nil {
		return
	}
	exe := def.Executable

	bound, err := command.Bind(exe, def.Parameters, e.pctx.parameters)
	if err != nil {
		berr := &ParameterBindingError{Command: name, Err: err}
		e.logger.Error("parameter binding failed", zap.String("command", name), zap.Error(berr))
		metrics.ExecutionFailed()
		return
	}

	got, err := exe.Run(ctx, bound)
	if err != nil {
		serr := &StrategyError{Stage: "executable", Err: err}
		e.logger.Error("executable failed", zap.String("command", name), zap.Error(serr))
		metrics.ExecutionFailed()
		return
	}

	if err := command.CheckResult(exe, got); err != nil {
		terr := &ExecutionResultTypeError{Command: name, Err: err}
		e.logger.Error("executable result rejected", zap.String("command", name), zap.Error(terr))
		metrics.ExecutionFailed()
		return
	}

	e.pctx.artifact = got
	metrics.ExecutionSucceeded()
}

// generate calls the generator, degrading to empty text on failure.
func (e *Engine) generate(ctx context.Context, name string) string {
	text, err := e.generator.Generate(ctx, name, e.pctx.paramsCopy(), e.pctx.artifact, e.snapshot())
	if err != nil {
		serr := &StrategyError{Stage: nlu.RoleGeneration, Err: err}
		e.logger.Error("text generation failed", zap.String("command", name), zap.Error(serr))
		metrics.StrategyFailed()
		return ""
	}
	return text
}

// enterClarification opens the clarification dialogue and ends the call
// with its prompt.
func (e *Engine) enterClarification(cls nlu.Classification) *Result {
	data := &interaction.ClarificationData{Candidates: cls.Candidates}
	e.pctx.mode = interaction.ModeClarifying
	e.pctx.payload = data

	prompt := e.handlers[interaction.ModeClarifying].Prompt(data)
	data.Prompt = prompt
	e.pctx.appendLog(string(interaction.ModeClarifying), prompt, "")

	e.logger.Info("clarification requested",
		zap.Int("candidates", len(cls.Candidates)),
		zap.Float64("confidence", cls.Confidence))
	metrics.ClarificationStarted()

	return &Result{
		Parameters: e.pctx.paramsCopy(),
		Response:   prompt,
		Hint:       HintAwaitingClarification,
		Log:        e.pctx.drainLog(),
	}
}

// enterValidation opens the validation dialogue for one parameter and ends
// the call with its prompt.
func (e *Engine) enterValidation(req nlu.ValidationRequest) *Result {
	data := &interaction.ValidationData{
		Parameter:    req.Parameter,
		Reason:       req.Reason,
		CurrentValue: req.CurrentValue,
	}
	e.pctx.mode = interaction.ModeValidating
	e.pctx.payload = data

	prompt := e.handlers[interaction.ModeValidating].Prompt(data)
	data.Prompt = prompt
	e.pctx.appendLog(string(interaction.ModeValidating), prompt, "")

	e.logger.Info("validation requested",
		zap.String("command", e.pctx.command),
		zap.String("parameter", req.Parameter),
		zap.String("reason", req.Reason))
	metrics.ValidationStarted()

	return &Result{
		Parameters: e.pctx.paramsCopy(),
		Response:   prompt,
		Hint:       HintAwaitingValidation,
		Log:        e.pctx.drainLog(),
	}
}

// enterFeedback opens the feedback dialogue after a completed response. The
// result keeps its resolved command; the prompt is recorded in the log and
// signalled through the hint.
func (e *Engine) enterFeedback(result *Result) {
	data := &interaction.FeedbackData{
		Command:  e.pctx.command,
		Response: result.Response,
		Artifact: e.pctx.artifact,
	}
	e.pctx.mode = interaction.ModeAwaitingFeedback
	e.pctx.payload = data

	prompt := e.handlers[interaction.ModeAwaitingFeedback].Prompt(data)
	data.Prompt = prompt
	e.pctx.appendLog(string(interaction.ModeAwaitingFeedback), prompt, "")

	e.logger.Info("feedback requested", zap.String("command", e.pctx.command))
	metrics.FeedbackPrompted()

	result.Hint = HintAwaitingFeedback
}

// applyUpdates applies handler-returned context updates. Parameter values
// are coerced to their declared schema types where possible.
func (e *Engine) applyUpdates(updates []interaction.Update) {
	for _, u := range updates {
		switch v := u.(type) {
		case interaction.SetCommand:
			e.pctx.command = v.Command
		case interaction.SetConfidence:
			e.pctx.confidence = v.Value
		case interaction.SetParameter:
			e.pctx.parameters[v.Name] = e.coerceParam(v.Name, v.Value)
		case interaction.ExcludeCommand:
			e.pctx.excluded[v.Command] = true
		}
	}
}

// coerceParam converts a raw value to the parameter's declared type. On
// failure the raw value is kept and the mismatch surfaces at binding time.
func (e *Engine) coerceParam(name string, value any) any {
	def, ok := e.catalog.Get(e.pctx.command)
	if !ok {
		return value
	}
	spec, ok := def.Parameters[name]
	if !ok {
		return value
	}
	coerced, err := spec.Coerce(value)
	if err != nil {
		e.logger.Warn("parameter coercion failed",
			zap.String("command", e.pctx.command),
			zap.String("parameter", name),
			zap.Error(err))
		return value
	}
	return coerced
}

// snapshot builds the read-only state view handed to strategies.
func (e *Engine) snapshot() nlu.Snapshot {
	return nlu.Snapshot{
		Command:    e.pctx.command,
		Parameters: e.pctx.paramsCopy(),
		Artifact:   e.pctx.artifact,
		History:    e.history,
	}
}

// payloadPrompt recalls the prompt stored on the open payload, used for the
// reply log entry.
func payloadPrompt(p interaction.Payload) string {
	switch v := p.(type) {
	case *interaction.ClarificationData:
		return v.Prompt
	case *interaction.ValidationData:
		return v.Prompt
	case *interaction.FeedbackData:
		return v.Prompt
	}
	return ""
}

func hintFor(mode interaction.Mode) Hint {
	switch mode {
	case interaction.ModeClarifying:
		return HintAwaitingClarification
	case interaction.ModeValidating:
		return HintAwaitingValidation
	case interaction.ModeAwaitingFeedback:
		return HintAwaitingFeedback
	}
	return HintNewConversation
}
