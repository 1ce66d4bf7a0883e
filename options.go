package talkengine

import (
	"go.uber.org/zap"

	"github.com/radiantlogicinc/TalkEngine/command"
	"github.com/radiantlogicinc/TalkEngine/nlu"
)

// DefaultClarifyThreshold is the confidence below which the engine asks the
// user to choose between candidate commands.
const DefaultClarifyThreshold = 0.7

// Option configures an Engine at initialization or reset.
type Option func(*settings)

type settings struct {
	history []nlu.HistoryEntry

	classifier    nlu.Classifier
	classifierSet bool
	extractor     nlu.Extractor
	extractorSet  bool
	generator     nlu.Generator
	generatorSet  bool

	executables map[string]*command.Executable

	logger           *zap.Logger
	clarifyThreshold float64
	feedback         bool
}

func defaultSettings() settings {
	return settings{
		logger:           zap.NewNop(),
		clarifyThreshold: DefaultClarifyThreshold,
		executables:      make(map[string]*command.Executable),
	}
}

// WithHistory supplies prior conversation turns. The engine passes them to
// strategies without interpreting them.
func WithHistory(history []nlu.HistoryEntry) Option {
	return func(s *settings) {
		s.history = history
	}
}

// WithClassifier overrides the intent classification strategy. A nil value
// is treated as an invalid override: the default is used and a warning
// logged.
func WithClassifier(c nlu.Classifier) Option {
	return func(s *settings) {
		s.classifier = c
		s.classifierSet = true
	}
}

// WithExtractor overrides the parameter extraction strategy.
func WithExtractor(e nlu.Extractor) Option {
	return func(s *settings) {
		s.extractor = e
		s.extractorSet = true
	}
}

// WithGenerator overrides the text generation strategy.
func WithGenerator(g nlu.Generator) Option {
	return func(s *settings) {
		s.generator = g
		s.generatorSet = true
	}
}

// WithExecutable attaches or overrides the executable for a catalog command.
// The command must exist in the catalog passed alongside this option.
func WithExecutable(cmd string, exe *command.Executable) Option {
	return func(s *settings) {
		s.executables[cmd] = exe
	}
}

// WithLogger sets the engine's logger. The default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClarifyThreshold overrides the clarification confidence cutoff.
func WithClarifyThreshold(threshold float64) Option {
	return func(s *settings) {
		s.clarifyThreshold = threshold
	}
}

// WithFeedbackPrompts enables the feedback dialogue: after each resolved
// response the engine asks the user whether it helped.
func WithFeedbackPrompts(enabled bool) Option {
	return func(s *settings) {
		s.feedback = enabled
	}
}
