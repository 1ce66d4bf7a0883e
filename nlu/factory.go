package nlu

import "fmt"

// Strategy role keys, used in configuration and override maps.
const (
	RoleClassification = "intent_detection"
	RoleExtraction     = "param_extraction"
	RoleGeneration     = "text_generation"
)

// Built-in strategy names.
const (
	StrategyKeyword  = "keyword"
	StrategyNoop     = "noop"
	StrategySchema   = "schema"
	StrategyTemplate = "template"
)

// Settings carries the configuration a strategy factory may need. Built-in
// strategies ignore it; network-backed strategies read their credentials
// and endpoint from it.
type Settings struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Factory functions create strategies from settings.
type (
	ClassifierFactory func(s Settings) (Classifier, error)
	ExtractorFactory  func(s Settings) (Extractor, error)
	GeneratorFactory  func(s Settings) (Generator, error)
)

var (
	classifierFactories = make(map[string]ClassifierFactory)
	extractorFactories  = make(map[string]ExtractorFactory)
	generatorFactories  = make(map[string]GeneratorFactory)
)

func init() {
	RegisterClassifier(StrategyKeyword, func(Settings) (Classifier, error) {
		return NewKeywordClassifier(), nil
	})
	RegisterExtractor(StrategyNoop, func(Settings) (Extractor, error) {
		return NewNoopExtractor(), nil
	})
	RegisterExtractor(StrategySchema, func(Settings) (Extractor, error) {
		return NewSchemaExtractor(), nil
	})
	RegisterGenerator(StrategyTemplate, func(Settings) (Generator, error) {
		return NewTemplateGenerator(), nil
	})
}

// RegisterClassifier registers a classifier factory under a strategy name.
func RegisterClassifier(name string, f ClassifierFactory) {
	classifierFactories[name] = f
}

// RegisterExtractor registers an extractor factory under a strategy name.
func RegisterExtractor(name string, f ExtractorFactory) {
	extractorFactories[name] = f
}

// RegisterGenerator registers a generator factory under a strategy name.
func RegisterGenerator(name string, f GeneratorFactory) {
	generatorFactories[name] = f
}

// NewClassifier creates the named classifier strategy.
func NewClassifier(name string, s Settings) (Classifier, error) {
	f, ok := classifierFactories[name]
	if !ok {
		return nil, notRegistered(name, RoleClassification)
	}
	return f(s)
}

// NewExtractor creates the named extractor strategy.
func NewExtractor(name string, s Settings) (Extractor, error) {
	f, ok := extractorFactories[name]
	if !ok {
		return nil, notRegistered(name, RoleExtraction)
	}
	return f(s)
}

// NewGenerator creates the named generator strategy.
func NewGenerator(name string, s Settings) (Generator, error) {
	f, ok := generatorFactories[name]
	if !ok {
		return nil, notRegistered(name, RoleGeneration)
	}
	return f(s)
}

func notRegistered(name, role string) error {
	return fmt.Errorf("strategy %q not registered for %s (import _ \"github.com/radiantlogicinc/TalkEngine/nlu/api\" for api strategies)", name, role)
}
