package talkengine

import "fmt"

// ConfigurationError reports malformed catalog or override input at
// initialization or reset time. It is the only pipeline error surfaced to
// callers; the others below are recovered inside Run and logged.
type ConfigurationError struct {
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration: %s: %v", e.Reason, e.Err)
	}
	return "configuration: " + e.Reason
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// ParameterBindingError reports that extracted values failed to populate a
// command's typed parameter struct before execution.
type ParameterBindingError struct {
	Command string
	Err     error
}

func (e *ParameterBindingError) Error() string {
	return fmt.Sprintf("binding parameters for %q: %v", e.Command, e.Err)
}

func (e *ParameterBindingError) Unwrap() error { return e.Err }

// ExecutionResultTypeError reports that an executable's return value did not
// match its declared result type.
type ExecutionResultTypeError struct {
	Command string
	Err     error
}

func (e *ExecutionResultTypeError) Error() string {
	return fmt.Sprintf("result of %q: %v", e.Command, e.Err)
}

func (e *ExecutionResultTypeError) Unwrap() error { return e.Err }

// StrategyError reports a failure inside a pluggable strategy
// implementation. Stage names the pipeline role that failed.
type StrategyError struct {
	Stage string
	Err   error
}

func (e *StrategyError) Error() string {
	return fmt.Sprintf("strategy %s: %v", e.Stage, e.Err)
}

func (e *StrategyError) Unwrap() error { return e.Err }
