package metrics

import (
	"sync/atomic"
)

// Metrics tracks operational metrics.
type Metrics struct {
	QueriesProcessed    uint64 `json:"queries_processed"`
	Clarifications      uint64 `json:"clarifications"`
	Validations         uint64 `json:"validations"`
	FeedbackPrompts     uint64 `json:"feedback_prompts"`
	Executions          uint64 `json:"executions"`
	ExecutionFailures   uint64 `json:"execution_failures"`
	StrategyErrors      uint64 `json:"strategy_errors"`
	UnknownCommands     uint64 `json:"unknown_commands"`
	SessionsCreated     uint64 `json:"sessions_created"`
	SessionsExpired     uint64 `json:"sessions_expired"`
	ActiveSessions      int64  `json:"active_sessions"`
	RateLimitedRequests uint64 `json:"rate_limited_requests"`
}

var global = &Metrics{}

// QueryProcessed increments the count of queries run through the pipeline.
func QueryProcessed() { atomic.AddUint64(&global.QueriesProcessed, 1) }

// ClarificationStarted increments the count of clarification dialogues opened.
func ClarificationStarted() { atomic.AddUint64(&global.Clarifications, 1) }

// ValidationStarted increments the count of validation dialogues opened.
func ValidationStarted() { atomic.AddUint64(&global.Validations, 1) }

// FeedbackPrompted increments the count of feedback dialogues opened.
func FeedbackPrompted() { atomic.AddUint64(&global.FeedbackPrompts, 1) }

// ExecutionSucceeded increments the count of command executables run to completion.
func ExecutionSucceeded() { atomic.AddUint64(&global.Executions, 1) }

// ExecutionFailed increments the count of executable invocations that failed.
func ExecutionFailed() { atomic.AddUint64(&global.ExecutionFailures, 1) }

// StrategyFailed increments the count of strategy calls that returned errors.
func StrategyFailed() { atomic.AddUint64(&global.StrategyErrors, 1) }

// UnknownCommand increments the count of queries that resolved to no command.
func UnknownCommand() { atomic.AddUint64(&global.UnknownCommands, 1) }

// SessionCreated increments the session counters.
func SessionCreated() {
	atomic.AddUint64(&global.SessionsCreated, 1)
	atomic.AddInt64(&global.ActiveSessions, 1)
}

// SessionClosed decrements the active session gauge.
func SessionClosed() { atomic.AddInt64(&global.ActiveSessions, -1) }

// SessionExpired increments the count of idle sessions swept.
func SessionExpired() {
	atomic.AddUint64(&global.SessionsExpired, 1)
	atomic.AddInt64(&global.ActiveSessions, -1)
}

// RateLimited increments the count of requests rejected by the rate limiter.
func RateLimited() { atomic.AddUint64(&global.RateLimitedRequests, 1) }

// Get returns a snapshot of the current metrics.
func Get() Metrics {
	return Metrics{
		QueriesProcessed:    atomic.LoadUint64(&global.QueriesProcessed),
		Clarifications:      atomic.LoadUint64(&global.Clarifications),
		Validations:         atomic.LoadUint64(&global.Validations),
		FeedbackPrompts:     atomic.LoadUint64(&global.FeedbackPrompts),
		Executions:          atomic.LoadUint64(&global.Executions),
		ExecutionFailures:   atomic.LoadUint64(&global.ExecutionFailures),
		StrategyErrors:      atomic.LoadUint64(&global.StrategyErrors),
		UnknownCommands:     atomic.LoadUint64(&global.UnknownCommands),
		SessionsCreated:     atomic.LoadUint64(&global.SessionsCreated),
		SessionsExpired:     atomic.LoadUint64(&global.SessionsExpired),
		ActiveSessions:      atomic.LoadInt64(&global.ActiveSessions),
		RateLimitedRequests: atomic.LoadUint64(&global.RateLimitedRequests),
	}
}

// Reset resets all metrics to zero (useful for testing).
func Reset() {
	atomic.StoreUint64(&global.QueriesProcessed, 0)
	atomic.StoreUint64(&global.Clarifications, 0)
	atomic.StoreUint64(&global.Validations, 0)
	atomic.StoreUint64(&global.FeedbackPrompts, 0)
	atomic.StoreUint64(&global.Executions, 0)
	atomic.StoreUint64(&global.ExecutionFailures, 0)
	atomic.StoreUint64(&global.StrategyErrors, 0)
	atomic.StoreUint64(&global.UnknownCommands, 0)
	atomic.StoreUint64(&global.SessionsCreated, 0)
	atomic.StoreUint64(&global.SessionsExpired, 0)
	atomic.StoreInt64(&global.ActiveSessions, 0)
	atomic.StoreUint64(&global.RateLimitedRequests, 0)
}
