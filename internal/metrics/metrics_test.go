package metrics

import (
	"sync"
	"testing"
)

func TestQueryProcessed(t *testing.T) {
	Reset()

	QueryProcessed()
	m := Get()

	if m.QueriesProcessed != 1 {
		t.Errorf("expected QueriesProcessed=1, got %d", m.QueriesProcessed)
	}
}

func TestInteractionCounters(t *testing.T) {
	Reset()

	ClarificationStarted()
	ValidationStarted()
	FeedbackPrompted()
	m := Get()

	if m.Clarifications != 1 {
		t.Errorf("expected Clarifications=1, got %d", m.Clarifications)
	}
	if m.Validations != 1 {
		t.Errorf("expected Validations=1, got %d", m.Validations)
	}
	if m.FeedbackPrompts != 1 {
		t.Errorf("expected FeedbackPrompts=1, got %d", m.FeedbackPrompts)
	}
}

func TestExecutionCounters(t *testing.T) {
	Reset()

	ExecutionSucceeded()
	ExecutionFailed()
	StrategyFailed()
	UnknownCommand()
	m := Get()

	if m.Executions != 1 {
		t.Errorf("expected Executions=1, got %d", m.Executions)
	}
	if m.ExecutionFailures != 1 {
		t.Errorf("expected ExecutionFailures=1, got %d", m.ExecutionFailures)
	}
	if m.StrategyErrors != 1 {
		t.Errorf("expected StrategyErrors=1, got %d", m.StrategyErrors)
	}
	if m.UnknownCommands != 1 {
		t.Errorf("expected UnknownCommands=1, got %d", m.UnknownCommands)
	}
}

func TestSessionGauge(t *testing.T) {
	Reset()

	SessionCreated()
	SessionCreated()
	SessionClosed()
	m := Get()

	if m.SessionsCreated != 2 {
		t.Errorf("expected SessionsCreated=2, got %d", m.SessionsCreated)
	}
	if m.ActiveSessions != 1 {
		t.Errorf("expected ActiveSessions=1, got %d", m.ActiveSessions)
	}

	SessionExpired()
	m = Get()
	if m.SessionsExpired != 1 {
		t.Errorf("expected SessionsExpired=1, got %d", m.SessionsExpired)
	}
	if m.ActiveSessions != 0 {
		t.Errorf("expected ActiveSessions=0, got %d", m.ActiveSessions)
	}
}

func TestReset(t *testing.T) {
	QueryProcessed()
	ClarificationStarted()
	ValidationStarted()
	FeedbackPrompted()
	ExecutionSucceeded()
	ExecutionFailed()
	StrategyFailed()
	UnknownCommand()
	SessionCreated()
	RateLimited()

	Reset()
	m := Get()

	if m.QueriesProcessed != 0 {
		t.Errorf("expected QueriesProcessed=0 after reset, got %d", m.QueriesProcessed)
	}
	if m.Clarifications != 0 {
		t.Errorf("expected Clarifications=0 after reset, got %d", m.Clarifications)
	}
	if m.Executions != 0 {
		t.Errorf("expected Executions=0 after reset, got %d", m.Executions)
	}
	if m.ActiveSessions != 0 {
		t.Errorf("expected ActiveSessions=0 after reset, got %d", m.ActiveSessions)
	}
	if m.RateLimitedRequests != 0 {
		t.Errorf("expected RateLimitedRequests=0 after reset, got %d", m.RateLimitedRequests)
	}
}

func TestMultipleIncrements(t *testing.T) {
	Reset()

	for i := 0; i < 5; i++ {
		QueryProcessed()
	}
	for i := 0; i < 3; i++ {
		ClarificationStarted()
	}
	for i := 0; i < 2; i++ {
		ExecutionSucceeded()
	}

	m := Get()

	if m.QueriesProcessed != 5 {
		t.Errorf("expected QueriesProcessed=5, got %d", m.QueriesProcessed)
	}
	if m.Clarifications != 3 {
		t.Errorf("expected Clarifications=3, got %d", m.Clarifications)
	}
	if m.Executions != 2 {
		t.Errorf("expected Executions=2, got %d", m.Executions)
	}
}

func TestConcurrentIncrements(t *testing.T) {
	Reset()

	var wg sync.WaitGroup
	iterations := 1000

	// Spawn multiple goroutines incrementing counters concurrently
	for i := 0; i < iterations; i++ {
		wg.Add(4)
		go func() {
			QueryProcessed()
			wg.Done()
		}()
		go func() {
			ClarificationStarted()
			wg.Done()
		}()
		go func() {
			ValidationStarted()
			wg.Done()
		}()
		go func() {
			ExecutionSucceeded()
			wg.Done()
		}()
	}

	wg.Wait()
	m := Get()

	if m.QueriesProcessed != uint64(iterations) {
		t.Errorf("expected QueriesProcessed=%d, got %d", iterations, m.QueriesProcessed)
	}
	if m.Clarifications != uint64(iterations) {
		t.Errorf("expected Clarifications=%d, got %d", iterations, m.Clarifications)
	}
	if m.Validations != uint64(iterations) {
		t.Errorf("expected Validations=%d, got %d", iterations, m.Validations)
	}
	if m.Executions != uint64(iterations) {
		t.Errorf("expected Executions=%d, got %d", iterations, m.Executions)
	}
}

func TestGetReturnsSnapshot(t *testing.T) {
	Reset()

	QueryProcessed()
	snapshot := Get()

	// Increment again after snapshot
	QueryProcessed()

	// Snapshot should not change
	if snapshot.QueriesProcessed != 1 {
		t.Errorf("snapshot should be immutable, expected 1, got %d", snapshot.QueriesProcessed)
	}

	// New Get should reflect the change
	current := Get()
	if current.QueriesProcessed != 2 {
		t.Errorf("current should be 2, got %d", current.QueriesProcessed)
	}
}
