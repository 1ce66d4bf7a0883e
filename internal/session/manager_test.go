package session

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/radiantlogicinc/TalkEngine/command"
	"github.com/radiantlogicinc/TalkEngine/internal/config"
)

func testMetadata() command.Metadata {
	return command.Metadata{
		"calculator.add": {
			Description: "Add two numbers together",
			Parameters: command.Schema{
				"a": {Type: command.TypeInt, Required: true, Description: "first operand"},
				"b": {Type: command.TypeInt, Required: true, Description: "second operand"},
			},
		},
		"weather.get_forecast": {
			Description: "Get the weather forecast for a location",
			Parameters: command.Schema{
				"location": {Type: command.TypeString, Required: true, Description: "city name"},
			},
		},
	}
}

func testManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager(config.DefaultConfig(), testMetadata(), nil)
	t.Cleanup(m.Close)
	return m
}

func TestManagerCreate(t *testing.T) {
	m := testManager(t)

	sess, err := m.Create(nil)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if sess.ID == "" {
		t.Error("Create() returned a session with an empty ID")
	}
	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", m.Len())
	}

	got, ok := m.Get(sess.ID)
	if !ok {
		t.Fatalf("Get(%q) did not find the session", sess.ID)
	}
	if got.ID != sess.ID {
		t.Errorf("Get() ID = %q, want %q", got.ID, sess.ID)
	}

	if _, ok := m.Get("no-such-session"); ok {
		t.Error("Get() found a session that was never created")
	}
}

func TestManagerCreateWithOverrides(t *testing.T) {
	m := testManager(t)

	threshold := 0.9
	feedback := true
	sess, err := m.Create(&config.EngineOverrides{
		ClarifyThreshold: &threshold,
		FeedbackPrompts:  &feedback,
	})
	if err != nil {
		t.Fatalf("Create() with overrides error = %v", err)
	}
	if sess.ID == "" {
		t.Error("Create() returned a session with an empty ID")
	}
}

func TestManagerCreateUnknownStrategy(t *testing.T) {
	m := testManager(t)

	_, err := m.Create(&config.EngineOverrides{Classification: "telepathy"})
	if err == nil {
		t.Fatal("Create() with unknown strategy succeeded, want error")
	}
	if m.Len() != 0 {
		t.Errorf("Len() after failed Create = %d, want 0", m.Len())
	}
}

func TestManagerCreateBadThreshold(t *testing.T) {
	m := testManager(t)

	threshold := 1.5
	_, err := m.Create(&config.EngineOverrides{ClarifyThreshold: &threshold})
	if err == nil {
		t.Fatal("Create() with out-of-range threshold succeeded, want error")
	}
}

func TestManagerMaxSessions(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Sessions.MaxSessions = 1
	m := NewManager(cfg, testMetadata(), nil)
	t.Cleanup(m.Close)

	if _, err := m.Create(nil); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	_, err := m.Create(nil)
	if err == nil {
		t.Fatal("Create() past the session limit succeeded, want error")
	}
	if !strings.Contains(err.Error(), "max sessions limit reached") {
		t.Errorf("error = %v, want max sessions limit reached", err)
	}
}

func TestManagerRemove(t *testing.T) {
	m := testManager(t)

	sess, err := m.Create(nil)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := m.Remove(sess.ID); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, ok := m.Get(sess.ID); ok {
		t.Error("Get() found a removed session")
	}

	err = m.Remove(sess.ID)
	if err == nil {
		t.Fatal("Remove() of a removed session succeeded, want error")
	}
	if !strings.Contains(err.Error(), "session not found") {
		t.Errorf("error = %v, want session not found", err)
	}
}

func TestManagerSweep(t *testing.T) {
	m := testManager(t)

	old, err := m.Create(nil)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	fresh, err := m.Create(nil)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Backdate the first session past the idle cutoff
	old.mu.Lock()
	old.lastUsed = time.Now().Add(-2 * time.Hour)
	old.mu.Unlock()

	if got := m.Sweep(time.Hour); got != 1 {
		t.Errorf("Sweep() = %d, want 1", got)
	}
	if _, ok := m.Get(old.ID); ok {
		t.Error("expired session still present after Sweep")
	}
	if _, ok := m.Get(fresh.ID); !ok {
		t.Error("fresh session was swept")
	}
}

func TestManagerSweepDisabled(t *testing.T) {
	m := testManager(t)

	sess, err := m.Create(nil)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	sess.mu.Lock()
	sess.lastUsed = time.Now().Add(-24 * time.Hour)
	sess.mu.Unlock()

	if got := m.Sweep(0); got != 0 {
		t.Errorf("Sweep(0) = %d, want 0 (expiry disabled)", got)
	}
	if _, ok := m.Get(sess.ID); !ok {
		t.Error("session was swept with expiry disabled")
	}
}

func TestManagerClose(t *testing.T) {
	m := testManager(t)

	// Close twice; the second call must be a no-op
	m.Close()
	m.Close()
}

func TestSessionRun(t *testing.T) {
	m := testManager(t)

	sess, err := m.Create(nil)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	sess.mu.Lock()
	sess.lastUsed = time.Time{}
	sess.mu.Unlock()

	res, err := sess.Run(context.Background(), "add 5 and 10")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Command != "calculator.add" {
		t.Errorf("Command = %q, want %q", res.Command, "calculator.add")
	}
	if res.Response == "" {
		t.Error("Run() returned an empty response")
	}
	if sess.LastUsed().IsZero() {
		t.Error("Run() did not update the last-used time")
	}
}

func TestSessionReset(t *testing.T) {
	m := testManager(t)

	sess, err := m.Create(nil)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	meta := command.Metadata{
		"echo.say": {
			Description: "Repeat the given text back",
			Parameters: command.Schema{
				"text": {Type: command.TypeString, Required: true, Description: "text to repeat"},
			},
		},
	}
	if err := sess.Reset(meta); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}

	res, err := sess.Run(context.Background(), "add 5 and 10")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Command != "unknown" {
		t.Errorf("Command after Reset = %q, want %q", res.Command, "unknown")
	}
}
