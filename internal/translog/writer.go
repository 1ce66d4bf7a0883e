// Package translog persists session transcripts as JSON lines, one file
// per session per day, and prunes them on a retention schedule.
package translog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/radiantlogicinc/TalkEngine/interaction"
)

// Record is one transcript line: a single query and its outcome.
type Record struct {
	Time       time.Time              `json:"time"`
	SessionID  string                 `json:"session_id"`
	Query      string                 `json:"query"`
	Command    string                 `json:"command"`
	Response   string                 `json:"response"`
	Hint       string                 `json:"hint"`
	Parameters map[string]any         `json:"parameters,omitempty"`
	Log        []interaction.LogEntry `json:"interaction_log,omitempty"`
}

// Writer manages transcript files organized by day and session.
type Writer struct {
	baseDir string
}

// NewWriter creates a new Writer with the specified base directory.
func NewWriter(baseDir string) *Writer {
	return &Writer{baseDir: baseDir}
}

// Append writes one record to its session's transcript and returns the
// file path. Directory structure: baseDir/YYYY-MM-DD/sessionID.jsonl
func (w *Writer) Append(rec Record) (string, error) {
	dir := filepath.Join(w.baseDir, rec.Time.Format("2006-01-02"))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating transcript directory: %w", err)
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("encoding transcript record: %w", err)
	}
	data = append(data, '\n')

	path := filepath.Join(dir, rec.SessionID+".jsonl")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return "", fmt.Errorf("opening transcript file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return "", fmt.Errorf("writing transcript record: %w", err)
	}
	return path, nil
}

// ReadSession decodes every record in one transcript file.
func ReadSession(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening transcript file: %w", err)
	}
	defer f.Close()

	var records []Record
	dec := json.NewDecoder(f)
	for dec.More() {
		var rec Record
		if err := dec.Decode(&rec); err != nil {
			return nil, fmt.Errorf("decoding transcript record: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}
