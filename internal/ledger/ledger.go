package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Entry is the audit record of one reconciliation run.
type Entry struct {
	Timestamp     time.Time `json:"timestamp"`
	CompetitionID string    `json:"competition_id"`
	Added         int       `json:"added"`
	Rescheduled   int       `json:"rescheduled"`
	StatusChanged int       `json:"status_changed"`
	ScoreUpdated  int       `json:"score_updated"`
	Unchanged     int       `json:"unchanged"`
	Dropped       int       `json:"dropped"`
	UnmappedNames []string  `json:"unmapped_names,omitempty"`
	DuplicateIDs  []string  `json:"duplicate_ids,omitempty"`
}

// Ledger appends run entries to a JSON-lines file.
type Ledger struct {
	path string
}

// New creates a ledger writing to path, creating the parent directory if
// needed.
func New(path string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating ledger directory: %w", err)
	}
	return &Ledger{path: path}, nil
}

// Record appends one entry. Prior entries are never rewritten.
func (l *Ledger) Record(entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding ledger entry: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening ledger: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("appending ledger entry: %w", err)
	}
	return nil
}
