package ledger

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit", "runs.jsonl")
	l, err := New(path)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	first := Entry{
		Timestamp:     time.Date(2026, 8, 29, 6, 0, 0, 0, time.UTC),
		CompetitionID: "Premier League",
		Added:         380,
	}
	second := Entry{
		Timestamp:     time.Date(2026, 8, 30, 6, 0, 0, 0, time.UTC),
		CompetitionID: "Premier League",
		Unchanged:     378,
		Rescheduled:   2,
		UnmappedNames: []string{"Newly Promoted FC"},
	}

	if err := l.Record(first); err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	if err := l.Record(second); err != nil {
		t.Fatalf("Record returned error: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("parsing ledger line: %v", err)
		}
		entries = append(entries, e)
	}

	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Added != 380 {
		t.Errorf("first entry overwritten: %+v", entries[0])
	}
	if entries[1].Rescheduled != 2 || len(entries[1].UnmappedNames) != 1 {
		t.Errorf("second entry mangled: %+v", entries[1])
	}
}
