package schedule

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/wangxy/wfmaster/internal/match"
)

// Store is the persisted schedule of one competition: every fixture keyed by
// match ID, plus the permanent first-seen insertion order.
type Store struct {
	CompetitionID string                        `json:"competition_id"`
	Sequence      []string                      `json:"sequence"` // match IDs in first-seen order
	Records       map[string]*match.MatchRecord `json:"records"`
	UpdatedAt     string                        `json:"updated_at,omitempty"` // RFC3339
}

// NewStore creates an empty store for a competition.
func NewStore(competitionID string) *Store {
	return &Store{
		CompetitionID: competitionID,
		Sequence:      make([]string, 0),
		Records:       make(map[string]*match.MatchRecord),
	}
}

// Load reads a store from path. A missing file is not an error: it yields an
// empty store, which is what a first run starts from.
func Load(path, competitionID string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewStore(competitionID), nil
		}
		return nil, fmt.Errorf("reading schedule store: %w", err)
	}

	var store Store
	if err := json.Unmarshal(data, &store); err != nil {
		return nil, fmt.Errorf("parsing schedule store: %w", err)
	}
	if store.Records == nil {
		store.Records = make(map[string]*match.MatchRecord)
	}
	if store.CompetitionID == "" {
		store.CompetitionID = competitionID
	}
	return &store, nil
}

// Get returns the record for a match ID, or nil if absent.
func (s *Store) Get(matchID string) *match.MatchRecord {
	return s.Records[matchID]
}

// Len returns the number of stored fixtures.
func (s *Store) Len() int {
	return len(s.Sequence)
}

// Upsert inserts the record if its ID is new, appending it to the end of the
// sequence, or replaces the stored record in place. Existing sequence
// positions never move. Returns true when the record was inserted.
func (s *Store) Upsert(rec *match.MatchRecord) bool {
	_, exists := s.Records[rec.MatchID]
	s.Records[rec.MatchID] = rec
	if !exists {
		s.Sequence = append(s.Sequence, rec.MatchID)
	}
	return !exists
}

// Ordered returns all records in first-seen sequence order.
func (s *Store) Ordered() []*match.MatchRecord {
	out := make([]*match.MatchRecord, 0, len(s.Sequence))
	for _, id := range s.Sequence {
		if rec := s.Records[id]; rec != nil {
			out = append(out, rec)
		}
	}
	return out
}

// Chronological returns all records sorted by kickoff time. Unscheduled
// fixtures sort last, keeping their sequence order among themselves.
func (s *Store) Chronological() []*match.MatchRecord {
	out := s.Ordered()
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].KickoffAt, out[j].KickoffAt
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return a.Before(*b)
	})
	return out
}

// Save writes the store to path atomically: the snapshot goes to a temp file
// in the same directory first and is then renamed over the target, so
// readers never observe a partial file.
func (s *Store) Save(path string) error {
	s.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding schedule store: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp store file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing schedule store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp store file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing schedule store: %w", err)
	}
	return nil
}
