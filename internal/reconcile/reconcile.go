package reconcile

import (
	"fmt"
	"time"

	"github.com/wangxy/wfmaster/internal/ledger"
	"github.com/wangxy/wfmaster/internal/match"
	"github.com/wangxy/wfmaster/internal/schedule"
)

// Classification is the outcome of reconciling one incoming record.
type Classification string

const (
	Added         Classification = "ADDED"
	Rescheduled   Classification = "RESCHEDULED"
	StatusChanged Classification = "STATUS_CHANGED"
	ScoreUpdated  Classification = "SCORE_UPDATED"
	Unchanged     Classification = "UNCHANGED"
)

// FieldChange records one before/after value of a merged field.
type FieldChange struct {
	Field string `json:"field"`
	Old   string `json:"old"`
	New   string `json:"new"`
}

// DiffEntry is the reconciliation outcome for one incoming record.
type DiffEntry struct {
	MatchID        string         `json:"match_id"`
	Classification Classification `json:"classification"`
	Changes        []FieldChange  `json:"changes,omitempty"`
}

// Summary aggregates one reconciliation run over a single competition.
type Summary struct {
	CompetitionID string                 `json:"competition_id"`
	Counts        map[Classification]int `json:"counts"`
	Entries       []DiffEntry            `json:"entries"`
	DuplicateIDs  []string               `json:"duplicate_ids,omitempty"` // match IDs seen more than once in the batch
	Dropped       int                    `json:"dropped"`                 // rows rejected by normalization
	Unmapped      []string               `json:"unmapped,omitempty"`      // raw team names without a mapping
}

// HasChanges reports whether the run produced anything other than UNCHANGED.
func (s *Summary) HasChanges() bool {
	return s.Counts[Added]+s.Counts[Rescheduled]+s.Counts[StatusChanged]+s.Counts[ScoreUpdated] > 0
}

// Changed returns the total number of records merged into the store.
func (s *Summary) Changed() int {
	return s.Counts[Added] + s.Counts[Rescheduled] + s.Counts[StatusChanged] + s.Counts[ScoreUpdated]
}

// Options carries the per-run context the engine folds into merged records
// and the ledger entry.
type Options struct {
	Now      time.Time // defaults to time.Now().UTC()
	Dropped  int       // normalization failures, counted upstream
	Unmapped []string  // raw names the mapper could not resolve
}

// Reconcile merges an incoming batch of normalized records into the store
// and returns the diff summary plus the ledger entry for the run. The store
// is mutated in place; persistence stays with the caller so a save failure
// can abort the run before anything is written.
//
// Records already in the store but absent from the batch are left untouched.
// When the batch contains the same match ID twice, the last occurrence wins
// and the ID is flagged as a duplicate warning.
func Reconcile(competitionID string, batch []*match.MatchRecord, store *schedule.Store, opts Options) (*Summary, ledger.Entry) {
	now := opts.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	summary := &Summary{
		CompetitionID: competitionID,
		Counts:        make(map[Classification]int),
		Entries:       make([]DiffEntry, 0, len(batch)),
		Dropped:       opts.Dropped,
		Unmapped:      opts.Unmapped,
	}

	seen := make(map[string]bool, len(batch))
	for _, incoming := range batch {
		if seen[incoming.MatchID] {
			summary.DuplicateIDs = append(summary.DuplicateIDs, incoming.MatchID)
		}
		seen[incoming.MatchID] = true

		entry := reconcileOne(incoming, store, now)
		summary.Counts[entry.Classification]++
		summary.Entries = append(summary.Entries, entry)
	}

	return summary, ledgerEntry(competitionID, summary, now)
}

// reconcileOne classifies one incoming record against the store and applies
// the merge. Precedence: terminal guard, then kickoff, status, score.
func reconcileOne(incoming *match.MatchRecord, store *schedule.Store, now time.Time) DiffEntry {
	old := store.Get(incoming.MatchID)
	if old == nil {
		incoming.FirstSeen = now
		incoming.ModifiedAt = now
		incoming.Note = "Initial scrape"
		store.Upsert(incoming)
		return DiffEntry{MatchID: incoming.MatchID, Classification: Added}
	}

	// Terminal results are never overwritten by a scrape that lost them.
	if old.Status.IsTerminal() && (incoming.Status == match.StatusScheduled || incoming.Status == match.StatusPostponed) {
		return DiffEntry{MatchID: incoming.MatchID, Classification: Unchanged}
	}

	switch {
	case !old.SameKickoff(incoming):
		return merge(old, incoming, store, now, Rescheduled, FieldChange{
			Field: "kickoff_at",
			Old:   formatKickoff(old.KickoffAt),
			New:   formatKickoff(incoming.KickoffAt),
		})
	case old.Status != incoming.Status:
		return merge(old, incoming, store, now, StatusChanged, FieldChange{
			Field: "status",
			Old:   string(old.Status),
			New:   string(incoming.Status),
		})
	case !old.SameScore(incoming):
		return merge(old, incoming, store, now, ScoreUpdated, FieldChange{
			Field: "score",
			Old:   formatScore(old),
			New:   formatScore(incoming),
		})
	default:
		return DiffEntry{MatchID: incoming.MatchID, Classification: Unchanged}
	}
}

// merge adopts the incoming record while preserving the stored identity:
// match ID, sequence position and first-seen timestamp survive every merge.
func merge(old, incoming *match.MatchRecord, store *schedule.Store, now time.Time, class Classification, change FieldChange) DiffEntry {
	incoming.FirstSeen = old.FirstSeen
	incoming.ModifiedAt = now
	incoming.Note = "Modified"
	store.Upsert(incoming)
	return DiffEntry{
		MatchID:        incoming.MatchID,
		Classification: class,
		Changes:        []FieldChange{change},
	}
}

func ledgerEntry(competitionID string, s *Summary, now time.Time) ledger.Entry {
	return ledger.Entry{
		Timestamp:     now,
		CompetitionID: competitionID,
		Added:         s.Counts[Added],
		Rescheduled:   s.Counts[Rescheduled],
		StatusChanged: s.Counts[StatusChanged],
		ScoreUpdated:  s.Counts[ScoreUpdated],
		Unchanged:     s.Counts[Unchanged],
		Dropped:       s.Dropped,
		UnmappedNames: s.Unmapped,
		DuplicateIDs:  s.DuplicateIDs,
	}
}

func formatKickoff(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

func formatScore(m *match.MatchRecord) string {
	if !m.HasScore() {
		return ""
	}
	return fmt.Sprintf("%d:%d", *m.ScoreHome, *m.ScoreAway)
}
