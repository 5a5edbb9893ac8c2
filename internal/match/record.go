package match

import (
	"crypto/sha1"
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle state of a fixture.
type Status string

const (
	StatusScheduled Status = "SCHEDULED"
	StatusPostponed Status = "POSTPONED"
	StatusPlayed    Status = "PLAYED"
	StatusCancelled Status = "CANCELLED"
)

// IsTerminal reports whether the status is final. Terminal records are
// protected from being downgraded by later incomplete scrapes.
func (s Status) IsTerminal() bool {
	return s == StatusPlayed || s == StatusCancelled
}

// RawMatch is one row as scraped from the source site, before any
// normalization. All fields are strings exactly as they appeared.
type RawMatch struct {
	Season      string `json:"season"`
	Competition string `json:"competition"`
	Round       string `json:"round"`
	Stage       string `json:"stage,omitempty"`
	Group       string `json:"group,omitempty"`
	Leg         string `json:"leg,omitempty"`
	Date        string `json:"date"` // dd/mm/yyyy, already forward-filled by the scraper
	Time        string `json:"time"` // HH:MM local, may be empty
	HomeTeam    string `json:"home_team"`
	AwayTeam    string `json:"away_team"`
	Score       string `json:"score"` // e.g. "2:1 (1:0)", "-:-", "2:1 pso"
	MatchURL    string `json:"match_url,omitempty"`
	HomeURL     string `json:"home_url,omitempty"`
	AwayURL     string `json:"away_url,omitempty"`
}

// MatchRecord is one scheduled or played fixture in canonical form.
type MatchRecord struct {
	MatchID       string     `json:"match_id"`
	CompetitionID string     `json:"competition_id"`
	Season        string     `json:"season"`
	RoundLabel    string     `json:"round_label"`
	Stage         string     `json:"stage,omitempty"`
	Group         string     `json:"group,omitempty"`
	Leg           string     `json:"leg,omitempty"`
	HomeTeam      string     `json:"home_team"`
	HomeTeamID    string     `json:"home_team_id,omitempty"`
	AwayTeam      string     `json:"away_team"`
	AwayTeamID    string     `json:"away_team_id,omitempty"`
	KickoffAt     *time.Time `json:"kickoff_at,omitempty"` // nil when the fixture has no known kickoff
	Status        Status     `json:"status"`
	ScoreHome     *int       `json:"score_home,omitempty"`
	ScoreAway     *int       `json:"score_away,omitempty"`
	ResultNote    string     `json:"result_note,omitempty"` // "full time", "extra time", "penalty shootout", ...
	Provisional   bool       `json:"provisional,omitempty"` // true when a team name failed mapping and the raw name was kept
	MatchURL      string     `json:"match_url,omitempty"`
	HomeURL       string     `json:"home_url,omitempty"`
	AwayURL       string     `json:"away_url,omitempty"`
	FirstSeen     time.Time  `json:"first_seen"`
	ModifiedAt    time.Time  `json:"modified_at"`
	Note          string     `json:"note,omitempty"` // "Initial scrape" or "Modified"
}

// HasScore reports whether both score fields are present.
func (m *MatchRecord) HasScore() bool {
	return m.ScoreHome != nil && m.ScoreAway != nil
}

// SameKickoff reports whether two records have the same kickoff time,
// treating two missing kickoffs as equal.
func (m *MatchRecord) SameKickoff(other *MatchRecord) bool {
	if m.KickoffAt == nil && other.KickoffAt == nil {
		return true
	}
	if m.KickoffAt == nil || other.KickoffAt == nil {
		return false
	}
	return m.KickoffAt.Equal(*other.KickoffAt)
}

// SameScore reports whether two records carry identical score fields,
// treating two missing scores as equal.
func (m *MatchRecord) SameScore(other *MatchRecord) bool {
	return intPtrEqual(m.ScoreHome, other.ScoreHome) && intPtrEqual(m.ScoreAway, other.ScoreAway)
}

func intPtrEqual(a, b *int) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}

// ComputeID creates a deterministic match ID from the fields that identify a
// fixture across runs. Kickoff time is deliberately excluded so the ID
// survives reschedules; the round component is the stage label for cup
// fixtures (legs of the same tie keep distinct rounds).
func ComputeID(competitionID, season, round, homeTeam, awayTeam string) string {
	key := strings.ToLower(strings.Join([]string{competitionID, season, round, homeTeam, awayTeam}, "|"))
	h := sha1.New()
	h.Write([]byte(key))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// IntPtr returns a pointer to v. Convenience for building records in tests.
func IntPtr(v int) *int {
	return &v
}
