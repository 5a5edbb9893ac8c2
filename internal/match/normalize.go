package match

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Resolver maps a raw team name to its canonical identity. A miss does not
// fail normalization; the raw name is kept and the record is flagged as
// provisional.
type Resolver interface {
	Resolve(raw string) (teamID, name string, ok bool)
}

// NormalizationError describes a raw row that could not be converted into a
// MatchRecord. The row is dropped and counted; it never aborts a batch.
type NormalizationError struct {
	Field  string
	Reason string
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("normalizing match: %s: %s", e.Field, e.Reason)
}

// Normalizer converts raw scraped rows into MatchRecord values. It is the
// single validation gate between the scraper and the reconciliation engine,
// and accumulates the unmapped team names it encounters along the way.
type Normalizer struct {
	teams    Resolver
	unmapped map[string]struct{}
	dropped  int
}

// NewNormalizer creates a Normalizer resolving team names through teams.
func NewNormalizer(teams Resolver) *Normalizer {
	return &Normalizer{
		teams:    teams,
		unmapped: make(map[string]struct{}),
	}
}

// Unmapped returns the distinct raw team names that failed resolution so
// far, sorted for stable output.
func (n *Normalizer) Unmapped() []string {
	names := make([]string, 0, len(n.unmapped))
	for name := range n.unmapped {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dropped returns the number of rows rejected with a NormalizationError.
func (n *Normalizer) Dropped() int {
	return n.dropped
}

// Normalize converts one raw row into a MatchRecord.
func (n *Normalizer) Normalize(raw RawMatch) (*MatchRecord, error) {
	comp := strings.TrimSpace(raw.Competition)
	if comp == "" {
		n.dropped++
		return nil, &NormalizationError{Field: "competition", Reason: "missing"}
	}

	home := strings.TrimSpace(raw.HomeTeam)
	if home == "" {
		n.dropped++
		return nil, &NormalizationError{Field: "home_team", Reason: "missing"}
	}
	away := strings.TrimSpace(raw.AwayTeam)
	if away == "" {
		n.dropped++
		return nil, &NormalizationError{Field: "away_team", Reason: "missing"}
	}

	rec := &MatchRecord{
		CompetitionID: comp,
		Season:        strings.TrimSpace(raw.Season),
		RoundLabel:    strings.TrimSpace(raw.Round),
		Stage:         strings.TrimSpace(raw.Stage),
		Group:         strings.TrimSpace(raw.Group),
		Leg:           strings.TrimSpace(raw.Leg),
		MatchURL:      raw.MatchURL,
		HomeURL:       raw.HomeURL,
		AwayURL:       raw.AwayURL,
	}

	rec.HomeTeamID, rec.HomeTeam = n.resolveTeam(home, rec)
	rec.AwayTeamID, rec.AwayTeam = n.resolveTeam(away, rec)

	scoreHome, scoreAway, note, marker, err := parseScore(raw.Score)
	if err != nil {
		n.dropped++
		return nil, err
	}

	// Explicit postponed/cancelled markers take precedence over the status
	// inferred from score presence.
	switch {
	case marker == markerCancelled:
		rec.Status = StatusCancelled
	case marker == markerPostponed:
		rec.Status = StatusPostponed
	case scoreHome != nil:
		rec.Status = StatusPlayed
		rec.ScoreHome = scoreHome
		rec.ScoreAway = scoreAway
		rec.ResultNote = note
	default:
		rec.Status = StatusScheduled
	}

	rec.KickoffAt = parseKickoff(raw.Date, raw.Time)

	// The round component of the ID is the stage for cup fixtures so that
	// date-clustered round renumbering cannot move a fixture to a new ID.
	keyRound := rec.RoundLabel
	if rec.Stage != "" {
		keyRound = rec.Stage
	}
	if rec.Leg != "" {
		keyRound += "|" + rec.Leg
	}
	rec.MatchID = ComputeID(rec.CompetitionID, rec.Season, keyRound, rec.HomeTeam, rec.AwayTeam)

	return rec, nil
}

func (n *Normalizer) resolveTeam(raw string, rec *MatchRecord) (id, name string) {
	if n.teams != nil {
		if id, name, ok := n.teams.Resolve(raw); ok {
			return id, name
		}
	}
	n.unmapped[raw] = struct{}{}
	rec.Provisional = true
	return "", raw
}

const (
	markerPostponed = "postponed"
	markerCancelled = "cancelled"
)

// resultNotes maps score suffix tokens used by the source site to result
// notes on played matches.
var resultNotes = map[string]string{
	"pso":  "penalty shootout",
	"aet":  "extra time",
	"dec.": "decision",
}

// parseScore parses the site's score column. The first token is the
// full-time score ("2:1" or "-:-"); the remainder may hold a half-time score
// in parentheses and marker tokens (dnp, postp., annulled, pso, aet, dec.).
func parseScore(s string) (home, away *int, note, marker string, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil, "", "", nil
	}

	fields := strings.Fields(s)
	score := fields[0]

	note = "full time"
	for _, tok := range fields[1:] {
		tok = strings.ToLower(strings.Trim(tok, "()"))
		switch {
		case tok == "dnp" || strings.HasPrefix(tok, "postp"):
			marker = markerPostponed
		case tok == "annulled":
			marker = markerCancelled
		case resultNotes[tok] != "":
			note = resultNotes[tok]
		}
	}

	if score == "-:-" {
		return nil, nil, "", marker, nil
	}

	parts := strings.SplitN(score, ":", 2)
	if len(parts) != 2 {
		return nil, nil, "", "", &NormalizationError{Field: "score", Reason: fmt.Sprintf("malformed %q", s)}
	}
	h, errH := strconv.Atoi(strings.TrimSpace(parts[0]))
	a, errA := strconv.Atoi(strings.TrimSpace(parts[1]))
	if errH != nil || errA != nil || h < 0 || a < 0 {
		return nil, nil, "", "", &NormalizationError{Field: "score", Reason: fmt.Sprintf("malformed %q", s)}
	}
	return &h, &a, note, marker, nil
}

// parseKickoff parses the site's dd/mm/yyyy date and HH:MM time columns. A
// missing or unparseable date means the fixture is unscheduled and yields a
// nil kickoff; a missing time yields midnight on the match date.
func parseKickoff(date, clock string) *time.Time {
	date = strings.TrimSpace(date)
	if date == "" {
		return nil
	}
	d, err := time.Parse("02/01/2006", date)
	if err != nil {
		return nil
	}

	clock = strings.TrimSpace(clock)
	if clock != "" {
		if t, err := time.Parse("15:04", clock); err == nil {
			d = time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC)
		}
	}
	return &d
}
