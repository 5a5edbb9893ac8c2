package export

import (
	"fmt"
	"time"

	"github.com/wangxy/wfmaster/internal/match"
)

// matchDurations maps result notes to assumed broadcast durations.
var matchDurations = map[string]time.Duration{
	"full time":        2 * time.Hour,
	"extra time":       150 * time.Minute,
	"penalty shootout": 3 * time.Hour,
	"decision":         time.Second,
}

const defaultDuration = 2 * time.Hour

// displayDate returns the listing date for a kickoff. Kickoffs before 02:00
// (and exactly 02:00:00) belong to the previous day's listing.
func displayDate(t time.Time) string {
	if spillsOver(t) {
		t = t.AddDate(0, 0, -1)
	}
	return t.Format("2006-01-02")
}

// displayClock formats a kickoff on the 26-hour clock: spill-over kickoffs
// render with hour+24 so they sort after the previous evening's matches.
func displayClock(t time.Time) string {
	hh := t.Hour()
	if spillsOver(t) {
		hh += 24
	}
	return fmt.Sprintf("%d:%02d", hh, t.Minute())
}

func spillsOver(t time.Time) bool {
	return t.Hour() < 2 || (t.Hour() == 2 && t.Minute() == 0 && t.Second() == 0)
}

// finishClock returns the 26-hour end-of-broadcast clock for a kickoff and
// result note.
func finishClock(t time.Time, note string) string {
	d, ok := matchDurations[note]
	if !ok {
		d = defaultDuration
	}
	return displayClock(t.Add(d))
}

// liveTimeslot renders the "kickoff-finish" column for a played or scheduled
// fixture.
func liveTimeslot(t time.Time, note string) string {
	return displayClock(t) + "-" + finishClock(t, note)
}

// results returns the W/L/T letters for the two teams, or empty strings when
// the score is missing.
func results(m *match.MatchRecord) (home, away string) {
	if !m.HasScore() {
		return "", ""
	}
	switch {
	case *m.ScoreHome > *m.ScoreAway:
		return "W", "L"
	case *m.ScoreHome < *m.ScoreAway:
		return "L", "W"
	default:
		return "T", "T"
	}
}
