package match

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// knockoutRounds marks round labels that can be played as two-leg ties.
var knockoutRounds = []string{"semi", "quarter", "play-off", "round of", "third"}

// PrepareCupRounds rewrites round, stage, group and leg labels on raw cup
// rows before normalization.
//
// Group-phase rounds ("Group A", "League phase") are renumbered into
// matchdays by date clustering: fixtures of the same source round more than
// two days apart belong to different matchdays. Knockout rounds where the
// same pair of teams meets twice are labelled as legs, so each leg keeps a
// distinct match ID.
func PrepareCupRounds(rows []RawMatch) []RawMatch {
	out := make([]RawMatch, len(rows))
	copy(out, rows)

	numberGroupRounds(out)
	labelKnockoutLegs(out)

	for i := range out {
		out[i].Stage = stageFor(rows[i].Round)
		if isGroupPhase(rows[i].Round) && strings.Contains(rows[i].Round, "Group") {
			out[i].Group = rows[i].Round
		}
	}
	return out
}

func isGroupPhase(round string) bool {
	return strings.Contains(round, "Group") || strings.Contains(round, "League phase")
}

func stageFor(round string) string {
	switch {
	case isGroupPhase(round):
		return "Group Stage"
	case strings.HasPrefix(round, "Round of"):
		return round
	case strings.HasPrefix(round, "Round "):
		return ""
	default:
		return round
	}
}

// numberGroupRounds assigns "Round NN" labels to group-phase fixtures by
// clustering each (competition, season, round) chunk on date.
func numberGroupRounds(rows []RawMatch) {
	chunks := groupIndices(rows, func(r RawMatch) string {
		return r.Competition + "|" + r.Season + "|" + r.Round
	})

	for _, idx := range chunks {
		if !isGroupPhase(rows[idx[0]].Round) {
			continue
		}
		sorted := sortByDate(rows, idx)

		round := 1
		var prev time.Time
		for i, j := range sorted {
			d := rowDate(rows[j])
			if i > 0 && !d.IsZero() && !prev.IsZero() && d.Sub(prev) > 48*time.Hour {
				round++
			}
			if !d.IsZero() {
				prev = d
			}
			rows[j].Round = fmt.Sprintf("Round %02d", round)
		}
	}
}

// labelKnockoutLegs numbers the legs of two-leg knockout ties. A tie is the
// unordered pair of teams within one (competition, season, round) chunk.
func labelKnockoutLegs(rows []RawMatch) {
	chunks := groupIndices(rows, func(r RawMatch) string {
		tie := []string{strings.ToLower(r.HomeTeam), strings.ToLower(r.AwayTeam)}
		sort.Strings(tie)
		return r.Competition + "|" + r.Season + "|" + r.Round + "|" + strings.Join(tie, "|")
	})

	for _, idx := range chunks {
		if len(idx) < 2 || !isKnockout(rows[idx[0]].Round) {
			continue
		}
		sorted := sortByDate(rows, idx)
		for leg, j := range sorted {
			rows[j].Leg = legLabel(leg + 1)
			rows[j].Round = rows[j].Round + " - " + rows[j].Leg
		}
	}
}

func isKnockout(round string) bool {
	lower := strings.ToLower(round)
	for _, marker := range knockoutRounds {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func legLabel(n int) string {
	switch n {
	case 1:
		return "1st Leg"
	case 2:
		return "2nd Leg"
	default:
		return fmt.Sprintf("%dth Leg", n)
	}
}

// groupIndices partitions row indices by key, preserving first-seen order of
// both groups and members.
func groupIndices(rows []RawMatch, key func(RawMatch) string) [][]int {
	var order []string
	byKey := make(map[string][]int)
	for i, r := range rows {
		k := key(r)
		if _, seen := byKey[k]; !seen {
			order = append(order, k)
		}
		byKey[k] = append(byKey[k], i)
	}
	out := make([][]int, 0, len(order))
	for _, k := range order {
		out = append(out, byKey[k])
	}
	return out
}

func sortByDate(rows []RawMatch, idx []int) []int {
	sorted := make([]int, len(idx))
	copy(sorted, idx)
	sort.SliceStable(sorted, func(a, b int) bool {
		da, db := rowDate(rows[sorted[a]]), rowDate(rows[sorted[b]])
		if da.Equal(db) {
			return rows[sorted[a]].Time < rows[sorted[b]].Time
		}
		return da.Before(db)
	})
	return sorted
}

func rowDate(r RawMatch) time.Time {
	d, err := time.Parse("02/01/2006", strings.TrimSpace(r.Date))
	if err != nil {
		return time.Time{}
	}
	return d
}
