package match

import "testing"

func cupRow(round, date, home, away string) RawMatch {
	return RawMatch{
		Season:      "2025-2026",
		Competition: "Champions League",
		Round:       round,
		Date:        date,
		HomeTeam:    home,
		AwayTeam:    away,
		Score:       "-:-",
	}
}

func TestPrepareCupRounds(t *testing.T) {
	t.Run("group phase renumbered by date clusters", func(t *testing.T) {
		rows := []RawMatch{
			cupRow("League phase", "16/09/2025", "A", "B"),
			cupRow("League phase", "17/09/2025", "C", "D"),
			cupRow("League phase", "30/09/2025", "B", "C"),
			cupRow("League phase", "01/10/2025", "D", "A"),
		}

		out := PrepareCupRounds(rows)

		if out[0].Round != "Round 01" || out[1].Round != "Round 01" {
			t.Errorf("expected first cluster in Round 01, got %q, %q", out[0].Round, out[1].Round)
		}
		if out[2].Round != "Round 02" || out[3].Round != "Round 02" {
			t.Errorf("expected second cluster in Round 02, got %q, %q", out[2].Round, out[3].Round)
		}
		for i, r := range out {
			if r.Stage != "Group Stage" {
				t.Errorf("row %d: expected Group Stage, got %q", i, r.Stage)
			}
		}
	})

	t.Run("group label preserved in group column", func(t *testing.T) {
		rows := []RawMatch{cupRow("Group A", "16/09/2025", "A", "B")}
		out := PrepareCupRounds(rows)
		if out[0].Group != "Group A" {
			t.Errorf("expected group 'Group A', got %q", out[0].Group)
		}
	})

	t.Run("two-leg ties labelled", func(t *testing.T) {
		rows := []RawMatch{
			cupRow("Semi-finals", "28/04/2026", "A", "B"),
			cupRow("Semi-finals", "05/05/2026", "B", "A"),
			cupRow("Final", "30/05/2026", "A", "C"),
		}

		out := PrepareCupRounds(rows)

		if out[0].Leg != "1st Leg" || out[0].Round != "Semi-finals - 1st Leg" {
			t.Errorf("expected first leg labels, got %q / %q", out[0].Leg, out[0].Round)
		}
		if out[1].Leg != "2nd Leg" || out[1].Round != "Semi-finals - 2nd Leg" {
			t.Errorf("expected second leg labels, got %q / %q", out[1].Leg, out[1].Round)
		}
		if out[2].Leg != "" {
			t.Errorf("single final should have no leg, got %q", out[2].Leg)
		}
		if out[2].Stage != "Final" {
			t.Errorf("expected Final stage, got %q", out[2].Stage)
		}
	})

	t.Run("round of 16 keeps its label as stage", func(t *testing.T) {
		rows := []RawMatch{cupRow("Round of 16", "10/03/2026", "A", "B")}
		out := PrepareCupRounds(rows)
		if out[0].Stage != "Round of 16" {
			t.Errorf("expected stage 'Round of 16', got %q", out[0].Stage)
		}
	})

	t.Run("input slice is not mutated", func(t *testing.T) {
		rows := []RawMatch{cupRow("League phase", "16/09/2025", "A", "B")}
		PrepareCupRounds(rows)
		if rows[0].Round != "League phase" {
			t.Errorf("input mutated: %q", rows[0].Round)
		}
	})
}
