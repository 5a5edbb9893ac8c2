package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/wangxy/wfmaster/internal/match"
	"github.com/wangxy/wfmaster/internal/reconcile"
	"github.com/wangxy/wfmaster/internal/schedule"
)

// Sheet names of the final schedule workbook.
const (
	SheetSequence   = "Sequence"
	SheetSchedule   = "Schedule"
	SheetUpdateInfo = "Update_Info"
	SheetSummary    = "Summary"
)

var sequenceHeader = []any{
	"Match_in_Season", "match_id", "season", "competition",
	"hometeam_id", "hometeam", "awayteam_id", "awayteam",
	"match_round", "match_stage",
}

var scheduleHeader = []any{
	"match_id", "match", "season", "competition",
	"match_round", "match_stage", "match_group", "match_leg",
	"hometeam_id", "hometeam", "awayteam_id", "awayteam",
	"date", "kickoff_time", "finish_time", "live_timeslot",
	"status", "hometeam_score", "awayteam_score",
	"hometeam_result", "awayteam_result", "result_note",
	"modified_time", "note",
}

// WriteFinalSchedule writes the four-sheet schedule workbook for one
// competition's store and the run summary that produced it.
func WriteFinalSchedule(path string, store *schedule.Store, summary *reconcile.Summary) error {
	f := excelize.NewFile()
	defer f.Close()

	for _, sheet := range []string{SheetSequence, SheetSchedule, SheetUpdateInfo, SheetSummary} {
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("creating %s sheet: %w", sheet, err)
		}
	}
	f.DeleteSheet("Sheet1")

	if err := writeSequence(f, store); err != nil {
		return err
	}
	if err := writeSchedule(f, store); err != nil {
		return err
	}
	if err := writeUpdateInfo(f, store, summary); err != nil {
		return err
	}
	if err := writeSummary(f, store); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving schedule workbook: %w", err)
	}
	return nil
}

func writeSequence(f *excelize.File, store *schedule.Store) error {
	if err := setRow(f, SheetSequence, 1, sequenceHeader); err != nil {
		return err
	}
	for i, rec := range store.Ordered() {
		row := []any{
			i + 1, rec.MatchID, rec.Season, rec.CompetitionID,
			rec.HomeTeamID, rec.HomeTeam, rec.AwayTeamID, rec.AwayTeam,
			rec.RoundLabel, rec.Stage,
		}
		if err := setRow(f, SheetSequence, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeSchedule(f *excelize.File, store *schedule.Store) error {
	if err := setRow(f, SheetSchedule, 1, scheduleHeader); err != nil {
		return err
	}
	for i, rec := range store.Ordered() {
		var date, kickoff, finish, timeslot string
		if rec.KickoffAt != nil {
			date = displayDate(*rec.KickoffAt)
			kickoff = displayClock(*rec.KickoffAt)
			finish = finishClock(*rec.KickoffAt, rec.ResultNote)
			timeslot = liveTimeslot(*rec.KickoffAt, rec.ResultNote)
		}
		homeResult, awayResult := results(rec)

		row := []any{
			rec.MatchID,
			rec.HomeTeam + " vs. " + rec.AwayTeam,
			rec.Season, rec.CompetitionID,
			rec.RoundLabel, rec.Stage, rec.Group, rec.Leg,
			rec.HomeTeamID, rec.HomeTeam, rec.AwayTeamID, rec.AwayTeam,
			date, kickoff, finish, timeslot,
			string(rec.Status), scoreCell(rec.ScoreHome), scoreCell(rec.ScoreAway),
			homeResult, awayResult, rec.ResultNote,
			rec.ModifiedAt.Format("2006-01-02"), rec.Note,
		}
		if err := setRow(f, SheetSchedule, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

// writeUpdateInfo counts the run's merged fixtures per round.
func writeUpdateInfo(f *excelize.File, store *schedule.Store, summary *reconcile.Summary) error {
	if err := setRow(f, SheetUpdateInfo, 1, []any{"season", "competition", "match_round", "classification", "count"}); err != nil {
		return err
	}
	if summary == nil {
		return nil
	}

	type key struct{ season, comp, round, class string }
	counts := make(map[key]int)
	for _, entry := range summary.Entries {
		if entry.Classification == reconcile.Unchanged {
			continue
		}
		rec := store.Get(entry.MatchID)
		if rec == nil {
			continue
		}
		counts[key{rec.Season, rec.CompetitionID, rec.RoundLabel, string(entry.Classification)}]++
	}

	keys := make([]key, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].round != keys[j].round {
			return keys[i].round < keys[j].round
		}
		return keys[i].class < keys[j].class
	})

	for i, k := range keys {
		if err := setRow(f, SheetUpdateInfo, i+2, []any{k.season, k.comp, k.round, k.class, counts[k]}); err != nil {
			return err
		}
	}
	return nil
}

// writeSummary counts stored fixtures per round, total and played.
func writeSummary(f *excelize.File, store *schedule.Store) error {
	if err := setRow(f, SheetSummary, 1, []any{"season", "competition", "match_round", "matches", "played"}); err != nil {
		return err
	}

	type key struct{ season, comp, round string }
	total := make(map[key]int)
	played := make(map[key]int)
	var order []key
	for _, rec := range store.Ordered() {
		k := key{rec.Season, rec.CompetitionID, rec.RoundLabel}
		if total[k] == 0 {
			order = append(order, k)
		}
		total[k]++
		if rec.Status == match.StatusPlayed {
			played[k]++
		}
	}
	sort.Slice(order, func(i, j int) bool { return order[i].round < order[j].round })

	for i, k := range order {
		if err := setRow(f, SheetSummary, i+2, []any{k.season, k.comp, k.round, total[k], played[k]}); err != nil {
			return err
		}
	}
	return nil
}

// WriteRawBatch saves a scraped batch to a single-sheet workbook so a
// reconciliation can be re-run without re-fetching the site.
func WriteRawBatch(path string, rows []match.RawMatch) error {
	f := excelize.NewFile()
	defer f.Close()

	header := []any{
		"Season", "Competition", "Round", "Stage", "Group", "Leg",
		"Date", "Time", "Home_Team", "Away_Team", "Score",
		"match_url", "home_url", "away_url",
	}
	if err := setRow(f, "Sheet1", 1, header); err != nil {
		return err
	}
	for i, r := range rows {
		row := []any{
			r.Season, r.Competition, r.Round, r.Stage, r.Group, r.Leg,
			r.Date, r.Time, r.HomeTeam, r.AwayTeam, r.Score,
			r.MatchURL, r.HomeURL, r.AwayURL,
		}
		if err := setRow(f, "Sheet1", i+2, row); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving raw batch workbook: %w", err)
	}
	return nil
}

// ReadRawBatch loads a batch previously saved by WriteRawBatch.
func ReadRawBatch(path string) ([]match.RawMatch, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening raw batch workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	if err != nil {
		return nil, fmt.Errorf("reading raw batch workbook: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	out := make([]match.RawMatch, 0, len(rows)-1)
	for _, row := range rows[1:] {
		get := func(i int) string {
			if i >= len(row) {
				return ""
			}
			return row[i]
		}
		out = append(out, match.RawMatch{
			Season: get(0), Competition: get(1), Round: get(2),
			Stage: get(3), Group: get(4), Leg: get(5),
			Date: get(6), Time: get(7),
			HomeTeam: get(8), AwayTeam: get(9), Score: get(10),
			MatchURL: get(11), HomeURL: get(12), AwayURL: get(13),
		})
	}
	return out, nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	addr, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, addr, &values); err != nil {
		return fmt.Errorf("writing %s row %d: %w", sheet, row, err)
	}
	return nil
}

func scoreCell(v *int) any {
	if v == nil {
		return ""
	}
	return *v
}
