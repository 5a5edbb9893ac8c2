package pipeline

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/wangxy/wfmaster/internal/config"
	"github.com/wangxy/wfmaster/internal/export"
	"github.com/wangxy/wfmaster/internal/match"
	"github.com/wangxy/wfmaster/internal/schedule"
)

type fakeFetcher struct {
	rows  map[string][]match.RawMatch // by slug
	fails map[string]bool
	calls []string
}

func (f *fakeFetcher) FetchCompetition(slug, season, competition string) ([]match.RawMatch, error) {
	f.calls = append(f.calls, slug)
	if f.fails[slug] {
		return nil, errors.New("boom")
	}
	out := make([]match.RawMatch, len(f.rows[slug]))
	copy(out, f.rows[slug])
	for i := range out {
		out[i].Season = season
		out[i].Competition = competition
	}
	return out, nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	cfg := &config.Config{
		ConfigDir:       filepath.Join(root, "config"),
		OutputDir:       filepath.Join(root, "output"),
		DataDir:         filepath.Join(root, "data"),
		TeamMappingFile: "team_mapping_football.xlsx",
		LeagueMapFile:   "league_map.csv",
		CupMapFile:      "cup_map.csv",
	}
	if err := os.MkdirAll(cfg.ConfigDir, 0o755); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func writeLeagueMap(t *testing.T, cfg *config.Config, rows ...string) {
	t.Helper()
	lines := append([]string{"League,Country,League_Name,League_Type,Season,Gender"}, rows...)
	if err := os.WriteFile(cfg.LeagueMapPath(), []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func quietRunner(cfg *config.Config, fetch Fetcher) *Runner {
	log := logrus.New()
	log.SetOutput(io.Discard)
	r := New(cfg, log, fetch)
	r.pause = func() {}
	return r
}

func leagueRows() []match.RawMatch {
	return []match.RawMatch{
		{Round: "Round 01", Date: "16/08/2025", Time: "17:30", HomeTeam: "Arsenal FC", AwayTeam: "Chelsea FC", Score: "2:1 (1:0)"},
		{Round: "Round 01", Date: "17/08/2025", Time: "14:00", HomeTeam: "Everton FC", AwayTeam: "Fulham FC", Score: "-:-"},
	}
}

func TestRunLeague(t *testing.T) {
	cfg := testConfig(t)
	writeLeagueMap(t, cfg, "eng-premier-league,England,Premier League,league,2025-2026,M")
	fetch := &fakeFetcher{rows: map[string][]match.RawMatch{"eng-premier-league": leagueRows()}}

	runner := quietRunner(cfg, fetch)
	result, err := runner.Run(KindLeague, false)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	t.Run("all rows added on first run", func(t *testing.T) {
		if got := result.Changed(); got != 2 {
			t.Errorf("Changed() = %d, want 2", got)
		}
		if len(result.Summaries) != 1 {
			t.Fatalf("expected 1 summary, got %d", len(result.Summaries))
		}
		if result.Summaries[0].CompetitionID != "Premier League" {
			t.Errorf("summary competition = %q", result.Summaries[0].CompetitionID)
		}
	})

	t.Run("store persisted with display season", func(t *testing.T) {
		store, err := schedule.Load(cfg.StorePath(KindLeague), KindLeague)
		if err != nil {
			t.Fatal(err)
		}
		if store.Len() != 2 {
			t.Fatalf("store has %d records, want 2", store.Len())
		}
		for _, rec := range store.Ordered() {
			if rec.Season != "2025/26" {
				t.Errorf("season = %q, want 2025/26", rec.Season)
			}
		}
	})

	t.Run("artifacts written", func(t *testing.T) {
		for _, path := range []string{
			cfg.OutputPath(KindLeague),
			cfg.RawBatchPath(KindLeague),
			cfg.LedgerPath(),
		} {
			if _, err := os.Stat(path); err != nil {
				t.Errorf("missing artifact %s: %v", path, err)
			}
		}
	})

	t.Run("second run is unchanged", func(t *testing.T) {
		before, err := schedule.Load(cfg.StorePath(KindLeague), KindLeague)
		if err != nil {
			t.Fatal(err)
		}
		again, err := quietRunner(cfg, fetch).Run(KindLeague, false)
		if err != nil {
			t.Fatal(err)
		}
		if got := again.Changed(); got != 0 {
			t.Errorf("second run Changed() = %d, want 0", got)
		}
		after, err := schedule.Load(cfg.StorePath(KindLeague), KindLeague)
		if err != nil {
			t.Fatal(err)
		}
		beforeJSON, _ := json.Marshal(struct {
			Seq  []string
			Recs map[string]*match.MatchRecord
		}{before.Sequence, before.Records})
		afterJSON, _ := json.Marshal(struct {
			Seq  []string
			Recs map[string]*match.MatchRecord
		}{after.Sequence, after.Records})
		if string(beforeJSON) != string(afterJSON) {
			t.Error("store contents changed on an unchanged run")
		}
	})
}

func TestRunFromBatch(t *testing.T) {
	cfg := testConfig(t)
	rows := []match.RawMatch{
		{Season: "2025/26", Competition: "Premier League", Round: "Round 01",
			Date: "16/08/2025", Time: "17:30",
			HomeTeam: "Arsenal FC", AwayTeam: "Chelsea FC", Score: "2:1 (1:0)"},
	}
	if err := export.WriteRawBatch(cfg.RawBatchPath(KindLeague), rows); err != nil {
		t.Fatal(err)
	}

	runner := quietRunner(cfg, &fakeFetcher{})
	result, err := runner.Run(KindLeague, true)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if got := result.Changed(); got != 1 {
		t.Errorf("Changed() = %d, want 1", got)
	}
}

func TestRunSkipsFailedCompetition(t *testing.T) {
	cfg := testConfig(t)
	writeLeagueMap(t, cfg,
		"eng-premier-league,England,Premier League,league,2025-2026,M",
		"bundesliga,Germany,Bundesliga,league,2025-2026,M",
	)
	fetch := &fakeFetcher{
		rows:  map[string][]match.RawMatch{"bundesliga": leagueRows()},
		fails: map[string]bool{"eng-premier-league": true},
	}

	result, err := quietRunner(cfg, fetch).Run(KindLeague, false)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(result.Summaries) != 1 || result.Summaries[0].CompetitionID != "Bundesliga" {
		t.Fatalf("expected only Bundesliga to survive, got %+v", result.Summaries)
	}
	if len(fetch.calls) != 2 {
		t.Errorf("expected both competitions attempted, got %v", fetch.calls)
	}
}

func TestRunEmptyTable(t *testing.T) {
	cfg := testConfig(t)
	_, err := quietRunner(cfg, &fakeFetcher{}).Run(KindLeague, false)
	if !errors.Is(err, ErrNoCompetitions) {
		t.Fatalf("expected ErrNoCompetitions, got %v", err)
	}
}

func TestRunUnknownKind(t *testing.T) {
	cfg := testConfig(t)
	if _, err := quietRunner(cfg, &fakeFetcher{}).Run("friendly", false); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestScrapeWritesBatch(t *testing.T) {
	cfg := testConfig(t)
	writeLeagueMap(t, cfg, "eng-premier-league,England,Premier League,league,2025-2026,M")
	fetch := &fakeFetcher{rows: map[string][]match.RawMatch{"eng-premier-league": leagueRows()}}

	rows, err := quietRunner(cfg, fetch).Scrape(KindLeague)
	if err != nil {
		t.Fatalf("Scrape returned error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	saved, err := export.ReadRawBatch(cfg.RawBatchPath(KindLeague))
	if err != nil {
		t.Fatal(err)
	}
	if len(saved) != 2 {
		t.Fatalf("saved batch has %d rows, want 2", len(saved))
	}
	if saved[0].Competition != "Premier League" || saved[0].Season != "2025/26" {
		t.Errorf("row not stamped: %+v", saved[0])
	}
}

func TestGroupByCompetition(t *testing.T) {
	rows := []match.RawMatch{
		{Competition: "A", HomeTeam: "1"},
		{Competition: "B", HomeTeam: "2"},
		{Competition: "A", HomeTeam: "3"},
	}
	groups := groupByCompetition(rows)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].name != "A" || len(groups[0].rows) != 2 {
		t.Errorf("group A wrong: %+v", groups[0])
	}
	if groups[1].name != "B" || len(groups[1].rows) != 1 {
		t.Errorf("group B wrong: %+v", groups[1])
	}
}

func TestMergeSummaries(t *testing.T) {
	cfg := testConfig(t)
	writeLeagueMap(t, cfg,
		"eng-premier-league,England,Premier League,league,2025-2026,M",
		"bundesliga,Germany,Bundesliga,league,2025-2026,M",
	)
	fetch := &fakeFetcher{rows: map[string][]match.RawMatch{
		"eng-premier-league": leagueRows(),
		"bundesliga":         leagueRows(),
	}}

	result, err := quietRunner(cfg, fetch).Run(KindLeague, false)
	if err != nil {
		t.Fatal(err)
	}
	merged := mergeSummaries(KindLeague, result.Summaries)
	if merged.Changed() != 4 {
		t.Errorf("merged Changed() = %d, want 4", merged.Changed())
	}
	if len(merged.Entries) != 4 {
		t.Errorf("merged has %d entries, want 4", len(merged.Entries))
	}
}

func TestLedgerAccumulates(t *testing.T) {
	cfg := testConfig(t)
	writeLeagueMap(t, cfg, "eng-premier-league,England,Premier League,league,2025-2026,M")
	fetch := &fakeFetcher{rows: map[string][]match.RawMatch{"eng-premier-league": leagueRows()}}
	runner := quietRunner(cfg, fetch)

	for i := 0; i < 3; i++ {
		if _, err := runner.Run(KindLeague, false); err != nil {
			t.Fatal(err)
		}
	}

	data, err := os.ReadFile(cfg.LedgerPath())
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Count(string(data), "\n")
	if lines != 3 {
		t.Errorf("ledger has %d lines, want 3", lines)
	}
}
