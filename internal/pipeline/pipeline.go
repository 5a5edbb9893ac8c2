package pipeline

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wangxy/wfmaster/internal/config"
	"github.com/wangxy/wfmaster/internal/export"
	"github.com/wangxy/wfmaster/internal/ledger"
	"github.com/wangxy/wfmaster/internal/mapping"
	"github.com/wangxy/wfmaster/internal/match"
	"github.com/wangxy/wfmaster/internal/reconcile"
	"github.com/wangxy/wfmaster/internal/schedule"
	"github.com/wangxy/wfmaster/internal/scraper"
)

// Competition table kinds a run can cover.
const (
	KindLeague = "league"
	KindCup    = "cup"
)

// ErrNoCompetitions is returned when the mapping table for the requested
// kind is empty or missing.
var ErrNoCompetitions = errors.New("no competitions in mapping table")

// Fetcher downloads the raw schedule rows for one competition.
type Fetcher interface {
	FetchCompetition(slug, season, competition string) ([]match.RawMatch, error)
}

// competition is one row of either mapping table, reduced to what a run
// needs.
type competition struct {
	Slug   string
	Name   string
	Season string // mapping-table form, e.g. "2025-2026"
}

// Runner executes the pipeline for one competition kind.
type Runner struct {
	cfg   *config.Config
	log   *logrus.Logger
	fetch Fetcher

	// Season, when set, overrides the season column of every mapping-table
	// row (mapping-table form, e.g. "2025-2026").
	Season string

	// pause waits between competition fetches. Tests replace it.
	pause func()
}

// New creates a Runner. fetch is typically a *scraper.Scraper.
func New(cfg *config.Config, log *logrus.Logger, fetch Fetcher) *Runner {
	if log == nil {
		log = logrus.New()
	}
	return &Runner{
		cfg:   cfg,
		log:   log,
		fetch: fetch,
		pause: func() { time.Sleep(scraper.Pause()) },
	}
}

// Result aggregates one run over a competition table.
type Result struct {
	Kind      string
	Summaries []*reconcile.Summary
}

// Changed returns the total number of records merged across all
// competitions in the run.
func (r *Result) Changed() int {
	n := 0
	for _, s := range r.Summaries {
		n += s.Changed()
	}
	return n
}

// Scrape fetches every competition of the kind and saves the raw rows to
// the kind's batch workbook. It returns the fetched rows.
func (r *Runner) Scrape(kind string) ([]match.RawMatch, error) {
	rows, err := r.fetchAll(kind)
	if err != nil {
		return nil, err
	}
	path := r.cfg.RawBatchPath(kind)
	if err := export.WriteRawBatch(path, rows); err != nil {
		return nil, fmt.Errorf("saving raw batch: %w", err)
	}
	r.log.WithFields(logrus.Fields{"kind": kind, "rows": len(rows), "path": path}).Info("raw batch saved")
	return rows, nil
}

// Run executes the full cycle for one kind. When fromBatch is set the raw
// rows are read from the saved batch workbook instead of being fetched.
func (r *Runner) Run(kind string, fromBatch bool) (*Result, error) {
	var rows []match.RawMatch
	var err error
	if fromBatch {
		rows, err = export.ReadRawBatch(r.cfg.RawBatchPath(kind))
		if err != nil {
			return nil, fmt.Errorf("loading raw batch: %w", err)
		}
	} else {
		rows, err = r.Scrape(kind)
		if err != nil {
			return nil, err
		}
	}

	if kind == KindCup {
		rows = match.PrepareCupRounds(rows)
	}

	teams, err := r.loadTeams()
	if err != nil {
		return nil, err
	}

	store, err := schedule.Load(r.cfg.StorePath(kind), kind)
	if err != nil {
		return nil, fmt.Errorf("loading schedule store: %w", err)
	}
	book, err := ledger.New(r.cfg.LedgerPath())
	if err != nil {
		return nil, fmt.Errorf("opening run ledger: %w", err)
	}

	result := &Result{Kind: kind}
	for _, group := range groupByCompetition(rows) {
		norm := match.NewNormalizer(teams)
		batch := make([]*match.MatchRecord, 0, len(group.rows))
		for _, raw := range group.rows {
			rec, err := norm.Normalize(raw)
			if err != nil {
				r.log.WithFields(logrus.Fields{
					"competition": group.name,
					"home":        raw.HomeTeam,
					"away":        raw.AwayTeam,
				}).Warnf("dropping row: %v", err)
				continue
			}
			batch = append(batch, rec)
		}

		summary, entry := reconcile.Reconcile(group.name, batch, store, reconcile.Options{
			Dropped:  norm.Dropped(),
			Unmapped: norm.Unmapped(),
		})
		result.Summaries = append(result.Summaries, summary)

		if err := book.Record(entry); err != nil {
			return nil, fmt.Errorf("recording ledger entry: %w", err)
		}
		r.log.WithFields(logrus.Fields{
			"competition": group.name,
			"added":       summary.Counts[reconcile.Added],
			"changed":     summary.Changed(),
			"dropped":     summary.Dropped,
			"duplicates":  len(summary.DuplicateIDs),
		}).Info("reconciled competition")
	}

	if err := store.Save(r.cfg.StorePath(kind)); err != nil {
		return nil, fmt.Errorf("saving schedule store: %w", err)
	}

	merged := mergeSummaries(kind, result.Summaries)
	if err := export.WriteFinalSchedule(r.cfg.OutputPath(kind), store, merged); err != nil {
		return nil, fmt.Errorf("writing schedule workbook: %w", err)
	}
	r.log.WithFields(logrus.Fields{
		"kind":    kind,
		"matches": store.Len(),
		"changed": result.Changed(),
	}).Info("run complete")

	return result, nil
}

// loadTeams reads the team alias workbook. A missing workbook is not fatal:
// every team then resolves to its raw name with the provisional marker set.
func (r *Runner) loadTeams() (match.Resolver, error) {
	path := r.cfg.TeamMappingPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		r.log.WithField("path", path).Warn("team mapping workbook missing; all names provisional")
		return nil, nil
	}
	teams, err := mapping.LoadTeamTable(path)
	if err != nil {
		return nil, fmt.Errorf("loading team mapping: %w", err)
	}
	r.log.WithField("aliases", teams.Len()).Debug("team mapping loaded")
	return teams, nil
}

// fetchAll downloads the raw rows for every competition in the kind's
// mapping table, in table order. A competition that fails to fetch is
// logged and skipped so one dead page cannot sink the whole run.
func (r *Runner) fetchAll(kind string) ([]match.RawMatch, error) {
	comps, err := r.competitions(kind)
	if err != nil {
		return nil, err
	}
	if len(comps) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoCompetitions, kind)
	}

	var rows []match.RawMatch
	for i, c := range comps {
		if i > 0 {
			r.pause()
		}
		if r.Season != "" {
			c.Season = r.Season
		}
		fetched, err := r.fetch.FetchCompetition(c.Slug, c.Season, c.Name)
		if err != nil {
			r.log.WithField("competition", c.Name).Errorf("skipping competition: %v", err)
			continue
		}
		season := mapping.DisplaySeason(c.Season)
		for j := range fetched {
			fetched[j].Season = season
		}
		rows = append(rows, fetched...)
	}
	return rows, nil
}

func (r *Runner) competitions(kind string) ([]competition, error) {
	switch kind {
	case KindLeague:
		leagues, err := mapping.LoadLeagues(r.cfg.LeagueMapPath())
		if err != nil {
			return nil, fmt.Errorf("loading league map: %w", err)
		}
		comps := make([]competition, 0, len(leagues))
		for _, l := range leagues {
			comps = append(comps, competition{Slug: l.Slug, Name: l.Name, Season: l.Season})
		}
		return comps, nil
	case KindCup:
		cups, err := mapping.LoadCups(r.cfg.CupMapPath())
		if err != nil {
			return nil, fmt.Errorf("loading cup map: %w", err)
		}
		comps := make([]competition, 0, len(cups))
		for _, c := range cups {
			comps = append(comps, competition{Slug: c.Slug, Name: c.Name, Season: c.Season})
		}
		return comps, nil
	default:
		return nil, fmt.Errorf("unknown competition kind: %s", kind)
	}
}

type compGroup struct {
	name string
	rows []match.RawMatch
}

// groupByCompetition splits a batch by competition name, preserving both
// the order competitions first appear and the row order within each.
func groupByCompetition(rows []match.RawMatch) []compGroup {
	index := make(map[string]int)
	var groups []compGroup
	for _, row := range rows {
		i, ok := index[row.Competition]
		if !ok {
			i = len(groups)
			index[row.Competition] = i
			groups = append(groups, compGroup{name: row.Competition})
		}
		groups[i].rows = append(groups[i].rows, row)
	}
	return groups
}

// mergeSummaries folds per-competition summaries into one for the export's
// Update_Info sheet.
func mergeSummaries(kind string, summaries []*reconcile.Summary) *reconcile.Summary {
	merged := &reconcile.Summary{
		CompetitionID: kind,
		Counts:        make(map[reconcile.Classification]int),
	}
	for _, s := range summaries {
		for class, n := range s.Counts {
			merged.Counts[class] += n
		}
		merged.Entries = append(merged.Entries, s.Entries...)
		merged.DuplicateIDs = append(merged.DuplicateIDs, s.DuplicateIDs...)
		merged.Dropped += s.Dropped
		merged.Unmapped = append(merged.Unmapped, s.Unmapped...)
	}
	return merged
}
