package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// CompetitionResult is one competition's share of a run.
type CompetitionResult struct {
	Competition string   `json:"competition"`
	Added       int      `json:"added"`
	Rescheduled int      `json:"rescheduled"`
	Status      int      `json:"status_changed"`
	Scores      int      `json:"score_updated"`
	Unchanged   int      `json:"unchanged"`
	Dropped     int      `json:"dropped"`
	Duplicates  []string `json:"duplicate_ids,omitempty"`
	Unmapped    []string `json:"unmapped,omitempty"`
}

// OutputResult contains data to be output
type OutputResult struct {
	RanAt        time.Time           `json:"ran_at"`
	Kind         string              `json:"kind"`
	Workbook     string              `json:"workbook"`
	Changed      int                 `json:"changed"`
	Competitions []CompetitionResult `json:"competitions"`
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result *OutputResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result *OutputResult, verbose bool) error {
	if result.Changed == 0 {
		fmt.Fprintln(w, "No schedule changes.")
	}

	for _, c := range result.Competitions {
		changed := c.Added + c.Rescheduled + c.Status + c.Scores
		if changed == 0 && !verbose {
			continue
		}

		fmt.Fprintf(w, "\n%s:\n", c.Competition)
		if c.Added > 0 {
			fmt.Fprintf(w, "  added: %d\n", c.Added)
		}
		if c.Rescheduled > 0 {
			fmt.Fprintf(w, "  rescheduled: %d\n", c.Rescheduled)
		}
		if c.Status > 0 {
			fmt.Fprintf(w, "  status changed: %d\n", c.Status)
		}
		if c.Scores > 0 {
			fmt.Fprintf(w, "  scores updated: %d\n", c.Scores)
		}
		if verbose {
			fmt.Fprintf(w, "  unchanged: %d\n", c.Unchanged)
		}
		if c.Dropped > 0 {
			fmt.Fprintf(w, "  dropped rows: %d\n", c.Dropped)
		}
		for _, id := range c.Duplicates {
			fmt.Fprintf(w, "  duplicate in batch: %s\n", id)
		}
		for _, name := range c.Unmapped {
			fmt.Fprintf(w, "  unmapped team: %s\n", name)
		}
	}

	fmt.Fprintf(w, "\nTotal: %d changed across %d competitions\n", result.Changed, len(result.Competitions))
	fmt.Fprintf(w, "Workbook: %s\n", result.Workbook)
	return nil
}
