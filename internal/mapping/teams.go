package mapping

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// TeamAliasSheet is the worksheet holding the alias table in the team
// mapping workbook.
const TeamAliasSheet = "alias"

// Canonical is the resolved identity of a team.
type Canonical struct {
	TeamID string
	Name   string
}

// TeamTable resolves raw team names to canonical identity by exact,
// case-insensitive match.
type TeamTable struct {
	byAlias map[string]Canonical
}

// NewTeamTable builds a table from an alias -> canonical map. Aliases are
// matched case-insensitively.
func NewTeamTable(entries map[string]Canonical) *TeamTable {
	t := &TeamTable{byAlias: make(map[string]Canonical, len(entries))}
	for alias, c := range entries {
		t.byAlias[normalizeAlias(alias)] = c
	}
	return t
}

// LoadTeamTable reads the alias sheet of the team mapping workbook. Expected
// columns: alias, team_id, csm_name (header row required).
func LoadTeamTable(path string) (*TeamTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening team mapping workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(TeamAliasSheet)
	if err != nil {
		return nil, fmt.Errorf("reading %s sheet: %w", TeamAliasSheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("team mapping workbook: %s sheet is empty", TeamAliasSheet)
	}

	col := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"alias", "team_id", "csm_name"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("team mapping workbook: missing %q column", required)
		}
	}

	t := &TeamTable{byAlias: make(map[string]Canonical, len(rows)-1)}
	for _, row := range rows[1:] {
		alias := cell(row, col["alias"])
		if alias == "" {
			continue
		}
		t.byAlias[normalizeAlias(alias)] = Canonical{
			TeamID: cell(row, col["team_id"]),
			Name:   cell(row, col["csm_name"]),
		}
	}
	return t, nil
}

// Resolve looks up a raw team name. It satisfies the normalizer's Resolver
// interface; a miss returns ok=false and the caller keeps the raw name.
func (t *TeamTable) Resolve(raw string) (teamID, name string, ok bool) {
	c, ok := t.byAlias[normalizeAlias(raw)]
	if !ok {
		return "", "", false
	}
	return c.TeamID, c.Name, true
}

// Len returns the number of aliases in the table.
func (t *TeamTable) Len() int {
	return len(t.byAlias)
}

func normalizeAlias(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
