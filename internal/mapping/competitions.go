package mapping

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// League is one row of the league mapping table. Slug is the URL component
// used to build the source site's all-matches address.
type League struct {
	Slug    string // "League" column
	Country string
	Name    string // "League_Name" column, the canonical competition ID
	Type    string // "League_Type" column
	Season  string // "2025-2026" form
	Gender  string
}

// Cup is one row of the cup mapping table.
type Cup struct {
	Code   string // "Comp_Code" column
	Slug   string // "Competition" column, URL component
	Name   string // "Comp_Name" column, the canonical competition ID
	Type   string
	Season string
	Gender string
}

// DisplaySeason shortens a mapping-table season to the listing form:
// "2024-2025" becomes "2024/25". Seasons in any other shape pass through
// unchanged.
func DisplaySeason(season string) string {
	parts := strings.SplitN(season, "-", 2)
	if len(parts) != 2 || len(parts[0]) != 4 || len(parts[1]) != 4 {
		return season
	}
	return parts[0] + "/" + parts[1][2:]
}

// LoadLeagues reads the league mapping CSV. An empty path or missing file
// yields an empty table.
func LoadLeagues(path string) ([]League, error) {
	rows, header, err := readCSV(path)
	if err != nil || rows == nil {
		return nil, err
	}

	leagues := make([]League, 0, len(rows))
	for _, row := range rows {
		leagues = append(leagues, League{
			Slug:    field(row, header, "League"),
			Country: field(row, header, "Country"),
			Name:    field(row, header, "League_Name"),
			Type:    field(row, header, "League_Type"),
			Season:  field(row, header, "Season"),
			Gender:  field(row, header, "Gender"),
		})
	}
	return leagues, nil
}

// LoadCups reads the cup mapping CSV. An empty path or missing file yields
// an empty table.
func LoadCups(path string) ([]Cup, error) {
	rows, header, err := readCSV(path)
	if err != nil || rows == nil {
		return nil, err
	}

	cups := make([]Cup, 0, len(rows))
	for _, row := range rows {
		cups = append(cups, Cup{
			Code:   field(row, header, "Comp_Code"),
			Slug:   field(row, header, "Competition"),
			Name:   field(row, header, "Comp_Name"),
			Type:   field(row, header, "Comp_Type"),
			Season: field(row, header, "Season"),
			Gender: field(row, header, "Gender"),
		})
	}
	return cups, nil
}

// readCSV returns the data rows and a column index built from the header
// row. A missing file returns nil rows without error.
func readCSV(path string) ([][]string, map[string]int, error) {
	if path == "" {
		return nil, nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("opening mapping table: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	headerRow, err := r.Read()
	if err == io.EOF {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("reading mapping table header: %w", err)
	}
	header := make(map[string]int, len(headerRow))
	for i, name := range headerRow {
		header[strings.TrimSpace(name)] = i
	}

	rows, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("reading mapping table: %w", err)
	}
	return rows, header, nil
}

func field(row []string, header map[string]int, name string) string {
	i, ok := header[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
