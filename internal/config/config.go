package config

import (
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds everything a run needs: mapping table locations, the data
// directory for schedule stores and the ledger, and the output directory for
// exported workbooks.
type Config struct {
	ConfigDir       string // directory holding the mapping tables
	OutputDir       string // exported workbooks and the scrape log
	DataDir         string // schedule store snapshots and the run ledger
	TeamMappingFile string // team alias workbook (absolute, or relative to ConfigDir)
	LeagueMapFile   string // league mapping CSV, relative to ConfigDir
	CupMapFile      string // cup mapping CSV, relative to ConfigDir
	BaseURL         string // source site root
	LogLevel        string
}

// Load reads configuration from a .env file (if present) and WFM_-prefixed
// environment variables.
func Load() (*Config, error) {
	// A missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("WFM")
	v.AutomaticEnv()

	v.SetDefault("config_dir", "config")
	v.SetDefault("output_dir", "output")
	v.SetDefault("data_dir", "data")
	v.SetDefault("team_mapping_file", "team_mapping_football.xlsx")
	v.SetDefault("league_map_file", "league_map.csv")
	v.SetDefault("cup_map_file", "cup_map.csv")
	v.SetDefault("base_url", "https://chn.worldfootball.net")
	v.SetDefault("log_level", "info")

	return &Config{
		ConfigDir:       v.GetString("config_dir"),
		OutputDir:       v.GetString("output_dir"),
		DataDir:         v.GetString("data_dir"),
		TeamMappingFile: v.GetString("team_mapping_file"),
		LeagueMapFile:   v.GetString("league_map_file"),
		CupMapFile:      v.GetString("cup_map_file"),
		BaseURL:         v.GetString("base_url"),
		LogLevel:        v.GetString("log_level"),
	}, nil
}

// TeamMappingPath returns the resolved location of the team alias workbook.
func (c *Config) TeamMappingPath() string {
	return c.resolve(c.TeamMappingFile)
}

// LeagueMapPath returns the resolved location of the league mapping CSV, or
// "" when not configured.
func (c *Config) LeagueMapPath() string {
	return c.resolve(c.LeagueMapFile)
}

// CupMapPath returns the resolved location of the cup mapping CSV, or ""
// when not configured.
func (c *Config) CupMapPath() string {
	return c.resolve(c.CupMapFile)
}

// StorePath returns the schedule store location for a competition type.
func (c *Config) StorePath(kind string) string {
	return filepath.Join(c.DataDir, kind+"_schedule.json")
}

// LedgerPath returns the run ledger location.
func (c *Config) LedgerPath() string {
	return filepath.Join(c.DataDir, "run_ledger.jsonl")
}

// OutputPath returns the exported workbook location for a competition type.
func (c *Config) OutputPath(kind string) string {
	return filepath.Join(c.OutputDir, kind+"_schedule.xlsx")
}

// RawBatchPath returns the location of the raw scrape workbook for a
// competition type.
func (c *Config) RawBatchPath(kind string) string {
	return filepath.Join(c.OutputDir, "sch_"+kind+".xlsx")
}

func (c *Config) resolve(name string) string {
	if name == "" {
		return ""
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.ConfigDir, name)
}
