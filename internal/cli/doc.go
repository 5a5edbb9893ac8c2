// Package cli implements the command-line interface for wfmaster.
//
// The cli package provides the Cobra-based CLI with the scrape and run
// subcommands, output formatting (text/JSON), and exit codes that let cron
// jobs tell "changes merged" apart from "nothing new". It coordinates the
// config, scraper, and pipeline packages.
package cli
