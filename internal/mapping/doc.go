// Package mapping loads the static name-mapping tables that drive a run.
//
// The team table maps raw scraped team names (aliases) to canonical team
// identity and comes from the "alias" sheet of the team mapping workbook.
// The league and cup tables enumerate the competitions to scrape and come
// from CSV files; a missing file yields an empty table so a deployment can
// run with only one competition type configured.
//
// All tables are loaded once per run and immutable afterwards.
package mapping
