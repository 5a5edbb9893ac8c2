// Package pipeline runs the scrape-normalize-reconcile-export cycle for one
// competition table.
//
// A Runner loads the league or cup mapping table, fetches every listed
// competition, normalizes the raw rows against the team alias table, merges
// each competition's batch into the kind's schedule store, appends a ledger
// entry per competition, and writes the final schedule workbook.
package pipeline
