// Package match provides the canonical fixture model for scraped football
// schedules.
//
// The package converts raw scraped rows into strongly-typed MatchRecord
// values at a single validation gate. Each record is assigned a deterministic
// SHA1-based match ID generated from competition, season, round and the
// canonical team names, so the same fixture maps to the same ID across runs
// even when its kickoff time changes.
package match
