// Package schedule provides JSON-based persistence for a competition's
// reconciled schedule.
//
// A Store holds every fixture ever seen for one competition, keyed by match
// ID, together with the permanent first-seen sequence order used for the
// exported Sequence sheet. Stores are loaded once per run, mutated in memory
// by the reconciliation engine, and written back with an atomic replace so a
// crashed run can never leave a half-written schedule on disk.
package schedule
