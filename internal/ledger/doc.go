// Package ledger provides the append-only audit trail of reconciliation
// runs.
//
// Each run appends one JSON line with its per-classification counts and any
// mapping failures. The ledger is written for observability only; nothing in
// the pipeline ever reads it back.
package ledger
