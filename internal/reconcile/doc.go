// Package reconcile merges a freshly scraped batch of fixtures into a
// competition's schedule store and classifies every incoming record.
//
// The engine applies two load-bearing policies against scraper flakiness:
// fixtures in a terminal state (played, cancelled) are never downgraded by a
// later scrape that lacks their result, and fixtures missing from a batch
// are left untouched rather than treated as cancelled, since a partial
// scrape is not evidence of anything.
package reconcile
