// Package scraper provides HTTP fetching and HTML parsing for
// worldfootball.net schedule pages.
//
// Each competition's all-matches page carries a single standard_tabelle
// table: round-header rows (a th spanning the row) followed by seven-cell
// match rows holding date, time, home team, away team and score. Date cells
// are only filled on the first match of a day, so the parser forward-fills
// them. Fetches are retried with exponential backoff on transient failures.
package scraper
