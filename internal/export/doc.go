// Package export writes the spreadsheet artifacts consumed downstream.
//
// The final schedule workbook carries four sheets: Sequence (permanent
// first-seen fixture order), Schedule (one row per fixture with display
// times), Update_Info (per-round counts of fixtures changed by the run) and
// Summary (per-round totals). Kickoff display follows the broadcast-listing
// convention: matches kicking off before 02:00 are shown on the previous
// day's listing with a 24+ hour clock ("25:30").
package export
