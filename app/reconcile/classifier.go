package reconcile

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/EthanLeitch/ao3scraper/app/database"
)

// Classify compares a fetched snapshot against the last-known record and
// derives the display cells. Pure: identical inputs always produce identical
// results; nothing is persisted here.
//
// Priority order, first match wins: fetch error, first successful fetch,
// chapter count increased, stale, unchanged.
func Classify(old *database.Work, snap database.WorkSnapshot, fetchErr error, opts Options) Result {
	if fetchErr != nil {
		return errorResult(fetchErr.Error(), opts)
	}

	updatedAt, err := time.Parse(database.DateLayout, snap.DateUpdated)
	if err != nil {
		return errorResult(fmt.Sprintf("unparsable update date %q", snap.DateUpdated), opts)
	}

	if old == nil || !old.Scraped() {
		return Result{Class: ClassUnscraped, Cells: displayCells(snap, 0, opts)}
	}

	// Missing counts read as 0 for this comparison only; they are never
	// persisted as 0.
	var oldChapters int64
	if old.Chapters != nil {
		oldChapters = *old.Chapters
	}

	if snap.Chapters > oldChapters {
		delta := snap.Chapters - oldChapters
		return Result{Class: ClassUpdated, Delta: delta, Cells: displayCells(snap, delta, opts)}
	}

	if opts.HighlightStale && daysBetween(updatedAt, opts.Now) > opts.StaleThreshold {
		return Result{Class: ClassStale, Cells: displayCells(snap, 0, opts)}
	}

	return Result{Class: ClassUnchanged, Cells: displayCells(snap, 0, opts)}
}

// DisplayWork derives the display cells for a stored record without a fresh
// snapshot, for listing without fetching. Unscraped rows render the
// placeholder marker in the title cell.
func DisplayWork(work database.Work, opts Options) map[string]string {
	if !work.Scraped() {
		return map[string]string{"title": "FIC DATA NOT YET SCRAPED"}
	}

	snap := database.WorkSnapshot{
		Title:            *work.Title,
		ExpectedChapters: work.ExpectedChapters,
		Extra:            work.Extra,
	}
	if work.Chapters != nil {
		snap.Chapters = *work.Chapters
	}
	if work.DateUpdated != nil {
		snap.DateUpdated = *work.DateUpdated
	}
	if work.DatePublished != nil {
		snap.DatePublished = *work.DatePublished
	}
	if work.DateEdited != nil {
		snap.DateEdited = *work.DateEdited
	}

	return displayCells(snap, 0, opts)
}

func errorResult(desc string, opts Options) Result {
	return Result{
		Class: ClassError,
		Err:   desc,
		Cells: map[string]string{"title": truncate("ERROR: "+desc, opts.MaxRowLength)},
	}
}

// displayCells flattens a snapshot into per-column display strings keyed the
// way table templates reference them.
func displayCells(snap database.WorkSnapshot, delta int64, opts Options) map[string]string {
	cells := make(map[string]string, len(snap.Extra)+8)

	for column, value := range snap.Extra {
		cells[column] = value
	}

	cells["title"] = snap.Title
	cells["nchapters"] = strconv.FormatInt(snap.Chapters, 10)
	cells["expected_chapters"] = expectedDisplay(snap.ExpectedChapters)
	cells["date_updated"] = shortenDate(snap.DateUpdated)
	cells["date_published"] = shortenDate(snap.DatePublished)
	cells["date_edited"] = shortenDate(snap.DateEdited)

	chapters := fmt.Sprintf("%d/%s", snap.Chapters, expectedDisplay(snap.ExpectedChapters))
	if delta > 0 {
		chapters = fmt.Sprintf("%s (+%d)", chapters, delta)
	}
	cells["$chapters"] = chapters

	if titles := snap.Extra["chapter_titles"]; titles != "" {
		parts := strings.Split(titles, ", ")
		cells["$latest_chapter"] = parts[len(parts)-1]
	}

	for column, value := range cells {
		cells[column] = truncate(value, opts.MaxRowLength)
	}

	return cells
}

// expectedDisplay renders an unknown expected chapter count as "?", never as
// "0" or an empty string.
func expectedDisplay(expected *int64) string {
	if expected == nil {
		return "?"
	}
	return strconv.FormatInt(*expected, 10)
}

// shortenDate trims "YYYY-MM-DD HH:MM:SS" to "YYYY-MM-DD" for display.
func shortenDate(date string) string {
	if len(date) > 10 {
		return date[:10]
	}
	return date
}

// truncate limits a display string to max runes with a trailing ellipsis.
// Stored values are never truncated, only their display form.
func truncate(value string, max int) string {
	if max <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	return strings.TrimSpace(string(runes[:max])) + "..."
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
