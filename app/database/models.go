package database

import (
	"strconv"
	"time"
)

// DateLayout is the one fixed timestamp format used across the database and
// the remote snapshots. Parse failures are surfaced, never skipped.
const DateLayout = "2006-01-02 15:04:05"

// Work represents one tracked fanfic row in the database.
type Work struct {
	ID               int64   // AO3 work ID, immutable
	Title            *string // nil until the first successful fetch
	Chapters         *int64  // published chapter count, >= 0 when set
	ExpectedChapters *int64  // nil when the work is open-ended ("?")
	DateUpdated      *string // DateLayout text, parsed at the classification boundary
	DatePublished    *string
	DateEdited       *string
	FetchError       *string // descriptor of the most recent failed fetch
	Extra            map[string]string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// URL derives the canonical AO3 link for the work. Display-only, never
// stored as authoritative.
func (w *Work) URL() string {
	return WorkURL(w.ID)
}

// Scraped reports whether the work has ever been fetched successfully.
func (w *Work) Scraped() bool {
	return w.Title != nil
}

// WorkURL builds the canonical AO3 link for a work ID.
func WorkURL(id int64) string {
	return "https://archiveofourown.org/works/" + strconv.FormatInt(id, 10)
}
