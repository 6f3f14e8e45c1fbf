package reconcile

import (
	"context"
	"time"

	"github.com/EthanLeitch/ao3scraper/app/database"
)

// Classification tags the result of comparing a fetched snapshot against the
// last-known local record. Exactly one applies per work, in this priority
// order.
type Classification string

const (
	ClassError     Classification = "error"
	ClassUnscraped Classification = "unscraped"
	ClassUpdated   Classification = "updated"
	ClassStale     Classification = "stale"
	ClassUnchanged Classification = "unchanged"
)

// Fetcher is the remote capability the engine consumes. Implemented by the
// AO3 client; stubbed in tests.
type Fetcher interface {
	Ping(ctx context.Context) error
	Fetch(ctx context.Context, id int64) (database.WorkSnapshot, error)
}

// Options parameterize classification. Now is passed explicitly so the
// classifier stays a pure function.
type Options struct {
	Now            time.Time
	StaleThreshold int // days
	HighlightStale bool
	MaxRowLength   int
}

// Result is the classifier's verdict plus the fully derived display fields.
type Result struct {
	Class Classification
	Delta int64 // new chapters since last scrape, set for ClassUpdated
	Err   string
	Cells map[string]string
}

// Outcome is one work's reconciled result at its original position. The
// report sink renders it without re-deriving any comparison logic.
type Outcome struct {
	Position  int               `json:"position"`
	ID        int64             `json:"id"`
	URL       string            `json:"url"`
	Class     Classification    `json:"class"`
	Delta     int64             `json:"delta"`
	Persisted bool              `json:"persisted"`
	Err       string            `json:"error,omitempty"`
	Cells     map[string]string `json:"cells"`
}
