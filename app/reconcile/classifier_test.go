package reconcile

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/EthanLeitch/ao3scraper/app/database"
)

var testNow = time.Date(2023, 8, 1, 12, 0, 0, 0, time.UTC)

func testOpts() Options {
	return Options{
		Now:            testNow,
		StaleThreshold: 60,
		HighlightStale: true,
		MaxRowLength:   120,
	}
}

func strPtr(s string) *string { return &s }
func intPtr(v int64) *int64   { return &v }

func scrapedWork(chapters int64) *database.Work {
	return &database.Work{
		ID:          100,
		Title:       strPtr("Foo"),
		Chapters:    &chapters,
		DateUpdated: strPtr("2023-07-03 00:00:00"),
		Extra:       map[string]string{},
	}
}

func freshSnapshot(chapters int64) database.WorkSnapshot {
	return database.WorkSnapshot{
		Title:            "Foo",
		Chapters:         chapters,
		ExpectedChapters: intPtr(10),
		DateUpdated:      "2023-07-20 00:00:00",
		DatePublished:    "2023-01-01 00:00:00",
		DateEdited:       "2023-07-20 00:00:00",
		Extra:            map[string]string{"authors": "alice"},
	}
}

func TestClassifyIsPure(t *testing.T) {
	old := scrapedWork(3)
	snap := freshSnapshot(5)

	first := Classify(old, snap, nil, testOpts())
	second := Classify(old, snap, nil, testOpts())

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Expected identical results for identical inputs:\n%+v\n%+v", first, second)
	}
}

func TestClassifyFetchError(t *testing.T) {
	old := scrapedWork(3)

	result := Classify(old, database.WorkSnapshot{}, errors.New("404 ERROR WHEN FETCHING INFORMATION"), testOpts())

	if result.Class != ClassError {
		t.Errorf("Expected ClassError, got %s", result.Class)
	}
	if result.Err != "404 ERROR WHEN FETCHING INFORMATION" {
		t.Errorf("Unexpected error text: %q", result.Err)
	}
	if result.Cells["title"] != "ERROR: 404 ERROR WHEN FETCHING INFORMATION" {
		t.Errorf("Unexpected title cell: %q", result.Cells["title"])
	}
}

func TestClassifyUnscraped(t *testing.T) {
	snap := freshSnapshot(1)

	tests := []struct {
		name string
		old  *database.Work
	}{
		{"no prior record", nil},
		{"prior record never fetched", &database.Work{ID: 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Classify(tt.old, snap, nil, testOpts())
			if result.Class != ClassUnscraped {
				t.Errorf("Expected ClassUnscraped, got %s", result.Class)
			}
			if result.Cells["title"] != "Foo" {
				t.Errorf("Expected fetched title in cells, got %q", result.Cells["title"])
			}
		})
	}
}

func TestClassifyUpdated(t *testing.T) {
	tests := []struct {
		name        string
		oldChapters *int64
		newChapters int64
		wantDelta   int64
	}{
		{"three to five", intPtr(3), 5, 2},
		{"missing count reads as zero", nil, 5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			old := &database.Work{
				ID:          100,
				Title:       strPtr("Foo"),
				Chapters:    tt.oldChapters,
				DateUpdated: strPtr("2023-07-03 00:00:00"),
			}
			result := Classify(old, freshSnapshot(tt.newChapters), nil, testOpts())

			if result.Class != ClassUpdated {
				t.Fatalf("Expected ClassUpdated, got %s", result.Class)
			}
			if result.Delta != tt.wantDelta {
				t.Errorf("Expected delta %d, got %d", tt.wantDelta, result.Delta)
			}
			want := fmt.Sprintf("5/10 (+%d)", tt.wantDelta)
			if result.Cells["$chapters"] != want {
				t.Errorf("Expected chapters cell %q, got %q", want, result.Cells["$chapters"])
			}
		})
	}
}

func TestClassifyEqualCountsFallThrough(t *testing.T) {
	old := scrapedWork(5)
	snap := freshSnapshot(5)

	result := Classify(old, snap, nil, testOpts())
	if result.Class != ClassUnchanged {
		t.Errorf("Expected ClassUnchanged for equal counts and fresh date, got %s", result.Class)
	}
	if result.Delta != 0 {
		t.Errorf("Expected zero delta, got %d", result.Delta)
	}
}

func TestClassifyStale(t *testing.T) {
	old := scrapedWork(5)
	snap := freshSnapshot(5)
	snap.DateUpdated = "2023-05-03 00:00:00" // 90 days before testNow

	result := Classify(old, snap, nil, testOpts())
	if result.Class != ClassStale {
		t.Errorf("Expected ClassStale at 90 days with threshold 60, got %s", result.Class)
	}

	opts := testOpts()
	opts.HighlightStale = false
	result = Classify(old, snap, nil, opts)
	if result.Class != ClassUnchanged {
		t.Errorf("Expected ClassUnchanged with highlighting off, got %s", result.Class)
	}
}

func TestClassifyStaleBoundary(t *testing.T) {
	old := scrapedWork(5)
	snap := freshSnapshot(5)

	// Exactly at the threshold is not stale; the excess must be strict.
	snap.DateUpdated = testNow.AddDate(0, 0, -60).Format(database.DateLayout)
	if result := Classify(old, snap, nil, testOpts()); result.Class != ClassUnchanged {
		t.Errorf("Expected ClassUnchanged at exactly 60 days, got %s", result.Class)
	}

	snap.DateUpdated = testNow.AddDate(0, 0, -61).Format(database.DateLayout)
	if result := Classify(old, snap, nil, testOpts()); result.Class != ClassStale {
		t.Errorf("Expected ClassStale at 61 days, got %s", result.Class)
	}
}

func TestClassifyUpdatedBeatsStale(t *testing.T) {
	old := scrapedWork(3)
	snap := freshSnapshot(5)
	snap.DateUpdated = "2023-01-01 00:00:00"

	result := Classify(old, snap, nil, testOpts())
	if result.Class != ClassUpdated {
		t.Errorf("Expected ClassUpdated to take priority over stale, got %s", result.Class)
	}
}

func TestClassifyBadDate(t *testing.T) {
	old := scrapedWork(3)
	snap := freshSnapshot(5)
	snap.DateUpdated = "July 20th, 2023"

	result := Classify(old, snap, nil, testOpts())
	if result.Class != ClassError {
		t.Errorf("Expected ClassError for unparsable date, got %s", result.Class)
	}
}

func TestChaptersCellUnknownExpected(t *testing.T) {
	snap := freshSnapshot(5)
	snap.ExpectedChapters = nil

	result := Classify(nil, snap, nil, testOpts())
	if result.Cells["$chapters"] != "5/?" {
		t.Errorf(`Expected "5/?", got %q`, result.Cells["$chapters"])
	}
	if result.Cells["expected_chapters"] != "?" {
		t.Errorf(`Expected "?", got %q`, result.Cells["expected_chapters"])
	}
}

func TestDisplayCellsDateShortening(t *testing.T) {
	result := Classify(nil, freshSnapshot(5), nil, testOpts())
	if result.Cells["date_updated"] != "2023-07-20" {
		t.Errorf("Expected shortened date, got %q", result.Cells["date_updated"])
	}
}

func TestDisplayCellsTruncation(t *testing.T) {
	snap := freshSnapshot(1)
	snap.Extra["summary"] = "This summary is far too long to display in a single table cell without truncation."

	opts := testOpts()
	opts.MaxRowLength = 20

	result := Classify(nil, snap, nil, opts)
	summary := result.Cells["summary"]
	if len([]rune(summary)) > 23 {
		t.Errorf("Expected summary truncated to 20 runes plus ellipsis, got %q", summary)
	}
	if summary[len(summary)-3:] != "..." {
		t.Errorf("Expected trailing ellipsis, got %q", summary)
	}
	// The snapshot itself must stay untouched.
	if len(snap.Extra["summary"]) <= 23 {
		t.Error("Expected stored summary to remain untruncated")
	}
}

func TestDisplayCellsLatestChapter(t *testing.T) {
	snap := freshSnapshot(3)
	snap.Extra["chapter_titles"] = "1. Beginnings, 2. Middles, 3. Endings"

	result := Classify(nil, snap, nil, testOpts())
	if result.Cells["$latest_chapter"] != "3. Endings" {
		t.Errorf("Expected latest chapter title, got %q", result.Cells["$latest_chapter"])
	}
}

func TestDisplayWorkUnscraped(t *testing.T) {
	cells := DisplayWork(database.Work{ID: 100}, testOpts())
	if cells["title"] != "FIC DATA NOT YET SCRAPED" {
		t.Errorf("Expected placeholder title, got %q", cells["title"])
	}
}

func TestDisplayWorkRoundTrip(t *testing.T) {
	// A stored record with unknown expected chapters must render as "N/?",
	// never "N/0".
	work := database.Work{
		ID:          100,
		Title:       strPtr("Foo"),
		Chapters:    intPtr(5),
		DateUpdated: strPtr("2023-07-20 00:00:00"),
		Extra:       map[string]string{},
	}

	cells := DisplayWork(work, testOpts())
	if cells["$chapters"] != "5/?" {
		t.Errorf(`Expected "5/?", got %q`, cells["$chapters"])
	}
	if cells["date_updated"] != "2023-07-20" {
		t.Errorf("Expected shortened date, got %q", cells["date_updated"])
	}
}
