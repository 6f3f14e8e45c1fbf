package ao3

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/EthanLeitch/ao3scraper/app/database"
)

const defaultBaseURL = "https://archiveofourown.org"

// pageDateLayout is the format AO3 renders work dates in.
const pageDateLayout = "2006-01-02"

// Client fetches work metadata from AO3 by scraping work pages.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

func NewClient(httpClient *http.Client, userAgent string) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    defaultBaseURL,
		userAgent:  userAgent,
	}
}

// Ping checks that AO3 is reachable at all. Any HTTP response counts as
// reachable; only transport-level failures do not.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrServiceUnreachable, err)
	}
	resp.Body.Close()

	return nil
}

// Fetch retrieves the current metadata snapshot for one work.
func (c *Client) Fetch(ctx context.Context, id int64) (database.WorkSnapshot, error) {
	pageURL := fmt.Sprintf("%s/works/%d?view_adult=true", c.baseURL, id)

	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return database.WorkSnapshot{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return database.WorkSnapshot{}, &FetchError{Kind: FetchErrorTimeout, WorkID: id, Detail: err.Error()}
		}
		return database.WorkSnapshot{}, &FetchError{Kind: FetchErrorNetwork, WorkID: id, Detail: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return database.WorkSnapshot{}, &FetchError{Kind: FetchErrorStatus, WorkID: id, StatusCode: resp.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return database.WorkSnapshot{}, &FetchError{Kind: FetchErrorParse, WorkID: id, Detail: err.Error()}
	}

	snap, err := parseSnapshot(doc)
	if err != nil {
		return database.WorkSnapshot{}, &FetchError{Kind: FetchErrorParse, WorkID: id, Detail: err.Error()}
	}

	slog.Debug("Work fetched", "id", id, "title", snap.Title, "chapters", snap.Chapters)

	return snap, nil
}

// parseSnapshot extracts the metadata block of an AO3 work page. List-typed
// fields are flattened to comma-joined strings here so the store schema
// stays flat.
func parseSnapshot(doc *goquery.Document) (database.WorkSnapshot, error) {
	title := strings.TrimSpace(doc.Find("h2.title.heading").First().Text())
	if title == "" {
		return database.WorkSnapshot{}, fmt.Errorf("no title found, the work might be restricted")
	}

	chaptersText := strings.TrimSpace(doc.Find("dd.chapters").First().Text())
	if chaptersText == "" {
		return database.WorkSnapshot{}, fmt.Errorf("no chapter count found")
	}

	chapters, expected, err := parseChapters(chaptersText)
	if err != nil {
		return database.WorkSnapshot{}, err
	}

	published, err := normalizeDate(doc.Find("dd.published").First().Text())
	if err != nil {
		return database.WorkSnapshot{}, err
	}

	// Single-chapter works carry no status date; the published date stands
	// in for it, matching what AO3 itself displays.
	statusDate := strings.TrimSpace(doc.Find("dd.status").First().Text())
	updated := published
	if statusDate != "" {
		updated, err = normalizeDate(statusDate)
		if err != nil {
			return database.WorkSnapshot{}, err
		}
	}

	complete := "false"
	statusLabel := strings.TrimSpace(doc.Find("dt.status").First().Text())
	if strings.HasPrefix(statusLabel, "Completed") {
		complete = "true"
	}

	extra := map[string]string{
		"authors":       joinSelection(doc.Find("h3.byline a[rel='author']")),
		"fandoms":       joinSelection(doc.Find("dd.fandom a.tag")),
		"relationships": joinSelection(doc.Find("dd.relationship a.tag")),
		"characters":    joinSelection(doc.Find("dd.character a.tag")),
		"tags":          joinSelection(doc.Find("dd.freeform a.tag")),
		"warnings":      joinSelection(doc.Find("dd.warning a.tag")),
		"categories":    joinSelection(doc.Find("dd.category a.tag")),
		"series":        joinSelection(doc.Find("dd.series span.position a")),
		"collections":   joinSelection(doc.Find("dd.collections a")),
		"rating":        strings.TrimSpace(doc.Find("dd.rating a.tag").First().Text()),
		"language":      strings.TrimSpace(doc.Find("dd.language").First().Text()),
		"words":         strings.TrimSpace(doc.Find("dd.words").First().Text()),
		"kudos":         strings.TrimSpace(doc.Find("dd.kudos").First().Text()),
		"hits":          strings.TrimSpace(doc.Find("dd.hits").First().Text()),
		"bookmarks":     strings.TrimSpace(doc.Find("dd.bookmarks").First().Text()),
		"comments":      strings.TrimSpace(doc.Find("dd.comments").First().Text()),
		"summary":       strings.TrimSpace(doc.Find("div.summary blockquote").First().Text()),
		"status":        statusLabel,
		"complete":      complete,
		"restricted":    "false",
	}

	if titles := chapterTitles(doc); titles != "" {
		extra["chapter_titles"] = titles
	}

	return database.WorkSnapshot{
		Title:            title,
		Chapters:         chapters,
		ExpectedChapters: expected,
		DateUpdated:      updated,
		DatePublished:    published,
		DateEdited:       updated,
		Extra:            extra,
	}, nil
}

// parseChapters splits AO3's "5/10" or "5/?" chapter display. "?" maps to an
// unknown expected count, never to zero.
func parseChapters(text string) (int64, *int64, error) {
	current, expected, found := strings.Cut(text, "/")
	if !found {
		return 0, nil, fmt.Errorf("unexpected chapters format %q", text)
	}

	chapters, err := strconv.ParseInt(strings.TrimSpace(current), 10, 64)
	if err != nil || chapters < 0 {
		return 0, nil, fmt.Errorf("unexpected chapter count %q", current)
	}

	expected = strings.TrimSpace(expected)
	if expected == "?" {
		return chapters, nil, nil
	}

	expectedCount, err := strconv.ParseInt(expected, 10, 64)
	if err != nil || expectedCount < 0 {
		return 0, nil, fmt.Errorf("unexpected expected chapter count %q", expected)
	}

	return chapters, &expectedCount, nil
}

func normalizeDate(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("no date found")
	}

	parsed, err := time.Parse(pageDateLayout, text)
	if err != nil {
		return "", fmt.Errorf("date %q does not match layout %s", text, pageDateLayout)
	}

	return parsed.Format(database.DateLayout), nil
}

func joinSelection(sel *goquery.Selection) string {
	var parts []string
	sel.Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, ", ")
}

// chapterTitles reads the chapter navigation dropdown when the page carries
// one. Single-chapter works have none.
func chapterTitles(doc *goquery.Document) string {
	var titles []string
	doc.Find("ul#chapter_index option, #selected_id option").Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			titles = append(titles, text)
		}
	})
	return strings.Join(titles, ", ")
}
