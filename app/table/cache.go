package table

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/EthanLeitch/ao3scraper/app/reconcile"
)

// CachedReport is the persisted form of the last scrape report, re-rendered
// by the cache command without touching the network or the database.
type CachedReport struct {
	Title       string              `json:"title"`
	GeneratedAt time.Time           `json:"generated_at"`
	Outcomes    []reconcile.Outcome `json:"outcomes"`
}

// ReportCache stores the most recent scrape report as JSON in the data dir.
type ReportCache struct {
	path string
}

func NewReportCache(path string) *ReportCache {
	return &ReportCache{path: path}
}

func (c *ReportCache) Save(report CachedReport) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cached report: %w", err)
	}

	if err := os.WriteFile(c.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write cached report: %w", err)
	}

	return nil
}

func (c *ReportCache) Load() (*CachedReport, error) {
	data, err := os.ReadFile(c.path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("no cached table found, run a scrape first")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached report: %w", err)
	}

	var report CachedReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to decode cached report: %w", err)
	}

	return &report, nil
}
