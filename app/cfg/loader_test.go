package cfg

import "testing"

func TestGetVersion(t *testing.T) {
	if got := GetVersion(); got == "" {
		t.Error("Expected non-empty version")
	}
}

func TestCfgPaths(t *testing.T) {
	c := &Cfg{DataDir: "/data/ao3scraper", ConfigDir: "/conf/ao3scraper"}

	if got := c.DatabasePath(); got != "/data/ao3scraper/fics.db" {
		t.Errorf("Expected database path '/data/ao3scraper/fics.db', got '%s'", got)
	}
	if got := c.ReportCachePath(); got != "/data/ao3scraper/table.json" {
		t.Errorf("Expected report cache path '/data/ao3scraper/table.json', got '%s'", got)
	}
	if got := c.ConfigFilePath(); got != "/conf/ao3scraper/config.yaml" {
		t.Errorf("Expected config file path '/conf/ao3scraper/config.yaml', got '%s'", got)
	}
}
