package cfg

import (
	"cmp"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Commands
	Scrape   bool   `short:"s" long:"scrape" description:"Launches scraping mode"`
	List     bool   `short:"l" long:"list" description:"Lists all entries in the database"`
	Cache    bool   `short:"c" long:"cache" description:"Prints the last scraped table"`
	Add      string `short:"a" long:"add" value-name:"URL" description:"Adds a single url to the database"`
	AddURLs  bool   `long:"add-urls" description:"Opens a text file to add multiple urls to the database"`
	Delete   int    `short:"d" long:"delete" value-name:"N" description:"Deletes an entry from the database"`
	ShowInfo bool   `short:"v" long:"version" description:"Display version of ao3scraper and other info"`

	// Paths
	DataDir   string `long:"data-dir" env:"AO3SCRAPER_DATA_DIR" description:"Directory holding the database and cached reports"`
	ConfigDir string `long:"config-dir" env:"AO3SCRAPER_CONFIG_DIR" description:"Directory holding config.yaml"`

	// Scrape behavior
	WorkerCount  int    `long:"worker-count" env:"AO3SCRAPER_WORKERS" default:"5" description:"Number of concurrent fetch workers"`
	FetchTimeout int    `long:"fetch-timeout" env:"AO3SCRAPER_FETCH_TIMEOUT" default:"30" description:"Per-work fetch timeout in seconds"`
	PingTimeout  int    `long:"ping-timeout" env:"AO3SCRAPER_PING_TIMEOUT" default:"10" description:"Reachability check timeout in seconds"`
	UserAgent    string `long:"user-agent" env:"AO3SCRAPER_USER_AGENT" default:"ao3scraper/2.0" description:"User agent string for HTTP requests"`

	Debug bool `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		Scrape:       raw.Scrape,
		List:         raw.List,
		Cache:        raw.Cache,
		Add:          raw.Add,
		AddURLs:      raw.AddURLs,
		Delete:       raw.Delete,
		ShowInfo:     raw.ShowInfo,
		DataDir:      raw.DataDir,
		ConfigDir:    raw.ConfigDir,
		WorkerCount:  raw.WorkerCount,
		FetchTimeout: raw.FetchTimeout,
		PingTimeout:  raw.PingTimeout,
		UserAgent:    raw.UserAgent,
		Debug:        raw.Debug,
		Version:      GetVersion(),
	}

	if err := applyDefaultPaths(cfg); err != nil {
		return nil, err
	}

	globalCfg = cfg

	return cfg, nil
}

// WriteHelp prints the flag usage text, used when no command was given.
func WriteHelp(w io.Writer) {
	var raw rawCfg
	flags.NewParser(&raw, flags.Default).WriteHelp(w)
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyDefaultPaths(cfg *Cfg) error {
	if cfg.ConfigDir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return fmt.Errorf("failed to resolve config directory: %w", err)
		}
		cfg.ConfigDir = filepath.Join(base, "ao3scraper")
	}

	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to resolve home directory: %w", err)
		}
		cfg.DataDir = filepath.Join(home, ".local", "share", "ao3scraper")
	}

	return nil
}
