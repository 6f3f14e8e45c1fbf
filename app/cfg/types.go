package cfg

type Cfg struct {
	// Commands (click-style, mutually exclusive)
	Scrape   bool
	List     bool
	Cache    bool
	Add      string
	AddURLs  bool
	Delete   int
	ShowInfo bool

	// Paths
	DataDir   string
	ConfigDir string

	// Scrape behavior
	WorkerCount  int
	FetchTimeout int
	PingTimeout  int
	UserAgent    string

	// Application metadata
	Debug   bool
	Version string
}

// DatabasePath returns the location of the SQLite database file.
func (c *Cfg) DatabasePath() string {
	return c.DataDir + "/fics.db"
}

// ReportCachePath returns the location of the cached scrape report.
func (c *Cfg) ReportCachePath() string {
	return c.DataDir + "/table.json"
}

// ConfigFilePath returns the location of the user preferences file.
func (c *Cfg) ConfigFilePath() string {
	return c.ConfigDir + "/config.yaml"
}
