package config

// TableColumn describes one column of the rendered fanfic table.
type TableColumn struct {
	Column string `yaml:"column"` // database field or synthetic "$" column
	Name   string `yaml:"name"`   // header text
	Styles string `yaml:"styles"` // lipgloss style spec, e.g. "magenta" or "#ffcc33 bold"
}

// Config holds the user's display preferences loaded from config.yaml.
type Config struct {
	MaxRowLength   int           `yaml:"max_row_length"`
	Warnings       bool          `yaml:"warnings"`
	StaleThreshold int           `yaml:"stale_threshold"`
	HighlightStale bool          `yaml:"highlight_stale"`
	StaleStyles    string        `yaml:"stale_styles"`
	UpdatedStyles  string        `yaml:"updated_styles"`
	TableTemplate  []TableColumn `yaml:"table_template"`
}
