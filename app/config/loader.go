package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
)

// configTemplate is written out verbatim when no config file exists yet.
const configTemplate = `# Formatting of table
max_row_length: 120
warnings: false
stale_threshold: 60
highlight_stale: true
stale_styles: deepskyblue
updated_styles: '#ffcc33 bold'

# Column attributes
table_template:
- column: title
  name: Title
  styles: magenta
- column: $chapters
  name: Chapters
  styles: green
- column: date_updated
  name: Last updated
  styles: cyan
- column: status
  name: Status
  styles: violet
`

// databaseColumns lists every field a table_template entry may reference.
// Matches the flat column set of the fics table.
var databaseColumns = []string{
	"date_edited", "date_published", "date_updated", "bookmarks", "categories",
	"nchapters", "characters", "complete", "comments", "expected_chapters",
	"fandoms", "hits", "kudos", "language", "rating", "relationships",
	"restricted", "status", "summary", "tags", "title", "warnings", "words",
	"collections", "authors", "series", "chapter_titles",
}

// customColumns are derived at render time, not stored.
var customColumns = []string{"$chapters", "$latest_chapter"}

// Loader handles loading and validation of the user preferences file.
type Loader struct {
	path string
}

func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Run reads config.yaml, creating it from the template first if it does not
// exist yet.
func (l *Loader) Run() (*Config, error) {
	if _, err := os.Stat(l.path); os.IsNotExist(err) {
		if err := l.writeTemplate(); err != nil {
			return nil, err
		}
		slog.Info("Config file created", "path", l.path)
	}

	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", l.path, err)
	}

	if err := l.validate(&config); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", l.path, err)
	}

	return &config, nil
}

func (l *Loader) writeTemplate() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(l.path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("failed to write config template: %w", err)
	}
	return nil
}

func (l *Loader) validate(config *Config) error {
	if config.MaxRowLength <= 0 {
		return fmt.Errorf("max_row_length must be positive, got %d", config.MaxRowLength)
	}
	if config.StaleThreshold < 0 {
		return fmt.Errorf("stale_threshold must not be negative, got %d", config.StaleThreshold)
	}
	if len(config.TableTemplate) == 0 {
		return fmt.Errorf("table_template must list at least one column")
	}

	for _, col := range config.TableTemplate {
		if !slices.Contains(databaseColumns, col.Column) && !slices.Contains(customColumns, col.Column) {
			return fmt.Errorf("%s is not a valid column", col.Column)
		}
	}

	return nil
}
