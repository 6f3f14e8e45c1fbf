package table

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// namedColors maps the color names accepted in config.yaml style specs to
// ANSI-256 codes. Covers the palette the default template uses plus common
// extras.
var namedColors = map[string]string{
	"black":       "0",
	"red":         "1",
	"green":       "2",
	"yellow":      "3",
	"blue":        "4",
	"magenta":     "5",
	"cyan":        "6",
	"white":       "7",
	"grey":        "8",
	"gray":        "8",
	"violet":      "13",
	"deepskyblue": "39",
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true)
	indexStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// styleFromSpec parses a config style spec like "magenta", "#ffcc33 bold" or
// "deepskyblue" into a lipgloss style. Unknown tokens are ignored rather
// than rejected so a cosmetic typo never breaks a report.
func styleFromSpec(spec string) lipgloss.Style {
	style := lipgloss.NewStyle()

	for _, token := range strings.Fields(spec) {
		switch {
		case token == "bold":
			style = style.Bold(true)
		case token == "italic":
			style = style.Italic(true)
		case token == "underline":
			style = style.Underline(true)
		case strings.HasPrefix(token, "#"):
			style = style.Foreground(lipgloss.Color(token))
		default:
			if code, ok := namedColors[strings.ToLower(token)]; ok {
				style = style.Foreground(lipgloss.Color(code))
			}
		}
	}

	return style
}
