package table

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/EthanLeitch/ao3scraper/app/config"
	"github.com/EthanLeitch/ao3scraper/app/database"
	"github.com/EthanLeitch/ao3scraper/app/reconcile"
)

// Renderer turns outcome sequences and stored records into a terminal table
// laid out by the user's table_template.
type Renderer struct {
	config *config.Config
}

func NewRenderer(cfg *config.Config) *Renderer {
	return &Renderer{config: cfg}
}

// RenderOutcomes renders a scrape report. Row styling follows the
// classification: updated and stale rows take the configured highlight
// styles, error rows are red, everything else uses the per-column styles.
func (r *Renderer) RenderOutcomes(title string, outcomes []reconcile.Outcome) string {
	rows := make([][]string, 0, len(outcomes))
	classes := make([]reconcile.Classification, 0, len(outcomes))

	for _, outcome := range outcomes {
		rows = append(rows, r.buildRow(outcome.Position, outcome.Cells))
		classes = append(classes, outcome.Class)
	}

	return r.render(title, rows, classes)
}

// RenderWorks renders the current store contents without fetching.
func (r *Renderer) RenderWorks(title string, works []database.Work, opts reconcile.Options) string {
	rows := make([][]string, 0, len(works))
	classes := make([]reconcile.Classification, 0, len(works))

	for position, work := range works {
		cells := reconcile.DisplayWork(work, opts)
		rows = append(rows, r.buildRow(position, cells))

		class := reconcile.ClassUnchanged
		if work.FetchError != nil {
			class = reconcile.ClassError
		}
		classes = append(classes, class)
	}

	return r.render(title, rows, classes)
}

func (r *Renderer) buildRow(position int, cells map[string]string) []string {
	row := make([]string, 0, len(r.config.TableTemplate)+1)
	row = append(row, strconv.Itoa(position+1)+".")
	for _, col := range r.config.TableTemplate {
		row = append(row, cells[col.Column])
	}
	return row
}

func (r *Renderer) render(title string, rows [][]string, classes []reconcile.Classification) string {
	headers := make([]string, 0, len(r.config.TableTemplate)+1)
	headers = append(headers, "Index")
	for _, col := range r.config.TableTemplate {
		headers = append(headers, col.Name)
	}

	columnStyles := make([]lipgloss.Style, 0, len(r.config.TableTemplate)+1)
	columnStyles = append(columnStyles, indexStyle)
	for _, col := range r.config.TableTemplate {
		columnStyles = append(columnStyles, styleFromSpec(col.Styles))
	}

	updatedStyle := styleFromSpec(r.config.UpdatedStyles)
	staleStyle := styleFromSpec(r.config.StaleStyles)

	cell := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return cell.Inherit(headerStyle)
			}
			switch classes[row] {
			case reconcile.ClassError:
				return cell.Inherit(errorStyle)
			case reconcile.ClassUpdated:
				return cell.Inherit(updatedStyle)
			case reconcile.ClassStale:
				return cell.Inherit(staleStyle)
			default:
				return cell.Inherit(columnStyles[col])
			}
		})

	return fmt.Sprintf("\n%s\n%s\n", titleStyle.Render(title), t.Render())
}
