package render

import (
	"fmt"
	"strconv"
	"strings"

	"MiniBase/internal/domain"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

const maxColumnWidth = 40

var titleStyle = lipgloss.NewStyle().Bold(true)

// Records renders the records of a table as a text grid under a title line.
func Records(name string, fields []domain.Field, records []domain.Record) string {
	titles := make([]string, len(fields))
	for i, f := range fields {
		titles[i] = f.Name
	}
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = r.Strings()
	}
	title := titleStyle.Render(fmt.Sprintf("%s (%d rows)", name, len(records)))
	return title + "\n" + grid(titles, rows)
}

// Fields renders a table schema.
func Fields(name string, fields []domain.Field) string {
	rows := make([][]string, len(fields))
	for i, f := range fields {
		rows[i] = []string{f.Name, f.Type.String(), strconv.Itoa(int(f.Length))}
	}
	title := titleStyle.Render(name)
	return title + "\n" + grid([]string{"field", "type", "length"}, rows)
}

func grid(titles []string, rows [][]string) string {
	columns := make([]table.Column, len(titles))
	for i, title := range titles {
		columns[i] = table.Column{Title: title, Width: columnWidth(title, i, rows)}
	}
	tableRows := make([]table.Row, len(rows))
	for i, row := range rows {
		tableRows[i] = table.Row(row)
	}

	styles := table.DefaultStyles()
	styles.Selected = lipgloss.NewStyle()
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(tableRows),
		table.WithHeight(len(rows)+2),
		table.WithFocused(false),
		table.WithStyles(styles),
	)
	return strings.TrimRight(t.View(), " \n") + "\n"
}

func columnWidth(title string, index int, rows [][]string) int {
	width := len(title)
	for _, row := range rows {
		if index < len(row) {
			width = max(width, len(row[index]))
		}
	}
	return min(width, maxColumnWidth)
}
