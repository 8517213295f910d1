package main

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/rxtech-lab/argo-feed/internal/types"
)

// NewSpinner creates the loading indicator.
func NewSpinner() spinner.Model {
	s := spinner.New()
	s.Spinner = spinner.Dot

	return s
}

// NewDataTable creates the point table with room for visibleRows rows.
func NewDataTable(visibleRows int) table.Model {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Time", Width: 6},
			{Title: "Price", Width: 14},
			{Title: "MA", Width: 10},
			{Title: "Upper", Width: 10},
			{Title: "Lower", Width: 10},
			{Title: "RSI", Width: 6},
		}),
		table.WithFocused(true),
		table.WithHeight(visibleRows),
	)

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("230")).
		Background(lipgloss.Color("62"))

	t.SetStyles(styles)

	return t
}

// UpdateTableRows shows the series newest first.
func UpdateTableRows(t table.Model, points types.DerivedSeries) table.Model {
	rows := make([]table.Row, 0, len(points))

	for i := len(points) - 1; i >= 0; i-- {
		p := points[i]

		var prev float64
		if i > 0 {
			prev = points[i-1].Price
		}

		rows = append(rows, table.Row{
			p.Time,
			FormatPriceWithColor(p.Price, prev),
			FormatOptional(p.MA),
			FormatOptional(p.Upper),
			FormatOptional(p.Lower),
			FormatOptional(p.RSI),
		})
	}

	t.SetRows(rows)

	return t
}
