package live

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"depeval/internal/aggregate"
)

const tableBaseWidth = 58

func newTable(noColor bool) table.Model {
	model := table.New(
		table.WithColumns(columnsForWidth(80)),
		table.WithHeight(8),
	)
	model.SetStyles(tableStyles(noColor))
	model.Blur()
	return model
}

// columnsForWidth sizes the group table. Extra width goes to the task and
// language columns, the numeric columns stay fixed.
func columnsForWidth(width int) []table.Column {
	task := 9
	language := 10
	if extra := width - tableBaseWidth; extra > 0 {
		task += extra / 3
		language += extra / 3
	}
	return []table.Column{
		{Title: "TASK", Width: task},
		{Title: "LANG", Width: language},
		{Title: "MODE", Width: 7},
		{Title: "N", Width: 5},
		{Title: "FAIL", Width: 5},
		{Title: "SCORE", Width: 8},
	}
}

func tableStyles(noColor bool) table.Styles {
	styles := table.DefaultStyles()
	styles.Selected = lipgloss.NewStyle()
	if noColor {
		styles.Header = lipgloss.NewStyle().Padding(0, 1)
		styles.Cell = lipgloss.NewStyle().Padding(0, 1)
		return styles
	}
	styles.Header = styles.Header.
		Bold(true).
		Foreground(lipgloss.Color("252")).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(lipgloss.Color("240"))
	return styles
}

// rowsForState renders the running tallies, one row per observed group and
// one rollup row per mode.
func rowsForState(state State) []table.Row {
	report := state.report()
	rows := make([]table.Row, 0, len(report.Groups)+len(report.Overall))
	for _, row := range report.Groups {
		rows = append(rows, groupRow(row))
	}
	for _, row := range report.Overall {
		rows = append(rows, groupRow(row))
	}
	return rows
}

// groupRow shows one score per mode: mean F1 for source rows, accuracy for
// trace rows. Rollup rows carry empty task and language and render as "all".
func groupRow(row aggregate.Row) table.Row {
	task := string(row.Task)
	if task == "" {
		task = "all"
	}
	language := row.Language
	if language == "" {
		language = "all"
	}
	score := "-"
	if row.Source != nil {
		score = fmtPercent(row.Source.F1)
	}
	if row.Trace != nil {
		score = fmtPercent(row.Trace.Accuracy)
	}
	return table.Row{
		task,
		language,
		string(row.Mode),
		fmtInt(row.Instances),
		fmtInt(row.Failures),
		score,
	}
}
