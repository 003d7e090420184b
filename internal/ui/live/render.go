package live

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
)

func stylize(text string, noColor bool, color lipgloss.Color) string {
	if noColor {
		return text
	}
	return lipgloss.NewStyle().Foreground(color).Render(text)
}

func renderHeader(state State, noColor bool) string {
	title := "scoring run"
	if state.RunID != "" {
		title = "scoring run " + state.RunID
	}
	if noColor {
		return title
	}
	return lipgloss.NewStyle().Bold(true).Render(title)
}

func renderProgress(state State, now time.Time, noColor bool) string {
	total := "?"
	if state.Total > 0 {
		total = fmtInt(state.Total)
	}
	line := fmt.Sprintf("%s/%s graded | %s failed | %s elapsed",
		fmtInt(state.Seen), total, fmtInt(state.Failures), formatElapsed(state.StartedAt, now))
	if state.Finished {
		line += " | done"
	}
	color := lipgloss.Color("245")
	if state.Failures > 0 {
		color = lipgloss.Color("214")
	}
	return stylize(line, noColor, color)
}

func renderFooter(state State, noColor bool) string {
	if state.Finished {
		return stylize("run complete, press q to close", noColor, lipgloss.Color("35"))
	}
	if state.Last == "" {
		return stylize("waiting for results...", noColor, lipgloss.Color("245"))
	}
	return stylize("last: "+state.Last, noColor, lipgloss.Color("245"))
}
