package live

import (
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const defaultTickInterval = 200 * time.Millisecond

// Options configures the live view.
type Options struct {
	// NoColor disables all styling.
	NoColor bool
	// TickInterval sets the redraw cadence for the elapsed clock.
	TickInterval time.Duration
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Model is the bubbletea model for a scoring run in progress.
type Model struct {
	state        State
	table        table.Model
	events       <-chan Event
	tickInterval time.Duration
	now          func() time.Time
	noColor      bool
}

// EventMsg wraps a controller event for the update loop.
type EventMsg Event

type tickMsg time.Time

// NewModel builds a model that renders events from the channel.
func NewModel(events <-chan Event, opts Options) Model {
	interval := opts.TickInterval
	if interval <= 0 {
		interval = defaultTickInterval
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return Model{
		state:        NewState(now()),
		table:        newTable(opts.NoColor),
		events:       events,
		tickInterval: interval,
		now:          now,
		noColor:      opts.NoColor,
	}
}

// Init starts event consumption and the redraw tick.
func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForEvent(m.events), m.tick())
}

// Update applies one message and schedules the follow-up command.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.table.SetColumns(columnsForWidth(msg.Width))
		m.table.SetWidth(msg.Width)
		m.table.SetHeight(max(msg.Height-5, 3))
	case EventMsg:
		m.state = Reduce(m.state, Event(msg))
		m.table.SetRows(rowsForState(m.state))
		return m, waitForEvent(m.events)
	case tickMsg:
		return m, m.tick()
	}
	return m, nil
}

// View renders the full screen.
func (m Model) View() string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		renderHeader(m.state, m.noColor),
		renderProgress(m.state, m.now(), m.noColor),
		m.table.View(),
		renderFooter(m.state, m.noColor),
	)
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitForEvent blocks on the next controller event. A closed channel shuts
// the program down.
func waitForEvent(events <-chan Event) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return tea.Quit()
		}
		return EventMsg(event)
	}
}
