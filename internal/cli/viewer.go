package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/phaseboard/timeline/internal/calendar"
	"github.com/phaseboard/timeline/internal/cli/formatter"
	"github.com/phaseboard/timeline/internal/service"
)

type viewerKeyMap struct {
	PrevMonth key.Binding
	NextMonth key.Binding
	Today     key.Binding
	Up        key.Binding
	Down      key.Binding
	MoveUp    key.Binding
	MoveDown  key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultViewerKeyMap() viewerKeyMap {
	return viewerKeyMap{
		PrevMonth: key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev month")),
		NextMonth: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next month")),
		Today:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "this month")),
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		MoveUp:    key.NewBinding(key.WithKeys("K", "shift+up"), key.WithHelp("K", "move phase up")),
		MoveDown:  key.NewBinding(key.WithKeys("J", "shift+down"), key.WithHelp("J", "move phase down")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k viewerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PrevMonth, k.NextMonth, k.MoveUp, k.MoveDown, k.Help, k.Quit}
}

func (k viewerKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PrevMonth, k.NextMonth, k.Today},
		{k.Up, k.Down},
		{k.MoveUp, k.MoveDown},
		{k.Help, k.Quit},
	}
}

// chartLoadedMsg carries a freshly loaded chart. selectID, when set, moves
// the cursor onto that phase.
type chartLoadedMsg struct {
	chart    *service.Chart
	selectID string
	err      error
}

// viewerModel is the month chart browser behind `timeline view`.
type viewerModel struct {
	app    *App
	rootID *string
	grid   calendar.MonthGrid

	chart  *service.Chart
	cursor int
	status string
	err    error

	keys viewerKeyMap
	help help.Model
}

func newViewerModel(app *App, rootID *string) viewerModel {
	return viewerModel{
		app:    app,
		rootID: rootID,
		grid:   calendar.GridFor(app.now()),
		keys:   defaultViewerKeyMap(),
		help:   help.New(),
	}
}

func (m viewerModel) load(selectID string) tea.Cmd {
	grid := m.grid
	return func() tea.Msg {
		chart, err := m.app.Phases.Chart(context.Background(), m.rootID, grid.Year, int(grid.Month))
		return chartLoadedMsg{chart: chart, selectID: selectID, err: err}
	}
}

func (m viewerModel) move(fn func(service.PhaseService, context.Context, string) error) tea.Cmd {
	id := m.selectedID()
	if id == "" {
		return nil
	}
	return func() tea.Msg {
		if err := fn(m.app.Phases, context.Background(), id); err != nil {
			return chartLoadedMsg{err: err}
		}
		return m.load(id)()
	}
}

func (m viewerModel) selectedID() string {
	if m.chart == nil || m.cursor < 0 || m.cursor >= len(m.chart.Rows) {
		return ""
	}
	return m.chart.Rows[m.cursor].Phase.ID
}

func (m viewerModel) Init() tea.Cmd {
	return m.load("")
}

func (m viewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case chartLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.chart = msg.chart
		if msg.selectID != "" {
			for i, r := range m.chart.Rows {
				if r.Phase.ID == msg.selectID {
					m.cursor = i
				}
			}
		}
		m.cursor = min(m.cursor, max(len(m.chart.Rows)-1, 0))
		return m, nil

	case tea.KeyMsg:
		m.status = ""
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.PrevMonth):
			m.grid = m.grid.Prev()
			return m, m.load(m.selectedID())
		case key.Matches(msg, m.keys.NextMonth):
			m.grid = m.grid.Next()
			return m, m.load(m.selectedID())
		case key.Matches(msg, m.keys.Today):
			m.grid = calendar.GridFor(m.app.now())
			return m, m.load(m.selectedID())
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.chart != nil && m.cursor < len(m.chart.Rows)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.MoveUp):
			m.status = "moved up"
			return m, m.move(service.PhaseService.MoveUp)
		case key.Matches(msg, m.keys.MoveDown):
			m.status = "moved down"
			return m, m.move(service.PhaseService.MoveDown)
		}
	}
	return m, nil
}

func (m viewerModel) View() string {
	var b strings.Builder
	if m.chart == nil {
		b.WriteString(formatter.Dim("Loading...") + "\n")
	} else {
		b.WriteString(formatter.FormatChart(m.chart, formatter.ChartOptions{Cursor: m.cursor}))
	}
	if m.err != nil {
		b.WriteString(formatter.StyleRed.Render(fmt.Sprintf("Error: %v", m.err)) + "\n")
	} else if m.status != "" {
		b.WriteString(formatter.Dim(m.status) + "\n")
	}
	b.WriteString("\n" + m.help.View(m.keys))
	return b.String()
}
