package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/minigames/internal/leaderboard"
	"github.com/vovakirdan/minigames/internal/registry"
)

const scoreboardRows = 100

// EntrySource lists the best entries recorded for a game.
type EntrySource interface {
	TopEntries(ctx context.Context, game string, n int) ([]leaderboard.Entry, error)
}

type scoreboardKeys struct {
	Scroll key.Binding
	Next   key.Binding
	Prev   key.Binding
	Back   key.Binding
	Quit   key.Binding
}

func (k scoreboardKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Scroll, k.Prev, k.Next, k.Back, k.Quit}
}

func (k scoreboardKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var defaultScoreboardKeys = scoreboardKeys{
	Scroll: key.NewBinding(key.WithKeys("up", "down", "k", "j"), key.WithHelp("↑/↓", "scroll")),
	Next:   key.NewBinding(key.WithKeys("tab", "right", "l"), key.WithHelp("tab/→", "next game")),
	Prev:   key.NewBinding(key.WithKeys("shift+tab", "left", "h"), key.WithHelp("←", "prev game")),
	Back:   key.NewBinding(key.WithKeys("esc", "b"), key.WithHelp("esc", "back")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

var (
	boardTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	boardFrameStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
	boardDimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// ScoreboardModel shows the leaderboard of one game at a time.
type ScoreboardModel struct {
	games  []registry.GameInfo
	game   int
	source EntrySource

	entries []leaderboard.Entry
	loadErr error

	table table.Model
	help  help.Model
	keys  scoreboardKeys

	width, height int
	quitting      bool
	goingBack     bool
}

// NewScoreboardModel creates a scoreboard reading from source, which may be
// nil when no leaderboard is available.
func NewScoreboardModel(source EntrySource, width, height int) ScoreboardModel {
	m := ScoreboardModel{
		games:  registry.List(),
		source: source,
		help:   help.New(),
		keys:   defaultScoreboardKeys,
		width:  width,
		height: height,
	}
	m.table = newScoreTable(height)
	m.reload()
	return m
}

func newScoreTable(height int) table.Model {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "#", Width: 4},
			{Title: "Player", Width: leaderboard.MaxNameLength},
			{Title: "Score", Width: 8},
			{Title: "When", Width: 12},
		}),
		table.WithFocused(true),
		table.WithHeight(max(height-8, 3)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).Bold(true)
	s.Selected = s.Selected.Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	t.SetStyles(s)
	return t
}

// reload fetches the entries of the selected game.
func (m *ScoreboardModel) reload() {
	m.entries, m.loadErr = nil, nil
	if m.source != nil && len(m.games) > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
		m.entries, m.loadErr = m.source.TopEntries(ctx, m.games[m.game].ID, scoreboardRows)
		cancel()
	}

	rows := make([]table.Row, 0, len(m.entries))
	for i, e := range m.entries {
		rows = append(rows, table.Row{
			strconv.Itoa(i + 1),
			e.PlayerName,
			strconv.Itoa(e.Score),
			time.UnixMilli(e.Timestamp).Format("Jan 02 15:04"),
		})
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

func (m *ScoreboardModel) cycle(step int) {
	if len(m.games) == 0 {
		return
	}
	m.game = (m.game + step + len(m.games)) % len(m.games)
	m.reload()
}

// Init initializes the scoreboard model.
func (m ScoreboardModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the scoreboard.
func (m ScoreboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Next):
			m.cycle(1)
			return m, nil
		case key.Matches(msg, m.keys.Prev):
			m.cycle(-1)
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.table.SetHeight(max(msg.Height-8, 3))
		m.help.Width = msg.Width
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the scoreboard.
func (m ScoreboardModel) View() string {
	if m.quitting || m.goingBack {
		return ""
	}

	title := "HIGH SCORES"
	if len(m.games) > 0 {
		title = fmt.Sprintf("HIGH SCORES  < %s >  %d/%d", m.games[m.game].Title, m.game+1, len(m.games))
	}

	var body string
	switch {
	case m.loadErr != nil:
		body = boardDimStyle.Render("Leaderboard unavailable: " + m.loadErr.Error())
	case len(m.entries) == 0:
		body = boardDimStyle.Italic(true).Render("No scores yet. Be the first!")
	default:
		body = m.table.View()
	}

	var b strings.Builder
	b.WriteString(boardTitleStyle.Render(centerText(title, m.width)))
	b.WriteString("\n\n")
	b.WriteString(boardFrameStyle.Render(body))
	b.WriteString("\n")
	b.WriteString(boardDimStyle.Render(m.help.View(m.keys)))
	return b.String()
}

// IsGoingBack returns true if user wants to go back to menu.
func (m ScoreboardModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting returns true if user wants to quit entirely.
func (m ScoreboardModel) IsQuitting() bool {
	return m.quitting
}

// RunScoreboard shows the scoreboard in its own program and reports whether
// the user asked to go back to the menu.
func RunScoreboard(source EntrySource, width, height int) (goBack bool, err error) {
	final, err := tea.NewProgram(NewScoreboardModel(source, width, height), tea.WithAltScreen()).Run()
	if err != nil {
		return false, err
	}
	m, ok := final.(ScoreboardModel)
	return ok && m.IsGoingBack(), nil
}
