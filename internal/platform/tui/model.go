package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/minigames/internal/core"
	"github.com/vovakirdan/minigames/internal/registry"
)

// outcomeMsg carries the result of recording a finished round.
type outcomeMsg struct {
	round   int
	outcome Outcome
}

// GameModel is the Bubble Tea model for running one arcade game.
// Used standalone by Run and embedded in SessionModel for menu flows.
type GameModel struct {
	game       registry.Game
	screen     *core.Screen
	config     core.RuntimeConfig
	recorder   *Recorder
	keyMapper  *KeyMapper
	inputFrame core.InputFrame
	gameState  core.GameState

	round    int
	recorded bool // Whether the current round's result has been recorded
	status   string

	standalone bool // Back quits the program instead of returning to a menu
	quitting   bool
	backToMenu bool
}

// NewGameModel creates a model for game. rec may be nil to play offline.
func NewGameModel(game registry.Game, rec *Recorder, cfg core.RuntimeConfig) GameModel {
	// Use time-based seed if not specified
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	return GameModel{
		game:       game,
		screen:     core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		config:     cfg,
		recorder:   rec,
		keyMapper:  NewKeyMapper(),
		inputFrame: core.NewInputFrame(),
	}
}

// Init starts the first round and the tick loop.
func (m GameModel) Init() tea.Cmd {
	m.recorder.LoadBest(m.game)
	m.game.Reset(m.config)
	return tickCmd(m.config.TickRate)
}

// Update handles messages and updates the model state.
func (m GameModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case TickMsg:
		return m.handleTick()

	case outcomeMsg:
		if msg.round == m.round {
			m.status = msg.outcome.Message()
		}
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m GameModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+s" {
		m.saveScreenshot()
		return m, nil
	}

	if m.keyMapper.MapKeyToFrame(msg, &m.inputFrame) {
		m.quitting = true
		return m, tea.Quit
	}

	// Back leaves only when nothing is in play
	if m.inputFrame.Has(core.ActionBack) && (m.gameState.GameOver || m.gameState.Paused) {
		if m.standalone {
			m.quitting = true
			return m, tea.Quit
		}
		m.backToMenu = true
	}

	return m, nil
}

// handleResize processes window resize events.
func (m GameModel) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	if msg.Width == m.config.ScreenW && msg.Height == m.config.ScreenH {
		return m, nil
	}

	m.config.ScreenW = msg.Width
	m.config.ScreenH = msg.Height
	m.screen.Resize(msg.Width, msg.Height)

	// Layout is fixed at Reset, so a live round restarts at the new size
	if !m.gameState.GameOver {
		return m.restart(), nil
	}
	return m, nil
}

// handleTick processes simulation ticks.
func (m GameModel) handleTick() (tea.Model, tea.Cmd) {
	if m.inputFrame.Has(core.ActionRestart) && m.gameState.GameOver {
		m.config.Seed = time.Now().UnixNano()
		return m.restart(), tickCmd(m.config.TickRate)
	}

	result := m.game.Step(m.inputFrame)
	m.gameState = result.State
	m.inputFrame.Clear()

	cmds := []tea.Cmd{tickCmd(m.config.TickRate)}
	if m.gameState.GameOver && !m.recorded {
		m.recorded = true
		cmds = append(cmds, m.recordRound())
	}
	return m, tea.Batch(cmds...)
}

// restart resets the game and starts a new round.
func (m GameModel) restart() GameModel {
	m.game.Reset(m.config)
	m.gameState = m.game.State()
	m.round++
	m.recorded = false
	m.status = ""
	m.inputFrame.Clear()
	return m
}

// recordRound saves the finished round off the update loop. Outcomes of an
// earlier round are dropped in Update.
func (m GameModel) recordRound() tea.Cmd {
	rec, game, state, round := m.recorder, m.game, m.gameState, m.round
	return func() tea.Msg {
		return outcomeMsg{round: round, outcome: rec.Finish(game, state)}
	}
}

// saveScreenshot saves the current screen to a file.
func (m *GameModel) saveScreenshot() {
	m.game.Render(m.screen)

	dir := filepath.Join(os.Getenv("HOME"), ".arcade", "screenshots")
	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(dir, 0o755)

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.txt", m.game.ID(), timestamp))

	//nolint:errcheck // Best-effort save, game continues regardless
	os.WriteFile(path, []byte(m.screen.String()), 0o600)
}

// View renders the current state to a string for display.
func (m GameModel) View() string {
	if m.quitting {
		return ""
	}

	m.game.Render(m.screen)
	if m.status != "" && m.screen.Height() > 0 {
		m.screen.DrawTextColored(1, m.screen.Height()-1, m.status, core.ColorBrightCyan)
	}
	return RenderScreen(m.screen)
}

// Status returns the last round's recording summary.
func (m GameModel) Status() string {
	return m.status
}

// IsQuitting returns true if user requested to quit entirely.
func (m GameModel) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m GameModel) BackToMenu() bool {
	return m.backToMenu
}

// Run plays game in its own Bubble Tea program until the user quits.
func Run(game registry.Game, rec *Recorder, cfg core.RuntimeConfig) error {
	model := NewGameModel(game, rec, cfg)
	model.standalone = true

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
