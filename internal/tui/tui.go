package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/lox/roulette/internal/client"
	"github.com/lox/roulette/internal/game"
	"github.com/lox/roulette/internal/gameid"
	"github.com/lox/roulette/internal/lobby"
	"github.com/lox/roulette/internal/randutil"
	"github.com/lox/roulette/internal/render"
	"github.com/muesli/termenv"
)

// Options configures a game in the terminal.
type Options struct {
	Name string
	// Seed makes the first duel reproducible; later duels derive from it.
	Seed int64
	// Pacing shows events with the engine's suggested pauses.
	Pacing  bool
	NoColor bool
	Logger  *log.Logger

	// Server plays on a roulette server instead of locally.
	Server string
	// Remote is an already welcomed connection to use instead of Server.
	Remote *client.Client
}

// Model is the Bubble Tea model for a game at the table. Local games run
// the engine in process; remote ones go through a server connection.
type Model struct {
	opts     Options
	logger   *log.Logger
	session  *game.Session
	playerID string
	games    int

	// Networked play
	ctx    context.Context
	remote *client.Client
	view   game.View
	room   *lobby.Room
	err    error

	// UI components
	logViewport viewport.Model
	actionInput textinput.Model

	// State
	gameLog     []string
	pending     []game.Event
	revealing   bool
	quitting    bool
	focusedPane int // 0 = log, 1 = input

	// Dimensions
	width       int
	height      int
	initialized bool
}

// revealMsg shows the next queued event.
type revealMsg struct{}

// NewModel creates a local model and deals the first duel.
func NewModel(opts Options) (*Model, error) {
	m := newModel(opts)
	m.playerID = gameid.ParticipantID()
	if err := m.newDuel(); err != nil {
		return nil, err
	}
	return m, nil
}

func newModel(opts Options) *Model {
	if opts.Name == "" {
		opts.Name = "Player"
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	// Sized properly when the first WindowSizeMsg arrives
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = "shoot self, shoot dealer, use beer, help"
	ti.Focus()
	ti.CharLimit = 64
	ti.Width = 64
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	ti.Prompt = "> "

	return &Model{
		opts:        opts,
		logger:      opts.Logger.WithPrefix("tui"),
		ctx:         context.Background(),
		logViewport: vp,
		actionInput: ti,
		focusedPane: 1,
	}
}

// newDuel seats the player against a fresh dealer and queues the opening.
func (m *Model) newDuel() error {
	seed := randutil.Derive(m.opts.Seed, m.games)
	s, err := game.NewSession(randutil.New(seed), game.Duel,
		[]game.Seat{{ID: m.playerID, Name: m.opts.Name}},
		game.WithID(gameid.SessionID()),
		game.WithLogger(m.opts.Logger),
	)
	if err != nil {
		return fmt.Errorf("failed to create duel: %w", err)
	}
	m.games++
	m.session = s
	m.logger.Info("Duel started", "session", s.ID, "seed", seed)
	m.enqueue(s.Start())
	return nil
}

// Init initializes the TUI model
func (m *Model) Init() tea.Cmd {
	if m.remote != nil {
		return tea.Batch(textinput.Blink, m.listen())
	}
	return tea.Batch(textinput.Blink, m.startReveal())
}

// Update handles messages in the TUI
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case revealMsg:
		return m, m.reveal()

	case serverMsg:
		return m, tea.Batch(m.handleServer(msg.msg), m.listen())

	case disconnectedMsg:
		if m.ctx.Err() == nil {
			m.err = fmt.Errorf("lost connection to server: %w", msg.err)
		}
		m.quitting = true
		return m, tea.Sequence(tea.ClearScreen, tea.Quit)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Sequence(tea.ClearScreen, tea.Quit)
		case "tab":
			if m.focusedPane == 0 {
				m.focusedPane = 1
				m.actionInput.Focus()
			} else {
				m.focusedPane = 0
				m.actionInput.Blur()
			}
		case "enter":
			if m.focusedPane == 1 {
				input := m.actionInput.Value()
				m.actionInput.SetValue("")
				if cmd := m.handleInput(input); cmd != nil {
					cmds = append(cmds, cmd)
				}
				if m.quitting {
					return m, tea.Sequence(tea.ClearScreen, tea.Quit)
				}
			}
		case "up", "k":
			if m.focusedPane == 0 {
				m.logViewport.ScrollUp(1)
			}
		case "down", "j":
			if m.focusedPane == 0 {
				m.logViewport.ScrollDown(1)
			}
		case "home", "g":
			if m.focusedPane == 0 {
				m.logViewport.GotoTop()
			}
		case "end", "G":
			if m.focusedPane == 0 {
				m.logViewport.GotoBottom()
			}
		}
	}

	var cmd tea.Cmd
	if m.focusedPane == 1 {
		m.actionInput, cmd = m.actionInput.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleInput runs one typed command against the table.
func (m *Model) handleInput(input string) tea.Cmd {
	cmd, err := parseCommand(input)
	if err != nil {
		m.AddLogEntry(render.ErrorStyle.Render(err.Error()))
		return nil
	}

	switch cmd.kind {
	case cmdQuit:
		m.quitting = true
		return nil
	case cmdHelp:
		m.printHelp()
		return nil
	}
	if m.remote != nil {
		return m.handleRemote(cmd)
	}

	switch cmd.kind {
	case cmdStatus:
		m.AddLogEntry(render.Status(m.session.View(m.playerID)))
		return nil
	case cmdNew:
		if m.session.Active {
			m.AddLogEntry(render.ErrorStyle.Render("Finish this duel first."))
			return nil
		}
		if err := m.newDuel(); err != nil {
			m.AddLogEntry(render.ErrorStyle.Render(err.Error()))
			return nil
		}
		return m.startReveal()
	case cmdForfeit:
		events, err := m.session.Forfeit(m.playerID)
		if err != nil {
			m.AddLogEntry(render.ErrorStyle.Render(err.Error()))
			return nil
		}
		m.enqueue(events)
		m.enqueueNote("Type 'new' for another duel or 'quit' to leave.")
		return m.startReveal()
	case cmdCreate, cmdJoin, cmdStart, cmdLeave, cmdKick:
		m.AddLogEntry(render.ErrorStyle.Render("Rooms need a server: run 'roulette play --server URL'."))
		return nil
	}

	action, err := resolveAction(m.session.View(m.playerID), cmd.action)
	if err != nil {
		m.AddLogEntry(render.ErrorStyle.Render(err.Error()))
		return nil
	}
	events, err := m.session.Submit(m.playerID, action)
	if err != nil {
		m.logger.Debug("Action rejected", "action", action.Kind, "error", err)
		m.AddLogEntry(render.ErrorStyle.Render(err.Error()))
		return nil
	}
	m.enqueue(events)
	if !m.session.Active {
		m.enqueueNote("Type 'new' for another duel or 'quit' to leave.")
	}
	return m.startReveal()
}

func (m *Model) printHelp() {
	for _, line := range helpLines {
		m.AddLogEntry(render.InfoStyle.Render(line))
	}
	if m.remote != nil {
		for _, line := range roomHelpLines {
			m.AddLogEntry(render.InfoStyle.Render(line))
		}
	}
}

// currentView is what the sidebar and prompt describe.
func (m *Model) currentView() game.View {
	if m.remote != nil {
		return m.view
	}
	return m.session.View(m.playerID)
}

// enqueue queues the events this player may see.
func (m *Model) enqueue(events []game.Event) {
	for _, e := range events {
		if e.VisibleTo(m.playerID) {
			m.pending = append(m.pending, e)
		}
	}
}

func (m *Model) enqueueNote(text string) {
	m.pending = append(m.pending, game.Event{Text: text})
}

// startReveal begins draining the queue unless a drain is already running.
func (m *Model) startReveal() tea.Cmd {
	if m.revealing || len(m.pending) == 0 {
		return nil
	}
	m.revealing = true
	return m.nextReveal()
}

// nextReveal schedules the front of the queue after its pause.
func (m *Model) nextReveal() tea.Cmd {
	if len(m.pending) == 0 {
		m.revealing = false
		return nil
	}
	delay := m.pending[0].Delay
	if !m.opts.Pacing || delay <= 0 {
		return func() tea.Msg { return revealMsg{} }
	}
	return tea.Tick(delay, func(time.Time) tea.Msg { return revealMsg{} })
}

// reveal logs the front of the queue and schedules the rest.
func (m *Model) reveal() tea.Cmd {
	if len(m.pending) == 0 {
		m.revealing = false
		return nil
	}
	e := m.pending[0]
	m.pending = m.pending[1:]
	m.AddLogEntry(render.Event(e))
	return m.nextReveal()
}

// View renders the TUI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	actionContent := m.renderActionPane()
	actionHeight := lipgloss.Height(actionContent)
	actionPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#04B575")).
		Width(max(m.width-2, 1)).
		Height(max(actionHeight, 1)).
		Render(actionContent)

	sidebarContent := m.renderSidebar()
	sidebarWidth := max(lipgloss.Width(sidebarContent), 30)
	paneHeight := max(m.height-actionHeight-4, 1)

	sidebarPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(sidebarWidth).
		Height(paneHeight).
		Render(sidebarContent)

	logWidth := max(m.width-sidebarWidth-4, 1)
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	m.logViewport.Width = logWidth
	m.logViewport.Height = paneHeight

	// On first proper sizing, follow the newest entries
	if !m.initialized && logWidth > 1 && paneHeight > 1 {
		m.logViewport.GotoBottom()
		m.initialized = true
	}

	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(logWidth).
		Height(paneHeight)
	if m.focusedPane == 0 {
		logStyle = logStyle.BorderForeground(lipgloss.Color("#04B575"))
	}

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, logStyle.Render(m.logViewport.View()), sidebarPane)
	return lipgloss.JoinVertical(lipgloss.Top, topRow, actionPane)
}

// renderSidebar shows the table, or the room while waiting on a server.
func (m *Model) renderSidebar() string {
	if m.remote != nil && m.view.SessionID == "" {
		return roomStatus(m.room)
	}
	return render.Status(m.currentView())
}

// renderActionPane renders the prompt, the input field and the key help.
func (m *Model) renderActionPane() string {
	var content strings.Builder

	view := m.currentView()
	switch {
	case m.remote != nil && view.SessionID == "" && m.room != nil:
		content.WriteString(render.InfoStyle.Render(
			fmt.Sprintf("Room %s, %d seated. The creator types 'start'.", m.room.Code, len(m.room.Members))))
	case m.remote != nil && view.SessionID == "":
		content.WriteString(render.InfoStyle.Render("Type 'new' to face the dealer, 'create' or 'join <code>' for a melee."))
	case !view.Active && m.remote != nil:
		content.WriteString(render.InfoStyle.Render("Game over. Type 'new', 'create', 'join <code>' or 'quit'."))
	case !view.Active:
		content.WriteString(render.InfoStyle.Render("Duel over. Type 'new' or 'quit'."))
	case m.revealing:
		content.WriteString(render.InfoStyle.Render("..."))
	case view.Turn != "" && view.Turn != m.playerID:
		content.WriteString(render.InfoStyle.Render("Waiting for " + nameFor(view, view.Turn) + "."))
	case view.Phase == game.AwaitingTarget.String():
		content.WriteString(render.TurnStyle.Render("The knife is out. Shoot someone."))
	default:
		content.WriteString(render.TurnStyle.Render("Your move."))
	}
	content.WriteString("\n")
	content.WriteString(m.actionInput.View())
	content.WriteString("\n")

	help := "Tab to scroll log • Enter to submit • Ctrl+C to quit"
	if m.focusedPane == 0 {
		help = "Log focused: ↑↓ scroll, Home/End, Tab to input"
	}
	content.WriteString(render.InfoStyle.Render(help))
	return content.String()
}

func nameFor(view game.View, id string) string {
	for _, p := range view.Participants {
		if p.ID == id {
			return p.Name
		}
	}
	return id
}

// AddLogEntry adds an entry to the game log
func (m *Model) AddLogEntry(entry string) {
	m.gameLog = append(m.gameLog, entry)
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))

	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// Log returns a copy of the log entries.
func (m *Model) Log() []string {
	out := make([]string, len(m.gameLog))
	copy(out, m.gameLog)
	return out
}

// Run plays in the terminal until the player quits or ctx ends.
func Run(ctx context.Context, opts Options) error {
	if opts.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Server != "" && opts.Remote == nil {
		c, err := connectRemote(ctx, opts, opts.Server)
		if err != nil {
			return err
		}
		defer func() { _ = c.Disconnect() }()
		opts.Remote = c
	}

	var (
		m   *Model
		err error
	)
	if opts.Remote != nil {
		m, err = NewRemoteModel(ctx, opts)
	} else {
		m, err = NewModel(opts)
	}
	if err != nil {
		return err
	}
	m.printHelp()

	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return m.err
}
