package ui

import (
	"log"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"moviegrip/internal/async"
	"moviegrip/internal/config"
	"moviegrip/internal/domain"
	"moviegrip/internal/eventbus"
	"moviegrip/internal/ui/views"
)

// QueryService receives the query edits; *search.Service satisfies it
type QueryService interface {
	SetQuery(q string)
	Flush()
}

// Option configures a Model
type Option func(*Model)

// WithReadyMarker makes the footer carry views.ReadyMarker for the e2e harness
func WithReadyMarker(on bool) Option {
	return func(m *Model) { m.showReady = on }
}

// Model represents the UI state
type Model struct {
	svc    QueryService
	config *config.Config

	state     async.State[[]domain.Movie]
	highlight int
	rowOffset int

	width         int
	height        int
	input         textinput.Model
	spinner       spinner.Model
	help          help.Model
	keys          keyMap
	showHelp      bool
	statusMessage string
	showReady     bool
	inPagerMode   bool // tracks if we're currently in pager mode

	renderer *views.Renderer
	helpText *HelpRenderer
	pager    *PagerOps

	// Program reference for terminal management
	program *tea.Program
}

// NewModel creates a new UI model
func NewModel(svc QueryService, cfg *config.Config, opts ...Option) *Model {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	ti := textinput.New()
	ti.Placeholder = "Search for a movie title"
	ti.Prompt = "> "
	ti.CharLimit = 120
	ti.Width = 50
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := &Model{
		svc:      svc,
		config:   cfg,
		state:    async.State[[]domain.Movie]{Status: async.StatusIdle},
		input:    ti,
		spinner:  sp,
		help:     help.New(),
		keys:     newKeyMap(),
		renderer: views.NewRenderer(cfg.UISettings.ShowType, cfg.UISettings.PlaceholderPoster),
		helpText: NewHelpRenderer(),
		pager:    NewPagerOps(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SetProgram sets the program reference for terminal management
func (m *Model) SetProgram(p *tea.Program) {
	m.program = p
	m.pager.SetProgram(p)
}

// State returns the last lifecycle state the model received
func (m *Model) State() async.State[[]domain.Movie] {
	return m.state
}

// Init returns an initial command
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		if w := msg.Width - 12; w > 10 {
			m.input.Width = w
		}
		m.ensureHighlightVisible()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case StateMsg:
		return m.handleState(msg.State)

	case spinner.TickMsg:
		if m.state.Status != async.StatusPending || m.inPagerMode {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case EventMsg:
		if e, ok := msg.Event.(eventbus.ErrorEvent); ok {
			m.statusMessage = e.Message
			return m, clearStatusAfter(5 * time.Second)
		}
		return m, nil

	case resultsPagerMsg:
		if msg.err != nil {
			log.Printf("Results pager failed: %v", msg.err)
			m.statusMessage = "Pager unavailable"
			return m, clearStatusAfter(3 * time.Second)
		}
		return m, nil

	case pauseRenderingMsg:
		m.inPagerMode = true
		return m, nil

	case resumeRenderingMsg:
		m.inPagerMode = false
		if m.state.Status == async.StatusPending {
			return m, m.spinner.Tick
		}
		return m, nil

	case clearStatusMsg:
		m.statusMessage = ""
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Back):
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}
		return m, tea.Quit

	case m.showHelp:
		// Keys other than ? and esc are ignored while the popup is open
		if key.Matches(msg, m.keys.Help) {
			m.showHelp = false
		}
		return m, nil

	case key.Matches(msg, m.keys.Help) && m.input.Value() == "":
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.moveHighlight(-1)
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.moveHighlight(1)
		return m, nil

	case key.Matches(msg, m.keys.Search):
		if m.svc == nil {
			return m, nil
		}
		// Flush issues the search synchronously and its state change is sent
		// back to the program, so it must not run on the event loop
		return m, func() tea.Msg {
			m.svc.Flush()
			return nil
		}

	case key.Matches(msg, m.keys.Pager):
		return m, m.openPager()
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if after := m.input.Value(); after != before && m.svc != nil {
		m.svc.SetQuery(after)
	}
	return m, cmd
}

func (m *Model) handleState(s async.State[[]domain.Movie]) (tea.Model, tea.Cmd) {
	prev := m.state.Status
	m.state = s

	switch s.Status {
	case async.StatusPending:
		if prev != async.StatusPending {
			return m, m.spinner.Tick
		}
	case async.StatusResolved:
		m.highlight = 0
		m.rowOffset = 0
	}
	return m, nil
}

// openPager returns a command that shows the result list using ov pager
func (m *Model) openPager() tea.Cmd {
	if m.state.Status != async.StatusResolved || len(m.state.Data) == 0 {
		m.statusMessage = "No results to page"
		return clearStatusAfter(3 * time.Second)
	}
	if m.program == nil {
		return func() tea.Msg { return resultsPagerMsg{err: errNoProgram} }
	}

	content := RenderResultsPlain(m.state.Data, m.config.UISettings.PlaceholderPoster, m.config.UISettings.ShowType)
	return func() tea.Msg {
		// Send pause message to stop rendering
		m.program.Send(pauseRenderingMsg{})

		err := m.pager.ShowInPager(content)

		// Send resume message to restart rendering
		m.program.Send(resumeRenderingMsg{})

		return resultsPagerMsg{err: err}
	}
}

// moveHighlight moves by delta cards, stopping at either end of the list
func (m *Model) moveHighlight(delta int) {
	n := len(m.state.Data)
	if m.state.Status != async.StatusResolved || n == 0 {
		return
	}
	m.highlight += delta
	if m.highlight < 0 {
		m.highlight = 0
	}
	if m.highlight >= n {
		m.highlight = n - 1
	}
	m.ensureHighlightVisible()
}

func (m *Model) ensureHighlightVisible() {
	perRow, rows := views.Layout(m.width, m.height)
	row := m.highlight / perRow
	if row < m.rowOffset {
		m.rowOffset = row
	}
	if row >= m.rowOffset+rows {
		m.rowOffset = row - rows + 1
	}
}

// View renders the UI
func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	return m.renderer.Render(views.ViewState{
		Width:         m.width,
		Height:        m.height,
		Input:         m.input.View(),
		Status:        m.state.Status,
		Movies:        m.state.Data,
		Error:         m.state.Err,
		Spinner:       m.spinner.View(),
		Highlight:     m.highlight,
		RowOffset:     m.rowOffset,
		StatusMessage: m.statusMessage,
		HelpBar:       m.help.View(m.keys),
		ShowHelp:      m.showHelp,
		HelpContent:   m.helpText.RenderHelpContent(),
		ShowReady:     m.showReady,
	})
}

func clearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return clearStatusMsg{} })
}
