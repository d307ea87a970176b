package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"moviegrip/internal/async"
	"moviegrip/internal/domain"
)

// ReadyMarker is printed in the footer when the e2e harness asks for it
const ReadyMarker = "__READY__"

// Lines taken by everything except the card grid: padding, title, input box,
// spacing, result summary and help bar
const chromeLines = 11

// ViewState contains all the state needed for rendering
type ViewState struct {
	Width         int
	Height        int
	Input         string // rendered text input
	Status        async.Status
	Movies        []domain.Movie
	Error         string
	Spinner       string // current spinner frame
	Highlight     int
	RowOffset     int
	StatusMessage string
	HelpBar       string
	ShowHelp      bool
	HelpContent   string
	ShowReady     bool
}

// Renderer handles all view rendering
type Renderer struct {
	styles      *Styles
	cardRender  *CardRenderer
	popupRender *PopupRenderer
}

// NewRenderer creates a new renderer
func NewRenderer(showType bool, placeholder string) *Renderer {
	styles := NewStyles()
	return &Renderer{
		styles:      styles,
		cardRender:  NewCardRenderer(styles, showType, placeholder),
		popupRender: NewPopupRenderer(styles),
	}
}

// Layout returns how many cards fit on a row and how many rows fit on screen
func Layout(width, height int) (perRow, rows int) {
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 24
	}
	perRow = (width - 4) / CardWidth
	if perRow < 1 {
		perRow = 1
	}
	rows = (height - chromeLines) / CardHeight
	if rows < 1 {
		rows = 1
	}
	return perRow, rows
}

// Render produces the complete view
func (r *Renderer) Render(state ViewState) string {
	if state.ShowHelp {
		return r.popupRender.RenderPopup(state.HelpContent, state.Width, state.Height)
	}

	content := &strings.Builder{}

	logo := r.styles.Title.Render("moviegrip")
	indicator := ""
	if state.Status == async.StatusPending {
		indicator = r.styles.Loading.Render(fmt.Sprintf("%s Searching", state.Spinner))
	}
	content.WriteString(r.titleLine(logo, indicator, state.Width))
	content.WriteString("\n")
	content.WriteString(r.styles.Input.Render(state.Input))
	content.WriteString("\n\n")

	content.WriteString(r.renderBody(state))

	footer := r.renderFooter(state)
	currentLines := strings.Count(content.String(), "\n") + 1
	availableLines := state.Height - 2
	if availableLines <= 0 {
		availableLines = 22
	}
	footerLines := strings.Count(footer, "\n") + 1
	if padding := availableLines - currentLines - footerLines; padding > 0 {
		content.WriteString(strings.Repeat("\n", padding))
	}
	content.WriteString("\n")
	content.WriteString(footer)

	mainStyle := r.styles.Main
	if state.Height > 0 {
		mainStyle = mainStyle.MaxHeight(state.Height)
	}
	return mainStyle.Render(content.String())
}

func (r *Renderer) titleLine(logo, right string, width int) string {
	if right == "" {
		return logo
	}
	if width <= 0 {
		width = 80
	}
	padding := width - 4 - lipgloss.Width(logo) - lipgloss.Width(right)
	if padding < 2 {
		padding = 2
	}
	return logo + strings.Repeat(" ", padding) + right
}

// renderBody picks the surface for the current status
func (r *Renderer) renderBody(state ViewState) string {
	switch state.Status {
	case async.StatusPending:
		return r.styles.Loading.Render(fmt.Sprintf("%s Loading...", state.Spinner))
	case async.StatusRejected:
		return r.styles.ErrorBox.Render(state.Error)
	case async.StatusResolved:
		if len(state.Movies) == 0 {
			return r.styles.Dim.Render("No results.")
		}
		return r.renderGrid(state)
	default:
		return ""
	}
}

// renderGrid lays the visible rows of cards out left to right
func (r *Renderer) renderGrid(state ViewState) string {
	perRow, rows := Layout(state.Width, state.Height)

	start := state.RowOffset * perRow
	if start >= len(state.Movies) || start < 0 {
		start = 0
	}
	end := start + perRow*rows
	if end > len(state.Movies) {
		end = len(state.Movies)
	}

	var lines []string
	for i := start; i < end; i += perRow {
		var row []string
		for j := i; j < i+perRow && j < end; j++ {
			row = append(row, r.cardRender.Render(state.Movies[j], j == state.Highlight))
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}

	grid := lipgloss.JoinVertical(lipgloss.Left, lines...)
	if start > 0 || end < len(state.Movies) {
		grid += "\n" + r.styles.Scroll.Render(fmt.Sprintf("showing %d-%d of %d", start+1, end, len(state.Movies)))
	}
	return grid
}

func (r *Renderer) renderFooter(state ViewState) string {
	var parts []string

	summary := ""
	if state.Status == async.StatusResolved && len(state.Movies) > 0 {
		summary = fmt.Sprintf("%d results", len(state.Movies))
	}
	if state.StatusMessage != "" {
		if summary != "" {
			summary += " | "
		}
		summary += state.StatusMessage
	}
	parts = append(parts, r.styles.Status.Render(summary))

	helpBar := state.HelpBar
	if helpBar == "" {
		helpBar = "Press ? for help"
	}
	if state.ShowReady {
		helpBar += "  " + ReadyMarker
	}
	parts = append(parts, r.styles.Help.Render(helpBar))

	return strings.Join(parts, "\n")
}
