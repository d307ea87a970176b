package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/noborus/ov/oviewer"

	"moviegrip/internal/domain"
)

var errNoProgram = errors.New("program not set")

// resultsPagerMsg contains the result of a results pager command
type resultsPagerMsg struct {
	err error
}

// HelpRenderer handles help content rendering
type HelpRenderer struct{}

// NewHelpRenderer creates a new help renderer
func NewHelpRenderer() *HelpRenderer {
	return &HelpRenderer{}
}

// RenderHelpContent renders the key reference shown in the help popup
func (r *HelpRenderer) RenderHelpContent() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99")).
		MarginBottom(1)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39")).
		MarginTop(1)

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("220"))

	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))

	row := func(k, d string) string {
		return fmt.Sprintf("  %s  %s\n", keyStyle.Render(fmt.Sprintf("%-8s", k)), descStyle.Render(d))
	}

	var help strings.Builder

	help.WriteString(titleStyle.Render("moviegrip Help"))
	help.WriteString("\n")

	help.WriteString(sectionStyle.Render("Search"))
	help.WriteString("\n")
	help.WriteString(row("type", "Search titles (after a short pause)"))
	help.WriteString(row("enter", "Search now"))
	help.WriteString(row("clear", "Empty the box to reset the results"))
	help.WriteString("\n")

	help.WriteString(sectionStyle.Render("Results"))
	help.WriteString("\n")
	help.WriteString(row("↑/↓", "Move the highlighted card"))
	help.WriteString(row("ctrl+o", "Open the result list in a pager"))
	help.WriteString("\n")

	help.WriteString(sectionStyle.Render("Other"))
	help.WriteString("\n")
	help.WriteString(row("?", "Toggle this help (when the box is empty)"))
	help.WriteString(strings.TrimSuffix(row("esc", "Close help, or quit"), "\n"))
	help.WriteString("\n")
	help.WriteString(strings.TrimSuffix(row("ctrl+c", "Quit"), "\n"))

	return help.String()
}

// RenderResultsPlain lists results as text for the pager
func RenderResultsPlain(movies []domain.Movie, placeholder string, showType bool) string {
	var b strings.Builder
	for i, m := range movies {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%d. %s (%s)", i+1, m.Title, m.Year)
		if showType && m.Type != "" {
			fmt.Fprintf(&b, " [%s]", m.Type)
		}
		b.WriteString("\n")
		fmt.Fprintf(&b, "   poster: %s\n", m.PosterURL(placeholder))
		if m.IMDbID != "" {
			fmt.Fprintf(&b, "   imdb:   https://www.imdb.com/title/%s/\n", m.IMDbID)
		}
	}
	return b.String()
}

// PagerOps runs the ov pager on top of the program
type PagerOps struct {
	program *tea.Program // reference to Bubble Tea program for terminal management
}

// NewPagerOps creates a new pager operations instance
func NewPagerOps() *PagerOps {
	return &PagerOps{}
}

// SetProgram sets the program reference for terminal management
func (p *PagerOps) SetProgram(program *tea.Program) {
	p.program = program
}

// ShowInPager shows content using ov pager
func (p *PagerOps) ShowInPager(content string) error {
	if p.program == nil {
		return errNoProgram
	}

	// Release terminal control to run ov
	if err := p.program.ReleaseTerminal(); err != nil {
		return err
	}

	// Ensure terminal is restored even if ov fails
	defer func() {
		// Small delay to ensure ov has fully exited before restoring terminal
		time.Sleep(100 * time.Millisecond)
		_ = p.program.RestoreTerminal()
	}()

	root, err := oviewer.NewRoot(strings.NewReader(content))
	if err != nil {
		return err
	}

	// Configure ov to not write on exit (to avoid messing with our screen)
	config := oviewer.NewConfig()
	config.IsWriteOnExit = false
	config.IsWriteOriginal = false
	root.SetConfig(config)

	return root.Run()
}
