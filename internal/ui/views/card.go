package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"moviegrip/internal/domain"
)

// Card geometry, borders included
const (
	CardWidth  = 40
	CardHeight = 6
)

// CardRenderer renders one search result
type CardRenderer struct {
	styles      *Styles
	showType    bool
	placeholder string
}

// NewCardRenderer creates a card renderer. An empty placeholder means the default poster.
func NewCardRenderer(styles *Styles, showType bool, placeholder string) *CardRenderer {
	return &CardRenderer{
		styles:      styles,
		showType:    showType,
		placeholder: placeholder,
	}
}

// Render draws a movie as a bordered card
func (cr *CardRenderer) Render(m domain.Movie, highlighted bool) string {
	inner := CardWidth - 4 // border and padding

	title := truncate(m.Title, inner)
	meta := m.Year
	if cr.showType && m.Type != "" {
		meta = fmt.Sprintf("%s · %s", m.Year, m.Type)
	}
	poster := truncate(m.PosterURL(cr.placeholder), inner)

	body := strings.Join([]string{
		cr.styles.CardTitle.Render(title),
		cr.styles.CardMeta.Render(truncate(meta, inner)),
		cr.styles.Poster.Render(poster),
		cr.styles.Dim.Render(truncate(m.IMDbID, inner)),
	}, "\n")

	style := cr.styles.Card
	if highlighted {
		style = cr.styles.CardHighlight
	}
	return style.Width(CardWidth - 2).Render(body)
}

// truncate shortens s to width cells, marking the cut with an ellipsis
func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
