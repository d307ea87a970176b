package views

import (
	"github.com/charmbracelet/lipgloss"
)

// PopupRenderer handles popup/modal rendering
type PopupRenderer struct {
	styles *Styles
}

// NewPopupRenderer creates a new popup renderer
func NewPopupRenderer(styles *Styles) *PopupRenderer {
	return &PopupRenderer{
		styles: styles,
	}
}

// RenderPopup centers popupContent on a screen of the given size
func (pr *PopupRenderer) RenderPopup(popupContent string, width, height int) string {
	styled := pr.styles.Popup.Render(popupContent)
	if width <= 0 || height <= 0 {
		return styled
	}
	// Keep a small margin so the border never touches the screen edge
	if lipgloss.Width(styled) > width-2 {
		styled = pr.styles.Popup.Width(width - 4).Render(popupContent)
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, styled)
}
