package ui

import (
	"moviegrip/internal/async"
	"moviegrip/internal/domain"
	"moviegrip/internal/eventbus"
)

// StateMsg carries a lifecycle transition into the tea event loop
type StateMsg struct {
	State async.State[[]domain.Movie]
}

// EventMsg wraps a domain event for the UI
type EventMsg struct {
	Event eventbus.DomainEvent
}

// clearStatusMsg clears the transient status line
type clearStatusMsg struct{}

// pauseRenderingMsg signals to pause Bubble Tea rendering
type pauseRenderingMsg struct{}

// resumeRenderingMsg signals to resume Bubble Tea rendering
type resumeRenderingMsg struct{}
