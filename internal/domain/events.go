package domain

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventSearchScheduled    EventType = "SearchScheduled"
	EventSearchIssued       EventType = "SearchIssued"
	EventSearchStateChanged EventType = "SearchStateChanged"
	EventSearchReset        EventType = "SearchReset"
	EventError              EventType = "Error"
	EventConfigLoaded       EventType = "ConfigLoaded"
	EventConfigSaved        EventType = "ConfigSaved"
	EventAppReady           EventType = "AppReady"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// SearchScheduledEvent is emitted when a query change arms one of the debounce timers
type SearchScheduledEvent struct {
	Query string
	Reset bool // true when the reset timer was armed instead of the search timer
}

func (e SearchScheduledEvent) Type() EventType { return EventSearchScheduled }

// SearchIssuedEvent is emitted when the search timer fires and a request goes out
type SearchIssuedEvent struct {
	Query    string
	Sequence uint64
}

func (e SearchIssuedEvent) Type() EventType { return EventSearchIssued }

// SearchStateChangedEvent is emitted on every applied lifecycle transition
type SearchStateChangedEvent struct {
	Status  string
	Results int
	Error   string
}

func (e SearchStateChangedEvent) Type() EventType { return EventSearchStateChanged }

// SearchResetEvent is emitted when the reset timer fires
type SearchResetEvent struct{}

func (e SearchResetEvent) Type() EventType { return EventSearchReset }

// ErrorEvent is emitted when an error occurs outside the search lifecycle
type ErrorEvent struct {
	Message string
	Err     error
}

func (e ErrorEvent) Type() EventType { return EventError }

// ConfigLoadedEvent is emitted when configuration is loaded
type ConfigLoadedEvent struct {
	Path     string
	Endpoint string
}

func (e ConfigLoadedEvent) Type() EventType { return EventConfigLoaded }

// ConfigSavedEvent is emitted when configuration is saved
type ConfigSavedEvent struct {
	Path string
}

func (e ConfigSavedEvent) Type() EventType { return EventConfigSaved }

// AppReadyEvent is emitted just before the UI starts
type AppReadyEvent struct {
	HasExistingConfig bool
}

func (e AppReadyEvent) Type() EventType { return EventAppReady }
