package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"moviegrip/internal/domain"
	"moviegrip/internal/eventbus"
)

// Short query policies
const (
	PolicyFilter  = "filter"  // drop short queries before the provider sees them
	PolicySurface = "surface" // let the provider reject them
)

// Defaults
const (
	DefaultEndpoint       = "https://www.omdbapi.com/"
	DefaultTimeout        = 10 * time.Second
	DefaultDebounce       = 500 * time.Millisecond
	DefaultMaxWait        = 2000 * time.Millisecond
	DefaultResetDebounce  = 500 * time.Millisecond
	DefaultMinQueryLength = 3
)

// Duration is a time.Duration stored as a Go duration string ("500ms")
type Duration time.Duration

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Std returns the value as a time.Duration
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config represents the application configuration
type Config struct {
	Version    int             `toml:"version"`
	API        APISettings     `toml:"api"`
	Search     SearchSettings  `toml:"search"`
	UISettings UISettings      `toml:"ui"`
	Metrics    MetricsSettings `toml:"metrics"`
}

// APISettings configures the OMDb provider
type APISettings struct {
	Endpoint string   `toml:"endpoint"`
	APIKey   string   `toml:"api_key"`
	Timeout  Duration `toml:"timeout"`
}

// SearchSettings configures the debounce policy
type SearchSettings struct {
	Debounce         Duration `toml:"debounce"`
	MaxWait          Duration `toml:"max_wait"`
	ResetDebounce    Duration `toml:"reset_debounce"`
	MinQueryLength   int      `toml:"min_query_length"`
	ShortQueryPolicy string   `toml:"short_query_policy"`
}

// UISettings represents UI-related configuration
type UISettings struct {
	PlaceholderPoster string `toml:"placeholder_poster"`
	ShowType          bool   `toml:"show_type"`
}

// MetricsSettings configures the optional metrics endpoint
type MetricsSettings struct {
	Addr string `toml:"addr"` // empty disables the endpoint
}

// ConfigService handles configuration management
type ConfigService interface {
	Load() (*Config, error)
	Save(config *Config) error
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
	Path() string
}

// configService is the concrete implementation
type configService struct {
	bus      eventbus.EventBus
	filePath string
}

// DefaultPath returns the per-user config file location
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		// Fallback to home directory
		configDir, err = os.UserHomeDir()
		if err != nil {
			configDir = "."
		}
		configDir = filepath.Join(configDir, ".config")
	}
	return filepath.Join(configDir, "moviegrip", "config.toml")
}

// NewConfigService creates a new config service; an empty path means DefaultPath
func NewConfigService(path string) ConfigService {
	if path == "" {
		path = DefaultPath()
	}
	return &configService{filePath: path}
}

// NewConfigServiceWithBus creates a config service with event bus support
func NewConfigServiceWithBus(bus eventbus.EventBus, path string) ConfigService {
	cs := NewConfigService(path).(*configService)
	cs.bus = bus
	return cs
}

// Path returns the file the service reads and writes
func (cs *configService) Path() string {
	return cs.filePath
}

// Load loads the configuration from file
func (cs *configService) Load() (*Config, error) {
	var cfg *Config
	if _, err := os.Stat(cs.filePath); os.IsNotExist(err) {
		// Return default config if file doesn't exist
		cfg = DefaultConfig()
	} else {
		cfg, err = cs.LoadFromPath(cs.filePath)
		if err != nil {
			return nil, err
		}
	}

	// Publish ConfigLoaded event if bus is available
	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigLoadedEvent{
			Path:     cs.filePath,
			Endpoint: cfg.API.Endpoint,
		})
	}

	return cfg, nil
}

// Save saves the configuration to file
func (cs *configService) Save(config *Config) error {
	if err := cs.SaveToPath(config, cs.filePath); err != nil {
		return err
	}

	// Publish ConfigSaved event if bus is available
	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigSavedEvent{Path: cs.filePath})
	}

	return nil
}

// LoadFromPath loads configuration from a specific path.
// Keys missing from the file keep their default values.
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	// Check if config file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	// Read config file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse config on top of the defaults
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// SaveToPath saves configuration to a specific path
func (cs *configService) SaveToPath(config *Config, path string) error {
	// Ensure config directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Marshal config to TOML
	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// The file may hold an API key
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		API: APISettings{
			Endpoint: DefaultEndpoint,
			Timeout:  Duration(DefaultTimeout),
		},
		Search: SearchSettings{
			Debounce:         Duration(DefaultDebounce),
			MaxWait:          Duration(DefaultMaxWait),
			ResetDebounce:    Duration(DefaultResetDebounce),
			MinQueryLength:   DefaultMinQueryLength,
			ShortQueryPolicy: PolicyFilter,
		},
		UISettings: UISettings{
			PlaceholderPoster: domain.DefaultPlaceholderPoster,
			ShowType:          true,
		},
	}
}

// ErrMissingAPIKey is returned by Validate when no API key is configured
var ErrMissingAPIKey = errors.New("api.api_key is required (set it in the config file, MOVIEGRIP_API_KEY or -api-key)")

// Validate checks the values the rest of the application relies on
func (c *Config) Validate() error {
	u, err := url.Parse(strings.TrimSpace(c.API.Endpoint))
	if err != nil {
		return fmt.Errorf("invalid api.endpoint: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid api.endpoint %q: must be an absolute http(s) URL", c.API.Endpoint)
	}
	if strings.TrimSpace(c.API.APIKey) == "" {
		return ErrMissingAPIKey
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive, got %s", c.API.Timeout.Std())
	}
	if c.Search.Debounce <= 0 {
		return fmt.Errorf("search.debounce must be positive, got %s", c.Search.Debounce.Std())
	}
	if c.Search.ResetDebounce <= 0 {
		return fmt.Errorf("search.reset_debounce must be positive, got %s", c.Search.ResetDebounce.Std())
	}
	if c.Search.MaxWait < 0 {
		return fmt.Errorf("search.max_wait must not be negative, got %s", c.Search.MaxWait.Std())
	}
	if c.Search.MaxWait > 0 && c.Search.MaxWait < c.Search.Debounce {
		return fmt.Errorf("search.max_wait (%s) must not be shorter than search.debounce (%s)",
			c.Search.MaxWait.Std(), c.Search.Debounce.Std())
	}
	if c.Search.MinQueryLength < 0 {
		return fmt.Errorf("search.min_query_length must not be negative, got %d", c.Search.MinQueryLength)
	}
	switch c.Search.ShortQueryPolicy {
	case PolicyFilter, PolicySurface:
	default:
		return fmt.Errorf("unknown search.short_query_policy %q (want %q or %q)",
			c.Search.ShortQueryPolicy, PolicyFilter, PolicySurface)
	}
	return nil
}
