package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"moviegrip/internal/async"
	"moviegrip/internal/config"
	"moviegrip/internal/domain"
	"moviegrip/internal/eventbus"
	"moviegrip/internal/httpx"
	"moviegrip/internal/metrics"
	"moviegrip/internal/omdb"
	"moviegrip/internal/search"
	"moviegrip/internal/ui"
)

// EnvE2E makes the UI print a ready marker for the e2e harness
const EnvE2E = "MOVIEGRIP_E2E_TEST"

type options struct {
	configPath  string
	endpoint    string
	apiKey      string
	metricsAddr string
	logPath     string
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", config.DefaultPath(), "Path to the config file")
	flag.StringVar(&opts.endpoint, "endpoint", "", "OMDb API endpoint (overrides config and MOVIEGRIP_ENDPOINT)")
	flag.StringVar(&opts.apiKey, "api-key", "", "OMDb API key (overrides config and MOVIEGRIP_API_KEY)")
	flag.StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. localhost:9464")
	flag.StringVar(&opts.logPath, "log", "moviegrip.log", "Log file path")
	flag.Parse()

	os.Exit(run(opts))
}

func run(opts options) int {
	// Set up logging
	logFile, err := os.OpenFile(opts.logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Printf("Could not open log file: %v", err)
	} else {
		defer logFile.Close()
		log.SetOutput(logFile)
	}

	// Create context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Create event bus
	bus := eventbus.New()
	defer bus.Close()

	bus.Subscribe(eventbus.EventConfigLoaded, func(e eventbus.DomainEvent) {
		if event, ok := e.(eventbus.ConfigLoadedEvent); ok {
			log.Printf("Config loaded from %s (endpoint %s)", event.Path, event.Endpoint)
		}
	})
	bus.Subscribe(eventbus.EventConfigSaved, func(e eventbus.DomainEvent) {
		if event, ok := e.(eventbus.ConfigSavedEvent); ok {
			log.Printf("Config saved to %s", event.Path)
		}
	})

	configSvc := config.NewConfigServiceWithBus(bus, opts.configPath)
	cfg, existed := loadOrCreateConfig(configSvc)
	config.ApplyEnv(cfg)
	applyFlags(cfg, opts)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "moviegrip: %v\n", err)
		if errors.Is(err, config.ErrMissingAPIKey) {
			fmt.Fprintf(os.Stderr, "config file: %s\n", configSvc.Path())
		}
		return 2
	}
	policy, err := search.ParsePolicy(cfg.Search.ShortQueryPolicy)
	if err != nil {
		fmt.Fprintf(os.Stderr, "moviegrip: %v\n", err)
		return 2
	}

	client, err := omdb.NewClient(omdb.Config{
		BaseURL:       cfg.API.Endpoint,
		APIKey:        cfg.API.APIKey,
		MinTermLength: cfg.Search.MinQueryLength,
		HTTPClient:    httpx.NewClient(cfg.API.Timeout.Std()),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "moviegrip: %v\n", err)
		return 2
	}

	recorder := metrics.NewRecorder()
	if cfg.Metrics.Addr != "" {
		srv := startMetrics(cfg.Metrics.Addr, bus)
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
			defer done()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Printf("Metrics server shutdown: %v", err)
			}
		}()
	}

	// The program does not exist yet when the controller is built
	var program atomic.Pointer[tea.Program]

	ctrl := async.New[[]domain.Movie](
		async.WithListener(func(s async.State[[]domain.Movie]) {
			bus.Publish(eventbus.SearchStateChangedEvent{
				Status:  s.Status.String(),
				Results: len(s.Data),
				Error:   s.Err,
			})
			if p := program.Load(); p != nil {
				p.Send(ui.StateMsg{State: s})
			}
		}),
		async.WithObserver[[]domain.Movie](recorder),
	)

	maxWait := cfg.Search.MaxWait.Std()
	if maxWait == 0 {
		maxWait = -1 // no ceiling
	}
	svc := search.NewService(client, ctrl, search.Options{
		Debounce:       cfg.Search.Debounce.Std(),
		MaxWait:        maxWait,
		ResetDebounce:  cfg.Search.ResetDebounce.Std(),
		MinQueryLength: cfg.Search.MinQueryLength,
		Policy:         policy,
		Context:        ctx,
		Bus:            bus,
		Metrics:        recorder,
	})
	defer svc.Close()

	bus.Subscribe(eventbus.EventSearchStateChanged, func(e eventbus.DomainEvent) {
		if event, ok := e.(eventbus.SearchStateChangedEvent); ok {
			switch event.Status {
			case async.StatusResolved.String():
				log.Printf("Search state: %s (%d results)", event.Status, event.Results)
			case async.StatusRejected.String():
				log.Printf("Search state: %s (%s)", event.Status, event.Error)
			default:
				log.Printf("Search state: %s", event.Status)
			}
		}
	})

	// Create UI model
	uiModel := ui.NewModel(svc, cfg, ui.WithReadyMarker(os.Getenv(EnvE2E) == "1"))

	// Create Bubble Tea program
	p := tea.NewProgram(uiModel, tea.WithAltScreen(), tea.WithContext(ctx))
	uiModel.SetProgram(p)
	program.Store(p)

	bus.Subscribe(eventbus.EventError, func(e eventbus.DomainEvent) {
		if event, ok := e.(eventbus.ErrorEvent); ok {
			log.Printf("Error: %s: %v", event.Message, event.Err)
			p.Send(ui.EventMsg{Event: event})
		}
	})

	bus.Publish(eventbus.AppReadyEvent{HasExistingConfig: existed})
	log.Printf("Starting UI (endpoint %s, policy %s)", cfg.API.Endpoint, policy)

	// Run the UI
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		fmt.Printf("Error running program: %v\n", err)
		return 1
	}
	return 0
}

// loadOrCreateConfig loads the config file, writing the defaults on first run.
// The returned flag reports whether a file already existed.
func loadOrCreateConfig(svc config.ConfigService) (*config.Config, bool) {
	_, statErr := os.Stat(svc.Path())
	existed := statErr == nil

	cfg, err := svc.Load()
	if err != nil {
		log.Printf("Error loading config: %v", err)
		// Use default config
		return config.DefaultConfig(), existed
	}

	if !existed {
		if err := svc.Save(cfg); err != nil {
			log.Printf("Could not write default config: %v", err)
		}
	}
	return cfg, existed
}

func applyFlags(cfg *config.Config, opts options) {
	if opts.endpoint != "" {
		cfg.API.Endpoint = opts.endpoint
	}
	if opts.apiKey != "" {
		cfg.API.APIKey = opts.apiKey
	}
	if opts.metricsAddr != "" {
		cfg.Metrics.Addr = opts.metricsAddr
	}
}

func startMetrics(addr string, bus eventbus.EventBus) *metrics.Server {
	srv := metrics.NewServer(addr)
	srv.Start()
	log.Printf("Metrics server listening on %s", addr)

	// Bind failures surface shortly after Start
	time.AfterFunc(500*time.Millisecond, func() {
		if err := srv.Err(); err != nil {
			bus.Publish(eventbus.ErrorEvent{Message: fmt.Sprintf("metrics server: %v", err), Err: err})
		}
	})
	return srv
}
