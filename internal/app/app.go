package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/shelf/internal/config"
	"github.com/five82/shelf/internal/events"
	"github.com/five82/shelf/internal/library"
	"github.com/five82/shelf/internal/logger"
	"github.com/five82/shelf/internal/prefs"
	"github.com/five82/shelf/internal/state"
	"github.com/five82/shelf/internal/ui"
)

const startupTimeout = 3 * time.Second

// Options configure the shelf application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/shelf/prefs.toml
	Debug      bool
}

// books is what the TUI needs from a configured source.
type books interface {
	library.Source
	library.Directory
}

// Run boots the shelf TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	level := zerolog.InfoLevel
	if opts.Debug {
		level = zerolog.DebugLevel
	}
	log, closeLog, err := logger.NewFile("tui", cfg.LogPath, level)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = closeLog() }()

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		log.Warn().Err(err).Msg("prefs unreadable, using defaults")
	}

	source, err := newSource(cfg)
	if err != nil {
		return err
	}

	directory, err := loadDirectory(ctx, source)
	if err != nil {
		return fmt.Errorf("list clients from %s source: %w", cfg.Source, err)
	}
	log.Info().Str("source", cfg.Source).Int("clients", len(directory)).Msg("shelf starting")

	clients := state.NewClientStore(&events.Bus{})
	store := state.NewBooksStore(source,
		state.WithLogger(log),
		state.WithFetchTimeout(cfg.FetchTimeout),
	)
	unfollow := store.Follow(ctx, clients)
	defer unfollow()

	if initial, ok := initialClient(directory, userPrefs.LastClient); ok {
		clients.Set(&initial)
	}

	var updates <-chan []library.Client
	if cfg.Source == config.SourceHTTP {
		updates = StartPoller(ctx, source, directory, defaultPollInterval, log)
	}

	return ui.Run(ui.Options{
		Context:          ctx,
		Clients:          clients,
		Books:            store,
		Directory:        directory,
		ThemeName:        userPrefs.Theme,
		PrefsPath:        opts.PrefsPath,
		Logger:           log,
		DirectoryUpdates: updates,
	})
}

// newSource builds the books source named by cfg.Source.
func newSource(cfg config.Config) (books, error) {
	switch cfg.Source {
	case config.SourceHTTP:
		return library.NewHTTPSource(cfg.CatalogURL, cfg.FetchTimeout), nil
	case config.SourceMemory:
		seed := library.DefaultSeed()
		if cfg.SeedPath != "" {
			loaded, err := library.LoadSeed(cfg.SeedPath)
			if err != nil {
				return nil, fmt.Errorf("load seed: %w", err)
			}
			seed = loaded
		}
		return library.NewMemorySource(seed, cfg.Latency), nil
	default:
		return nil, fmt.Errorf("unknown source %q", cfg.Source)
	}
}

// loadDirectory lists clients once, failing fast when the source is down.
func loadDirectory(ctx context.Context, dir library.Directory) ([]library.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()
	return dir.Clients(ctx)
}

// initialClient returns the remembered client when it still exists, else
// the first one.
func initialClient(directory []library.Client, lastID string) (library.Client, bool) {
	if len(directory) == 0 {
		return library.Client{}, false
	}
	for _, c := range directory {
		if c.ID == lastID {
			return c, true
		}
	}
	return directory[0], true
}
