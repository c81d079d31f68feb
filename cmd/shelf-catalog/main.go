package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/five82/shelf/internal/catalog"
	"github.com/five82/shelf/internal/config"
	"github.com/five82/shelf/internal/library"
	"github.com/five82/shelf/internal/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "override shelf config path (optional)")
	listen := flag.String("listen", "", "listen address (overrides config)")
	seedPath := flag.String("seed", "", "seed TOML file to serve and watch (overrides config)")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	level := zerolog.InfoLevel
	if *debug {
		level = zerolog.DebugLevel
	}
	log := logger.New("catalog", os.Stdout, level)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "shelf-catalog: load config: %v\n", err)
		return 1
	}
	if addr := strings.TrimSpace(*listen); addr != "" {
		cfg.Listen = addr
	}
	if path := strings.TrimSpace(*seedPath); path != "" {
		cfg.SeedPath = path
	}

	seed := library.DefaultSeed()
	if cfg.SeedPath != "" {
		seed, err = library.LoadSeed(cfg.SeedPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "shelf-catalog: %v\n", err)
			return 1
		}
	}
	books := library.NewMemorySource(seed, cfg.Latency)

	if cfg.SeedPath != "" {
		go func() {
			if err := catalog.Watch(ctx, cfg.SeedPath, log, books.Replace); err != nil {
				log.Error().Err(err).Msg("seed watcher stopped")
			}
		}()
	}

	if err := catalog.NewServer(books, log).Run(ctx, cfg.Listen); err != nil {
		log.Error().Err(err).Msg("catalog server failed")
		return 1
	}
	return 0
}
