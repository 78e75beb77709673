package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/robolog/nuscenes2bag/internal/nuscenes"
)

func main() {
	if err := run(os.Args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newLogger(level zerolog.Level) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().Logger()
}

func run(args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	log := newLogger(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Str("dir", cfg.DataDir).Msg("loading dataset metadata")
	index, err := nuscenes.LoadDirectory(cfg.DataDir, log)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	if err = os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var manager *compressManager
	if cfg.CompressionMode != compressionModeNone {
		manager = newCompressManager(cfg.CompressWorkerCount, log)
		if err = manager.LoadExistingBags(cfg.OutDir); err != nil {
			return fmt.Errorf("failed to find existing bags: %w", err)
		}
		bw := &bagWatcher{Dir: cfg.OutDir, Log: log}
		watcher, err := bw.Start(ctx, manager.AddCompleted)
		if err != nil {
			return fmt.Errorf("failed to start bag watching: %w", err)
		}
		defer watcher.Close()
		go manager.StartWorker(ctx)
	}

	conv := &datasetConverter{
		log:               log,
		index:             index,
		dataDir:           cfg.DataDir,
		outDir:            cfg.OutDir,
		scenes:            cfg.Scenes,
		sceneWorkerCount:  cfg.SceneWorkerCount,
		decodeWorkerCount: cfg.DecodeWorkerCount,
	}
	convErr := conv.Run(ctx)

	if manager != nil && ctx.Err() == nil {
		// Watcher events for the last bags may still be in flight; a
		// rescan of the output directory is cheap and deduplicated.
		if err = manager.LoadExistingBags(cfg.OutDir); err != nil {
			log.Warn().Err(err).Msg("failed to find remaining bags")
		}
		go manager.StartWorker(ctx)
		manager.Wait()
	}
	return convErr
}
