package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/robolog/nuscenes2bag/internal/converter"
	"github.com/robolog/nuscenes2bag/internal/nuscenes"
	"github.com/robolog/nuscenes2bag/internal/rosbag"
)

// datasetConverter fans the selected scenes out over a bounded pool of
// scene workers. Each scene owns its bag exclusively; a failed scene is
// logged and the remaining scenes keep converting.
type datasetConverter struct {
	log   zerolog.Logger
	index *nuscenes.Index

	dataDir string
	outDir  string
	scenes  sceneList

	sceneWorkerCount  int
	decodeWorkerCount int
}

func (d *datasetConverter) Run(ctx context.Context) error {
	tokens := d.selectScenes()
	if len(tokens) == 0 {
		return errors.New("no scenes to convert")
	}
	d.log.Info().Int("scenes", len(tokens)).Msg("starting conversion")

	progress := converter.NewProgress(d.log)
	workers := semaphore.NewWeighted(int64(d.sceneWorkerCount))
	g, gctx := errgroup.WithContext(ctx)
	var failed int64
	for _, token := range tokens {
		token := token
		if err := workers.Acquire(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer workers.Release(1)
			err := d.convertScene(gctx, token, progress)
			switch {
			case err == nil:
			case errors.Is(err, context.Canceled):
				return err
			default:
				atomic.AddInt64(&failed, 1)
				d.log.Error().Err(err).Str("sceneToken", token).Msg("scene conversion failed")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d scenes failed to convert", failed, len(tokens))
	}
	d.log.Info().
		Int("scenes", len(tokens)).
		Int64("files", progress.Processed()).
		Msg("conversion finished")
	return nil
}

// selectScenes resolves the configured scene names against the dataset,
// preserving dataset order. Names missing from the dataset are logged.
func (d *datasetConverter) selectScenes() []nuscenes.Token {
	tokens := d.index.AllSceneTokens()
	if d.scenes.All {
		return tokens
	}
	wanted := make(map[string]bool, len(d.scenes.Scenes))
	for _, name := range d.scenes.Scenes {
		wanted[name] = true
	}
	var selected []nuscenes.Token
	for _, token := range tokens {
		if info, ok := d.index.SceneInfo(token); ok && wanted[info.Name] {
			selected = append(selected, token)
			delete(wanted, info.Name)
		}
	}
	for name := range wanted {
		d.log.Warn().Str("scene", name).Msg("scene not found in dataset")
	}
	return selected
}

func (d *datasetConverter) convertScene(
	ctx context.Context, token nuscenes.Token, progress *converter.Progress,
) (err error) {
	sc := converter.NewSceneConverter(d.index, d.log, d.decodeWorkerCount)
	if err = sc.Bind(token, progress); err != nil {
		return err
	}
	log := d.log.With().Str("scene", sc.SceneName()).Logger()
	log.Info().Msg("converting scene")
	bag, err := rosbag.Create(filepath.Join(d.outDir, sc.SceneName()))
	if err != nil {
		return fmt.Errorf("failed to create bag: %w", err)
	}
	defer func() {
		if cerr := bag.Close(); err == nil {
			err = cerr
		}
	}()
	if err = sc.Run(ctx, d.dataDir, bag, progress); err != nil {
		return err
	}
	log.Info().Uint64("messages", bag.MessageCount()).Msg("scene converted")
	return nil
}
