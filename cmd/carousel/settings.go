package main

import (
	"context"
	"fmt"
	"os"

	"github.com/zoobzio/carousel"
	"go.uber.org/zap"
)

// resolveSettings starts from the preset and overlays the settings file,
// if one was given.
func resolveSettings() (carousel.Settings, error) {
	s, err := carousel.Preset(presetName)
	if err != nil {
		return carousel.Settings{}, err
	}
	if configPath == "" {
		return s, nil
	}

	raw, err := os.ReadFile(configPath)
	if err != nil {
		return carousel.Settings{}, fmt.Errorf("read settings: %w", err)
	}
	merged, err := carousel.DecodeSettings(carousel.YAMLCodec{}, s, raw)
	if err != nil {
		return carousel.Settings{}, fmt.Errorf("settings %s: %w", configPath, err)
	}
	return merged, nil
}

// watchSettings reconfigures r whenever the settings source changes. The
// returned function releases the source. With no source it does nothing.
func watchSettings[T any](ctx context.Context, r *carousel.Rotator[T]) (func(), error) {
	ref := settingsRef()
	if ref == "" {
		return func() {}, nil
	}
	base, err := carousel.Preset(presetName)
	if err != nil {
		return nil, err
	}

	src, err := openSource(ctx, ref)
	if err != nil {
		return nil, err
	}
	release := func() {
		if err := src.close(); err != nil {
			logger.Warn("failed to close settings source", zap.Error(err))
		}
	}

	reloader := carousel.NewReloader(src.watcher, func(ctx context.Context, prev, curr carousel.Settings) error {
		if prev.Interval() != curr.Interval() {
			logger.Info("rotation interval changed",
				zap.Duration("from", prev.Interval()),
				zap.Duration("to", curr.Interval()),
			)
		}
		return r.Configure(ctx, curr)
	}).Base(base).ErrorHistorySize(8).OnStop(func(h carousel.Health) {
		logger.Debug("settings watch stopped", zap.Stringer("health", h))
	})

	if err := reloader.Start(ctx); err != nil {
		// The reloader keeps watching for a valid document.
		logger.Warn("initial settings rejected", zap.String("source", ref), zap.Error(err))
	}
	return release, nil
}
