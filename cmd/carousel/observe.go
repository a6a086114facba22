package main

import (
	"context"
	"sync"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/carousel"
	"github.com/zoobzio/carousel/overlay"
	"go.uber.org/zap"
)

var observeOnce sync.Once

// observe routes carousel events to log. Hooks are process-wide, so only
// the first logger is attached.
func observe(log *zap.Logger) {
	observeOnce.Do(func() {
		capitan.Hook(carousel.RotatorStarted, func(_ context.Context, e *capitan.Event) {
			interval, _ := carousel.KeyInterval.From(e)
			fade, _ := carousel.KeyFadeDelay.From(e)
			count, _ := carousel.KeyCount.From(e)
			log.Info("rotator started",
				zap.Duration("interval", interval),
				zap.Duration("fade_delay", fade),
				zap.Int("slides", count),
			)
		})

		capitan.Hook(carousel.RotatorStopped, func(_ context.Context, e *capitan.Event) {
			state, _ := carousel.KeyState.From(e)
			index, _ := carousel.KeyIndex.From(e)
			log.Info("rotator stopped", zap.String("state", state), zap.Int("index", index))
		})

		capitan.Hook(carousel.RotatorStateChanged, func(_ context.Context, e *capitan.Event) {
			oldState, _ := carousel.KeyOldState.From(e)
			newState, _ := carousel.KeyNewState.From(e)
			log.Debug("rotator state changed", zap.String("from", oldState), zap.String("to", newState))
		})

		capitan.Hook(carousel.SlideAdvanced, func(_ context.Context, e *capitan.Event) {
			from, _ := carousel.KeyFrom.From(e)
			to, _ := carousel.KeyTo.From(e)
			cause, _ := carousel.KeyCause.From(e)
			log.Debug("slide advanced", zap.Int("from", from), zap.Int("to", to), zap.String("cause", cause))
		})

		capitan.Hook(carousel.TimerReset, func(_ context.Context, e *capitan.Event) {
			interval, _ := carousel.KeyInterval.From(e)
			log.Debug("rotation timer reset", zap.Duration("interval", interval))
		})

		capitan.Hook(carousel.SlideRejected, func(_ context.Context, e *capitan.Event) {
			index, _ := carousel.KeyIndex.From(e)
			errMsg, _ := carousel.KeyError.From(e)
			log.Warn("slide rejected", zap.Int("index", index), zap.String("error", errMsg))
		})

		capitan.Hook(carousel.LoadCompleted, func(_ context.Context, e *capitan.Event) {
			count, _ := carousel.KeyCount.From(e)
			rejected, _ := carousel.KeyRejected.From(e)
			log.Info("preload completed", zap.Int("slides", count), zap.Int("rejected", rejected))
		})

		capitan.Hook(carousel.TransitionFailed, func(_ context.Context, e *capitan.Event) {
			phase, _ := carousel.KeyPhase.From(e)
			index, _ := carousel.KeyIndex.From(e)
			errMsg, _ := carousel.KeyError.From(e)
			log.Error("transition failed",
				zap.String("phase", phase),
				zap.Int("index", index),
				zap.String("error", errMsg),
			)
		})

		capitan.Hook(carousel.SettingsApplied, func(_ context.Context, e *capitan.Event) {
			interval, _ := carousel.KeyInterval.From(e)
			fade, _ := carousel.KeyFadeDelay.From(e)
			log.Info("settings applied", zap.Duration("interval", interval), zap.Duration("fade_delay", fade))
		})

		capitan.Hook(carousel.SettingsRejected, func(_ context.Context, e *capitan.Event) {
			phase, _ := carousel.KeyPhase.From(e)
			errMsg, _ := carousel.KeyError.From(e)
			log.Warn("settings rejected", zap.String("phase", phase), zap.String("error", errMsg))
		})

		capitan.Hook(overlay.PanelOpened, func(context.Context, *capitan.Event) {
			log.Debug("navigation panel opened")
		})

		capitan.Hook(overlay.PanelClosed, func(context.Context, *capitan.Event) {
			log.Debug("navigation panel closed")
		})

		capitan.Hook(overlay.PopupArmed, func(_ context.Context, e *capitan.Event) {
			delay, _ := overlay.KeyDelay.From(e)
			log.Debug("popup armed", zap.Duration("delay", delay))
		})

		capitan.Hook(overlay.PopupShown, func(context.Context, *capitan.Event) {
			log.Info("popup shown")
		})

		capitan.Hook(overlay.PopupHidden, func(context.Context, *capitan.Event) {
			log.Debug("popup hidden")
		})

		capitan.Hook(overlay.LinkOpened, func(_ context.Context, e *capitan.Event) {
			url, _ := overlay.KeyURL.From(e)
			log.Info("contact link opened", zap.String("url", url))
		})
	})
}
