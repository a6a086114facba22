package main

import (
	"context"

	"github.com/zoobzio/carousel"
	"github.com/zoobzio/carousel/pkg/markup"
	"go.uber.org/zap"
)

// logPresenter reports transitions instead of drawing them, for dry runs
// without a browser.
type logPresenter struct {
	log *zap.Logger
}

var _ carousel.Presenter[markup.Slide] = logPresenter{}

func (p logPresenter) Deactivate(_ context.Context, index int, s markup.Slide) error {
	p.log.Debug("slide hidden", zap.Int("index", index), zap.Int("element", s.Index))
	return nil
}

func (p logPresenter) Activate(_ context.Context, index int, s markup.Slide) error {
	p.log.Info("slide shown",
		zap.Int("index", index),
		zap.Int("element", s.Index),
		zap.String("id", s.ID),
		zap.String("source", s.Source),
	)
	return nil
}
