// Package plugin drives the processor through a host lifecycle: start,
// show, hide and run.
package plugin

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"

	"go.uber.org/zap"

	"fliprotate/internal/processor"
	"fliprotate/internal/settings"
)

var (
	ErrNoSelection = errors.New("no items selected")
	ErrNoImages    = errors.New("selection contains no image files")
	ErrBusy        = errors.New("a batch is already running")
)

// Runner executes one batch.
type Runner interface {
	Run(ctx context.Context, items []processor.MediaItem, cfg processor.RunConfig) (processor.Summary, []processor.ItemResult, error)
}

type Plugin struct {
	store   *settings.Store
	runner  Runner
	logger  *zap.Logger
	current settings.Settings
	visible bool
	running atomic.Bool
}

func New(store *settings.Store, runner Runner, logger *zap.Logger) *Plugin {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Plugin{store: store, runner: runner, logger: logger, current: settings.Defaults()}
}

// OnStart restores the persisted settings and returns them.
func (p *Plugin) OnStart(ctx context.Context) settings.Settings {
	p.current = p.store.Load()
	p.logger.Debug("Plugin started",
		zap.String("format", p.current.Format),
		zap.String("quality", p.current.Quality),
		zap.String("saveMode", p.current.SaveMode))
	return p.current
}

func (p *Plugin) OnShow() {
	p.visible = true
	p.logger.Debug("Plugin shown")
}

func (p *Plugin) OnHide() {
	p.visible = false
	p.logger.Debug("Plugin hidden")
}

func (p *Plugin) Visible() bool {
	return p.visible
}

// Settings returns the settings currently in effect.
func (p *Plugin) Settings() settings.Settings {
	return p.current
}

// Report is the outcome of one run.
type Report struct {
	Summary processor.Summary
	Results []processor.ItemResult
}

// Message is the one-line notice shown once a run completes.
func (r Report) Message() string {
	if r.Summary.Failed > 0 {
		return fmt.Sprintf("Done: %d succeeded, %d failed", r.Summary.Succeeded, r.Summary.Failed)
	}
	return fmt.Sprintf("Processed %d images", r.Summary.Succeeded)
}

// Run persists cfg as the new settings and processes items. Only one run may
// be active at a time.
func (p *Plugin) Run(ctx context.Context, items []processor.MediaItem, cfg processor.RunConfig) (Report, error) {
	if len(items) == 0 {
		return Report{}, ErrNoSelection
	}
	if images, _ := processor.FilterImages(items); len(images) == 0 {
		return Report{}, ErrNoImages
	}

	if !p.running.CompareAndSwap(false, true) {
		return Report{}, ErrBusy
	}
	defer p.running.Store(false)

	used := settings.Settings{
		Format:   string(cfg.Format),
		Quality:  strconv.FormatFloat(cfg.Quality, 'f', -1, 64),
		SaveMode: string(cfg.SaveMode),
	}
	if err := p.store.Save(used); err != nil {
		p.logger.Warn("Failed to save settings", zap.String("path", p.store.Path()), zap.Error(err))
	} else {
		p.current = used
	}

	summary, results, err := p.runner.Run(ctx, items, cfg)
	if err != nil {
		return Report{}, err
	}
	return Report{Summary: summary, Results: results}, nil
}
