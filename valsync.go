// Package valsync periodically pulls reference data (agents, weapons, maps,
// game modes) from the Valorant public API, reshapes the nested JSON into
// flat relational tables, and persists them into a local SQLite database,
// recording run metadata for observability.
package valsync

import (
	"context"
	"errors"

	"github.com/teltech/logger"
	"github.com/valsync/valsync/entity"
	"github.com/valsync/valsync/internal/pkg/engine"
	"github.com/valsync/valsync/internal/pkg/extract"
	"github.com/valsync/valsync/internal/pkg/load"
	"github.com/valsync/valsync/internal/pkg/transform"
	"github.com/valsync/valsync/pkg/notify"
)

var ErrConfigNotInitialized = errors.New("valsync.Config needs to be created with NewConfig()")

// Valsync wires the pipeline stages together, each with its own injected
// notifier, and exposes single-shot and scheduled execution.
type Valsync struct {
	cfg        *Config
	notifyChan entity.NotifyChan
	loader     *load.Loader
	pipeline   *engine.Pipeline
	scheduler  *engine.Scheduler
}

// New creates and configures the pipeline based on the provided config,
// which needs to be created with NewConfig().
func New(ctx context.Context, cfg *Config) (*Valsync, error) {

	if cfg == nil || !cfg.initialized {
		return nil, ErrConfigNotInitialized
	}

	ch := make(entity.NotifyChan, cfg.Ops.NotifyChanSize)
	var log *logger.Log
	if cfg.Ops.Log {
		log = logger.New()
	}
	instance := engine.NewInstanceAlias()

	extractor := extract.NewExtractor(extract.Config{
		BaseURL:             cfg.API.BaseURL,
		Language:            cfg.API.Language,
		RequestDelay:        cfg.API.RequestDelay,
		Timeout:             cfg.API.Timeout,
		MaxAttempts:         cfg.API.MaxAttempts,
		InitialRetryBackoff: cfg.API.RetryBackoff,
	}, notify.New(ch, log, 2, "extractor", instance))

	transformer := transform.NewTransformer(notify.New(ch, log, 2, "transformer", instance))

	loader, err := load.NewLoader(load.Config{
		DBPath: cfg.Database.Path,
	}, notify.New(ch, log, 2, "loader", instance))
	if err != nil {
		return nil, err
	}

	pipeline := engine.NewPipeline(engine.Config{
		Endpoints: cfg.API.Endpoints,
	}, extractor, transformer, loader, notify.New(ch, log, 2, "pipeline", instance))

	scheduler := engine.NewScheduler(pipeline, cfg.Schedule.Interval, cfg.Schedule.RunOnStart,
		notify.New(ch, log, 2, "scheduler", instance))

	return &Valsync{
		cfg:        cfg,
		notifyChan: ch,
		loader:     loader,
		pipeline:   pipeline,
		scheduler:  scheduler,
	}, nil
}

// Run executes a single Extract -> Transform -> Load cycle and returns its
// outcome.
func (v *Valsync) Run(ctx context.Context) error {
	return v.pipeline.Run(ctx)
}

// RunScheduled blocks, running a full cycle on the configured interval (and
// immediately on start if so configured), until ctx is canceled. A failed run
// is logged and does not stop the schedule.
func (v *Valsync) RunScheduled(ctx context.Context) error {
	return v.scheduler.Run(ctx)
}

// NotifyChannel returns the channel carrying all operational events
// (phase markers, per-endpoint record counts, per-table row counts, run
// outcomes).
func (v *Valsync) NotifyChannel() entity.NotifyChan {
	return v.notifyChan
}

// Shutdown releases the database handle. It must not be called while a run is
// in progress.
func (v *Valsync) Shutdown() error {
	return v.loader.Close()
}
