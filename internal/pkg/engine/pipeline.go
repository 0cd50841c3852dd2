// Package engine sequences the Extract -> Transform -> Load stages into runs,
// on demand or on a fixed schedule.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/valsync/valsync/entity"
	"github.com/valsync/valsync/pkg/notify"
)

// Run IDs are derived from the run's UTC start time.
const runIDFormat = "20060102_150405"

// Extractor fetches raw records for all endpoints. The returned map contains
// one key per requested endpoint, possibly with an empty record list.
type Extractor interface {
	ExtractAll(ctx context.Context, endpoints []string) map[string][]entity.Record
}

// Transformer maps raw endpoint records to flat tables.
type Transformer interface {
	TransformAll(raw map[string][]entity.Record) map[string]*entity.Table
}

// Loader persists the tables and records run metadata.
type Loader interface {
	LoadAll(ctx context.Context, tables map[string]*entity.Table, runID string) error
}

type Config struct {
	Endpoints []string
}

// Pipeline runs one full ETL cycle per Run() invocation. There is no state
// shared between runs.
type Pipeline struct {
	cfg         Config
	extractor   Extractor
	transformer Transformer
	loader      Loader
	notifier    *notify.Notifier
}

func NewPipeline(cfg Config, extractor Extractor, transformer Transformer, loader Loader, notifier *notify.Notifier) *Pipeline {
	return &Pipeline{
		cfg:         cfg,
		extractor:   extractor,
		transformer: transformer,
		loader:      loader,
		notifier:    notifier,
	}
}

// Run executes one full Extract -> Transform -> Load cycle as a single run
// identified by a timestamp-derived run ID. Extraction failures degrade to
// empty endpoint results inside the extractor; a load failure fails the run.
func (p *Pipeline) Run(ctx context.Context) error {

	runID := time.Now().UTC().Format(runIDFormat)
	n := p.notifier.WithRun(runID)
	start := time.Now()

	n.Notify(entity.NotifyLevelInfo, "Starting run")

	n.Notify(entity.NotifyLevelInfo, "Extract phase")
	raw := p.extractor.ExtractAll(ctx, p.cfg.Endpoints)

	n.Notify(entity.NotifyLevelInfo, "Transform phase")
	tables := p.transformer.TransformAll(raw)

	n.Notify(entity.NotifyLevelInfo, "Load phase")
	if err := p.loader.LoadAll(ctx, tables, runID); err != nil {
		n.Notify(entity.NotifyLevelError, "Run failed: %v", err)
		return fmt.Errorf("run %s: %w", runID, err)
	}

	n.Notify(entity.NotifyLevelInfo, "Run complete in %.2fs", time.Since(start).Seconds())
	return nil
}
