package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/groundwater-dashboard/internal/domain"
	"github.com/couchcryptid/groundwater-dashboard/internal/observability"
	"github.com/couchcryptid/storm-data-shared/retry"
)

// ErrNotLoaded is returned while the dataset load is still in progress.
var ErrNotLoaded = errors.New("dataset not loaded yet")

// DatasetLoader produces the raw station list.
type DatasetLoader interface {
	LoadStations(ctx context.Context) ([]domain.Station, error)
}

// BatchLoader writes recharge events to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, events []domain.RechargeEvent) error
}

// Options configures a Pipeline.
type Options struct {
	// SourceName labels load metrics (mock, http, dir).
	SourceName string
	// BatchSize is the number of recharge events per published batch.
	BatchSize int
}

// Pipeline loads the dataset once, publishes the detected recharge events
// and then serves the dataset read-only.
type Pipeline struct {
	source   DatasetLoader
	enricher *StationEnricher
	sink     BatchLoader
	logger   *slog.Logger
	metrics  *observability.Metrics
	opts     Options

	dataset atomic.Pointer[domain.Dataset]
	loadErr atomic.Pointer[error]
	ready   atomic.Bool
}

// New creates a Pipeline. enricher and sink may be nil to skip geocoding and
// publishing.
func New(source DatasetLoader, enricher *StationEnricher, sink BatchLoader, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Pipeline {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 50
	}
	return &Pipeline{
		source:   source,
		enricher: enricher,
		sink:     sink,
		logger:   logger,
		metrics:  metrics,
		opts:     opts,
	}
}

// CheckReadiness returns nil once the dataset is loaded. A failed load is
// terminal and reported here for the lifetime of the process.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	_, err := p.Dataset()
	return err
}

// Ready reports whether the dataset has been loaded.
func (p *Pipeline) Ready() bool {
	return p.ready.Load()
}

// Dataset returns the loaded dataset, the terminal load error, or ErrNotLoaded.
func (p *Pipeline) Dataset() (*domain.Dataset, error) {
	if ds := p.dataset.Load(); ds != nil {
		return ds, nil
	}
	if errp := p.loadErr.Load(); errp != nil {
		return nil, *errp
	}
	return nil, ErrNotLoaded
}

// Run loads the dataset and publishes its recharge events. A load failure is
// recorded and logged but not returned: the process keeps serving and reports
// the failure through readiness. Publishing retries with backoff until it
// succeeds or ctx is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "source", p.opts.SourceName, "publish", p.sink != nil)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	ds, err := p.load(ctx)
	if err != nil {
		if ctx.Err() != nil {
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		}
		p.metrics.DatasetLoads.WithLabelValues(p.opts.SourceName, "error").Inc()
		p.loadErr.Store(&err)
		p.logger.Error("dataset load failed", "source", p.opts.SourceName, "error", err)
		return nil
	}

	events := domain.DetectAllRechargeEvents(ds.Stations())
	p.metrics.RechargeEventsDetected.Add(float64(len(events)))
	p.logger.Info("recharge events detected", "count", len(events))

	if p.sink == nil || len(events) == 0 {
		return nil
	}
	p.publish(ctx, events)
	return nil
}

func (p *Pipeline) load(ctx context.Context) (*domain.Dataset, error) {
	start := time.Now()

	stations, err := p.source.LoadStations(ctx)
	if err != nil {
		return nil, err
	}
	if p.enricher != nil {
		stations = p.enricher.Enrich(ctx, stations)
	}
	ds, err := domain.NewDataset(stations)
	if err != nil {
		return nil, fmt.Errorf("build dataset: %w", err)
	}

	p.dataset.Store(ds)
	p.ready.Store(true)
	p.metrics.DatasetLoads.WithLabelValues(p.opts.SourceName, "success").Inc()
	p.metrics.DatasetLoadDuration.Observe(time.Since(start).Seconds())
	p.metrics.StationsLoaded.Set(float64(ds.Len()))
	p.logger.Info("dataset loaded", "stations", ds.Len(), "duration", time.Since(start))
	return ds, nil
}

// publish writes events in batches. Each batch is retried until it succeeds
// or the context is cancelled.
func (p *Pipeline) publish(ctx context.Context, events []domain.RechargeEvent) {
	// Exponential backoff: start at 200ms, double each retry, cap at 5s.
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	for start := 0; start < len(events); {
		end := min(start+p.opts.BatchSize, len(events))
		batch := events[start:end]

		if err := p.sink.LoadBatch(ctx, batch); err != nil {
			if ctx.Err() != nil {
				p.logger.Info("pipeline stopping", "reason", ctx.Err(), "unpublished", len(events)-start)
				return
			}
			p.metrics.PublishErrors.Inc()
			p.logger.Error("publish batch failed", "error", err, "batch_size", len(batch))
			if !p.backoffOrStop(ctx, &backoff, maxBackoff) {
				return
			}
			continue
		}

		p.metrics.BatchSize.Observe(float64(len(batch)))
		p.metrics.RechargeEventsPublished.Add(float64(len(batch)))
		backoff = 200 * time.Millisecond
		start = end
	}
	p.logger.Info("recharge events published", "count", len(events))
}

// backoffOrStop checks for context cancellation, sleeps with the current backoff,
// and advances the backoff. Returns false if the pipeline should stop.
func (p *Pipeline) backoffOrStop(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	if !retry.SleepWithContext(ctx, *backoff) {
		return false
	}
	*backoff = retry.NextBackoff(*backoff, maxBackoff)
	return true
}
