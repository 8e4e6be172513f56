package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"

	"github.com/meteoaustral/goes-frames/internal/domain"
	"github.com/meteoaustral/goes-frames/internal/observability"
)

// FrameAssembler produces one frame set per refresh.
type FrameAssembler interface {
	Assemble(ctx context.Context, req AssembleRequest) (domain.FrameSet, error)
}

// FrameSink receives each assembled set. *store.Frames satisfies it.
type FrameSink interface {
	Put(set domain.FrameSet)
}

// Announcer publishes each assembled set downstream.
type Announcer interface {
	Announce(ctx context.Context, set domain.FrameSet) error
}

// Runner refreshes the frame set on a fixed cadence and hands each result to
// the sink and, when configured, the announcer.
type Runner struct {
	assembler FrameAssembler
	sink      FrameSink
	announcer Announcer // nil disables announcements
	interval  time.Duration
	metrics   *observability.Metrics
	logger    *slog.Logger

	scheduler *gocron.Scheduler
	running   atomic.Bool
	ready     atomic.Bool
}

// NewRunner creates a Runner that refreshes every interval once started.
func NewRunner(assembler FrameAssembler, sink FrameSink, announcer Announcer,
	interval time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Runner {
	return &Runner{
		assembler: assembler,
		sink:      sink,
		announcer: announcer,
		interval:  interval,
		metrics:   metrics,
		logger:    logger,
	}
}

// Start schedules periodic refreshes. The first run fires immediately, so the
// service becomes ready as soon as one window has been assembled.
func (r *Runner) Start(ctx context.Context) error {
	r.scheduler = gocron.NewScheduler(time.UTC)
	_, err := r.scheduler.Every(r.interval).Do(func() {
		if err := r.RunOnce(ctx); err != nil {
			r.logger.Error("refresh failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule refresh: %w", err)
	}
	r.scheduler.StartAsync()
	r.logger.Info("runner started", "interval", r.interval)
	return nil
}

// Stop halts the refresh schedule. A refresh already in flight finishes.
func (r *Runner) Stop() {
	if r.scheduler != nil {
		r.scheduler.Stop()
	}
}

// RunOnce assembles and publishes a single frame set. If a previous refresh is
// still in flight the call is skipped, so slow windows never pile up.
func (r *Runner) RunOnce(ctx context.Context) error {
	if !r.running.CompareAndSwap(false, true) {
		r.logger.Warn("previous refresh still running, skipping")
		return nil
	}
	defer r.running.Store(false)

	runID := uuid.NewString()
	start := domain.Now()
	r.metrics.RefreshRuns.Inc()

	set, err := r.assembler.Assemble(ctx, AssembleRequest{RunID: runID})
	if err != nil {
		r.metrics.RefreshFailures.Inc()
		return fmt.Errorf("run %s: %w", runID, err)
	}

	r.sink.Put(set)
	r.ready.Store(true)
	r.metrics.RefreshDuration.Observe(domain.Now().Sub(start).Seconds())
	r.metrics.FramesInStore.Set(float64(len(set.Frames)))
	r.metrics.LastRefreshTime.Set(float64(set.AssembledAt.Unix()))

	if r.announcer != nil {
		if err := r.announcer.Announce(ctx, set); err != nil {
			// The set is already being served locally, so a failed
			// announcement does not fail the run.
			r.logger.Error("announce failed", "run_id", runID, "error", err)
		}
	}

	r.logger.Info("refresh complete",
		"run_id", runID, "frames", len(set.Frames), "elapsed", domain.Now().Sub(start))
	return nil
}

// CheckReadiness returns nil once at least one refresh has completed,
// or an error describing why the service is not yet ready.
func (r *Runner) CheckReadiness(_ context.Context) error {
	if !r.ready.Load() {
		return errors.New("first refresh has not completed yet")
	}
	return nil
}
