package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/meteoaustral/goes-frames/internal/domain"
	"github.com/meteoaustral/goes-frames/internal/observability"
)

// AssemblerOptions fixes the shape of every set an Assembler produces.
type AssemblerOptions struct {
	Region  domain.Region
	Channel domain.Channel
	Window  time.Duration
	Workers int
}

// AssembleRequest names one assembly run. A zero End means now, which is the
// live-service case; the inspection CLI passes historical ends.
type AssembleRequest struct {
	RunID string
	End   time.Time
}

// Assembler turns one trailing window of the archive into a finished frame
// set: discover scans, cache their payloads, match lightning, decode.
type Assembler struct {
	discovery *Discovery
	lightning *LightningAggregator
	cache     BlobFetcher
	decoder   domain.ImageryDecoder // nil leaves rasters unset
	opts      AssemblerOptions
	metrics   *observability.Metrics
	logger    *slog.Logger
}

func NewAssembler(discovery *Discovery, lightning *LightningAggregator, cache BlobFetcher,
	decoder domain.ImageryDecoder, opts AssemblerOptions,
	metrics *observability.Metrics, logger *slog.Logger) *Assembler {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Assembler{
		discovery: discovery,
		lightning: lightning,
		cache:     cache,
		decoder:   decoder,
		opts:      opts,
		metrics:   metrics,
		logger:    logger,
	}
}

// Assemble builds the frame set for the window ending at req.End. Re-running
// with the same end yields the same set; blobs already cached are not fetched
// again. A catalog outage during discovery fails the whole run. A frame whose
// imagery cannot be fetched or decoded is dropped with a warning; lightning
// trouble only strips the affected frame's grid.
func (a *Assembler) Assemble(ctx context.Context, req AssembleRequest) (domain.FrameSet, error) {
	end := req.End
	if end.IsZero() {
		end = domain.Now()
	}
	end = end.UTC()

	objects, err := a.discovery.Discover(ctx, end)
	if err != nil {
		return domain.FrameSet{}, fmt.Errorf("discover window: %w", err)
	}

	frames := a.assembleFrames(ctx, objects)

	set := domain.FrameSet{
		RunID:       req.RunID,
		Region:      a.opts.Region,
		Channel:     a.opts.Channel,
		WindowStart: end.Add(-a.opts.Window),
		WindowEnd:   end,
		Frames:      frames,
		AssembledAt: domain.Now(),
	}
	a.logger.Info("frame set assembled",
		"run_id", req.RunID, "end", end, "discovered", len(objects), "frames", len(frames))
	return set, nil
}

// assembleFrames builds frames concurrently under a worker cap. Results keep
// the discovery order: slot i belongs to objects[i], and dropped frames leave
// a gap that compaction removes, so the set stays ascending with no duplicate
// scans.
func (a *Assembler) assembleFrames(ctx context.Context, objects []domain.RemoteObject) []domain.Frame {
	results := make([]*domain.Frame, len(objects))
	sem := make(chan struct{}, a.opts.Workers)
	var wg sync.WaitGroup

	for i, obj := range objects {
		wg.Add(1)
		go func(i int, obj domain.RemoteObject) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			frame, err := a.assembleOne(ctx, obj)
			if err != nil {
				a.logger.Warn("frame dropped", "key", obj.Key, "scan", obj.Scan, "error", err)
				return
			}
			results[i] = frame
		}(i, obj)
	}
	wg.Wait()

	frames := make([]domain.Frame, 0, len(objects))
	for _, f := range results {
		if f != nil {
			frames = append(frames, *f)
		}
	}
	return frames
}

func (a *Assembler) assembleOne(ctx context.Context, obj domain.RemoteObject) (*domain.Frame, error) {
	blob, err := a.cache.Fetch(ctx, obj)
	if err != nil {
		a.metrics.FramesSkipped.WithLabelValues("download").Inc()
		return nil, err
	}

	frame := &domain.Frame{
		Scan:        obj.Scan,
		Channel:     a.opts.Channel,
		Imagery:     blob,
		AssembledAt: domain.Now(),
	}

	if a.decoder != nil {
		raster, err := a.decoder.DecodeImagery(ctx, blob)
		if err != nil {
			a.metrics.FramesSkipped.WithLabelValues("decode").Inc()
			if !errors.Is(err, domain.ErrDecodeFailed) {
				err = fmt.Errorf("%w: %v", domain.ErrDecodeFailed, err)
			}
			return nil, fmt.Errorf("decode imagery %s: %w", obj.Key, err)
		}
		frame.Raster = raster
	}

	grid, lightning, err := a.lightning.Aggregate(ctx, obj.Scan)
	if err != nil {
		// Lightning is enrichment; the frame ships without a grid.
		a.logger.Warn("lightning unavailable for frame", "scan", obj.Scan, "error", err)
	} else {
		frame.Density = grid
		frame.Lightning = lightning
	}

	a.metrics.FramesAssembled.Inc()
	return frame, nil
}
