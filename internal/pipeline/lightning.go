package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/meteoaustral/goes-frames/internal/domain"
	"github.com/meteoaustral/goes-frames/internal/observability"
	"github.com/meteoaustral/goes-frames/internal/retry"
)

// BlobFetcher materializes a remote object in the local cache.
type BlobFetcher interface {
	Fetch(ctx context.Context, obj domain.RemoteObject) (domain.CachedBlob, error)
}

// LightningAggregator matches lightning products to one imagery scan and
// reduces their detections to a density grid.
type LightningAggregator struct {
	catalog    CatalogLister
	cache      BlobFetcher
	decoder    domain.LightningDecoder // nil leaves grids unset
	region     domain.Region
	interval   time.Duration // width w of the matching interval [scan-w/2, scan+w/2)
	resolution float64
	policy     retry.Policy
	metrics    *observability.Metrics
	logger     *slog.Logger
}

func NewLightningAggregator(catalog CatalogLister, cache BlobFetcher, decoder domain.LightningDecoder,
	region domain.Region, interval time.Duration, resolution float64, policy retry.Policy,
	metrics *observability.Metrics, logger *slog.Logger) *LightningAggregator {
	return &LightningAggregator{
		catalog:    catalog,
		cache:      cache,
		decoder:    decoder,
		region:     region,
		interval:   interval,
		resolution: resolution,
		policy:     policy,
		metrics:    metrics,
		logger:     logger,
	}
}

// Aggregate collects the lightning products whose scan start falls inside the
// half-open interval centered on scan, caches them, and bins their detections.
// The grid is nil when the interval holds no detections at all; a grid with no
// cells means detections existed but none inside the region. Listing failures
// surface as errors; a single object that cannot be fetched or decoded only
// costs its own detections.
func (la *LightningAggregator) Aggregate(ctx context.Context, scan time.Time) (*domain.DensityGrid, []domain.CachedBlob, error) {
	lo := scan.Add(-la.interval / 2)
	hi := scan.Add(la.interval / 2)

	var candidates []domain.RemoteObject
	for _, hour := range hoursTouching(lo, hi) {
		var page []domain.RemoteObject
		err := retry.Do(ctx, domain.Clock(), la.policy, func(ctx context.Context) error {
			var err error
			page, err = la.catalog.ListLightningHour(ctx, hour)
			return err
		})
		if err != nil {
			return nil, nil, fmt.Errorf("list lightning hour %s: %w", hour.Format("2006-01-02T15"), err)
		}
		candidates = append(candidates, page...)
	}

	matched := matchInterval(candidates, lo, hi)
	la.metrics.LightningMatched.Observe(float64(len(matched)))

	blobs := make([]domain.CachedBlob, 0, len(matched))
	var points []domain.Point
	for _, obj := range matched {
		blob, err := la.cache.Fetch(ctx, obj)
		if err != nil {
			la.logger.Warn("lightning object dropped", "key", obj.Key, "error", err)
			continue
		}
		blobs = append(blobs, blob)

		if la.decoder == nil {
			continue
		}
		batch, err := la.decoder.DecodeLightning(ctx, blob)
		if err != nil {
			la.logger.Warn("lightning decode failed", "key", obj.Key, "error", err)
			continue
		}
		points = append(points, batch.Points()...)
	}

	return domain.BuildDensityGrid(points, la.region, la.resolution), blobs, nil
}

// matchInterval keeps objects with scan start in [lo, hi), sorted ascending
// so blob lists come out in a stable order.
func matchInterval(objects []domain.RemoteObject, lo, hi time.Time) []domain.RemoteObject {
	var matched []domain.RemoteObject
	for _, o := range objects {
		if !o.Scan.Before(lo) && o.Scan.Before(hi) {
			matched = append(matched, o)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Scan.Before(matched[j].Scan) })
	return matched
}
