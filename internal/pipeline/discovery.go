package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/meteoaustral/goes-frames/internal/domain"
	"github.com/meteoaustral/goes-frames/internal/retry"
)

// CatalogLister lists hour buckets of the remote catalog.
type CatalogLister interface {
	ListImageryHour(ctx context.Context, ch domain.Channel, hour time.Time) ([]domain.RemoteObject, error)
	ListLightningHour(ctx context.Context, hour time.Time) ([]domain.RemoteObject, error)
}

// Discovery selects the imagery scans that make up one trailing window.
type Discovery struct {
	catalog CatalogLister
	channel domain.Channel
	window  time.Duration
	policy  retry.Policy
	logger  *slog.Logger
}

func NewDiscovery(catalog CatalogLister, channel domain.Channel, window time.Duration, policy retry.Policy, logger *slog.Logger) *Discovery {
	return &Discovery{
		catalog: catalog,
		channel: channel,
		window:  window,
		policy:  policy,
		logger:  logger,
	}
}

// Discover lists every hour bucket the window (end-window, end] touches and
// reduces the result to one object per scan timestamp, ascending. A zero end
// means now. Scans the archive never produced are simply absent; nothing is
// backfilled. Listing failures that survive the retry budget are returned
// unchanged, so callers can match domain.ErrCatalogUnavailable.
func (d *Discovery) Discover(ctx context.Context, end time.Time) ([]domain.RemoteObject, error) {
	if end.IsZero() {
		end = domain.Now()
	}
	end = end.UTC()
	start := end.Add(-d.window)

	var candidates []domain.RemoteObject
	for _, hour := range hoursTouching(start, end) {
		var page []domain.RemoteObject
		err := retry.Do(ctx, domain.Clock(), d.policy, func(ctx context.Context) error {
			var err error
			page, err = d.catalog.ListImageryHour(ctx, d.channel, hour)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("list imagery hour %s: %w", hour.Format("2006-01-02T15"), err)
		}
		candidates = append(candidates, page...)
	}

	selected := dedupeByScan(d.filterWindow(candidates, start, end))
	sort.Slice(selected, func(i, j int) bool { return selected[i].Scan.Before(selected[j].Scan) })

	d.logger.Debug("window discovered",
		"start", start, "end", end, "candidates", len(candidates), "selected", len(selected))
	return selected, nil
}

// filterWindow keeps objects whose scan start lies in (start, end] and whose
// key carries the configured channel. The hour prefixes already narrow the
// listing to one channel; the parse check guards against strays.
func (d *Discovery) filterWindow(objects []domain.RemoteObject, start, end time.Time) []domain.RemoteObject {
	var kept []domain.RemoteObject
	for _, o := range objects {
		if !o.Scan.After(start) || o.Scan.After(end) {
			continue
		}
		if ch, err := domain.ParseKeyChannel(o.Key); err != nil || ch != d.channel {
			continue
		}
		kept = append(kept, o)
	}
	return kept
}

// dedupeByScan keeps one object per scan timestamp: the one with the latest
// creation stamp, ties broken toward the lexicographically later key so
// reprocessed files win deterministically.
func dedupeByScan(objects []domain.RemoteObject) []domain.RemoteObject {
	byScan := make(map[int64]domain.RemoteObject, len(objects))
	for _, o := range objects {
		k := o.Scan.UnixNano()
		cur, seen := byScan[k]
		if !seen || o.Created.After(cur.Created) || (o.Created.Equal(cur.Created) && o.Key > cur.Key) {
			byScan[k] = o
		}
	}

	out := make([]domain.RemoteObject, 0, len(byScan))
	for _, o := range byScan {
		out = append(out, o)
	}
	return out
}

// hoursTouching lists the UTC hour buckets a time range overlaps, in order.
func hoursTouching(start, end time.Time) []time.Time {
	var hours []time.Time
	for h := start.UTC().Truncate(time.Hour); !h.After(end); h = h.Add(time.Hour) {
		hours = append(hours, h)
	}
	return hours
}
