// Command framecheck assembles one frame window against the configured bucket
// and prints what it found. Useful for verifying bucket, channel, and region
// settings, or for inspecting a historical window, without running the
// service.
//
// Usage:
//
//	go run ./cmd/framecheck
//	go run ./cmd/framecheck -at 2025-02-25T21:00:00Z -window 30m
//	go run ./cmd/framecheck -region easter-island -json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path"
	"time"

	"github.com/meteoaustral/goes-frames/internal/adapter/blobcache"
	"github.com/meteoaustral/goes-frames/internal/adapter/catalog"
	"github.com/meteoaustral/goes-frames/internal/config"
	"github.com/meteoaustral/goes-frames/internal/domain"
	"github.com/meteoaustral/goes-frames/internal/observability"
	"github.com/meteoaustral/goes-frames/internal/pipeline"
)

func main() {
	at := flag.String("at", "", "window end as RFC 3339, e.g. 2025-02-25T21:00:00Z (default now)")
	window := flag.Duration("window", 0, "trailing window length (default from FRAME_WINDOW)")
	channel := flag.String("channel", "", "ABI channel, e.g. C13 (default from ABI_CHANNEL)")
	region := flag.String("region", "", "region preset or min_lon,max_lon,min_lat,max_lat bbox (default from REGION)")
	asJSON := flag.Bool("json", false, "print the assembled frame set as JSON instead of a table")
	flag.Parse()

	if code := run(*at, *window, *channel, *region, *asJSON); code != 0 {
		os.Exit(code)
	}
}

func run(at string, window time.Duration, channel, region string, asJSON bool) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load config: %v\n", err)
		return 1
	}

	var end time.Time
	if at != "" {
		end, err = time.Parse(time.RFC3339, at)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: invalid -at: %v\n", err)
			return 1
		}
	}
	if window > 0 {
		cfg.Window = window
	}
	if channel != "" {
		cfg.Channel, err = domain.ParseChannel(channel)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: invalid -channel: %v\n", err)
			return 1
		}
	}
	if region != "" {
		cfg.Region, err = resolveRegion(region)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: invalid -region: %v\n", err)
			return 1
		}
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetricsForTesting()

	client := catalog.NewClient(cfg.BucketBaseURL, cfg.Satellite, cfg.HTTPTimeout, metrics, logger)
	cache, err := blobcache.NewStore(cfg.CacheDir, client, cfg.Retry, metrics, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: open blob cache: %v\n", err)
		return 1
	}

	discovery := pipeline.NewDiscovery(client, cfg.Channel, cfg.Window, cfg.Retry, logger)
	aggregator := pipeline.NewLightningAggregator(client, cache, nil,
		cfg.Region, cfg.MatchInterval, cfg.GridResolution, cfg.Retry, metrics, logger)
	assembler := pipeline.NewAssembler(discovery, aggregator, cache, nil, pipeline.AssemblerOptions{
		Region:  cfg.Region,
		Channel: cfg.Channel,
		Window:  cfg.Window,
		Workers: cfg.FetchConcurrency,
	}, metrics, logger)

	started := time.Now()
	set, err := assembler.Assemble(context.Background(), pipeline.AssembleRequest{RunID: "framecheck", End: end})
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: assemble window: %v\n", err)
		return 1
	}

	if asJSON {
		out, err := json.MarshalIndent(set, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: encode frame set: %v\n", err)
			return 1
		}
		fmt.Println(string(out))
		return 0
	}

	printReport(cfg, set, time.Since(started))
	return 0
}

func resolveRegion(s string) (domain.Region, error) {
	if r, ok := domain.PresetRegion(s); ok {
		return r, nil
	}
	return domain.ParseBBox(s)
}

func printReport(cfg *config.Config, set domain.FrameSet, elapsed time.Duration) {
	fmt.Println("=== goes-frames window check ===")
	fmt.Println()
	fmt.Printf("Bucket:  %s (%s)\n", cfg.BucketBaseURL, cfg.Satellite)
	fmt.Printf("Channel: %s\n", set.Channel)
	fmt.Printf("Region:  %s\n", set.Region.Name)
	fmt.Printf("Window:  %s .. %s\n",
		set.WindowStart.Format(time.RFC3339), set.WindowEnd.Format(time.RFC3339))
	fmt.Println()

	if len(set.Frames) == 0 {
		fmt.Println("No frames in this window.")
		return
	}

	fmt.Printf("  %-22s %-60s %10s  %s\n", "SCAN (UTC)", "IMAGERY", "SIZE", "GLM")
	for _, f := range set.Frames {
		fmt.Printf("  %-22s %-60s %10s  %3d\n",
			f.Scan.Format(time.RFC3339),
			path.Base(f.Imagery.Key),
			humanBytes(f.Imagery.Length),
			len(f.Lightning))
	}

	fmt.Println()
	fmt.Printf("%d frames assembled in %s.\n", len(set.Frames), elapsed.Round(100*time.Millisecond))
}

func humanBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
