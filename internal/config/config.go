package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/meteoaustral/goes-frames/internal/domain"
	"github.com/meteoaustral/goes-frames/internal/retry"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	// Remote bucket.
	BucketBaseURL string
	Satellite     string
	Channel       domain.Channel
	HTTPTimeout   time.Duration

	// Frame selection.
	Region         domain.Region
	Window         time.Duration
	ScanCadence    time.Duration
	MatchInterval  time.Duration
	GridResolution float64

	// Fetching.
	CacheDir         string
	FetchConcurrency int
	Retry            retry.Policy

	// Service loop and surfaces.
	RefreshInterval time.Duration
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Kafka frame-set announcements.
	KafkaBrokers []string
	KafkaTopic   string
	KafkaEnabled bool
}

// Load reads configuration from environment variables, applying defaults where
// unset. A .env file in the working directory is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	channel, err := domain.ParseChannel(envOrDefault("ABI_CHANNEL", string(domain.DefaultChannel)))
	if err != nil {
		return nil, fmt.Errorf("invalid ABI_CHANNEL: %w", err)
	}

	region, err := parseRegion()
	if err != nil {
		return nil, err
	}

	window, err := durationVar("FRAME_WINDOW", "60m")
	if err != nil {
		return nil, err
	}
	cadence, err := durationVar("SCAN_CADENCE", "10m")
	if err != nil {
		return nil, err
	}
	matchInterval := cadence
	if os.Getenv("MATCH_INTERVAL") != "" {
		if matchInterval, err = durationVar("MATCH_INTERVAL", ""); err != nil {
			return nil, err
		}
	}

	resolution, err := floatVar("GRID_RESOLUTION", 0.5)
	if err != nil {
		return nil, err
	}

	concurrency, err := intVar("FETCH_CONCURRENCY", 6, 1, 16)
	if err != nil {
		return nil, err
	}

	attempts, err := intVar("RETRY_ATTEMPTS", 3, 1, 10)
	if err != nil {
		return nil, err
	}
	baseDelay, err := durationVar("RETRY_BASE_DELAY", "500ms")
	if err != nil {
		return nil, err
	}
	maxDelay, err := durationVar("RETRY_MAX_DELAY", "10s")
	if err != nil {
		return nil, err
	}

	refreshInterval, err := durationVar("REFRESH_INTERVAL", "5m")
	if err != nil {
		return nil, err
	}
	httpTimeout, err := durationVar("HTTP_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := durationVar("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	brokers := parseBrokers(os.Getenv("KAFKA_BROKERS"))
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		BucketBaseURL: envOrDefault("BUCKET_URL", "https://noaa-goes19.s3.amazonaws.com"),
		Satellite:     envOrDefault("SATELLITE", "G19"),
		Channel:       channel,
		HTTPTimeout:   httpTimeout,

		Region:         region,
		Window:         window,
		ScanCadence:    cadence,
		MatchInterval:  matchInterval,
		GridResolution: resolution,

		CacheDir:         envOrDefault("CACHE_DIR", filepath.Join(os.TempDir(), "goes-frames")),
		FetchConcurrency: concurrency,
		Retry: retry.Policy{
			MaxAttempts: attempts,
			BaseDelay:   baseDelay,
			Multiplier:  2,
			MaxDelay:    maxDelay,
		},

		RefreshInterval: refreshInterval,
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		KafkaBrokers: brokers,
		KafkaTopic:   envOrDefault("KAFKA_TOPIC", "goes-frame-sets"),
		KafkaEnabled: kafkaEnabled,
	}

	if cfg.BucketBaseURL == "" {
		return nil, fmt.Errorf("BUCKET_URL is required")
	}
	if cfg.Satellite == "" {
		return nil, fmt.Errorf("SATELLITE is required")
	}
	if cfg.Window < cfg.ScanCadence {
		return nil, fmt.Errorf("FRAME_WINDOW %s is shorter than SCAN_CADENCE %s", cfg.Window, cfg.ScanCadence)
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, fmt.Errorf("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}

	return cfg, nil
}

// parseRegion resolves the display region. REGION_BBOX wins over the REGION
// preset name so operators can point the service anywhere on the full disk.
func parseRegion() (domain.Region, error) {
	if bbox := os.Getenv("REGION_BBOX"); bbox != "" {
		r, err := domain.ParseBBox(bbox)
		if err != nil {
			return domain.Region{}, fmt.Errorf("invalid REGION_BBOX: %w", err)
		}
		return r, nil
	}

	name := envOrDefault("REGION", domain.ChileContinental.Name)
	r, ok := domain.PresetRegion(name)
	if !ok {
		return domain.Region{}, fmt.Errorf("unknown REGION %q: want one of %s", name, strings.Join(domain.PresetNames(), ", "))
	}
	return r, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func durationVar(name, def string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(name, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: want a positive duration", name)
	}
	return d, nil
}

func intVar(name string, def, lo, hi int) (int, error) {
	s := os.Getenv(name)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("invalid %s: want an integer in [%d, %d]", name, lo, hi)
	}
	return n, nil
}

func floatVar(name string, def float64) (float64, error) {
	s := os.Getenv(name)
	if s == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 {
		return 0, fmt.Errorf("invalid %s: want a positive number", name)
	}
	return f, nil
}
