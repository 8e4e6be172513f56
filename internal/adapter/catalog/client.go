// Package catalog reads the public GOES archive bucket over anonymous HTTP.
// Listing uses the ListObjectsV2 REST interface; no AWS credentials are
// involved.
package catalog

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/meteoaustral/goes-frames/internal/domain"
	"github.com/meteoaustral/goes-frames/internal/observability"
)

// Client lists and downloads objects from one GOES bucket. Listing calls run
// through a circuit breaker so a bucket outage trips fast instead of burning
// the retry budget of every hour prefix in a window.
type Client struct {
	baseURL    string
	satellite  string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a catalog client for one bucket and satellite.
func NewClient(baseURL, satellite string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		satellite: satellite,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "goes-bucket",
			MaxRequests: 5,
			Interval:    1 * time.Minute,
			Timeout:     2 * time.Minute,
		}),
		metrics: metrics,
		logger:  logger,
	}
}

// ListImageryHour lists one hour bucket of imagery keys on the given channel.
// Objects whose keys do not parse are skipped with a warning; they cannot
// carry a scan time, so no timestamp is ever guessed for them.
func (c *Client) ListImageryHour(ctx context.Context, ch domain.Channel, hour time.Time) ([]domain.RemoteObject, error) {
	return c.listPrefix(ctx, domain.ProductImagery, domain.ImageryHourPrefix(c.satellite, ch, hour))
}

// ListLightningHour lists one hour bucket of lightning keys.
func (c *Client) ListLightningHour(ctx context.Context, hour time.Time) ([]domain.RemoteObject, error) {
	return c.listPrefix(ctx, domain.ProductLightning, domain.LightningHourPrefix(c.satellite, hour))
}

// Download streams one object into dst and returns the byte count. Retrying
// is the caller's concern.
func (c *Client) Download(ctx context.Context, key string, dst io.Writer) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+key, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("download %s: %w", key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("download %s: status %d", key, resp.StatusCode)
	}

	n, err := io.Copy(dst, resp.Body)
	if err != nil {
		return n, fmt.Errorf("download %s: %w", key, err)
	}

	c.metrics.DownloadBytes.Add(float64(n))
	c.metrics.DownloadDuration.Observe(time.Since(start).Seconds())
	return n, nil
}

func (c *Client) listPrefix(ctx context.Context, product domain.ProductFamily, prefix string) ([]domain.RemoteObject, error) {
	var objects []domain.RemoteObject
	token := ""
	for {
		page, err := c.listPage(ctx, prefix, token)
		if err != nil {
			c.metrics.CatalogRequests.WithLabelValues(string(product), "error").Inc()
			return nil, err
		}
		c.metrics.CatalogRequests.WithLabelValues(string(product), "success").Inc()

		for _, entry := range page.Contents {
			ts, err := domain.ParseKeyTimes(entry.Key)
			if err != nil {
				c.logger.Warn("skipping catalog entry", "key", entry.Key, "error", err)
				continue
			}
			objects = append(objects, domain.RemoteObject{
				Key:     entry.Key,
				Product: product,
				Scan:    ts.Start,
				End:     ts.End,
				Created: ts.Created,
				Size:    entry.Size,
			})
		}

		if !page.IsTruncated || page.NextContinuationToken == "" {
			return objects, nil
		}
		token = page.NextContinuationToken
	}
}

// listPage fetches one listing page through the circuit breaker. Every
// failure path wraps domain.ErrCatalogUnavailable.
func (c *Client) listPage(ctx context.Context, prefix, token string) (*listBucketResult, error) {
	params := url.Values{
		"list-type": {"2"},
		"prefix":    {prefix},
	}
	if token != "" {
		params.Set("continuation-token", token)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetchPage(ctx, c.baseURL+"/?"+params.Encode())
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: circuit breaker open", domain.ErrCatalogUnavailable)
		}
		return nil, err
	}
	return result.(*listBucketResult), nil
}

func (c *Client) fetchPage(ctx context.Context, fullURL string) (*listBucketResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrCatalogUnavailable, resp.StatusCode, body)
	}

	var page listBucketResult
	if err := xml.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("%w: decode listing: %v", domain.ErrCatalogUnavailable, err)
	}
	return &page, nil
}

// ListObjectsV2 response subset.

type listBucketResult struct {
	XMLName               xml.Name    `xml:"ListBucketResult"`
	IsTruncated           bool        `xml:"IsTruncated"`
	NextContinuationToken string      `xml:"NextContinuationToken"`
	Contents              []listEntry `xml:"Contents"`
}

type listEntry struct {
	Key  string `xml:"Key"`
	Size int64  `xml:"Size"`
}
