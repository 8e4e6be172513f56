// Package blobcache keeps fetched bucket objects on local disk so repeated
// assemblies reuse bytes already on hand.
package blobcache

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/meteoaustral/goes-frames/internal/domain"
	"github.com/meteoaustral/goes-frames/internal/observability"
	"github.com/meteoaustral/goes-frames/internal/retry"
)

// Downloader streams one remote object into dst. *catalog.Client satisfies
// this.
type Downloader interface {
	Download(ctx context.Context, key string, dst io.Writer) (int64, error)
}

// Store is a disk-backed download cache, one file per object named by the
// key's basename. Writes land in a sibling temp file and are renamed into
// place, so a crashed or cancelled download never leaves a partial blob under
// the final name. Concurrent fetches of the same key may download twice; the
// rename keeps whichever copy lands last, and both are identical.
type Store struct {
	root       string
	downloader Downloader
	policy     retry.Policy
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewStore creates the cache directory if needed and returns the store.
func NewStore(root string, d Downloader, policy retry.Policy, metrics *observability.Metrics, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &Store{
		root:       root,
		downloader: d,
		policy:     policy,
		metrics:    metrics,
		logger:     logger,
	}, nil
}

// Fetch returns a local copy of the object, downloading it if absent. A blob
// already on disk short-circuits without touching the network. When every
// retry attempt fails the error wraps domain.ErrDownloadFailed.
func (s *Store) Fetch(ctx context.Context, obj domain.RemoteObject) (domain.CachedBlob, error) {
	path := filepath.Join(s.root, filepath.Base(obj.Key))

	if fi, err := os.Stat(path); err == nil {
		s.metrics.CacheLookups.WithLabelValues("hit").Inc()
		return domain.CachedBlob{Key: obj.Key, Path: path, Length: fi.Size()}, nil
	}
	s.metrics.CacheLookups.WithLabelValues("miss").Inc()

	var n int64
	err := retry.Do(ctx, domain.Clock(), s.policy, func(ctx context.Context) error {
		var err error
		n, err = s.download(ctx, obj.Key, path)
		if err != nil {
			s.logger.Warn("download attempt failed", "key", obj.Key, "error", err)
		}
		return err
	})
	if err != nil {
		return domain.CachedBlob{}, fmt.Errorf("fetch %s: %w: %v", obj.Key, domain.ErrDownloadFailed, err)
	}

	s.logger.Debug("blob cached", "key", obj.Key, "bytes", n)
	return domain.CachedBlob{Key: obj.Key, Path: path, Length: n}, nil
}

// download writes the object to a temp file beside path, then renames it in.
func (s *Store) download(ctx context.Context, key, path string) (int64, error) {
	tmp, err := os.CreateTemp(s.root, filepath.Base(path)+".part-*")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name()) // gone already after a successful rename
	}()

	n, err := s.downloader.Download(ctx, key, tmp)
	if err != nil {
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, fmt.Errorf("rename into cache: %w", err)
	}
	return n, nil
}
