// Package bronze acquires the raw source files into the Bronze directory
// and reads them back as raw batches for validation.
package bronze

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/Rabbins/nyc-use-case/internal/domain"
	"github.com/Rabbins/nyc-use-case/internal/observability"
)

// Downloader fetches source files into the Bronze directory. A file already
// present is reused as-is, so repeated runs work offline once the sources
// are cached.
type Downloader struct {
	dir        string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *observability.Metrics

	maxRetries      uint64
	initialInterval time.Duration
	maxInterval     time.Duration
	userAgent       string
}

// NewDownloader creates a Downloader writing into dir.
func NewDownloader(dir string, logger *slog.Logger, metrics *observability.Metrics) *Downloader {
	return &Downloader{
		dir: dir,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
		logger:          logger,
		metrics:         metrics,
		maxRetries:      3,
		initialInterval: 500 * time.Millisecond,
		maxInterval:     10 * time.Second,
		userAgent:       "nyc-collision-etl/1.0",
	}
}

// Fetch downloads rawURL into filename under the Bronze directory unless the
// file already exists. Returns the path of the cached file.
func (d *Downloader) Fetch(ctx context.Context, source domain.Source, rawURL, filename string) (string, error) {
	path := filepath.Join(d.dir, filename)
	if _, err := os.Stat(path); err == nil {
		d.logger.Debug("bronze file cached", "source", string(source), "path", path)
		d.metrics.FetchRequests.WithLabelValues(string(source), "cached").Inc()
		return path, nil
	}

	if rawURL == "" {
		return "", &domain.ConfigurationError{
			Option: fmt.Sprintf("sources.%s.url", source),
			Reason: "no URL configured and no cached file",
		}
	}
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return "", fmt.Errorf("create bronze dir: %w", err)
	}

	start := time.Now()
	if err := d.download(ctx, rawURL, path); err != nil {
		d.metrics.FetchRequests.WithLabelValues(string(source), "error").Inc()
		return "", fmt.Errorf("fetch %s: %w", source, err)
	}
	d.metrics.FetchRequests.WithLabelValues(string(source), "success").Inc()
	d.metrics.FetchDuration.WithLabelValues(string(source)).Observe(time.Since(start).Seconds())
	d.logger.Info("bronze file downloaded", "source", string(source), "path", path, "duration", time.Since(start))
	return path, nil
}

// download retries transient failures (5xx, network errors) with exponential
// backoff. 4xx responses are permanent and fail immediately.
func (d *Downloader) download(ctx context.Context, rawURL, path string) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = d.initialInterval
	bo.MaxInterval = d.maxInterval
	bo.MaxElapsedTime = 0 // retries bounded by WithMaxRetries

	operation := func() error {
		return d.tryDownload(ctx, rawURL, path)
	}
	return backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(bo, d.maxRetries), ctx))
}

func (d *Downloader) tryDownload(ctx context.Context, rawURL, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("download request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("server error: status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return backoff.Permanent(fmt.Errorf("download failed: status %d: %s", resp.StatusCode, body))
	}

	return writeAtomic(path, resp.Body)
}

// writeAtomic streams body to a temp file and renames it into place, so an
// interrupted download leaves no partial bronze file behind.
func writeAtomic(path string, body io.Reader) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		return fmt.Errorf("write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename file: %w", err)
	}
	return nil
}
