package tlc

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"taxi-dashboard/config"
	"taxi-dashboard/models"
	"taxi-dashboard/utils"
)

// ZoneLookupFile is the cache file name of the zone lookup table.
const ZoneLookupFile = "taxi_zone_lookup.csv"

// Fetcher resolves TLC months to files in the local cache, downloading them
// when they are missing. Existing cache entries are never modified.
type Fetcher struct {
	cfg      *config.Config
	logger   *utils.Logger
	client   *http.Client
	retry    *utils.RetryConfig
	throttle *utils.Throttle
	now      func() time.Time
	earliest models.MonthSpec
}

// Option customises a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// WithClock sets the clock used to decide which months can be published.
func WithClock(now func() time.Time) Option {
	return func(f *Fetcher) { f.now = now }
}

// New creates a Fetcher from the configuration.
func New(cfg *config.Config, logger *utils.Logger, opts ...Option) (*Fetcher, error) {
	earliest, err := models.ParseMonth(cfg.EarliestMonth)
	if err != nil {
		return nil, fmt.Errorf("tlc: earliest month: %w", err)
	}

	f := &Fetcher{
		cfg:      cfg,
		logger:   logger,
		client:   &http.Client{Timeout: cfg.HTTPTimeout},
		throttle: utils.NewThrottle(cfg.RequestInterval),
		now:      time.Now,
		earliest: earliest,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.retry = &utils.RetryConfig{
		MaxAttempts: cfg.MaxRetries,
		BaseDelay:   cfg.RetryBaseDelay,
		Logger:      logger,
		Retryable:   isTransient,
	}
	return f, nil
}

// URL returns the publisher URL for a month.
func (f *Fetcher) URL(m models.MonthSpec) string {
	r := strings.NewReplacer(
		"{base}", strings.TrimRight(f.cfg.BaseURL, "/"),
		"{dataset}", f.cfg.Dataset,
		"{month}", m.String(),
		"{year}", fmt.Sprintf("%04d", m.Year),
		"{mm}", fmt.Sprintf("%02d", int(m.Month)),
	)
	return r.Replace(f.cfg.URLTemplate)
}

// LocalPath returns the canonical cache path for a month.
func (f *Fetcher) LocalPath(m models.MonthSpec) string {
	return filepath.Join(f.cfg.CacheDir, fmt.Sprintf("%s_tripdata_%s.parquet", f.cfg.Dataset, m))
}

// CheckRange fails when m cannot have been published yet or predates the dataset.
func (f *Fetcher) CheckRange(m models.MonthSpec) error {
	latest := models.MonthOf(f.now())
	if m.Before(f.earliest) || latest.Before(m) {
		return &models.FetchError{
			Month: m,
			Err:   fmt.Errorf("%w [%s, %s]", errOutOfRange, f.earliest, latest),
		}
	}
	return nil
}

// EnsureLocal returns the cached file for m, downloading it first if needed.
// A cached file is returned without any network access.
func (f *Fetcher) EnsureLocal(ctx context.Context, m models.MonthSpec) (*models.CachedFile, error) {
	if err := f.CheckRange(m); err != nil {
		return nil, err
	}

	cf := &models.CachedFile{Month: m, URL: f.URL(m), Path: f.LocalPath(m)}
	if utils.FileExists(cf.Path) {
		cf.Cached = true
		f.logger.Debug("[tlc] Cache hit for %s: %s", m, cf.Path)
		return cf, nil
	}

	n, err := f.fetch(ctx, cf.URL, cf.Path)
	if err != nil {
		return nil, &models.FetchError{Month: m, URL: cf.URL, NotFound: isNotFound(err), Err: err}
	}
	cf.Bytes = n
	return cf, nil
}

// EnsureAll ensures every month, keeping month order in the result. Up to
// MaxConcurrency downloads run at once; the first failure cancels the rest.
// All months are range-checked before any download starts.
func (f *Fetcher) EnsureAll(ctx context.Context, months []models.MonthSpec) ([]*models.CachedFile, error) {
	for _, m := range months {
		if err := f.CheckRange(m); err != nil {
			return nil, err
		}
	}

	files := make([]*models.CachedFile, len(months))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.cfg.MaxConcurrency)

	for i, m := range months {
		i, m := i, m
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			cf, err := f.EnsureLocal(gctx, m)
			if err != nil {
				return err
			}
			files[i] = cf
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

// EnsureZoneLookup returns the cached zone lookup CSV, downloading it when
// missing. It returns "" when no lookup URL is configured.
func (f *Fetcher) EnsureZoneLookup(ctx context.Context) (string, error) {
	if f.cfg.ZoneLookupURL == "" {
		return "", nil
	}

	path := filepath.Join(f.cfg.CacheDir, ZoneLookupFile)
	if utils.FileExists(path) {
		return path, nil
	}

	if _, err := f.fetch(ctx, f.cfg.ZoneLookupURL, path); err != nil {
		return "", &models.FetchError{URL: f.cfg.ZoneLookupURL, NotFound: isNotFound(err), Err: err}
	}
	return path, nil
}

// fetch downloads url to dest through the retry policy.
func (f *Fetcher) fetch(ctx context.Context, url, dest string) (int64, error) {
	f.logger.Info("[tlc] Downloading %s → %s", url, dest)
	start := time.Now()

	var written int64
	err := f.retry.Do(ctx, "download "+filepath.Base(dest), func(ctx context.Context) error {
		n, err := f.download(ctx, url, dest)
		written = n
		return err
	})
	if err != nil {
		return 0, err
	}

	f.logger.Info("[tlc] Saved %s (%s in %v)", filepath.Base(dest),
		humanize.Bytes(uint64(written)), time.Since(start).Round(time.Millisecond))
	return written, nil
}

// download performs one GET and streams the body into dest atomically.
func (f *Fetcher) download(ctx context.Context, url, dest string) (int64, error) {
	if err := f.throttle.Wait(ctx); err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, utils.Permanent(err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return 0, &statusError{URL: url, StatusCode: resp.StatusCode}
	}

	var n int64
	err = utils.WriteFileAtomic(dest, 0o644, func(w io.Writer) error {
		var copyErr error
		n, copyErr = io.Copy(w, resp.Body)
		if copyErr != nil {
			return copyErr
		}
		if resp.ContentLength >= 0 && n != resp.ContentLength {
			return fmt.Errorf("short body: got %d of %d bytes", n, resp.ContentLength)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}
