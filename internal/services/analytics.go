package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"purchase-dashboard/internal/insights"
	"purchase-dashboard/internal/models"
	"purchase-dashboard/internal/observability"
	"purchase-dashboard/internal/source"
)

const defaultCacheSize = 16

var (
	ErrNoData       = errors.New("no data loaded")
	ErrUnknownChart = errors.New("unknown chart")
	ErrNoSource     = errors.New("no source configured")
)

// Snapshot is one fully built dataset. It is replaced as a whole on reload
// and never mutated after publication.
type Snapshot struct {
	Bundle         *models.Bundle
	Source         string
	LoadID         string
	RecordCount    int64
	MissingColumns []string
	LoadedAt       time.Time
	BuildDuration  time.Duration
}

type Analytics struct {
	mu       sync.RWMutex
	snapshot *Snapshot
	updated  chan struct{}

	location   string
	sourceOpts source.Options
	normalize  []insights.NormalizeOption
	build      []insights.BuildOption

	cache     *lru.Cache[string, Snapshot]
	cacheSize int
	loads     atomic.Int64
	hits      atomic.Int64
	logger    *slog.Logger
}

type Option func(*Analytics)

func WithLogger(logger *slog.Logger) Option {
	return func(a *Analytics) { a.logger = logger }
}

func WithSource(location string, opts source.Options) Option {
	return func(a *Analytics) {
		a.location = location
		a.sourceOpts = opts
	}
}

func WithNormalizeOptions(opts ...insights.NormalizeOption) Option {
	return func(a *Analytics) { a.normalize = append(a.normalize, opts...) }
}

func WithBuildOptions(opts ...insights.BuildOption) Option {
	return func(a *Analytics) { a.build = append(a.build, opts...) }
}

func WithCacheSize(size int) Option {
	return func(a *Analytics) { a.cacheSize = size }
}

func NewAnalytics(opts ...Option) *Analytics {
	a := &Analytics{
		snapshot:  &Snapshot{},
		updated:   make(chan struct{}),
		cacheSize: defaultCacheSize,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}

	a.cache, _ = lru.New[string, Snapshot](max(a.cacheSize, 1))
	return a
}

// SetRows builds a snapshot from in-memory rows.
func (a *Analytics) SetRows(rows []models.Row) {
	start := time.Now()
	bundle := insights.Process(rows, a.normalize, a.build...)
	a.publish(&Snapshot{
		Bundle:         bundle,
		Source:         "memory",
		LoadID:         uuid.NewString(),
		RecordCount:    int64(len(rows)),
		MissingColumns: source.MissingColumns(rows),
		LoadedAt:       time.Now(),
		BuildDuration:  time.Since(start),
	})
}

// Load reads the configured source and publishes a new snapshot. Unchanged
// local files are served from the bundle cache.
func (a *Analytics) Load(ctx context.Context) error {
	if a.location == "" {
		return ErrNoSource
	}

	ctx, span := observability.StartSpan(ctx, "analytics.load")
	defer span.Finish()
	span.SetTag("source", a.location)

	key, cacheable := fingerprint(a.location)
	if cacheable {
		if cached, ok := a.cache.Get(key); ok {
			a.hits.Add(1)
			cached.LoadID = uuid.NewString()
			cached.LoadedAt = time.Now()
			a.publish(&cached)
			a.logger.Info("loaded from cache", "source", a.location, "records", cached.RecordCount)
			return nil
		}
	}

	reader, err := source.Open(a.location, a.sourceOpts)
	if err != nil {
		span.SetError(err)
		return fmt.Errorf("open source: %w", err)
	}

	readStart := time.Now()
	rows, err := reader.Read(ctx)
	if err != nil {
		span.SetError(err)
		return fmt.Errorf("read source: %w", err)
	}
	a.logger.Info("source read",
		"source", a.location,
		"rows", len(rows),
		"duration", time.Since(readStart),
	)

	missing := source.MissingColumns(rows)
	if len(missing) > 0 {
		a.logger.Warn("source is missing expected columns",
			"missing", strings.Join(missing, ","),
			"available", strings.Join(source.Columns(rows), ","),
		)
	}

	start := time.Now()
	bundle := insights.Process(rows, a.normalize, a.build...)
	duration := time.Since(start)
	if bundle == nil {
		a.logger.Warn("source produced no records", "source", a.location)
	}

	loadID := uuid.NewString()
	span.SetTag("load_id", loadID)
	snapshot := &Snapshot{
		Bundle:         bundle,
		Source:         a.location,
		LoadID:         loadID,
		RecordCount:    int64(len(rows)),
		MissingColumns: missing,
		LoadedAt:       time.Now(),
		BuildDuration:  duration,
	}
	if cacheable && bundle != nil {
		a.cache.Add(key, *snapshot)
	}
	a.publish(snapshot)

	a.logger.Info("bundle built",
		"load_id", loadID,
		"records", len(rows),
		"duration", duration,
		"rate", fmt.Sprintf("%.0f records/sec", float64(len(rows))/max(duration.Seconds(), 1e-9)),
	)
	return nil
}

// Reload drops cached bundles and loads the source again.
func (a *Analytics) Reload(ctx context.Context) error {
	a.cache.Purge()
	return a.Load(ctx)
}

func (a *Analytics) publish(s *Snapshot) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.snapshot = s
	a.loads.Add(1)
	close(a.updated)
	a.updated = make(chan struct{})
}

// Updated returns a channel closed at the next snapshot publication.
func (a *Analytics) Updated() <-chan struct{} {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.updated
}

func (a *Analytics) Snapshot() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return *a.snapshot
}

func (a *Analytics) Bundle() (*models.Bundle, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.snapshot.Bundle == nil {
		return nil, ErrNoData
	}
	return a.snapshot.Bundle, nil
}

func (a *Analytics) Chart(name string) (any, error) {
	bundle, err := a.Bundle()
	if err != nil {
		return nil, err
	}
	chart, ok := insights.Chart(bundle, name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownChart, name)
	}
	return chart, nil
}

// Utility method for monitoring
func (a *Analytics) Stats() map[string]any {
	s := a.Snapshot()

	stats := map[string]any{
		"source":          s.Source,
		"load_id":         s.LoadID,
		"record_count":    s.RecordCount,
		"last_loaded":     s.LoadedAt,
		"build_duration":  s.BuildDuration.String(),
		"missing_columns": s.MissingColumns,
		"loads":           a.loads.Load(),
		"cache_hits":      a.hits.Load(),
		"cached_bundles":  a.cache.Len(),
	}
	if s.Bundle != nil {
		stats["categories"] = len(s.Bundle.CategoryRevenue)
		stats["customers"] = s.Bundle.Stats.Customers
		stats["heatmap_cells"] = len(s.Bundle.Heatmap)
		stats["flows"] = len(s.Bundle.Flows)
	}
	return stats
}

// fingerprint identifies a local file version. Remote and database sources
// are not cacheable.
func fingerprint(location string) (string, bool) {
	info, err := os.Stat(location)
	if err != nil || info.IsDir() {
		return "", false
	}
	return fmt.Sprintf("%s|%d|%d", location, info.Size(), info.ModTime().UnixNano()), true
}
