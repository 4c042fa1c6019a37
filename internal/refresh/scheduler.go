// Package refresh drives the periodic fetch, categorize, rank, build,
// publish cycle that keeps the served page current.
package refresh

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/apklist/apklist/internal/catalog"
	"github.com/apklist/apklist/internal/metrics"
	"github.com/apklist/apklist/internal/page"
)

// Fetcher retrieves the full product catalog.
type Fetcher interface {
	FetchAll(ctx context.Context) ([]catalog.Product, error)
}

// Builder renders categorized groups into a page body.
type Builder interface {
	Build(groups catalog.Groups) (string, error)
}

// Clock abstracts time.Now for tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator mints snapshot IDs.
type IDGenerator interface {
	NewID() (string, error)
}

// Config controls the refresh cadence.
type Config struct {
	// UpdateInterval is the wait after a successful cycle.
	UpdateInterval time.Duration
	// RetryInterval is the wait after a failed cycle.
	RetryInterval time.Duration
}

// Refresh cycle outcomes reported to metrics.
const (
	outcomeSuccess     = "success"
	outcomeFetchError  = "fetch_error"
	outcomeRenderError = "render_error"
)

// Scheduler is the single background task of the service. It alternates
// between refreshing and waiting: a successful cycle publishes a new
// snapshot and schedules the next refresh after UpdateInterval, a failed
// cycle leaves the published snapshot untouched and retries after
// RetryInterval. Failures are never fatal.
type Scheduler struct {
	fetcher Fetcher
	builder Builder
	cache   *page.Cache
	clock   Clock
	idGen   IDGenerator
	cfg     Config
	wake    <-chan struct{}
	logger  *zap.Logger
}

// New constructs a Scheduler. wake may be nil; when non-nil, a receive on it
// triggers an immediate refresh (used for template hot reload).
func New(
	fetcher Fetcher,
	builder Builder,
	cache *page.Cache,
	clock Clock,
	idGen IDGenerator,
	cfg Config,
	wake <-chan struct{},
	logger *zap.Logger,
) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		fetcher: fetcher,
		builder: builder,
		cache:   cache,
		clock:   clock,
		idGen:   idGen,
		cfg:     cfg,
		wake:    wake,
		logger:  logger,
	}
}

// Run executes refresh cycles until the context is canceled. The first
// cycle starts immediately.
func (s *Scheduler) Run(ctx context.Context) {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		case <-s.wake:
			// A nil wake channel blocks forever, so this arm is inert
			// unless a watcher was wired in.
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		}

		if s.refreshOnce(ctx) {
			timer.Reset(s.cfg.UpdateInterval)
		} else {
			timer.Reset(s.cfg.RetryInterval)
		}
	}
}

// refreshOnce runs one full cycle and reports success. On failure the
// previously published snapshot stays in place.
func (s *Scheduler) refreshOnce(ctx context.Context) bool {
	start := s.clock.Now()
	s.logger.Info("updating APK list")

	products, err := s.fetcher.FetchAll(ctx)
	if err != nil {
		metrics.ObserveRefresh(outcomeFetchError, s.clock.Now().Sub(start))
		s.logger.Error("catalog fetch failed", zap.Error(err))
		return false
	}

	groups := catalog.Categorize(products)
	groups.Rank()

	body, err := s.builder.Build(groups)
	if err != nil {
		metrics.ObserveRefresh(outcomeRenderError, s.clock.Now().Sub(start))
		s.logger.Error("page render failed", zap.Error(err))
		return false
	}

	id, err := s.idGen.NewID()
	if err != nil {
		// Purely informational; an unidentified snapshot is still served.
		s.logger.Warn("snapshot id generation failed", zap.Error(err))
	}
	s.cache.Publish(&page.Snapshot{
		ID:          id,
		Body:        body,
		GeneratedAt: s.clock.Now(),
	})

	elapsed := s.clock.Now().Sub(start)
	metrics.ObserveRefresh(outcomeSuccess, elapsed)
	metrics.SetPageBytes(len(body))
	metrics.SetGroupProducts(catalog.GroupBeer.DisplayName(), len(groups.Beer))
	metrics.SetGroupProducts(catalog.GroupWine.DisplayName(), len(groups.Wine))
	metrics.SetGroupProducts(catalog.GroupCider.DisplayName(), len(groups.Cider))
	metrics.SetGroupProducts(catalog.GroupLiquor.DisplayName(), len(groups.Liquor))
	metrics.SetGroupProducts(catalog.GroupOther.DisplayName(), len(groups.Other))

	s.logger.Info("APK list updated",
		zap.String("snapshot_id", id),
		zap.Int("products", groups.Len()),
		zap.Duration("elapsed", elapsed),
	)
	return true
}
