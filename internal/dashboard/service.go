// Package dashboard serves the activity dashboard and document library as
// HTML pages and a JSON API.
package dashboard

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/dco-dashboard/internal/activity"
	"github.com/sells-group/dco-dashboard/internal/cache"
	"github.com/sells-group/dco-dashboard/internal/library"
)

// ActivityLoader produces activity tables.
type ActivityLoader interface {
	Load(ctx context.Context) *activity.Table
}

// LibraryLoader produces library catalogs.
type LibraryLoader interface {
	Load(ctx context.Context) *library.Catalog
}

// Service holds the cached tables behind every page and API route.
type Service struct {
	activities *cache.TTL[*activity.Table]
	library    *cache.TTL[*library.Catalog]
}

// NewService wraps both loaders in TTL caches.
func NewService(acts ActivityLoader, lib LibraryLoader, ttl time.Duration) *Service {
	return &Service{
		activities: cache.New("activities", ttl, acts.Load),
		library:    cache.New("library", ttl, lib.Load),
	}
}

// Activities returns the current activity table.
func (s *Service) Activities(ctx context.Context) *activity.Table {
	return s.activities.GetOrRefresh(ctx)
}

// Library returns the current library catalog.
func (s *Service) Library(ctx context.Context) *library.Catalog {
	return s.library.GetOrRefresh(ctx)
}

// Invalidate drops both cached tables.
func (s *Service) Invalidate() {
	s.activities.Invalidate()
	s.library.Invalidate()
}

// Warm loads both sources concurrently so the first request is served from
// cache.
func (s *Service) Warm(ctx context.Context) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t := s.Activities(gctx)
		zap.L().Info("activities loaded",
			zap.Int("records", t.Len()),
			zap.Int("warnings", len(t.Warnings())),
		)
		return nil
	})
	g.Go(func() error {
		c := s.Library(gctx)
		zap.L().Info("library loaded",
			zap.Int("documents", c.Len()),
			zap.Int("warnings", len(c.Warnings())),
		)
		return nil
	})
	_ = g.Wait()
}
