package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Lixing-Zhang/qr-menu/internal/menu"
	"github.com/Lixing-Zhang/qr-menu/internal/models"
	"github.com/Lixing-Zhang/qr-menu/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Snapshot is one assembled menu. ID changes on every rebuild.
type Snapshot struct {
	ID      string
	Blocks  []models.Block
	BuiltAt time.Time
}

// MenuService fetches the catalog and assembles it into blocks.
// The last snapshot is reused until it is older than the TTL; a TTL of zero
// keeps it until Invalidate is called.
type MenuService struct {
	repo   repository.CatalogRepository
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger

	mu      sync.RWMutex
	current *Snapshot
	gen     uint64 // bumped by Invalidate; stale flights do not store
	group   singleflight.Group
}

// NewMenuService creates a new menu service
func NewMenuService(repo repository.CatalogRepository, ttl time.Duration, logger *slog.Logger) *MenuService {
	return &MenuService{
		repo:   repo,
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}
}

// Menu returns the current snapshot, rebuilding it when missing or expired.
// It returns menu.ErrNotFound when the catalog is empty and a wrapped
// repository error when a fetch fails.
func (s *MenuService) Menu(ctx context.Context) (*Snapshot, error) {
	if snap := s.cached(); snap != nil {
		return snap, nil
	}
	return s.rebuild(ctx)
}

// Refresh drops the current snapshot and builds a new one. It never joins a
// rebuild that started before the call.
func (s *MenuService) Refresh(ctx context.Context) (*Snapshot, error) {
	s.Invalidate()
	s.group.Forget(rebuildKey)
	return s.rebuild(ctx)
}

// Current returns the cached snapshot without rebuilding, or nil
func (s *MenuService) Current() *Snapshot {
	return s.cached()
}

// Invalidate drops the current snapshot
func (s *MenuService) Invalidate() {
	s.mu.Lock()
	s.current = nil
	s.gen++
	s.mu.Unlock()
}

func (s *MenuService) cached() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return nil
	}
	if s.ttl > 0 && s.now().Sub(s.current.BuiltAt) >= s.ttl {
		return nil
	}
	return s.current
}

const rebuildKey = "menu"

// rebuild collapses concurrent rebuilds into one catalog fetch. The fetch is
// detached from the caller that started it, so a disconnecting client does not
// fail the callers sharing the flight; each caller still returns early when its
// own context ends. The catalog client timeout bounds the fetch.
func (s *MenuService) rebuild(ctx context.Context) (*Snapshot, error) {
	buildCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(rebuildKey, func() (interface{}, error) {
		s.mu.RLock()
		gen := s.gen
		s.mu.RUnlock()

		snap, err := s.build(buildCtx)

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.gen != gen {
			// invalidated while fetching; hand the result to this flight only
			return snap, err
		}
		if err != nil {
			// fail closed: never serve an expired menu after a failed rebuild
			s.current = nil
			return nil, err
		}
		s.current = snap
		return snap, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			s.logger.Debug("menu rebuild shared between callers")
		}
		return res.Val.(*Snapshot), nil
	}
}

func (s *MenuService) build(ctx context.Context) (*Snapshot, error) {
	start := s.now()

	var (
		categories []models.Category
		products   []models.Product
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		categories, err = s.repo.Categories(gctx)
		if err != nil {
			return fmt.Errorf("fetch categories: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		products, err = s.repo.Products(gctx)
		if err != nil {
			return fmt.Errorf("fetch products: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	blocks, err := menu.Assemble(categories, products)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		ID:      uuid.New().String(),
		Blocks:  blocks,
		BuiltAt: s.now(),
	}

	s.logger.Info("menu assembled",
		"snapshot_id", snap.ID,
		"categories", len(categories),
		"products", len(products),
		"duration_ms", snap.BuiltAt.Sub(start).Milliseconds(),
	)

	return snap, nil
}
