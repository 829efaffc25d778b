package gallery

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"artwall/internal/domain"
)

const (
	snapshotLoadTimeout = 15 * time.Second
	snapshotKey         = "artworks"
)

// Loader reads the whole artwork tree.
type Loader interface {
	ListAll(ctx context.Context) ([]domain.Artwork, error)
}

// Snapshot caches the full artwork list and revalidates it after ttl. The
// returned slice is shared by every caller and must be treated as read-only.
type Snapshot struct {
	loader Loader
	ttl    time.Duration
	logger zerolog.Logger
	now    func() time.Time

	group singleflight.Group

	mu       sync.RWMutex
	items    []domain.Artwork
	loadedAt time.Time
	// gen is bumped by Invalidate; a load started under an older gen is not
	// stored as fresh.
	gen uint64
}

// NewSnapshot creates an empty snapshot; the first read loads it.
func NewSnapshot(loader Loader, ttl time.Duration, logger zerolog.Logger) *Snapshot {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Snapshot{loader: loader, ttl: ttl, logger: logger, now: time.Now}
}

// Artworks returns the cached list, reloading it when stale. A failed reload
// keeps serving the previous list.
func (s *Snapshot) Artworks(ctx context.Context) ([]domain.Artwork, error) {
	s.mu.RLock()
	items, loadedAt := s.items, s.loadedAt
	s.mu.RUnlock()
	if items != nil && s.now().Sub(loadedAt) < s.ttl {
		return items, nil
	}
	fresh, err := s.Refresh(ctx)
	if err != nil {
		if items != nil {
			s.logger.Warn().Err(err).Msg("gallery: revalidation failed, serving stale snapshot")
			return items, nil
		}
		return nil, err
	}
	return fresh, nil
}

// Refresh reloads the snapshot. Concurrent calls share one load. A load that
// was overtaken by Invalidate still answers its callers but is not cached as
// fresh.
func (s *Snapshot) Refresh(ctx context.Context) ([]domain.Artwork, error) {
	v, err, _ := s.group.Do(snapshotKey, func() (any, error) {
		s.mu.RLock()
		gen := s.gen
		s.mu.RUnlock()

		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), snapshotLoadTimeout)
		defer cancel()
		start := s.now()
		items, err := s.loader.ListAll(loadCtx)
		if err != nil {
			return nil, fmt.Errorf("gallery: load artworks: %w", err)
		}
		if items == nil {
			items = []domain.Artwork{}
		}
		s.mu.Lock()
		current := gen == s.gen
		if current {
			s.items = items
			s.loadedAt = s.now()
		} else if s.items == nil {
			s.items = items
		}
		s.mu.Unlock()
		if !current {
			s.logger.Debug().Int("count", len(items)).Msg("gallery: snapshot load overtaken by invalidate")
			return items, nil
		}
		s.logger.Debug().Int("count", len(items)).Dur("took", s.now().Sub(start)).Msg("gallery: snapshot loaded")
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Artwork), nil
}

// Invalidate marks the snapshot stale so the next read reloads it. Stale data
// stays available as a fallback.
func (s *Snapshot) Invalidate() {
	s.mu.Lock()
	s.loadedAt = time.Time{}
	s.gen++
	s.mu.Unlock()
	s.group.Forget(snapshotKey)
}

// Schedule refreshes the snapshot every ttl until ctx is done.
func (s *Snapshot) Schedule(ctx context.Context) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(fmt.Sprintf("@every %s", s.ttl), func() {
		if _, err := s.Refresh(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("gallery: scheduled refresh failed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("gallery: schedule refresh: %w", err)
	}
	c.Start()

	go func() {
		<-ctx.Done()
		c.Stop()
	}()
	return c, nil
}
