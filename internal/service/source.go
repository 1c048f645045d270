package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/tms-dashboard/internal/cache"
	"github.com/andresuchdata/tms-dashboard/internal/domain"
	"github.com/andresuchdata/tms-dashboard/internal/pipeline"
)

// OrderSource loads the orders behind a view.
type OrderSource interface {
	Load(ctx context.Context, start, end time.Time) (*cache.OrderSnapshot, error)
}

// FetchRunner runs a weekly fetch. pipeline.Orchestrator implements it.
type FetchRunner interface {
	Run(ctx context.Context, start, end time.Time) (*pipeline.Result, error)
}

// FetchSource loads orders from the TMS API through the snapshot cache.
type FetchSource struct {
	runner FetchRunner
	cache  cache.OrderSnapshotCache
}

func NewFetchSource(runner FetchRunner, cacheImpl cache.OrderSnapshotCache) *FetchSource {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopOrderSnapshotCache()
	}
	return &FetchSource{runner: runner, cache: cacheImpl}
}

// Load returns the cached snapshot of the range or fetches it. Partial
// snapshots are served but never cached.
func (s *FetchSource) Load(ctx context.Context, start, end time.Time) (*cache.OrderSnapshot, error) {
	if snap, ok, err := s.cache.GetSnapshot(ctx, start, end); err == nil && ok {
		return snap, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("orders: cache get snapshot failed")
	}

	res, err := s.runner.Run(ctx, start, end)
	if err != nil {
		if errors.Is(err, pipeline.ErrNothingFetched) {
			return nil, errors.Join(ErrFetchFailed, err)
		}
		return nil, err
	}

	snap := &cache.OrderSnapshot{
		Orders:      res.Orders,
		FailedWeeks: res.FailedWeeks,
		FetchedAt:   time.Now(),
	}
	if len(res.FailedWeeks) == 0 {
		if err := s.cache.SetSnapshot(ctx, start, end, snap); err != nil {
			log.Warn().Err(err).Msg("orders: cache set snapshot failed")
		}
	}

	return snap, nil
}

// StaticSource serves a fixed order list, e.g. an imported export. The
// requested range is ignored; the file defines the data.
type StaticSource struct {
	snap *cache.OrderSnapshot
}

func NewStaticSource(orders []domain.OrderRecord) *StaticSource {
	return &StaticSource{snap: &cache.OrderSnapshot{Orders: orders, FetchedAt: time.Now()}}
}

func (s *StaticSource) Load(context.Context, time.Time, time.Time) (*cache.OrderSnapshot, error) {
	return s.snap, nil
}
