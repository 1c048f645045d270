package service

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/tms-dashboard/internal/cache"
	"github.com/andresuchdata/tms-dashboard/internal/config"
	"github.com/andresuchdata/tms-dashboard/internal/pipeline"
	"github.com/andresuchdata/tms-dashboard/internal/tms"
)

// NewTMSSource wires the TMS client, the weekly fetch orchestrator and the
// snapshot cache into an OrderSource. A nil recorder disables run tracking.
// A cache that cannot be built is logged and replaced by the noop cache.
func NewTMSSource(cfg *config.Config, recorder pipeline.RunRecorder) (*FetchSource, error) {
	client, err := tms.NewClient(tms.Options{
		BaseURL:    cfg.TMS.BaseURL,
		OrdersPath: cfg.TMS.OrdersPath,
		Token:      cfg.TMS.Token,
		Timeout:    cfg.TMS.RequestTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("create tms client: %w", err)
	}

	fetchCfg := pipeline.DefaultFetchConfig()
	if cfg.TMS.RequestTimeout > 0 {
		fetchCfg.RequestTimeout = cfg.TMS.RequestTimeout
	}
	if cfg.TMS.RetryAttempts > 0 {
		fetchCfg.RetryAttempts = cfg.TMS.RetryAttempts
	}
	if cfg.TMS.RetryBackoff > 0 {
		fetchCfg.RetryBackoff = cfg.TMS.RetryBackoff
	}
	if recorder == nil {
		recorder = pipeline.NopRecorder{}
	}
	orchestrator := pipeline.NewOrchestrator(client, recorder, fetchCfg)

	snapshots, err := cache.NewOrderSnapshotCache(cfg.Cache)
	if err != nil {
		log.Warn().Err(err).Msg("orders: redis cache unavailable, continuing without cache")
		snapshots = cache.NewNoopOrderSnapshotCache()
	}

	return NewFetchSource(orchestrator, snapshots), nil
}
