// Package pipeline fetches TMS orders week by week and tracks each run.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Orchestrator coordinates fetching a date range as a sequence of weekly
// requests.
type Orchestrator struct {
	recorder RunRecorder
	cfg      FetchConfig
	worker   *Worker
}

// NewOrchestrator creates a new Orchestrator. A nil recorder disables run
// tracking.
func NewOrchestrator(fetcher Fetcher, recorder RunRecorder, cfg FetchConfig) *Orchestrator {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &Orchestrator{
		recorder: recorder,
		cfg:      cfg,
		worker:   NewWorker(fetcher, recorder, cfg),
	}
}

// Run fetches [start, end] one week at a time. Failed weeks are logged and
// skipped; the result lists them in FailedWeeks. It only fails when no week
// succeeded (ErrNothingFetched) or ctx is cancelled.
func (o *Orchestrator) Run(ctx context.Context, start, end time.Time) (*Result, error) {
	weeks := SplitWeeks(start, end)
	res := &Result{
		Weeks: weeks,
		Run: FetchRun{
			ID:         uuid.NewString(),
			Name:       o.cfg.Name,
			RangeStart: start,
			RangeEnd:   end,
			Status:     StatusProcessing,
			TotalWeeks: len(weeks),
			StartedAt:  time.Now(),
		},
	}
	if len(weeks) == 0 {
		res.Run.Status = StatusCompleted
		return res, nil
	}

	if err := o.recorder.CreateRun(ctx, &res.Run); err != nil {
		log.Warn().Err(err).Str("run_id", res.Run.ID).Msg("failed to record fetch run")
	}

	logger := log.With().Str("run_id", res.Run.ID).Logger()
	logger.Info().
		Str("start", weeks[0].Start.Format("2006-01-02")).
		Str("end", weeks[len(weeks)-1].End.Format("2006-01-02")).
		Int("weeks", len(weeks)).
		Msg("starting fetch run")

	var ctxErr error
	for i, week := range weeks {
		if err := ctx.Err(); err != nil {
			ctxErr = err
			for _, rest := range weeks[i:] {
				res.FailedWeeks = append(res.FailedWeeks, rest.Key)
			}
			break
		}

		orders, err := o.worker.ProcessWeek(ctx, &res.Run, week)
		if err != nil {
			logger.Warn().Err(err).Str("week", week.Key).Msg("skipping week")
			res.FailedWeeks = append(res.FailedWeeks, week.Key)
			continue
		}
		logger.Debug().Str("week", week.Key).Int("orders", len(orders)).Msg("week fetched")
		res.Orders = append(res.Orders, orders...)
	}

	o.finish(ctx, res, ctxErr)

	switch {
	case ctxErr != nil:
		return res, ctxErr
	case len(res.FailedWeeks) == len(weeks):
		return res, fmt.Errorf("fetch %d weeks: %w", len(weeks), ErrNothingFetched)
	}
	return res, nil
}

func (o *Orchestrator) finish(ctx context.Context, res *Result, ctxErr error) {
	now := time.Now()
	run := &res.Run
	run.CompletedAt = &now
	run.FailedWeeks = len(res.FailedWeeks)
	run.TotalOrders = len(res.Orders)

	switch {
	case ctxErr != nil:
		run.Status = StatusFailed
		run.ErrorMessage = ctxErr.Error()
	case run.FailedWeeks == run.TotalWeeks:
		run.Status = StatusFailed
		run.ErrorMessage = ErrNothingFetched.Error()
	case run.FailedWeeks > 0:
		run.Status = StatusPartial
	default:
		run.Status = StatusCompleted
	}

	if err := o.recorder.UpdateRun(context.WithoutCancel(ctx), run); err != nil {
		log.Warn().Err(err).Str("run_id", run.ID).Msg("failed to update fetch run")
	}

	log.Info().
		Str("run_id", run.ID).
		Str("status", string(run.Status)).
		Int("orders", run.TotalOrders).
		Int("failed_weeks", run.FailedWeeks).
		Msg("fetch run finished")
}
