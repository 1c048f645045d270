package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/tms-dashboard/internal/domain"
)

// Worker fetches single weeks and records their jobs
type Worker struct {
	fetcher  Fetcher
	recorder RunRecorder
	config   FetchConfig
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewWorker creates a new week worker
func NewWorker(fetcher Fetcher, recorder RunRecorder, config FetchConfig) *Worker {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &Worker{
		fetcher:  fetcher,
		recorder: recorder,
		config:   config,
		sleep:    sleepContext,
	}
}

// ProcessWeek fetches one week, retrying up to RetryAttempts times. Each
// attempt gets its own RequestTimeout. Returned orders carry the week key.
func (w *Worker) ProcessWeek(ctx context.Context, run *FetchRun, week Week) ([]domain.OrderRecord, error) {
	job := &WeekJob{
		RunID:   run.ID,
		WeekKey: week.Key,
		Status:  WeekStatusQueued,
	}
	if err := w.recorder.CreateWeekJob(ctx, job); err != nil {
		log.Warn().Err(err).Str("week", week.Key).Msg("failed to record week job")
	}

	job.Status = WeekStatusProcessing
	w.updateJob(ctx, job)

	attempts := max(1, w.config.RetryAttempts)
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		job.Attempts = attempt

		orders, err := w.fetchOnce(ctx, week)
		if err == nil {
			for i := range orders {
				orders[i].WeekKey = week.Key
			}
			now := time.Now()
			job.Status = WeekStatusCompleted
			job.Orders = len(orders)
			job.ErrorMessage = ""
			job.ProcessedAt = &now
			w.updateJob(ctx, job)
			return orders, nil
		}
		lastErr = err

		if ctx.Err() != nil || attempt == attempts {
			break
		}
		log.Warn().Err(err).Str("week", week.Key).Int("attempt", attempt).Msg("week fetch failed, retrying")
		if err := w.sleep(ctx, w.config.RetryBackoff); err != nil {
			break
		}
	}

	return nil, w.markJobFailed(ctx, job, lastErr)
}

func (w *Worker) fetchOnce(ctx context.Context, week Week) ([]domain.OrderRecord, error) {
	if w.config.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.config.RequestTimeout)
		defer cancel()
	}
	return w.fetcher.FetchOrders(ctx, week.Start, week.End)
}

// markJobFailed records the failure and returns it wrapped with the week key
func (w *Worker) markJobFailed(ctx context.Context, job *WeekJob, err error) error {
	now := time.Now()
	job.Status = WeekStatusFailed
	job.ErrorMessage = err.Error()
	job.ProcessedAt = &now
	// The parent context may already be gone; the record should still land.
	w.updateJob(context.WithoutCancel(ctx), job)

	return fmt.Errorf("week %s: %w", job.WeekKey, err)
}

func (w *Worker) updateJob(ctx context.Context, job *WeekJob) {
	if err := w.recorder.UpdateWeekJob(ctx, job); err != nil {
		log.Warn().Err(err).Str("week", job.WeekKey).Msg("failed to update week job")
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
