package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/andresuchdata/tms-dashboard/internal/domain"
	"github.com/andresuchdata/tms-dashboard/internal/normalize"
)

// ErrNothingFetched is returned when every week of a run failed.
var ErrNothingFetched = errors.New("no week could be fetched")

// Fetcher loads the orders of one inclusive date range. tms.Client implements it.
type Fetcher interface {
	FetchOrders(ctx context.Context, start, end time.Time) ([]domain.OrderRecord, error)
}

// FetchConfig holds configuration for a fetch run
type FetchConfig struct {
	Name           string
	RequestTimeout time.Duration // per-week request timeout
	RetryAttempts  int           // attempts per week, including the first
	RetryBackoff   time.Duration // pause between attempts
}

// DefaultFetchConfig returns sensible defaults
func DefaultFetchConfig() FetchConfig {
	return FetchConfig{
		Name:           "tms-orders",
		RequestTimeout: 60 * time.Second,
		RetryAttempts:  1,
		RetryBackoff:   2 * time.Second,
	}
}

// RunStatus represents the current state of a fetch run
type RunStatus string

const (
	StatusPending    RunStatus = "pending"
	StatusProcessing RunStatus = "processing"
	StatusCompleted  RunStatus = "completed"
	StatusPartial    RunStatus = "partial"
	StatusFailed     RunStatus = "failed"
)

// WeekJobStatus represents the state of a single week request
type WeekJobStatus string

const (
	WeekStatusQueued     WeekJobStatus = "queued"
	WeekStatusProcessing WeekJobStatus = "processing"
	WeekStatusCompleted  WeekJobStatus = "completed"
	WeekStatusFailed     WeekJobStatus = "failed"
)

// Week is one chunk of a fetch range. Key is the Monday of the week.
type Week struct {
	Key   string
	Start time.Time
	End   time.Time
}

// FetchRun tracks a single execution over a date range
type FetchRun struct {
	ID           string     `db:"id" json:"id"`
	Name         string     `db:"name" json:"name"`
	RangeStart   time.Time  `db:"range_start" json:"range_start"`
	RangeEnd     time.Time  `db:"range_end" json:"range_end"`
	Status       RunStatus  `db:"status" json:"status"`
	TotalWeeks   int        `db:"total_weeks" json:"total_weeks"`
	FailedWeeks  int        `db:"failed_weeks" json:"failed_weeks"`
	TotalOrders  int        `db:"total_orders" json:"total_orders"`
	StartedAt    time.Time  `db:"started_at" json:"started_at"`
	CompletedAt  *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	ErrorMessage string     `db:"error_message" json:"error_message,omitempty"`
}

// WeekJob tracks the request of a single week
type WeekJob struct {
	ID           int64         `db:"id" json:"id"`
	RunID        string        `db:"run_id" json:"run_id"`
	WeekKey      string        `db:"week_key" json:"week_key"`
	Status       WeekJobStatus `db:"status" json:"status"`
	Orders       int           `db:"orders" json:"orders"`
	Attempts     int           `db:"attempts" json:"attempts"`
	ErrorMessage string        `db:"error_message" json:"error_message,omitempty"`
	ProcessedAt  *time.Time    `db:"processed_at" json:"processed_at,omitempty"`
}

// Result is the outcome of a fetch run. Orders may be incomplete when some
// weeks failed.
type Result struct {
	Run         FetchRun
	Orders      []domain.OrderRecord
	Weeks       []Week
	FailedWeeks []string
}

// SplitWeeks chunks [start, end] into Monday-aligned weeks. The first and last
// chunk are clipped to the range; keys always name the full week's Monday.
func SplitWeeks(start, end time.Time) []Week {
	start, end = normalize.Day(start), normalize.Day(end)
	if end.Before(start) {
		return nil
	}

	var weeks []Week
	monday := start.AddDate(0, 0, -((int(start.Weekday()) + 6) % 7))
	for ; !monday.After(end); monday = monday.AddDate(0, 0, 7) {
		w := Week{
			Key:   monday.Format(domain.WeekKeyLayout),
			Start: monday,
			End:   monday.AddDate(0, 0, 6),
		}
		if w.Start.Before(start) {
			w.Start = start
		}
		if w.End.After(end) {
			w.End = end
		}
		weeks = append(weeks, w)
	}
	return weeks
}
