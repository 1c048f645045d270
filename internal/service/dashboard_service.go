package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andresuchdata/tms-dashboard/internal/analytics"
	"github.com/andresuchdata/tms-dashboard/internal/domain"
	"github.com/andresuchdata/tms-dashboard/internal/normalize"
)

var (
	ErrUnknownRegion  = errors.New("unknown region")
	ErrUnknownProject = errors.New("unknown project")
	ErrFetchFailed    = errors.New("order fetch failed")
	ErrInvalidRange   = errors.New("invalid date range")
)

const (
	defaultMonthsBack = 6
	maxHistoryPeriods = 104
)

// Options tunes the defaults of DashboardService.
type Options struct {
	WeeksBack int
	Location  *time.Location
	Now       func() time.Time
}

type DashboardService struct {
	source    OrderSource
	weeksBack int
	loc       *time.Location
	now       func() time.Time
}

func NewDashboardService(source OrderSource, opts Options) *DashboardService {
	s := &DashboardService{
		source:    source,
		weeksBack: opts.WeeksBack,
		loc:       opts.Location,
		now:       opts.Now,
	}
	if s.weeksBack <= 0 {
		s.weeksBack = 12
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// RowsQuery selects a region table. Zero Start/End default to the current
// month up to today.
type RowsQuery struct {
	Region  string
	Start   time.Time
	End     time.Time
	Options analytics.RowOptions
}

type RowsView struct {
	Region      string             `json:"region"`
	Range       domain.DateRange   `json:"range"`
	Rows        []domain.RegionRow `json:"rows"`
	FailedWeeks []string           `json:"failed_weeks,omitempty"`
}

type ForecastView struct {
	Region string `json:"region"`
	domain.ForecastResult
	FailedWeeks []string `json:"failed_weeks,omitempty"`
}

type HistoryView struct {
	Region      string `json:"region"`
	Granularity string `json:"granularity"`
	domain.HistoryResult
	FailedWeeks []string `json:"failed_weeks,omitempty"`
}

type ProjectStatsView struct {
	Project     string              `json:"project"`
	Range       domain.DateRange    `json:"range"`
	Row         domain.RegionRow    `json:"row"`
	Stats       *domain.BucketStats `json:"stats"`
	FailedWeeks []string            `json:"failed_weeks,omitempty"`
}

func (s *DashboardService) Regions() []domain.Region {
	return append(append([]domain.Region{}, domain.Regions...), domain.AllRegions())
}

func (s *DashboardService) Statuses() []domain.OrderStatus {
	return domain.Statuses()
}

// Today is the current day in the dashboard's zone.
func (s *DashboardService) Today() time.Time {
	return normalize.Day(s.now().In(s.loc))
}

func (s *DashboardService) RegionRows(ctx context.Context, q RowsQuery) (*RowsView, error) {
	region, err := resolveRegion(q.Region)
	if err != nil {
		return nil, err
	}

	start, end, err := s.rowsRange(q.Start, q.End)
	if err != nil {
		return nil, err
	}

	snap, err := s.source.Load(ctx, start, end)
	if err != nil {
		return nil, err
	}

	stats := analytics.Aggregate(snap.Orders)
	return &RowsView{
		Region:      region.Name,
		Range:       domain.DateRange{Start: start, End: end},
		Rows:        analytics.BuildRegionRows(region, stats, q.Options),
		FailedWeeks: snap.FailedWeeks,
	}, nil
}

// Forecast loads the twelve weeks the weekday weights need and projects the
// region's projects from today (zero means now).
func (s *DashboardService) Forecast(ctx context.Context, regionName string, today time.Time) (*ForecastView, error) {
	region, err := resolveRegion(regionName)
	if err != nil {
		return nil, err
	}
	if today.IsZero() {
		today = s.Today()
	}
	today = normalize.Day(today.In(s.loc))

	week0 := today.AddDate(0, 0, -((int(today.Weekday()) + 6) % 7))
	snap, err := s.source.Load(ctx, week0.AddDate(0, 0, -84), today)
	if err != nil {
		return nil, err
	}

	return &ForecastView{
		Region:         region.Name,
		ForecastResult: analytics.Forecast(snap.Orders, region, today),
		FailedWeeks:    snap.FailedWeeks,
	}, nil
}

func (s *DashboardService) MonthlyHistory(ctx context.Context, regionName string, months int, anchor time.Time) (*HistoryView, error) {
	region, err := resolveRegion(regionName)
	if err != nil {
		return nil, err
	}
	if months <= 0 {
		months = defaultMonthsBack
	}
	if months > maxHistoryPeriods {
		return nil, fmt.Errorf("%w: at most %d months", ErrInvalidRange, maxHistoryPeriods)
	}
	if anchor.IsZero() {
		anchor = s.Today()
	}
	anchor = normalize.Day(anchor.In(s.loc))

	last := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, s.loc)
	start := last.AddDate(0, -(months - 1), 0)
	snap, err := s.source.Load(ctx, start, last.AddDate(0, 1, -1))
	if err != nil {
		return nil, err
	}

	return &HistoryView{
		Region:        region.Name,
		Granularity:   "month",
		HistoryResult: analytics.MonthlyHistory(snap.Orders, region, months, anchor),
		FailedWeeks:   snap.FailedWeeks,
	}, nil
}

func (s *DashboardService) WeeklyHistory(ctx context.Context, regionName string, weeks int, anchor time.Time) (*HistoryView, error) {
	region, err := resolveRegion(regionName)
	if err != nil {
		return nil, err
	}
	if weeks <= 0 {
		weeks = s.weeksBack
	}
	if weeks > maxHistoryPeriods {
		return nil, fmt.Errorf("%w: at most %d weeks", ErrInvalidRange, maxHistoryPeriods)
	}
	if anchor.IsZero() {
		anchor = s.Today()
	}
	anchor = normalize.Day(anchor.In(s.loc))

	monday := anchor.AddDate(0, 0, -((int(anchor.Weekday()) + 6) % 7))
	snap, err := s.source.Load(ctx, monday.AddDate(0, 0, -7*(weeks-1)), monday.AddDate(0, 0, 6))
	if err != nil {
		return nil, err
	}

	return &HistoryView{
		Region:        region.Name,
		Granularity:   "week",
		HistoryResult: analytics.WeeklyHistory(snap.Orders, region, weeks, anchor),
		FailedWeeks:   snap.FailedWeeks,
	}, nil
}

// ProjectStats exposes the raw key sets of one bucket.
func (s *DashboardService) ProjectStats(ctx context.Context, project string, start, end time.Time) (*ProjectStatsView, error) {
	start, end, err := s.rowsRange(start, end)
	if err != nil {
		return nil, err
	}

	snap, err := s.source.Load(ctx, start, end)
	if err != nil {
		return nil, err
	}

	name := normalize.Text(project)
	stats, ok := analytics.Aggregate(snap.Orders)[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProject, name)
	}

	return &ProjectStatsView{
		Project:     name,
		Range:       domain.DateRange{Start: start, End: end},
		Row:         analytics.NewRegionRow(name, stats),
		Stats:       stats,
		FailedWeeks: snap.FailedWeeks,
	}, nil
}

func (s *DashboardService) rowsRange(start, end time.Time) (time.Time, time.Time, error) {
	today := s.Today()
	if end.IsZero() {
		end = today
	}
	if start.IsZero() {
		start = time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, s.loc)
	}
	start, end = normalize.Day(start.In(s.loc)), normalize.Day(end.In(s.loc))
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end before start", ErrInvalidRange)
	}
	return start, end, nil
}

func resolveRegion(name string) (domain.Region, error) {
	key := normalize.Text(name)
	if key == "" {
		key = domain.AllRegionsName
	}
	region, ok := domain.FindRegion(key)
	if !ok {
		return domain.Region{}, fmt.Errorf("%w: %s", ErrUnknownRegion, key)
	}
	return region, nil
}
