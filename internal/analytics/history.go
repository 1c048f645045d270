package analytics

import (
	"time"

	"github.com/andresuchdata/tms-dashboard/internal/domain"
	"github.com/andresuchdata/tms-dashboard/internal/normalize"
)

// MonthlyHistory counts actual orders per project and calendar month for the
// monthsBack months ending with the anchor's month. Orders are bucketed by
// pickup date.
func MonthlyHistory(records []domain.OrderRecord, region domain.Region, monthsBack int, anchor time.Time) domain.HistoryResult {
	monthsBack = max(1, monthsBack)
	loc := anchor.Location()
	last := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, loc)
	first := last.AddDate(0, -(monthsBack - 1), 0)

	periods := make([]time.Time, monthsBack)
	for i := range periods {
		periods[i] = first.AddDate(0, i, 0)
	}

	result := newHistory(region, periods)
	for _, o := range actualOrders(records, region) {
		if !o.HasPickup {
			continue
		}
		p := o.Pickup.In(loc)
		idx := (p.Year()-first.Year())*12 + int(p.Month()) - int(first.Month())
		if idx < 0 || idx >= monthsBack {
			continue
		}
		result.add(o.Bucket, idx)
	}
	return result.HistoryResult
}

// WeeklyHistory counts actual orders per project for the weeksBack weeks
// ending with the anchor's week. Orders are bucketed by the week they were
// fetched for (OrderRecord.WeekKey); untagged records are ignored.
func WeeklyHistory(records []domain.OrderRecord, region domain.Region, weeksBack int, anchor time.Time) domain.HistoryResult {
	weeksBack = max(1, weeksBack)
	day := normalize.Day(anchor)
	last := day.AddDate(0, 0, -mondayIndex(day))
	first := last.AddDate(0, 0, -7*(weeksBack-1))

	periods := make([]time.Time, weeksBack)
	index := make(map[string]int, weeksBack)
	for i := range periods {
		periods[i] = first.AddDate(0, 0, 7*i)
		index[periods[i].Format(domain.WeekKeyLayout)] = i
	}

	result := newHistory(region, periods)
	for _, o := range actualOrders(records, region) {
		idx, ok := index[o.WeekKey]
		if !ok {
			continue
		}
		result.add(o.Bucket, idx)
	}
	return result.HistoryResult
}

type historyBuilder struct {
	domain.HistoryResult
	rows map[string]int
}

func newHistory(region domain.Region, periods []time.Time) *historyBuilder {
	b := &historyBuilder{
		HistoryResult: domain.HistoryResult{
			Periods: periods,
			Rows:    make([]domain.HistoryRow, len(region.Projects)),
		},
		rows: make(map[string]int, len(region.Projects)),
	}
	for i, p := range region.Projects {
		b.Rows[i] = domain.HistoryRow{Proje: p, Counts: make([]int, len(periods))}
		b.rows[p] = i
	}
	return b
}

func (b *historyBuilder) add(project string, period int) {
	i, ok := b.rows[project]
	if !ok {
		return
	}
	b.Rows[i].Counts[period]++
	b.Rows[i].Total++
}
