package analytics

import (
	"math"
	"time"

	"github.com/andresuchdata/tms-dashboard/internal/domain"
	"github.com/andresuchdata/tms-dashboard/internal/normalize"
)

const (
	baselineDays = 28
	weightWeeks  = 12
)

// calendar holds the day anchors of one forecast run. All values are
// midnights in the location of today.
type calendar struct {
	today      time.Time
	week0Start time.Time
	monthStart time.Time
	monthEnd   time.Time
}

func newCalendar(today time.Time) calendar {
	t := normalize.Day(today)
	weekStart := t.AddDate(0, 0, -mondayIndex(t))
	monthStart := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return calendar{
		today:      t,
		week0Start: weekStart,
		monthStart: monthStart,
		monthEnd:   monthStart.AddDate(0, 1, -1),
	}
}

func (c calendar) week(n int) domain.DateRange {
	start := c.week0Start.AddDate(0, 0, 7*n)
	return domain.DateRange{Start: start, End: start.AddDate(0, 0, 6)}
}

func (c calendar) baselineRange() domain.DateRange {
	return domain.DateRange{Start: c.today.AddDate(0, 0, -(baselineDays - 1)), End: c.today}
}

func (c calendar) weightRange() domain.DateRange {
	return domain.DateRange{Start: c.week0Start.AddDate(0, 0, -7*weightWeeks), End: c.today}
}

// mondayIndex maps Monday..Sunday to 0..6.
func mondayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func inRange(day time.Time, r domain.DateRange) bool {
	return !day.Before(r.Start) && !day.After(r.End)
}

// projectModel is the per-project forecast state: pickup days of actual
// orders, the daily baseline rate and the weekday weights.
type projectModel struct {
	days     []time.Time
	baseline float64
	weights  [7]float64
}

func newProjectModel(days []time.Time, cal calendar) projectModel {
	m := projectModel{days: days}

	base := cal.baselineRange()
	m.baseline = float64(m.count(base)) / baselineDays

	var perDay [7]int
	total := 0
	span := cal.weightRange()
	for _, d := range days {
		if inRange(d, span) {
			perDay[mondayIndex(d)]++
			total++
		}
	}
	for i := range m.weights {
		if total == 0 {
			m.weights[i] = 1
			continue
		}
		m.weights[i] = float64(perDay[i]) / (float64(total) / 7)
	}
	return m
}

func (m projectModel) count(r domain.DateRange) int {
	n := 0
	for _, d := range m.days {
		if inRange(d, r) {
			n++
		}
	}
	return n
}

// expected projects the order count of every day in [from, to].
func (m projectModel) expected(from, to time.Time) float64 {
	if m.baseline <= 0 {
		return 0
	}
	sum := 0.0
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		sum += m.weights[mondayIndex(d)]
	}
	return m.baseline * sum
}

func round(f float64) int {
	return int(math.Round(f))
}

// Forecast projects this week, the next two weeks and the current month for
// every project of region. Actual orders up to today are added to the
// projected remainder where a bucket has already started.
func Forecast(records []domain.OrderRecord, region domain.Region, today time.Time) domain.ForecastResult {
	cal := newCalendar(today)
	loc := cal.today.Location()

	days := make(map[string][]time.Time)
	for _, o := range actualOrders(records, region) {
		if !o.HasPickup {
			continue
		}
		days[o.Bucket] = append(days[o.Bucket], normalize.Day(o.Pickup.In(loc)))
	}

	week0, week1, week2 := cal.week(0), cal.week(1), cal.week(2)
	month := domain.DateRange{Start: cal.monthStart, End: cal.monthEnd}
	tomorrow := cal.today.AddDate(0, 0, 1)

	result := domain.ForecastResult{
		Meta: domain.ForecastMeta{
			Today:    cal.today,
			Week0:    week0,
			Week1:    week1,
			Week2:    week2,
			Month:    month,
			Baseline: cal.baselineRange(),
			Weights:  cal.weightRange(),
		},
		Series: make([]domain.ForecastSeriesRow, 0, len(region.Projects)),
	}

	for _, project := range region.Projects {
		m := newProjectModel(days[project], cal)

		weekActual := m.count(domain.DateRange{Start: week0.Start, End: cal.today})
		monthActual := m.count(domain.DateRange{Start: month.Start, End: cal.today})

		result.Series = append(result.Series, domain.ForecastSeriesRow{
			Proje:         project,
			BuHafta:       round(float64(weekActual) + m.expected(tomorrow, week0.End)),
			GelecekHafta:  round(m.expected(week1.Start, week1.End)),
			DigerHafta:    round(m.expected(week2.Start, week2.End)),
			AySonunaKadar: round(float64(monthActual) + m.expected(tomorrow, month.End)),
			AyToplam:      round(m.expected(month.Start, month.End)),
		})
	}

	return result
}
