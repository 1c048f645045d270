package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/tms-dashboard/internal/domain"
)

var historyRegion = domain.Region{Name: "TEST", Projects: []string{"FLO FTL", "PEPSİ FTL"}}

func TestMonthlyHistory(t *testing.T) {
	records := pickups(
		utcDay(2024, 12, 31),
		utcDay(2025, 1, 10),
		utcDay(2025, 3, 1),
		utcDay(2025, 3, 31),
		utcDay(2025, 4, 1),
	)
	other := newRecord("ŞİŞECAM FTL", "REQX", "SFRX")
	other.PickupDate = utcDay(2025, 2, 2)
	records = append(records, other)

	res := MonthlyHistory(records, historyRegion, 3, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))

	assert.Equal(t, []time.Time{utcDay(2025, 1, 1), utcDay(2025, 2, 1), utcDay(2025, 3, 1)}, res.Periods)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, domain.HistoryRow{Proje: "FLO FTL", Counts: []int{1, 0, 2}, Total: 3}, res.Rows[0])
	assert.Equal(t, domain.HistoryRow{Proje: "PEPSİ FTL", Counts: []int{0, 0, 0}}, res.Rows[1])
}

func TestMonthlyHistoryCrossesYear(t *testing.T) {
	res := MonthlyHistory(pickups(utcDay(2024, 11, 5)), historyRegion, 3, utcDay(2025, 1, 20))

	assert.Equal(t, utcDay(2024, 11, 1), res.Periods[0])
	assert.Equal(t, []int{1, 0, 0}, res.Rows[0].Counts)
}

func TestMonthlyHistoryClampsMonthsBack(t *testing.T) {
	res := MonthlyHistory(nil, historyRegion, 0, utcDay(2025, 1, 20))
	assert.Len(t, res.Periods, 1)
	assert.Len(t, res.Rows[0].Counts, 1)
}

func TestWeeklyHistory(t *testing.T) {
	records := pickups(utcDay(2025, 3, 4), utcDay(2025, 3, 11), utcDay(2025, 3, 12), utcDay(2025, 3, 13))
	records[0].WeekKey = "2025-03-03"
	records[1].WeekKey = "2025-03-10"
	records[2].WeekKey = "2025-03-10"
	// Untagged records never land in a week, whatever their pickup date.
	records[3].WeekKey = ""

	res := WeeklyHistory(records, historyRegion, 2, utcDay(2025, 3, 12))

	assert.Equal(t, []time.Time{utcDay(2025, 3, 3), utcDay(2025, 3, 10)}, res.Periods)
	assert.Equal(t, domain.HistoryRow{Proje: "FLO FTL", Counts: []int{1, 2}, Total: 3}, res.Rows[0])
}

func TestWeeklyHistoryUsesTagNotPickup(t *testing.T) {
	records := pickups(utcDay(2025, 1, 1))
	records[0].WeekKey = "2025-03-10"

	res := WeeklyHistory(records, historyRegion, 1, utcDay(2025, 3, 16))
	assert.Equal(t, []int{1}, res.Rows[0].Counts)
}
