package analytics

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/tms-dashboard/internal/domain"
)

var forecastRegion = domain.Region{Name: "TEST", Projects: []string{"FLO FTL", "PEPSİ FTL"}}

func utcDay(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// pickups returns one FLO FTL order per given day, picked up at noon.
func pickups(days ...time.Time) []domain.OrderRecord {
	records := make([]domain.OrderRecord, 0, len(days))
	for i, d := range days {
		rec := newRecord("FLO FTL", fmt.Sprintf("REQ%d", i), fmt.Sprintf("SFR%d", i))
		rec.PickupDate = d.Add(12 * time.Hour)
		records = append(records, rec)
	}
	return records
}

func seriesFor(t *testing.T, res domain.ForecastResult, project string) domain.ForecastSeriesRow {
	t.Helper()
	for _, row := range res.Series {
		if row.Proje == project {
			return row
		}
	}
	require.FailNow(t, "project missing from series", project)
	return domain.ForecastSeriesRow{}
}

func TestForecastCalendar(t *testing.T) {
	// Wednesday
	res := Forecast(nil, forecastRegion, time.Date(2025, 1, 15, 17, 30, 0, 0, time.UTC))

	assert.Equal(t, utcDay(2025, 1, 15), res.Meta.Today)
	assert.Equal(t, domain.DateRange{Start: utcDay(2025, 1, 13), End: utcDay(2025, 1, 19)}, res.Meta.Week0)
	assert.Equal(t, domain.DateRange{Start: utcDay(2025, 1, 20), End: utcDay(2025, 1, 26)}, res.Meta.Week1)
	assert.Equal(t, domain.DateRange{Start: utcDay(2025, 1, 27), End: utcDay(2025, 2, 2)}, res.Meta.Week2)
	assert.Equal(t, domain.DateRange{Start: utcDay(2025, 1, 1), End: utcDay(2025, 1, 31)}, res.Meta.Month)
	assert.Equal(t, utcDay(2024, 12, 19), res.Meta.Baseline.Start)
	assert.Equal(t, utcDay(2024, 10, 21), res.Meta.Weights.Start)

	// Sunday belongs to the week that started six days earlier.
	res = Forecast(nil, forecastRegion, utcDay(2025, 1, 19))
	assert.Equal(t, utcDay(2025, 1, 13), res.Meta.Week0.Start)
}

func TestForecastFlatRate(t *testing.T) {
	var days []time.Time
	for d := utcDay(2024, 12, 19); !d.After(utcDay(2025, 1, 15)); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}

	res := Forecast(pickups(days...), forecastRegion, utcDay(2025, 1, 15))
	require.Len(t, res.Series, 2)

	flo := seriesFor(t, res, "FLO FTL")
	assert.Equal(t, domain.ForecastSeriesRow{
		Proje:         "FLO FTL",
		BuHafta:       7,
		GelecekHafta:  7,
		DigerHafta:    7,
		AySonunaKadar: 31,
		AyToplam:      31,
	}, flo)

	assert.Equal(t, domain.ForecastSeriesRow{Proje: "PEPSİ FTL"}, seriesFor(t, res, "PEPSİ FTL"))
}

func TestForecastWeekdayWeights(t *testing.T) {
	// Four Mondays inside the baseline window and nothing else.
	records := pickups(utcDay(2024, 12, 23), utcDay(2024, 12, 30), utcDay(2025, 1, 6), utcDay(2025, 1, 13))

	flo := seriesFor(t, Forecast(records, forecastRegion, utcDay(2025, 1, 15)), "FLO FTL")
	assert.Equal(t, 1, flo.BuHafta)
	assert.Equal(t, 1, flo.GelecekHafta)
	assert.Equal(t, 1, flo.DigerHafta)
	assert.Equal(t, 4, flo.AySonunaKadar)
	assert.Equal(t, 4, flo.AyToplam)
}

func TestForecastWithoutBaselineKeepsActuals(t *testing.T) {
	// The 1st is outside the 28-day window ending on the 31st.
	records := pickups(utcDay(2025, 1, 1))

	flo := seriesFor(t, Forecast(records, forecastRegion, utcDay(2025, 1, 31)), "FLO FTL")
	assert.Equal(t, domain.ForecastSeriesRow{Proje: "FLO FTL", AySonunaKadar: 1}, flo)
}

func TestForecastCountsEachRequestOnce(t *testing.T) {
	records := pickups(utcDay(2025, 1, 14), utcDay(2025, 1, 14))
	records[1].TMSVehicleRequestDocumentNo = records[0].TMSVehicleRequestDocumentNo

	res := Forecast(records, forecastRegion, utcDay(2025, 1, 15))
	flo := seriesFor(t, res, "FLO FTL")
	// baseline 1/28, weights all on Tuesday (7): next week expects 0.25.
	assert.Equal(t, 0, flo.GelecekHafta)
	assert.Equal(t, 1, flo.BuHafta)
}

func TestForecastIgnoresOtherRegions(t *testing.T) {
	rec := newRecord("ŞİŞECAM FTL", "REQ1", "SFR1")
	rec.PickupDate = utcDay(2025, 1, 14)

	res := Forecast([]domain.OrderRecord{rec}, forecastRegion, utcDay(2025, 1, 15))
	for _, row := range res.Series {
		assert.Zero(t, row.BuHafta, row.Proje)
	}
}
