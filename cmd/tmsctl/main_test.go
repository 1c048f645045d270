package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/andresuchdata/tms-dashboard/internal/domain"
	"github.com/andresuchdata/tms-dashboard/internal/export"
	"github.com/andresuchdata/tms-dashboard/internal/normalize"
)

const exportCSV = "ProjectName;ServiceName;TMSVehicleRequestDocumentNo;TMSDespatchDocumentNo;OrderStatu;VehicleWorkingName;IsPrint;TMSDespatchCreatedDate;PickupDate;_week\n" +
	"FLO FTL;YURTİÇİ FTL HİZMETLERİ;REQ1;SFR1;1;FİLO;1;06.01.2025 08:00;07.01.2025 08:00;2025-01-06\n" +
	"FLO FTL;YURTİÇİ FTL HİZMETLERİ;REQ2;SFR2;1;SPOT;0;06.01.2025 08:00;08.01.2025 20:00;2025-01-06\n" +
	"ŞEKER FTL;YURTİÇİ FTL HİZMETLERİ;REQ3;SFR3;200;FİLO;1;06.01.2025 08:00;07.01.2025 08:00;2025-01-06\n"

func writeExport(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "orders.csv")
	require.NoError(t, os.WriteFile(path, []byte(exportCSV), 0o644))
	return path
}

func run(t *testing.T, args ...string) *bytes.Buffer {
	t.Helper()
	var out bytes.Buffer
	require.NoError(t, newApp(&out).Run(append([]string{"tmsctl"}, args...)))
	return &out
}

func TestRowsFromFile(t *testing.T) {
	out := run(t, "--file", writeExport(t), "--region", "marmara", "rows", "--sort", "gec")

	var view struct {
		Region string             `json:"region"`
		Rows   []domain.RegionRow `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &view))
	assert.Equal(t, "MARMARA", view.Region)
	require.Len(t, view.Rows, 1)

	row := view.Rows[0]
	assert.Equal(t, "FLO FTL", row.Name)
	assert.Equal(t, 2, row.Plan)
	assert.Equal(t, 1, row.Zamaninda)
	assert.Equal(t, 1, row.Gec)
	assert.Equal(t, 50, row.Yuzde)
}

func TestStatsCountsCancellation(t *testing.T) {
	out := run(t, "--file", writeExport(t), "stats", "şeker ftl")

	var view struct {
		Stats domain.BucketStats `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &view))
	assert.Equal(t, []string{"SFR3"}, view.Stats.Iptal.Sorted())
	assert.Zero(t, view.Stats.Ted.Len())
}

func TestWeeklyHistoryFromFile(t *testing.T) {
	out := run(t, "--file", writeExport(t), "-r", "marmara", "history", "weekly", "--weeks", "2", "--anchor", "2025-01-08")

	var view struct {
		Granularity string              `json:"granularity"`
		Rows        []domain.HistoryRow `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &view))
	assert.Equal(t, "week", view.Granularity)

	for _, r := range view.Rows {
		if r.Proje == "FLO FTL" {
			assert.Equal(t, []int{0, 2}, r.Counts)
			return
		}
	}
	t.Fatal("FLO FTL row missing")
}

func TestExportWritesWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	out := run(t, "--file", writeExport(t), "-r", "marmara", "export", "--out", path)
	assert.Contains(t, out.String(), path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{export.SheetRows, export.SheetForecast, export.SheetMonthly, export.SheetWeekly}, f.GetSheetList())
}

func TestUnknownRegionFails(t *testing.T) {
	err := newApp(&bytes.Buffer{}).Run([]string{"tmsctl", "--file", writeExport(t), "-r", "karadeniz", "rows"})
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	prev := normalize.Location
	normalize.Location = time.UTC
	t.Cleanup(func() { normalize.Location = prev })

	d, err := parseDate("2025-01-06")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC), d)

	d, err = parseDate(" ")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	_, err = parseDate("06.01.2025")
	assert.Error(t, err)
}
