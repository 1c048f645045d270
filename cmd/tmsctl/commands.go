package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/tms-dashboard/internal/analytics"
	"github.com/andresuchdata/tms-dashboard/internal/cache"
	"github.com/andresuchdata/tms-dashboard/internal/config"
	"github.com/andresuchdata/tms-dashboard/internal/export"
	"github.com/andresuchdata/tms-dashboard/internal/normalize"
	"github.com/andresuchdata/tms-dashboard/internal/repository/postgres"
	"github.com/andresuchdata/tms-dashboard/internal/service"
	"github.com/andresuchdata/tms-dashboard/internal/storage"
)

func printJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func rangeFlags(c *cli.Context) (time.Time, time.Time, error) {
	start, err := parseDate(c.String("start"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := parseDate(c.String("end"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func runRows(c *cli.Context) error {
	start, end, err := rangeFlags(c)
	if err != nil {
		return err
	}
	sort, ok := analytics.ParseSortMode(c.String("sort"))
	if !ok {
		return fmt.Errorf("unknown sort %q", c.String("sort"))
	}

	dashboard, cleanup, err := newDashboard(c)
	if err != nil {
		return err
	}
	defer cleanup()

	view, err := dashboard.RegionRows(c.Context, service.RowsQuery{
		Region: c.String("region"),
		Start:  start,
		End:    end,
		Options: analytics.RowOptions{
			Query:    c.String("q"),
			Sort:     sort,
			OnlyLate: c.Bool("only-late"),
		},
	})
	if err != nil {
		return err
	}
	return printJSON(c, view)
}

func runForecast(c *cli.Context) error {
	today, err := parseDate(c.String("today"))
	if err != nil {
		return err
	}

	dashboard, cleanup, err := newDashboard(c)
	if err != nil {
		return err
	}
	defer cleanup()

	view, err := dashboard.Forecast(c.Context, c.String("region"), today)
	if err != nil {
		return err
	}
	return printJSON(c, view)
}

func runMonthly(c *cli.Context) error {
	anchor, err := parseDate(c.String("anchor"))
	if err != nil {
		return err
	}

	dashboard, cleanup, err := newDashboard(c)
	if err != nil {
		return err
	}
	defer cleanup()

	view, err := dashboard.MonthlyHistory(c.Context, c.String("region"), c.Int("months"), anchor)
	if err != nil {
		return err
	}
	return printJSON(c, view)
}

func runWeekly(c *cli.Context) error {
	anchor, err := parseDate(c.String("anchor"))
	if err != nil {
		return err
	}

	dashboard, cleanup, err := newDashboard(c)
	if err != nil {
		return err
	}
	defer cleanup()

	view, err := dashboard.WeeklyHistory(c.Context, c.String("region"), c.Int("weeks"), anchor)
	if err != nil {
		return err
	}
	return printJSON(c, view)
}

func runStats(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("usage: tmsctl stats <project>")
	}
	start, end, err := rangeFlags(c)
	if err != nil {
		return err
	}

	dashboard, cleanup, err := newDashboard(c)
	if err != nil {
		return err
	}
	defer cleanup()

	view, err := dashboard.ProjectStats(c.Context, c.Args().First(), start, end)
	if err != nil {
		return err
	}
	return printJSON(c, view)
}

func runExport(c *cli.Context) error {
	cfg := config.Load()
	start, end, err := rangeFlags(c)
	if err != nil {
		return err
	}

	dashboard, cleanup, err := newDashboard(c)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := c.Context
	region := c.String("region")
	rows, err := dashboard.RegionRows(ctx, service.RowsQuery{Region: region, Start: start, End: end})
	if err != nil {
		return err
	}
	forecast, err := dashboard.Forecast(ctx, region, time.Time{})
	if err != nil {
		return err
	}
	monthly, err := dashboard.MonthlyHistory(ctx, region, 0, time.Time{})
	if err != nil {
		return err
	}
	weekly, err := dashboard.WeeklyHistory(ctx, region, 0, time.Time{})
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	err = export.WriteReport(&buf, export.Report{
		Region:   rows.Region,
		Rows:     rows.Rows,
		Forecast: &forecast.ForecastResult,
		Monthly:  &monthly.HistoryResult,
		Weekly:   &weekly.HistoryResult,
	})
	if err != nil {
		return err
	}

	now := time.Now().In(normalize.Location)
	out := c.String("out")
	if out == "" {
		out = filepath.Join(cfg.App.ExportDir, filepath.Base(storage.ExportKey("", rows.Region, now)))
	}
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed writing %s: %w", out, err)
	}
	fmt.Fprintln(c.App.Writer, out)

	if !c.Bool("upload") {
		return nil
	}
	client, err := newObjectStorage(cfg)
	if err != nil {
		return err
	}
	key := storage.ExportKey(cfg.Storage.Prefix, rows.Region, now)
	if err := client.UploadObject(ctx, key, buf.Bytes()); err != nil {
		return err
	}
	log.Info().Str("key", key).Msg("workbook uploaded")
	fmt.Fprintln(c.App.Writer, key)
	return nil
}

func runReports(c *cli.Context) error {
	cfg := config.Load()
	client, err := newObjectStorage(cfg)
	if err != nil {
		return err
	}
	objects, err := client.ListObjects(c.Context, cfg.Storage.Prefix)
	if err != nil {
		return err
	}
	return printJSON(c, objects)
}

func runFetch(c *cli.Context) error {
	cfg := config.Load()
	start, end, err := rangeFlags(c)
	if err != nil {
		return err
	}
	if start.IsZero() || end.IsZero() {
		return errors.New("--start and --end are required")
	}

	recorder, cleanup, err := newRecorder(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	source, err := service.NewTMSSource(cfg, recorder)
	if err != nil {
		return err
	}
	snap, err := source.Load(c.Context, start, end)
	if err != nil {
		return err
	}
	if len(snap.FailedWeeks) > 0 {
		log.Warn().Strs("weeks", snap.FailedWeeks).Msg("some weeks could not be fetched")
	}

	out := c.String("out")
	if out == "" {
		return printJSON(c, snap)
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("failed writing %s: %w", out, err)
	}
	log.Info().Str("path", out).Int("orders", len(snap.Orders)).Msg("snapshot written")
	return nil
}

func runClearCache(c *cli.Context) error {
	cfg := config.Load()
	if !cfg.Cache.Enabled {
		return errors.New("CACHE_ENABLED is false")
	}
	snapshots, err := cache.NewOrderSnapshotCache(cfg.Cache)
	if err != nil {
		return err
	}
	if err := snapshots.InvalidateAll(c.Context); err != nil {
		return err
	}
	log.Info().Msg("order snapshot cache cleared")
	return nil
}

func runMigrate(c *cli.Context) error {
	cfg := config.Load()
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	return db.Migrate(c.Context)
}
