package main

import (
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/tms-dashboard/internal/config"
	"github.com/andresuchdata/tms-dashboard/internal/normalize"
	"github.com/andresuchdata/tms-dashboard/pkg/logger"
)

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:      "tmsctl",
		Usage:     "Inspect TMS order dashboards from the command line",
		Writer:    out,
		ErrWriter: os.Stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Usage:   "Read orders from a local xlsx, csv or json export",
				EnvVars: []string{"TMS_EXPORT_FILE"},
			},
			&cli.StringFlag{
				Name:  "drive-file",
				Usage: "Read orders from a Google Drive export (file id)",
			},
			&cli.StringFlag{
				Name:  "drive-folder",
				Usage: "Read every export in a Google Drive folder (folder id)",
			},
			&cli.StringFlag{
				Name:  "object",
				Usage: "Read orders from an export stored in object storage (key)",
			},
			&cli.StringFlag{
				Name:  "start",
				Usage: "Range start (YYYY-MM-DD) when fetching from the TMS API",
			},
			&cli.StringFlag{
				Name:  "end",
				Usage: "Range end (YYYY-MM-DD) when fetching from the TMS API",
			},
			&cli.StringFlag{
				Name:    "region",
				Usage:   "Region name, TÜMÜ for all regions",
				Value:   "TÜMÜ",
				Aliases: []string{"r"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level",
				Value:   "warn",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Before: func(c *cli.Context) error {
			cfg := config.Load()
			logger.Setup(cfg.Server.Mode, c.String("log-level"))
			normalize.Location = cfg.TMS.Location()
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "rows",
				Usage: "Print the project table of a region",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "q", Usage: "Project name filter"},
					&cli.StringFlag{Name: "sort", Usage: "plan, gec or yuzde", Value: "plan"},
					&cli.BoolFlag{Name: "only-late", Usage: "Only projects with late pickups"},
				},
				Action: runRows,
			},
			{
				Name:  "forecast",
				Usage: "Print the weekday-weighted forecast of a region",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "today", Usage: "Forecast as of this day (YYYY-MM-DD)"},
				},
				Action: runForecast,
			},
			{
				Name:  "history",
				Usage: "Print trailing pickup history",
				Subcommands: []*cli.Command{
					{
						Name:  "monthly",
						Usage: "Per-project pickups by month",
						Flags: []cli.Flag{
							&cli.IntFlag{Name: "months", Usage: "Number of months", Value: 6},
							&cli.StringFlag{Name: "anchor", Usage: "Last month to include (YYYY-MM-DD)"},
						},
						Action: runMonthly,
					},
					{
						Name:  "weekly",
						Usage: "Per-project orders by fetched week",
						Flags: []cli.Flag{
							&cli.IntFlag{Name: "weeks", Usage: "Number of weeks (default TMS_WEEKS_BACK)"},
							&cli.StringFlag{Name: "anchor", Usage: "Last week to include (YYYY-MM-DD)"},
						},
						Action: runWeekly,
					},
				},
			},
			{
				Name:      "stats",
				Usage:     "Print the raw key sets of one project",
				ArgsUsage: "<project>",
				Action:    runStats,
			},
			{
				Name:  "export",
				Usage: "Write rows, forecast and history of a region as xlsx",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Usage: "Output path (default APP_EXPORT_DIR/<region>-<time>.xlsx)"},
					&cli.BoolFlag{Name: "upload", Usage: "Also upload the workbook to object storage"},
				},
				Action: runExport,
			},
			{
				Name:   "reports",
				Usage:  "List workbooks uploaded to object storage",
				Action: runReports,
			},
			{
				Name:  "fetch",
				Usage: "Fetch orders from the TMS API and dump the snapshot as JSON",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Usage: "Output path, stdout when empty"},
				},
				Action: runFetch,
			},
			{
				Name:   "clear-cache",
				Usage:  "Drop every cached order snapshot",
				Action: runClearCache,
			},
			{
				Name:   "migrate",
				Usage:  "Apply database migrations",
				Action: runMigrate,
			},
		},
	}
}

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("tmsctl failed")
	}
}
