package main

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/tms-dashboard/internal/config"
	"github.com/andresuchdata/tms-dashboard/internal/domain"
	"github.com/andresuchdata/tms-dashboard/internal/drive"
	"github.com/andresuchdata/tms-dashboard/internal/importer"
	"github.com/andresuchdata/tms-dashboard/internal/normalize"
	"github.com/andresuchdata/tms-dashboard/internal/pipeline"
	"github.com/andresuchdata/tms-dashboard/internal/repository/postgres"
	"github.com/andresuchdata/tms-dashboard/internal/service"
	"github.com/andresuchdata/tms-dashboard/internal/storage"
)

const dateLayout = "2006-01-02"

// parseDate reads an optional YYYY-MM-DD flag value.
func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(dateLayout, raw, normalize.Location)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", raw)
	}
	return t, nil
}

// newDashboard builds the dashboard service over the source the global flags
// select. The returned cleanup must be called when done.
func newDashboard(c *cli.Context) (*service.DashboardService, func(), error) {
	cfg := config.Load()
	source, cleanup, err := newSource(c, cfg)
	if err != nil {
		return nil, nil, err
	}
	return service.NewDashboardService(source, service.Options{
		WeeksBack: cfg.TMS.WeeksBack,
		Location:  normalize.Location,
	}), cleanup, nil
}

func newSource(c *cli.Context, cfg *config.Config) (service.OrderSource, func(), error) {
	noop := func() {}

	records, ok, err := importRecords(c, cfg)
	if err != nil {
		return nil, nil, err
	}
	if ok {
		log.Info().Int("records", len(records)).Msg("orders imported")
		return service.NewStaticSource(records), noop, nil
	}

	recorder, cleanup, err := newRecorder(cfg)
	if err != nil {
		return nil, nil, err
	}
	source, err := service.NewTMSSource(cfg, recorder)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return source, cleanup, nil
}

// importRecords reads the export named by --file, --drive-file, --drive-folder
// or --object. ok is false when none is set.
func importRecords(c *cli.Context, cfg *config.Config) ([]domain.OrderRecord, bool, error) {
	switch {
	case c.String("file") != "":
		records, err := importer.ReadFile(c.String("file"))
		return records, true, err

	case c.String("drive-file") != "", c.String("drive-folder") != "":
		if cfg.Drive.CredentialsJSON == "" {
			return nil, true, errors.New("GOOGLE_CREDENTIALS_JSON is required for drive sources")
		}
		driveService, err := drive.NewService(c.Context, cfg.Drive.CredentialsJSON)
		if err != nil {
			return nil, true, err
		}
		ingest := drive.NewIngestService(driveService)
		if id := c.String("drive-file"); id != "" {
			records, err := ingest.IngestFile(c.Context, id)
			return records, true, err
		}
		res, err := ingest.IngestFolder(c.Context, c.String("drive-folder"))
		if err != nil {
			return nil, true, err
		}
		return res.Records, true, nil

	case c.String("object") != "":
		client, err := newObjectStorage(cfg)
		if err != nil {
			return nil, true, err
		}
		key := c.String("object")
		dir, err := os.MkdirTemp("", "tmsctl-")
		if err != nil {
			return nil, true, err
		}
		defer os.RemoveAll(dir)

		local := filepath.Join(dir, path.Base(key))
		if err := client.DownloadObject(c.Context, key, local); err != nil {
			return nil, true, err
		}
		records, err := importer.ReadFile(local)
		return records, true, err
	}
	return nil, false, nil
}

// newRecorder returns the postgres run recorder when the database is enabled.
func newRecorder(cfg *config.Config) (pipeline.RunRecorder, func(), error) {
	if !cfg.Database.Enabled {
		return pipeline.NopRecorder{}, func() {}, nil
	}
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return pipeline.NewRepository(db), func() { _ = db.Close() }, nil
}

func newObjectStorage(cfg *config.Config) (*storage.MinioClient, error) {
	return storage.NewMinioClient(storage.MinioConfig{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Bucket:    cfg.Storage.Bucket,
		UseSSL:    cfg.Storage.UseSSL,
	})
}
