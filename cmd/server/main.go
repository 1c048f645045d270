package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/tms-dashboard/internal/api"
	"github.com/andresuchdata/tms-dashboard/internal/config"
	"github.com/andresuchdata/tms-dashboard/internal/drive"
	"github.com/andresuchdata/tms-dashboard/internal/normalize"
	"github.com/andresuchdata/tms-dashboard/internal/pipeline"
	"github.com/andresuchdata/tms-dashboard/internal/repository/postgres"
	"github.com/andresuchdata/tms-dashboard/internal/service"
	"github.com/andresuchdata/tms-dashboard/pkg/logger"
)

func main() {
	cfg := config.Load()

	logger.Setup(cfg.Server.Mode, cfg.Server.LogLevel)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	loc := cfg.TMS.Location()
	normalize.Location = loc

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	services := &api.Services{}

	var recorder pipeline.RunRecorder = pipeline.NopRecorder{}
	if cfg.Database.Enabled {
		db, err := postgres.NewDB(&cfg.Database)
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer db.Close()

		if err := db.Migrate(ctx); err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to migrate database")
		}
		repo := pipeline.NewRepository(db)
		recorder = repo
		services.FetchRuns = repo
	}

	source, err := newOrderSource(ctx, cfg, recorder)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to set up order source")
	}
	services.Dashboard = service.NewDashboardService(source, service.Options{
		WeeksBack: cfg.TMS.WeeksBack,
		Location:  loc,
	})

	router := api.NewRouter(services, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Str("timezone", loc.String()).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	logger.Log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}

// newOrderSource prefers the TMS API. Without a TMS_BASE_URL the exports in
// the configured Drive folder are loaded once at startup.
func newOrderSource(ctx context.Context, cfg *config.Config, recorder pipeline.RunRecorder) (service.OrderSource, error) {
	if cfg.TMS.BaseURL != "" {
		return service.NewTMSSource(cfg, recorder)
	}

	if cfg.Drive.CredentialsJSON == "" || cfg.Drive.FolderID == "" {
		return nil, errors.New("set TMS_BASE_URL or GOOGLE_CREDENTIALS_JSON and GOOGLE_DRIVE_FOLDER_ID")
	}
	driveService, err := drive.NewService(ctx, cfg.Drive.CredentialsJSON)
	if err != nil {
		return nil, err
	}
	res, err := drive.NewIngestService(driveService).IngestFolder(ctx, cfg.Drive.FolderID)
	if err != nil {
		return nil, fmt.Errorf("import drive folder: %w", err)
	}
	if len(res.Files) == 0 {
		logger.Log.Warn().Str("folder", cfg.Drive.FolderID).Msg("drive folder has no order exports")
	}
	logger.Log.Info().Strs("files", res.Files).Int("records", len(res.Records)).Msg("serving drive exports")
	return service.NewStaticSource(res.Records), nil
}
