package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/tms-dashboard/internal/pipeline"
)

const (
	defaultRunLimit = 20
	maxRunLimit     = 200
)

// RunStore reads recorded fetch runs.
type RunStore interface {
	GetRun(ctx context.Context, id string) (*pipeline.FetchRun, error)
	ListRecentRuns(ctx context.Context, limit int) ([]pipeline.FetchRun, error)
	GetWeekJobsByRunID(ctx context.Context, runID string) ([]pipeline.WeekJob, error)
}

type FetchRunHandler struct {
	runs RunStore
}

func NewFetchRunHandler(runs RunStore) *FetchRunHandler {
	return &FetchRunHandler{runs: runs}
}

// ListRuns returns the latest fetch runs, newest first.
func (h *FetchRunHandler) ListRuns(c *gin.Context) {
	limit := defaultRunLimit
	if v, err := strconv.Atoi(strings.TrimSpace(c.Query("limit"))); err == nil && v > 0 {
		limit = min(v, maxRunLimit)
	}

	runs, err := h.runs.ListRecentRuns(c.Request.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("failed to list fetch runs")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list fetch runs"})
		return
	}
	if runs == nil {
		runs = []pipeline.FetchRun{}
	}
	c.JSON(http.StatusOK, runs)
}

// GetRun returns one run with its week jobs.
func (h *FetchRunHandler) GetRun(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
		return
	}

	run, err := h.runs.GetRun(c.Request.Context(), id)
	if err != nil {
		log.Error().Err(err).Str("run_id", id).Msg("failed to get fetch run")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get fetch run"})
		return
	}
	if run == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "fetch run not found"})
		return
	}

	jobs, err := h.runs.GetWeekJobsByRunID(c.Request.Context(), id)
	if err != nil {
		log.Error().Err(err).Str("run_id", id).Msg("failed to get week jobs")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get week jobs"})
		return
	}
	if jobs == nil {
		jobs = []pipeline.WeekJob{}
	}

	c.JSON(http.StatusOK, gin.H{"run": run, "weeks": jobs})
}
