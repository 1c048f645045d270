package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/tms-dashboard/internal/analytics"
	"github.com/andresuchdata/tms-dashboard/internal/export"
	"github.com/andresuchdata/tms-dashboard/internal/normalize"
	"github.com/andresuchdata/tms-dashboard/internal/service"
	"github.com/andresuchdata/tms-dashboard/internal/storage"
)

const dateLayout = "2006-01-02"

type DashboardHandler struct {
	dashboard *service.DashboardService
}

func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// GetRegions returns every region with its project allow-list.
func (h *DashboardHandler) GetRegions(c *gin.Context) {
	c.JSON(http.StatusOK, h.dashboard.Regions())
}

// GetStatuses returns the order status code table.
func (h *DashboardHandler) GetStatuses(c *gin.Context) {
	c.JSON(http.StatusOK, h.dashboard.Statuses())
}

// GetRows returns the project table of a region.
func (h *DashboardHandler) GetRows(c *gin.Context) {
	q, ok := h.rowsQuery(c)
	if !ok {
		return
	}

	view, err := h.dashboard.RegionRows(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// ExportRows sends the same table as GetRows as an xlsx download.
func (h *DashboardHandler) ExportRows(c *gin.Context) {
	q, ok := h.rowsQuery(c)
	if !ok {
		return
	}

	view, err := h.dashboard.RegionRows(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteReport(&buf, export.Report{Region: view.Region, Rows: view.Rows}); err != nil {
		log.Error().Err(err).Str("region", view.Region).Msg("failed to render rows workbook")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render workbook"})
		return
	}

	filename := storage.Slug(view.Region) + "-" + view.Range.End.Format("20060102") + ".xlsx"
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}

// GetForecast returns the weekday-weighted forecast of a region.
func (h *DashboardHandler) GetForecast(c *gin.Context) {
	today, ok := parseDateParam(c, "today")
	if !ok {
		return
	}

	view, err := h.dashboard.Forecast(c.Request.Context(), c.Param("region"), today)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetMonthlyHistory returns per-project pickup counts by month.
func (h *DashboardHandler) GetMonthlyHistory(c *gin.Context) {
	months, ok := parseCountParam(c, "months")
	if !ok {
		return
	}
	anchor, ok := parseDateParam(c, "anchor")
	if !ok {
		return
	}

	view, err := h.dashboard.MonthlyHistory(c.Request.Context(), c.Param("region"), months, anchor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetWeeklyHistory returns per-project order counts by fetched week.
func (h *DashboardHandler) GetWeeklyHistory(c *gin.Context) {
	weeks, ok := parseCountParam(c, "weeks")
	if !ok {
		return
	}
	anchor, ok := parseDateParam(c, "anchor")
	if !ok {
		return
	}

	view, err := h.dashboard.WeeklyHistory(c.Request.Context(), c.Param("region"), weeks, anchor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetProjectStats returns the raw key sets of one project bucket.
func (h *DashboardHandler) GetProjectStats(c *gin.Context) {
	start, ok := parseDateParam(c, "start")
	if !ok {
		return
	}
	end, ok := parseDateParam(c, "end")
	if !ok {
		return
	}

	view, err := h.dashboard.ProjectStats(c.Request.Context(), c.Param("project"), start, end)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *DashboardHandler) rowsQuery(c *gin.Context) (service.RowsQuery, bool) {
	start, ok := parseDateParam(c, "start")
	if !ok {
		return service.RowsQuery{}, false
	}
	end, ok := parseDateParam(c, "end")
	if !ok {
		return service.RowsQuery{}, false
	}

	sort, ok := analytics.ParseSortMode(c.Query("sort"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sort must be one of plan, gec, yuzde"})
		return service.RowsQuery{}, false
	}

	onlyLate := false
	if raw := strings.TrimSpace(c.Query("only_late")); raw != "" {
		var err error
		onlyLate, err = strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "only_late must be a boolean"})
			return service.RowsQuery{}, false
		}
	}

	return service.RowsQuery{
		Region: c.Param("region"),
		Start:  start,
		End:    end,
		Options: analytics.RowOptions{
			Query:    c.Query("q"),
			Sort:     sort,
			OnlyLate: onlyLate,
		},
	}, true
}

// parseDateParam reads an optional YYYY-MM-DD query value. A missing value is
// the zero time.
func parseDateParam(c *gin.Context, name string) (time.Time, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return time.Time{}, true
	}
	t, err := time.ParseInLocation(dateLayout, raw, normalize.Location)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("%s must be a YYYY-MM-DD date", name)})
		return time.Time{}, false
	}
	return t, true
}

// parseCountParam reads an optional positive integer. Zero means default.
func parseCountParam(c *gin.Context, name string) (int, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("%s must be a positive integer", name)})
		return 0, false
	}
	return n, true
}

func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrUnknownRegion), errors.Is(err, service.ErrUnknownProject):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrInvalidRange):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrFetchFailed):
		status = http.StatusBadGateway
	}

	event := log.Warn()
	if status >= http.StatusInternalServerError {
		event = log.Error()
	}
	event.Err(err).Str("path", c.Request.URL.Path).Int("status", status).Msg("dashboard request failed")

	c.JSON(status, gin.H{"error": err.Error()})
}
