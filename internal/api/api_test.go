package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/andresuchdata/tms-dashboard/internal/api/handlers"
	"github.com/andresuchdata/tms-dashboard/internal/api/middleware"
	"github.com/andresuchdata/tms-dashboard/internal/cache"
	"github.com/andresuchdata/tms-dashboard/internal/domain"
	"github.com/andresuchdata/tms-dashboard/internal/export"
	"github.com/andresuchdata/tms-dashboard/internal/normalize"
	"github.com/andresuchdata/tms-dashboard/internal/pipeline"
	"github.com/andresuchdata/tms-dashboard/internal/service"
)

const runID = "7a4c3a52-3c55-4a8e-9a53-2f0b1f3c9d11"

func init() {
	gin.SetMode(gin.TestMode)
}

func order(project, request, dispatch, pickup string) domain.OrderRecord {
	return domain.OrderRecord{
		ProjectName:                 project,
		ServiceName:                 "YURTİÇİ FTL HİZMETLERİ",
		TMSVehicleRequestDocumentNo: request,
		TMSDespatchDocumentNo:       dispatch,
		OrderStatu:                  float64(1),
		VehicleWorkingName:          "FİLO",
		IsPrint:                     true,
		TMSDespatchCreatedDate:      "01.01.2025 08:00",
		PickupDate:                  pickup,
		WeekKey:                     "2024-12-30",
	}
}

type failingSource struct{}

func (failingSource) Load(context.Context, time.Time, time.Time) (*cache.OrderSnapshot, error) {
	return nil, fmt.Errorf("%w: no week fetched", service.ErrFetchFailed)
}

type fakeRunStore struct {
	runs map[string]*pipeline.FetchRun
	jobs map[string][]pipeline.WeekJob
	err  error
}

func (f *fakeRunStore) GetRun(_ context.Context, id string) (*pipeline.FetchRun, error) {
	return f.runs[id], f.err
}

func (f *fakeRunStore) ListRecentRuns(_ context.Context, limit int) ([]pipeline.FetchRun, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []pipeline.FetchRun
	for _, r := range f.runs {
		if len(out) == limit {
			break
		}
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeRunStore) GetWeekJobsByRunID(_ context.Context, id string) ([]pipeline.WeekJob, error) {
	return f.jobs[id], f.err
}

func newTestRouter(t *testing.T, source service.OrderSource, runs handlers.RunStore) *gin.Engine {
	t.Helper()

	prev := normalize.Location
	normalize.Location = time.UTC
	t.Cleanup(func() { normalize.Location = prev })

	dashboard := service.NewDashboardService(source, service.Options{
		Location: time.UTC,
		Now:      func() time.Time { return time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC) },
	})
	return NewRouter(&Services{Dashboard: dashboard, FetchRuns: runs}, nil)
}

func staticRouter(t *testing.T) *gin.Engine {
	return newTestRouter(t, service.NewStaticSource([]domain.OrderRecord{
		order("EBEBEK FTL", "REQ1", "SFR1", "02.01.2025 10:00"),
		order("EBEBEK FTL", "REQ2", "SFR2", "03.01.2025 10:00"),
		order("FLO FTL", "REQ3", "SFR3", "02.01.2025 10:00"),
		order("PINAR FRİGO", "REQ4", "SFR4", "02.01.2025 10:00"),
	}), nil)
}

func get(t *testing.T, router *gin.Engine, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestHealth(t *testing.T) {
	rec := get(t, staticRouter(t), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
}

func TestRequestIDIsEchoed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(middleware.RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	staticRouter(t).ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(middleware.RequestIDHeader))
}

func TestGetRegions(t *testing.T) {
	rec := get(t, staticRouter(t), "/api/v1/dashboard/regions")
	require.Equal(t, http.StatusOK, rec.Code)

	var regions []domain.Region
	decode(t, rec, &regions)
	require.Len(t, regions, len(domain.Regions)+1)
	assert.Equal(t, domain.AllRegionsName, regions[len(regions)-1].Name)
}

func TestGetStatuses(t *testing.T) {
	rec := get(t, staticRouter(t), "/api/v1/dashboard/statuses")
	require.Equal(t, http.StatusOK, rec.Code)

	var statuses []domain.OrderStatus
	decode(t, rec, &statuses)
	assert.NotEmpty(t, statuses)
}

func TestGetRows(t *testing.T) {
	rec := get(t, staticRouter(t), "/api/v1/dashboard/regions/marmara/rows")
	require.Equal(t, http.StatusOK, rec.Code)

	var view struct {
		Region string             `json:"region"`
		Rows   []domain.RegionRow `json:"rows"`
	}
	decode(t, rec, &view)
	assert.Equal(t, "MARMARA", view.Region)
	require.Len(t, view.Rows, 2)
	assert.Equal(t, "EBEBEK FTL", view.Rows[0].Name)
	assert.Equal(t, 2, view.Rows[0].Plan)
	assert.Equal(t, "FLO FTL", view.Rows[1].Name)
}

func TestGetRowsAllRegionsWithQuery(t *testing.T) {
	rec := get(t, staticRouter(t), "/api/v1/dashboard/regions/"+url.PathEscape("TÜMÜ")+"/rows?q=pınar")
	require.Equal(t, http.StatusOK, rec.Code)

	var view struct {
		Rows []domain.RegionRow `json:"rows"`
	}
	decode(t, rec, &view)
	require.Len(t, view.Rows, 1)
	assert.Equal(t, "PINAR FRİGO", view.Rows[0].Name)
}

func TestGetRowsBadParameters(t *testing.T) {
	router := staticRouter(t)

	for _, target := range []string{
		"/api/v1/dashboard/regions/marmara/rows?start=01.01.2025",
		"/api/v1/dashboard/regions/marmara/rows?sort=name",
		"/api/v1/dashboard/regions/marmara/rows?only_late=maybe",
		"/api/v1/dashboard/regions/marmara/rows?start=2025-01-10&end=2025-01-01",
	} {
		rec := get(t, router, target)
		assert.Equalf(t, http.StatusBadRequest, rec.Code, "GET %s", target)

		var body map[string]string
		decode(t, rec, &body)
		assert.NotEmpty(t, body["error"])
	}
}

func TestUnknownRegion(t *testing.T) {
	rec := get(t, staticRouter(t), "/api/v1/dashboard/regions/karadeniz/rows")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFetchFailureIsBadGateway(t *testing.T) {
	router := newTestRouter(t, failingSource{}, nil)
	rec := get(t, router, "/api/v1/dashboard/regions/marmara/forecast")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestExportRows(t *testing.T) {
	rec := get(t, staticRouter(t), "/api/v1/dashboard/regions/marmara/rows.xlsx")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, export.ContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "marmara-20250115.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(export.SheetRows)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "EBEBEK FTL", rows[1][0])
}

func TestGetForecast(t *testing.T) {
	rec := get(t, staticRouter(t), "/api/v1/dashboard/regions/marmara/forecast?today=2025-01-15")
	require.Equal(t, http.StatusOK, rec.Code)

	var view struct {
		Region string                     `json:"region"`
		Series []domain.ForecastSeriesRow `json:"series"`
	}
	decode(t, rec, &view)
	assert.Equal(t, "MARMARA", view.Region)
	assert.Len(t, view.Series, len(domain.Regions[0].Projects))
}

func TestGetHistory(t *testing.T) {
	router := staticRouter(t)

	rec := get(t, router, "/api/v1/dashboard/regions/marmara/history/monthly?months=3")
	require.Equal(t, http.StatusOK, rec.Code)
	var monthly struct {
		Granularity string   `json:"granularity"`
		Periods     []string `json:"periods"`
	}
	decode(t, rec, &monthly)
	assert.Equal(t, "month", monthly.Granularity)
	assert.Len(t, monthly.Periods, 3)

	rec = get(t, router, "/api/v1/dashboard/regions/marmara/history/weekly?weeks=4&anchor=2025-01-01")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, http.StatusBadRequest, get(t, router, "/api/v1/dashboard/regions/marmara/history/weekly?weeks=-1").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, router, "/api/v1/dashboard/regions/marmara/history/monthly?months=500").Code)
}

func TestGetProjectStats(t *testing.T) {
	router := staticRouter(t)

	rec := get(t, router, "/api/v1/dashboard/projects/"+url.PathEscape("ebebek ftl")+"/stats")
	require.Equal(t, http.StatusOK, rec.Code)
	var view struct {
		Project string              `json:"project"`
		Stats   *domain.BucketStats `json:"stats"`
	}
	decode(t, rec, &view)
	assert.Equal(t, "EBEBEK FTL", view.Project)
	assert.Equal(t, []string{"REQ1", "REQ2"}, view.Stats.Plan.Sorted())

	assert.Equal(t, http.StatusNotFound, get(t, router, "/api/v1/dashboard/projects/UNKNOWN/stats").Code)
}

func TestFetchRunRoutes(t *testing.T) {
	store := &fakeRunStore{
		runs: map[string]*pipeline.FetchRun{runID: {ID: runID, Name: "tms-orders", Status: pipeline.StatusCompleted}},
		jobs: map[string][]pipeline.WeekJob{runID: {{RunID: runID, WeekKey: "2024-12-30", Status: pipeline.WeekStatusCompleted}}},
	}
	router := newTestRouter(t, service.NewStaticSource(nil), store)

	rec := get(t, router, "/api/v1/fetch-runs?limit=5")
	require.Equal(t, http.StatusOK, rec.Code)
	var runs []pipeline.FetchRun
	decode(t, rec, &runs)
	require.Len(t, runs, 1)

	rec = get(t, router, "/api/v1/fetch-runs/"+runID)
	require.Equal(t, http.StatusOK, rec.Code)
	var detail struct {
		Run   pipeline.FetchRun  `json:"run"`
		Weeks []pipeline.WeekJob `json:"weeks"`
	}
	decode(t, rec, &detail)
	assert.Equal(t, runID, detail.Run.ID)
	require.Len(t, detail.Weeks, 1)

	assert.Equal(t, http.StatusBadRequest, get(t, router, "/api/v1/fetch-runs/not-a-uuid").Code)
	assert.Equal(t, http.StatusNotFound, get(t, router, "/api/v1/fetch-runs/00000000-0000-0000-0000-000000000000").Code)

	store.err = errors.New("db down")
	assert.Equal(t, http.StatusInternalServerError, get(t, router, "/api/v1/fetch-runs").Code)
}

func TestFetchRunRoutesDisabled(t *testing.T) {
	rec := get(t, staticRouter(t), "/api/v1/fetch-runs")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNormalizeAllowedOrigins(t *testing.T) {
	origins, all := normalizeAllowedOrigins([]string{"http://a.test, http://b.test", " "})
	assert.False(t, all)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, origins)

	_, all = normalizeAllowedOrigins([]string{"*"})
	assert.True(t, all)
}
