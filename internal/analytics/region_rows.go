package analytics

import (
	"math"
	"sort"
	"strings"

	"github.com/andresuchdata/tms-dashboard/internal/domain"
	"github.com/andresuchdata/tms-dashboard/internal/normalize"
)

// SortMode selects the descending sort key of region rows.
type SortMode string

const (
	SortByPlan   SortMode = "plan"
	SortByLate   SortMode = "gec"
	SortByOnTime SortMode = "yuzde"
)

// ParseSortMode accepts "", plan, gec and yuzde. Empty means plan.
func ParseSortMode(s string) (SortMode, bool) {
	switch SortMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortByPlan:
		return SortByPlan, true
	case SortByLate:
		return SortByLate, true
	case SortByOnTime:
		return SortByOnTime, true
	}
	return "", false
}

type RowOptions struct {
	Query    string
	Sort     SortMode
	OnlyLate bool
}

// NewRegionRow derives the table metrics of one bucket. st may be nil.
func NewRegionRow(name string, st *domain.BucketStats) domain.RegionRow {
	if st == nil {
		st = domain.NewBucketStats()
	}
	row := domain.RegionRow{
		Name:      name,
		Plan:      st.Plan.Len(),
		Ted:       st.Ted.Len(),
		Iptal:     st.Iptal.Len(),
		Spot:      st.Spot.Len(),
		Filo:      st.Filo.Len(),
		ShoB:      st.ShoB.Len(),
		ShoBm:     st.ShoBm.Len(),
		Zamaninda: st.OntimeReq.Len(),
		Gec:       st.LateReq.Len(),
	}
	row.Edilmeyen = max(0, row.Plan-(row.Ted+row.Iptal))
	if row.Plan > 0 {
		row.Yuzde = int(math.Round(100 * float64(row.Zamaninda) / float64(row.Plan)))
	}
	return row
}

// BuildRegionRows lists the region's projects that have planned orders, then
// filters and sorts them. Equal sort keys fall back to ascending name.
func BuildRegionRows(region domain.Region, stats map[string]*domain.BucketStats, opts RowOptions) []domain.RegionRow {
	query := normalize.Text(opts.Query)

	rows := make([]domain.RegionRow, 0, len(region.Projects))
	for _, name := range region.Projects {
		row := NewRegionRow(name, stats[name])
		if row.Plan == 0 {
			continue
		}
		if query != "" && !strings.Contains(normalize.Text(row.Name), query) {
			continue
		}
		if opts.OnlyLate && row.Gec == 0 {
			continue
		}
		rows = append(rows, row)
	}

	sortKey := rowSortKey(opts.Sort)
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := sortKey(rows[i]), sortKey(rows[j])
		if a != b {
			return a > b
		}
		return rows[i].Name < rows[j].Name
	})

	return rows
}

func rowSortKey(mode SortMode) func(domain.RegionRow) int {
	switch mode {
	case SortByLate:
		return func(r domain.RegionRow) int { return r.Gec }
	case SortByOnTime:
		return func(r domain.RegionRow) int { return r.Yuzde }
	default:
		return func(r domain.RegionRow) int { return r.Plan }
	}
}
