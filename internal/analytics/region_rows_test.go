package analytics

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/tms-dashboard/internal/domain"
)

func statsWith(plan, ted, iptal, ontime, late int) *domain.BucketStats {
	st := domain.NewBucketStats()
	fill := func(set domain.KeySet, prefix string, n int) {
		for i := 0; i < n; i++ {
			set.Add(prefix + string(rune('A'+i)))
		}
	}
	fill(st.Plan, "REQ", plan)
	fill(st.Ted, "SFRT", ted)
	fill(st.Iptal, "SFRI", iptal)
	fill(st.OntimeReq, "REQ", ontime)
	fill(st.LateReq, "REQL", late)
	return st
}

func TestNewRegionRow(t *testing.T) {
	t.Run("percentage rounds", func(t *testing.T) {
		row := NewRegionRow("X", statsWith(3, 1, 0, 1, 0))
		assert.Equal(t, 33, row.Yuzde)
		assert.Equal(t, 2, row.Edilmeyen)
	})

	t.Run("zero plan has zero percentage", func(t *testing.T) {
		row := NewRegionRow("X", statsWith(0, 2, 0, 0, 0))
		assert.Zero(t, row.Yuzde)
		assert.Zero(t, row.Edilmeyen)
	})

	t.Run("unfulfilled never negative", func(t *testing.T) {
		row := NewRegionRow("X", statsWith(1, 2, 1, 0, 0))
		assert.Zero(t, row.Edilmeyen)
	})

	t.Run("missing stats", func(t *testing.T) {
		row := NewRegionRow("X", nil)
		assert.Equal(t, domain.RegionRow{Name: "X"}, row)
	})
}

func TestBuildRegionRows(t *testing.T) {
	region := domain.Region{
		Name:     "TEST",
		Projects: []string{"EBEBEK FTL", "EBEBEK FTL GEBZE", "FLO FTL", "PEPSİ FTL", "ŞİŞECAM FTL"},
	}
	stats := map[string]*domain.BucketStats{
		"EBEBEK FTL":       statsWith(4, 4, 0, 2, 2),
		"EBEBEK FTL GEBZE": statsWith(2, 2, 0, 2, 0),
		"FLO FTL":          statsWith(4, 3, 1, 4, 0),
		"PEPSİ FTL":        statsWith(0, 0, 0, 0, 0),
		"NOT IN REGION":    statsWith(9, 9, 0, 0, 9),
	}
	names := func(rows []domain.RegionRow) []string {
		return lo.Map(rows, func(r domain.RegionRow, _ int) string { return r.Name })
	}

	t.Run("by plan with name tiebreak", func(t *testing.T) {
		rows := BuildRegionRows(region, stats, RowOptions{Sort: SortByPlan})
		assert.Equal(t, []string{"EBEBEK FTL", "FLO FTL", "EBEBEK FTL GEBZE"}, names(rows))
	})

	t.Run("by late", func(t *testing.T) {
		rows := BuildRegionRows(region, stats, RowOptions{Sort: SortByLate})
		assert.Equal(t, []string{"EBEBEK FTL", "EBEBEK FTL GEBZE", "FLO FTL"}, names(rows))
	})

	t.Run("by on-time percentage", func(t *testing.T) {
		rows := BuildRegionRows(region, stats, RowOptions{Sort: SortByOnTime})
		assert.Equal(t, []string{"EBEBEK FTL GEBZE", "FLO FTL", "EBEBEK FTL"}, names(rows))
	})

	t.Run("query is normalized", func(t *testing.T) {
		rows := BuildRegionRows(region, stats, RowOptions{Query: " gebze "})
		assert.Equal(t, []string{"EBEBEK FTL GEBZE"}, names(rows))
	})

	t.Run("only late", func(t *testing.T) {
		rows := BuildRegionRows(region, stats, RowOptions{OnlyLate: true})
		require.Len(t, rows, 1)
		assert.Equal(t, "EBEBEK FTL", rows[0].Name)
		assert.Equal(t, 2, rows[0].Gec)
	})

	t.Run("empty stats", func(t *testing.T) {
		assert.Empty(t, BuildRegionRows(region, nil, RowOptions{}))
	})
}

func TestParseSortMode(t *testing.T) {
	for in, want := range map[string]SortMode{"": SortByPlan, "plan": SortByPlan, "GEC": SortByLate, "yuzde": SortByOnTime} {
		got, ok := ParseSortMode(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := ParseSortMode("name")
	assert.False(t, ok)
}
