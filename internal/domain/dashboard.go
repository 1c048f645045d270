package domain

import "time"

// RegionRow is one project line of the region status table.
type RegionRow struct {
	Name      string `json:"name"`
	Plan      int    `json:"plan"`
	Ted       int    `json:"ted"`
	Edilmeyen int    `json:"edilmeyen"` // planned but neither supplied nor cancelled
	Iptal     int    `json:"iptal"`
	Spot      int    `json:"spot"`
	Filo      int    `json:"filo"`
	ShoB      int    `json:"sho_b"`
	ShoBm     int    `json:"sho_bm"`
	Zamaninda int    `json:"zamaninda"`
	Gec       int    `json:"gec"`
	Yuzde     int    `json:"yuzde"` // on-time percentage of plan
}

// DateRange is an inclusive range of calendar days.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ForecastMeta carries the calendar anchors a forecast was computed against.
type ForecastMeta struct {
	Today    time.Time `json:"today"`
	Week0    DateRange `json:"week0"`
	Week1    DateRange `json:"week1"`
	Week2    DateRange `json:"week2"`
	Month    DateRange `json:"month"`
	Baseline DateRange `json:"baseline"`
	Weights  DateRange `json:"weights"`
}

// ForecastSeriesRow holds the projected order counts of one project.
type ForecastSeriesRow struct {
	Proje         string `json:"proje"`
	BuHafta       int    `json:"buHafta"`
	GelecekHafta  int    `json:"gelecekHafta"`
	DigerHafta    int    `json:"digerHafta"`
	AySonunaKadar int    `json:"aySonunaKadar"`
	AyToplam      int    `json:"ayToplam"`
}

type ForecastResult struct {
	Meta   ForecastMeta        `json:"meta"`
	Series []ForecastSeriesRow `json:"series"`
}

// HistoryRow is a dense count vector for one project, aligned with
// HistoryResult.Periods.
type HistoryRow struct {
	Proje  string `json:"proje"`
	Counts []int  `json:"counts"`
	Total  int    `json:"total"`
}

// HistoryResult is a trailing monthly or weekly trend table. Periods holds the
// first day of every bucket, oldest first.
type HistoryResult struct {
	Periods []time.Time  `json:"periods"`
	Rows    []HistoryRow `json:"rows"`
}
