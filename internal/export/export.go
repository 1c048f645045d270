// Package export renders dashboard views as xlsx workbooks.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/andresuchdata/tms-dashboard/internal/domain"
)

const (
	SheetRows     = "Durum"
	SheetForecast = "Tahmin"
	SheetMonthly  = "Aylık"
	SheetWeekly   = "Haftalık"

	dayLayout = "02.01.2006"
)

// ContentType is the MIME type of the written workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Report collects the views of one region. Nil parts are left out.
type Report struct {
	Region   string
	Rows     []domain.RegionRow
	Forecast *domain.ForecastResult
	Monthly  *domain.HistoryResult
	Weekly   *domain.HistoryResult
}

var rowHeader = []any{
	"Proje", "Plan", "Tedarik", "Edilmeyen", "İptal", "Spot", "Filo",
	"ŞoB", "ŞoBm", "Zamanında", "Geç", "Yüzde",
}

var forecastHeader = []any{
	"Proje", "Bu Hafta", "Gelecek Hafta", "Diğer Hafta", "Ay Sonuna Kadar", "Ay Toplam",
}

// WriteReport writes r as a workbook, one sheet per view.
func WriteReport(w io.Writer, r Report) error {
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	b := &builder{f: f, bold: bold}

	if r.Rows != nil {
		if err := b.rows(r.Rows); err != nil {
			return err
		}
	}
	if r.Forecast != nil {
		if err := b.forecast(*r.Forecast); err != nil {
			return err
		}
	}
	if r.Monthly != nil {
		if err := b.history(SheetMonthly, "01.2006", *r.Monthly); err != nil {
			return err
		}
	}
	if r.Weekly != nil {
		if err := b.history(SheetWeekly, dayLayout, *r.Weekly); err != nil {
			return err
		}
	}

	if b.sheets == 0 {
		// An empty workbook still needs its default sheet named.
		if err := f.SetSheetName(f.GetSheetName(0), SheetRows); err != nil {
			return err
		}
		if err := b.header(SheetRows, rowHeader); err != nil {
			return err
		}
	}
	if r.Region != "" {
		if err := f.SetDocProps(&excelize.DocProperties{Title: r.Region, Creator: "tms-dashboard"}); err != nil {
			return fmt.Errorf("set document properties: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

type builder struct {
	f      *excelize.File
	bold   int
	sheets int
}

// sheet returns a new sheet; the first call renames the default one.
func (b *builder) sheet(name string) error {
	defer func() { b.sheets++ }()
	if b.sheets == 0 {
		return b.f.SetSheetName(b.f.GetSheetName(0), name)
	}
	_, err := b.f.NewSheet(name)
	return err
}

func (b *builder) header(sheet string, cols []any) error {
	if err := b.f.SetSheetRow(sheet, "A1", &cols); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(cols), 1)
	if err != nil {
		return err
	}
	if err := b.f.SetCellStyle(sheet, "A1", last, b.bold); err != nil {
		return err
	}
	return b.f.SetColWidth(sheet, "A", "A", 34)
}

func (b *builder) put(sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return b.f.SetSheetRow(sheet, cell, &values)
}

func (b *builder) rows(rows []domain.RegionRow) error {
	if err := b.sheet(SheetRows); err != nil {
		return fmt.Errorf("create rows sheet: %w", err)
	}
	if err := b.header(SheetRows, rowHeader); err != nil {
		return err
	}
	for i, r := range rows {
		values := []any{r.Name, r.Plan, r.Ted, r.Edilmeyen, r.Iptal, r.Spot, r.Filo, r.ShoB, r.ShoBm, r.Zamaninda, r.Gec, r.Yuzde}
		if err := b.put(SheetRows, i+2, values); err != nil {
			return fmt.Errorf("write row %s: %w", r.Name, err)
		}
	}
	return nil
}

func (b *builder) forecast(res domain.ForecastResult) error {
	if err := b.sheet(SheetForecast); err != nil {
		return fmt.Errorf("create forecast sheet: %w", err)
	}
	if err := b.header(SheetForecast, forecastHeader); err != nil {
		return err
	}
	for i, s := range res.Series {
		values := []any{s.Proje, s.BuHafta, s.GelecekHafta, s.DigerHafta, s.AySonunaKadar, s.AyToplam}
		if err := b.put(SheetForecast, i+2, values); err != nil {
			return fmt.Errorf("write forecast %s: %w", s.Proje, err)
		}
	}
	return nil
}

func (b *builder) history(sheet, layout string, res domain.HistoryResult) error {
	if err := b.sheet(sheet); err != nil {
		return fmt.Errorf("create %s sheet: %w", sheet, err)
	}
	header := []any{"Proje"}
	for _, p := range res.Periods {
		header = append(header, p.Format(layout))
	}
	header = append(header, "Toplam")
	if err := b.header(sheet, header); err != nil {
		return err
	}

	for i, r := range res.Rows {
		values := []any{r.Proje}
		for _, c := range r.Counts {
			values = append(values, c)
		}
		values = append(values, r.Total)
		if err := b.put(sheet, i+2, values); err != nil {
			return fmt.Errorf("write history %s: %w", r.Proje, err)
		}
	}
	return nil
}
