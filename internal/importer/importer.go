// Package importer reads TMS order exports (xlsx, csv or json) into order records.
package importer

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/andresuchdata/tms-dashboard/internal/domain"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	// FormatJSON is an order array or a snapshot written by tmsctl fetch.
	FormatJSON Format = "json"
)

var ErrNoHeader = errors.New("export has no header row")

type setter func(rec *domain.OrderRecord, v any)

// columns maps lower-cased export headers to record fields.
var columns = map[string]setter{
	"projectname":                 func(r *domain.OrderRecord, v any) { r.ProjectName = v },
	"servicename":                 func(r *domain.OrderRecord, v any) { r.ServiceName = v },
	"pickupcityname":              func(r *domain.OrderRecord, v any) { r.PickupCityName = v },
	"pickupcountyname":            func(r *domain.OrderRecord, v any) { r.PickupCountyName = v },
	"pickupaddresscode":           func(r *domain.OrderRecord, v any) { r.PickupAddressCode = v },
	"deliverycityname":            func(r *domain.OrderRecord, v any) { r.DeliveryCityName = v },
	"deliverycountyname":          func(r *domain.OrderRecord, v any) { r.DeliveryCountyName = v },
	"deliveryaddresscode":         func(r *domain.OrderRecord, v any) { r.DeliveryAddressCode = v },
	"tmsvehiclerequestdocumentno": func(r *domain.OrderRecord, v any) { r.TMSVehicleRequestDocumentNo = v },
	"tmsdespatchdocumentno":       func(r *domain.OrderRecord, v any) { r.TMSDespatchDocumentNo = v },
	"vehicleworkingname":          func(r *domain.OrderRecord, v any) { r.VehicleWorkingName = v },
	"isprint":                     func(r *domain.OrderRecord, v any) { r.IsPrint = v },
	"orderstatu":                  func(r *domain.OrderRecord, v any) { r.OrderStatu = v },
	"tmsdespatchcreateddate":      func(r *domain.OrderRecord, v any) { r.TMSDespatchCreatedDate = v },
	"pickupdate":                  func(r *domain.OrderRecord, v any) { r.PickupDate = v },
	"deliverydate":                func(r *domain.OrderRecord, v any) { r.DeliveryDate = v },
	"ordercreateddate":            func(r *domain.OrderRecord, v any) { r.OrderCreatedDate = v },
	"_week": func(r *domain.OrderRecord, v any) {
		if s, ok := v.(string); ok {
			r.WeekKey = s
		}
	},
}

// DetectFormat picks the format from a file name.
func DetectFormat(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unsupported export type: %s", name)
}

// ReadFile imports a local export.
func ReadFile(path string) ([]domain.OrderRecord, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return Read(f, format)
}

// Read imports an export stream.
func Read(r io.Reader, format Format) ([]domain.OrderRecord, error) {
	switch format {
	case FormatCSV:
		return ReadCSV(r)
	case FormatXLSX:
		return ReadXLSX(r)
	case FormatJSON:
		return ReadJSON(r)
	}
	return nil, fmt.Errorf("unsupported export format %q", format)
}

// ReadCSV reads a csv export. Comma and semicolon separators are both
// accepted; the header line decides.
func ReadCSV(r io.Reader) ([]domain.OrderRecord, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(4096)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	// Strip a UTF-8 BOM left by spreadsheet tools.
	if bytes.HasPrefix(head, []byte("\xef\xbb\xbf")) {
		_, _ = br.Discard(3)
		head = head[3:]
	}

	reader := csv.NewReader(br)
	reader.Comma = detectSeparator(head)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}
		rows = append(rows, record)
	}

	return toRecords(header, rows), nil
}

// ReadXLSX reads the first sheet of an xlsx export. Cells are read raw, so
// dates arrive as spreadsheet serials.
func ReadXLSX(r io.Reader) ([]domain.OrderRecord, error) {
	f, err := excelize.OpenReader(r, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("xlsx file has no sheets")
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, ErrNoHeader
	}

	return toRecords(rows[0], rows[1:]), nil
}

// ReadJSON reads a JSON array of orders or an object with an "orders" array.
func ReadJSON(r io.Reader) ([]domain.OrderRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read json: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	if data[0] == '[' {
		var records []domain.OrderRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("failed to decode orders: %w", err)
		}
		return records, nil
	}

	var snap struct {
		Orders []domain.OrderRecord `json:"orders"`
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return snap.Orders, nil
}

func detectSeparator(head []byte) rune {
	line := head
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		line = head[:i]
	}
	if bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
		return ';'
	}
	return ','
}

func toRecords(header []string, rows [][]string) []domain.OrderRecord {
	setters := make([]setter, len(header))
	for i, h := range header {
		setters[i] = columns[strings.ToLower(strings.TrimSpace(h))]
	}

	records := make([]domain.OrderRecord, 0, len(rows))
	for _, row := range rows {
		if isBlank(row) {
			continue
		}
		var rec domain.OrderRecord
		for i, cell := range row {
			if i >= len(setters) || setters[i] == nil {
				continue
			}
			if cell = strings.TrimSpace(cell); cell == "" {
				continue
			}
			setters[i](&rec, cell)
		}
		records = append(records, rec)
	}
	return records
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
