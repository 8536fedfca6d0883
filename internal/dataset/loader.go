package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// maxExcelSerial is the serial number of 9999-12-31, the last date Excel can store.
const maxExcelSerial = 2958465

// Layouts tried, in order, for textual order dates.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02",
	"1/2/2006",
	"01/02/2006",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"1/2/06",
	"2-Jan-2006",
	"02-Jan-2006",
	"2 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"20060102",
}

// Load reads the dataset at path. The format is chosen from the file extension:
// Excel workbooks use their first sheet, CSV files are read whole.
func Load(path string) (*Table, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}
	return parseRows(path, rows)
}

func readRows(path string) ([][]string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return readSpreadsheet(path)
	case ".csv":
		return readCSV(path)
	default:
		return nil, &LoadError{Path: path, Err: fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)}
	}
}

func readSpreadsheet(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &LoadError{Path: path, Err: ErrEmptySheet}
	}

	// Raw values keep dates as serial numbers instead of locale-formatted strings.
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("read sheet %q: %w", sheets[0], err)}
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return rows, nil
}

func parseRows(path string, rows [][]string) (*Table, error) {
	if len(rows) == 0 {
		return nil, &LoadError{Path: path, Err: ErrEmptySheet}
	}

	index, err := columnIndex(rows[0])
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.Path = path
		}
		return nil, err
	}

	records := make([]Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		rowNum := i + 2

		rec, col, err := parseRecord(row, index)
		if err != nil {
			return nil, &LoadError{Path: path, Row: rowNum, Column: col, Err: err}
		}
		records = append(records, rec)
	}

	return NewTable(path, records), nil
}

func columnIndex(header []string) (map[string]int, error) {
	positions := make(map[string]int, len(header))
	for i, h := range header {
		key := normalizeHeader(h)
		if _, exists := positions[key]; !exists {
			positions[key] = i
		}
	}

	index := make(map[string]int, len(RequiredColumns))
	for _, col := range RequiredColumns {
		pos, ok := positions[normalizeHeader(col)]
		if !ok {
			return nil, &LoadError{Column: col, Err: ErrMissingColumn}
		}
		index[col] = pos
	}
	return index, nil
}

func parseRecord(row []string, index map[string]int) (Record, string, error) {
	cell := func(col string) string {
		pos := index[col]
		if pos >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[pos])
	}

	orderDate, err := ParseOrderDate(cell(ColumnOrderDate))
	if err != nil {
		return Record{}, ColumnOrderDate, err
	}

	rec := Record{
		ItemID:     cell(ColumnItemID),
		CustomerID: cell(ColumnCustomerID),
		OrderDate:  orderDate,
	}

	measures := []struct {
		col string
		dst *decimal.Decimal
	}{
		{ColumnTotalPrice, &rec.TotalPrice},
		{ColumnQtyShipped, &rec.QtyShipped},
		{ColumnQtyReturned, &rec.QtyReturned},
	}
	for _, m := range measures {
		v, err := parseNumber(cell(m.col))
		if err != nil {
			return Record{}, m.col, err
		}
		*m.dst = v
	}

	return rec, "", nil
}

// ParseOrderDate accepts Excel serial numbers and the textual layouts in dateLayouts.
func ParseOrderDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrInvalidDate)
	}

	if serial, err := strconv.ParseFloat(raw, 64); err == nil && serial > 0 && serial <= maxExcelSerial {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q: %v", ErrInvalidDate, raw, err)
		}
		return t, nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
}

// Empty cells count as zero, the way a NaN-skipping sum treats them.
func parseNumber(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", ""))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidNumber, raw)
	}
	return d, nil
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.Join(strings.Fields(strings.TrimPrefix(h, "\ufeff")), " "))
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
