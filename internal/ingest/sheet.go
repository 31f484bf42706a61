package ingest

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// sheet is the first worksheet of a workbook with its header row indexed by
// normalized column name.
type sheet struct {
	columns map[string]int
	rows    [][]string
}

func readSheet(r io.Reader) (*sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	name := f.GetSheetName(0)
	if name == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", name, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", name)
	}

	s := &sheet{columns: make(map[string]int), rows: rows[1:]}
	for i, h := range rows[0] {
		s.columns[normalizeHeader(h)] = i
	}
	return s, nil
}

// normalizeHeader maps "Monthly Salary" and "monthly_salary" to the same key.
func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.Join(strings.FieldsFunc(h, func(r rune) bool {
		return r == ' ' || r == '_' || r == '-'
	}), "_")
}

func (s *sheet) require(names ...string) error {
	var missing []string
	for _, n := range names {
		if _, ok := s.columns[n]; !ok {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

// row reads typed cells of one data row.
type row struct {
	sheet *sheet
	cells []string
}

func (r row) str(name string) string {
	i, ok := r.sheet.columns[name]
	if !ok || i >= len(r.cells) {
		return ""
	}
	return strings.TrimSpace(r.cells[i])
}

func (r row) integer(name string) (int64, error) {
	v, err := r.number(name)
	if err != nil {
		return 0, err
	}
	if v != math.Trunc(v) {
		return 0, fmt.Errorf("%s: %v is not an integer", name, v)
	}
	if math.Abs(v) > 1<<53 {
		return 0, fmt.Errorf("%s: %v is out of range", name, v)
	}
	return int64(v), nil
}

func (r row) number(name string) (float64, error) {
	s := r.str(name)
	if s == "" {
		return 0, fmt.Errorf("%s: missing value", name)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s: %q is not a number", name, s)
	}
	return v, nil
}

// date accepts an Excel serial day number or a handful of text layouts.
// A blank cell yields the zero time.
func (r row) date(name string) (time.Time, error) {
	s := r.str(name)
	if s == "" {
		return time.Time{}, nil
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, fmt.Errorf("%s: %w", name, err)
		}
		return t, nil
	}
	for _, layout := range []string{time.DateOnly, time.DateTime, "01/02/2006", "02-01-2006", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%s: unrecognized date %q", name, s)
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
