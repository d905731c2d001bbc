package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Sheet is the first worksheet of an uploaded spreadsheet, kept cell for cell
// so it can be re-exported unchanged.
type Sheet struct {
	Name   string     `json:"name"`
	Header []string   `json:"header"`
	Grid   [][]string `json:"grid"` // data rows, header excluded
}

// ReadSpreadsheet decodes an .xlsx or .csv file. Only the first sheet is read.
func ReadSpreadsheet(r io.Reader, filename string) (*Sheet, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return readCSV(r, filename)
	case ".xlsx", ".xlsm":
		return readXLSX(r, filename)
	default:
		return nil, fmt.Errorf("unsupported spreadsheet type: %s", filename)
	}
}

func readXLSX(r io.Reader, filename string) (*Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", filename, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", filename)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return newSheet(sheets[0], rows), nil
}

func readCSV(r io.Reader, filename string) (*Sheet, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv %s: %w", filename, err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return newSheet(strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)), rows), nil
}

func newSheet(name string, rows [][]string) *Sheet {
	s := &Sheet{Name: name}
	if len(rows) == 0 {
		return s
	}
	s.Header = rows[0]
	s.Grid = rows[1:]
	return s
}

// Records maps each data row to header -> cell. Empty cells are omitted and
// unnamed columns get a positional name.
func (s *Sheet) Records() []Record {
	out := make([]Record, 0, len(s.Grid))
	for _, row := range s.Grid {
		rec := Record{}
		for i, cell := range row {
			if cell == "" {
				continue
			}
			rec[s.columnName(i)] = cell
		}
		if len(rec) > 0 {
			out = append(out, rec)
		}
	}
	return out
}

func (s *Sheet) columnName(i int) string {
	if i < len(s.Header) && strings.TrimSpace(s.Header[i]) != "" {
		return s.Header[i]
	}
	name, err := excelize.ColumnNumberToName(i + 1)
	if err != nil {
		return fmt.Sprintf("__EMPTY_%d", i)
	}
	return "__EMPTY_" + name
}

// WriteXLSX re-exports the sheet exactly as uploaded: header row then every
// data row, nothing filtered.
func WriteXLSX(s *Sheet) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	name := sheetName(s.Name)
	if name != "Sheet1" {
		if err := f.SetSheetName("Sheet1", name); err != nil {
			return nil, fmt.Errorf("failed to name sheet: %w", err)
		}
	}

	rowNum := 1
	if len(s.Header) > 0 {
		if err := writeRow(f, name, rowNum, s.Header); err != nil {
			return nil, err
		}
		rowNum++
	}
	for _, row := range s.Grid {
		if err := writeRow(f, name, rowNum, row); err != nil {
			return nil, err
		}
		rowNum++
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// sheetName keeps a name within Excel's 31 character limit and away from the
// characters Excel rejects.
func sheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if r := []rune(name); len(r) > 31 {
		name = string(r[:31])
	}
	if name == "" {
		return "Sheet1"
	}
	return name
}

func writeRow(f *excelize.File, sheet string, rowNum int, cells []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	vals := make([]interface{}, len(cells))
	for i, c := range cells {
		vals[i] = c
	}
	if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
		return fmt.Errorf("failed to write row %d: %w", rowNum, err)
	}
	return nil
}
