// package formatter flattens API records into rows and exports them as spreadsheets, CSV or JSON.
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/spotylog/internal/models"
	"github.com/desertthunder/spotylog/internal/shared"
	"github.com/xuri/excelize/v2"
)

// Format is the output file type of an export.
type Format int

const (
	Spreadsheet Format = iota
	Delimited
	Structured
)

// String returns the name accepted by [ParseFormat].
func (f Format) String() string {
	switch f {
	case Spreadsheet:
		return "excel"
	case Delimited:
		return "csv"
	case Structured:
		return "json"
	default:
		return "unknown"
	}
}

// Extension is the file extension written for the format, without the dot.
func (f Format) Extension() string {
	switch f {
	case Spreadsheet:
		return "xlsx"
	case Delimited:
		return "csv"
	default:
		return "json"
	}
}

// ParseFormat parses excel, xlsx, spreadsheet, csv or json.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "excel", "xlsx", "spreadsheet":
		return Spreadsheet, nil
	case "csv":
		return Delimited, nil
	case "json":
		return Structured, nil
	default:
		return 0, fmt.Errorf("%w: %q (expected excel, csv or json)", shared.ErrUnknownFormat, s)
	}
}

// DefaultPath joins base with the format's extension, e.g. search_results.xlsx.
func DefaultPath(base string, format Format) string {
	return base + "." + format.Extension()
}

// Export writes rows to path in format and returns the written path.
//
// The header is the first row's columns in insertion order. Cells for columns a later
// row does not set are left empty and columns only later rows set are dropped.
func Export(rows []*models.Row, path string, format Format) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: export path", shared.ErrMissingArgument)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create export directory: %w", err)
		}
	}

	header, records := align(rows)

	var err error
	switch format {
	case Spreadsheet:
		err = writeSpreadsheet(path, header, records)
	case Delimited:
		err = writeDelimited(path, header, records)
	case Structured:
		err = writeStructured(path, header, records)
	default:
		err = fmt.Errorf("%w: %d", shared.ErrUnknownFormat, format)
	}
	if err != nil {
		return "", err
	}
	return path, nil
}

// align projects every row onto the first row's columns.
func align(rows []*models.Row) ([]string, [][]any) {
	if len(rows) == 0 {
		return nil, nil
	}

	header := rows[0].Columns()
	records := make([][]any, 0, len(rows))
	for _, row := range rows {
		record := make([]any, len(header))
		for i, col := range header {
			if v, ok := row.Get(col); ok && v != nil {
				record[i] = v
			} else {
				record[i] = ""
			}
		}
		records = append(records, record)
	}
	return header, records
}

func writeSpreadsheet(path string, header []string, records [][]any) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if len(header) > 0 {
		cells := make([]any, len(header))
		for i, h := range header {
			cells[i] = h
		}
		if err := f.SetSheetRow(sheet, "A1", &cells); err != nil {
			return fmt.Errorf("failed to write spreadsheet header: %w", err)
		}

		style, err := f.NewStyle(&excelize.Style{
			Font:      &excelize.Font{Bold: true},
			Alignment: &excelize.Alignment{Horizontal: "center"},
		})
		if err != nil {
			return fmt.Errorf("failed to create header style: %w", err)
		}
		last, err := excelize.CoordinatesToCellName(len(header), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
			return fmt.Errorf("failed to style spreadsheet header: %w", err)
		}
	}

	for i, record := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &record); err != nil {
			return fmt.Errorf("failed to write spreadsheet row %d: %w", i+1, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save spreadsheet: %w", err)
	}
	return nil
}

func writeDelimited(path string, header []string, records [][]any) error {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if len(header) > 0 {
		if err := writer.Write(header); err != nil {
			return fmt.Errorf("failed to write CSV headers: %w", err)
		}
	}
	for _, record := range records {
		fields := make([]string, len(record))
		for i, v := range record {
			fields[i] = fmt.Sprint(v)
		}
		if err := writer.Write(fields); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("CSV writer error: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write CSV file: %w", err)
	}
	return nil
}

func writeStructured(path string, header []string, records [][]any) error {
	out := make([]*models.Row, 0, len(records))
	for _, record := range records {
		row := models.NewRow()
		for i, col := range header {
			row.Set(col, record[i])
		}
		out = append(out, row)
	}

	data, err := shared.MarshalJSON(out, true)
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}
	return nil
}

// ReadRows reads an exported file back with every value stringified.
func ReadRows(path string, format Format) ([]map[string]string, error) {
	switch format {
	case Spreadsheet:
		return readSpreadsheet(path)
	case Delimited:
		return readDelimited(path)
	case Structured:
		return readStructured(path)
	default:
		return nil, fmt.Errorf("%w: %d", shared.ErrUnknownFormat, format)
	}
}

func readSpreadsheet(path string) ([]map[string]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()

	table, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("failed to read spreadsheet rows: %w", err)
	}
	return fromTable(table), nil
}

func readDelimited(path string) ([]map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	table, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV file: %w", err)
	}
	return fromTable(table), nil
}

func readStructured(path string) ([]map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read JSON file: %w", err)
	}

	var objects []map[string]any
	if err := json.Unmarshal(data, &objects); err != nil {
		return nil, fmt.Errorf("failed to parse JSON file: %w", err)
	}

	out := make([]map[string]string, 0, len(objects))
	for _, obj := range objects {
		row := make(map[string]string, len(obj))
		for k, v := range obj {
			row[k] = stringify(v)
		}
		out = append(out, row)
	}
	return out, nil
}

// fromTable maps a header row plus records into column maps. Short records leave columns empty.
func fromTable(table [][]string) []map[string]string {
	if len(table) == 0 {
		return []map[string]string{}
	}

	header := table[0]
	out := make([]map[string]string, 0, len(table)-1)
	for _, record := range table[1:] {
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			} else {
				row[col] = ""
			}
		}
		out = append(out, row)
	}
	return out
}

func stringify(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		data, _ := json.Marshal(v)
		return string(data)
	}
}
