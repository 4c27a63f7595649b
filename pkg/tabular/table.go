// Package tabular provides the in-memory table model behind the
// natural-language edit feature: CSV/XLSX loading and saving, a content
// fingerprint used to detect mutations, and a small statement language that is
// the only way generated edits ever execute.
package tabular

import (
	"bytes"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Format identifies the on-disk serialization of a table.
type Format int

const (
	FormatCSV Format = iota
	FormatXLSX
)

// ErrUnsupportedFormat reports a file extension the table engine cannot handle.
var ErrUnsupportedFormat = errors.New("unsupported tabular format")

// Table is a rectangular table of string cells under a header row.
type Table struct {
	Columns []string
	Rows    [][]string
}

// DetectFormat maps a file path to its tabular format.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	case ".xls":
		return 0, fmt.Errorf("%w: legacy .xls files cannot be written, convert to .xlsx", ErrUnsupportedFormat)
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Load reads the table at path, detecting the format from the extension.
func Load(path string) (*Table, Format, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, 0, err
	}
	var t *Table
	switch format {
	case FormatCSV:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, 0, fmt.Errorf("read %s: %w", path, err)
		}
		t, err = parseCSV(data)
		if err != nil {
			return nil, 0, fmt.Errorf("parse %s: %w", path, err)
		}
	case FormatXLSX:
		t, err = loadXLSX(path)
		if err != nil {
			return nil, 0, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	return t, format, nil
}

// parseCSV decodes CSV bytes into a table. The first record is the header.
func parseCSV(data []byte) (*Table, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New("empty table: no header row")
	}
	t := &Table{Columns: records[0]}
	for _, rec := range records[1:] {
		t.Rows = append(t.Rows, padRow(rec, len(t.Columns)))
	}
	return t, nil
}

// loadXLSX reads the first sheet of a workbook.
func loadXLSX(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.New("empty table: no header row")
	}
	t := &Table{Columns: rows[0]}
	for _, rec := range rows[1:] {
		t.Rows = append(t.Rows, padRow(rec, len(t.Columns)))
	}
	return t, nil
}

// padRow right-pads (or truncates) a record to width cells.
func padRow(rec []string, width int) []string {
	row := make([]string, width)
	copy(row, rec)
	return row
}

// Serialize encodes the table in the given format.
func (t *Table) Serialize(format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		return t.serializeCSV()
	case FormatXLSX:
		return t.serializeXLSX()
	default:
		return nil, ErrUnsupportedFormat
	}
}

func (t *Table) serializeCSV() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(t.Columns); err != nil {
		return nil, err
	}
	for _, row := range t.Rows {
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (t *Table) serializeXLSX() ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	header := make([]interface{}, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}
	for i, row := range t.Rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return nil, err
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save writes the table back to path in the given format.
func (t *Table) Save(path string, format Format) error {
	data, err := t.Serialize(format)
	if err != nil {
		return fmt.Errorf("serialize: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Fingerprint returns a digest of the table's content. Two tables with the
// same columns and cells fingerprint identically regardless of source format.
func (t *Table) Fingerprint() string {
	h := sha256.New()
	data, err := t.serializeCSV()
	if err != nil {
		// csv encoding into a bytes.Buffer cannot fail
		return ""
	}
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// columnIndex resolves a column name, exact match first, then case-insensitive.
func (t *Table) columnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	for i, c := range t.Columns {
		if strings.EqualFold(c, name) {
			return i
		}
	}
	return -1
}

// Schema renders a compact description of the table for prompts: column names,
// row count, and up to n sample rows in CSV form.
func (t *Table) Schema(sampleRows int) string {
	var sb strings.Builder
	sb.WriteString("Columns: ")
	sb.WriteString(strings.Join(t.Columns, ", "))
	fmt.Fprintf(&sb, "\nRows: %d\n", len(t.Rows))
	if sampleRows > len(t.Rows) {
		sampleRows = len(t.Rows)
	}
	if sampleRows > 0 {
		sb.WriteString("Sample:\n")
		sample := &Table{Columns: t.Columns, Rows: t.Rows[:sampleRows]}
		if data, err := sample.serializeCSV(); err == nil {
			sb.Write(data)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
