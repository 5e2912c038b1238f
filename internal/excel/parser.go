package excel

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"britta/internal/domain"
	"britta/internal/port"
)

type parser struct{}

// NewParser creates the spreadsheet parser for xlsx, xls and csv attachments.
func NewParser() port.WorkbookParser {
	return &parser{}
}

func (p *parser) Parse(fileName string, data []byte) (*domain.Workbook, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xlsx", ".xls":
		return parseWorkbook(data)
	case ".csv":
		return parseCSV(data)
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFileType, filepath.Ext(fileName))
	}
}

func parseWorkbook(data []byte) (*domain.Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	wb := &domain.Workbook{}
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", name, err)
		}
		wb.Sheets = append(wb.Sheets, domain.Sheet{Name: name, Rows: rows})
	}
	return wb, nil
}

// parseCSV reads a single-sheet workbook from CSV bytes. Swedish exports are
// often semicolon-delimited, so the delimiter is sniffed from the first line.
func parseCSV(data []byte) (*domain.Workbook, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	firstLine := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		firstLine = data[:i]
	}
	delimiter := ','
	if bytes.Count(firstLine, []byte(";")) > bytes.Count(firstLine, []byte(",")) {
		delimiter = ';'
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = delimiter
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	return &domain.Workbook{
		Sheets: []domain.Sheet{{Name: "Blad1", Rows: rows}},
	}, nil
}
