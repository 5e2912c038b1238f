package port

import "britta/internal/domain"

// WorkbookParser turns raw spreadsheet bytes into sheets of string rows.
// The first row of each sheet is treated as headers by callers.
type WorkbookParser interface {
	Parse(fileName string, data []byte) (*domain.Workbook, error)
}
