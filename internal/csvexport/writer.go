package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"britta/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the line item header row.
var columns = []string{
	"Typ",
	"Beskrivning",
	"BAS-konto",
	"Nettobelopp",
	"Momssats",
	"Moms",
	"Bruttobelopp",
	"Antal transaktioner",
}

// journalColumns defines the verification header row.
var journalColumns = []string{
	"Konto",
	"Kontonamn",
	"Debet",
	"Kredit",
}

// Writer wraps csv.Writer for exporting VAT reports as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteReport writes the full report: line items, VAT totals and the
// journal, separated by blank rows so the sections stay readable when the
// file is opened in a spreadsheet.
func (w *Writer) WriteReport(rep *domain.VATReport) error {
	if err := w.csv.Write(columns); err != nil {
		return err
	}
	for i := range rep.Sales {
		if err := w.csv.Write(lineItemRow("Försäljning", &rep.Sales[i])); err != nil {
			return err
		}
	}
	for i := range rep.Costs {
		if err := w.csv.Write(lineItemRow("Kostnad", &rep.Costs[i])); err != nil {
			return err
		}
	}

	if err := w.writeTotals(rep); err != nil {
		return err
	}
	return w.writeJournal(rep)
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

func (w *Writer) writeTotals(rep *domain.VATReport) error {
	rows := [][]string{
		{},
		{"Utgående moms 25%", formatMoney(rep.VAT.Outgoing25)},
		{"Utgående moms 12%", formatMoney(rep.VAT.Outgoing12)},
		{"Utgående moms 6%", formatMoney(rep.VAT.Outgoing6)},
		{"Ingående moms", formatMoney(rep.VAT.Incoming)},
		{"Moms att betala", formatMoney(rep.VAT.ToPay)},
		{"Moms att få tillbaka", formatMoney(rep.VAT.ToRefund)},
	}
	for _, row := range rows {
		if err := w.csv.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeJournal(rep *domain.VATReport) error {
	if len(rep.JournalEntries) == 0 {
		return nil
	}
	if err := w.csv.Write([]string{}); err != nil {
		return err
	}
	if err := w.csv.Write(journalColumns); err != nil {
		return err
	}
	for _, entry := range rep.JournalEntries {
		row := []string{
			entry.Account,
			entry.Name,
			formatMoney(entry.Debit),
			formatMoney(entry.Credit),
		}
		if err := w.csv.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func lineItemRow(kind string, item *domain.LineItem) []string {
	return []string{
		kind,
		item.Description,
		item.BASAccount,
		formatMoney(item.NetAmount),
		formatRate(item.Rate),
		formatMoney(item.VATAmount),
		formatMoney(item.GrossAmount),
		strconv.Itoa(item.TransactionCount),
	}
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatRate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "%"
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized filename for the Content-Disposition
// header. Format: momsrapport_{period}_{YYYY-MM-DD}.csv
func BuildFilename(period string) string {
	sanitized := SanitizeFilename(period)
	date := time.Now().Format("2006-01-02")
	if sanitized == "" {
		return fmt.Sprintf("momsrapport_%s.csv", date)
	}
	return fmt.Sprintf("momsrapport_%s_%s.csv", sanitized, date)
}
