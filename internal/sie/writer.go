package sie

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"britta/internal/domain"
	"britta/internal/vat"
)

// SIE4 files use the IBM PC character set and period decimal separators.
// Fortnox and Visma both reject UTF-8, so the output is encoded CP437 with
// unmappable runes replaced.

// Options control the generated file. Zero values get sensible defaults.
type Options struct {
	ProgramName string    // #PROGRAM, defaults to "Britta"
	VerNumber   int       // verification number, defaults to 1
	Year        int       // fiscal year, defaults to the report period's year
	Now         time.Time // generation date, defaults to time.Now()
}

// FromReport renders a VAT report as a SIE4 file with one verification
// holding the report's journal entries.
func FromReport(rep *domain.VATReport, opts Options) ([]byte, error) {
	if rep == nil {
		return nil, fmt.Errorf("nil report")
	}

	program := opts.ProgramName
	if program == "" {
		program = "Britta"
	}
	verNumber := opts.VerNumber
	if verNumber == 0 {
		verNumber = 1
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	year := opts.Year
	if year == 0 {
		year = periodYear(rep.Period, now)
	}

	accounts := make(map[string]string, len(vat.AccountNames))
	for account, name := range vat.AccountNames {
		accounts[account] = name
	}
	for _, line := range rep.JournalEntries {
		if _, ok := accounts[line.Account]; !ok {
			accounts[line.Account] = line.Name
		}
	}

	var lines []string
	lines = append(lines,
		"#FLAGGA 0",
		"#FORMAT PC8",
		"#SIETYP 4",
		fmt.Sprintf("#PROGRAM %s 1.0", quote(program)),
		fmt.Sprintf("#GEN %s", now.Format("20060102")),
		fmt.Sprintf("#FNAMN %s", quote(rep.Company.Name)),
		fmt.Sprintf("#ORGNR %s", digitsOnly(rep.Company.OrgNumber)),
		fmt.Sprintf("#RAR 0 %d0101 %d1231", year, year),
		"#KPTYP BAS2024",
		"",
	)

	lines = append(lines, "# Kontoplan")
	accountNumbers := make([]string, 0, len(accounts))
	for account := range accounts {
		accountNumbers = append(accountNumbers, account)
	}
	sort.Strings(accountNumbers)
	for _, account := range accountNumbers {
		lines = append(lines, fmt.Sprintf("#KONTO %s %s", account, quote(accounts[account])))
	}
	lines = append(lines, "")

	if len(rep.JournalEntries) > 0 {
		lines = append(lines, "# Verifikationer")
		lines = append(lines, fmt.Sprintf("#VER \"\" %d %s %s",
			verNumber, now.Format("20060102"), quote("Momsredovisning "+rep.Period)))
		lines = append(lines, "{")
		for _, entry := range rep.JournalEntries {
			amount := entry.Debit - entry.Credit
			if amount == 0 {
				continue
			}
			lines = append(lines, fmt.Sprintf("    #TRANS %s {} %s", entry.Account, formatAmount(amount)))
		}
		lines = append(lines, "}")
		lines = append(lines, "")
	}

	content := strings.Join(lines, "\n")

	enc := encoding.ReplaceUnsupported(charmap.CodePage437.NewEncoder())
	encoded, err := enc.Bytes([]byte(content))
	if err != nil {
		return nil, fmt.Errorf("encoding SIE content: %w", err)
	}
	return encoded, nil
}

// FileName returns the download name for a report's SIE file.
func FileName(rep *domain.VATReport) string {
	period := strings.TrimSpace(rep.Period)
	if period == "" {
		return "momsrapport.sie"
	}
	return fmt.Sprintf("momsrapport-%s.sie", period)
}

// periodYear extracts the year from a "YYYY-MM" period, falling back to the
// generation date.
func periodYear(period string, now time.Time) int {
	if len(period) >= 4 {
		if y, err := strconv.Atoi(period[:4]); err == nil && y > 1900 {
			return y
		}
	}
	return now.Year()
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, "'") + `"`
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
