package excel

import (
	"fmt"
	"strconv"
	"strings"

	"britta/internal/domain"
	"britta/internal/vat"
)

// RequiredColumns are the headers a transaction sheet must carry, matched
// case-insensitively on trimmed values.
var RequiredColumns = []string{"amount", "subAmount", "vat", "vatRate", "transactionName"}

// Normalize extracts transactions from a sheet whose first row is headers.
// Rows with a blank or unparseable amount are skipped rather than failing
// the whole sheet. When the net and VAT columns are both empty the amounts
// are derived from the gross and the rate.
func Normalize(sheet domain.Sheet) ([]domain.Transaction, error) {
	if len(sheet.Rows) == 0 {
		return nil, fmt.Errorf("%w: sheet %s is empty", domain.ErrInvalidInput, sheet.Name)
	}

	headers := headerIndex(sheet.Rows[0])
	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := headers[strings.ToLower(col)]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing columns: %s (required: %s)",
			domain.ErrInvalidInput, strings.Join(missing, ", "), strings.Join(RequiredColumns, ", "))
	}

	data := sheet.Rows[1:]
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: file contains no data rows", domain.ErrInvalidInput)
	}

	txs := make([]domain.Transaction, 0, len(data))
	for _, row := range data {
		get := func(col string) string {
			idx, ok := headers[col]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		amountStr := get("amount")
		if amountStr == "" {
			continue
		}
		amount, err := ParseNumber(amountStr)
		if err != nil {
			continue
		}

		net, _ := ParseNumber(get("subamount"))
		vatAmount, _ := ParseNumber(get("vat"))
		rate, _ := ParseNumber(get("vatrate"))
		if net == 0 && vatAmount == 0 && amount != 0 {
			net, vatAmount = vat.NormalizeGross(amount, rate)
		}

		kind := strings.ToLower(get("type"))
		if kind == "" {
			if amount < 0 {
				kind = string(domain.KindCost)
			} else {
				kind = string(domain.KindSale)
			}
		}

		date := get("date")
		if date == "" {
			date = get("transactiondate")
		}

		txs = append(txs, domain.Transaction{
			Amount:      amount,
			NetAmount:   net,
			VATAmount:   vatAmount,
			VATRate:     rate,
			Type:        kind,
			Description: get("transactionname"),
			Category:    get("category"),
			Date:        date,
		})
	}
	return txs, nil
}

// headerIndex maps lowercased trimmed headers to their column position.
// The first occurrence wins when a header repeats.
func headerIndex(row []string) map[string]int {
	idx := make(map[string]int, len(row))
	for i, h := range row {
		key := strings.ToLower(strings.TrimSpace(h))
		if key == "" {
			continue
		}
		if _, ok := idx[key]; !ok {
			idx[key] = i
		}
	}
	return idx
}

// ParseNumber reads a spreadsheet cell as a float. It handles Swedish
// decimal commas, space and non-breaking-space thousand separators, and a
// trailing percent sign.
func ParseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")

	switch {
	case strings.Contains(s, ",") && strings.Contains(s, "."):
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			// 1.234,56
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			// 1,234.56
			s = strings.ReplaceAll(s, ",", "")
		}
	case strings.Contains(s, ","):
		if strings.Count(s, ",") == 1 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	}
	return strconv.ParseFloat(s, 64)
}
