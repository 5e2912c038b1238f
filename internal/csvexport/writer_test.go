package csvexport

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"britta/internal/domain"
)

func testReport() *domain.VATReport {
	return &domain.VATReport{
		Type:   domain.ReportType,
		Period: "2025-11",
		Sales: []domain.LineItem{
			{Rate: 25, NetAmount: 1000, VATAmount: 250, GrossAmount: 1250, TransactionCount: 3, BASAccount: "3010", Description: "Privatladdning 25% moms"},
			{Rate: 0, NetAmount: 500, VATAmount: 0, GrossAmount: 500, TransactionCount: 2, BASAccount: "3011", Description: "Roaming-försäljning momsfri"},
		},
		Costs: []domain.LineItem{
			{Rate: 25, NetAmount: 200, VATAmount: 50, GrossAmount: 250, TransactionCount: 1, BASAccount: "6590", Description: "Abonnemang och avgifter"},
		},
		VAT: domain.VATTotals{Outgoing25: 250, Incoming: 50, Net: 200, ToPay: 200},
		JournalEntries: []domain.JournalLine{
			{Account: "1930", Name: "Företagskonto", Debit: 1750},
			{Account: "3010", Name: "Privatladdning 25% moms", Credit: 1000},
			{Account: "3011", Name: "Roaming-försäljning momsfri", Credit: 500},
			{Account: "2610", Name: "Utgående moms 25%", Credit: 250},
		},
	}
}

func readAll(t *testing.T, buf *bytes.Buffer) [][]string {
	t.Helper()
	r := csv.NewReader(buf)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)
	return records
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteReport(testReport()))
	w.Flush()
	require.NoError(t, w.Error())

	records := readAll(t, &buf)

	// Header + 3 line items + 6 totals rows + journal header + 4 journal rows.
	// Blank separator rows are skipped by the reader.
	require.Len(t, records, 15)

	assert.Equal(t, columns, records[0])

	assert.Equal(t, []string{"Försäljning", "Privatladdning 25% moms", "3010", "1000.00", "25%", "250.00", "1250.00", "3"}, records[1])
	assert.Equal(t, []string{"Försäljning", "Roaming-försäljning momsfri", "3011", "500.00", "0%", "0.00", "500.00", "2"}, records[2])
	assert.Equal(t, []string{"Kostnad", "Abonnemang och avgifter", "6590", "200.00", "25%", "50.00", "250.00", "1"}, records[3])

	assert.Equal(t, []string{"Utgående moms 25%", "250.00"}, records[4])
	assert.Equal(t, []string{"Ingående moms", "50.00"}, records[7])
	assert.Equal(t, []string{"Moms att betala", "200.00"}, records[8])
	assert.Equal(t, []string{"Moms att få tillbaka", "0.00"}, records[9])

	assert.Equal(t, journalColumns, records[10])
	assert.Equal(t, []string{"1930", "Företagskonto", "1750.00", "0.00"}, records[11])
	assert.Equal(t, []string{"2610", "Utgående moms 25%", "0.00", "250.00"}, records[14])
}

func TestWriteReport_NoJournal(t *testing.T) {
	rep := testReport()
	rep.JournalEntries = nil

	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteReport(rep))
	w.Flush()
	require.NoError(t, w.Error())

	records := readAll(t, &buf)
	require.Len(t, records, 10)
	assert.Equal(t, []string{"Moms att få tillbaka", "0.00"}, records[len(records)-1])
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple", "November 2025", "November_2025"},
		{"period kept", "2025-11", "2025-11"},
		{"special chars", "Moms / Q4 (Okt–Dec)", "Moms_Q4_Okt_Dec"},
		{"non-ascii stripped", "Örebro El AB", "rebro_El_AB"},
		{"consecutive underscores collapsed", "test___period", "test_period"},
		{"leading/trailing cleaned", "  hello  ", "hello"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeFilename(tt.input))
		})
	}
}

func TestBuildFilename(t *testing.T) {
	today := time.Now().Format("2006-01-02")

	assert.Equal(t, "momsrapport_2025-11_"+today+".csv", BuildFilename("2025-11"))
	assert.Equal(t, "momsrapport_"+today+".csv", BuildFilename(""))
}
