package vat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"britta/internal/domain"
	"britta/internal/vat"
)

func opts() vat.Options {
	return vat.Options{
		Period:  "2025-11",
		Company: domain.ReportCompany{Name: "Laddel AB", OrgNumber: "556036-0793"},
	}
}

func TestPartition_CostClassification(t *testing.T) {
	txs := []domain.Transaction{
		// A positive amount tagged cost is a cost.
		{Amount: 80, NetAmount: 64, VATAmount: 16, VATRate: 25, Type: "cost"},
		// A negative amount with no tag is a cost.
		{Amount: -125, NetAmount: -100, VATAmount: -25, VATRate: 25},
		// A negative amount tagged sale is still a cost: the sign wins.
		{Amount: -250, NetAmount: -200, VATAmount: -50, VATRate: 25, Type: "sale"},
		// A plain positive row is a sale.
		{Amount: 1250, NetAmount: 1000, VATAmount: 250, VATRate: 25, Type: "sale"},
	}

	sales, costs := vat.Partition(txs)

	require.Len(t, sales, 1)
	require.Len(t, costs, 1)

	assert.Equal(t, 1, sales[25].Count)
	assert.Equal(t, 1000.0, sales[25].Net)

	// Cost figures accumulate as absolute values.
	assert.Equal(t, 3, costs[25].Count)
	assert.Equal(t, 364.0, costs[25].Net)
	assert.Equal(t, 91.0, costs[25].VAT)
	assert.Equal(t, 455.0, costs[25].Gross)
}

func TestAggregate_EmptyInput(t *testing.T) {
	rep := vat.Aggregate(nil, opts())

	require.NotNil(t, rep)
	assert.Equal(t, domain.ReportType, rep.Type)
	assert.Equal(t, "2025-11", rep.Period)
	assert.Equal(t, "Laddel AB", rep.Company.Name)

	assert.Empty(t, rep.Sales)
	assert.Empty(t, rep.Costs)
	assert.Empty(t, rep.JournalEntries)

	assert.Equal(t, domain.VATTotals{}, rep.VAT)
	assert.Equal(t, domain.ReportTotals{}, rep.Summary)

	require.NotNil(t, rep.AnalysisSummary)
	assert.Equal(t, 0, rep.AnalysisSummary.TotalTransactions)
	assert.Empty(t, rep.AnalysisSummary.TopCosts)
	assert.Empty(t, rep.AnalysisSummary.TopRevenues)
}

func TestAggregate_MixedTransactions(t *testing.T) {
	txs := []domain.Transaction{
		{Amount: 1250, NetAmount: 1000, VATAmount: 250, VATRate: 25, Type: "sale", Category: "private_charging"},
		{Amount: 625, NetAmount: 500, VATAmount: 125, VATRate: 25, Category: "private_charging"},
		{Amount: 300, NetAmount: 300, VATAmount: 0, VATRate: 0, Type: "sale", Category: "roaming"},
		{Amount: -250, NetAmount: -200, VATAmount: -50, VATRate: 25, Type: "cost", Category: "subscription"},
		{Amount: -125, NetAmount: -100, VATAmount: -25, VATRate: 25},
		{Amount: 80, NetAmount: 64, VATAmount: 16, VATRate: 25, Type: "cost"},
	}

	rep := vat.Aggregate(txs, opts())

	// Sales lines come out highest rate first.
	require.Len(t, rep.Sales, 2)
	assert.Equal(t, domain.LineItem{
		Rate: 25, NetAmount: 1500, VATAmount: 375, GrossAmount: 1875,
		TransactionCount: 2, BASAccount: "3010", Description: "Privatladdning 25% moms",
	}, rep.Sales[0])
	assert.Equal(t, domain.LineItem{
		Rate: 0, NetAmount: 300, VATAmount: 0, GrossAmount: 300,
		TransactionCount: 1, BASAccount: "3011", Description: "Roaming-försäljning momsfri",
	}, rep.Sales[1])

	require.Len(t, rep.Costs, 1)
	assert.Equal(t, domain.LineItem{
		Rate: 25, NetAmount: 364, VATAmount: 91, GrossAmount: 455,
		TransactionCount: 3, BASAccount: "6590", Description: "Abonnemang och avgifter",
	}, rep.Costs[0])

	assert.Equal(t, 375.0, rep.VAT.Outgoing25)
	assert.Equal(t, 91.0, rep.VAT.Incoming)
	assert.Equal(t, 284.0, rep.VAT.Net)
	assert.Equal(t, 284.0, rep.VAT.ToPay)
	assert.Equal(t, 0.0, rep.VAT.ToRefund)

	assert.Equal(t, 1800.0, rep.Summary.TotalIncome)
	assert.Equal(t, 364.0, rep.Summary.TotalCosts)
	assert.Equal(t, 1436.0, rep.Summary.Result)
}

func TestAggregate_RefundWhenIncomingExceedsOutgoing(t *testing.T) {
	txs := []domain.Transaction{
		{Amount: 125, NetAmount: 100, VATAmount: 25, VATRate: 25, Type: "sale"},
		{Amount: -1250, NetAmount: -1000, VATAmount: -250, VATRate: 25, Type: "cost"},
	}

	rep := vat.Aggregate(txs, opts())

	assert.Equal(t, -225.0, rep.VAT.Net)
	assert.Equal(t, 0.0, rep.VAT.ToPay)
	assert.Equal(t, 225.0, rep.VAT.ToRefund)
}

func TestAggregate_TwelvePercentSaleHasNoNamedLine(t *testing.T) {
	txs := []domain.Transaction{
		{Amount: 112, NetAmount: 100, VATAmount: 12, VATRate: 12, Type: "sale"},
	}

	rep := vat.Aggregate(txs, opts())

	// The rate is outside the chart, so no line item is emitted, but the
	// VAT still lands in the declared totals.
	assert.Empty(t, rep.Sales)
	assert.Equal(t, 12.0, rep.VAT.Outgoing12)
	assert.Equal(t, 12.0, rep.VAT.Net)
	assert.Equal(t, 100.0, rep.Summary.TotalIncome)
}

func TestAggregate_ZeroRateCostUsesPlatformLine(t *testing.T) {
	txs := []domain.Transaction{
		{Amount: -40, NetAmount: -40, VATAmount: 0, VATRate: 0, Type: "cost"},
	}

	rep := vat.Aggregate(txs, opts())

	require.Len(t, rep.Costs, 1)
	assert.Equal(t, "6590", rep.Costs[0].BASAccount)
	assert.Equal(t, "Plattformsavgifter", rep.Costs[0].Description)
}

func TestJournal_OrderAndBalance(t *testing.T) {
	sales := []domain.LineItem{
		{Rate: 25, NetAmount: 1500, VATAmount: 375, GrossAmount: 1875, BASAccount: "3010", Description: "Privatladdning 25% moms"},
		{Rate: 0, NetAmount: 300, VATAmount: 0, GrossAmount: 300, BASAccount: "3011", Description: "Roaming-försäljning momsfri"},
	}
	costs := []domain.LineItem{
		{Rate: 25, NetAmount: 364, VATAmount: 91, GrossAmount: 455, BASAccount: "6590", Description: "Abonnemang och avgifter"},
	}

	entries := vat.Journal(sales, costs)
	require.Len(t, entries, 7)

	wantAccounts := []string{"1930", "3010", "3011", "2610", "6590", "2640", "1930"}
	for i, want := range wantAccounts {
		assert.Equal(t, want, entries[i].Account, "entry %d", i)
	}

	assert.Equal(t, 2175.0, entries[0].Debit)
	assert.Equal(t, 375.0, entries[3].Credit)
	assert.Equal(t, 91.0, entries[5].Debit)
	assert.Equal(t, 455.0, entries[6].Credit)

	var debit, credit float64
	for _, e := range entries {
		debit += e.Debit
		credit += e.Credit
	}
	assert.InDelta(t, debit, credit, 0.01)
}

func TestJournal_SalesOnly(t *testing.T) {
	sales := []domain.LineItem{
		{Rate: 25, NetAmount: 100, VATAmount: 25, GrossAmount: 125, BASAccount: "3010", Description: "Privatladdning 25% moms"},
	}

	entries := vat.Journal(sales, nil)
	require.Len(t, entries, 3)

	assert.Equal(t, "1930", entries[0].Account)
	assert.Equal(t, 125.0, entries[0].Debit)
	assert.Equal(t, "3010", entries[1].Account)
	assert.Equal(t, 100.0, entries[1].Credit)
	assert.Equal(t, "2610", entries[2].Account)
	assert.Equal(t, 25.0, entries[2].Credit)
}

func TestJournal_Empty(t *testing.T) {
	assert.Empty(t, vat.Journal(nil, nil))
}

func TestSummarize(t *testing.T) {
	txs := []domain.Transaction{
		{Amount: 100, VATRate: 25, Type: "sale", Category: "private_charging"},
		{Amount: 200, VATRate: 25, Type: "sale", Category: "private_charging"},
		{Amount: 50, VATRate: 0, Type: "sale", Category: "roaming"},
		{Amount: -75, VATRate: 25, Type: "cost", Description: "Fortum månadsavgift"},
		{Amount: -25, VATRate: 0, Type: "cost", Category: "platform_fee"},
	}

	s := vat.Summarize(txs)

	assert.Equal(t, 5, s.TotalTransactions)
	assert.Equal(t, 2, s.CostCount)
	assert.Equal(t, 3, s.RevenueCount)
	assert.Equal(t, 2, s.ZeroVATCount)
	assert.Equal(t, 75.0, s.ZeroVATAmount)

	require.Len(t, s.TopRevenues, 2)
	assert.Equal(t, domain.CategoryAmount{Label: "Privatladdning", Amount: 300, Count: 2}, s.TopRevenues[0])
	assert.Equal(t, domain.CategoryAmount{Label: "Roaming", Amount: 50, Count: 1}, s.TopRevenues[1])

	require.Len(t, s.TopCosts, 2)
	assert.Equal(t, domain.CategoryAmount{Label: "Fortum månadsavgift", Amount: 75, Count: 1}, s.TopCosts[0])
	assert.Equal(t, domain.CategoryAmount{Label: "Plattformsavgift", Amount: 25, Count: 1}, s.TopCosts[1])
}

func TestSummarize_KeepsTopFourGroups(t *testing.T) {
	txs := []domain.Transaction{
		{Amount: 500, Type: "sale", Description: "A"},
		{Amount: 400, Type: "sale", Description: "B"},
		{Amount: 300, Type: "sale", Description: "C"},
		{Amount: 200, Type: "sale", Description: "D"},
		{Amount: 100, Type: "sale", Description: "E"},
	}

	s := vat.Summarize(txs)

	require.Len(t, s.TopRevenues, 4)
	assert.Equal(t, "A", s.TopRevenues[0].Label)
	assert.Equal(t, "D", s.TopRevenues[3].Label)
}

func TestNormalizeGross(t *testing.T) {
	tests := []struct {
		name    string
		gross   float64
		rate    float64
		wantNet float64
		wantVAT float64
	}{
		{"25 percent", 1250, 25, 1000, 250},
		{"12 percent", 112, 12, 100, 12},
		{"zero rate passes through", 100, 0, 100, 0},
		{"negative rate passes through", 100, -25, 100, 0},
		{"negative gross", -125, 25, -100, -25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			net, vatAmount := vat.NormalizeGross(tt.gross, tt.rate)
			assert.InDelta(t, tt.wantNet, net, 0.01)
			assert.InDelta(t, tt.wantVAT, vatAmount, 0.01)
		})
	}
}

func TestDisplayLabel(t *testing.T) {
	tests := []struct {
		name        string
		category    string
		description string
		want        string
	}{
		{"known category", "private_charging", "whatever", "Privatladdning"},
		{"unknown category falls back to description", "mystery", "Fortum månadsavgift", "Fortum månadsavgift"},
		{"no category no description", "", "", "Övrigt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, vat.DisplayLabel(tt.category, tt.description))
		})
	}
}

func TestDisplayLabel_TruncatesLongDescriptions(t *testing.T) {
	long := "Betalning avseende laddinfrastruktur och nätverksavgifter för november"
	got := vat.DisplayLabel("", long)

	runes := []rune(got)
	assert.Equal(t, 49, len(runes))
	assert.Equal(t, "…", string(runes[48]))
}
