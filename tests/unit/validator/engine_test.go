package validator_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"britta/internal/domain"
	"britta/internal/validator"
	"britta/internal/vat"
)

// balancedReport aggregates a small but complete transaction set, so every
// identity the rules check holds by construction.
func balancedReport() *domain.VATReport {
	txs := []domain.Transaction{
		{Amount: 1250, NetAmount: 1000, VATAmount: 250, VATRate: 25, Type: "sale", Category: "private_charging"},
		{Amount: 300, NetAmount: 300, VATAmount: 0, VATRate: 0, Type: "sale", Category: "roaming"},
		{Amount: -125, NetAmount: -100, VATAmount: -25, VATRate: 25, Type: "cost", Category: "subscription"},
	}
	return vat.Aggregate(txs, vat.Options{
		Period:  "2025-11",
		Company: domain.ReportCompany{Name: "Laddel AB", OrgNumber: "556036-0793"},
	})
}

func anyContains(msgs []string, sub string) bool {
	for _, m := range msgs {
		if strings.Contains(m, sub) {
			return true
		}
	}
	return false
}

func TestValidateReport_BalancedReportIsValid(t *testing.T) {
	result := validator.NewEngine().ValidateReport(balancedReport())

	assert.True(t, result.IsValid)
	// The block always carries arrays, never nulls, for the client.
	require.NotNil(t, result.Errors)
	require.NotNil(t, result.Warnings)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
}

func TestValidateReport_JournalImbalance(t *testing.T) {
	rep := balancedReport()
	rep.JournalEntries = append(rep.JournalEntries, domain.JournalLine{
		Account: "1930", Name: "Företagskonto", Debit: 100,
	})

	result := validator.NewEngine().ValidateReport(rep)

	assert.False(t, result.IsValid)
	assert.True(t, anyContains(result.Errors, "balanserar inte"), "got %v", result.Errors)
}

func TestValidateReport_JournalWithinTolerance(t *testing.T) {
	rep := balancedReport()
	rep.JournalEntries = append(rep.JournalEntries, domain.JournalLine{
		Account: "1930", Name: "Företagskonto", Debit: 0.01,
	})

	result := validator.NewEngine().ValidateReport(rep)

	assert.True(t, result.IsValid)
}

func TestValidateReport_LineVATArithmetic(t *testing.T) {
	rep := balancedReport()
	rep.Sales[0].VATAmount = 200 // 25% of 1000 is 250

	result := validator.NewEngine().ValidateReport(rep)

	assert.False(t, result.IsValid)
	assert.True(t, anyContains(result.Errors, "förväntat 250.00"), "got %v", result.Errors)
}

func TestValidateReport_LineGrossMismatch(t *testing.T) {
	rep := balancedReport()
	rep.Costs[0].GrossAmount = 999

	result := validator.NewEngine().ValidateReport(rep)

	assert.False(t, result.IsValid)
	assert.True(t, anyContains(result.Errors, "Bruttobelopp"), "got %v", result.Errors)
}

func TestValidateReport_NetMismatch(t *testing.T) {
	rep := balancedReport()
	rep.VAT.Net = 100 // 250 - 25 = 225

	result := validator.NewEngine().ValidateReport(rep)

	assert.False(t, result.IsValid)
	assert.True(t, anyContains(result.Errors, "Momsbalansen"), "got %v", result.Errors)
}

func TestValidateReport_PayAndRefundBothSet(t *testing.T) {
	rep := balancedReport()
	rep.VAT.ToPay = 225
	rep.VAT.ToRefund = 50

	result := validator.NewEngine().ValidateReport(rep)

	assert.False(t, result.IsValid)
	assert.True(t, anyContains(result.Errors, "båda vara större än noll"), "got %v", result.Errors)
}

func TestValidateReport_PayDoesNotFollowNet(t *testing.T) {
	rep := balancedReport()
	rep.VAT.ToPay = 0 // net is 225, so ToPay must be 225

	result := validator.NewEngine().ValidateReport(rep)

	assert.False(t, result.IsValid)
	assert.True(t, anyContains(result.Errors, "följer inte nettomomsen"), "got %v", result.Errors)
}

func TestValidateReport_InvalidOrgNumber(t *testing.T) {
	rep := balancedReport()
	rep.Company.OrgNumber = "556036-0794"

	result := validator.NewEngine().ValidateReport(rep)

	assert.False(t, result.IsValid)
	assert.True(t, anyContains(result.Errors, "Ogiltigt organisationsnummer"), "got %v", result.Errors)
}

func TestValidateReport_MissingOrgNumberIsAccepted(t *testing.T) {
	rep := balancedReport()
	rep.Company.OrgNumber = ""

	result := validator.NewEngine().ValidateReport(rep)

	assert.True(t, result.IsValid)
}

func TestValidateReport_WarningsKeepReportValid(t *testing.T) {
	txs := []domain.Transaction{
		{Amount: 125, NetAmount: 100, VATAmount: 25, VATRate: 25, Type: "sale"},
		{Amount: -1250, NetAmount: -1000, VATAmount: -250, VATRate: 25, Type: "cost"},
	}
	rep := vat.Aggregate(txs, vat.Options{
		Period:  "2025-11",
		Company: domain.ReportCompany{Name: "Laddel AB", OrgNumber: "556036-0793"},
	})

	result := validator.NewEngine().ValidateReport(rep)

	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
	assert.True(t, anyContains(result.Warnings, "negativt resultat"), "got %v", result.Warnings)
}

func TestValidateReport_ZeroRatedShareWarning(t *testing.T) {
	txs := []domain.Transaction{
		{Amount: 125, NetAmount: 100, VATAmount: 25, VATRate: 25, Type: "sale"},
		{Amount: 900, NetAmount: 900, VATAmount: 0, VATRate: 0, Type: "sale"},
	}
	rep := vat.Aggregate(txs, vat.Options{
		Period:  "2025-11",
		Company: domain.ReportCompany{Name: "Laddel AB", OrgNumber: "556036-0793"},
	})

	result := validator.NewEngine().ValidateReport(rep)

	assert.True(t, result.IsValid)
	assert.True(t, anyContains(result.Warnings, "momsfri försäljning"), "got %v", result.Warnings)
}

func TestValidateReport_EmptyReport(t *testing.T) {
	rep := vat.Aggregate(nil, vat.Options{Period: "2025-11"})

	result := validator.NewEngine().ValidateReport(rep)

	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
}
