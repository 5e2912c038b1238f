package vat

import (
	"math"
	"sort"

	"britta/internal/domain"
)

// Options carries the report context the transform cannot derive from the
// transactions themselves.
type Options struct {
	Period  string
	Company domain.ReportCompany
}

// Partition splits transactions into sale and cost buckets keyed by VAT
// rate. Every transaction lands in exactly one bucket, whatever its rate;
// cost figures are accumulated as absolute values.
func Partition(txs []domain.Transaction) (sales, costs map[float64]*domain.VATBucket) {
	sales = make(map[float64]*domain.VATBucket)
	costs = make(map[float64]*domain.VATBucket)
	for _, t := range txs {
		if t.IsCost() {
			b := bucketFor(costs, t.VATRate)
			b.Net += math.Abs(t.NetAmount)
			b.VAT += math.Abs(t.VATAmount)
			b.Gross += math.Abs(t.Amount)
			b.Count++
		} else {
			b := bucketFor(sales, t.VATRate)
			b.Net += t.NetAmount
			b.VAT += t.VATAmount
			b.Gross += t.Amount
			b.Count++
		}
	}
	return sales, costs
}

// Aggregate transforms a normalized transaction set into a full VAT
// report: rate buckets, named line items, VAT totals, a balanced journal,
// and the display summary. It never fails: malformed input degrades to
// zero-amount figures instead of erroring, and validation of the result
// is left to the caller.
func Aggregate(txs []domain.Transaction, opts Options) *domain.VATReport {
	salesBuckets, costBuckets := Partition(txs)

	salesItems := make([]domain.LineItem, 0, len(salesBuckets))
	for _, rate := range ratesDesc(salesBuckets) {
		b := salesBuckets[rate]
		account, description, ok := salesLine(rate)
		if !ok {
			// Rates outside the chart stay in the totals but have no
			// named line.
			continue
		}
		salesItems = append(salesItems, lineItem(rate, b, account, description))
	}

	costItems := make([]domain.LineItem, 0, len(costBuckets))
	for _, rate := range ratesDesc(costBuckets) {
		b := costBuckets[rate]
		account, description := costLine(rate)
		costItems = append(costItems, lineItem(rate, b, account, description))
	}

	var incoming float64
	for _, b := range costBuckets {
		incoming += b.VAT
	}
	totals := domain.VATTotals{
		Outgoing25: round2(bucketVAT(salesBuckets, 25)),
		Outgoing12: round2(bucketVAT(salesBuckets, 12)),
		Outgoing6:  round2(bucketVAT(salesBuckets, 6)),
		Incoming:   round2(incoming),
	}
	totals.Net = round2(totals.Outgoing25 + totals.Outgoing12 + totals.Outgoing6 - totals.Incoming)
	totals.ToPay = math.Max(totals.Net, 0)
	totals.ToRefund = math.Max(-totals.Net, 0)

	var totalIncome, totalCosts float64
	for _, b := range salesBuckets {
		totalIncome += b.Net
	}
	for _, b := range costBuckets {
		totalCosts += b.Net
	}
	summary := domain.ReportTotals{
		TotalIncome: round2(totalIncome),
		TotalCosts:  round2(totalCosts),
		Result:      round2(totalIncome - totalCosts),
	}

	return &domain.VATReport{
		Type:            domain.ReportType,
		Period:          opts.Period,
		Company:         opts.Company,
		Summary:         summary,
		Sales:           salesItems,
		Costs:           costItems,
		VAT:             totals,
		JournalEntries:  Journal(salesItems, costItems),
		AnalysisSummary: Summarize(txs),
	}
}

// Journal builds the verifikation from the emitted line items, in fixed
// order: bank in, sale credits, outgoing VAT, cost debits, incoming VAT,
// bank out. Deriving every amount from the same line items keeps the
// journal balanced regardless of input quality.
func Journal(sales, costs []domain.LineItem) []domain.JournalLine {
	var grossSales, salesVAT, grossCosts, costsVAT float64
	for _, li := range sales {
		grossSales += li.GrossAmount
		salesVAT += li.VATAmount
	}
	for _, li := range costs {
		grossCosts += li.GrossAmount
		costsVAT += li.VATAmount
	}

	entries := make([]domain.JournalLine, 0, len(sales)+len(costs)+4)
	if grossSales > 0 {
		entries = append(entries, domain.JournalLine{
			Account: AccountBank, Name: AccountNames[AccountBank], Debit: round2(grossSales),
		})
	}
	for _, li := range sales {
		if li.NetAmount > 0 {
			entries = append(entries, domain.JournalLine{
				Account: li.BASAccount, Name: li.Description, Credit: li.NetAmount,
			})
		}
	}
	if salesVAT > 0 {
		entries = append(entries, domain.JournalLine{
			Account: AccountOutgoingVAT, Name: AccountNames[AccountOutgoingVAT], Credit: round2(salesVAT),
		})
	}
	for _, li := range costs {
		if li.NetAmount > 0 {
			entries = append(entries, domain.JournalLine{
				Account: li.BASAccount, Name: li.Description, Debit: li.NetAmount,
			})
		}
	}
	if costsVAT > 0 {
		entries = append(entries, domain.JournalLine{
			Account: AccountIncomingVAT, Name: AccountNames[AccountIncomingVAT], Debit: round2(costsVAT),
		})
	}
	if grossCosts > 0 {
		entries = append(entries, domain.JournalLine{
			Account: AccountBank, Name: AccountNames[AccountBank], Credit: round2(grossCosts),
		})
	}
	return entries
}

// Summarize computes the display statistics block: counts, the zero-VAT
// share, and the top four cost and revenue groups by amount.
func Summarize(txs []domain.Transaction) *domain.AnalysisSummary {
	s := &domain.AnalysisSummary{
		TotalTransactions: len(txs),
		TopCosts:          []domain.CategoryAmount{},
		TopRevenues:       []domain.CategoryAmount{},
	}
	costGroups := make(map[string]*domain.CategoryAmount)
	revenueGroups := make(map[string]*domain.CategoryAmount)

	for _, t := range txs {
		if t.VATRate == 0 {
			s.ZeroVATCount++
			s.ZeroVATAmount += math.Abs(t.Amount)
		}
		groups := revenueGroups
		if t.IsCost() {
			s.CostCount++
			groups = costGroups
		} else {
			s.RevenueCount++
		}
		label := DisplayLabel(t.Category, t.Description)
		g, ok := groups[label]
		if !ok {
			g = &domain.CategoryAmount{Label: label}
			groups[label] = g
		}
		g.Amount += math.Abs(t.Amount)
		g.Count++
	}

	s.ZeroVATAmount = round2(s.ZeroVATAmount)
	s.TopCosts = topGroups(costGroups, 4)
	s.TopRevenues = topGroups(revenueGroups, 4)
	return s
}

// NormalizeGross splits a gross amount into net and VAT for a given rate.
// Rates at or below zero pass the gross through untouched.
func NormalizeGross(gross, rate float64) (net, vatAmount float64) {
	if rate <= 0 {
		return round2(gross), 0
	}
	net = gross / (1 + rate/100)
	return round2(net), round2(gross - net)
}

func lineItem(rate float64, b *domain.VATBucket, account, description string) domain.LineItem {
	net := round2(b.Net)
	vatAmount := round2(b.VAT)
	return domain.LineItem{
		Rate:             rate,
		NetAmount:        net,
		VATAmount:        vatAmount,
		GrossAmount:      round2(net + vatAmount),
		TransactionCount: b.Count,
		BASAccount:       account,
		Description:      description,
	}
}

func topGroups(groups map[string]*domain.CategoryAmount, n int) []domain.CategoryAmount {
	out := make([]domain.CategoryAmount, 0, len(groups))
	for _, g := range groups {
		out = append(out, domain.CategoryAmount{Label: g.Label, Amount: round2(g.Amount), Count: g.Count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Label < out[j].Label
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func bucketFor(buckets map[float64]*domain.VATBucket, rate float64) *domain.VATBucket {
	b, ok := buckets[rate]
	if !ok {
		b = &domain.VATBucket{Rate: rate}
		buckets[rate] = b
	}
	return b
}

func bucketVAT(buckets map[float64]*domain.VATBucket, rate float64) float64 {
	if b, ok := buckets[rate]; ok {
		return b.VAT
	}
	return 0
}

func ratesDesc(buckets map[float64]*domain.VATBucket) []float64 {
	rates := make([]float64, 0, len(buckets))
	for r := range buckets {
		rates = append(rates, r)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(rates)))
	return rates
}

func round2(x float64) float64 {
	r := math.Round(x*100) / 100
	if r == 0 {
		return 0
	}
	return r
}
