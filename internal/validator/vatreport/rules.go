package vatreport

import (
	"fmt"
	"math"

	"britta/internal/domain"
	"britta/internal/vat"
)

// reportRule checks one aspect of a finished VAT report.
type reportRule struct {
	key      string
	validate func(*domain.VATReport) []Finding
}

func (r *reportRule) Key() string { return r.key }

func (r *reportRule) Validate(rep *domain.VATReport) []Finding {
	return r.validate(rep)
}

func fmtf(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// Rules returns the fixed, ordered rule set. The set is not configurable:
// the identities come from Skatteverket's declaration rules, not from
// per-customer policy.
func Rules() []*reportRule {
	return []*reportRule{
		{
			key: "journal.balance",
			validate: func(rep *domain.VATReport) []Finding {
				var debit, credit float64
				for _, line := range rep.JournalEntries {
					debit += line.Debit
					credit += line.Credit
				}
				if approxEqual(debit, credit, balanceTolerance) {
					return nil
				}
				return []Finding{errf("journal.balance",
					"Verifikationen balanserar inte: debet %s ≠ kredit %s", fmtf(debit), fmtf(credit))}
			},
		},
		{
			key: "lines.vat_arithmetic",
			validate: func(rep *domain.VATReport) []Finding {
				var findings []Finding
				check := func(items []domain.LineItem) {
					for _, li := range items {
						if li.Rate > 0 {
							expected := li.NetAmount * li.Rate / 100
							if !approxEqual(li.VATAmount, expected, vatTolerance) {
								findings = append(findings, errf("lines.vat_arithmetic",
									"Moms för %s stämmer inte: förväntat %s, fick %s",
									li.Description, fmtf(expected), fmtf(li.VATAmount)))
							}
						}
						if !approxEqual(li.GrossAmount, li.NetAmount+li.VATAmount, vatTolerance) {
							findings = append(findings, errf("lines.vat_arithmetic",
								"Bruttobelopp för %s stämmer inte: %s ≠ %s + %s",
								li.Description, fmtf(li.GrossAmount), fmtf(li.NetAmount), fmtf(li.VATAmount)))
						}
					}
				}
				check(rep.Sales)
				check(rep.Costs)
				return findings
			},
		},
		{
			key: "vat.totals",
			validate: func(rep *domain.VATReport) []Finding {
				var findings []Finding
				v := rep.VAT
				calculated := v.Outgoing25 + v.Outgoing12 + v.Outgoing6 - v.Incoming
				if !approxEqual(calculated, v.Net, balanceTolerance) {
					findings = append(findings, errf("vat.totals",
						"Momsbalansen stämmer inte: beräknad %s ≠ rapporterad %s", fmtf(calculated), fmtf(v.Net)))
				}
				if v.ToPay > 0 && v.ToRefund > 0 {
					findings = append(findings, errf("vat.totals",
						"Att betala (%s) och att återfå (%s) kan inte båda vara större än noll",
						fmtf(v.ToPay), fmtf(v.ToRefund)))
				}
				if !approxEqual(v.ToPay, math.Max(v.Net, 0), balanceTolerance) ||
					!approxEqual(v.ToRefund, math.Max(-v.Net, 0), balanceTolerance) {
					findings = append(findings, errf("vat.totals",
						"Att betala/att återfå följer inte nettomomsen %s", fmtf(v.Net)))
				}
				return findings
			},
		},
		{
			key: "company.org_number",
			validate: func(rep *domain.VATReport) []Finding {
				if rep.Company.OrgNumber == "" {
					return nil
				}
				if err := vat.ValidateOrgNumber(rep.Company.OrgNumber); err != nil {
					return []Finding{errf("company.org_number",
						"Ogiltigt organisationsnummer: %s", rep.Company.OrgNumber)}
				}
				return nil
			},
		},
		{
			key: "report.plausibility",
			validate: func(rep *domain.VATReport) []Finding {
				var findings []Finding
				if rep.Summary.Result < 0 {
					findings = append(findings, warnf("report.plausibility",
						"Perioden visar negativt resultat (%s kr)", fmtf(rep.Summary.Result)))
				}
				var zeroRated float64
				for _, li := range rep.Sales {
					if li.Rate == 0 {
						zeroRated += li.NetAmount
					}
				}
				if rep.Summary.TotalIncome > 0 && zeroRated/rep.Summary.TotalIncome > 0.5 {
					findings = append(findings, warnf("report.plausibility",
						"Stor andel momsfri försäljning (%s kr), kontrollera roaming/export-underlag", fmtf(zeroRated)))
				}
				return findings
			},
		},
	}
}
