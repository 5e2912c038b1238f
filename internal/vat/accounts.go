package vat

// BAS 2024 accounts used by the report. The chart is fixed: the product
// books EV-charging income and platform costs, nothing else.
const (
	AccountBank        = "1930" // Företagskonto
	AccountOutgoingVAT = "2610" // Utgående moms
	AccountIncomingVAT = "2640" // Ingående moms
	AccountSales25     = "3010" // Privatladdning 25% moms
	AccountSales0      = "3011" // Roaming-försäljning momsfri
	AccountServices    = "6590" // Övriga externa tjänster
)

// AccountNames maps BAS accounts to their ledger names, used for journal
// lines and the SIE account directives.
var AccountNames = map[string]string{
	AccountBank:        "Företagskonto",
	AccountOutgoingVAT: "Utgående moms",
	AccountIncomingVAT: "Ingående moms",
	AccountSales25:     "Försäljning tjänster 25% moms",
	AccountSales0:      "Försäljning tjänster momsfri",
	AccountServices:    "Övriga externa tjänster",
}

// salesLine returns the account and description for a populated sales
// bucket, or ok=false when the rate has no named line (the bucket still
// counts toward totals).
func salesLine(rate float64) (account, description string, ok bool) {
	switch rate {
	case 25:
		return AccountSales25, "Privatladdning 25% moms", true
	case 0:
		return AccountSales0, "Roaming-försäljning momsfri", true
	default:
		return "", "", false
	}
}

// costLine returns the account and description for a populated cost
// bucket. Every cost bucket maps to 6590; only the description varies.
func costLine(rate float64) (account, description string) {
	if rate == 25 {
		return AccountServices, "Abonnemang och avgifter"
	}
	return AccountServices, "Plattformsavgifter"
}
