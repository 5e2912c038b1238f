package vat

// categoryLabels maps the analysis service's category slugs to the Swedish
// display labels used in the top-costs/top-revenues breakdown.
var categoryLabels = map[string]string{
	"private_charging": "Privatladdning",
	"public_charging":  "Publik laddning",
	"roaming":          "Roaming",
	"subscription":     "Abonnemang",
	"platform_fee":     "Plattformsavgift",
	"service_fee":      "Serviceavgift",
	"electricity":      "El",
}

// maxLabelLen bounds free-text fallback labels so one verbose bank row
// cannot blow up the breakdown table.
const maxLabelLen = 48

// DisplayLabel resolves the grouping label for a transaction: the mapped
// Swedish category name when the category is known, otherwise the
// description truncated to 48 characters, otherwise "Övrigt".
func DisplayLabel(category, description string) string {
	if label, ok := categoryLabels[category]; ok {
		return label
	}
	if description != "" {
		return truncate(description, maxLabelLen)
	}
	return "Övrigt"
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
