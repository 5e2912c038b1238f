package progress

// Canonical analysis step keys, in pipeline order. The analysis service may
// skip the two engine-specific steps depending on which backend handled the
// run; a skipped step is back-filled as completed when a later step arrives.
const (
	StepParsing          = "parsing"
	StepAnalyzing        = "analyzing"
	StepDetecting        = "detecting"
	StepCategorizing     = "categorizing"
	StepMapping          = "mapping"
	StepNormalizing      = "normalizing"
	StepCalculating      = "calculating"
	StepPythonCalc       = "python-calculating"
	StepClaudeValidating = "claude-validating"
	StepComplete         = "complete"

	// StepError is terminal and may arrive at any point in the sequence.
	StepError = "error"
)

// Status of a single step in the indicator.
type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// Step pairs a wire key with its display label.
type Step struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Steps returns the canonical ordered step list.
func Steps() []Step {
	return []Step{
		{Key: StepParsing, Label: "Läser filen"},
		{Key: StepAnalyzing, Label: "Analyserar innehållet"},
		{Key: StepDetecting, Label: "Identifierar transaktioner"},
		{Key: StepCategorizing, Label: "Kategoriserar poster"},
		{Key: StepMapping, Label: "Mappar kolumner"},
		{Key: StepNormalizing, Label: "Normaliserar belopp"},
		{Key: StepCalculating, Label: "Beräknar moms"},
		{Key: StepPythonCalc, Label: "Räknar om med beräkningsmotorn"},
		{Key: StepClaudeValidating, Label: "Kontrollerar resultatet"},
		{Key: StepComplete, Label: "Klar"},
	}
}

func stepIndex() map[string]int {
	steps := Steps()
	idx := make(map[string]int, len(steps))
	for i, s := range steps {
		idx[s.Key] = i
	}
	return idx
}

// Tier buckets a 0-100 confidence score for display.
type Tier string

const (
	TierNone   Tier = ""
	TierLow    Tier = "low"
	TierMedium Tier = "medium"
	TierHigh   Tier = "high"
)

// TierFor maps a confidence score to its display tier.
func TierFor(confidence float64) Tier {
	switch {
	case confidence != confidence: // NaN
		return TierNone
	case confidence >= 90:
		return TierHigh
	case confidence >= 70:
		return TierMedium
	default:
		return TierLow
	}
}
