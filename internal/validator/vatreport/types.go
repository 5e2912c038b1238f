package vatreport

import (
	"fmt"
	"math"
)

// Severity classifies a finding. Errors make the report invalid;
// warnings are surfaced but do not.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding is a single validation outcome for a report.
type Finding struct {
	Rule     string
	Severity Severity
	Message  string
}

// balanceTolerance is the accepted floating-point drift for journal
// balance and totals identities.
const balanceTolerance = 0.01

// vatTolerance is the accepted drift when re-deriving VAT from net and
// rate; figures arrive rounded per transaction so a wider margin applies.
const vatTolerance = 0.02

func approxEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}

func errf(rule, format string, args ...any) Finding {
	return Finding{Rule: rule, Severity: SeverityError, Message: fmt.Sprintf(format, args...)}
}

func warnf(rule, format string, args ...any) Finding {
	return Finding{Rule: rule, Severity: SeverityWarning, Message: fmt.Sprintf(format, args...)}
}
