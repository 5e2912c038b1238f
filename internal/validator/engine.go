package validator

import (
	"britta/internal/domain"
	"britta/internal/validator/vatreport"
)

// Engine runs the built-in report checks in a fixed order.
type Engine struct {
	rules []Rule
}

// NewEngine creates a validation engine with the standard rule set.
func NewEngine() *Engine {
	builtin := vatreport.Rules()
	rules := make([]Rule, 0, len(builtin))
	for _, r := range builtin {
		rules = append(rules, r)
	}
	return &Engine{rules: rules}
}

// ValidateReport checks a finished report and returns the validation block
// that is embedded in it. IsValid is false only when at least one rule
// reports an error; warnings alone leave the report valid.
func (e *Engine) ValidateReport(rep *domain.VATReport) domain.ReportValidation {
	validation := domain.ReportValidation{
		IsValid:  true,
		Errors:   []string{},
		Warnings: []string{},
	}
	for _, rule := range e.rules {
		for _, f := range rule.Validate(rep) {
			switch f.Severity {
			case vatreport.SeverityError:
				validation.IsValid = false
				validation.Errors = append(validation.Errors, f.Message)
			default:
				validation.Warnings = append(validation.Warnings, f.Message)
			}
		}
	}
	return validation
}
