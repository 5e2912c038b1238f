package validator

import (
	"britta/internal/domain"
	"britta/internal/validator/vatreport"
)

// Rule is the interface for a single built-in report check.
type Rule interface {
	Key() string
	Validate(rep *domain.VATReport) []vatreport.Finding
}
