package analysis

import (
	"britta/internal/domain"
	"britta/internal/validator"
	"britta/internal/vat"
)

// EnsureComputed fills in whatever the analysis backend left out of a
// completed run. A backend that only returned raw transactions gets a full
// locally aggregated report; a backend that returned a finished report keeps
// it, with missing summary, journal and validation blocks derived locally.
// The returned report is also written back into result.Data.Report.
func EnsureComputed(result *domain.AnalysisResult, engine *validator.Engine, opts vat.Options) *domain.VATReport {
	if result == nil {
		result = &domain.AnalysisResult{}
	}

	rep := result.Data.Report
	if rep == nil {
		rep = vat.Aggregate(result.Data.Transactions, opts)
	} else {
		if rep.Type == "" {
			rep.Type = domain.ReportType
		}
		if rep.Period == "" {
			rep.Period = opts.Period
		}
		if rep.Company.Name == "" && rep.Company.OrgNumber == "" {
			rep.Company = opts.Company
		}
		if len(rep.JournalEntries) == 0 {
			rep.JournalEntries = vat.Journal(rep.Sales, rep.Costs)
		}
		if rep.AnalysisSummary == nil {
			if result.Data.Summary != nil {
				rep.AnalysisSummary = result.Data.Summary
			} else if len(result.Data.Transactions) > 0 {
				rep.AnalysisSummary = vat.Summarize(result.Data.Transactions)
			}
		}
	}

	// An untouched validation block has nil slices; a backend that validated
	// sends at least empty arrays.
	if rep.Validation.Errors == nil && rep.Validation.Warnings == nil {
		rep.Validation = engine.ValidateReport(rep)
	}

	result.Data.Report = rep
	return rep
}
