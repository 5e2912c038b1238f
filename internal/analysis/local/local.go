package local

import (
	"context"
	"fmt"

	"britta/internal/analysis"
	"britta/internal/config"
	"britta/internal/domain"
	"britta/internal/excel"
	"britta/internal/port"
	"britta/internal/progress"
	"britta/internal/validator"
	"britta/internal/vat"
)

func init() {
	analysis.RegisterProvider("local", func(cfg *config.AnalysisProviderConfig) (port.AnalysisStreamer, error) {
		return NewStreamer(), nil
	})
}

// Streamer runs the whole analysis in-process with the rule-based pipeline.
// It is the last-resort provider: data problems terminate the run with an
// error event instead of cascading, because there is no smarter backend
// behind it.
type Streamer struct {
	parser port.WorkbookParser
	engine *validator.Engine
}

// NewStreamer creates the in-process analysis pipeline.
func NewStreamer() *Streamer {
	return &Streamer{
		parser: excel.NewParser(),
		engine: validator.NewEngine(),
	}
}

func (s *Streamer) Name() string { return "local" }

func (s *Streamer) Stream(ctx context.Context, input port.StreamInput, emit func(domain.ProgressEvent)) error {
	fail := func(message string) {
		emit(domain.ProgressEvent{Step: progress.StepError, Error: message})
	}
	step := func(key, message string, fraction float64) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		emit(domain.ProgressEvent{Step: key, Message: message, Progress: fraction})
		return nil
	}

	if err := step(progress.StepParsing, fmt.Sprintf("Läser %s", input.FileName), 0.1); err != nil {
		return err
	}
	wb, err := s.parser.Parse(input.FileName, input.Data)
	if err != nil {
		fail(fmt.Sprintf("Kunde inte läsa filen: %v", err))
		return nil
	}

	sheet, ok := firstDataSheet(wb)
	if !ok {
		fail("Filen innehåller inga datarader")
		return nil
	}
	if err := step(progress.StepAnalyzing, fmt.Sprintf("Analyserar %s", sheet.Name), 0.2); err != nil {
		return err
	}

	txs, err := excel.Normalize(sheet)
	if err != nil {
		fail(err.Error())
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	var saleCount, costCount int
	for i := range txs {
		if txs[i].IsCost() {
			costCount++
		} else {
			saleCount++
		}
	}
	emit(domain.ProgressEvent{
		Step:     progress.StepDetecting,
		Message:  fmt.Sprintf("%d transaktioner hittade", len(txs)),
		Progress: 0.35,
		Insight:  fmt.Sprintf("%d försäljningar och %d kostnader", saleCount, costCount),
	})

	if err := step(progress.StepCategorizing, "Kategoriserar poster", 0.5); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	emit(domain.ProgressEvent{
		Step:     progress.StepMapping,
		Message:  "Mappar kolumner",
		Progress: 0.6,
		Details:  columnDetails(sheet.Rows[0]),
	})

	if err := step(progress.StepNormalizing, "Normaliserar belopp", 0.75); err != nil {
		return err
	}

	rep := vat.Aggregate(txs, vat.Options{Period: input.Period, Company: input.Company})
	rep.Validation = s.engine.ValidateReport(rep)

	// Confidence reflects how much of the sheet survived normalization.
	dataRows := len(sheet.Rows) - 1
	confidence := 100.0
	if dataRows > 0 {
		confidence = 100 * float64(len(txs)) / float64(dataRows)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	emit(domain.ProgressEvent{
		Step:       progress.StepCalculating,
		Message:    "Beräknar moms",
		Progress:   0.9,
		Confidence: &confidence,
	})

	result := &domain.AnalysisResult{
		Data: domain.AnalysisData{
			Transactions: txs,
			Period:       input.Period,
			Company:      &input.Company,
			Report:       rep,
			Summary:      rep.AnalysisSummary,
		},
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	emit(domain.ProgressEvent{
		Step:     progress.StepComplete,
		Message:  "Klar",
		Progress: 1,
		Report:   result,
	})
	return nil
}

// firstDataSheet returns the first sheet with at least a header row and one
// data row.
func firstDataSheet(wb *domain.Workbook) (domain.Sheet, bool) {
	for _, sheet := range wb.Sheets {
		if len(sheet.Rows) >= 2 {
			return sheet, true
		}
	}
	return domain.Sheet{}, false
}

// columnDetails reports the source header spellings for the columns the
// pipeline used, so the preview can highlight them.
func columnDetails(headers []string) *domain.ProgressDetails {
	find := func(names ...string) string {
		for _, want := range names {
			if idx, ok := progress.MatchColumn(headers, want); ok {
				return headers[idx]
			}
		}
		return ""
	}
	return &domain.ProgressDetails{
		AmountColumn:      find("amount"),
		DateColumn:        find("date", "transactiondate"),
		DescriptionColumn: find("transactionname"),
		VATColumn:         find("vat"),
	}
}
