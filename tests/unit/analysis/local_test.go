package analysis_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"britta/internal/analysis/local"
	"britta/internal/domain"
	"britta/internal/port"
	"britta/internal/progress"
)

const novemberCSV = `amount;subAmount;vat;vatRate;transactionName;type;date
1250;1000;250;25;Privatladdning november;sale;2025-11-05
300;300;0;0;Roaming Tyskland;sale;2025-11-12
-100;-80;-20;25;Plattformsavgift;cost;2025-11-30
`

func localInput(name string, data []byte) port.StreamInput {
	return port.StreamInput{
		FileName: name,
		Data:     data,
		Company:  domain.ReportCompany{Name: "Laddel AB", OrgNumber: "556036-0793"},
		Period:   "2025-11",
	}
}

func collectEvents(t *testing.T, input port.StreamInput) []domain.ProgressEvent {
	t.Helper()
	var events []domain.ProgressEvent
	err := local.NewStreamer().Stream(context.Background(), input, func(ev domain.ProgressEvent) {
		events = append(events, ev)
	})
	require.NoError(t, err)
	require.NotEmpty(t, events)
	return events
}

func TestLocalStreamer_FullRun(t *testing.T) {
	events := collectEvents(t, localInput("november.csv", []byte(novemberCSV)))

	steps := make([]string, len(events))
	for i, ev := range events {
		steps[i] = ev.Step
	}
	assert.Equal(t, []string{
		progress.StepParsing,
		progress.StepAnalyzing,
		progress.StepDetecting,
		progress.StepCategorizing,
		progress.StepMapping,
		progress.StepNormalizing,
		progress.StepCalculating,
		progress.StepComplete,
	}, steps)

	detecting := events[2]
	assert.Equal(t, "3 transaktioner hittade", detecting.Message)
	assert.Equal(t, "2 försäljningar och 1 kostnader", detecting.Insight)

	mapping := events[4]
	require.NotNil(t, mapping.Details)
	assert.Equal(t, "amount", mapping.Details.AmountColumn)
	assert.Equal(t, "transactionName", mapping.Details.DescriptionColumn)
	assert.Equal(t, "vat", mapping.Details.VATColumn)
	assert.Equal(t, "date", mapping.Details.DateColumn)

	calculating := events[6]
	require.NotNil(t, calculating.Confidence)
	assert.Equal(t, 100.0, *calculating.Confidence)

	complete := events[len(events)-1]
	require.NotNil(t, complete.Report)
	require.Len(t, complete.Report.Data.Transactions, 3)

	rep := complete.Report.Data.Report
	require.NotNil(t, rep)
	assert.Equal(t, "2025-11", rep.Period)
	assert.Equal(t, "Laddel AB", rep.Company.Name)
	assert.Equal(t, 250.0, rep.VAT.Outgoing25)
	assert.Equal(t, 20.0, rep.VAT.Incoming)
	assert.Equal(t, 230.0, rep.VAT.ToPay)
	assert.Equal(t, 1300.0, rep.Summary.TotalIncome)
	assert.Equal(t, 80.0, rep.Summary.TotalCosts)
	assert.True(t, rep.Validation.IsValid)
}

func TestLocalStreamer_ConfidenceReflectsSkippedRows(t *testing.T) {
	csv := "amount;subAmount;vat;vatRate;transactionName\n" +
		"1250;1000;250;25;Laddning\n" +
		";;;;\n" + // blank amount, skipped
		"trasig;;;25;Okänd\n" + // unparseable amount, skipped
		"300;300;0;0;Roaming\n"

	events := collectEvents(t, localInput("nov.csv", []byte(csv)))

	var confidence *float64
	for _, ev := range events {
		if ev.Step == progress.StepCalculating {
			confidence = ev.Confidence
		}
	}
	require.NotNil(t, confidence)
	assert.Equal(t, 50.0, *confidence)
}

func TestLocalStreamer_MissingColumns(t *testing.T) {
	csv := "belopp;moms\n100;25\n"

	events := collectEvents(t, localInput("nov.csv", []byte(csv)))

	last := events[len(events)-1]
	assert.Equal(t, progress.StepError, last.Step)
	assert.Contains(t, last.Error, "missing columns")
}

func TestLocalStreamer_NoDataRows(t *testing.T) {
	csv := "amount;subAmount;vat;vatRate;transactionName\n"

	events := collectEvents(t, localInput("nov.csv", []byte(csv)))

	last := events[len(events)-1]
	assert.Equal(t, progress.StepError, last.Step)
	assert.Equal(t, "Filen innehåller inga datarader", last.Error)
}

func TestLocalStreamer_UnreadableFile(t *testing.T) {
	events := collectEvents(t, localInput("nov.xlsx", []byte("definitely not a workbook")))

	last := events[len(events)-1]
	assert.Equal(t, progress.StepError, last.Step)
	assert.Contains(t, last.Error, "Kunde inte läsa filen")
}

func TestLocalStreamer_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var events []domain.ProgressEvent
	err := local.NewStreamer().Stream(ctx, localInput("nov.csv", []byte(novemberCSV)), func(ev domain.ProgressEvent) {
		events = append(events, ev)
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, events)
}

func TestLocalStreamer_Name(t *testing.T) {
	assert.Equal(t, "local", local.NewStreamer().Name())
}
