package progress_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"britta/internal/domain"
	"britta/internal/progress"
)

func statuses(snap progress.Snapshot) []progress.Status {
	out := make([]progress.Status, len(snap.Steps))
	for i, s := range snap.Steps {
		out[i] = s.Status
	}
	return out
}

func TestReconciler_OrderedRun(t *testing.T) {
	r := progress.NewReconciler(nil)

	sequence := []string{
		progress.StepParsing,
		progress.StepAnalyzing,
		progress.StepDetecting,
		progress.StepCategorizing,
		progress.StepMapping,
		progress.StepNormalizing,
		progress.StepCalculating,
	}
	for i, step := range sequence {
		r.Apply(domain.ProgressEvent{Step: step, Progress: float64(i+1) / 10})
	}

	snap := r.Snapshot()
	assert.False(t, snap.Done)
	assert.Equal(t, 0.7, snap.Progress)

	got := statuses(snap)
	for i := 0; i < 6; i++ {
		assert.Equal(t, progress.StatusCompleted, got[i], "step %d", i)
	}
	assert.Equal(t, progress.StatusActive, got[6])
	assert.Equal(t, progress.StatusPending, got[7])

	result := &domain.AnalysisResult{}
	r.Apply(domain.ProgressEvent{Step: progress.StepComplete, Report: result})

	snap = r.Snapshot()
	assert.True(t, snap.Done)
	assert.False(t, snap.Failed)
	assert.Equal(t, 1.0, snap.Progress)
	for i, s := range statuses(snap) {
		assert.Equal(t, progress.StatusCompleted, s, "step %d", i)
	}
	assert.Same(t, result, r.Report())
}

func TestReconciler_IndicatorNeverMovesBackwards(t *testing.T) {
	r := progress.NewReconciler(nil)

	r.Apply(domain.ProgressEvent{Step: progress.StepCalculating})
	r.Apply(domain.ProgressEvent{Step: progress.StepParsing})

	got := statuses(r.Snapshot())
	for i := 0; i < 6; i++ {
		assert.Equal(t, progress.StatusCompleted, got[i], "step %d", i)
	}
	assert.Equal(t, progress.StatusActive, got[6])
}

func TestReconciler_SkippedStepsBackfilled(t *testing.T) {
	r := progress.NewReconciler(nil)

	r.Apply(domain.ProgressEvent{Step: progress.StepParsing})
	r.Apply(domain.ProgressEvent{Step: progress.StepNormalizing})

	got := statuses(r.Snapshot())
	for i := 0; i < 5; i++ {
		assert.Equal(t, progress.StatusCompleted, got[i], "step %d", i)
	}
	assert.Equal(t, progress.StatusActive, got[5])
}

func TestReconciler_RepeatedStepIsStable(t *testing.T) {
	r := progress.NewReconciler(nil)

	r.Apply(domain.ProgressEvent{Step: progress.StepAnalyzing, Message: "först"})
	r.Apply(domain.ProgressEvent{Step: progress.StepAnalyzing, Message: "igen"})

	snap := r.Snapshot()
	assert.Equal(t, progress.StatusActive, snap.Steps[1].Status)
	assert.Equal(t, "igen", snap.Message)
}

func TestReconciler_TerminalErrorLatches(t *testing.T) {
	r := progress.NewReconciler(nil)

	r.Apply(domain.ProgressEvent{Step: progress.StepParsing})
	r.Apply(domain.ProgressEvent{Step: progress.StepError, Error: "Filen saknar kolumner"})

	assert.True(t, r.Done())
	assert.True(t, r.Failed())
	assert.Equal(t, "Filen saknar kolumner", r.Err())

	// Nothing applied after a terminal event changes the run.
	r.Apply(domain.ProgressEvent{Step: progress.StepCalculating, Progress: 0.9})
	snap := r.Snapshot()
	assert.True(t, snap.Failed)
	assert.NotEqual(t, 0.9, snap.Progress)
}

func TestReconciler_ErrorFallsBackToMessage(t *testing.T) {
	r := progress.NewReconciler(nil)
	r.Apply(domain.ProgressEvent{Step: progress.StepError, Message: "Tom fil"})

	assert.Equal(t, "Tom fil", r.Err())
}

func TestReconciler_CompleteLatches(t *testing.T) {
	r := progress.NewReconciler(nil)
	r.Apply(domain.ProgressEvent{Step: progress.StepComplete})
	r.Apply(domain.ProgressEvent{Step: progress.StepError, Error: "för sent"})

	assert.True(t, r.Done())
	assert.False(t, r.Failed())
	assert.Empty(t, r.Err())
}

func TestReconciler_UnknownStepGoesToLog(t *testing.T) {
	r := progress.NewReconciler(nil)

	r.Apply(domain.ProgressEvent{Step: progress.StepAnalyzing})
	r.Apply(domain.ProgressEvent{Step: "warming-up", Message: "Förbereder motorn"})
	r.Apply(domain.ProgressEvent{Step: "no-message-step"})

	snap := r.Snapshot()
	assert.Equal(t, []string{"Förbereder motorn", "no-message-step"}, snap.Log)
	// The indicator stays where the last known step put it.
	assert.Equal(t, progress.StatusActive, snap.Steps[1].Status)
}

func TestReconciler_InsightsAppendInOrder(t *testing.T) {
	r := progress.NewReconciler(nil)

	r.Apply(domain.ProgressEvent{Step: progress.StepDetecting, Insight: "42 transaktioner"})
	r.Apply(domain.ProgressEvent{Step: progress.StepCategorizing})
	r.Apply(domain.ProgressEvent{Step: progress.StepCalculating, Insight: "Mest privatladdning"})

	assert.Equal(t, []string{"42 transaktioner", "Mest privatladdning"}, r.Snapshot().Insights)
}

func TestReconciler_ConfidenceTiers(t *testing.T) {
	r := progress.NewReconciler(nil)

	snap := r.Snapshot()
	assert.Nil(t, snap.Confidence)
	assert.Equal(t, progress.TierNone, snap.ConfidenceTier)

	c := 95.0
	r.Apply(domain.ProgressEvent{Step: progress.StepCalculating, Confidence: &c})
	snap = r.Snapshot()
	require.NotNil(t, snap.Confidence)
	assert.Equal(t, 95.0, *snap.Confidence)
	assert.Equal(t, progress.TierHigh, snap.ConfidenceTier)

	// NaN is ignored; the last sane gauge stays.
	nan := math.NaN()
	r.Apply(domain.ProgressEvent{Step: progress.StepCalculating, Confidence: &nan})
	snap = r.Snapshot()
	require.NotNil(t, snap.Confidence)
	assert.Equal(t, 95.0, *snap.Confidence)
}

func TestReconciler_ZeroFieldsDoNotClobber(t *testing.T) {
	r := progress.NewReconciler(nil)

	r.Apply(domain.ProgressEvent{Step: progress.StepAnalyzing, Message: "Analyserar", Progress: 0.4})
	r.Apply(domain.ProgressEvent{Step: progress.StepDetecting})

	snap := r.Snapshot()
	assert.Equal(t, 0.4, snap.Progress)
	assert.Equal(t, "Analyserar", snap.Message)
}

func TestReconciler_ColumnMatching(t *testing.T) {
	r := progress.NewReconciler([]string{" Amount ", "TransactionName", "VAT", "Date"})

	r.Apply(domain.ProgressEvent{
		Step: progress.StepMapping,
		Details: &domain.ProgressDetails{
			AmountColumn:      "amount",
			DescriptionColumn: "transactionname",
			VATColumn:         "vat",
			DateColumn:        "saknas",
		},
	})

	snap := r.Snapshot()
	assert.Equal(t, map[string]int{"amount": 0, "description": 1, "vat": 2}, snap.Columns)
	require.NotNil(t, r.Details())
	assert.Equal(t, "amount", r.Details().AmountColumn)
}

func TestReconciler_Reset(t *testing.T) {
	r := progress.NewReconciler([]string{"Amount"})

	r.Apply(domain.ProgressEvent{Step: progress.StepDetecting, Insight: "något"})
	r.Apply(domain.ProgressEvent{Step: progress.StepError, Error: "fel"})

	r.Reset([]string{"Belopp"})

	snap := r.Snapshot()
	assert.False(t, snap.Done)
	assert.False(t, snap.Failed)
	assert.Empty(t, snap.Insights)
	assert.Empty(t, snap.Error)
	for i, s := range statuses(snap) {
		assert.Equal(t, progress.StatusPending, s, "step %d", i)
	}
}

func TestReconciler_SnapshotIsACopy(t *testing.T) {
	r := progress.NewReconciler(nil)
	r.Apply(domain.ProgressEvent{Step: progress.StepParsing})

	before := r.Snapshot()
	r.Apply(domain.ProgressEvent{Step: progress.StepCalculating, Insight: "ny"})

	assert.Equal(t, progress.StatusActive, before.Steps[0].Status)
	assert.Empty(t, before.Insights)
}
