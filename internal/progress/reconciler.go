package progress

import (
	"math"
	"strings"

	"britta/internal/domain"
)

// StepState is one row of the step indicator.
type StepState struct {
	Key    string `json:"key"`
	Label  string `json:"label"`
	Status Status `json:"status"`
}

// Snapshot is the materialized view of one analysis run, safe to hand out
// while the reconciler keeps receiving events.
type Snapshot struct {
	Steps          []StepState    `json:"steps"`
	Progress       float64        `json:"progress"`
	Message        string         `json:"message"`
	Confidence     *float64       `json:"confidence,omitempty"`
	ConfidenceTier Tier           `json:"confidence_tier,omitempty"`
	Insights       []string       `json:"insights"`
	Log            []string       `json:"log"`
	Columns        map[string]int `json:"columns"`
	Done           bool           `json:"done"`
	Failed         bool           `json:"failed"`
	Error          string         `json:"error,omitempty"`
}

// Reconciler folds a time-ordered sequence of progress events into monotonic
// step state for one analysis run. Events may repeat steps or arrive out of
// canonical order; the step indicator only ever moves forward.
type Reconciler struct {
	headers []string
	steps   []StepState
	index   map[string]int
	visual  int
	done    bool
	failed  bool
	errMsg  string

	progress   float64
	message    string
	confidence *float64
	insights   []string
	log        []string
	columns    map[string]int
	details    *domain.ProgressDetails
	report     *domain.AnalysisResult
}

// NewReconciler starts a run. headers are the cached preview column headers
// used to resolve column-discovery events; nil is fine when no preview exists.
func NewReconciler(headers []string) *Reconciler {
	r := &Reconciler{}
	r.Reset(headers)
	return r
}

// Reset clears all run state, including the insight transcript, and installs
// a new header set for column matching.
func (r *Reconciler) Reset(headers []string) {
	steps := Steps()
	states := make([]StepState, len(steps))
	for i, s := range steps {
		states[i] = StepState{Key: s.Key, Label: s.Label, Status: StatusPending}
	}
	*r = Reconciler{
		headers:  headers,
		steps:    states,
		index:    stepIndex(),
		visual:   -1,
		insights: []string{},
		log:      []string{},
		columns:  map[string]int{},
	}
}

// Apply folds one event into the run state. Events after a terminal
// complete/error are ignored; the stream is finished at that point.
func (r *Reconciler) Apply(ev domain.ProgressEvent) {
	if r.done {
		return
	}

	// Zero means the field was absent from the event.
	if ev.Progress > 0 {
		r.progress = ev.Progress
	}
	if ev.Message != "" {
		r.message = ev.Message
	}
	if ev.Insight != "" {
		r.insights = append(r.insights, ev.Insight)
	}
	if ev.Confidence != nil && !math.IsNaN(*ev.Confidence) {
		c := *ev.Confidence
		r.confidence = &c
	}
	if ev.Details != nil {
		d := *ev.Details
		r.details = &d
		r.matchColumns(&d)
	}

	switch {
	case ev.Step == StepError:
		r.done = true
		r.failed = true
		r.errMsg = ev.Error
		if r.errMsg == "" {
			r.errMsg = ev.Message
		}
	case ev.Step == StepComplete:
		for i := range r.steps {
			r.steps[i].Status = StatusCompleted
		}
		r.visual = len(r.steps) - 1
		r.progress = 1
		r.done = true
		r.report = ev.Report
	default:
		idx, known := r.index[ev.Step]
		if !known {
			// Unknown steps become log lines without moving the indicator.
			line := ev.Message
			if line == "" {
				line = ev.Step
			}
			if line != "" {
				r.log = append(r.log, line)
			}
			return
		}
		if idx > r.visual {
			r.visual = idx
		}
		for i := range r.steps {
			switch {
			case i < r.visual:
				r.steps[i].Status = StatusCompleted
			case i == r.visual:
				r.steps[i].Status = StatusActive
			}
		}
	}
}

func (r *Reconciler) matchColumns(d *domain.ProgressDetails) {
	assign := func(role, header string) {
		if idx, ok := MatchColumn(r.headers, header); ok {
			r.columns[role] = idx
		}
	}
	assign("amount", d.AmountColumn)
	assign("date", d.DateColumn)
	assign("description", d.DescriptionColumn)
	assign("vat", d.VATColumn)
}

// MatchColumn resolves a column name reported by the analysis service against
// the preview headers. Matching is a trimmed, case-insensitive exact compare;
// a miss is not an error.
func MatchColumn(headers []string, name string) (int, bool) {
	want := strings.ToLower(strings.TrimSpace(name))
	if want == "" {
		return 0, false
	}
	for i, h := range headers {
		if strings.ToLower(strings.TrimSpace(h)) == want {
			return i, true
		}
	}
	return 0, false
}

// Snapshot returns a copy of the current run state.
func (r *Reconciler) Snapshot() Snapshot {
	steps := make([]StepState, len(r.steps))
	copy(steps, r.steps)
	insights := make([]string, len(r.insights))
	copy(insights, r.insights)
	log := make([]string, len(r.log))
	copy(log, r.log)
	columns := make(map[string]int, len(r.columns))
	for k, v := range r.columns {
		columns[k] = v
	}
	var confidence *float64
	tier := TierNone
	if r.confidence != nil {
		c := *r.confidence
		confidence = &c
		tier = TierFor(c)
	}
	return Snapshot{
		Steps:          steps,
		Progress:       r.progress,
		Message:        r.message,
		Confidence:     confidence,
		ConfidenceTier: tier,
		Insights:       insights,
		Log:            log,
		Columns:        columns,
		Done:           r.done,
		Failed:         r.failed,
		Error:          r.errMsg,
	}
}

// Done reports whether a terminal event has been applied.
func (r *Reconciler) Done() bool { return r.done }

// Failed reports whether the run ended with an error event.
func (r *Reconciler) Failed() bool { return r.failed }

// Err returns the message of the terminal error event, if any.
func (r *Reconciler) Err() string { return r.errMsg }

// Report returns the payload carried by the complete event, or nil.
func (r *Reconciler) Report() *domain.AnalysisResult { return r.report }

// Details returns the last column-discovery payload, or nil.
func (r *Reconciler) Details() *domain.ProgressDetails { return r.details }
