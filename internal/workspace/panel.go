package workspace

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"britta/internal/domain"
	"britta/internal/port"
	"britta/internal/progress"
)

// File is an in-memory spreadsheet attachment.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Hooks are callbacks the panel fires for other parts of the app. Any field
// may be nil.
type Hooks struct {
	PanelOpened    func(userID uuid.UUID, state domain.PanelState)
	PanelClosed    func(userID uuid.UUID)
	ReportReady    func(userID uuid.UUID, report *domain.VATReport)
	RetryRequested func(userID uuid.UUID, fileName string)
}

// PanelSnapshot is the readable workspace state for one user.
type PanelSnapshot struct {
	State    domain.PanelState        `json:"state"`
	FileName string                   `json:"file_name,omitempty"`
	Preview  *domain.WorkbookPreview  `json:"preview,omitempty"`
	Progress *progress.Snapshot       `json:"progress,omitempty"`
	Report   *domain.VATReport        `json:"report,omitempty"`
	Error    string                   `json:"error,omitempty"`
}

// Panel is the per-user workspace state machine. All mutating operations are
// explicit; rendering state is a projection of the fields the panel owns.
// At most one sub-view is mounted at any time.
type Panel struct {
	mu     sync.Mutex
	userID uuid.UUID
	parser port.WorkbookParser
	hooks  Hooks

	previewRows int
	state       domain.PanelState
	mounted     view
	generation  uint64
	lastActive  time.Time

	workbook *domain.Workbook
	preview  *domain.WorkbookPreview
	retained *File
}

// NewPanel creates a closed panel for one user.
func NewPanel(userID uuid.UUID, parser port.WorkbookParser, hooks Hooks, previewRows int) *Panel {
	if previewRows <= 0 {
		previewRows = 10
	}
	return &Panel{
		userID:      userID,
		parser:      parser,
		hooks:       hooks,
		previewRows: previewRows,
		state:       domain.PanelClosed,
		lastActive:  time.Now(),
	}
}

// OpenExcelArtifact parses the attached workbook and transitions to
// excel-preview with cached preview metadata.
func (p *Panel) OpenExcelArtifact(file File) (*domain.WorkbookPreview, error) {
	wb, err := p.parser.Parse(file.Name, file.Data)
	if err != nil {
		return nil, fmt.Errorf("parsing workbook: %w", err)
	}
	preview := buildPreview(wb, file.Name, p.previewRows)

	p.mu.Lock()
	wasClosed := p.state == domain.PanelClosed
	p.workbook = wb
	p.preview = preview
	f := file
	p.retained = &f
	p.mount(&previewView{preview: preview})
	p.state = domain.PanelExcelPreview
	p.touch()
	p.mu.Unlock()

	if wasClosed && p.hooks.PanelOpened != nil {
		p.hooks.PanelOpened(p.userID, domain.PanelExcelPreview)
	}
	return preview, nil
}

// ShowStreamingAnalysis transitions to analyzing, retains the file for retry,
// and starts a new run generation. Events from superseded runs are ignored.
func (p *Panel) ShowStreamingAnalysis(file File) uint64 {
	p.mu.Lock()
	wasClosed := p.state == domain.PanelClosed
	f := file
	p.retained = &f
	p.generation++
	gen := p.generation

	var headers []string
	if p.preview != nil {
		headers = p.preview.Headers
	}
	p.mount(&analyzingView{fileName: file.Name, rec: progress.NewReconciler(headers)})
	p.state = domain.PanelAnalyzing
	p.touch()
	p.mu.Unlock()

	if wasClosed && p.hooks.PanelOpened != nil {
		p.hooks.PanelOpened(p.userID, domain.PanelAnalyzing)
	}
	return gen
}

// ApplyProgress folds a stream event into the current run. Events carrying a
// stale generation, or arriving outside the analyzing state, are dropped.
func (p *Panel) ApplyProgress(gen uint64, ev domain.ProgressEvent) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.generation || p.state != domain.PanelAnalyzing {
		return false
	}
	av, ok := p.mounted.(*analyzingView)
	if !ok {
		return false
	}
	av.rec.Apply(ev)
	p.touch()
	return true
}

// CompleteRun transitions to vat-report if the run is still current.
func (p *Panel) CompleteRun(gen uint64, report *domain.VATReport) bool {
	p.mu.Lock()
	if gen != p.generation {
		p.mu.Unlock()
		return false
	}
	p.openReport(report)
	p.mu.Unlock()

	if p.hooks.ReportReady != nil {
		p.hooks.ReportReady(p.userID, report)
	}
	return true
}

// FailRun transitions to error if the run is still current. The retained
// file is kept so the user can retry without re-attaching.
func (p *Panel) FailRun(gen uint64, message string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.generation {
		return false
	}
	p.mount(&errorView{message: message})
	p.state = domain.PanelError
	p.touch()
	return true
}

// OpenVATReport renders a finished report, for example when re-displaying a
// previously persisted analysis.
func (p *Panel) OpenVATReport(report *domain.VATReport) {
	p.mu.Lock()
	wasClosed := p.state == domain.PanelClosed
	p.openReport(report)
	p.mu.Unlock()

	if wasClosed && p.hooks.PanelOpened != nil {
		p.hooks.PanelOpened(p.userID, domain.PanelVATReport)
	}
	if p.hooks.ReportReady != nil {
		p.hooks.ReportReady(p.userID, report)
	}
}

// ShowAnalysisError renders the retry affordance outside of a guarded run.
func (p *Panel) ShowAnalysisError(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mount(&errorView{message: message})
	p.state = domain.PanelError
	p.touch()
}

// ClosePanel tears down whatever is mounted and clears all cached state.
// Closing an already-closed panel is a no-op. Any in-flight run is
// invalidated by bumping the generation.
func (p *Panel) ClosePanel() {
	p.mu.Lock()
	wasOpen := p.state != domain.PanelClosed
	p.mount(nil)
	p.state = domain.PanelClosed
	p.workbook = nil
	p.preview = nil
	p.retained = nil
	p.generation++
	p.touch()
	p.mu.Unlock()

	if wasOpen && p.hooks.PanelClosed != nil {
		p.hooks.PanelClosed(p.userID)
	}
}

// RetryFile returns the retained attachment for a retry run. It fails with
// ErrNoRetainedFile when nothing was retained, for example after a restart.
func (p *Panel) RetryFile() (File, error) {
	p.mu.Lock()
	retained := p.retained
	p.mu.Unlock()

	if retained == nil {
		return File{}, domain.ErrNoRetainedFile
	}
	if p.hooks.RetryRequested != nil {
		p.hooks.RetryRequested(p.userID, retained.Name)
	}
	return *retained, nil
}

// State returns the current panel state.
func (p *Panel) State() domain.PanelState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Generation returns the current run generation.
func (p *Panel) Generation() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.generation
}

// MountedView returns the name of the mounted sub-view, or "" when closed.
func (p *Panel) MountedView() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.mounted == nil {
		return ""
	}
	return p.mounted.Name()
}

// LastActive returns the time of the last panel operation.
func (p *Panel) LastActive() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastActive
}

// Snapshot projects the panel into its readable state.
func (p *Panel) Snapshot() PanelSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	snap := PanelSnapshot{State: p.state}
	if p.retained != nil {
		snap.FileName = p.retained.Name
	}
	switch v := p.mounted.(type) {
	case *previewView:
		snap.Preview = v.preview
	case *analyzingView:
		s := v.rec.Snapshot()
		snap.Progress = &s
		snap.Preview = p.preview
	case *reportView:
		snap.Report = v.report
	case *errorView:
		snap.Error = v.message
	}
	return snap
}

// openReport mounts the report view. Caller holds p.mu.
func (p *Panel) openReport(report *domain.VATReport) {
	p.mount(&reportView{report: report})
	p.state = domain.PanelVATReport
	p.touch()
}

// mount swaps the active sub-view, always unmounting the previous one first.
// Caller holds p.mu.
func (p *Panel) mount(v view) {
	if p.mounted != nil {
		p.mounted.Unmount()
	}
	p.mounted = v
	if v != nil {
		v.Mount()
	}
}

func (p *Panel) touch() {
	p.lastActive = time.Now()
}

// buildPreview extracts the ready-to-analyze view of a workbook: sheet
// names plus the header row and the first rows of the first non-empty sheet.
func buildPreview(wb *domain.Workbook, fileName string, maxRows int) *domain.WorkbookPreview {
	preview := &domain.WorkbookPreview{
		FileName:   fileName,
		SheetNames: make([]string, 0, len(wb.Sheets)),
		Headers:    []string{},
		Rows:       [][]string{},
	}
	for _, sheet := range wb.Sheets {
		preview.SheetNames = append(preview.SheetNames, sheet.Name)
	}
	for _, sheet := range wb.Sheets {
		if len(sheet.Rows) == 0 {
			continue
		}
		preview.Sheet = sheet.Name
		preview.Headers = sheet.Rows[0]
		preview.TotalRows = len(sheet.Rows) - 1
		preview.TotalColumns = len(sheet.Rows[0])

		data := sheet.Rows[1:]
		if len(data) > maxRows {
			data = data[:maxRows]
		}
		preview.Rows = data
		break
	}
	return preview
}
