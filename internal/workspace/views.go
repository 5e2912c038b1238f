package workspace

import (
	"britta/internal/domain"
	"britta/internal/progress"
)

// view is one mountable panel sub-view. The panel guarantees at most one
// view is mounted at a time; Unmount always runs before the next Mount.
type view interface {
	Name() string
	Mount()
	Unmount()
}

type previewView struct {
	preview *domain.WorkbookPreview
	mounted bool
}

func (v *previewView) Name() string { return "excel-preview" }
func (v *previewView) Mount()       { v.mounted = true }
func (v *previewView) Unmount()     { v.mounted = false }

type analyzingView struct {
	fileName string
	rec      *progress.Reconciler
	mounted  bool
}

func (v *analyzingView) Name() string { return "analyzing" }
func (v *analyzingView) Mount()       { v.mounted = true }
func (v *analyzingView) Unmount()     { v.mounted = false }

type reportView struct {
	report  *domain.VATReport
	mounted bool
}

func (v *reportView) Name() string { return "vat-report" }
func (v *reportView) Mount()       { v.mounted = true }
func (v *reportView) Unmount()     { v.mounted = false }

type errorView struct {
	message string
	mounted bool
}

func (v *errorView) Name() string { return "error" }
func (v *errorView) Mount()       { v.mounted = true }
func (v *errorView) Unmount()     { v.mounted = false }
