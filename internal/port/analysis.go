package port

import (
	"context"

	"britta/internal/domain"
)

// StreamInput carries one spreadsheet analysis request.
type StreamInput struct {
	FileName string
	Data     []byte
	Company  domain.ReportCompany
	Period   string
}

// AnalysisStreamer abstracts a VAT analysis backend. Stream invokes emit for
// every progress event in arrival order and returns once the stream ends;
// the terminal complete/error event travels through emit like any other.
// A non-nil error means the stream itself broke before a terminal event.
type AnalysisStreamer interface {
	Stream(ctx context.Context, input StreamInput, emit func(domain.ProgressEvent)) error
	Name() string
}
