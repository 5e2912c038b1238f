package domain

// FileType represents the allowed spreadsheet file types for analysis.
type FileType string

const (
	FileTypeXLSX FileType = "xlsx"
	FileTypeXLS  FileType = "xls"
	FileTypeCSV  FileType = "csv"
)

// AllowedFileTypes maps FileType to its MIME content type.
var AllowedFileTypes = map[FileType]string{
	FileTypeXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	FileTypeXLS:  "application/vnd.ms-excel",
	FileTypeCSV:  "text/csv",
}

// AllowedContentTypes maps MIME content types back to FileType.
var AllowedContentTypes = map[string]FileType{
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": FileTypeXLSX,
	"application/vnd.ms-excel":                                          FileTypeXLS,
	"text/csv":                                                          FileTypeCSV,
}

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"xlsx": FileTypeXLSX,
	"xls":  FileTypeXLS,
	"csv":  FileTypeCSV,
}

// MessageRole identifies the author side of a chat message.
type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

// PanelState is the workspace panel's visible mode. Exactly one is live
// at a time; ClosePanel always returns to PanelClosed.
type PanelState string

const (
	PanelClosed       PanelState = "closed"
	PanelExcelPreview PanelState = "excel-preview"
	PanelAnalyzing    PanelState = "analyzing"
	PanelVATReport    PanelState = "vat-report"
	PanelError        PanelState = "error"
)

// TransactionKind is the derived sale/cost classification of a transaction.
type TransactionKind string

const (
	KindSale TransactionKind = "sale"
	KindCost TransactionKind = "cost"
)

// AuditStatus tracks the lifecycle of an analysis run in the audit log.
type AuditStatus string

const (
	AuditStarted   AuditStatus = "started"
	AuditCompleted AuditStatus = "completed"
	AuditFailed    AuditStatus = "failed"
)
