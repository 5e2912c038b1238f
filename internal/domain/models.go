package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Transaction is one normalized row from the analysis service. The fields
// are untrusted input: any of them may be missing or inconsistent.
type Transaction struct {
	Amount      float64 `json:"amount"`
	NetAmount   float64 `json:"net_amount"`
	VATAmount   float64 `json:"vat_amount"`
	VATRate     float64 `json:"vat_rate"`
	Type        string  `json:"type,omitempty"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category,omitempty"`
	Date        string  `json:"date,omitempty"`
}

// IsCost classifies a transaction as a cost when it is tagged as one OR
// its gross amount is negative. The OR is deliberate: upstream data often
// carries a wrong or absent Type, and the sign is the tiebreaker. A row
// tagged "sale" with a negative net but positive gross is still a sale.
func (t Transaction) IsCost() bool {
	return t.Type == string(KindCost) || t.Amount < 0
}

// Kind returns the derived sale/cost classification.
func (t Transaction) Kind() TransactionKind {
	if t.IsCost() {
		return KindCost
	}
	return KindSale
}

// VATBucket accumulates transactions sharing a VAT rate within one
// sale/cost partition. Costs are accumulated as absolute values.
type VATBucket struct {
	Rate  float64 `json:"rate"`
	Net   float64 `json:"net"`
	VAT   float64 `json:"vat"`
	Gross float64 `json:"gross"`
	Count int     `json:"count"`
}

// LineItem is one named sales or cost line of the VAT report, derived
// from a populated bucket and the fixed BAS account table.
type LineItem struct {
	Rate             float64 `json:"rate"`
	NetAmount        float64 `json:"net_amount"`
	VATAmount        float64 `json:"vat_amount"`
	GrossAmount      float64 `json:"gross_amount"`
	TransactionCount int     `json:"transaction_count"`
	BASAccount       string  `json:"bas_account"`
	Description      string  `json:"description"`
}

// JournalLine is one verifikation line. Per report the journal balances:
// sum of debits equals sum of credits within 0.01.
type JournalLine struct {
	Account string  `json:"account"`
	Name    string  `json:"name"`
	Debit   float64 `json:"debit"`
	Credit  float64 `json:"credit"`
}

// VATTotals carries the declared VAT position. Net is outgoing minus
// incoming; exactly one of ToPay/ToRefund is nonzero.
type VATTotals struct {
	Outgoing25 float64 `json:"outgoing_25"`
	Outgoing12 float64 `json:"outgoing_12"`
	Outgoing6  float64 `json:"outgoing_6"`
	Incoming   float64 `json:"incoming"`
	Net        float64 `json:"net"`
	ToPay      float64 `json:"to_pay"`
	ToRefund   float64 `json:"to_refund"`
}

// ReportTotals is the headline income/cost/result block.
type ReportTotals struct {
	TotalIncome float64 `json:"total_income"`
	TotalCosts  float64 `json:"total_costs"`
	Result      float64 `json:"result"`
}

// ReportCompany identifies the company a report was produced for.
type ReportCompany struct {
	Name      string `json:"name"`
	OrgNumber string `json:"org_number,omitempty"`
}

// ReportValidation is the outcome of running the report rule set.
type ReportValidation struct {
	IsValid  bool     `json:"is_valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// CategoryAmount is one row of the top-costs/top-revenues breakdown.
type CategoryAmount struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
	Count  int     `json:"count"`
}

// AnalysisSummary is the display-oriented statistics block shown next to
// the report: counts plus the top four cost and revenue groups.
type AnalysisSummary struct {
	TotalTransactions int              `json:"total_transactions"`
	CostCount         int              `json:"cost_count"`
	RevenueCount      int              `json:"revenue_count"`
	ZeroVATCount      int              `json:"zero_vat_count"`
	ZeroVATAmount     float64          `json:"zero_vat_amount"`
	TopCosts          []CategoryAmount `json:"top_costs"`
	TopRevenues       []CategoryAmount `json:"top_revenues"`
}

// VATReport is the full report payload, both rendered to clients and
// embedded in the assistant message metadata for later redisplay.
type VATReport struct {
	Type            string           `json:"type"`
	Period          string           `json:"period"`
	Company         ReportCompany    `json:"company"`
	Summary         ReportTotals     `json:"summary"`
	Sales           []LineItem       `json:"sales"`
	Costs           []LineItem       `json:"costs"`
	VAT             VATTotals        `json:"vat"`
	JournalEntries  []JournalLine    `json:"journal_entries"`
	Validation      ReportValidation `json:"validation"`
	AnalysisSummary *AnalysisSummary `json:"analysis_summary,omitempty"`
}

// ReportType is the metadata type marker for persisted VAT reports.
const ReportType = "vat_report"

// ReportMetadata is the assistant message metadata envelope carrying a
// persisted report. Type is always ReportType.
type ReportMetadata struct {
	Type     string     `json:"type"`
	FileName string     `json:"file_name,omitempty"`
	Period   string     `json:"period,omitempty"`
	Report   *VATReport `json:"report"`
}

// ProgressDetails carries step-specific extras; today only the column
// discoveries emitted with the mapping step.
type ProgressDetails struct {
	AmountColumn      string `json:"amount_column,omitempty"`
	DateColumn        string `json:"date_column,omitempty"`
	DescriptionColumn string `json:"description_column,omitempty"`
	VATColumn         string `json:"vat_column,omitempty"`
}

// AnalysisData is the payload of a terminal complete event: the raw
// transaction set plus whatever the service pre-computed.
type AnalysisData struct {
	Transactions []Transaction    `json:"transactions"`
	Period       string           `json:"period,omitempty"`
	Company      *ReportCompany   `json:"company,omitempty"`
	Report       *VATReport       `json:"report,omitempty"`
	Summary      *AnalysisSummary `json:"summary,omitempty"`
}

// AnalysisResult wraps AnalysisData the way the stream emits it.
type AnalysisResult struct {
	Data AnalysisData `json:"data"`
}

// ProgressEvent is one event of the analysis stream. Confidence is a
// pointer so an absent gauge is distinguishable from zero.
type ProgressEvent struct {
	Step       string           `json:"step"`
	Message    string           `json:"message,omitempty"`
	Progress   float64          `json:"progress"`
	Details    *ProgressDetails `json:"details,omitempty"`
	Report     *AnalysisResult  `json:"report,omitempty"`
	Error      string           `json:"error,omitempty"`
	Insight    string           `json:"insight,omitempty"`
	Confidence *float64         `json:"confidence,omitempty"`
}

// Sheet is one worksheet as a 2-D row view; the first row holds headers.
type Sheet struct {
	Name string     `json:"name"`
	Rows [][]string `json:"rows"`
}

// Workbook is the parsed spreadsheet structure.
type Workbook struct {
	Sheets []Sheet `json:"sheets"`
}

// WorkbookPreview is the trimmed view shown in the excel-preview panel.
type WorkbookPreview struct {
	FileName     string     `json:"file_name"`
	SheetNames   []string   `json:"sheet_names"`
	Sheet        string     `json:"sheet"`
	Headers      []string   `json:"headers"`
	Rows         [][]string `json:"rows"`
	TotalRows    int        `json:"total_rows"`
	TotalColumns int        `json:"total_columns"`
}

// User is an authenticated account.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FullName     string    `db:"full_name" json:"full_name"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Company is one bookkeeping entity owned by a user. OrgNumber is the
// 10-digit Swedish organisationsnummer; VATNumber the SE-prefixed
// momsregistreringsnummer.
type Company struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Name      string    `db:"name" json:"name"`
	OrgNumber string    `db:"org_number" json:"org_number"`
	VATNumber string    `db:"vat_number" json:"vat_number"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Conversation groups messages for one user and company.
type Conversation struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	CompanyID uuid.UUID `db:"company_id" json:"company_id"`
	Title     string    `db:"title" json:"title"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Message is one append-only chat record. Completed analyses store the
// full VAT report in Metadata for redisplay.
type Message struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	ConversationID uuid.UUID       `db:"conversation_id" json:"conversation_id"`
	Role           MessageRole     `db:"role" json:"role"`
	Content        string          `db:"content" json:"content"`
	Metadata       json.RawMessage `db:"metadata" json:"metadata,omitempty"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}

// Upload is the archive record of a submitted spreadsheet. Rows exist
// only when the best-effort storage upload succeeded.
type Upload struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	CompanyID      uuid.UUID  `db:"company_id" json:"company_id"`
	ConversationID *uuid.UUID `db:"conversation_id" json:"conversation_id"`
	FileName       string     `db:"file_name" json:"file_name"`
	FileType       FileType   `db:"file_type" json:"file_type"`
	FileSize       int64      `db:"file_size" json:"file_size"`
	Bucket         string     `db:"bucket" json:"bucket"`
	ObjectKey      string     `db:"object_key" json:"object_key"`
	ContentType    string     `db:"content_type" json:"content_type"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

// ReportSummary is one row per completed analysis, upserted on persist,
// powering report listings and company statistics without unpacking
// message metadata.
type ReportSummary struct {
	ID               uuid.UUID `db:"id" json:"id"`
	CompanyID        uuid.UUID `db:"company_id" json:"company_id"`
	ConversationID   uuid.UUID `db:"conversation_id" json:"conversation_id"`
	MessageID        uuid.UUID `db:"message_id" json:"message_id"`
	Period           string    `db:"period" json:"period"`
	TotalIncome      float64   `db:"total_income" json:"total_income"`
	TotalCosts       float64   `db:"total_costs" json:"total_costs"`
	Result           float64   `db:"result" json:"result"`
	VATToPay         float64   `db:"vat_to_pay" json:"vat_to_pay"`
	VATToRefund      float64   `db:"vat_to_refund" json:"vat_to_refund"`
	TransactionCount int       `db:"transaction_count" json:"transaction_count"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// AnalysisAudit is one row of the analysis audit trail.
type AnalysisAudit struct {
	ID             uuid.UUID   `db:"id" json:"id"`
	CompanyID      uuid.UUID   `db:"company_id" json:"company_id"`
	UserID         uuid.UUID   `db:"user_id" json:"user_id"`
	ConversationID *uuid.UUID  `db:"conversation_id" json:"conversation_id"`
	FileName       string      `db:"file_name" json:"file_name"`
	Provider       string      `db:"provider" json:"provider"`
	Status         AuditStatus `db:"status" json:"status"`
	Detail         string      `db:"detail" json:"detail"`
	DurationMS     int64       `db:"duration_ms" json:"duration_ms"`
	CreatedAt      time.Time   `db:"created_at" json:"created_at"`
}

// CompanyStats aggregates the stored report summaries for one company.
type CompanyStats struct {
	ReportCount      int     `db:"report_count" json:"report_count"`
	TotalIncome      float64 `db:"total_income" json:"total_income"`
	TotalCosts       float64 `db:"total_costs" json:"total_costs"`
	TotalResult      float64 `db:"total_result" json:"total_result"`
	VATToPay         float64 `db:"vat_to_pay" json:"vat_to_pay"`
	VATToRefund      float64 `db:"vat_to_refund" json:"vat_to_refund"`
	TransactionCount int     `db:"transaction_count" json:"transaction_count"`
}
