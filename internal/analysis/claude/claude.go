package claude

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"britta/internal/analysis"
	"britta/internal/config"
	"britta/internal/domain"
	"britta/internal/excel"
	"britta/internal/port"
	"britta/internal/progress"
	"britta/internal/validator"
	"britta/internal/vat"
)

const (
	apiURL     = "https://api.anthropic.com/v1/messages"
	apiVersion = "2023-06-01"

	// maxPromptRows bounds how much of the sheet goes into the prompt.
	maxPromptRows = 200
)

func init() {
	analysis.RegisterProvider("claude", func(cfg *config.AnalysisProviderConfig) (port.AnalysisStreamer, error) {
		return NewStreamer(cfg), nil
	})
}

// Streamer implements port.AnalysisStreamer using the Anthropic Messages API
// to classify transactions, with aggregation and validation done locally.
// The Messages call runs before any event is emitted, so an unreachable or
// rate-limited API cascades cleanly to the next provider.
type Streamer struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
	parser   port.WorkbookParser
	engine   *validator.Engine
}

// NewStreamer creates a Claude-backed analysis streamer from a provider config.
func NewStreamer(cfg *config.AnalysisProviderConfig) *Streamer {
	return newStreamer(cfg, apiURL)
}

// NewStreamerWithEndpoint creates a streamer pointing at a custom API endpoint (for testing).
func NewStreamerWithEndpoint(cfg *config.AnalysisProviderConfig, endpoint string) *Streamer {
	return newStreamer(cfg, endpoint)
}

func newStreamer(cfg *config.AnalysisProviderConfig, endpoint string) *Streamer {
	model := cfg.Model
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Streamer{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		parser:   excel.NewParser(),
		engine:   validator.NewEngine(),
	}
}

func (s *Streamer) Name() string { return "claude" }

func (s *Streamer) Stream(ctx context.Context, input port.StreamInput, emit func(domain.ProgressEvent)) error {
	wb, err := s.parser.Parse(input.FileName, input.Data)
	if err != nil {
		return fmt.Errorf("parsing workbook: %w", err)
	}
	sheetText, err := renderSheet(wb)
	if err != nil {
		return err
	}

	extracted, err := s.extract(ctx, sheetText, input.Period)
	if err != nil {
		return err
	}

	emit(domain.ProgressEvent{Step: progress.StepParsing, Message: fmt.Sprintf("Läser %s", input.FileName), Progress: 0.2})
	emit(domain.ProgressEvent{Step: progress.StepAnalyzing, Message: "Analyserar transaktioner", Progress: 0.45})

	rep := vat.Aggregate(extracted.Transactions, vat.Options{Period: input.Period, Company: input.Company})
	rep.Validation = s.engine.ValidateReport(rep)

	ev := domain.ProgressEvent{
		Step:     progress.StepClaudeValidating,
		Message:  "Kontrollerar resultatet",
		Progress: 0.8,
	}
	if extracted.Confidence > 0 {
		c := extracted.Confidence
		ev.Confidence = &c
	}
	emit(ev)
	for _, insight := range extracted.Insights {
		emit(domain.ProgressEvent{Step: progress.StepClaudeValidating, Progress: 0.85, Insight: insight})
	}

	result := &domain.AnalysisResult{
		Data: domain.AnalysisData{
			Transactions: extracted.Transactions,
			Period:       input.Period,
			Company:      &input.Company,
			Report:       rep,
			Summary:      rep.AnalysisSummary,
		},
	}
	emit(domain.ProgressEvent{Step: progress.StepComplete, Message: "Klar", Progress: 1, Report: result})
	return nil
}

// extractedData is the JSON shape the model is asked to return.
type extractedData struct {
	Transactions []domain.Transaction `json:"transactions"`
	Confidence   float64              `json:"confidence"`
	Insights     []string             `json:"insights"`
}

func (s *Streamer) extract(ctx context.Context, sheetText, period string) (*extractedData, error) {
	prompt := buildTransactionPrompt(sheetText, period)

	reqBody := map[string]interface{}{
		"model":      s.model,
		"max_tokens": 16384,
		"messages": []map[string]interface{}{
			{
				"role": "user",
				"content": []map[string]interface{}{
					{"type": "text", "text": prompt},
				},
			},
		},
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling anthropic API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("anthropic API error (status %d): %s", resp.StatusCode, string(respBody))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := analysis.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return nil, analysis.NewRateLimitError("claude", baseErr, retryAfter)
		}
		return nil, baseErr
	}

	return parseResponse(respBody)
}

// apiResponse models the Anthropic Messages API response.
type apiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

func parseResponse(body []byte) (*extractedData, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}
	if len(resp.Content) == 0 {
		return nil, fmt.Errorf("empty response from API")
	}
	if resp.StopReason == "max_tokens" {
		return nil, fmt.Errorf("output truncated (stop_reason: max_tokens): response exceeded output token limit")
	}

	text := resp.Content[0].Text
	var parsed extractedData
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, fmt.Errorf("parsing LLM JSON output: %w (raw: %s)", err, truncate(text, 500))
	}
	return &parsed, nil
}

// renderSheet flattens the first non-empty sheet to CSV text for the prompt.
func renderSheet(wb *domain.Workbook) (string, error) {
	for _, sheet := range wb.Sheets {
		if len(sheet.Rows) < 2 {
			continue
		}
		rows := sheet.Rows
		if len(rows) > maxPromptRows+1 {
			rows = rows[:maxPromptRows+1]
		}
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		if err := w.WriteAll(rows); err != nil {
			return "", fmt.Errorf("rendering sheet %s: %w", sheet.Name, err)
		}
		return buf.String(), nil
	}
	return "", fmt.Errorf("%w: workbook has no data rows", domain.ErrInvalidInput)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
