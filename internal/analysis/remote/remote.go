package remote

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"britta/internal/analysis"
	"britta/internal/config"
	"britta/internal/domain"
	"britta/internal/port"
	"britta/internal/progress"
)

const analyzePath = "/api/v1/vat/analyze-stream"

func init() {
	analysis.RegisterProvider("remote", func(cfg *config.AnalysisProviderConfig) (port.AnalysisStreamer, error) {
		return NewStreamer(cfg), nil
	})
}

// Streamer implements port.AnalysisStreamer against the hosted analysis
// service's server-sent-event endpoint.
type Streamer struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewStreamer creates a remote streamer from a provider config.
func NewStreamer(cfg *config.AnalysisProviderConfig) *Streamer {
	return &Streamer{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:   cfg.APIKey,
		// No client timeout: streams outlive any sane fixed deadline. The
		// request context is the cancellation mechanism.
		client: &http.Client{},
	}
}

func (s *Streamer) Name() string { return "remote" }

// analyzeRequest is the wire format of the analysis service.
type analyzeRequest struct {
	FileData    string `json:"file_data"`
	Filename    string `json:"filename"`
	CompanyName string `json:"company_name"`
	OrgNumber   string `json:"org_number"`
	Period      string `json:"period"`
}

func (s *Streamer) Stream(ctx context.Context, input port.StreamInput, emit func(domain.ProgressEvent)) error {
	reqBody := analyzeRequest{
		FileData:    base64.StdEncoding.EncodeToString(input.Data),
		Filename:    input.FileName,
		CompanyName: input.Company.Name,
		OrgNumber:   input.Company.OrgNumber,
		Period:      input.Period,
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint+analyzePath, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	if s.apiKey != "" {
		req.Header.Set("X-API-Key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling analysis service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		baseErr := fmt.Errorf("analysis service error (status %d): %s", resp.StatusCode, string(body))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := analysis.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return analysis.NewRateLimitError("remote", baseErr, retryAfter)
		}
		return baseErr
	}

	scanner := bufio.NewScanner(resp.Body)
	// The complete event carries the full report payload.
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	sawTerminal := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" || payload == "[DONE]" {
			continue
		}

		var ev domain.ProgressEvent
		if err := json.Unmarshal([]byte(payload), &ev); err != nil {
			// Malformed chunks are skipped; the read loop keeps going.
			continue
		}
		emit(ev)
		if ev.Step == progress.StepComplete || ev.Step == progress.StepError {
			sawTerminal = true
		}
	}

	if err := scanner.Err(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("analysis stream cancelled: %w", ctx.Err())
		}
		return fmt.Errorf("reading analysis stream: %w", err)
	}
	if !sawTerminal {
		return fmt.Errorf("analysis stream ended without a terminal event")
	}
	return nil
}
