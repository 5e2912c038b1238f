package analysis_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"britta/internal/analysis"
	"britta/internal/analysis/remote"
	"britta/internal/config"
	"britta/internal/domain"
	"britta/internal/port"
	"britta/internal/progress"
)

func newRemoteStreamer(serverURL string) *remote.Streamer {
	cfg := &config.AnalysisProviderConfig{
		Provider: "remote",
		Endpoint: serverURL,
		APIKey:   "test-api-key",
	}
	return remote.NewStreamer(cfg)
}

func remoteInput() port.StreamInput {
	return port.StreamInput{
		FileName: "november.xlsx",
		Data:     []byte("xlsx bytes"),
		Company:  domain.ReportCompany{Name: "Laddel AB", OrgNumber: "556036-0793"},
		Period:   "2025-11",
	}
}

func TestRemoteStreamer_FullRun(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/vat/analyze-stream", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))
		assert.Equal(t, "test-api-key", r.Header.Get("X-API-Key"))

		var reqBody map[string]interface{}
		err := json.NewDecoder(r.Body).Decode(&reqBody)
		assert.NoError(t, err)
		assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("xlsx bytes")), reqBody["file_data"])
		assert.Equal(t, "november.xlsx", reqBody["filename"])
		assert.Equal(t, "Laddel AB", reqBody["company_name"])
		assert.Equal(t, "556036-0793", reqBody["org_number"])
		assert.Equal(t, "2025-11", reqBody["period"])

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "event: progress\n")
		fmt.Fprint(w, `data: {"step":"parsing","message":"Läser november.xlsx","progress":0.1}`+"\n\n")
		fmt.Fprint(w, "data: this is not json\n\n")
		fmt.Fprint(w, `data: {"step":"calculating","message":"Beräknar moms","progress":0.9,"confidence":97.5}`+"\n\n")
		fmt.Fprint(w, `data: {"step":"complete","message":"Klar","progress":1,"report":{"data":{"transactions":[],"period":"2025-11"}}}`+"\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	var events []domain.ProgressEvent
	err := newRemoteStreamer(server.URL).Stream(context.Background(), remoteInput(), func(ev domain.ProgressEvent) {
		events = append(events, ev)
	})

	require.NoError(t, err)
	// The unparseable chunk and the [DONE] sentinel are dropped.
	require.Len(t, events, 3)
	assert.Equal(t, progress.StepParsing, events[0].Step)
	assert.Equal(t, "Läser november.xlsx", events[0].Message)
	require.NotNil(t, events[1].Confidence)
	assert.Equal(t, 97.5, *events[1].Confidence)
	assert.Equal(t, progress.StepComplete, events[2].Step)
	require.NotNil(t, events[2].Report)
	assert.Equal(t, "2025-11", events[2].Report.Data.Period)
}

func TestRemoteStreamer_ErrorEventIsTerminal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `data: {"step":"parsing","progress":0.1}`+"\n\n")
		fmt.Fprint(w, `data: {"step":"error","error":"Filen innehåller inga datarader"}`+"\n\n")
	}))
	defer server.Close()

	var events []domain.ProgressEvent
	err := newRemoteStreamer(server.URL).Stream(context.Background(), remoteInput(), func(ev domain.ProgressEvent) {
		events = append(events, ev)
	})

	// An error event terminates the run cleanly; the caller reads the event.
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, progress.StepError, events[1].Step)
	assert.Equal(t, "Filen innehåller inga datarader", events[1].Error)
}

func TestRemoteStreamer_TruncatedStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `data: {"step":"analyzing","progress":0.2}`+"\n\n")
	}))
	defer server.Close()

	var events []domain.ProgressEvent
	err := newRemoteStreamer(server.URL).Stream(context.Background(), remoteInput(), func(ev domain.ProgressEvent) {
		events = append(events, ev)
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "terminal event")
	assert.Len(t, events, 1)
}

func TestRemoteStreamer_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "17")
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, "slow down")
	}))
	defer server.Close()

	err := newRemoteStreamer(server.URL).Stream(context.Background(), remoteInput(), discard)

	var rlErr *analysis.RateLimitError
	require.ErrorAs(t, err, &rlErr)
	assert.Equal(t, "remote", rlErr.Provider)
	assert.Equal(t, 17*time.Second, rlErr.RetryAfter)
}

func TestRemoteStreamer_RateLimitedWithoutRetryAfter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	err := newRemoteStreamer(server.URL).Stream(context.Background(), remoteInput(), discard)

	var rlErr *analysis.RateLimitError
	require.ErrorAs(t, err, &rlErr)
	assert.Equal(t, time.Minute, rlErr.RetryAfter)
}

func TestRemoteStreamer_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, "backend on fire")
	}))
	defer server.Close()

	err := newRemoteStreamer(server.URL).Stream(context.Background(), remoteInput(), discard)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
	assert.Contains(t, err.Error(), "backend on fire")
	var rlErr *analysis.RateLimitError
	assert.False(t, errors.As(err, &rlErr))
}

func TestRemoteStreamer_CancelledMidStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `data: {"step":"parsing","progress":0.1}`+"\n\n")
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := newRemoteStreamer(server.URL).Stream(ctx, remoteInput(), func(ev domain.ProgressEvent) {
		cancel()
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRemoteStreamer_NoAPIKeyHeaderWhenUnset(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, present := r.Header["X-Api-Key"]
		assert.False(t, present)
		fmt.Fprint(w, `data: {"step":"complete","progress":1}`+"\n\n")
	}))
	defer server.Close()

	s := remote.NewStreamer(&config.AnalysisProviderConfig{Provider: "remote", Endpoint: server.URL})
	err := s.Stream(context.Background(), remoteInput(), discard)

	require.NoError(t, err)
}

func TestRemoteStreamer_Name(t *testing.T) {
	s := remote.NewStreamer(&config.AnalysisProviderConfig{Endpoint: "http://localhost:9"})
	assert.Equal(t, "remote", s.Name())
}
