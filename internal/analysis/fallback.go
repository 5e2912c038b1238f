package analysis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"britta/internal/domain"
	"britta/internal/port"
)

// failureCooldown is how long a provider stays skipped after reaching its
// consecutive-failure limit without a Retry-After hint.
const failureCooldown = time.Minute

// circuitState tracks backoff for a single provider.
type circuitState struct {
	mu       sync.RWMutex
	resetAt  time.Time // zero value = closed (healthy)
	failures int
}

func (c *circuitState) isOpenWithReset(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuitState) open(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

func (c *circuitState) recordFailure(now time.Time, limit int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures++
	if limit > 0 && c.failures >= limit {
		c.resetAt = now.Add(failureCooldown)
		c.failures = 0
	}
}

func (c *circuitState) recordSuccess() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures = 0
	c.resetAt = time.Time{}
}

// FallbackStreamer tries providers in order, skipping those with open
// circuits. A provider that fails before emitting any event is transparent:
// the next one is tried. A provider that breaks mid-stream is not retried,
// because downstream consumers have already seen its events; the run fails
// with ErrStreamInterrupted and the caller's retry flow takes over.
type FallbackStreamer struct {
	streamers   []port.AnalysisStreamer
	circuits    []*circuitState
	maxFailures int
	logger      zerolog.Logger
}

// NewFallbackStreamer creates a FallbackStreamer from an ordered provider list.
func NewFallbackStreamer(streamers []port.AnalysisStreamer, maxFailures int, logger zerolog.Logger) *FallbackStreamer {
	circuits := make([]*circuitState, len(streamers))
	for i := range circuits {
		circuits[i] = &circuitState{}
	}
	return &FallbackStreamer{
		streamers:   streamers,
		circuits:    circuits,
		maxFailures: maxFailures,
		logger:      logger,
	}
}

func (f *FallbackStreamer) Name() string { return "fallback" }

func (f *FallbackStreamer) Stream(ctx context.Context, input port.StreamInput, emit func(domain.ProgressEvent)) error {
	now := time.Now()
	var lastErr error
	allRateLimited := true
	var earliestReset time.Time

	for i, s := range f.streamers {
		if resetAt, open := f.circuits[i].isOpenWithReset(now); open {
			f.logger.Warn().
				Str("provider", s.Name()).
				Time("reset_at", resetAt).
				Msg("skipping provider with open circuit")
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
			continue
		}

		emitted := false
		err := s.Stream(ctx, input, func(ev domain.ProgressEvent) {
			emitted = true
			emit(ev)
		})
		if err == nil {
			f.circuits[i].recordSuccess()
			return nil
		}
		lastErr = err
		f.logger.Warn().Err(err).Str("provider", s.Name()).Msg("analysis provider failed")

		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			resetAt := now.Add(rlErr.RetryAfter)
			f.circuits[i].open(resetAt)
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
		} else {
			allRateLimited = false
			f.circuits[i].recordFailure(now, f.maxFailures)
		}

		if emitted {
			return fmt.Errorf("%w: %s: %v", domain.ErrStreamInterrupted, s.Name(), err)
		}
		if ctx.Err() != nil {
			return fmt.Errorf("analysis cancelled: %w", ctx.Err())
		}
	}

	if lastErr == nil || allRateLimited {
		retryAfter := time.Until(earliestReset)
		if retryAfter < 0 {
			retryAfter = time.Second
		}
		return NewRateLimitError("all", fmt.Errorf("all analysis providers rate limited"), int(retryAfter.Seconds()))
	}

	return fmt.Errorf("all analysis providers failed: %w", lastErr)
}
