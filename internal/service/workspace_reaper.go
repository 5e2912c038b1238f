package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"britta/internal/workspace"
)

// WorkspaceReaper closes panels that have been idle past their TTL. A panel
// holds the parsed workbook in memory, so abandoned sessions would otherwise
// pin spreadsheets until restart.
type WorkspaceReaper struct {
	workspaces *workspace.Manager
	interval   time.Duration
	ttl        time.Duration
	logger     zerolog.Logger
}

// NewWorkspaceReaper creates a new WorkspaceReaper.
func NewWorkspaceReaper(workspaces *workspace.Manager, interval, ttl time.Duration, logger zerolog.Logger) *WorkspaceReaper {
	if interval <= 0 {
		interval = time.Minute
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &WorkspaceReaper{
		workspaces: workspaces,
		interval:   interval,
		ttl:        ttl,
		logger:     logger,
	}
}

// Start runs the sweep loop until ctx is canceled.
func (r *WorkspaceReaper) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info().
		Dur("interval", r.interval).
		Dur("ttl", r.ttl).
		Msg("workspace reaper started")

	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("workspace reaper stopped")
			return
		case <-ticker.C:
			reaped := r.workspaces.Sweep(r.ttl)
			if reaped > 0 {
				r.logger.Debug().
					Int("reaped", reaped).
					Int("live", r.workspaces.Len()).
					Msg("closed idle workspace panels")
			}
		}
	}
}
