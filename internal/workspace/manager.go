package workspace

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"britta/internal/port"
)

// Manager owns one panel per user, created lazily on first use.
type Manager struct {
	mu     sync.Mutex
	panels map[uuid.UUID]*Panel

	parser      port.WorkbookParser
	hooks       Hooks
	previewRows int
}

// NewManager creates an empty panel registry.
func NewManager(parser port.WorkbookParser, hooks Hooks, previewRows int) *Manager {
	return &Manager{
		panels:      make(map[uuid.UUID]*Panel),
		parser:      parser,
		hooks:       hooks,
		previewRows: previewRows,
	}
}

// Panel returns the user's panel, creating a closed one if needed.
func (m *Manager) Panel(userID uuid.UUID) *Panel {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.panels[userID]
	if !ok {
		p = NewPanel(userID, m.parser, m.hooks, m.previewRows)
		m.panels[userID] = p
	}
	return p
}

// Close closes and removes the user's panel if one exists. Switching
// companies goes through here so cached previews never leak across
// companies.
func (m *Manager) Close(userID uuid.UUID) {
	m.mu.Lock()
	p, ok := m.panels[userID]
	if ok {
		delete(m.panels, userID)
	}
	m.mu.Unlock()

	if ok {
		p.ClosePanel()
	}
}

// Sweep closes and removes panels idle for longer than ttl. It returns the
// number of panels reaped.
func (m *Manager) Sweep(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)

	m.mu.Lock()
	var idle []*Panel
	for userID, p := range m.panels {
		if p.LastActive().Before(cutoff) {
			idle = append(idle, p)
			delete(m.panels, userID)
		}
	}
	m.mu.Unlock()

	for _, p := range idle {
		p.ClosePanel()
	}
	return len(idle)
}

// Len returns the number of live panels.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.panels)
}
