package workspace_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"britta/internal/domain"
	"britta/internal/workspace"
	"britta/mocks"
)

func newManager(hooks workspace.Hooks) *workspace.Manager {
	return workspace.NewManager(new(mocks.MockWorkbookParser), hooks, 10)
}

func TestManager_PanelIsPerUser(t *testing.T) {
	m := newManager(workspace.Hooks{})

	alice := uuid.New()
	bob := uuid.New()

	p1 := m.Panel(alice)
	p2 := m.Panel(alice)
	p3 := m.Panel(bob)

	assert.Same(t, p1, p2)
	assert.NotSame(t, p1, p3)
	assert.Equal(t, 2, m.Len())
}

func TestManager_Close(t *testing.T) {
	closed := 0
	m := newManager(workspace.Hooks{
		PanelClosed: func(uuid.UUID) { closed++ },
	})

	userID := uuid.New()
	p := m.Panel(userID)
	p.ShowStreamingAnalysis(workspace.File{Name: "a.xlsx", Data: []byte("x")})
	require.Equal(t, 1, m.Len())

	m.Close(userID)

	assert.Equal(t, 0, m.Len())
	assert.Equal(t, 1, closed)
	assert.Equal(t, domain.PanelClosed, p.State())

	// Closing a user without a panel is a no-op.
	m.Close(uuid.New())
	assert.Equal(t, 1, closed)
}

func TestManager_SweepReapsIdlePanels(t *testing.T) {
	closed := 0
	m := newManager(workspace.Hooks{
		PanelClosed: func(uuid.UUID) { closed++ },
	})

	idle := uuid.New()
	p := m.Panel(idle)
	p.ShowStreamingAnalysis(workspace.File{Name: "a.xlsx", Data: []byte("x")})

	time.Sleep(10 * time.Millisecond)

	assert.Equal(t, 0, m.Sweep(time.Hour))
	assert.Equal(t, 1, m.Len())

	reaped := m.Sweep(time.Millisecond)
	assert.Equal(t, 1, reaped)
	assert.Equal(t, 0, m.Len())
	assert.Equal(t, 1, closed)
	assert.Equal(t, domain.PanelClosed, p.State())
}
