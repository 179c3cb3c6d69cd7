package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"savings/internal/core"
	"savings/internal/events"
	"savings/internal/records/memory"
)

type fakeMirror struct {
	calls int
	last  []core.SavingsRecord
	err   error
}

func (m *fakeMirror) Sync(_ context.Context, recs []core.SavingsRecord) error {
	m.calls++
	m.last = recs
	return m.err
}

func TestSyncWorker_HandleRecordEvent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "savings.csv")
	mirror := &fakeMirror{}
	w := NewSyncWorker(memory.New(), path, mirror)

	require.NoError(t, w.HandleRecordEvent(ctx, events.Deleted("x")))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(b)), "\n"), 3)
	assert.Equal(t, 1, mirror.calls)
	assert.Len(t, mirror.last, 2)
}

func TestSyncWorker_MirrorErrorIsReported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "savings.csv")
	w := NewSyncWorker(memory.New(), path, &fakeMirror{err: errors.New("quota")})

	err := w.Refresh(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota")

	// the export is still written
	_, statErr := os.Stat(path)
	assert.NoError(t, statErr)
}

func TestSyncWorker_NoTargets(t *testing.T) {
	w := NewSyncWorker(memory.New(), "", nil)
	assert.NoError(t, w.Refresh(context.Background()))
}

type countingRefresher struct{ n atomic.Int32 }

func (c *countingRefresher) Refresh(context.Context) error {
	c.n.Add(1)
	return nil
}

func TestProcessor_Lifecycle(t *testing.T) {
	ctx := context.Background()
	target := &countingRefresher{}
	p := NewProcessor(target, 10*time.Millisecond)

	require.NoError(t, p.Start(ctx))
	assert.True(t, p.IsRunning())
	assert.Error(t, p.Start(ctx))

	require.Eventually(t, func() bool { return target.n.Load() >= 2 }, time.Second, 5*time.Millisecond)

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	require.NoError(t, p.Stop(stopCtx))
	assert.False(t, p.IsRunning())
	require.NoError(t, p.Stop(stopCtx))
}
