package workers

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSyncer struct {
	calls atomic.Int32
	err   error
}

func (s *countingSyncer) Sync(ctx context.Context, batchSize int) (int, error) {
	s.calls.Add(1)
	return batchSize, s.err
}

func TestRunMirrorOnce(t *testing.T) {
	syncer := &countingSyncer{}
	assert.Equal(t, 10, RunMirrorOnce(context.Background(), syncer, 10))

	syncer.err = errors.New("chroma down")
	assert.Equal(t, 3, RunMirrorOnce(context.Background(), syncer, 3))
	assert.EqualValues(t, 2, syncer.calls.Load())
}

func TestMirrorScheduler(t *testing.T) {
	syncer := &countingSyncer{}
	m, err := NewMirrorScheduler(context.Background(), syncer, 20*time.Millisecond, 5)
	require.NoError(t, err)

	m.Start()
	assert.Eventually(t, func() bool {
		return syncer.calls.Load() >= 2
	}, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, m.Stop())
}

func TestMirrorScheduler_InvalidInterval(t *testing.T) {
	_, err := NewMirrorScheduler(context.Background(), &countingSyncer{}, 0, 5)
	assert.Error(t, err)
}
