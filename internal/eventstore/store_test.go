package eventstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/hotbundle/internal/foundation/errors"
)

func newMemoryStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStoreAppendAndGet(t *testing.T) {
	s := newMemoryStore(t)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, 1, TypeGenerationStarted, nil, map[string]string{"trigger": "initial"}))
	require.NoError(t, s.Append(ctx, 1, TypeGenerationSucceeded, []byte(`{"duration_ms":12}`), nil))
	require.NoError(t, s.Append(ctx, 2, TypeGenerationStarted, nil, nil))

	events, err := s.GetByGeneration(ctx, 1)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, TypeGenerationStarted, events[0].Type())
	assert.Equal(t, "initial", events[0].Metadata()["trigger"])
	assert.Equal(t, uint64(1), events[1].Generation())
	assert.JSONEq(t, `{"duration_ms":12}`, string(events[1].Payload()))
}

func TestSQLiteStoreGetRange(t *testing.T) {
	s := newMemoryStore(t)
	ctx := context.Background()
	before := time.Now().Add(-time.Second)
	require.NoError(t, s.Append(ctx, 1, TypeGenerationStarted, nil, nil))

	events, err := s.GetRange(ctx, before, time.Now().Add(time.Second))
	require.NoError(t, err)
	assert.Len(t, events, 1)

	events, err = s.GetRange(ctx, time.Now().Add(time.Hour), time.Now().Add(2*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestSQLiteStorePersistsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Append(context.Background(), 7, TypeGenerationStarted, nil, nil))
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()
	events, err := s.GetByGeneration(context.Background(), 7)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestSQLiteStoreClosedReturnsStoreError(t *testing.T) {
	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	err = s.Append(context.Background(), 1, TypeGenerationStarted, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryStore))
}
