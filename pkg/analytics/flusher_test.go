package analytics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlushMovesCountersToDatabase(t *testing.T) {
	cache := newFakeCache()
	db := newFakeDB()
	svc := newTestService(cache, db, nil, false)
	flusher := NewFlusher(Config{}, cache, db, nil, testLogger{})

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.RecordView(context.Background(), "/evalite/a", "evalite"))
	}
	require.NoError(t, svc.RecordView(context.Background(), "/ragas/b", "ragas"))

	flusher.Flush(context.Background())

	assert.Equal(t, int64(3), db.rows["/evalite/a"])
	assert.Equal(t, int64(1), db.rows["/ragas/b"])
	assert.Empty(t, cache.counters, "drained counters must be removed from the cache")
}

func TestFlushAccumulatesAcrossCycles(t *testing.T) {
	cache := newFakeCache()
	db := newFakeDB()
	svc := newTestService(cache, db, nil, false)
	flusher := NewFlusher(Config{}, cache, db, nil, testLogger{})

	require.NoError(t, svc.RecordView(context.Background(), "/evalite/a", "evalite"))
	flusher.Flush(context.Background())
	require.NoError(t, svc.RecordView(context.Background(), "/evalite/a", "evalite"))
	flusher.Flush(context.Background())

	assert.Equal(t, int64(2), db.rows["/evalite/a"])
}

func TestFlushRebuffersOnDatabaseFailure(t *testing.T) {
	cache := newFakeCache()
	db := newFakeDB()
	db.failExec = true
	svc := newTestService(cache, db, nil, false)
	flusher := NewFlusher(Config{}, cache, db, nil, testLogger{})

	require.NoError(t, svc.RecordView(context.Background(), "/evalite/a", "evalite"))
	flusher.Flush(context.Background())

	assert.Equal(t, int64(1), cache.counters[DefaultKeyPrefix+"/evalite/a"],
		"delta must survive a failed flush")

	db.failExec = false
	flusher.Flush(context.Background())
	assert.Equal(t, int64(1), db.rows["/evalite/a"])
}

func TestFlushEmptyBufferIsNoOp(t *testing.T) {
	db := newFakeDB()
	flusher := NewFlusher(Config{}, newFakeCache(), db, nil, testLogger{})

	flusher.Flush(context.Background())
	assert.Zero(t, db.execs)
}
