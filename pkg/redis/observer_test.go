package redis

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evalhub/evalhub/pkg/observability"
)

// recordingObserver captures operation notifications for assertions.
type recordingObserver struct {
	mu         sync.Mutex
	operations []observability.OperationContext
}

func (o *recordingObserver) ObserveOperation(ctx observability.OperationContext) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.operations = append(o.operations, ctx)
}

func (o *recordingObserver) snapshot() []observability.OperationContext {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]observability.OperationContext, len(o.operations))
	copy(out, o.operations)
	return out
}

func (o *recordingObserver) names() []string {
	var names []string
	for _, op := range o.snapshot() {
		names = append(names, op.Operation)
	}
	return names
}

func TestObserveOperationNilObserverNoPanic(t *testing.T) {
	r := &RedisClient{}

	assert.NotPanics(t, func() {
		r.observeOperation("get", "some-key", "", 10*time.Millisecond, nil, 0, nil)
	})
}

func TestObserveOperationForwardsContext(t *testing.T) {
	obs := &recordingObserver{}
	r := &RedisClient{observer: obs}

	r.observeOperation("getdel", "views:/evalite/a", "", 10*time.Millisecond, nil, 2, map[string]interface{}{"drained": true})

	operations := obs.snapshot()
	require.Len(t, operations, 1)
	assert.Equal(t, "redis", operations[0].Component)
	assert.Equal(t, "getdel", operations[0].Operation)
	assert.Equal(t, "views:/evalite/a", operations[0].Resource)
	assert.Equal(t, int64(2), operations[0].Size)
	assert.Equal(t, true, operations[0].Metadata["drained"])
}

func TestWithObserver(t *testing.T) {
	obs := &recordingObserver{}
	r := &RedisClient{}

	out := r.WithObserver(obs)
	assert.Same(t, r, out, "WithObserver should return the same instance for chaining")
	assert.Equal(t, obs, r.observer)
}
