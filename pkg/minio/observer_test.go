package minio

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evalhub/evalhub/pkg/observability"
)

type recordingObserver struct {
	operations []observability.OperationContext
}

func (o *recordingObserver) ObserveOperation(ctx observability.OperationContext) {
	o.operations = append(o.operations, ctx)
}

func TestObserveOperationNilObserverNoPanic(t *testing.T) {
	m := &Minio{}

	assert.NotPanics(t, func() {
		m.observeOperation("get", "corpus/evalite/a.md", 5*time.Millisecond, nil, 128)
	})
}

func TestObserveOperationForwardsContext(t *testing.T) {
	obs := &recordingObserver{}
	m := &Minio{observer: obs}

	opErr := errors.New("object not found")
	m.observeOperation("list", "corpus/", 5*time.Millisecond, opErr, 0)

	require.Len(t, obs.operations, 1)
	assert.Equal(t, "minio", obs.operations[0].Component)
	assert.Equal(t, "list", obs.operations[0].Operation)
	assert.Equal(t, "corpus/", obs.operations[0].Resource)
	assert.Equal(t, opErr, obs.operations[0].Error)
}

func TestWithObserver(t *testing.T) {
	obs := &recordingObserver{}
	m := &Minio{}

	out := m.WithObserver(obs)
	assert.Same(t, m, out, "WithObserver should return the same instance for chaining")
	assert.Equal(t, observability.Observer(obs), m.observer)
}
