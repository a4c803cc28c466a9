package launchsync_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/viant/launchsync/launch"
	"github.com/viant/launchsync/launch/memory"
	"github.com/viant/launchsync/launchsync"
)

func spanAttr(span sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestCoordinator_TracesLoads(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	t.Cleanup(func() { _ = tp.Shutdown(t.Context()) })

	src := newFakeSource(launchA, launchB, launchC)
	c, err := launchsync.New(memory.New(), src, launchsync.Config{PageSize: 2, Now: fixedClock},
		launchsync.WithTracerProvider(tp))
	require.NoError(t, err)

	ctx := t.Context()
	// Cold partition: the requested append runs as a refresh.
	require.IsType(t, launchsync.Success{}, c.Load(ctx, launch.Upcoming, launchsync.Append, nil))
	src.setErr(errors.New("offline"))
	require.IsType(t, launchsync.Error{}, c.Load(ctx, launch.Upcoming, launchsync.Refresh, nil))

	spans := rec.Ended()
	require.Len(t, spans, 2)

	ok := spans[0]
	assert.Equal(t, "launchsync.Load", ok.Name())
	v, found := spanAttr(ok, "launchsync.effective_direction")
	require.True(t, found)
	assert.Equal(t, "refresh", v.AsString())
	v, found = spanAttr(ok, "launchsync.outcome")
	require.True(t, found)
	assert.Equal(t, launchsync.OutcomeSuccess, v.AsString())
	assert.Equal(t, codes.Unset, ok.Status().Code)

	failed := spans[1]
	assert.Equal(t, codes.Error, failed.Status().Code)
	v, _ = spanAttr(failed, "launchsync.outcome")
	assert.Equal(t, launchsync.OutcomeTransient, v.AsString())
}
