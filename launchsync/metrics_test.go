package launchsync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/launchsync/launch"
	"github.com/viant/launchsync/launch/memory"
	"github.com/viant/launchsync/remote"
)

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.ObserveLoad(launch.Upcoming, Refresh, OutcomeSuccess, 3, time.Second)
	m.RecordSweep(launch.Past)
}

func TestMetrics_RegisterOrReuse(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := NewMetrics(reg)
	second := NewMetrics(reg)
	assert.Same(t, first.loadsTotal, second.loadsTotal)
	assert.Same(t, first.sweepsTotal, second.sweepsTotal)
}

func TestMetrics_RecordedByLoads(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	fail := false
	src := remote.SourceFunc(func(ctx context.Context, p launch.Partition, limit, offset int) (remote.Page, error) {
		if fail {
			return remote.Page{}, errors.New("offline")
		}
		return remote.Page{Launches: []launch.Launch{{ID: "a", Net: time.Now()}, {ID: "b", Net: time.Now()}}}, nil
	})
	c, err := New(memory.New(), src, Config{PageSize: 2}, WithMetrics(m))
	require.NoError(t, err)

	ctx := t.Context()
	require.IsType(t, Success{}, c.Load(ctx, launch.Upcoming, Refresh, nil))
	require.IsType(t, Success{}, c.Load(ctx, launch.Upcoming, Append, nil))
	fail = true
	require.IsType(t, Error{}, c.Load(ctx, launch.Upcoming, Refresh, nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.loadsTotal.WithLabelValues("upcoming", "refresh", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.loadsTotal.WithLabelValues("upcoming", "append", OutcomeNoop)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.loadsTotal.WithLabelValues("upcoming", "refresh", OutcomeTransient)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.rowsWritten.WithLabelValues("upcoming")))

	_, err = c.Sweep(ctx, time.Now().Add(48*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sweepsTotal.WithLabelValues("upcoming")))
}
