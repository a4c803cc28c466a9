package launchsync

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/launchsync/launch"
)

func TestPageOffsets(t *testing.T) {
	testCases := []struct {
		name     string
		offset   int
		pageSize int
		hasMore  bool
		prev     *int
		next     *int
	}{
		{name: "first page", offset: 0, pageSize: 20, hasMore: true, next: launch.Offset(20)},
		{name: "only page", offset: 0, pageSize: 20},
		{name: "middle page", offset: 40, pageSize: 20, hasMore: true, prev: launch.Offset(20), next: launch.Offset(60)},
		{name: "last page", offset: 40, pageSize: 20, prev: launch.Offset(20)},
		{name: "unaligned offset", offset: 5, pageSize: 20, hasMore: true, prev: launch.Offset(0), next: launch.Offset(25)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			prev, next := PageOffsets(tc.offset, tc.pageSize, tc.hasMore)
			assert.Equal(t, tc.prev, prev)
			assert.Equal(t, tc.next, next)
		})
	}
}

func TestParseDirection(t *testing.T) {
	for _, d := range []Direction{Refresh, Prepend, Append} {
		got, err := ParseDirection(d.String())
		require.NoError(t, err)
		assert.Equal(t, d, got)
	}
	got, err := ParseDirection(" APPEND ")
	require.NoError(t, err)
	assert.Equal(t, Append, got)

	_, err = ParseDirection("sideways")
	assert.Error(t, err)
	assert.Equal(t, "direction(9)", Direction(9).String())
}

func TestWindowEdges(t *testing.T) {
	var empty Window
	_, ok := empty.First()
	assert.False(t, ok)
	_, ok = empty.Last()
	assert.False(t, ok)

	w := Window{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	first, ok := w.First()
	require.True(t, ok)
	assert.Equal(t, "a", first.ID)
	last, ok := w.Last()
	require.True(t, ok)
	assert.Equal(t, "c", last.ID)
}

func TestErrorRetryable(t *testing.T) {
	cause := errors.New("boom")
	transient := Error{Cause: errors.Join(ErrTransientFetch, cause)}
	assert.True(t, transient.Retryable())
	assert.ErrorIs(t, transient, cause)
	assert.Equal(t, transient.Cause.Error(), transient.Error())

	assert.False(t, Error{Cause: ErrStoreTransaction}.Retryable())
}

func TestInitializeActionString(t *testing.T) {
	assert.Equal(t, "launch_initial_refresh", LaunchInitialRefresh.String())
	assert.Equal(t, "skip_initial_refresh", SkipInitialRefresh.String())
}
