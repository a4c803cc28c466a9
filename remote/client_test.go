package remote

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/launchsync/launch"
)

const upcomingBody = `{
  "count": 3,
  "next": "https://example.test/launch/upcoming/?limit=2&offset=2",
  "previous": null,
  "results": [
    {
      "id": "a1",
      "name": "Falcon 9 | Starlink",
      "net": "2026-02-01T10:00:00Z",
      "status": {"name": "Go for Launch", "abbrev": "Go", "description": "Ready"},
      "launch_service_provider": {"name": "SpaceX"},
      "rocket": {"configuration": {"name": "Falcon 9", "full_name": "Falcon 9 Block 5"}},
      "mission": {"name": "Starlink", "description": "Broadband"},
      "pad": {"name": "SLC-40", "location": {"name": "Cape Canaveral"}},
      "image": "https://img.test/a1.png",
      "webcast_live": true,
      "unknown_field": 1
    },
    {
      "id": "b2",
      "name": "Electron",
      "net": "2026-02-02T11:00:00Z",
      "image": {"image_url": "https://img.test/b2.png"}
    }
  ]
}`

func TestClient_FetchUpcoming(t *testing.T) {
	var gotPath, gotQuery, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotQuery, gotUA = r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(upcomingBody))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", WithUserAgent("test-agent"))
	page, err := c.Fetch(context.Background(), launch.Upcoming, 2, 0)
	require.NoError(t, err)

	assert.Equal(t, "/launch/upcoming/", gotPath)
	assert.Equal(t, "limit=2&offset=0", gotQuery)
	assert.Equal(t, "test-agent", gotUA)

	assert.True(t, page.HasMore)
	require.Len(t, page.Launches, 2)
	a := page.Launches[0]
	assert.Equal(t, "a1", a.ID)
	assert.Equal(t, launch.Upcoming, a.Partition)
	assert.True(t, a.Net.Equal(time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Go", a.Details.Status)
	assert.Equal(t, "SpaceX", a.Details.Provider)
	assert.Equal(t, "Falcon 9 Block 5", a.Details.Rocket)
	assert.Equal(t, "Cape Canaveral", a.Details.Location)
	assert.Equal(t, "https://img.test/a1.png", a.Details.ImageURL)
	assert.True(t, a.Details.WebcastLive)
	assert.Equal(t, "https://img.test/b2.png", page.Launches[1].Details.ImageURL)
}

func TestClient_FetchPastLastPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/launch/previous/", r.URL.Path)
		_, _ = w.Write([]byte(`{"count":1,"next":null,"previous":"x","results":[{"id":"p1","name":"Old","net":"2020-01-01T00:00:00Z"}]}`))
	}))
	defer srv.Close()

	page, err := NewClient(srv.URL).Fetch(context.Background(), launch.Past, 10, 40)
	require.NoError(t, err)
	assert.False(t, page.HasMore)
	require.Len(t, page.Launches, 1)
	assert.Equal(t, launch.Past, page.Launches[0].Partition)
}

func TestClient_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "throttled", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Fetch(context.Background(), launch.Upcoming, 10, 0)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
	assert.Contains(t, statusErr.Error(), "throttled")
}

func TestClient_MappingError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"next":null,"results":[{"id":"x","name":"Bad","net":"soon"}]}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Fetch(context.Background(), launch.Upcoming, 10, 0)
	assert.ErrorIs(t, err, ErrMapping)
}

func TestClient_ContextTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := NewClient(srv.URL).Fetch(ctx, launch.Upcoming, 10, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestClient_UnknownPartition(t *testing.T) {
	_, err := NewClient("http://unused").Fetch(context.Background(), launch.Partition("future"), 1, 0)
	assert.ErrorIs(t, err, launch.ErrUnknownPartition)
}

func TestSourceFunc(t *testing.T) {
	var src Source = SourceFunc(func(_ context.Context, p launch.Partition, limit, offset int) (Page, error) {
		return Page{HasMore: offset+limit < 10}, nil
	})
	page, err := src.Fetch(context.Background(), launch.Upcoming, 5, 0)
	require.NoError(t, err)
	assert.True(t, page.HasMore)
}
