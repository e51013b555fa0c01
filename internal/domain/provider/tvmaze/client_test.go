package tvmaze

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"showcatalog/internal/service"
)

const showsFixture = `[
  {
    "id": 1,
    "name": "Under the Dome",
    "summary": "<p><b>Under the Dome</b> is the story of a small town.</p>",
    "image": {"medium": "https://img/m/1.jpg", "original": "https://img/o/1.jpg"},
    "genres": ["Drama", "Science-Fiction", "Thriller"],
    "rating": {"average": 6.5},
    "premiered": "2013-06-24",
    "status": "Ended",
    "language": "English",
    "runtime": 60,
    "network": {"name": "CBS", "country": {"name": "United States", "code": "US"}},
    "schedule": {"time": "22:00", "days": ["Thursday"]},
    "officialSite": "http://www.cbs.com/shows/under-the-dome/"
  },
  {
    "id": 2,
    "name": "Person of Interest",
    "summary": null,
    "image": null,
    "genres": [],
    "rating": {"average": null},
    "premiered": null,
    "runtime": null,
    "network": null
  }
]`

const searchFixture = `[
  {"score": 0.91, "show": {"id": 139, "name": "Girls", "genres": ["Drama", "Romance"], "rating": {"average": 6.6}}},
  {"score": 0.42, "show": {"id": 41734, "name": "Girls2", "genres": [], "rating": {"average": null}}}
]`

func newTestClient(t *testing.T, handler http.HandlerFunc) *tvmazeClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(WithBaseURL(server.URL), WithTimeout(2*time.Second)).(*tvmazeClient)
}

func TestClient_ID(t *testing.T) {
	assert.Equal(t, "tvmaze", NewClient().ID())
}

func TestClient_FetchAll(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/shows", r.URL.Path)
		assert.Equal(t, "0", r.URL.Query().Get("page"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(showsFixture))
	})

	shows, err := c.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, shows, 2)

	dome := shows[0]
	assert.Equal(t, 1, dome.ID)
	assert.Equal(t, "Under the Dome", dome.Name)
	require.NotNil(t, dome.Summary)
	assert.Contains(t, *dome.Summary, "<b>Under the Dome</b>")
	require.NotNil(t, dome.Rating.Average)
	assert.Equal(t, 6.5, *dome.Rating.Average)
	assert.Equal(t, []string{"Drama", "Science-Fiction", "Thriller"}, dome.Genres)
	require.NotNil(t, dome.Network)
	require.NotNil(t, dome.Network.Country)
	assert.Equal(t, "US", dome.Network.Country.Code)
	require.NotNil(t, dome.Runtime)
	assert.Equal(t, 60, *dome.Runtime)
	require.NotNil(t, dome.Schedule)
	assert.Equal(t, []string{"Thursday"}, dome.Schedule.Days)

	poi := shows[1]
	assert.Nil(t, poi.Summary)
	assert.Nil(t, poi.Image)
	assert.Nil(t, poi.Rating.Average)
	assert.Nil(t, poi.Runtime)
	assert.Nil(t, poi.Network)
	assert.Empty(t, poi.Premiered)
}

func TestClient_Search(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/shows", r.URL.Path)
		assert.Equal(t, "girls & boys", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(searchFixture))
	})

	shows, err := c.Search(context.Background(), "girls & boys")
	require.NoError(t, err)
	require.Len(t, shows, 2)
	assert.Equal(t, 139, shows[0].ID)
	assert.Equal(t, "Girls2", shows[1].Name)
}

func TestClient_SearchEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	shows, err := c.Search(context.Background(), "zzzzqqq")
	require.NoError(t, err)
	assert.NotNil(t, shows)
	assert.Empty(t, shows)
}

func TestClient_NonSuccessStatus(t *testing.T) {
	var calls int
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := c.FetchAll(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrUpstreamUnavailable)
	assert.Equal(t, 1, calls, "requests are not retried")

	var upErr *service.UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, "tvmaze", upErr.Provider)
	assert.Equal(t, "/shows", upErr.Endpoint)
	assert.Equal(t, http.StatusServiceUnavailable, upErr.StatusCode)
}

func TestClient_MalformedBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"not": "a list"`))
	})

	_, err := c.Search(context.Background(), "dome")
	assert.ErrorIs(t, err, service.ErrUpstreamUnavailable)
}

func TestClient_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()

	c := NewClient(WithBaseURL(baseURL))
	_, err := c.FetchAll(context.Background())

	var upErr *service.UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Zero(t, upErr.StatusCode)
	assert.Error(t, upErr.Err)
}

func TestClient_Timeout(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`[]`))
	})
	WithTimeout(20 * time.Millisecond)(c)

	_, err := c.FetchAll(context.Background())
	assert.ErrorIs(t, err, service.ErrUpstreamUnavailable)
}

func TestClient_Ping(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/shows/1" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"id": 1, "name": "Under the Dome"}`))
	})
	assert.NoError(t, c.Ping(context.Background()))

	down := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	assert.ErrorIs(t, down.Ping(context.Background()), service.ErrUpstreamUnavailable)
}

func TestWithBaseURL_TrimsSlash(t *testing.T) {
	c := NewClient(WithBaseURL("http://example.test/")).(*tvmazeClient)
	assert.Equal(t, "http://example.test", c.baseURL)
}
