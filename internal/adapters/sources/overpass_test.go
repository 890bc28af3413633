package sources

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pitstop-service/internal/domain"
	"pitstop-service/internal/platform/retry"
)

const overpassBody = `{
  "version": 0.6,
  "elements": [
    {"type": "node", "id": 1, "lat": 43.6035, "lon": -116.2020, "tags": {"amenity": "toilets", "name": "Julia Davis Park Restroom", "description": "Near the rose garden"}},
    {"type": "node", "id": 2, "lat": 43.6150, "lon": -116.2040, "tags": {"amenity": "toilets"}},
    {"type": "way", "id": 3, "center": {"lat": 43.6, "lon": -116.19}, "tags": {"amenity": "toilets", "name": "Ann Morrison Park"}}
  ]
}`

func newTestOverpass(srv *httptest.Server, includeWays bool) *OverpassSource {
	return NewOverpassSource(
		OverpassConfig{IncludeWays: includeWays},
		WithBaseURL(srv.URL),
		WithRateLimit(0),
		WithRetry(retry.Config{MaxAttempts: 3, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond}),
	)
}

var boiseBox = domain.BoundingBox{South: 43.5, West: -116.4, North: 43.7, East: -116.05}

func TestOverpassSearch_BoundingBox(t *testing.T) {
	var query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/interpreter", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		query = r.PostForm.Get("data")
		fmt.Fprint(w, overpassBody)
	}))
	defer srv.Close()

	res := newTestOverpass(srv, true).Search(context.Background(), domain.BoxTarget("boise", boiseBox))

	require.NoError(t, res.Err)
	assert.Contains(t, query, `node["amenity"="toilets"](43.5000,-116.4000,43.7000,-116.0500);`)
	assert.Contains(t, query, `way["amenity"="toilets"](43.5000,-116.4000,43.7000,-116.0500);`)
	assert.Contains(t, query, "out body center;")
	assert.Equal(t, 1, res.Pages)
	require.Len(t, res.Places, 3)

	assert.Equal(t, "Julia Davis Park Restroom", res.Places[0].Name)
	assert.Equal(t, "Near the rose garden", res.Places[0].Description)

	assert.Equal(t, domain.DefaultName, res.Places[1].Name)
	assert.Equal(t, domain.DefaultDescription, res.Places[1].Description)

	require.True(t, res.Places[2].Mappable())
	assert.InDelta(t, 43.6, *res.Places[2].Lat, 1e-9)
	assert.InDelta(t, -116.19, *res.Places[2].Lon, 1e-9)
}

func TestOverpassSearch_PlaceNameUsesArea(t *testing.T) {
	var query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		query = r.PostForm.Get("data")
		fmt.Fprint(w, `{"elements":[]}`)
	}))
	defer srv.Close()

	res := newTestOverpass(srv, false).Search(context.Background(), domain.NameTarget("Coeur d'Alene"))

	require.NoError(t, res.Err)
	assert.Empty(t, res.Places)
	assert.Contains(t, query, `area["name"="Coeur d'Alene"]->.searchArea;`)
	assert.Contains(t, query, `node["amenity"="toilets"](area.searchArea);`)
	assert.NotContains(t, query, "way[")
}

func TestOverpassSearch_RetriesTransientStatus(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, overpassBody)
	}))
	defer srv.Close()

	res := newTestOverpass(srv, true).Search(context.Background(), domain.BoxTarget("boise", boiseBox))

	require.NoError(t, res.Err)
	assert.Len(t, res.Places, 3)
	assert.Equal(t, int32(2), hits.Load())
}

func TestOverpassSearch_Unavailable(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "gateway timeout", http.StatusGatewayTimeout)
	}))
	defer srv.Close()

	res := newTestOverpass(srv, true).Search(context.Background(), domain.BoxTarget("boise", boiseBox))

	require.Error(t, res.Err)
	assert.True(t, errors.Is(res.Err, domain.ErrSourceUnavailable))
	assert.Equal(t, domain.OutcomeFailed, res.Outcome())
	assert.Equal(t, int32(3), hits.Load())
}

func TestOverpassSearch_BadRequestIsRejected(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "parse error", http.StatusBadRequest)
	}))
	defer srv.Close()

	res := newTestOverpass(srv, true).Search(context.Background(), domain.BoxTarget("boise", boiseBox))

	assert.True(t, errors.Is(res.Err, domain.ErrSourceRejected))
	assert.False(t, errors.Is(res.Err, domain.ErrSourceDenied))
	assert.Equal(t, int32(1), hits.Load())
}

func TestOverpassSearch_InvalidTarget(t *testing.T) {
	src := NewOverpassSource(OverpassConfig{}, WithBaseURL("http://127.0.0.1:0"))
	res := src.Search(context.Background(), domain.BoxTarget("bad", domain.BoundingBox{South: 50, North: 40}))
	assert.Error(t, res.Err)
	assert.Equal(t, domain.OutcomeFailed, res.Outcome())
}
