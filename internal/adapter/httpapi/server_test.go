package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydroatlas/hydroatlas/internal/domain"
	"github.com/hydroatlas/hydroatlas/internal/engine"
	"github.com/hydroatlas/hydroatlas/internal/observability"
)

const testSecret = "test-secret"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func intPtr(v int) *int { return &v }

func fixtureObjects() []domain.WaterObject {
	return []domain.WaterObject{
		{
			ID:          "res-1",
			SourceKind:  domain.KindResource,
			DisplayName: "Озеро Балхаш",
			Region:      "Карагандинская область",
			Coordinates: domain.Coordinates{Latitude: 46.5, Longitude: 74.5},
			Condition:   intPtr(1),
			RecordDate:  time.Date(2005, 3, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:          "quality-2",
			SourceKind:  domain.KindQualityPoint,
			DisplayName: "Река Ишим",
			Region:      "Акмолинская область",
			Coordinates: domain.Coordinates{Latitude: 51.18, Longitude: 71.44},
			Condition:   intPtr(4),
			RecordDate:  time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC),
			Parameters: []domain.QualityParameter{
				{Name: "Железо общее", Unit: "мг/дм3", Concentration: 0.42, Background: 0.3},
			},
		},
	}
}

func newTestServer(t *testing.T, opts ...func(*Server)) (*Server, *engine.Engine) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	eng := engine.New(clock, testLogger(), observability.NewMetricsForTesting(), nil)
	eng.ReplaceDataset(fixtureObjects())

	srv := NewServer(":0", eng, nil, nil, []byte(testSecret), testLogger())
	for _, opt := range opts {
		opt(srv)
	}
	return srv, eng
}

func doRequest(t *testing.T, srv *Server, method, path, body string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestHealthAndReady(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyBeforeFirstDataset(t *testing.T) {
	eng := engine.New(nil, testLogger(), observability.NewMetricsForTesting(), nil)
	srv := NewServer(":0", eng, nil, nil, nil, testLogger())

	rec := doRequest(t, srv, http.MethodGet, "/readyz", "", nil)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleView(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/view", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var view viewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, 2, view.Total)
	assert.Equal(t, 2, view.Matched)
	require.Len(t, view.Objects, 2)
	// res-1: (6-1)*3 + 20 years = 35, ahead of quality-2's 8
	assert.Equal(t, "res-1", view.Objects[0].ID)
	assert.Equal(t, 35, view.Objects[0].Score)
	assert.Len(t, view.Markers, 2)
	assert.Equal(t, engine.DataReady, view.DataState)
}

func TestHandleGetObject(t *testing.T) {
	srv, _ := newTestServer(t)

	t.Run("found with derived fields", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/api/objects/quality-2", "", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		var obj objectView
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &obj))
		assert.Equal(t, "Река Ишим", obj.DisplayName)
		assert.True(t, obj.LocationKnown)
		assert.Equal(t, 1, obj.Exceedances)
	})

	t.Run("not found", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/api/objects/res-999", "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandleSetFilters(t *testing.T) {
	srv, eng := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPut, "/api/filters",
		`{"region": "Акмолинская область"}`, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var view viewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, 1, view.Matched)
	assert.Equal(t, 2, view.Total)
	assert.Equal(t, "Акмолинская область", eng.Filters().Region)
}

func TestHandleSetFiltersBadBody(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPut, "/api/filters", `{not json`, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type recordingDebouncer struct {
	mu      sync.Mutex
	queries []string
}

func (d *recordingDebouncer) Update(query string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.queries = append(d.queries, query)
}

func TestHandleSearch(t *testing.T) {
	t.Run("debounced", func(t *testing.T) {
		deb := &recordingDebouncer{}
		srv, eng := newTestServer(t, func(s *Server) { s.debouncer = deb })

		rec := doRequest(t, srv, http.MethodPut, "/api/search", `{"query": "балхаш"}`, nil)

		assert.Equal(t, http.StatusAccepted, rec.Code)
		assert.Equal(t, []string{"балхаш"}, deb.queries)
		// not applied until the debounce fires
		assert.Empty(t, eng.Filters().Query)
	})

	t.Run("immediate without a debouncer", func(t *testing.T) {
		srv, eng := newTestServer(t)

		rec := doRequest(t, srv, http.MethodPut, "/api/search", `{"query": "ишим"}`, nil)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ишим", eng.Filters().Query)
		var view viewResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
		assert.Equal(t, 1, view.Matched)
	})
}

func TestSelectionLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/selection", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, srv, http.MethodPost, "/api/selection", `{"id": "res-1"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var obj objectView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &obj))
	assert.Equal(t, "Озеро Балхаш", obj.DisplayName)

	rec = doRequest(t, srv, http.MethodGet, "/api/selection", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, srv, http.MethodPost, "/api/selection", `{"id": "res-404"}`, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, srv, http.MethodDelete, "/api/selection", "", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/api/selection", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type stubTrigger struct {
	mu    sync.Mutex
	calls int
	done  chan struct{}
}

func (s *stubTrigger) Refresh(_ context.Context) error {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	close(s.done)
	return nil
}

func TestHandleRefresh(t *testing.T) {
	t.Run("accepted and triggered", func(t *testing.T) {
		trigger := &stubTrigger{done: make(chan struct{})}
		srv, _ := newTestServer(t, func(s *Server) { s.refresher = trigger })

		rec := doRequest(t, srv, http.MethodPost, "/api/refresh", "", nil)

		assert.Equal(t, http.StatusAccepted, rec.Code)
		select {
		case <-trigger.done:
		case <-time.After(time.Second):
			t.Fatal("refresh was not triggered")
		}
	})

	t.Run("disabled without a trigger", func(t *testing.T) {
		srv, _ := newTestServer(t)

		rec := doRequest(t, srv, http.MethodPost, "/api/refresh", "", nil)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestHandleMarkers(t *testing.T) {
	srv, eng := newTestServer(t)
	eng.SetFilters(domain.Filters{Kind: domain.KindResource})

	rec := doRequest(t, srv, http.MethodGet, "/api/markers", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Markers []domain.Marker `json:"markers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Markers, 1)
	assert.Equal(t, "res-1", body.Markers[0].ID)
	assert.Equal(t, "W", body.Markers[0].Label)
}
