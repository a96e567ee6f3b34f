// Package httpapi exposes the dashboard API: view snapshots, filter and
// selection state, object CRUD, and the operational endpoints.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hydroatlas/hydroatlas/internal/domain"
	"github.com/hydroatlas/hydroatlas/internal/engine"
)

// RefreshTrigger starts one dataset refresh cycle.
type RefreshTrigger interface {
	Refresh(ctx context.Context) error
}

// Debouncer coalesces free-text query updates before they hit the engine.
type Debouncer interface {
	Update(query string)
}

// Server wires the dashboard API over the engine.
type Server struct {
	httpServer *http.Server
	engine     *engine.Engine
	refresher  RefreshTrigger
	debouncer  Debouncer
	jwtSecret  []byte
	logger     *slog.Logger
}

// NewServer creates the API server. A nil refresher disables the manual
// refresh endpoint; a nil debouncer applies queries immediately.
func NewServer(addr string, eng *engine.Engine, refresher RefreshTrigger, debouncer Debouncer, jwtSecret []byte, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		engine:    eng,
		refresher: refresher,
		debouncer: debouncer,
		jwtSecret: jwtSecret,
		logger:    logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/view", s.handleView)
	mux.HandleFunc("GET /api/objects", s.handleListObjects)
	mux.HandleFunc("GET /api/objects/{id}", s.handleGetObject)
	mux.HandleFunc("PUT /api/objects/{id}", s.requireExpert(s.handleUpdateObject))
	mux.HandleFunc("DELETE /api/objects/{id}", s.requireExpert(s.handleDeleteObject))
	mux.HandleFunc("GET /api/markers", s.handleMarkers)
	mux.HandleFunc("GET /api/filters", s.handleGetFilters)
	mux.HandleFunc("PUT /api/filters", s.handleSetFilters)
	mux.HandleFunc("PUT /api/search", s.handleSearch)
	mux.HandleFunc("GET /api/selection", s.handleGetSelection)
	mux.HandleFunc("POST /api/selection", s.handleSelect)
	mux.HandleFunc("DELETE /api/selection", s.handleClearSelection)
	mux.HandleFunc("POST /api/refresh", s.handleRefresh)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.engine.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// viewResponse is the full dashboard projection: sorted rows, markers,
// selection, and dataset status in one consistent payload.
type viewResponse struct {
	Objects  []objectView        `json:"objects"`
	Markers  []domain.Marker     `json:"markers"`
	Selected *objectView         `json:"selected,omitempty"`
	Filters  domain.Filters      `json:"filters"`
	Total    int                 `json:"total"`
	Matched  int                 `json:"matched"`
	Tiers    map[domain.Tier]int `json:"tier_counts"`

	DataState   engine.DataState `json:"data_state"`
	LastRefresh *time.Time       `json:"last_refresh,omitempty"`
	LastError   string           `json:"last_error,omitempty"`
}

// objectView decorates a WaterObject with the derived fields the frontend
// renders directly.
type objectView struct {
	domain.WaterObject
	LocationKnown bool     `json:"location_known"`
	Exceedances   int      `json:"exceedances"`
	DangerRatio   *float64 `json:"danger_ratio,omitempty"`
	Dangerous     bool     `json:"dangerous"`
}

func newObjectView(obj domain.WaterObject) objectView {
	view := objectView{
		WaterObject:   obj,
		LocationKnown: obj.LocationKnown(),
		Exceedances:   obj.ExceedanceCount(),
		Dangerous:     obj.IsDangerous(),
	}
	if obj.Telemetry != nil {
		if ratio, ok := obj.Telemetry.DangerRatio(); ok {
			view.DangerRatio = &ratio
		}
	}
	return view
}

func newViewResponse(v engine.View) viewResponse {
	objects := make([]objectView, len(v.Objects))
	for i, obj := range v.Objects {
		objects[i] = newObjectView(obj)
	}
	resp := viewResponse{
		Objects:   objects,
		Markers:   v.Markers,
		Filters:   v.Filters,
		Total:     v.Total,
		Matched:   v.Matched,
		Tiers:     v.TierCounts,
		DataState: v.DataState,
		LastError: v.LastError,
	}
	if v.Selected != nil {
		selected := newObjectView(*v.Selected)
		resp.Selected = &selected
	}
	if !v.LastRefresh.IsZero() {
		t := v.LastRefresh
		resp.LastRefresh = &t
	}
	return resp
}

func (s *Server) handleView(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, newViewResponse(s.engine.Snapshot()))
}

func (s *Server) handleListObjects(w http.ResponseWriter, _ *http.Request) {
	view := s.engine.Snapshot()
	objects := make([]objectView, len(view.Objects))
	for i, obj := range view.Objects {
		objects[i] = newObjectView(obj)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"objects": objects,
		"total":   view.Total,
		"matched": view.Matched,
	})
}

func (s *Server) handleGetObject(w http.ResponseWriter, r *http.Request) {
	obj, ok := s.engine.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "object not found")
		return
	}
	writeJSON(w, http.StatusOK, newObjectView(obj))
}

// objectUpdate is the editable subset of an object's fields. Derived
// fields are recomputed server-side and cannot be submitted.
type objectUpdate struct {
	DisplayName  *string             `json:"display_name"`
	Region       *string             `json:"region"`
	ResourceType *string             `json:"resource_type"`
	WaterType    *string             `json:"water_type"`
	HasFauna     *bool               `json:"has_fauna"`
	Coordinates  *domain.Coordinates `json:"coordinates"`
	Condition    *int                `json:"condition"`
	RecordDate   *time.Time          `json:"record_date"`
}

func (s *Server) handleUpdateObject(w http.ResponseWriter, r *http.Request) {
	obj, ok := s.engine.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "object not found")
		return
	}

	var update objectUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if update.DisplayName != nil {
		obj.DisplayName = *update.DisplayName
	}
	if update.Region != nil {
		obj.Region = *update.Region
	}
	if update.ResourceType != nil {
		obj.ResourceType = domain.ParseResourceType(*update.ResourceType)
	}
	if update.WaterType != nil {
		obj.WaterType = domain.ParseWaterType(*update.WaterType)
	}
	if update.HasFauna != nil {
		obj.HasFauna = *update.HasFauna
	}
	if update.Coordinates != nil {
		obj.Coordinates = *update.Coordinates
	}
	if update.Condition != nil {
		c := domain.ClampCondition(*update.Condition)
		obj.Condition = &c
	}
	if update.RecordDate != nil {
		obj.RecordDate = *update.RecordDate
	}

	updated := s.engine.Upsert(obj)
	s.logger.Info("object updated", "id", updated.ID)
	writeJSON(w, http.StatusOK, newObjectView(updated))
}

func (s *Server) handleDeleteObject(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.engine.Remove(id); err != nil {
		writeError(w, http.StatusNotFound, "object not found")
		return
	}
	s.logger.Info("object deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMarkers(w http.ResponseWriter, _ *http.Request) {
	view := s.engine.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{"markers": view.Markers})
}

func (s *Server) handleGetFilters(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Filters())
}

func (s *Server) handleSetFilters(w http.ResponseWriter, r *http.Request) {
	var filters domain.Filters
	if err := json.NewDecoder(r.Body).Decode(&filters); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.engine.SetFilters(filters)
	writeJSON(w, http.StatusOK, newViewResponse(s.engine.Snapshot()))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if s.debouncer != nil {
		s.debouncer.Update(body.Query)
		w.WriteHeader(http.StatusAccepted)
		return
	}
	s.engine.SetQuery(body.Query)
	writeJSON(w, http.StatusOK, newViewResponse(s.engine.Snapshot()))
}

func (s *Server) handleGetSelection(w http.ResponseWriter, _ *http.Request) {
	obj, ok := s.engine.Selection()
	if !ok {
		writeError(w, http.StatusNotFound, "no selection")
		return
	}
	writeJSON(w, http.StatusOK, newObjectView(obj))
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ID == "" {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	obj, err := s.engine.Select(body.ID)
	if err != nil {
		if errors.Is(err, engine.ErrUnknownObject) {
			writeError(w, http.StatusNotFound, "object not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "selection failed")
		return
	}
	writeJSON(w, http.StatusOK, newObjectView(obj))
}

func (s *Server) handleClearSelection(w http.ResponseWriter, _ *http.Request) {
	s.engine.ClearSelection()
	w.WriteHeader(http.StatusNoContent)
}

// handleRefresh triggers an asynchronous dataset refresh cycle.
func (s *Server) handleRefresh(w http.ResponseWriter, _ *http.Request) {
	if s.refresher == nil {
		writeError(w, http.StatusServiceUnavailable, "manual refresh disabled")
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := s.refresher.Refresh(ctx); err != nil {
			s.logger.Warn("manual refresh failed", "error", err)
		}
	}()
	w.WriteHeader(http.StatusAccepted)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
