// Package engine owns the live dashboard state: the current object
// universe, the active filter set, and the single selected object. All
// three are replaced as whole values under one lock, and every view
// snapshot is derived from them on demand, so list rows, map markers, and
// the detail card always agree.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/hydroatlas/hydroatlas/internal/domain"
	"github.com/hydroatlas/hydroatlas/internal/observability"
)

// ErrUnknownObject is returned when a selection or mutation references an
// id that is not in the current universe.
var ErrUnknownObject = errors.New("unknown object id")

// MapCommander receives fly-to instructions when the selection changes.
// Calls are fire-and-forget: the engine never waits for the map animation.
type MapCommander interface {
	FlyTo(coords domain.Coordinates)
}

// DataState tells UI collaborators whether the engine serves a fresh
// dataset, a stale-but-usable one, or nothing yet.
type DataState string

const (
	DataLoading  DataState = "loading"  // no dataset loaded yet
	DataReady    DataState = "ready"    // last refresh succeeded
	DataDegraded DataState = "degraded" // serving the last good dataset after a failed refresh
)

// View is the consistent projection handed to the list, map, and detail
// collaborators. Objects are filtered and sorted; markers are built from
// the same filtered set, so a selected-but-filtered-out object keeps its
// detail card while its marker is hidden.
type View struct {
	Objects  []domain.WaterObject `json:"objects"`
	Markers  []domain.Marker      `json:"markers"`
	Selected *domain.WaterObject  `json:"selected,omitempty"`
	Filters  domain.Filters       `json:"filters"`

	Total      int                 `json:"total"`
	Matched    int                 `json:"matched"`
	TierCounts map[domain.Tier]int `json:"tier_counts"`

	DataState   DataState `json:"data_state"`
	LastRefresh time.Time `json:"last_refresh,omitempty"`
	LastError   string    `json:"last_error,omitempty"`
}

// Engine is the single state holder. Safe for concurrent use.
type Engine struct {
	clock     clockwork.Clock
	logger    *slog.Logger
	metrics   *observability.Metrics
	commander MapCommander

	mu          sync.RWMutex
	universe    []domain.WaterObject
	byID        map[string]domain.WaterObject
	filters     domain.Filters
	selectedID  string
	state       DataState
	lastRefresh time.Time
	lastError   string
}

// New creates an empty engine in the loading state. A nil clock means real
// time; a nil commander disables fly-to emission.
func New(clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics, commander MapCommander) *Engine {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Engine{
		clock:     clock,
		logger:    logger,
		metrics:   metrics,
		commander: commander,
		byID:      map[string]domain.WaterObject{},
		state:     DataLoading,
	}
}

// CheckReadiness returns nil once a dataset has been loaded.
func (e *Engine) CheckReadiness(_ context.Context) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.state == DataLoading {
		return errors.New("no dataset loaded yet")
	}
	return nil
}

// ReplaceDataset swaps in a freshly fetched universe wholesale. Every
// object is rescored against one instant. A selection whose id survived
// the refetch is kept (pointing at the refreshed object); otherwise it is
// cleared.
func (e *Engine) ReplaceDataset(objects []domain.WaterObject) {
	now := e.clock.Now()
	scored := domain.RescoreAll(objects, now)

	byID := make(map[string]domain.WaterObject, len(scored))
	for _, obj := range scored {
		byID[obj.ID] = obj
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.selectedID != "" {
		if _, ok := byID[e.selectedID]; !ok {
			e.logger.Info("selection cleared, object gone after refresh", "id", e.selectedID)
			e.selectedID = ""
		}
	}

	e.universe = scored
	e.byID = byID
	e.state = DataReady
	e.lastRefresh = now
	e.lastError = ""
	e.metrics.DatasetSize.Set(float64(len(scored)))
}

// MarkRefreshFailed records a failed refresh. The last good dataset stays
// in place; only the reported data state changes.
func (e *Engine) MarkRefreshFailed(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastError = err.Error()
	if e.state != DataLoading {
		e.state = DataDegraded
	}
}

// SetFilters replaces the whole filter state. Selection is independent of
// filtering and is left untouched.
func (e *Engine) SetFilters(f domain.Filters) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.filters = f
}

// SetQuery replaces only the free-text query, keeping the other filter
// dimensions. It is the apply target of the search debouncer.
func (e *Engine) SetQuery(query string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.filters.Query = query
}

// Filters returns the active filter state.
func (e *Engine) Filters() domain.Filters {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.filters
}

// Select marks the object as selected and emits a fly-to instruction for
// it. The id must exist in the current unfiltered universe; selecting an
// object that the active filters hide is allowed.
func (e *Engine) Select(id string) (domain.WaterObject, error) {
	e.mu.Lock()
	obj, ok := e.byID[id]
	if !ok {
		e.mu.Unlock()
		return domain.WaterObject{}, ErrUnknownObject
	}
	e.selectedID = id
	e.mu.Unlock()

	e.metrics.SelectionChanges.Inc()
	obj = domain.Rescore(obj, e.clock.Now())

	if e.commander != nil && obj.LocationKnown() {
		e.commander.FlyTo(obj.Coordinates)
	}
	return obj, nil
}

// ClearSelection drops the current selection, if any.
func (e *Engine) ClearSelection() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selectedID = ""
}

// Selection returns the currently selected object, rescored, if one is set.
func (e *Engine) Selection() (domain.WaterObject, bool) {
	e.mu.RLock()
	id := e.selectedID
	obj, ok := e.byID[id]
	e.mu.RUnlock()
	if id == "" || !ok {
		return domain.WaterObject{}, false
	}
	return domain.Rescore(obj, e.clock.Now()), true
}

// Get returns one object by id, rescored.
func (e *Engine) Get(id string) (domain.WaterObject, bool) {
	e.mu.RLock()
	obj, ok := e.byID[id]
	e.mu.RUnlock()
	if !ok {
		return domain.WaterObject{}, false
	}
	return domain.Rescore(obj, e.clock.Now()), true
}

// Upsert replaces one object's fields (or adds a new object) and rescores
// it immediately, so a CRUD edit is never rendered with a stale score.
func (e *Engine) Upsert(obj domain.WaterObject) domain.WaterObject {
	scored := domain.Rescore(obj, e.clock.Now())

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.byID[scored.ID]; exists {
		for i := range e.universe {
			if e.universe[i].ID == scored.ID {
				e.universe[i] = scored
				break
			}
		}
	} else {
		e.universe = append(e.universe, scored)
	}
	e.byID[scored.ID] = scored
	e.metrics.DatasetSize.Set(float64(len(e.universe)))
	return scored
}

// Remove deletes one object from the universe, clearing the selection when
// it pointed at the removed id.
func (e *Engine) Remove(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.byID[id]; !ok {
		return ErrUnknownObject
	}
	delete(e.byID, id)
	for i := range e.universe {
		if e.universe[i].ID == id {
			e.universe = append(e.universe[:i], e.universe[i+1:]...)
			break
		}
	}
	if e.selectedID == id {
		e.selectedID = ""
	}
	e.metrics.DatasetSize.Set(float64(len(e.universe)))
	return nil
}

// Dataset returns a scored copy of the whole universe, unfiltered.
func (e *Engine) Dataset() []domain.WaterObject {
	e.mu.RLock()
	objects := make([]domain.WaterObject, len(e.universe))
	copy(objects, e.universe)
	e.mu.RUnlock()
	return domain.RescoreAll(objects, e.clock.Now())
}

// Snapshot builds the consistent view: rescore everything against one
// instant, apply the filter set, sort by priority, and project markers
// from the same filtered objects.
func (e *Engine) Snapshot() View {
	start := time.Now()

	e.mu.RLock()
	objects := make([]domain.WaterObject, len(e.universe))
	copy(objects, e.universe)
	filters := e.filters
	selectedID := e.selectedID
	state := e.state
	lastRefresh := e.lastRefresh
	lastError := e.lastError
	e.mu.RUnlock()

	objects = domain.RescoreAll(objects, e.clock.Now())

	tierCounts := map[domain.Tier]int{}
	var selected *domain.WaterObject
	for i := range objects {
		tierCounts[objects[i].Tier]++
		if selectedID != "" && objects[i].ID == selectedID {
			obj := objects[i]
			selected = &obj
		}
	}

	matched := filters.Apply(objects)
	domain.SortByPriority(matched)

	view := View{
		Objects:     matched,
		Markers:     domain.Markers(matched),
		Selected:    selected,
		Filters:     filters,
		Total:       len(objects),
		Matched:     len(matched),
		TierCounts:  tierCounts,
		DataState:   state,
		LastRefresh: lastRefresh,
		LastError:   lastError,
	}
	e.metrics.SnapshotDuration.Observe(time.Since(start).Seconds())
	return view
}
