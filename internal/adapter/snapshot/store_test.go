package snapshot

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydroatlas/hydroatlas/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "objects.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleObjects() []domain.WaterObject {
	condition := 2
	level := 480.0
	return []domain.WaterObject{
		{
			ID:          "res-3",
			SourceKind:  domain.KindResource,
			DisplayName: "Озеро Балхаш",
			Region:      "Карагандинская область",
			Coordinates: domain.Coordinates{Latitude: 46.5, Longitude: 74.5},
			Condition:   &condition,
			RecordDate:  time.Date(2005, 3, 10, 0, 0, 0, 0, time.UTC),
			Score:       32,
			Tier:        domain.TierHigh,
		},
		{
			ID:          "river-7",
			SourceKind:  domain.KindRiverLevel,
			DisplayName: "Гидропост Семей",
			Coordinates: domain.Coordinates{Latitude: 50.4, Longitude: 80.25},
			Telemetry:   &domain.RiverTelemetry{ActualLevelCm: &level},
		},
	}
}

func TestStoreSaveAndLoad(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Save(sampleObjects()))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	assert.Equal(t, "res-3", loaded[0].ID)
	assert.Equal(t, "Озеро Балхаш", loaded[0].DisplayName)
	require.NotNil(t, loaded[0].Condition)
	assert.Equal(t, 2, *loaded[0].Condition)
	assert.Equal(t, 32, loaded[0].Score)

	require.NotNil(t, loaded[1].Telemetry)
	require.NotNil(t, loaded[1].Telemetry.ActualLevelCm)
	assert.Equal(t, 480.0, *loaded[1].Telemetry.ActualLevelCm)
}

func TestStoreSaveReplacesWholesale(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(sampleObjects()))

	require.NoError(t, store.Save(sampleObjects()[:1]))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "res-3", loaded[0].ID)
}

func TestStoreLoadEmpty(t *testing.T) {
	store := newTestStore(t)

	loaded, err := store.Load()

	require.NoError(t, err)
	assert.Empty(t, loaded)
}
