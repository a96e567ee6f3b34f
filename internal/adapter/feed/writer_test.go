package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydroatlas/hydroatlas/internal/domain"
)

func TestSerializeToMessage(t *testing.T) {
	refreshedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	obj := domain.WaterObject{
		ID:          "res-3",
		SourceKind:  domain.KindResource,
		DisplayName: "Озеро Балхаш",
		Region:      "Карагандинская область",
		Coordinates: domain.Coordinates{Latitude: 46.5, Longitude: 74.5},
		Score:       35,
		Tier:        domain.TierHigh,
	}

	msg, err := serializeToMessage(obj, refreshedAt)
	require.NoError(t, err)

	assert.Equal(t, []byte("res-3"), msg.Key)
	assert.Contains(t, string(msg.Value), `"display_name":"Озеро Балхаш"`)
	assert.Contains(t, string(msg.Value), `"priority_tier":"high"`)
	assert.Len(t, msg.Headers, 2)
	assert.Equal(t, "source_kind", msg.Headers[0].Key)
	assert.Equal(t, []byte("resource"), msg.Headers[0].Value)
	assert.Equal(t, "refreshed_at", msg.Headers[1].Key)
	assert.Equal(t, []byte("2025-06-01T12:00:00Z"), msg.Headers[1].Value)
}
