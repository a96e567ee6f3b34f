package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompare(t *testing.T) {
	high := WaterObject{ID: "a", DisplayName: "А", Score: 20, Tier: TierHigh}
	highLower := WaterObject{ID: "b", DisplayName: "Б", Score: 14, Tier: TierHigh}
	medium := WaterObject{ID: "c", DisplayName: "В", Score: 8, Tier: TierMedium}
	low := WaterObject{ID: "d", DisplayName: "Г", Score: 3, Tier: TierLow}

	t.Run("tier dominates score", func(t *testing.T) {
		assert.Negative(t, Compare(highLower, medium))
		assert.Negative(t, Compare(medium, low))
		assert.Positive(t, Compare(low, high))
	})

	t.Run("score breaks ties within a tier", func(t *testing.T) {
		assert.Negative(t, Compare(high, highLower))
		assert.Positive(t, Compare(highLower, high))
	})

	t.Run("name breaks exact ties", func(t *testing.T) {
		a := WaterObject{DisplayName: "Арал", Score: 8, Tier: TierMedium}
		b := WaterObject{DisplayName: "Балхаш", Score: 8, Tier: TierMedium}
		assert.Negative(t, Compare(a, b))
		assert.Positive(t, Compare(b, a))
	})

	t.Run("identical objects compare equal", func(t *testing.T) {
		assert.Zero(t, Compare(medium, medium))
	})

	t.Run("antisymmetric", func(t *testing.T) {
		objs := []WaterObject{high, highLower, medium, low}
		for _, a := range objs {
			for _, b := range objs {
				assert.Equal(t, Compare(a, b), -Compare(b, a))
			}
		}
	})

	t.Run("transitive over a sample", func(t *testing.T) {
		objs := []WaterObject{high, highLower, medium, low}
		for _, a := range objs {
			for _, b := range objs {
				for _, c := range objs {
					if Compare(a, b) < 0 && Compare(b, c) < 0 {
						assert.Negative(t, Compare(a, c))
					}
				}
			}
		}
	})
}

func TestSortByPriority(t *testing.T) {
	t.Run("orders by tier then score then name", func(t *testing.T) {
		objs := []WaterObject{
			{ID: "low", DisplayName: "Г", Score: 3, Tier: TierLow},
			{ID: "high-b", DisplayName: "Б", Score: 14, Tier: TierHigh},
			{ID: "medium", DisplayName: "В", Score: 8, Tier: TierMedium},
			{ID: "high-a", DisplayName: "А", Score: 20, Tier: TierHigh},
		}

		SortByPriority(objs)

		assert.Equal(t, []string{"high-a", "high-b", "medium", "low"}, ids(objs))
	})

	t.Run("sorting a sorted slice is a no-op", func(t *testing.T) {
		objs := []WaterObject{
			{ID: "1", DisplayName: "Арал", Score: 8, Tier: TierMedium},
			{ID: "2", DisplayName: "Арал", Score: 8, Tier: TierMedium}, // exact tie
			{ID: "3", DisplayName: "Балхаш", Score: 8, Tier: TierMedium},
		}

		SortByPriority(objs)
		first := ids(objs)
		SortByPriority(objs)

		assert.Equal(t, first, ids(objs))
	})
}
