package domain

import (
	"slices"
	"strings"
)

// Compare is a total-order comparator over water objects: priority tier
// descending, then raw score descending, then display name ascending. The
// name tie-break keeps repeated renders of exact ties deterministic.
func Compare(a, b WaterObject) int {
	if d := tierWeight(b.Tier) - tierWeight(a.Tier); d != 0 {
		return d
	}
	if d := b.Score - a.Score; d != 0 {
		return d
	}
	return strings.Compare(a.DisplayName, b.DisplayName)
}

// SortByPriority orders objects in place using Compare. The sort is stable,
// so an already-sorted slice comes back unchanged.
func SortByPriority(objects []WaterObject) {
	slices.SortStableFunc(objects, Compare)
}

func tierWeight(t Tier) int {
	switch t {
	case TierHigh:
		return 3
	case TierMedium:
		return 2
	case TierLow:
		return 1
	default:
		return 0
	}
}
