package domain

import "time"

const (
	conditionMin     = 1
	conditionMax     = 5
	conditionDefault = 3

	// conditionWeight makes the condition term dominate the per-year aging
	// term: one condition step is worth three years of record age.
	conditionWeight = 3

	tierHighMin   = 12
	tierMediumMin = 6
)

// ClampCondition forces a condition value into the canonical [1,5] range.
// Out-of-range upstream values are clamped rather than rejected.
func ClampCondition(c int) int {
	if c < conditionMin {
		return conditionMin
	}
	if c > conditionMax {
		return conditionMax
	}
	return c
}

// ComputeScore calculates the survey-priority score from a condition rating
// and a record date:
//
//	score = (6 - condition) * 3 + ageYears
//
// A nil condition defaults to the midpoint 3. A zero recordDate counts as
// age 0, as does a record date in the future relative to now. The caller
// always supplies now, keeping the function deterministic.
func ComputeScore(condition *int, recordDate, now time.Time) int {
	c := conditionDefault
	if condition != nil {
		c = ClampCondition(*condition)
	}
	return (conditionMax+1-c)*conditionWeight + ageYears(recordDate, now)
}

// Classify maps a priority score onto the three-level tier scale.
func Classify(score int) Tier {
	switch {
	case score >= tierHighMin:
		return TierHigh
	case score >= tierMediumMin:
		return TierMedium
	default:
		return TierLow
	}
}

// Rescore returns a copy of the object with Score and Tier recomputed from
// its current Condition and RecordDate.
func Rescore(obj WaterObject, now time.Time) WaterObject {
	obj.Score = ComputeScore(obj.Condition, obj.RecordDate, now)
	obj.Tier = Classify(obj.Score)
	return obj
}

// RescoreAll rescores every object against the same instant, so one render
// pass never mixes scores computed at different times.
func RescoreAll(objects []WaterObject, now time.Time) []WaterObject {
	out := make([]WaterObject, len(objects))
	for i, obj := range objects {
		out[i] = Rescore(obj, now)
	}
	return out
}

// ageYears counts full calendar years elapsed between recordDate and now,
// never negative. A zero recordDate yields 0.
func ageYears(recordDate, now time.Time) int {
	if recordDate.IsZero() || !recordDate.Before(now) {
		return 0
	}
	years := now.Year() - recordDate.Year()
	anniversary := recordDate.AddDate(years, 0, 0)
	if anniversary.After(now) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}
