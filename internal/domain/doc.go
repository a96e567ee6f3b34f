// Package domain models water-resource monitoring objects.
//
// # Data Sources
//
// Records arrive from three upstream endpoints of the hydrology backend,
// each with its own shape:
//
//   - water-quality observation points: free-text description, a 1-5(+)
//     water class, and a list of measured parameters with regulatory
//     background limits,
//   - river-level posts (hydrological posts): level/discharge/temperature
//     telemetry with a danger level threshold and a technical condition,
//   - general resource objects (lakes, reservoirs, canals): a passport with
//     region, resource/water type, fauna presence, and technical condition.
//
// The normalizer is the sole translation boundary: it folds all three shapes
// into [WaterObject], a discriminated record tagged by [SourceKind]. Every
// consumer switches on the tag instead of probing for field presence.
//
// # Condition Scale
//
// The upstream data is inconsistent about scale direction, so ingestion
// normalizes everything onto one canonical axis:
//
//	1 = critical/worst ... 5 = excellent/best
//
// Technical condition values already follow this axis and are clamped into
// range. Water-quality class runs the opposite way (1 = best, 5+ = worst)
// and is inverted during normalization: condition = clamp(6 - class).
//
// # Survey Priority
//
// Each object carries a derived survey-priority score:
//
//	score = (6 - condition) * 3 + ageYears
//
// where condition defaults to the midpoint 3 when unknown and ageYears is
// the number of full years since the passport/observation date (never
// negative). The condition term dominates the linear aging term: a
// structurally critical object outranks an old-but-sound one at moderate
// age gaps. Tiers: score >= 12 high, >= 6 medium, otherwise low.
//
// Scores are never persisted as source-of-truth; callers recompute them
// from current field values via [Rescore] before rendering or filtering.
package domain
