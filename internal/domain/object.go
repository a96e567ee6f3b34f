package domain

import (
	"math"
	"time"
)

// SourceKind discriminates the three upstream record shapes a WaterObject
// can originate from. Consumers switch exhaustively on this tag.
type SourceKind string

const (
	KindQualityPoint SourceKind = "quality_point"
	KindRiverLevel   SourceKind = "river_level"
	KindResource     SourceKind = "resource"
)

// ResourceType classifies the kind of water body.
type ResourceType string

const (
	ResourceLake      ResourceType = "lake"
	ResourceReservoir ResourceType = "reservoir"
	ResourceCanal     ResourceType = "canal"
	ResourceRiver     ResourceType = "river"
	ResourceUnknown   ResourceType = "unknown"
)

// WaterType classifies water salinity.
type WaterType string

const (
	WaterFresh    WaterType = "fresh"
	WaterBrackish WaterType = "brackish"
	WaterSaline   WaterType = "saline"
	WaterUnknown  WaterType = "unknown"
)

// Tier is the three-level survey-priority classification derived from the
// priority score.
type Tier string

const (
	TierHigh   Tier = "high"
	TierMedium Tier = "medium"
	TierLow    Tier = "low"
)

// Coordinates is a WGS-84 latitude/longitude pair.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether both components are finite and within geographic
// range. Objects with invalid coordinates stay in tabular views flagged as
// "location unknown" but are excluded from the marker layer.
func (c Coordinates) Valid() bool {
	if math.IsNaN(c.Latitude) || math.IsInf(c.Latitude, 0) {
		return false
	}
	if math.IsNaN(c.Longitude) || math.IsInf(c.Longitude, 0) {
		return false
	}
	return c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180
}

// QualityParameter is one measured water-quality parameter with its
// regulatory background limit.
type QualityParameter struct {
	Name          string  `json:"parameter"`
	Unit          string  `json:"unit"`
	Concentration float64 `json:"concentration"`
	Background    float64 `json:"background"`
}

// Exceeds reports whether the measured concentration exceeds the background
// limit. Exceedance is informational (shown on the detail card); it is not
// folded into the priority score.
func (p QualityParameter) Exceeds() bool {
	return p.Background > 0 && p.Concentration > p.Background
}

// RiverTelemetry carries the level/discharge/temperature readings of a
// river-level post. Fields are nil when the post did not report them.
type RiverTelemetry struct {
	DangerLevelCm *float64 `json:"danger_level_cm,omitempty"`
	ActualLevelCm *float64 `json:"actual_level_cm,omitempty"`
	DischargeM3s  *float64 `json:"actual_discharge_m3s,omitempty"`
	TemperatureC  *float64 `json:"water_temperature_c,omitempty"`
}

// DangerRatio returns actual level over danger level, when both are known
// and the danger level is positive.
func (t RiverTelemetry) DangerRatio() (float64, bool) {
	if t.DangerLevelCm == nil || t.ActualLevelCm == nil || *t.DangerLevelCm <= 0 {
		return 0, false
	}
	return *t.ActualLevelCm / *t.DangerLevelCm, true
}

// WaterObject is the normalized representation every upstream record is
// folded into. Exactly one of Parameters (quality points) or Telemetry
// (river-level posts) is populated; resource objects carry neither.
type WaterObject struct {
	ID           string       `json:"id"`
	SourceKind   SourceKind   `json:"source_kind"`
	DisplayName  string       `json:"display_name"`
	Region       string       `json:"region,omitempty"`
	ResourceType ResourceType `json:"resource_type"`
	WaterType    WaterType    `json:"water_type"`
	HasFauna     bool         `json:"has_fauna"`
	Coordinates  Coordinates  `json:"coordinates"`

	// Condition is the canonical 1 (critical) to 5 (excellent) rating.
	// Nil when the upstream record carried no condition or class.
	Condition *int `json:"condition,omitempty"`

	// RecordDate is the passport or observation date. Zero when unknown.
	RecordDate time.Time `json:"record_date,omitempty"`

	Telemetry  *RiverTelemetry    `json:"telemetry,omitempty"`
	Parameters []QualityParameter `json:"parameters,omitempty"`

	// Derived fields, set by Rescore. Never treated as source-of-truth:
	// callers recompute them from Condition and RecordDate before use.
	Score int  `json:"priority_score"`
	Tier  Tier `json:"priority_tier"`

	NormalizedAt time.Time `json:"normalized_at"`
}

// LocationKnown reports whether the object is eligible for map rendering.
func (o WaterObject) LocationKnown() bool {
	return o.Coordinates.Valid()
}

// ExceedanceCount returns how many quality parameters exceed their
// background limit. Always zero for non-quality objects.
func (o WaterObject) ExceedanceCount() int {
	n := 0
	for _, p := range o.Parameters {
		if p.Exceeds() {
			n++
		}
	}
	return n
}

// IsDangerous reports whether a river-level post is at or near its danger
// level (ratio >= 0.95). Always false for other kinds.
func (o WaterObject) IsDangerous() bool {
	if o.SourceKind != KindRiverLevel || o.Telemetry == nil {
		return false
	}
	ratio, ok := o.Telemetry.DangerRatio()
	return ok && ratio >= 0.95
}
