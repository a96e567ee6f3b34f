package domain

// Marker is the map-layer projection of a water object: position plus a
// classification-derived color and a kind label rendered inside the pin.
type Marker struct {
	ID          string      `json:"id"`
	Coordinates Coordinates `json:"coordinates"`
	Color       string      `json:"color"`
	Label       string      `json:"label"`
	Tier        Tier        `json:"priority_tier"`

	// Pulse marks objects needing visual emphasis: critical condition or a
	// river post at its danger level.
	Pulse bool `json:"pulse,omitempty"`
}

// Condition color ramp on the canonical axis (1 = critical ... 5 = excellent).
var conditionColors = map[int]string{
	1: "#EF4444", // red
	2: "#F97316", // orange
	3: "#F59E0B", // amber
	4: "#84CC16", // lime
	5: "#10B981", // green
}

const (
	colorAmber   = "#F59E0B"
	colorRed     = "#EF4444"
	colorDefault = "#3B82F6" // blue, no classification available
)

// MarkerFor builds the marker projection for an object. It returns false
// when the object has no valid coordinates and must stay off the map layer.
func MarkerFor(obj WaterObject) (Marker, bool) {
	if !obj.LocationKnown() {
		return Marker{}, false
	}
	return Marker{
		ID:          obj.ID,
		Coordinates: obj.Coordinates,
		Color:       markerColor(obj),
		Label:       markerLabel(obj.SourceKind),
		Tier:        obj.Tier,
		Pulse:       markerPulse(obj),
	}, true
}

// markerColor picks the pin color from the condition rating; river posts
// without a rating fall back to their danger-level ratio.
func markerColor(obj WaterObject) string {
	if obj.Condition != nil {
		if c, ok := conditionColors[*obj.Condition]; ok {
			return c
		}
	}
	if obj.SourceKind == KindRiverLevel && obj.Telemetry != nil {
		if ratio, ok := obj.Telemetry.DangerRatio(); ok {
			if ratio >= 0.95 {
				return colorRed
			}
			if ratio >= 0.8 {
				return colorAmber
			}
		}
	}
	return colorDefault
}

// markerLabel: Q = quality point, H = hydrological post, W = water body.
func markerLabel(kind SourceKind) string {
	switch kind {
	case KindQualityPoint:
		return "Q"
	case KindRiverLevel:
		return "H"
	default:
		return "W"
	}
}

func markerPulse(obj WaterObject) bool {
	if obj.Condition != nil && *obj.Condition == conditionMin {
		return true
	}
	return obj.IsDangerous()
}

// Markers projects every mappable object in the slice.
func Markers(objects []WaterObject) []Marker {
	out := make([]Marker, 0, len(objects))
	for _, obj := range objects {
		if m, ok := MarkerFor(obj); ok {
			out = append(out, m)
		}
	}
	return out
}
