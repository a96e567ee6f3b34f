package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// PlaceholderName is used when a record carries neither a name nor a usable
// description line.
const PlaceholderName = "Unnamed object"

// RawQualityPoint is the wire shape of a water-quality observation point.
type RawQualityPoint struct {
	ID           json.Number          `json:"id"`
	Latitude     *float64             `json:"latitude"`
	Longitude    *float64             `json:"longitude"`
	Description  string               `json:"description"`
	WaterClass   int                  `json:"water_class"`
	LocationInfo string               `json:"location_info"`
	Purpose      string               `json:"purpose"`
	Fauna        string               `json:"fauna"`
	ObservedAt   string               `json:"date"`
	Parameters   []RawQualityParameter `json:"parameters"`
}

// RawQualityParameter is one measured parameter row of a quality point.
type RawQualityParameter struct {
	Index         string  `json:"index"`
	Parameter     string  `json:"parameter"`
	Unit          string  `json:"unit"`
	Concentration float64 `json:"concentration"`
	Background    float64 `json:"background"`
}

// RawRiverLevelPoint is the wire shape of a hydrological post.
type RawRiverLevelPoint struct {
	ID                 json.Number `json:"id"`
	Name               string      `json:"name"`
	Region             string      `json:"region"`
	ResourceType       string      `json:"resource_type"`
	WaterType          string      `json:"water_type"`
	Latitude           *float64    `json:"latitude"`
	Longitude          *float64    `json:"longitude"`
	TechnicalCondition *int        `json:"technical_condition"`
	DangerLevelCm      *float64    `json:"danger_level_cm"`
	ActualLevelCm      *float64    `json:"actual_level_cm"`
	DischargeM3s       *float64    `json:"actual_discharge_m3s"`
	TemperatureC       *float64    `json:"water_temperature_C"`
	ObservedAt         string      `json:"date"`
	WaterObjectCode    string      `json:"water_object_code"`
}

// RawResourceObject is the wire shape of a general resource object passport.
type RawResourceObject struct {
	ID                 json.Number `json:"id"`
	Name               string      `json:"name"`
	Region             string      `json:"region"`
	ResourceType       string      `json:"resource_type"`
	WaterType          string      `json:"water_type"`
	Fauna              bool        `json:"fauna"`
	PassportDate       string      `json:"passport_date"`
	TechnicalCondition *int        `json:"technical_condition"`
	Latitude           *float64    `json:"latitude"`
	Longitude          *float64    `json:"longitude"`
	PdfURL             string      `json:"pdf_url"`
}

// NormalizeQualityPoint folds a raw quality point into a WaterObject.
// The water class (1 = best) is inverted onto the canonical condition axis
// (1 = critical): condition = clamp(6 - class).
func NormalizeQualityPoint(raw RawQualityPoint) (WaterObject, error) {
	id, err := requireID(KindQualityPoint, raw.ID)
	if err != nil {
		return WaterObject{}, err
	}
	coords, err := requireCoordinates(KindQualityPoint, raw.Latitude, raw.Longitude)
	if err != nil {
		return WaterObject{}, err
	}

	var condition *int
	if raw.WaterClass != 0 {
		c := ClampCondition(conditionMax + 1 - raw.WaterClass)
		condition = &c
	}

	params := make([]QualityParameter, 0, len(raw.Parameters))
	for _, p := range raw.Parameters {
		params = append(params, QualityParameter{
			Name:          strings.TrimSpace(p.Parameter),
			Unit:          strings.TrimSpace(p.Unit),
			Concentration: p.Concentration,
			Background:    p.Background,
		})
	}

	return WaterObject{
		ID:           "quality-" + id,
		SourceKind:   KindQualityPoint,
		DisplayName:  firstLine(raw.Description),
		Region:       strings.TrimSpace(raw.LocationInfo),
		ResourceType: ResourceUnknown,
		WaterType:    WaterUnknown,
		HasFauna:     strings.TrimSpace(raw.Fauna) != "",
		Coordinates:  coords,
		Condition:    condition,
		RecordDate:   parseDate(raw.ObservedAt),
		Parameters:   params,
		NormalizedAt: clock.Now(),
	}, nil
}

// NormalizeRiverLevel folds a raw hydrological post into a WaterObject.
// Its technical condition already follows the canonical axis and is only
// clamped into range.
func NormalizeRiverLevel(raw RawRiverLevelPoint) (WaterObject, error) {
	id, err := requireID(KindRiverLevel, raw.ID)
	if err != nil {
		return WaterObject{}, err
	}
	coords, err := requireCoordinates(KindRiverLevel, raw.Latitude, raw.Longitude)
	if err != nil {
		return WaterObject{}, err
	}

	return WaterObject{
		ID:           "river-" + id,
		SourceKind:   KindRiverLevel,
		DisplayName:  nameOrPlaceholder(raw.Name),
		Region:       strings.TrimSpace(raw.Region),
		ResourceType: ParseResourceType(raw.ResourceType),
		WaterType:    ParseWaterType(raw.WaterType),
		Coordinates:  coords,
		Condition:    clampOptional(raw.TechnicalCondition),
		RecordDate:   parseDate(raw.ObservedAt),
		Telemetry: &RiverTelemetry{
			DangerLevelCm: raw.DangerLevelCm,
			ActualLevelCm: raw.ActualLevelCm,
			DischargeM3s:  raw.DischargeM3s,
			TemperatureC:  raw.TemperatureC,
		},
		NormalizedAt: clock.Now(),
	}, nil
}

// NormalizeResource folds a raw resource-object passport into a WaterObject.
func NormalizeResource(raw RawResourceObject) (WaterObject, error) {
	id, err := requireID(KindResource, raw.ID)
	if err != nil {
		return WaterObject{}, err
	}
	coords, err := requireCoordinates(KindResource, raw.Latitude, raw.Longitude)
	if err != nil {
		return WaterObject{}, err
	}

	return WaterObject{
		ID:           "res-" + id,
		SourceKind:   KindResource,
		DisplayName:  nameOrPlaceholder(raw.Name),
		Region:       strings.TrimSpace(raw.Region),
		ResourceType: ParseResourceType(raw.ResourceType),
		WaterType:    ParseWaterType(raw.WaterType),
		HasFauna:     raw.Fauna,
		Coordinates:  coords,
		Condition:    clampOptional(raw.TechnicalCondition),
		RecordDate:   parseDate(raw.PassportDate),
		NormalizedAt: clock.Now(),
	}, nil
}

// ParseResourceType maps the upstream resource-type vocabulary (Russian or
// already-normalized English) onto the ResourceType enum.
func ParseResourceType(value string) ResourceType {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "озеро", string(ResourceLake):
		return ResourceLake
	case "водохранилище", string(ResourceReservoir):
		return ResourceReservoir
	case "канал", string(ResourceCanal):
		return ResourceCanal
	case "река", string(ResourceRiver):
		return ResourceRiver
	default:
		return ResourceUnknown
	}
}

// ParseWaterType maps the upstream water-type vocabulary onto the WaterType
// enum. The legacy "непресная" (non-fresh) value maps to brackish.
func ParseWaterType(value string) WaterType {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "пресная", string(WaterFresh):
		return WaterFresh
	case "непресная", "солоноватая", string(WaterBrackish):
		return WaterBrackish
	case "соленая", "солёная", string(WaterSaline):
		return WaterSaline
	default:
		return WaterUnknown
	}
}

func requireID(kind SourceKind, id json.Number) (string, error) {
	s := strings.TrimSpace(id.String())
	if s == "" {
		return "", malformed(kind, "id", "missing")
	}
	return s, nil
}

func requireCoordinates(kind SourceKind, lat, lon *float64) (Coordinates, error) {
	if lat == nil {
		return Coordinates{}, malformed(kind, "latitude", "missing")
	}
	if lon == nil {
		return Coordinates{}, malformed(kind, "longitude", "missing")
	}
	// Out-of-range values are kept: the object stays in tabular views as
	// "location unknown" and is excluded from the marker layer.
	return Coordinates{Latitude: *lat, Longitude: *lon}, nil
}

// firstLine extracts the text before the first embedded line break, used as
// the display name of description-only records.
func firstLine(description string) string {
	line, _, _ := strings.Cut(description, "\n")
	line = strings.TrimRight(line, "\r")
	line = strings.TrimSpace(line)
	if line == "" {
		return PlaceholderName
	}
	return line
}

func nameOrPlaceholder(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return PlaceholderName
	}
	return name
}

func clampOptional(condition *int) *int {
	if condition == nil {
		return nil
	}
	c := ClampCondition(*condition)
	return &c
}

// parseDate accepts the upstream ISO date (with or without a time portion).
// The date is optional; unparseable values yield the zero time.
func parseDate(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
