package domain

import "strings"

// FaunaFilter is the three-state fauna dimension.
type FaunaFilter string

const (
	FaunaAny     FaunaFilter = ""
	FaunaPresent FaunaFilter = "present"
	FaunaAbsent  FaunaFilter = "absent"
)

// Filters holds one value per filter dimension. The zero value of every
// dimension means "all" (that predicate always matches). The overall filter
// is the logical AND of all active predicates.
type Filters struct {
	Query        string       `json:"query,omitempty"`
	Region       string       `json:"region,omitempty"`
	ResourceType ResourceType `json:"resource_type,omitempty"`
	WaterType    WaterType    `json:"water_type,omitempty"`
	Fauna        FaunaFilter  `json:"fauna,omitempty"`
	Condition    int          `json:"condition,omitempty"`
	Kind         SourceKind   `json:"kind,omitempty"`
	Tier         Tier         `json:"tier,omitempty"`
}

// Matches reports whether the object passes every active predicate.
// Evaluation short-circuits on the first failing dimension; each predicate
// is side-effect-free, so the order never changes the result.
func (f Filters) Matches(obj WaterObject) bool {
	return matchesQuery(obj, f.Query) &&
		matchesRegion(obj, f.Region) &&
		matchesResourceType(obj, f.ResourceType) &&
		matchesWaterType(obj, f.WaterType) &&
		matchesFauna(obj, f.Fauna) &&
		matchesCondition(obj, f.Condition) &&
		matchesKind(obj, f.Kind) &&
		matchesTier(obj, f.Tier)
}

// Apply returns the objects passing the filter, preserving input order.
func (f Filters) Apply(objects []WaterObject) []WaterObject {
	out := make([]WaterObject, 0, len(objects))
	for _, obj := range objects {
		if f.Matches(obj) {
			out = append(out, obj)
		}
	}
	return out
}

// matchesQuery does a case-insensitive substring match against the display
// name and, for quality points, the first parameter name. An empty query
// matches everything.
func matchesQuery(obj WaterObject, query string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	if strings.Contains(strings.ToLower(obj.DisplayName), query) {
		return true
	}
	if len(obj.Parameters) > 0 &&
		strings.Contains(strings.ToLower(obj.Parameters[0].Name), query) {
		return true
	}
	return false
}

func matchesRegion(obj WaterObject, region string) bool {
	return region == "" || obj.Region == region
}

func matchesResourceType(obj WaterObject, rt ResourceType) bool {
	return rt == "" || obj.ResourceType == rt
}

func matchesWaterType(obj WaterObject, wt WaterType) bool {
	return wt == "" || obj.WaterType == wt
}

func matchesFauna(obj WaterObject, f FaunaFilter) bool {
	switch f {
	case FaunaPresent:
		return obj.HasFauna
	case FaunaAbsent:
		return !obj.HasFauna
	default:
		return true
	}
}

// matchesCondition matches the canonical condition category exactly.
// Objects with an unknown condition only match the "all" setting.
func matchesCondition(obj WaterObject, condition int) bool {
	if condition == 0 {
		return true
	}
	return obj.Condition != nil && *obj.Condition == condition
}

func matchesKind(obj WaterObject, kind SourceKind) bool {
	return kind == "" || obj.SourceKind == kind
}

// matchesTier matches the derived priority tier. Scoring runs eagerly for
// the whole dataset before predicate evaluation, so Tier is always set here.
func matchesTier(obj WaterObject, tier Tier) bool {
	return tier == "" || obj.Tier == tier
}
