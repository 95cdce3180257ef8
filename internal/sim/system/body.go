package system

import (
	"encoding/json"
	"strings"
)

type BodyType string

const (
	BlackHole       BodyType = "bh"
	NeutronStar     BodyType = "ns"
	WhiteDwarf      BodyType = "wd"
	Star            BodyType = "st"
	AmmoniaWorld    BodyType = "ac"
	EarthLike       BodyType = "elw"
	WaterWorld      BodyType = "ww"
	GasGiant        BodyType = "gg"
	HighMetal       BodyType = "hmc"
	Icy             BodyType = "icy"
	Rocky           BodyType = "rb"
	RockyIce        BodyType = "ri"
	AsteroidCluster BodyType = "a"
	Barycenter      BodyType = "bc"
	UnknownType     BodyType = "un"
)

var bodyTypes = map[BodyType]struct{}{
	BlackHole: {}, NeutronStar: {}, WhiteDwarf: {}, Star: {},
	AmmoniaWorld: {}, EarthLike: {}, WaterWorld: {}, GasGiant: {},
	HighMetal: {}, Icy: {}, Rocky: {}, RockyIce: {},
	AsteroidCluster: {}, Barycenter: {}, UnknownType: {},
}

// ParseBodyType maps unknown strings to UnknownType.
func ParseBodyType(s string) BodyType {
	t := BodyType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := bodyTypes[t]; ok {
		return t
	}
	return UnknownType
}

// IsRemnant reports black holes, neutron stars and white dwarfs.
func (t BodyType) IsRemnant() bool {
	return t == BlackHole || t == NeutronStar || t == WhiteDwarf
}

func (t BodyType) IsStellar() bool { return t == Star || t.IsRemnant() }

type Feature uint16

const (
	FeatureBio Feature = 1 << iota
	FeatureGeo
	FeatureRings
	FeatureVolcanism
	FeatureTerraformable
	FeatureTidal
	FeatureLandable
	FeatureAtmosphere
)

var featureNames = []struct {
	f    Feature
	name string
}{
	{FeatureBio, "bio"},
	{FeatureGeo, "geo"},
	{FeatureRings, "rings"},
	{FeatureVolcanism, "volcanism"},
	{FeatureTerraformable, "terraformable"},
	{FeatureTidal, "tidal"},
	{FeatureLandable, "landable"},
	{FeatureAtmosphere, "atmos"},
}

// ParseFeatures returns the feature set plus any names it did not recognise.
func ParseFeatures(names []string) (Feature, []string) {
	var out Feature
	var unknown []string
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		found := false
		for _, fn := range featureNames {
			if fn.name == n {
				out |= fn.f
				found = true
				break
			}
		}
		if !found && n != "" {
			unknown = append(unknown, n)
		}
	}
	return out, unknown
}

func (f Feature) Names() []string {
	var out []string
	for _, fn := range featureNames {
		if f&fn.f != 0 {
			out = append(out, fn.name)
		}
	}
	return out
}

func (f Feature) MarshalJSON() ([]byte, error) {
	names := f.Names()
	if names == nil {
		names = []string{}
	}
	return json.Marshal(names)
}

type Body struct {
	Num      int      `json:"num"`
	Name     string   `json:"name"`
	Type     BodyType `json:"type"`
	Features Feature  `json:"features"`
	// Parents lists ancestor body ids, nearest first.
	Parents []int `json:"parents,omitempty"`

	Radius      float64 `json:"radius,omitempty"`
	Temperature float64 `json:"temp,omitempty"`
	Gravity     float64 `json:"gravity,omitempty"`
}

func (b *Body) Has(f Feature) bool { return b != nil && b.Features&f != 0 }

// UnknownBodyNum identifies the synthetic body that collects unplaced sites.
const UnknownBodyNum = -1

func NewUnknownBody() *Body {
	return &Body{Num: UnknownBodyNum, Name: "Unknown", Type: UnknownType}
}

var bodyTypeNames = map[BodyType]string{
	BlackHole:       "black hole",
	NeutronStar:     "neutron star",
	WhiteDwarf:      "white dwarf",
	Star:            "star",
	AmmoniaWorld:    "ammonia world",
	EarthLike:       "earth-like world",
	WaterWorld:      "water world",
	GasGiant:        "gas giant",
	HighMetal:       "high metal content world",
	Icy:             "icy body",
	Rocky:           "rocky body",
	RockyIce:        "rocky ice world",
	AsteroidCluster: "asteroid cluster",
	Barycenter:      "barycenter",
	UnknownType:     "unknown",
}

func (t BodyType) DisplayName() string {
	if n, ok := bodyTypeNames[t]; ok {
		return n
	}
	return string(t)
}
