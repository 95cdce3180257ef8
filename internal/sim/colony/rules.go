package colony

import (
	"colonyecon.ai/internal/sim/econ"
	"colonyecon.ai/internal/sim/system"
)

// Economies a colony port gets from the type of the body it sits on.
var bodyTypeEconomies = map[system.BodyType][]econ.Economy{
	system.BlackHole:       {econ.HighTech, econ.Tourism},
	system.NeutronStar:     {econ.HighTech, econ.Tourism},
	system.WhiteDwarf:      {econ.HighTech, econ.Tourism},
	system.Star:            {econ.Military},
	system.AmmoniaWorld:    {econ.HighTech, econ.Tourism},
	system.EarthLike:       {econ.Agriculture, econ.HighTech, econ.Military, econ.Tourism},
	system.WaterWorld:      {econ.Agriculture, econ.Tourism},
	system.GasGiant:        {econ.HighTech, econ.Industrial},
	system.HighMetal:       {econ.Extraction},
	system.Icy:             {econ.Industrial},
	system.Rocky:           {econ.Refinery},
	system.RockyIce:        {econ.Industrial, econ.Refinery},
	system.AsteroidCluster: {econ.Extraction},
}

type trait struct {
	economy econ.Economy
	reason  string
}

// colonyTraits lists the body-derived economies of a colony site, each once.
func colonyTraits(b *system.Body) []trait {
	if b == nil {
		return nil
	}
	var out []trait
	var seen econ.Set
	for _, e := range bodyTypeEconomies[b.Type] {
		out = append(out, trait{economy: e, reason: "body type: " + b.Type.DisplayName()})
		seen = seen.With(e)
	}
	if b.Has(system.FeatureRings) && !seen.Has(econ.Extraction) {
		out = append(out, trait{economy: econ.Extraction, reason: "body has rings"})
	}
	return out
}

func traitSet(b *system.Body) econ.Set {
	var s econ.Set
	for _, t := range colonyTraits(b) {
		s = s.With(t.economy)
	}
	return s
}

// Body-type buffs on top of the baseline.
var bodyTypeBuffs = map[system.BodyType][]econ.Economy{
	system.EarthLike: {econ.Agriculture, econ.Tourism},
}

var featureBuffs = []struct {
	feature   system.Feature
	reason    string
	economies []econ.Economy
}{
	{system.FeatureBio, "biological signals", []econ.Economy{econ.Agriculture, econ.HighTech, econ.Tourism}},
	{system.FeatureGeo, "geological signals", []econ.Economy{econ.HighTech, econ.Tourism}},
	{system.FeatureTerraformable, "terraformable", []econ.Economy{econ.Agriculture}},
	{system.FeatureVolcanism, "volcanism", []econ.Economy{econ.Extraction}},
}

// Economies moved by the system reserve level.
var reserveEconomies = []econ.Economy{econ.Industrial, econ.Extraction, econ.Refinery}
