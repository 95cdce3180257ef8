package tierpoints

import (
	"sort"

	"colonyecon.ai/internal/sim/catalogs"
	"colonyecon.ai/internal/sim/system"
	"colonyecon.ai/internal/sim/tuning"
)

// TierPoints is the system construction budget. Negative values are a deficit.
type TierPoints struct {
	Tier2 int `json:"tier2"`
	Tier3 int `json:"tier3"`
}

func (tp *TierPoints) add(tier, n int) {
	switch tier {
	case 2:
		tp.Tier2 += n
	case 3:
		tp.Tier3 += n
	}
}

type EconomyCount struct {
	Economy string `json:"economy"`
	Count   int    `json:"count"`
}

// SiteCost is what one site was charged against the budget.
type SiteCost struct {
	SiteID  string `json:"siteId"`
	Tier    int    `json:"tier"`
	Nominal int    `json:"nominal"`
	Charged int    `json:"charged"`
}

type Summary struct {
	TierPoints TierPoints          `json:"tierPoints"`
	SumEffects catalogs.SysEffects `json:"sumEffects"`
	Economies  map[string]int      `json:"economies"`
	Costs      []SiteCost          `json:"costs,omitempty"`
}

// Aggregate walks the sites of sys that pass the completion filter. Each site
// pays its needs cost, except the system's primary port, and adds its gives
// grant and static effects. Taxable starports (tier above 1) past the free
// allowance pay more: tier-3 cost is multiplied by 1+n and tier-2 cost grows by
// n*Tier2Step, n counting starports past the allowance.
func Aggregate(sys *system.System, useIncomplete bool, tax tuning.TierTax) Summary {
	sum := Summary{Economies: map[string]int{}}
	taxable := 0
	for _, s := range sys.Sites {
		if !s.Counts(useIncomplete) {
			continue
		}
		t := s.Type
		sum.SumEffects = sum.SumEffects.Add(t.Effects)
		if key := histogramKey(s); key != "" {
			sum.Economies[key]++
		}

		if s.ID != sys.PrimaryPortID && t.Needs.Count > 0 {
			cost := t.Needs.Count
			if t.BuildClass == catalogs.ClassStarport && t.Tier > 1 {
				taxable++
				if n := taxable - tax.FreeStarports; n > 0 {
					switch t.Tier {
					case 3:
						cost *= 1 + n
					case 2:
						cost += tax.Tier2Step * n
					}
				}
			}
			sum.TierPoints.add(t.Needs.Tier, -cost)
			sum.Costs = append(sum.Costs, SiteCost{SiteID: s.ID, Tier: t.Needs.Tier, Nominal: t.Needs.Count, Charged: cost})
		}
		if t.Gives.Count > 0 {
			sum.TierPoints.add(t.Gives.Tier, t.Gives.Count)
		}
	}
	return sum
}

func histogramKey(s *system.Site) string {
	if s.PrimaryEconomy != "" {
		return string(s.PrimaryEconomy)
	}
	switch s.Type.Inf {
	case "", catalogs.InfNone, catalogs.InfColony:
		return ""
	}
	return s.Type.Inf
}

// Ranked orders the histogram by count descending, then by name.
func (s Summary) Ranked() []EconomyCount {
	out := make([]EconomyCount, 0, len(s.Economies))
	for k, n := range s.Economies {
		out = append(out, EconomyCount{Economy: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Economy < out[j].Economy
	})
	return out
}
