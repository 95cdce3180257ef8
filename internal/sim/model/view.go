package model

import (
	"encoding/hex"
	"encoding/json"

	"lukechampine.com/blake3"

	"colonyecon.ai/internal/sim/catalogs"
	"colonyecon.ai/internal/sim/econ"
	"colonyecon.ai/internal/sim/system"
	"colonyecon.ai/internal/sim/tierpoints"
)

// View is the serializable form of a Model.
type View struct {
	ID            string                    `json:"id"`
	Name          string                    `json:"name"`
	Architect     string                    `json:"architect"`
	Reserve       string                    `json:"reserveLevel"`
	UseIncomplete bool                      `json:"useIncomplete"`
	Sites         []SiteView                `json:"sites"`
	TierPoints    tierpoints.TierPoints     `json:"tierPoints"`
	SumEffects    catalogs.SysEffects       `json:"sumEffects"`
	Economies     map[string]int            `json:"economies"`
	Ranked        []tierpoints.EconomyCount `json:"ranked"`
}

type SiteView struct {
	ID             string       `json:"id"`
	Name           string       `json:"name,omitempty"`
	BuildType      string       `json:"buildType"`
	SiteType       string       `json:"siteType"`
	Status         string       `json:"status"`
	Body           string       `json:"body"`
	Primary        string       `json:"primary,omitempty"` // "orbital" or "surface" when the site is a body primary
	ParentLink     string       `json:"parentLink,omitempty"`
	Economies      *econ.Map    `json:"economies,omitempty"`
	PrimaryEconomy econ.Economy `json:"primaryEconomy,omitempty"`
	Intrinsic      econ.Set     `json:"intrinsic"`
	Buffs          system.Buffs `json:"buffs"`
	Audit          econ.Ledger  `json:"economyAudit,omitempty"`
	Links          *LinksView   `json:"links,omitempty"`
}

type LinksView struct {
	Strong    []string                     `json:"strongSites"`
	Weak      []string                     `json:"weakSites"`
	Economies map[string]*system.LinkCount `json:"economies"`
}

func (m *Model) View() View {
	sys := m.System
	v := View{
		ID:            sys.ID,
		Name:          sys.Name,
		Architect:     sys.Architect,
		Reserve:       string(sys.Reserve),
		UseIncomplete: m.Options.UseIncomplete,
		Sites:         make([]SiteView, 0, len(sys.Sites)),
		TierPoints:    m.Summary.TierPoints,
		SumEffects:    m.Summary.SumEffects,
		Economies:     m.Summary.Economies,
		Ranked:        m.Summary.Ranked(),
	}
	for _, s := range sys.Sites {
		sv := SiteView{
			ID:             s.ID,
			Name:           s.Name,
			BuildType:      s.BuildType,
			SiteType:       s.Type.Name,
			Status:         string(s.Status),
			Economies:      s.Economies,
			PrimaryEconomy: s.PrimaryEconomy,
			Intrinsic:      s.Intrinsic,
			Buffs:          s.Buffs,
			Audit:          s.Audit,
		}
		if s.Body != nil {
			sv.Body = s.Body.Name
			if sys.IsPrimary(s) {
				sv.Primary = "surface"
				if s.IsOrbital() {
					sv.Primary = "orbital"
				}
			}
		}
		if s.ParentLink != nil {
			sv.ParentLink = s.ParentLink.ID
		}
		if s.Links != nil {
			sv.Links = &LinksView{
				Strong:    siteIDs(s.Links.Strong),
				Weak:      siteIDs(s.Links.Weak),
				Economies: s.Links.Economies,
			}
		}
		v.Sites = append(v.Sites, sv)
	}
	return v
}

func siteIDs(sites []*system.Site) []string {
	out := make([]string, 0, len(sites))
	for _, s := range sites {
		out = append(out, s.ID)
	}
	return out
}

// Digest fingerprints the resolved view; two rebuilds of the same input give
// the same digest.
func (m *Model) Digest() string {
	b, _ := json.Marshal(m.View())
	sum := blake3.Sum256(b)
	return hex.EncodeToString(sum[:])
}
