package system

import (
	"strings"

	"colonyecon.ai/internal/sim/catalogs"
	"colonyecon.ai/internal/sim/econ"
)

type ReserveLevel string

const (
	ReserveDepleted ReserveLevel = "depleted"
	ReserveLow      ReserveLevel = "low"
	ReserveCommon   ReserveLevel = "common"
	ReserveMajor    ReserveLevel = "major"
	ReservePristine ReserveLevel = "pristine"
)

// ParseReserveLevel defaults to pristine when s is empty. ok is false for an
// unrecognised non-empty value, which also falls back to pristine.
func ParseReserveLevel(s string) (ReserveLevel, bool) {
	switch r := ReserveLevel(strings.ToLower(strings.TrimSpace(s))); r {
	case ReserveDepleted, ReserveLow, ReserveCommon, ReserveMajor, ReservePristine:
		return r, true
	case "":
		return ReservePristine, true
	}
	return ReservePristine, false
}

type Status string

const (
	StatusPlan     Status = "plan"
	StatusBuild    Status = "build"
	StatusComplete Status = "complete"
	StatusDemolish Status = "demolish"
)

func ParseStatus(s string) (Status, bool) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusPlan, StatusBuild, StatusComplete, StatusDemolish:
		return st, true
	case "":
		return StatusPlan, true
	}
	return StatusPlan, false
}

// Counts reports whether a site in this status takes part in a calculation.
// Demolished sites never count; planned and in-progress ones only when
// useIncomplete is set.
func (s Status) Counts(useIncomplete bool) bool {
	switch s {
	case StatusComplete:
		return true
	case StatusPlan, StatusBuild:
		return useIncomplete
	}
	return false
}

type LinkCount struct {
	Strong int `json:"strong"`
	Weak   int `json:"weak"`
}

// Links is only populated on a body's primary ports.
type Links struct {
	Strong    []*Site               `json:"-"`
	Weak      []*Site               `json:"-"`
	Economies map[string]*LinkCount `json:"economies"`
}

func (l *Links) count(inf string) *LinkCount {
	c := l.Economies[inf]
	if c == nil {
		c = &LinkCount{}
		l.Economies[inf] = c
	}
	return c
}

// Buffs records which one-shot buffs a site's resolution granted. Bonuses and
// penalties are tracked in separate sets.
type Buffs struct {
	Body      econ.Set `json:"body"`
	System    econ.Set `json:"system"`
	BodyNeg   econ.Set `json:"bodyNeg"`
	SystemNeg econ.Set `json:"systemNeg"`
}

type Site struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	BuildType string            `json:"buildType"`
	Type      catalogs.SiteType `json:"-"`
	Status    Status            `json:"status"`
	BodyNum   *int              `json:"bodyNum,omitempty"`
	Body      *Body             `json:"-"`

	Economies      *econ.Map    `json:"economies,omitempty"`
	PrimaryEconomy econ.Economy `json:"primaryEconomy,omitempty"`
	Audit          econ.Ledger  `json:"economyAudit,omitempty"`
	Intrinsic      econ.Set     `json:"intrinsic"`
	Buffs          Buffs        `json:"buffs"`

	Links      *Links `json:"links,omitempty"`
	ParentLink *Site  `json:"-"`
}

// Resolved reports whether the economy of s has been computed on this graph.
func (s *Site) Resolved() bool {
	return s.Economies != nil && s.PrimaryEconomy != ""
}

func (s *Site) Counts(useIncomplete bool) bool {
	return s != nil && s.Status.Counts(useIncomplete)
}

func (s *Site) IsOrbital() bool { return s.Type.Orbital }

func (s *Site) Label() string {
	if s.Name != "" {
		return s.Name
	}
	return s.ID
}

type System struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Architect     string       `json:"architect"`
	Reserve       ReserveLevel `json:"reserveLevel"`
	PrimaryPortID string       `json:"primaryPortId,omitempty"`

	Bodies []*Body `json:"bodies"`
	Sites  []*Site `json:"sites"`

	// Derived by BuildBodyMap, in body order.
	BodyMaps []*BodyMap       `json:"-"`
	BodyMap  map[int]*BodyMap `json:"-"`
	Tree     *BodyTree        `json:"-"`
}

func (s *System) Site(id string) *Site {
	for _, st := range s.Sites {
		if st.ID == id {
			return st
		}
	}
	return nil
}

// HasRemnant reports whether any black hole, neutron star or white dwarf is in the system.
func (s *System) HasRemnant() bool {
	for _, b := range s.Bodies {
		if b.Type.IsRemnant() {
			return true
		}
	}
	return false
}

// BodyMapOf returns the body map holding site, or nil.
func (s *System) BodyMapOf(site *Site) *BodyMap {
	if site == nil || site.Body == nil {
		return nil
	}
	bm := s.BodyMap[site.Body.Num]
	if bm == nil || bm.Body != site.Body {
		return nil
	}
	return bm
}

// IsPrimary reports whether site is a primary port of its own body.
func (s *System) IsPrimary(site *Site) bool {
	bm := s.BodyMapOf(site)
	return bm != nil && (bm.OrbitalPrimary == site || bm.SurfacePrimary == site)
}
