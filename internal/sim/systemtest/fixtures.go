// Package systemtest holds fixtures for tests that drive the resolver through
// raw system records.
package systemtest

import (
	"testing"

	"colonyecon.ai/internal/sim/catalogs"
	"colonyecon.ai/internal/sim/system"
)

func port(name, build string, class catalogs.BuildClass, tier int, orbital bool, inf string, needs, gives catalogs.TierCost) catalogs.SiteType {
	st := catalogs.SiteType{
		Name:       name,
		BuildTypes: []string{build},
		BuildClass: class,
		Tier:       tier,
		Orbital:    orbital,
		Inf:        inf,
		Needs:      needs,
		Gives:      gives,
		Effects:    catalogs.SysEffects{Pop: tier, Dev: 1},
	}
	if inf != catalogs.InfColony && inf != catalogs.InfNone && (class == catalogs.ClassStarport || class == catalogs.ClassOutpost) {
		st.Fixed = inf
	}
	return st
}

var (
	none    = catalogs.TierCost{}
	t2need3 = catalogs.TierCost{Tier: 2, Count: 3}
	t3need6 = catalogs.TierCost{Tier: 3, Count: 6}
	t2give1 = catalogs.TierCost{Tier: 2, Count: 1}
	t3give1 = catalogs.TierCost{Tier: 3, Count: 1}
)

// Types is the fixture catalog. Build-type keys match configs/site_types.json.
func Types() []catalogs.SiteType {
	return []catalogs.SiteType{
		port("ocellus", "ocellus", catalogs.ClassStarport, 3, true, catalogs.InfColony, t3need6, none),
		port("coriolis", "no_truss", catalogs.ClassStarport, 2, true, catalogs.InfColony, t2need3, t3give1),
		port("asteroid", "asteroid", catalogs.ClassStarport, 2, true, "extraction", t2need3, t3give1),
		port("planetaryPort", "zeus", catalogs.ClassStarport, 3, false, catalogs.InfColony, t3need6, none),
		port("civilianOutpost", "vesta", catalogs.ClassOutpost, 1, true, catalogs.InfColony, none, t2give1),
		port("militaryOutpost", "nemesis", catalogs.ClassOutpost, 1, true, "military", none, t2give1),
		port("industrialOutpostT2", "vulcan_t2", catalogs.ClassOutpost, 2, true, "industrial", none, t2give1),
		port("civilianPlanetaryOutpost", "hestia", catalogs.ClassOutpost, 1, false, catalogs.InfColony, none, t2give1),
		port("industrialPlanetaryOutpost", "hephaestus", catalogs.ClassOutpost, 1, false, "industrial", none, t2give1),
		port("tourismSettlement", "aergia", catalogs.ClassSettlement, 1, false, "tourism", none, t2give1),
		port("agricultureSettlement", "consus", catalogs.ClassSettlement, 1, false, "agriculture", none, t2give1),
		port("extractionSettlement", "ourea", catalogs.ClassSettlement, 1, false, "extraction", none, t2give1),
		port("spaceFarm", "demeter", catalogs.ClassInstallation, 1, true, "agriculture", none, t2give1),
		port("relayStation", "enodia", catalogs.ClassInstallation, 1, true, "hightech", none, t2give1),
		port("pirateBase", "apate", catalogs.ClassInstallation, 1, true, catalogs.InfNone, none, t2give1),
		port("refineryHub", "hydra", catalogs.ClassHub, 2, false, "refinery", catalogs.TierCost{Tier: 2, Count: 1}, t3give1),
		port("civilianHub", "hestia_hub", catalogs.ClassHub, 2, false, catalogs.InfColony, catalogs.TierCost{Tier: 2, Count: 1}, t3give1),
		port("brokenType", "broken", catalogs.ClassSettlement, 1, false, "contraband", none, none),
	}
}

func Catalogs(t testing.TB) *catalogs.Catalogs {
	t.Helper()
	cats, err := catalogs.FromTypes(Types())
	if err != nil {
		t.Fatalf("fixture catalogs: %v", err)
	}
	return cats
}

// Builder assembles a system.Record.
type Builder struct {
	rec system.Record
}

func NewSystem(id string) *Builder {
	return &Builder{rec: system.Record{ID: id, Name: id, Architect: "cmdr"}}
}

func (b *Builder) Reserve(level string) *Builder {
	b.rec.ReserveLevel = level
	return b
}

func (b *Builder) PrimaryPort(siteID string) *Builder {
	b.rec.PrimaryPortID = siteID
	return b
}

func (b *Builder) Body(num int, name, typ string, features ...string) *Builder {
	return b.BodyWithParents(num, name, typ, nil, features...)
}

func (b *Builder) BodyWithParents(num int, name, typ string, parents []int, features ...string) *Builder {
	b.rec.Bodies = append(b.rec.Bodies, system.BodyRecord{
		Num:      num,
		Name:     name,
		Type:     typ,
		Features: features,
		Parents:  parents,
	})
	return b
}

// Site adds a completed site on body num.
func (b *Builder) Site(id string, num int, buildType string) *Builder {
	return b.SiteStatus(id, num, buildType, "complete")
}

func (b *Builder) SiteStatus(id string, num int, buildType, status string) *Builder {
	n := num
	b.rec.Sites = append(b.rec.Sites, system.SiteRecord{
		ID:        id,
		Name:      id,
		BodyNum:   &n,
		BuildType: buildType,
		Status:    status,
	})
	return b
}

// Unplaced adds a completed site without a body.
func (b *Builder) Unplaced(id, buildType string) *Builder {
	b.rec.Sites = append(b.rec.Sites, system.SiteRecord{ID: id, Name: id, BuildType: buildType, Status: "complete"})
	return b
}

func (b *Builder) Record() system.Record { return b.rec }
