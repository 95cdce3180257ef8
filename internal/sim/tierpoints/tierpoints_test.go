package tierpoints_test

import (
	"testing"

	"colonyecon.ai/internal/sim/system"
	"colonyecon.ai/internal/sim/systemtest"
	"colonyecon.ai/internal/sim/tierpoints"
	"colonyecon.ai/internal/sim/tuning"
)

func build(t *testing.T, b *systemtest.Builder) *system.System {
	t.Helper()
	sys, err := system.FromRecord(b.Record(), systemtest.Catalogs(t), false, nil)
	if err != nil {
		t.Fatalf("FromRecord: %v", err)
	}
	return sys
}

func TestAggregate_Empty(t *testing.T) {
	sum := tierpoints.Aggregate(build(t, systemtest.NewSystem("S")), false, tuning.Defaults().TierTax)
	if sum.TierPoints != (tierpoints.TierPoints{}) {
		t.Fatalf("tier points: got %+v want zero", sum.TierPoints)
	}
	if len(sum.Economies) != 0 || len(sum.Ranked()) != 0 {
		t.Fatalf("economies: got %v want empty", sum.Economies)
	}
}

func TestAggregate_NeedsAndGives(t *testing.T) {
	sys := build(t, systemtest.NewSystem("S").
		Body(1, "A 1", "rb").
		Site("out1", 1, "vesta").
		Site("out2", 1, "vesta").
		Site("cor", 1, "no_truss"))

	sum := tierpoints.Aggregate(sys, false, tuning.Defaults().TierTax)
	want := tierpoints.TierPoints{Tier2: 2 - 3, Tier3: 1}
	if sum.TierPoints != want {
		t.Fatalf("tier points: got %+v want %+v", sum.TierPoints, want)
	}
	if sum.SumEffects.Pop != 1+1+2 || sum.SumEffects.Dev != 3 {
		t.Fatalf("effects: %+v", sum.SumEffects)
	}
}

func TestAggregate_ProgressiveStarportTax(t *testing.T) {
	b := systemtest.NewSystem("S").
		Body(1, "A 1", "rb").
		Site("o1", 1, "ocellus").
		Site("o2", 1, "ocellus").
		Site("o3", 1, "ocellus").
		Site("o4", 1, "ocellus")
	tax := tuning.Defaults().TierTax

	sum := tierpoints.Aggregate(build(t, b), false, tax)
	if got, want := sum.TierPoints.Tier3, -(6 + 6 + 12 + 18); got != want {
		t.Fatalf("tier3: got %d want %d", got, want)
	}
	if len(sum.Costs) != 4 || sum.Costs[3].Nominal != 6 || sum.Costs[3].Charged != 18 {
		t.Fatalf("costs: %+v", sum.Costs)
	}

	b.PrimaryPort("o1")
	sum = tierpoints.Aggregate(build(t, b), false, tax)
	if got, want := sum.TierPoints.Tier3, -(6 + 6 + 12); got != want {
		t.Fatalf("tier3 with primary port: got %d want %d", got, want)
	}
}

func TestAggregate_TierTwoStarportTaxIsAdditive(t *testing.T) {
	sys := build(t, systemtest.NewSystem("S").
		Body(1, "A 1", "rb").
		Site("c1", 1, "no_truss").
		Site("c2", 1, "no_truss").
		Site("c3", 1, "no_truss").
		Site("c4", 1, "no_truss"))

	sum := tierpoints.Aggregate(sys, false, tuning.Defaults().TierTax)
	want := tierpoints.TierPoints{Tier2: -(3 + 3 + 5 + 7), Tier3: 4}
	if sum.TierPoints != want {
		t.Fatalf("tier points: got %+v want %+v", sum.TierPoints, want)
	}
}

func TestAggregate_OutpostsAreNotTaxed(t *testing.T) {
	sys := build(t, systemtest.NewSystem("S").
		Body(1, "A 1", "rb").
		Site("a", 1, "hydra").
		Site("b", 1, "hydra").
		Site("c", 1, "hydra"))
	sum := tierpoints.Aggregate(sys, false, tuning.Defaults().TierTax)
	if sum.TierPoints.Tier2 != -3 {
		t.Fatalf("tier2: got %d want -3", sum.TierPoints.Tier2)
	}
}

func TestAggregate_CompletionFilter(t *testing.T) {
	b := systemtest.NewSystem("S").
		Body(1, "A 1", "rb").
		SiteStatus("plan", 1, "vesta", "plan").
		SiteStatus("build", 1, "vesta", "build").
		SiteStatus("gone", 1, "vesta", "demolish").
		Site("done", 1, "vesta")
	sys := build(t, b)
	tax := tuning.Defaults().TierTax

	if got := tierpoints.Aggregate(sys, false, tax).TierPoints.Tier2; got != 1 {
		t.Fatalf("complete only: got %d want 1", got)
	}
	if got := tierpoints.Aggregate(sys, true, tax).TierPoints.Tier2; got != 3 {
		t.Fatalf("with incomplete: got %d want 3", got)
	}
}

func TestAggregate_Histogram(t *testing.T) {
	sys := build(t, systemtest.NewSystem("S").
		Body(1, "A 1", "rb").
		Site("m1", 1, "nemesis").
		Site("m2", 1, "nemesis").
		Site("x", 1, "asteroid").
		Site("farm", 1, "demeter").
		Site("pirate", 1, "apate").
		Site("col", 1, "vesta"))

	sum := tierpoints.Aggregate(sys, false, tuning.Defaults().TierTax)
	got := sum.Ranked()
	want := []tierpoints.EconomyCount{
		{Economy: "military", Count: 2},
		{Economy: "agriculture", Count: 1},
		{Economy: "extraction", Count: 1},
	}
	if len(got) != len(want) {
		t.Fatalf("ranked: got %+v want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ranked[%d]: got %+v want %+v", i, got[i], want[i])
		}
	}

	// A resolved primary economy takes precedence over the site type.
	sys.Site("col").PrimaryEconomy = "refinery"
	if n := tierpoints.Aggregate(sys, false, tuning.Defaults().TierTax).Economies["refinery"]; n != 1 {
		t.Fatalf("refinery: got %d want 1", n)
	}
}
