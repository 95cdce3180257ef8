package system

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func tidalTree(t *testing.T, buf *bytes.Buffer) (*BodyTree, map[string]*Body) {
	t.Helper()
	bodies := map[string]*Body{
		"star":     {Num: 1, Name: "star", Type: Star},
		"bary":     {Num: 2, Name: "bary", Type: Barycenter, Parents: []int{1}},
		"planet":   {Num: 3, Name: "planet", Type: GasGiant, Features: FeatureTidal, Parents: []int{2, 1}},
		"moon":     {Num: 4, Name: "moon", Type: Rocky, Features: FeatureTidal, Parents: []int{3, 2, 1}},
		"free":     {Num: 5, Name: "free", Type: Icy, Parents: []int{1}},
		"freeMoon": {Num: 6, Name: "freeMoon", Type: Rocky, Features: FeatureTidal, Parents: []int{5, 1}},
		"orphan":   {Num: 7, Name: "orphan", Type: Rocky, Features: FeatureTidal, Parents: []int{42, 1}},
		"rogue":    {Num: 8, Name: "rogue", Type: Rocky, Features: FeatureTidal},
		"wd":       {Num: 9, Name: "wd", Type: WhiteDwarf, Parents: []int{2}},
		"wdMoon":   {Num: 10, Name: "wdMoon", Type: Icy, Features: FeatureTidal, Parents: []int{9, 2}},
	}
	list := make([]*Body, 0, len(bodies))
	for i := 1; i <= len(bodies); i++ {
		for _, b := range bodies {
			if b.Num == i {
				list = append(list, b)
			}
		}
	}
	return NewBodyTree(list, log.New(buf, "", 0)), bodies
}

func TestIsTidalToStar(t *testing.T) {
	var buf bytes.Buffer
	tree, bodies := tidalTree(t, &buf)

	cases := []struct {
		body string
		want bool
	}{
		{"planet", true},    // through a barycenter
		{"moon", true},      // tidal moon of a tidal planet
		{"free", false},     // not tidally locked
		{"freeMoon", false}, // parent is not tidally locked
		{"orphan", false},   // parent id missing
		{"rogue", false},    // no parents at all
		{"wdMoon", true},    // remnants count as stars
		{"star", false},
	}
	for _, tc := range cases {
		if got := tree.IsTidalToStar(bodies[tc.body]); got != tc.want {
			t.Fatalf("%s: got %v want %v", tc.body, got, tc.want)
		}
	}
	if !strings.Contains(buf.String(), `error: body "orphan": parent 42 not found`) {
		t.Fatalf("expected logged error, got %q", buf.String())
	}
}

func TestBodyTree_Structure(t *testing.T) {
	var buf bytes.Buffer
	tree, _ := tidalTree(t, &buf)

	star, ok := tree.Node(1)
	if !ok || star.Kind != NodeStar || star.Parent != nil {
		t.Fatalf("star node: %+v", star)
	}
	bary, _ := tree.Node(2)
	if bary.Kind != NodeBarycenter || bary.Parent != star {
		t.Fatalf("barycenter node: %+v", bary)
	}
	moon, _ := tree.Node(4)
	if moon.Kind != NodePlanet || moon.Parent.Body.Name != "planet" {
		t.Fatalf("moon node: %+v", moon)
	}
	// star, orphan (missing parent) and rogue are roots.
	if len(tree.Roots) != 3 {
		t.Fatalf("roots: got %d want 3", len(tree.Roots))
	}
}

func TestParseFeatures(t *testing.T) {
	f, unknown := ParseFeatures([]string{"Bio", "rings", "lava"})
	if !(&Body{Features: f}).Has(FeatureBio) || f&FeatureRings == 0 {
		t.Fatalf("features: %v", f.Names())
	}
	if len(unknown) != 1 || unknown[0] != "lava" {
		t.Fatalf("unknown: %v", unknown)
	}
	if ParseBodyType("ELW") != EarthLike || ParseBodyType("comet") != UnknownType {
		t.Fatalf("ParseBodyType")
	}
}

func TestIsTidalToStar_NearestParentOnly(t *testing.T) {
	var buf bytes.Buffer
	bodies := []*Body{
		{Num: 0, Name: "Sol", Type: Star},
		{Num: 1, Name: "planet", Type: Rocky, Features: FeatureTidal, Parents: []int{0}},
		{Num: 2, Name: "moon", Type: Rocky, Features: FeatureTidal, Parents: []int{1}},
		{Num: 3, Name: "bary", Type: Barycenter, Parents: []int{0}},
		{Num: 4, Name: "binary", Type: Icy, Features: FeatureTidal, Parents: []int{3}},
		{Num: 5, Name: "binaryMoon", Type: Rocky, Features: FeatureTidal, Parents: []int{4}},
		{Num: 6, Name: "loose", Type: Rocky, Parents: []int{0}},
		{Num: 7, Name: "looseMoon", Type: Rocky, Features: FeatureTidal, Parents: []int{6}},
		{Num: 8, Name: "lost", Type: Rocky, Features: FeatureTidal, Parents: []int{99}},
	}
	tree := NewBodyTree(bodies, log.New(&buf, "", 0))

	want := map[string]bool{
		"planet":     true,
		"moon":       true,
		"binary":     true,
		"binaryMoon": true,
		"loose":      false,
		"looseMoon":  false,
		"lost":       false,
	}
	for _, b := range bodies {
		w, ok := want[b.Name]
		if !ok {
			continue
		}
		if got := tree.IsTidalToStar(b); got != w {
			t.Fatalf("%s: got %v want %v", b.Name, got, w)
		}
	}
	moon, _ := tree.Node(2)
	if moon.Parent.Body.Name != "planet" || moon.Parent.Parent.Body.Name != "Sol" {
		t.Fatalf("moon ancestry: %+v", moon.Parent)
	}
	if !strings.Contains(buf.String(), `error: body "lost": parent 99 not found`) {
		t.Fatalf("expected logged error, got %q", buf.String())
	}
}

func TestIsTidalToStar_ParentCycle(t *testing.T) {
	var buf bytes.Buffer
	a := &Body{Num: 1, Name: "a", Type: Rocky, Features: FeatureTidal, Parents: []int{2}}
	b := &Body{Num: 2, Name: "b", Type: Rocky, Features: FeatureTidal, Parents: []int{1}}
	tree := NewBodyTree([]*Body{a, b}, log.New(&buf, "", 0))
	if tree.IsTidalToStar(a) {
		t.Fatalf("cycle: got true want false")
	}
	if !strings.Contains(buf.String(), "parent chain does not end") {
		t.Fatalf("expected cycle error, got %q", buf.String())
	}
}
