package catalogs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_ShippedConfigs(t *testing.T) {
	cats, err := Load("../../../configs")
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	if cats.Sites.Digest == "" {
		t.Fatalf("expected digest")
	}
	ocellus, err := cats.Sites.Require("ocellus")
	if err != nil {
		t.Fatalf("require ocellus: %v", err)
	}
	if ocellus.Tier != 3 || !ocellus.CanReceiveLinks() || !ocellus.IsColony() {
		t.Fatalf("ocellus: %+v", ocellus)
	}
	for _, st := range cats.Sites.Types {
		if st.Fixed != "" && st.Fixed != st.Inf {
			t.Fatalf("%s: fixed %q differs from inf %q", st.Name, st.Fixed, st.Inf)
		}
	}
}

func TestLoad_RejectsSchemaViolation(t *testing.T) {
	dir := t.TempDir()
	bad := `[{"name":"x","buildTypes":["x"],"buildClass":"spaceship","tier":1,"orbital":true,"inf":"colony","needs":{"tier":0,"count":0},"gives":{"tier":0,"count":0}}]`
	if err := os.WriteFile(filepath.Join(dir, "site_types.json"), []byte(bad), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(dir); err == nil {
		t.Fatalf("expected schema error")
	}
}

func TestIndex_RejectsDuplicateBuildType(t *testing.T) {
	_, err := FromTypes([]SiteType{
		{Name: "a", BuildTypes: []string{"vesta"}, BuildClass: ClassOutpost, Tier: 1},
		{Name: "b", BuildTypes: []string{"Vesta"}, BuildClass: ClassOutpost, Tier: 1},
	})
	if err == nil {
		t.Fatalf("expected duplicate error")
	}
}

func TestLookup_TypedResult(t *testing.T) {
	cats, err := FromTypes([]SiteType{
		{Name: "civilianOutpost", BuildTypes: []string{"vesta"}, BuildClass: ClassOutpost, Tier: 1, Orbital: true, Inf: InfColony},
		{Name: "orbis", BuildTypes: []string{"apollo", "artemis"}, BuildClass: ClassStarport, Tier: 3, Orbital: true, Inf: InfColony},
	})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}

	got := cats.Sites.Lookup(" Artemis ")
	if !got.Found || got.Type.Name != "orbis" {
		t.Fatalf("lookup artemis: %+v", got)
	}

	miss := cats.Sites.Lookup("apolo")
	if miss.Found {
		t.Fatalf("expected miss")
	}
	if miss.Suggestion != "apollo" {
		t.Fatalf("suggestion: got %q want %q", miss.Suggestion, "apollo")
	}
	if far := cats.Sites.Lookup("dodecahedron"); far.Suggestion != "" {
		t.Fatalf("expected no suggestion, got %q", far.Suggestion)
	}

	_, err = cats.Sites.Require("apolo")
	if !errors.Is(err, ErrUnknownSiteType) {
		t.Fatalf("require: got %v want ErrUnknownSiteType", err)
	}
	var ue *UnknownSiteTypeError
	if !errors.As(err, &ue) || ue.Suggestion != "apollo" {
		t.Fatalf("require error: %#v", err)
	}
}

func TestSysEffectsAdd(t *testing.T) {
	a := SysEffects{Pop: 1, Sec: -1, Dev: 3}
	b := SysEffects{Pop: 2, Sec: 2, Tech: 1}
	got := a.Add(b)
	want := SysEffects{Pop: 3, Sec: 1, Tech: 1, Dev: 3}
	if got != want {
		t.Fatalf("add: got %+v want %+v", got, want)
	}
}
