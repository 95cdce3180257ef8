package tuning

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_ShippedTuningMatchesDefaults(t *testing.T) {
	got, err := Load("../../../configs/tuning.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := Defaults()
	if got.Links.Weak != want.Links.Weak || got.Buffs.Amount != want.Buffs.Amount {
		t.Fatalf("tuning: got %+v want %+v", got, want)
	}
	for i, w := range want.Links.StrongByTier {
		if got.Links.StrongByTier[i] != w {
			t.Fatalf("strong_by_tier[%d]: got %v want %v", i, got.Links.StrongByTier[i], w)
		}
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(path, []byte("buffs:\n  amount: 0.5\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Buffs.Amount != 0.5 {
		t.Fatalf("buffs.amount: got %v want 0.5", got.Buffs.Amount)
	}
	if got.Links.Weak != 0.05 || got.TierTax.FreeStarports != 2 {
		t.Fatalf("defaults lost: %+v", got)
	}
}

func TestLoad_RejectsBadStrongWeights(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(path, []byte("links:\n  strong_by_tier: [0.4, 0.8]\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestStrongWeight(t *testing.T) {
	tu := Defaults()
	cases := map[int]float64{0: 0, 1: 0.4, 2: 0.8, 3: 1.2, 4: 1.2}
	for tier, want := range cases {
		if got := tu.StrongWeight(tier); got != want {
			t.Fatalf("tier %d: got %v want %v", tier, got, want)
		}
	}
}
