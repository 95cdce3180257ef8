package tuning

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning holds the numeric rule constants of the economy resolver and the
// tier-point aggregator.
type Tuning struct {
	RulesVersion string `yaml:"rules_version"`

	Links    Links    `yaml:"links"`
	Baseline Baseline `yaml:"baseline"`
	Buffs    Buffs    `yaml:"buffs"`
	TierTax  TierTax  `yaml:"tier_tax"`
}

type Links struct {
	// StrongByTier is indexed by source tier - 1.
	StrongByTier []float64 `yaml:"strong_by_tier"`
	Weak         float64   `yaml:"weak"`
	// SubLinkHops caps how far strong links are followed past the first hop.
	SubLinkHops int `yaml:"sub_link_hops"`
}

type Baseline struct {
	Settlement     float64 `yaml:"settlement"`
	FixedOrbital   float64 `yaml:"fixed_orbital"`
	FixedSurface   float64 `yaml:"fixed_surface"`
	ColonyPerTrait float64 `yaml:"colony_per_trait"`
}

type Buffs struct {
	Amount float64 `yaml:"amount"`
}

type TierTax struct {
	// FreeStarports is how many taxable starports build at nominal cost.
	FreeStarports int `yaml:"free_starports"`
	// Tier2Step is added to a tier-2 starport's cost per starport past the free ones.
	Tier2Step int `yaml:"tier2_step"`
}

func Defaults() Tuning {
	return Tuning{
		RulesVersion: "1",
		Links: Links{
			StrongByTier: []float64{0.4, 0.8, 1.2},
			Weak:         0.05,
			SubLinkHops:  1,
		},
		Baseline: Baseline{
			Settlement:     1.0,
			FixedOrbital:   1.0,
			FixedSurface:   0.5,
			ColonyPerTrait: 1.0,
		},
		Buffs:   Buffs{Amount: 0.4},
		TierTax: TierTax{FreeStarports: 2, Tier2Step: 2},
	}
}

// Load reads a tuning file on top of Defaults; keys absent from the file keep
// their default values.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	if len(t.Links.StrongByTier) != 3 {
		return fmt.Errorf("links.strong_by_tier: want 3 values, got %d", len(t.Links.StrongByTier))
	}
	if t.Links.Weak < 0 {
		return fmt.Errorf("links.weak: must not be negative")
	}
	if t.Links.SubLinkHops < 0 {
		return fmt.Errorf("links.sub_link_hops: must not be negative")
	}
	if t.Buffs.Amount < 0 {
		return fmt.Errorf("buffs.amount: must not be negative")
	}
	if t.TierTax.FreeStarports < 0 || t.TierTax.Tier2Step < 0 {
		return fmt.Errorf("tier_tax: must not be negative")
	}
	return nil
}

// StrongWeight returns the strong-link contribution of a source of the given tier.
func (t Tuning) StrongWeight(tier int) float64 {
	if tier < 1 {
		return 0
	}
	if tier > len(t.Links.StrongByTier) {
		tier = len(t.Links.StrongByTier)
	}
	return t.Links.StrongByTier[tier-1]
}

// Digest fingerprints the values actually applied.
func (t Tuning) Digest() string {
	b, _ := json.Marshal(t)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
