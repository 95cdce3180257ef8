package catalogs

import (
	"bytes"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

type Catalogs struct {
	Sites SiteTypeCatalog
}

// BuildClass groups site types by how they take part in linking.
type BuildClass string

const (
	ClassStarport     BuildClass = "starport"
	ClassOutpost      BuildClass = "outpost"
	ClassSettlement   BuildClass = "settlement"
	ClassInstallation BuildClass = "installation"
	ClassHub          BuildClass = "hub"
)

// Influence values outside the nine economies.
const (
	InfColony = "colony"
	InfNone   = "none"
)

type TierCost struct {
	Tier  int `json:"tier"`
	Count int `json:"count"`
}

// SysEffects are the static per-site contributions to system stats.
type SysEffects struct {
	Pop    int `json:"pop"`
	Sec    int `json:"sec"`
	Wealth int `json:"wealth"`
	Tech   int `json:"tech"`
	SoL    int `json:"sol"`
	Dev    int `json:"dev"`
}

func (e SysEffects) Add(o SysEffects) SysEffects {
	return SysEffects{
		Pop:    e.Pop + o.Pop,
		Sec:    e.Sec + o.Sec,
		Wealth: e.Wealth + o.Wealth,
		Tech:   e.Tech + o.Tech,
		SoL:    e.SoL + o.SoL,
		Dev:    e.Dev + o.Dev,
	}
}

type SiteType struct {
	Name        string     `json:"name"`
	DisplayName string     `json:"displayName"`
	BuildTypes  []string   `json:"buildTypes"`
	BuildClass  BuildClass `json:"buildClass"`
	Tier        int        `json:"tier"`
	Orbital     bool       `json:"orbital"`
	Inf         string     `json:"inf"`             // economy key, "colony" or "none"
	Fixed       string     `json:"fixed,omitempty"` // specialized economy for ports
	Needs       TierCost   `json:"needs"`
	Gives       TierCost   `json:"gives"`
	PreReq      string     `json:"preReq,omitempty"`
	Effects     SysEffects `json:"effects"`
}

// CanReceiveLinks reports whether sites of this type may become a body's primary port.
func (t SiteType) CanReceiveLinks() bool {
	return t.Tier >= 1 && (t.BuildClass == ClassStarport || t.BuildClass == ClassOutpost)
}

// HasEconomy reports whether sites of this type carry a market economy of their own.
func (t SiteType) HasEconomy() bool {
	switch t.BuildClass {
	case ClassStarport, ClassOutpost, ClassSettlement:
		return true
	}
	return false
}

func (t SiteType) IsColony() bool { return t.Inf == InfColony }

type SiteTypeCatalog struct {
	Types   []SiteType
	ByBuild map[string]SiteType
	Digest  string
}

//go:embed site_types.schema.json
var siteTypesSchema []byte

func Load(configDir string) (*Catalogs, error) {
	var c Catalogs
	if err := loadSiteTypes(filepath.Join(configDir, "site_types.json"), &c.Sites); err != nil {
		return nil, err
	}
	return &c, nil
}

// FromTypes builds a catalog from in-memory definitions.
func FromTypes(types []SiteType) (*Catalogs, error) {
	var c Catalogs
	raw, err := json.Marshal(types)
	if err != nil {
		return nil, err
	}
	c.Sites.Digest = sha256Hex(raw)
	if err := c.Sites.index(types); err != nil {
		return nil, err
	}
	return &c, nil
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func compileSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("site_types.schema.json", bytes.NewReader(siteTypesSchema)); err != nil {
		return nil, err
	}
	return compiler.Compile("site_types.schema.json")
}

func loadSiteTypes(path string, out *SiteTypeCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("site_types.json: %w", err)
	}
	schema, err := compileSchema()
	if err != nil {
		return fmt.Errorf("site_types schema: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("site_types.json: %w", err)
	}

	var defs []SiteType
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("site_types.json: %w", err)
	}
	if err := out.index(defs); err != nil {
		return fmt.Errorf("site_types.json: %w", err)
	}
	return nil
}

func (c *SiteTypeCatalog) index(defs []SiteType) error {
	c.Types = defs
	c.ByBuild = map[string]SiteType{}
	for _, d := range defs {
		if d.Name == "" {
			return fmt.Errorf("empty name")
		}
		if len(d.BuildTypes) == 0 {
			return fmt.Errorf("%s: no buildTypes", d.Name)
		}
		for _, bt := range d.BuildTypes {
			key := normalizeKey(bt)
			if prev, dup := c.ByBuild[key]; dup {
				return fmt.Errorf("build type %q claimed by %s and %s", bt, prev.Name, d.Name)
			}
			c.ByBuild[key] = d
		}
	}
	return nil
}

// Keys returns every known build type, sorted.
func (c *SiteTypeCatalog) Keys() []string {
	keys := make([]string, 0, len(c.ByBuild))
	for k := range c.ByBuild {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
