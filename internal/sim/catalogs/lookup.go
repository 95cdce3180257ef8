package catalogs

import (
	"errors"
	"fmt"

	"github.com/agnivade/levenshtein"
)

var ErrUnknownSiteType = errors.New("unknown site type")

// UnknownSiteTypeError is returned by strict lookups.
type UnknownSiteTypeError struct {
	BuildType  string
	Suggestion string
}

func (e *UnknownSiteTypeError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("unknown build type %q (did you mean %q?)", e.BuildType, e.Suggestion)
	}
	return fmt.Sprintf("unknown build type %q", e.BuildType)
}

func (e *UnknownSiteTypeError) Is(target error) bool { return target == ErrUnknownSiteType }

// Lookup is the result of resolving a build type against the catalog.
type Lookup struct {
	Type       SiteType
	Found      bool
	Suggestion string // closest known build type when not found
}

// maxSuggestDistance bounds how far a typo may be from a known key.
const maxSuggestDistance = 3

func (c *SiteTypeCatalog) Lookup(buildType string) Lookup {
	key := normalizeKey(buildType)
	if t, ok := c.ByBuild[key]; ok {
		return Lookup{Type: t, Found: true}
	}
	return Lookup{Suggestion: c.suggest(key)}
}

// Require is the strict form of Lookup.
func (c *SiteTypeCatalog) Require(buildType string) (SiteType, error) {
	l := c.Lookup(buildType)
	if !l.Found {
		return SiteType{}, &UnknownSiteTypeError{BuildType: buildType, Suggestion: l.Suggestion}
	}
	return l.Type, nil
}

func (c *SiteTypeCatalog) suggest(key string) string {
	if key == "" {
		return ""
	}
	best, bestDist := "", maxSuggestDistance+1
	for _, k := range c.Keys() {
		d := levenshtein.ComputeDistance(key, k)
		if d < bestDist {
			best, bestDist = k, d
		}
	}
	return best
}
