package system

import (
	"fmt"
	"io"
	"log"

	"colonyecon.ai/internal/sim/catalogs"
)

// Record is the raw system payload as fetched by the surrounding application.
type Record struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Architect     string       `json:"architect"`
	ReserveLevel  string       `json:"reserveLevel,omitempty"`
	PrimaryPortID string       `json:"primaryPortId,omitempty"`
	Bodies        []BodyRecord `json:"bodies"`
	Sites         []SiteRecord `json:"sites"`
}

type BodyRecord struct {
	Num      int      `json:"num"`
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	Features []string `json:"features,omitempty"`
	Parents  []int    `json:"parents,omitempty"`
	Radius   float64  `json:"radius,omitempty"`
	Temp     float64  `json:"temp,omitempty"`
	Gravity  float64  `json:"gravity,omitempty"`
}

type SiteRecord struct {
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	BodyNum   *int   `json:"bodyNum,omitempty"`
	BuildType string `json:"buildType"`
	Status    string `json:"status,omitempty"`
}

// FromRecord constructs a fresh graph from rec. Unknown build types are an
// error unless lenient is set, in which case the site is dropped with a warning.
func FromRecord(rec Record, cats *catalogs.Catalogs, lenient bool, logger *log.Logger) (*System, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if cats == nil {
		return nil, fmt.Errorf("nil catalogs")
	}

	reserve, ok := ParseReserveLevel(rec.ReserveLevel)
	if !ok {
		logger.Printf("warn: system %s: unknown reserve level %q, using %s", rec.ID, rec.ReserveLevel, reserve)
	}
	sys := &System{
		ID:            rec.ID,
		Name:          rec.Name,
		Architect:     rec.Architect,
		Reserve:       reserve,
		PrimaryPortID: rec.PrimaryPortID,
		Bodies:        make([]*Body, 0, len(rec.Bodies)),
		Sites:         make([]*Site, 0, len(rec.Sites)),
	}

	for _, br := range rec.Bodies {
		features, unknown := ParseFeatures(br.Features)
		for _, u := range unknown {
			logger.Printf("warn: body %q: unknown feature %q", br.Name, u)
		}
		parents := make([]int, len(br.Parents))
		copy(parents, br.Parents)
		sys.Bodies = append(sys.Bodies, &Body{
			Num:         br.Num,
			Name:        br.Name,
			Type:        ParseBodyType(br.Type),
			Features:    features,
			Parents:     parents,
			Radius:      br.Radius,
			Temperature: br.Temp,
			Gravity:     br.Gravity,
		})
	}

	for _, sr := range rec.Sites {
		var st catalogs.SiteType
		if lenient {
			l := cats.Sites.Lookup(sr.BuildType)
			if !l.Found {
				logger.Printf("warn: site %s: unknown build type %q (suggest %q), skipped", sr.ID, sr.BuildType, l.Suggestion)
				continue
			}
			st = l.Type
		} else {
			t, err := cats.Sites.Require(sr.BuildType)
			if err != nil {
				return nil, fmt.Errorf("site %s: %w", sr.ID, err)
			}
			st = t
		}
		status, ok := ParseStatus(sr.Status)
		if !ok {
			logger.Printf("warn: site %s: unknown status %q, using %s", sr.ID, sr.Status, status)
		}
		var bodyNum *int
		if sr.BodyNum != nil {
			n := *sr.BodyNum
			bodyNum = &n
		}
		sys.Sites = append(sys.Sites, &Site{
			ID:        sr.ID,
			Name:      sr.Name,
			BuildType: sr.BuildType,
			Type:      st,
			Status:    status,
			BodyNum:   bodyNum,
		})
	}

	sys.Tree = NewBodyTree(sys.Bodies, logger)
	sys.BodyMaps, sys.BodyMap = BuildBodyMap(sys.Bodies, sys.Sites)
	return sys, nil
}
