package system

import "colonyecon.ai/internal/sim/catalogs"

// ClassifyLinks fills Links on every primary port of sys. Primaries must
// already be selected. Within a body the surface primary claims first, then the
// orbital primary; a site is strongly linked to at most one primary.
func ClassifyLinks(sys *System, useIncomplete bool) {
	for _, s := range sys.Sites {
		s.Links = nil
		s.ParentLink = nil
	}
	for _, bm := range sys.BodyMaps {
		for _, p := range []*Site{bm.SurfacePrimary, bm.OrbitalPrimary} {
			if p == nil {
				continue
			}
			links := &Links{Economies: map[string]*LinkCount{}}
			for _, s := range bm.Sites {
				if s == p || s.ParentLink != nil || !linkable(s, useIncomplete) {
					continue
				}
				if !mayClaim(bm, p, s) {
					continue
				}
				s.ParentLink = p
				links.Strong = append(links.Strong, s)
				links.count(s.Type.Inf).Strong++
			}
			for _, other := range sys.BodyMaps {
				if other == bm {
					continue
				}
				for _, s := range other.Sites {
					if !linkable(s, useIncomplete) || s == other.OrbitalPrimary || s == other.SurfacePrimary {
						continue
					}
					links.Weak = append(links.Weak, s)
					links.count(s.Type.Inf).Weak++
				}
			}
			p.Links = links
		}
	}
}

func linkable(s *Site, useIncomplete bool) bool {
	return s.Type.Inf != "" && s.Type.Inf != catalogs.InfNone && s.Counts(useIncomplete)
}

func isPort(t catalogs.SiteType) bool {
	return t.BuildClass == catalogs.ClassStarport || t.BuildClass == catalogs.ClassOutpost
}

// mayClaim applies the cross-domain rules. A surface primary never claims
// orbital ports, nor other orbital sites while the body has its own orbital
// primary. An orbital primary leaves surface facilities to a distinct surface
// primary but may claim that surface primary itself.
func mayClaim(bm *BodyMap, p, s *Site) bool {
	if !p.Type.Orbital {
		if !s.Type.Orbital {
			return true
		}
		if isPort(s.Type) {
			return false
		}
		return bm.OrbitalPrimary == nil || bm.OrbitalPrimary == p
	}
	if s.Type.Orbital {
		return true
	}
	sp := bm.SurfacePrimary
	return sp == nil || sp == p || s == sp
}
