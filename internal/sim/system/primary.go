package system

// SelectPrimaries picks the body's surface primary from its surface sites and
// its orbital primary from the orbital sites, or from every site on the body
// when there is no surface primary.
//
// Candidates must be able to receive links. The first tier-3 candidate in list
// order wins, then the first tier-2, then the first tier-1. How the game breaks
// ties between same-tier ports (for example by completion date) is not known;
// list order is the documented rule until that is confirmed.
func SelectPrimaries(bm *BodyMap, useIncomplete bool) {
	bm.SurfacePrimary = pickPrimary(bm.Surface, useIncomplete)
	pool := bm.Sites
	if bm.SurfacePrimary != nil {
		pool = bm.Orbital
	}
	bm.OrbitalPrimary = pickPrimary(pool, useIncomplete)
	if bm.OrbitalPrimary == bm.SurfacePrimary {
		bm.OrbitalPrimary = nil
	}
}

func pickPrimary(sites []*Site, useIncomplete bool) *Site {
	for tier := 3; tier >= 1; tier-- {
		for _, s := range sites {
			if s.Type.Tier == tier && s.Type.CanReceiveLinks() && s.Counts(useIncomplete) {
				return s
			}
		}
	}
	return nil
}

// SelectAllPrimaries runs SelectPrimaries over every body of sys.
func SelectAllPrimaries(sys *System, useIncomplete bool) {
	for _, bm := range sys.BodyMaps {
		SelectPrimaries(bm, useIncomplete)
	}
}
