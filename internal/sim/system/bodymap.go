package system

// BodyMap is one body's slice of the site graph.
type BodyMap struct {
	Body    *Body
	Sites   []*Site
	Orbital []*Site
	Surface []*Site

	OrbitalPrimary *Site
	SurfacePrimary *Site
}

// BuildBodyMap groups sites by the body they occupy and sets each site's Body.
// Sites whose body does not resolve land on a synthetic Unknown body. Only
// bodies that carry at least one site get an entry; the slice keeps body order
// with Unknown last. The map is keyed by body number, UnknownBodyNum for the
// synthetic body.
func BuildBodyMap(bodies []*Body, sites []*Site) ([]*BodyMap, map[int]*BodyMap) {
	byNum := make(map[int]*Body, len(bodies))
	for _, b := range bodies {
		byNum[b.Num] = b
	}

	var unknown *Body
	grouped := map[*Body][]*Site{}
	for _, s := range sites {
		var b *Body
		if s.BodyNum != nil {
			b = byNum[*s.BodyNum]
		}
		if b == nil {
			if unknown == nil {
				unknown = NewUnknownBody()
			}
			b = unknown
		}
		s.Body = b
		grouped[b] = append(grouped[b], s)
	}

	order := make([]*Body, 0, len(grouped))
	for _, b := range bodies {
		if _, ok := grouped[b]; ok {
			order = append(order, b)
		}
	}
	if unknown != nil {
		order = append(order, unknown)
	}

	list := make([]*BodyMap, 0, len(order))
	maps := make(map[int]*BodyMap, len(order))
	for _, b := range order {
		bm := &BodyMap{Body: b}
		for _, s := range grouped[b] {
			bm.Sites = append(bm.Sites, s)
			if s.Type.Orbital {
				bm.Orbital = append(bm.Orbital, s)
			} else {
				bm.Surface = append(bm.Surface, s)
			}
		}
		list = append(list, bm)
		maps[b.Num] = bm
	}
	return list, maps
}
