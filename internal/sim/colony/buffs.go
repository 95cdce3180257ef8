package colony

import (
	"colonyecon.ai/internal/sim/econ"
	"colonyecon.ai/internal/sim/system"
)

type buffScope int

const (
	scopeBody buffScope = iota
	scopeSystem
)

// claim marks the buff as applied on t and reports whether it was still
// available.
func claim(t *system.Buffs, scope buffScope, e econ.Economy, negative bool) bool {
	var set *econ.Set
	switch {
	case scope == scopeBody && !negative:
		set = &t.Body
	case scope == scopeBody:
		set = &t.BodyNeg
	case !negative:
		set = &t.System
	default:
		set = &t.SystemNeg
	}
	if set.Has(e) {
		return false
	}
	*set = set.With(e)
	return true
}
