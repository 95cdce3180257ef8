package econ

import (
	"math"
	"sort"
)

// AuditEntry records one additive adjustment applied to an economy map.
type AuditEntry struct {
	Economy Economy `json:"economy"`
	Delta   float64 `json:"delta"`
	Reason  string  `json:"reason"`
	Before  float64 `json:"before"`
	After   float64 `json:"after"`
}

type Ledger []AuditEntry

// Adjust adds delta to e and appends the change to l. A negative delta never
// takes the value below Floor. Values are kept on a 1e-6 grid so that sums of
// the rule constants compare equal to their decimal literals.
func (m *Map) Adjust(l *Ledger, e Economy, delta float64, reason string) float64 {
	if !e.Valid() {
		return 0
	}
	before := m.Get(e)
	after := round6(before + delta)
	if delta < 0 && after < Floor {
		after = Floor
	}
	if after < 0 {
		after = 0
	}
	m.set(e, after)
	if l != nil {
		*l = append(*l, AuditEntry{
			Economy: e,
			Delta:   delta,
			Reason:  reason,
			Before:  before,
			After:   after,
		})
	}
	return after
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// Sorted groups the ledger by economy, strongest final value first, keeping
// application order inside each group.
func (l Ledger) Sorted(final *Map) Ledger {
	out := make(Ledger, len(l))
	copy(out, l)
	sort.SliceStable(out, func(i, j int) bool {
		ei, ej := out[i].Economy, out[j].Economy
		if ei == ej {
			return false
		}
		if final != nil {
			vi, vj := final.Get(ei), final.Get(ej)
			if vi != vj {
				return vi > vj
			}
		}
		return ei < ej
	})
	return out
}

// For returns the entries that touched e, in order.
func (l Ledger) For(e Economy) Ledger {
	var out Ledger
	for _, a := range l {
		if a.Economy == e {
			out = append(out, a)
		}
	}
	return out
}
