package econ

import (
	"encoding/json"
	"testing"
)

func TestAdjust_FloorsNegativeAtPointOne(t *testing.T) {
	var m Map
	var l Ledger
	m.Adjust(&l, Agriculture, 0.4, "body")
	got := m.Adjust(&l, Agriculture, -0.4, "icy body")
	if got != Floor {
		t.Fatalf("agriculture: got %v want %v", got, Floor)
	}
	got = m.Adjust(&l, Agriculture, -0.4, "again")
	if got != Floor {
		t.Fatalf("agriculture after second cut: got %v want %v", got, Floor)
	}
	if len(l) != 3 {
		t.Fatalf("ledger: got %d entries want 3", len(l))
	}
	if l[1].Before != 0.4 || l[1].After != Floor || l[1].Delta != -0.4 {
		t.Fatalf("entry: %+v", l[1])
	}
}

func TestAdjust_SumsMatchDecimalLiterals(t *testing.T) {
	var m Map
	m.Adjust(nil, Tourism, 1.0, "a")
	m.Adjust(nil, Tourism, 0.4, "b")
	if m.Get(Tourism) != 1.4 {
		t.Fatalf("tourism: got %v want 1.4", m.Get(Tourism))
	}
	m.Adjust(nil, Military, 0.4, "a")
	m.Adjust(nil, Military, 0.8, "b")
	m.Adjust(nil, Military, 0.05, "c")
	if m.Get(Military) != 1.25 {
		t.Fatalf("military: got %v want 1.25", m.Get(Military))
	}
}

func TestAdjust_IgnoresUnknownEconomy(t *testing.T) {
	var m Map
	var l Ledger
	m.Adjust(&l, Economy("contraband"), 1, "x")
	if !m.IsZero() || len(l) != 0 {
		t.Fatalf("expected no change: %v %v", m, l)
	}
}

func TestRanked_TieBreakReverseAlphabetical(t *testing.T) {
	var m Map
	m.Adjust(nil, Agriculture, 1, "")
	m.Adjust(nil, Tourism, 1, "")
	m.Adjust(nil, HighTech, 1, "")
	if got := m.Top(); got != Tourism {
		t.Fatalf("top: got %s want %s", got, Tourism)
	}
	r := m.Ranked()
	if r[1] != HighTech || r[2] != Agriculture {
		t.Fatalf("ranked: %v", r)
	}

	var empty Map
	if got := empty.Top(); got != Tourism {
		t.Fatalf("empty top: got %s want %s", got, Tourism)
	}
}

func TestMapJSON_HasAllNineKeys(t *testing.T) {
	var m Map
	m.Adjust(nil, Refinery, 0.8, "")
	b, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw map[string]float64
	if err := json.Unmarshal(b, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(raw) != NumEconomies {
		t.Fatalf("keys: got %d want %d (%s)", len(raw), NumEconomies, b)
	}
	var back Map
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal map: %v", err)
	}
	if back != m {
		t.Fatalf("round trip: got %v want %v", back, m)
	}
}

func TestSet(t *testing.T) {
	s := SetOf(Tourism, Agriculture, Tourism)
	if s.Len() != 2 || !s.Has(Tourism) || s.Has(Military) {
		t.Fatalf("set: %v", s.Slice())
	}
	if got := s.Slice(); got[0] != Agriculture || got[1] != Tourism {
		t.Fatalf("slice order: %v", got)
	}
}

func TestLedgerSorted_GroupsByFinalValue(t *testing.T) {
	var m Map
	var l Ledger
	m.Adjust(&l, Agriculture, 0.4, "1")
	m.Adjust(&l, Tourism, 1.0, "2")
	m.Adjust(&l, Agriculture, 0.4, "3")
	m.Adjust(&l, Tourism, 0.4, "4")
	sorted := l.Sorted(&m)
	want := []string{"2", "4", "1", "3"}
	for i, w := range want {
		if sorted[i].Reason != w {
			t.Fatalf("sorted[%d]: got %q want %q", i, sorted[i].Reason, w)
		}
	}
	if len(l.For(Tourism)) != 2 {
		t.Fatalf("For(tourism): %v", l.For(Tourism))
	}
}
