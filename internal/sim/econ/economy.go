package econ

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

type Economy string

const (
	Agriculture  Economy = "agriculture"
	Extraction   Economy = "extraction"
	HighTech     Economy = "hightech"
	Industrial   Economy = "industrial"
	Military     Economy = "military"
	Refinery     Economy = "refinery"
	Terraforming Economy = "terraforming"
	Tourism      Economy = "tourism"
	Service      Economy = "service"
)

// Keys lists the nine economies in slot order.
var Keys = [...]Economy{
	Agriculture,
	Extraction,
	HighTech,
	Industrial,
	Military,
	Refinery,
	Terraforming,
	Tourism,
	Service,
}

const NumEconomies = len(Keys)

// Floor is the lowest value a touched economy may be pushed down to.
const Floor = 0.1

func (e Economy) index() int {
	switch e {
	case Agriculture:
		return 0
	case Extraction:
		return 1
	case HighTech:
		return 2
	case Industrial:
		return 3
	case Military:
		return 4
	case Refinery:
		return 5
	case Terraforming:
		return 6
	case Tourism:
		return 7
	case Service:
		return 8
	default:
		return -1
	}
}

func (e Economy) Valid() bool { return e.index() >= 0 }

// Parse returns the economy named by s, or false for anything outside the nine keys.
func Parse(s string) (Economy, bool) {
	e := Economy(s)
	return e, e.Valid()
}

// Map holds one value per economy. The zero value is an untouched map.
type Map [NumEconomies]float64

func (m *Map) Get(e Economy) float64 {
	i := e.index()
	if i < 0 {
		return 0
	}
	return m[i]
}

func (m *Map) set(e Economy, v float64) {
	m[e.index()] = v
}

// Touched reports whether any adjustment has reached e.
func (m *Map) Touched(e Economy) bool { return m.Get(e) > 0 }

func (m *Map) IsZero() bool {
	for _, v := range m {
		if v != 0 {
			return false
		}
	}
	return true
}

// Ranked returns the economies sorted by value descending; ties go to the
// reverse-alphabetically larger key.
func (m *Map) Ranked() []Economy {
	out := make([]Economy, 0, NumEconomies)
	out = append(out, Keys[:]...)
	sort.SliceStable(out, func(i, j int) bool {
		vi, vj := m.Get(out[i]), m.Get(out[j])
		if vi != vj {
			return vi > vj
		}
		return out[i] > out[j]
	})
	return out
}

// Top is the primary economy of m.
func (m *Map) Top() Economy { return m.Ranked()[0] }

func (m Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range Keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(string(k)))
		buf.WriteByte(':')
		buf.WriteString(strconv.FormatFloat(m[i], 'f', -1, 64))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (m *Map) UnmarshalJSON(b []byte) error {
	var raw map[string]float64
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*m = Map{}
	for k, v := range raw {
		e, ok := Parse(k)
		if !ok {
			return fmt.Errorf("unknown economy %q", k)
		}
		m.set(e, v)
	}
	return nil
}

// Set is a small ordered set of economies, kept in slot order.
type Set uint16

func SetOf(es ...Economy) Set {
	var s Set
	for _, e := range es {
		s = s.With(e)
	}
	return s
}

func (s Set) With(e Economy) Set {
	i := e.index()
	if i < 0 {
		return s
	}
	return s | 1<<uint(i)
}

func (s Set) Has(e Economy) bool {
	i := e.index()
	return i >= 0 && s&(1<<uint(i)) != 0
}

func (s Set) Len() int {
	n := 0
	for _, k := range Keys {
		if s.Has(k) {
			n++
		}
	}
	return n
}

func (s Set) Slice() []Economy {
	out := make([]Economy, 0, s.Len())
	for _, k := range Keys {
		if s.Has(k) {
			out = append(out, k)
		}
	}
	return out
}

func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Slice())
}

func (s *Set) UnmarshalJSON(b []byte) error {
	var keys []string
	if err := json.Unmarshal(b, &keys); err != nil {
		return err
	}
	*s = 0
	for _, k := range keys {
		e, ok := Parse(k)
		if !ok {
			return fmt.Errorf("unknown economy %q", k)
		}
		*s = s.With(e)
	}
	return nil
}
