package colony

import (
	"fmt"
	"io"
	"log"

	"colonyecon.ai/internal/sim/catalogs"
	"colonyecon.ai/internal/sim/econ"
	"colonyecon.ai/internal/sim/system"
	"colonyecon.ai/internal/sim/tuning"
)

type State int

const (
	Unresolved State = iota
	Resolving
	Resolved
)

func (s State) String() string {
	switch s {
	case Resolving:
		return "resolving"
	case Resolved:
		return "resolved"
	default:
		return "unresolved"
	}
}

// Result is the outcome of resolving one site.
type Result struct {
	Economies econ.Map
	Primary   econ.Economy
	Intrinsic econ.Set
	Buffs     system.Buffs
	Audit     econ.Ledger
}

// Resolver computes site economies over one graph. Results are memoized on the
// sites themselves; a Resolver must not be shared across goroutines.
type Resolver struct {
	sys           *system.System
	tune          tuning.Tuning
	useIncomplete bool
	log           *log.Logger

	state map[*system.Site]State
}

func NewResolver(sys *system.System, tune tuning.Tuning, useIncomplete bool, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Resolver{
		sys:           sys,
		tune:          tune,
		useIncomplete: useIncomplete,
		log:           logger,
		state:         map[*system.Site]State{},
	}
}

func (r *Resolver) State(s *system.Site) State {
	if s.Resolved() {
		return Resolved
	}
	return r.state[s]
}

// Resolve returns the primary economy of s, computing it on first use. ok is
// false for sites without a market economy and for sites caught in a
// resolution cycle.
func (r *Resolver) Resolve(s *system.Site) (econ.Economy, bool) {
	if s == nil {
		return "", false
	}
	if s.Resolved() {
		return s.PrimaryEconomy, true
	}
	if !s.Type.HasEconomy() {
		return "", false
	}
	if r.state[s] == Resolving {
		r.log.Printf("warn: site %s: economy depends on itself, contribution skipped", s.Label())
		return "", false
	}

	r.state[s] = Resolving
	res := r.compute(s)
	m := res.Economies
	s.Economies = &m
	s.PrimaryEconomy = res.Primary
	s.Audit = res.Audit.Sorted(&m)
	s.Intrinsic = res.Intrinsic
	s.Buffs = res.Buffs
	r.state[s] = Resolved
	return res.Primary, true
}

type calc struct {
	r    *Resolver
	site *system.Site
	res  Result
}

func (c *calc) add(e econ.Economy, delta float64, reason string) {
	c.res.Economies.Adjust(&c.res.Audit, e, delta, reason)
}

func (c *calc) intrinsic(e econ.Economy, amount float64, reason string) {
	c.add(e, amount, reason)
	c.res.Intrinsic = c.res.Intrinsic.With(e)
}

// buff applies a one-shot adjustment to an economy that is already non-zero.
func (c *calc) buff(scope buffScope, e econ.Economy, delta float64, reason string) {
	if delta == 0 || !c.res.Economies.Touched(e) {
		return
	}
	if !claim(&c.res.Buffs, scope, e, delta < 0) {
		return
	}
	c.add(e, delta, reason)
}

func (r *Resolver) compute(s *system.Site) Result {
	c := &calc{r: r, site: s}
	settlement := s.Type.BuildClass == catalogs.ClassSettlement

	switch {
	case settlement:
		if e, ok := r.economyOf(s, s.Type.Inf); ok {
			c.intrinsic(e, r.tune.Baseline.Settlement, "settlement: "+string(e))
		}
	case s.Type.IsColony():
		for _, t := range colonyTraits(s.Body) {
			c.intrinsic(t.economy, r.tune.Baseline.ColonyPerTrait, t.reason)
		}
		if c.res.Intrinsic == 0 {
			r.log.Printf("warn: site %s: body %q gives a colony no economies", s.Label(), bodyName(s))
		}
	default:
		fixed := s.Type.Fixed
		if fixed == "" {
			fixed = s.Type.Inf
		}
		if e, ok := r.economyOf(s, fixed); ok {
			amount := r.tune.Baseline.FixedSurface
			if s.Type.Orbital {
				amount = r.tune.Baseline.FixedOrbital
			}
			c.intrinsic(e, amount, "specialized: "+string(e))
		}
	}

	if !settlement && s.Links != nil {
		for _, src := range s.Links.Strong {
			c.strong(src, 0)
		}
	}

	c.buffs(settlement)

	if !settlement && s.Links != nil {
		for _, src := range s.Links.Weak {
			c.weak(src)
		}
	}

	c.res.Primary = c.res.Economies.Top()
	return c.res
}

func (c *calc) strong(src *system.Site, hop int) {
	if src == c.site {
		return
	}
	w := c.r.tune.StrongWeight(src.Type.Tier)
	reason := fmt.Sprintf("strong link: %s (tier %d)", src.Label(), src.Type.Tier)
	if hop > 0 {
		reason = fmt.Sprintf("sub-strong link: %s (tier %d)", src.Label(), src.Type.Tier)
	}
	if src.Type.IsColony() {
		set, ok := c.r.intrinsicOf(src, c.site)
		if ok {
			for _, e := range set.Slice() {
				c.add(e, w, reason)
			}
		}
	} else if e, ok := c.r.economyOf(src, src.Type.Inf); ok {
		c.add(e, w, reason)
	}

	if hop < c.r.tune.Links.SubLinkHops && src.Links != nil {
		for _, sub := range src.Links.Strong {
			c.strong(sub, hop+1)
		}
	}
}

func (c *calc) weak(src *system.Site) {
	w := c.r.tune.Links.Weak
	reason := "weak link: " + src.Label()
	if src.Type.IsColony() {
		set, ok := c.r.intrinsicOf(src, c.site)
		if !ok {
			return
		}
		for _, e := range set.Slice() {
			c.add(e, w, reason)
		}
		return
	}
	if e, ok := c.r.economyOf(src, src.Type.Inf); ok {
		c.add(e, w, reason)
	}
}

func (c *calc) buffs(settlement bool) {
	r := c.r
	amount := r.tune.Buffs.Amount

	switch r.sys.Reserve {
	case system.ReserveMajor, system.ReservePristine:
		for _, e := range reserveEconomies {
			c.buff(scopeSystem, e, amount, "reserve level: "+string(r.sys.Reserve))
		}
	case system.ReserveLow, system.ReserveDepleted:
		if !settlement {
			for _, e := range reserveEconomies {
				c.buff(scopeSystem, e, -amount, "reserve level: "+string(r.sys.Reserve))
			}
		}
	}

	if r.sys.HasRemnant() {
		c.buff(scopeSystem, econ.Tourism, amount, "stellar remnant in system")
	}

	body := c.site.Body
	if body == nil {
		return
	}
	for _, e := range bodyTypeBuffs[body.Type] {
		c.buff(scopeBody, e, amount, "body type: "+body.Type.DisplayName())
	}
	for _, fb := range featureBuffs {
		if !body.Has(fb.feature) {
			continue
		}
		for _, e := range fb.economies {
			c.buff(scopeBody, e, amount, fb.reason)
		}
	}

	if settlement {
		return
	}
	if body.Type == system.Icy {
		c.buff(scopeBody, econ.Agriculture, -amount, "icy body")
	}
	if r.sys.Tree != nil && r.sys.Tree.IsTidalToStar(body) {
		c.buff(scopeBody, econ.Agriculture, -amount, "tidally locked to star")
	}
}

// intrinsicOf returns the economies a colony-influence source passes on to
// its links. Sites with a market are resolved first; hubs and other colony
// facilities fall back to their body traits.
func (r *Resolver) intrinsicOf(src, dst *system.Site) (econ.Set, bool) {
	if !src.Type.HasEconomy() {
		return traitSet(src.Body), true
	}
	if _, ok := r.Resolve(src); !ok {
		r.log.Printf("warn: site %s: link from unresolved colony %s skipped", dst.Label(), src.Label())
		return 0, false
	}
	return src.Intrinsic, true
}

func (r *Resolver) economyOf(s *system.Site, key string) (econ.Economy, bool) {
	e, ok := econ.Parse(key)
	if !ok {
		r.log.Printf("warn: site %s: type %s references unknown economy %q", s.Label(), s.Type.Name, key)
	}
	return e, ok
}

func bodyName(s *system.Site) string {
	if s.Body == nil {
		return ""
	}
	return s.Body.Name
}
