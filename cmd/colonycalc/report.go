package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"colonyecon.ai/internal/sim/model"
	"colonyecon.ai/internal/sim/system"
)

func humanBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}

func writeReport(w io.Writer, runID string, m *model.Model) {
	sys := m.System
	fmt.Fprintf(w, "system %s (%s) architect=%s reserve=%s run=%s\n", sys.Name, sys.ID, sys.Architect, sys.Reserve, runID)

	tp := m.Summary.TierPoints
	fmt.Fprintf(w, "tier points: T2 %s  T3 %s\n", signed(tp.Tier2), signed(tp.Tier3))
	e := m.Summary.SumEffects
	fmt.Fprintf(w, "effects: pop %s  sec %s  wealth %s  tech %s  sol %s  dev %s\n",
		signed(e.Pop), signed(e.Sec), signed(e.Wealth), signed(e.Tech), signed(e.SoL), signed(e.Dev))

	for i, ec := range m.Summary.Ranked() {
		fmt.Fprintf(w, "  %s %-12s %s\n", humanize.Ordinal(i+1), ec.Economy, humanize.Comma(int64(ec.Count)))
	}

	fmt.Fprintln(w)
	for _, s := range sys.Sites {
		if s.Economies == nil {
			fmt.Fprintf(w, "%-24s %-16s %-9s\n", s.Label(), s.BuildType, s.Status)
			continue
		}
		fmt.Fprintf(w, "%-24s %-16s %-9s %-12s %s\n", s.Label(), s.BuildType, s.Status, s.PrimaryEconomy, economies(s))
	}
}

// writeLedger prints the economy audit of s grouped by economy.
func writeLedger(w io.Writer, s *system.Site) {
	fmt.Fprintf(w, "%s (%s) primary=%s\n", s.Label(), s.BuildType, s.PrimaryEconomy)
	if s.Economies == nil {
		fmt.Fprintln(w, "  no economy")
		return
	}
	for _, a := range s.Audit.Sorted(s.Economies) {
		delta := humanize.Ftoa(a.Delta)
		if a.Delta >= 0 {
			delta = "+" + delta
		}
		fmt.Fprintf(w, "  %-12s %7s  %s -> %s  %s\n", a.Economy, delta, humanize.Ftoa(a.Before), humanize.Ftoa(a.After), a.Reason)
	}
}

func economies(s *system.Site) string {
	var parts []string
	for _, e := range s.Economies.Ranked() {
		v := s.Economies.Get(e)
		if v <= 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s:%s", e, humanize.FtoaWithDigits(v, 2)))
	}
	return strings.Join(parts, " ")
}

func signed(n int) string {
	if n > 0 {
		return "+" + humanize.Comma(int64(n))
	}
	return humanize.Comma(int64(n))
}
