package model

import (
	"io"
	"log"

	"colonyecon.ai/internal/sim/catalogs"
	"colonyecon.ai/internal/sim/colony"
	"colonyecon.ai/internal/sim/econ"
	"colonyecon.ai/internal/sim/system"
	"colonyecon.ai/internal/sim/tierpoints"
	"colonyecon.ai/internal/sim/tuning"
)

type Options struct {
	// UseIncomplete lets planned and in-progress sites take part.
	UseIncomplete bool
	// Lenient drops sites with unknown build types instead of failing.
	Lenient bool
	// BuildOrder lists site ids to resolve before the rest, in order.
	BuildOrder []string
	Logger     *log.Logger
}

// Model is one rebuild of a system: the fresh graph plus everything derived
// from it.
type Model struct {
	System  *system.System
	Summary tierpoints.Summary
	Options Options

	resolver *colony.Resolver
}

// Build constructs the graph from rec and derives primaries, links, site
// economies and the tier-point summary. The only error is a strict catalog
// miss; data problems are logged and skipped.
func Build(rec system.Record, cats *catalogs.Catalogs, tune tuning.Tuning, opts Options) (*Model, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	sys, err := system.FromRecord(rec, cats, opts.Lenient, logger)
	if err != nil {
		return nil, err
	}
	system.SelectAllPrimaries(sys, opts.UseIncomplete)
	system.ClassifyLinks(sys, opts.UseIncomplete)

	m := &Model{
		System:   sys,
		Options:  opts,
		resolver: colony.NewResolver(sys, tune, opts.UseIncomplete, logger),
	}
	for _, id := range opts.BuildOrder {
		s := sys.Site(id)
		if s == nil {
			logger.Printf("warn: build order: site %s not in system %s", id, sys.ID)
			continue
		}
		m.resolver.Resolve(s)
	}
	for _, s := range sys.Sites {
		if s.Type.HasEconomy() && s.Counts(opts.UseIncomplete) {
			m.resolver.Resolve(s)
		}
	}

	m.Summary = tierpoints.Aggregate(sys, opts.UseIncomplete, tune.TierTax)
	return m, nil
}

// Resolve returns the memoized primary economy of a site, resolving it if the
// rebuild skipped it.
func (m *Model) Resolve(siteID string) (econ.Economy, bool) {
	s := m.System.Site(siteID)
	if s == nil {
		return "", false
	}
	return m.resolver.Resolve(s)
}
