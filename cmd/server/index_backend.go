package main

import (
	"context"
	"log"
	"path/filepath"

	"colonyecon.ai/internal/persistence/indexdb"
	persistlog "colonyecon.ai/internal/persistence/log"
	"colonyecon.ai/internal/sim/catalogs"
	"colonyecon.ai/internal/sim/model"
	"colonyecon.ai/internal/sim/tuning"
	"colonyecon.ai/internal/transport/ws"
)

// runtimeIndex is the read model behind the admin endpoints.
type runtimeIndex interface {
	ws.RunSink
	Close() error
	UpsertCatalogs(cats *catalogs.Catalogs, tune tuning.Tuning) error
	Stats() indexdb.QueueStats
	LatestRun(ctx context.Context, systemID string) (indexdb.RunSummary, error)
	SitesByEconomy(ctx context.Context, runID, economy string) ([]indexdb.SiteSummary, error)
}

func openRuntimeIndex(dataDir string, disableDB bool) (runtimeIndex, error) {
	if disableDB {
		return nil, nil
	}
	idx, err := indexdb.OpenSQLite(filepath.Join(dataDir, "index", "colony.sqlite"))
	if err != nil {
		return nil, err
	}
	return idx, nil
}

// auditSink writes the ledger of every resolved run to hourly audit files.
type auditSink struct {
	l      *persistlog.AuditLogger
	logger *log.Logger
}

func (a auditSink) RecordRun(runID string, m *model.Model) {
	if err := a.l.WriteModel(runID, m); err != nil {
		a.logger.Printf("audit log: run %s: %v", runID, err)
	}
}
