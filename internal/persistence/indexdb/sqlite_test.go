package indexdb

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"colonyecon.ai/internal/sim/model"
	"colonyecon.ai/internal/sim/systemtest"
	"colonyecon.ai/internal/sim/tuning"
)

func buildModel(t *testing.T) *model.Model {
	t.Helper()
	rec := systemtest.NewSystem("S").
		Reserve("common").
		Body(1, "A 1", "rb").
		Site("port", 1, "ocellus").
		Site("ind", 1, "vulcan_t2").
		Record()
	m, err := model.Build(rec, systemtest.Catalogs(t), tuning.Defaults(), model.Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return m
}

func TestSQLiteIndex_RecordRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index", "runs.sqlite")
	idx, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	m := buildModel(t)
	runID := uuid.NewString()
	idx.RecordRun(runID, m)
	if err := idx.UpsertCatalogs(systemtest.Catalogs(t), tuning.Defaults()); err != nil {
		t.Fatalf("UpsertCatalogs: %v", err)
	}
	if err := idx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	defer db.Close()

	var (
		digest string
		tier3  int
	)
	if err := db.QueryRow(`SELECT digest,tier3 FROM runs WHERE run_id=?`, runID).Scan(&digest, &tier3); err != nil {
		t.Fatalf("Scan run: %v", err)
	}
	if digest != m.Digest() || tier3 != -6 {
		t.Fatalf("run row: digest=%s tier3=%d", digest, tier3)
	}

	var after float64
	row := db.QueryRow(`SELECT value_after FROM audits WHERE run_id=? AND site_id='port' AND economy='industrial'`, runID)
	if err := row.Scan(&after); err != nil {
		t.Fatalf("Scan audit: %v", err)
	}
	if after != 0.8 {
		t.Fatalf("industrial after: got %v want 0.8", after)
	}

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM catalogs`).Scan(&n); err != nil || n != 2 {
		t.Fatalf("catalog rows: n=%d err=%v", n, err)
	}
}

func TestSQLiteIndex_Queries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.sqlite")
	idx, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	idx.RecordRun("run-a", buildModel(t))
	if err := idx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Reopen for reads; the writer has drained.
	idx, err = OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer idx.Close()

	ctx := context.Background()
	run, err := idx.LatestRun(ctx, "S")
	if err != nil {
		t.Fatalf("LatestRun: %v", err)
	}
	if run.RunID != "run-a" || run.CreatedAt.IsZero() {
		t.Fatalf("run: %+v", run)
	}
	if _, err := idx.LatestRun(ctx, "other"); !errors.Is(err, ErrNoRun) {
		t.Fatalf("LatestRun(other): got %v want ErrNoRun", err)
	}

	sites, err := idx.SitesByEconomy(ctx, "run-a", "refinery")
	if err != nil {
		t.Fatalf("SitesByEconomy: %v", err)
	}
	if len(sites) != 1 || sites[0].SiteID != "port" || sites[0].Primary != "orbital" {
		t.Fatalf("sites: %+v", sites)
	}
}

func TestSQLiteIndex_QueueDropStats(t *testing.T) {
	s := &SQLiteIndex{ch: make(chan req, 1)}
	s.ch <- req{kind: reqRun}

	s.RecordRun("r2", buildModel(t))

	st := s.Stats()
	if st.DropRunTotal != 1 {
		t.Fatalf("DropRunTotal=%d want=1", st.DropRunTotal)
	}
	if st.QueueDepth != 1 || st.QueueCapacity != 1 {
		t.Fatalf("queue stats mismatch: depth=%d cap=%d", st.QueueDepth, st.QueueCapacity)
	}
}
