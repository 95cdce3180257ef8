package indexdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"colonyecon.ai/internal/sim/catalogs"
	"colonyecon.ai/internal/sim/model"
	"colonyecon.ai/internal/sim/tuning"
)

// SQLiteIndex is a queryable read model of resolved runs. Writes go through a
// buffered channel and a single writer goroutine; when the writer falls behind
// runs are dropped and counted.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool

	dropRun atomic.Uint64
}

type reqKind int

const (
	reqRun reqKind = iota + 1
)

type req struct {
	kind reqKind
	run  runRow
}

type runRow struct {
	RunID         string
	SystemID      string
	SystemName    string
	Digest        string
	UseIncomplete bool
	Tier2         int
	Tier3         int
	CreatedAt     string
	ViewJSON      []byte
	Sites         []siteRow
}

type siteRow struct {
	SiteID         string
	Body           string
	SiteType       string
	Status         string
	Primary        string
	PrimaryEconomy string
	EconomiesJSON  []byte
	Audits         []auditRow
}

type auditRow struct {
	Economy string
	Delta   float64
	Before  float64
	After   float64
	Reason  string
}

// QueueStats reports writer backlog and drops.
type QueueStats struct {
	QueueDepth    int
	QueueCapacity int
	DropRunTotal  uint64
}

// RunSummary is one row of the runs table.
type RunSummary struct {
	RunID         string
	SystemID      string
	SystemName    string
	Digest        string
	UseIncomplete bool
	Tier2         int
	Tier3         int
	CreatedAt     time.Time
}

// SiteSummary is one row of the sites table.
type SiteSummary struct {
	SiteID         string
	Body           string
	SiteType       string
	Status         string
	Primary        string
	PrimaryEconomy string
}

var ErrNoRun = errors.New("no run recorded")

// Fixed-width so created_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan req, 1024),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS catalogs (
			name TEXT PRIMARY KEY,
			digest TEXT NOT NULL,
			json TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			system_id TEXT NOT NULL,
			system_name TEXT NOT NULL,
			digest TEXT NOT NULL,
			use_incomplete INTEGER NOT NULL,
			tier2 INTEGER NOT NULL,
			tier3 INTEGER NOT NULL,
			created_at TEXT NOT NULL,
			view_json TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_system_created ON runs(system_id, created_at);`,
		`CREATE TABLE IF NOT EXISTS sites (
			run_id TEXT NOT NULL,
			site_id TEXT NOT NULL,
			body TEXT NOT NULL,
			site_type TEXT NOT NULL,
			status TEXT NOT NULL,
			primary_role TEXT NOT NULL,
			primary_economy TEXT NOT NULL,
			economies_json TEXT NOT NULL,
			PRIMARY KEY (run_id, site_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sites_economy ON sites(primary_economy);`,
		`CREATE TABLE IF NOT EXISTS audits (
			run_id TEXT NOT NULL,
			site_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			economy TEXT NOT NULL,
			delta REAL NOT NULL,
			value_before REAL NOT NULL,
			value_after REAL NOT NULL,
			reason TEXT NOT NULL,
			PRIMARY KEY (run_id, site_id, seq)
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *SQLiteIndex) Stats() QueueStats {
	if s == nil {
		return QueueStats{}
	}
	return QueueStats{
		QueueDepth:    len(s.ch),
		QueueCapacity: cap(s.ch),
		DropRunTotal:  s.dropRun.Load(),
	}
}

// RecordRun queues m for indexing under runID. It never blocks.
func (s *SQLiteIndex) RecordRun(runID string, m *model.Model) {
	if s == nil || s.closed.Load() {
		return
	}
	r := newRunRow(runID, m, time.Now().UTC())
	select {
	case s.ch <- req{kind: reqRun, run: r}:
	default:
		// The JSONL audit files remain the source of truth.
		s.dropRun.Add(1)
	}
}

func newRunRow(runID string, m *model.Model, now time.Time) runRow {
	view := m.View()
	raw, _ := json.Marshal(view)
	r := runRow{
		RunID:         runID,
		SystemID:      view.ID,
		SystemName:    view.Name,
		Digest:        m.Digest(),
		UseIncomplete: view.UseIncomplete,
		Tier2:         view.TierPoints.Tier2,
		Tier3:         view.TierPoints.Tier3,
		CreatedAt:     now.UTC().Format(timeLayout),
		ViewJSON:      raw,
	}
	for _, sv := range view.Sites {
		row := siteRow{
			SiteID:         sv.ID,
			Body:           sv.Body,
			SiteType:       sv.SiteType,
			Status:         sv.Status,
			Primary:        sv.Primary,
			PrimaryEconomy: string(sv.PrimaryEconomy),
		}
		if sv.Economies != nil {
			row.EconomiesJSON, _ = json.Marshal(sv.Economies)
		} else {
			row.EconomiesJSON = []byte("null")
		}
		for _, a := range sv.Audit {
			row.Audits = append(row.Audits, auditRow{
				Economy: string(a.Economy),
				Delta:   a.Delta,
				Before:  a.Before,
				After:   a.After,
				Reason:  a.Reason,
			})
		}
		r.Sites = append(r.Sites, row)
	}
	return r
}

// UpsertCatalogs stores the site type catalog and the effective tuning.
func (s *SQLiteIndex) UpsertCatalogs(cats *catalogs.Catalogs, tune tuning.Tuning) error {
	if s == nil {
		return nil
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	type kv struct {
		name   string
		digest string
		json   []byte
	}
	var rows []kv
	if b, _ := json.Marshal(cats.Sites.Types); len(b) > 0 {
		rows = append(rows, kv{name: "site_types", digest: cats.Sites.Digest, json: b})
	}
	if b, _ := json.Marshal(tune); len(b) > 0 {
		rows = append(rows, kv{name: "tuning", digest: tune.Digest(), json: b})
	}

	tx, err := s.db.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1')`); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('rules_version',?)`, tune.RulesVersion); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO catalogs(name,digest,json,updated_at) VALUES(?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.Exec(r.name, r.digest, string(r.json), now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// LatestRun returns the most recent run recorded for systemID.
func (s *SQLiteIndex) LatestRun(ctx context.Context, systemID string) (RunSummary, error) {
	var (
		r       RunSummary
		inc     int
		created string
	)
	row := s.db.QueryRowContext(ctx, `SELECT run_id,system_id,system_name,digest,use_incomplete,tier2,tier3,created_at
		FROM runs WHERE system_id=? ORDER BY created_at DESC LIMIT 1`, systemID)
	if err := row.Scan(&r.RunID, &r.SystemID, &r.SystemName, &r.Digest, &inc, &r.Tier2, &r.Tier3, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return r, fmt.Errorf("system %s: %w", systemID, ErrNoRun)
		}
		return r, err
	}
	r.UseIncomplete = inc != 0
	r.CreatedAt, _ = time.Parse(timeLayout, created)
	return r, nil
}

// SitesByEconomy lists the sites of a run whose primary economy is e.
func (s *SQLiteIndex) SitesByEconomy(ctx context.Context, runID, e string) ([]SiteSummary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT site_id,body,site_type,status,primary_role,primary_economy
		FROM sites WHERE run_id=? AND primary_economy=? ORDER BY site_id`, runID, e)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []SiteSummary
	for rows.Next() {
		var ss SiteSummary
		if err := rows.Scan(&ss.SiteID, &ss.Body, &ss.SiteType, &ss.Status, &ss.Primary, &ss.PrimaryEconomy); err != nil {
			return nil, err
		}
		out = append(out, ss)
	}
	return out, rows.Err()
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insertRun, _ := s.db.Prepare(`INSERT OR REPLACE INTO runs(run_id,system_id,system_name,digest,use_incomplete,tier2,tier3,created_at,view_json) VALUES(?,?,?,?,?,?,?,?,?)`)
	insertSite, _ := s.db.Prepare(`INSERT OR REPLACE INTO sites(run_id,site_id,body,site_type,status,primary_role,primary_economy,economies_json) VALUES(?,?,?,?,?,?,?,?)`)
	insertAudit, _ := s.db.Prepare(`INSERT OR REPLACE INTO audits(run_id,site_id,seq,economy,delta,value_before,value_after,reason) VALUES(?,?,?,?,?,?,?,?)`)
	defer func() {
		for _, st := range []*sql.Stmt{insertRun, insertSite, insertAudit} {
			if st != nil {
				_ = st.Close()
			}
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 2000
		commitMaxWait = 2 * time.Second
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}

	for r := range s.ch {
		begin()
		if tx == nil || insertRun == nil || insertSite == nil || insertAudit == nil {
			continue
		}
		switch r.kind {
		case reqRun:
			if err := writeRun(tx, insertRun, insertSite, insertAudit, r.run, &opCount); err != nil {
				rollback()
				continue
			}
		}
		if opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait {
			commit()
		}
	}

	commit()
}

func writeRun(tx *sql.Tx, insertRun, insertSite, insertAudit *sql.Stmt, run runRow, opCount *int) error {
	inc := 0
	if run.UseIncomplete {
		inc = 1
	}
	if _, err := tx.Stmt(insertRun).Exec(run.RunID, run.SystemID, run.SystemName, run.Digest, inc, run.Tier2, run.Tier3, run.CreatedAt, string(run.ViewJSON)); err != nil {
		return err
	}
	*opCount++
	for _, st := range run.Sites {
		if _, err := tx.Stmt(insertSite).Exec(run.RunID, st.SiteID, st.Body, st.SiteType, st.Status, st.Primary, st.PrimaryEconomy, string(st.EconomiesJSON)); err != nil {
			return err
		}
		*opCount++
		for i, a := range st.Audits {
			if _, err := tx.Stmt(insertAudit).Exec(run.RunID, st.SiteID, i, a.Economy, a.Delta, a.Before, a.After, a.Reason); err != nil {
				return err
			}
			*opCount++
		}
	}
	return nil
}
