package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"colonyecon.ai/internal/persistence/indexdb"
	persistlog "colonyecon.ai/internal/persistence/log"
	"colonyecon.ai/internal/persistence/snapshot"
	"colonyecon.ai/internal/sim/catalogs"
	"colonyecon.ai/internal/sim/model"
	"colonyecon.ai/internal/sim/system"
	"colonyecon.ai/internal/sim/tuning"
)

func main() {
	var (
		systemPath = flag.String("system", "", "path to a system record (.json)")
		configDir  = flag.String("configs", "./configs", "config directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		incomplete = flag.Bool("incomplete", false, "count planned and in-progress sites")
		lenient    = flag.Bool("lenient", false, "skip sites with unknown build types instead of failing")
		order      = flag.String("order", "", "comma-separated site ids to resolve first")
		asJSON     = flag.Bool("json", false, "print the resolved view as JSON")
		siteID     = flag.String("site", "", "print the economy ledger of one site")
		auditDir   = flag.String("audit_dir", "", "write audit jsonl.zst files under this data dir (optional)")
		dbPath     = flag.String("db", "", "record the run in this sqlite index (optional)")
		snapPath   = flag.String("snapshot", "", "write a snapshot to this path (optional)")
	)
	flag.Parse()

	if *systemPath == "" {
		fmt.Fprintln(os.Stderr, "missing -system")
		os.Exit(2)
	}
	logger := log.New(os.Stderr, "[colonycalc] ", log.LstdFlags|log.Lmicroseconds)

	cats, err := catalogs.Load(*configDir)
	if err != nil {
		logger.Fatalf("load catalogs: %v", err)
	}
	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load tuning: %v", err)
		}
		logger.Printf("tuning not found (%s); using defaults", tp)
		tune = tuning.Defaults()
	}

	rec, err := readRecord(*systemPath)
	if err != nil {
		logger.Fatalf("read system: %v", err)
	}

	m, err := model.Build(rec, cats, tune, model.Options{
		UseIncomplete: *incomplete,
		Lenient:       *lenient,
		BuildOrder:    splitList(*order),
		Logger:        logger,
	})
	if err != nil {
		logger.Fatalf("resolve: %v", err)
	}
	runID := uuid.NewString()

	if *auditDir != "" {
		al := persistlog.NewAuditLogger(*auditDir)
		if err := al.WriteModel(runID, m); err != nil {
			logger.Printf("audit log: %v", err)
		}
		if err := al.Close(); err != nil {
			logger.Printf("audit log close: %v", err)
		}
	}
	if *dbPath != "" {
		idx, err := indexdb.OpenSQLite(*dbPath)
		if err != nil {
			logger.Fatalf("open index: %v", err)
		}
		if err := idx.UpsertCatalogs(cats, tune); err != nil {
			logger.Printf("index: upsert catalogs: %v", err)
		}
		idx.RecordRun(runID, m)
		if err := idx.Close(); err != nil {
			logger.Printf("index close: %v", err)
		}
	}
	if *snapPath != "" {
		snap, err := snapshot.FromModel(runID, time.Now().Unix(), rec, m, cats.Sites.Digest, tune)
		if err != nil {
			logger.Fatalf("snapshot: %v", err)
		}
		if err := snapshot.WriteSnapshot(*snapPath, snap); err != nil {
			logger.Fatalf("write snapshot: %v", err)
		}
		if fi, err := os.Stat(*snapPath); err == nil {
			logger.Printf("snapshot %s written (%s)", *snapPath, humanBytes(fi.Size()))
		}
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(m.View()); err != nil {
			logger.Fatalf("encode: %v", err)
		}
		return
	}
	if *siteID != "" {
		s := m.System.Site(*siteID)
		if s == nil {
			fmt.Fprintf(os.Stderr, "site %s not in system %s\n", *siteID, m.System.ID)
			os.Exit(1)
		}
		m.Resolve(s.ID)
		writeLedger(os.Stdout, s)
		return
	}
	writeReport(os.Stdout, runID, m)
}

func readRecord(path string) (system.Record, error) {
	var rec system.Record
	b, err := os.ReadFile(path)
	if err != nil {
		return rec, err
	}
	if err := json.Unmarshal(b, &rec); err != nil {
		return rec, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return rec, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
