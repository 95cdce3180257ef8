package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"colonyecon.ai/internal/persistence/indexdb"
	persistlog "colonyecon.ai/internal/persistence/log"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "audit":
			auditCmd(os.Args[2:])
			return
		case "db":
			dbCmd(os.Args[2:])
			return
		}
	}
	listCmd(os.Args[1:])
}

// listCmd lists the audit files under the data dir.
func listCmd(args []string) {
	fs := flag.NewFlagSet("admin", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	_ = fs.Parse(args)

	files, err := auditFiles(*dataDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read:", err)
		os.Exit(1)
	}
	for _, f := range files {
		fmt.Println(filepath.Base(f))
	}
}

func auditCmd(args []string) {
	fs := flag.NewFlagSet("audit", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	runID := fs.String("run", "", "run id filter (optional)")
	systemID := fs.String("system", "", "system id filter (optional)")
	siteID := fs.String("site", "", "site id filter (optional)")
	_ = fs.Parse(args)

	files, err := auditFiles(*dataDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read:", err)
		os.Exit(1)
	}
	f := auditFilter{RunID: *runID, SystemID: *systemID, SiteID: *siteID}
	for _, path := range files {
		recs, err := persistlog.ReadAuditFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", filepath.Base(path), err)
			continue
		}
		for _, r := range f.apply(recs) {
			fmt.Printf("%s %s %s #%d %-12s %+.2f %.2f -> %.2f %s\n", r.RunID, r.SystemID, r.SiteID, r.Seq, r.Economy, r.Delta, r.Before, r.After, r.Reason)
		}
	}
}

type auditFilter struct {
	RunID, SystemID, SiteID string
}

func (f auditFilter) apply(recs []persistlog.AuditRecord) []persistlog.AuditRecord {
	var out []persistlog.AuditRecord
	for _, r := range recs {
		if f.RunID != "" && r.RunID != f.RunID {
			continue
		}
		if f.SystemID != "" && r.SystemID != f.SystemID {
			continue
		}
		if f.SiteID != "" && r.SiteID != f.SiteID {
			continue
		}
		out = append(out, r)
	}
	return out
}

// auditFiles returns the audit files in name order, which is hour order.
func auditFiles(dataDir string) ([]string, error) {
	dir := filepath.Join(dataDir, "audit")
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range ents {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".jsonl.zst") {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

func dbCmd(args []string) {
	fs := flag.NewFlagSet("db", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	systemID := fs.String("system", "", "system id")
	economy := fs.String("economy", "", "list sites of the latest run with this primary economy (optional)")
	_ = fs.Parse(args)

	if strings.TrimSpace(*systemID) == "" {
		fmt.Fprintln(os.Stderr, "missing -system")
		os.Exit(2)
	}
	idx, err := indexdb.OpenSQLite(filepath.Join(*dataDir, "index", "colony.sqlite"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "open index:", err)
		os.Exit(1)
	}
	defer idx.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	run, err := idx.LatestRun(ctx, *systemID)
	if errors.Is(err, indexdb.ErrNoRun) {
		fmt.Fprintf(os.Stderr, "no run recorded for %s\n", *systemID)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "query:", err)
		os.Exit(1)
	}
	fmt.Printf("run=%s system=%s (%s) digest=%s tier2=%d tier3=%d incomplete=%v at=%s\n",
		run.RunID, run.SystemID, run.SystemName, run.Digest, run.Tier2, run.Tier3, run.UseIncomplete, run.CreatedAt.Format(time.RFC3339))

	if *economy == "" {
		return
	}
	sites, err := idx.SitesByEconomy(ctx, run.RunID, *economy)
	if err != nil {
		fmt.Fprintln(os.Stderr, "query:", err)
		os.Exit(1)
	}
	for _, s := range sites {
		fmt.Printf("  %-24s %-16s %-9s %s\n", s.SiteID, s.SiteType, s.Status, s.Body)
	}
}
