package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"colonyecon.ai/internal/persistence/snapshot"
	"colonyecon.ai/internal/sim/catalogs"
)

func main() {
	var (
		snapPath  = flag.String("snapshot", "", "path to .snap.zst")
		siteID    = flag.String("site", "", "print the recorded ledger of one site (optional)")
		verify    = flag.Bool("verify", false, "rebuild the snapshot and compare digests")
		configDir = flag.String("configs", "./configs", "config directory (used by -verify)")
	)
	flag.Parse()

	if *snapPath == "" {
		fmt.Fprintln(os.Stderr, "missing -snapshot")
		os.Exit(2)
	}

	snap, err := snapshot.ReadSnapshot(*snapPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read snapshot:", err)
		os.Exit(1)
	}
	writeHeader(os.Stdout, snap)

	if *siteID != "" {
		sv, ok := snap.Site(*siteID)
		if !ok {
			fmt.Fprintf(os.Stderr, "site %s not in snapshot\n", *siteID)
			os.Exit(1)
		}
		fmt.Printf("%s (%s) primary=%s\n", sv.ID, sv.BuildType, sv.PrimaryEconomy)
		for _, a := range sv.Audit {
			fmt.Printf("  %-12s %+.2f  %.2f -> %.2f  %s\n", a.Economy, a.Delta, a.Before, a.After, a.Reason)
		}
	}

	if !*verify {
		return
	}
	cats, err := catalogs.Load(*configDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load catalogs:", err)
		os.Exit(1)
	}
	logger := log.New(os.Stderr, "[inspect] ", log.LstdFlags)
	if _, err := snapshot.Rebuild(snap, cats, logger); err != nil {
		fmt.Fprintln(os.Stderr, "verify:", err)
		os.Exit(1)
	}
	fmt.Printf("OK: digest %s reproduced\n", snap.Header.Digest)
}

func writeHeader(w io.Writer, snap snapshot.SnapshotV1) {
	h := snap.Header
	created := "unknown"
	if h.CreatedAt > 0 {
		created = humanize.Time(time.Unix(h.CreatedAt, 0))
	}
	fmt.Fprintf(w, "snapshot v%d system=%s run=%s created=%s digest=%s\n", h.Version, h.SystemID, h.RunID, created, h.Digest)
	v, err := snap.ResolvedView()
	if err != nil {
		fmt.Fprintf(w, "view: %v\n", err)
		return
	}
	fmt.Fprintf(w, "sites=%d tier2=%d tier3=%d use_incomplete=%v lenient=%v rules=%s\n",
		len(v.Sites), v.TierPoints.Tier2, v.TierPoints.Tier3, snap.UseIncomplete, snap.Lenient, snap.Tuning.RulesVersion)
}
