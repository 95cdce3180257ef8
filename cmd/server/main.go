package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"colonyecon.ai/internal/config"
	persistlog "colonyecon.ai/internal/persistence/log"
	"colonyecon.ai/internal/sim/catalogs"
	"colonyecon.ai/internal/sim/tuning"
	"colonyecon.ai/internal/transport/ws"
)

func main() {
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	var cfg config.Server
	if err := config.ParseEnv(&cfg); err != nil {
		logger.Fatalf("%v", err)
	}
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "http listen address")
	flag.StringVar(&cfg.ConfigsDir, "configs", cfg.ConfigsDir, "config directory")
	flag.StringVar(&cfg.TuningPath, "tuning", cfg.TuningPath, "path to tuning.yaml (default: <configs>/tuning.yaml)")
	flag.StringVar(&cfg.DataDir, "data", cfg.DataDir, "runtime data directory")
	flag.BoolVar(&cfg.DisableDB, "disable_db", cfg.DisableDB, "disable the sqlite run index")
	flag.BoolVar(&cfg.NoAudit, "no_audit", cfg.NoAudit, "disable audit jsonl.zst output")
	flag.BoolVar(&cfg.EnablePprof, "pprof", cfg.EnablePprof, "serve /debug/pprof")
	flag.Parse()

	cats, err := catalogs.Load(cfg.ConfigsDir)
	if err != nil {
		logger.Fatalf("load catalogs: %v", err)
	}
	tp := strings.TrimSpace(cfg.TuningPath)
	if tp == "" {
		tp = filepath.Join(cfg.ConfigsDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load tuning: %v", err)
		}
		logger.Printf("tuning not found (%s); using defaults", tp)
		tune = tuning.Defaults()
	}
	logger.Printf("catalogs: %d site types digest=%s rules=%s", len(cats.Sites.Types), cats.Sites.Digest, tune.RulesVersion)

	// Optional read-model index (does not affect resolution).
	idx, err := openRuntimeIndex(cfg.DataDir, cfg.DisableDB)
	if err != nil {
		logger.Fatalf("open index: %v", err)
	}
	var sinks []ws.RunSink
	if idx != nil {
		defer idx.Close()
		if err := idx.UpsertCatalogs(cats, tune); err != nil {
			logger.Printf("index: upsert catalogs: %v", err)
		}
		sinks = append(sinks, idx)
	}
	if !cfg.NoAudit {
		al := persistlog.NewAuditLogger(cfg.DataDir)
		defer al.Close()
		sinks = append(sinks, auditSink{l: al, logger: logger})
	}

	ctx, cancel := signalContext()
	defer cancel()

	wsSrv := ws.NewServer(cats, tune, logger, sinks...)
	mux := newMux(muxConfig{EnableAdmin: true, EnablePprof: cfg.EnablePprof}, wsSrv, idx)
	if !cfg.EnablePprof {
		logger.Printf("pprof endpoints disabled (COLONY_ENABLE_PPROF=false)")
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s", cfg.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}
