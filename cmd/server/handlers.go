package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"
	"strings"

	"colonyecon.ai/internal/persistence/indexdb"
	"colonyecon.ai/internal/transport/ws"
)

type muxConfig struct {
	EnableAdmin bool
	EnablePprof bool
}

func newMux(cfg muxConfig, wsSrv *ws.Server, idx runtimeIndex) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")
		if idx == nil {
			return
		}
		s := idx.Stats()
		fmt.Fprintf(rw, "# HELP colonyecon_index_queue_depth Current index writer queue depth.\n")
		fmt.Fprintf(rw, "# TYPE colonyecon_index_queue_depth gauge\n")
		fmt.Fprintf(rw, "colonyecon_index_queue_depth %d\n", s.QueueDepth)

		fmt.Fprintf(rw, "# HELP colonyecon_index_queue_capacity Index writer queue capacity.\n")
		fmt.Fprintf(rw, "# TYPE colonyecon_index_queue_capacity gauge\n")
		fmt.Fprintf(rw, "colonyecon_index_queue_capacity %d\n", s.QueueCapacity)

		fmt.Fprintf(rw, "# HELP colonyecon_index_dropped_runs_total Runs dropped because the writer queue was full.\n")
		fmt.Fprintf(rw, "# TYPE colonyecon_index_dropped_runs_total counter\n")
		fmt.Fprintf(rw, "colonyecon_index_dropped_runs_total %d\n", s.DropRunTotal)
	})

	if cfg.EnableAdmin && idx != nil {
		// Local-only read endpoints over the run index.
		mux.HandleFunc("/admin/v1/runs/latest", func(rw http.ResponseWriter, r *http.Request) {
			if !isLoopbackRemote(r.RemoteAddr) {
				http.Error(rw, "forbidden", http.StatusForbidden)
				return
			}
			systemID := strings.TrimSpace(r.URL.Query().Get("system"))
			if systemID == "" {
				http.Error(rw, "missing system", http.StatusBadRequest)
				return
			}
			run, err := idx.LatestRun(r.Context(), systemID)
			if errors.Is(err, indexdb.ErrNoRun) {
				http.Error(rw, "no run", http.StatusNotFound)
				return
			}
			if err != nil {
				http.Error(rw, err.Error(), http.StatusInternalServerError)
				return
			}
			rw.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(rw).Encode(run)
		})
		mux.HandleFunc("/admin/v1/sites", func(rw http.ResponseWriter, r *http.Request) {
			if !isLoopbackRemote(r.RemoteAddr) {
				http.Error(rw, "forbidden", http.StatusForbidden)
				return
			}
			q := r.URL.Query()
			runID, economy := strings.TrimSpace(q.Get("run")), strings.TrimSpace(q.Get("economy"))
			if runID == "" || economy == "" {
				http.Error(rw, "missing run or economy", http.StatusBadRequest)
				return
			}
			sites, err := idx.SitesByEconomy(r.Context(), runID, economy)
			if err != nil {
				http.Error(rw, err.Error(), http.StatusInternalServerError)
				return
			}
			rw.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(rw).Encode(sites)
		})
	}
	if cfg.EnablePprof {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}
	mux.HandleFunc("/v1/ws", wsSrv.Handler())
	return mux
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
