package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gorilla/websocket"

	"colonyecon.ai/internal/protocol"
	"colonyecon.ai/internal/sim/system"
)

func main() {
	var (
		url        = flag.String("url", "ws://localhost:8080/v1/ws", "ws url")
		name       = flag.String("name", "client", "client name")
		systemPath = flag.String("system", "", "path to a system record (.json)")
		siteID     = flag.String("site", "", "site id to echo back (optional)")
		incomplete = flag.Bool("incomplete", false, "count planned and in-progress sites")
		lenient    = flag.Bool("lenient", false, "skip unknown build types")
	)
	flag.Parse()

	if *systemPath == "" {
		fmt.Fprintln(os.Stderr, "missing -system")
		os.Exit(2)
	}
	logger := log.New(os.Stderr, "[client] ", log.LstdFlags|log.Lmicroseconds)

	b, err := os.ReadFile(*systemPath)
	if err != nil {
		logger.Fatalf("read system: %v", err)
	}
	var rec system.Record
	if err := json.Unmarshal(b, &rec); err != nil {
		logger.Fatalf("decode system: %v", err)
	}

	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	hello := protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: protocol.Version, ClientName: *name}
	if err := conn.WriteJSON(hello); err != nil {
		logger.Fatalf("send HELLO: %v", err)
	}
	var welcome protocol.WelcomeMsg
	if err := readJSON(conn, &welcome); err != nil {
		logger.Fatalf("read WELCOME: %v", err)
	}
	logger.Printf("WELCOME session=%s site_types=%d rules=%s", welcome.SessionID, welcome.Catalogs.SiteTypeCount, welcome.Catalogs.RulesVersion)

	req := protocol.ResolveMsg{
		Type:            protocol.TypeResolve,
		ProtocolVersion: protocol.Version,
		ReqID:           "R1",
		System:          rec,
		UseIncomplete:   *incomplete,
		Lenient:         *lenient,
		SiteID:          *siteID,
	}
	if err := conn.WriteJSON(req); err != nil {
		logger.Fatalf("send RESOLVE: %v", err)
	}

	var raw json.RawMessage
	if err := readJSON(conn, &raw); err != nil {
		logger.Fatalf("read reply: %v", err)
	}
	base, err := protocol.DecodeBase(raw)
	if err != nil {
		logger.Fatalf("decode reply: %v", err)
	}
	if base.Type == protocol.TypeError {
		var e protocol.ErrorMsg
		_ = json.Unmarshal(raw, &e)
		if e.Suggestion != "" {
			logger.Fatalf("%s: %s (did you mean %q?)", e.Code, e.Message, e.Suggestion)
		}
		logger.Fatalf("%s: %s", e.Code, e.Message)
	}
	var resp protocol.ResolvedMsg
	if err := json.Unmarshal(raw, &resp); err != nil {
		logger.Fatalf("decode RESOLVED: %v", err)
	}
	logger.Printf("RESOLVED run=%s digest=%s", resp.RunID, resp.Digest)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if resp.Site != nil {
		_ = enc.Encode(resp.Site)
		return
	}
	_ = enc.Encode(resp.System)
}

func readJSON(conn *websocket.Conn, v any) error {
	_ = conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return err
	}
	return json.Unmarshal(msg, v)
}
