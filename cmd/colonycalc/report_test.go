package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"colonyecon.ai/internal/sim/catalogs"
	"colonyecon.ai/internal/sim/model"
	"colonyecon.ai/internal/sim/systemtest"
	"colonyecon.ai/internal/sim/tuning"
)

func buildSample(t *testing.T) *model.Model {
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

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	writeReport(&buf, "run-1", buildSample(t))
	out := buf.String()
	for _, want := range []string{"system S (S)", "run=run-1", "T3 -6", "industrial:0.8", "1st"} {
		if !strings.Contains(out, want) {
			t.Fatalf("report missing %q:\n%s", want, out)
		}
	}
}

func TestWriteLedger(t *testing.T) {
	m := buildSample(t)
	var buf bytes.Buffer
	writeLedger(&buf, m.System.Site("port"))
	out := buf.String()
	if !strings.Contains(out, "primary=refinery") || !strings.Contains(out, "+0.8") {
		t.Fatalf("ledger:\n%s", out)
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" a, ,b,")
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("splitList: got %v", got)
	}
	if splitList("") != nil {
		t.Fatalf("splitList empty: want nil")
	}
}

func TestExampleSystem(t *testing.T) {
	rec, err := readRecord(filepath.Join("..", "..", "configs", "examples", "col285.json"))
	if err != nil {
		t.Fatalf("readRecord: %v", err)
	}
	cats, err := catalogs.Load(filepath.Join("..", "..", "configs"))
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	for _, inc := range []bool{false, true} {
		m, err := model.Build(rec, cats, tuning.Defaults(), model.Options{UseIncomplete: inc})
		if err != nil {
			t.Fatalf("Build(incomplete=%v): %v", inc, err)
		}
		for _, s := range m.System.Sites {
			if s.Type.HasEconomy() && s.Counts(inc) && !s.Resolved() {
				t.Fatalf("site %s unresolved (incomplete=%v)", s.ID, inc)
			}
		}
		if m.System.Site("port").PrimaryEconomy == "" {
			t.Fatalf("port has no primary economy")
		}
	}
}
