package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wippyai/handle-table/table"
)

func TestLoadScenario(t *testing.T) {
	sc, err := loadScenario(filepath.Join("testdata", "sample.hujson"))
	if err != nil {
		t.Fatalf("loadScenario failed: %v", err)
	}

	if sc.Options == nil {
		t.Fatal("Expected options block")
	}
	if sc.Options.GrowthIncrement != 4 || sc.Options.MinFreeEntries != 0 {
		t.Fatalf("Unexpected options: %+v", sc.Options)
	}
	if len(sc.Steps) != 12 {
		t.Fatalf("Expected 12 steps, got %d", len(sc.Steps))
	}
	if sc.Steps[0].Op != "allocate" || sc.Steps[0].Label != "adapter" {
		t.Fatalf("Unexpected first step: %+v", sc.Steps[0])
	}
}

func TestReplay_Sample(t *testing.T) {
	var out bytes.Buffer
	err := replay(filepath.Join("testdata", "sample.hujson"), table.DefaultOptions(), &out)
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}

	trace := out.String()

	// The destroyed entry misses the plain lookup and resolves with
	// ignore_destroyed set.
	if !strings.Contains(trace, "miss") {
		t.Fatalf("Expected a lookup miss in trace:\n%s", trace)
	}
	if !strings.Contains(trace, "-> device") {
		t.Fatalf("Expected a device hit in trace:\n%s", trace)
	}
	if !strings.Contains(trace, "assign 0x400000c0 type=3: ok") {
		t.Fatalf("Expected assign trace line:\n%s", trace)
	}
	if !strings.Contains(trace, "final: size=4 used=0 free=4") {
		t.Fatalf("Expected final stats in trace:\n%s", trace)
	}
}

func TestReplay_LabelResolution(t *testing.T) {
	path := writeScenario(t, `{
		"steps": [
			{"op": "allocate", "type": 1, "object": "a", "as": "first"},
			{"op": "free", "handle": "first", "type": 1},
		],
	}`)

	var out bytes.Buffer
	if err := replay(path, table.DefaultOptions(), &out); err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if !strings.Contains(out.String(), "free 0x40000000: ok") {
		t.Fatalf("Expected labeled free to succeed:\n%s", out.String())
	}
}

func TestReplay_UnknownOp(t *testing.T) {
	path := writeScenario(t, `{"steps": [{"op": "explode"}]}`)

	var out bytes.Buffer
	err := replay(path, table.DefaultOptions(), &out)
	if err == nil {
		t.Fatal("Expected unknown op to fail")
	}
	if !strings.Contains(err.Error(), "unknown op") {
		t.Fatalf("Unexpected error: %v", err)
	}
}

func TestReplay_UnknownLabel(t *testing.T) {
	path := writeScenario(t, `{"steps": [{"op": "free", "handle": "ghost", "type": 1}]}`)

	var out bytes.Buffer
	err := replay(path, table.DefaultOptions(), &out)
	if err == nil {
		t.Fatal("Expected unknown label to fail")
	}
	if !strings.Contains(err.Error(), "unknown label") {
		t.Fatalf("Unexpected error: %v", err)
	}
}

func TestReplay_TableErrorsAreTraced(t *testing.T) {
	// A double free is a table-level failure: the trace records it and
	// the replay keeps going.
	path := writeScenario(t, `{
		"steps": [
			{"op": "allocate", "type": 1, "object": "a", "as": "x"},
			{"op": "free", "handle": "x", "type": 1},
			{"op": "free", "handle": "x", "type": 1},
			{"op": "stats"},
		],
	}`)

	var out bytes.Buffer
	if err := replay(path, table.DefaultOptions(), &out); err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if !strings.Contains(out.String(), "stale_handle") {
		t.Fatalf("Expected stale handle in trace:\n%s", out.String())
	}
}

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.hujson")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write scenario: %v", err)
	}
	return path
}
