package engine

import (
	stdErrors "errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/ignitedb/ignite/pkg/errors"
	"github.com/ignitedb/ignite/pkg/options"
	"go.uber.org/zap"
)

func newTestEngine(t *testing.T, dir string) *Engine {
	t.Helper()
	opts := options.NewDefaultOptions()
	opts.DataDir = dir

	e, err := New(&Config{Options: &opts, Logger: zap.NewNop().Sugar()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

// S1: open; set("k","v"); get("k") -> "v"
func TestSetThenGet(t *testing.T) {
	e := newTestEngine(t, t.TempDir())
	defer e.Close()

	if err := e.Set("k", "v"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	value, ok, err := e.Get("k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok || value != "v" {
		t.Fatalf("expected (%q, true), got (%q, %v)", "v", value, ok)
	}
}

// S2: open; set("k","v1"); set("k","v2"); get("k") -> "v2"
func TestOverwriteReturnsLatestValue(t *testing.T) {
	e := newTestEngine(t, t.TempDir())
	defer e.Close()

	if err := e.Set("k", "v1"); err != nil {
		t.Fatalf("Set v1: %v", err)
	}
	if err := e.Set("k", "v2"); err != nil {
		t.Fatalf("Set v2: %v", err)
	}

	value, ok, err := e.Get("k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok || value != "v2" {
		t.Fatalf("expected (%q, true), got (%q, %v)", "v2", value, ok)
	}
}

// S3: open; set("a","1"); remove("a"); get("a") -> absent
func TestRemoveThenGetIsAbsent(t *testing.T) {
	e := newTestEngine(t, t.TempDir())
	defer e.Close()

	if err := e.Set("a", "1"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := e.Remove("a"); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	_, ok, err := e.Get("a")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Fatal("expected key to be absent after removal")
	}
}

// S4: open; remove("missing") -> KeyNotFound
func TestRemoveMissingKeyReturnsKeyNotFound(t *testing.T) {
	e := newTestEngine(t, t.TempDir())
	defer e.Close()

	err := e.Remove("missing")
	if !stdErrors.Is(err, errors.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
}

// S5: open; set("k","v"); close; reopen; get("k") -> "v"
func TestDataSurvivesCloseAndReopen(t *testing.T) {
	dir := t.TempDir()

	e := newTestEngine(t, dir)
	if err := e.Set("k", "v"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := e.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened := newTestEngine(t, dir)
	defer reopened.Close()

	value, ok, err := reopened.Get("k")
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if !ok || value != "v" {
		t.Fatalf("expected (%q, true) after reopen, got (%q, %v)", "v", value, ok)
	}
}

// S6: open; set("k", str(i)) for i in 1..=10000; directory size stays
// bounded by a small constant multiple of the compaction threshold, a bound
// the ~330KiB of records written would exceed without compaction;
// get("k") -> "10000"
func TestRepeatedOverwritesTriggerCompactionAndBoundDiskUsage(t *testing.T) {
	dir := t.TempDir()

	opts := options.NewDefaultOptions()
	opts.DataDir = dir
	opts.CompactionThreshold = 64 * 1024

	e, err := New(&Config{Options: &opts, Logger: zap.NewNop().Sugar()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer e.Close()

	const iterations = 10000
	for i := 1; i <= iterations; i++ {
		if err := e.Set("k", strconv.Itoa(i)); err != nil {
			t.Fatalf("Set iteration %d: %v", i, err)
		}
	}

	value, ok, err := e.Get("k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok || value != strconv.Itoa(iterations) {
		t.Fatalf("expected (%q, true), got (%q, %v)", strconv.Itoa(iterations), value, ok)
	}

	var total int64
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			t.Fatalf("Info: %v", err)
		}
		total += info.Size()
	}

	const smallConstant = 2
	if total > smallConstant*opts.CompactionThreshold {
		t.Fatalf("expected directory size bounded by %d bytes, got %d across %v", smallConstant*opts.CompactionThreshold, total, filepath.Join(dir))
	}
}
