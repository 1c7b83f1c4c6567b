package seginfo

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileNameAndPath(t *testing.T) {
	if got := FileName(17); got != "17.log" {
		t.Fatalf("expected 17.log, got %s", got)
	}

	if got := Path("/data", 17); got != filepath.Join("/data", "17.log") {
		t.Fatalf("unexpected path: %s", got)
	}
}

func TestParseGeneration(t *testing.T) {
	gen, err := ParseGeneration("3.log")
	if err != nil {
		t.Fatalf("ParseGeneration: %v", err)
	}
	if gen != 3 {
		t.Fatalf("expected generation 3, got %d", gen)
	}

	cases := []string{"3.txt", "abc.log", "", ".log", "3.log.bak"}
	for _, name := range cases {
		if _, err := ParseGeneration(name); err == nil {
			t.Fatalf("expected an error parsing %q", name)
		}
	}
}

func TestScanGenerationsSkipsUnrecognizedEntriesAndSorts(t *testing.T) {
	dir := t.TempDir()

	files := []string{"3.log", "1.log", "17.log", "notes.txt", "2.log.bak"}
	for _, name := range files {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
			t.Fatalf("seed %s: %v", name, err)
		}
	}

	if err := os.Mkdir(filepath.Join(dir, "5.log"), 0755); err != nil {
		t.Fatalf("seed subdirectory: %v", err)
	}

	generations, err := ScanGenerations(dir)
	if err != nil {
		t.Fatalf("ScanGenerations: %v", err)
	}

	want := []uint64{1, 3, 17}
	if len(generations) != len(want) {
		t.Fatalf("expected %v, got %v", want, generations)
	}
	for i, gen := range want {
		if generations[i] != gen {
			t.Fatalf("expected %v, got %v", want, generations)
		}
	}
}

func TestScanGenerationsEmptyDir(t *testing.T) {
	dir := t.TempDir()

	generations, err := ScanGenerations(dir)
	if err != nil {
		t.Fatalf("ScanGenerations: %v", err)
	}
	if len(generations) != 0 {
		t.Fatalf("expected no generations, got %v", generations)
	}
}
