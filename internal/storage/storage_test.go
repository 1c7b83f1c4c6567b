package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ignitedb/ignite/pkg/options"
	"github.com/ignitedb/ignite/pkg/seginfo"
	"go.uber.org/zap"
)

func newTestConfig(t *testing.T, dataDir string) *Config {
	t.Helper()
	opts := options.NewDefaultOptions()
	opts.DataDir = dataDir
	return &Config{Options: &opts, Logger: zap.NewNop().Sugar()}
}

func TestOpenEmptyDirStartsAtGeneration1(t *testing.T) {
	dir := t.TempDir()

	st, prior, err := Open(newTestConfig(t, dir))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	if len(prior) != 0 {
		t.Fatalf("expected no prior generations, got %v", prior)
	}
	if st.ActiveGeneration() != 1 {
		t.Fatalf("expected active generation 1, got %d", st.ActiveGeneration())
	}
	if st.ActiveWriter() == nil {
		t.Fatal("expected a non-nil active writer")
	}

	if _, err := os.Stat(seginfo.Path(dir, 1)); err != nil {
		t.Fatalf("expected generation file to exist: %v", err)
	}
}

func TestOpenDiscoversExistingGenerationsAndContinues(t *testing.T) {
	dir := t.TempDir()

	for _, gen := range []uint64{1, 2, 5} {
		if err := os.WriteFile(filepath.Join(dir, seginfo.FileName(gen)), nil, 0644); err != nil {
			t.Fatalf("seed generation %d: %v", gen, err)
		}
	}

	st, prior, err := Open(newTestConfig(t, dir))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	wantPrior := []uint64{1, 2, 5}
	if len(prior) != len(wantPrior) {
		t.Fatalf("expected prior generations %v, got %v", wantPrior, prior)
	}
	for i, gen := range wantPrior {
		if prior[i] != gen {
			t.Fatalf("expected prior generations %v, got %v", wantPrior, prior)
		}
	}

	if st.ActiveGeneration() != 6 {
		t.Fatalf("expected active generation 6, got %d", st.ActiveGeneration())
	}

	for _, gen := range append(wantPrior, 6) {
		if _, err := st.Reader(gen); err != nil {
			t.Fatalf("expected registered reader for generation %d: %v", gen, err)
		}
	}
}

func TestCreateGenerationRegistersReaderAndWriter(t *testing.T) {
	dir := t.TempDir()

	st, _, err := Open(newTestConfig(t, dir))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	writer, err := st.CreateGeneration(99)
	if err != nil {
		t.Fatalf("CreateGeneration: %v", err)
	}
	defer writer.Close()

	if _, err := st.Reader(99); err != nil {
		t.Fatalf("expected reader registered for new generation: %v", err)
	}
}

func TestSetActiveWriterClosesSupersededWriter(t *testing.T) {
	dir := t.TempDir()

	st, _, err := Open(newTestConfig(t, dir))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	outgoing := st.ActiveWriter()
	outgoingGen := st.ActiveGeneration()

	incoming, err := st.CreateGeneration(outgoingGen + 1)
	if err != nil {
		t.Fatalf("CreateGeneration: %v", err)
	}

	if err := st.SetActiveWriter(outgoingGen+1, incoming); err != nil {
		t.Fatalf("SetActiveWriter: %v", err)
	}

	if st.ActiveWriter() != incoming {
		t.Fatal("expected the new writer to become active")
	}

	if _, err := outgoing.Write([]byte("x")); err != nil {
		t.Fatalf("buffered Write should not itself fail: %v", err)
	}
	if err := outgoing.Flush(); err == nil {
		t.Fatal("expected flushing the superseded writer to fail against its closed file handle")
	}
}

func TestReaderForUnknownGenerationErrors(t *testing.T) {
	dir := t.TempDir()

	st, _, err := Open(newTestConfig(t, dir))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	if _, err := st.Reader(1234); err == nil {
		t.Fatal("expected an error for an unregistered generation")
	}
}

func TestRemoveGenerationsBelowDeletesFilesAndReaders(t *testing.T) {
	dir := t.TempDir()

	for _, gen := range []uint64{1, 2, 3} {
		if err := os.WriteFile(filepath.Join(dir, seginfo.FileName(gen)), nil, 0644); err != nil {
			t.Fatalf("seed generation %d: %v", gen, err)
		}
	}

	st, _, err := Open(newTestConfig(t, dir))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	if err := st.RemoveGenerationsBelow(3); err != nil {
		t.Fatalf("RemoveGenerationsBelow: %v", err)
	}

	for _, gen := range []uint64{1, 2} {
		if _, err := os.Stat(seginfo.Path(dir, gen)); !os.IsNotExist(err) {
			t.Fatalf("expected generation %d file removed, stat err: %v", gen, err)
		}
		if _, err := st.Reader(gen); err == nil {
			t.Fatalf("expected reader for generation %d to be gone", gen)
		}
	}

	if _, err := st.Reader(3); err != nil {
		t.Fatalf("expected generation 3 reader to remain: %v", err)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	dir := t.TempDir()

	st, _, err := Open(newTestConfig(t, dir))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if err := st.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}

	if err := st.Close(); err != ErrStorageClosed {
		t.Fatalf("expected ErrStorageClosed on second Close, got %v", err)
	}
}
