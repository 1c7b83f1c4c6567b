package compaction

import (
	"testing"

	"github.com/ignitedb/ignite/internal/index"
	"github.com/ignitedb/ignite/internal/record"
	"github.com/ignitedb/ignite/internal/storage"
	"github.com/ignitedb/ignite/pkg/options"
	"go.uber.org/zap"
)

func newTestStorageAndIndex(t *testing.T) (*storage.Storage, *index.Index) {
	t.Helper()
	dir := t.TempDir()

	opts := options.NewDefaultOptions()
	opts.DataDir = dir
	log := zap.NewNop().Sugar()

	st, _, err := storage.Open(&storage.Config{Options: &opts, Logger: log})
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}

	idx, err := index.New(&index.Config{DataDir: dir, Logger: log})
	if err != nil {
		t.Fatalf("index.New: %v", err)
	}

	return st, idx
}

func writeRecord(t *testing.T, st *storage.Storage, idx *index.Index, rec record.Record) {
	t.Helper()

	writer := st.ActiveWriter()
	offsetBefore := writer.Pos()

	encoded, err := record.Encode(rec)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, err := writer.Write(encoded); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := writer.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	length := writer.Pos() - offsetBefore

	switch rec.Kind {
	case record.KindSet:
		idx.Put(rec.Key, index.RecordLocation{Generation: st.ActiveGeneration(), Offset: offsetBefore, Length: length})
	case record.KindRemove:
		idx.Delete(rec.Key)
	}
}

func TestRunAllocatesGenerationsAndPreservesLiveKeys(t *testing.T) {
	st, idx := newTestStorageAndIndex(t)
	defer st.Close()

	currentGen := st.ActiveGeneration()

	writeRecord(t, st, idx, record.Set("a", "1"))
	writeRecord(t, st, idx, record.Set("b", "2"))
	writeRecord(t, st, idx, record.Set("a", "3"))

	newActiveGen, newActiveWriter, err := Run(st, idx, zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	defer newActiveWriter.Close()

	if newActiveGen != currentGen+2 {
		t.Fatalf("expected new active generation %d, got %d", currentGen+2, newActiveGen)
	}

	st.SetActiveWriter(newActiveGen, newActiveWriter)

	locA, ok := idx.Get("a")
	if !ok {
		t.Fatal("expected key a to survive compaction")
	}
	if locA.Generation != currentGen+1 {
		t.Fatalf("expected key a rewritten into generation %d, got %d", currentGen+1, locA.Generation)
	}

	locB, ok := idx.Get("b")
	if !ok {
		t.Fatal("expected key b to survive compaction")
	}
	if locB.Generation != currentGen+1 {
		t.Fatalf("expected key b rewritten into generation %d, got %d", currentGen+1, locB.Generation)
	}

	reader, err := st.Reader(locA.Generation)
	if err != nil {
		t.Fatalf("Reader: %v", err)
	}
	if _, err := reader.Seek(locA.Offset, 0); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	buf := make([]byte, locA.Length)
	if _, err := reader.ReadFull(buf); err != nil {
		t.Fatalf("ReadFull: %v", err)
	}
	rec, err := record.Decode(buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if rec.Value != "3" {
		t.Fatalf("expected compacted value to be the latest write %q, got %q", "3", rec.Value)
	}

	if _, err := st.Reader(currentGen); err == nil {
		t.Fatal("expected the pre-compaction generation to have been removed")
	}
}

func TestRunDropsTombstonedKeys(t *testing.T) {
	st, idx := newTestStorageAndIndex(t)
	defer st.Close()

	writeRecord(t, st, idx, record.Set("a", "1"))
	writeRecord(t, st, idx, record.Remove("a"))

	newActiveGen, newActiveWriter, err := Run(st, idx, zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	defer newActiveWriter.Close()
	st.SetActiveWriter(newActiveGen, newActiveWriter)

	if _, ok := idx.Get("a"); ok {
		t.Fatal("expected removed key to stay absent after compaction")
	}
}
