// Package compaction implements the procedure that rewrites every live
// record into a single fresh generation and discards every generation
// that preceded it, reclaiming the space occupied by shadowed and
// tombstoned records.
package compaction

import (
	"io"

	"github.com/ignitedb/ignite/internal/index"
	"github.com/ignitedb/ignite/internal/posio"
	"github.com/ignitedb/ignite/internal/storage"
	"github.com/ignitedb/ignite/pkg/errors"
	"go.uber.org/zap"
)

// Run compacts st using idx as the source of truth for which records are
// live, following spec.md §4.8 exactly: two fresh generations are
// allocated — one to receive the rewritten live set, one to become the
// new active segment — so that writes landing during or after compaction
// can never land at an offset compaction might still touch.
//
// On success it returns the new active generation and its writer, which
// the caller installs via storage.SetActiveWriter.
func Run(st *storage.Storage, idx *index.Index, log *zap.SugaredLogger) (uint64, *posio.Writer, error) {
	currentGen := st.ActiveGeneration()
	compactGen := currentGen + 1
	newActiveGen := currentGen + 2

	log.Infow("Starting compaction", "currentGeneration", currentGen, "compactGeneration", compactGen, "newActiveGeneration", newActiveGen)

	compactWriter, err := st.CreateGeneration(compactGen)
	if err != nil {
		return 0, nil, err
	}

	newActiveWriter, err := st.CreateGeneration(newActiveGen)
	if err != nil {
		return 0, nil, err
	}

	var compactOffset int64
	for _, key := range idx.Keys() {
		loc, ok := idx.Get(key)
		if !ok {
			continue
		}

		reader, err := st.Reader(loc.Generation)
		if err != nil {
			return 0, nil, err
		}

		if reader.Pos() != loc.Offset {
			if _, err := reader.Seek(loc.Offset, io.SeekStart); err != nil {
				return 0, nil, errors.NewStorageError(
					err, errors.ErrorCodeIO, "Failed to seek reader during compaction",
				).WithOffset(int(loc.Offset))
			}
		}

		copied, err := io.CopyN(compactWriter, reader, loc.Length)
		if err != nil {
			return 0, nil, errors.NewStorageError(
				err, errors.ErrorCodeIO, "Failed to copy live record during compaction",
			).WithOffset(int(loc.Offset))
		}

		idx.Put(key, index.RecordLocation{Generation: compactGen, Offset: compactOffset, Length: copied})
		compactOffset += copied
	}

	if err := compactWriter.Flush(); err != nil {
		return 0, nil, errors.NewStorageError(err, errors.ErrorCodeIO, "Failed to flush compaction writer")
	}

	// compactGen is read-only from here on; its own reader stays registered
	// in Storage, but the writer handle this function opened has no further
	// use and must not leak.
	if err := compactWriter.Close(); err != nil {
		return 0, nil, errors.NewStorageError(err, errors.ErrorCodeIO, "Failed to close compaction writer")
	}

	if err := st.RemoveGenerationsBelow(compactGen); err != nil {
		return 0, nil, err
	}

	log.Infow("Compaction complete", "compactGeneration", compactGen, "newActiveGeneration", newActiveGen, "liveBytes", compactOffset)
	return newActiveGen, newActiveWriter, nil
}
