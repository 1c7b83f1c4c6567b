// Package seginfo names and discovers generation files on disk.
//
// Filename format: <generation>.log
//
// Where generation is an unsigned 64-bit integer, unpadded, assigned in
// strictly increasing order as the engine rolls over to new active
// segments and as compaction allocates fresh generations.
//
// Example filenames:
//
//	1.log
//	2.log
//	17.log
package seginfo

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

// Extension is the fixed suffix every generation file carries.
const Extension = ".log"

// FileName returns the filename for the given generation, e.g. "3.log".
func FileName(generation uint64) string {
	return strconv.FormatUint(generation, 10) + Extension
}

// Path joins dataDir with the filename for the given generation.
func Path(dataDir string, generation uint64) string {
	return filepath.Join(dataDir, FileName(generation))
}

// ParseGeneration extracts the generation number from a filename such as
// "3.log". It returns an error if the name doesn't carry the expected
// extension or its stem isn't an unsigned integer.
func ParseGeneration(filename string) (uint64, error) {
	if !strings.HasSuffix(filename, Extension) {
		return 0, fmt.Errorf("filename %s does not have the %s extension", filename, Extension)
	}

	stem := strings.TrimSuffix(filename, Extension)
	generation, err := strconv.ParseUint(stem, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse generation from %s: %w", filename, err)
	}

	return generation, nil
}

// ScanGenerations reads dataDir and returns every generation with a
// corresponding "<generation>.log" file, sorted ascending. Entries that
// aren't regular files, don't carry the .log extension, or whose stem
// doesn't parse as an unsigned integer are silently skipped: they aren't
// generation files this engine wrote.
func ScanGenerations(dataDir string) ([]uint64, error) {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read data directory %s: %w", dataDir, err)
	}

	generations := make([]uint64, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		info, err := entry.Info()
		if err != nil || !info.Mode().IsRegular() {
			continue
		}

		generation, err := ParseGeneration(entry.Name())
		if err != nil {
			continue
		}

		generations = append(generations, generation)
	}

	slices.Sort(generations)
	return generations, nil
}
