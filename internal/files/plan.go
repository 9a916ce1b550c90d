package files

import (
	"path/filepath"
	"strconv"
)

// Extension is appended to every planned file name.
const Extension = ".txt"

// FileName returns the base name for the given 1-based ordinal.
func FileName(ordinal int) string {
	return "file" + strconv.Itoa(ordinal) + Extension
}

// PlanFiles returns n paths directly inside dir, ordered by ascending
// ordinal. n <= 0 yields an empty, non-nil slice. No I/O is performed.
func PlanFiles(dir string, n int) []string {
	if n <= 0 {
		return []string{}
	}
	out := make([]string, n)
	for i := range out {
		out[i] = filepath.Join(dir, FileName(i+1))
	}
	return out
}
