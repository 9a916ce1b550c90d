package files

import (
	"errors"
	"path/filepath"
	"unicode/utf8"

	"github.com/jmgilman/go/fs/core"

	"filemanager/internal/table"
)

// ErrInvalidUTF8 is returned when a data file is not valid UTF-8.
var ErrInvalidUTF8 = errors.New("invalid UTF-8")

// readText reads a data file, which must be UTF-8 encoded.
func readText(fsys core.FS, path string) ([]byte, error) {
	b, err := fsys.ReadFile(path)
	if err != nil {
		return nil, opError(OpRead, path, err)
	}
	if !utf8.Valid(b) {
		return nil, opError(OpRead, path, ErrInvalidUTF8)
	}
	return b, nil
}

// FileRenderer receives each file's content for display.
type FileRenderer interface {
	File(name string, content []byte)
}

// Report reads every path in order and hands its content, labelled with
// the base name, to r. A missing, unreadable or non-UTF-8 file aborts the report;
// nothing is skipped.
func Report(fsys core.FS, paths []string, r FileRenderer) error {
	for _, p := range paths {
		b, err := readText(fsys, p)
		if err != nil {
			return err
		}
		r.File(filepath.Base(p), b)
	}
	return nil
}

// FileNames is the extraction result for a single file.
type FileNames struct {
	Path    string
	Names   []string
	Skipped []table.SkippedLine
}

// Extraction is the aggregated result of ExtractNames.
type Extraction struct {
	// Names is the NameList: file order, then line order within a file.
	Names []string
	Files []FileNames
}

// Skipped returns the number of data lines that produced no name.
func (e *Extraction) Skipped() int {
	if e == nil {
		return 0
	}
	n := 0
	for _, f := range e.Files {
		n += len(f.Skipped)
	}
	return n
}

// ExtractNames reads every path in order and collects the name column of
// each data line. Malformed lines are skipped, but a missing or unreadable
// file is an error: an empty result never stands in for absent input.
func ExtractNames(fsys core.FS, paths []string) (*Extraction, error) {
	out := &Extraction{Names: []string{}, Files: make([]FileNames, 0, len(paths))}
	for _, p := range paths {
		b, err := readText(fsys, p)
		if err != nil {
			return nil, err
		}
		names, skipped := table.ParseNames(b)
		out.Names = append(out.Names, names...)
		out.Files = append(out.Files, FileNames{Path: p, Names: names, Skipped: skipped})
	}
	return out, nil
}
