package files

import (
	"io/fs"

	"github.com/jmgilman/go/fs/core"

	"filemanager/internal/table"
)

// FilePerm is the permission used for every written file.
const FilePerm fs.FileMode = 0o644

// WriteTables writes the rendered dataset to every path, in order,
// replacing any existing content. It stops at the first failure; files
// written before it are left in place. The optional written callback is
// invoked after each successful write.
func WriteTables(fsys core.FS, paths []string, ds table.Dataset, written func(path string)) error {
	content := table.Render(ds)
	for _, p := range paths {
		if err := fsys.WriteFile(p, content, FilePerm); err != nil {
			return opError(OpWrite, p, err)
		}
		if written != nil {
			written(p)
		}
	}
	return nil
}

// WriteSummary writes names one per line to path, replacing any previous
// summary.
func WriteSummary(fsys core.FS, path string, names []string) error {
	if err := fsys.WriteFile(path, table.RenderList(names), FilePerm); err != nil {
		return opError(OpWrite, path, err)
	}
	return nil
}
