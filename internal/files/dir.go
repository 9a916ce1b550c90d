package files

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/jmgilman/go/fs/core"
)

// DirPerm is the permission used for created directories.
const DirPerm fs.FileMode = 0o755

// ErrNotDirectory is returned when the working directory path exists but
// is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// EnsureDir creates dir and any missing parents. An existing directory is
// left untouched and reported with created == false; calling EnsureDir
// repeatedly never fails on that account.
func EnsureDir(fsys core.FS, dir string) (created bool, err error) {
	if dir == "" {
		return false, opError(OpMkdir, dir, fmt.Errorf("empty path"))
	}
	info, err := fsys.Stat(dir)
	switch {
	case err == nil:
		if !info.IsDir() {
			return false, opError(OpStat, dir, ErrNotDirectory)
		}
		return false, nil
	case !errors.Is(err, fs.ErrNotExist):
		return false, opError(OpStat, dir, err)
	}
	if err := fsys.MkdirAll(dir, DirPerm); err != nil {
		return false, opError(OpMkdir, dir, err)
	}
	return true, nil
}
