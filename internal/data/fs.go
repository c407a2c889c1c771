package data

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// FS is the file access the loaders need: an existence check and a
// whole-file read. Paths are slash separated and relative to the data root.
type FS interface {
	Exists(path string) bool
	ReadFile(path string) ([]byte, error)
}

// DirFS reads reference data from a directory on disk.
type DirFS struct {
	Root string
}

func (d DirFS) Exists(path string) bool {
	st, err := os.Stat(d.abs(path))
	return err == nil && !st.IsDir()
}

func (d DirFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(d.abs(path))
}

func (d DirFS) abs(path string) string {
	return filepath.Join(d.Root, filepath.FromSlash(path))
}

// FromFS adapts an io/fs.FS (embed.FS, fstest.MapFS, ...) to FS.
func FromFS(fsys fs.FS) FS {
	return ioFS{fsys: fsys}
}

type ioFS struct {
	fsys fs.FS
}

func (f ioFS) Exists(path string) bool {
	st, err := fs.Stat(f.fsys, path)
	return err == nil && !st.IsDir()
}

func (f ioFS) ReadFile(path string) ([]byte, error) {
	return fs.ReadFile(f.fsys, path)
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
