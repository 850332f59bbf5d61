// Package fsutil defines the filesystem interface civmod operates through,
// with an OS-backed implementation for production and an afero-backed one
// for tests.
package fsutil

import (
	"io/fs"
)

// FS is the filesystem surface required by the store, profile store,
// deployment engine, and session.
type FS interface {
	Stat(name string) (fs.FileInfo, error)
	Lstat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error
	ReadDir(name string) ([]fs.DirEntry, error)
	MkdirAll(path string, perm fs.FileMode) error
	Remove(name string) error
	RemoveAll(path string) error
	Rename(oldpath, newpath string) error
}
