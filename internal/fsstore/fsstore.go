// Package fsstore provides the filesystem operations the request handler
// needs to serve GET and PUT: open-for-read, atomic whole-file
// replace-or-create, and existence/kind checks. It mirrors the shape of
// this repository's filesystem abstraction layer (an [FS] interface plus a
// [Real] production implementation wrapping [os]) but trimmed to exactly
// the surface a flat, single-directory file server needs - no directory
// listing, no recursive removal, no cross-process file locking, since
// concurrency is already owned by the caller's per-resource lock.
package fsstore

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
)

// DefaultFileMode is the permission mode for files created by PUT.
const DefaultFileMode = 0o644

// FS is the filesystem surface the request handler depends on.
type FS interface {
	// Open opens path for reading.
	Open(path string) (io.ReadCloser, error)

	// Exists reports whether path refers to an existing entry; it does not
	// check whether the entry is readable.
	// It does not distinguish files from directories; callers needing
	// that distinction use Stat.
	Exists(path string) (bool, error)

	// Stat returns the file's mode bits and size, or an error satisfying
	// [os.IsNotExist] if path does not exist.
	Stat(path string) (os.FileInfo, error)

	// WriteFileAtomic replaces (or creates) path with data such that
	// readers of path never observe a partial write: the implementation
	// writes to a temporary file in the same directory and renames it
	// into place.
	WriteFileAtomic(path string, data []byte) error
}

// Real implements [FS] against the real filesystem rooted at a directory.
// All paths passed to its methods are resolved relative to that root.
type Real struct {
	root string
}

// NewReal returns a Real filesystem rooted at root.
func NewReal(root string) *Real {
	return &Real{root: root}
}

func (r *Real) resolve(path string) string {
	return filepath.Join(r.root, path)
}

// Open opens path for reading. See [os.Open].
func (r *Real) Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(r.resolve(path))
	if err != nil {
		return nil, err
	}

	return f, nil
}

// Exists reports whether path exists. See [os.Stat].
func (r *Real) Exists(path string) (bool, error) {
	_, err := os.Stat(r.resolve(path))
	if err == nil {
		return true, nil
	}

	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}

	return false, err
}

// Stat returns file info for path. See [os.Stat].
func (r *Real) Stat(path string) (os.FileInfo, error) {
	return os.Stat(r.resolve(path))
}

// WriteFileAtomic writes data to path via a temp-file-plus-rename, using
// [atomic.WriteFile] - the same library and idiom this repository's
// production filesystem layer uses for crash-safe writes.
func (r *Real) WriteFileAtomic(path string, data []byte) error {
	full := r.resolve(path)
	_, statErr := os.Stat(full)

	if err := atomic.WriteFile(full, bytes.NewReader(data)); err != nil {
		return err
	}

	if errors.Is(statErr, os.ErrNotExist) {
		return os.Chmod(full, DefaultFileMode)
	}

	return nil
}

// Compile-time interface check.
var _ FS = (*Real)(nil)
