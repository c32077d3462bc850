// Package fsutil provides file system utilities and safety primitives for reviewsan.
// It handles input opening, atomic output files, same-file detection, and backups.
package fsutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// StdioPath is the path that selects stdin for input or stdout for output.
const StdioPath = "-"

// Sentinel errors for error categorization via errors.Is.
var (
	// ErrNotFound indicates the file does not exist.
	ErrNotFound = errors.New("file not found")

	// ErrPermissionDenied indicates a permission error.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrIsDirectory indicates the path is a directory, not a file.
	ErrIsDirectory = errors.New("path is a directory")
)

// FileInfo describes an opened input.
type FileInfo struct {
	// Path is the path as given, or StdioPath.
	Path string

	// Mode is the file's permission bits; zero for stdin.
	Mode os.FileMode

	// Size is the file size in bytes, or -1 when unknown.
	Size int64
}

// OpenInput opens path for sequential reading. StdioPath selects os.Stdin,
// which is returned wrapped so that closing it is a no-op.
func OpenInput(path string) (io.ReadCloser, *FileInfo, error) {
	if path == StdioPath {
		return io.NopCloser(os.Stdin), &FileInfo{Path: path, Size: -1}, nil
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, nil, classify(path, err)
	}
	if stat.IsDir() {
		return nil, nil, fmt.Errorf("%w: %s", ErrIsDirectory, path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, nil, classify(path, err)
	}

	return file, &FileInfo{Path: path, Mode: stat.Mode().Perm(), Size: stat.Size()}, nil
}

// CreateOutput creates or truncates path for writing.
func CreateOutput(path string, mode os.FileMode) (*os.File, error) {
	if mode == 0 {
		mode = DefaultFileMode
	}

	if stat, err := os.Stat(path); err == nil && stat.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrIsDirectory, path)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return nil, classify(path, err)
	}
	return file, nil
}

// SameFile reports whether a and b refer to the same file, either by
// absolute path or by file identity. StdioPath never matches.
func SameFile(a, b string) bool {
	if a == StdioPath || b == StdioPath {
		return false
	}

	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA == nil && errB == nil && absA == absB {
		return true
	}

	statA, err := os.Stat(a)
	if err != nil {
		return false
	}
	statB, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(statA, statB)
}

// classify maps an os error onto the package sentinels.
func classify(path string, err error) error {
	switch {
	case os.IsNotExist(err):
		return fmt.Errorf("%w: %s: %w", ErrNotFound, path, err)
	case os.IsPermission(err):
		return fmt.Errorf("%w: %s: %w", ErrPermissionDenied, path, err)
	default:
		return fmt.Errorf("%s: %w", path, err)
	}
}
