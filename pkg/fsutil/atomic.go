package fsutil

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultFileMode is the default permission mode for newly created files.
const DefaultFileMode os.FileMode = 0644

// ErrAtomicClosed is returned when writing to an AtomicFile after Commit or Abort.
var ErrAtomicClosed = errors.New("atomic file already closed")

// AtomicFile is a writer whose content replaces the target path only when
// Commit succeeds. Until then the target is untouched.
//
// The commit sequence:
//  1. Sync the temp file to ensure durability.
//  2. Close it and set the file mode.
//  3. Rename the temp file over the target (atomic on POSIX).
type AtomicFile struct {
	path    string
	mode    os.FileMode
	tmp     *os.File
	tmpPath string
	done    bool
}

// CreateAtomic creates a temp file next to path. If mode is 0, the mode of an
// existing file at path is kept, falling back to DefaultFileMode.
func CreateAtomic(ctx context.Context, path string, mode os.FileMode) (*AtomicFile, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("create atomic: %w", ctx.Err())
	default:
	}

	if mode == 0 {
		mode = DefaultFileMode
		if stat, err := os.Stat(path); err == nil {
			mode = stat.Mode().Perm()
		}
	}

	// Temp file in the same directory so the rename stays on one filesystem.
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp.*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", classify(path, err))
	}

	return &AtomicFile{
		path:    path,
		mode:    mode,
		tmp:     tmp,
		tmpPath: tmp.Name(),
	}, nil
}

// Path returns the target path.
func (f *AtomicFile) Path() string {
	return f.path
}

// Write implements io.Writer.
func (f *AtomicFile) Write(p []byte) (int, error) {
	if f.done {
		return 0, ErrAtomicClosed
	}
	n, err := f.tmp.Write(p)
	if err != nil {
		return n, fmt.Errorf("write temp file: %w", err)
	}
	return n, nil
}

// Commit moves the written content into place.
func (f *AtomicFile) Commit() error {
	if f.done {
		return ErrAtomicClosed
	}
	f.done = true

	success := false
	defer func() {
		if !success {
			_ = f.tmp.Close()
			_ = os.Remove(f.tmpPath)
		}
	}()

	if err := f.tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := f.tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(f.tmpPath, f.mode); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(f.tmpPath, f.path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	success = true
	return nil
}

// Abort discards the temp file. It is a no-op after Commit.
func (f *AtomicFile) Abort() error {
	if f.done {
		return nil
	}
	f.done = true

	closeErr := f.tmp.Close()
	if err := os.Remove(f.tmpPath); err != nil && !os.IsNotExist(err) {
		return errors.Join(closeErr, fmt.Errorf("remove temp file: %w", err))
	}
	return nil
}

// WriteAtomic writes content to path atomically using a temp file and rename.
// On error the original file remains untouched.
func WriteAtomic(ctx context.Context, path string, content []byte, mode os.FileMode) error {
	file, err := CreateAtomic(ctx, path, mode)
	if err != nil {
		return fmt.Errorf("write atomic: %w", err)
	}

	if _, err := file.Write(content); err != nil {
		return errors.Join(err, file.Abort())
	}

	return file.Commit()
}
