package fsutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

// BackupMode specifies how backups are stored.
type BackupMode string

const (
	// BackupModeSidecar stores backups alongside the original file with a .reviewsan.bak suffix.
	BackupModeSidecar BackupMode = "sidecar"

	// BackupModeNone disables backups.
	BackupModeNone BackupMode = "none"
)

// BackupSuffix is the suffix used for sidecar backup files.
const BackupSuffix = ".reviewsan.bak"

// BackupConfig controls backup behavior.
type BackupConfig struct {
	// Enabled indicates whether backups should be created.
	Enabled bool

	// Mode specifies how backups are stored.
	Mode BackupMode
}

// DefaultBackupConfig returns backup defaults. Backups are disabled by default.
func DefaultBackupConfig() BackupConfig {
	return BackupConfig{
		Enabled: false,
		Mode:    BackupModeSidecar,
	}
}

// BackupPath returns the backup path for the given file based on the mode.
func BackupPath(path string, mode BackupMode) string {
	if mode == BackupModeNone {
		return ""
	}
	return path + BackupSuffix
}

// CreateBackup copies the file at path to its backup location if no backup
// exists yet, so repeated runs keep the oldest content. It returns the backup
// path, or "" if nothing was backed up.
func CreateBackup(ctx context.Context, path string, cfg BackupConfig) (string, error) {
	if !cfg.Enabled || cfg.Mode == BackupModeNone || path == StdioPath {
		return "", nil
	}

	backupPath := BackupPath(path, cfg.Mode)

	if _, err := os.Stat(backupPath); err == nil {
		return "", nil
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("stat backup path: %w", err)
	}

	copied, err := copyFile(ctx, path, backupPath)
	if err != nil {
		return "", fmt.Errorf("create backup: %w", err)
	}
	if !copied {
		return "", nil
	}
	return backupPath, nil
}

// RestoreBackup copies the backup of path back over it.
// It returns false if no backup exists.
func RestoreBackup(ctx context.Context, path string, mode BackupMode) (bool, error) {
	backupPath := BackupPath(path, mode)
	if backupPath == "" {
		return false, nil
	}

	restored, err := copyFile(ctx, backupPath, path)
	if err != nil {
		return false, fmt.Errorf("restore backup: %w", err)
	}
	return restored, nil
}

// BackupExists checks if a backup file exists for the given path.
func BackupExists(path string, mode BackupMode) bool {
	backupPath := BackupPath(path, mode)
	if backupPath == "" {
		return false
	}
	_, err := os.Stat(backupPath)
	return err == nil
}

// copyFile streams src to dst atomically, keeping src's mode.
// It returns false without error if src does not exist.
func copyFile(ctx context.Context, src, dst string) (bool, error) {
	in, info, err := OpenInput(src)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	defer in.Close()

	out, err := CreateAtomic(ctx, dst, info.Mode)
	if err != nil {
		return false, err
	}

	if _, err := io.Copy(out, in); err != nil {
		return false, errors.Join(fmt.Errorf("copy %s: %w", src, err), out.Abort())
	}

	if err := out.Commit(); err != nil {
		return false, err
	}
	return true, nil
}
