package fsutil_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/yaklabco/reviewsan/pkg/fsutil"
)

func TestBackupPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path string
		mode fsutil.BackupMode
		want string
	}{
		{
			name: "sidecar mode",
			path: "/data/reviews.json",
			mode: fsutil.BackupModeSidecar,
			want: "/data/reviews.json.reviewsan.bak",
		},
		{
			name: "none mode returns empty",
			path: "/data/reviews.json",
			mode: fsutil.BackupModeNone,
			want: "",
		},
		{
			name: "unknown mode defaults to sidecar",
			path: "/data/reviews.json",
			mode: fsutil.BackupMode("unknown"),
			want: "/data/reviews.json.reviewsan.bak",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := fsutil.BackupPath(tt.path, tt.mode)
			if got != tt.want {
				t.Errorf("BackupPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDefaultBackupConfig(t *testing.T) {
	t.Parallel()

	cfg := fsutil.DefaultBackupConfig()

	if cfg.Enabled {
		t.Error("expected Enabled = false by default")
	}

	if cfg.Mode != fsutil.BackupModeSidecar {
		t.Errorf("Mode = %q, want %q", cfg.Mode, fsutil.BackupModeSidecar)
	}
}

//nolint:gocognit // Test function with many subtests
func TestCreateBackup(t *testing.T) {
	t.Parallel()

	enabled := fsutil.BackupConfig{Enabled: true, Mode: fsutil.BackupModeSidecar}

	t.Run("creates backup for existing file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "reviews.json")
		content := []byte(`{"rating": NaN}`)

		if err := os.WriteFile(path, content, 0644); err != nil {
			t.Fatalf("setup: %v", err)
		}

		backupPath, err := fsutil.CreateBackup(context.Background(), path, enabled)
		if err != nil {
			t.Fatalf("CreateBackup() error = %v", err)
		}

		if backupPath != path+fsutil.BackupSuffix {
			t.Errorf("backup path = %q, want %q", backupPath, path+fsutil.BackupSuffix)
		}

		got, err := os.ReadFile(backupPath)
		if err != nil {
			t.Fatalf("read backup: %v", err)
		}

		if string(got) != string(content) {
			t.Errorf("backup content = %q, want %q", got, content)
		}
	})

	t.Run("does not overwrite existing backup", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "reviews.json")

		if err := os.WriteFile(path, []byte("current"), 0644); err != nil {
			t.Fatalf("setup: %v", err)
		}
		if err := os.WriteFile(path+fsutil.BackupSuffix, []byte("oldest"), 0644); err != nil {
			t.Fatalf("setup backup: %v", err)
		}

		backupPath, err := fsutil.CreateBackup(context.Background(), path, enabled)
		if err != nil {
			t.Fatalf("CreateBackup() error = %v", err)
		}

		if backupPath != "" {
			t.Errorf("expected no new backup, got %q", backupPath)
		}

		got, err := os.ReadFile(path + fsutil.BackupSuffix)
		if err != nil {
			t.Fatalf("read backup: %v", err)
		}

		if string(got) != "oldest" {
			t.Errorf("backup content = %q, want %q", got, "oldest")
		}
	})

	t.Run("skips when disabled", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "reviews.json")

		if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
			t.Fatalf("setup: %v", err)
		}

		backupPath, err := fsutil.CreateBackup(context.Background(), path, fsutil.DefaultBackupConfig())
		if err != nil {
			t.Fatalf("CreateBackup() error = %v", err)
		}

		if backupPath != "" {
			t.Errorf("expected no backup, got %q", backupPath)
		}

		if fsutil.BackupExists(path, fsutil.BackupModeSidecar) {
			t.Error("backup file should not exist")
		}
	})

	t.Run("skips when mode is none", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "reviews.json")

		if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
			t.Fatalf("setup: %v", err)
		}

		cfg := fsutil.BackupConfig{Enabled: true, Mode: fsutil.BackupModeNone}
		backupPath, err := fsutil.CreateBackup(context.Background(), path, cfg)
		if err != nil {
			t.Fatalf("CreateBackup() error = %v", err)
		}

		if backupPath != "" {
			t.Errorf("expected no backup, got %q", backupPath)
		}
	})

	t.Run("skips non-existent file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "missing.json")

		backupPath, err := fsutil.CreateBackup(context.Background(), path, enabled)
		if err != nil {
			t.Fatalf("CreateBackup() error = %v", err)
		}

		if backupPath != "" {
			t.Errorf("expected no backup, got %q", backupPath)
		}
	})

	t.Run("skips stdout", func(t *testing.T) {
		t.Parallel()

		backupPath, err := fsutil.CreateBackup(context.Background(), fsutil.StdioPath, enabled)
		if err != nil {
			t.Fatalf("CreateBackup() error = %v", err)
		}

		if backupPath != "" {
			t.Errorf("expected no backup, got %q", backupPath)
		}
	})

	t.Run("preserves file mode in backup", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "reviews.json")

		if err := os.WriteFile(path, []byte("x"), 0600); err != nil {
			t.Fatalf("setup: %v", err)
		}

		backupPath, err := fsutil.CreateBackup(context.Background(), path, enabled)
		if err != nil {
			t.Fatalf("CreateBackup() error = %v", err)
		}

		info, err := os.Stat(backupPath)
		if err != nil {
			t.Fatalf("stat backup: %v", err)
		}

		if info.Mode().Perm() != 0600 {
			t.Errorf("backup mode = %o, want %o", info.Mode().Perm(), 0600)
		}
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "reviews.json")

		if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
			t.Fatalf("setup: %v", err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := fsutil.CreateBackup(ctx, path, enabled); err == nil {
			t.Error("expected error for cancelled context")
		}
	})
}

func TestRestoreBackup(t *testing.T) {
	t.Parallel()

	t.Run("restores from backup", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "reviews.json")

		if err := os.WriteFile(path, []byte("partial"), 0644); err != nil {
			t.Fatalf("setup: %v", err)
		}
		if err := os.WriteFile(path+fsutil.BackupSuffix, []byte("original"), 0644); err != nil {
			t.Fatalf("setup backup: %v", err)
		}

		restored, err := fsutil.RestoreBackup(context.Background(), path, fsutil.BackupModeSidecar)
		if err != nil {
			t.Fatalf("RestoreBackup() error = %v", err)
		}

		if !restored {
			t.Error("expected restored = true")
		}

		got, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read restored: %v", err)
		}

		if string(got) != "original" {
			t.Errorf("content = %q, want %q", got, "original")
		}
	})

	t.Run("returns false when no backup exists", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "reviews.json")

		restored, err := fsutil.RestoreBackup(context.Background(), path, fsutil.BackupModeSidecar)
		if err != nil {
			t.Fatalf("RestoreBackup() error = %v", err)
		}

		if restored {
			t.Error("expected restored = false")
		}
	})

	t.Run("returns false for none mode", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "reviews.json")

		restored, err := fsutil.RestoreBackup(context.Background(), path, fsutil.BackupModeNone)
		if err != nil {
			t.Fatalf("RestoreBackup() error = %v", err)
		}

		if restored {
			t.Error("expected restored = false")
		}
	})
}

func TestBackupExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "reviews.json")

	if fsutil.BackupExists(path, fsutil.BackupModeSidecar) {
		t.Error("expected no backup before creation")
	}

	if err := os.WriteFile(path+fsutil.BackupSuffix, []byte("x"), 0644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	if !fsutil.BackupExists(path, fsutil.BackupModeSidecar) {
		t.Error("expected backup to exist")
	}

	if fsutil.BackupExists(path, fsutil.BackupModeNone) {
		t.Error("none mode never has a backup")
	}
}
