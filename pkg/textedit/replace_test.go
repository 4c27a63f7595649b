package textedit

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SamiUllah481/Local-AI-Agent-for-File-Manipulation/pkg/logger"
)

func TestReplaceWritesBackupOfOriginalContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "note.txt")
	original := "status: pending\nstatus: pending\n"
	require.NoError(t, os.WriteFile(path, []byte(original), 0o644))

	count, err := Replace(path, "pending", "shipped", logger.NopLogger{})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	backup, err := os.ReadFile(BackupPath(path))
	require.NoError(t, err)
	assert.Equal(t, original, string(backup))

	updated, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "status: shipped\nstatus: shipped\n", string(updated))
}

func TestReplaceOverwritesPriorBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "note.txt")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))
	require.NoError(t, os.WriteFile(BackupPath(path), []byte("stale"), 0o644))

	_, err := Replace(path, "v1", "v2", logger.NopLogger{})
	require.NoError(t, err)

	backup, err := os.ReadFile(BackupPath(path))
	require.NoError(t, err)
	assert.Equal(t, "v1", string(backup))
}

func TestReplaceMissingFile(t *testing.T) {
	_, err := Replace(filepath.Join(t.TempDir(), "absent.txt"), "a", "b", logger.NopLogger{})
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestReplaceBinaryFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blob.bin")
	require.NoError(t, os.WriteFile(path, []byte{0xff, 0xfe, 0x00, 0x80}, 0o644))

	_, err := Replace(path, "a", "b", logger.NopLogger{})
	require.ErrorIs(t, err, ErrNotText)

	// No backup for a rejected file.
	_, statErr := os.Stat(BackupPath(path))
	assert.True(t, os.IsNotExist(statErr))
}

func TestReplaceZeroOccurrences(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "note.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	count, err := Replace(path, "absent", "x", logger.NopLogger{})
	require.NoError(t, err)
	assert.Zero(t, count)
}
