// Package textedit implements text-file search-and-replace with an automatic
// backup of the pre-edit content.
package textedit

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/SamiUllah481/Local-AI-Agent-for-File-Manipulation/pkg/logger"
)

// BackupSuffix is appended to a file's path to form its backup path.
const BackupSuffix = ".bak"

// ErrNotText reports a file whose content is not decodable as UTF-8 text.
var ErrNotText = errors.New("file is not valid UTF-8 text")

// BackupPath returns the backup path for a file.
func BackupPath(path string) string {
	return path + BackupSuffix
}

// WriteBackup writes content to the file's backup path, overwriting any prior
// backup.
func WriteBackup(path string, content []byte) error {
	if err := os.WriteFile(BackupPath(path), content, 0o644); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}
	return nil
}

// Replace replaces every occurrence of find with replace in the UTF-8 text file
// at path and returns the occurrence count. The unmodified content is written
// to the backup path before the original is overwritten, so a crash between the
// two writes leaves the prior content recoverable from the backup.
func Replace(path, find, replace string, log logger.Logger) (int, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return 0, fmt.Errorf("path is a directory: %s", path)
	}
	if find == "" {
		return 0, errors.New("find text cannot be empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}
	if !utf8.Valid(data) {
		return 0, fmt.Errorf("%s: %w", path, ErrNotText)
	}

	if err := WriteBackup(path, data); err != nil {
		return 0, err
	}

	content := string(data)
	count := strings.Count(content, find)
	if err := os.WriteFile(path, []byte(strings.ReplaceAll(content, find, replace)), info.Mode().Perm()); err != nil {
		return 0, fmt.Errorf("write %s: %w", path, err)
	}
	logger.Info(log, "replace complete", map[string]any{"path": path, "occurrences": count})
	return count, nil
}
