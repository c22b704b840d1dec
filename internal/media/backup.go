package media

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"photo-gallery/internal/logging"
	"photo-gallery/internal/metrics"
)

// BackupHandle keeps a thumbnail that is about to be overwritten in a
// sibling temporary file. It settles exactly once: Restore puts the file
// back, Discard deletes it, and any later call is a no-op.
//
// A nil *BackupHandle is valid and means there was nothing to back up.
type BackupHandle struct {
	target  string
	temp    string
	settled bool
}

// NewBackupHandle renames target to a unique sibling file. It returns nil
// when target does not exist.
func NewBackupHandle(target string) (*BackupHandle, error) {
	if _, err := os.Lstat(target); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("backup %s: %w", target, err)
	}

	temp := filepath.Join(filepath.Dir(target),
		fmt.Sprintf(".%s.%s.bak", filepath.Base(target), uuid.NewString()))

	if err := os.Rename(target, temp); err != nil {
		return nil, fmt.Errorf("backup %s: %w", target, err)
	}

	metrics.BackupsTotal.WithLabelValues("created").Inc()
	logging.Debug("Backed up %s to %s", target, temp)
	return &BackupHandle{target: target, temp: temp}, nil
}

// Path returns the temporary file holding the backup.
func (b *BackupHandle) Path() string {
	if b == nil {
		return ""
	}
	return b.temp
}

// Restore moves the backup over the target.
func (b *BackupHandle) Restore() error {
	if b == nil || b.settled {
		return nil
	}
	b.settled = true

	if err := os.Rename(b.temp, b.target); err != nil {
		metrics.BackupsTotal.WithLabelValues("restore_failed").Inc()
		logging.Error("Failed to restore %s from %s: %v", b.target, b.temp, err)
		return fmt.Errorf("restore %s: %w", b.target, err)
	}

	metrics.BackupsTotal.WithLabelValues("restored").Inc()
	logging.Debug("Restored %s", b.target)
	return nil
}

// Discard deletes the backup. A failure leaves a stray temporary file and
// is only logged.
func (b *BackupHandle) Discard() {
	if b == nil || b.settled {
		return
	}
	b.settled = true

	if err := os.Remove(b.temp); err != nil {
		metrics.BackupsTotal.WithLabelValues("discard_failed").Inc()
		logging.Warn("Failed to delete thumbnail backup %s: %v", b.temp, err)
		return
	}
	metrics.BackupsTotal.WithLabelValues("discarded").Inc()
}
