package logging

import (
	"errors"
	"fmt"
	"os"
)

// rotate shifts the log file into numbered backups once it exceeds the size
// limit. With maxBackups == 0 the file is truncated instead. Called before
// the log file is opened for a new invocation, so rotation never races an
// open handle within this process.
func rotate(path string, maxSizeMB, maxBackups int) error {
	if maxSizeMB <= 0 {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat log file: %w", err)
	}
	if info.Size() < int64(maxSizeMB)*1024*1024 {
		return nil
	}

	if maxBackups <= 0 {
		if err := os.Truncate(path, 0); err != nil {
			return fmt.Errorf("truncate log file: %w", err)
		}
		return nil
	}

	// Shift loopguard.log.N-1 -> loopguard.log.N, dropping the oldest.
	oldest := fmt.Sprintf("%s.%d", path, maxBackups)
	if err := os.Remove(oldest); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove oldest backup: %w", err)
	}
	for i := maxBackups - 1; i >= 1; i-- {
		from := fmt.Sprintf("%s.%d", path, i)
		to := fmt.Sprintf("%s.%d", path, i+1)
		if err := os.Rename(from, to); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("rotate backup %s: %w", from, err)
		}
	}
	if err := os.Rename(path, path+".1"); err != nil {
		return fmt.Errorf("rotate log file: %w", err)
	}
	return nil
}
