// SPDX-License-Identifier: MIT

//go:build windows

package jobs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	dslog "github.com/ManuGH/docsmith/internal/log"
)

// writeFileAtomic writes data using temp file + rename.
// Note: Windows doesn't support atomic rename with fsync like Unix.
func writeFileAtomic(ctx context.Context, path string, data []byte) error {
	logger := dslog.FromContext(ctx)

	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, ".docsmith-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		if tmpFile != nil {
			tmpFile.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	// Close before rename (Windows requires this)
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	tmpFile = nil // Prevent double close in defer

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename file: %w", err)
	}

	logger.Debug().Str("path", path).Msg("wrote file")
	return nil
}
