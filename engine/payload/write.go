package payload

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteFrame persists decoded frame bytes, creating parent directories as
// needed. Frames are fresh creates into per-trajectory directories, so an
// existing file at the target path is simply replaced.
func WriteFrame(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create frame directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write frame %s: %w", filepath.Base(path), err)
	}
	return nil
}
