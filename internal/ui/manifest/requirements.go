package manifest

import (
	"fmt"
	"strings"

	"envinfer/internal/shared/util"
)

// RenderRequirements formats one requirement entry per line.
func RenderRequirements(entries []string) string {
	if len(entries) == 0 {
		return ""
	}
	return strings.Join(entries, "\n") + "\n"
}

// WriteRequirements writes the requirement lines to path, creating
// parent directories as needed.
func WriteRequirements(entries []string, path string) error {
	if err := util.WriteStringWithDirs(path, RenderRequirements(entries), 0o644); err != nil {
		return fmt.Errorf("write requirements %q: %w", path, err)
	}
	return nil
}
