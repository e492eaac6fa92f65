package reporting

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteFiles renders the report to <dir>/performance.md and
// <dir>/trades.csv, creating the directory if needed.
func WriteFiles(dir string, r *Report) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "performance.md"), []byte(RenderMarkdown(r)), 0o644); err != nil {
		return fmt.Errorf("write markdown report: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "trades.csv"), []byte(RenderCSV(r)), 0o644); err != nil {
		return fmt.Errorf("write csv report: %w", err)
	}
	return nil
}
