package export

import (
	"fmt"
	"os"
	"path/filepath"

	"savings/internal/core"
)

// WriteFile replaces path with a fresh export. The file is written next to
// the target and renamed so readers never see a partial export.
func WriteFile(path string, recs []core.SavingsRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".export-*.csv")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteCSV(tmp, recs); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace export: %w", err)
	}
	return nil
}
