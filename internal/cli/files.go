package cli

import (
	"fmt"
	"os"
	"path/filepath"
)

// validateOutputDirectory accepts a missing directory, an empty one, or any
// directory when force is set.
func validateOutputDirectory(absPath string, force bool) error {
	stat, err := os.Stat(absPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cannot access output directory %q: %w", absPath, err)
	}
	if !stat.IsDir() {
		return newUsageError(fmt.Sprintf("output path %q is not a directory", absPath))
	}
	if force {
		return nil
	}
	entries, err := os.ReadDir(absPath)
	if err != nil {
		return fmt.Errorf("cannot read output directory %q: %w", absPath, err)
	}
	if len(entries) > 0 {
		return newUsageError(fmt.Sprintf("output directory %q is not empty (use --force to overwrite)", absPath))
	}
	return nil
}

// writeFileAtomic writes content to a temp file next to path and renames it
// into place, so readers never see a partial client.
func writeFileAtomic(path string, content []byte, force bool) (err error) {
	if _, statErr := os.Stat(path); statErr == nil && !force {
		return newUsageError(fmt.Sprintf("%q already exists (use --force to overwrite)", path))
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure target directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-openapi2sdk-*")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", path, err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err = tmp.Write(content); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("set permissions on %s: %w", path, err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("move temp file to %s: %w", path, err)
	}
	return nil
}
