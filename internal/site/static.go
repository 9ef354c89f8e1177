package site

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// CopyStatic mirrors the src tree into dst and returns the number of files copied.
// A missing src is not an error.
func CopyStatic(ctx context.Context, src, dst string) (int, error) {
	if src == "" {
		return 0, nil
	}
	info, err := os.Stat(src)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fsError(err, "failed to stat static directory", src)
	}
	if !info.IsDir() {
		return 0, fsError(errors.New("not a directory"), "static path is not a directory", src)
	}

	copied := 0
	err = filepath.WalkDir(src, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return fsError(walkErr, "failed to walk static directory", path)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return fsError(err, "failed to resolve static file", path)
		}
		// #nosec G304 -- path comes from walking the configured static directory
		data, err := os.ReadFile(path)
		if err != nil {
			return fsError(err, "failed to read static file", path)
		}
		if err := writeFile(filepath.Join(dst, rel), data); err != nil {
			return err
		}
		copied++
		return nil
	})
	if err != nil {
		return copied, err
	}
	return copied, nil
}
