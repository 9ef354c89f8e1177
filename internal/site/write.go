package site

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"

	ferrors "git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
)

const (
	dirMode  = 0o755
	fileMode = 0o644
)

// writeFile replaces path atomically, creating parent directories.
func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), dirMode); err != nil {
		return fsError(err, "failed to create output directory", filepath.Dir(path))
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fsError(err, "failed to write output file", path)
	}
	// temp files are created 0600
	if err := os.Chmod(path, fileMode); err != nil {
		return fsError(err, "failed to set output file mode", path)
	}
	return nil
}

func fsError(err error, msg, path string) error {
	return ferrors.WrapError(err, ferrors.CategoryFileSystem, msg).
		Fatal().
		WithContext("path", path).
		Build()
}
