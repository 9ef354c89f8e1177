package build

import (
	"context"
	"os"
	"path/filepath"

	ferrors "git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/site"
)

// stagePrepareOutput optionally wipes the output root, then creates it along
// with the collection and pages subdirectories.
func stagePrepareOutput(_ context.Context, bs *BuildState) error {
	out := bs.Config.OutputDir()
	if bs.Config.Output.Clean {
		bs.Logger.Info("Cleaning output directory", logfields.Path(out))
		if err := os.RemoveAll(out); err != nil {
			return newFatalStageError(StagePrepareOutput, outputError(err, "failed to clean output directory", out))
		}
	}
	for _, dir := range []string{
		out,
		filepath.Join(out, bs.Config.Collection.OutputDir),
		filepath.Join(out, site.PagesDir),
	} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return newFatalStageError(StagePrepareOutput, outputError(err, "failed to create output directory", dir))
		}
	}
	return nil
}

func outputError(err error, msg, path string) error {
	return ferrors.WrapError(err, ferrors.CategoryFileSystem, msg).
		Fatal().
		WithContext("path", path).
		Build()
}
