// Package vcs initializes a version control repository at a freshly
// built project root. Initialization is best-effort: the project
// files are already in place when it runs, so a failure here is
// reported as a warning by the caller, never a build failure.
package vcs

import (
	"os/exec"

	git "github.com/go-git/go-git/v5"

	"github.com/arthur-debert/pi/pkg/config"
	"github.com/arthur-debert/pi/pkg/errors"
	"github.com/arthur-debert/pi/pkg/logging"
)

// Init initializes a repository of the given kind at dir and stages
// every file in it
func Init(kind config.VersionControl, dir string) error {
	switch kind {
	case config.VCSNone:
		return nil
	case config.VCSGit:
		return gitInit(dir)
	case config.VCSHg, config.VCSMercurial:
		return commandInit(dir, "hg", []string{"add", "."})
	case config.VCSPijul:
		return commandInit(dir, "pijul", []string{"add", "--recursive", "."})
	case config.VCSDarcs:
		return commandInit(dir, "darcs", []string{"add", "--recursive", "."})
	default:
		return errors.Newf(errors.ErrVCSInit, "version control kind %q is not supported", kind)
	}
}

// gitInit uses go-git directly instead of shelling out, so it works
// without a git binary on the path
func gitInit(dir string) error {
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		return errors.Wrapf(err, errors.ErrVCSInit, "failed to initialize git repository at %s", dir).
			WithDetail("dir", dir)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return errors.Wrap(err, errors.ErrVCSInit, "failed to open git worktree")
	}
	if err := worktree.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return errors.Wrap(err, errors.ErrVCSInit, "failed to stage initial files")
	}

	logger := logging.GetLogger("vcs")
	logger.Info().Str("dir", dir).Msg("Initialized git repository")
	return nil
}

// commandInit runs `<tool> init` followed by the tool's add command
// inside dir
func commandInit(dir, tool string, addArgs []string) error {
	if _, err := exec.LookPath(tool); err != nil {
		return errors.Newf(errors.ErrVCSInit, "%s not found on PATH", tool)
	}

	for _, args := range [][]string{{"init"}, addArgs} {
		cmd := exec.Command(tool, args...)
		cmd.Dir = dir
		if out, err := cmd.CombinedOutput(); err != nil {
			return errors.Wrapf(err, errors.ErrVCSInit, "%s %s failed: %s", tool, args[0], string(out)).
				WithDetail("dir", dir)
		}
	}

	logger := logging.GetLogger("vcs")
	logger.Info().Str("dir", dir).Str("tool", tool).Msg("Initialized repository")
	return nil
}
