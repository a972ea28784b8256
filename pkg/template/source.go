// Package template resolves where a template lives and what it
// declares: a local directory under the working directory or the
// global template root, or a freshly fetched remote repository, plus
// the manifest of files and directories to materialize.
package template

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/adrg/xdg"
	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/arthur-debert/pi/pkg/errors"
	"github.com/arthur-debert/pi/pkg/logging"
)

const (
	// TemplateFilename is the manifest/config file at a template root
	TemplateFilename = "template.toml"

	// GlobalTemplateDirname is the per-user template root, resolved
	// relative to the home directory
	GlobalTemplateDirname = ".pi_templates"

	// githubBaseURL is where `pi git owner/repo` fetches from
	githubBaseURL = "https://github.com"
)

// GlobalRoot returns the per-user template root directory
func GlobalRoot() string {
	return filepath.Join(xdg.Home, GlobalTemplateDirname)
}

// Locate finds the template directory for name: a subdirectory of cwd
// first, then the global template root. The search order lets a
// directory-local template shadow a globally installed one of the
// same name.
func Locate(name, cwd string) (string, error) {
	log := logging.GetLogger("template")

	local := filepath.Join(cwd, name)
	if isDir(local) {
		log.Debug().Str("template", name).Str("root", local).Msg("Using local template")
		return local, nil
	}

	global := filepath.Join(GlobalRoot(), name)
	if isDir(global) {
		log.Debug().Str("template", name).Str("root", global).Msg("Using global template")
		return global, nil
	}

	return "", errors.Newf(errors.ErrTemplateNotFound,
		"template %q not found in %s or %s", name, cwd, GlobalRoot()).
		WithDetail("template", name)
}

// List returns the names of templates installed under the global
// template root, sorted. An absent root yields an empty list.
func List() ([]string, error) {
	entries, err := os.ReadDir(GlobalRoot())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, errors.ErrTemplateNotFound, "failed to read global template root")
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Fetch clones the given owner/repo from GitHub into a fresh
// temporary directory and returns it as a template root, together
// with a cleanup function. branch selects a specific branch; empty
// means the remote default. Any clone failure removes the temporary
// directory so no partial clone is ever referenced as a template.
func Fetch(ownerRepo, branch string) (string, func(), error) {
	log := logging.GetLogger("template")

	dir, err := os.MkdirTemp("", "pi-template-*")
	if err != nil {
		return "", nil, errors.Wrap(err, errors.ErrFetchFailed, "failed to create temporary directory")
	}
	cleanup := func() {
		if err := os.RemoveAll(dir); err != nil {
			log.Warn().Err(err).Str("dir", dir).Msg("Failed to remove temporary template directory")
		}
	}

	url := fmt.Sprintf("%s/%s", githubBaseURL, ownerRepo)
	options := &git.CloneOptions{
		URL:   url,
		Depth: 1,
	}
	if branch != "" {
		options.ReferenceName = plumbing.NewBranchReferenceName(branch)
		options.SingleBranch = true
	}

	log.Info().Str("url", url).Str("branch", branch).Msg("Fetching remote template")
	if _, err := git.PlainClone(dir, false, options); err != nil {
		cleanup()
		return "", nil, errors.Wrapf(err, errors.ErrFetchFailed, "failed to clone %s", url).
			WithDetail("url", url)
	}

	return dir, cleanup, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
