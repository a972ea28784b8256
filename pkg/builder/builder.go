// Package builder materializes a template on disk. It plans every
// render job up front, writes everything into a staging directory,
// and only moves the result into place once every job has succeeded,
// so a failed build never leaves a half-initialized project behind.
package builder

import (
	"os"
	"path/filepath"

	cp "github.com/otiai10/copy"

	"github.com/arthur-debert/pi/pkg/config"
	"github.com/arthur-debert/pi/pkg/errors"
	"github.com/arthur-debert/pi/pkg/includes"
	"github.com/arthur-debert/pi/pkg/logging"
	"github.com/arthur-debert/pi/pkg/render"
	"github.com/arthur-debert/pi/pkg/template"
	"github.com/arthur-debert/pi/pkg/vcs"
)

// Options describes one build invocation
type Options struct {
	Template    *template.Template
	Resolution  *config.Resolution
	Destination string
	Force       bool
}

type jobKind int

const (
	jobDir jobKind = iota
	jobFile
	jobInclude
	jobTemplate
	jobScript
)

// renderJob is the unit of work: a source (template-local path or an
// embedded body) and a rendered, validated destination path relative
// to the project root. Created per manifest entry, consumed exactly
// once during the Writing phase.
type renderJob struct {
	kind jobKind
	src  string // absolute source path; empty for dirs, empty files, and includes
	body string // embedded template body for includes
	dest string // rendered path relative to the destination root
}

// Build runs the Planning -> Writing -> {Committed | RolledBack}
// state machine for one invocation
func Build(opts Options) error {
	dest, err := filepath.Abs(opts.Destination)
	if err != nil {
		return errors.Wrap(err, errors.ErrBuildIO, "failed to resolve destination path")
	}

	logger := logging.GetLogger("builder").With().Str("destination", dest).Logger()
	logger.Debug().Msg("Planning build")

	destExists, err := checkDestination(dest, opts.Force)
	if err != nil {
		return err
	}

	jobs, err := plan(opts)
	if err != nil {
		return err
	}
	logger.Debug().Int("jobs", len(jobs)).Msg("Build planned")

	staging, err := write(jobs, opts, dest)
	if err != nil {
		logger.Error().Err(err).Msg("Build rolled back, destination untouched")
		return err
	}

	if err := commit(staging, dest, destExists, opts.Force); err != nil {
		logger.Error().Err(err).Msg("Commit failed")
		return err
	}
	logger.Info().Msg("Build committed")

	// Repository initialization is best-effort: the files are already
	// correctly in place, so a failure here is a warning, not a build
	// failure.
	if kind := opts.Resolution.VersionControl; kind != config.VCSNone && kind != config.VCSUnknown {
		if err := vcs.Init(kind, dest); err != nil {
			logger.Warn().Err(err).Str("kind", string(kind)).Msg("Version control initialization failed")
		}
	}

	return nil
}

// checkDestination reports whether the destination already exists and
// rejects a non-empty one unless force is set. The check runs before
// any write, so an AlreadyExists failure performs zero writes.
func checkDestination(dest string, force bool) (exists bool, err error) {
	info, err := os.Stat(dest)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, errors.ErrBuildIO, "failed to stat destination %s", dest)
	}
	if !info.IsDir() {
		return true, errors.Newf(errors.ErrAlreadyExists, "destination %s exists and is not a directory", dest).
			WithDetail("path", dest)
	}

	entries, err := os.ReadDir(dest)
	if err != nil {
		return true, errors.Wrapf(err, errors.ErrBuildIO, "failed to read destination %s", dest)
	}
	if len(entries) > 0 && !force {
		return true, errors.Newf(errors.ErrAlreadyExists,
			"destination %s already exists and is not empty, rerun with --force to overwrite", dest).
			WithDetail("path", dest)
	}
	return true, nil
}

// plan renders and validates every job's destination path up front,
// so the Writing phase is never entered with an invalid plan
func plan(opts Options) ([]renderJob, error) {
	tpl := opts.Template
	ctx := opts.Resolution.Context
	root := tpl.Root

	type planned struct {
		raw  string
		kind jobKind
	}

	var jobs []renderJob
	seen := make(map[string]planned)

	add := func(kind jobKind, src, body, rawDest string) error {
		rendered, err := render.Path(rawDest, ctx)
		if err != nil {
			return err
		}
		if !filepath.IsLocal(rendered) {
			return errors.Newf(errors.ErrPathEscape,
				"path %q escapes the destination root", rendered).
				WithDetail("path", rawDest)
		}
		// Two directory entries rendering to the same path collapse
		// into one mkdir; any other overlap is a conflict.
		if previous, ok := seen[rendered]; ok {
			if kind != jobDir || previous.kind != jobDir {
				return errors.Newf(errors.ErrManifestConflict,
					"rendered path %q collides with %q", rendered, previous.raw).
					WithDetail("path", rawDest)
			}
		} else {
			seen[rendered] = planned{raw: rawDest, kind: kind}
		}
		jobs = append(jobs, renderJob{kind: kind, src: src, body: body, dest: rendered})
		return nil
	}

	for _, dir := range tpl.Manifest.Directories {
		if err := add(jobDir, "", "", dir); err != nil {
			return nil, err
		}
	}

	for _, file := range tpl.Manifest.Files {
		src := filepath.Join(root, filepath.FromSlash(file))
		if _, err := os.Stat(src); err != nil {
			// A listed plain file with no source in the template is
			// created empty.
			src = ""
		}
		if err := add(jobFile, src, "", file); err != nil {
			return nil, err
		}
	}

	if text := includes.LicenseText(opts.Resolution.License); text != "" {
		if err := add(jobInclude, "", text, "LICENSE"); err != nil {
			return nil, err
		}
	}
	if opts.Resolution.WithReadme {
		if err := add(jobInclude, "", includes.ReadmeText(), "README.md"); err != nil {
			return nil, err
		}
	}

	renderTargets := []struct {
		kind  jobKind
		paths []string
	}{
		{jobTemplate, tpl.Manifest.Templates},
		{jobScript, tpl.Manifest.Scripts},
	}
	for _, targets := range renderTargets {
		for _, file := range targets.paths {
			src := filepath.Join(root, filepath.FromSlash(file))
			if _, err := os.Stat(src); err != nil {
				return nil, errors.Wrapf(err, errors.ErrBuildIO, "template source %s is missing", file).
					WithDetail("path", file)
			}
			if err := add(targets.kind, src, "", file); err != nil {
				return nil, err
			}
		}
	}

	return jobs, nil
}

// write performs every job against a staging directory created next
// to the destination (same filesystem, so commit is a rename). On any
// failure the staging directory is removed and the error carries the
// failing job's path.
func write(jobs []renderJob, opts Options, dest string) (string, error) {
	log := logging.GetLogger("builder")

	staging, err := os.MkdirTemp(filepath.Dir(dest), ".pi-stage-*")
	if err != nil {
		return "", errors.Wrap(err, errors.ErrBuildIO, "failed to create staging directory")
	}
	if err := os.Chmod(staging, 0755); err != nil {
		_ = os.RemoveAll(staging)
		return "", errors.Wrap(err, errors.ErrBuildIO, "failed to set staging permissions")
	}

	fail := func(err error, job renderJob) (string, error) {
		if rmErr := os.RemoveAll(staging); rmErr != nil {
			log.Warn().Err(rmErr).Str("staging", staging).Msg("Failed to remove staging directory")
		}
		var piErr *errors.PiError
		if e, ok := err.(*errors.PiError); ok {
			piErr = e
		} else {
			piErr = errors.Wrap(err, errors.ErrBuildIO, "build job failed")
		}
		return "", piErr.WithDetail("path", job.dest)
	}

	ctx := opts.Resolution.Context
	var plainFiles []string

	for _, job := range jobs {
		target := filepath.Join(staging, job.dest)

		switch job.kind {
		case jobDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return fail(err, job)
			}
			continue
		default:
			// Directories implied by a file path exist before the file.
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return fail(err, job)
			}
		}

		switch job.kind {
		case jobFile:
			if job.src == "" {
				file, err := os.OpenFile(target, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
				if err != nil {
					return fail(err, job)
				}
				_ = file.Close()
			} else if err := cp.Copy(job.src, target, cp.Options{PreserveTimes: true}); err != nil {
				return fail(err, job)
			}
			plainFiles = append(plainFiles, filepath.ToSlash(job.dest))
			// The rendered plain-file list is available to every
			// later render target under the "files" key.
			ctx["files"] = plainFiles

		case jobInclude:
			rendered, err := render.Text(job.body, ctx)
			if err != nil {
				return fail(err, job)
			}
			if err := os.WriteFile(target, []byte(rendered), 0644); err != nil {
				return fail(err, job)
			}

		case jobTemplate, jobScript:
			data, err := os.ReadFile(job.src)
			if err != nil {
				return fail(err, job)
			}
			rendered, err := render.Text(string(data), ctx)
			if err != nil {
				return fail(err, job)
			}
			mode := sourceMode(job.src)
			if job.kind == jobScript {
				mode |= 0111
			}
			if err := os.WriteFile(target, []byte(rendered), mode); err != nil {
				return fail(err, job)
			}
		}

		log.Trace().Str("path", job.dest).Msg("Job written")
	}

	return staging, nil
}

// commit moves the fully written staging tree into place. An absent
// destination is a single rename; an existing one (init into the
// current directory, or an overwrite) has each staged entry moved in.
// If a move fails, the entries placed so far are removed and any
// displaced entries are put back.
func commit(staging, dest string, destExists, force bool) error {
	if !destExists {
		if err := os.Rename(staging, dest); err != nil {
			_ = os.RemoveAll(staging)
			return errors.Wrapf(err, errors.ErrBuildIO, "failed to move staged project into %s", dest).
				WithDetail("path", dest)
		}
		return nil
	}

	entries, err := os.ReadDir(staging)
	if err != nil {
		_ = os.RemoveAll(staging)
		return errors.Wrap(err, errors.ErrBuildIO, "failed to read staging directory")
	}

	// Colliding entries are renamed aside into a holding directory
	// rather than deleted, so a failed move later on can put them
	// back and leave the destination exactly as it was.
	type displacedEntry struct {
		original string
		aside    string
	}
	var moved []string
	var displaced []displacedEntry
	var holding string

	rollback := func() {
		for _, placed := range moved {
			_ = os.RemoveAll(placed)
		}
		for _, d := range displaced {
			_ = os.Rename(d.aside, d.original)
		}
		if holding != "" {
			_ = os.RemoveAll(holding)
		}
		_ = os.RemoveAll(staging)
	}

	for _, entry := range entries {
		target := filepath.Join(dest, entry.Name())
		if _, err := os.Stat(target); err == nil {
			if !force {
				rollback()
				return errors.Newf(errors.ErrAlreadyExists, "%s already exists", target).
					WithDetail("path", target)
			}
			if holding == "" {
				holding, err = os.MkdirTemp(filepath.Dir(dest), ".pi-displaced-*")
				if err != nil {
					rollback()
					return errors.Wrap(err, errors.ErrBuildIO, "failed to create holding directory")
				}
			}
			aside := filepath.Join(holding, entry.Name())
			if err := os.Rename(target, aside); err != nil {
				rollback()
				return errors.Wrapf(err, errors.ErrBuildIO, "failed to replace %s", target).
					WithDetail("path", target)
			}
			displaced = append(displaced, displacedEntry{original: target, aside: aside})
		}
		if err := os.Rename(filepath.Join(staging, entry.Name()), target); err != nil {
			rollback()
			return errors.Wrapf(err, errors.ErrBuildIO, "failed to move %s into place", entry.Name()).
				WithDetail("path", target)
		}
		moved = append(moved, target)
	}

	if holding != "" {
		_ = os.RemoveAll(holding)
	}
	return os.RemoveAll(staging)
}

// sourceMode returns the permission bits of the template source file,
// falling back to 0644
func sourceMode(src string) os.FileMode {
	info, err := os.Stat(src)
	if err != nil {
		return 0644
	}
	return info.Mode().Perm()
}
