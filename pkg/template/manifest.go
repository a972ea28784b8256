package template

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/arthur-debert/pi/pkg/config"
	"github.com/arthur-debert/pi/pkg/errors"
	"github.com/arthur-debert/pi/pkg/logging"
	"github.com/arthur-debert/pi/pkg/render"
)

// Manifest declares, in order, the plain files to create or copy
// verbatim, the directories to create, the files whose contents pass
// through the renderer, and the scripts (rendered files that end up
// executable). All paths are relative to the template root.
type Manifest struct {
	Files       []string
	Directories []string
	Templates   []string
	Scripts     []string
}

// Template is a located template root plus its parsed manifest and
// configuration fragment
type Template struct {
	Root     string
	Manifest Manifest
	Config   config.Fragment
}

// templateFile mirrors the template.toml layout: scalar overrides at
// the top level, a [config] table, a [files] table of ordered lists,
// and a [custom_keys] table.
type templateFile struct {
	License    string `toml:"license"`
	WithReadme *bool  `toml:"with_readme"`
	Files      struct {
		Files       []string `toml:"files"`
		Directories []string `toml:"directories"`
		Templates   []string `toml:"templates"`
		Scripts     []string `toml:"scripts"`
	} `toml:"files"`
	Config struct {
		Version        string `toml:"version"`
		VersionControl string `toml:"version_control"`
	} `toml:"config"`
	Author     *config.Author         `toml:"author"`
	CustomKeys map[string]interface{} `toml:"custom_keys"`
}

// Load parses the template at root. With a template.toml present only
// the declared entries are materialized; without one the whole tree
// (minus the config file itself) becomes the manifest, every regular
// file a render target.
func Load(root string) (*Template, error) {
	manifestPath := filepath.Join(root, TemplateFilename)

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		if os.IsNotExist(err) {
			return loadImplicit(root)
		}
		return nil, errors.Wrapf(err, errors.ErrManifestParse, "failed to read %s", manifestPath).
			WithDetail("path", manifestPath)
	}

	var parsed templateFile
	if err := toml.Unmarshal(data, &parsed); err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifestParse, "failed to parse %s", manifestPath).
			WithDetail("path", manifestPath)
	}

	tpl := &Template{
		Root: root,
		Manifest: Manifest{
			Files:       parsed.Files.Files,
			Directories: parsed.Files.Directories,
			Templates:   parsed.Files.Templates,
			Scripts:     parsed.Files.Scripts,
		},
		Config: config.Fragment{
			License:        parsed.License,
			VersionControl: parsed.Config.VersionControl,
			Version:        parsed.Config.Version,
			WithReadme:     parsed.WithReadme,
			Author:         parsed.Author,
			CustomKeys:     parsed.CustomKeys,
		},
	}

	if err := tpl.Manifest.validate(); err != nil {
		return nil, err
	}

	logger := logging.GetLogger("template")
	logger.Debug().
		Str("root", root).
		Int("files", len(tpl.Manifest.Files)).
		Int("directories", len(tpl.Manifest.Directories)).
		Int("templates", len(tpl.Manifest.Templates)).
		Int("scripts", len(tpl.Manifest.Scripts)).
		Msg("Template manifest loaded")

	return tpl, nil
}

// loadImplicit synthesizes a manifest by walking the template root:
// every regular file is a render target, every subdirectory a
// directory entry. The walk is lexical, so parents always precede
// their children.
func loadImplicit(root string) (*Template, error) {
	tpl := &Template{Root: root}

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			tpl.Manifest.Directories = append(tpl.Manifest.Directories, filepath.ToSlash(rel))
			return nil
		}
		if rel == TemplateFilename {
			return nil
		}
		tpl.Manifest.Templates = append(tpl.Manifest.Templates, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifestParse, "failed to walk template root %s", root).
			WithDetail("root", root)
	}

	logger := logging.GetLogger("template")
	logger.Debug().
		Str("root", root).
		Int("directories", len(tpl.Manifest.Directories)).
		Int("templates", len(tpl.Manifest.Templates)).
		Msg("Template manifest synthesized from directory tree")

	return tpl, nil
}

// validate rejects a path declared in more than one manifest list
func (m Manifest) validate() error {
	lists := []struct {
		name  string
		paths []string
	}{
		{"files", m.Files},
		{"directories", m.Directories},
		{"templates", m.Templates},
		{"scripts", m.Scripts},
	}

	seen := make(map[string]string)
	for _, list := range lists {
		for _, raw := range list.paths {
			cleaned := path.Clean(filepath.ToSlash(raw))
			if previous, ok := seen[cleaned]; ok {
				return errors.Newf(errors.ErrManifestConflict,
					"path %q declared in both %s and %s", raw, previous, list.name).
					WithDetail("path", raw)
			}
			seen[cleaned] = list.name
		}
	}
	return nil
}

// ReferencedKeys returns the union of variable names referenced by
// the template's render targets. A syntax error in any body is fatal
// here, before anything is written.
func (t *Template) ReferencedKeys() ([]string, error) {
	seen := make(map[string]bool)
	var keys []string

	bodies := make([]string, 0, len(t.Manifest.Templates)+len(t.Manifest.Scripts))
	bodies = append(bodies, t.Manifest.Templates...)
	bodies = append(bodies, t.Manifest.Scripts...)

	for _, rel := range bodies {
		data, err := os.ReadFile(filepath.Join(t.Root, filepath.FromSlash(rel)))
		if err != nil {
			// Missing sources surface as build errors during planning.
			continue
		}
		refs, err := render.ReferencedKeys(string(data))
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrRenderSyntax, "malformed template body %s", rel).
				WithDetail("path", rel)
		}
		for _, key := range refs {
			if !seen[key] {
				seen[key] = true
				keys = append(keys, key)
			}
		}
	}
	return keys, nil
}
