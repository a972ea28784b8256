package config

import (
	"sort"
	"time"
	"unicode"

	"github.com/iancoleman/strcase"

	"github.com/arthur-debert/pi/pkg/logging"
)

// DateFormat is the fixed format for the derived "date" key
const DateFormat = "2006-01-02"

// DefaultVersion is used when no configuration source provides an
// initial version string
const DefaultVersion = "0.1.0"

// Resolution is the outcome of folding every configuration source:
// the merged Context handed to the renderer plus the resolved
// well-known settings the builder acts on directly.
type Resolution struct {
	Context        Context
	License        License
	WithReadme     bool
	VersionControl VersionControl
}

// Store loads and merges configuration fragments from multiple
// sources into one resolved context. It owns the merged Context for
// the duration of one build invocation.
type Store struct {
	prompter Prompter
	now      func() time.Time
}

// NewStore creates a Store that collects interactive answers through
// the given prompter
func NewStore(prompter Prompter) *Store {
	return &Store{
		prompter: prompter,
		now:      time.Now,
	}
}

// WithClock overrides the time source, for tests
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Resolve folds the global fragment, the template fragment, and
// interactive answers into one Context, later sources winning for
// scalar keys and nested tables merging field-wise. referencedKeys
// lists the variable names the template bodies actually use; a custom
// key the template declares without a default is prompted for only
// when some body references it.
func (s *Store) Resolve(globalPath string, tpl Fragment, projectName string, referencedKeys []string) (*Resolution, error) {
	global, err := LoadFragment(globalPath)
	if err != nil {
		return nil, err
	}

	ctx := NewContext()
	if err := ctx.Merge(global.Context()); err != nil {
		return nil, err
	}
	if err := ctx.Merge(tpl.Context()); err != nil {
		return nil, err
	}

	if err := s.askUndefaulted(ctx, tpl, referencedKeys); err != nil {
		return nil, err
	}

	// Custom keys are bound at the top level of the render namespace,
	// never shadowing a key some source set explicitly.
	for key, value := range ctx.Table("custom_keys") {
		if !ctx.Has(key) {
			ctx[key] = value
		}
	}

	license := ParseLicense(ctx.GetString("license"))
	vcs := ParseVersionControl(ctx.GetString("version_control"))
	if vcs == VCSUnknown {
		logger := logging.GetLogger("config")
		logger.Warn().Str("version_control", ctx.GetString("version_control")).
			Msg("Version control kind not supported, supported kinds are git, hg, mercurial, pijul, and darcs")
	}

	s.deriveWellKnown(ctx, projectName, license, vcs)

	withReadme, _ := ctx["with_readme"].(bool)

	return &Resolution{
		Context:        ctx,
		License:        license,
		WithReadme:     withReadme,
		VersionControl: vcs,
	}, nil
}

// askUndefaulted prompts for template-declared custom keys that have
// an empty value and are referenced by some template body. Keys
// referenced but declared nowhere are left to the renderer's
// missing-key policy.
func (s *Store) askUndefaulted(ctx Context, tpl Fragment, referencedKeys []string) error {
	if s.prompter == nil || len(tpl.CustomKeys) == 0 {
		return nil
	}

	referenced := make(map[string]bool, len(referencedKeys))
	for _, key := range referencedKeys {
		referenced[key] = true
	}

	custom := ctx.Table("custom_keys")
	if custom == nil {
		custom = make(map[string]interface{})
		ctx["custom_keys"] = custom
	}

	// Deterministic prompt order.
	keys := make([]string, 0, len(tpl.CustomKeys))
	for key := range tpl.CustomKeys {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value, isString := custom[key].(string)
		if !isString || value != "" || !referenced[key] {
			continue
		}
		answer, err := s.prompter.Ask(key)
		if err != nil {
			return err
		}
		custom[key] = answer
	}
	return nil
}

// deriveWellKnown inserts the keys every build provides regardless of
// configuration: project name casings, date info, version, author
// identity, and the resolved license and version control kind.
func (s *Store) deriveWellKnown(ctx Context, projectName string, license License, vcs VersionControl) {
	log := logging.GetLogger("config")
	now := s.now()

	ctx["project"] = projectName
	ctx["Project"] = capitalize(projectName)
	ctx["ProjectCamelCase"] = strcase.ToCamel(projectName)
	ctx["year"] = now.Year()
	ctx["date"] = now.Format(DateFormat)

	if !ctx.Has("version") {
		log.Warn().Msg("No version info found, defaulting to '0.1.0'")
		ctx["version"] = DefaultVersion
	}

	if license != LicenseNone {
		ctx["license"] = string(license)
	}
	if vcs != VCSNone && vcs != VCSUnknown {
		ctx["version_control"] = string(vcs)
	}

	author := ctx.Table("author")
	name, _ := author["name"].(string)
	email, _ := author["email"].(string)
	githubUsername, _ := author["github_username"].(string)

	if name == "" && email == "" && s.prompter != nil {
		name, email = s.askAuthor()
	}
	if githubUsername == "" {
		log.Warn().Msg("No github username found, defaulting to ''")
	}

	ctx["name"] = name
	ctx["email"] = email
	ctx["github_username"] = githubUsername
}

// askAuthor collects the author identity when no configuration source
// provides one. A failed prompt falls back to the empty identity;
// author keys render empty like any other missing key.
func (s *Store) askAuthor() (name, email string) {
	log := logging.GetLogger("config")

	name, err := s.prompter.Ask("name")
	if err != nil {
		log.Warn().Err(err).Msg("Author name prompt failed, using empty author identity")
		return "", ""
	}
	email, err = s.prompter.Ask("email")
	if err != nil {
		log.Warn().Err(err).Msg("Author email prompt failed, using empty email")
		return name, ""
	}
	return name, email
}

// capitalize upper-cases the first rune of s
func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
