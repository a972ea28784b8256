package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/arthur-debert/pi/pkg/errors"
	"github.com/arthur-debert/pi/pkg/logging"
)

// GlobalConfigFilename is the per-user configuration file, resolved
// relative to the home directory
const GlobalConfigFilename = ".pi.toml"

// VersionControl identifies the repository kind to initialize after a
// successful build
type VersionControl string

const (
	VCSNone      VersionControl = ""
	VCSGit       VersionControl = "git"
	VCSHg        VersionControl = "hg"
	VCSMercurial VersionControl = "mercurial"
	VCSPijul     VersionControl = "pijul"
	VCSDarcs     VersionControl = "darcs"
	VCSUnknown   VersionControl = "unknown"
)

// ParseVersionControl maps a config string onto a known variant.
// Unrecognized non-empty values map to VCSUnknown so the caller can
// warn instead of failing the build.
func ParseVersionControl(s string) VersionControl {
	switch s {
	case "":
		return VCSNone
	case "git":
		return VCSGit
	case "hg":
		return VCSHg
	case "mercurial":
		return VCSMercurial
	case "pijul":
		return VCSPijul
	case "darcs":
		return VCSDarcs
	default:
		return VCSUnknown
	}
}

// License identifies one of the bundled license texts
type License string

const (
	LicenseNone              License = ""
	LicenseBSD3              License = "BSD3"
	LicenseBSD               License = "BSD"
	LicenseGPL3              License = "GPL3"
	LicenseMIT               License = "MIT"
	LicenseAllRightsReserved License = "AllRightsReserved"
)

// ParseLicense maps a config string onto a known license. Unknown
// non-empty values fall back to AllRightsReserved with a warning.
func ParseLicense(s string) License {
	switch s {
	case "":
		return LicenseNone
	case "BSD3":
		return LicenseBSD3
	case "BSD":
		return LicenseBSD
	case "GPL3":
		return LicenseGPL3
	case "MIT":
		return LicenseMIT
	case "AllRightsReserved":
		return LicenseAllRightsReserved
	default:
		logger := logging.GetLogger("config")
		logger.Warn().Str("license", s).Msg("Requested license not found, defaulting to AllRightsReserved")
		return LicenseAllRightsReserved
	}
}

// Author is the nested author table shared by the global and template
// configuration files
type Author struct {
	Name           string `toml:"name"`
	Email          string `toml:"email"`
	GithubUsername string `toml:"github_username"`
}

// Fragment is one partially-specified configuration source before
// merging: any subset of the recognized keys may be present
type Fragment struct {
	License        string                 `toml:"license"`
	VersionControl string                 `toml:"version_control"`
	Version        string                 `toml:"version"`
	WithReadme     *bool                  `toml:"with_readme"`
	Author         *Author                `toml:"author"`
	CustomKeys     map[string]interface{} `toml:"custom_keys"`
}

// IsZero reports whether the fragment carries no configuration at all
func (f Fragment) IsZero() bool {
	return f.License == "" && f.VersionControl == "" && f.Version == "" &&
		f.WithReadme == nil && f.Author == nil && len(f.CustomKeys) == 0
}

// Context converts the fragment's set fields into a Context suitable
// for merging. Unset fields produce no keys, so folding fragments
// left-to-right yields the layered-override semantics.
func (f Fragment) Context() Context {
	ctx := NewContext()
	if f.License != "" {
		ctx["license"] = f.License
	}
	if f.VersionControl != "" {
		ctx["version_control"] = f.VersionControl
	}
	if f.Version != "" {
		ctx["version"] = f.Version
	}
	if f.WithReadme != nil {
		ctx["with_readme"] = *f.WithReadme
	}
	if f.Author != nil {
		author := make(map[string]interface{})
		if f.Author.Name != "" {
			author["name"] = f.Author.Name
		}
		if f.Author.Email != "" {
			author["email"] = f.Author.Email
		}
		if f.Author.GithubUsername != "" {
			author["github_username"] = f.Author.GithubUsername
		}
		ctx["author"] = author
	}
	if len(f.CustomKeys) > 0 {
		custom := make(map[string]interface{}, len(f.CustomKeys))
		for k, v := range f.CustomKeys {
			custom[k] = v
		}
		ctx["custom_keys"] = custom
	}
	return ctx
}

// LoadFragment reads a TOML fragment from path. An absent file yields
// an empty fragment, not an error; a present but malformed file is a
// fatal CONFIG_PARSE error.
func LoadFragment(path string) (Fragment, error) {
	log := logging.GetLogger("config")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debug().Str("path", path).Msg("Config file not found, using empty fragment")
			return Fragment{}, nil
		}
		return Fragment{}, errors.Wrapf(err, errors.ErrConfigParse, "failed to read config file %s", path).
			WithDetail("path", path)
	}

	var fragment Fragment
	if err := toml.Unmarshal(data, &fragment); err != nil {
		return Fragment{}, errors.Wrapf(err, errors.ErrConfigParse, "failed to parse %s", path).
			WithDetail("path", path)
	}

	log.Debug().Str("path", path).Msg("Config fragment loaded")
	return fragment, nil
}

// GlobalConfigPath returns the location of the per-user config file
func GlobalConfigPath() string {
	return filepath.Join(xdg.Home, GlobalConfigFilename)
}
