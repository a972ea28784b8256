package config_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/pi/pkg/config"
	"github.com/arthur-debert/pi/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".pi.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFragment(t *testing.T) {
	path := writeConfig(t, `
license = "BSD3"
version_control = "git"

[author]
name = "Ada Lovelace"
email = "ada@example.com"
github_username = "ada"

[custom_keys]
website = "https://example.com"
`)

	fragment, err := config.LoadFragment(path)
	require.NoError(t, err)

	assert.Equal(t, "BSD3", fragment.License)
	assert.Equal(t, "git", fragment.VersionControl)
	require.NotNil(t, fragment.Author)
	assert.Equal(t, "Ada Lovelace", fragment.Author.Name)
	assert.Equal(t, "ada", fragment.Author.GithubUsername)
	assert.Equal(t, "https://example.com", fragment.CustomKeys["website"])
}

func TestLoadFragment_AbsentFileIsEmptyFragment(t *testing.T) {
	fragment, err := config.LoadFragment(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	require.NoError(t, err)
	assert.True(t, fragment.IsZero())
}

func TestLoadFragment_MalformedFileIsFatal(t *testing.T) {
	path := writeConfig(t, "license = [unclosed")

	_, err := config.LoadFragment(path)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigParse))
}

func TestFragmentContext_OnlySetFieldsProduceKeys(t *testing.T) {
	fragment := config.Fragment{Version: "2.0.0"}
	ctx := fragment.Context()

	assert.Equal(t, "2.0.0", ctx.GetString("version"))
	assert.False(t, ctx.Has("license"))
	assert.False(t, ctx.Has("author"))
	assert.False(t, ctx.Has("with_readme"))
}

func TestParseVersionControl(t *testing.T) {
	tests := []struct {
		input string
		want  config.VersionControl
	}{
		{"", config.VCSNone},
		{"git", config.VCSGit},
		{"hg", config.VCSHg},
		{"mercurial", config.VCSMercurial},
		{"pijul", config.VCSPijul},
		{"darcs", config.VCSDarcs},
		{"svn", config.VCSUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, config.ParseVersionControl(tt.input))
		})
	}
}

func TestParseLicense_UnknownFallsBack(t *testing.T) {
	assert.Equal(t, config.LicenseMIT, config.ParseLicense("MIT"))
	assert.Equal(t, config.LicenseNone, config.ParseLicense(""))
	assert.Equal(t, config.LicenseAllRightsReserved, config.ParseLicense("WTFPL"))
}

func TestWarningsFollowReconfiguredGlobalLogger(t *testing.T) {
	// Loggers are resolved per call, so output emitted after the
	// global logger is reconfigured goes through the new writer.
	var buf bytes.Buffer
	prev := zlog.Logger
	zlog.Logger = zerolog.New(&buf)
	t.Cleanup(func() { zlog.Logger = prev })

	config.ParseLicense("not-a-license")

	assert.Contains(t, buf.String(), `"component":"config"`)
	assert.Contains(t, buf.String(), "Requested license not found")
}
