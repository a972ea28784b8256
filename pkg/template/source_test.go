package template_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/pi/pkg/errors"
	"github.com/arthur-debert/pi/pkg/template"
)

func reloadXDG(t *testing.T) {
	t.Helper()
	xdg.Reload()
}

// setHome points the global template root at a fresh directory for
// the duration of one test. xdg caches the home directory, so tests
// go through HOME plus xdg.Reload.
func setHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	reloadXDG(t)
	t.Cleanup(func() { reloadXDG(t) })
	return home
}

func TestLocate_LocalTemplateWins(t *testing.T) {
	home := setHome(t)
	cwd := t.TempDir()

	local := filepath.Join(cwd, "rust-lib")
	global := filepath.Join(home, template.GlobalTemplateDirname, "rust-lib")
	require.NoError(t, os.MkdirAll(local, 0755))
	require.NoError(t, os.MkdirAll(global, 0755))

	root, err := template.Locate("rust-lib", cwd)
	require.NoError(t, err)
	assert.Equal(t, local, root, "a directory-local template shadows the global one")
}

func TestLocate_FallsBackToGlobalRoot(t *testing.T) {
	home := setHome(t)
	cwd := t.TempDir()

	global := filepath.Join(home, template.GlobalTemplateDirname, "haskell-lib")
	require.NoError(t, os.MkdirAll(global, 0755))

	root, err := template.Locate("haskell-lib", cwd)
	require.NoError(t, err)
	assert.Equal(t, global, root)
}

func TestLocate_NotFound(t *testing.T) {
	setHome(t)

	_, err := template.Locate("no-such-template", t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrTemplateNotFound))
}

func TestList(t *testing.T) {
	home := setHome(t)

	root := filepath.Join(home, template.GlobalTemplateDirname)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "zeta"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "alpha"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "stray-file"), nil, 0644))

	names, err := template.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zeta"}, names, "sorted, directories only")
}

func TestList_AbsentRootIsEmpty(t *testing.T) {
	setHome(t)

	names, err := template.List()
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestFetch_InvalidRepoFailsAndCleansUp(t *testing.T) {
	_, _, err := template.Fetch("no-such-user/no-such-repo-pi-test", "")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFetchFailed))
}
