package vcs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/pi/pkg/config"
	"github.com/arthur-debert/pi/pkg/errors"
	"github.com/arthur-debert/pi/pkg/vcs"
)

func TestInit_Git(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main"), 0644))

	require.NoError(t, vcs.Init(config.VCSGit, dir))

	info, err := os.Stat(filepath.Join(dir, ".git"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestInit_NoneIsNoop(t *testing.T) {
	assert.NoError(t, vcs.Init(config.VCSNone, t.TempDir()))
}

func TestInit_UnknownKindFails(t *testing.T) {
	err := vcs.Init(config.VCSUnknown, t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrVCSInit))
}
