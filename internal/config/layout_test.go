package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitRejectsRootDirectory(t *testing.T) {
	_, err := Init("/", false)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInstallDir)
}

func TestInitCreatesInstallDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "toolenv")

	cfg, err := Init(dir, false)
	require.NoError(t, err)
	require.DirExists(t, dir)
	assert.Equal(t, dir, cfg.InstallDir)
	assert.Equal(t, DefaultDistServer, cfg.DistServer)
	assert.Equal(t, DefaultUpdateRoot, cfg.UpdateRoot)
	assert.False(t, cfg.ToolchainReady())
}

func TestLayoutAccessorsCreateUnderInstallDir(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Init(dir, false)
	require.NoError(t, err)

	layout := cfg.Layout()
	accessors := map[string]func() (string, error){
		".pkg":       layout.PkgHome,
		".pkg/bin":   layout.PkgBin,
		".toolchain": layout.ToolchainHome,
		"temp":       layout.TempRoot,
		"tools":      layout.ToolsDir,
	}

	for want, accessor := range accessors {
		got, err := accessor()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, want), got)
		assert.DirExists(t, got)
	}
}

func TestLayoutAccessorsAreIdempotent(t *testing.T) {
	layout := NewPathLayout(t.TempDir(), false)

	first, err := layout.TempRoot()
	require.NoError(t, err)

	// Removing the directory behind the layout's back must not disturb the
	// memoized path.
	require.NoError(t, os.RemoveAll(first))
	second, err := layout.TempRoot()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDryRunSkipsFilesystem(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "toolenv")

	cfg, err := Init(dir, true)
	require.NoError(t, err)
	assert.NoDirExists(t, dir)

	pkgHome, err := cfg.Layout().PkgHome()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ".pkg"), pkgHome)
	assert.NoDirExists(t, pkgHome)
}

func TestCreateTempDirUsesPrefix(t *testing.T) {
	cfg, err := Init(t.TempDir(), false)
	require.NoError(t, err)

	tmp, err := cfg.CreateTempDir("download")
	require.NoError(t, err)
	assert.DirExists(t, tmp)
	assert.Equal(t, filepath.Join(cfg.InstallDir, "temp"), filepath.Dir(tmp))
	assert.Contains(t, filepath.Base(tmp), "download_")
}
