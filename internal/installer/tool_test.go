package installer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toolenv-installer/internal/config"
)

func toolsPath(t *testing.T, ins *Installer, parts ...string) string {
	t.Helper()
	toolsDir, err := ins.Config.Layout().ToolsDir()
	require.NoError(t, err)
	return filepath.Join(append([]string{toolsDir}, parts...)...)
}

func TestInstallArtifactExecutableFile(t *testing.T) {
	ins, _, _, _, _, err := newTestInstaller(t.TempDir(), &config.ToolsetManifest{})
	require.NoError(t, err)

	src := filepath.Join(t.TempDir(), "mytool")
	require.NoError(t, os.WriteFile(src, []byte("#!/bin/sh\n"), 0755))

	installed, err := ins.installArtifact("mytool", src)
	require.NoError(t, err)
	assert.Equal(t, toolsPath(t, ins, "mytool", "mytool"), installed)
	assert.FileExists(t, installed)
}

func TestInstallArtifactPlainFileHasNoMethod(t *testing.T) {
	ins, _, _, _, _, err := newTestInstaller(t.TempDir(), &config.ToolsetManifest{})
	require.NoError(t, err)

	src := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(src, []byte("hello"), 0644))

	_, err = ins.installArtifact("mytool", src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no install method")
}

func TestInstallArtifactDirWithBinLayout(t *testing.T) {
	ins, _, _, _, _, err := newTestInstaller(t.TempDir(), &config.ToolsetManifest{})
	require.NoError(t, err)

	payload := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(payload, "bin"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(payload, "bin", "anything"), []byte("x"), 0755))

	installed, err := ins.installArtifact("mytool", payload)
	require.NoError(t, err)
	assert.Equal(t, toolsPath(t, ins, "mytool"), installed)
	assert.FileExists(t, filepath.Join(installed, "bin", "anything"))
}

func TestInstallArtifactDirScansForNamedExecutables(t *testing.T) {
	ins, _, _, _, _, err := newTestInstaller(t.TempDir(), &config.ToolsetManifest{})
	require.NoError(t, err)

	payload := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(payload, "mytool-v2"), []byte("#!/bin/sh\n"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(payload, "other"), []byte("#!/bin/sh\n"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(payload, "mytool.txt"), []byte("doc"), 0644))

	installed, err := ins.installArtifact("mytool", payload)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(installed, "mytool-v2"))
	assert.NoFileExists(t, filepath.Join(installed, "other"))
	assert.NoFileExists(t, filepath.Join(installed, "mytool.txt"))
}

func TestInstallArtifactDirWithoutMatchesFails(t *testing.T) {
	ins, _, _, _, _, err := newTestInstaller(t.TempDir(), &config.ToolsetManifest{})
	require.NoError(t, err)

	payload := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(payload, "unrelated"), []byte("#!/bin/sh\n"), 0755))

	_, err = ins.installArtifact("mytool", payload)
	require.Error(t, err)
}

func TestInstallArtifactNestedArchive(t *testing.T) {
	ins, _, _, extract, _, err := newTestInstaller(t.TempDir(), &config.ToolsetManifest{})
	require.NoError(t, err)

	src := filepath.Join(t.TempDir(), "mytool.tar.gz")
	require.NoError(t, os.WriteFile(src, []byte("archive"), 0644))

	installed, err := ins.installArtifact("mytool", src)
	require.NoError(t, err)
	require.Len(t, extract.extracted, 1)
	assert.FileExists(t, filepath.Join(installed, "bin", "tool"))
}
