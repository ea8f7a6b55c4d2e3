package platform

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toolenv-installer/internal/config"
)

func newTestUnix(t *testing.T) (*Unix, string, string) {
	t.Helper()
	installDir := t.TempDir()
	rc := filepath.Join(t.TempDir(), ".zshrc")
	u := NewUnix(installDir)
	u.RcPath = rc
	return u, installDir, rc
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(raw)
}

func TestPersistEnvWritesEnvFileAndSourcesIt(t *testing.T) {
	u, installDir, rc := newTestUnix(t)

	require.NoError(t, u.PersistEnv([]config.EnvVar{
		{Name: "PKG_HOME", Value: filepath.Join(installDir, ".pkg")},
		{Name: "DIST_SERVER", Value: "https://dist.toolenv.dev"},
	}))

	env := readFile(t, filepath.Join(installDir, "env.sh"))
	assert.Contains(t, env, `export PKG_HOME="`+filepath.Join(installDir, ".pkg")+`"`)
	assert.Contains(t, env, `export DIST_SERVER="https://dist.toolenv.dev"`)

	rcContent := readFile(t, rc)
	assert.Contains(t, rcContent, "env.sh")
	assert.Contains(t, rcContent, "# added by toolenv")
}

func TestPersistEnvSourceLineIsIdempotent(t *testing.T) {
	u, _, rc := newTestUnix(t)
	vars := []config.EnvVar{{Name: "PKG_HOME", Value: "/x"}}

	require.NoError(t, u.PersistEnv(vars))
	require.NoError(t, u.PersistEnv(vars))

	assert.Equal(t, 1, strings.Count(readFile(t, rc), "# added by toolenv"))
}

func TestPersistEnvKeepsPathLines(t *testing.T) {
	u, installDir, _ := newTestUnix(t)

	require.NoError(t, u.PersistEnv([]config.EnvVar{{Name: "PKG_HOME", Value: "/x"}}))
	require.NoError(t, u.AddToPath("/some/bin"))
	require.NoError(t, u.PersistEnv([]config.EnvVar{{Name: "PKG_HOME", Value: "/y"}}))

	env := readFile(t, filepath.Join(installDir, "env.sh"))
	assert.Contains(t, env, `export PKG_HOME="/y"`)
	assert.NotContains(t, env, `"/x"`)
	assert.Contains(t, env, `export PATH="/some/bin":$PATH`)
}

func TestAddToPathDedupes(t *testing.T) {
	u, installDir, _ := newTestUnix(t)

	require.NoError(t, u.AddToPath("/some/bin"))
	require.NoError(t, u.AddToPath("/some/bin"))

	env := readFile(t, filepath.Join(installDir, "env.sh"))
	assert.Equal(t, 1, strings.Count(env, `export PATH="/some/bin":$PATH`))
}

func TestRemoveFromPath(t *testing.T) {
	u, installDir, _ := newTestUnix(t)

	require.NoError(t, u.AddToPath("/some/bin"))
	require.NoError(t, u.AddToPath("/other/bin"))
	require.NoError(t, u.RemoveFromPath("/some/bin"))

	env := readFile(t, filepath.Join(installDir, "env.sh"))
	assert.NotContains(t, env, "/some/bin")
	assert.Contains(t, env, `export PATH="/other/bin":$PATH`)

	// Removing a dir that was never added is a no-op.
	require.NoError(t, u.RemoveFromPath("/absent"))
}

func TestRemoveEnvStripsExportsAndSourceLine(t *testing.T) {
	u, installDir, rc := newTestUnix(t)

	require.NoError(t, os.WriteFile(rc, []byte("alias ll='ls -l'\n"), 0644))
	require.NoError(t, u.PersistEnv([]config.EnvVar{
		{Name: "PKG_HOME", Value: "/x"},
		{Name: "TOOLCHAIN_HOME", Value: "/y"},
	}))

	require.NoError(t, u.RemoveEnv([]string{"PKG_HOME", "TOOLCHAIN_HOME"}))

	env := readFile(t, filepath.Join(installDir, "env.sh"))
	assert.NotContains(t, env, "PKG_HOME")
	assert.NotContains(t, env, "TOOLCHAIN_HOME")

	rcContent := readFile(t, rc)
	assert.NotContains(t, rcContent, "# added by toolenv")
	// Unrelated rc content survives.
	assert.Contains(t, rcContent, "alias ll='ls -l'")
}

func TestRemoveEnvWithoutInstallIsClean(t *testing.T) {
	u, _, rc := newTestUnix(t)
	require.NoError(t, u.RemoveEnv([]string{"PKG_HOME"}))
	assert.NoFileExists(t, rc)
}
