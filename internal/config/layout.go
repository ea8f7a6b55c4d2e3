package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// PathLayout is the canonical view over the subdirectories of the install
// root. Every accessor creates its directory on first access and remembers
// that it did, so later accesses return the same path without touching the
// filesystem again. In dry-run mode no directories are created.
//
// Centralizing the layout here gives the uninstaller a single source of
// truth for what belongs to an installation.
type PathLayout struct {
	installDir string
	dryRun     bool
	created    map[string]bool
}

// NewPathLayout returns a layout rooted at installDir.
func NewPathLayout(installDir string, dryRun bool) *PathLayout {
	return &PathLayout{
		installDir: installDir,
		dryRun:     dryRun,
		created:    make(map[string]bool),
	}
}

// InstallDir returns the install root itself.
func (l *PathLayout) InstallDir() string {
	return l.installDir
}

// PkgHome returns `install_dir/.pkg`, the package manager home.
func (l *PathLayout) PkgHome() (string, error) {
	return l.ensure(filepath.Join(l.installDir, ".pkg"))
}

// PkgBin returns `install_dir/.pkg/bin`, where managed executables live.
func (l *PathLayout) PkgBin() (string, error) {
	home, err := l.PkgHome()
	if err != nil {
		return "", err
	}
	return l.ensure(filepath.Join(home, "bin"))
}

// ToolchainHome returns `install_dir/.toolchain`, managed by chainup.
func (l *PathLayout) ToolchainHome() (string, error) {
	return l.ensure(filepath.Join(l.installDir, ".toolchain"))
}

// TempRoot returns `install_dir/temp`, holding transient download and
// extraction directories.
func (l *PathLayout) TempRoot() (string, error) {
	return l.ensure(filepath.Join(l.installDir, "temp"))
}

// ToolsDir returns `install_dir/tools`, holding unmanaged tool outputs.
func (l *PathLayout) ToolsDir() (string, error) {
	return l.ensure(filepath.Join(l.installDir, "tools"))
}

// ensure creates dir once and memoizes the result.
func (l *PathLayout) ensure(dir string) (string, error) {
	if l.created[dir] || l.dryRun {
		return dir, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("unable to create installation directory %s: %w", dir, err)
	}
	l.created[dir] = true
	return dir, nil
}
