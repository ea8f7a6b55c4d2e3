package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"toolenv-installer/internal/logger"
)

// Built-in distribution endpoints, used when the user does not override them.
const (
	DefaultDistServer = "https://dist.toolenv.dev"
	DefaultUpdateRoot = "https://dist.toolenv.dev/chainup"
)

// ErrInvalidInstallDir is returned when the requested install directory is a
// filesystem root or otherwise has no parent directory.
var ErrInvalidInstallDir = errors.New("unable to install in a root directory")

// Registry is an optional package registry override for the package manager.
type Registry struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// InstallConfiguration carries the user/session-level installation settings.
//
// It owns the PathLayout for the chosen install directory, so every path the
// installer touches is derived from a single place. The install directory will
// contain the `.pkg` and `.toolchain` homes as well as `tools/` and `temp/`.
type InstallConfiguration struct {
	InstallDir  string
	PkgRegistry *Registry
	DistServer  string
	UpdateRoot  string
	DryRun      bool

	layout         *PathLayout
	toolchainReady bool
}

// Init validates the install directory, creates it (unless dryRun) and returns
// a configuration with default distribution endpoints.
func Init(installDir string, dryRun bool) (*InstallConfiguration, error) {
	cleaned := filepath.Clean(installDir)
	if filepath.Dir(cleaned) == cleaned {
		// A path equal to its own parent is a filesystem root.
		return nil, fmt.Errorf("%w: %s", ErrInvalidInstallDir, installDir)
	}

	cfg := &InstallConfiguration{
		InstallDir: cleaned,
		DistServer: DefaultDistServer,
		UpdateRoot: DefaultUpdateRoot,
		DryRun:     dryRun,
		layout:     NewPathLayout(cleaned, dryRun),
	}

	if !dryRun {
		if err := os.MkdirAll(cleaned, 0755); err != nil {
			return nil, fmt.Errorf("failed to create install directory %s: %w", cleaned, err)
		}
	}
	logger.Debug("[DEBUG] Initialized install configuration at %s (dry-run: %v)\n", cleaned, dryRun)

	return cfg, nil
}

// WithRegistry sets the package registry override. A nil registry keeps the
// package manager's built-in default source.
func (c *InstallConfiguration) WithRegistry(reg *Registry) *InstallConfiguration {
	c.PkgRegistry = reg
	return c
}

// WithDistServer overrides the toolchain distribution server.
func (c *InstallConfiguration) WithDistServer(url string) *InstallConfiguration {
	if url != "" {
		c.DistServer = url
	}
	return c
}

// WithUpdateRoot overrides the toolchain manager update root.
func (c *InstallConfiguration) WithUpdateRoot(url string) *InstallConfiguration {
	if url != "" {
		c.UpdateRoot = url
	}
	return c
}

// Layout returns the path layout derived from the install directory.
func (c *InstallConfiguration) Layout() *PathLayout {
	return c.layout
}

// ToolchainReady reports whether the toolchain bootstrap has completed.
// It starts out false and flips to true exactly once.
func (c *InstallConfiguration) ToolchainReady() bool {
	return c.toolchainReady
}

// MarkToolchainReady records a successful toolchain bootstrap.
func (c *InstallConfiguration) MarkToolchainReady() {
	c.toolchainReady = true
}

// CreateTempDir creates a fresh temporary directory under the layout's temp
// root using the given prefix, e.g. "download" yields "temp/download_XXXX".
func (c *InstallConfiguration) CreateTempDir(prefix string) (string, error) {
	root, err := c.layout.TempRoot()
	if err != nil {
		return "", err
	}
	dir, err := os.MkdirTemp(root, prefix+"_*")
	if err != nil {
		return "", fmt.Errorf("unable to create temp directory under %s: %w", root, err)
	}
	return dir, nil
}
