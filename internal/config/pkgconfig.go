package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"toolenv-installer/internal/logger"
)

// PkgConfigFile is the package manager configuration file name, written into
// the package manager home.
const PkgConfigFile = "config.toml"

// WritePkgConfig writes the package manager configuration into
// `.pkg/config.toml`. When a registry override is set, a source entry is
// emitted that replaces the default registry:
//
//	[source.default]
//	replace-with = "<name>"
//
//	[source.<name>]
//	registry = "<url>"
//
// Without an override the generated document is empty and nothing is written.
// An existing file is merged into, so unrelated keys survive.
func (c *InstallConfiguration) WritePkgConfig() error {
	if c.PkgRegistry == nil {
		logger.Debug("[DEBUG] No registry override set, skipping %s\n", PkgConfigFile)
		return nil
	}
	if c.DryRun {
		return nil
	}

	pkgHome, err := c.layout.PkgHome()
	if err != nil {
		return err
	}
	path := filepath.Join(pkgHome, PkgConfigFile)

	doc := make(map[string]any)
	if raw, err := os.ReadFile(path); err == nil {
		// Keep whatever an earlier run or the user put there.
		if err := toml.Unmarshal(raw, &doc); err != nil {
			return fmt.Errorf("existing %s is not valid TOML: %w", path, err)
		}
	}

	sources, ok := doc["source"].(map[string]any)
	if !ok {
		sources = make(map[string]any)
		doc["source"] = sources
	}
	sources["default"] = map[string]any{"replace-with": c.PkgRegistry.Name}
	sources[c.PkgRegistry.Name] = map[string]any{"registry": c.PkgRegistry.URL}

	out, err := toml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to serialize %s: %w", PkgConfigFile, err)
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	logger.Debug("[DEBUG] Wrote package manager config to %s\n", path)
	return nil
}
