package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"toolenv-installer/internal/config"
	"toolenv-installer/internal/installer"
	"toolenv-installer/internal/logger"
)

var (
	installDir   string
	manifestPath string
	optionsPath  string
	registryName string
	registryURL  string
	distServer   string
	updateRoot   string
	dryRun       bool
)

// installOptions mirrors the optional YAML options file. Flags override
// whatever the file sets.
type installOptions struct {
	InstallDir string           `yaml:"install_dir"`
	Registry   *config.Registry `yaml:"registry"`
	DistServer string           `yaml:"dist_server"`
	UpdateRoot string           `yaml:"update_root"`
}

// installCmd provisions the full toolchain environment described by the
// toolset manifest into the chosen install directory.
var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install the toolchain environment and its toolset",
	Run: func(cmd *cobra.Command, args []string) {
		opts, err := loadInstallOptions(optionsPath)
		if err != nil {
			fail(err)
		}

		dir := firstNonEmpty(installDir, opts.InstallDir, defaultInstallDir())

		manifest, err := config.LoadManifest(manifestPath)
		if err != nil {
			fail(err)
		}

		cfg, err := config.Init(dir, dryRun)
		if err != nil {
			fail(err)
		}
		cfg.WithDistServer(firstNonEmpty(distServer, opts.DistServer))
		cfg.WithUpdateRoot(firstNonEmpty(updateRoot, opts.UpdateRoot))
		switch {
		case registryName != "" && registryURL != "":
			cfg.WithRegistry(&config.Registry{Name: registryName, URL: registryURL})
		case opts.Registry != nil:
			cfg.WithRegistry(opts.Registry)
		}

		prog := installer.NewTicket(consoleSink{}, 100)
		if err := installer.New(cfg, manifest).Install(prog); err != nil {
			fail(err)
		}
		logger.Info("[INFO] Installation complete. Restart your shell to pick up the new environment.\n")
	},
}

func init() {
	installCmd.Flags().StringVarP(&installDir, "install-dir", "d", "", "Directory to install into (default $HOME/toolenv)")
	installCmd.Flags().StringVarP(&manifestPath, "manifest", "m", "toolset-manifest.toml", "Path to the toolset manifest")
	installCmd.Flags().StringVarP(&optionsPath, "config", "c", "", "Path to an install options YAML file")
	installCmd.Flags().StringVar(&registryName, "registry-name", "", "Package registry override name")
	installCmd.Flags().StringVar(&registryURL, "registry-url", "", "Package registry override URL")
	installCmd.Flags().StringVar(&distServer, "dist-server", "", "Toolchain distribution server")
	installCmd.Flags().StringVar(&updateRoot, "update-root", "", "Toolchain manager update root")
	installCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Go through the motions without touching the filesystem")
}

// loadInstallOptions reads the YAML options file, if one was given.
func loadInstallOptions(path string) (installOptions, error) {
	var opts installOptions
	if path == "" {
		return opts, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("failed to read options file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &opts); err != nil {
		return opts, fmt.Errorf("failed to parse options file %s: %w", path, err)
	}
	return opts, nil
}

func defaultInstallDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "toolenv"
	}
	return filepath.Join(home, "toolenv")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// consoleSink renders cumulative progress positions. Messages are already
// printed by the ticket itself, so they are dropped here.
type consoleSink struct{}

func (consoleSink) Position(pos int) {
	logger.Info("[INFO] Progress: %d%%\n", pos)
}

func (consoleSink) Message(string) {}
