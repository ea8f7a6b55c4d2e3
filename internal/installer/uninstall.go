package installer

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"toolenv-installer/internal/config"
	"toolenv-installer/internal/logger"
	"toolenv-installer/internal/platform"
)

// InstallDirFromExePath locates the install root from the running
// executable. The manager binary lives at `{install_dir}/.pkg/bin/<exe>`, so
// the root is three parents up; the candidate is then validated against the
// installation signature before anything gets removed.
func InstallDirFromExePath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("cannot locate current executable: %w", err)
	}
	return installDirFromExe(exe)
}

func installDirFromExe(exe string) (string, error) {
	dir := filepath.Dir(filepath.Dir(filepath.Dir(exe)))
	if filepath.Dir(dir) == dir {
		return "", fmt.Errorf("%w: candidate %s is a filesystem root", ErrUntrustedRoot, dir)
	}
	return dir, ValidateInstallDir(dir)
}

// ValidateInstallDir checks that dir carries the installation signature:
// both the `.pkg` and `.toolchain` homes must exist. Anything else is not
// ours to delete.
func ValidateInstallDir(dir string) error {
	for _, sub := range []string{".pkg", ".toolchain"} {
		info, err := os.Stat(filepath.Join(dir, sub))
		if err != nil || !info.IsDir() {
			return fmt.Errorf("%w: %s is missing %s", ErrUntrustedRoot, dir, sub)
		}
	}
	return nil
}

// Uninstaller reverses an installation: custom recipes first, then the
// persisted environment, then the files.
type Uninstaller struct {
	InstallDir string
	Platform   platform.Platform
	Executor   Executor
}

// NewUninstaller builds an uninstaller for the given install root with the
// production collaborators.
func NewUninstaller(installDir string) *Uninstaller {
	return &Uninstaller{
		InstallDir: installDir,
		Platform:   platform.New(installDir),
		Executor:   NewExecutor(),
	}
}

// Uninstall removes everything the installer put on the machine. Recipe and
// environment failures are logged and do not stop the remaining steps; only
// a refused root or a failed file removal aborts.
func (u *Uninstaller) Uninstall() error {
	if err := ValidateInstallDir(u.InstallDir); err != nil {
		return err
	}

	layout := config.NewPathLayout(u.InstallDir, false)

	// Custom recipes may have spread outside the install root, reverse them
	// while the receipt still exists.
	receiptPath, err := layout.ReceiptPath()
	if err == nil {
		receipt := config.LoadReceipt(receiptPath)
		env := u.recipeEnv(layout)
		for _, name := range sortedRecordNames(receipt) {
			if receipt.Tools[name].Kind != config.RecordKindCustom {
				continue
			}
			logger.Info("[INFO] Uninstalling %s...\n", name)
			if err := UninstallRecipe(env, name); err != nil {
				logger.Error("[ERROR] Failed to uninstall %s: %v\n", name, err)
			}
		}
	}

	// Remove the persisted environment.
	if pkgBin, err := layout.PkgBin(); err == nil {
		if err := u.Platform.RemoveFromPath(pkgBin); err != nil {
			logger.Warn("[WARN] Failed to remove %s from PATH: %v\n", pkgBin, err)
		}
	}
	if err := u.Platform.RemoveEnv(config.AllEnvKeys); err != nil {
		logger.Warn("[WARN] Failed to remove environment variables: %v\n", err)
	}
	if exe, err := os.Executable(); err == nil {
		if err := u.Platform.UnregisterInstalledProgram(exe); err != nil {
			logger.Warn("[WARN] Failed to unregister program: %v\n", err)
		}
	}

	// Finally the files themselves.
	logger.Info("[INFO] Removing %s\n", u.InstallDir)
	if err := os.RemoveAll(u.InstallDir); err != nil {
		return fmt.Errorf("failed to remove %s: %w", u.InstallDir, err)
	}
	return nil
}

func (u *Uninstaller) recipeEnv(layout *config.PathLayout) *RecipeEnv {
	// The configuration is reconstructed from the existing root; layout
	// accessors only re-create directories that are already there.
	cfg, err := config.Init(u.InstallDir, false)
	if err != nil {
		// Only reachable for a root directory, which ValidateInstallDir
		// already refused.
		cfg = &config.InstallConfiguration{InstallDir: u.InstallDir}
	}
	return &RecipeEnv{Config: cfg, Executor: u.Executor, Platform: u.Platform}
}

func sortedRecordNames(r *config.Receipt) []string {
	names := make([]string, 0, len(r.Tools))
	for name := range r.Tools {
		names = append(names, name)
	}
	// Receipt order is a map; sort for deterministic uninstall logs.
	sort.Strings(names)
	return names
}
