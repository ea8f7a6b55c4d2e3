package installer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"toolenv-installer/internal/logger"
)

const (
	// pkgProgram is the package manager executable installed by the
	// toolchain bootstrap.
	pkgProgram = "pkg"
	// bootstrapProgram is the chainup bootstrap installer, published under
	// the update root.
	bootstrapProgram = "chainup-init"
	// defaultChannel is used when the manifest does not declare one.
	defaultChannel = "stable"
)

// InstallToolchain installs the toolchain manager and the manifest's default
// toolchain by fetching chainup-init from the update root and delegating to
// the Executor. overrideComponents, when non-nil, replaces the manifest's
// component list.
//
// On success the package manager bin directory goes on the persistent PATH
// and the configuration is marked toolchain-ready; managed tool installs are
// legal only after that.
func (ins *Installer) InstallToolchain(overrideComponents []string, prog *Ticket) error {
	prog.Print("installing chainup and the default toolchain")

	if ins.Config.DryRun {
		ins.Config.MarkToolchainReady()
		prog.Finish()
		return nil
	}

	initPath, cleanup, err := ins.fetchBootstrap()
	if err != nil {
		return err
	}
	defer cleanup()

	channel := ins.Manifest.Toolchain.Channel
	if channel == "" {
		channel = defaultChannel
	}
	components := ins.Manifest.Toolchain.Components
	if overrideComponents != nil {
		components = overrideComponents
	}

	args := []string{
		"-y",
		"--dist-server", ins.Config.DistServer,
		"--update-root", ins.Config.UpdateRoot,
		"--default-toolchain", channel,
	}
	for _, c := range components {
		args = append(args, "--component", c)
	}

	if err := ins.Executor.Run(initPath, args...); err != nil {
		return fmt.Errorf("toolchain bootstrap failed: %w", err)
	}

	pkgBin, err := ins.Config.Layout().PkgBin()
	if err != nil {
		return err
	}
	if err := ins.Platform.AddToPath(pkgBin); err != nil {
		return err
	}
	ins.Config.MarkToolchainReady()

	prog.Finish()
	return nil
}

// fetchBootstrap downloads chainup-init from the update root into a scratch
// directory and makes it executable. The returned cleanup removes the
// scratch directory.
func (ins *Installer) fetchBootstrap() (string, func(), error) {
	dir, err := ins.Config.CreateTempDir("bootstrap")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() {
		if err := os.RemoveAll(dir); err != nil {
			logger.Warn("[WARN] Failed to clean up %s: %v\n", dir, err)
		}
	}

	url := strings.TrimRight(ins.Config.UpdateRoot, "/") + "/" + bootstrapProgram
	dest := filepath.Join(dir, bootstrapProgram)
	proxy := ins.Manifest.Proxy
	if err := ins.Fetcher.Download(bootstrapProgram, url, dest, proxy); err != nil {
		cleanup()
		return "", nil, err
	}
	if err := os.Chmod(dest, 0755); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to make %s executable: %w", dest, err)
	}
	return dest, cleanup, nil
}
