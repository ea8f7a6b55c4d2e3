package installer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"toolenv-installer/internal/buildinfo"
	"toolenv-installer/internal/config"
	"toolenv-installer/internal/logger"
	"toolenv-installer/internal/platform"
)

// Installer drives one installation session against a single install root.
// The collaborator fields are interfaces so tests can substitute recording
// fakes; New fills them with the production implementations.
type Installer struct {
	Config   *config.InstallConfiguration
	Manifest *config.ToolsetManifest

	Platform  platform.Platform
	Fetcher   Fetcher
	Extractor Extractor
	Executor  Executor

	receipt *config.Receipt
}

// New assembles an installer with the default collaborators.
func New(cfg *config.InstallConfiguration, manifest *config.ToolsetManifest) *Installer {
	return &Installer{
		Config:    cfg,
		Manifest:  manifest,
		Platform:  platform.New(cfg.InstallDir),
		Fetcher:   &HTTPFetcher{},
		Extractor: NewExtractor(),
		Executor:  NewExecutor(),
	}
}

// Install runs the full installation sequence: persist the environment,
// bootstrap the toolchain, install unmanaged tools, then managed tools.
//
// A toolchain bootstrap failure is fatal, nothing tool-related has happened
// yet at that point. Per-tool failures are collected and reported together
// at the end without stopping the remaining tools. The package manager
// configuration is written on the way out no matter how far the run got.
func (ins *Installer) Install(prog *Ticket) (err error) {
	defer func() {
		if cfgErr := ins.Config.WritePkgConfig(); cfgErr != nil && err == nil {
			err = cfgErr
		}
		prog.Finish()
	}()

	if err := ins.devSelfCopy(); err != nil {
		return err
	}

	steps := prog.Split(4)

	// Environment first: chainup and pkg read these during bootstrap.
	vars, err := ins.Config.EnvVars(ins.Manifest.Proxy)
	if err != nil {
		return err
	}
	if !ins.Config.DryRun {
		if err := ins.Platform.PersistEnv(vars); err != nil {
			return err
		}
	}
	steps[0].Finish()

	if err := ins.InstallToolchain(nil, steps[1]); err != nil {
		return err
	}

	tools := ins.Manifest.CurrentTargetTools()
	unmanaged := make(map[string]config.ToolDescriptor)
	managed := make(map[string]config.ToolDescriptor)
	for name, desc := range tools {
		if desc.IsManaged() {
			managed[name] = desc
		} else {
			unmanaged[name] = desc
		}
	}

	var toolErrs []error
	toolErrs = append(toolErrs, ins.installUnmanagedTools(unmanaged, steps[2])...)
	toolErrs = append(toolErrs, ins.installManagedTools(managed, steps[3])...)

	if !ins.Config.DryRun {
		ins.saveReceipt()
	}
	return errors.Join(toolErrs...)
}

// installUnmanagedTools installs every local/remote tool, one at a time,
// collecting per-tool failures instead of aborting.
func (ins *Installer) installUnmanagedTools(tools map[string]config.ToolDescriptor, prog *Ticket) []error {
	names := config.SortedToolNames(tools)
	chunks := prog.Split(len(names))

	var errs []error
	for i, name := range names {
		desc := tools[name]
		chunks[i].Print(fmt.Sprintf("installing '%s'", name))

		if err := ins.installUnmanagedTool(name, desc); err != nil {
			wrapped := &ToolInstallError{Tool: name, Err: err}
			if desc.Optional {
				logger.Warn("[WARN] Skipping optional tool: %v\n", wrapped)
			} else {
				logger.Error("[ERROR] %v\n", wrapped)
				errs = append(errs, wrapped)
			}
		}
		chunks[i].Finish()
	}
	return errs
}

func (ins *Installer) installUnmanagedTool(name string, desc config.ToolDescriptor) error {
	if ins.Config.DryRun {
		logger.Info("[INFO] (dry-run) would install %s\n", name)
		return nil
	}

	if IsSupportedRecipe(name) {
		if RecipeAlreadyInstalled(name) {
			logger.Info("[INFO] %s is already installed. Skipping.\n", name)
			return nil
		}
		artifact, err := ins.acquirer().Acquire(name, desc, ins.Manifest.Proxy)
		if err != nil {
			return err
		}
		defer artifact.Release()
		if err := InstallRecipe(ins.recipeEnv(), name, artifact.Path); err != nil {
			return err
		}
		ins.record(name, config.ToolRecord{Kind: config.RecordKindCustom})
		return nil
	}

	artifact, err := ins.acquirer().Acquire(name, desc, ins.Manifest.Proxy)
	if err != nil {
		return err
	}
	defer artifact.Release()

	installed, err := ins.installArtifact(name, artifact.Path)
	if err != nil {
		return err
	}
	logger.Info("[INFO] Installed %s to %s\n", name, installed)
	ins.record(name, config.ToolRecord{Kind: config.RecordKindDispatched, InstallPath: installed})
	return nil
}

// installManagedTools installs package-manager tools. It must only run once
// the toolchain bootstrap has succeeded.
func (ins *Installer) installManagedTools(tools map[string]config.ToolDescriptor, prog *Ticket) []error {
	if len(tools) > 0 && !ins.Config.ToolchainReady() {
		prog.Finish()
		return []error{fmt.Errorf("cannot install managed tools before the toolchain is ready")}
	}

	names := config.SortedToolNames(tools)
	chunks := prog.Split(len(names))

	var errs []error
	for i, name := range names {
		desc := tools[name]
		chunks[i].Print(fmt.Sprintf("installing '%s' using %s", name, pkgProgram))

		if err := ins.installManagedTool(name, desc); err != nil {
			wrapped := &ToolInstallError{Tool: name, Err: err}
			logger.Error("[ERROR] %v\n", wrapped)
			errs = append(errs, wrapped)
		}
		chunks[i].Finish()
	}
	return errs
}

func (ins *Installer) installManagedTool(name string, desc config.ToolDescriptor) error {
	if ins.Config.DryRun {
		logger.Info("[INFO] (dry-run) would install %s via %s\n", name, pkgProgram)
		return nil
	}
	if err := ins.Executor.Run(pkgProgram, managedInstallArgs(name, desc)...); err != nil {
		return err
	}
	ins.record(name, config.ToolRecord{Kind: config.RecordKindManaged, Version: desc.Version})
	return nil
}

// managedInstallArgs builds the package manager invocation for a managed
// descriptor. For git sources the ref flags are emitted in branch, tag, rev
// order; the package manager applies them in that priority.
func managedInstallArgs(name string, desc config.ToolDescriptor) []string {
	switch desc.Kind {
	case config.KindGit:
		args := []string{"install", "--git", desc.Git}
		if desc.Branch != "" {
			args = append(args, "--branch", desc.Branch)
		}
		if desc.Tag != "" {
			args = append(args, "--tag", desc.Tag)
		}
		if desc.Rev != "" {
			args = append(args, "--rev", desc.Rev)
		}
		return args
	default:
		return []string{"install", name, "--version", desc.Version}
	}
}

// devSelfCopy promotes the running installer into the package manager bin
// directory under the manager name. Debug builds only; release builds rely
// on chainup to install the manager.
func (ins *Installer) devSelfCopy() error {
	if buildinfo.Profile != "debug" || ins.Config.DryRun {
		return nil
	}

	self, err := os.Executable()
	if err != nil {
		return fmt.Errorf("cannot locate current executable: %w", err)
	}
	managerName := strings.Replace(filepath.Base(self), "installer", "manager", 1)
	if !strings.Contains(managerName, "manager") {
		managerName = "manager"
	}

	pkgBin, err := ins.Config.Layout().PkgBin()
	if err != nil {
		return err
	}
	managerExe := filepath.Join(pkgBin, managerName)
	if err := copyFile(self, managerExe, 0755); err != nil {
		return err
	}
	return ins.Platform.RegisterInstalledProgram(managerExe)
}

func (ins *Installer) acquirer() *Acquirer {
	return &Acquirer{Config: ins.Config, Fetcher: ins.Fetcher, Extractor: ins.Extractor}
}

func (ins *Installer) recipeEnv() *RecipeEnv {
	return &RecipeEnv{Config: ins.Config, Executor: ins.Executor, Platform: ins.Platform}
}

func (ins *Installer) record(name string, rec config.ToolRecord) {
	if ins.receipt == nil {
		path, err := ins.Config.Layout().ReceiptPath()
		if err != nil {
			logger.Warn("[WARN] Cannot locate install receipt: %v\n", err)
			ins.receipt = &config.Receipt{Tools: make(map[string]config.ToolRecord)}
		} else {
			ins.receipt = config.LoadReceipt(path)
		}
	}
	ins.receipt.Tools[name] = rec
}

func (ins *Installer) saveReceipt() {
	if ins.receipt == nil {
		return
	}
	path, err := ins.Config.Layout().ReceiptPath()
	if err != nil {
		logger.Warn("[WARN] Cannot save install receipt: %v\n", err)
		return
	}
	config.SaveReceipt(path, ins.receipt)
}
