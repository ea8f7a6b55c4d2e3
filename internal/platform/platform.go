// Package platform hides the OS-specific mechanics of making an installation
// durable: persistent environment variables, PATH edits and (where the OS has
// one) the installed-programs registry.
package platform

import (
	"toolenv-installer/internal/config"
)

// Platform is the per-OS capability the orchestrator drives. Implementations
// must be safe to call repeatedly; every operation is idempotent.
type Platform interface {
	// PersistEnv makes the given bindings durable across shells.
	PersistEnv(vars []config.EnvVar) error
	// RemoveEnv removes previously persisted bindings by name.
	RemoveEnv(names []string) error
	// AddToPath puts dir on the persistent PATH.
	AddToPath(dir string) error
	// RemoveFromPath reverses AddToPath.
	RemoveFromPath(dir string) error
	// RegisterInstalledProgram adds exe to the OS list of installed
	// programs. No-op where the OS has no such list.
	RegisterInstalledProgram(exe string) error
	// UnregisterInstalledProgram reverses RegisterInstalledProgram.
	UnregisterInstalledProgram(exe string) error
}

// New returns the platform implementation for the running OS, scoped to the
// given install directory.
func New(installDir string) Platform {
	return NewUnix(installDir)
}
