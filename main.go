package main

import (
	"toolenv-installer/cmd" // CLI commands and execution logic
)

// main is the program entry point.
// It delegates to cmd.Execute() which handles command line argument parsing
// and execution.
//
// The toolenv project provisions a self-contained toolchain environment into
// a user-selected directory:
//   - Reads a TOML toolset manifest describing the default toolchain and the
//     third-party tools to install for the current host target
//   - Persists the environment variables (PKG_HOME, TOOLCHAIN_HOME and the
//     distribution endpoints) and PATH entries the toolchain needs
//   - Bootstraps the chainup toolchain manager, then installs managed tools
//     through the `pkg` package manager and unmanaged tools from local paths
//     or downloaded archives
//   - Keeps a JSON receipt of everything it installed so `toolenv uninstall`
//     can reverse the installation cleanly
func main() {
	cmd.Execute()
}
