package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"toolenv-installer/internal/config"
	"toolenv-installer/internal/installer"
	"toolenv-installer/internal/logger"
)

// debug indicates whether debug logging should be enabled.
// It can be toggled via the `--debug` command-line flag.
var debug bool

// rootCmd is the base command for the `toolenv` CLI.
var rootCmd = &cobra.Command{
	Use:   "toolenv",
	Short: "Toolchain environment installer",

	// PersistentPreRun runs before any subcommand and initializes the
	// logger based on the debug flag.
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init(debug)
	},
}

// Execute initializes flags, registers subcommands, and starts the command
// execution. It's the entry point for the CLI when invoked by the user.
func Execute() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(uninstallCmd)

	_ = rootCmd.Execute()
}

// fail prints a single one-line failure and exits with the code for the
// error kind: 2 for user mistakes (bad paths, bad URLs), 1 otherwise.
func fail(err error) {
	logger.Error("[ERROR] %v\n", err)
	os.Exit(exitCode(err))
}

func exitCode(err error) int {
	var missing *installer.MissingSourceError
	var unusable *installer.UnusableURLError
	if errors.Is(err, config.ErrInvalidInstallDir) ||
		errors.As(err, &missing) ||
		errors.As(err, &unusable) {
		return 2
	}
	return 1
}
