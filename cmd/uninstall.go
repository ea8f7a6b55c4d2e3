package cmd

import (
	"github.com/spf13/cobra"

	"toolenv-installer/internal/installer"
	"toolenv-installer/internal/logger"
)

// uninstallRoot optionally overrides the install root. Without it the root
// is derived from the location of the running executable.
var uninstallRoot string

// uninstallCmd reverses an installation: custom recipes, persisted
// environment, then the install directory itself.
var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the toolchain environment",
	Run: func(cmd *cobra.Command, args []string) {
		root := uninstallRoot
		if root == "" {
			located, err := installer.InstallDirFromExePath()
			if err != nil {
				fail(err)
			}
			root = located
		}

		if err := installer.NewUninstaller(root).Uninstall(); err != nil {
			fail(err)
		}
		logger.Info("[INFO] Uninstalled %s\n", root)
	},
}

func init() {
	uninstallCmd.Flags().StringVar(&uninstallRoot, "root", "", "Install root to remove (default: derived from the executable path)")
}
