package installer

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"toolenv-installer/internal/config"
	"toolenv-installer/internal/logger"
	"toolenv-installer/internal/platform"
)

// RecipeEnv is what a custom recipe gets to work with.
type RecipeEnv struct {
	Config   *config.InstallConfiguration
	Executor Executor
	Platform platform.Platform
}

// recipe is one hand-written install/uninstall/detect trio for a tool whose
// packaging does not fit the generic strategies.
type recipe struct {
	install          func(env *RecipeEnv, path string) error
	uninstall        func(env *RecipeEnv) error
	alreadyInstalled func() bool
}

// customRecipes is the closed set of supported custom tools. There is no
// runtime registration: each recipe depends on tool-specific side effects
// (launchers, PATH layout) that cannot be generically abstracted, so adding
// one means touching this table.
var customRecipes = map[string]recipe{
	"buildtools": {
		install:          installBuildTools,
		uninstall:        uninstallBuildTools,
		alreadyInstalled: func() bool { return lookPathOK("buildtools") },
	},
	"vscode": {
		install:          installVSCode,
		uninstall:        uninstallVSCode,
		alreadyInstalled: func() bool { return lookPathOK("code") },
	},
}

// normalizeToolName folds dash and underscore variants of a tool name into
// the registry key form, so "build-tools", "build_tools" and "buildtools"
// all address the same recipe.
func normalizeToolName(name string) string {
	return strings.NewReplacer("-", "", "_", "").Replace(name)
}

// IsSupportedRecipe reports whether a custom recipe exists for name.
func IsSupportedRecipe(name string) bool {
	_, ok := customRecipes[normalizeToolName(name)]
	return ok
}

// InstallRecipe runs the custom install hook for name against the acquired
// artifact path.
func InstallRecipe(env *RecipeEnv, name, path string) error {
	r, ok := customRecipes[normalizeToolName(name)]
	if !ok {
		return &NoRecipeError{Tool: name}
	}
	return r.install(env, path)
}

// UninstallRecipe runs the custom uninstall hook for name.
func UninstallRecipe(env *RecipeEnv, name string) error {
	r, ok := customRecipes[normalizeToolName(name)]
	if !ok {
		return &NoRecipeError{Tool: name}
	}
	return r.uninstall(env)
}

// RecipeAlreadyInstalled reports whether the named tool is already present.
// Unsupported names are assumed not installed.
func RecipeAlreadyInstalled(name string) bool {
	r, ok := customRecipes[normalizeToolName(name)]
	if !ok {
		return false
	}
	return r.alreadyInstalled()
}

func lookPathOK(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// installBuildTools runs the build tools' own installer, which the artifact
// payload must contain as an executable.
func installBuildTools(env *RecipeEnv, path string) error {
	setup, err := findSetupExecutable(path)
	if err != nil {
		return fmt.Errorf("buildtools payload has no runnable installer: %w", err)
	}
	logger.Info("[INFO] Running build tools installer %s\n", setup)
	return env.Executor.Run(setup, "--quiet", "--norestart")
}

func uninstallBuildTools(env *RecipeEnv) error {
	// The vendor installer owns its uninstall entry; we never track its
	// files ourselves.
	logger.Warn("[WARN] buildtools must be removed through its own uninstaller\n")
	return nil
}

// installVSCode merges the extracted editor payload into tools/vscode and
// puts its bin directory on the persistent PATH.
func installVSCode(env *RecipeEnv, path string) error {
	toolsDir, err := env.Config.Layout().ToolsDir()
	if err != nil {
		return err
	}
	target := filepath.Join(toolsDir, "vscode")

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		if err := copyDir(path, target); err != nil {
			return fmt.Errorf("failed to place vscode into %s: %w", target, err)
		}
	} else {
		if err := copyFile(path, filepath.Join(target, filepath.Base(path)), 0755); err != nil {
			return err
		}
	}

	binDir := filepath.Join(target, "bin")
	if _, err := os.Stat(binDir); err != nil {
		binDir = target
	}
	return env.Platform.AddToPath(binDir)
}

func uninstallVSCode(env *RecipeEnv) error {
	toolsDir, err := env.Config.Layout().ToolsDir()
	if err != nil {
		return err
	}
	target := filepath.Join(toolsDir, "vscode")
	if err := env.Platform.RemoveFromPath(filepath.Join(target, "bin")); err != nil {
		return err
	}
	if err := env.Platform.RemoveFromPath(target); err != nil {
		return err
	}
	return os.RemoveAll(target)
}

// findSetupExecutable returns the first executable regular file under root.
func findSetupExecutable(root string) (string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return root, nil
	}
	var found string
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || found != "" {
			return err
		}
		fi, err := d.Info()
		if err != nil {
			return nil
		}
		if fi.Mode().IsRegular() && fi.Mode().Perm()&0111 != 0 {
			found = path
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if found == "" {
		return "", fmt.Errorf("no executable found in %s", root)
	}
	return found, nil
}
