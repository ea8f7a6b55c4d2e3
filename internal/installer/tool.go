package installer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"toolenv-installer/internal/logger"
)

// installArtifact applies the generic install strategy to an acquired
// artifact and returns where the tool ended up.
//
// Strategy selection by inspecting the path:
//   - a directory with a known layout (bin/ or lib/) is merged into
//     tools/<name> wholesale,
//   - any other directory is scanned for executables named after the tool,
//     which are copied into tools/<name>,
//   - a file that is still an archive goes back through the extractor into a
//     fresh scratch directory and is rescanned,
//   - a plain executable file is copied into tools/<name>.
func (ins *Installer) installArtifact(name, path string) (string, error) {
	toolsDir, err := ins.Config.Layout().ToolsDir()
	if err != nil {
		return "", err
	}
	target := filepath.Join(toolsDir, name)

	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}

	if info.IsDir() {
		if hasKnownLayout(path) {
			logger.Debug("[DEBUG] %s has a bin/lib layout, merging into %s\n", path, target)
			if err := copyDir(path, target); err != nil {
				return "", err
			}
			return target, nil
		}

		binaries, err := findExecutables(path, name)
		if err != nil {
			return "", err
		}
		for _, bin := range binaries {
			if err := copyFile(bin, filepath.Join(target, filepath.Base(bin)), 0755); err != nil {
				return "", err
			}
		}
		return target, nil
	}

	if _, ok := ins.Extractor.Classify(path); ok {
		// A nested archive: unpack it and rescan the result.
		scratch, err := ins.Config.CreateTempDir(name)
		if err != nil {
			return "", err
		}
		defer os.RemoveAll(scratch)
		if err := ins.Extractor.Extract(path, scratch); err != nil {
			return "", fmt.Errorf("failed to extract %s: %w", path, err)
		}
		return ins.installArtifact(name, scratch)
	}

	if isExecutable(info.Mode()) {
		dest := filepath.Join(target, filepath.Base(path))
		if err := copyFile(path, dest, 0755); err != nil {
			return "", err
		}
		return dest, nil
	}

	return "", fmt.Errorf("no install method for tool %q", name)
}

// hasKnownLayout reports whether dir looks like an unpacked tool
// distribution with the conventional bin/ or lib/ subdirectories.
func hasKnownLayout(dir string) bool {
	for _, sub := range []string{"bin", "lib"} {
		if info, err := os.Stat(filepath.Join(dir, sub)); err == nil && info.IsDir() {
			return true
		}
	}
	return false
}

// findExecutables scans a directory tree and returns all executable files
// whose name starts with the tool name.
func findExecutables(root, toolName string) ([]string, error) {
	logger.Debug("[DEBUG] Scanning directory for executables: %s\n", root)
	var executables []string

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !strings.HasPrefix(filepath.Base(path), toolName) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.Mode().IsRegular() && isExecutable(info.Mode()) {
			logger.Debug("[DEBUG] Found executable: %s\n", path)
			executables = append(executables, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(executables) == 0 {
		return nil, fmt.Errorf("no executables found in %s", root)
	}
	return executables, nil
}

func isExecutable(mode os.FileMode) bool {
	return mode.Perm()&0111 != 0
}
