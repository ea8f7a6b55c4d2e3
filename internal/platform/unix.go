package platform

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"toolenv-installer/internal/config"
	"toolenv-installer/internal/logger"
)

// sourceMarker tags the line this installer appends to the user's shell rc
// file, so uninstall can find and remove exactly that line.
const sourceMarker = "# added by toolenv"

// Unix persists the environment through an env.sh file inside the install
// directory plus a single guarded source line in the user's shell rc file.
// The env.sh file disappears together with the install directory; the rc
// line is removed by RemoveEnv.
type Unix struct {
	installDir string

	// RcPath overrides the shell rc file location. Empty means detect from
	// $SHELL and $HOME.
	RcPath string
}

// NewUnix returns the unix platform scoped to installDir.
func NewUnix(installDir string) *Unix {
	return &Unix{installDir: installDir}
}

func (u *Unix) envFile() string {
	return filepath.Join(u.installDir, "env.sh")
}

// PersistEnv rewrites the export block of env.sh with the given bindings and
// makes sure the user's shell rc file sources it.
func (u *Unix) PersistEnv(vars []config.EnvVar) error {
	var b strings.Builder
	b.WriteString("# Generated by toolenv. Do not edit.\n")
	for _, v := range vars {
		fmt.Fprintf(&b, "export %s=%q\n", v.Name, v.Value)
	}
	// PATH lines added by AddToPath live in the same file; keep them.
	for _, line := range readLines(u.envFile()) {
		if strings.HasPrefix(line, "export PATH=") {
			b.WriteString(line + "\n")
		}
	}

	if err := os.WriteFile(u.envFile(), []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", u.envFile(), err)
	}
	return u.ensureSourced()
}

// RemoveEnv removes the rc source line. The env.sh file itself is inside the
// install directory and is removed with it; clearing the exports here as well
// just keeps a half-removed installation inert.
func (u *Unix) RemoveEnv(names []string) error {
	if lines := readLines(u.envFile()); len(lines) > 0 {
		remove := make(map[string]bool, len(names))
		for _, n := range names {
			remove[n] = true
		}
		var kept []string
		for _, line := range lines {
			name, ok := exportName(line)
			if ok && remove[name] {
				continue
			}
			kept = append(kept, line)
		}
		if err := writeLines(u.envFile(), kept); err != nil {
			logger.Warn("[WARN] Failed to rewrite %s: %v\n", u.envFile(), err)
		}
	}

	rc, err := u.rcFile()
	if err != nil {
		return err
	}
	lines := readLines(rc)
	var kept []string
	removed := false
	for _, line := range lines {
		if strings.Contains(line, sourceMarker) && strings.Contains(line, u.envFile()) {
			removed = true
			continue
		}
		kept = append(kept, line)
	}
	if !removed {
		return nil
	}
	logger.Debug("[DEBUG] Removing source line from %s\n", rc)
	return writeLines(rc, kept)
}

// AddToPath appends an export PATH line for dir to env.sh, once.
func (u *Unix) AddToPath(dir string) error {
	line := fmt.Sprintf("export PATH=%q:$PATH", dir)
	// os.WriteFile/readLines round-trip quotes verbatim, so an exact string
	// match is enough to dedupe.
	lines := readLines(u.envFile())
	for _, l := range lines {
		if l == line {
			return nil
		}
	}
	lines = append(lines, line)
	if err := writeLines(u.envFile(), lines); err != nil {
		return fmt.Errorf("failed to add %s to PATH: %w", dir, err)
	}
	return u.ensureSourced()
}

// RemoveFromPath drops the export PATH line for dir from env.sh.
func (u *Unix) RemoveFromPath(dir string) error {
	line := fmt.Sprintf("export PATH=%q:$PATH", dir)
	lines := readLines(u.envFile())
	var kept []string
	for _, l := range lines {
		if l == line {
			continue
		}
		kept = append(kept, l)
	}
	if len(kept) == len(lines) {
		return nil
	}
	return writeLines(u.envFile(), kept)
}

// RegisterInstalledProgram is a no-op on unix, there is no installed-programs
// registry to update.
func (u *Unix) RegisterInstalledProgram(exe string) error {
	logger.Debug("[DEBUG] RegisterInstalledProgram is a no-op on this platform (%s)\n", exe)
	return nil
}

// UnregisterInstalledProgram is a no-op on unix.
func (u *Unix) UnregisterInstalledProgram(exe string) error {
	logger.Debug("[DEBUG] UnregisterInstalledProgram is a no-op on this platform (%s)\n", exe)
	return nil
}

// ensureSourced appends the guarded source line to the user's rc file unless
// it is already present.
func (u *Unix) ensureSourced() error {
	rc, err := u.rcFile()
	if err != nil {
		return err
	}
	line := fmt.Sprintf(`[ -f %q ] && . %q %s`, u.envFile(), u.envFile(), sourceMarker)

	for _, existing := range readLines(rc) {
		if strings.TrimSpace(existing) == line {
			logger.Debug("[DEBUG] Source line already present in %s\n", rc)
			return nil
		}
	}

	f, err := os.OpenFile(rc, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("unable to open %s for appending: %w", rc, err)
	}
	defer f.Close()
	if _, err := f.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("failed to append source line to %s: %w", rc, err)
	}
	logger.Info("[INFO] Added environment setup to %s\n", rc)
	return nil
}

// rcFile picks the user's shell rc file based on $SHELL, defaulting to zsh
// the same way unknown shells do.
func (u *Unix) rcFile() (string, error) {
	if u.RcPath != "" {
		return u.RcPath, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate home directory: %w", err)
	}
	shell := os.Getenv("SHELL")
	rc := ".zshrc"
	if strings.Contains(shell, "bash") {
		rc = ".bashrc"
	}
	return filepath.Join(home, rc), nil
}

// exportName extracts NAME from an `export NAME="..."` line.
func exportName(line string) (string, bool) {
	rest, ok := strings.CutPrefix(line, "export ")
	if !ok {
		return "", false
	}
	name, _, ok := strings.Cut(rest, "=")
	return name, ok
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines
}

func writeLines(path string, lines []string) error {
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line + "\n")
	}
	return os.WriteFile(path, []byte(b.String()), 0644)
}
