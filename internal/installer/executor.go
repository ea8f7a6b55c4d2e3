package installer

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"toolenv-installer/internal/logger"
)

// Executor runs external programs, the package manager and the toolchain
// bootstrap installer among them. Pulled out as an interface so tests can
// record invocations instead of spawning processes.
type Executor interface {
	Run(program string, args ...string) error
}

// NewExecutor returns the real subprocess executor.
func NewExecutor() Executor {
	return execExecutor{}
}

type execExecutor struct{}

// Run executes program with args, logging the full command line and its
// combined output. A non-zero exit becomes a SubprocessError.
func (execExecutor) Run(program string, args ...string) error {
	cmd := exec.Command(program, args...)
	logger.Debug("[DEBUG] Running command: %s\n", strings.Join(cmd.Args, " "))

	output, err := cmd.CombinedOutput()
	if len(output) > 0 {
		logger.Debug("[DEBUG] %s output:\n%s\n", program, output)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &SubprocessError{Program: program, Code: exitErr.ExitCode()}
		}
		return fmt.Errorf("failed to run %s: %w", program, err)
	}
	return nil
}
