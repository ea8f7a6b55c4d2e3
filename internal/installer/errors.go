package installer

import (
	"errors"
	"fmt"
)

// ErrUntrustedRoot means the uninstall safety check failed: the candidate
// install directory does not carry both the `.pkg` and `.toolchain` homes.
var ErrUntrustedRoot = errors.New(
	"the installation directory appears to be corrupted or foreign, refusing to remove it")

// MissingSourceError reports a local-path tool whose source does not exist.
type MissingSourceError struct {
	Tool string
	Path string
}

func (e *MissingSourceError) Error() string {
	return fmt.Sprintf("unable to install %q because the path to its installer %q does not exist", e.Tool, e.Path)
}

// UnusableURLError reports a remote tool URL with no extractable filename.
type UnusableURLError struct {
	URL string
}

func (e *UnusableURLError) Error() string {
	return fmt.Sprintf("%q doesn't appear to be a downloadable file", e.URL)
}

// SubprocessError reports a subprocess that ran but exited non-zero.
type SubprocessError struct {
	Program string
	Code    int
}

func (e *SubprocessError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Program, e.Code)
}

// NoRecipeError reports a custom-recipe lookup for an unsupported tool.
type NoRecipeError struct {
	Tool string
}

func (e *NoRecipeError) Error() string {
	return fmt.Sprintf("no custom install instruction for %q", e.Tool)
}

// ToolInstallError wraps any failure while installing a single tool.
type ToolInstallError struct {
	Tool string
	Err  error
}

func (e *ToolInstallError) Error() string {
	return fmt.Sprintf("failed to install %q: %v", e.Tool, e.Err)
}

func (e *ToolInstallError) Unwrap() error {
	return e.Err
}
