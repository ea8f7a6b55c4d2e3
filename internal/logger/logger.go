package logger

import (
	"github.com/fatih/color" // Colored console output for the different log levels
)

// Colorized printing functions for the different log levels.
// These are package-level variables holding functions that behave like fmt.Printf,
// but with text colored appropriately for the log level.

// Info logs informational messages in green color.
// Green is used for success or normal progress output.
var Info = color.New(color.FgGreen).PrintfFunc()

// Warn logs warning messages in bright magenta color,
// signaling caution without being too alarming.
var Warn = color.New(color.FgHiMagenta).PrintfFunc()

// Error logs error messages in red color to draw immediate attention.
var Error = color.New(color.FgRed).PrintfFunc()

// Debug logs debug messages in cyan color if enabled, otherwise is a no-op.
// It is assigned dynamically during Init based on the debug flag.
var Debug func(format string, a ...any)

// Init enables or disables debug logging. When disabled, Debug is a no-op
// function that silently ignores debug logs.
func Init(enableDebug bool) {
	if enableDebug {
		Debug = color.New(color.FgCyan).PrintfFunc()
	} else {
		Debug = func(format string, a ...any) {}
	}
}

func init() {
	// Make sure Debug is callable even if Init was never invoked,
	// e.g. from tests that exercise packages directly.
	Debug = func(format string, a ...any) {}
}
