// Package logger provides verbose logging for the heritage CLI.
// When verbose mode is enabled via the --verbose flag, debug messages
// are printed to stderr to trace the indexing and query pipelines.
// Errors are printed regardless of verbosity.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
	colour            = !color.NoColor
)

var (
	warnLabel    = color.New(color.FgYellow).SprintFunc()
	errorLabel   = color.New(color.FgRed, color.Bold).SprintFunc()
	sectionLabel = color.New(color.FgCyan, color.Bold).SprintFunc()
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs. Defaults to os.Stderr.
// Colour is only used on stderr when it is a terminal.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	colour = w == os.Stderr && !color.NoColor
}

// label returns s coloured by paint when colour is on. Callers hold mu.
func label(s string, paint func(...any) string) string {
	if colour {
		return paint(s)
	}
	return s
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "[DEBUG] "+format+"\n", args...)
	}
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n%s\n", label("=== "+name+" ===", sectionLabel))
	}
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "[INFO] "+format+"\n", args...)
	}
}

// Warn prints a warning message if verbose mode is enabled.
func Warn(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "%s %s\n", label("[WARN]", warnLabel), fmt.Sprintf(format, args...))
	}
}

// Error prints an error message whether or not verbose mode is enabled.
func Error(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	fmt.Fprintf(output, "%s %s\n", label("[ERROR]", errorLabel), fmt.Sprintf(format, args...))
}
