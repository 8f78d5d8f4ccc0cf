// Package logger provides verbose logging for the Trove CLI.
// When verbose mode is enabled via the --verbose flag, pipeline messages
// are printed to stderr to help users follow ingestion and search.
// Errors always print regardless of verbosity: failures are never silent.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// state holds the shared logger configuration behind a lock so the CLI,
// watcher, and TUI goroutines can log concurrently.
type state struct {
	mu      sync.RWMutex
	verbose bool
	out     io.Writer
}

var std = state{out: os.Stderr}

// SetVerbose turns verbose logging on or off.
func SetVerbose(v bool) {
	std.mu.Lock()
	std.verbose = v
	std.mu.Unlock()
}

// IsVerbose reports whether verbose mode is enabled.
func IsVerbose() bool {
	std.mu.RLock()
	defer std.mu.RUnlock()
	return std.verbose
}

// SetOutput redirects log output, normally for tests. The default is
// os.Stderr.
func SetOutput(w io.Writer) {
	std.mu.Lock()
	std.out = w
	std.mu.Unlock()
}

// logf writes one tagged line when verbose mode is on.
func logf(tag, format string, args ...any) {
	std.mu.RLock()
	defer std.mu.RUnlock()
	if !std.verbose {
		return
	}
	fmt.Fprintf(std.out, tag+format+"\n", args...)
}

// Debug prints a message when verbose mode is on.
func Debug(format string, args ...any) { logf("[DEBUG] ", format, args...) }

// Info prints a progress message when verbose mode is on.
func Info(format string, args ...any) { logf("[INFO] ", format, args...) }

// Warn prints a warning when verbose mode is on.
func Warn(format string, args ...any) { logf("[WARN] ", format, args...) }

// Section prints a phase header when verbose mode is on. Headers delimit
// pipeline phases (extraction, embedding, indexing).
func Section(name string) { logf("", "\n=== %s ===", name) }

// Error prints an error message unconditionally.
func Error(format string, args ...any) {
	std.mu.RLock()
	defer std.mu.RUnlock()
	fmt.Fprintf(std.out, "[ERROR] "+format+"\n", args...)
}
