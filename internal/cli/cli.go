// Package cli implements the stackpin command-line interface.
//
// # Commands
//
//   - resolve: resolve package, tool and interpreter versions once and print
//     the outcome
//   - serve: expose resolution over HTTP with Prometheus metrics
//   - completion: generate shell completion scripts
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, including
// every outbound HTTP request. Logs go to stderr; stdout carries only the
// outcome.
package cli

import (
	"errors"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"

	"github.com/matzehuels/stackpin/pkg/httputil"
	"github.com/matzehuels/stackpin/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "stackpin"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// ErrResolutionFailed is returned by resolve after the failure outcome has
// been printed. Callers should exit non-zero without printing it again.
var ErrResolutionFailed = errors.New("resolution failed")

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Factory builds the resolvers of each run; nil means the public
	// PyPI and GitHub services.
	Factory pipeline.ResolverFactory

	// HTTPOptions are applied to the shared transport.
	HTTPOptions []httputil.Option

	stderr io.Writer
}

// New creates a new CLI instance logging to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		stderr: w,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(logger *log.Logger) *pipeline.Runner {
	return pipeline.NewRunner(c.Factory, httputil.NewClient(c.HTTPOptions...), logger)
}

// =============================================================================
// Terminal
// =============================================================================

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
