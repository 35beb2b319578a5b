// Package cli implements the una command-line interface.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/una/pkg/buildinfo"
	"github.com/matzehuels/una/pkg/cache"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "una"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	flags globalFlags
}

// globalFlags are the persistent flags every command understands.
type globalFlags struct {
	dir           string
	noCache       bool
	sitePackages  string
	pythonVersion string
}

// New creates a new CLI instance with a default logger and routes
// observability events to it.
func New(w io.Writer, level log.Level) *CLI {
	c := &CLI{Logger: newLogger(w, level)}
	c.registerHooks()
	return c
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "una",
		Short: "una keeps the dependencies of a Python monorepo in sync with its imports",
		Long: `una reads the imports of every package in a uv workspace, works out which
internal packages and third-party distributions each one really uses, and
reconciles that with what the package declares in its pyproject.toml.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.StringVarP(&c.flags.dir, "dir", "C", "", "run as if una was started in `DIR`")
	pf.BoolVar(&c.flags.noCache, "no-cache", false, "do not read or write the distribution index cache")
	pf.StringVar(&c.flags.sitePackages, "site-packages", "", "virtualenv or site-packages directory to read installed distributions from")
	pf.StringVar(&c.flags.pythonVersion, "python-version", "", "Python version whose standard library is ignored (e.g. 3.12)")

	root.AddCommand(c.syncCommand())
	root.AddCommand(c.infoCommand())
	root.AddCommand(c.diffCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.buildDataCommand())
	root.AddCommand(c.createCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Exit Codes
// =============================================================================

// ExitError carries a process exit code for an outcome that has already
// been reported to the user, such as unresolved dependencies.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string { return fmt.Sprintf("exit status %d", e.Code) }

// errUnresolved is returned when a run leaves dependencies unresolved.
var errUnresolved = &ExitError{Code: 1}

// =============================================================================
// Cache Factory
// =============================================================================

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/una/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
