package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/matzehuels/una/pkg/cache"
	"github.com/matzehuels/una/pkg/deps"
	"github.com/matzehuels/una/pkg/dist"
	"github.com/matzehuels/una/pkg/manifest"
	"github.com/matzehuels/una/pkg/workspace"
)

// env is the per-command view of the workspace una was started in.
type env struct {
	cwd    string
	ws     *workspace.Workspace
	cache  cache.Cache
	logger *log.Logger
}

// flagKeys maps settings keys to the persistent flags that override them.
var flagKeys = map[string]string{
	"no_cache":       "no-cache",
	"site_packages":  "site-packages",
	"python_version": "python-version",
}

// openEnv discovers the workspace containing the working directory (or
// --dir) with settings layered from defaults, the root manifest, UNA_*
// variables and flags.
func (c *CLI) openEnv(cmd *cobra.Command) (*env, error) {
	cwd := c.flags.dir
	if cwd == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		cwd = wd
	}
	cwd, err := filepath.Abs(cwd)
	if err != nil {
		return nil, err
	}

	v := workspace.NewViper()
	if err := bindFlags(v, cmd); err != nil {
		return nil, err
	}

	logger := c.Logger
	ws, err := workspace.Discover(cwd, v, manifest.NewCache(0), logger)
	if err != nil {
		return nil, err
	}
	logger.Debug("opened workspace", "root", ws.Root, "namespace", ws.Namespace, "style", ws.Style.Name())

	store, err := newCache(ws.Settings.NoCache)
	if err != nil {
		logger.Warn("cache unavailable", "err", err)
		store = cache.NewNullCache()
	}
	return &env{cwd: cwd, ws: ws, cache: store, logger: logger}, nil
}

func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for key, name := range flagKeys {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return err
		}
	}
	return nil
}

// close releases the cache.
func (e *env) close() {
	if err := e.cache.Close(); err != nil {
		e.logger.Debug("close cache", "err", err)
	}
}

// checker builds a checker backed by the installed distributions of the
// configured or detected environment. extraAliases are added to the
// configured ones.
func (e *env) checker(ctx context.Context, extraAliases []string) *deps.Checker {
	dirs := dist.Locate(e.ws.Root, e.ws.Settings.SitePackages)
	if len(dirs) == 0 {
		e.logger.Warn("no site-packages found, distribution names will not be resolved")
	} else if e.ws.Settings.SitePackages == "" {
		e.ws.Settings.SitePackages = dirs[0]
	}
	prog := newProgress(e.logger)
	idx := dist.Load(ctx, e.cache, e.logger, dirs...)
	prog.done("Indexed installed distributions")

	chk := deps.NewChecker(e.ws, idx)
	chk.Aliases = append(chk.Aliases, extraAliases...)
	return chk
}
