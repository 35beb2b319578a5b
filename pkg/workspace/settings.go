package workspace

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/matzehuels/una/pkg/errors"
	"github.com/matzehuels/una/pkg/manifest"
)

// Settings is the effective una configuration: defaults, then the root
// manifest's [tool.una] table, then UNA_* environment variables and bound
// command-line flags.
type Settings struct {
	Namespace     string            `mapstructure:"namespace"`
	Style         string            `mapstructure:"style"`
	Members       []string          `mapstructure:"members"`
	Aliases       []string          `mapstructure:"aliases"`
	FuzzyCutoff   float64           `mapstructure:"fuzzy_cutoff"`
	PythonVersion string            `mapstructure:"python_version"`
	SitePackages  string            `mapstructure:"site_packages"`
	TagPatterns   map[string]string `mapstructure:"tag_patterns"`
	TagSort       string            `mapstructure:"tag_sort"`
	NoCache       bool              `mapstructure:"no_cache"`
}

// Style names.
const (
	StylePackages = "packages"
	StyleModules  = "modules"
)

// DefaultFuzzyCutoff is the minimum similarity for an import to count as a
// declared distribution.
const DefaultFuzzyCutoff = 0.6

// NewViper returns a viper instance with una's defaults and environment
// binding. Callers may bind flags to it before calling [LoadSettings].
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("namespace", "")
	v.SetDefault("style", StylePackages)
	v.SetDefault("members", []string{})
	v.SetDefault("aliases", []string{})
	v.SetDefault("fuzzy_cutoff", DefaultFuzzyCutoff)
	v.SetDefault("python_version", "")
	v.SetDefault("site_packages", "")
	v.SetDefault("tag_patterns.stable", "stable-*")
	v.SetDefault("tag_patterns.release", "v[0-9]*")
	v.SetDefault("tag_sort", "-committerdate")
	v.SetDefault("no_cache", false)

	v.SetEnvPrefix("una")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// LoadSettings merges the root manifest's [tool.una] table into v and
// decodes the result. root may be nil when the workspace has no root
// manifest.
func LoadSettings(v *viper.Viper, root *manifest.Manifest) (Settings, error) {
	if root != nil {
		if table := root.ToolTable("una"); table != nil {
			if err := v.MergeConfigMap(underscoreKeys(table)); err != nil {
				return Settings{}, errors.Wrap(errors.ErrCodeConfig, err, "merge [tool.una] from %s", root.Path)
			}
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, errors.Wrap(errors.ErrCodeConfig, err, "decode settings")
	}
	if s.FuzzyCutoff <= 0 || s.FuzzyCutoff > 1 {
		return Settings{}, errors.New(errors.ErrCodeConfig, "fuzzy_cutoff must be in (0, 1], got %v", s.FuzzyCutoff)
	}
	switch s.Style {
	case StylePackages, StyleModules:
	default:
		return Settings{}, errors.New(errors.ErrCodeConfig, "unknown style %q, expected %s or %s", s.Style, StylePackages, StyleModules)
	}
	return s, nil
}

// underscoreKeys rewrites TOML's hyphenated keys to the underscore form
// used by settings keys. The internal-dependency tables are left out.
func underscoreKeys(table map[string]any) map[string]any {
	out := make(map[string]any, len(table))
	for k, v := range table {
		if k == "deps" || k == "libs" {
			continue
		}
		if m, ok := v.(map[string]any); ok {
			v = underscoreKeys(m)
		}
		out[strings.ReplaceAll(k, "-", "_")] = v
	}
	return out
}
