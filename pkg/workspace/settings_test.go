package workspace

import (
	"testing"

	"github.com/matzehuels/una/pkg/errors"
	"github.com/matzehuels/una/pkg/manifest"
)

func TestLoadSettingsDefaults(t *testing.T) {
	s, err := LoadSettings(NewViper(), nil)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if s.Style != StylePackages {
		t.Errorf("Style = %q", s.Style)
	}
	if s.FuzzyCutoff != DefaultFuzzyCutoff {
		t.Errorf("FuzzyCutoff = %v", s.FuzzyCutoff)
	}
	if s.TagPatterns["stable"] != "stable-*" || s.TagPatterns["release"] != "v[0-9]*" {
		t.Errorf("TagPatterns = %v", s.TagPatterns)
	}
	if s.TagSort != "-committerdate" {
		t.Errorf("TagSort = %q", s.TagSort)
	}
}

func TestLoadSettingsFromManifest(t *testing.T) {
	m, err := manifest.Parse([]byte(`[project]
name = "ws"

[tool.una]
namespace = "acme"
fuzzy-cutoff = 0.8
aliases = ["pillow=PIL"]
python-version = "3.11"

[tool.una.tag-patterns]
stable = "prod-*"
`))
	if err != nil {
		t.Fatal(err)
	}
	s, err := LoadSettings(NewViper(), m)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if s.Namespace != "acme" || s.FuzzyCutoff != 0.8 || s.PythonVersion != "3.11" {
		t.Errorf("settings = %+v", s)
	}
	if len(s.Aliases) != 1 || s.Aliases[0] != "pillow=PIL" {
		t.Errorf("Aliases = %v", s.Aliases)
	}
	if s.TagPatterns["stable"] != "prod-*" {
		t.Errorf("TagPatterns[stable] = %q", s.TagPatterns["stable"])
	}
}

func TestLoadSettingsEnvOverrides(t *testing.T) {
	t.Setenv("UNA_FUZZY_CUTOFF", "0.9")
	t.Setenv("UNA_STYLE", "modules")
	m, err := manifest.Parse([]byte("[tool.una]\nfuzzy-cutoff = 0.7\n"))
	if err != nil {
		t.Fatal(err)
	}
	s, err := LoadSettings(NewViper(), m)
	if err != nil {
		t.Fatal(err)
	}
	if s.FuzzyCutoff != 0.9 {
		t.Errorf("FuzzyCutoff = %v, want env value 0.9", s.FuzzyCutoff)
	}
	if s.Style != StyleModules {
		t.Errorf("Style = %q", s.Style)
	}
}

func TestLoadSettingsInvalid(t *testing.T) {
	for name, doc := range map[string]string{
		"bad style":  "[tool.una]\nstyle = \"flat\"\n",
		"bad cutoff": "[tool.una]\nfuzzy-cutoff = 1.5\n",
	} {
		t.Run(name, func(t *testing.T) {
			m, err := manifest.Parse([]byte(doc))
			if err != nil {
				t.Fatal(err)
			}
			if _, err := LoadSettings(NewViper(), m); !errors.Is(err, errors.ErrCodeConfig) {
				t.Errorf("err = %v, want CONFIG", err)
			}
		})
	}
}
