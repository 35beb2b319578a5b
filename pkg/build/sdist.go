package build

import (
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"

	"github.com/matzehuels/una/pkg/errors"
	"github.com/matzehuels/una/pkg/manifest"
	"github.com/matzehuels/una/pkg/workspace"
)

// IsSdist reports whether dir is an unpacked sdist.
func IsSdist(dir string) bool {
	return exists(filepath.Join(dir, SdistMarker))
}

// OpenSdist opens the package in an unpacked sdist, which is not inside a
// workspace. Settings and the namespace are read from the workspace
// manifest that [ForceInclude] copied to ExtraDir/RootDir.
func OpenSdist(dir string, v *viper.Viper, logger *log.Logger) (*workspace.Workspace, *workspace.Package, error) {
	if !IsSdist(dir) {
		return nil, nil, errors.New(errors.ErrCodeInvalidInput, "%s is not an sdist: no %s", dir, SdistMarker)
	}
	cache := manifest.NewCache(0)
	rootManifest, err := cache.Load(filepath.Join(dir, ExtraDir, RootDir))
	if err != nil && !errors.Is(err, errors.ErrCodeNotFound) {
		return nil, nil, err
	}
	settings, err := workspace.LoadSettings(v, rootManifest)
	if err != nil {
		return nil, nil, err
	}
	if settings.Namespace == "" && rootManifest != nil {
		settings.Namespace = rootManifest.Tool.Una.Namespace
		if settings.Namespace == "" {
			settings.Namespace = strings.ReplaceAll(rootManifest.Project.Name, "-", "_")
		}
	}
	if settings.Namespace == "" {
		return nil, nil, errors.New(errors.ErrCodeConfig, "no workspace manifest in %s", filepath.Join(dir, ExtraDir, RootDir))
	}

	ws, err := workspace.Open(dir, settings, cache, logger)
	if err != nil {
		return nil, nil, err
	}
	pkg, err := ws.LoadPackage(dir)
	if err != nil {
		return nil, nil, err
	}
	if name := pkg.Manifest.Project.Name; name != "" {
		pkg.Name = name
	}
	return ws, pkg, nil
}
