package dist

import (
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
)

// Locate finds site-packages directories to scan. An explicit venv (either a
// virtualenv or a site-packages directory) wins, then $VIRTUAL_ENV, then a
// .venv directory in the workspace root. It returns nil if none exist.
func Locate(root, venv string) []string {
	candidates := []string{venv, os.Getenv("VIRTUAL_ENV"), filepath.Join(root, ".venv")}
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if dirs := sitePackages(c); len(dirs) > 0 {
			return dirs
		}
	}
	return nil
}

func sitePackages(env string) []string {
	if info, err := os.Stat(env); err != nil || !info.IsDir() {
		return nil
	}
	if filepath.Base(env) == "site-packages" {
		return []string{env}
	}
	var out []string
	for _, pattern := range []string{"lib/python*/site-packages", "Lib/site-packages"} {
		matches, err := doublestar.FilepathGlob(filepath.Join(env, filepath.FromSlash(pattern)))
		if err != nil {
			continue
		}
		for _, m := range matches {
			if info, err := os.Stat(m); err == nil && info.IsDir() && !slices.Contains(out, m) {
				out = append(out, m)
			}
		}
	}
	slices.Sort(out)
	return out
}
