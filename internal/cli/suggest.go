package cli

import (
	"fmt"
	"path/filepath"

	"github.com/sahilm/fuzzy"

	"github.com/matzehuels/una/pkg/errors"
	"github.com/matzehuels/una/pkg/workspace"
)

// suggest returns the candidate closest to name, or "" if none matches.
// Candidates are ranked by fuzzy subsequence score.
func suggest(name string, candidates []string) string {
	matches := fuzzy.Find(name, candidates)
	if len(matches) == 0 {
		return ""
	}
	return matches[0].Str
}

// findPackage looks a package up by name, or by directory when name
// contains a path separator or names an existing directory.
func findPackage(ws *workspace.Workspace, name string) (*workspace.Package, error) {
	pkgs, err := ws.Packages()
	if err != nil {
		return nil, err
	}
	abs, _ := filepath.Abs(name)
	candidates := make([]string, 0, len(pkgs))
	for _, p := range pkgs {
		if p.Name == name || p.Dir == abs {
			return p, nil
		}
		candidates = append(candidates, p.Name)
	}

	hint := ""
	if s := suggest(filepath.Base(name), candidates); s != "" {
		hint = fmt.Sprintf(" (did you mean %q?)", s)
	}
	return nil, errors.New(errors.ErrCodeNotFound, "no package %q in workspace%s", name, hint)
}
