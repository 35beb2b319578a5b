package deps

import (
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/una/pkg/manifest"
	"github.com/matzehuels/una/pkg/workspace"
)

// Syncer writes missing internal dependencies into package manifests.
type Syncer struct {
	Workspace *workspace.Workspace
	Logger    *log.Logger
}

// Plan returns one manifest entry per missing internal name of the report
// that is a workspace unit, sorted by source path. Names that are not
// units (a stale import, a typo) are left for the caller to report.
func (s *Syncer) Plan(r *Report) []manifest.Entry {
	var entries []manifest.Entry
	for _, name := range r.Internal.Sorted() {
		if e, ok := s.Workspace.Entry(r.Package, name); ok {
			entries = append(entries, e)
		}
	}
	slices.SortFunc(entries, func(a, b manifest.Entry) int { return strings.Compare(a.Src, b.Src) })
	return entries
}

// Apply adds entries to the package's internal dependency table, keeping
// every other byte of the manifest. The file is written only if its
// content changes, after which the manifest cache entry is invalidated and
// the workspace re-reads its packages on next use.
// It reports whether the file was written.
func (s *Syncer) Apply(pkg *workspace.Package, entries []manifest.Entry) (bool, error) {
	if len(entries) == 0 {
		return false, nil
	}
	doc, err := manifest.LoadDocument(pkg.Dir)
	if err != nil {
		return false, err
	}
	changed, err := doc.SetTableEntries(s.Workspace.Style.Table(), entries)
	if err != nil || !changed {
		return false, err
	}
	if err := doc.Save(); err != nil {
		return false, err
	}
	s.Workspace.Cache.Invalidate(doc.Path)
	s.Workspace.Refresh()
	if s.Logger != nil {
		s.Logger.Debug("updated manifest", "path", doc.Path, "entries", len(entries))
	}
	return true, nil
}
