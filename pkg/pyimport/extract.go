// Package pyimport extracts import statements from Python source trees.
//
// The package has two layers:
//
//   - [Parse] is a pure function from Python source to the absolute imports
//     it contains. It uses a small purpose-built tokenizer instead of a full
//     grammar, so syntax it does not understand is skipped rather than
//     reported.
//   - [Extractor] walks source roots, parses every .py file beneath them and
//     memoizes the result per file path. The same file is typically scanned
//     several times during one run (once per package that includes it, and
//     again while the internal resolver expands unknown names), so the cache
//     is what keeps repeated passes cheap.
//
// Results are keyed by the root directory's base name, which is the package
// name in every supported workspace layout.
package pyimport

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/matzehuels/una/pkg/errors"
	"github.com/matzehuels/una/pkg/names"
)

// DefaultCacheSize bounds the number of parsed files kept in memory.
const DefaultCacheSize = 4096

// Imports maps a source root's key (its directory name) to the distinct
// import names found beneath it.
type Imports map[string]names.Set

// Keys returns the keys of m as a set.
func (m Imports) Keys() names.Set {
	s := names.New(len(m))
	for k := range m {
		s.Add(k)
	}
	return s
}

// Values returns the union of every value set in m.
func (m Imports) Values() names.Set {
	s := names.New(len(m))
	for _, v := range m {
		s.Merge(v)
	}
	return s
}

// Merge copies the entries of other into m, replacing existing keys.
func (m Imports) Merge(other Imports) {
	for k, v := range other {
		m[k] = v
	}
}

// Extractor reads and parses Python files, caching results by path.
// It is not safe for concurrent use.
type Extractor struct {
	cache *lru.Cache[string, []string]
}

// NewExtractor returns an extractor caching up to size parsed files.
// A size of zero or less uses [DefaultCacheSize].
func NewExtractor(size int) *Extractor {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, _ := lru.New[string, []string](size)
	return &Extractor{cache: c}
}

// File returns the imports of a single Python file.
func (e *Extractor) File(path string) ([]string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	if imports, ok := e.cache.Get(abs); ok {
		return imports, nil
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "read %s", path)
	}
	imports := Parse(data)
	e.cache.Add(abs, imports)
	return imports, nil
}

// Root returns every import found in .py files beneath root. Hidden
// directories and __pycache__ are skipped. A root that is itself a .py file
// is parsed directly; a root that does not exist yields an empty set.
func (e *Extractor) Root(root string) (names.Set, error) {
	out := names.New(0)
	info, err := os.Stat(root)
	if os.IsNotExist(err) {
		return out, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "stat %s", root)
	}
	if !info.IsDir() {
		if filepath.Ext(root) != ".py" {
			return out, nil
		}
		imports, err := e.File(root)
		if err != nil {
			return nil, err
		}
		out.Add(imports...)
		return out, nil
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".py" {
			return nil
		}
		imports, err := e.File(path)
		if err != nil {
			return err
		}
		out.Add(imports...)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "walk %s", root)
	}
	return out, nil
}

// FetchAll extracts the imports of each root, keyed by [Key].
// Roots sharing a key are merged.
func (e *Extractor) FetchAll(roots []string) (Imports, error) {
	out := make(Imports, len(roots))
	for _, root := range roots {
		found, err := e.Root(root)
		if err != nil {
			return nil, err
		}
		key := Key(root)
		if existing, ok := out[key]; ok {
			existing.Merge(found)
			continue
		}
		out[key] = found
	}
	return out, nil
}

// Invalidate drops the cached parse of path.
func (e *Extractor) Invalidate(path string) {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	e.cache.Remove(path)
}

// Key returns the mapping key of a source root: its base name, without a
// .py extension for single-module roots.
func Key(root string) string {
	return strings.TrimSuffix(filepath.Base(filepath.Clean(root)), ".py")
}

func skipDir(name string) bool {
	return name == "__pycache__" || strings.HasPrefix(name, ".")
}
