package dist

import (
	"bufio"
	"encoding/csv"
	"io"
	"net/mail"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/matzehuels/una/pkg/names"
)

// Distribution is the metadata una needs from one installed distribution.
type Distribution struct {
	Name     string   `json:"name"`
	TopLevel []string `json:"top_level,omitempty"`
	Requires []string `json:"requires,omitempty"`
}

// Index is the set of distributions installed in one or more site-packages
// directories.
type Index struct {
	Dists []Distribution `json:"dists"`
}

// Scan reads every *.dist-info and *.egg-info entry in dirs. Missing
// directories and unreadable metadata are skipped.
func Scan(dirs ...string) *Index {
	idx := &Index{}
	for _, dir := range dirs {
		for _, name := range metadataEntries(dir) {
			path := filepath.Join(dir, name)
			var d Distribution
			var ok bool
			if strings.HasSuffix(name, ".dist-info") {
				d, ok = readDistInfo(path)
			} else {
				d, ok = readEggInfo(path)
			}
			if ok {
				idx.Dists = append(idx.Dists, d)
			}
		}
	}
	return idx
}

// Packages maps each distribution name to its top-level import names.
func (idx *Index) Packages() map[string][]string {
	out := make(map[string][]string, len(idx.Dists))
	for _, d := range idx.Dists {
		if len(d.TopLevel) > 0 {
			out[d.Name] = d.TopLevel
		}
	}
	return out
}

// SubPackages maps each distribution name to the distribution names it
// requires.
func (idx *Index) SubPackages() map[string][]string {
	out := make(map[string][]string, len(idx.Dists))
	for _, d := range idx.Dists {
		if len(d.Requires) == 0 {
			continue
		}
		subs := names.New(len(d.Requires))
		for _, r := range d.Requires {
			if n := ParseSubPackageName(strings.TrimSpace(r)); n != "" {
				subs.Add(n)
			}
		}
		out[d.Name] = subs.Sorted()
	}
	return out
}

// PackagesDistributions maps each top-level import name to the
// distributions providing it.
func (idx *Index) PackagesDistributions() map[string][]string {
	out := make(map[string][]string)
	for _, d := range idx.Dists {
		for _, pkg := range d.TopLevel {
			top, _, _ := strings.Cut(pkg, ".")
			if !slices.Contains(out[top], d.Name) {
				out[top] = append(out[top], d.Name)
			}
		}
	}
	return out
}

func metadataEntries(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if n := e.Name(); strings.HasSuffix(n, ".dist-info") || strings.HasSuffix(n, ".egg-info") {
			out = append(out, n)
		}
	}
	slices.Sort(out)
	return out
}

func readDistInfo(dir string) (Distribution, bool) {
	name, requires, ok := readHeaders(filepath.Join(dir, "METADATA"))
	if !ok {
		return Distribution{}, false
	}
	d := Distribution{Name: name, Requires: requires}
	if data, err := os.ReadFile(filepath.Join(dir, "top_level.txt")); err == nil {
		d.TopLevel = ParseTopLevel(string(data))
	} else {
		d.TopLevel = topLevelFromRecord(filepath.Join(dir, "RECORD"))
	}
	return d, true
}

func readEggInfo(path string) (Distribution, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return Distribution{}, false
	}
	if !info.IsDir() {
		name, requires, ok := readHeaders(path)
		return Distribution{Name: name, Requires: requires}, ok
	}
	name, _, ok := readHeaders(filepath.Join(path, "PKG-INFO"))
	if !ok {
		return Distribution{}, false
	}
	d := Distribution{Name: name, Requires: readRequiresTxt(filepath.Join(path, "requires.txt"))}
	if data, err := os.ReadFile(filepath.Join(path, "top_level.txt")); err == nil {
		d.TopLevel = ParseTopLevel(string(data))
	}
	return d, true
}

// readHeaders parses the RFC 822 header block of a METADATA or PKG-INFO
// file.
func readHeaders(path string) (name string, requires []string, ok bool) {
	f, err := os.Open(path)
	if err != nil {
		return "", nil, false
	}
	defer f.Close()

	msg, err := mail.ReadMessage(io.MultiReader(f, strings.NewReader("\n\n")))
	if err != nil {
		return "", nil, false
	}
	name = strings.TrimSpace(msg.Header.Get("Name"))
	if name == "" {
		return "", nil, false
	}
	return name, msg.Header["Requires-Dist"], true
}

func readRequiresTxt(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "[") || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}

// topLevelFromRecord infers top-level names from the installed file list
// for distributions that ship without top_level.txt.
func topLevelFromRecord(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	found := names.New(0)
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil
		}
		if len(rec) == 0 || rec[0] == "" {
			continue
		}
		if top := recordTopLevel(rec[0]); top != "" {
			found.Add(top)
		}
	}
	return found.Sorted()
}

func recordTopLevel(file string) string {
	parts := strings.Split(filepath.ToSlash(file), "/")
	if len(parts) > 1 {
		top := parts[0]
		switch {
		case top == ".." || top == "__pycache__" || top == "":
			return ""
		case strings.HasSuffix(top, ".dist-info"), strings.HasSuffix(top, ".egg-info"), strings.HasSuffix(top, ".data"):
			return ""
		}
		return top
	}
	for _, ext := range []string{".py", ".so", ".pyd"} {
		if strings.HasSuffix(parts[0], ext) {
			mod, _, _ := strings.Cut(parts[0], ".")
			return mod
		}
	}
	return ""
}
