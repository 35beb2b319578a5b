package dist

import (
	"regexp"
	"strings"

	"github.com/matzehuels/una/pkg/manifest"
	"github.com/matzehuels/una/pkg/names"
)

var (
	subDepSeparators = regexp.MustCompile(`[\s!=;><\^~]`)
	normalizeRuns    = regexp.MustCompile(`[-_.]+`)
)

// Normalize returns the PEP 503 form of a distribution name.
func Normalize(name string) string {
	return strings.ToLower(normalizeRuns.ReplaceAllString(strings.TrimSpace(name), "-"))
}

// ParseSubPackageName returns the distribution name of a Requires-Dist
// value, the leftmost token before any version or marker.
//
//	ParseSubPackageName("mysqlclient >=1.4.0 ; extra == 'mysql'") // "mysqlclient"
func ParseSubPackageName(requirement string) string {
	return subDepSeparators.Split(requirement, 2)[0]
}

// ParseTopLevel splits top_level.txt content into import names, turning
// nested entries like "jose/backends" into dotted paths.
func ParseTopLevel(content string) []string {
	fields := strings.Fields(content)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, strings.ReplaceAll(f, "/", "."))
	}
	return out
}

// ExtrasNames expands declared names, splitting extras into names of their
// own: "uvicorn[standard]" yields uvicorn and standard.
func ExtrasNames(reqs []manifest.Requirement) names.Set {
	out := names.New(len(reqs))
	for _, r := range reqs {
		parts := strings.FieldsFunc(r.Name, func(c rune) bool {
			return c == '[' || c == ']' || c == ','
		})
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out.Add(p)
			}
		}
	}
	return out
}
