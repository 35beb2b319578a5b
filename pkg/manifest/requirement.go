package manifest

import (
	"bufio"
	"os"
	"strings"
	"unicode"

	"github.com/matzehuels/una/pkg/errors"
)

// Requirement is a declared external dependency: a distribution name plus
// everything that followed it (version constraint, markers).
type Requirement struct {
	Name    string // Distribution name, possibly with an extras suffix ("uvicorn[standard]")
	Version string // The rest of the declaration, verbatim ("~=0.109.2")
}

// String reassembles the requirement. For any string accepted by
// [ParseRequirement], ParseRequirement(s).String() == strings.TrimSpace(s).
func (r Requirement) String() string { return r.Name + r.Version }

// nameTerminators end a requirement's name: version operators, an
// environment marker, a URL reference or a parenthesised version.
const nameTerminators = "^~=!<>;@("

// ParseRequirement splits a PEP 508 style string into name and remainder.
// The name keeps its extras, which may contain spaces; whitespace ends the
// name only when no extras follow it.
//
//	ParseRequirement("fastapi~=0.109.2")           // {fastapi ~=0.109.2}
//	ParseRequirement("requests[socks, security]") // {requests[socks, security] }
func ParseRequirement(s string) Requirement {
	s = strings.TrimSpace(s)
	depth := 0
	for i, c := range s {
		switch {
		case c == '[':
			depth++
		case c == ']':
			if depth > 0 {
				depth--
			}
		case depth > 0:
		case strings.ContainsRune(nameTerminators, c):
			return Requirement{Name: s[:i], Version: s[i:]}
		case unicode.IsSpace(c):
			if rest := strings.TrimLeftFunc(s[i:], unicode.IsSpace); strings.HasPrefix(rest, "[") {
				continue
			}
			return Requirement{Name: s[:i], Version: s[i:]}
		}
	}
	return Requirement{Name: s}
}

// Names returns the distribution names of reqs, in order.
func Names(reqs []Requirement) []string {
	out := make([]string, len(reqs))
	for i, r := range reqs {
		out[i] = r.Name
	}
	return out
}

// LockFileName is the pinned dependency list una reads, when present, in
// place of a package's declared dependencies.
const LockFileName = "requirements.lock"

// ReadLockFile parses "name==version" rows. Blank lines, comments and option
// lines ("-e", "--index-url") are skipped. A row without a pinned version is
// an error, so a malformed lock file is never silently half-read.
func ReadLockFile(path string) ([]Requirement, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "read %s", path)
	}
	defer f.Close()

	var out []Requirement
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		row := strings.TrimSpace(scanner.Text())
		if row == "" || row[0] == '#' || row[0] == '-' {
			continue
		}
		name, rest, ok := strings.Cut(row, "==")
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidManifest, "%s:%d: expected name==version, got %q", path, line, row)
		}
		version := strings.FieldsFunc(rest, unicode.IsSpace)
		if len(version) == 0 {
			return nil, errors.New(errors.ErrCodeInvalidManifest, "%s:%d: missing version in %q", path, line, row)
		}
		out = append(out, Requirement{Name: strings.TrimSpace(name), Version: "==" + version[0]})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "read %s", path)
	}
	return out, nil
}
