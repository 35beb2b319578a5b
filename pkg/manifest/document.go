package manifest

import (
	"bytes"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/una/pkg/errors"
)

// Entry is one internal dependency mapping: a source path relative to the
// package directory and the import path it is installed under.
type Entry struct {
	Src string `json:"src"`
	Dst string `json:"dst"`
}

// Document is the raw text of a manifest, edited in place.
// Every edit touches only the lines it adds or replaces.
type Document struct {
	Path string
	text string
}

// LoadDocument reads the manifest at path (or at path/pyproject.toml).
func LoadDocument(path string) (*Document, error) {
	path = resolvePath(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "read %s", path)
	}
	return &Document{Path: path, text: string(data)}, nil
}

// NewDocument wraps existing manifest text.
func NewDocument(path, text string) *Document {
	return &Document{Path: path, text: text}
}

// String returns the current text.
func (d *Document) String() string { return d.text }

// Save writes the document back to its path.
func (d *Document) Save() error {
	if err := os.WriteFile(d.Path, []byte(d.text), 0644); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write %s", d.Path)
	}
	return nil
}

// SetTableEntries adds or updates string entries of the dotted table.
// Existing keys with the same value are left alone, existing keys with a
// different value have their line replaced, and new keys are appended after
// the table's last entry. A missing table is appended to the end of the file.
// It reports whether the text changed.
func (d *Document) SetTableEntries(table string, entries []Entry) (bool, error) {
	if len(entries) == 0 {
		return false, nil
	}
	lines := splitLines(d.text)
	start, end, found := findTable(lines, table)

	if !found {
		var buf strings.Builder
		buf.WriteString(d.text)
		if d.text != "" && !strings.HasSuffix(d.text, "\n") {
			buf.WriteString("\n")
		}
		if d.text != "" {
			buf.WriteString("\n")
		}
		buf.WriteString("[" + table + "]\n")
		for _, e := range entries {
			buf.WriteString(formatEntry(e) + "\n")
		}
		return d.commit(buf.String())
	}

	existing := make(map[string]int)
	for i := start + 1; i < end; i++ {
		if key, ok := lineKey(lines[i]); ok {
			existing[key] = i
		}
	}

	insertAt := start + 1
	for i := end - 1; i > start; i-- {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed != "" && !strings.HasPrefix(trimmed, "#") {
			insertAt = i + 1
			break
		}
	}

	var added []string
	changed := false
	for _, e := range entries {
		line := formatEntry(e)
		if i, ok := existing[e.Src]; ok {
			if i >= 0 && lineValue(lines[i]) != e.Dst {
				lines[i] = line
				changed = true
			}
			continue
		}
		existing[e.Src] = -1
		added = append(added, line)
	}
	if len(added) == 0 && !changed {
		return false, nil
	}

	out := make([]string, 0, len(lines)+len(added))
	out = append(out, lines[:insertAt]...)
	out = append(out, added...)
	out = append(out, lines[insertAt:]...)
	return d.commit(strings.Join(out, "\n"))
}

// SetArray sets key in the dotted table to a single-line array of strings,
// replacing any previous value (including multi-line arrays). The table is
// created if it does not exist.
func (d *Document) SetArray(table, key string, values []string) (bool, error) {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = quote(v)
	}
	line := key + " = [" + strings.Join(quoted, ", ") + "]"

	lines := splitLines(d.text)
	start, end, found := findTable(lines, table)
	if !found {
		text := d.text
		if text != "" && !strings.HasSuffix(text, "\n") {
			text += "\n"
		}
		if text != "" {
			text += "\n"
		}
		return d.commit(text + "[" + table + "]\n" + line + "\n")
	}

	for i := start + 1; i < end; i++ {
		k, ok := lineKey(lines[i])
		if !ok || k != key {
			continue
		}
		last := arrayEnd(lines, i)
		out := append([]string{}, lines[:i]...)
		out = append(out, line)
		out = append(out, lines[last+1:]...)
		return d.commit(strings.Join(out, "\n"))
	}

	out := append([]string{}, lines[:start+1]...)
	out = append(out, line)
	out = append(out, lines[start+1:]...)
	return d.commit(strings.Join(out, "\n"))
}

// commit validates and stores new text. Edits that would leave the file
// unparseable are rejected and the document is unchanged.
func (d *Document) commit(text string) (bool, error) {
	if text == d.text {
		return false, nil
	}
	var probe map[string]any
	if _, err := toml.Decode(text, &probe); err != nil {
		return false, errors.Wrap(errors.ErrCodeInvalidManifest, err, "edit of %s produced invalid TOML", d.Path)
	}
	d.text = text
	return true, nil
}

func splitLines(text string) []string {
	return strings.Split(text, "\n")
}

// findTable returns the header line index of [table] and the index of the
// next table header (or len(lines)).
func findTable(lines []string, table string) (start, end int, found bool) {
	want := normalizeHeader("[" + table + "]")
	start = -1
	for i, l := range lines {
		trimmed := strings.TrimSpace(l)
		if !strings.HasPrefix(trimmed, "[") {
			continue
		}
		if start >= 0 {
			return start, i, true
		}
		if normalizeHeader(trimmed) == want {
			start = i
		}
	}
	if start >= 0 {
		return start, len(lines), true
	}
	return 0, 0, false
}

func normalizeHeader(h string) string {
	if i := strings.Index(h, "]"); i >= 0 && !strings.HasPrefix(h, "[[") {
		h = h[:i+1]
	}
	var b bytes.Buffer
	for _, r := range h {
		if r != ' ' && r != '\t' && r != '"' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// lineKey extracts the key of a "key = value" line, unquoting basic and
// literal string keys.
func lineKey(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || trimmed[0] == '#' {
		return "", false
	}
	if trimmed[0] == '"' || trimmed[0] == '\'' {
		q := trimmed[0]
		for i := 1; i < len(trimmed); i++ {
			if trimmed[i] == '\\' && q == '"' {
				i++
				continue
			}
			if trimmed[i] == q {
				key := trimmed[:i+1]
				if q == '"' {
					if s, err := strconv.Unquote(key); err == nil {
						return s, true
					}
				}
				return key[1 : len(key)-1], true
			}
		}
		return "", false
	}
	key, _, ok := strings.Cut(trimmed, "=")
	if !ok {
		return "", false
	}
	return strings.TrimSpace(key), true
}

func lineValue(line string) string {
	_, v, ok := strings.Cut(line, "=")
	if !ok {
		return ""
	}
	v = strings.TrimSpace(v)
	if s, err := strconv.Unquote(v); err == nil {
		return s
	}
	return strings.Trim(v, `'`)
}

// arrayEnd returns the last line index of a value starting at line i,
// following brackets across lines.
func arrayEnd(lines []string, i int) int {
	depth := 0
	for j := i; j < len(lines); j++ {
		inString := byte(0)
		for k := 0; k < len(lines[j]); k++ {
			c := lines[j][k]
			switch {
			case inString != 0:
				if c == '\\' && inString == '"' {
					k++
				} else if c == inString {
					inString = 0
				}
			case c == '"' || c == '\'':
				inString = c
			case c == '#':
				k = len(lines[j])
			case c == '[':
				depth++
			case c == ']':
				depth--
			}
		}
		if depth <= 0 {
			return j
		}
	}
	return len(lines) - 1
}

func formatEntry(e Entry) string {
	return quote(e.Src) + " = " + quote(e.Dst)
}

func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}
