package workspace

import (
	"os"
	"path/filepath"
	"testing"
)

// writeTree creates files (slash-separated paths relative to root) with
// the given contents. A trailing slash creates an empty directory.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if rel[len(rel)-1] == '/' {
			if err := os.MkdirAll(path, 0755); err != nil {
				t.Fatal(err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func packagesWorkspace(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".git/":          "",
		"pyproject.toml": "[project]\nname = \"my-ns\"\nrequires-python = \">=3.11\"\n",
		"libs/greeter/pyproject.toml": `[project]
name = "greeter"
dependencies = ["cowsay-python==1.0.2"]
`,
		"libs/greeter/my_ns/greeter/__init__.py": "import cowsay\n",
		"apps/printer/pyproject.toml": `[project]
name = "printer"
dependencies = []

[tool.una.deps]
"../../libs/greeter/my_ns/greeter" = "my_ns/greeter"
`,
		"apps/printer/my_ns/printer/__init__.py": "from my_ns import greeter\n",
		"apps/locked/pyproject.toml":             "[project]\nname = \"locked\"\ndependencies = [\"ignored\"]\n",
		"apps/locked/requirements.lock":          "anyio==4.3.0\n",
		"libs/notapackage/README.md":             "no manifest here",
	})
	return root
}
