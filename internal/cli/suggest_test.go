package cli

import (
	"strings"
	"testing"

	"github.com/matzehuels/una/pkg/errors"
)

func TestSuggest(t *testing.T) {
	candidates := []string{"greeter", "printer", "storage"}

	tests := []struct {
		name string
		want string
	}{
		{"greter", "greeter"},
		{"prnt", "printer"},
		{"stor", "storage"},
		{"xyz", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := suggest(tt.name, candidates); got != tt.want {
				t.Errorf("suggest(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestFindPackage(t *testing.T) {
	root := testWorkspace(t)
	ws := openTestWorkspace(t, root)

	pkg, err := findPackage(ws, "greeter")
	if err != nil {
		t.Fatalf("findPackage(greeter) error: %v", err)
	}
	if pkg.Name != "greeter" {
		t.Errorf("Name = %q, want greeter", pkg.Name)
	}

	byDir, err := findPackage(ws, pkg.Dir)
	if err != nil || byDir != pkg {
		t.Errorf("findPackage(dir) = %v, %v", byDir, err)
	}

	_, err = findPackage(ws, "greter")
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Fatalf("err = %v, want NOT_FOUND", err)
	}
	if !strings.Contains(err.Error(), `did you mean "greeter"?`) {
		t.Errorf("err = %v, want a suggestion", err)
	}
}
