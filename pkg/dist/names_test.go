package dist

import (
	"slices"
	"testing"

	"github.com/matzehuels/una/pkg/manifest"
)

func TestParseSubPackageName(t *testing.T) {
	tests := map[string]string{
		"greenlet !=0.4.17":                      "greenlet",
		"mysqlclient >=1.4.0 ; extra == 'mysql'": "mysqlclient",
		"typing-extensions>=4.6.0":               "typing-extensions",
		"pymysql ; extra == 'pymysql'":           "pymysql",
		"one<=0.4.17":                            "one",
		"two^=0.4.17":                            "two",
		"three~=0.4.17":                          "three",
		"plain":                                  "plain",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			if got := ParseSubPackageName(in); got != want {
				t.Errorf("ParseSubPackageName(%q) = %q, want %q", in, got, want)
			}
		})
	}
}

func TestParseTopLevel(t *testing.T) {
	got := ParseTopLevel("jose\njose/backends\n")
	want := []string{"jose", "jose.backends"}
	if !slices.Equal(got, want) {
		t.Errorf("ParseTopLevel = %v, want %v", got, want)
	}
	if got := ParseTopLevel(""); len(got) != 0 {
		t.Errorf("ParseTopLevel(\"\") = %v, want empty", got)
	}
}

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"Pillow":                "pillow",
		"typing_extensions":     "typing-extensions",
		"zope.interface":        "zope-interface",
		"Foo__Bar--baz":         "foo-bar-baz",
		"aws-lambda-powertools": "aws-lambda-powertools",
	}
	for in, want := range tests {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestExtrasNames(t *testing.T) {
	reqs := []manifest.Requirement{
		manifest.ParseRequirement("uvicorn[standard]>=0.27"),
		manifest.ParseRequirement("fastapi~=0.109.2"),
		manifest.ParseRequirement("requests[socks, security]"),
	}
	got := ExtrasNames(reqs).Sorted()
	want := []string{"fastapi", "requests", "security", "socks", "standard", "uvicorn"}
	if !slices.Equal(got, want) {
		t.Errorf("ExtrasNames = %v, want %v", got, want)
	}
}
