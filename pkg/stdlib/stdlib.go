// Package stdlib classifies Python standard-library module names.
//
// The tables are fixed per minor version and contain only top-level module
// names. They are used as a subtraction set when separating third-party
// imports from everything else; membership is all that matters.
//
// Python 3.11 is the base table. Other versions are derived from it with
// explicit added and removed lists, so the difference between any two
// versions is visible in one place.
package stdlib

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/matzehuels/una/pkg/names"
)

// Version is a CPython minor version such as 3.12.
type Version struct {
	Major int
	Minor int
}

// Default is used when the interpreter version is unknown or has no table.
var Default = Version{3, 12}

// String formats v as "3.12".
func (v Version) String() string {
	return strconv.Itoa(v.Major) + "." + strconv.Itoa(v.Minor)
}

// ParseVersion parses "3.12", "3.12.1" or "python3.12".
// It returns false when no major.minor pair can be found.
func ParseVersion(s string) (Version, bool) {
	m := versionRE.FindStringSubmatch(s)
	if m == nil {
		return Version{}, false
	}
	major, _ := strconv.Atoi(m[1])
	minor, _ := strconv.Atoi(m[2])
	return Version{major, minor}, true
}

var versionRE = regexp.MustCompile(`(\d+)\.(\d+)`)

// Modules returns the standard-library module names for v.
// Versions without a table fall back to [Default]. The returned set is a
// fresh copy and may be modified by the caller.
func Modules(v Version) names.Set {
	if v.Major == 3 {
		if fn, ok := tables[v.Minor]; ok {
			return fn()
		}
	}
	return tables[Default.Minor]()
}

// Supported lists the versions with a dedicated table, oldest first.
func Supported() []Version {
	return []Version{{3, 10}, {3, 11}, {3, 12}, {3, 13}}
}

var tables = map[int]func() names.Set{
	10: py310,
	11: py311,
	12: py312,
	13: py313,
}

func merge(base names.Set, added, removed []string) names.Set {
	out := base.Clone()
	out.Add(added...)
	for _, r := range removed {
		delete(out, r)
	}
	return out
}

func py311() names.Set { return names.Of(base311...) }

func py310() names.Set {
	return merge(py311(),
		[]string{"binhex"},
		[]string{"tomllib", "_tkinter", "sitecustomize", "usercustomize"})
}

func py312() names.Set {
	return merge(py311(), nil,
		[]string{"asynchat", "asyncore", "distutils", "imp", "smtpd"})
}

// PEP 594 dead batteries plus lib2to3.
func py313() names.Set {
	return merge(py312(), nil, []string{
		"aifc", "audioop", "cgi", "cgitb", "chunk", "crypt", "imghdr",
		"mailcap", "msilib", "nis", "nntplib", "ossaudiodev", "pipes",
		"sndhdr", "spwd", "sunau", "telnetlib", "uu", "xdrlib", "lib2to3",
	})
}

// Detect infers the interpreter version of a virtual environment from its
// site-packages path (".../lib/python3.11/site-packages") or, failing that,
// from the "version" key of the environment's pyvenv.cfg. It returns false
// if neither source names a version.
func Detect(sitePackages string) (Version, bool) {
	for dir := sitePackages; dir != "" && dir != filepath.Dir(dir); dir = filepath.Dir(dir) {
		base := filepath.Base(dir)
		if strings.HasPrefix(base, "python") {
			if v, ok := ParseVersion(base); ok {
				return v, true
			}
		}
		if v, ok := readPyvenv(filepath.Join(dir, "pyvenv.cfg")); ok {
			return v, true
		}
	}
	return Version{}, false
}

func readPyvenv(path string) (Version, bool) {
	f, err := os.Open(path)
	if err != nil {
		return Version{}, false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), "=")
		if !ok {
			continue
		}
		switch strings.TrimSpace(key) {
		case "version", "version_info":
			return ParseVersion(value)
		}
	}
	return Version{}, false
}

// base311 is derived from the isort stdlib list, with a few extras that are
// always present in an environment.
var base311 = []string{
	"_ast", "_thread", "abc", "aifc", "argparse", "array",
	"ast", "asynchat", "asyncio", "asyncore", "atexit", "audioop",
	"base64", "bdb", "binascii", "bisect", "builtins", "bz2",
	"cProfile", "calendar", "cgi", "cgitb", "chunk", "cmath",
	"cmd", "code", "codecs", "codeop", "collections", "colorsys",
	"compileall", "concurrent", "configparser", "contextlib", "contextvars", "copy",
	"copyreg", "crypt", "csv", "ctypes", "curses", "dataclasses",
	"datetime", "dbm", "decimal", "difflib", "dis", "distutils",
	"doctest", "email", "encodings", "ensurepip", "enum", "errno",
	"faulthandler", "fcntl", "filecmp", "fileinput", "fnmatch", "fractions",
	"ftplib", "functools", "gc", "getopt", "getpass", "gettext",
	"glob", "grp", "gzip", "hashlib", "heapq", "hmac",
	"html", "http", "imaplib", "imghdr", "imp", "importlib",
	"inspect", "io", "ipaddress", "itertools", "json", "keyword",
	"lib2to3", "linecache", "locale", "logging", "lzma", "mailbox",
	"mailcap", "marshal", "math", "mimetypes", "mmap", "modulefinder",
	"msilib", "msvcrt", "multiprocessing", "netrc", "nis", "nntplib",
	"ntpath", "numbers", "operator", "optparse", "os", "ossaudiodev",
	"pathlib", "pdb", "pickle", "pickletools", "pipes", "pkgutil",
	"platform", "plistlib", "poplib", "posix", "posixpath", "pprint",
	"profile", "pstats", "pty", "pwd", "py_compile", "pyclbr",
	"pydoc", "queue", "quopri", "random", "re", "readline",
	"reprlib", "resource", "rlcompleter", "runpy", "sched", "secrets",
	"select", "selectors", "shelve", "shlex", "shutil", "signal",
	"site", "smtpd", "smtplib", "sndhdr", "socket", "socketserver",
	"spwd", "sqlite3", "sre", "sre_compile", "sre_constants", "sre_parse",
	"ssl", "stat", "statistics", "string", "stringprep", "struct",
	"subprocess", "sunau", "symtable", "sys", "sysconfig", "syslog",
	"tabnanny", "tarfile", "telnetlib", "tempfile", "termios", "test",
	"textwrap", "threading", "time", "timeit", "tkinter", "token",
	"tokenize", "trace", "traceback", "tracemalloc", "tty", "turtle",
	"turtledemo", "types", "typing", "unicodedata", "unittest", "urllib",
	"uu", "uuid", "venv", "warnings", "wave", "weakref",
	"webbrowser", "winreg", "winsound", "wsgiref", "xdrlib", "xml",
	"xmlrpc", "zipapp", "zipfile", "zipimport", "zlib", "graphlib",
	"zoneinfo", "idlelib", "tomllib", "_tkinter", "sitecustomize", "usercustomize",
	"__future__", "pkg_resources",
}
