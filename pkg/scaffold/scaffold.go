// Package scaffold creates new workspace members and example workspaces
// from embedded templates.
package scaffold

import (
	"bytes"
	"embed"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"

	"github.com/matzehuels/una/pkg/errors"
	"github.com/matzehuels/una/pkg/manifest"
	"github.com/matzehuels/una/pkg/workspace"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"quote": strconv.Quote,
	"quoteList": func(items []string) string {
		quoted := make([]string, len(items))
		for i, s := range items {
			quoted[i] = strconv.Quote(s)
		}
		return strings.Join(quoted, ", ")
	},
}).ParseFS(templateFS, "templates/*.tmpl"))

// Example workspace contents.
const (
	ExampleApp        = "printer"
	ExampleLib        = "greeter"
	ExampleDependency = "cowsay-python==1.0.2"
)

// DefaultRequiresPython is used when the workspace manifest declares none.
const DefaultRequiresPython = ">=3.11"

// Options describes a new package.
type Options struct {
	Code         string           // body of the package's __init__.py
	Dependencies []string         // external requirements
	Internal     []manifest.Entry // internal dependency table entries
}

type manifestData struct {
	Name           string
	Dependencies   []string
	RequiresPython string
	InjectMeta     bool
	Table          string
	Internal       []manifest.Entry
}

// CreatePackage creates the member name below topDir (for example "libs")
// and returns its directory. In the packages style the member holds its
// own manifest, source tree and tests. In the modules style an "apps" or
// "libs" member is a module under <topDir>/<ns>/<name> and any other
// top directory gets a project manifest only.
//
// It fails if the target directory already exists.
func CreatePackage(ws *workspace.Workspace, name, topDir string, opts Options) (string, error) {
	if err := errors.ValidatePackageName(name); err != nil {
		return "", err
	}
	if err := errors.ValidatePath(topDir); err != nil {
		return "", err
	}
	if ws.Style.Name() == workspace.StyleModules {
		return createModulesMember(ws, name, topDir, opts)
	}

	dir := filepath.Join(ws.Root, filepath.FromSlash(topDir), name)
	if err := mkdirNew(dir); err != nil {
		return "", err
	}
	nsDir := filepath.Join(dir, ws.Namespace)
	codeDir := filepath.Join(nsDir, name)
	files := []file{
		{filepath.Join(nsDir, "py.typed"), ""},
		{filepath.Join(codeDir, "__init__.py"), opts.Code},
		{filepath.Join(codeDir, "py.typed"), ""},
	}
	test, err := render("test_import.py.tmpl", map[string]string{"Namespace": ws.Namespace, "Name": name})
	if err != nil {
		return "", err
	}
	files = append(files, file{filepath.Join(dir, "tests", "test_"+name+"_import.py"), test})

	pyproject, err := renderManifest(ws, name, opts, true)
	if err != nil {
		return "", err
	}
	files = append(files, file{filepath.Join(dir, manifest.FileName), pyproject})

	if err := writeFiles(files); err != nil {
		return "", err
	}
	ws.Refresh()
	return dir, nil
}

func createModulesMember(ws *workspace.Workspace, name, topDir string, opts Options) (string, error) {
	if topDir != "apps" && topDir != "libs" {
		dir := filepath.Join(ws.Root, filepath.FromSlash(topDir), name)
		if err := mkdirNew(dir); err != nil {
			return "", err
		}
		pyproject, err := renderManifest(ws, name, opts, false)
		if err != nil {
			return "", err
		}
		if err := writeFiles([]file{{filepath.Join(dir, manifest.FileName), pyproject}}); err != nil {
			return "", err
		}
		ws.Refresh()
		return dir, nil
	}

	dir := filepath.Join(ws.Root, topDir, ws.Namespace, name)
	if err := mkdirNew(dir); err != nil {
		return "", err
	}
	test, err := render("test_import.py.tmpl", map[string]string{"Namespace": ws.Namespace, "Name": name})
	if err != nil {
		return "", err
	}
	files := []file{
		{filepath.Join(dir, "__init__.py"), opts.Code},
		{filepath.Join(dir, "py.typed"), ""},
		{filepath.Join(ws.Root, "tests", topDir, "test_"+name+"_import.py"), test},
	}
	if err := writeFiles(files); err != nil {
		return "", err
	}
	ws.Refresh()
	return dir, nil
}

// CreateWorkspace turns the workspace root into an example una workspace:
// a lib greeter depending on cowsay-python and an app printer importing
// greeter. The root manifest's member lists are set for the style.
func CreateWorkspace(ws *workspace.Workspace) error {
	members := ws.Style.DefaultMembers()
	doc, err := manifest.LoadDocument(ws.Root)
	if err != nil {
		return err
	}
	if _, err := doc.SetArray("tool.uv.workspace", "members", members); err != nil {
		return err
	}
	if _, err := doc.SetArray("tool.una", "members", members); err != nil {
		return err
	}
	if err := doc.Save(); err != nil {
		return err
	}
	ws.Cache.Invalidate(doc.Path)
	ws.Members = members

	appCode, err := render("app.py.tmpl", map[string]string{"Namespace": ws.Namespace, "Lib": ExampleLib})
	if err != nil {
		return err
	}
	libCode, err := render("lib.py.tmpl", nil)
	if err != nil {
		return err
	}

	if ws.Style.Name() == workspace.StyleModules {
		if _, err := CreatePackage(ws, ExampleLib, "libs", Options{Code: libCode}); err != nil {
			return err
		}
		if _, err := CreatePackage(ws, ExampleApp, "apps", Options{Code: appCode}); err != nil {
			return err
		}
		_, err := CreatePackage(ws, ExampleApp, "projects", Options{
			Dependencies: []string{ExampleDependency},
			Internal: []manifest.Entry{
				{Src: "../../apps/" + ws.Namespace + "/" + ExampleApp, Dst: ws.Namespace + "/" + ExampleApp},
				{Src: "../../libs/" + ws.Namespace + "/" + ExampleLib, Dst: ws.Namespace + "/" + ExampleLib},
			},
		})
		return err
	}

	if _, err := CreatePackage(ws, ExampleLib, "libs", Options{
		Code:         libCode,
		Dependencies: []string{ExampleDependency},
	}); err != nil {
		return err
	}
	_, err = CreatePackage(ws, ExampleApp, "apps", Options{
		Code: appCode,
		Internal: []manifest.Entry{{
			Src: path.Join("../../libs", ExampleLib, ws.Namespace, ExampleLib),
			Dst: ws.Namespace + "/" + ExampleLib,
		}},
	})
	return err
}

func renderManifest(ws *workspace.Workspace, name string, opts Options, injectMeta bool) (string, error) {
	return render("pyproject.toml.tmpl", manifestData{
		Name:           name,
		Dependencies:   opts.Dependencies,
		RequiresPython: requiresPython(ws),
		InjectMeta:     injectMeta && ws.Style.Name() == workspace.StylePackages,
		Table:          ws.Style.Table(),
		Internal:       opts.Internal,
	})
}

func requiresPython(ws *workspace.Workspace) string {
	if m, err := ws.Cache.Load(ws.Root); err == nil && m.Project.RequiresPython != "" {
		return m.Project.RequiresPython
	}
	if v := ws.Settings.PythonVersion; v != "" {
		return ">=" + v
	}
	return DefaultRequiresPython
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "render %s", name)
	}
	return buf.String(), nil
}

type file struct {
	path    string
	content string
}

func writeFiles(files []file) error {
	for _, f := range files {
		if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
			return errors.Wrap(errors.ErrCodeIO, err, "create %s", filepath.Dir(f.path))
		}
		if err := os.WriteFile(f.path, []byte(f.content), 0644); err != nil {
			return errors.Wrap(errors.ErrCodeIO, err, "write %s", f.path)
		}
	}
	return nil
}

func mkdirNew(dir string) error {
	if _, err := os.Stat(dir); err == nil {
		return errors.New(errors.ErrCodeInvalidInput, "%s already exists", dir)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "create %s", dir)
	}
	return nil
}
