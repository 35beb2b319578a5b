// Package pkg provides the libraries behind una, a dependency tool for
// Python monorepos built on uv workspaces.
//
// # Overview
//
// A una workspace is a git repository whose members share one Python
// namespace. una reads the imports of every member, works out which other
// members and which third-party distributions each one really uses, and
// reconciles that with what its pyproject.toml declares. The pkg directory
// is organized into four areas:
//
//  1. Workspace model: [workspace], [manifest], [names]
//  2. Import analysis: [pyimport], [stdlib], [dist], [deps]
//  3. Output: [graph], [build], [scaffold], [changes]
//  4. Infrastructure: [cache], [errors], [observability], [buildinfo]
//
// # Architecture
//
// The data flow of "una sync":
//
//	pyproject.toml files
//	         ↓
//	    [workspace] package (root, namespace, style, members)
//	         ↓
//	    [pyimport] package (imports of every source root)
//	         ↓
//	    [deps] package (internal closure, external diff against [dist])
//	         ↓
//	    [manifest] package (in-place edit of the internal dependency table)
//
// # Quick Start
//
// Check every package of the workspace containing the working directory:
//
//	ws, _ := workspace.Discover(".", workspace.NewViper(), nil, nil)
//	idx := dist.Load(ctx, cache.NewNullCache(), nil, dist.Locate(ws.Root, "")...)
//	pkgs, _ := ws.Packages()
//	reports, _ := deps.NewChecker(ws, idx).CheckAll(pkgs)
//	for _, r := range reports {
//	    fmt.Println(r.Package.Name, r.Internal.Sorted(), r.External.Sorted())
//	}
//
// # Main Packages
//
// [workspace] - Workspace discovery, settings (viper), the packages and
// modules layout styles, and member packages.
//
// [manifest] - pyproject.toml parsing, requirement strings, lock files and
// line-preserving edits.
//
// [pyimport] - Import extraction from Python sources.
//
// [dist] - The index of installed distributions and the mapping from
// distribution names to the import names they provide.
//
// [deps] - Internal dependency resolution, external matching, reports and
// the syncer that writes missing entries.
//
// [graph] - The internal import graph with cycle detection, DOT, SVG and
// JSON output.
//
// [build] - Force-include maps and dependency lists for build hooks.
//
// [changes] - Packages changed since a git tag.
//
// [scaffold] - Templates for new workspaces and packages.
package pkg
