// Package changes reports which workspace packages changed since the
// latest release tag.
//
// Tags and changed files come from the git command line. A failing git
// call never aborts the run: no tag simply means nothing to compare
// against.
package changes

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/una/pkg/errors"
)

// Git runs git commands in Dir.
type Git struct {
	Dir    string
	Logger *log.Logger

	// run is replaced in tests.
	run func(ctx context.Context, dir string, args ...string) (string, error)
}

// LatestTag returns the first tag matching pattern when tags are ordered by
// sort ("-committerdate" lists the newest first). It reports false if git
// fails or no tag matches.
func (g *Git) LatestTag(ctx context.Context, pattern, sort string) (string, bool) {
	args := []string{"tag", "-l"}
	if sort != "" {
		args = append(args, "--sort="+sort)
	}
	args = append(args, pattern)
	out, err := g.exec(ctx, args...)
	if err != nil {
		g.debug("git tag failed", "pattern", pattern, "err", err)
		return "", false
	}
	for _, line := range strings.Split(out, "\n") {
		if tag := strings.TrimSpace(line); tag != "" {
			return tag, true
		}
	}
	return "", false
}

// ChangedFiles lists the files, relative to the repository root, that
// differ between tag and the working tree.
func (g *Git) ChangedFiles(ctx context.Context, tag string) ([]string, error) {
	out, err := g.exec(ctx, "diff", tag, "--stat", "--name-only")
	if err != nil {
		return nil, err
	}
	var files []string
	for _, line := range strings.Split(out, "\n") {
		if f := strings.TrimSpace(line); f != "" {
			files = append(files, f)
		}
	}
	return files, nil
}

func (g *Git) exec(ctx context.Context, args ...string) (string, error) {
	run := g.run
	if run == nil {
		run = runGit
	}
	g.debug("git", "args", strings.Join(args, " "))
	return run(ctx, g.Dir, args...)
}

func (g *Git) debug(msg string, kv ...any) {
	if g.Logger != nil {
		g.Logger.Debug(msg, kv...)
	}
}

func runGit(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		return "", errors.Wrap(errors.ErrCodeCommand, err, "git %s: %s", strings.Join(args, " "), strings.TrimSpace(errBuf.String()))
	}
	return out.String(), nil
}
