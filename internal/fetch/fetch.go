// Package fetch materializes a project template into a new directory,
// either by cloning a git repository or by copying a local directory.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5"

	oerrors "github.com/rnscaffold/cli/internal/errors"
	"github.com/rnscaffold/cli/internal/rewrite"
)

// Fetcher copies a template from source into dest. dest must not exist or
// must be an empty directory.
type Fetcher interface {
	Fetch(ctx context.Context, source, dest string) error
}

// Option configures the fetchers built by NewFetcher.
type Option func(*options)

type options struct {
	progress io.Writer
	depth    int
}

// WithProgress streams clone progress to w.
func WithProgress(w io.Writer) Option {
	return func(o *options) {
		o.progress = w
	}
}

// WithDepth sets the clone depth. Zero fetches the full history.
func WithDepth(depth int) Option {
	return func(o *options) {
		o.depth = depth
	}
}

// NewFetcher returns a LocalFetcher when source is an existing directory
// and a GitFetcher otherwise.
func NewFetcher(source string, opts ...Option) Fetcher {
	o := options{depth: 1}
	for _, opt := range opts {
		opt(&o)
	}

	if fi, err := os.Stat(source); err == nil && fi.IsDir() {
		return &LocalFetcher{}
	}
	return &GitFetcher{Depth: o.depth, Progress: o.progress}
}

// checkDest fails with ErrFetch when dest exists and is not an empty
// directory. It reports whether dest already existed.
func checkDest(source, dest string) (bool, error) {
	fi, err := os.Lstat(dest)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, oerrors.NewFetchError(source, dest, fmt.Errorf("checking %s: %w", dest, err))
	}
	if !fi.IsDir() {
		return true, oerrors.NewFetchError(source, dest, fmt.Errorf("destination %s already exists and is not a directory", dest))
	}

	entries, err := os.ReadDir(dest)
	if err != nil {
		return true, oerrors.NewFetchError(source, dest, fmt.Errorf("reading %s: %w", dest, err))
	}
	if len(entries) > 0 {
		return true, oerrors.NewFetchError(source, dest, fmt.Errorf("destination %s already exists and is not an empty directory", dest))
	}
	return true, nil
}

// cleanup undoes a failed fetch. A directory that existed before is emptied
// rather than removed.
func cleanup(dest string, existed bool) {
	if !existed {
		_ = os.RemoveAll(dest)
		return
	}
	entries, err := os.ReadDir(dest)
	if err != nil {
		return
	}
	for _, e := range entries {
		_ = os.RemoveAll(filepath.Join(dest, e.Name()))
	}
}

// GitFetcher clones a single branch of a git repository.
type GitFetcher struct {
	// Depth limits history; 0 clones everything.
	Depth int

	// Progress receives the remote's progress messages when set.
	Progress io.Writer
}

// Fetch implements Fetcher.
func (g *GitFetcher) Fetch(ctx context.Context, source, dest string) error {
	existed, err := checkDest(source, dest)
	if err != nil {
		return err
	}

	_, err = git.PlainCloneContext(ctx, dest, false, &git.CloneOptions{
		URL:          source,
		Depth:        g.Depth,
		SingleBranch: true,
		Progress:     g.Progress,
	})
	if err != nil {
		cleanup(dest, existed)
		return oerrors.NewFetchError(source, dest, err)
	}
	return nil
}

// LocalFetcher copies a template directory, leaving out its git metadata.
type LocalFetcher struct{}

// Fetch implements Fetcher.
func (l *LocalFetcher) Fetch(ctx context.Context, source, dest string) error {
	existed, err := checkDest(source, dest)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return oerrors.NewFetchError(source, dest, err)
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return oerrors.NewFetchError(source, dest, err)
	}

	skipGit := func(rel string, fi os.FileInfo) bool {
		return fi.IsDir() && path.Base(rel) == ".git"
	}
	if err := rewrite.CopyTree(osfs.New(source), osfs.New(dest), skipGit); err != nil {
		cleanup(dest, existed)
		return oerrors.NewFetchError(source, dest, err)
	}
	return nil
}
