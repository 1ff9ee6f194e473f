package rewrite

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/rnscaffold/cli/internal/output"
)

// Preview is the result of a dry run.
type Preview struct {
	Report  *Report
	Changes []output.FileChange
}

// DryRun applies steps to a scratch copy of dir and reports what would
// change. dir itself is never modified.
func DryRun(dir string, steps []Step, engine *Engine) (*Preview, error) {
	scratch, err := os.MkdirTemp("", "rnscaffold-dryrun-")
	if err != nil {
		return nil, fmt.Errorf("creating scratch directory: %w", err)
	}
	defer os.RemoveAll(scratch)

	fs := osfs.New(scratch)
	if err := CopyTree(osfs.New(dir), fs, SkipVendored); err != nil {
		return nil, fmt.Errorf("copying %s: %w", dir, err)
	}

	before, err := snapshot(fs)
	if err != nil {
		return nil, err
	}

	report, applyErr := engine.Apply(NewTree(fs), steps)

	after, err := snapshot(fs)
	if err != nil {
		return nil, err
	}

	preview := &Preview{Report: report}
	var moves []Outcome
	if report != nil {
		for _, s := range report.Steps {
			if s.Status == StatusMoved {
				moves = append(moves, s.Outcome)
				preview.Changes = append(preview.Changes, output.FileChange{Path: s.Path, MovedFrom: s.From})
			}
		}
	}

	paths := make([]string, 0, len(after))
	for p := range after {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		orig := origin(p, moves)
		old, ok := before[orig]
		if ok && bytes.Equal(old, after[p]) {
			continue
		}
		diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(string(old)),
			B:        difflib.SplitLines(string(after[p])),
			FromFile: "a/" + orig,
			ToFile:   "b/" + p,
			Context:  3,
		})
		if err != nil {
			return nil, fmt.Errorf("diffing %s: %w", p, err)
		}
		preview.Changes = append(preview.Changes, output.FileChange{Path: p, Diff: diff})
	}

	return preview, applyErr
}

// origin maps a final path back through the recorded moves, latest first.
func origin(p string, moves []Outcome) string {
	for i := len(moves) - 1; i >= 0; i-- {
		m := moves[i]
		switch {
		case p == m.Path:
			p = m.From
		case isWithin(p, m.Path):
			p = m.From + strings.TrimPrefix(p, m.Path)
		}
	}
	return p
}

// snapshot reads every regular file of fs keyed by slash-separated path.
func snapshot(fs billy.Filesystem) (map[string][]byte, error) {
	files := make(map[string][]byte)
	var walk func(dir string) error
	walk = func(dir string) error {
		entries, err := fs.ReadDir(osPath(dir))
		if err != nil {
			return fmt.Errorf("reading %s: %w", dir, err)
		}
		for _, fi := range entries {
			rel := path.Join(dir, fi.Name())
			switch {
			case fi.IsDir():
				if err := walk(rel); err != nil {
					return err
				}
			case fi.Mode().IsRegular():
				data, err := util.ReadFile(fs, osPath(rel))
				if err != nil {
					return fmt.Errorf("reading %s: %w", rel, err)
				}
				files[rel] = data
			}
		}
		return nil
	}
	return files, walk(".")
}
