package rewrite

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5/osfs"
)

// ApplyTransactional runs steps against a staging copy of root and swaps it
// into place only when every step succeeds. On failure root is untouched and
// the returned *Error has RolledBack set.
func ApplyTransactional(root string, steps []Step, engine *Engine) (*Report, error) {
	root = filepath.Clean(root)
	parent, base := filepath.Dir(root), filepath.Base(root)

	rootInfo, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", root, err)
	}

	staging, err := os.MkdirTemp(parent, "."+base+".staging-")
	if err != nil {
		return nil, fmt.Errorf("creating staging directory: %w", err)
	}
	keep := false
	defer func() {
		if !keep {
			os.RemoveAll(staging)
		}
	}()

	if err := CopyTree(osfs.New(root), osfs.New(staging), nil); err != nil {
		return nil, fmt.Errorf("staging %s: %w", root, err)
	}

	report, err := engine.Apply(OpenTree(staging), steps)
	if err != nil {
		var rerr *Error
		if errors.As(err, &rerr) {
			rerr.RolledBack = true
		}
		return report, err
	}

	// MkdirTemp creates 0700; the swapped-in root keeps the original mode.
	if err := os.Chmod(staging, rootInfo.Mode().Perm()); err != nil {
		return report, fmt.Errorf("setting mode of %s: %w", staging, err)
	}
	if err := swapDir(root, staging); err != nil {
		return report, err
	}
	keep = true
	return report, nil
}

// swapDir replaces dir with replacement, restoring dir if the second rename fails.
func swapDir(dir, replacement string) error {
	backup, err := os.MkdirTemp(filepath.Dir(dir), "."+filepath.Base(dir)+".backup-")
	if err != nil {
		return fmt.Errorf("reserving backup name: %w", err)
	}
	// Rename cannot replace a directory, so the reserved name is released first.
	if err := os.Remove(backup); err != nil {
		return fmt.Errorf("reserving backup name: %w", err)
	}

	if err := os.Rename(dir, backup); err != nil {
		return fmt.Errorf("moving %s aside: %w", dir, err)
	}
	if err := os.Rename(replacement, dir); err != nil {
		if rerr := os.Rename(backup, dir); rerr != nil {
			return fmt.Errorf("installing rewritten tree: %w (original left at %s: %v)", err, backup, rerr)
		}
		return fmt.Errorf("installing rewritten tree: %w", err)
	}

	if err := os.RemoveAll(backup); err != nil {
		return fmt.Errorf("removing backup %s: %w", backup, err)
	}
	return nil
}
