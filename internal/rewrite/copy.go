package rewrite

import (
	"fmt"
	"io"
	"os"
	"path"

	"github.com/go-git/go-billy/v5"
)

// SkipFunc reports whether a slash-separated relative path is left out of a copy.
type SkipFunc func(rel string, fi os.FileInfo) bool

// SkipVendored leaves out VCS metadata and installed dependencies.
func SkipVendored(rel string, fi os.FileInfo) bool {
	if !fi.IsDir() {
		return false
	}
	switch path.Base(rel) {
	case ".git", "node_modules", "Pods":
		return true
	}
	return false
}

// CopyTree copies every entry of src into dst, keeping file modes and symlinks.
func CopyTree(src, dst billy.Filesystem, skip SkipFunc) error {
	return copyDir(src, dst, ".", skip)
}

func copyDir(src, dst billy.Filesystem, dir string, skip SkipFunc) error {
	entries, err := src.ReadDir(osPath(dir))
	if err != nil {
		return fmt.Errorf("reading %s: %w", dir, err)
	}

	for _, fi := range entries {
		rel := path.Join(dir, fi.Name())
		if skip != nil && skip(rel, fi) {
			continue
		}

		switch {
		case fi.Mode()&os.ModeSymlink != 0:
			target, err := src.Readlink(osPath(rel))
			if err != nil {
				return fmt.Errorf("reading link %s: %w", rel, err)
			}
			if err := dst.Symlink(target, osPath(rel)); err != nil {
				return fmt.Errorf("creating link %s: %w", rel, err)
			}
		case fi.IsDir():
			if err := dst.MkdirAll(osPath(rel), fi.Mode().Perm()|0o700); err != nil {
				return fmt.Errorf("creating %s: %w", rel, err)
			}
			if err := copyDir(src, dst, rel, skip); err != nil {
				return err
			}
		default:
			if err := copyFile(src, dst, rel, fi.Mode().Perm()); err != nil {
				return err
			}
		}
	}

	return nil
}

func copyFile(src, dst billy.Filesystem, rel string, perm os.FileMode) error {
	in, err := src.Open(osPath(rel))
	if err != nil {
		return fmt.Errorf("opening %s: %w", rel, err)
	}
	defer in.Close()

	out, err := dst.OpenFile(osPath(rel), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("creating %s: %w", rel, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying %s: %w", rel, err)
	}
	return out.Close()
}
