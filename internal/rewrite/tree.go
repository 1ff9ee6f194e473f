package rewrite

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sync/atomic"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

// Tree is the working tree mutated by one engine run. All access goes
// through its filesystem; paths are slash separated and project relative.
type Tree struct {
	fs    billy.Filesystem
	inUse atomic.Bool
}

// NewTree wraps fs as a working tree.
func NewTree(fs billy.Filesystem) *Tree {
	return &Tree{fs: fs}
}

// OpenTree returns a working tree rooted at dir on the OS filesystem.
func OpenTree(dir string) *Tree {
	return NewTree(osfs.New(dir))
}

// FS returns the underlying filesystem.
func (t *Tree) FS() billy.Filesystem {
	return t.fs
}

func (t *Tree) acquire() error {
	if !t.inUse.CompareAndSwap(false, true) {
		return errors.New("working tree is already being rewritten")
	}
	return nil
}

func (t *Tree) release() {
	t.inUse.Store(false)
}

func osPath(p string) string {
	return filepath.FromSlash(p)
}

// stat returns the file info, or nil when p does not exist.
func (t *Tree) stat(p string) (os.FileInfo, error) {
	fi, err := t.fs.Stat(osPath(p))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return fi, nil
}

func (t *Tree) exists(p string) (bool, error) {
	fi, err := t.stat(p)
	return fi != nil, err
}

func (t *Tree) readFile(p string) ([]byte, error) {
	return util.ReadFile(t.fs, osPath(p))
}

func (t *Tree) writeFile(p string, data []byte, perm os.FileMode) error {
	return util.WriteFile(t.fs, osPath(p), data, perm)
}

func (t *Tree) mkdirAll(p string) error {
	if p == "." || p == "" {
		return nil
	}
	return t.fs.MkdirAll(osPath(p), 0o755)
}

func (t *Tree) rename(from, to string) error {
	return t.fs.Rename(osPath(from), osPath(to))
}

// pruneEmpty removes dir and its empty ancestors, stopping at (and never
// removing) stop.
func (t *Tree) pruneEmpty(dir, stop string) ([]string, error) {
	var removed []string
	stop = path.Clean(stop)

	for d := path.Clean(dir); d != stop && d != "." && d != "/" && isWithin(d, stop); d = path.Dir(d) {
		entries, err := t.fs.ReadDir(osPath(d))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return removed, fmt.Errorf("reading %s: %w", d, err)
		}
		if len(entries) > 0 {
			break
		}
		if err := t.fs.Remove(osPath(d)); err != nil {
			return removed, fmt.Errorf("removing empty directory %s: %w", d, err)
		}
		removed = append(removed, d)
	}

	return removed, nil
}

// isWithin reports whether p is strictly below dir.
func isWithin(p, dir string) bool {
	p, dir = path.Clean(p), path.Clean(dir)
	if dir == "." {
		return p != "."
	}
	return len(p) > len(dir) && p[:len(dir)] == dir && p[len(dir)] == '/'
}
