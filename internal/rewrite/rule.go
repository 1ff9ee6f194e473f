// Package rewrite is the rename engine: an ordered list of content
// substitutions and path relocations applied to a cloned template tree.
package rewrite

import (
	"fmt"
	"path"
	"strings"
)

// Kind identifies a rule variant.
type Kind string

const (
	// KindContent substitutes literals inside one file.
	KindContent Kind = "content"

	// KindPath renames one file or directory.
	KindPath Kind = "path"

	// KindRelocate moves a package directory nested by bundle id segments.
	KindRelocate Kind = "relocate"

	// KindComposite renames a file and then rewrites its content.
	KindComposite Kind = "composite"
)

// Status is the outcome of applying one rule.
type Status string

const (
	StatusUpdated   Status = "updated"
	StatusUnchanged Status = "unchanged"
	StatusSkipped   Status = "skipped"
	StatusMoved     Status = "moved"
)

// Replacement is one literal substitution, applied to every occurrence.
type Replacement struct {
	Old string `json:"old" yaml:"old"`
	New string `json:"new" yaml:"new"`
}

// Outcome describes what a rule did to the tree.
type Outcome struct {
	Status Status `json:"status" yaml:"status"`

	// Path is the rule's target after it ran.
	Path string `json:"path" yaml:"path"`

	// From is set for moves.
	From string `json:"from,omitempty" yaml:"from,omitempty"`

	// Replaced counts substituted occurrences across all replacements.
	Replaced int `json:"replaced,omitempty" yaml:"replaced,omitempty"`

	// Pruned lists emptied directories removed after a relocation.
	Pruned []string `json:"pruned,omitempty" yaml:"pruned,omitempty"`
}

// RuleView is the inspectable form of a rule.
type RuleView struct {
	Kind         Kind          `json:"kind" yaml:"kind"`
	Path         string        `json:"path" yaml:"path"`
	From         string        `json:"from,omitempty" yaml:"from,omitempty"`
	Replacements []Replacement `json:"replacements,omitempty" yaml:"replacements,omitempty"`
	Then         []RuleView    `json:"then,omitempty" yaml:"then,omitempty"`
}

// Rule is one unit of substitution or relocation work.
type Rule interface {
	Kind() Kind
	View() RuleView
	Apply(t *Tree) (Outcome, error)
}

// ContentRule rewrites one file in place. Absent files are skipped.
type ContentRule struct {
	Path         string
	Replacements []Replacement
}

// Kind implements Rule.
func (r ContentRule) Kind() Kind { return KindContent }

// View implements Rule.
func (r ContentRule) View() RuleView {
	return RuleView{Kind: KindContent, Path: r.Path, Replacements: r.Replacements}
}

// Apply implements Rule.
func (r ContentRule) Apply(t *Tree) (Outcome, error) {
	out := Outcome{Status: StatusSkipped, Path: r.Path}

	fi, err := t.stat(r.Path)
	if err != nil {
		return out, fmt.Errorf("stat %s: %w", r.Path, err)
	}
	if fi == nil {
		return out, nil
	}
	if fi.IsDir() {
		return out, fmt.Errorf("%s is a directory, expected a file", r.Path)
	}

	data, err := t.readFile(r.Path)
	if err != nil {
		return out, fmt.Errorf("reading %s: %w", r.Path, err)
	}

	content := string(data)
	protected := protectedValues(r.Replacements)
	for _, rep := range r.Replacements {
		if rep.Old == "" || rep.Old == rep.New {
			continue
		}
		var n int
		content, n = replaceUnprotected(content, rep, protected)
		out.Replaced += n
	}

	if content == string(data) {
		out.Status = StatusUnchanged
		return out, nil
	}

	if err := t.writeFile(r.Path, []byte(content), fi.Mode().Perm()); err != nil {
		return out, fmt.Errorf("writing %s: %w", r.Path, err)
	}
	out.Status = StatusUpdated
	return out, nil
}

// protectedValues returns the new values that contain their own old value.
// Their occurrences are never rewritten again, so a re-run over migrated
// content is a no-op even when the new name embeds the old one.
func protectedValues(reps []Replacement) []string {
	var vals []string
	for _, rep := range reps {
		if rep.Old != "" && rep.Old != rep.New && strings.Contains(rep.New, rep.Old) {
			vals = append(vals, rep.New)
		}
	}
	return vals
}

// replaceUnprotected replaces every occurrence of rep.Old that does not
// overlap an occurrence of a protected value.
func replaceUnprotected(content string, rep Replacement, protected []string) (string, int) {
	if len(protected) == 0 {
		n := strings.Count(content, rep.Old)
		if n == 0 {
			return content, 0
		}
		return strings.ReplaceAll(content, rep.Old, rep.New), n
	}

	type span struct{ start, end int }
	var spans []span
	for _, p := range protected {
		for i := 0; ; {
			j := strings.Index(content[i:], p)
			if j < 0 {
				break
			}
			spans = append(spans, span{i + j, i + j + len(p)})
			i += j + 1
		}
	}
	overlaps := func(start, end int) bool {
		for _, s := range spans {
			if start < s.end && s.start < end {
				return true
			}
		}
		return false
	}

	var b strings.Builder
	n, last := 0, 0
	for i := 0; i <= len(content)-len(rep.Old); {
		j := strings.Index(content[i:], rep.Old)
		if j < 0 {
			break
		}
		start := i + j
		end := start + len(rep.Old)
		if overlaps(start, end) {
			i = start + 1
			continue
		}
		b.WriteString(content[last:start])
		b.WriteString(rep.New)
		last, i = end, end
		n++
	}
	if n == 0 {
		return content, 0
	}
	b.WriteString(content[last:])
	return b.String(), n
}

// PathRule renames From to To when From exists.
type PathRule struct {
	From string
	To   string
}

// Kind implements Rule.
func (r PathRule) Kind() Kind { return KindPath }

// View implements Rule.
func (r PathRule) View() RuleView {
	return RuleView{Kind: KindPath, Path: r.To, From: r.From}
}

// Apply implements Rule.
func (r PathRule) Apply(t *Tree) (Outcome, error) {
	out := Outcome{Status: StatusSkipped, Path: r.From}

	ok, err := t.exists(r.From)
	if err != nil {
		return out, fmt.Errorf("stat %s: %w", r.From, err)
	}
	if !ok {
		return out, nil
	}
	if path.Clean(r.From) == path.Clean(r.To) {
		out.Status = StatusUnchanged
		return out, nil
	}

	// A case-only rename reports the target as existing on case-insensitive filesystems.
	if !strings.EqualFold(r.From, r.To) {
		taken, err := t.exists(r.To)
		if err != nil {
			return out, fmt.Errorf("stat %s: %w", r.To, err)
		}
		if taken {
			return out, fmt.Errorf("cannot rename %s: %s already exists", r.From, r.To)
		}
	}

	if err := t.mkdirAll(path.Dir(r.To)); err != nil {
		return out, fmt.Errorf("creating parent of %s: %w", r.To, err)
	}
	if err := t.rename(r.From, r.To); err != nil {
		return out, fmt.Errorf("renaming %s to %s: %w", r.From, r.To, err)
	}

	return Outcome{Status: StatusMoved, Path: r.To, From: r.From}, nil
}

// RelocateRule moves Root/From... to Root/To..., where From and To are
// bundle identifier segments, then prunes the emptied old parents below Root.
type RelocateRule struct {
	Root string
	From []string
	To   []string
}

// Kind implements Rule.
func (r RelocateRule) Kind() Kind { return KindRelocate }

// FromPath returns the old nested directory.
func (r RelocateRule) FromPath() string {
	return path.Join(append([]string{r.Root}, r.From...)...)
}

// ToPath returns the new nested directory.
func (r RelocateRule) ToPath() string {
	return path.Join(append([]string{r.Root}, r.To...)...)
}

// View implements Rule.
func (r RelocateRule) View() RuleView {
	return RuleView{Kind: KindRelocate, Path: r.ToPath(), From: r.FromPath()}
}

// Apply implements Rule.
func (r RelocateRule) Apply(t *Tree) (Outcome, error) {
	from, to := r.FromPath(), r.ToPath()
	out := Outcome{Status: StatusSkipped, Path: from}

	ok, err := t.exists(from)
	if err != nil {
		return out, fmt.Errorf("stat %s: %w", from, err)
	}
	if !ok {
		return out, nil
	}
	if from == to {
		out.Status = StatusUnchanged
		return out, nil
	}

	src := from
	overlap := isWithin(to, from) || isWithin(from, to)
	var pruned []string
	if overlap {
		// Park the subtree beside Root so the old chain can be pruned first.
		src = path.Join(r.Root, ".rnscaffold-relocate")
		if err := t.rename(from, src); err != nil {
			return out, fmt.Errorf("moving %s aside: %w", from, err)
		}
		if pruned, err = t.pruneEmpty(path.Dir(from), r.Root); err != nil {
			return out, err
		}
	}

	taken, err := t.exists(to)
	if err != nil {
		return out, fmt.Errorf("stat %s: %w", to, err)
	}
	if taken {
		return out, fmt.Errorf("cannot relocate %s: %s already exists", src, to)
	}
	if err := t.mkdirAll(path.Dir(to)); err != nil {
		return out, fmt.Errorf("creating parent of %s: %w", to, err)
	}
	if err := t.rename(src, to); err != nil {
		return out, fmt.Errorf("relocating %s to %s: %w", src, to, err)
	}

	if !overlap {
		if pruned, err = t.pruneEmpty(path.Dir(from), r.Root); err != nil {
			return Outcome{Status: StatusMoved, Path: to, From: from, Pruned: pruned}, err
		}
	}

	return Outcome{Status: StatusMoved, Path: to, From: from, Pruned: pruned}, nil
}

// CompositeRule renames a file and, only if the rename happened, rewrites
// the renamed file.
type CompositeRule struct {
	Move    PathRule
	Content []Replacement
}

// Kind implements Rule.
func (r CompositeRule) Kind() Kind { return KindComposite }

// View implements Rule.
func (r CompositeRule) View() RuleView {
	v := r.Move.View()
	v.Kind = KindComposite
	v.Then = []RuleView{r.contentRule().View()}
	return v
}

func (r CompositeRule) contentRule() ContentRule {
	return ContentRule{Path: r.Move.To, Replacements: r.Content}
}

// Apply implements Rule.
func (r CompositeRule) Apply(t *Tree) (Outcome, error) {
	moved, err := r.Move.Apply(t)
	if err != nil || moved.Status == StatusSkipped {
		return moved, err
	}

	rewritten, err := r.contentRule().Apply(t)
	if err != nil {
		return moved, err
	}
	moved.Path = r.Move.To
	moved.Replaced = rewritten.Replaced
	if moved.Status == StatusUnchanged && rewritten.Status == StatusUpdated {
		moved.Status = StatusUpdated
	}
	return moved, nil
}
