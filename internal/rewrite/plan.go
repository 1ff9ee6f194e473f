package rewrite

import (
	"path"

	"github.com/rnscaffold/cli/internal/identity"
	"github.com/rnscaffold/cli/internal/templates"
)

// Phase groups steps; phases run strictly in ascending order.
type Phase int

const (
	PhaseBulkContent Phase = iota + 1
	PhaseRelocate
	PhaseRelocatedContent
	PhaseScope
	PhaseContainers
	PhaseScheme
)

// String returns a short label for the phase.
func (p Phase) String() string {
	switch p {
	case PhaseBulkContent:
		return "bulk-content"
	case PhaseRelocate:
		return "relocate"
	case PhaseRelocatedContent:
		return "relocated-content"
	case PhaseScope:
		return "scope"
	case PhaseContainers:
		return "containers"
	case PhaseScheme:
		return "scheme"
	default:
		return "unknown"
	}
}

// MarshalText encodes the phase as its label.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Step is one rule tagged with its phase.
type Step struct {
	Phase Phase
	Rule  Rule
}

// StepView is the serializable form of a step.
type StepView struct {
	Index    int    `json:"index" yaml:"index"`
	Phase    string `json:"phase" yaml:"phase"`
	RuleView `yaml:",inline"`
}

// Describe returns the serializable view of steps.
func Describe(steps []Step) []StepView {
	views := make([]StepView, len(steps))
	for i, s := range steps {
		views[i] = StepView{Index: i + 1, Phase: s.Phase.String(), RuleView: s.Rule.View()}
	}
	return views
}

// identifierReplacements substitutes name, then bundle id, then legacy alias.
func identifierReplacements(ids identity.Set) []Replacement {
	reps := []Replacement{
		{Old: ids.OldName, New: ids.NewName},
		{Old: ids.OldBundleID, New: ids.NewBundleID},
	}
	if ids.LegacyBundleID != "" {
		reps = append(reps, Replacement{Old: ids.LegacyBundleID, New: ids.NewBundleID})
	}
	return reps
}

// Plan builds the ordered rule list for one run. It does not touch the filesystem.
// Re-applying the plan to its own output is a no-op, also when the new name
// embeds the old one: content rules never rewrite an occurrence of a new
// value that contains its old value.
func Plan(d *templates.Descriptor, ids identity.Set) []Step {
	var steps []Step
	add := func(p Phase, r Rule) {
		steps = append(steps, Step{Phase: p, Rule: r})
	}

	generic := identifierReplacements(ids)
	nameOnly := []Replacement{{Old: ids.OldName, New: ids.NewName}}

	for _, f := range d.GenericFiles {
		add(PhaseBulkContent, ContentRule{Path: templates.Expand(f, ids.OldName), Replacements: generic})
	}

	relocate := RelocateRule{
		Root: d.SourceRoot,
		From: ids.OldBundleSegments(),
		To:   ids.NewBundleSegments(),
	}
	add(PhaseRelocate, relocate)

	for _, f := range d.RelocatedFiles {
		add(PhaseRelocatedContent, ContentRule{Path: path.Join(relocate.ToPath(), f), Replacements: generic})
	}
	for _, f := range d.NameOnlyFiles {
		add(PhaseRelocatedContent, ContentRule{Path: templates.Expand(f, ids.OldName), Replacements: nameOnly})
	}

	scope := []Replacement{{Old: ids.OldScope, New: ids.NewScope}}
	for _, f := range d.ScopeFiles {
		add(PhaseScope, ContentRule{Path: f, Replacements: scope})
	}

	for _, c := range d.Containers {
		add(PhaseContainers, PathRule{From: templates.Expand(c, ids.OldName), To: templates.Expand(c, ids.NewName)})
	}

	schemeDir := templates.Expand(d.Scheme.Dir, ids.NewName)
	add(PhaseScheme, CompositeRule{
		Move: PathRule{
			From: path.Join(schemeDir, templates.Expand(d.Scheme.File, ids.OldName)),
			To:   path.Join(schemeDir, templates.Expand(d.Scheme.File, ids.NewName)),
		},
		Content: nameOnly,
	})

	return steps
}
