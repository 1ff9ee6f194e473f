package rewrite

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	oerrors "github.com/rnscaffold/cli/internal/errors"
	"github.com/rnscaffold/cli/internal/output"
)

// StepOutcome is the recorded result of one applied step.
type StepOutcome struct {
	Index   int   `json:"index" yaml:"index"`
	Phase   Phase `json:"phase" yaml:"phase"`
	Kind    Kind  `json:"kind" yaml:"kind"`
	Outcome `yaml:",inline"`
}

// Report lists the outcome of every applied step, in order.
type Report struct {
	Steps []StepOutcome `json:"steps" yaml:"steps"`
}

// Count returns how many steps ended with status s.
func (r *Report) Count(s Status) int {
	n := 0
	for _, st := range r.Steps {
		if st.Status == s {
			n++
		}
	}
	return n
}

// Changed reports whether any step modified the tree.
func (r *Report) Changed() bool {
	return r.Count(StatusUpdated)+r.Count(StatusMoved) > 0
}

// Error is returned when a step fails. The tree keeps whatever the
// completed steps produced; nothing is rolled back.
type Error struct {
	// Index is the 1-based position of the failing step.
	Index int
	Phase Phase
	Kind  Kind
	Path  string
	Err   error

	// Completed holds the outcomes of the steps that ran before the failure.
	Completed []StepOutcome

	// RolledBack is set by ApplyTransactional when the original tree was left untouched.
	RolledBack bool
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("rewrite step %d (%s %s) failed on %s: %v", e.Index, e.Phase, e.Kind, e.Path, e.Err)
}

// Unwrap exposes both ErrRewrite and the underlying filesystem error.
func (e *Error) Unwrap() []error {
	return []error{oerrors.ErrRewrite, e.Err}
}

// Detail renders the failure for the operator.
func (e *Error) Detail(projectDir string) *oerrors.DetailError {
	hint := "The project directory is partially rewritten and cannot be resumed. " +
		"Delete it and run rnscaffold again."
	if e.RolledBack {
		hint = "No changes were applied; the project directory still holds the unmodified template."
	}

	completed := make([]string, 0, len(e.Completed))
	for _, c := range e.Completed {
		completed = append(completed, strconv.Itoa(c.Index))
	}

	return &oerrors.DetailError{
		Type:     "rewrite failed",
		Message:  e.Err.Error(),
		Location: projectDir,
		Context: map[string]string{
			"Step":      fmt.Sprintf("%d (%s)", e.Index, e.Phase),
			"Rule":      string(e.Kind),
			"Path":      e.Path,
			"Completed": strings.Join(completed, ","),
		},
		Hint:  hint,
		Cause: e,
	}
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger used to report step outcomes.
func WithLogger(l *log.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = l
	}
}

// Engine applies steps to a working tree, sequentially and fail-fast.
type Engine struct {
	logger *log.Logger
}

// NewEngine creates an engine.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = output.Logger()
	}
	return e
}

// Apply runs steps in order against t. The first failing step aborts the
// run and is returned as *Error.
func (e *Engine) Apply(t *Tree, steps []Step) (*Report, error) {
	if err := t.acquire(); err != nil {
		return nil, err
	}
	defer t.release()

	report := &Report{Steps: make([]StepOutcome, 0, len(steps))}

	for i, step := range steps {
		kind := step.Rule.Kind()
		outcome, err := step.Rule.Apply(t)
		if err != nil {
			e.logger.Error("rewrite step failed", "step", i+1, "phase", step.Phase, "path", outcome.Path, "err", err)
			return report, &Error{
				Index:     i + 1,
				Phase:     step.Phase,
				Kind:      kind,
				Path:      step.Rule.View().Path,
				Err:       err,
				Completed: report.Steps,
			}
		}

		report.Steps = append(report.Steps, StepOutcome{Index: i + 1, Phase: step.Phase, Kind: kind, Outcome: outcome})
		e.logOutcome(step.Phase, outcome)
	}

	return report, nil
}

func (e *Engine) logOutcome(p Phase, o Outcome) {
	switch o.Status {
	case StatusUpdated:
		e.logger.Info("Updated", "path", o.Path, "replaced", o.Replaced)
	case StatusMoved:
		e.logger.Info("Moved", "from", o.From, "to", o.Path)
		for _, d := range o.Pruned {
			e.logger.Debug("Removed empty directory", "path", d)
		}
	default:
		e.logger.Debug("No change", "status", o.Status, "phase", p, "path", o.Path)
	}
}

// IsRewriteError reports whether err came from a failed step.
func IsRewriteError(err error) (*Error, bool) {
	var rerr *Error
	ok := errors.As(err, &rerr)
	return rerr, ok
}
