// Package scaffold runs one project creation end to end: derive the new
// identifiers, fetch the template, rewrite it, then hand the finished tree to
// the installers and the git reinitializer.
package scaffold

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	oerrors "github.com/rnscaffold/cli/internal/errors"
	"github.com/rnscaffold/cli/internal/fetch"
	"github.com/rnscaffold/cli/internal/identity"
	"github.com/rnscaffold/cli/internal/install"
	"github.com/rnscaffold/cli/internal/output"
	"github.com/rnscaffold/cli/internal/rewrite"
	"github.com/rnscaffold/cli/internal/templates"
)

// VCS reinitializes version control in a finished project.
type VCS interface {
	Reinit(ctx context.Context, dir string) (string, error)
	RemoveHistory(dir string) error
}

// Options are the per-run inputs.
type Options struct {
	// Name is the raw project name given by the operator.
	Name string

	// Dir is the parent directory of the new project. Empty means the
	// current directory.
	Dir string

	// TemplateURL overrides the descriptor's repository.
	TemplateURL  string
	BundlePrefix string

	SkipInstall   bool
	SkipGit       bool
	Transactional bool

	// DryRun fetches into a scratch directory and reports the rewrite
	// without creating the project.
	DryRun bool
}

// Result describes a finished run.
type Result struct {
	IDs        identity.Set
	ProjectDir string
	Report     *rewrite.Report

	// Preview is set for dry runs.
	Preview *rewrite.Preview

	// Commit is the hash of the fresh repository's first commit.
	Commit string

	// Warnings collects collaborator failures that did not stop the run.
	Warnings []error
}

// Deps are the collaborators of a Scaffolder.
type Deps struct {
	Descriptor *templates.Descriptor
	NewFetcher func(source string) fetch.Fetcher
	Installers []install.Installer
	VCS        VCS
}

// Scaffolder creates projects.
type Scaffolder struct {
	desc       *templates.Descriptor
	newFetcher func(source string) fetch.Fetcher
	installers []install.Installer
	vcs        VCS
}

// New creates a Scaffolder. A nil Descriptor selects the built-in template
// and a nil NewFetcher selects fetch.NewFetcher.
func New(d Deps) (*Scaffolder, error) {
	s := &Scaffolder{
		desc:       d.Descriptor,
		newFetcher: d.NewFetcher,
		installers: d.Installers,
		vcs:        d.VCS,
	}
	if s.desc == nil {
		desc, err := templates.Default()
		if err != nil {
			return nil, err
		}
		s.desc = desc
	}
	if s.newFetcher == nil {
		s.newFetcher = func(source string) fetch.Fetcher { return fetch.NewFetcher(source) }
	}
	return s, nil
}

// Descriptor returns the template layout in use.
func (s *Scaffolder) Descriptor() *templates.Descriptor {
	return s.desc
}

// Derive computes the identifier set for opts without side effects.
func (s *Scaffolder) Derive(opts Options) (identity.Set, error) {
	var idOpts []identity.Option
	if opts.BundlePrefix != "" {
		idOpts = append(idOpts, identity.WithBundlePrefix(opts.BundlePrefix))
	}
	return identity.Derive(opts.Name, s.desc.Identifiers, idOpts...)
}

// Run creates the project. Fetch and rewrite failures abort the run;
// installer and VCS failures are collected in Result.Warnings.
func (s *Scaffolder) Run(ctx context.Context, opts Options) (*Result, error) {
	ids, err := s.Derive(opts)
	if err != nil {
		return nil, err
	}
	if ids.EmptyNormalized() {
		output.Warn("project name has no letters or digits; bundle id and package scope end up empty",
			"bundleId", ids.NewBundleID, "scope", ids.NewScope)
	}

	plog := output.ProjectLogger(ids.NewName)
	engine := rewrite.NewEngine(rewrite.WithLogger(plog))
	steps := rewrite.Plan(s.desc, ids)

	source := opts.TemplateURL
	if source == "" {
		source = s.desc.URL
	}

	if opts.DryRun {
		return s.dryRun(ctx, ids, source, steps, engine)
	}

	projectDir := filepath.Join(opts.Dir, opts.Name)
	res := &Result{IDs: ids, ProjectDir: projectDir}

	if err := s.fetch(ctx, source, projectDir); err != nil {
		return nil, err
	}

	if opts.Transactional {
		res.Report, err = rewrite.ApplyTransactional(projectDir, steps, engine)
	} else {
		res.Report, err = engine.Apply(rewrite.OpenTree(projectDir), steps)
	}
	if err != nil {
		if rerr, ok := rewrite.IsRewriteError(err); ok {
			return res, rerr.Detail(projectDir)
		}
		return res, fmt.Errorf("rewriting %s: %w", projectDir, errors.Join(oerrors.ErrRewrite, err))
	}
	plog.Info("Project rewritten",
		"updated", res.Report.Count(rewrite.StatusUpdated),
		"moved", res.Report.Count(rewrite.StatusMoved))

	if opts.SkipInstall {
		plog.Info("Skipping dependency installation")
	} else {
		res.Warnings = append(res.Warnings, s.install(ctx, plog, projectDir)...)
	}

	if err := s.reinitVCS(ctx, plog, projectDir, opts.SkipGit, res); err != nil {
		res.Warnings = append(res.Warnings, err)
	}

	return res, nil
}

func (s *Scaffolder) fetch(ctx context.Context, source, dest string) error {
	f := s.newFetcher(source)
	return output.RunWithSpinner(ctx, func(ctx context.Context) error {
		return f.Fetch(ctx, source, dest)
	}, output.WithTitle(fmt.Sprintf("Fetching template from %s", source)))
}

func (s *Scaffolder) dryRun(ctx context.Context, ids identity.Set, source string, steps []rewrite.Step, engine *rewrite.Engine) (*Result, error) {
	scratch, err := os.MkdirTemp("", "rnscaffold-fetch-")
	if err != nil {
		return nil, fmt.Errorf("creating scratch directory: %w", err)
	}
	defer os.RemoveAll(scratch)

	dir := filepath.Join(scratch, "template")
	if err := s.fetch(ctx, source, dir); err != nil {
		return nil, err
	}

	preview, err := rewrite.DryRun(dir, steps, engine)
	res := &Result{IDs: ids, Preview: preview}
	if preview != nil {
		res.Report = preview.Report
	}
	if err != nil {
		if rerr, ok := rewrite.IsRewriteError(err); ok {
			rerr.RolledBack = true
			return res, rerr.Detail(dir)
		}
		return res, err
	}
	return res, nil
}

func (s *Scaffolder) install(ctx context.Context, plog *log.Logger, dir string) []error {
	var warnings []error
	for _, inst := range s.installers {
		if reason := inst.SkipReason(dir); reason != "" {
			plog.Info("Skipping "+inst.Name(), "reason", reason)
			continue
		}

		err := output.RunWithSpinner(ctx, func(ctx context.Context) error {
			return inst.Install(ctx, dir)
		}, output.WithTitle("Running "+inst.Name()))
		if err != nil {
			plog.Warn(inst.Name()+" failed", "err", err)
			warnings = append(warnings, err)
		}
	}
	return warnings
}

func (s *Scaffolder) reinitVCS(ctx context.Context, plog *log.Logger, dir string, skip bool, res *Result) error {
	if s.vcs == nil {
		return nil
	}

	if skip {
		plog.Info("Skipping git initialization")
		if err := s.vcs.RemoveHistory(dir); err != nil {
			plog.Warn("removing template history failed", "err", err)
			return err
		}
		return nil
	}

	hash, err := s.vcs.Reinit(ctx, dir)
	if err != nil {
		plog.Warn("git initialization failed", "err", err)
		return err
	}
	res.Commit = hash
	plog.Info("Initialized git repository", "commit", shortHash(hash))
	return nil
}

func shortHash(h string) string {
	if len(h) > 7 {
		return h[:7]
	}
	return h
}
