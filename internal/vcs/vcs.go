// Package vcs gives a scaffolded project a fresh git history.
package vcs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"

	oerrors "github.com/rnscaffold/cli/internal/errors"
)

// Fallback identity used when neither the configuration nor the global git
// config names an author.
const (
	DefaultAuthorName  = "rnscaffold"
	DefaultAuthorEmail = "rnscaffold@localhost"
	DefaultMessage     = "Initial commit"
)

// Option configures a GitReinitializer.
type Option func(*GitReinitializer)

// WithAuthor sets the commit author. Empty values fall back to the global git config.
func WithAuthor(name, email string) Option {
	return func(g *GitReinitializer) {
		g.authorName = name
		g.authorEmail = email
	}
}

// WithMessage sets the initial commit message.
func WithMessage(msg string) Option {
	return func(g *GitReinitializer) {
		if msg != "" {
			g.message = msg
		}
	}
}

// WithClock overrides the commit timestamp source.
func WithClock(now func() time.Time) Option {
	return func(g *GitReinitializer) {
		g.now = now
	}
}

// GitReinitializer replaces a project's cloned history with a single commit.
type GitReinitializer struct {
	authorName  string
	authorEmail string
	message     string
	now         func() time.Time
}

// NewGitReinitializer creates a reinitializer.
func NewGitReinitializer(opts ...Option) *GitReinitializer {
	g := &GitReinitializer{message: DefaultMessage, now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// RemoveHistory deletes the project's .git directory, if any.
func (g *GitReinitializer) RemoveHistory(dir string) error {
	if err := os.RemoveAll(filepath.Join(dir, git.GitDirName)); err != nil {
		return newVCSError(dir, "removing template history", err)
	}
	return nil
}

// Reinit removes the old history, initializes a new repository, stages
// everything and commits. It returns the new commit hash.
func (g *GitReinitializer) Reinit(ctx context.Context, dir string) (string, error) {
	if err := g.RemoveHistory(dir); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", newVCSError(dir, "initializing repository", err)
	}

	repo, err := git.PlainInit(dir, false)
	if err != nil {
		return "", newVCSError(dir, "git init", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return "", newVCSError(dir, "opening worktree", err)
	}
	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return "", newVCSError(dir, "staging files", err)
	}

	hash, err := wt.Commit(g.message, &git.CommitOptions{
		Author:            g.signature(),
		AllowEmptyCommits: true,
	})
	if err != nil {
		return "", newVCSError(dir, "commit", err)
	}

	return hash.String(), nil
}

// signature resolves the author: configured values, then the global git
// config, then the built-in default.
func (g *GitReinitializer) signature() *object.Signature {
	name, email := g.authorName, g.authorEmail

	if name == "" || email == "" {
		if cfg, err := gitconfig.LoadConfig(gitconfig.GlobalScope); err == nil {
			if name == "" {
				name = cfg.User.Name
			}
			if email == "" {
				email = cfg.User.Email
			}
		}
	}
	if name == "" {
		name = DefaultAuthorName
	}
	if email == "" {
		email = DefaultAuthorEmail
	}

	return &object.Signature{Name: name, Email: email, When: g.now()}
}

func newVCSError(dir, action string, err error) error {
	return &oerrors.DetailError{
		Type:     "git reinitialization failed",
		Message:  fmt.Sprintf("%s: %v", action, err),
		Location: dir,
		Hint:     "The project was created. Run 'git init && git add -A && git commit' manually.",
		Cause:    errors.Join(oerrors.ErrVCS, err),
	}
}
