package output

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/huh/spinner"
)

// SpinnerOption configures a spinner.
type SpinnerOption func(*spinnerConfig)

type spinnerConfig struct {
	title   string
	timeout time.Duration
}

// WithTitle sets the spinner title.
func WithTitle(title string) SpinnerOption {
	return func(c *spinnerConfig) {
		c.title = title
	}
}

// WithTimeout sets the spinner timeout.
func WithTimeout(timeout time.Duration) SpinnerOption {
	return func(c *spinnerConfig) {
		c.timeout = timeout
	}
}

// RunWithSpinner executes an action with a spinner.
// Returns the action's error if any. Without a TTY the action runs directly
// and the title is logged instead.
func RunWithSpinner(ctx context.Context, action func(ctx context.Context) error, opts ...SpinnerOption) error {
	cfg := &spinnerConfig{
		title: "Working...",
	}

	for _, opt := range opts {
		opt(cfg)
	}

	actionCtx := ctx
	var cancel context.CancelFunc
	if cfg.timeout > 0 {
		actionCtx, cancel = context.WithTimeout(ctx, cfg.timeout)
		defer cancel()
	}

	if !IsTTY() {
		Info(cfg.title)
		return action(actionCtx)
	}

	return awaitAction(actionCtx, action, func(wait func()) error {
		return spinner.New().
			Title(cfg.title).
			Context(actionCtx).
			Action(wait).
			Run()
	})
}

// awaitAction runs action in the background while spin is displayed. spin
// may return before wait does (the spinner stops on cancellation); the
// action's result is only read from its channel, after it has finished.
func awaitAction(ctx context.Context, action func(ctx context.Context) error, spin func(wait func()) error) error {
	errCh := make(chan error, 1)
	done := make(chan struct{})
	go func() {
		errCh <- action(ctx)
		close(done)
	}()

	spinnerErr := spin(func() {
		select {
		case <-done:
		case <-ctx.Done():
		}
	})

	if err := <-errCh; err != nil {
		return err
	}
	if spinnerErr != nil {
		return fmt.Errorf("spinner error: %w", spinnerErr)
	}
	return nil
}
