// Package install runs the package managers a freshly rewritten project
// needs: npm for JavaScript dependencies and CocoaPods for the iOS target.
package install

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	oerrors "github.com/rnscaffold/cli/internal/errors"
)

// Installer installs one kind of dependency into a project.
type Installer interface {
	// Name is the command shown to the operator.
	Name() string

	// SkipReason explains why the installer does not apply, or returns "".
	SkipReason(projectDir string) string

	Install(ctx context.Context, projectDir string) error
}

// PodPolicy controls when CocoaPods runs.
type PodPolicy string

const (
	// PodsAuto runs pod install only on macOS.
	PodsAuto PodPolicy = "auto"

	// PodsAlways runs pod install on every platform.
	PodsAlways PodPolicy = "always"

	// PodsNever disables pod install.
	PodsNever PodPolicy = "never"
)

// ParsePodPolicy parses a policy name. An empty string means PodsAuto.
func ParsePodPolicy(s string) (PodPolicy, error) {
	switch p := PodPolicy(s); p {
	case "":
		return PodsAuto, nil
	case PodsAuto, PodsAlways, PodsNever:
		return p, nil
	}
	return "", oerrors.NewValidationError(
		fmt.Sprintf("invalid pod policy %q", s), "", "install.pods",
		"Valid values: auto, always, never.")
}

// NpmInstaller runs npm install in the project root.
type NpmInstaller struct {
	runner Runner
}

// NewNpmInstaller creates an npm installer.
func NewNpmInstaller(r Runner) *NpmInstaller {
	return &NpmInstaller{runner: r}
}

// Name implements Installer.
func (n *NpmInstaller) Name() string { return "npm install" }

// SkipReason implements Installer.
func (n *NpmInstaller) SkipReason(projectDir string) string {
	if !fileExists(filepath.Join(projectDir, "package.json")) {
		return "no package.json in project"
	}
	return ""
}

// Install implements Installer.
func (n *NpmInstaller) Install(ctx context.Context, projectDir string) error {
	if err := n.runner.Run(ctx, projectDir, "npm", "install"); err != nil {
		return newInstallError(n.Name(), projectDir, err)
	}
	return nil
}

// PodOption configures a PodInstaller.
type PodOption func(*PodInstaller)

// WithGOOS overrides the platform the policy is evaluated against.
func WithGOOS(goos string) PodOption {
	return func(p *PodInstaller) {
		p.goos = goos
	}
}

// PodInstaller runs pod install in the project's ios directory.
type PodInstaller struct {
	runner Runner
	policy PodPolicy
	goos   string
}

// NewPodInstaller creates a CocoaPods installer.
func NewPodInstaller(r Runner, policy PodPolicy, opts ...PodOption) *PodInstaller {
	p := &PodInstaller{runner: r, policy: policy, goos: runtime.GOOS}
	for _, opt := range opts {
		opt(p)
	}
	if p.policy == "" {
		p.policy = PodsAuto
	}
	return p
}

// Name implements Installer.
func (p *PodInstaller) Name() string { return "pod install" }

// SkipReason implements Installer.
func (p *PodInstaller) SkipReason(projectDir string) string {
	switch {
	case p.policy == PodsNever:
		return "disabled by install.pods=never"
	case p.policy == PodsAuto && p.goos != "darwin":
		return "CocoaPods only runs on macOS"
	case !fileExists(filepath.Join(projectDir, "ios", "Podfile")):
		return "no ios/Podfile in project"
	}
	return ""
}

// Install implements Installer.
func (p *PodInstaller) Install(ctx context.Context, projectDir string) error {
	if err := p.runner.Run(ctx, filepath.Join(projectDir, "ios"), "pod", "install"); err != nil {
		return newInstallError(p.Name(), projectDir, err)
	}
	return nil
}

func newInstallError(name, dir string, err error) error {
	return &oerrors.DetailError{
		Type:     "install failed",
		Message:  err.Error(),
		Location: dir,
		Context:  map[string]string{"Command": name},
		Hint:     fmt.Sprintf("The project was created. Run '%s' manually to finish setup.", name),
		Cause:    errors.Join(oerrors.ErrInstall, err),
	}
}

func fileExists(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && !fi.IsDir()
}
