// Package config provides configuration loading and management.
package config

import (
	"github.com/rnscaffold/cli/internal/identity"
	"github.com/rnscaffold/cli/internal/install"
)

// DefaultTemplateURL is the boilerplate repository cloned by default.
const DefaultTemplateURL = "https://github.com/tedckh/react-native-boilerplate.git"

// DefaultCommitMessage is the message of the fresh repository's first commit.
const DefaultCommitMessage = "Initial commit"

// InstallConfig contains dependency installation settings.
type InstallConfig struct {
	// Skip disables npm and CocoaPods entirely.
	// Env: RNSCAFFOLD_SKIP_INSTALL
	Skip bool `mapstructure:"skip" yaml:"skip"`

	// Pods controls when pod install runs: auto (macOS only), always or never.
	// Env: RNSCAFFOLD_PODS, Default: auto
	Pods string `mapstructure:"pods" yaml:"pods"`
}

// GitConfig contains repository reinitialization settings.
type GitConfig struct {
	// Skip keeps the cloned history out of the way but creates no new repository.
	// Env: RNSCAFFOLD_SKIP_GIT
	Skip bool `mapstructure:"skip" yaml:"skip"`

	// AuthorName and AuthorEmail sign the initial commit. When empty the
	// global git config is used.
	AuthorName  string `mapstructure:"authorName" yaml:"authorName,omitempty"`
	AuthorEmail string `mapstructure:"authorEmail" yaml:"authorEmail,omitempty"`

	// Message is the initial commit message.
	Message string `mapstructure:"message" yaml:"message"`
}

// LogConfig contains logging-related settings.
type LogConfig struct {
	// Timestamps controls whether timestamps are shown in log output.
	// Default: true. Override with --timestamps flag.
	Timestamps *bool `mapstructure:"timestamps" yaml:"timestamps,omitempty"`
}

// Config represents the rnscaffold configuration, loaded from
// ~/.rnscaffold/config.yaml and the RNSCAFFOLD_* environment.
type Config struct {
	// TemplateURL is the git URL or local directory of the template.
	// Env: RNSCAFFOLD_TEMPLATE_URL
	TemplateURL string `mapstructure:"templateURL" yaml:"templateURL"`

	// BundlePrefix is prepended to the normalized project name to form
	// the bundle identifier.
	// Env: RNSCAFFOLD_BUNDLE_PREFIX, Default: com
	BundlePrefix string `mapstructure:"bundlePrefix" yaml:"bundlePrefix"`

	Install InstallConfig `mapstructure:"install" yaml:"install"`
	Git     GitConfig     `mapstructure:"git" yaml:"git"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

// DefaultConfig returns a Config with all default values populated.
// Used by `rnscaffold config init` to generate the initial config file.
func DefaultConfig() *Config {
	return &Config{
		TemplateURL:  DefaultTemplateURL,
		BundlePrefix: identity.DefaultBundlePrefix,
		Install:      InstallConfig{Pods: string(install.PodsAuto)},
		Git:          GitConfig{Message: DefaultCommitMessage},
	}
}

// WithDefaults fills empty fields from DefaultConfig.
func (c *Config) WithDefaults() *Config {
	d := DefaultConfig()
	out := *c
	if out.TemplateURL == "" {
		out.TemplateURL = d.TemplateURL
	}
	if out.BundlePrefix == "" {
		out.BundlePrefix = d.BundlePrefix
	}
	if out.Install.Pods == "" {
		out.Install.Pods = d.Install.Pods
	}
	if out.Git.Message == "" {
		out.Git.Message = d.Git.Message
	}
	return &out
}

// Validate checks the values that have a closed set of valid inputs.
func (c *Config) Validate() error {
	if err := identity.ValidateBundlePrefix(c.BundlePrefix); err != nil {
		return err
	}
	if _, err := install.ParsePodPolicy(c.Install.Pods); err != nil {
		return err
	}
	return nil
}
