package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"

	oerrors "github.com/rnscaffold/cli/internal/errors"
)

// Environment variable prefix for rnscaffold configuration.
const envPrefix = "RNSCAFFOLD"

// Configuration keys.
const (
	KeyTemplateURL    = "templateURL"
	KeyBundlePrefix   = "bundlePrefix"
	KeyInstallSkip    = "install.skip"
	KeyInstallPods    = "install.pods"
	KeyGitSkip        = "git.skip"
	KeyGitAuthorName  = "git.authorName"
	KeyGitAuthorEmail = "git.authorEmail"
	KeyGitMessage     = "git.message"
	KeyLogTimestamps  = "log.timestamps"
)

// Keys lists every configuration key in display order.
var Keys = []string{
	KeyTemplateURL,
	KeyBundlePrefix,
	KeyInstallSkip,
	KeyInstallPods,
	KeyGitSkip,
	KeyGitAuthorName,
	KeyGitAuthorEmail,
	KeyGitMessage,
	KeyLogTimestamps,
}

// envVars maps each key to its environment variable.
var envVars = map[string]string{
	KeyTemplateURL:    "RNSCAFFOLD_TEMPLATE_URL",
	KeyBundlePrefix:   "RNSCAFFOLD_BUNDLE_PREFIX",
	KeyInstallSkip:    "RNSCAFFOLD_SKIP_INSTALL",
	KeyInstallPods:    "RNSCAFFOLD_PODS",
	KeyGitSkip:        "RNSCAFFOLD_SKIP_GIT",
	KeyGitAuthorName:  "RNSCAFFOLD_GIT_AUTHOR_NAME",
	KeyGitAuthorEmail: "RNSCAFFOLD_GIT_AUTHOR_EMAIL",
	KeyGitMessage:     "RNSCAFFOLD_GIT_MESSAGE",
	KeyLogTimestamps:  "RNSCAFFOLD_LOG_TIMESTAMPS",
}

// EnvVar returns the environment variable bound to key.
func EnvVar(key string) string {
	return envVars[key]
}

// Loader handles loading and merging configuration from multiple sources.
// Precedence: flag > env > config file > default.
type Loader struct {
	v *viper.Viper

	// file holds the config file layer alone, for source reporting.
	file *viper.Viper

	flags map[string]bool
	path  string
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	v := viper.New()

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, key := range Keys {
		_ = v.BindEnv(key, envVars[key])
	}

	d := DefaultConfig()
	v.SetDefault(KeyTemplateURL, d.TemplateURL)
	v.SetDefault(KeyBundlePrefix, d.BundlePrefix)
	v.SetDefault(KeyInstallSkip, d.Install.Skip)
	v.SetDefault(KeyInstallPods, d.Install.Pods)
	v.SetDefault(KeyGitSkip, d.Git.Skip)
	v.SetDefault(KeyGitMessage, d.Git.Message)

	return &Loader{v: v, file: viper.New(), flags: make(map[string]bool)}
}

// ReadFile reads the config file at path. A missing file is not an error.
// If path is empty, the default config file path is used.
func (l *Loader) ReadFile(path string) error {
	if path == "" {
		var err error
		path, err = GetConfigFile()
		if err != nil {
			return fmt.Errorf("getting config file path: %w", err)
		}
	}

	expanded, err := ExpandPath(path)
	if err != nil {
		return fmt.Errorf("expanding config path: %w", err)
	}
	l.path = expanded

	l.file.SetConfigFile(expanded)
	l.file.SetConfigType("yaml")
	if err := l.file.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return oerrors.NewValidationError(
			fmt.Sprintf("reading config file: %v", err), expanded, "",
			"Fix the YAML syntax or regenerate the file with 'rnscaffold config init --force'.")
	}

	return l.v.MergeConfigMap(l.file.AllSettings())
}

// Path returns the config file path passed to ReadFile, after expansion.
func (l *Loader) Path() string {
	return l.path
}

// SetFlag records a command-line override for key.
func (l *Loader) SetFlag(key string, value any) {
	l.v.Set(key, value)
	l.flags[key] = true
}

// Load unmarshals and validates the merged configuration.
func (l *Loader) Load() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, oerrors.NewValidationError(
			fmt.Sprintf("decoding config: %v", err), l.path, "", "")
	}

	out := cfg.WithDefaults()
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// LoadFile is a shorthand for ReadFile followed by Load.
func LoadFile(path string) (*Config, error) {
	l := NewLoader()
	if err := l.ReadFile(path); err != nil {
		return nil, err
	}
	return l.Load()
}
