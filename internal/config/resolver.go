package config

import (
	"fmt"
	"os"

	"github.com/rnscaffold/cli/internal/output"
)

// ConfigSource indicates where a configuration value came from.
type ConfigSource string

const (
	// SourceFlag indicates value came from command-line flag.
	SourceFlag ConfigSource = "flag"
	// SourceEnv indicates value came from environment variable.
	SourceEnv ConfigSource = "env"
	// SourceConfig indicates value came from config file.
	SourceConfig ConfigSource = "config"
	// SourceDefault indicates value is the built-in default.
	SourceDefault ConfigSource = "default"
)

// ResolvedValue is one configuration value with its provenance.
type ResolvedValue struct {
	Key    string
	Value  string
	Source ConfigSource
	// Shadowed contains values that were overridden by higher precedence.
	Shadowed map[ConfigSource]string
}

// Resolved reports every key's effective value and where it came from.
func (l *Loader) Resolved() []ResolvedValue {
	values := make([]ResolvedValue, 0, len(Keys))

	for _, key := range Keys {
		rv := ResolvedValue{
			Key:      key,
			Value:    display(l.v.Get(key)),
			Shadowed: make(map[ConfigSource]string),
		}

		envValue := os.Getenv(envVars[key])
		inFile := l.file.IsSet(key)

		switch {
		case l.flags[key]:
			rv.Source = SourceFlag
			if envValue != "" {
				rv.Shadowed[SourceEnv] = envValue
			}
			if inFile {
				rv.Shadowed[SourceConfig] = display(l.file.Get(key))
			}
		case envValue != "":
			rv.Source = SourceEnv
			if inFile {
				rv.Shadowed[SourceConfig] = display(l.file.Get(key))
			}
		case inFile:
			rv.Source = SourceConfig
		default:
			rv.Source = SourceDefault
		}

		values = append(values, rv)
	}

	return values
}

func display(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// ResolveConfigPathOptions contains options for config path resolution.
type ResolveConfigPathOptions struct {
	// FlagValue is the --config flag value (empty if not set).
	FlagValue string
}

// ResolveConfigPathResult contains the resolved config path and its source.
type ResolveConfigPathResult struct {
	// ConfigPath is the resolved config file path.
	ConfigPath string
	// Source indicates where the config path came from.
	Source ConfigSource
	// Shadowed contains values that were overridden by higher precedence.
	Shadowed map[ConfigSource]string
}

// ResolveConfigPath resolves the config file path using precedence:
// (1) --config flag, (2) RNSCAFFOLD_CONFIG env, (3) ~/.rnscaffold/config.yaml
func ResolveConfigPath(opts ResolveConfigPathOptions) (ResolveConfigPathResult, error) {
	result := ResolveConfigPathResult{
		Shadowed: make(map[ConfigSource]string),
	}

	envValue := os.Getenv(EnvConfig)

	paths, err := DefaultPaths()
	if err != nil {
		return result, err
	}
	defaultPath := paths.ConfigFile

	switch {
	case opts.FlagValue != "":
		result.ConfigPath = opts.FlagValue
		result.Source = SourceFlag
		if envValue != "" {
			result.Shadowed[SourceEnv] = envValue
		}
		result.Shadowed[SourceDefault] = defaultPath
	case envValue != "":
		result.ConfigPath = envValue
		result.Source = SourceEnv
		result.Shadowed[SourceDefault] = defaultPath
	default:
		result.ConfigPath = defaultPath
		result.Source = SourceDefault
	}

	return result, nil
}

// LogResolvedValues logs configuration resolution at DEBUG level.
func LogResolvedValues(values []ResolvedValue) {
	for _, v := range values {
		output.Debug("config value resolved",
			"key", v.Key,
			"value", v.Value,
			"source", v.Source,
		)
		for source, shadowed := range v.Shadowed {
			output.Debug("  shadowed by higher precedence",
				"key", v.Key,
				"shadowed_source", source,
				"shadowed_value", shadowed,
			)
		}
	}
}
