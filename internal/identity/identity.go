// Package identity derives the new project's identifier set from the raw
// project name supplied on the command line.
package identity

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	oerrors "github.com/rnscaffold/cli/internal/errors"
)

// DefaultBundlePrefix is the reverse-domain prefix of derived bundle identifiers.
const DefaultBundlePrefix = "com"

// ScopePrefix starts every package scope.
const ScopePrefix = "@"

var (
	lower = cases.Lower(language.Und)

	// prefixPattern accepts dot-separated lowercase segments starting with a letter.
	prefixPattern = regexp.MustCompile(`^[a-z][a-z0-9]*(\.[a-z][a-z0-9]*)*$`)
)

// Baseline is the identifier set baked into a template.
type Baseline struct {
	// Name is the placeholder project name (e.g. "ReactNativeBoilerplate").
	Name string `json:"name" yaml:"name"`

	// BundleID is the reverse-domain identifier, dot separated.
	BundleID string `json:"bundleId" yaml:"bundleId"`

	// LegacyBundleID is an older bundle identifier still present in some snapshots.
	LegacyBundleID string `json:"legacyBundleId" yaml:"legacyBundleId"`

	// Scope is the package-scope placeholder (e.g. "@my-rn-boilerplate").
	Scope string `json:"scope" yaml:"scope"`
}

// Set is the old/new identifier set threaded through the rewrite engine.
type Set struct {
	OldName        string `json:"oldName" yaml:"oldName"`
	OldBundleID    string `json:"oldBundleId" yaml:"oldBundleId"`
	LegacyBundleID string `json:"legacyBundleId" yaml:"legacyBundleId"`
	OldScope       string `json:"oldScope" yaml:"oldScope"`

	NewName     string `json:"newName" yaml:"newName"`
	NewBundleID string `json:"newBundleId" yaml:"newBundleId"`
	NewScope    string `json:"newScope" yaml:"newScope"`
}

// Normalize lower-cases s and strips every character outside [a-z0-9].
// It is idempotent.
func Normalize(s string) string {
	lowered := lower.String(s)

	var b strings.Builder
	b.Grow(len(lowered))
	for i := 0; i < len(lowered); i++ {
		c := lowered[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Option configures Derive.
type Option func(*deriveOptions)

type deriveOptions struct {
	bundlePrefix string
}

// WithBundlePrefix overrides DefaultBundlePrefix.
func WithBundlePrefix(prefix string) Option {
	return func(o *deriveOptions) {
		if prefix != "" {
			o.bundlePrefix = prefix
		}
	}
}

// ValidateBundlePrefix checks that prefix is a lowercase reverse-domain prefix.
func ValidateBundlePrefix(prefix string) error {
	if !prefixPattern.MatchString(prefix) {
		return oerrors.NewValidationError(
			fmt.Sprintf("invalid bundle prefix %q", prefix),
			"", "bundlePrefix",
			"Use lowercase dot-separated segments, e.g. \"com\" or \"com.example\".",
		)
	}
	return nil
}

// Derive computes the identifier set for rawName against the template baseline.
// An empty rawName fails with ErrMissingArgument before anything else happens.
// A name that normalizes to "" is accepted; see Set.EmptyNormalized.
func Derive(rawName string, base Baseline, opts ...Option) (Set, error) {
	if rawName == "" {
		return Set{}, oerrors.NewMissingArgumentError("project name",
			"Usage: rnscaffold <your-new-project-name>")
	}

	o := deriveOptions{bundlePrefix: DefaultBundlePrefix}
	for _, opt := range opts {
		opt(&o)
	}
	if err := ValidateBundlePrefix(o.bundlePrefix); err != nil {
		return Set{}, err
	}

	normalized := Normalize(rawName)

	return Set{
		OldName:        base.Name,
		OldBundleID:    base.BundleID,
		LegacyBundleID: base.LegacyBundleID,
		OldScope:       base.Scope,
		NewName:        rawName,
		NewBundleID:    o.bundlePrefix + "." + normalized,
		NewScope:       ScopePrefix + normalized,
	}, nil
}

// EmptyNormalized reports whether the new identifiers ended up with an empty
// final segment because the raw name held no [a-z0-9] characters.
func (s Set) EmptyNormalized() bool {
	return strings.HasSuffix(s.NewBundleID, ".") || s.NewScope == ScopePrefix
}

// OldBundleSegments returns the old bundle identifier split on dots.
func (s Set) OldBundleSegments() []string {
	return strings.Split(s.OldBundleID, ".")
}

// NewBundleSegments returns the new bundle identifier split on dots.
func (s Set) NewBundleSegments() []string {
	return strings.Split(s.NewBundleID, ".")
}
