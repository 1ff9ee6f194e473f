// Package templates describes the layout of the project template that
// rnscaffold clones and rewrites. The layout is fixed data embedded in the
// binary; it is not a templating language.
package templates

import (
	_ "embed"
	"fmt"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	oerrors "github.com/rnscaffold/cli/internal/errors"
	"github.com/rnscaffold/cli/internal/identity"
)

//go:embed react-native.yaml
var reactNativeYAML []byte

// NamePlaceholder is replaced by a project name in descriptor paths.
const NamePlaceholder = "{name}"

// Scheme locates the shared Xcode scheme whose file name embeds the project name.
type Scheme struct {
	// Dir is expanded with the new project name.
	Dir string `yaml:"dir"`

	// File is expanded with the old name (source) and new name (target).
	File string `yaml:"file"`
}

// Descriptor is the fixed layout of a template. All paths are slash
// separated and relative to the project root.
type Descriptor struct {
	Name        string            `yaml:"name"`
	URL         string            `yaml:"url"`
	Identifiers identity.Baseline `yaml:"identifiers"`

	// GenericFiles get name, bundle id and legacy alias substitution.
	GenericFiles []string `yaml:"genericFiles"`

	// SourceRoot holds the package directories named after the bundle id.
	SourceRoot string `yaml:"sourceRoot"`

	// RelocatedFiles live inside the relocated package directory.
	RelocatedFiles []string `yaml:"relocatedFiles"`

	// NameOnlyFiles get the project name substituted and nothing else.
	NameOnlyFiles []string `yaml:"nameOnlyFiles"`

	// ScopeFiles get the package scope substituted.
	ScopeFiles []string `yaml:"scopeFiles"`

	// Containers are platform project folders renamed after the project.
	Containers []string `yaml:"containers"`

	Scheme Scheme `yaml:"scheme"`
}

// Default returns the built-in React Native descriptor.
func Default() (*Descriptor, error) {
	return Parse(reactNativeYAML)
}

// Parse decodes and validates a descriptor.
func Parse(data []byte) (*Descriptor, error) {
	var d Descriptor
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decoding template descriptor: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Expand replaces NamePlaceholder in p with name.
func Expand(p, name string) string {
	return strings.ReplaceAll(p, NamePlaceholder, name)
}

// Validate checks required fields and that every path stays inside the project.
func (d *Descriptor) Validate() error {
	ids := d.Identifiers
	switch {
	case ids.Name == "":
		return invalid("identifiers.name", "template name placeholder is required")
	case strings.Count(ids.BundleID, ".") < 1:
		return invalid("identifiers.bundleId", "bundle identifier needs at least two segments")
	case !strings.HasPrefix(ids.Scope, identity.ScopePrefix):
		return invalid("identifiers.scope", "package scope must start with @")
	case d.SourceRoot == "":
		return invalid("sourceRoot", "source root is required")
	case d.Scheme.Dir == "" || d.Scheme.File == "":
		return invalid("scheme", "scheme dir and file are required")
	}

	groups := map[string][]string{
		"genericFiles":   d.GenericFiles,
		"relocatedFiles": d.RelocatedFiles,
		"nameOnlyFiles":  d.NameOnlyFiles,
		"scopeFiles":     d.ScopeFiles,
		"containers":     d.Containers,
		"sourceRoot":     {d.SourceRoot},
		"scheme":         {d.Scheme.Dir, d.Scheme.File},
	}
	for field, paths := range groups {
		for _, p := range paths {
			if !isLocal(p) {
				return invalid(field, fmt.Sprintf("path %q must be relative and stay inside the project", p))
			}
		}
	}

	return nil
}

func isLocal(p string) bool {
	if p == "" || path.IsAbs(p) || strings.Contains(p, `\`) {
		return false
	}
	clean := path.Clean(p)
	return clean != ".." && !strings.HasPrefix(clean, "../")
}

func invalid(field, msg string) error {
	return oerrors.NewValidationError(msg, "react-native.yaml", field,
		"The embedded template descriptor is inconsistent; this is a build defect.")
}
