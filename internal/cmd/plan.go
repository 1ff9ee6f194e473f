package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rnscaffold/cli/internal/cmdtypes"
	"github.com/rnscaffold/cli/internal/config"
	oerrors "github.com/rnscaffold/cli/internal/errors"
	"github.com/rnscaffold/cli/internal/identity"
	"github.com/rnscaffold/cli/internal/output"
	"github.com/rnscaffold/cli/internal/rewrite"
	"github.com/rnscaffold/cli/internal/templates"
)

// planDocument is what `plan` prints.
type planDocument struct {
	Template    string             `json:"template" yaml:"template"`
	Identifiers identity.Set       `json:"identifiers" yaml:"identifiers"`
	Steps       []rewrite.StepView `json:"steps" yaml:"steps"`
}

// NewPlanCmd creates the plan command.
func NewPlanCmd(gc *cmdtypes.GlobalConfig) *cobra.Command {
	var (
		outputFlag       string
		bundlePrefixFlag string
	)

	c := &cobra.Command{
		Use:   "plan <project-name>",
		Short: "Show the identifiers and rewrite steps for a project name",
		Long: `Show the identifier set derived from a project name and the ordered
list of rewrite steps that would be applied to the template.

Nothing is fetched or written.

Examples:
  # Table of steps
  rnscaffold plan MyApp

  # Machine-readable plan
  rnscaffold plan MyApp -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runPlan(c, args, gc, outputFlag, bundlePrefixFlag)
		},
	}

	c.Flags().StringVarP(&outputFlag, "output", "o", "table",
		"Output format: "+strings.Join(output.ValidFormats(), ", "))
	c.Flags().StringVar(&bundlePrefixFlag, "bundle-prefix", "",
		"Bundle identifier prefix (env: RNSCAFFOLD_BUNDLE_PREFIX)")

	return c
}

func runPlan(c *cobra.Command, args []string, gc *cmdtypes.GlobalConfig, outputFmt, bundlePrefix string) error {
	format := output.ParseOutputFormat(outputFmt)
	if !format.IsValid() {
		return exitError(oerrors.NewValidationError(
			fmt.Sprintf("invalid output format %q", outputFmt), "", "output",
			"Valid formats: "+strings.Join(output.ValidFormats(), ", ")))
	}

	name := ""
	if len(args) > 0 {
		name = args[0]
	}

	if gc.LoadErr != nil {
		return exitError(gc.LoadErr)
	}
	if c.Flags().Changed("bundle-prefix") {
		gc.Loader.SetFlag(config.KeyBundlePrefix, bundlePrefix)
	}
	cfg, err := gc.Loader.Load()
	if err != nil {
		return exitError(err)
	}

	desc, err := templates.Default()
	if err != nil {
		return exitError(err)
	}
	ids, err := identity.Derive(name, desc.Identifiers, identity.WithBundlePrefix(cfg.BundlePrefix))
	if err != nil {
		return exitError(err)
	}

	doc := planDocument{
		Template:    cfg.TemplateURL,
		Identifiers: ids,
		Steps:       rewrite.Describe(rewrite.Plan(desc, ids)),
	}

	out := c.OutOrStdout()
	switch format {
	case output.FormatYAML:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return exitError(fmt.Errorf("encoding plan: %w", err))
		}
		return enc.Close()
	case output.FormatJSON:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return exitError(fmt.Errorf("encoding plan: %w", err))
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	default:
		_, err := fmt.Fprintln(out, renderPlanTable(doc))
		return err
	}
}

func renderPlanTable(doc planDocument) string {
	ids := output.NewTable("IDENTIFIER", "OLD", "NEW").
		Row("name", doc.Identifiers.OldName, doc.Identifiers.NewName).
		Row("bundle id", doc.Identifiers.OldBundleID, doc.Identifiers.NewBundleID).
		Row("legacy bundle id", doc.Identifiers.LegacyBundleID, doc.Identifiers.NewBundleID).
		Row("scope", doc.Identifiers.OldScope, doc.Identifiers.NewScope)

	steps := output.NewTable("#", "PHASE", "KIND", "PATH", "CHANGE")
	for _, s := range doc.Steps {
		steps.Row(fmt.Sprint(s.Index), s.Phase, string(s.Kind), s.Path, describeChange(s.RuleView))
	}

	return ids.String() + "\n\n" + steps.String()
}

func describeChange(v rewrite.RuleView) string {
	var parts []string
	if v.From != "" {
		parts = append(parts, "from "+v.From)
	}
	for _, r := range v.Replacements {
		parts = append(parts, r.Old+" -> "+r.New)
	}
	for _, then := range v.Then {
		for _, r := range then.Replacements {
			parts = append(parts, "then "+r.Old+" -> "+r.New)
		}
	}
	return strings.Join(parts, "\n")
}
