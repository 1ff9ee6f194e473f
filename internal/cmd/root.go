// Package cmd provides CLI command implementations.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	configcmd "github.com/rnscaffold/cli/internal/cmd/config"
	"github.com/rnscaffold/cli/internal/cmdtypes"
	"github.com/rnscaffold/cli/internal/config"
	oerrors "github.com/rnscaffold/cli/internal/errors"
	"github.com/rnscaffold/cli/internal/install"
	"github.com/rnscaffold/cli/internal/output"
	"github.com/rnscaffold/cli/internal/rewrite"
	"github.com/rnscaffold/cli/internal/scaffold"
	"github.com/rnscaffold/cli/internal/vcs"
)

// createFlags are the flags of the root (create) command.
type createFlags struct {
	template      string
	dir           string
	bundlePrefix  string
	pods          string
	skipInstall   bool
	skipGit       bool
	transactional bool
	dryRun        bool
}

// NewRootCmd creates the root command for the rnscaffold CLI. Given a
// project name it creates the project.
func NewRootCmd() *cobra.Command {
	gc := &cmdtypes.GlobalConfig{}

	var (
		configFlag     string
		verboseFlag    bool
		timestampsFlag bool
		cf             createFlags
	)

	rootCmd := &cobra.Command{
		Use:   "rnscaffold <project-name>",
		Short: "Create a React Native app from the boilerplate template",
		Long: `rnscaffold clones the React Native boilerplate and renames it: project
name, bundle identifier, Android package directories, iOS project folders
and the workspace package scope are all rewritten for the new project.

The bundle identifier is <bundle-prefix>.<name>, the package scope is
@<name>, where <name> is the project name lowercased with everything but
letters and digits removed.

The names of the subcommands (plan, config, version) cannot be used as
project names.

Examples:
  # Create ./MyApp
  rnscaffold MyApp

  # Preview the rewrite without creating anything
  rnscaffold MyApp --dry-run

  # Use a local template checkout and skip the package managers
  rnscaffold MyApp --template ../react-native-boilerplate --skip-install`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(c *cobra.Command, _ []string) error {
			return initializeGlobals(c, gc, configFlag, verboseFlag, timestampsFlag)
		},
		RunE: func(c *cobra.Command, args []string) error {
			return runCreate(c, args, gc, &cf)
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Path to config file (env: RNSCAFFOLD_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&timestampsFlag, "timestamps", true, "Show timestamps in log output")

	f := rootCmd.Flags()
	f.StringVar(&cf.template, "template", "", "Template git URL or local directory (env: RNSCAFFOLD_TEMPLATE_URL)")
	f.StringVar(&cf.dir, "dir", "", "Parent directory of the new project (default: current directory)")
	f.StringVar(&cf.bundlePrefix, "bundle-prefix", "", "Bundle identifier prefix (env: RNSCAFFOLD_BUNDLE_PREFIX)")
	f.StringVar(&cf.pods, "pods", "", "When to run pod install: auto, always, never (env: RNSCAFFOLD_PODS)")
	f.BoolVar(&cf.skipInstall, "skip-install", false, "Skip npm and CocoaPods installation")
	f.BoolVar(&cf.skipGit, "skip-git", false, "Do not initialize a git repository")
	f.BoolVar(&cf.transactional, "transactional", false, "Rewrite a staging copy and swap it in only on success")
	f.BoolVar(&cf.dryRun, "dry-run", false, "Show the rewrite as diffs without creating the project")

	rootCmd.AddCommand(
		NewPlanCmd(gc),
		configcmd.NewConfigCmd(gc),
		NewVersionCmd(gc),
	)

	return rootCmd
}

// initializeGlobals resolves the config file, loads configuration and sets up logging.
func initializeGlobals(c *cobra.Command, gc *cmdtypes.GlobalConfig, configFlag string, verbose, timestamps bool) error {
	resolved, err := config.ResolveConfigPath(config.ResolveConfigPathOptions{FlagValue: configFlag})
	if err != nil {
		return exitError(oerrors.Wrap(oerrors.ErrNotFound, "could not determine home directory"))
	}

	gc.ConfigPath = resolved.ConfigPath
	gc.ConfigSource = resolved.Source
	gc.Verbose = verbose
	gc.Loader = config.NewLoader()

	if c.Flags().Changed("timestamps") {
		gc.Loader.SetFlag(config.KeyLogTimestamps, timestamps)
	}

	// Commands that do not need the configuration still run with a broken file.
	cfg := config.DefaultConfig()
	if err := gc.Loader.ReadFile(gc.ConfigPath); err != nil {
		gc.LoadErr = err
	} else if loaded, err := gc.Loader.Load(); err != nil {
		gc.LoadErr = err
	} else {
		cfg = loaded
	}
	gc.Config = cfg

	output.SetupLogging(output.LogConfig{
		Verbose:    verbose,
		Timestamps: cfg.Log.Timestamps,
	})

	if gc.LoadErr != nil {
		output.Debug("config load error", "path", gc.ConfigPath, "error", gc.LoadErr)
	}
	if verbose {
		output.Debug("initializing CLI", "config", gc.ConfigPath, "source", gc.ConfigSource)
		config.LogResolvedValues(gc.Loader.Resolved())
	}

	return nil
}

func runCreate(c *cobra.Command, args []string, gc *cmdtypes.GlobalConfig, cf *createFlags) error {
	if len(args) == 0 || args[0] == "" {
		_ = c.Usage()
		return exitError(oerrors.NewMissingArgumentError("project name",
			"Usage: rnscaffold <your-new-project-name>"))
	}
	name := args[0]

	if gc.LoadErr != nil {
		return exitError(gc.LoadErr)
	}

	setFlag := func(flag, key string, value any) {
		if c.Flags().Changed(flag) {
			gc.Loader.SetFlag(key, value)
		}
	}
	setFlag("template", config.KeyTemplateURL, cf.template)
	setFlag("bundle-prefix", config.KeyBundlePrefix, cf.bundlePrefix)
	setFlag("pods", config.KeyInstallPods, cf.pods)
	setFlag("skip-install", config.KeyInstallSkip, cf.skipInstall)
	setFlag("skip-git", config.KeyGitSkip, cf.skipGit)

	cfg, err := gc.Loader.Load()
	if err != nil {
		return exitError(err)
	}

	s, err := newScaffolder(cfg, gc.Verbose)
	if err != nil {
		return exitError(err)
	}

	res, err := s.Run(c.Context(), scaffold.Options{
		Name:          name,
		Dir:           cf.dir,
		TemplateURL:   cfg.TemplateURL,
		BundlePrefix:  cfg.BundlePrefix,
		SkipInstall:   cfg.Install.Skip,
		SkipGit:       cfg.Git.Skip,
		Transactional: cf.transactional,
		DryRun:        cf.dryRun,
	})
	if err != nil {
		return exitError(err)
	}

	if cf.dryRun {
		printPreview(name, res)
		return nil
	}
	printSummary(name, cf.dir, res, gc.Verbose)
	return nil
}

// newScaffolder wires the real collaborators from configuration.
func newScaffolder(cfg *config.Config, verbose bool) (*scaffold.Scaffolder, error) {
	policy, err := install.ParsePodPolicy(cfg.Install.Pods)
	if err != nil {
		return nil, err
	}

	runner := install.ExecRunner{}
	if verbose && !output.IsTTY() {
		runner.Output = os.Stderr
	}

	return scaffold.New(scaffold.Deps{
		Installers: []install.Installer{
			install.NewNpmInstaller(runner),
			install.NewPodInstaller(runner, policy),
		},
		VCS: vcs.NewGitReinitializer(
			vcs.WithAuthor(cfg.Git.AuthorName, cfg.Git.AuthorEmail),
			vcs.WithMessage(cfg.Git.Message),
		),
	})
}

func printSummary(name, dir string, res *scaffold.Result, verbose bool) {
	output.Println("")
	output.Println(output.FormatCheckmark("Created " + output.StyleNoun.Render(name)))
	output.Println(output.FormatCheck("Bundle identifier", res.IDs.NewBundleID))
	output.Println(output.FormatCheck("Package scope", res.IDs.NewScope))
	if c := res.Commit; c != "" {
		if len(c) > 7 {
			c = c[:7]
		}
		output.Println(output.FormatCheck("Git repository", c))
	}

	if verbose && res.Report != nil {
		output.Println("")
		for _, s := range res.Report.Steps {
			output.Println(output.FormatStepLine(string(s.Kind), s.Path, string(s.Status)))
		}
	}

	if n := len(res.Warnings); n > 0 {
		output.Println("")
		output.Println(output.StyleDim.Render(fmt.Sprintf("Finished with %d warning(s); see the log above.", n)))
	}

	cdPath := name
	if dir != "" {
		cdPath = filepath.Join(dir, name)
	}
	output.Println("")
	output.Println(output.StyleSummary.Render("Next steps:"))
	output.Println("  cd " + cdPath)
	output.Println("  npm run ios # or npm run android")
}

func printPreview(name string, res *scaffold.Result) {
	files := make(map[string]string)
	for _, ch := range res.Preview.Changes {
		switch {
		case ch.MovedFrom != "":
			files[ch.Path] = "moved from " + ch.MovedFrom
		case ch.Diff != "":
			files[ch.Path] = "modified"
		}
	}

	output.Print(output.RenderFileDiffs(res.Preview.Changes))
	if len(files) > 0 {
		output.Println("")
		output.Println(output.RenderFileTree(name, files))
	}

	skipped := 0
	if res.Report != nil {
		skipped = res.Report.Count(rewrite.StatusSkipped)
	}
	output.Debug("dry run complete", "changed", len(files), "skipped", skipped)
	output.Println(output.StyleDim.Render("Dry run: nothing was written."))
}

// exitError attaches the exit code matching err's category.
func exitError(err error) error {
	return &oerrors.ExitError{Code: oerrors.ExitCodeFromError(err), Err: err}
}
