package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/woolball-xyz/woolball-cli/internal/cli/config"
	"github.com/woolball-xyz/woolball-cli/internal/cli/ui"
	"github.com/woolball-xyz/woolball-cli/internal/fetch"
	"github.com/woolball-xyz/woolball-cli/internal/logging"
	"github.com/woolball-xyz/woolball-cli/internal/materialize"
	"github.com/woolball-xyz/woolball-cli/internal/templates"
	"github.com/woolball-xyz/woolball-cli/internal/utils"
)

const cancelOption = "Cancel"

// ErrNotNextJSProject is returned when the Next.js template is requested
// outside a Next.js project
var ErrNotNextJSProject = errors.New("not a Next.js project directory")

// ErrAPIKeyRequired is returned when no API key was given
var ErrAPIKeyRequired = errors.New("an API key is required")

type newOptions struct {
	feature string
	stack   string
	variant string
	apiKey  string
	yes     bool
	atomic  bool
	workdir string
}

// NewNewCommand creates the new command
func NewNewCommand() *cobra.Command {
	return newNewCommand(&globalOptions{}, surveyPrompter{})
}

func newNewCommand(g *globalOptions, prompter Prompter) *cobra.Command {
	opts := &newOptions{}

	cmd := &cobra.Command{
		Use:     "new",
		Aliases: []string{"init"},
		Short:   "Add a Woolball integration template to your project",
		Long: `Download an integration template, write it into your project and fill in
your API key.

Anything not given as a flag is asked for interactively. The API key can
also come from the WOOLBALL_API_KEY environment variable.

Examples:
  woolball new
  woolball new --feature SPEECH-TO-TEXT --stack NODEJS --variant express
  WOOLBALL_API_KEY=... woolball new --stack DOTNET --variant minimal-api --yes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNew(cmd, g, prompter, opts)
		},
	}

	cmd.Flags().StringVar(&opts.feature, "feature", "", "Feature to implement (e.g. SPEECH-TO-TEXT)")
	cmd.Flags().StringVar(&opts.stack, "stack", "", "Technology stack (DOTNET, NODEJS)")
	cmd.Flags().StringVar(&opts.variant, "variant", "", "Template variant (e.g. self-contained, express)")
	cmd.Flags().StringVar(&opts.apiKey, "api-key", "", "Woolball API key")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Overwrite an existing destination without asking")
	cmd.Flags().BoolVar(&opts.atomic, "atomic", false, "Write files only after every download succeeded")
	cmd.Flags().StringVarP(&opts.workdir, "workdir", "C", ".", "Project directory to scaffold into")

	return cmd
}

func runNew(cmd *cobra.Command, g *globalOptions, prompter Prompter, opts *newOptions) error {
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	cfg, err := config.Load(g.configFile)
	if err != nil {
		fmt.Fprint(errOut, ui.ConfigError(err.Error(), g.noColor))
		return &reportedError{err: err}
	}
	noColor := g.noColor || cfg.NoColor

	logger, err := newLogger(cfg, g.verbose, errOut)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	registry, err := templates.Load(cfg.Templates.BaseURL)
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}

	ui.Banner(out, noColor)

	sel, err := selectTemplate(out, prompter, registry, opts, noColor)
	if errors.Is(err, errInterrupted) || (err == nil && sel == nil) {
		fmt.Fprintln(out, "bye.")
		return nil
	}

	var manifest *templates.Manifest
	if err == nil {
		manifest, err = registry.Resolve(*sel)
	}
	if err != nil {
		var unknown *templates.UnknownSelectionError
		if errors.As(err, &unknown) {
			fmt.Fprint(errOut, ui.UnknownTemplateError(unknown.Selection.String(), suggestFor(registry, unknown.Selection), noColor))
			return &reportedError{err: err}
		}
		return err
	}

	workdir := opts.workdir
	if workdir == "" {
		workdir = "."
	}
	manifest.DestinationRoot = filepath.Join(workdir, manifest.DestinationRoot)

	if err := checkProject(errOut, workdir, manifest.Kind, noColor); err != nil {
		return err
	}

	apiKey := opts.apiKey
	if apiKey == "" {
		apiKey = cfg.APIKey
	}
	if apiKey == "" {
		apiKey, err = prompter.Password("Enter your API key:")
		if errors.Is(err, errInterrupted) {
			fmt.Fprintln(out, "bye.")
			return nil
		}
		if err != nil {
			return err
		}
	}
	if apiKey == "" {
		return ErrAPIKeyRequired
	}

	proceed, err := confirmOverwrite(prompter, workdir, manifest, opts.yes)
	if errors.Is(err, errInterrupted) {
		proceed, err = false, nil
	}
	if err != nil {
		return err
	}
	if !proceed {
		yellow := color.New(color.FgYellow)
		if noColor {
			yellow.DisableColor()
		}
		yellow.Fprintln(out, "\n⚠ Operation canceled by user.")
		return nil
	}

	logger = logger.With(
		zap.String("run_id", uuid.NewString()),
		zap.String("selection", sel.String()),
		logging.Secret("api_key", apiKey),
	)

	fetcher := fetch.NewHTTPFetcher(
		fetch.WithTimeout(cfg.HTTP.Timeout),
		fetch.WithUserAgent(cfg.HTTP.UserAgent+"/"+Version),
		fetch.WithMaxBodySize(cfg.HTTP.MaxBodyBytes),
		fetch.WithLogger(logger),
	)
	defer fetcher.CloseIdleConnections()

	bar := ui.NewProgressBar(out, ui.ProgressBarOptions{
		Total:   len(manifest.Entries),
		Message: "Downloading Woolball template...",
		NoColor: noColor,
	})

	atomic := opts.atomic || cfg.Materialize.Atomic
	mopts := []materialize.Option{
		materialize.WithLogger(logger),
		materialize.WithConcurrency(cfg.Materialize.Concurrency),
		materialize.WithProgress(func(string) { bar.Add(1) }),
	}
	if atomic {
		mopts = append(mopts, materialize.WithAtomicCommit())
	}

	result, err := materialize.New(fetcher, mopts...).Materialize(cmd.Context(), manifest, apiKey)
	bar.Done()
	if err != nil {
		partial := !atomic || errors.Is(err, materialize.ErrFilesystem)
		fmt.Fprint(errOut, ui.DownloadError(err, manifest.DestinationRoot, partial, noColor))
		return &reportedError{err: err}
	}

	printResult(out, result, manifest.Kind.Hints(manifest.DestinationRoot), noColor)
	return nil
}

// selectTemplate fills in the selection from flags and prompts. A nil
// selection means the user chose to cancel.
func selectTemplate(out io.Writer, prompter Prompter, registry *templates.Registry, opts *newOptions, noColor bool) (*templates.Selection, error) {
	sel := templates.Selection{
		Feature: opts.feature,
		Stack:   opts.stack,
		Variant: opts.variant,
	}

	if sel.Feature == "" {
		features := registry.Features()
		if len(features) == 1 && (sel.Stack != "" || sel.Variant != "") {
			sel.Feature = features[0]
		} else {
			choice, err := prompter.Select("What feature do you want to implement?", append(features, cancelOption))
			if err != nil {
				return nil, err
			}
			if choice == cancelOption {
				return nil, nil
			}
			sel.Feature = choice
		}
	}

	ui.KeyHint(out, noColor)

	if sel.Stack == "" {
		choice, err := choose(prompter, "Select your technology stack:", registry.Stacks(sel.Feature), sel)
		if err != nil {
			return nil, err
		}
		sel.Stack = choice
	}

	if sel.Variant == "" {
		choice, err := choose(prompter, "Select template type:", registry.Variants(sel.Feature, sel.Stack), sel)
		if err != nil {
			return nil, err
		}
		sel.Variant = choice
	}

	return &sel, nil
}

// choose prompts for one of options; an empty menu means the part of sel
// chosen so far is already unknown
func choose(prompter Prompter, message string, options []string, sel templates.Selection) (string, error) {
	if len(options) == 0 {
		return "", &templates.UnknownSelectionError{Selection: sel}
	}
	return prompter.Select(message, options)
}

// suggestFor offers close matches for the first part of sel that is unknown
func suggestFor(registry *templates.Registry, sel templates.Selection) []string {
	if len(registry.Stacks(sel.Feature)) == 0 {
		return ui.FindSimilar(sel.Feature, registry.Features())
	}
	if len(registry.Variants(sel.Feature, sel.Stack)) == 0 {
		return ui.FindSimilar(sel.Stack, registry.Stacks(sel.Feature))
	}
	return ui.FindSimilar(sel.Variant, registry.Variants(sel.Feature, sel.Stack))
}

// checkProject inspects the working directory for the project type a kind
// expects
func checkProject(w io.Writer, workdir string, kind templates.Kind, noColor bool) error {
	switch kind.ProjectCheck() {
	case templates.ProjectCheckDotnet:
		matches, err := utils.FindFilesWithExt(workdir, ".csproj")
		if err != nil {
			return fmt.Errorf("failed to inspect %s: %w", workdir, err)
		}
		if len(matches) == 0 {
			fmt.Fprint(w, ui.Warning("No .csproj files found in this directory. This may not be a .NET project root, proceed with caution.", noColor))
		}
	case templates.ProjectCheckNextJS:
		if !exists(filepath.Join(workdir, "next.config.js")) && !exists(filepath.Join(workdir, "package.json")) {
			ui.WriteError(w, ui.ErrorOptions{
				Level:        ui.ErrorLevelError,
				Problem:      "This is not a Next.js project directory.",
				HelpCommands: []string{"Run this command in the root of your Next.js project"},
				NoColor:      noColor,
			})
			return &reportedError{err: ErrNotNextJSProject}
		}
	}
	return nil
}

// confirmOverwrite asks before writing into an existing destination root.
// When the root is the working directory itself it always exists, so the
// question is asked only if one of the manifest's files is already there.
func confirmOverwrite(prompter Prompter, workdir string, manifest *templates.Manifest, yes bool) (bool, error) {
	if yes {
		return true, nil
	}

	root := manifest.DestinationRoot
	if filepath.Clean(root) == filepath.Clean(workdir) {
		for _, rel := range manifest.RelPaths() {
			p, err := templates.JoinWithin(root, rel)
			if err != nil {
				return false, err
			}
			if exists(p) {
				return prompter.Confirm("Template files already exist in this project. Do you want to overwrite?", false)
			}
		}
		return true, nil
	}

	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return true, nil
	}
	return prompter.Confirm("The directory already exists. Do you want to overwrite?", false)
}

func printResult(w io.Writer, result *materialize.Result, hints []string, noColor bool) {
	files := result.Sorted()
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, ui.FormatSuccess("Files created at:", noColor))
	ui.List(w, paths, false, noColor)

	if len(hints) > 0 {
		fmt.Fprintln(w)
		ui.Header(w, "Next steps:", noColor)
		ui.List(w, hints, true, noColor)
	}
}

func newLogger(cfg *config.Config, verbose bool, w io.Writer) (*zap.Logger, error) {
	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	logger, err := logging.New(logging.Options{
		Level:  level,
		Format: cfg.Log.Format,
		Output: w,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
