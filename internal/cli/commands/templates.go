package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/woolball-xyz/woolball-cli/internal/cli/config"
	"github.com/woolball-xyz/woolball-cli/internal/cli/ui"
	"github.com/woolball-xyz/woolball-cli/internal/templates"
)

func newTemplatesCommand(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "templates",
		Aliases: []string{"template"},
		Short:   "Inspect the available integration templates",
		Long: `Inspect the integration templates woolball can download.

Examples:
  woolball templates list
  woolball templates show SPEECH-TO-TEXT NODEJS express`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List available templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTemplatesList(cmd, g)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show <feature> <stack> <variant>",
		Short: "Show the files a template writes",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTemplatesShow(cmd, g, templates.Selection{Feature: args[0], Stack: args[1], Variant: args[2]})
		},
	})

	return cmd
}

func loadRegistry(cmd *cobra.Command, g *globalOptions) (*templates.Registry, bool, error) {
	cfg, err := config.Load(g.configFile)
	if err != nil {
		fmt.Fprint(cmd.ErrOrStderr(), ui.ConfigError(err.Error(), g.noColor))
		return nil, false, &reportedError{err: err}
	}
	registry, err := templates.Load(cfg.Templates.BaseURL)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load templates: %w", err)
	}
	return registry, g.noColor || cfg.NoColor, nil
}

func runTemplatesList(cmd *cobra.Command, g *globalOptions) error {
	registry, noColor, err := loadRegistry(cmd, g)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	ui.Header(out, "Available Templates:", noColor)
	fmt.Fprintln(out)

	table := ui.NewTable(out, noColor, "FEATURE", "STACK", "VARIANT", "DESTINATION")
	for _, sel := range registry.Selections() {
		m, err := registry.Resolve(sel)
		if err != nil {
			return err
		}
		table.AddRow(sel.Feature, sel.Stack, sel.Variant, m.DestinationRoot)
	}
	table.Render()

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Use 'woolball new' to add one to your project.")
	return nil
}

func runTemplatesShow(cmd *cobra.Command, g *globalOptions, sel templates.Selection) error {
	registry, noColor, err := loadRegistry(cmd, g)
	if err != nil {
		return err
	}

	m, err := registry.Resolve(sel)
	if err != nil {
		fmt.Fprint(cmd.ErrOrStderr(), ui.UnknownTemplateError(sel.String(), suggestFor(registry, sel), noColor))
		return &reportedError{err: err}
	}

	out := cmd.OutOrStdout()
	ui.Header(out, fmt.Sprintf("%s %s/%s", m.Feature, m.Kind.Stack(), m.Kind.Variant()), noColor)
	if m.Description != "" {
		fmt.Fprintln(out, m.Description)
	}
	fmt.Fprintln(out)

	ui.KeyValues(out, noColor,
		[2]string{"Kind", string(m.Kind)},
		[2]string{"Destination", m.DestinationRoot},
		[2]string{"Files", fmt.Sprint(len(m.Entries))},
	)
	fmt.Fprintln(out)

	table := ui.NewTable(out, noColor, "FILE", "API KEY", "SOURCE")
	for _, rel := range m.RelPaths() {
		key := ""
		if m.Substitutable(rel) {
			key = "yes"
		}
		table.AddRow(rel, key, m.Entries[rel])
	}
	table.Render()

	if hints := m.Kind.Hints(m.DestinationRoot); len(hints) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Next steps after install: "+strings.Join(hints, "; "))
	}
	return nil
}
