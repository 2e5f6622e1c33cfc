package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"waiwaier/internal/prompts"
	"waiwaier/internal/schema"
)

type lintOptions struct {
	strict bool
}

func registerLintCmd(parent *cobra.Command, a *app) {
	opts := &lintOptions{}
	cmd := &cobra.Command{
		Use:   "lint",
		Short: "Check the schema for problems",
		Long: `Report dangling references, duplicate columns, invalid patterns and
other problems. Issues never block an export.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(a, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Exit with an error when issues are found")
	parent.AddCommand(cmd)
}

func runLint(a *app, opts *lintOptions) error {
	p, _, err := a.project()
	if err != nil {
		return err
	}
	issues := schema.Lint(p.Tables)
	if len(issues) == 0 {
		prompts.PrintResult(a.out, nil, "No issues found")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TABLE\tCOLUMN\tCODE\tMESSAGE")
	for _, is := range issues {
		col := is.Column
		if col == "" {
			col = "-"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", is.Table, col, is.Code, is.Message)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if opts.strict {
		return fmt.Errorf("%d lint issue(s)", len(issues))
	}
	return nil
}
