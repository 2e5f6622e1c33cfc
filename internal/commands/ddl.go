package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"waiwaier/internal/ddl"
	"waiwaier/internal/prompts"
)

type ddlOptions struct {
	dialect    string
	noFK       bool
	noComments bool
	drop       bool
	output     string
	apply      bool
}

func registerDDLCmd(parent *cobra.Command, a *app) {
	opts := &ddlOptions{}
	cmd := &cobra.Command{
		Use:   "ddl",
		Short: "Generate CREATE TABLE statements",
		Example: `  waiwaier ddl --dialect postgresql -o schema.sql
  waiwaier ddl --dialect postgresql --apply --db postgres://localhost/app`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDDL(cmd.Context(), a, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.dialect, "dialect", "d", "generic", "SQL dialect (generic, mysql, postgresql, sqlite)")
	cmd.Flags().BoolVar(&opts.noFK, "no-fk", false, "Leave out foreign keys")
	cmd.Flags().BoolVar(&opts.noComments, "no-comments", false, "Leave out comments")
	cmd.Flags().BoolVar(&opts.drop, "drop", false, "Emit DROP TABLE IF EXISTS before each table")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write to file instead of stdout")
	cmd.Flags().BoolVar(&opts.apply, "apply", false, "Create the tables in the --db postgres database")
	parent.AddCommand(cmd)
}

func runDDL(ctx context.Context, a *app, opts *ddlOptions) error {
	d, err := ddl.ParseDialect(opts.dialect)
	if err != nil {
		return err
	}
	p, _, err := a.project()
	if err != nil {
		return err
	}
	gopts := ddl.Options{
		Dialect:     d,
		ForeignKeys: !opts.noFK,
		Comments:    !opts.noComments,
		DropTable:   opts.drop,
		GeneratedAt: time.Now(),
	}

	if opts.apply {
		return applyDDL(ctx, a, p.Tables, gopts)
	}

	out, err := ddl.Generate(p.Tables, gopts)
	if err != nil {
		return err
	}
	if opts.output == "" {
		_, err = fmt.Fprintln(a.out, out)
		return err
	}
	if err := os.WriteFile(opts.output, []byte(out+"\n"), 0o644); err != nil {
		return err
	}
	prompts.PrintResult(a.out, []prompts.ResultField{
		{Label: "File", Value: opts.output},
		{Label: "Dialect", Value: string(d)},
	}, "DDL written")
	return nil
}
