package commands

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"waiwaier/internal/prompts"
	"waiwaier/internal/workbook"
)

type exportOptions struct {
	output string
}

func registerExportCmd(parent *cobra.Command, a *app) {
	opts := &exportOptions{}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the AppSheet workbook",
		Long: `Write one sheet per table with AppSheet notes on the header cells.
Tables whose exportTargets leave out "excel" are skipped.`,
		Example: `  waiwaier export --schema project.yaml -o app.xlsx
  waiwaier export --schema tables/ --samples samples.yaml --include-data`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(a, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file (default <project>.xlsx)")
	parent.AddCommand(cmd)
}

func runExport(a *app, opts *exportOptions) error {
	p, settings, err := a.project()
	if err != nil {
		return err
	}
	samples, err := a.samples()
	if err != nil {
		return err
	}

	out := opts.output
	if out == "" {
		name := p.Name
		if name == "" {
			name = "export"
		}
		out = name + ".xlsx"
	}

	wopts := workbook.Options{
		IncludeData:   a.cfg.IncludeData,
		Samples:       samples,
		MaxSampleRows: a.cfg.MaxSampleRows,
	}
	sum, err := workbook.Save(out, p.Tables, settings, wopts)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	if abs, err := filepath.Abs(out); err == nil {
		out = abs
	}
	prompts.PrintResult(a.out, []prompts.ResultField{
		{Label: "File", Value: out},
		{Label: "Sheets", Value: strconv.Itoa(sum.Sheets)},
		{Label: "Notes", Value: strconv.Itoa(sum.Notes)},
	}, "Export completed")
	return nil
}
