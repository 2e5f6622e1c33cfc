package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"waiwaier/internal/notes"
	"waiwaier/internal/prompts"
	"waiwaier/internal/schema"
)

type previewOptions struct {
	jsonOut bool
}

func registerPreviewCmd(parent *cobra.Command, a *app) {
	opts := &previewOptions{}
	cmd := &cobra.Command{
		Use:   "preview [table]",
		Short: "Show the note each column will get",
		Example: `  waiwaier preview
  waiwaier preview Orders --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table := ""
			if len(args) == 1 {
				table = args[0]
			}
			return runPreview(a, opts, table)
		},
	}
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Print table id -> column id -> note as JSON")
	parent.AddCommand(cmd)
}

func runPreview(a *app, opts *previewOptions, table string) error {
	p, settings, err := a.project()
	if err != nil {
		return err
	}

	tables := p.Tables
	if table != "" {
		t, ok := schema.TableByName(p.Tables, table)
		if !ok {
			return fmt.Errorf("table %q not found", table)
		}
		tables = []schema.Table{*t}
	}

	if opts.jsonOut {
		preview := notes.Preview(p.Tables, settings)
		out := make(map[string]map[string]string, len(tables))
		for _, t := range tables {
			out[t.ID] = preview[t.ID]
		}
		enc := json.NewEncoder(a.out)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	for i := range tables {
		t := &tables[i]
		fmt.Fprintln(a.out, prompts.Header(t.Name))
		w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
		for j := range t.Columns {
			col := &t.Columns[j]
			n := notes.ColumnNote(t, col, p.Tables, settings)
			text := prompts.Muted("-")
			if n.Attach() {
				text = n.Text
			}
			_, _ = fmt.Fprintf(w, "  %s\t%s\t%s\n", col.Name, col.Type, text)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Fprintln(a.out)
	}
	return nil
}
