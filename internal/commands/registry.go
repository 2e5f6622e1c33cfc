package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"waiwaier/internal/notes"
	"waiwaier/internal/prompts"
)

type registryOptions struct {
	status   string
	category string
}

func registerRegistryCmd(parent *cobra.Command, a *app) {
	opts := &registryOptions{}
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "List known note parameters and their support status",
		Example: `  waiwaier registry
  waiwaier registry --status verified`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegistry(a, opts)
		},
	}
	cmd.Flags().StringVar(&opts.status, "status", "", "Only keys with this status (verified, unstable, unsupported, untested)")
	cmd.Flags().StringVar(&opts.category, "category", "", "Only keys of this category")
	parent.AddCommand(cmd)
}

func runRegistry(a *app, opts *registryOptions) error {
	var filter *notes.Status
	if opts.status != "" {
		st, err := notes.ParseStatus(opts.status)
		if err != nil {
			return err
		}
		filter = &st
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	for _, cat := range notes.Categories() {
		if opts.category != "" && string(cat.ID) != opts.category {
			continue
		}
		var rows []notes.Param
		for _, p := range notes.ByCategory(cat.ID) {
			if filter == nil || p.Status == *filter {
				rows = append(rows, p)
			}
		}
		if len(rows) == 0 {
			continue
		}
		_, _ = fmt.Fprintf(w, "%s\n", prompts.Header(cat.Label))
		for _, p := range rows {
			_, _ = fmt.Fprintf(w, "  %s\t%s\t%s\n", p.Key, prompts.StatusBadge(p.Status), p.Label)
		}
	}
	return w.Flush()
}
