package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"waiwaier/internal/prompts"
	"waiwaier/internal/store"
)

func registerKVCmd(parent *cobra.Command, a *app) {
	cmd := &cobra.Command{
		Use:   "kv",
		Short: "Read and write the project store",
		Long: `Projects are addressed by UUID. Values are stored in sqlite files under
--data-dir, or in postgres when --db is set, and are encrypted when a
passphrase is configured.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get <project> <key>",
		Short: "Print a stored value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(ctx context.Context, kv store.KV) error {
				v, err := kv.Load(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(a.out, v)
				return err
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <project> <key> <value|->",
		Short: "Store a value (\"-\" reads it from stdin)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			value := args[2]
			if value == "-" {
				b, err := io.ReadAll(a.in)
				if err != nil {
					return err
				}
				value = strings.TrimRight(string(b), "\r\n")
			}
			if a.cfg.Passphrase != "" {
				if score, feedback := store.CheckPassphrase(a.cfg.Passphrase); score < 3 {
					prompts.Warn(a.err, "weak passphrase: "+strings.Join(feedback, ", "))
				}
			}
			return a.withStore(cmd.Context(), func(ctx context.Context, kv store.KV) error {
				if err := kv.Save(ctx, args[0], args[1], value); err != nil {
					return err
				}
				prompts.PrintResult(a.out, []prompts.ResultField{
					{Label: "Project", Value: args[0]},
					{Label: "Key", Value: args[1]},
				}, "Saved")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <project> <key>",
		Short: "Remove a stored value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(ctx context.Context, kv store.KV) error {
				return kv.Delete(ctx, args[0], args[1])
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "drop <project>",
		Short: "Remove a project and all its values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(ctx context.Context, kv store.KV) error {
				return kv.DeleteProject(ctx, args[0])
			})
		},
	})

	parent.AddCommand(cmd)
}

func (a *app) withStore(ctx context.Context, fn func(context.Context, store.KV) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	kv, err := store.Open(ctx, a.cfg.DataDir, a.cfg.DBURL, a.cfg.Passphrase)
	if err != nil {
		return err
	}
	defer kv.Close()
	return fn(ctx, kv)
}
