package commands

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"waiwaier/internal/api"
	"waiwaier/internal/store"
)

func registerServeCmd(parent *cobra.Command, a *app) {
	parent.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Example: `  waiwaier serve --schema project.yaml --port 8080
  WAIWAIER_DB_URL=postgres://localhost/waiwaier waiwaier serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), a)
		},
	})
}

func runServe(ctx context.Context, a *app) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ws, err := api.LoadWorkspace(api.Sources{
		Schema:   a.cfg.Schema,
		Settings: a.cfg.Settings,
		Samples:  a.cfg.Samples,
	})
	if err != nil {
		return err
	}
	tables, _, _ := ws.Snapshot()
	log.Printf("loaded %d tables from %s", len(tables), a.cfg.Schema)

	kv, err := store.Open(ctx, a.cfg.DataDir, a.cfg.DBURL, a.cfg.Passphrase)
	if err != nil {
		return fmt.Errorf("open project store: %w", err)
	}
	defer kv.Close()

	ws.KV = kv
	ws.Blob = &api.LocalBlobStore{Root: a.cfg.ExportsDir}
	ws.IncludeData = a.cfg.IncludeData
	ws.MaxSampleRows = a.cfg.MaxSampleRows

	log.Printf("starting waiwaier on :%s", a.cfg.Port)
	return api.RunServer(":"+a.cfg.Port, ws)
}
