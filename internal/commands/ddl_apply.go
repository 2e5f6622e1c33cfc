package commands

import (
	"context"
	"errors"
	"strconv"

	"waiwaier/internal/ddl"
	"waiwaier/internal/pg"
	"waiwaier/internal/prompts"
	"waiwaier/internal/schema"
)

func applyDDL(ctx context.Context, a *app, tables []schema.Table, opts ddl.Options) error {
	if opts.Dialect != ddl.PostgreSQL {
		return errors.New("--apply needs --dialect postgresql")
	}
	if a.cfg.DBURL == "" {
		return errors.New("--apply needs a postgres URL (--db)")
	}
	scripts, err := ddl.Scripts(tables, opts)
	if err != nil {
		return err
	}
	db, err := pg.Open(ctx, a.cfg.DBURL)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := pg.ApplyDDL(ctx, db, scripts); err != nil {
		return err
	}
	prompts.PrintResult(a.out, []prompts.ResultField{
		{Label: "Tables", Value: strconv.Itoa(len(scripts))},
	}, "DDL applied")
	return nil
}
