package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"waiwaier/internal/pg"
)

var postgresSchema = map[string]string{
	"000_project_kv": `CREATE TABLE IF NOT EXISTS project_kv (
	project_id UUID NOT NULL,
	key TEXT NOT NULL,
	value TEXT NOT NULL,
	updated_at BIGINT NOT NULL,
	PRIMARY KEY (project_id, key)
)`,
	"100_project_kv_updated_at": `CREATE INDEX project_kv_updated_at ON project_kv (updated_at)`,
}

// Postgres keeps every project in one project_kv table.
type Postgres struct {
	db *sql.DB
}

func OpenPostgres(ctx context.Context, url string) (*Postgres, error) {
	db, err := pg.Open(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := pg.ApplyDDL(ctx, db, postgresSchema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) Save(ctx context.Context, projectID, key, value string) error {
	id, err := ProjectID(projectID)
	if err != nil {
		return err
	}
	_, err = p.db.ExecContext(ctx, `
INSERT INTO project_kv (project_id, key, value, updated_at) VALUES ($1, $2, $3, $4)
ON CONFLICT (project_id, key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		id, key, value, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("save kv: %w", err)
	}
	return nil
}

func (p *Postgres) Load(ctx context.Context, projectID, key string) (string, error) {
	id, err := ProjectID(projectID)
	if err != nil {
		return "", err
	}
	var v string
	err = p.db.QueryRowContext(ctx,
		`SELECT value FROM project_kv WHERE project_id = $1 AND key = $2`, id, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("load kv: %w", err)
	}
	return v, nil
}

func (p *Postgres) Delete(ctx context.Context, projectID, key string) error {
	id, err := ProjectID(projectID)
	if err != nil {
		return err
	}
	if _, err := p.db.ExecContext(ctx,
		`DELETE FROM project_kv WHERE project_id = $1 AND key = $2`, id, key); err != nil {
		return fmt.Errorf("delete kv: %w", err)
	}
	return nil
}

func (p *Postgres) DeleteProject(ctx context.Context, projectID string) error {
	id, err := ProjectID(projectID)
	if err != nil {
		return err
	}
	if _, err := p.db.ExecContext(ctx, `DELETE FROM project_kv WHERE project_id = $1`, id); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}

func (p *Postgres) Close() error { return p.db.Close() }
