package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const kvSchema = `CREATE TABLE IF NOT EXISTS kv (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SQLite stores each project in <dataDir>/projects/<id>.db.
type SQLite struct {
	dir string
}

func OpenSQLite(dataDir string) (*SQLite, error) {
	dir := filepath.Join(dataDir, "projects")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create project dir: %w", err)
	}
	return &SQLite{dir: dir}, nil
}

// Path returns the database file of a project, checking that it stays
// inside the projects directory once symlinks are resolved. The file itself
// need not exist yet.
func (s *SQLite) Path(projectID string) (string, error) {
	id, err := ProjectID(projectID)
	if err != nil {
		return "", err
	}
	root, err := filepath.EvalSymlinks(s.dir)
	if err != nil {
		return "", err
	}
	root, err = filepath.Abs(root)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, id+".db")
	resolved, err := filepath.EvalSymlinks(path)
	if errors.Is(err, os.ErrNotExist) {
		resolved, err = danglingTarget(path, filepath.Join(root, id+".db"))
	}
	if err != nil {
		return "", err
	}
	resolved, err = filepath.Abs(resolved)
	if err != nil {
		return "", err
	}

	rel, err := filepath.Rel(root, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrPathEscape
	}
	return resolved, nil
}

// danglingTarget resolves a path that EvalSymlinks reported missing. A truly
// absent file resolves to fallback; a dangling symlink resolves to where
// sqlite would create the file, following at most maxLinks links.
func danglingTarget(path, fallback string) (string, error) {
	const maxLinks = 40
	for i := 0; i < maxLinks; i++ {
		fi, err := os.Lstat(path)
		if errors.Is(err, os.ErrNotExist) {
			if i == 0 {
				return fallback, nil
			}
			dir, err := filepath.EvalSymlinks(filepath.Dir(path))
			if err != nil {
				return "", ErrPathEscape
			}
			return filepath.Join(dir, filepath.Base(path)), nil
		}
		if err != nil {
			return "", err
		}
		if fi.Mode()&os.ModeSymlink == 0 {
			return path, nil
		}
		target, err := os.Readlink(path)
		if err != nil {
			return "", err
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(path), target)
		}
		path = target
	}
	return "", ErrPathEscape
}

func (s *SQLite) open(ctx context.Context, projectID string) (*sql.DB, error) {
	path, err := s.Path(projectID)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open project db: %w", err)
	}
	if _, err := db.ExecContext(ctx, kvSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init kv table: %w", err)
	}
	return db, nil
}

func (s *SQLite) Save(ctx context.Context, projectID, key, value string) error {
	db, err := s.open(ctx, projectID)
	if err != nil {
		return err
	}
	defer db.Close()
	_, err = db.ExecContext(ctx,
		`INSERT OR REPLACE INTO kv (key, value, updated_at) VALUES (?, ?, ?)`,
		key, value, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("save kv: %w", err)
	}
	return nil
}

func (s *SQLite) Load(ctx context.Context, projectID, key string) (string, error) {
	db, err := s.open(ctx, projectID)
	if err != nil {
		return "", err
	}
	defer db.Close()
	var v string
	err = db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("load kv: %w", err)
	}
	return v, nil
}

func (s *SQLite) Delete(ctx context.Context, projectID, key string) error {
	db, err := s.open(ctx, projectID)
	if err != nil {
		return err
	}
	defer db.Close()
	if _, err := db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete kv: %w", err)
	}
	return nil
}

// DeleteProject removes the project file. A missing file is not an error.
func (s *SQLite) DeleteProject(_ context.Context, projectID string) error {
	path, err := s.Path(projectID)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete project db: %w", err)
	}
	return nil
}

func (s *SQLite) Close() error { return nil }
