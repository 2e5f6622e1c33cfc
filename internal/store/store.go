// Package store keeps per-project key/value data: one sqlite file per project
// on the desktop, a shared project_kv table on postgres.
package store

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrNotFound         = errors.New("store: key not found")
	ErrInvalidProjectID = errors.New("store: project id must be a UUID")
	ErrPathEscape       = errors.New("store: project path escapes the data directory")
)

// KV is the project store. Values are opaque text, usually JSON documents.
type KV interface {
	Save(ctx context.Context, projectID, key, value string) error
	// Load returns ErrNotFound for a missing key.
	Load(ctx context.Context, projectID, key string) (string, error)
	Delete(ctx context.Context, projectID, key string) error
	DeleteProject(ctx context.Context, projectID string) error
	Close() error
}

// ProjectID validates id and returns its canonical form.
func ProjectID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if len(id) != 36 {
		return "", ErrInvalidProjectID
	}
	u, err := uuid.Parse(id)
	if err != nil {
		return "", ErrInvalidProjectID
	}
	return u.String(), nil
}

// Open picks the backend: postgres when dbURL is set, otherwise sqlite files
// under dataDir. A non-empty passphrase seals every stored value.
func Open(ctx context.Context, dataDir, dbURL, passphrase string) (KV, error) {
	var (
		kv  KV
		err error
	)
	if strings.TrimSpace(dbURL) != "" {
		kv, err = OpenPostgres(ctx, dbURL)
	} else {
		kv, err = OpenSQLite(dataDir)
	}
	if err != nil {
		return nil, err
	}
	return Seal(kv, passphrase), nil
}
