package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

const applyTimeout = 2 * time.Minute

// duplicate_object and duplicate_table
var duplicateCodes = map[string]bool{"42710": true, "42P07": true}

// ApplyDDL runs each script in key order. Objects that already exist are
// logged and skipped, so re-applying the same scripts is a no-op.
func ApplyDDL(ctx context.Context, db *sql.DB, ddl map[string]string) error {
	keys := make([]string, 0, len(ddl))
	for k := range ddl {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ctx, cancel := context.WithTimeout(ctx, applyTimeout)
	defer cancel()

	for _, k := range keys {
		sqlText := strings.TrimSpace(ddl[k])
		if sqlText == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, sqlText); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && duplicateCodes[pgErr.Code] {
				log.Printf("DDL skipped (already exists): %s %s", k, strings.TrimSpace(pgErr.Message))
				continue
			}
			e := strings.ToLower(err.Error())
			if strings.Contains(e, "already exists") || strings.Contains(e, "duplicate") {
				log.Printf("DDL skipped (already exists): %s %v", k, err)
				continue
			}
			return fmt.Errorf("DDL apply %s: %w", k, err)
		}
	}
	return nil
}
