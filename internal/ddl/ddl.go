// Package ddl renders tables as SQL CREATE TABLE statements.
package ddl

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"waiwaier/internal/schema"
)

type Dialect string

const (
	Generic    Dialect = "generic"
	MySQL      Dialect = "mysql"
	PostgreSQL Dialect = "postgresql"
	SQLite     Dialect = "sqlite"
)

func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "generic":
		return Generic, nil
	case "mysql":
		return MySQL, nil
	case "postgresql", "postgres", "pg":
		return PostgreSQL, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	}
	return "", fmt.Errorf("unknown dialect %q (allowed: generic|mysql|postgresql|sqlite)", s)
}

type Options struct {
	Dialect     Dialect
	ForeignKeys bool
	Comments    bool
	DropTable   bool
	// GeneratedAt is printed in the header comment when set.
	GeneratedAt time.Time
}

func DefaultOptions() Options {
	return Options{Dialect: Generic, ForeignKeys: true, Comments: true}
}

// AppSheet column type -> generic SQL type. Unknown types map to TEXT.
var sqlTypes = map[string]string{
	"Text":     "VARCHAR(255)",
	"LongText": "TEXT",
	"Name":     "VARCHAR(255)",
	"Email":    "VARCHAR(255)",
	"Phone":    "VARCHAR(50)",
	"Url":      "VARCHAR(2048)",
	"Address":  "TEXT",
	"Color":    "VARCHAR(7)",

	"Number":   "INTEGER",
	"Decimal":  "DECIMAL(18, 4)",
	"Percent":  "DECIMAL(5, 4)",
	"Price":    "DECIMAL(18, 2)",
	"Progress": "DECIMAL(3, 2)",
	"Duration": "INTEGER", // seconds

	"Date":            "DATE",
	"DateTime":        "DATETIME",
	"Time":            "TIME",
	"ChangeTimestamp": "DATETIME",

	"Yes/No": "BOOLEAN",

	"Ref":      "VARCHAR(255)",
	"Enum":     "VARCHAR(255)",
	"EnumList": "TEXT", // comma separated

	"Image":     "TEXT",
	"File":      "TEXT",
	"Video":     "TEXT",
	"Drawing":   "TEXT",
	"Signature": "TEXT",
	"Thumbnail": "TEXT",

	"LatLong":        "VARCHAR(100)",
	"XY":             "VARCHAR(100)",
	"ChangeLocation": "VARCHAR(100)",

	"App":           "VARCHAR(255)",
	"Show":          "VARCHAR(255)",
	"ChangeCounter": "INTEGER",
	"UniqueID":      "VARCHAR(255)",
}

var numericTypes = map[string]bool{
	"Number": true, "Decimal": true, "Percent": true, "Price": true, "Progress": true, "ChangeCounter": true,
}

// reserved words are quoted even in the generic dialect
var reserved = map[string]struct{}{
	"user": {}, "select": {}, "table": {}, "insert": {}, "update": {}, "delete": {},
	"where": {}, "join": {}, "group": {}, "order": {}, "limit": {}, "offset": {},
	"primary": {}, "foreign": {}, "key": {}, "constraint": {}, "default": {},
	"from": {}, "into": {}, "values": {}, "unique": {}, "index": {}, "create": {},
	"drop": {}, "alter": {}, "schema": {}, "grant": {}, "revoke": {},
}

func isReserved(s string) bool { _, ok := reserved[strings.ToLower(s)]; return ok }

func sqlType(columnType string, d Dialect) string {
	base, ok := sqlTypes[columnType]
	if !ok {
		base = "TEXT"
	}
	switch d {
	case MySQL:
		if base == "BOOLEAN" {
			return "TINYINT(1)"
		}
	case SQLite:
		switch {
		case strings.HasPrefix(base, "VARCHAR"):
			return "TEXT"
		case strings.HasPrefix(base, "DECIMAL"):
			return "REAL"
		case base == "BOOLEAN":
			return "INTEGER"
		case base == "DATETIME", base == "DATE", base == "TIME":
			return "TEXT"
		}
	}
	return base
}

// safeName turns runs of spaces into "_" and drops everything that is not a
// letter, digit or "_".
func safeName(name string) string {
	var b strings.Builder
	space := false
	for _, r := range strings.TrimSpace(name) {
		if unicode.IsSpace(r) {
			if !space {
				b.WriteByte('_')
			}
			space = true
			continue
		}
		space = false
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func quote(name string, d Dialect) string {
	switch d {
	case MySQL:
		return "`" + name + "`"
	case PostgreSQL, SQLite:
		return `"` + name + `"`
	default:
		if isReserved(name) {
			return `"` + name + `"`
		}
		return name
	}
}

func sqlString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

type generator struct {
	opts    Options
	tables  []schema.Table
	names   map[string]string // table id -> quoted name
	columns map[string]string // column id -> quoted name
}

func newGenerator(tables []schema.Table, opts Options) *generator {
	g := &generator{opts: opts, tables: tables, names: map[string]string{}, columns: map[string]string{}}
	for i, t := range tables {
		name := safeName(t.Name)
		if name == "" {
			name = fmt.Sprintf("table_%d", i+1)
		}
		g.names[t.ID] = quote(name, opts.Dialect)
		for j, c := range t.Columns {
			cn := safeName(c.Name)
			if cn == "" {
				cn = fmt.Sprintf("column_%d", j+1)
			}
			g.columns[t.ID+"\x00"+c.ID] = quote(cn, opts.Dialect)
		}
	}
	return g
}

func (g *generator) column(t *schema.Table, c *schema.Column) string {
	return g.columns[t.ID+"\x00"+c.ID]
}

func visibleColumns(t *schema.Table) []*schema.Column {
	var out []*schema.Column
	for i := range t.Columns {
		if !t.Columns[i].IsVirtual {
			out = append(out, &t.Columns[i])
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Order < out[b].Order })
	return out
}

// foreignKey resolves a Ref column to the referenced table and key column.
func (g *generator) foreignKey(c *schema.Column) (*schema.Table, *schema.Column, bool) {
	if c.Type != schema.TypeRef || c.IsVirtual {
		return nil, nil, false
	}
	ref, ok := schema.FindTable(g.tables, c.Constraints.RefTableID)
	if !ok {
		return nil, nil, false
	}
	key, ok := ref.RefKeyColumn(c.Constraints.RefColumnID)
	if !ok || key.IsVirtual {
		return nil, nil, false
	}
	return ref, key, true
}

func (g *generator) createTable(t *schema.Table) string {
	d := g.opts.Dialect
	name := g.names[t.ID]
	desc := strings.TrimSpace(t.Description)
	var lines []string

	if g.opts.DropTable {
		lines = append(lines, fmt.Sprintf("DROP TABLE IF EXISTS %s;", name), "")
	}
	if g.opts.Comments {
		lines = append(lines, "-- "+t.Name)
		if desc != "" {
			lines = append(lines, "-- "+oneLine(desc))
		}
	}
	lines = append(lines, fmt.Sprintf("CREATE TABLE %s (", name))

	cols := visibleColumns(t)
	var defs, pks []string
	for _, c := range cols {
		colName := g.column(t, c)
		def := fmt.Sprintf("  %s %s", colName, sqlType(c.Type, d))
		if c.Constraints.Required {
			def += " NOT NULL"
		}
		if c.Constraints.Unique {
			def += " UNIQUE"
		}
		if dv := c.Constraints.DefaultValue; dv != "" {
			switch {
			case numericTypes[c.Type]:
				def += " DEFAULT " + dv
			case c.Type == "Yes/No":
				if strings.EqualFold(dv, "true") || dv == "1" {
					def += " DEFAULT TRUE"
				} else {
					def += " DEFAULT FALSE"
				}
			default:
				def += " DEFAULT " + sqlString(dv)
			}
		}
		if g.opts.Comments && d == MySQL && c.Description != "" {
			def += " COMMENT " + sqlString(c.Description)
		}
		defs = append(defs, def)
		if c.IsKey {
			pks = append(pks, colName)
		}
	}
	if len(pks) > 0 {
		defs = append(defs, fmt.Sprintf("  PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}

	if g.opts.ForeignKeys {
		for _, c := range cols {
			ref, key, ok := g.foreignKey(c)
			if !ok {
				continue
			}
			fkName := truncate(safeName(strings.ReplaceAll("fk_"+t.Name+"_"+c.Name, " ", "_")), 64)
			defs = append(defs, fmt.Sprintf("  CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s(%s)",
				quote(fkName, d), g.column(t, c), g.names[ref.ID], g.column(ref, key)))
		}
	}

	lines = append(lines, strings.Join(defs, ",\n"), ");")

	if g.opts.Comments && d == PostgreSQL {
		if desc != "" {
			lines = append(lines, fmt.Sprintf("COMMENT ON TABLE %s IS %s;", name, sqlString(desc)))
		}
		for _, c := range cols {
			if c.Description != "" {
				lines = append(lines, fmt.Sprintf("COMMENT ON COLUMN %s.%s IS %s;", name, g.column(t, c), sqlString(c.Description)))
			}
		}
	}
	return strings.Join(lines, "\n")
}

// ordered returns tables with referenced tables first. Cycles keep list order.
func (g *generator) ordered() []*schema.Table {
	visited := map[string]bool{}
	var out []*schema.Table

	var visit func(t *schema.Table)
	visit = func(t *schema.Table) {
		if visited[t.ID] {
			return
		}
		visited[t.ID] = true
		for i := range t.Columns {
			if ref, _, ok := g.foreignKey(&t.Columns[i]); ok {
				visit(ref)
			}
		}
		out = append(out, t)
	}
	for i := range g.tables {
		visit(&g.tables[i])
	}
	return out
}

func validate(opts Options) error {
	switch opts.Dialect {
	case Generic, MySQL, PostgreSQL, SQLite:
		return nil
	}
	return fmt.Errorf("unknown dialect %q", opts.Dialect)
}

// Generate returns the DDL script for tables.
func Generate(tables []schema.Table, opts Options) (string, error) {
	if err := validate(opts); err != nil {
		return "", err
	}
	g := newGenerator(tables, opts)

	var parts []string
	if opts.Comments {
		parts = append(parts,
			"-- ============================================",
			"-- DDL generated by waiwaier",
			"-- Dialect: "+string(opts.Dialect),
		)
		if !opts.GeneratedAt.IsZero() {
			parts = append(parts, "-- Generated at: "+opts.GeneratedAt.UTC().Format(time.RFC3339))
		}
		parts = append(parts, "-- ============================================", "")
	}
	for _, t := range g.ordered() {
		parts = append(parts, g.createTable(t), "")
	}
	return strings.TrimSpace(strings.Join(parts, "\n")), nil
}

// Scripts returns one script per table keyed so that sorting the keys gives
// dependency order, the shape store.ApplyDDL executes.
func Scripts(tables []schema.Table, opts Options) (map[string]string, error) {
	if err := validate(opts); err != nil {
		return nil, err
	}
	opts.DropTable = false
	g := newGenerator(tables, opts)
	out := make(map[string]string, len(tables))
	for i, t := range g.ordered() {
		out[fmt.Sprintf("100_%04d_%s", i, t.ID)] = g.createTable(t)
	}
	return out, nil
}

func oneLine(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	return strings.ReplaceAll(s, "\n", " ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
