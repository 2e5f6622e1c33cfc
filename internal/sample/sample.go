// Package sample loads example rows written below the header row of an
// exported sheet and renders their values as cell text.
package sample

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"waiwaier/internal/schema"
	"waiwaier/internal/value"
)

// Row maps a column id (or column name) to its value.
type Row = *value.Object

// Set maps a table id (or table name) to its rows.
type Set map[string][]Row

// Load reads samples from a file holding {table: [rows]} or from a directory
// with one file of rows per table, named after the table.
func Load(path string) (Set, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return loadDir(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	set := Set{}
	if err := decode(path, data, &set); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return set, nil
}

func loadDir(dir string) (Set, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	set := Set{}
	for _, e := range entries {
		if e.IsDir() || !isDataFile(e.Name()) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var rows []Row
		if err := decode(path, data, &rows); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		// the table is named by the file
		set[strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))] = rows
	}
	return set, nil
}

func isDataFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

func decode(path string, data []byte, out any) error {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return json.Unmarshal(data, out)
	}
	return yaml.Unmarshal(data, out)
}

// Rows returns the sample rows of t, looked up by id and then by name.
func (s Set) Rows(t *schema.Table) []Row {
	if rows, ok := s[t.ID]; ok {
		return rows
	}
	if rows, ok := s[t.Name]; ok {
		return rows
	}
	for k, rows := range s {
		if strings.EqualFold(k, t.Name) {
			return rows
		}
	}
	return nil
}

// Cell returns the value of c in row, looked up by id and then by name.
func Cell(row Row, c *schema.Column) (value.Value, bool) {
	if v, ok := row.Get(c.ID); ok {
		return v, true
	}
	return row.Get(c.Name)
}

// Render turns a sample value into cell text: null is empty, booleans are
// Yes/No, arrays are joined with ", " and objects become [Object].
func Render(v value.Value) string {
	switch v.Kind() {
	case value.KindNull:
		return ""
	case value.KindBool:
		if b, _ := v.AsBool(); b {
			return "Yes"
		}
		return "No"
	case value.KindNumber:
		n, _ := v.AsNumber()
		return value.FormatNumber(n)
	case value.KindString:
		s, _ := v.AsString()
		return s
	case value.KindArray:
		items := v.Items()
		parts := make([]string, len(items))
		for i, it := range items {
			parts[i] = Render(it)
		}
		return strings.Join(parts, ", ")
	default:
		return "[Object]"
	}
}
