// schema/names.go
package schema

import "strings"

// FindTable returns the table with the given id.
func FindTable(tables []Table, id string) (*Table, bool) {
	if id == "" {
		return nil, false
	}
	for i := range tables {
		if tables[i].ID == id {
			return &tables[i], true
		}
	}
	return nil, false
}

// TableByName resolves a table by id first, then by case-insensitive name.
// A name shared by more than one table does not resolve.
func TableByName(tables []Table, name string) (*Table, bool) {
	name = strings.TrimSpace(name)
	if t, ok := FindTable(tables, name); ok {
		return t, true
	}
	if name == "" {
		return nil, false
	}
	var found *Table
	for i := range tables {
		if strings.EqualFold(strings.TrimSpace(tables[i].Name), name) {
			if found != nil {
				return nil, false
			}
			found = &tables[i]
		}
	}
	return found, found != nil
}

// ColumnByName resolves a column by id first, then by case-insensitive name.
func (t *Table) ColumnByName(name string) (*Column, bool) {
	name = strings.TrimSpace(name)
	if c, ok := t.Column(name); ok {
		return c, true
	}
	for i := range t.Columns {
		if strings.EqualFold(strings.TrimSpace(t.Columns[i].Name), name) {
			return &t.Columns[i], true
		}
	}
	return nil, false
}

// slugID derives a stable identifier from a display name, e.g.
// "Order Lines" -> "order_lines".
func slugID(name string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r == ' ' || r == '-' || r == '.' || r == '/':
			if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				lastUnderscore = true
			}
		default:
			b.WriteRune(r)
			lastUnderscore = false
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
