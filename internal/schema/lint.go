// schema/lint.go
package schema

import (
	"fmt"
	"regexp"
	"strings"
)

type Issue struct {
	Table   string `json:"table"`
	Column  string `json:"column,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Lint reports contradictions that still export but are unlikely to be what
// the author meant.
func Lint(tables []Table) []Issue {
	var issues []Issue
	add := func(t *Table, c *Column, code, format string, args ...any) {
		is := Issue{Table: t.Name, Code: code, Message: fmt.Sprintf(format, args...)}
		if c != nil {
			is.Column = c.Name
		}
		issues = append(issues, is)
	}

	for i := range tables {
		t := &tables[i]

		names := map[string]bool{}
		labels := 0
		for j := range t.Columns {
			c := &t.Columns[j]

			// duplicate header names
			key := strings.ToLower(strings.TrimSpace(c.Name))
			if names[key] {
				add(t, c, "duplicate_column", "column name %q appears more than once", c.Name)
			}
			names[key] = true

			if c.IsLabel {
				labels++
			}

			if p := c.Constraints.Pattern; p != "" {
				if _, err := regexp.Compile(p); err != nil {
					add(t, c, "invalid_pattern", "pattern %q does not compile: %v", p, err)
				}
			}

			if len(c.Constraints.EnumValues) > 0 && c.Type != TypeEnum && c.Type != TypeEnumList {
				add(t, c, "enum_on_non_enum", "enum values are ignored for type %s", c.Type)
			}

			if c.Type == TypeRef {
				lintRef(tables, t, c, add)
			}

			if raw, ok := c.Overrides.Get(RawOverrideKey); ok {
				s, isString := raw.AsString()
				switch {
				case !isString:
					add(t, c, "raw_override_prefix", "%s must be a string, got %s", RawOverrideKey, raw.Kind())
				case strings.TrimSpace(s) != "" && !strings.HasPrefix(strings.TrimSpace(s), NotePrefix):
					add(t, c, "raw_override_prefix", "%s does not start with %q", RawOverrideKey, NotePrefix)
				}
			}
		}

		if labels > 1 {
			add(t, nil, "multiple_labels", "%d columns are marked as label; only the first by order is kept", labels)
		}
	}
	return issues
}

func lintRef(tables []Table, t *Table, c *Column, add func(*Table, *Column, string, string, ...any)) {
	refID := strings.TrimSpace(c.Constraints.RefTableID)
	if refID == "" {
		add(t, c, "ref_table_missing", "Ref column has no target table")
		return
	}
	ref, ok := FindTable(tables, refID)
	if !ok {
		add(t, c, "ref_table_missing", "referenced table %q does not exist", refID)
		return
	}
	if len(ref.Columns) == 0 {
		add(t, c, "ref_table_empty", "referenced table %q has no columns", ref.Name)
		return
	}
	if colID := c.Constraints.RefColumnID; colID != "" {
		if _, ok := ref.Column(colID); !ok {
			add(t, c, "ref_column_missing", "column %q not found in %q; the key column is used instead", colID, ref.Name)
		}
	}
}
