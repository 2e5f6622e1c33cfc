package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"waiwaier/internal/value"
)

func codes(issues []Issue) []string {
	out := make([]string, len(issues))
	for i, is := range issues {
		out[i] = is.Code
	}
	return out
}

func TestLint(t *testing.T) {
	raw := func(v value.Value) *value.Object {
		o := value.NewObject()
		o.Set(RawOverrideKey, v)
		return o
	}

	tests := []struct {
		name   string
		tables []Table
		want   []string
	}{
		{
			name: "clean",
			tables: []Table{
				{ID: "u", Name: "Users", Columns: []Column{{ID: "u.e", Name: "Email", IsKey: true, IsLabel: true}}},
				{ID: "o", Name: "Orders", Columns: []Column{
					{ID: "o.u", Name: "User", Type: TypeRef, Constraints: Constraints{RefTableID: "u", RefColumnID: "u.e"}},
					{ID: "o.s", Name: "State", Type: TypeEnum, Constraints: Constraints{EnumValues: []string{"a"}, Pattern: `^\w+$`}},
					{ID: "o.r", Name: "Raw", Overrides: raw(value.String(`AppSheet:{"Type":"Text"}`))},
				}},
			},
		},
		{
			name: "reference problems",
			tables: []Table{
				{ID: "empty", Name: "Empty"},
				{ID: "o", Name: "Orders", Columns: []Column{
					{ID: "o.a", Name: "A", Type: TypeRef},
					{ID: "o.b", Name: "B", Type: TypeRef, Constraints: Constraints{RefTableID: "nope"}},
					{ID: "o.c", Name: "C", Type: TypeRef, Constraints: Constraints{RefTableID: "empty"}},
					{ID: "o.d", Name: "D", Type: TypeRef, Constraints: Constraints{RefTableID: "o", RefColumnID: "o.zz"}},
				}},
			},
			want: []string{"ref_table_missing", "ref_table_missing", "ref_table_empty", "ref_column_missing"},
		},
		{
			name: "column problems",
			tables: []Table{
				{ID: "t", Name: "T", Columns: []Column{
					{ID: "t.a", Name: "Name", IsLabel: true},
					{ID: "t.b", Name: " name ", IsLabel: true},
					{ID: "t.c", Name: "C", Type: "Text", Constraints: Constraints{EnumValues: []string{"x"}, Pattern: "(unclosed"}},
					{ID: "t.d", Name: "D", Overrides: raw(value.String("Type: Text"))},
					{ID: "t.e", Name: "E", Overrides: raw(value.Number(1))},
					{ID: "t.f", Name: "F", Overrides: raw(value.String("   "))},
				}},
			},
			want: []string{"duplicate_column", "invalid_pattern", "enum_on_non_enum", "raw_override_prefix", "raw_override_prefix", "multiple_labels"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := Lint(tt.tables)
			if tt.want == nil {
				assert.Empty(t, issues)
				return
			}
			assert.Equal(t, tt.want, codes(issues))
		})
	}
}

func TestLint_IssueFields(t *testing.T) {
	issues := Lint([]Table{{ID: "t", Name: "Things", Columns: []Column{
		{ID: "t.a", Name: "Owner", Type: TypeRef, Constraints: Constraints{RefTableID: "gone"}},
	}}})
	assert.Equal(t, []Issue{{
		Table:   "Things",
		Column:  "Owner",
		Code:    "ref_table_missing",
		Message: `referenced table "gone" does not exist`,
	}}, issues)
}
