package notes

import (
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"waiwaier/internal/schema"
	"waiwaier/internal/value"
)

func overrides(t *testing.T, text string) *value.Object {
	t.Helper()
	v, err := value.Parse(text)
	require.NoError(t, err)
	obj, ok := v.AsObject()
	require.True(t, ok)
	return obj
}

// body parses the object part of a generated note.
func body(t *testing.T, note string) *value.Object {
	t.Helper()
	require.True(t, strings.HasPrefix(note, schema.NotePrefix), note)
	return overrides(t, strings.TrimPrefix(note, schema.NotePrefix))
}

func nan() float64 { return math.NaN() }

func single(col schema.Column) ([]schema.Table, *schema.Table) {
	if col.ID == "" {
		col.ID = "c1"
	}
	tables := []schema.Table{{ID: "t1", Name: "Things", Columns: []schema.Column{col}}}
	return tables, &tables[0]
}

func noteFor(col schema.Column, settings schema.Settings) Note {
	tables, tbl := single(col)
	return ColumnNote(tbl, &tbl.Columns[0], tables, settings)
}

func TestColumnNote(t *testing.T) {
	tests := []struct {
		name      string
		col       schema.Column
		overrides string
		settings  schema.Settings
		want      string
	}{
		{
			name: "key label required without settings emits verified keys only",
			col: schema.Column{Type: "Text", IsKey: true, IsLabel: true,
				Constraints: schema.Constraints{Required: true}},
			want: `AppSheet:{"Type":"Text","IsKey":true}`,
		},
		{
			name: "allowing the label key adds only that key",
			col: schema.Column{Type: "Text", IsKey: true, IsLabel: true,
				Constraints: schema.Constraints{Required: true}},
			settings: schema.Settings{"Type": true, "IsKey": true, "IsLabel": true},
			want:     `AppSheet:{"Type":"Text","IsKey":true,"IsLabel":true}`,
		},
		{
			name:     "empty settings are an allow-list that allows nothing",
			col:      schema.Column{Type: "Text", IsKey: true},
			settings: schema.Settings{},
			want:     EmptyNote,
		},
		{
			name:      "user type replaces the synthesized one",
			col:       schema.Column{Type: "Text", IsKey: true},
			overrides: `{"Type":"LongText"}`,
			want:      `AppSheet:{"IsKey":true,"Type":"LongText"}`,
		},
		{
			name:      "null override suppresses a key",
			col:       schema.Column{Type: "Text"},
			overrides: `{"Type":null}`,
			want:      EmptyNote,
		},
		{
			name:      "unverified override is withheld without settings",
			col:       schema.Column{Type: "Text"},
			overrides: `{"IsSensitive":true,"Whatever":1}`,
			want:      `AppSheet:{"Type":"Text"}`,
		},
		{
			name:     "legacy default setting",
			col:      schema.Column{Type: "Text", Constraints: schema.Constraints{DefaultValue: "x"}},
			settings: schema.Settings{"Initial_Value": true},
			want:     `AppSheet:{"DEFAULT":"x"}`,
		},
		{
			name:     "current default setting",
			col:      schema.Column{Type: "Text", Constraints: schema.Constraints{DefaultValue: "x"}},
			settings: schema.Settings{"DEFAULT": true},
			want:     `AppSheet:{"DEFAULT":"x"}`,
		},
		{
			name:      "legacy default override",
			col:       schema.Column{Type: "Text", Constraints: schema.Constraints{DefaultValue: "x"}},
			overrides: `{"Initial_Value":"y"}`,
			settings:  schema.Settings{"DEFAULT": true},
			want:      `AppSheet:{"DEFAULT":"y"}`,
		},
		{
			name:      "current default override",
			col:       schema.Column{Type: "Text", Constraints: schema.Constraints{DefaultValue: "x"}},
			overrides: `{"DEFAULT":"y"}`,
			settings:  schema.Settings{"Initial_Value": true},
			want:      `AppSheet:{"DEFAULT":"y"}`,
		},
		{
			name:      "conditional requirement beats an explicit IsRequired",
			col:       schema.Column{Type: "Text", Constraints: schema.Constraints{Required: true}},
			overrides: `{"IsRequired":true,"Required_If":"[A] > 1"}`,
			settings:  schema.Settings{"Type": true, "IsRequired": true},
			want:      `AppSheet:{"Type":"Text","TypeAuxData":"{\"Required_If\":\"[A] > 1\"}"}`,
		},
		{
			name:      "blank conditional requirement keeps IsRequired",
			col:       schema.Column{Type: "Text", Constraints: schema.Constraints{Required: true}},
			overrides: `{"Required_If":"  "}`,
			settings:  schema.Settings{"IsRequired": true},
			want:      `AppSheet:{"IsRequired":true}`,
		},
		{
			name:      "formula keys bypass the gate and move into aux data",
			col:       schema.Column{Type: "Text"},
			overrides: `{"Reset_If":"TRUE","Show_If":"[X]=1","Editable_If":false}`,
			want:      `AppSheet:{"Type":"Text","TypeAuxData":"{\"Show_If\":\"[X]=1\",\"Editable_If\":\"false\",\"Reset_If\":\"TRUE\"}"}`,
		},
		{
			name:      "aux data from an override object is extended",
			col:       schema.Column{Type: "Text"},
			overrides: `{"TypeAuxData":{"Foo":"bar","Show_If":"old"},"Show_If":"new"}`,
			want:      `AppSheet:{"Type":"Text","TypeAuxData":"{\"Foo\":\"bar\",\"Show_If\":\"new\"}"}`,
		},
		{
			name:      "aux data as JSON text",
			col:       schema.Column{Type: "Text"},
			overrides: `{"TypeAuxData":"{\"Foo\":\"bar\"}","Show_If":"[X]"}`,
			settings:  schema.Settings{"Type": true, "TypeAuxData": true},
			want:      `AppSheet:{"Type":"Text","TypeAuxData":"{\"Foo\":\"bar\",\"Show_If\":\"[X]\"}"}`,
		},
		{
			name:      "aux data as escaped JSON text",
			col:       schema.Column{Type: "Text"},
			overrides: `{"TypeAuxData":"{\\\"Foo\\\":\\\"bar\\\"}","Show_If":"[X]"}`,
			want:      `AppSheet:{"Type":"Text","TypeAuxData":"{\"Foo\":\"bar\",\"Show_If\":\"[X]\"}"}`,
		},
		{
			name:      "malformed aux data reads as empty",
			col:       schema.Column{Type: "Text"},
			overrides: `{"TypeAuxData":"not json","Show_If":"[X]"}`,
			want:      `AppSheet:{"Type":"Text","TypeAuxData":"{\"Show_If\":\"[X]\"}"}`,
		},
		{
			name:      "only blank formulas leave no aux data",
			col:       schema.Column{Type: "Text"},
			overrides: `{"Show_If":""}`,
			want:      `AppSheet:{"Type":"Text"}`,
		},
		{
			name:     "numeric bounds fold non-finite values to zero",
			col:      schema.Column{Type: "Number", Constraints: schema.Constraints{MinValue: schema.NewNumeric(1.5), MaxValue: schema.NewNumeric(nan())}},
			settings: schema.Settings{"MinValue": true, "MaxValue": true},
			want:     `AppSheet:{"MinValue":1.5,"MaxValue":0}`,
		},
		{
			name:     "enum values with short base type",
			col:      schema.Column{Type: "Enum", Constraints: schema.Constraints{EnumValues: []string{"Open", strings.Repeat("あ", 20)}}},
			settings: schema.Settings{"EnumValues": true, "BaseType": true},
			want:     `AppSheet:{"EnumValues":["Open","` + strings.Repeat("あ", 20) + `"],"BaseType":"Text"}`,
		},
		{
			name:     "enum values with long base type",
			col:      schema.Column{Type: "EnumList", Constraints: schema.Constraints{EnumValues: []string{strings.Repeat("a", 21)}}},
			settings: schema.Settings{"EnumValues": true, "BaseType": true},
			want:     `AppSheet:{"EnumValues":["` + strings.Repeat("a", 21) + `"],"BaseType":"LongText"}`,
		},
		{
			name:      "user enum values suppress the base type too",
			col:       schema.Column{Type: "Enum", Constraints: schema.Constraints{EnumValues: []string{"a"}}},
			overrides: `{"EnumValues":["b"]}`,
			settings:  schema.Settings{"EnumValues": true, "BaseType": true},
			want:      `AppSheet:{"EnumValues":["b"]}`,
		},
		{
			name:     "enum values on a non-enum type are ignored",
			col:      schema.Column{Type: "Text", Constraints: schema.Constraints{EnumValues: []string{"a"}}},
			settings: schema.Settings{"EnumValues": true},
			want:     EmptyNote,
		},
		{
			name:     "description and control characters",
			col:      schema.Column{Type: "Text", Description: "line1\nline2\t<b>"},
			settings: schema.Settings{"Description": true},
			want:     `AppSheet:{"Description":"line1\nline2\t<b>"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col := tt.col
			if tt.overrides != "" {
				col.Overrides = overrides(t, tt.overrides)
			}
			n := noteFor(col, tt.settings)
			assert.Equal(t, tt.want, n.Text)
			assert.False(t, n.Raw)
			assert.Equal(t, tt.want != EmptyNote, n.Attach())
		})
	}
}

func TestColumnNote_ValidIfEscapesPattern(t *testing.T) {
	col := schema.Column{Type: "Text", Constraints: schema.Constraints{Pattern: `^\d+"x$`}}
	n := noteFor(col, schema.Settings{"Valid_If": true})

	v, ok := body(t, n.Text).Get("Valid_If")
	require.True(t, ok)
	s, _ := v.AsString()
	assert.Equal(t, `MATCHES([_THIS], "^\\d+\"x$")`, s)
}

func TestColumnNote_RawOverride(t *testing.T) {
	tests := []struct {
		name      string
		overrides string
		settings  schema.Settings
		want      Note
	}{
		{
			name:      "trimmed text replaces everything",
			overrides: `{"__AppSheetNoteOverride":"  AppSheet:{\"Type\":\"Email\"}\n","Type":"Phone"}`,
			want:      Note{Text: `AppSheet:{"Type":"Email"}`, Raw: true},
		},
		{
			name:      "an empty object from the user is still attached",
			overrides: `{"__AppSheetNoteOverride":"AppSheet:{}"}`,
			want:      Note{Text: EmptyNote, Raw: true},
		},
		{
			name:      "blank text is ignored",
			overrides: `{"__AppSheetNoteOverride":"   "}`,
			settings:  schema.Settings{"Type": true, "__AppSheetNoteOverride": true},
			want:      Note{Text: `AppSheet:{"Type":"Text"}`},
		},
		{
			name:      "non-string is ignored",
			overrides: `{"__AppSheetNoteOverride":true}`,
			want:      Note{Text: `AppSheet:{"Type":"Text"}`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col := schema.Column{Type: "Text", Overrides: overrides(t, tt.overrides)}
			n := noteFor(col, tt.settings)
			assert.Equal(t, tt.want, n)
			assert.True(t, n.Attach())
		})
	}
}

func refTables() []schema.Table {
	return []schema.Table{
		{ID: "users", Name: "Users", Columns: []schema.Column{
			{ID: "users.name", Name: "Name", Type: "Text"},
			{ID: "users.email", Name: "Email", Type: "Email", IsKey: true},
		}},
		{ID: "notes", Name: "Notes", Columns: []schema.Column{
			{ID: "notes.body", Name: "Body", Type: "LongText"},
		}},
		{ID: "orders", Name: "Orders", Columns: []schema.Column{
			{ID: "orders.owner", Name: "Owner", Type: "Ref",
				Constraints: schema.Constraints{RefTableID: "users", RefColumnID: "users.name"}},
			{ID: "orders.buyer", Name: "Buyer", Type: "Ref",
				Constraints: schema.Constraints{RefTableID: "users", RefColumnID: "nope"}},
			{ID: "orders.note", Name: "Note", Type: "Ref",
				Constraints: schema.Constraints{RefTableID: "notes"}},
			{ID: "orders.ghost", Name: "Ghost", Type: "Ref",
				Constraints: schema.Constraints{RefTableID: "missing"}},
		}},
	}
}

func TestColumnNote_References(t *testing.T) {
	refKeys := schema.Settings{"Type": true, "ReferencedTableName": true, "ReferencedKeyColumn": true, "ReferencedType": true}
	tables := refTables()
	orders := &tables[2]

	tests := []struct {
		name     string
		column   int
		settings schema.Settings
		want     string
	}{
		{"default settings emit the type only", 0, nil, `AppSheet:{"Type":"Ref"}`},
		{"explicit column", 0, refKeys, `AppSheet:{"Type":"Ref","ReferencedTableName":"Users","ReferencedKeyColumn":"Name","ReferencedType":"Text"}`},
		{"missing column falls back to the key column", 1, refKeys, `AppSheet:{"Type":"Ref","ReferencedTableName":"Users","ReferencedKeyColumn":"Email","ReferencedType":"Email"}`},
		{"no key column falls back to the first column", 2, refKeys, `AppSheet:{"Type":"Ref","ReferencedTableName":"Notes","ReferencedKeyColumn":"Body","ReferencedType":"LongText"}`},
		{"missing table emits nothing about it", 3, refKeys, `AppSheet:{"Type":"Ref"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := ColumnNote(orders, &orders.Columns[tt.column], tables, tt.settings)
			assert.Equal(t, tt.want, n.Text)
		})
	}
}

func TestColumnNote_ReferenceSubKeysAreSuppressedIndependently(t *testing.T) {
	tables := refTables()
	orders := &tables[2]
	orders.Columns[0].Overrides = overrides(t, `{"ReferencedKeyColumn":"Email"}`)

	n := ColumnNote(orders, &orders.Columns[0], tables, schema.Settings{
		"ReferencedTableName": true, "ReferencedKeyColumn": true, "ReferencedType": true,
	})
	assert.Equal(t, `AppSheet:{"ReferencedTableName":"Users","ReferencedType":"Text","ReferencedKeyColumn":"Email"}`, n.Text)
}

func TestEffectiveLabel(t *testing.T) {
	tbl := schema.Table{ID: "t", Columns: []schema.Column{
		{ID: "a", IsLabel: true, Order: 2},
		{ID: "b", IsLabel: true, Order: 1},
		{ID: "c", IsLabel: true, Order: 1},
		{ID: "d", Order: 0},
	}}
	assert.Equal(t, "b", EffectiveLabel(&tbl))
	assert.Equal(t, "", EffectiveLabel(&schema.Table{Columns: []schema.Column{{ID: "x"}}}))

	settings := schema.Settings{"IsLabel": true}
	tables := []schema.Table{tbl}
	got := Preview(tables, settings)["t"]
	assert.Equal(t, map[string]string{
		"a": "",
		"b": `AppSheet:{"IsLabel":true}`,
		"c": "",
		"d": "",
	}, got)
}

func TestTableNotes(t *testing.T) {
	tables := []schema.Table{{ID: "t", Name: "T", Columns: []schema.Column{
		{ID: "a", Type: "Text", IsKey: true},
		{ID: "b", Type: "Text", Overrides: overrides(t, `{"Type":null}`)},
		{ID: "c", Type: "Text", Overrides: overrides(t, `{"__AppSheetNoteOverride":"AppSheet:{}"}`)},
		{ID: "d", Type: "Number"},
	}}}

	got := TableNotes(&tables[0], tables, nil)
	assert.Equal(t, []CellNote{
		{Row: 0, Col: 0, Text: `AppSheet:{"Type":"Text","IsKey":true}`},
		{Row: 0, Col: 2, Text: EmptyNote},
		{Row: 0, Col: 3, Text: `AppSheet:{"Type":"Number"}`},
	}, got)

	preview := Preview(tables, nil)["t"]
	for _, cn := range got {
		assert.Equal(t, cn.Text, preview[tables[0].Columns[cn.Col].ID])
	}
	assert.Equal(t, "", preview["b"])
}

func TestPreview_Deterministic(t *testing.T) {
	tables := refTables()
	tables[0].Columns[0].Overrides = overrides(t, `{"Show_If":"[A]","Required_If":"[B]","Zeta":1,"Alpha":2}`)
	settings := schema.Settings{"Zeta": true, "Alpha": true, "Type": true}

	first := Preview(tables, settings)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Preview(tables, settings))
	}
	assert.Equal(t,
		`AppSheet:{"Type":"Text","Zeta":1,"Alpha":2,"TypeAuxData":"{\"Show_If\":\"[A]\",\"Required_If\":\"[B]\"}"}`,
		first["users"]["users.name"])
}

func TestPreview_Concurrent(t *testing.T) {
	tables := refTables()
	tables[0].Columns[0].Overrides = overrides(t, `{"Show_If":"[A]","TypeAuxData":{"Foo":"bar"}}`)
	want := Preview(tables, nil)

	var wg sync.WaitGroup
	results := make([]map[string]map[string]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = Preview(tables, nil)
		}(i)
	}
	wg.Wait()
	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestPreview_FormulaKeysNeverTopLevel(t *testing.T) {
	col := schema.Column{Type: "Text", Overrides: overrides(t,
		`{"Show_If":"[A]","Required_If":"[B]","Editable_If":"[C]","Reset_If":"[D]","IsRequired":true}`)}
	n := noteFor(col, schema.Settings{"IsRequired": true})

	obj := body(t, n.Text)
	for _, k := range formulaKeys {
		assert.False(t, obj.Has(k), k)
	}
	assert.False(t, obj.Has(KeyIsRequired))

	aux, ok := obj.Get(KeyTypeAuxData)
	require.True(t, ok)
	text, _ := aux.AsString()
	assert.Equal(t, []string{"Show_If", "Required_If", "Editable_If", "Reset_If"}, overrides(t, text).Keys())
}
