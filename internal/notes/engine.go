package notes

import (
	"strings"

	"waiwaier/internal/schema"
	"waiwaier/internal/value"
)

// EmptyNote is what a column with nothing to say produces. It is never
// attached unless it came from a raw override.
const EmptyNote = schema.NotePrefix + "{}"

// Note is the annotation for one column.
type Note struct {
	Text string `json:"text"`
	// Raw is set when the text came verbatim from the raw override.
	Raw bool `json:"raw,omitempty"`
}

// Attach reports whether the note belongs on the header cell.
func (n Note) Attach() bool {
	return n.Raw || n.Text != EmptyNote
}

// CellNote is a note positioned on the header row of a sheet.
type CellNote struct {
	Row  int
	Col  int
	Text string
}

// rawOverride returns the trimmed raw override text, if the column has one.
func rawOverride(col *schema.Column) (string, bool) {
	v, ok := col.Overrides.Get(schema.RawOverrideKey)
	if !ok {
		return "", false
	}
	s, ok := v.AsString()
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

func columnNote(col *schema.Column, isLabel bool, tables []schema.Table, settings schema.Settings) Note {
	if raw, ok := rawOverride(col); ok {
		return Note{Text: raw, Raw: true}
	}
	obj := synthesize(col, isLabel, tables, settings)
	obj = merge(obj, col.Overrides, settings)
	obj = relocate(obj, col.Overrides)
	return Note{Text: Render(obj)}
}

// Render prefixes the serialized object: AppSheet:{...}.
func Render(obj *value.Object) string {
	return schema.NotePrefix + obj.Text()
}

// ColumnNote computes the note for col, a column of t. tables are all tables
// of the export; Ref columns resolve against them.
func ColumnNote(t *schema.Table, col *schema.Column, tables []schema.Table, settings schema.Settings) Note {
	isLabel := false
	if i := labelIndex(t); i >= 0 {
		isLabel = &t.Columns[i] == col || (col.ID != "" && t.Columns[i].ID == col.ID)
	}
	return columnNote(col, isLabel, tables, settings)
}

// TableNotes yields the header notes of t in column order, leaving out the
// ones that must not be attached.
func TableNotes(t *schema.Table, tables []schema.Table, settings schema.Settings) []CellNote {
	label := labelIndex(t)
	var out []CellNote
	for i := range t.Columns {
		n := columnNote(&t.Columns[i], i == label, tables, settings)
		if !n.Attach() {
			continue
		}
		out = append(out, CellNote{Row: 0, Col: i, Text: n.Text})
	}
	return out
}

// Preview maps table id -> column id -> note text, with "" for columns that
// get no note. The text is exactly what the workbook writer attaches.
func Preview(tables []schema.Table, settings schema.Settings) map[string]map[string]string {
	out := make(map[string]map[string]string, len(tables))
	for ti := range tables {
		t := &tables[ti]
		label := labelIndex(t)
		byColumn := make(map[string]string, len(t.Columns))
		for i := range t.Columns {
			n := columnNote(&t.Columns[i], i == label, tables, settings)
			if n.Attach() {
				byColumn[t.Columns[i].ID] = n.Text
			} else {
				byColumn[t.Columns[i].ID] = ""
			}
		}
		out[t.ID] = byColumn
	}
	return out
}
