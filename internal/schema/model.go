package schema

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"waiwaier/internal/value"
)

// Column type tags that change how a column is exported. Every other AppSheet
// type (Number, Date, Email, ...) is passed through opaquely.
const (
	TypeText     = "Text"
	TypeLongText = "LongText"
	TypeEnum     = "Enum"
	TypeEnumList = "EnumList"
	TypeRef      = "Ref"
)

// Export targets a table can opt in or out of.
const (
	TargetExcel   = "excel"
	TargetJSON    = "json"
	TargetPackage = "package"
)

// RawOverrideKey is the override entry whose trimmed text replaces the whole
// annotation; NotePrefix starts every annotation AppSheet reads.
const (
	RawOverrideKey = "__AppSheetNoteOverride"
	NotePrefix     = "AppSheet:"
)

// Project is one exported diagram: its tables and, optionally, the user's
// note-parameter output settings.
type Project struct {
	Name     string   `json:"name,omitempty" yaml:"name,omitempty"`
	Tables   []Table  `json:"tables" yaml:"tables"`
	Settings Settings `json:"settings,omitempty" yaml:"settings,omitempty"`
}

// Table becomes one worksheet; its columns become the header row.
type Table struct {
	ID            string   `json:"id" yaml:"id"`
	Name          string   `json:"name" yaml:"name"`
	Description   string   `json:"description,omitempty" yaml:"description,omitempty"`
	ExportTargets []string `json:"exportTargets,omitempty" yaml:"exportTargets,omitempty"`
	Columns       []Column `json:"columns" yaml:"columns"`
}

// Column is one header cell of a table.
type Column struct {
	ID          string      `json:"id" yaml:"id"`
	Name        string      `json:"name" yaml:"name"`
	Type        string      `json:"type" yaml:"type"`
	IsKey       bool        `json:"isKey" yaml:"isKey"`
	IsLabel     bool        `json:"isLabel" yaml:"isLabel"`
	IsVirtual   bool        `json:"isVirtual,omitempty" yaml:"isVirtual,omitempty"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Constraints Constraints `json:"constraints" yaml:"constraints"`
	Order       int         `json:"order" yaml:"order"`

	// Overrides holds user-declared note parameters (key -> JSON value) in
	// the order they were written.
	Overrides *value.Object `json:"appSheet,omitempty" yaml:"appSheet,omitempty"`
}

type Constraints struct {
	Required     bool     `json:"required,omitempty" yaml:"required,omitempty"`
	Unique       bool     `json:"unique,omitempty" yaml:"unique,omitempty"`
	DefaultValue string   `json:"defaultValue,omitempty" yaml:"defaultValue,omitempty"`
	MinValue     *Numeric `json:"minValue,omitempty" yaml:"minValue,omitempty"`
	MaxValue     *Numeric `json:"maxValue,omitempty" yaml:"maxValue,omitempty"`
	MinLength    *int     `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength    *int     `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Pattern      string   `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	EnumValues   []string `json:"enumValues,omitempty" yaml:"enumValues,omitempty"`
	RefTableID   string   `json:"refTableId,omitempty" yaml:"refTableId,omitempty"`
	RefColumnID  string   `json:"refColumnId,omitempty" yaml:"refColumnId,omitempty"`
}

// Settings maps a note-parameter key to "emit this key". A nil map means the
// user never saved settings; any non-nil map (even empty) is an explicit
// allow-list.
type Settings map[string]bool

// Numeric is a numeric constraint bound. Input that is not a number decodes
// as NaN instead of failing the document; Finite folds it to zero.
type Numeric float64

func NewNumeric(f float64) *Numeric {
	n := Numeric(f)
	return &n
}

// Finite returns the bound, or 0 when it is NaN or infinite.
func (n Numeric) Finite() float64 {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func (n *Numeric) UnmarshalJSON(b []byte) error {
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*n = Numeric(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*n = parseNumeric(s)
		return nil
	}
	*n = Numeric(math.NaN())
	return nil
}

func (n *Numeric) UnmarshalYAML(node *yaml.Node) error {
	var f float64
	if err := node.Decode(&f); err == nil {
		*n = Numeric(f)
		return nil
	}
	*n = parseNumeric(node.Value)
	return nil
}

func (n Numeric) MarshalJSON() ([]byte, error) {
	return []byte(value.FormatNumber(float64(n))), nil
}

func parseNumeric(s string) Numeric {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return Numeric(math.NaN())
	}
	return Numeric(f)
}

// Column returns the column with the given id.
func (t *Table) Column(id string) (*Column, bool) {
	for i := range t.Columns {
		if t.Columns[i].ID == id {
			return &t.Columns[i], true
		}
	}
	return nil, false
}

// RefKeyColumn resolves the column a Ref pointing at t uses as its key:
// the explicitly referenced column, else t's key column, else its first column.
func (t *Table) RefKeyColumn(columnID string) (*Column, bool) {
	if columnID != "" {
		if c, ok := t.Column(columnID); ok {
			return c, true
		}
	}
	for i := range t.Columns {
		if t.Columns[i].IsKey {
			return &t.Columns[i], true
		}
	}
	if len(t.Columns) > 0 {
		return &t.Columns[0], true
	}
	return nil, false
}

// ExportsTo reports whether the table participates in the given export
// target. A table without explicit targets exports everywhere.
func (t *Table) ExportsTo(target string) bool {
	if t.ExportTargets == nil {
		return true
	}
	for _, tg := range t.ExportTargets {
		if strings.EqualFold(tg, target) {
			return true
		}
	}
	return false
}

// ForExport keeps only the tables exported to target, preserving order.
func ForExport(tables []Table, target string) []Table {
	out := make([]Table, 0, len(tables))
	for _, t := range tables {
		if t.ExportsTo(target) {
			out = append(out, t)
		}
	}
	return out
}
