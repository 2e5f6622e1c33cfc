// Package notes turns schema columns into AppSheet "Note Parameters": the
// AppSheet:{...} text attached to a spreadsheet header cell that AppSheet
// reads back as column configuration.
package notes

import (
	"fmt"
	"strings"

	"waiwaier/internal/schema"
)

// Status is how well AppSheet is known to honour a note-parameter key.
type Status int

const (
	Untested Status = iota
	Verified
	Unstable
	Unsupported
)

func (s Status) String() string {
	switch s {
	case Verified:
		return "verified"
	case Unstable:
		return "unstable"
	case Unsupported:
		return "unsupported"
	default:
		return "untested"
	}
}

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Status) UnmarshalText(b []byte) error {
	v, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "verified":
		return Verified, nil
	case "unstable":
		return Unstable, nil
	case "unsupported":
		return Unsupported, nil
	case "untested":
		return Untested, nil
	}
	return Untested, fmt.Errorf("unknown status %q", s)
}

type Category string

const (
	CategoryBasic          Category = "basic"
	CategoryIdentification Category = "identification"
	CategoryValidation     Category = "validation"
	CategoryNumeric        Category = "numeric"
	CategoryEnum           Category = "enum"
	CategoryRef            Category = "ref"
	CategoryText           Category = "text"
	CategoryMeta           Category = "meta"
)

type CategoryInfo struct {
	ID    Category `json:"id"`
	Label string   `json:"label"`
}

var categories = []CategoryInfo{
	{CategoryBasic, "Basic Settings"},
	{CategoryIdentification, "Identification & Search"},
	{CategoryValidation, "Validation"},
	{CategoryNumeric, "Numeric Settings"},
	{CategoryEnum, "Enum Settings"},
	{CategoryRef, "Ref Settings"},
	{CategoryText, "Text Settings"},
	{CategoryMeta, "Meta Keys"},
}

// Keys the engine reads or writes itself.
const (
	KeyType                = "Type"
	KeyIsKey               = "IsKey"
	KeyIsLabel             = "IsLabel"
	KeyIsRequired          = "IsRequired"
	KeyRequiredIf          = "Required_If"
	KeyShowIf              = "Show_If"
	KeyEditableIf          = "Editable_If"
	KeyResetIf             = "Reset_If"
	KeyDefault             = "DEFAULT"
	KeyInitialValue        = "Initial_Value" // legacy spelling of KeyDefault
	KeyDescription         = "Description"
	KeyValidIf             = "Valid_If"
	KeyMinValue            = "MinValue"
	KeyMaxValue            = "MaxValue"
	KeyEnumValues          = "EnumValues"
	KeyBaseType            = "BaseType"
	KeyReferencedTableName = "ReferencedTableName"
	KeyReferencedKeyColumn = "ReferencedKeyColumn"
	KeyReferencedType      = "ReferencedType"
	KeyTypeAuxData         = "TypeAuxData"
)

// Param is one row of the support table.
type Param struct {
	Key      string   `json:"key"`
	Status   Status   `json:"status"`
	Category Category `json:"category"`
	Label    string   `json:"label"`
	// Field is the column property the key is synthesized from, if any.
	Field string `json:"relatedField,omitempty"`
}

// The support table. It reflects what AppSheet was observed to accept and is
// maintained by hand.
var registry = []Param{
	{KeyType, Verified, CategoryBasic, "Column Type", "type"},
	{KeyIsRequired, Untested, CategoryBasic, "Is Required", "required"},
	{KeyRequiredIf, Untested, CategoryBasic, "Required If", ""},
	{"IsHidden", Untested, CategoryBasic, "Is Hidden", ""},
	{KeyShowIf, Untested, CategoryBasic, "Show If", ""},
	{"DisplayName", Untested, CategoryBasic, "Display Name", ""},
	{KeyDescription, Untested, CategoryBasic, "Description", "description"},
	{KeyDefault, Untested, CategoryBasic, "Default Value", "defaultValue"},
	{"AppFormula", Untested, CategoryBasic, "App Formula", ""},

	{KeyIsKey, Verified, CategoryIdentification, "Is Key", "isKey"},
	{KeyIsLabel, Unstable, CategoryIdentification, "Is Label", "isLabel"},
	{"IsScannable", Unsupported, CategoryIdentification, "Is Scannable", ""},
	{"IsNfcScannable", Unsupported, CategoryIdentification, "Is NFC Scannable", ""},
	{"Searchable", Unsupported, CategoryIdentification, "Searchable", ""},
	{"IsSensitive", Unsupported, CategoryIdentification, "Is Sensitive", ""},

	{KeyValidIf, Untested, CategoryValidation, "Valid If", "pattern"},
	{"Error_Message_If_Invalid", Untested, CategoryValidation, "Error Message If Invalid", ""},
	{"Suggested_Values", Untested, CategoryValidation, "Suggested Values", ""},
	{KeyEditableIf, Untested, CategoryValidation, "Editable If", ""},
	{KeyResetIf, Untested, CategoryValidation, "Reset If", ""},

	{KeyMinValue, Untested, CategoryNumeric, "Min Value", "minValue"},
	{KeyMaxValue, Untested, CategoryNumeric, "Max Value", "maxValue"},
	{"DecimalDigits", Untested, CategoryNumeric, "Decimal Digits", ""},
	{"NumericDigits", Untested, CategoryNumeric, "Numeric Digits", ""},
	{"ShowThousandsSeparator", Untested, CategoryNumeric, "Show Thousands Separator", ""},
	{"NumberDisplayMode", Untested, CategoryNumeric, "Number Display Mode", ""},
	{"StepValue", Untested, CategoryNumeric, "Step Value", ""},

	{KeyEnumValues, Untested, CategoryEnum, "Enum Values", "enumValues"},
	{KeyBaseType, Untested, CategoryEnum, "Base Type", ""},
	{"EnumInputMode", Untested, CategoryEnum, "Enum Input Mode", ""},
	{"AllowOtherValues", Untested, CategoryEnum, "Allow Other Values", ""},
	{"AutoCompleteOtherValues", Untested, CategoryEnum, "Auto Complete Other Values", ""},
	{"ReferencedRootTableName", Untested, CategoryEnum, "Referenced Root Table Name", ""},

	{KeyReferencedTableName, Untested, CategoryRef, "Referenced Table", "refTableId"},
	{KeyReferencedKeyColumn, Untested, CategoryRef, "Referenced Key Column", "refColumnId"},
	{KeyReferencedType, Untested, CategoryRef, "Referenced Type", ""},
	{"IsAPartOf", Untested, CategoryRef, "Is A Part Of", ""},
	{"InputMode", Untested, CategoryRef, "Input Mode", ""},

	{"LongTextFormatting", Untested, CategoryText, "Long Text Formatting", ""},
	{"ItemSeparator", Untested, CategoryText, "Item Separator", ""},

	{KeyTypeAuxData, Untested, CategoryMeta, "Type Aux Data", ""},
	{"BaseTypeQualifier", Untested, CategoryMeta, "Base Type Qualifier", ""},
}

var registryIndex = func() map[string]int {
	m := make(map[string]int, len(registry))
	for i, p := range registry {
		m[p.Key] = i
	}
	return m
}()

// exportAllowList names keys emitted without saved settings even though they
// are not Verified. It is empty for now.
var exportAllowList = map[string]bool{}

// Registry returns a copy of the whole support table in display order.
func Registry() []Param {
	return append([]Param(nil), registry...)
}

func Lookup(key string) (Param, bool) {
	i, ok := registryIndex[key]
	if !ok {
		return Param{}, false
	}
	return registry[i], true
}

// StatusOf classifies key; keys missing from the table are Untested.
func StatusOf(key string) Status {
	if p, ok := Lookup(key); ok {
		return p.Status
	}
	return Untested
}

func ByStatus(s Status) []Param {
	var out []Param
	for _, p := range registry {
		if p.Status == s {
			out = append(out, p)
		}
	}
	return out
}

func ByCategory(c Category) []Param {
	var out []Param
	for _, p := range registry {
		if p.Category == c {
			out = append(out, p)
		}
	}
	return out
}

func Categories() []CategoryInfo {
	return append([]CategoryInfo(nil), categories...)
}

// DefaultOutputSettings is the explicit settings map equivalent to having no
// settings: Verified keys on, everything else off.
func DefaultOutputSettings() schema.Settings {
	s := make(schema.Settings, len(registry))
	for _, p := range registry {
		s[p.Key] = p.Status == Verified || exportAllowList[p.Key]
	}
	return s
}
