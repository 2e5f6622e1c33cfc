package notes

import (
	"strings"
	"unicode/utf8"

	"waiwaier/internal/schema"
	"waiwaier/internal/value"
)

// longEnumRunes is the longest enum value that still fits a Text base type.
const longEnumRunes = 20

// userHas reports whether the column's overrides contain key. Both spellings
// of the default-value key count.
func userHas(overrides *value.Object, key string) bool {
	if canonicalKey(key) == KeyDefault {
		return overrides.Has(KeyDefault) || overrides.Has(KeyInitialValue)
	}
	return overrides.Has(key)
}

// nonEmptyString reports whether obj[key] is a string with non-blank text.
func nonEmptyString(obj *value.Object, key string) bool {
	v, ok := obj.Get(key)
	if !ok {
		return false
	}
	s, isString := v.AsString()
	return isString && strings.TrimSpace(s) != ""
}

// synthesize derives the note fields implied by the column itself. A key is
// produced only when the gate allows it and the user has not set it.
func synthesize(col *schema.Column, isLabel bool, tables []schema.Table, settings schema.Settings) *value.Object {
	user := col.Overrides
	cons := col.Constraints
	out := value.NewObject()

	emit := func(key string, v value.Value) {
		if MayEmit(key, settings) && !userHas(user, key) {
			out.Set(key, v)
		}
	}

	emit(KeyType, value.String(col.Type))
	if col.IsKey {
		emit(KeyIsKey, value.Bool(true))
	}
	if isLabel {
		emit(KeyIsLabel, value.Bool(true))
	}
	if cons.Required && !nonEmptyString(user, KeyRequiredIf) {
		emit(KeyIsRequired, value.Bool(true))
	}
	if cons.DefaultValue != "" {
		emit(KeyDefault, value.String(cons.DefaultValue))
	}
	if col.Description != "" {
		emit(KeyDescription, value.String(col.Description))
	}
	if cons.Pattern != "" {
		emit(KeyValidIf, value.String(validIf(cons.Pattern)))
	}
	if cons.MinValue != nil {
		emit(KeyMinValue, value.Number(cons.MinValue.Finite()))
	}
	if cons.MaxValue != nil {
		emit(KeyMaxValue, value.Number(cons.MaxValue.Finite()))
	}

	if (col.Type == schema.TypeEnum || col.Type == schema.TypeEnumList) && len(cons.EnumValues) > 0 &&
		MayEmit(KeyEnumValues, settings) && !userHas(user, KeyEnumValues) {
		out.Set(KeyEnumValues, value.Strings(cons.EnumValues))
		emit(KeyBaseType, value.String(enumBaseType(cons.EnumValues)))
	}

	if col.Type == schema.TypeRef {
		if ref, ok := schema.FindTable(tables, cons.RefTableID); ok {
			emit(KeyReferencedTableName, value.String(ref.Name))
			if key, ok := ref.RefKeyColumn(cons.RefColumnID); ok {
				emit(KeyReferencedKeyColumn, value.String(key.Name))
				emit(KeyReferencedType, value.String(key.Type))
			}
		}
	}
	return out
}

// validIf wraps a pattern into an AppSheet MATCHES expression.
func validIf(pattern string) string {
	escaped := strings.ReplaceAll(pattern, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	return `MATCHES([_THIS], "` + escaped + `")`
}

func enumBaseType(values []string) string {
	longest := 0
	for _, v := range values {
		if n := utf8.RuneCountInString(v); n > longest {
			longest = n
		}
	}
	if longest > longEnumRunes {
		return schema.TypeLongText
	}
	return schema.TypeText
}
