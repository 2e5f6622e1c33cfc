package notes

import (
	"strings"

	"waiwaier/internal/value"
)

// relocate moves formula keys out of the top level into TypeAuxData, which
// holds the JSON text of {formulaKey: expression} merged over any aux data
// already present. obj is not modified.
func relocate(obj, user *value.Object) *value.Object {
	found := false
	for _, k := range formulaKeys {
		if obj.Has(k) {
			found = true
			break
		}
	}
	if !found {
		return obj
	}

	out := obj.Clone()
	var aux *value.Object
	if v, ok := out.Get(KeyTypeAuxData); ok {
		aux = parseAux(v)
	} else if v, ok := user.Get(KeyTypeAuxData); ok {
		aux = parseAux(v)
	} else {
		aux = value.NewObject()
	}

	for _, k := range formulaKeys {
		v, ok := out.Get(k)
		if !ok {
			continue
		}
		out.Delete(k)
		if v.IsNull() {
			continue
		}
		text := v.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		aux.Set(k, value.String(text))
	}

	if aux.Len() == 0 && !out.Has(KeyTypeAuxData) {
		return out
	}
	out.Set(KeyTypeAuxData, value.String(aux.Text()))
	return out
}

// parseAux reads pre-existing aux data: an object, JSON object text, or JSON
// text that was escaped once more. Anything else reads as empty.
func parseAux(v value.Value) *value.Object {
	if obj, ok := v.AsObject(); ok {
		return obj.Clone()
	}
	s, ok := v.AsString()
	if !ok || strings.TrimSpace(s) == "" {
		return value.NewObject()
	}

	if obj, ok := parseObjectText(s); ok {
		return obj
	}
	// escaped form: {\"Show_If\":\"...\"}
	if inner, err := value.Parse(`"` + s + `"`); err == nil {
		if text, ok := inner.AsString(); ok {
			if obj, ok := parseObjectText(text); ok {
				return obj
			}
		}
	}
	return value.NewObject()
}

// parseObjectText parses s as a JSON object, also accepting a JSON string
// literal that contains one.
func parseObjectText(s string) (*value.Object, bool) {
	v, err := value.Parse(s)
	if err != nil {
		return nil, false
	}
	if text, ok := v.AsString(); ok {
		if v, err = value.Parse(text); err != nil {
			return nil, false
		}
	}
	obj, ok := v.AsObject()
	if !ok {
		return nil, false
	}
	return obj.Clone(), true
}
