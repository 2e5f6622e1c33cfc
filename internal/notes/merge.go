package notes

import (
	"waiwaier/internal/schema"
	"waiwaier/internal/value"
)

// merge lays the user's overrides over the synthesized fields and returns a
// new object; base is not modified.
func merge(base, user *value.Object, settings schema.Settings) *value.Object {
	out := base.Clone()
	requiredIf := nonEmptyString(user, KeyRequiredIf)

	user.Range(func(key string, v value.Value) bool {
		if key == schema.RawOverrideKey {
			return true
		}
		key = canonicalKey(key)
		if key == KeyIsRequired && requiredIf {
			return true
		}
		if v.IsNull() {
			out.Delete(key)
			return true
		}
		if isFormulaKey(key) || MayEmit(key, settings) {
			out.Set(key, v)
		}
		return true
	})

	// a conditional requirement always wins over the plain flag
	if nonEmptyString(out, KeyRequiredIf) {
		out.Delete(KeyIsRequired)
	}
	return out
}
