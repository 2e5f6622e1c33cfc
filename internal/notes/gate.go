package notes

import "waiwaier/internal/schema"

// formulaKeys are relocated into TypeAuxData rather than emitted at the top
// level. The order is the order they are written into the aux object.
var formulaKeys = []string{KeyShowIf, KeyRequiredIf, KeyEditableIf, KeyResetIf}

func isFormulaKey(key string) bool {
	for _, k := range formulaKeys {
		if k == key {
			return true
		}
	}
	return false
}

// canonicalKey folds the legacy default-value spelling into the current one.
func canonicalKey(key string) string {
	if key == KeyInitialValue {
		return KeyDefault
	}
	return key
}

// MayEmit decides whether key may appear in a note.
//
// Without settings only Verified (or allow-listed) keys pass. Saved settings
// replace that policy entirely: a key passes only when explicitly true. The
// default-value key accepts either spelling, current first.
func MayEmit(key string, settings schema.Settings) bool {
	key = canonicalKey(key)
	if settings == nil {
		return StatusOf(key) == Verified || exportAllowList[key]
	}
	if key == KeyDefault {
		if v, ok := settings[KeyDefault]; ok {
			return v
		}
		return settings[KeyInitialValue]
	}
	return settings[key]
}
