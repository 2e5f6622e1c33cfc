package value

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

const hexDigits = "0123456789abcdef"

// Encode renders v in compact JSON text with the lexical rules AppSheet
// expects: lowercase booleans, shortest round-trip numbers, JSON string
// escaping without HTML escapes, objects in insertion order.
func Encode(v Value) string {
	var b strings.Builder
	writeValue(&b, v)
	return b.String()
}

func writeValue(b *strings.Builder, v Value) {
	switch v.kind {
	case KindNull:
		b.WriteString("null")
	case KindBool:
		if v.b {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case KindNumber:
		b.WriteString(FormatNumber(v.n))
	case KindString:
		b.WriteString(Quote(v.s))
	case KindArray:
		b.WriteByte('[')
		for i, it := range v.arr {
			if i > 0 {
				b.WriteByte(',')
			}
			writeValue(b, it)
		}
		b.WriteByte(']')
	case KindObject:
		b.WriteByte('{')
		first := true
		v.obj.Range(func(k string, item Value) bool {
			if !first {
				b.WriteByte(',')
			}
			first = false
			b.WriteString(Quote(k))
			b.WriteByte(':')
			writeValue(b, item)
			return true
		})
		b.WriteByte('}')
	}
}

// FormatNumber prints f the way JavaScript's Number#toString does: integers
// without a fraction, exponent notation outside [1e-6, 1e21). Non-finite
// numbers have no JSON form and print as null.
func FormatNumber(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "null"
	}
	if f == 0 {
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		mant, exp, _ := strings.Cut(s, "e")
		sign := exp[:1]
		n, _ := strconv.Atoi(exp[1:])
		return mant + "e" + sign + strconv.Itoa(n)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Quote returns s as a JSON string literal. Text that is not valid UTF-8
// cannot be encoded faithfully and is wrapped in quotes unchanged.
func Quote(s string) string {
	if !utf8.ValidString(s) {
		return `"` + s + `"`
	}
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 {
				b.WriteString(`\u00`)
				b.WriteByte(hexDigits[r>>4])
				b.WriteByte(hexDigits[r&0xf])
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
