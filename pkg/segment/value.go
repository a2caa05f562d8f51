package segment

import "strconv"

// Kind identifies which alternative of Value is populated.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
)

// Value is the explicit tagged-variant property value spec.md §9 calls
// for: NVDB attribute columns are schema-free at the value level, and
// the mapper must not lean on Go's own interface{} dynamic typing to
// paper over that — every accessor here states exactly what coercion
// it performs.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
}

// Null is the absent/missing value.
var Null = Value{kind: KindNull}

// String wraps a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Int wraps an integer value.
func Int(i int64) Value { return Value{kind: KindInt, num: float64(i)} }

// Float wraps a floating-point value.
func Float(f float64) Value { return Value{kind: KindFloat, num: f} }

// Bool wraps a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Kind reports the variant currently populated.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is absent.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsString renders the value as its canonical decimal/string form,
// trimmed of surrounding whitespace is the caller's job (rule §4.1
// requires trimming at the point of tag emission, not here). Returns
// ("", false) for Null.
func (v Value) AsString() (string, bool) {
	switch v.kind {
	case KindNull:
		return "", false
	case KindString:
		return v.str, true
	case KindInt:
		return strconv.FormatInt(int64(v.num), 10), true
	case KindFloat:
		return strconv.FormatFloat(v.num, 'f', -1, 64), true
	case KindBool:
		if v.b {
			return "1", true
		}
		return "0", true
	}
	return "", false
}

// AsFloat coerces the value to a float64. A malformed numeric string
// returns (0, false) rather than a zero tag value, matching spec.md
// §4.1's "malformed numeric strings emit no tag" rule.
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case KindInt, KindFloat:
		return v.num, true
	case KindBool:
		if v.b {
			return 1, true
		}
		return 0, true
	case KindString:
		f, err := strconv.ParseFloat(v.str, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// AsInt coerces the value to an int64 by the same rules as AsFloat,
// truncating any fractional part.
func (v Value) AsInt() (int64, bool) {
	f, ok := v.AsFloat()
	if !ok {
		return 0, false
	}
	return int64(f), true
}

// AsBool coerces the value to a boolean flag. Per spec.md §9:
// "1", 1, true are all equivalent, and likewise for false/"0"/0.
// Any other string is treated as absent (not a flag value).
func (v Value) AsBool() (bool, bool) {
	switch v.kind {
	case KindBool:
		return v.b, true
	case KindInt:
		return v.num != 0, true
	case KindFloat:
		return v.num != 0, true
	case KindString:
		switch v.str {
		case "1", "true", "True", "TRUE", "yes", "Yes":
			return true, true
		case "0", "false", "False", "FALSE", "no", "No":
			return false, true
		}
		return false, false
	}
	return false, false
}
