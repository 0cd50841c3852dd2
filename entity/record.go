package entity

import (
	"github.com/tidwall/gjson"
)

// Record holds a single raw JSON object as extracted from an upstream
// endpoint. No schema is enforced upstream, so all field access goes through
// the accessors below, each of which takes the default to use when the field
// is missing or null.
//
// For fields present with an unexpected type the gjson coercion rules apply
// (e.g. a numeric string is parsed as a number, a number is rendered as a
// string); values that cannot be coerced collapse to the type's zero value.
// Field access never fails.
type Record []byte

// Str returns the string value at path, or def if the field is missing or null.
func (r Record) Str(path string, def string) string {
	v := gjson.GetBytes(r, path)
	if !v.Exists() || v.Type == gjson.Null {
		return def
	}
	return v.String()
}

// Int returns the integer value at path, or def if the field is missing or null.
func (r Record) Int(path string, def int64) int64 {
	v := gjson.GetBytes(r, path)
	if !v.Exists() || v.Type == gjson.Null {
		return def
	}
	return v.Int()
}

// Float returns the float value at path, or def if the field is missing or null.
func (r Record) Float(path string, def float64) float64 {
	v := gjson.GetBytes(r, path)
	if !v.Exists() || v.Type == gjson.Null {
		return def
	}
	return v.Float()
}

// Bool returns the bool value at path, or def if the field is missing or null.
func (r Record) Bool(path string, def bool) bool {
	v := gjson.GetBytes(r, path)
	if !v.Exists() || v.Type == gjson.Null {
		return def
	}
	return v.Bool()
}

// Each returns the elements of the array at path as Records.
// A missing, null or non-array value yields a nil slice.
func (r Record) Each(path string) []Record {
	v := gjson.GetBytes(r, path)
	if !v.IsArray() {
		return nil
	}
	var items []Record
	for _, item := range v.Array() {
		items = append(items, Record(item.Raw))
	}
	return items
}

// Exists reports whether a non-null value is present at path.
func (r Record) Exists(path string) bool {
	v := gjson.GetBytes(r, path)
	return v.Exists() && v.Type != gjson.Null
}

// Truncate cuts s down to at most max code points (not bytes).
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
