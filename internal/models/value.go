// Package models defines the record and value types that flow through the cleaning and validation pipeline.
package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/pretty"
)

// Kind identifies the variant held by a Value.
type Kind int

// Value kinds.
const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindTime
	KindNested
)

// String returns the lower-case kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	case KindNested:
		return "nested"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a tagged union over the shapes a scraped field can take.
// The zero Value is null.
type Value struct {
	kind Kind
	str  string // string payload, or the raw literal of a decoded number
	num  float64
	b    bool
	t    time.Time
	raw  json.RawMessage
}

// NullValue returns the null value.
func NullValue() Value {
	return Value{}
}

// StringValue wraps a string.
func StringValue(s string) Value {
	return Value{kind: KindString, str: s}
}

// NumberValue wraps a number.
func NumberValue(f float64) Value {
	return Value{kind: KindNumber, num: f}
}

// BoolValue wraps a boolean.
func BoolValue(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// TimeValue wraps an already-typed date/time.
func TimeValue(t time.Time) Value {
	return Value{kind: KindTime, t: t}
}

// NestedValue wraps an opaque JSON object or array, stored compacted.
func NestedValue(raw []byte) Value {
	return Value{kind: KindNested, raw: pretty.Ugly(raw)}
}

// numberLiteral keeps the exact source text of a decoded number so that
// re-encoding does not lose precision.
func numberLiteral(f float64, literal string) Value {
	return Value{kind: KindNumber, num: f, str: literal}
}

// FromAny converts a plain Go value into a Value. Maps, slices and other
// composite values become Nested via JSON encoding; anything that cannot be
// encoded is stringified.
func FromAny(v any) Value {
	switch x := v.(type) {
	case nil:
		return NullValue()
	case Value:
		return x
	case *Value:
		if x == nil {
			return NullValue()
		}

		return *x
	case string:
		return StringValue(x)
	case bool:
		return BoolValue(x)
	case int:
		return NumberValue(float64(x))
	case int32:
		return NumberValue(float64(x))
	case int64:
		return NumberValue(float64(x))
	case uint:
		return NumberValue(float64(x))
	case uint32:
		return NumberValue(float64(x))
	case uint64:
		return NumberValue(float64(x))
	case float32:
		return NumberValue(float64(x))
	case float64:
		return NumberValue(x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return StringValue(x.String())
		}

		return numberLiteral(f, x.String())
	case time.Time:
		return TimeValue(x)
	case *time.Time:
		if x == nil {
			return NullValue()
		}

		return TimeValue(*x)
	case json.RawMessage:
		return NestedValue(x)
	case *Record:
		if x == nil {
			return NullValue()
		}

		raw, err := x.MarshalJSON()
		if err != nil {
			return StringValue(fmt.Sprint(v))
		}

		return NestedValue(raw)
	case fmt.Stringer:
		return StringValue(x.String())
	default:
		raw, err := json.Marshal(x)
		if err != nil {
			return StringValue(fmt.Sprint(v))
		}

		return NestedValue(raw)
	}
}

// Kind reports the variant held by v.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether v is null.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// Text returns the string payload when v holds a string.
func (v Value) Text() (string, bool) {
	if v.kind != KindString {
		return "", false
	}

	return v.str, true
}

// Number returns the numeric payload when v holds a number.
func (v Value) Number() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}

	return v.num, true
}

// Time returns the time payload when v holds a date/time.
func (v Value) Time() (time.Time, bool) {
	if v.kind != KindTime {
		return time.Time{}, false
	}

	return v.t, true
}

// String returns the canonical string form used wherever a value must be
// treated as text: null is empty, numbers use their shortest decimal form,
// times use RFC 3339 and nested values are compact JSON.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		if v.str != "" {
			return v.str
		}

		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindTime:
		return v.t.Format(time.RFC3339)
	case KindNested:
		return string(v.raw)
	default:
		return ""
	}
}

// IsBlank reports whether v is null or stringifies to whitespace only.
func (v Value) IsBlank() bool {
	return v.kind == KindNull || strings.TrimSpace(v.String()) == ""
}

// Equal reports whether two values hold the same variant and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}

	switch v.kind {
	case KindNull:
		return true
	case KindNumber:
		return v.num == o.num
	case KindTime:
		return v.t.Equal(o.t)
	default:
		return v.String() == o.String()
	}
}

// MarshalJSON encodes v as its natural JSON form.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		if v.str != "" {
			return []byte(v.str), nil
		}

		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.b)
	case KindTime:
		return json.Marshal(v.t.Format(time.RFC3339))
	case KindNested:
		if len(v.raw) == 0 {
			return []byte("null"), nil
		}

		return v.raw, nil
	default:
		return []byte("null"), nil
	}
}
