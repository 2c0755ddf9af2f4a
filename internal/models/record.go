package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// Record decoding errors.
var (
	ErrInvalidJSON     = errors.New("invalid JSON")
	ErrRecordNotObject = errors.New("record must be a JSON object")
)

// Field is a single key/value pair of a Record.
type Field struct {
	Key   string
	Value Value
}

// F builds a Field from a plain Go value.
func F(key string, v any) Field {
	return Field{Key: key, Value: FromAny(v)}
}

// Record is an ordered mapping from field name to Value. Keys are unique and
// keep their first insertion position.
type Record struct {
	fields []Field
	index  map[string]int
}

// NewRecord creates a record from the given fields, in order.
func NewRecord(fields ...Field) *Record {
	r := &Record{
		fields: make([]Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}

	for _, f := range fields {
		r.Set(f.Key, f.Value)
	}

	return r
}

// Set stores v under key. An existing key is updated in place.
func (r *Record) Set(key string, v Value) {
	if r.index == nil {
		r.index = make(map[string]int)
	}

	if i, ok := r.index[key]; ok {
		r.fields[i].Value = v

		return
	}

	r.index[key] = len(r.fields)
	r.fields = append(r.fields, Field{Key: key, Value: v})
}

// Get returns the value stored under key.
func (r *Record) Get(key string) (Value, bool) {
	if r == nil {
		return Value{}, false
	}

	i, ok := r.index[key]
	if !ok {
		return Value{}, false
	}

	return r.fields[i].Value, true
}

// Has reports whether key is present.
func (r *Record) Has(key string) bool {
	_, ok := r.Get(key)

	return ok
}

// Len returns the number of fields.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}

	return len(r.fields)
}

// Keys returns the field names in insertion order.
func (r *Record) Keys() []string {
	if r == nil {
		return nil
	}

	keys := make([]string, len(r.fields))
	for i, f := range r.fields {
		keys[i] = f.Key
	}

	return keys
}

// Range calls fn for each field in insertion order until fn returns false.
func (r *Record) Range(fn func(key string, v Value) bool) {
	if r == nil {
		return
	}

	for _, f := range r.fields {
		if !fn(f.Key, f.Value) {
			return
		}
	}
}

// MarshalJSON encodes the record as a JSON object preserving field order.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	if r != nil {
		for i, f := range r.fields {
			if i > 0 {
				buf.WriteByte(',')
			}

			key, err := json.Marshal(f.Key)
			if err != nil {
				return nil, fmt.Errorf("failed to encode key %q: %w", f.Key, err)
			}

			val, err := f.Value.MarshalJSON()
			if err != nil {
				return nil, fmt.Errorf("failed to encode field %q: %w", f.Key, err)
			}

			buf.Write(key)
			buf.WriteByte(':')
			buf.Write(val)
		}
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping the document's key order.
func (r *Record) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return ErrInvalidJSON
	}

	res := gjson.ParseBytes(data)
	if !res.IsObject() {
		return ErrRecordNotObject
	}

	*r = *recordFromResult(res)

	return nil
}

func recordFromResult(res gjson.Result) *Record {
	r := NewRecord()

	res.ForEach(func(key, val gjson.Result) bool {
		r.Set(key.String(), valueFromResult(val))

		return true
	})

	return r
}

func valueFromResult(res gjson.Result) Value {
	switch res.Type {
	case gjson.Null:
		return NullValue()
	case gjson.False:
		return BoolValue(false)
	case gjson.True:
		return BoolValue(true)
	case gjson.Number:
		return numberLiteral(res.Num, res.Raw)
	case gjson.String:
		return StringValue(res.Str)
	case gjson.JSON:
		return NestedValue([]byte(res.Raw))
	default:
		return NullValue()
	}
}
