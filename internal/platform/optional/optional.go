// Package optional provides request body fields that tell an absent field
// apart from an explicit null.
package optional

import (
	"bytes"
	"encoding/json"
	"reflect"

	"github.com/danielgtaylor/huma/v2"
	"github.com/fxamacker/cbor/v2"
)

var jsonNull = []byte("null")

// CBOR simple values null and undefined.
const (
	cborNull      = 0xf6
	cborUndefined = 0xf7
)

// Value is a nullable field that may be omitted. Sent is false when the key
// was absent; Null is true when it was sent as null.
type Value[T any] struct {
	Sent  bool
	Null  bool
	Value T
}

// Of returns a sent, non-null Value.
func Of[T any](v T) Value[T] {
	return Value[T]{Sent: true, Value: v}
}

// Ptr returns nil when the value is absent or null.
func (v Value[T]) Ptr() *T {
	if !v.Sent || v.Null {
		return nil
	}
	out := v.Value
	return &out
}

func (v *Value[T]) UnmarshalJSON(b []byte) error {
	v.Sent = true
	if bytes.Equal(bytes.TrimSpace(b), jsonNull) {
		v.Null = true
		return nil
	}
	return json.Unmarshal(b, &v.Value)
}

func (v *Value[T]) UnmarshalCBOR(b []byte) error {
	v.Sent = true
	if len(b) == 1 && (b[0] == cborNull || b[0] == cborUndefined) {
		v.Null = true
		return nil
	}
	return cbor.Unmarshal(b, &v.Value)
}

// Schema is the schema of T marked nullable.
func (v Value[T]) Schema(r huma.Registry) *huma.Schema {
	s := r.Schema(reflect.TypeFor[T](), true, "")
	if s.Ref != "" {
		s = r.SchemaFromRef(s.Ref)
	}
	out := *s
	out.Nullable = true
	return &out
}
