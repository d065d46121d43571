// Package tree holds the nested output of the decomposers and its flattened projection.
//
// A Node is one of a closed set of variants:
//
//	Scalar  text, integer, decimal, boolean or absent (nil)
//	List    ordered sequence of nodes
//	Record  ordered keyed fields
//	Opaque  user-supplied key/value pairs (query parameters), never flattened
package tree

import (
	"bytes"
	"encoding/json"
)

// Node is a value in the component tree.
type Node interface {
	node()
}

// Scalar is a leaf. Value is nil, string, int, float64 or bool.
type Scalar struct {
	Value any
}

// List is an ordered sequence of nodes.
type List []Node

// Opaque is a flat mapping kept intact by Flatten.
type Opaque map[string]string

// Record keeps its keys in insertion order.
type Record struct {
	keys   []string
	fields map[string]Node
}

func (Scalar) node()  {}
func (List) node()    {}
func (Opaque) node()  {}
func (*Record) node() {}

// Text returns a scalar holding s.
func Text(s string) Scalar { return Scalar{Value: s} }

// OptionalText returns a scalar holding *s, or an absent scalar when s is nil.
func OptionalText(s *string) Scalar {
	if s == nil {
		return Scalar{}
	}
	return Scalar{Value: *s}
}

// OptionalInt returns a scalar holding *i, or an absent scalar when i is nil.
func OptionalInt(i *int) Scalar {
	if i == nil {
		return Scalar{}
	}
	return Scalar{Value: *i}
}

// Bool returns a scalar holding b.
func Bool(b bool) Scalar { return Scalar{Value: b} }

// Absent is the nil scalar.
func Absent() Scalar { return Scalar{} }

// Texts converts a string slice into a list of text scalars.
// A nil slice yields an absent scalar so the field renders as null.
func Texts(values []string) Node {
	if values == nil {
		return Scalar{}
	}
	list := make(List, 0, len(values))
	for _, v := range values {
		list = append(list, Text(v))
	}
	return list
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{fields: make(map[string]Node)}
}

// Set stores n under key. Setting an existing key keeps its position.
func (r *Record) Set(key string, n Node) *Record {
	if _, exists := r.fields[key]; !exists {
		r.keys = append(r.keys, key)
	}
	r.fields[key] = n
	return r
}

// Get returns the node stored under key.
func (r *Record) Get(key string) (Node, bool) {
	n, ok := r.fields[key]
	return n, ok
}

// Keys returns the keys in insertion order.
func (r *Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of fields.
func (r *Record) Len() int {
	return len(r.keys)
}

// MarshalJSON implements json.Marshaler
func (s Scalar) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Value)
}

// MarshalJSON preserves field order.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')

		v, err := json.Marshal(r.fields[key])
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
