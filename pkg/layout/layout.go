// Package layout describes records as ordered lists of typed fields and
// decodes or encodes them with the codec package.
//
// A layout is the field order a consumer would otherwise hard-code: one
// typed read per field, in sequence, against a single cursor.
package layout

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// FieldType names the wire encoding of a field.
type FieldType string

// Supported field types.
const (
	TypeUint8            FieldType = "uint8"
	TypeInt8             FieldType = "int8"
	TypeBool             FieldType = "bool"
	TypeUint16           FieldType = "uint16"
	TypeInt16            FieldType = "int16"
	TypeUint32           FieldType = "uint32"
	TypeInt32            FieldType = "int32"
	TypeUint64           FieldType = "uint64"
	TypeInt64            FieldType = "int64"
	TypeFloat32          FieldType = "float32"
	TypeFloat64          FieldType = "float64"
	TypeVarint           FieldType = "varint"
	TypeString           FieldType = "string"
	TypeChars            FieldType = "chars"
	TypeDateTime         FieldType = "datetime"
	TypeBytes            FieldType = "bytes"
	TypeBlob             FieldType = "blob"
	TypeInt32Array       FieldType = "int32array"
	TypeInt32DoublePairs FieldType = "int32doublepairs"
)

// fixedSizes holds the encoded size of every fixed-width type.
var fixedSizes = map[FieldType]int{
	TypeUint8:    1,
	TypeInt8:     1,
	TypeBool:     1,
	TypeUint16:   2,
	TypeInt16:    2,
	TypeUint32:   4,
	TypeInt32:    4,
	TypeUint64:   8,
	TypeInt64:    8,
	TypeFloat32:  4,
	TypeFloat64:  8,
	TypeDateTime: 8,
}

var variableTypes = map[FieldType]bool{
	TypeVarint:           true,
	TypeString:           true,
	TypeChars:            true,
	TypeBytes:            true,
	TypeBlob:             true,
	TypeInt32Array:       true,
	TypeInt32DoublePairs: true,
}

// Valid reports whether t is a known field type.
func (t FieldType) Valid() bool {
	_, fixed := fixedSizes[t]
	return fixed || variableTypes[t]
}

// Field is one typed entry of a layout.
type Field struct {
	Name string    `yaml:"name" json:"name"`
	Type FieldType `yaml:"type" json:"type"`
	// Length is the byte count of bytes and chars fields.
	Length int `yaml:"length,omitempty" json:"length,omitempty"`
	// Nullable writes an empty string field as absent.
	Nullable bool `yaml:"nullable,omitempty" json:"nullable,omitempty"`
}

// Layout is a named, ordered list of fields.
type Layout struct {
	Name        string  `yaml:"name" json:"name"`
	Description string  `yaml:"description,omitempty" json:"description,omitempty"`
	Fields      []Field `yaml:"fields" json:"fields"`
}

// Validate checks field names and types.
func (l Layout) Validate() error {
	if l.Name == "" {
		return errors.Wrap(ErrInvalidLayout, "layout name is required")
	}
	if len(l.Fields) == 0 {
		return errors.Wrapf(ErrInvalidLayout, "layout %q has no fields", l.Name)
	}
	seen := make(map[string]bool, len(l.Fields))
	for i, f := range l.Fields {
		if f.Name == "" {
			return errors.Wrapf(ErrInvalidLayout, "layout %q field %d has no name", l.Name, i)
		}
		if seen[f.Name] {
			return errors.Wrapf(ErrInvalidLayout, "layout %q has duplicate field %q", l.Name, f.Name)
		}
		seen[f.Name] = true
		if !f.Type.Valid() {
			return errors.Wrapf(ErrUnknownType, "layout %q field %q: %q", l.Name, f.Name, f.Type)
		}
		switch f.Type {
		case TypeBytes, TypeChars:
			if f.Length <= 0 {
				return errors.Wrapf(ErrInvalidLayout, "layout %q field %q: %s needs a positive length", l.Name, f.Name, f.Type)
			}
		default:
			if f.Length != 0 {
				return errors.Wrapf(ErrInvalidLayout, "layout %q field %q: length only applies to bytes and chars", l.Name, f.Name)
			}
		}
		if f.Nullable && f.Type != TypeString {
			return errors.Wrapf(ErrInvalidLayout, "layout %q field %q: only string fields can be nullable", l.Name, f.Name)
		}
	}
	return nil
}

// WithNullableStrings returns a copy of l with every string field nullable.
func (l Layout) WithNullableStrings() Layout {
	fields := make([]Field, len(l.Fields))
	copy(fields, l.Fields)
	for i := range fields {
		if fields[i].Type == TypeString {
			fields[i].Nullable = true
		}
	}
	l.Fields = fields
	return l
}

// MinSize returns the smallest number of bytes a record of this layout
// can occupy.
func (l Layout) MinSize() int {
	n := 0
	for _, f := range l.Fields {
		switch f.Type {
		case TypeBytes, TypeChars:
			n += f.Length
		case TypeVarint, TypeString:
			n++
		case TypeInt32Array:
			n += 2
		case TypeBlob, TypeInt32DoublePairs:
			n += 4
		default:
			n += fixedSizes[f.Type]
		}
	}
	return n
}

// String renders the layout as "name(field:type, ...)".
func (l Layout) String() string {
	s := l.Name + "("
	for i, f := range l.Fields {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%s:%s", f.Name, f.Type)
	}
	return s + ")"
}
