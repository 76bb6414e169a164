package layout

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ssargent/osubuf/pkg/codec"
)

// Pair is one entry of a decoded int32doublepairs field.
type Pair struct {
	Key   int32   `json:"key" yaml:"key"`
	Value float64 `json:"value" yaml:"value"`
}

// Value is one decoded field. Value holds the Go type matching the field
// type: integers and floats of the same width, bool, uint64 for varint,
// *string for string (nil when absent), string for chars, time.Time,
// []byte for bytes and blob, []int32 and []Pair for collections.
type Value struct {
	Name  string    `json:"name"`
	Type  FieldType `json:"type"`
	Value any       `json:"value"`
}

// Record is a decoded layout instance with fields in wire order.
type Record struct {
	Layout string  `json:"layout"`
	Size   int     `json:"size"`
	Values []Value `json:"values"`
}

// Get returns the value of the named field.
func (r *Record) Get(name string) (any, bool) {
	for _, v := range r.Values {
		if v.Name == name {
			return v.Value, true
		}
	}
	return nil, false
}

// Map returns the field values keyed by name. Absent strings map to nil.
func (r *Record) Map() map[string]any {
	m := make(map[string]any, len(r.Values))
	for _, v := range r.Values {
		if s, ok := v.Value.(*string); ok {
			if s == nil {
				m[v.Name] = nil
				continue
			}
			m[v.Name] = *s
			continue
		}
		m[v.Name] = v.Value
	}
	return m
}

// Decode reads one record of layout l from r.
func Decode(r *codec.Reader, l Layout) (*Record, error) {
	start := r.Cursor().Position()
	rec := &Record{Layout: l.Name, Values: make([]Value, 0, len(l.Fields))}
	for _, f := range l.Fields {
		v, err := decodeField(r, f)
		if err != nil {
			return nil, errors.Wrapf(err, "layout %q field %q at offset %d", l.Name, f.Name, r.Cursor().Position())
		}
		rec.Values = append(rec.Values, Value{Name: f.Name, Type: f.Type, Value: v})
	}
	rec.Size = r.Cursor().Position() - start
	return rec, nil
}

// DecodeAll reads records of layout l until the input is exhausted.
func DecodeAll(r *codec.Reader, l Layout) ([]*Record, error) {
	var out []*Record
	for !r.AtEnd() {
		rec, err := Decode(r, l)
		if err != nil {
			return out, errors.Wrapf(err, "record %d", len(out))
		}
		out = append(out, rec)
	}
	return out, nil
}

func decodeField(r *codec.Reader, f Field) (any, error) {
	switch f.Type {
	case TypeUint8:
		return r.ReadUint8()
	case TypeInt8:
		return r.ReadInt8()
	case TypeBool:
		return r.ReadBool()
	case TypeUint16:
		return r.ReadUint16()
	case TypeInt16:
		return r.ReadInt16()
	case TypeUint32:
		return r.ReadUint32()
	case TypeInt32:
		return r.ReadInt32()
	case TypeUint64:
		return r.ReadUint64()
	case TypeInt64:
		return r.ReadInt64()
	case TypeFloat32:
		return r.ReadFloat32()
	case TypeFloat64:
		return r.ReadFloat64()
	case TypeVarint:
		return r.ReadVarint()
	case TypeString:
		return r.ReadNullableString()
	case TypeChars:
		return r.ReadChars(f.Length)
	case TypeDateTime:
		t, err := r.ReadDateTime()
		if err != nil {
			return time.Time{}, err
		}
		return t, nil
	case TypeBytes:
		return r.ReadBytes(f.Length)
	case TypeBlob:
		n, err := r.ReadInt32()
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, errors.Wrapf(codec.ErrInvalidLength, "blob length %d", n)
		}
		return r.ReadBytes(int(n))
	case TypeInt32Array:
		return r.ReadInt32Array()
	case TypeInt32DoublePairs:
		p, err := r.ReadInt32DoublePairs()
		if err != nil {
			return nil, err
		}
		out := make([]Pair, 0, p.Len())
		p.Range(func(k int32, v float64) bool {
			out = append(out, Pair{Key: k, Value: v})
			return true
		})
		return out, nil
	default:
		return nil, errors.Wrapf(ErrUnknownType, "%q", f.Type)
	}
}
