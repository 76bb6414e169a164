package layout

import (
	"encoding/base64"
	"encoding/json"
	"math"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"github.com/ssargent/osubuf/pkg/codec"
)

// Encode writes one record of layout l from values keyed by field name.
//
// Values may be the Go types Decode produces or their JSON-decoded shapes:
// float64 or json.Number for numbers, RFC3339 strings for datetimes,
// base64 strings for bytes and blobs, []any for arrays and pair lists.
// A missing value is an error except for nullable strings, which are
// written as absent. A nil *string is written as absent for any string
// field.
func Encode(w *codec.Writer, l Layout, values map[string]any) error {
	for _, f := range l.Fields {
		v, ok := values[f.Name]
		if !ok || v == nil {
			if f.Type == TypeString && f.Nullable {
				if err := w.WriteUint8(codec.TagAbsent); err != nil {
					return err
				}
				continue
			}
			return errors.Wrapf(ErrMissingField, "layout %q field %q", l.Name, f.Name)
		}
		if err := encodeField(w, f, v); err != nil {
			return errors.Wrapf(err, "layout %q field %q", l.Name, f.Name)
		}
	}
	return nil
}

// EncodeRecord writes a previously decoded record back with layout l.
// Absent strings stay absent whether or not the field is nullable.
func EncodeRecord(w *codec.Writer, l Layout, rec *Record) error {
	values := make(map[string]any, len(rec.Values))
	for _, v := range rec.Values {
		values[v.Name] = v.Value
	}
	return Encode(w, l, values)
}

func encodeField(w *codec.Writer, f Field, v any) error {
	switch f.Type {
	case TypeUint8:
		n, err := toUint(v, math.MaxUint8)
		if err != nil {
			return err
		}
		return w.WriteUint8(uint8(n))
	case TypeInt8:
		n, err := toInt(v, math.MinInt8, math.MaxInt8)
		if err != nil {
			return err
		}
		return w.WriteInt8(int8(n))
	case TypeBool:
		b, err := toBool(v)
		if err != nil {
			return err
		}
		return w.WriteBool(b)
	case TypeUint16:
		n, err := toUint(v, math.MaxUint16)
		if err != nil {
			return err
		}
		return w.WriteUint16(uint16(n))
	case TypeInt16:
		n, err := toInt(v, math.MinInt16, math.MaxInt16)
		if err != nil {
			return err
		}
		return w.WriteInt16(int16(n))
	case TypeUint32:
		n, err := toUint(v, math.MaxUint32)
		if err != nil {
			return err
		}
		return w.WriteUint32(uint32(n))
	case TypeInt32:
		n, err := toInt(v, math.MinInt32, math.MaxInt32)
		if err != nil {
			return err
		}
		return w.WriteInt32(int32(n))
	case TypeUint64:
		n, err := toUint(v, math.MaxUint64)
		if err != nil {
			return err
		}
		return w.WriteUint64(n)
	case TypeInt64:
		n, err := toInt(v, math.MinInt64, math.MaxInt64)
		if err != nil {
			return err
		}
		return w.WriteInt64(n)
	case TypeFloat32:
		x, err := toFloat(v)
		if err != nil {
			return err
		}
		return w.WriteFloat32(float32(x))
	case TypeFloat64:
		x, err := toFloat(v)
		if err != nil {
			return err
		}
		return w.WriteFloat64(x)
	case TypeVarint:
		n, err := toUint(v, math.MaxUint64)
		if err != nil {
			return err
		}
		return w.WriteVarint(n)
	case TypeString:
		if p, ok := v.(*string); ok && p == nil {
			return w.WriteNullableString(nil)
		}
		s, err := toString(v)
		if err != nil {
			return err
		}
		return w.WriteString(s, f.Nullable)
	case TypeChars:
		s, err := toString(v)
		if err != nil {
			return err
		}
		if n := utf8.RuneCountInString(s); n != f.Length {
			return errors.Wrapf(ErrInvalidValue, "chars field wants %d characters, got %d", f.Length, n)
		}
		return w.WriteChars(s)
	case TypeDateTime:
		t, err := toTime(v)
		if err != nil {
			return err
		}
		return w.WriteDateTime(t)
	case TypeBytes:
		b, err := toBytes(v)
		if err != nil {
			return err
		}
		if len(b) != f.Length {
			return errors.Wrapf(ErrInvalidValue, "bytes field wants %d bytes, got %d", f.Length, len(b))
		}
		return w.WriteBytes(b)
	case TypeBlob:
		b, err := toBytes(v)
		if err != nil {
			return err
		}
		if len(b) > math.MaxInt32 {
			return errors.Wrapf(codec.ErrCollectionTooLarge, "blob of %d bytes", len(b))
		}
		if err := w.WriteInt32(int32(len(b))); err != nil {
			return err
		}
		return w.WriteBytes(b)
	case TypeInt32Array:
		vals, err := toInt32Slice(v)
		if err != nil {
			return err
		}
		return w.WriteInt32Array(vals)
	case TypeInt32DoublePairs:
		p, err := toPairs(v)
		if err != nil {
			return err
		}
		return w.WriteInt32DoublePairs(p)
	default:
		return errors.Wrapf(ErrUnknownType, "%q", f.Type)
	}
}

func invalid(v any, want string) error {
	return errors.Wrapf(ErrInvalidValue, "%T(%v) is not %s", v, v, want)
}

func toInt(v any, lo, hi int64) (int64, error) {
	var n int64
	switch x := v.(type) {
	case int:
		n = int64(x)
	case int8:
		n = int64(x)
	case int16:
		n = int64(x)
	case int32:
		n = int64(x)
	case int64:
		n = x
	case uint8:
		n = int64(x)
	case uint16:
		n = int64(x)
	case uint32:
		n = int64(x)
	case uint64:
		if x > math.MaxInt64 {
			return 0, invalid(v, "in range")
		}
		n = int64(x)
	case float64:
		if x != math.Trunc(x) || x < math.MinInt64 || x >= math.MaxInt64 {
			return 0, invalid(v, "an integer")
		}
		n = int64(x)
	case json.Number:
		p, err := strconv.ParseInt(x.String(), 10, 64)
		if err != nil {
			return 0, invalid(v, "an integer")
		}
		n = p
	case string:
		p, err := strconv.ParseInt(x, 10, 64)
		if err != nil {
			return 0, invalid(v, "an integer")
		}
		n = p
	default:
		return 0, invalid(v, "an integer")
	}
	if n < lo || n > hi {
		return 0, errors.Wrapf(ErrInvalidValue, "%d outside [%d, %d]", n, lo, hi)
	}
	return n, nil
}

func toUint(v any, hi uint64) (uint64, error) {
	var n uint64
	switch x := v.(type) {
	case uint:
		n = uint64(x)
	case uint8:
		n = uint64(x)
	case uint16:
		n = uint64(x)
	case uint32:
		n = uint64(x)
	case uint64:
		n = x
	case json.Number:
		p, err := strconv.ParseUint(x.String(), 10, 64)
		if err != nil {
			return 0, invalid(v, "an unsigned integer")
		}
		n = p
	case string:
		p, err := strconv.ParseUint(x, 10, 64)
		if err != nil {
			return 0, invalid(v, "an unsigned integer")
		}
		n = p
	case float64:
		if x != math.Trunc(x) || x < 0 || x >= math.MaxUint64 {
			return 0, invalid(v, "an unsigned integer")
		}
		n = uint64(x)
	default:
		s, err := toInt(v, 0, math.MaxInt64)
		if err != nil {
			return 0, invalid(v, "an unsigned integer")
		}
		n = uint64(s)
	}
	if n > hi {
		return 0, errors.Wrapf(ErrInvalidValue, "%d above %d", n, hi)
	}
	return n, nil
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, invalid(v, "a number")
		}
		return f, nil
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0, invalid(v, "a number")
		}
		return f, nil
	default:
		n, err := toInt(v, math.MinInt64, math.MaxInt64)
		if err != nil {
			return 0, invalid(v, "a number")
		}
		return float64(n), nil
	}
}

func toBool(v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case string:
		b, err := strconv.ParseBool(x)
		if err != nil {
			return false, invalid(v, "a bool")
		}
		return b, nil
	default:
		n, err := toInt(v, math.MinInt64, math.MaxInt64)
		if err != nil {
			return false, invalid(v, "a bool")
		}
		return n != 0, nil
	}
}

func toString(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case *string:
		if x == nil {
			return "", nil
		}
		return *x, nil
	default:
		return "", invalid(v, "a string")
	}
}

func toTime(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case string:
		t, err := time.Parse(time.RFC3339Nano, x)
		if err != nil {
			return time.Time{}, invalid(v, "an RFC3339 time")
		}
		return t, nil
	default:
		ticks, err := toUint(v, math.MaxUint64)
		if err != nil {
			return time.Time{}, invalid(v, "a time or tick count")
		}
		return codec.TimeFromTicks(ticks), nil
	}
}

func toBytes(v any) ([]byte, error) {
	switch x := v.(type) {
	case []byte:
		return x, nil
	case string:
		b, err := base64.StdEncoding.DecodeString(x)
		if err != nil {
			return nil, invalid(v, "base64")
		}
		return b, nil
	default:
		return nil, invalid(v, "bytes")
	}
}

func toInt32Slice(v any) ([]int32, error) {
	switch x := v.(type) {
	case []int32:
		return x, nil
	case []any:
		out := make([]int32, len(x))
		for i, e := range x {
			n, err := toInt(e, math.MinInt32, math.MaxInt32)
			if err != nil {
				return nil, errors.Wrapf(err, "element %d", i)
			}
			out[i] = int32(n)
		}
		return out, nil
	default:
		return nil, invalid(v, "an int32 array")
	}
}

func toPairs(v any) (*codec.Pairs[int32, float64], error) {
	p := codec.NewPairs[int32, float64]()
	switch x := v.(type) {
	case *codec.Pairs[int32, float64]:
		return x, nil
	case []Pair:
		for _, e := range x {
			p.Set(e.Key, e.Value)
		}
		return p, nil
	case []any:
		for i, e := range x {
			m, ok := e.(map[string]any)
			if !ok {
				return nil, errors.Wrapf(invalid(e, "a {key, value} object"), "pair %d", i)
			}
			k, err := toInt(m["key"], math.MinInt32, math.MaxInt32)
			if err != nil {
				return nil, errors.Wrapf(err, "pair %d key", i)
			}
			f, err := toFloat(m["value"])
			if err != nil {
				return nil, errors.Wrapf(err, "pair %d value", i)
			}
			p.Set(int32(k), f)
		}
		return p, nil
	default:
		return nil, invalid(v, "a pair list")
	}
}
