package codec

import (
	"encoding/binary"
	"math"
)

// Reader decodes values from a Cursor.
type Reader struct {
	c *Cursor
}

// NewReader returns a reader over b.
func NewReader(b []byte) *Reader {
	return &Reader{c: FromBytes(b)}
}

// ReaderOn returns a reader sharing c's buffer and position.
func ReaderOn(c *Cursor) *Reader {
	return &Reader{c: c}
}

// Cursor returns the underlying cursor.
func (r *Reader) Cursor() *Cursor { return r.c }

// CanRead reports whether n more bytes can be read.
func (r *Reader) CanRead(n int) bool { return r.c.CanRead(n) }

// AtEnd reports whether all data has been consumed.
func (r *Reader) AtEnd() bool { return r.c.AtEnd() }

// ReadUint8 reads one byte.
func (r *Reader) ReadUint8() (uint8, error) {
	b, err := r.c.Slice(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadByte reads one byte. It is the same as ReadUint8 and makes Reader
// an io.ByteReader.
func (r *Reader) ReadByte() (byte, error) {
	return r.ReadUint8()
}

// ReadInt8 reads one signed byte.
func (r *Reader) ReadInt8() (int8, error) {
	v, err := r.ReadUint8()
	return int8(v), err
}

// ReadBool reads one byte; any non-zero value is true.
func (r *Reader) ReadBool() (bool, error) {
	v, err := r.ReadUint8()
	return v != 0, err
}

// ReadUint16 reads a little-endian uint16.
func (r *Reader) ReadUint16() (uint16, error) {
	b, err := r.c.Slice(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadInt16 reads a little-endian int16.
func (r *Reader) ReadInt16() (int16, error) {
	v, err := r.ReadUint16()
	return int16(v), err
}

// ReadUint32 reads a little-endian uint32.
func (r *Reader) ReadUint32() (uint32, error) {
	b, err := r.c.Slice(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadInt32 reads a little-endian int32.
func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

// ReadUint64 reads a little-endian uint64.
func (r *Reader) ReadUint64() (uint64, error) {
	b, err := r.c.Slice(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// ReadInt64 reads a little-endian int64.
func (r *Reader) ReadInt64() (int64, error) {
	v, err := r.ReadUint64()
	return int64(v), err
}

// ReadFloat32 reads a little-endian IEEE-754 single.
func (r *Reader) ReadFloat32() (float32, error) {
	v, err := r.ReadUint32()
	return math.Float32frombits(v), err
}

// ReadFloat64 reads a little-endian IEEE-754 double.
func (r *Reader) ReadFloat64() (float64, error) {
	v, err := r.ReadUint64()
	return math.Float64frombits(v), err
}

// ReadBytes returns a copy of the next n bytes.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	b, err := r.c.Slice(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}
