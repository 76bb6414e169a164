package codec

import (
	"encoding/binary"
	"math"
)

// Writer encodes values into a Cursor, growing it as needed.
type Writer struct {
	c *Cursor
}

// NewWriter returns a writer over an empty cursor.
func NewWriter() *Writer {
	return &Writer{c: Empty()}
}

// WriterOn returns a writer sharing c's buffer and position.
func WriterOn(c *Cursor) *Writer {
	return &Writer{c: c}
}

// Cursor returns the underlying cursor.
func (w *Writer) Cursor() *Cursor { return w.c }

// Bytes returns everything written so far.
func (w *Writer) Bytes() []byte { return w.c.Bytes() }

// Len returns the number of bytes in the buffer.
func (w *Writer) Len() int { return w.c.Len() }

// WriteUint8 writes one byte.
func (w *Writer) WriteUint8(v uint8) error {
	b, err := w.c.reserve(1)
	if err != nil {
		return err
	}
	b[0] = v
	return nil
}

// WriteByte writes one byte. It makes Writer an io.ByteWriter.
func (w *Writer) WriteByte(v byte) error {
	return w.WriteUint8(v)
}

// WriteInt8 writes one signed byte.
func (w *Writer) WriteInt8(v int8) error {
	return w.WriteUint8(uint8(v))
}

// WriteBool writes 1 for true and 0 for false.
func (w *Writer) WriteBool(v bool) error {
	if v {
		return w.WriteUint8(1)
	}
	return w.WriteUint8(0)
}

// WriteUint16 writes a little-endian uint16.
func (w *Writer) WriteUint16(v uint16) error {
	b, err := w.c.reserve(2)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(b, v)
	return nil
}

// WriteInt16 writes a little-endian int16.
func (w *Writer) WriteInt16(v int16) error {
	return w.WriteUint16(uint16(v))
}

// WriteUint32 writes a little-endian uint32.
func (w *Writer) WriteUint32(v uint32) error {
	b, err := w.c.reserve(4)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(b, v)
	return nil
}

// WriteInt32 writes a little-endian int32.
func (w *Writer) WriteInt32(v int32) error {
	return w.WriteUint32(uint32(v))
}

// WriteUint64 writes a little-endian uint64.
func (w *Writer) WriteUint64(v uint64) error {
	b, err := w.c.reserve(8)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(b, v)
	return nil
}

// WriteInt64 writes a little-endian int64.
func (w *Writer) WriteInt64(v int64) error {
	return w.WriteUint64(uint64(v))
}

// WriteFloat32 writes a little-endian IEEE-754 single.
func (w *Writer) WriteFloat32(v float32) error {
	return w.WriteUint32(math.Float32bits(v))
}

// WriteFloat64 writes a little-endian IEEE-754 double.
func (w *Writer) WriteFloat64(v float64) error {
	return w.WriteUint64(math.Float64bits(v))
}

// WriteBytes writes p verbatim.
func (w *Writer) WriteBytes(p []byte) error {
	b, err := w.c.reserve(len(p))
	if err != nil {
		return err
	}
	copy(b, p)
	return nil
}

// Write implements io.Writer.
func (w *Writer) Write(p []byte) (int, error) {
	if err := w.WriteBytes(p); err != nil {
		return 0, err
	}
	return len(p), nil
}
