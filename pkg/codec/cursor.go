package codec

import "github.com/cockroachdb/errors"

// minGrow is the smallest backing store allocated on the first write.
const minGrow = 64

// Cursor is a byte buffer with a read/write position.
//
// len(c.buf) is the logical length and cap(c.buf) the capacity of the
// backing store, so 0 <= pos <= len(buf) <= cap(buf) holds at all times.
type Cursor struct {
	buf   []byte
	pos   int
	limit int // 0 means unlimited
}

// FromBytes returns a cursor positioned at the start of b. The slice is not
// copied; writes that fit in its capacity are visible to the caller.
func FromBytes(b []byte) *Cursor {
	return &Cursor{buf: b}
}

// FromExisting returns an independent cursor over a copy of c's contents,
// positioned at the start.
func FromExisting(c *Cursor) *Cursor {
	b := make([]byte, len(c.buf))
	copy(b, c.buf)
	return &Cursor{buf: b, limit: c.limit}
}

// Empty returns a cursor with no content and no preallocated capacity.
func Empty() *Cursor {
	return &Cursor{}
}

// WithCapacity returns an empty cursor with n bytes preallocated.
func WithCapacity(n int) *Cursor {
	if n < 0 {
		n = 0
	}
	return &Cursor{buf: make([]byte, 0, n)}
}

// FromLatin1 returns a cursor holding one byte per character of s.
// Characters outside ISO-8859-1 fail with ErrUnrepresentableText.
func FromLatin1(s string) (*Cursor, error) {
	b, err := encodeLatin1(s)
	if err != nil {
		return nil, err
	}
	return FromBytes(b), nil
}

// Position returns the current read/write offset.
func (c *Cursor) Position() int { return c.pos }

// Len returns the number of valid bytes in the buffer.
func (c *Cursor) Len() int { return len(c.buf) }

// Cap returns the capacity of the backing store.
func (c *Cursor) Cap() int { return cap(c.buf) }

// Remaining returns the number of bytes between the position and the end.
func (c *Cursor) Remaining() int { return len(c.buf) - c.pos }

// CanRead reports whether n more bytes can be read.
func (c *Cursor) CanRead(n int) bool {
	return n >= 0 && n <= len(c.buf)-c.pos
}

// AtEnd reports whether the position has reached the end of the data.
func (c *Cursor) AtEnd() bool {
	return c.pos >= len(c.buf)
}

// SetLimit caps the length a cursor may grow to. Zero removes the cap.
func (c *Cursor) SetLimit(n int) {
	if n < 0 {
		n = 0
	}
	c.limit = n
}

// Limit returns the configured growth cap, or zero when unlimited.
func (c *Cursor) Limit() int { return c.limit }

// Bytes returns the valid bytes of the buffer. The result aliases the
// cursor's storage until the next write.
func (c *Cursor) Bytes() []byte {
	return c.buf
}

// Slice returns the next n bytes and advances the position past them.
// The result aliases the cursor's storage.
func (c *Cursor) Slice(n int) ([]byte, error) {
	if n < 0 {
		return nil, errors.Wrapf(ErrInvalidLength, "slice of %d bytes", n)
	}
	if !c.CanRead(n) {
		return nil, underflow(c.pos, n, len(c.buf))
	}
	b := c.buf[c.pos : c.pos+n : c.pos+n]
	c.pos += n
	return b, nil
}

// PeekAt returns n bytes at an absolute offset without moving the position.
func (c *Cursor) PeekAt(offset, n int) ([]byte, error) {
	if offset < 0 || n < 0 {
		return nil, errors.Wrapf(ErrInvalidPosition, "peek %d bytes at offset %d", n, offset)
	}
	if offset > len(c.buf) || n > len(c.buf)-offset {
		return nil, underflow(offset, n, len(c.buf))
	}
	return c.buf[offset : offset+n : offset+n], nil
}

// Peek returns the byte at the position without advancing.
func (c *Cursor) Peek() (byte, error) {
	if !c.CanRead(1) {
		return 0, underflow(c.pos, 1, len(c.buf))
	}
	return c.buf[c.pos], nil
}

// Seek moves the position to pos, which must lie within [0, Len()].
func (c *Cursor) Seek(pos int) error {
	if pos < 0 || pos > len(c.buf) {
		return errors.Wrapf(ErrInvalidPosition, "seek to %d, length %d", pos, len(c.buf))
	}
	c.pos = pos
	return nil
}

// Skip advances the position by n bytes.
func (c *Cursor) Skip(n int) error {
	_, err := c.Slice(n)
	return err
}

// Sub returns a new cursor over the next n bytes and advances past them.
// The sub-cursor shares storage but cannot grow into its parent.
func (c *Cursor) Sub(n int) (*Cursor, error) {
	b, err := c.Slice(n)
	if err != nil {
		return nil, err
	}
	return &Cursor{buf: b, limit: n}, nil
}

// Reset empties the cursor, keeping its backing store.
func (c *Cursor) Reset() {
	c.buf = c.buf[:0]
	c.pos = 0
}

// reserve makes n bytes writable at the position and returns them. The
// length grows to cover them; the backing store is reallocated
// geometrically when the capacity is exceeded.
func (c *Cursor) reserve(n int) ([]byte, error) {
	end := c.pos + n
	if end > len(c.buf) {
		if c.limit > 0 && end > c.limit {
			return nil, overflow(c.pos, n, c.limit)
		}
		if end > cap(c.buf) {
			newCap := 2 * cap(c.buf)
			if newCap < minGrow {
				newCap = minGrow
			}
			if newCap < end {
				newCap = end
			}
			if c.limit > 0 && newCap > c.limit {
				newCap = c.limit
			}
			grown := make([]byte, len(c.buf), newCap)
			copy(grown, c.buf)
			c.buf = grown
		}
		c.buf = c.buf[:end]
	}
	b := c.buf[c.pos:end]
	c.pos = end
	return b, nil
}
