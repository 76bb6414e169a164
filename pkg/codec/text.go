package codec

import (
	"github.com/cockroachdb/errors"
	"golang.org/x/text/encoding/charmap"
)

// Presence tags leading every encoded string.
const (
	TagAbsent  byte = 0x00
	TagPresent byte = 0x0b
)

// ReadString decodes a presence-tagged string. Any tag other than
// TagPresent yields ("", false, nil) without consuming further bytes.
func (r *Reader) ReadString() (string, bool, error) {
	tag, err := r.ReadUint8()
	if err != nil {
		return "", false, err
	}
	if tag != TagPresent {
		return "", false, nil
	}
	n, err := r.ReadVarint()
	if err != nil {
		return "", false, err
	}
	if n > uint64(r.c.Remaining()) {
		return "", false, underflow(r.c.Position(), int(min(n, uint64(maxInt))), r.c.Len())
	}
	s, err := r.ReadChars(int(n))
	if err != nil {
		return "", false, err
	}
	return s, true, nil
}

// ReadNullableString decodes a presence-tagged string, returning nil when
// the string is absent.
func (r *Reader) ReadNullableString() (*string, error) {
	s, ok, err := r.ReadString()
	if err != nil || !ok {
		return nil, err
	}
	return &s, nil
}

// ReadChars reads n raw bytes as single-byte characters, with no tag or
// length prefix.
func (r *Reader) ReadChars(n int) (string, error) {
	b, err := r.c.Slice(n)
	if err != nil {
		return "", err
	}
	return decodeLatin1(b), nil
}

// WriteString encodes s with a presence tag. An empty s is written as
// absent when nullable is set and as a present zero-length string
// otherwise.
func (w *Writer) WriteString(s string, nullable bool) error {
	if s == "" {
		if nullable {
			return w.WriteUint8(TagAbsent)
		}
		return w.WriteBytes([]byte{TagPresent, 0})
	}
	b, err := encodeLatin1(s)
	if err != nil {
		return err
	}
	if err := w.WriteUint8(TagPresent); err != nil {
		return err
	}
	if err := w.WriteVarint(uint64(len(b))); err != nil {
		return err
	}
	return w.WriteBytes(b)
}

// WriteNullableString writes nil as absent and anything else as present.
func (w *Writer) WriteNullableString(s *string) error {
	if s == nil {
		return w.WriteUint8(TagAbsent)
	}
	return w.WriteString(*s, false)
}

// WriteChars writes s as raw single-byte characters, with no tag or length.
func (w *Writer) WriteChars(s string) error {
	b, err := encodeLatin1(s)
	if err != nil {
		return err
	}
	return w.WriteBytes(b)
}

const maxInt = int(^uint(0) >> 1)

func encodeLatin1(s string) ([]byte, error) {
	if isASCII(s) {
		return []byte(s), nil
	}
	b, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, errors.WithSecondaryError(errors.Wrapf(ErrUnrepresentableText, "encode %q", s), err)
	}
	return b, nil
}

func decodeLatin1(b []byte) string {
	if isASCII(string(b)) {
		return string(b)
	}
	// ISO-8859-1 maps every byte, so decoding cannot fail.
	s, _ := charmap.ISO8859_1.NewDecoder().Bytes(b)
	return string(s)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
