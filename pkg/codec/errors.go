package codec

import "github.com/cockroachdb/errors"

var (
	// ErrBufferUnderflow is returned when a read needs more bytes than remain.
	ErrBufferUnderflow = errors.New("buffer underflow")
	// ErrBufferOverflow is returned when a write would exceed the cursor limit.
	ErrBufferOverflow = errors.New("buffer overflow")
	// ErrInvalidPosition is returned when seeking outside [0, length].
	ErrInvalidPosition = errors.New("invalid position")
	// ErrUnrepresentableText is returned when a string holds characters
	// that do not fit in a single byte.
	ErrUnrepresentableText = errors.New("text not representable in a single-byte charset")
	// ErrCollectionTooLarge is returned when a collection count does not fit
	// its length prefix.
	ErrCollectionTooLarge = errors.New("collection too large")
	// ErrInvalidLength is returned when a decoded count or length is negative.
	ErrInvalidLength = errors.New("invalid length")
)

func underflow(offset, need, length int) error {
	return errors.Wrapf(ErrBufferUnderflow, "need %d bytes at offset %d, length %d", need, offset, length)
}

func overflow(offset, need, limit int) error {
	return errors.Wrapf(ErrBufferOverflow, "write of %d bytes at offset %d exceeds limit %d", need, offset, limit)
}
