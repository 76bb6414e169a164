// Package codec provides cursor-based encoding and decoding of the osu!
// binary record format used by replays, score databases and beatmap caches.
//
// The format is a flat sequence of little-endian values with no framing of
// its own; a consumer knows the field order and issues one typed read (or
// write) per field. Every call advances a shared Cursor by exactly the
// number of bytes it consumes or produces.
//
// # Wire Format
//
// Fixed-width values:
//
//	uint8/int8/bool      1 byte
//	uint16/int16         2 bytes, little-endian
//	uint32/int32/float32 4 bytes, little-endian (IEEE-754 for floats)
//	uint64/int64/float64 8 bytes, little-endian (IEEE-754 for floats)
//
// Varint (ULEB128): 7 payload bits per byte, least significant group first,
// bit 0x80 set on every byte except the last.
//
//	0   -> 00
//	127 -> 7F
//	128 -> 80 01
//	300 -> AC 02
//
// String: a presence tag, then for present strings a varint byte length and
// the raw bytes, one character per byte (ISO-8859-1).
//
//	absent         -> 00
//	present, empty -> 0B 00
//	"abc"          -> 0B 03 61 62 63
//
// DateTime: a uint64 count of 100ns ticks since 0001-01-01, stored as
// ticks = unixMillis*10000 + 621355968000000000.
//
// Array: a uint16 element count followed by the elements.
// Pair list: an int32 pair count followed by (key, value) pairs.
//
// # Usage
//
//	w := codec.NewWriter()
//	_ = w.WriteUint8(3)
//	_ = w.WriteString("peppy", false)
//	_ = w.WriteDateTime(time.Now())
//
//	r := codec.NewReader(w.Bytes())
//	mode, _ := r.ReadUint8()
//	player, present, _ := r.ReadString()
//	played, _ := r.ReadDateTime()
//
// Reader and Writer are views over a Cursor; ReaderOn and WriterOn let a
// caller read back what it has just written through the same cursor.
//
// # Error Handling
//
// Reads past the end of the data fail with ErrBufferUnderflow. Writes never
// fail for lack of space because the cursor grows on demand, unless a limit
// was set with SetLimit, in which case ErrBufferOverflow is returned. All
// errors wrap one of the package sentinels and carry the offending offset;
// use errors.Is to classify them.
//
// # Thread Safety
//
// A Cursor has a single owner. Readers and writers sharing a cursor must not
// be used from multiple goroutines without external synchronization.
package codec
