package codec

// MaxVarintLen64 is the longest encoding WriteVarint produces.
const MaxVarintLen64 = 10

// ReadVarint decodes a base-128 unsigned integer. Decoding stops only on a
// byte with the high bit clear; groups past bit 63 are consumed but
// dropped. An unterminated varint fails with ErrBufferUnderflow.
func (r *Reader) ReadVarint() (uint64, error) {
	var (
		v     uint64
		shift uint
	)
	for {
		b, err := r.ReadUint8()
		if err != nil {
			return 0, err
		}
		if shift < 64 {
			v |= uint64(b&0x7f) << shift
		}
		if b&0x80 == 0 {
			return v, nil
		}
		shift += 7
	}
}

// WriteVarint encodes v as a base-128 unsigned integer. Zero is one byte.
func (w *Writer) WriteVarint(v uint64) error {
	var tmp [MaxVarintLen64]byte
	n := 0
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			tmp[n] = b | 0x80
			n++
			continue
		}
		tmp[n] = b
		n++
		break
	}
	return w.WriteBytes(tmp[:n])
}

// VarintLen returns the number of bytes WriteVarint uses for v.
func VarintLen(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}
