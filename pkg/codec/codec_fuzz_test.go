//go:build fuzz
// +build fuzz

package codec

import (
	"bytes"
	"errors"
	"math"
	"testing"
	"time"
)

// FuzzVarint_RoundTrip checks that every uint64 survives encode/decode
func FuzzVarint_RoundTrip(f *testing.F) {
	f.Add(uint64(0))
	f.Add(uint64(127))
	f.Add(uint64(128))
	f.Add(uint64(300))
	f.Add(uint64(math.MaxUint64))

	f.Fuzz(func(t *testing.T, v uint64) {
		w := NewWriter()
		if err := w.WriteVarint(v); err != nil {
			t.Fatalf("WriteVarint(%d) failed: %v", v, err)
		}
		if w.Len() != VarintLen(v) {
			t.Errorf("VarintLen(%d) = %d, wrote %d", v, VarintLen(v), w.Len())
		}

		r := NewReader(w.Bytes())
		got, err := r.ReadVarint()
		if err != nil {
			t.Fatalf("ReadVarint failed: %v", err)
		}
		if got != v {
			t.Errorf("varint mismatch: got %d, want %d", got, v)
		}
		if !r.AtEnd() {
			t.Errorf("decoder left %d bytes", r.Cursor().Remaining())
		}
	})
}

// FuzzReader_ArbitraryInput checks that decoding random bytes never panics
// and only fails with package errors
func FuzzReader_ArbitraryInput(f *testing.F) {
	f.Add([]byte{})
	f.Add([]byte{0x0b, 0x03, 'a', 'b', 'c'})
	f.Add([]byte{0x80, 0x80, 0x80})
	f.Add([]byte{0x03, 0x00, 0x01})

	f.Fuzz(func(t *testing.T, data []byte) {
		reads := []func(r *Reader) error{
			func(r *Reader) error { _, _, err := r.ReadString(); return err },
			func(r *Reader) error { _, err := r.ReadVarint(); return err },
			func(r *Reader) error { _, err := r.ReadDateTime(); return err },
			func(r *Reader) error { _, err := r.ReadInt32Array(); return err },
			func(r *Reader) error { _, err := r.ReadInt32DoublePairs(); return err },
		}
		for _, read := range reads {
			r := NewReader(data)
			err := read(r)
			if err != nil && !errors.Is(err, ErrBufferUnderflow) && !errors.Is(err, ErrInvalidLength) {
				t.Fatalf("unexpected error class: %v", err)
			}
			if r.Cursor().Position() > r.Cursor().Len() {
				t.Fatalf("position %d past length %d", r.Cursor().Position(), r.Cursor().Len())
			}
		}
	})
}

// FuzzRecord_RoundTrip writes a mixed record and reads it back
func FuzzRecord_RoundTrip(f *testing.F) {
	f.Add(uint8(0), int32(0), int64(0), 0.0, "", []byte{})
	f.Add(uint8(3), int32(-1), int64(math.MaxInt64), 99.5, "peppy", []byte{0xff})

	f.Fuzz(func(t *testing.T, mode uint8, score int32, ticks int64, acc float64, name string, raw []byte) {
		if !isASCII(name) || len(raw) > math.MaxUint16 {
			t.Skip("input outside the single-byte text range")
		}
		when := time.UnixMilli(ticks % 1e14)

		w := NewWriter()
		_ = w.WriteUint8(mode)
		_ = w.WriteInt32(score)
		_ = w.WriteFloat64(acc)
		_ = w.WriteString(name, true)
		_ = w.WriteDateTime(when)
		_ = w.WriteVarint(uint64(len(raw)))
		_ = w.WriteBytes(raw)

		r := NewReader(w.Bytes())
		gotMode, _ := r.ReadUint8()
		gotScore, _ := r.ReadInt32()
		gotAcc, _ := r.ReadFloat64()
		gotName, _, _ := r.ReadString()
		gotWhen, _ := r.ReadDateTime()
		n, _ := r.ReadVarint()
		gotRaw, err := r.ReadBytes(int(n))
		if err != nil {
			t.Fatalf("ReadBytes failed: %v", err)
		}

		if gotMode != mode || gotScore != score || gotName != name {
			t.Errorf("field mismatch: got (%d, %d, %q), want (%d, %d, %q)", gotMode, gotScore, gotName, mode, score, name)
		}
		if math.Float64bits(gotAcc) != math.Float64bits(acc) {
			t.Errorf("float mismatch: got %v, want %v", gotAcc, acc)
		}
		if !gotWhen.Equal(when) {
			t.Errorf("time mismatch: got %v, want %v", gotWhen, when)
		}
		if !bytes.Equal(gotRaw, raw) {
			t.Errorf("raw mismatch: got %x, want %x", gotRaw, raw)
		}
		if !r.AtEnd() {
			t.Errorf("trailing %d bytes", r.Cursor().Remaining())
		}
	})
}
