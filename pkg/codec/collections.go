package codec

import (
	"math"

	"github.com/cockroachdb/errors"
)

// MaxArrayLen is the largest element count an array prefix can carry.
const MaxArrayLen = math.MaxUint16

// ReadArray reads a uint16 element count followed by that many elements,
// each decoded by elem.
func ReadArray[T any](r *Reader, elem func(*Reader) (T, error)) ([]T, error) {
	n, err := r.ReadUint16()
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, n)
	for i := 0; i < int(n); i++ {
		v, err := elem(r)
		if err != nil {
			return nil, errors.Wrapf(err, "array element %d of %d", i, n)
		}
		out = append(out, v)
	}
	return out, nil
}

// WriteArray writes a uint16 element count followed by each value encoded
// by elem.
func WriteArray[T any](w *Writer, values []T, elem func(*Writer, T) error) error {
	if len(values) > MaxArrayLen {
		return errors.Wrapf(ErrCollectionTooLarge, "array of %d elements, max %d", len(values), MaxArrayLen)
	}
	if err := w.WriteUint16(uint16(len(values))); err != nil {
		return err
	}
	for i, v := range values {
		if err := elem(w, v); err != nil {
			return errors.Wrapf(err, "array element %d", i)
		}
	}
	return nil
}

// ReadInt32Array reads an array of int32.
func (r *Reader) ReadInt32Array() ([]int32, error) {
	return ReadArray(r, (*Reader).ReadInt32)
}

// WriteInt32Array writes an array of int32.
func (w *Writer) WriteInt32Array(values []int32) error {
	return WriteArray(w, values, (*Writer).WriteInt32)
}

// Pairs is an insertion-ordered mapping with unique keys.
type Pairs[K comparable, V any] struct {
	keys   []K
	values map[K]V
}

// NewPairs returns an empty pair list.
func NewPairs[K comparable, V any]() *Pairs[K, V] {
	return &Pairs[K, V]{values: make(map[K]V)}
}

// Set stores v under k. An existing key keeps its position and takes the
// new value.
func (p *Pairs[K, V]) Set(k K, v V) {
	if p.values == nil {
		p.values = make(map[K]V)
	}
	if _, ok := p.values[k]; !ok {
		p.keys = append(p.keys, k)
	}
	p.values[k] = v
}

// Get returns the value stored under k.
func (p *Pairs[K, V]) Get(k K) (V, bool) {
	v, ok := p.values[k]
	return v, ok
}

// Len returns the number of keys.
func (p *Pairs[K, V]) Len() int { return len(p.keys) }

// Keys returns the keys in insertion order.
func (p *Pairs[K, V]) Keys() []K {
	out := make([]K, len(p.keys))
	copy(out, p.keys)
	return out
}

// Range calls fn for each pair in insertion order until fn returns false.
func (p *Pairs[K, V]) Range(fn func(K, V) bool) {
	for _, k := range p.keys {
		if !fn(k, p.values[k]) {
			return
		}
	}
}

// ReadPairs reads an int32 pair count followed by that many (key, value)
// pairs. Duplicate keys are not rejected; the last value wins.
func ReadPairs[K comparable, V any](r *Reader, key func(*Reader) (K, error), value func(*Reader) (V, error)) (*Pairs[K, V], error) {
	n, err := r.ReadInt32()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, errors.Wrapf(ErrInvalidLength, "pair count %d", n)
	}
	p := NewPairs[K, V]()
	for i := int32(0); i < n; i++ {
		k, err := key(r)
		if err != nil {
			return nil, errors.Wrapf(err, "pair %d of %d: key", i, n)
		}
		v, err := value(r)
		if err != nil {
			return nil, errors.Wrapf(err, "pair %d of %d: value", i, n)
		}
		p.Set(k, v)
	}
	return p, nil
}

// WritePairs writes an int32 pair count followed by each pair in insertion
// order.
func WritePairs[K comparable, V any](w *Writer, p *Pairs[K, V], key func(*Writer, K) error, value func(*Writer, V) error) error {
	if p == nil {
		return w.WriteInt32(0)
	}
	if p.Len() > math.MaxInt32 {
		return errors.Wrapf(ErrCollectionTooLarge, "pair list of %d entries", p.Len())
	}
	if err := w.WriteInt32(int32(p.Len())); err != nil {
		return err
	}
	for i, k := range p.keys {
		if err := key(w, k); err != nil {
			return errors.Wrapf(err, "pair %d: key", i)
		}
		if err := value(w, p.values[k]); err != nil {
			return errors.Wrapf(err, "pair %d: value", i)
		}
	}
	return nil
}

// ReadInt32DoublePairs reads a pair list of int32 keys and float64 values.
func (r *Reader) ReadInt32DoublePairs() (*Pairs[int32, float64], error) {
	return ReadPairs(r, (*Reader).ReadInt32, (*Reader).ReadFloat64)
}

// WriteInt32DoublePairs writes a pair list of int32 keys and float64 values.
func (w *Writer) WriteInt32DoublePairs(p *Pairs[int32, float64]) error {
	return WritePairs(w, p, (*Writer).WriteInt32, (*Writer).WriteFloat64)
}
