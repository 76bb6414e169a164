// Package storage archives captured payloads in pebble, keyed by ksuid.
//
// Each value is an envelope written with the codec package:
//
//	string   layout name
//	datetime capture time
//	varint   payload length
//	bytes    payload
//	uint32   CRC32 (IEEE) of the payload
package storage

import (
	"bytes"
	"hash/crc32"
	"sort"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"
	"go.uber.org/zap"

	"github.com/ssargent/osubuf/pkg/codec"
)

var (
	ErrNotFound  = errors.New("archive entry not found")
	ErrCorrupted = errors.New("archive entry corrupted")
)

// Entry is one archived payload.
type Entry struct {
	ID       ksuid.KSUID `json:"id"`
	Layout   string      `json:"layout"`
	Captured time.Time   `json:"captured"`
	Size     int         `json:"size"`
	Payload  []byte      `json:"-"`
}

// Archive stores payloads in a pebble database.
type Archive struct {
	db     *pebble.DB
	logger *zap.Logger
	now    func() time.Time

	mu   sync.Mutex
	last time.Time
}

// Open opens or creates the archive at path.
func Open(path string, logger *zap.Logger) (*Archive, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "open archive %s", path)
	}
	return &Archive{db: db, logger: logger, now: time.Now}, nil
}

// Put stores payload under a new id whose timestamp is the capture time.
// Capture times are millisecond precision and strictly increase across
// puts on one Archive.
func (a *Archive) Put(layout string, payload []byte) (ksuid.KSUID, error) {
	captured := a.nextCapture()
	id, err := ksuid.NewRandomWithTime(captured)
	if err != nil {
		return ksuid.Nil, errors.Wrap(err, "generate id")
	}

	value, err := encodeEnvelope(layout, captured, payload)
	if err != nil {
		return ksuid.Nil, err
	}
	if err := a.db.Set(id.Bytes(), value, pebble.Sync); err != nil {
		return ksuid.Nil, errors.Wrapf(err, "store %s", id)
	}

	a.logger.Debug("archived payload",
		zap.Stringer("id", id),
		zap.String("layout", layout),
		zap.Int("size", len(payload)))
	return id, nil
}

func (a *Archive) nextCapture() time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()
	t := a.now().UTC().Truncate(time.Millisecond)
	if !t.After(a.last) {
		t = a.last.Add(time.Millisecond)
	}
	a.last = t
	return t
}

// Get returns the entry stored under id.
func (a *Archive) Get(id ksuid.KSUID) (*Entry, error) {
	value, closer, err := a.db.Get(id.Bytes())
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, errors.Wrapf(ErrNotFound, "%s", id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", id)
	}
	defer closer.Close()

	e, err := decodeEnvelope(value)
	if err != nil {
		return nil, errors.Wrapf(err, "entry %s", id)
	}
	e.ID = id
	return e, nil
}

// Delete removes the entry stored under id.
func (a *Archive) Delete(id ksuid.KSUID) error {
	_, closer, err := a.db.Get(id.Bytes())
	if errors.Is(err, pebble.ErrNotFound) {
		return errors.Wrapf(ErrNotFound, "%s", id)
	}
	if err != nil {
		return errors.Wrapf(err, "read %s", id)
	}
	closer.Close()

	if err := a.db.Delete(id.Bytes(), pebble.Sync); err != nil {
		return errors.Wrapf(err, "delete %s", id)
	}
	a.logger.Debug("deleted archive entry", zap.Stringer("id", id))
	return nil
}

// List returns up to limit entries in capture order, oldest first, without
// their payloads. Entries with equal capture times are ordered by id. A
// limit of zero or less lists everything.
func (a *Archive) List(limit int) ([]Entry, error) {
	iter, err := a.db.NewIter(nil)
	if err != nil {
		return nil, errors.Wrap(err, "open iterator")
	}
	defer iter.Close()

	var out []Entry
	for iter.First(); iter.Valid(); iter.Next() {
		id, err := ksuid.FromBytes(iter.Key())
		if err != nil {
			a.logger.Warn("skipping foreign key", zap.Binary("key", iter.Key()))
			continue
		}
		e, err := decodeEnvelope(iter.Value())
		if err != nil {
			return out, errors.Wrapf(err, "entry %s", id)
		}
		e.ID = id
		e.Payload = nil
		out = append(out, *e)
	}
	if err := iter.Error(); err != nil {
		return nil, errors.Wrap(err, "iterate archive")
	}

	// ksuid keys only order by the second.
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Captured.Equal(out[j].Captured) {
			return out[i].Captured.Before(out[j].Captured)
		}
		return bytes.Compare(out[i].ID.Bytes(), out[j].ID.Bytes()) < 0
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Close closes the underlying database.
func (a *Archive) Close() error {
	return a.db.Close()
}

func encodeEnvelope(layout string, captured time.Time, payload []byte) ([]byte, error) {
	w := codec.WriterOn(codec.WithCapacity(len(layout) + len(payload) + 24))
	if err := w.WriteString(layout, false); err != nil {
		return nil, errors.Wrap(err, "encode layout name")
	}
	if err := w.WriteDateTime(captured); err != nil {
		return nil, err
	}
	if err := w.WriteVarint(uint64(len(payload))); err != nil {
		return nil, err
	}
	if err := w.WriteBytes(payload); err != nil {
		return nil, err
	}
	if err := w.WriteUint32(crc32.ChecksumIEEE(payload)); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// decodeEnvelope copies the payload out of value, which pebble owns.
func decodeEnvelope(value []byte) (*Entry, error) {
	r := codec.NewReader(value)
	layout, _, err := r.ReadString()
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "layout name"), ErrCorrupted)
	}
	captured, err := r.ReadDateTime()
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "capture time"), ErrCorrupted)
	}
	n, err := r.ReadVarint()
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "payload length"), ErrCorrupted)
	}
	if n > uint64(r.Cursor().Remaining()) {
		return nil, errors.Wrapf(ErrCorrupted, "payload length %d exceeds %d remaining bytes", n, r.Cursor().Remaining())
	}
	payload, err := r.ReadBytes(int(n))
	if err != nil {
		return nil, errors.Mark(err, ErrCorrupted)
	}
	sum, err := r.ReadUint32()
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "checksum"), ErrCorrupted)
	}
	if got := crc32.ChecksumIEEE(payload); got != sum {
		return nil, errors.Wrapf(ErrCorrupted, "checksum mismatch: stored %08x, computed %08x", sum, got)
	}
	return &Entry{Layout: layout, Captured: captured, Size: len(payload), Payload: payload}, nil
}
