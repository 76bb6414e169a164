package codec

import "time"

const (
	// TicksEpoch is the number of 100ns ticks from 0001-01-01 to the Unix epoch.
	TicksEpoch uint64 = 621355968000000000
	// TicksPerMillisecond is the number of 100ns ticks in a millisecond.
	TicksPerMillisecond = 10000
)

// TimeFromTicks converts a tick count to a UTC time with millisecond
// precision. Sub-millisecond ticks are truncated toward zero.
func TimeFromTicks(ticks uint64) time.Time {
	var ms int64
	if ticks >= TicksEpoch {
		ms = int64((ticks - TicksEpoch) / TicksPerMillisecond)
	} else {
		ms = -int64((TicksEpoch - ticks) / TicksPerMillisecond)
	}
	return time.UnixMilli(ms).UTC()
}

// TicksFromTime converts t to a tick count. Precision below one
// millisecond is dropped.
func TicksFromTime(t time.Time) uint64 {
	return uint64(t.UnixMilli()*TicksPerMillisecond) + TicksEpoch
}

// ReadDateTime reads a uint64 tick count and converts it to a time.
func (r *Reader) ReadDateTime() (time.Time, error) {
	ticks, err := r.ReadUint64()
	if err != nil {
		return time.Time{}, err
	}
	return TimeFromTicks(ticks), nil
}

// WriteDateTime writes t as a uint64 tick count.
func (w *Writer) WriteDateTime(t time.Time) error {
	return w.WriteUint64(TicksFromTime(t))
}
