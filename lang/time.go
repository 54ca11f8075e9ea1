package lang

import "time"

// Time is an instant with an optional fixed zone offset.
// Without an offset it is displayed in UTC.
type Time struct {
	instant time.Time
	offset  int // seconds east of UTC
	zoned   bool
}

// NewTime returns a Time for t. The offset of t is kept unless t is in UTC.
func NewTime(t time.Time) Time {
	_, off := t.Zone()

	return Time{
		instant: t.UTC(),
		offset:  off,
		zoned:   t.Location() != time.UTC,
	}
}

// UTCTime returns a Time for t with no zone offset.
func UTCTime(t time.Time) Time { return Time{instant: t.UTC()} }

// UTC returns the instant in UTC.
func (t Time) UTC() time.Time { return t.instant }

// Offset returns the zone offset in seconds east of UTC, and whether one is
// set.
func (t Time) Offset() (int, bool) { return t.offset, t.zoned }

// In returns the instant in its own zone, or UTC if it has none.
func (t Time) In() time.Time {
	if !t.zoned {
		return t.instant
	}

	return t.instant.In(time.FixedZone("", t.offset))
}

func (t Time) IsZero() bool { return t.instant.IsZero() }

func (t Time) Equal(o Time) bool { return t.instant.Equal(o.instant) }

func (t Time) Compare(o Time) int { return t.instant.Compare(o.instant) }

// String formats the time as RFC 3339 in its own zone.
func (t Time) String() string { return t.In().Format(time.RFC3339Nano) }

// ParseTime parses an RFC 3339 timestamp.
func ParseTime(s string) (Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return Time{}, ErrDecode.Wrap(err)
	}

	return NewTime(t), nil
}
