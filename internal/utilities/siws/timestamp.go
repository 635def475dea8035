package siws

import (
	"time"

	"github.com/relvacode/iso8601"
)

// TimestampLayout is used when a Timestamp is created from a time.Time
// rather than parsed from text.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Timestamp is an instant together with the exact text it is written as in
// a message. The text is what gets signed, so it is kept verbatim.
type Timestamp struct {
	raw string
	t   time.Time
}

// NewTimestamp renders t in UTC with millisecond precision.
func NewTimestamp(t time.Time) Timestamp {
	t = t.UTC().Truncate(time.Millisecond)

	return Timestamp{
		raw: t.Format(TimestampLayout),
		t:   t,
	}
}

// ParseTimestamp parses an ISO 8601 timestamp. Values without a zone are
// taken to be UTC.
func ParseTimestamp(value string) (Timestamp, error) {
	t, err := iso8601.ParseString(value)
	if err != nil {
		return Timestamp{}, err
	}

	return Timestamp{
		raw: value,
		t:   t.UTC(),
	}, nil
}

func (ts Timestamp) Time() time.Time {
	return ts.t
}

func (ts Timestamp) String() string {
	return ts.raw
}

func (ts Timestamp) IsZero() bool {
	return ts.raw == ""
}

// Equal reports whether both timestamps are written the same way.
func (ts Timestamp) Equal(other Timestamp) bool {
	return ts.raw == other.raw && ts.t.Equal(other.t)
}

func (ts Timestamp) MarshalText() ([]byte, error) {
	return []byte(ts.raw), nil
}

func (ts *Timestamp) UnmarshalText(text []byte) error {
	parsed, err := ParseTimestamp(string(text))
	if err != nil {
		return err
	}

	*ts = parsed
	return nil
}
