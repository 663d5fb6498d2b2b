package sqlstore

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// timestampLayout is fixed width so SQLite TEXT columns sort chronologically.
const timestampLayout = "2006-01-02T15:04:05.000000Z07:00"

// Timestamp stores times as UTC with microsecond precision on every driver.
type Timestamp struct {
	time.Time
}

func newTimestamp(t time.Time) Timestamp {
	return Timestamp{t.UTC().Truncate(time.Microsecond)}
}

func (t Timestamp) Value() (driver.Value, error) {
	return t.UTC().Format(timestampLayout), nil
}

func (t *Timestamp) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		t.Time = v.UTC()
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	case nil:
		return fmt.Errorf("timestamp: unexpected NULL")
	default:
		return fmt.Errorf("timestamp: unsupported type %T", src)
	}
}

func (t *Timestamp) parse(s string) error {
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		// sqlite CURRENT_TIMESTAMP format, for rows written outside the app
		parsed, err = time.Parse(time.DateTime, s)
		if err != nil {
			return fmt.Errorf("timestamp: %w", err)
		}
	}
	t.Time = parsed.UTC()
	return nil
}
