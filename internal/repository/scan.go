package repository

import (
	"fmt"
	"strings"
	"time"

	"github.com/joseph-ayodele/boletos-tracker/internal/entity"
)

// dateValue scans a calendar date stored as DATE (Postgres, arrives as time.Time)
// or TEXT (SQLite, arrives as string) into midnight UTC.
type dateValue struct {
	Time  time.Time
	Valid bool
}

func (d *dateValue) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		d.Time, d.Valid = time.Time{}, false
		return nil
	case time.Time:
		d.Time, d.Valid = time.Date(v.Year(), v.Month(), v.Day(), 0, 0, 0, 0, time.UTC), true
		return nil
	case string:
		return d.parse(v)
	case []byte:
		return d.parse(string(v))
	default:
		return fmt.Errorf("unsupported date type %T", src)
	}
}

func (d *dateValue) parse(s string) error {
	s = strings.TrimSpace(s)
	// tolerate timestamps written by other tools; only the date part is kept
	if len(s) > len(entity.DateLayout) {
		s = s[:len(entity.DateLayout)]
	}
	t, err := time.ParseInLocation(entity.DateLayout, s, time.UTC)
	if err != nil {
		return fmt.Errorf("parse date %q: %w", s, err)
	}
	d.Time, d.Valid = t, true
	return nil
}
