package utils

import (
	"time"

	"github.com/joseph-ayodele/boletos-tracker/internal/entity"
)

func StrOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func ParseYMD(s string) (time.Time, error) {
	t, err := time.ParseInLocation(entity.DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	// strip time to midnight UTC to match DATE semantics
	return DateOnly(t), nil
}

// DateOnly keeps the calendar date of t (in t's location) at midnight UTC.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func FormatYMD(t time.Time) string {
	return t.Format(entity.DateLayout)
}

// FormatOptionalYMD returns nil for a nil date so JSON encodes null.
func FormatOptionalYMD(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := FormatYMD(*t)
	return &s
}
