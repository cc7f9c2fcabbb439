package ui

import (
	"strings"
	"time"

	"github.com/nhle/qtplanner/internal/apperr"
	"github.com/nhle/qtplanner/internal/model"
)

// ParseDateTime reads a "YYYY-MM-DD HH:MM" value in loc. An empty value
// yields nil so the form's own validation can report the missing date.
func ParseDateTime(s string, loc *time.Location) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(model.DateTimeLayout, s, loc)
	if err != nil {
		return nil, apperr.Validation("invalid date, use YYYY-MM-DD HH:MM")
	}
	return &t, nil
}

// ValidateDateTime is a huh validator accepting an empty value or a
// well-formed date-time.
func ValidateDateTime(s string) error {
	_, err := ParseDateTime(s, time.UTC)
	return err
}
