package resume

import (
	"encoding/json"
	"errors"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// dateLayouts are tried in order. Month inputs resolve to the first day of the month.
var dateLayouts = []string{time.RFC3339, time.DateOnly, "2006-01"}

var dateType = reflect.TypeFor[Date]()

// Date is a calendar date as entered in the resume forms. It decodes RFC 3339
// timestamps, YYYY-MM-DD and YYYY-MM; an empty string or null leaves it unset.
type Date struct {
	time.Time
}

// NewDate returns the date at midnight UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses s with the accepted layouts.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Date{Time: t.UTC()}, nil
		}
	}
	return Date{}, &json.UnmarshalTypeError{Value: "string " + strconv.Quote(s), Type: dateType}
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return &json.UnmarshalTypeError{Value: "non-string", Type: dateType}
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DecodeError maps a JSON type mismatch to a ValidationError addressed by the
// JSON path of the offending field. It reports false for any other error.
func DecodeError(err error) (*ValidationError, bool) {
	var typeErr *json.UnmarshalTypeError
	if !errors.As(err, &typeErr) || typeErr.Field == "" {
		return nil, false
	}
	if typeErr.Type == dateType {
		return NewValidationError(typeErr.Field, "must be a date (YYYY-MM, YYYY-MM-DD or RFC 3339)"), true
	}
	return NewValidationError(typeErr.Field, "has the wrong type"), true
}
