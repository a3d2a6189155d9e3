package dto

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spec-kit/customer-service/internal/domain"
)

var localDateTimeInputLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// LocalDateTime is an ISO-8601 date-time without zone offset, e.g. 2024-04-22T20:15:00.
// Values are carried as wall clock readings in UTC.
type LocalDateTime struct {
	time.Time
}

// NewLocalDateTime wraps t; a nil t yields nil.
func NewLocalDateTime(t *time.Time) *LocalDateTime {
	if t == nil {
		return nil
	}
	return &LocalDateTime{Time: *t}
}

// TimePtr unwraps the value; a nil receiver yields nil.
func (l *LocalDateTime) TimePtr() *time.Time {
	if l == nil {
		return nil
	}
	t := l.Time
	return &t
}

func (l LocalDateTime) String() string {
	return domain.FormatLocalDateTime(l.Time)
}

func (l LocalDateTime) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(l.String())), nil
}

func (l *LocalDateTime) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	raw, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("local date-time must be a string: %w", err)
	}
	parsed, err := ParseLocalDateTime(raw)
	if err != nil {
		return err
	}
	l.Time = parsed
	return nil
}

// ParseLocalDateTime accepts yyyy-MM-ddTHH:mm[:ss[.fraction]] with no offset.
func ParseLocalDateTime(raw string) (time.Time, error) {
	for _, layout := range localDateTimeInputLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid local date-time %q", raw)
}
