package clock

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Clock supplies the current instant in the business timezone.
type Clock interface {
	Now() time.Time
	Location() *time.Location
}

// BusinessClock reads the system clock and converts it to a fixed-offset zone.
// Stores operate in a single zone without DST, so a FixedZone is enough.
type BusinessClock struct {
	loc *time.Location
}

func NewBusinessClock(loc *time.Location) *BusinessClock {
	if loc == nil {
		loc = time.UTC
	}
	return &BusinessClock{loc: loc}
}

func (c *BusinessClock) Now() time.Time {
	return time.Now().In(c.loc)
}

func (c *BusinessClock) Location() *time.Location {
	return c.loc
}

// FixedClock always returns the same instant. Used by tests and replay tooling.
type FixedClock struct {
	At time.Time
}

func (c FixedClock) Now() time.Time {
	return c.At
}

func (c FixedClock) Location() *time.Location {
	return c.At.Location()
}

// ParseOffset parses "+09:00", "-05:30" or "+9" into a fixed zone.
func ParseOffset(name, offset string) (*time.Location, error) {
	offset = strings.TrimSpace(offset)
	if offset == "" || offset == "Z" || offset == "+00:00" {
		if name == "" {
			name = "UTC"
		}
		return time.FixedZone(name, 0), nil
	}

	sign := 1
	switch offset[0] {
	case '+':
		offset = offset[1:]
	case '-':
		sign = -1
		offset = offset[1:]
	}

	hoursStr, minutesStr, _ := strings.Cut(offset, ":")
	hours, err := strconv.Atoi(hoursStr)
	if err != nil || hours > 14 {
		return nil, fmt.Errorf("invalid utc offset %q", offset)
	}
	minutes := 0
	if minutesStr != "" {
		minutes, err = strconv.Atoi(minutesStr)
		if err != nil || minutes < 0 || minutes > 59 {
			return nil, fmt.Errorf("invalid utc offset %q", offset)
		}
	}

	if name == "" {
		name = fmt.Sprintf("UTC%s", formatOffset(sign, hours, minutes))
	}
	return time.FixedZone(name, sign*(hours*3600+minutes*60)), nil
}

func formatOffset(sign, hours, minutes int) string {
	s := "+"
	if sign < 0 {
		s = "-"
	}
	return fmt.Sprintf("%s%02d:%02d", s, hours, minutes)
}
