package validator

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

type ValidationError struct {
	Field   string
	Message string
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var msgs []string
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string)
	for _, err := range v {
		result[err.Field] = err.Message
	}
	return result
}

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// MaxLength reports whether s has at most n characters.
func MaxLength(s string, n int) bool {
	return utf8.RuneCountInString(s) <= n
}

// UUIDv7 regex: version 7 (the 15th character must be '7'), all lowercase hex digits.
var uuidv7Regex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-7[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

// IsValidUUIDv7 accepts only ids minted by this service.
func IsValidUUIDv7(id string) bool {
	return uuidv7Regex.MatchString(strings.ToLower(id))
}

// IsValidUUID accepts any canonical UUID. Store and user ids come from
// external systems and may use any version.
func IsValidUUID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

// Date validation
func IsValidDate(dateStr string) (time.Time, bool) {
	date, err := time.Parse("2006-01-02", dateStr)
	return date, err == nil
}

// Slice contains check
func IsInSlice(value string, slice []string) bool {
	for _, item := range slice {
		if item == value {
			return true
		}
	}
	return false
}

// IsValidDateTime checks if a string is a valid ISO8601 timestamp.
// Accepts formats like: "2024-01-15T10:30:00Z" or "2024-01-15T10:30:00.123456+07:00"
func IsValidDateTime(dateTimeStr string) (time.Time, bool) {
	// RFC3339 parsing also accepts fractional seconds.
	t, err := time.Parse(time.RFC3339Nano, dateTimeStr)
	if err == nil {
		return t, true
	}

	return time.Time{}, false
}
