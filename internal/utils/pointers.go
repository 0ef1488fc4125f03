package utils

import (
	"strings"
	"time"
)

func IntPtr(i int) *int {
	return &i
}

func StringPtr(s string) *string {
	return &s
}

func TimePtr(t time.Time) *time.Time {
	return &t
}

func PtrString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func PtrInt(i *int) int {
	if i == nil {
		return 0
	}
	return *i
}

// NonEmpty returns nil for blank input so optional columns are stored as NULL.
func NonEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// SetIfProvided overwrites *dst only when v is non-blank. Blank values are
// treated as "not provided", so a field can never be cleared this way.
func SetIfProvided(dst **string, v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return false
	}
	*dst = &v
	return true
}
