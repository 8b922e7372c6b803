package utils

import "strconv"

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 100
)

// ParsePagination reads skip and limit query values.
// Unparseable values fall back to defaults; limit is clamped to 1..MaxPageLimit.
func ParsePagination(skipRaw, limitRaw string) (skip, limit int) {
	skip, err := strconv.Atoi(skipRaw)
	if err != nil || skip < 0 {
		skip = 0
	}
	limit, err = strconv.Atoi(limitRaw)
	if err != nil {
		limit = DefaultPageLimit
	}
	switch {
	case limit < 1:
		limit = 1
	case limit > MaxPageLimit:
		limit = MaxPageLimit
	}
	return skip, limit
}

// OrUnknown substitutes "Unknown" for an empty client attribute.
func OrUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
