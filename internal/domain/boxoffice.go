package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// BoxOfficeUnknown is stored when the metadata source has no box-office figure.
const BoxOfficeUnknown = "N/A"

// ErrMalformedBoxOffice is returned for box-office snapshots that are neither
// BoxOfficeUnknown nor a "$1,234,567" style amount.
var ErrMalformedBoxOffice = errors.New("domain: malformed box office")

// ParseBoxOffice converts a box-office snapshot to whole dollars. BoxOfficeUnknown maps to 0.
func ParseBoxOffice(value string) (int64, error) {
	if value == BoxOfficeUnknown {
		return 0, nil
	}
	digits, ok := strings.CutPrefix(value, "$")
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrMalformedBoxOffice, value)
	}
	digits = strings.ReplaceAll(digits, ",", "")
	if digits == "" {
		return 0, fmt.Errorf("%w: %q", ErrMalformedBoxOffice, value)
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("%w: %q", ErrMalformedBoxOffice, value)
		}
	}
	amount, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedBoxOffice, value)
	}
	return amount, nil
}

// ValidBoxOffice reports whether value is accepted by ParseBoxOffice.
func ValidBoxOffice(value string) bool {
	_, err := ParseBoxOffice(value)
	return err == nil
}
