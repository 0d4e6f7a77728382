package utils

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

var ErrInvalidDuration = errors.New("invalid duration")

// ParseDuration parses moderation-style durations: "30s", "15m", "2h", "7d",
// "1w", and combinations like "1d12h". Zero and negative totals are invalid.
func ParseDuration(input string) (time.Duration, error) {
	s := strings.TrimSpace(strings.ToLower(input))
	if s == "" {
		return 0, ErrInvalidDuration
	}

	var total time.Duration
	var num strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			num.WriteRune(r)
			continue
		}
		if num.Len() == 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, input)
		}
		value, err := strconv.Atoi(num.String())
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, input)
		}
		num.Reset()

		var unit time.Duration
		switch r {
		case 's':
			unit = time.Second
		case 'm':
			unit = time.Minute
		case 'h':
			unit = time.Hour
		case 'd':
			unit = 24 * time.Hour
		case 'w':
			unit = 7 * 24 * time.Hour
		default:
			return 0, fmt.Errorf("%w: unknown unit %q in %q", ErrInvalidDuration, string(r), input)
		}
		total += time.Duration(value) * unit
	}
	if num.Len() > 0 {
		return 0, fmt.Errorf("%w: missing unit in %q", ErrInvalidDuration, input)
	}
	if total <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, input)
	}
	return total, nil
}

// FormatDuration renders a duration the way moderators write them, largest
// unit first: "1w2d", "3h30m", "45s".
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}

	units := []struct {
		suffix string
		length time.Duration
	}{
		{"w", 7 * 24 * time.Hour},
		{"d", 24 * time.Hour},
		{"h", time.Hour},
		{"m", time.Minute},
		{"s", time.Second},
	}

	var b strings.Builder
	for _, u := range units {
		if d >= u.length {
			fmt.Fprintf(&b, "%d%s", d/u.length, u.suffix)
			d %= u.length
		}
	}
	if b.Len() == 0 {
		return "0s"
	}
	return b.String()
}
