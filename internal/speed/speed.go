// Package speed converts human-readable bandwidth values to bits per second.
package speed

import (
	"errors"
	"fmt"
	"math/bits"
	"strconv"
	"strings"
)

var (
	ErrInvalidSpeed      = errors.New("invalid speed value")
	ErrInvalidMultiplier = errors.New("invalid multiplier")
)

var multipliers = map[byte]uint64{
	'k': 1000,
	'm': 1000 * 1000,
	'g': 1000 * 1000 * 1000,
}

// Parse converts strings like "500", "10m" or "1G" to bits per second.
func Parse(s string) (uint64, error) {
	s = strings.TrimSpace(s)

	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	digits, suffix := s[:end], strings.ToLower(s[end:])
	if digits == "" {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSpeed, s)
	}

	value, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSpeed, s)
	}
	if suffix == "" {
		return value, nil
	}

	if len(suffix) > 1 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMultiplier, suffix)
	}
	mult, ok := multipliers[suffix[0]]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMultiplier, suffix)
	}

	hi, lo := bits.Mul64(value, mult)
	if hi != 0 {
		return 0, fmt.Errorf("%w: %q overflows", ErrInvalidSpeed, s)
	}
	return lo, nil
}

// Format renders a bit rate with the largest whole suffix, e.g. "10Mbps".
func Format(bps uint64) string {
	switch {
	case bps >= 1_000_000_000 && bps%1_000_000_000 == 0:
		return fmt.Sprintf("%dGbps", bps/1_000_000_000)
	case bps >= 1_000_000 && bps%1_000_000 == 0:
		return fmt.Sprintf("%dMbps", bps/1_000_000)
	case bps >= 1_000 && bps%1_000 == 0:
		return fmt.Sprintf("%dKbps", bps/1_000)
	default:
		return fmt.Sprintf("%dbps", bps)
	}
}
