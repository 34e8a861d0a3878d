// Package formatting renders and parses human-readable byte sizes such as
// upload limits ("50MB") and stored file sizes.
package formatting

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

const unit = 1024

// units are base-1024. The binary spellings (KiB, MiB, ...) parse to the same values.
var units = []string{"B", "KB", "MB", "GB", "TB", "PB", "EB"}

// ErrEmpty indicates an empty size string.
var ErrEmpty = errors.New("empty byte size")

// FormatBytes renders n with the largest unit that keeps the value at or above one.
// Byte counts are always whole; precision applies to larger units and is clamped at zero.
func FormatBytes(n int64, precision int) string {
	if n < unit && n > -unit {
		return strconv.FormatInt(n, 10) + " B"
	}
	if precision < 0 {
		precision = 0
	}

	size := float64(n)
	i := 0
	for math.Abs(size) >= unit && i < len(units)-1 {
		size /= unit
		i++
	}
	return strconv.FormatFloat(size, 'f', precision, 64) + " " + units[i]
}

// ParseBytes parses a size such as "50MB", "1.5 kb", "2GiB" or "1024" into bytes.
// A bare number is bytes. Units are case-insensitive and may follow a space.
func ParseBytes(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrEmpty
	}

	split := strings.IndexFunc(s, func(r rune) bool {
		return !unicode.IsDigit(r) && r != '.'
	})
	number, suffix := s, ""
	if split >= 0 {
		number, suffix = s[:split], strings.TrimSpace(s[split:])
	}
	if number == "" {
		return 0, fmt.Errorf("invalid byte size %q", s)
	}

	value, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size %q: %w", s, err)
	}

	exp, err := unitExponent(suffix)
	if err != nil {
		return 0, err
	}

	bytes := value * math.Pow(unit, float64(exp))
	if bytes >= math.MaxInt64 {
		return 0, fmt.Errorf("byte size %q overflows", s)
	}
	return int64(bytes), nil
}

func unitExponent(suffix string) (int, error) {
	u := strings.ToUpper(suffix)
	switch {
	case u == "":
		return 0, nil
	case len(u) == 1 && u != "B":
		u += "B"
	case strings.HasSuffix(u, "IB") && len(u) == 3:
		u = u[:1] + "B"
	}

	for i, name := range units {
		if name == u {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown byte size unit %q", suffix)
}
