package datasize

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
)

var (
	ErrInvalidFormat = errors.New("invalid data size format")
	ErrUnknownUnit   = errors.New("unknown data size unit")
)

// https://en.wikipedia.org/wiki/Template:Quantities_of_bytes
var unitFactors = map[string]float64{
	"B":   1,
	"kB":  1e3,
	"KB":  1e3,
	"MB":  1e6,
	"GB":  1e9,
	"TB":  1e12,
	"KiB": 1 << 10,
	"MiB": 1 << 20,
	"GiB": 1 << 30,
	"TiB": 1 << 40,
}

var sizePattern = regexp.MustCompile(`^([0-9.]+)\s*([A-Za-z]+)?$`)

// Parse converts strings like "1024", "1024B", "4KiB" or "2.5GB" into a byte
// count, rounded to the nearest byte (half to even).
func Parse(s string) (int64, error) {
	m := sizePattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("%w: unable to parse %q", ErrInvalidFormat, s)
	}

	factor := 1.0
	if unit := m[2]; unit != "" {
		f, ok := unitFactors[unit]
		if !ok {
			return 0, fmt.Errorf("%w: %q in %q", ErrUnknownUnit, unit, s)
		}
		factor = f
	}

	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid number %q in %q", ErrInvalidFormat, m[1], s)
	}

	bytes := math.RoundToEven(value * factor)
	if bytes >= math.MaxInt64 {
		return 0, fmt.Errorf("%w: %q exceeds the maximum size", ErrInvalidFormat, s)
	}
	return int64(bytes), nil
}

var binaryUnits = []struct {
	symbol string
	size   int64
}{
	{"TiB", 1 << 40},
	{"GiB", 1 << 30},
	{"MiB", 1 << 20},
	{"KiB", 1 << 10},
}

// Format renders n with the largest binary unit that divides it exactly,
// falling back to plain bytes. Parse(Format(n)) == n for n >= 0.
func Format(n int64) string {
	if n != 0 {
		for _, u := range binaryUnits {
			if n%u.size == 0 {
				return strconv.FormatInt(n/u.size, 10) + u.symbol
			}
		}
	}
	return strconv.FormatInt(n, 10) + "B"
}
