package prefs

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// millimetres per unit
var lengthUnits = map[string]float64{
	"":   1,
	"mm": 1,
	"cm": 10,
	"dm": 100,
	"m":  1000,
	"km": 1e6,
	"um": 1e-3,
	"µm": 1e-3,
	"in": 25.4,
	`"`:  25.4,
	"ft": 304.8,
	"'":  304.8,
	"yd": 914.4,
}

// ParseLength parses a length such as "5", "2.5 mm", "1cm" or "3 in" and
// returns it in millimetres. A bare number is taken as millimetres.
func ParseLength(text string) (float64, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0, fmt.Errorf("empty length")
	}

	split := strings.IndexFunc(s, func(r rune) bool {
		return !(unicode.IsDigit(r) || r == '.' || r == '-' || r == '+' || r == 'e' || r == 'E')
	})
	number, unit := s, ""
	if split >= 0 {
		number, unit = s[:split], strings.TrimSpace(s[split:])
	}

	value, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid length %q", text)
	}
	factor, ok := lengthUnits[strings.ToLower(unit)]
	if !ok {
		return 0, fmt.Errorf("unknown length unit %q in %q", unit, text)
	}
	return value * factor, nil
}

// FormatLength renders millimetres the way ParseLength reads them back
func FormatLength(mm float64) string {
	return strconv.FormatFloat(mm, 'f', -1, 64) + " mm"
}
