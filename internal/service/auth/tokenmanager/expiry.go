package tokenmanager

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Token lifetime defaults. Unparseable expiry strings fall back to the
// refresh default in both the signing and the cookie path, there is
// exactly one fallback value in the whole service.
const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

// Accepts '15m', '7d', bare '3600' (seconds)
var expiryPattern = regexp.MustCompile(`^(\d+)([smhd])?$`)

var expiryUnits = map[string]time.Duration{
	"s": time.Second,
	"m": time.Minute,
	"h": time.Hour,
	"d": 24 * time.Hour,
}

// ParseExpiry converts a human expiry string '<int><unit>' with unit in
// s, m, h, d into a duration. A bare integer means seconds.
func ParseExpiry(s string) (time.Duration, error) {
	match := expiryPattern.FindStringSubmatch(s)
	if match == nil {
		return 0, fmt.Errorf("expiry %q does not match <int><unit> with unit in s,m,h,d", s)
	}

	value, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, fmt.Errorf("expiry %q: %w", s, err)
	}

	unit := match[2]
	if unit == "" {
		unit = "s"
	}

	return time.Duration(value) * expiryUnits[unit], nil
}

// ExpiryOrDefault parses s and falls back to DefaultRefreshTTL when it
// can not be parsed
func ExpiryOrDefault(s string) time.Duration {
	d, err := ParseExpiry(s)
	if err != nil {
		return DefaultRefreshTTL
	}
	return d
}
