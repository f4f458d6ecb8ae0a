package market

import (
	"strconv"
	"strings"
	"time"
)

var namedIntervals = map[string]time.Duration{
	"d":      24 * time.Hour,
	"day":    24 * time.Hour,
	"daily":  24 * time.Hour,
	"w":      7 * 24 * time.Hour,
	"week":   7 * 24 * time.Hour,
	"weekly": 7 * 24 * time.Hour,
	"hourly": time.Hour,
}

// ParseInterval converts a timeframe label such as "5m", "1h", "4H", "1d",
// "daily" or a bare minute count ("240") into a duration.
func ParseInterval(label string) (time.Duration, bool) {
	key := strings.ToLower(strings.TrimSpace(label))
	if key == "" {
		return 0, false
	}

	if d, ok := namedIntervals[key]; ok {
		return d, true
	}

	if n, err := strconv.Atoi(key); err == nil {
		if n <= 0 {
			return 0, false
		}
		return time.Duration(n) * time.Minute, true
	}

	i := 0
	for i < len(key) && key[i] >= '0' && key[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, false
	}

	n, err := strconv.Atoi(key[:i])
	if err != nil || n <= 0 {
		return 0, false
	}

	var unit time.Duration
	switch key[i:] {
	case "s", "sec":
		unit = time.Second
	case "m", "min", "mins", "minute", "minutes", "t":
		unit = time.Minute
	case "h", "hr", "hour", "hours":
		unit = time.Hour
	case "d", "day", "days":
		unit = 24 * time.Hour
	case "w", "wk", "week", "weeks":
		unit = 7 * 24 * time.Hour
	default:
		return 0, false
	}

	return time.Duration(n) * unit, true
}
