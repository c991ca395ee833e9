package market

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParsePeriod turns a user supplied candle period into minutes. It accepts
// plain minutes ("15"), timeframe codes ("M15", "H1", "H4", "D1") and Go
// durations ("90m", "2h").
func ParsePeriod(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty period")
	}

	if n, err := strconv.Atoi(s); err == nil {
		if n <= 0 {
			return 0, fmt.Errorf("period must be positive: %d", n)
		}
		return n, nil
	}

	upper := strings.ToUpper(s)
	if len(upper) >= 2 {
		unit := upper[0]
		if n, err := strconv.Atoi(upper[1:]); err == nil && n > 0 {
			switch unit {
			case 'M':
				return n, nil
			case 'H':
				return n * 60, nil
			case 'D':
				return n * 1440, nil
			}
		}
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("unsupported period %q", s)
	}
	if d < time.Minute || d%time.Minute != 0 {
		return 0, fmt.Errorf("period must be a whole number of minutes: %q", s)
	}
	return int(d / time.Minute), nil
}

// PeriodLabel renders minutes as a timeframe code where one fits.
func PeriodLabel(minutes int) string {
	switch {
	case minutes <= 0:
		return "invalid"
	case minutes%1440 == 0:
		return fmt.Sprintf("D%d", minutes/1440)
	case minutes%60 == 0:
		return fmt.Sprintf("H%d", minutes/60)
	default:
		return fmt.Sprintf("M%d", minutes)
	}
}
