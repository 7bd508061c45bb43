package traffic

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bikeshare-traffic/pkg/bikeshare/models"
)

const AnyTimeLabel = "(any time)"

// FormatMinute renders a minute of day as a short 12-hour clock time, e.g. "8:20 AM"
func FormatMinute(minute int) string {
	minute = ((minute % models.MinutesPerDay) + models.MinutesPerDay) % models.MinutesPerDay
	hour, m := minute/60, minute%60

	period := "AM"
	if hour >= 12 {
		period = "PM"
	}
	hour %= 12
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%d:%02d %s", hour, m, period)
}

// FilterLabel is the label shown next to the time slider
func FilterLabel(minute int) string {
	if minute == NoFilter {
		return AnyTimeLabel
	}
	return FormatMinute(minute)
}

// ParseFilter reads "-1", "any", a minute count ("500") or a clock time ("08:20")
func ParseFilter(s string) (int, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "", "any", "-1":
		return NoFilter, nil
	}

	if hh, mm, ok := strings.Cut(s, ":"); ok {
		hour, err1 := strconv.Atoi(hh)
		m, err2 := strconv.Atoi(mm)
		if err1 != nil || err2 != nil || hour < 0 || hour > 23 || m < 0 || m > 59 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFilter, s)
		}
		return hour*60 + m, nil
	}

	minute, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFilter, s)
	}
	if err := ValidateTimeFilter(minute); err != nil {
		return 0, err
	}
	return minute, nil
}
