package daylight

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseClockHours converts a 12-hour clock string such as "7:12:40 AM" into
// decimal hours on a 24-hour scale. 12 AM maps to 0 and 12 PM stays 12.
func ParseClockHours(value string) (float64, error) {
	fields := strings.Fields(strings.TrimSpace(value))
	if len(fields) != 2 {
		return 0, fmt.Errorf("daylight: malformed clock time %q", value)
	}
	meridiem := strings.ToUpper(fields[1])
	if meridiem != "AM" && meridiem != "PM" {
		return 0, fmt.Errorf("daylight: malformed meridiem in %q", value)
	}

	hours, minutes, seconds, err := splitHMS(fields[0])
	if err != nil {
		return 0, fmt.Errorf("daylight: malformed clock time %q: %w", value, err)
	}
	if hours < 1 || hours > 12 {
		return 0, fmt.Errorf("daylight: clock hour out of range in %q", value)
	}

	if hours == 12 {
		hours = 0
	}
	if meridiem == "PM" {
		hours += 12
	}
	return float64(hours) + float64(minutes)/60 + float64(seconds)/3600, nil
}

// ParseDurationHours converts a "HH:MM:SS" duration string into decimal hours.
func ParseDurationHours(value string) (float64, error) {
	hours, minutes, seconds, err := splitHMS(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("daylight: malformed duration %q: %w", value, err)
	}
	if hours < 0 || minutes < 0 || seconds < 0 {
		return 0, fmt.Errorf("daylight: negative duration %q", value)
	}
	return float64(hours) + float64(minutes)/60 + float64(seconds)/3600, nil
}

func splitHMS(value string) (hours, minutes, seconds int, err error) {
	parts := strings.Split(value, ":")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("expected HH:MM:SS, got %q", value)
	}
	hours, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, 0, err
	}
	minutes, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, 0, err
	}
	seconds, err = strconv.Atoi(parts[2])
	if err != nil {
		return 0, 0, 0, err
	}
	if minutes > 59 || seconds > 59 {
		return 0, 0, 0, fmt.Errorf("minutes/seconds out of range in %q", value)
	}
	return hours, minutes, seconds, nil
}
