package domain

import (
	"fmt"
	"strconv"
)

// SecondsFromTimeString converts an "HH:MM" time of day to seconds since midnight.
func SecondsFromTimeString(s string) (int, error) {
	if len(s) != 5 || s[2] != ':' || !digits(s[:2]) || !digits(s[3:]) {
		return 0, fmt.Errorf("%w: time must be formatted HH:MM", ErrInvalidInput)
	}
	hours, err := strconv.Atoi(s[:2])
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("%w: invalid hour in %q", ErrInvalidInput, s)
	}
	minutes, err := strconv.Atoi(s[3:])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("%w: invalid minute in %q", ErrInvalidInput, s)
	}
	return hours*3600 + minutes*60, nil
}

// TimeStringFromSeconds formats seconds since midnight as "HH:MM". Seconds below a minute are dropped.
func TimeStringFromSeconds(seconds int) string {
	minutes := seconds / 60
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func digits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
