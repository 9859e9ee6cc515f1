package cnc

import "fmt"

const secondsPerDay = 24 * 60 * 60

// FormatTime renders a number of seconds as HH:MM:SS. Hours wrap around
// every 24 hours, like a wall clock.
func FormatTime(seconds int) string {
	s := ((seconds % secondsPerDay) + secondsPerDay) % secondsPerDay

	return fmt.Sprintf("%02d:%02d:%02d", s/3600, s/60%60, s%60)
}
