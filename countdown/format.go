package countdown

import "fmt"

// FormatTimeLeft renders seconds as H:MM:SS when at least an hour remains,
// MM:SS otherwise. Negative input is treated as 0.
func FormatTimeLeft(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
