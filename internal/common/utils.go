package common

import "strconv"

// FormatFloat renders v in the shortest form that round-trips (4, 52.52, 0.5).
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatInt renders v in base 10.
func FormatInt(v int) string {
	return strconv.Itoa(v)
}
