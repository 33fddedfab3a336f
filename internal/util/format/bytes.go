// Package format renders byte counts for people.
package format

import "strconv"

const mib = 1024 * 1024

var units = []string{"KB", "MB", "GB", "TB", "PB", "EB"}

// HumanizeBytes converts a byte count into the largest fitting unit, e.g. "1.5 MB".
func HumanizeBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return strconv.FormatInt(b, 10) + " B"
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit && exp < len(units)-1; n /= unit {
		div *= unit
		exp++
	}
	var buf [24]byte
	s := strconv.AppendFloat(buf[:0], float64(b)/float64(div), 'f', 1, 64)
	return string(s) + " " + units[exp]
}

// Megabytes always renders in MB with one decimal, the way format sizes
// are listed next to a quality ("0.4 MB", "2048.0 MB").
func Megabytes(b int64) string {
	var buf [24]byte
	s := strconv.AppendFloat(buf[:0], float64(b)/mib, 'f', 1, 64)
	return string(s) + " MB"
}
