package sandbox

import (
	"fmt"
	"strconv"
	"strings"
)

// effectiveMemory picks the container memory limit: the bundle's
// estimated footprint, capped by the configured ceiling. An absent
// estimate falls back to the ceiling alone.
func effectiveMemory(estimateMB int, configured string) string {
	ceilingMB, ok := parseMemoryMB(configured)
	switch {
	case estimateMB <= 0 && !ok:
		return ""
	case estimateMB <= 0:
		return configured
	case ok && ceilingMB < estimateMB:
		return configured
	default:
		return fmt.Sprintf("%dm", estimateMB)
	}
}

// effectiveCPU picks the container CPU limit the same way.
func effectiveCPU(estimateCores float64, configured string) string {
	ceiling, err := strconv.ParseFloat(strings.TrimSpace(configured), 64)
	ok := err == nil && ceiling > 0
	switch {
	case estimateCores <= 0 && !ok:
		return ""
	case estimateCores <= 0:
		return configured
	case ok && ceiling < estimateCores:
		return configured
	default:
		return fmt.Sprintf("%.2f", estimateCores)
	}
}

// parseMemoryMB reads a docker-style memory value ("512m", "1g",
// "64000k") into megabytes.
func parseMemoryMB(s string) (int, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}

	mult := 1.0
	switch s[len(s)-1] {
	case 'g':
		mult = 1024
		s = s[:len(s)-1]
	case 'm':
		s = s[:len(s)-1]
	case 'k':
		mult = 1.0 / 1024
		s = s[:len(s)-1]
	case 'b':
		mult = 1.0 / (1024 * 1024)
		s = s[:len(s)-1]
	}

	n, err := strconv.ParseFloat(s, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return int(n * mult), true
}
