package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
)

const ellipsis = "…"

// fit shortens value to at most width display cells.
func fit(value string, width int) string {
	value = strings.TrimSpace(value)
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(value) <= width {
		return value
	}
	if width <= 1 {
		return truncate.String(value, uint(width))
	}
	return truncate.StringWithTail(value, uint(width), ellipsis)
}

// truncateMiddle shortens a string by removing characters from the middle,
// keeping the head and the tail. Paths keep their final element when it fits.
func truncateMiddle(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 || value == "" {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 3 {
		return string(runes[:limit])
	}

	if i := strings.LastIndexAny(value, `/\`); i > 0 {
		tail := []rune(value[i:])
		if len(tail)+2 <= limit {
			head := limit - len(tail) - 1
			return string(runes[:head]) + ellipsis + string(tail)
		}
	}

	head := (limit - 1) / 2
	tail := limit - 1 - head
	return string(runes[:head]) + ellipsis + string(runes[len(runes)-tail:])
}

// centerIn returns the offset that centers a span of size inside extent.
func centerIn(extent, size int) int {
	if size >= extent {
		return 0
	}
	return (extent - size) / 2
}

// ceilDiv divides a by b rounding up; b must be positive.
func ceilDiv(a, b int) int {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

// floorDiv divides a by b rounding toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
