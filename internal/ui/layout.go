package ui

import "time"

// Terminal width below which the header switches to short labels.
const LayoutCompactWidth = 100

// Fixed chrome around the strip, in rows.
const (
	HeaderHeight  = 1
	FooterHeight  = 1
	LogPaneHeight = 7
)

// Log display limits.
const (
	// LogBufferLimit is the maximum number of log lines kept by the follower.
	LogBufferLimit = 200
)

// Timing constants.
const (
	// FrameInterval paces animation frames (about 60 per second).
	FrameInterval = 16 * time.Millisecond

	// CycleTimeout bounds a single round trip to the server.
	CycleTimeout = 5 * time.Second

	// DefaultUIInterval is the default snapshot refresh interval.
	DefaultUIInterval = time.Second
)
