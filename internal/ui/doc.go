// Package ui is the terminal viewer for an image strip session, built on
// Bubble Tea.
//
// The Model owns a carousel.Carousel and talks to the server through a
// client.Transport. Every key press that changes the strip becomes one
// interaction cycle; cycles run one at a time and later signals queue behind
// the one in flight. Replies are applied to the carousel, and when a reply
// starts an animation the model drives it with frame ticks until Tick reports
// that the boxes settled.
//
// Pixel geometry is mapped onto terminal cells with the PxPerColumn and
// PxPerRow preferences. The window size is converted to pixels along the
// strip's axis and reported as capacity whenever the number of boxes that fit
// changes.
//
// A slower tick refreshes the session summary from state.Store for the header
// and, when the log pane is open, follows the viewer log through
// logtail.Follower.
package ui
