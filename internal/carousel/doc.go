// Package carousel is the client half of the strip: it caches image payloads,
// lays out the boxes of the current window and animates scrolls.
//
// A Carousel is either Idle or Animating. Directives that carry a window with
// a direction start a 300ms linear slide by one step; the caller drives it by
// feeding AnimationProgress values to Tick from its own frame clock. Boxes are
// laid out one step apart starting at -step, so the leading buffer sits just
// outside the picture area.
package carousel
