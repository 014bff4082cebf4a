// Package protocol defines the wire types shared by the imagestrip server and
// its viewers.
//
// # Overview
//
// A cycle is one round trip: the viewer sends Signals, the server answers
// with Directives. Directives are an order-independent attribute bag:
//
//   - alignment, animated, boxWidth, boxHeight, selectable: display settings
//   - removeAll: one-shot flag telling the viewer to drop all of its state
//   - direction: -1, 0 or +1, how the viewer should move into the new window
//   - selectedImage: index of the selected image or -1
//   - images: payloads of images the viewer has not received before
//   - window: ordered image indices of the recomputed window
//
// Images already sent are referenced in window by index only; the viewer is
// expected to keep the payloads it received until told to removeAll.
//
// # Signals
//
//	{"numOfImages": 4}    capacity report
//	{"cursor": "left"}    scroll request ("left" or "right")
//	{"clickedImage": 3}   selection
//
// An empty Signals value is a plain refresh.
package protocol
