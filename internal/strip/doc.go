// Package strip implements the server-side model of an image strip.
//
// # Overview
//
// A Strip owns an append-only Registry of scaled images, a scroll cursor, the
// client's reported capacity and an optional selection. Every interaction
// cycle recomputes the window of images around the cursor and emits
// protocol.Directives carrying only the images the client has not received.
//
// # Windows
//
// ComputeWindow walks the registry circularly, starting one slot before the
// cursor, for min(capacity, maxAllowed, N) + 2 steps. The first and last
// entries are buffers the client pre-renders for animation; VisibleSet drops
// them. Images repeat when the window is longer than the registry:
//
//	images 0..3, capacity 2, cursor 0   ->  [3 0 1 2]       visible [0 1]
//	images 0..3, capacity 10, cursor 0  ->  [3 0 1 2 3 0]   visible [0 1 2 3]
//
// # Transfer ledger
//
// Each image index enters the outbox at most once. The record of transferred
// indices is reset only when the client reports a different capacity or asks
// for a resync after losing a reply. Both raise the one-shot removeAll flag.
//
// # Errors
//
//   - ErrAssetUnavailable: the Resizer failed; nothing was registered
//   - ErrInvalidConfiguration: a max image dimension exceeded its box
//   - ErrUnsupportedResourceKind: a resource other than file or URL
package strip
