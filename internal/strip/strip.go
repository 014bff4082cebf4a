package strip

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/five82/imagestrip/internal/protocol"
)

// Asset is the scaled result produced by a Resizer.
type Asset struct {
	Locator string
	Width   int
	Height  int
}

// Resizer scales a source image to fit within maxWidth x maxHeight.
// Implementations return an error wrapping ErrAssetUnavailable when the source
// cannot be read or decoded.
type Resizer interface {
	Resize(ctx context.Context, res Resource, maxWidth, maxHeight int) (Asset, error)
}

// CacheClearer is implemented by resizers that memoize scaled assets.
type CacheClearer interface {
	ClearCache()
}

// Alignment fixes the axis the strip scrolls along.
type Alignment int

const (
	Horizontal Alignment = protocol.AlignHorizontal
	Vertical   Alignment = protocol.AlignVertical
)

// Options configure a new Strip.
type Options struct {
	Alignment      Alignment
	BoxWidth       int
	BoxHeight      int
	ImageMaxWidth  int
	ImageMaxHeight int
	MaxAllowed     int
	Animated       bool
	Selectable     bool
	Logger         *log.Logger
}

// DefaultOptions mirrors the stock widget: 120px boxes holding images of at
// most 110px, animated, not selectable, no visible cap.
func DefaultOptions() Options {
	return Options{
		Alignment:      Horizontal,
		BoxWidth:       120,
		BoxHeight:      120,
		ImageMaxWidth:  110,
		ImageMaxHeight: 110,
		MaxAllowed:     Unlimited,
		Animated:       true,
	}
}

// Strip is the server-held model of one image strip: registry, cursor,
// transfer ledger and selection. All methods are safe for concurrent use; each
// one is a critical section over the whole state.
type Strip struct {
	mu      sync.Mutex
	resizer Resizer
	logger  *log.Logger

	registry Registry
	cursor   int
	capacity int

	alignment      Alignment
	boxWidth       int
	boxHeight      int
	imageMaxWidth  int
	imageMaxHeight int
	maxAllowed     int
	animated       bool
	selectable     bool

	direction   int
	clear       bool
	dirty       bool
	window      []Image
	pending     []Image
	transferred map[int]struct{}
	value       *Image
}

// New builds an empty strip. It fails with ErrInvalidConfiguration when the
// image max dimensions exceed the box.
func New(resizer Resizer, opts Options) (*Strip, error) {
	if resizer == nil {
		return nil, fmt.Errorf("strip requires a resizer")
	}
	if opts.ImageMaxWidth > opts.BoxWidth {
		return nil, fmt.Errorf("%w: image max width %d exceeds box width %d", ErrInvalidConfiguration, opts.ImageMaxWidth, opts.BoxWidth)
	}
	if opts.ImageMaxHeight > opts.BoxHeight {
		return nil, fmt.Errorf("%w: image max height %d exceeds box height %d", ErrInvalidConfiguration, opts.ImageMaxHeight, opts.BoxHeight)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Strip{
		resizer:        resizer,
		logger:         logger,
		alignment:      opts.Alignment,
		boxWidth:       opts.BoxWidth,
		boxHeight:      opts.BoxHeight,
		imageMaxWidth:  opts.ImageMaxWidth,
		imageMaxHeight: opts.ImageMaxHeight,
		maxAllowed:     opts.MaxAllowed,
		animated:       opts.Animated,
		selectable:     opts.Selectable,
		transferred:    make(map[int]struct{}),
	}, nil
}

// Register scales res and appends it to the registry. The resizer runs
// outside the lock; on failure the registry is left unchanged.
func (s *Strip) Register(ctx context.Context, res Resource) (Image, error) {
	switch res.Kind {
	case KindFile, KindURL:
	default:
		return Image{}, fmt.Errorf("%w: %s", ErrUnsupportedResourceKind, res.Kind)
	}

	s.mu.Lock()
	maxWidth, maxHeight := s.imageMaxWidth, s.imageMaxHeight
	s.mu.Unlock()

	asset, err := s.resizer.Resize(ctx, res, maxWidth, maxHeight)
	if err != nil {
		s.logger.Warn("image registration failed", "kind", res.Kind, "location", res.Location, "err", err)
		return Image{}, fmt.Errorf("register %s %q: %w", res.Kind, res.Location, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	img := s.registry.Append(Resource{Kind: KindFile, Location: asset.Locator}, asset.Width, asset.Height)
	s.markPending(img)
	s.direction = protocol.DirectionNone
	s.recompute()

	s.logger.Debug("image registered", "index", img.Index, "width", img.Width, "height", img.Height)
	return img, nil
}

// Handle runs one interaction cycle: it applies the inbound signals in the
// order capacity, scroll, click and returns the directives to emit.
func (s *Strip) Handle(sig protocol.Signals) protocol.Directives {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sig.Resync {
		s.resync()
	}
	if sig.NumOfImages != nil {
		s.setCapacity(*sig.NumOfImages)
	}
	switch sig.Cursor {
	case protocol.CursorLeft:
		s.scrollLeft()
	case protocol.CursorRight:
		s.scrollRight()
	case "":
	default:
		s.logger.Warn("ignoring unknown cursor signal", "cursor", sig.Cursor)
	}
	if sig.ClickedImage != nil {
		if img, ok := s.registry.Lookup(*sig.ClickedImage); ok {
			s.setValue(&img)
		} else {
			s.setValue(nil)
		}
	}
	return s.emit()
}

// Paint returns the directives of a plain refresh.
func (s *Strip) Paint() protocol.Directives {
	return s.Handle(protocol.Signals{})
}

// ScrollLeft advances the cursor toward later images.
func (s *Strip) ScrollLeft() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scrollLeft()
}

// ScrollRight moves the cursor back toward earlier images.
func (s *Strip) ScrollRight() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scrollRight()
}

// SetValue selects img. It is ignored unless the strip is selectable. A nil
// img clears the selection.
func (s *Strip) SetValue(img *Image) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setValue(img)
}

// Value returns the selected image, if any.
func (s *Strip) Value() (Image, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.value == nil {
		return Image{}, false
	}
	return *s.value, true
}

// SelectedIndex reports the selected image index, or -1 when the held value
// is not an image of this strip.
func (s *Strip) SelectedIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedIndex()
}

// IsImageVisible reports whether img is in the current VisibleSet.
func (s *Strip) IsImageVisible(img Image) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range VisibleSet(s.window) {
		if v.Index == img.Index {
			return true
		}
	}
	return false
}

// SetSelectable toggles selection support.
func (s *Strip) SetSelectable(selectable bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectable = selectable
}

// Selectable reports whether selection is enabled.
func (s *Strip) Selectable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectable
}

// SetAnimated toggles scroll animation on the client.
func (s *Strip) SetAnimated(animated bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.animated = animated
}

// Animated reports whether scrolling is animated.
func (s *Strip) Animated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.animated
}

// SetMaxAllowed caps the number of simultaneously visible images. A negative
// value removes the cap.
func (s *Strip) SetMaxAllowed(maxAllowed int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maxAllowed = maxAllowed
	s.direction = protocol.DirectionNone
	s.recompute()
}

// SetBoxWidth changes the width of the container around each image and drops
// any cached scaled assets.
func (s *Strip) SetBoxWidth(width int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.boxWidth = width
	s.invalidateAssets()
}

// SetBoxHeight changes the height of the container around each image and
// drops any cached scaled assets.
func (s *Strip) SetBoxHeight(height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.boxHeight = height
	s.invalidateAssets()
}

// SetImageMaxWidth sets the widest an image may be scaled to. It must not
// exceed the box width.
func (s *Strip) SetImageMaxWidth(width int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if width > s.boxWidth {
		return fmt.Errorf("%w: image max width cannot be wider than the box width %d", ErrInvalidConfiguration, s.boxWidth)
	}
	s.imageMaxWidth = width
	return nil
}

// SetImageMaxHeight sets the tallest an image may be scaled to. It must not
// exceed the box height.
func (s *Strip) SetImageMaxHeight(height int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if height > s.boxHeight {
		return fmt.Errorf("%w: image max height cannot be higher than the box height %d", ErrInvalidConfiguration, s.boxHeight)
	}
	s.imageMaxHeight = height
	return nil
}

// Dimensions returns box width, box height, image max width and image max height.
func (s *Strip) Dimensions() (boxWidth, boxHeight, imageMaxWidth, imageMaxHeight int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.boxWidth, s.boxHeight, s.imageMaxWidth, s.imageMaxHeight
}

// Status summarizes the strip for monitoring.
func (s *Strip) Status(id string) protocol.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return protocol.Status{
		ID:            id,
		Images:        s.registry.Len(),
		Cursor:        s.cursor,
		Capacity:      s.capacity,
		MaxAllowed:    s.maxAllowed,
		SelectedImage: s.selectedIndex(),
		Visible:       Indices(VisibleSet(s.window)),
		Animated:      s.animated,
		Selectable:    s.selectable,
	}
}

func (s *Strip) setCapacity(capacity int) {
	if capacity < 0 {
		capacity = 0
	}
	if capacity != s.capacity {
		// The client lays out a different number of slots from scratch, so
		// everything it holds is stale.
		s.forget()
	}
	s.capacity = capacity
	s.direction = protocol.DirectionNone
	s.recompute()
}

// resync resends the current window to a client that lost a reply.
func (s *Strip) resync() {
	s.forget()
	s.direction = protocol.DirectionNone
	s.recompute()
}

func (s *Strip) forget() {
	s.clear = true
	s.transferred = make(map[int]struct{})
	s.pending = s.pending[:0]
}

func (s *Strip) scrollLeft() {
	s.cursor++
	s.direction = protocol.DirectionLeading
	if s.cursor >= s.registry.Len() {
		s.cursor = 0
	}
	s.recompute()
}

func (s *Strip) scrollRight() {
	s.cursor--
	s.direction = protocol.DirectionTrailing
	if s.cursor < 0 {
		s.cursor = max(s.registry.Len()-1, 0)
	}
	s.recompute()
}

func (s *Strip) setValue(img *Image) {
	if !s.selectable {
		return
	}
	s.value = img
}

func (s *Strip) selectedIndex() int {
	if s.value == nil {
		return protocol.NoSelection
	}
	registered, ok := s.registry.Lookup(s.value.Index)
	if !ok || registered != *s.value {
		return protocol.NoSelection
	}
	return s.value.Index
}

func (s *Strip) invalidateAssets() {
	if clearer, ok := s.resizer.(CacheClearer); ok {
		clearer.ClearCache()
	}
	s.dirty = true
}

// recompute rebuilds the window and queues every image in it that has not
// crossed the boundary yet.
func (s *Strip) recompute() {
	s.window = ComputeWindow(s.registry.Images(), s.cursor, s.capacity, s.maxAllowed)
	for _, img := range s.window {
		s.markPending(img)
	}
	s.dirty = true
}

func (s *Strip) markPending(img Image) {
	if _, sent := s.transferred[img.Index]; sent {
		return
	}
	s.transferred[img.Index] = struct{}{}
	s.pending = append(s.pending, img)
}

// emit builds the directives of the current cycle and drains the outbox.
func (s *Strip) emit() protocol.Directives {
	d := protocol.Directives{
		Alignment:     int(s.alignment),
		Animated:      s.animated,
		BoxWidth:      s.boxWidth,
		BoxHeight:     s.boxHeight,
		Selectable:    s.selectable,
		RemoveAll:     s.clear,
		Direction:     s.direction,
		SelectedImage: s.selectedIndex(),
	}
	if len(s.pending) > 0 {
		d.Images = make([]protocol.ImagePayload, 0, len(s.pending))
		for _, img := range s.pending {
			d.Images = append(d.Images, protocol.ImagePayload{
				Resource: img.Resource.Location,
				Index:    img.Index,
				Width:    img.Width,
				Height:   img.Height,
			})
		}
		s.pending = s.pending[:0]
	}
	if s.dirty {
		d.Window = Indices(s.window)
		s.dirty = false
	}
	s.clear = false
	return d
}
