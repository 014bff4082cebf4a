package carousel

import (
	"errors"
	"fmt"
	"time"

	"github.com/five82/imagestrip/internal/protocol"
)

// Layout constants shared with the server's capacity arithmetic.
const (
	Margin            = 10
	ButtonExtent      = 16
	SlotPadding       = 20
	AnimationDuration = 300 * time.Millisecond
)

// ErrUnknownImage is returned when a window references an index whose payload
// never reached the client.
var ErrUnknownImage = errors.New("unknown image index")

// State is the animation state of a Carousel.
type State int

const (
	Idle State = iota
	Animating
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Animating:
		return "animating"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Item is one rendered box. Pos is the offset of the box along the alignment
// axis, relative to the picture area. Boxes are centred on the cross axis, so
// the cross-axis offset is the same for every item and is not stored.
type Item struct {
	Index    int
	Resource string
	Width    int
	Height   int
	Pos      int
	Selected bool
}

// Carousel holds the client view of a strip. It is not safe for concurrent
// use; the owning program loop is expected to be its only caller.
type Carousel struct {
	state State

	alignment  int
	animated   bool
	boxWidth   int
	boxHeight  int
	selectable bool
	selected   int

	cache map[int]protocol.ImagePayload
	items []Item

	initial []int
	target  []int
	next    []protocol.ImagePayload

	reported int
}

// New returns an empty, idle carousel with the stock 120px boxes.
func New() *Carousel {
	return &Carousel{
		animated:  true,
		boxWidth:  120,
		boxHeight: 120,
		selected:  protocol.NoSelection,
		cache:     make(map[int]protocol.ImagePayload),
		reported:  -1,
	}
}

// Apply consumes one batch of directives. A removeAll takes effect at once and
// aborts any running animation. A window received while animating replaces the
// window the animation will settle on.
func (c *Carousel) Apply(d protocol.Directives) error {
	c.alignment = d.Alignment
	c.animated = d.Animated
	if d.BoxWidth > 0 {
		c.boxWidth = d.BoxWidth
	}
	if d.BoxHeight > 0 {
		c.boxHeight = d.BoxHeight
	}
	c.selectable = d.Selectable

	if d.RemoveAll {
		c.reset()
	}
	for _, img := range d.Images {
		c.cache[img.Index] = img
	}

	c.selected = d.SelectedImage
	c.markSelected(c.selected)

	if !d.HasWindow() {
		return nil
	}
	window, err := c.resolve(d.Window)
	if err != nil {
		return err
	}

	switch {
	case c.state == Animating:
		c.next = window
	case d.Direction != protocol.DirectionNone && c.animated && len(c.items) > 0:
		c.startAnimation(d.Direction, window)
	default:
		c.rebuild(window)
	}
	return nil
}

// Tick advances a running animation to progress, a fraction of
// AnimationDuration. At progress >= 1 the items snap to their targets and the
// carousel rebuilds from the latest window; Tick then reports true.
func (c *Carousel) Tick(progress float64) bool {
	if c.state != Animating {
		return false
	}
	if progress >= 1 {
		for i := range c.items {
			c.items[i].Pos = c.target[i]
		}
		window := c.next
		c.stopAnimation()
		c.rebuild(window)
		return true
	}
	if progress < 0 {
		progress = 0
	}
	for i := range c.items {
		c.items[i].Pos = c.initial[i] + int(float64(c.target[i]-c.initial[i])*progress)
	}
	return false
}

// AnimationProgress converts the time elapsed since an animation started into
// the progress value expected by Tick.
func AnimationProgress(elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	if elapsed >= AnimationDuration {
		return 1
	}
	return float64(elapsed) / float64(AnimationDuration)
}

// Select marks the items showing index as selected. It does nothing unless the
// strip is selectable. With notify set it returns the signal reporting the
// choice upstream.
func (c *Carousel) Select(index int, notify bool) (protocol.Signals, bool) {
	if !c.selectable {
		return protocol.Signals{}, false
	}
	c.selected = index
	c.markSelected(index)
	if !notify {
		return protocol.Signals{}, false
	}
	return protocol.ClickSignal(index), true
}

// Capacity returns how many boxes fit in extent units along the alignment axis.
func (c *Carousel) Capacity(extent int) int {
	n := (extent - 2*ButtonExtent) / (c.boxExtent() + Margin + SlotPadding)
	return max(n, 0)
}

// ReportCapacity computes the capacity for extent and returns the signal to
// send when it differs from the last reported value.
func (c *Carousel) ReportCapacity(extent int) (protocol.Signals, bool) {
	n := c.Capacity(extent)
	if n == c.reported {
		return protocol.Signals{}, false
	}
	c.reported = n
	return protocol.CapacitySignal(n), true
}

// PictureArea is the extent of the visible picture strip. An empty carousel
// uses the whole container.
func (c *Carousel) PictureArea(container int) int {
	if len(c.items) == 0 {
		return container
	}
	return max(len(c.items)-2, 0)*c.Step() + Margin
}

// Offset centers the picture area inside container.
func (c *Carousel) Offset(container int) int {
	return (container - c.PictureArea(container)) / 2
}

// Step is the distance between two neighbouring boxes.
func (c *Carousel) Step() int {
	return c.boxExtent() + Margin
}

// Items returns a copy of the rendered boxes in window order, buffers included.
func (c *Carousel) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Visible returns the items between the two buffers.
func (c *Carousel) Visible() []Item {
	if len(c.items) <= 2 {
		return nil
	}
	out := make([]Item, len(c.items)-2)
	copy(out, c.items[1:len(c.items)-1])
	return out
}

// State reports whether an animation is running.
func (c *Carousel) State() State { return c.state }

// Alignment returns the axis reported by the last directives.
func (c *Carousel) Alignment() int { return c.alignment }

// Vertical reports whether boxes stack along the vertical axis.
func (c *Carousel) Vertical() bool { return c.alignment == protocol.AlignVertical }

func (c *Carousel) Animated() bool { return c.animated }

func (c *Carousel) Selectable() bool { return c.selectable }

// Selected returns the selected index or protocol.NoSelection.
func (c *Carousel) Selected() int { return c.selected }

// Cached returns the number of payloads held.
func (c *Carousel) Cached() int { return len(c.cache) }

// Box returns the box width and height.
func (c *Carousel) Box() (int, int) { return c.boxWidth, c.boxHeight }

func (c *Carousel) boxExtent() int {
	if c.Vertical() {
		return c.boxHeight
	}
	return c.boxWidth
}

func (c *Carousel) resolve(indices []int) ([]protocol.ImagePayload, error) {
	window := make([]protocol.ImagePayload, 0, len(indices))
	for _, idx := range indices {
		img, ok := c.cache[idx]
		if !ok {
			return nil, fmt.Errorf("%w: %d", ErrUnknownImage, idx)
		}
		window = append(window, img)
	}
	return window, nil
}

func (c *Carousel) rebuild(window []protocol.ImagePayload) {
	step := c.Step()
	c.items = c.items[:0]
	for i, img := range window {
		c.items = append(c.items, Item{
			Index:    img.Index,
			Resource: img.Resource,
			Width:    img.Width,
			Height:   img.Height,
			Pos:      -step + i*step,
		})
	}
	c.markSelected(c.selected)
}

func (c *Carousel) startAnimation(direction int, window []protocol.ImagePayload) {
	shift := direction * c.Step()
	c.initial = make([]int, len(c.items))
	c.target = make([]int, len(c.items))
	for i, it := range c.items {
		c.initial[i] = it.Pos
		c.target[i] = it.Pos + shift
	}
	c.next = window
	c.state = Animating
}

func (c *Carousel) stopAnimation() {
	c.state = Idle
	c.initial = nil
	c.target = nil
	c.next = nil
}

func (c *Carousel) reset() {
	c.stopAnimation()
	c.items = nil
	c.cache = make(map[int]protocol.ImagePayload)
}

func (c *Carousel) markSelected(index int) {
	for i := range c.items {
		c.items[i].Selected = c.selectable && index != protocol.NoSelection && c.items[i].Index == index
	}
}
