package strip

import (
	"fmt"
	"strings"
)

// ResourceKind tags the source of a registered image.
type ResourceKind int

const (
	KindFile ResourceKind = iota + 1
	KindURL
)

func (k ResourceKind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindURL:
		return "url"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind maps the wire names "file" and "url" to a ResourceKind.
func ParseKind(name string) (ResourceKind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "file":
		return KindFile, nil
	case "url":
		return KindURL, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedResourceKind, name)
	}
}

// Resource references a renderable asset.
type Resource struct {
	Kind     ResourceKind
	Location string
}

// FileResource references an image on the local file system.
func FileResource(path string) Resource {
	return Resource{Kind: KindFile, Location: path}
}

// URLResource references an image reachable over HTTP(S).
func URLResource(u string) Resource {
	return Resource{Kind: KindURL, Location: u}
}

// Image is a registered, scaled image. It is immutable once created.
type Image struct {
	Index    int
	Resource Resource
	Width    int
	Height   int
}

// Registry holds images in registration order. Indices are assigned once and
// never reused; there is no removal.
type Registry struct {
	images  []Image
	byIndex map[int]int
	next    int
}

// Append registers a scaled asset and returns the new image.
func (r *Registry) Append(res Resource, width, height int) Image {
	if r.byIndex == nil {
		r.byIndex = make(map[int]int)
	}
	img := Image{Index: r.next, Resource: res, Width: width, Height: height}
	r.next++
	r.byIndex[img.Index] = len(r.images)
	r.images = append(r.images, img)
	return img
}

// Len returns the number of registered images.
func (r *Registry) Len() int {
	return len(r.images)
}

// Lookup finds an image by its permanent index.
func (r *Registry) Lookup(index int) (Image, bool) {
	pos, ok := r.byIndex[index]
	if !ok {
		return Image{}, false
	}
	return r.images[pos], true
}

// Images returns the registered images in index order. The slice must not be
// modified.
func (r *Registry) Images() []Image {
	return r.images
}
