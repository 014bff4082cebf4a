package strip

import "errors"

var (
	// ErrAssetUnavailable reports that the resizer could not produce pixel
	// dimensions for a source (missing file, failed download, decode failure).
	ErrAssetUnavailable = errors.New("asset unavailable")

	// ErrInvalidConfiguration reports a rejected setting; the prior value is kept.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrUnsupportedResourceKind reports a registration with a resource kind
	// other than file or URL.
	ErrUnsupportedResourceKind = errors.New("unsupported resource kind")
)
