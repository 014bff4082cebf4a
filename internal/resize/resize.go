// Package resize scales registered images into a cache directory so the
// server can hand out small, uniformly encoded assets.
package resize

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/five82/imagestrip/internal/strip"
)

const (
	defaultURLPrefix = "/assets/"
	fetchTimeout     = 30 * time.Second
	maxSourceBytes   = 32 << 20
)

type cacheKey struct {
	kind      strip.ResourceKind
	location  string
	maxWidth  int
	maxHeight int
}

// Service implements strip.Resizer on top of the local file system.
type Service struct {
	cacheDir  string
	urlPrefix string
	http      *http.Client
	logger    *log.Logger

	mu    sync.Mutex
	cache map[cacheKey]strip.Asset
}

// Option customizes a Service.
type Option func(*Service)

// WithHTTPClient overrides the client used for URL sources.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Service) {
		s.http = c
	}
}

// WithURLPrefix sets the prefix of returned asset locators.
func WithURLPrefix(prefix string) Option {
	return func(s *Service) {
		s.urlPrefix = prefix
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// Ensure Service implements the strip collaborator contracts.
var (
	_ strip.Resizer      = (*Service)(nil)
	_ strip.CacheClearer = (*Service)(nil)
)

// New creates a Service writing scaled assets into cacheDir.
func New(cacheDir string, opts ...Option) (*Service, error) {
	if cacheDir == "" {
		return nil, fmt.Errorf("cache dir is empty")
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	s := &Service{
		cacheDir:  cacheDir,
		urlPrefix: defaultURLPrefix,
		http:      &http.Client{Timeout: fetchTimeout},
		logger:    log.Default(),
		cache:     make(map[cacheKey]strip.Asset),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Dir returns the directory scaled assets are written to.
func (s *Service) Dir() string {
	return s.cacheDir
}

// Resize scales res to fit within maxWidth x maxHeight, never enlarging it.
func (s *Service) Resize(ctx context.Context, res strip.Resource, maxWidth, maxHeight int) (strip.Asset, error) {
	if maxWidth <= 0 || maxHeight <= 0 {
		return strip.Asset{}, fmt.Errorf("%w: max size %dx%d", strip.ErrInvalidConfiguration, maxWidth, maxHeight)
	}
	key := cacheKey{kind: res.Kind, location: res.Location, maxWidth: maxWidth, maxHeight: maxHeight}

	s.mu.Lock()
	asset, ok := s.cache[key]
	s.mu.Unlock()
	if ok {
		return asset, nil
	}

	data, err := s.read(ctx, res)
	if err != nil {
		return strip.Asset{}, fmt.Errorf("%w: %v", strip.ErrAssetUnavailable, err)
	}
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return strip.Asset{}, fmt.Errorf("%w: decode %s: %v", strip.ErrAssetUnavailable, res.Location, err)
	}

	bounds := src.Bounds()
	width, height := Fit(bounds.Dx(), bounds.Dy(), maxWidth, maxHeight)
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	if width == bounds.Dx() && height == bounds.Dy() {
		xdraw.Draw(dst, dst.Bounds(), src, bounds.Min, xdraw.Src)
	} else {
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	}

	name := assetName(key, width, height)
	if err := s.write(name, dst); err != nil {
		return strip.Asset{}, err
	}

	asset = strip.Asset{Locator: s.urlPrefix + name, Width: width, Height: height}
	s.mu.Lock()
	s.cache[key] = asset
	s.mu.Unlock()

	s.logger.Debug("scaled image", "source", res.Location, "format", format,
		"from", fmt.Sprintf("%dx%d", bounds.Dx(), bounds.Dy()), "to", fmt.Sprintf("%dx%d", width, height))
	return asset, nil
}

// ClearCache forgets every memoized asset so the next Resize rescales.
func (s *Service) ClearCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[cacheKey]strip.Asset)
}

// Fit returns the largest size with the aspect ratio of width x height that
// fits within maxWidth x maxHeight. Images that already fit are returned as is.
func Fit(width, height, maxWidth, maxHeight int) (int, int) {
	if width <= 0 || height <= 0 {
		return 0, 0
	}
	if width <= maxWidth && height <= maxHeight {
		return width, height
	}
	scale := math.Min(float64(maxWidth)/float64(width), float64(maxHeight)/float64(height))
	w := max(1, int(math.Round(float64(width)*scale)))
	h := max(1, int(math.Round(float64(height)*scale)))
	return min(w, maxWidth), min(h, maxHeight)
}

func (s *Service) read(ctx context.Context, res strip.Resource) ([]byte, error) {
	switch res.Kind {
	case strip.KindFile:
		file, err := os.Open(res.Location)
		if err != nil {
			return nil, fmt.Errorf("open image: %w", err)
		}
		defer file.Close()
		return io.ReadAll(io.LimitReader(file, maxSourceBytes))
	case strip.KindURL:
		return s.download(ctx, res.Location)
	default:
		return nil, fmt.Errorf("%w: %s", strip.ErrUnsupportedResourceKind, res.Kind)
	}
}

func (s *Service) download(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download image: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download image: HTTP %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSourceBytes))
	if err != nil {
		return nil, fmt.Errorf("read image data: %w", err)
	}
	return data, nil
}

func (s *Service) write(name string, img image.Image) error {
	final := filepath.Join(s.cacheDir, name)
	tmp, err := os.CreateTemp(s.cacheDir, ".scale-*")
	if err != nil {
		return fmt.Errorf("create asset: %w", err)
	}
	if err := png.Encode(tmp, img); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("encode asset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close asset: %w", err)
	}
	if err := os.Rename(tmp.Name(), final); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("store asset: %w", err)
	}
	return nil
}

func assetName(key cacheKey, width, height int) string {
	sum := sha256.Sum256([]byte(key.kind.String() + "\x00" + key.location))
	return fmt.Sprintf("%s-%dx%d.png", hex.EncodeToString(sum[:8]), width, height)
}
